// Package memory implements the CPU bus and the PPU's picture bus: the two
// address spaces that sit between the CPU/PPU and cartridge/mapper memory.
package memory

// Memory is the 16-bit CPU bus: internal RAM, PPU register window, APU/IO
// register window, and cartridge PRG window.
type Memory struct {
	ram [0x800]uint8 // 2KB internal RAM, mirrored across $0000-$1FFF

	ppuRegisters PPUInterface
	apuRegisters APUInterface
	inputSystem  InputInterface
	cartridge    CartridgeInterface

	dmaCallback func(uint8)

	// openBusValue is the last byte that crossed the bus; returned for reads
	// of unmapped regions to approximate open-bus behavior.
	openBusValue uint8
}

// PPUMemory is the 14-bit picture bus: pattern tables via the mapper,
// nametables with mirroring, and palette RAM.
type PPUMemory struct {
	vram       [0x1000]uint8 // 4KB VRAM (nametables; four-screen carts use all of it)
	paletteRAM [32]uint8
	cartridge  CartridgeInterface
}

// MirrorMode mirrors cartridge.MirrorMode's encoding (values and ordering
// match exactly) so the picture bus can work with a plain uint8 from the
// CartridgeInterface without importing the cartridge package.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// PPUInterface is the CPU bus's view of the PPU's register window.
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface is the CPU bus's view of the APU register stub.
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface is the CPU bus's view of the controller collaborator.
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface is both buses' view of the cartridge/mapper. Mirroring
// returns the raw mirroring code (matching MirrorMode's iota values) rather
// than a typed MirrorMode so that concrete cartridges don't need to import
// this package just to satisfy it.
type CartridgeInterface interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Mirroring() uint8
	TickScanline()
	IrqPending() bool
}

// New creates a CPU bus wired to the given PPU/APU/cartridge collaborators.
func New(ppu PPUInterface, apu APUInterface, cart CartridgeInterface) *Memory {
	return &Memory{
		ppuRegisters: ppu,
		apuRegisters: apu,
		cartridge:    cart,
	}
}

// SetInputSystem attaches the controller collaborator.
func (m *Memory) SetInputSystem(input InputInterface) {
	m.inputSystem = input
}

// SetDMACallback attaches the OAM DMA trigger, invoked on writes to $4014.
func (m *Memory) SetDMACallback(callback func(uint8)) {
	m.dmaCallback = callback
}

// Read reads a byte from the CPU's 16-bit address space.
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		value = m.ppuRegisters.ReadRegister(0x2000 + (address & 0x0007))

	case address < 0x4020:
		switch {
		case address == 0x4015:
			value = m.apuRegisters.ReadStatus()
		case address == 0x4016 || address == 0x4017:
			if m.inputSystem != nil {
				value = m.inputSystem.Read(address)
			}
		default:
			// Unimplemented APU/IO register reads are no-ops; approximate
			// open bus rather than fabricating a register value.
			value = m.openBusValue
		}

	case address >= 0x6000 && address < 0x8000:
		if m.cartridge != nil {
			value = m.cartridge.ReadPRG(address)
		} else {
			value = m.openBusValue
		}

	case address < 0x8000:
		// $4020-$5FFF cartridge expansion area; unmapped on every mapper
		// this module implements.
		value = m.openBusValue

	default:
		if m.cartridge != nil {
			value = m.cartridge.ReadPRG(address)
		} else {
			value = m.openBusValue
		}
	}

	m.openBusValue = value
	return value
}

// Write writes a byte to the CPU's 16-bit address space.
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppuRegisters.WriteRegister(0x2000+(address&0x0007), value)

	case address < 0x4020:
		switch {
		case address == 0x4014:
			if m.dmaCallback != nil {
				m.dmaCallback(value)
			}
		case address == 0x4016:
			if m.inputSystem != nil {
				m.inputSystem.Write(address, value)
			}
		case address >= 0x4000 && address <= 0x4013, address == 0x4015, address == 0x4017:
			m.apuRegisters.WriteRegister(address, value)
		}
		// $4018-$401F are unused; writes are no-ops.

	case address >= 0x6000 && address < 0x8000:
		if m.cartridge != nil {
			m.cartridge.WritePRG(address, value)
		}

	case address < 0x8000:
		// Cartridge expansion area; writes are no-ops.

	default:
		if m.cartridge != nil {
			m.cartridge.WritePRG(address, value)
		}
	}
}

// NewPPUMemory creates a picture bus over the given cartridge. Mirroring is
// read live from the cartridge on every nametable access rather than cached,
// since mappers like MMC1/MMC3/AxROM can change it at runtime.
func NewPPUMemory(cart CartridgeInterface) *PPUMemory {
	mem := &PPUMemory{cartridge: cart}
	for i := 0; i < 32; i += 4 {
		mem.paletteRAM[i] = 0x0F
	}
	return mem
}

// Read reads a byte from the PPU's 14-bit address space (addresses wrap mod
// $4000).
func (pm *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		return pm.cartridge.ReadCHR(address)
	case address < 0x3000:
		return pm.readNametable(address)
	case address < 0x3F00:
		return pm.readNametable(address - 0x1000)
	default:
		return pm.readPalette(address)
	}
}

// Write writes a byte to the PPU's 14-bit address space.
func (pm *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		pm.cartridge.WriteCHR(address, value)
	case address < 0x3000:
		pm.writeNametable(address, value)
	case address < 0x3F00:
		pm.writeNametable(address-0x1000, value)
	default:
		pm.writePalette(address, value)
	}
}

func (pm *PPUMemory) mirroring() MirrorMode {
	return MirrorMode(pm.cartridge.Mirroring())
}

func (pm *PPUMemory) readNametable(address uint16) uint8 {
	return pm.vram[pm.getNametableIndex(address)]
}

func (pm *PPUMemory) writeNametable(address uint16, value uint8) {
	pm.vram[pm.getNametableIndex(address)] = value
}

// getNametableIndex resolves one of the four logical 1KB nametables to an
// offset into the 2KB (or, for four-screen, 4KB) physical VRAM.
func (pm *PPUMemory) getNametableIndex(address uint16) uint16 {
	address &= 0x0FFF
	nametable := (address >> 10) & 3
	offset := address & 0x3FF

	switch pm.mirroring() {
	case MirrorHorizontal:
		if nametable >= 2 {
			return 0x400 + offset
		}
		return offset
	case MirrorVertical:
		if nametable == 1 || nametable == 3 {
			return 0x400 + offset
		}
		return offset
	case MirrorSingleScreen0:
		return offset
	case MirrorSingleScreen1:
		return 0x400 + offset
	case MirrorFourScreen:
		return nametable*0x400 + offset
	default:
		return offset
	}
}

// paletteIndex resolves a $3F00-$3FFF address to one of the 32 palette RAM
// bytes, folding the sprite/background aliasing at $10/$14/$18/$1C.
func paletteIndex(address uint16) uint16 {
	index := (address - 0x3F00) & 0x1F
	if index == 0x10 || index == 0x14 || index == 0x18 || index == 0x1C {
		index &= 0x0F
	}
	return index
}

func (pm *PPUMemory) readPalette(address uint16) uint8 {
	return pm.paletteRAM[paletteIndex(address)]
}

func (pm *PPUMemory) writePalette(address uint16, value uint8) {
	pm.paletteRAM[paletteIndex(address)] = value
}
