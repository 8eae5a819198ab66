package memory

import (
	"testing"

	"gones/internal/cartridge"
)

type stubPPU struct {
	lastReadAddr  uint16
	lastWriteAddr uint16
	lastWriteVal  uint8
}

func (s *stubPPU) ReadRegister(address uint16) uint8 {
	s.lastReadAddr = address
	return 0xAB
}

func (s *stubPPU) WriteRegister(address uint16, value uint8) {
	s.lastWriteAddr = address
	s.lastWriteVal = value
}

type stubAPU struct {
	lastWriteAddr uint16
	lastWriteVal  uint8
}

func (s *stubAPU) WriteRegister(address uint16, value uint8) {
	s.lastWriteAddr = address
	s.lastWriteVal = value
}

func (s *stubAPU) ReadStatus() uint8 { return 0x55 }

type stubInput struct {
	lastReadAddr  uint16
	lastWriteAddr uint16
	lastWriteVal  uint8
}

func (s *stubInput) Read(address uint16) uint8 {
	s.lastReadAddr = address
	return 0x01
}

func (s *stubInput) Write(address uint16, value uint8) {
	s.lastWriteAddr = address
	s.lastWriteVal = value
}

func newTestMemory() (*Memory, *stubPPU, *stubAPU, *stubInput, *cartridge.MockCartridge) {
	ppu := &stubPPU{}
	apu := &stubAPU{}
	input := &stubInput{}
	cart := cartridge.NewMockCartridge()
	m := New(ppu, apu, cart)
	m.SetInputSystem(input)
	return m, ppu, apu, input, cart
}

func TestMemoryRAMMirroring(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0800, 0x1000, 0x1800} {
		if got := m.Read(mirror); got != 0x42 {
			t.Fatalf("expected RAM mirrored at $%04X, got 0x%02X", mirror, got)
		}
	}
}

func TestMemoryPPURegisterMirroring(t *testing.T) {
	m, ppu, _, _, _ := newTestMemory()
	m.Write(0x2008, 0x10) // mirrors $2000
	if ppu.lastWriteAddr != 0x2000 {
		t.Fatalf("expected write routed to $2000, got $%04X", ppu.lastWriteAddr)
	}
	m.Read(0x3FFF) // mirrors $2007
	if ppu.lastReadAddr != 0x2007 {
		t.Fatalf("expected read routed to $2007, got $%04X", ppu.lastReadAddr)
	}
}

func TestMemoryDMATrigger(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	var triggered uint8
	called := false
	m.SetDMACallback(func(page uint8) {
		triggered = page
		called = true
	})
	m.Write(0x4014, 0x03)
	if !called || triggered != 0x03 {
		t.Fatalf("expected DMA callback invoked with page 3, called=%v page=%d", called, triggered)
	}
}

func TestMemoryControllerRouting(t *testing.T) {
	m, _, _, input, _ := newTestMemory()
	m.Write(0x4016, 1)
	if input.lastWriteAddr != 0x4016 || input.lastWriteVal != 1 {
		t.Fatal("expected strobe write routed to input system")
	}
	if got := m.Read(0x4016); got != 0x01 {
		t.Fatalf("expected controller read routed through, got 0x%02X", got)
	}
	if input.lastReadAddr != 0x4016 {
		t.Fatal("expected read address routed to input system")
	}
	m.Read(0x4017)
	if input.lastReadAddr != 0x4017 {
		t.Fatal("expected $4017 routed to input system too")
	}
}

func TestMemoryAPUStatusRouting(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	if got := m.Read(0x4015); got != 0x55 {
		t.Fatalf("expected APU status routed through, got 0x%02X", got)
	}
	m.Write(0x4000, 0x7F)
	m.Write(0x4015, 0x1F)
	m.Write(0x4017, 0x40)
}

func TestMemoryOpenBusUnmappedExpansion(t *testing.T) {
	m, _, _, _, _ := newTestMemory()
	m.Read(0x0000) // establishes a known openBusValue of 0 (fresh RAM)
	if got := m.Read(0x5000); got != 0 {
		t.Fatalf("expected open-bus read in expansion area to echo last bus value, got 0x%02X", got)
	}
}

func TestMemoryCartridgePRGRouting(t *testing.T) {
	m, _, _, _, cart := newTestMemory()
	cart.LoadPRG([]byte{0xEE})
	if got := m.Read(0x8000); got != 0xEE {
		t.Fatalf("expected PRG read routed to cartridge, got 0x%02X", got)
	}
	m.Write(0x6000, 0x77)
	if got := m.Read(0x6000); got != 0x77 {
		t.Fatalf("expected SRAM round trip through cartridge, got 0x%02X", got)
	}
}

func newTestPPUMemory(mode cartridge.MirrorMode) (*PPUMemory, *cartridge.MockCartridge) {
	cart := cartridge.NewMockCartridge()
	cart.SetMirroring(mode)
	return NewPPUMemory(cart), cart
}

func TestPPUMemoryCHRRouting(t *testing.T) {
	pm, cart := newTestPPUMemory(cartridge.MirrorHorizontal)
	cart.LoadCHR([]byte{0x11, 0x22})
	if got := pm.Read(0x0001); got != 0x22 {
		t.Fatalf("expected CHR read routed to cartridge, got 0x%02X", got)
	}
}

func TestPPUMemoryHorizontalMirroring(t *testing.T) {
	pm, _ := newTestPPUMemory(cartridge.MirrorHorizontal)
	pm.Write(0x2000, 0x01)
	if got := pm.Read(0x2400); got != 0x01 {
		t.Fatal("expected horizontal mirroring: nametable 0 and 1 share physical memory")
	}
	pm.Write(0x2800, 0x02)
	if got := pm.Read(0x2C00); got != 0x02 {
		t.Fatal("expected horizontal mirroring: nametable 2 and 3 share physical memory")
	}
	if got := pm.Read(0x2000); got == 0x02 {
		t.Fatal("expected nametable 0/1 pair distinct from 2/3 pair")
	}
}

func TestPPUMemoryVerticalMirroring(t *testing.T) {
	pm, _ := newTestPPUMemory(cartridge.MirrorVertical)
	pm.Write(0x2000, 0x05)
	if got := pm.Read(0x2800); got != 0x05 {
		t.Fatal("expected vertical mirroring: nametable 0 and 2 share physical memory")
	}
	pm.Write(0x2400, 0x06)
	if got := pm.Read(0x2C00); got != 0x06 {
		t.Fatal("expected vertical mirroring: nametable 1 and 3 share physical memory")
	}
}

func TestPPUMemorySingleScreenMirroring(t *testing.T) {
	pm, _ := newTestPPUMemory(cartridge.MirrorSingleScreen0)
	pm.Write(0x2000, 0x07)
	for _, addr := range []uint16{0x2400, 0x2800, 0x2C00} {
		if got := pm.Read(addr); got != 0x07 {
			t.Fatalf("expected single-screen-0 to alias all nametables, addr $%04X got 0x%02X", addr, got)
		}
	}
}

func TestPPUMemoryFourScreenMirroring(t *testing.T) {
	pm, _ := newTestPPUMemory(cartridge.MirrorFourScreen)
	pm.Write(0x2000, 0x01)
	pm.Write(0x2400, 0x02)
	if got := pm.Read(0x2000); got != 0x01 {
		t.Fatal("expected four-screen nametable 0 distinct")
	}
	if got := pm.Read(0x2400); got != 0x02 {
		t.Fatal("expected four-screen nametable 1 distinct")
	}
}

func TestPPUMemoryNametableMirrorAt3000(t *testing.T) {
	pm, _ := newTestPPUMemory(cartridge.MirrorVertical)
	pm.Write(0x2000, 0x09)
	if got := pm.Read(0x3000); got != 0x09 {
		t.Fatal("expected $3000-$3EFF to mirror $2000-$2EFF")
	}
}

func TestPPUMemoryPaletteAliasing(t *testing.T) {
	pm, _ := newTestPPUMemory(cartridge.MirrorHorizontal)
	pm.Write(0x3F00, 0x20)
	if got := pm.Read(0x3F10); got != 0x20 {
		t.Fatal("expected sprite palette 0 background color to alias $3F00")
	}
	pm.Write(0x3F14, 0x21)
	if got := pm.Read(0x3F04); got != 0x21 {
		t.Fatal("expected $3F14 to alias $3F04")
	}
}

func TestPPUMemoryPaletteInitialUniversalColor(t *testing.T) {
	pm, _ := newTestPPUMemory(cartridge.MirrorHorizontal)
	if got := pm.Read(0x3F00); got != 0x0F {
		t.Fatalf("expected universal background color initialized to 0x0F, got 0x%02X", got)
	}
}
