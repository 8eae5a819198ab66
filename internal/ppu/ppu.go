// Package ppu implements the NES Picture Processing Unit (2C02): the
// scanline/dot state machine, background and sprite fetch pipelines, and
// the $2000-$2007 CPU register protocol.
package ppu

import "gones/internal/memory"

// useBuggySpriteOverflow selects the hardware-accurate off-by-one sprite
// overflow scan over a simple 8-sprite cap. See the decision recorded for
// this open question.
const useBuggySpriteOverflow = true

type spriteSlot struct {
	patternLo uint8
	patternHi uint8
	attribute uint8
	x         uint8
	isSprite0 bool
}

// PPU is the 2C02: 262 scanlines x 341 dots per NTSC frame.
type PPU struct {
	// CPU-visible registers
	ppuCtrl   uint8
	ppuMask   uint8
	ppuStatus uint8
	oamAddr   uint8

	// Internal scroll registers (NESDev canonical v/t/x/w)
	v uint16
	t uint16
	x uint8
	w bool

	memory *memory.PPUMemory

	scanline int // -1 (pre-render) .. 260
	cycle    int // 0..340

	frameCount uint64
	oddFrame   bool
	readBuffer uint8

	backgroundEnabled bool
	spritesEnabled    bool
	renderingEnabled  bool

	// Background fetch pipeline
	bgNextTileID   uint8
	bgNextTileAttr uint8
	bgNextTileLSB  uint8
	bgNextTileMSB  uint8

	bgShiftPatternLo uint16
	bgShiftPatternHi uint16
	bgShiftAttrLo    uint16
	bgShiftAttrHi    uint16

	// Sprite pipeline
	oam          [256]uint8
	secondaryOAM [32]uint8
	spriteCount  int
	sprites      [8]spriteSlot

	sprite0Hit     bool
	spriteOverflow bool

	frameBuffer [256 * 240]uint32

	nmiCallback           func()
	frameCompleteCallback func()

	cycleCount uint64
}

// New creates a PPU at the pre-render scanline.
func New() *PPU {
	return &PPU{scanline: -1, cycle: 0}
}

// Reset returns the PPU to its power-up state.
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0xA0
	p.oamAddr = 0

	p.v, p.t, p.x, p.w = 0, 0, 0, false

	p.scanline = -1
	p.cycle = 0
	p.frameCount = 0
	p.oddFrame = false
	p.readBuffer = 0

	p.spriteCount = 0
	p.sprite0Hit = false
	p.spriteOverflow = false

	p.backgroundEnabled = false
	p.spritesEnabled = false
	p.renderingEnabled = false

	p.cycleCount = 0

	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.frameBuffer {
		p.frameBuffer[i] = 0
	}
}

// SetMemory attaches the picture bus.
func (p *PPU) SetMemory(mem *memory.PPUMemory) {
	p.memory = mem
}

// SetNMICallback attaches the CPU's NMI line.
func (p *PPU) SetNMICallback(callback func()) {
	p.nmiCallback = callback
}

// SetFrameCompleteCallback attaches the frame-ready sink.
func (p *PPU) SetFrameCompleteCallback(callback func()) {
	p.frameCompleteCallback = callback
}

// ReadRegister reads from the CPU-visible PPU registers $2000-$2007.
//
// The documented VBlank-race quirk (a $2002 read landing within two CPU
// cycles of the flag being set both returns the clear value and suppresses
// NMI for the frame) is not modeled: this emulator ticks the PPU three
// times per completed CPU instruction rather than interleaving bus access
// mid-instruction, so the race cannot be observed by CPU-issued reads in
// the first place, per the concurrency model's documented tolerance for
// coarser-than-cycle interleaving.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0x2002:
		status := p.ppuStatus
		p.ppuStatus &= 0x7F // Clear VBlank; sprite flags clear at pre-render dot 1
		p.w = false
		return status
	case 0x2004:
		return p.oam[p.oamAddr]
	case 0x2007:
		return p.readPPUData()
	default:
		// $2000/$2001/$2003/$2005/$2006 are write-only; open bus.
		return p.ppuStatus & 0x1F
	}
}

// WriteRegister writes to the CPU-visible PPU registers $2000-$2007.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x2000:
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)
	case 0x2001:
		p.ppuMask = value
		p.updateRenderingFlags()
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		p.writePPUScroll(value)
	case 0x2006:
		p.writePPUAddr(value)
	case 0x2007:
		p.writePPUData(value)
	}
}

// WriteOAM writes directly into OAM; used by OAM DMA.
func (p *PPU) WriteOAM(address uint8, value uint8) {
	p.oam[address] = value
}

// Step advances the PPU by one dot.
func (p *PPU) Step() {
	p.cycleCount++
	p.advanceDot()

	if p.scanline == 241 && p.cycle == 1 {
		p.ppuStatus |= 0x80
		if p.ppuCtrl&0x80 != 0 && p.nmiCallback != nil {
			p.nmiCallback()
		}
	}

	if p.scanline == -1 && p.cycle == 1 {
		// Sprite-0 hit and overflow persist until pre-render dot 1; VBlank
		// also clears here.
		p.ppuStatus &= 0x1F
		p.sprite0Hit = false
		p.spriteOverflow = false
	}

	if p.scanline >= -1 && p.scanline < 240 {
		p.renderCycle()
	}
}

// advanceDot moves to the next dot/scanline/frame, applying the odd-frame
// pre-render short line.
func (p *PPU) advanceDot() {
	p.cycle++

	if p.scanline == -1 && p.cycle == 339 && p.oddFrame && p.renderingEnabled {
		p.cycle = 340 // Skip dot 339: pre-render line is 340 dots this frame.
	}

	if p.cycle > 340 {
		p.cycle = 0
		p.scanline++
		if p.scanline > 260 {
			p.scanline = -1
			p.frameCount++
			p.oddFrame = !p.oddFrame
			if p.frameCompleteCallback != nil {
				p.frameCompleteCallback()
			}
		}
	}
}

// renderCycle drives the background/sprite pipelines and pixel multiplexer
// for one dot on the pre-render or visible scanlines.
func (p *PPU) renderCycle() {
	if !p.renderingEnabled {
		return
	}

	visibleOrPrefetch := (p.cycle >= 1 && p.cycle <= 256) || (p.cycle >= 321 && p.cycle <= 336)
	if visibleOrPrefetch {
		p.shiftBackgroundRegisters()
		p.fetchBackgroundByte()
	}

	if p.cycle == 256 {
		p.incrementY()
	}
	if p.cycle == 257 {
		p.copyX()
		p.loadSpritesForNextScanline()
	}
	if p.scanline == -1 && p.cycle >= 280 && p.cycle <= 304 {
		p.copyY()
	}

	if p.cycle == 65 {
		p.evaluateSprites()
	}

	if p.scanline >= 0 && p.scanline < 240 && p.cycle >= 1 && p.cycle <= 256 {
		p.outputPixel(p.cycle - 1)
	}
}

// fetchBackgroundByte performs the 8-dot nametable/attribute/pattern fetch
// group and loads the shift registers and increments coarse-X every 8 dots.
func (p *PPU) fetchBackgroundByte() {
	switch (p.cycle - 1) % 8 {
	case 0:
		p.loadBackgroundShifters()
		ntAddress := 0x2000 | (p.v & 0x0FFF)
		p.bgNextTileID = p.memory.Read(ntAddress)
	case 2:
		atAddress := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
		attr := p.memory.Read(atAddress)
		if p.getCoarseY()&0x02 != 0 {
			attr >>= 4
		}
		if p.getCoarseX()&0x02 != 0 {
			attr >>= 2
		}
		p.bgNextTileAttr = attr & 0x03
	case 4:
		base := uint16(0)
		if p.ppuCtrl&0x10 != 0 {
			base = 0x1000
		}
		addr := base + uint16(p.bgNextTileID)*16 + uint16(p.getFineY())
		p.bgNextTileLSB = p.memory.Read(addr)
	case 6:
		base := uint16(0)
		if p.ppuCtrl&0x10 != 0 {
			base = 0x1000
		}
		addr := base + uint16(p.bgNextTileID)*16 + uint16(p.getFineY()) + 8
		p.bgNextTileMSB = p.memory.Read(addr)
	case 7:
		p.incrementX()
	}
}

func (p *PPU) loadBackgroundShifters() {
	p.bgShiftPatternLo = (p.bgShiftPatternLo & 0xFF00) | uint16(p.bgNextTileLSB)
	p.bgShiftPatternHi = (p.bgShiftPatternHi & 0xFF00) | uint16(p.bgNextTileMSB)

	var attrLo, attrHi uint16
	if p.bgNextTileAttr&0x01 != 0 {
		attrLo = 0xFF
	}
	if p.bgNextTileAttr&0x02 != 0 {
		attrHi = 0xFF
	}
	p.bgShiftAttrLo = (p.bgShiftAttrLo & 0xFF00) | attrLo
	p.bgShiftAttrHi = (p.bgShiftAttrHi & 0xFF00) | attrHi
}

func (p *PPU) shiftBackgroundRegisters() {
	p.bgShiftPatternLo <<= 1
	p.bgShiftPatternHi <<= 1
	p.bgShiftAttrLo <<= 1
	p.bgShiftAttrHi <<= 1
}

// evaluateSprites scans primary OAM for up to 8 sprites covering the next
// scanline, reproducing the off-by-one overflow scan when
// useBuggySpriteOverflow is set.
func (p *PPU) evaluateSprites() {
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}
	for i := range p.sprites {
		p.sprites[i] = spriteSlot{}
	}
	p.spriteCount = 0

	spriteHeight := 8
	if p.ppuCtrl&0x20 != 0 {
		spriteHeight = 16
	}
	targetLine := p.scanline + 1

	found := 0
	n := 0
	for ; n < 64; n++ {
		y := int(p.oam[n*4])
		if targetLine >= y && targetLine < y+spriteHeight {
			if found < 8 {
				copy(p.secondaryOAM[found*4:found*4+4], p.oam[n*4:n*4+4])
				p.spriteIndexIsZero(found, n == 0)
				found++
			} else {
				p.spriteOverflow = true
				break
			}
		}
		if useBuggySpriteOverflow && found == 8 {
			n++
			break
		}
	}

	if useBuggySpriteOverflow && found == 8 && !p.spriteOverflow {
		// Hardware bug: once 8 are found, continued scanning increments
		// both the sprite index and the in-sprite byte index together.
		m := 0
		for n < 64 {
			y := int(p.oam[n*4+m])
			if targetLine >= y && targetLine < y+spriteHeight {
				p.spriteOverflow = true
				break
			}
			n++
			m = (m + 1) % 4
		}
	}

	p.spriteCount = found
}

// spriteIndexIsZero records whether secondary-OAM slot is OAM index 0 in
// the slot's isSprite0 field; loadSpritesForNextScanline fills the rest in.
func (p *PPU) spriteIndexIsZero(slot int, isZero bool) {
	p.sprites[slot].isSprite0 = isZero
}

// loadSpritesForNextScanline fetches pattern bytes for each evaluated
// sprite and loads x-counter/attribute/pattern pair.
func (p *PPU) loadSpritesForNextScanline() {
	spriteHeight := 8
	if p.ppuCtrl&0x20 != 0 {
		spriteHeight = 16
	}
	targetLine := p.scanline + 1

	for i := 0; i < p.spriteCount; i++ {
		y := p.secondaryOAM[i*4]
		tile := p.secondaryOAM[i*4+1]
		attr := p.secondaryOAM[i*4+2]
		xPos := p.secondaryOAM[i*4+3]

		row := targetLine - int(y)
		if attr&0x80 != 0 { // Vertical flip
			row = spriteHeight - 1 - row
		}

		var base uint16
		var tileIndex uint8
		if spriteHeight == 16 {
			base = uint16(tile&0x01) * 0x1000
			tileIndex = tile &^ 0x01
			if row >= 8 {
				tileIndex++
				row -= 8
			}
		} else {
			if p.ppuCtrl&0x08 != 0 {
				base = 0x1000
			}
			tileIndex = tile
		}

		addr := base + uint16(tileIndex)*16 + uint16(row)
		lo := p.memory.Read(addr)
		hi := p.memory.Read(addr + 8)

		if attr&0x40 != 0 { // Horizontal flip
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.sprites[i].patternLo = lo
		p.sprites[i].patternHi = hi
		p.sprites[i].attribute = attr
		p.sprites[i].x = xPos
	}
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// outputPixel computes and writes the composited pixel for screen column x
// on the current visible scanline.
func (p *PPU) outputPixel(x int) {
	bgPixel, bgPalette := p.backgroundPixel(x)
	spritePixel, spritePalette, spritePriority, spriteZero := p.spritePixel(x)

	if bgPixel == 0 && spritePixel == 0 {
		p.writePixel(x, p.paletteColor(0, 0))
		return
	}

	if bgPixel != 0 && spritePixel != 0 && spriteZero && x != 255 {
		if p.backgroundEnabled && p.spritesEnabled {
			if x >= 8 || (p.ppuMask&0x02 != 0 && p.ppuMask&0x04 != 0) {
				p.sprite0Hit = true
				p.ppuStatus |= 0x40
			}
		}
	}

	switch {
	case bgPixel == 0:
		p.writePixel(x, p.paletteColor(1, uint16(spritePalette)<<2|uint16(spritePixel)))
	case spritePixel == 0:
		p.writePixel(x, p.paletteColor(0, uint16(bgPalette)<<2|uint16(bgPixel)))
	case spritePriority:
		p.writePixel(x, p.paletteColor(0, uint16(bgPalette)<<2|uint16(bgPixel)))
	default:
		p.writePixel(x, p.paletteColor(1, uint16(spritePalette)<<2|uint16(spritePixel)))
	}
}

func (p *PPU) backgroundPixel(x int) (uint8, uint8) {
	if !p.backgroundEnabled || (x < 8 && p.ppuMask&0x02 == 0) {
		return 0, 0
	}
	shift := uint(15 - p.x)
	lo := uint8((p.bgShiftPatternLo >> shift) & 1)
	hi := uint8((p.bgShiftPatternHi >> shift) & 1)
	palLo := uint8((p.bgShiftAttrLo >> shift) & 1)
	palHi := uint8((p.bgShiftAttrHi >> shift) & 1)
	return hi<<1 | lo, palHi<<1 | palLo
}

func (p *PPU) spritePixel(x int) (pixel uint8, palette uint8, priorityBehind bool, isZero bool) {
	if !p.spritesEnabled || (x < 8 && p.ppuMask&0x04 == 0) {
		return 0, 0, false, false
	}
	for i := 0; i < p.spriteCount; i++ {
		s := &p.sprites[i]
		offset := x - int(s.x)
		if offset < 0 || offset > 7 {
			continue
		}
		lo := (s.patternLo >> uint(7-offset)) & 1
		hi := (s.patternHi >> uint(7-offset)) & 1
		px := hi<<1 | lo
		if px == 0 {
			continue
		}
		return px, s.attribute & 0x03, s.attribute&0x20 != 0, s.isSprite0
	}
	return 0, 0, false, false
}

func (p *PPU) paletteColor(isSprite uint16, paletteAndPixel uint16) uint32 {
	var addr uint16
	if paletteAndPixel&0x03 == 0 {
		addr = 0x3F00 // Universal background color for transparent pixels
	} else {
		addr = 0x3F00 | (isSprite << 4) | paletteAndPixel
	}
	colorIndex := p.memory.Read(addr) & 0x3F
	if p.ppuMask&0x01 != 0 {
		colorIndex &= 0x30 // Greyscale
	}
	return NESColorToRGB(colorIndex)
}

func (p *PPU) writePixel(x int, color uint32) {
	p.frameBuffer[p.scanline*256+x] = color
}

func (p *PPU) updateRenderingFlags() {
	p.backgroundEnabled = (p.ppuMask & 0x08) != 0
	p.spritesEnabled = (p.ppuMask & 0x10) != 0
	p.renderingEnabled = p.backgroundEnabled || p.spritesEnabled
}

func (p *PPU) writePPUScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | (uint16(value) >> 3)
		p.x = value & 0x07
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | ((uint16(value) & 0x07) << 12)
		p.t = (p.t & 0xFC1F) | ((uint16(value) & 0xF8) << 2)
		p.w = false
	}
}

func (p *PPU) writePPUAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x80FF) | ((uint16(value) & 0x3F) << 8)
		p.w = true
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) readPPUData() uint8 {
	var data uint8
	if p.memory == nil {
		data = 0
	} else if p.v >= 0x3F00 {
		data = p.memory.Read(p.v)
		p.readBuffer = p.memory.Read(p.v & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.memory.Read(p.v)
	}
	p.incrementVRAMAddress()
	return data
}

func (p *PPU) writePPUData(value uint8) {
	if p.memory != nil {
		p.memory.Write(p.v, value)
	}
	p.incrementVRAMAddress()
}

func (p *PPU) incrementVRAMAddress() {
	if p.ppuCtrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v += 1
	}
	p.v &= 0x3FFF
}

// GetFrameBuffer returns the current frame buffer.
func (p *PPU) GetFrameBuffer() [256 * 240]uint32 {
	return p.frameBuffer
}

// GetFrameCount returns the number of completed frames.
func (p *PPU) GetFrameCount() uint64 {
	return p.frameCount
}

// SetFrameCount sets the frame counter, used to keep the bus's counter in sync.
func (p *PPU) SetFrameCount(count uint64) {
	p.frameCount = count
}

// GetScanline returns the current scanline (-1..260).
func (p *PPU) GetScanline() int {
	return p.scanline
}

// GetCycle returns the current dot (0..340).
func (p *PPU) GetCycle() int {
	return p.cycle
}

// IsRenderingEnabled reports whether background or sprite rendering is on.
func (p *PPU) IsRenderingEnabled() bool {
	return p.renderingEnabled
}

// IsVBlank reports whether PPUSTATUS bit 7 is currently set.
func (p *PPU) IsVBlank() bool {
	return p.ppuStatus&0x80 != 0
}

// GetCycleCount returns the total number of dots ticked since reset.
func (p *PPU) GetCycleCount() uint64 {
	return p.cycleCount
}

// ClearFrameBuffer fills the frame buffer with a single color.
func (p *PPU) ClearFrameBuffer(color uint32) {
	for i := range p.frameBuffer {
		p.frameBuffer[i] = color
	}
}

func (p *PPU) getCoarseX() int { return int(p.v & 0x001F) }
func (p *PPU) getCoarseY() int { return int((p.v >> 5) & 0x001F) }
func (p *PPU) getFineY() int   { return int((p.v >> 12) & 0x0007) }

// incrementX increments coarse X, wrapping to the adjacent horizontal
// nametable at the tile boundary.
func (p *PPU) incrementX() {
	if (p.v & 0x001F) == 31 {
		p.v &= ^uint16(0x001F)
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementY increments fine Y, wrapping coarse Y (and the vertical
// nametable, except at the 31-row edge case) on overflow.
func (p *PPU) incrementY() {
	if (p.v & 0x7000) != 0x7000 {
		p.v += 0x1000
	} else {
		p.v &= ^uint16(0x7000)
		y := (p.v & 0x03E0) >> 5
		switch y {
		case 29:
			y = 0
			p.v ^= 0x0800
		case 31:
			y = 0
		default:
			y++
		}
		p.v = (p.v &^ uint16(0x03E0)) | (y << 5)
	}
}

func (p *PPU) copyX() {
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

func (p *PPU) copyY() {
	p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
}

// NES 2C02 NTSC master palette.
var nesColorPalette = [64]uint32{
	0xFF666666, 0xFF002A88, 0xFF1412A7, 0xFF3B00A4, 0xFF5C007E, 0xFF6E0040, 0xFF6C0600, 0xFF561D00,
	0xFF333500, 0xFF0B4800, 0xFF005200, 0xFF004F08, 0xFF00404D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFADADAD, 0xFF155FD9, 0xFF4240FF, 0xFF7527FE, 0xFFA01ACC, 0xFFB71E7B, 0xFFB53120, 0xFF994E00,
	0xFF6B6D00, 0xFF388700, 0xFF0C9300, 0xFF008F32, 0xFF007C8D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFF64B0FF, 0xFF9290FF, 0xFFC676FF, 0xFFF36AFF, 0xFFFE6ECC, 0xFFFE8170, 0xFFEA9E22,
	0xFFBCBE00, 0xFF88D800, 0xFF5CE430, 0xFF45E082, 0xFF48CDDE, 0xFF4F4F4F, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFFC0DFFF, 0xFFD3D2FF, 0xFFE8C8FF, 0xFFFBC2FF, 0xFFFEC4EA, 0xFFFECCC5, 0xFFF7D8A5,
	0xFFE4E594, 0xFFCFF29B, 0xFFBEFBB3, 0xFFB8F8D8, 0xFFB8F8F8, 0xFF000000, 0xFF000000, 0xFF000000,
}

// NESColorToRGB converts a 6-bit NES master-palette index to a 24-bit RGB value.
func NESColorToRGB(colorIndex uint8) uint32 {
	if colorIndex >= 64 {
		return 0
	}
	return nesColorPalette[colorIndex] & 0x00FFFFFF
}
