// Package ppu implements the Picture Processing Unit: the mode state
// machine, VRAM/OAM memory map, and scanline renderer shared by the
// monochrome and color console. The CPU, the real MMU/interrupt
// dispatcher, and any host presenter (the thing that actually puts the
// framebuffer on a screen) are external collaborators and are not
// implemented here.
package ppu

import "github.com/milohale/dmgcore/internal/interrupt"

const (
	// ScreenWidth is the screen width in pixels.
	ScreenWidth = 160
	// ScreenHeight is the screen height in pixels.
	ScreenHeight = 144
)

// Mode selects between monochrome and color register/rendering rules.
// The two consoles share almost everything; the handful of places they
// diverge (VRAM banking, tile attributes, sprite-vs-background
// priority) are gated on this field rather than on a second PPU type.
type Mode int

const (
	// ModeDMG is the original monochrome console.
	ModeDMG Mode = iota
	// ModeCGB is the color console.
	ModeCGB
)

const (
	// ModeHBlank is the PPU mode for H-Blank (end of scanline).
	ModeHBlank = 0
	// ModeVBlank is the PPU mode for V-Blank (vertical blank period).
	ModeVBlank = 1
	// ModeOAMScan is the PPU mode for OAM Scan (searching for sprites).
	ModeOAMScan = 2
	// ModeDrawing is the PPU mode for drawing pixels.
	ModeDrawing = 3
)

const (
	// DotsOAMScan is the duration of Mode 2 (OAM Scan) in dots.
	DotsOAMScan = 80
	// DotsDrawing is the fixed duration of Mode 3 (Drawing) in dots.
	// Real hardware stretches Mode 3 depending on sprite/window
	// activity; this core treats it as a constant, per the scope
	// decision documented in DESIGN.md.
	DotsDrawing = 172
	// DotsPerScanline is the total number of dots per scanline.
	DotsPerScanline = 456
	// ScanlinesVisible is the number of visible scanlines.
	ScanlinesVisible = 144
	// ScanlinesVBlank is the number of V-Blank scanlines.
	ScanlinesVBlank = 10
	// ScanlinesTotal is the total number of scanlines per frame.
	ScanlinesTotal = ScanlinesVisible + ScanlinesVBlank
)

const (
	// VRAMBankSize is the size of a single VRAM bank in bytes.
	VRAMBankSize = 0x2000
	// OAMSize is the size of OAM in bytes (160 bytes).
	OAMSize = 0xA0
)

const (
	// LCDCLCDEnable is the LCDC bit for LCD & PPU enable.
	LCDCLCDEnable = 1 << 7
	// LCDCWindowTileMap is the LCDC bit for Window Tile Map select.
	LCDCWindowTileMap = 1 << 6
	// LCDCWindowEnable is the LCDC bit for Window Display Enable.
	LCDCWindowEnable = 1 << 5
	// LCDCBGTileData is the LCDC bit for BG & Window Tile Data select.
	LCDCBGTileData = 1 << 4
	// LCDCBGTileMap is the LCDC bit for BG Tile Map select.
	LCDCBGTileMap = 1 << 3
	// LCDCOBJSize is the LCDC bit for OBJ (sprite) size (0=8x8, 1=8x16).
	LCDCOBJSize = 1 << 2
	// LCDCOBJEnable is the LCDC bit for OBJ (sprite) Display Enable.
	LCDCOBJEnable = 1 << 1
	// LCDCBGWindowEnable is BG&Window enable on DMG, BG-and-window-vs-
	// sprite priority on CGB.
	LCDCBGWindowEnable = 1 << 0
)

const (
	// STATLYCInterrupt selects the LYC=LY condition for the STAT interrupt.
	STATLYCInterrupt = 1 << 6
	// STATMode2Interrupt selects the Mode 2 (OAM Scan) condition.
	STATMode2Interrupt = 1 << 5
	// STATMode1Interrupt selects the Mode 1 (V-Blank) condition.
	STATMode1Interrupt = 1 << 4
	// STATMode0Interrupt selects the Mode 0 (H-Blank) condition.
	STATMode0Interrupt = 1 << 3
	// STATLYCFlag is the read-only LYC=LY flag.
	STATLYCFlag = 1 << 2
	// statSelectMask is the set of STAT bits a write may change; the
	// mode bits and the LYC flag are computed on read.
	statSelectMask = 0b0111_1000
)

// Tile attribute bits (CGB tile map byte 1 and sprite OAM attribute byte).
const (
	AttrPriority  = 1 << 7
	AttrYFlip     = 1 << 6
	AttrXFlip     = 1 << 5
	AttrPaletteNo = 1 << 4
	AttrBank      = 1 << 3
)

// priority records, per background pixel on the current line, whether
// a sprite drawn over it is allowed to win. Mirrors the three-way
// distinction the color console's priority rules need: a pixel with
// color index 0 never wins over a sprite; a BG-priority-flagged pixel
// wins over any non-transparent sprite; a normal pixel loses to sprites.
type priority int

const (
	priorityColor0 priority = iota
	priorityHigh
	priorityNormal
)

// sprite is a single scanline-local OAM entry, buffered during OAM
// scan and consumed during sprite rendering.
type sprite struct {
	x, y      int16
	tileIndex uint8
	attrs     uint8
}

// PPU is the Picture Processing Unit.
type PPU struct {
	mode Mode // DMG or CGB register/render rules

	// Video memory. CGB carries two 8KiB VRAM banks; DMG only ever
	// addresses bank 0. Bank 1 holds CGB tile attributes, not pixel data.
	vram     [2][VRAMBankSize]uint8
	vramBank int
	oam      [OAMSize]uint8

	// Registers
	lcdc uint8 // LCD Control (0xFF40)
	stat uint8 // LCD Status select bits only (0xFF41)
	scy  uint8 // Scroll Y (0xFF42)
	scx  uint8 // Scroll X (0xFF43)
	ly   uint8 // Current Scanline (0xFF44)
	lyc  uint8 // LY Compare (0xFF45)
	bgp  uint8 // Background Palette (0xFF47)
	obp0 uint8 // Object Palette 0 (0xFF48)
	obp1 uint8 // Object Palette 1 (0xFF49)
	wy   uint8 // Window Y Position (0xFF4A)
	wx   uint8 // Window X Position + 7 (0xFF4B)

	// State
	ppuMode    uint8  // current PPU mode (0-3)
	cycleCount uint16 // dot counter for the current scanline
	vblankRow  uint8  // scanlines elapsed within V-Blank

	bgprio [ScreenWidth]priority
	sprites []sprite

	// Framebuffer: RGBA, one scanline written per Mode-3 exit.
	framebuffer [ScreenWidth * ScreenHeight * 4]uint8

	// Interrupts is the shared pending-interrupt register the PPU
	// raises into; the bus drains it. A shared field rather than a
	// callback or a back-pointer to the bus.
	Interrupts *interrupt.Set
}

// New creates a PPU in the given mode, sharing the given interrupt set.
func New(mode Mode, interrupts *interrupt.Set) *PPU {
	p := &PPU{
		mode:       mode,
		Interrupts: interrupts,
	}
	p.powerOnRegisters()
	return p
}

func (p *PPU) powerOnRegisters() {
	p.lcdc = 0x91
	p.stat = 0
	p.bgp = 0xFC
	p.obp0 = 0xFF
	p.obp1 = 0xFF
	p.ppuMode = ModeOAMScan
	p.cycleCount = 0
	p.vblankRow = 0
}

// Cycle advances the PPU by the given number of dots (T-cycles) and
// reports whether this call completed a frame — i.e. the PPU just left
// H-Blank on the last visible scanline and entered V-Blank. Callers
// that present frames to a host use this as their synchronization
// signal.
func (p *PPU) Cycle(cycles uint16) bool {
	if p.lcdc&LCDCLCDEnable == 0 {
		return false
	}

	p.cycleCount += cycles

	// The LYC comparison runs after this call's mode advance, so the
	// interrupt fires on the call that moves LY onto LYC.
	defer func() {
		if p.ly == p.lyc && p.stat&STATLYCInterrupt != 0 {
			p.Interrupts.Raise(interrupt.LCD)
		}
	}()

	switch p.ppuMode {
	case ModeOAMScan:
		if p.cycleCount >= DotsOAMScan {
			p.ppuMode = ModeDrawing
			p.scanOAM()
		}
		return false

	case ModeDrawing:
		if p.cycleCount >= DotsOAMScan+DotsDrawing {
			p.ppuMode = ModeHBlank
			if p.stat&STATMode0Interrupt != 0 {
				p.Interrupts.Raise(interrupt.LCD)
			}
			if p.mode == ModeCGB || p.lcdc&LCDCBGWindowEnable != 0 {
				p.renderBackground()
			} else {
				p.clearScanline()
			}
			if p.lcdc&LCDCOBJEnable != 0 {
				p.renderSprites()
			}
		}
		return false

	case ModeHBlank:
		if p.cycleCount >= DotsPerScanline {
			p.ly++
			p.cycleCount -= DotsPerScanline

			if p.ly > ScanlinesVisible-1 {
				p.ppuMode = ModeVBlank
				p.Interrupts.Raise(interrupt.VBlank)
				if p.stat&STATMode1Interrupt != 0 {
					p.Interrupts.Raise(interrupt.LCD)
				}
				return true
			}
			p.ppuMode = ModeOAMScan
			if p.stat&STATMode2Interrupt != 0 {
				p.Interrupts.Raise(interrupt.LCD)
			}
		}
		return false

	case ModeVBlank:
		if p.cycleCount >= DotsPerScanline {
			p.cycleCount -= DotsPerScanline
			p.vblankRow++
			if p.vblankRow >= ScanlinesVBlank {
				p.vblankRow = 0
				p.ly = 0
				p.ppuMode = ModeOAMScan
				if p.stat&STATMode2Interrupt != 0 {
					p.Interrupts.Raise(interrupt.LCD)
				}
			} else {
				p.ly++
			}
		}
		return false
	}

	return false
}

// ReadVRAM reads a byte from the bank selected by FF4F, relative to
// 0x8000. Blocked (returns 0xFF) during Mode 3, matching hardware.
func (p *PPU) ReadVRAM(addr uint16) uint8 {
	if p.ppuMode == ModeDrawing {
		return 0xFF
	}
	if addr < VRAMBankSize {
		return p.vram[p.vramBank][addr]
	}
	return 0xFF
}

// WriteVRAM writes a byte to the bank selected by FF4F.
func (p *PPU) WriteVRAM(addr uint16, value uint8) {
	if p.ppuMode == ModeDrawing {
		return
	}
	if addr < VRAMBankSize {
		p.vram[p.vramBank][addr] = value
	}
}

// ReadOAM reads a byte from OAM (0xFE00 relative), blocked in Modes 2 and 3.
func (p *PPU) ReadOAM(addr uint16) uint8 {
	if p.ppuMode == ModeOAMScan || p.ppuMode == ModeDrawing {
		return 0xFF
	}
	if addr < OAMSize {
		return p.oam[addr]
	}
	return 0xFF
}

// WriteOAM writes a byte to OAM, blocked in Modes 2 and 3.
func (p *PPU) WriteOAM(addr uint16, value uint8) {
	if p.ppuMode == ModeOAMScan || p.ppuMode == ModeDrawing {
		return
	}
	if addr < OAMSize {
		p.oam[addr] = value
	}
}

// ReadRegister reads a PPU register (0xFF40-0xFF4B, 0xFF4F, 0xFF68-0xFF6B).
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		stat := p.stat | 0x80
		if p.ly == p.lyc {
			stat |= STATLYCFlag
		}
		return stat | (p.ppuMode & 0x03)
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	case 0xFF4F:
		return 0xFE | uint8(p.vramBank) //nolint:gosec // vramBank is 0 or 1
	default:
		return 0xFF
	}
}

// WriteRegister writes a PPU register.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0xFF40:
		p.lcdc = value
		if value&LCDCLCDEnable == 0 {
			p.ly = 0
			p.ppuMode = ModeHBlank
			p.cycleCount = 0
			p.framebuffer = [ScreenWidth * ScreenHeight * 4]uint8{}
		}
	case 0xFF41:
		p.stat = value & statSelectMask
	case 0xFF42:
		p.scy = value
	case 0xFF43:
		p.scx = value
	case 0xFF44:
		// LY is read-only.
	case 0xFF45:
		p.lyc = value
	case 0xFF47:
		p.bgp = value
	case 0xFF48:
		p.obp0 = value
	case 0xFF49:
		p.obp1 = value
	case 0xFF4A:
		p.wy = value
	case 0xFF4B:
		p.wx = value
	case 0xFF4F:
		p.vramBank = int(value & 0x01)
	}
}

// GetFramebuffer returns a pointer to the RGBA framebuffer.
func (p *PPU) GetFramebuffer() *[ScreenWidth * ScreenHeight * 4]uint8 {
	return &p.framebuffer
}

// Reset returns the PPU to its power-on state.
func (p *PPU) Reset() {
	p.vram = [2][VRAMBankSize]uint8{}
	p.vramBank = 0
	p.oam = [OAMSize]uint8{}
	p.scy, p.scx, p.lyc, p.wy, p.wx = 0, 0, 0, 0, 0
	p.ly = 0
	p.bgprio = [ScreenWidth]priority{}
	p.sprites = p.sprites[:0]
	p.framebuffer = [ScreenWidth * ScreenHeight * 4]uint8{}
	p.powerOnRegisters()
}
