package memory

// PPU is the subset of a Picture Processing Unit the bus dispatches to.
type PPU interface {
	ReadVRAM(addr uint16) uint8
	WriteVRAM(addr uint16, value uint8)
	ReadOAM(addr uint16) uint8
	WriteOAM(addr uint16, value uint8)
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}

// APU is the subset of an Audio Processing Unit the bus dispatches to.
// Its register range (FF10-FF3F) is flat, so the Memory contract alone
// is enough.
type APU interface {
	Memory
}

// Cartridge is the subset of a cartridge the bus dispatches to: ROM at
// 0x0000-0x7FFF and external RAM at 0xA000-0xBFFF.
type Cartridge interface {
	Memory
}

// Bus is a minimal host-bus stand-in that routes reads and writes by
// address range to whichever component owns that range. It exists to
// exercise the PPU/APU/cartridge register contracts end-to-end in
// tests — it is not a CPU-driving MMU: there is no
// interrupt dispatch, no DMA, no timer, no joypad here.
type Bus struct {
	cartridge Cartridge
	ppu       PPU
	apu       APU

	wram [0x2000]uint8 // C000-DFFF
	hram [0x7F]uint8   // FF80-FFFE
	io   [0x80]uint8   // FF00-FF7F, for registers no component claims
	ie   uint8         // FFFF
}

// NewBus creates an empty bus. Attach components with SetCartridge,
// SetPPU, and SetAPU before driving it.
func NewBus() *Bus {
	return &Bus{}
}

// SetCartridge attaches the cartridge that owns 0x0000-0x7FFF and 0xA000-0xBFFF.
func (b *Bus) SetCartridge(cart Cartridge) { b.cartridge = cart }

// SetPPU attaches the PPU that owns VRAM, OAM, and FF40-FF4B/FF4F.
func (b *Bus) SetPPU(ppu PPU) { b.ppu = ppu }

// SetAPU attaches the APU that owns FF10-FF3F.
func (b *Bus) SetAPU(apu APU) { b.apu = apu }

// Read reads a byte from the full 16-bit address space.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x8000, addr >= 0xA000 && addr < 0xC000:
		if b.cartridge != nil {
			return b.cartridge.Read(addr)
		}
		return 0xFF

	case addr < 0xA000:
		if b.ppu != nil {
			return b.ppu.ReadVRAM(addr - 0x8000)
		}
		return 0xFF

	case addr < 0xE000:
		return b.wram[(addr-0xC000)&0x1FFF]

	case addr < 0xFE00:
		return b.wram[(addr-0xE000)&0x1FFF] // echo RAM

	case addr < 0xFEA0:
		if b.ppu != nil {
			return b.ppu.ReadOAM(addr - 0xFE00)
		}
		return 0xFF

	case addr < 0xFF00:
		return 0xFF // not usable

	case addr < 0xFF80:
		return b.readIO(addr)

	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]

	default: // 0xFFFF
		return b.ie
	}
}

// Write writes a byte to the full 16-bit address space.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x8000, addr >= 0xA000 && addr < 0xC000:
		if b.cartridge != nil {
			b.cartridge.Write(addr, value)
		}

	case addr < 0xA000:
		if b.ppu != nil {
			b.ppu.WriteVRAM(addr-0x8000, value)
		}

	case addr < 0xE000:
		b.wram[(addr-0xC000)&0x1FFF] = value

	case addr < 0xFE00:
		b.wram[(addr-0xE000)&0x1FFF] = value

	case addr < 0xFEA0:
		if b.ppu != nil {
			b.ppu.WriteOAM(addr-0xFE00, value)
		}

	case addr < 0xFF00:
		// not usable, writes dropped

	case addr < 0xFF80:
		b.writeIO(addr, value)

	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value

	default: // 0xFFFF
		b.ie = value
	}
}

func (b *Bus) readIO(addr uint16) uint8 {
	switch {
	case addr >= 0xFF10 && addr <= 0xFF3F:
		if b.apu != nil {
			return b.apu.Read(addr)
		}
		return 0xFF
	case addr >= 0xFF40 && addr <= 0xFF4B, addr == 0xFF4F:
		if b.ppu != nil {
			return b.ppu.ReadRegister(addr)
		}
		return 0xFF
	default:
		return b.io[addr-0xFF00]
	}
}

func (b *Bus) writeIO(addr uint16, value uint8) {
	switch {
	case addr >= 0xFF10 && addr <= 0xFF3F:
		if b.apu != nil {
			b.apu.Write(addr, value)
		}
	case addr >= 0xFF40 && addr <= 0xFF4B, addr == 0xFF4F:
		if b.ppu != nil {
			b.ppu.WriteRegister(addr, value)
		}
	default:
		b.io[addr-0xFF00] = value
	}
}

// ReadStrict behaves like Read but reports ErrBadAddress when the
// owning component for addr has not been attached, instead of
// silently returning 0xFF. Use this when a missing component is a
// configuration bug rather than expected hardware behavior.
func (b *Bus) ReadStrict(addr uint16) (uint8, error) {
	if !b.owned(addr) {
		return 0, ErrBadAddress
	}
	return b.Read(addr), nil
}

// WriteStrict behaves like Write but reports ErrBadAddress when the
// owning component for addr has not been attached.
func (b *Bus) WriteStrict(addr uint16, value uint8) error {
	if !b.owned(addr) {
		return ErrBadAddress
	}
	b.Write(addr, value)
	return nil
}

func (b *Bus) owned(addr uint16) bool {
	switch {
	case addr < 0x8000, addr >= 0xA000 && addr < 0xC000:
		return b.cartridge != nil
	case addr < 0xA000:
		return b.ppu != nil
	case addr >= 0xFE00 && addr < 0xFEA0:
		return b.ppu != nil
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.apu != nil
	case (addr >= 0xFF40 && addr <= 0xFF4B) || addr == 0xFF4F:
		return b.ppu != nil
	default:
		return true // WRAM/HRAM/IE/echo/unusable are always bus-owned
	}
}
