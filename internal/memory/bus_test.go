package memory

import "testing"

// fakeCartridge is a minimal Cartridge stand-in for exercising the bus's
// address-range dispatch without depending on the cartridge package.
type fakeCartridge struct {
	rom [0x8000]uint8
	ram [0x2000]uint8
}

func (c *fakeCartridge) Read(addr uint16) uint8 {
	if addr < 0x8000 {
		return c.rom[addr]
	}
	return c.ram[addr-0xA000]
}

func (c *fakeCartridge) Write(addr uint16, value uint8) {
	if addr < 0x8000 {
		c.rom[addr] = value
		return
	}
	c.ram[addr-0xA000] = value
}

// fakePPU is a minimal PPU stand-in recording what address range each
// call landed on.
type fakePPU struct {
	vram [0x2000]uint8
	oam  [0xA0]uint8
	regs [0x100]uint8
}

func (p *fakePPU) ReadVRAM(addr uint16) uint8         { return p.vram[addr] }
func (p *fakePPU) WriteVRAM(addr uint16, value uint8) { p.vram[addr] = value }
func (p *fakePPU) ReadOAM(addr uint16) uint8          { return p.oam[addr] }
func (p *fakePPU) WriteOAM(addr uint16, value uint8)  { p.oam[addr] = value }
func (p *fakePPU) ReadRegister(addr uint16) uint8     { return p.regs[addr&0xFF] }
func (p *fakePPU) WriteRegister(addr uint16, value uint8) {
	p.regs[addr&0xFF] = value
}

// fakeAPU is a minimal APU stand-in; its register range is flat so the
// Memory contract alone suffices.
type fakeAPU struct {
	regs [0x100]uint8
}

func (a *fakeAPU) Read(addr uint16) uint8         { return a.regs[addr&0xFF] }
func (a *fakeAPU) Write(addr uint16, value uint8) { a.regs[addr&0xFF] = value }

func TestBusCartridgeRange(t *testing.T) {
	bus := NewBus()
	cart := &fakeCartridge{}
	bus.SetCartridge(cart)

	bus.Write(0x0100, 0x42)
	if got := bus.Read(0x0100); got != 0x42 {
		t.Errorf("ROM byte = 0x%02X, want 0x42", got)
	}

	bus.Write(0xA000, 0x7F)
	if got := bus.Read(0xA000); got != 0x7F {
		t.Errorf("cartridge RAM byte = 0x%02X, want 0x7F", got)
	}
}

func TestBusPPUVRAMAndOAM(t *testing.T) {
	bus := NewBus()
	ppu := &fakePPU{}
	bus.SetPPU(ppu)

	bus.Write(0x8123, 0x11)
	if got := bus.Read(0x8123); got != 0x11 {
		t.Errorf("VRAM byte = 0x%02X, want 0x11", got)
	}

	bus.Write(0xFE10, 0x22)
	if got := bus.Read(0xFE10); got != 0x22 {
		t.Errorf("OAM byte = 0x%02X, want 0x22", got)
	}

	bus.Write(0xFF40, 0x91)
	if got := bus.Read(0xFF40); got != 0x91 {
		t.Errorf("PPU register = 0x%02X, want 0x91", got)
	}
}

func TestBusAPURange(t *testing.T) {
	bus := NewBus()
	apu := &fakeAPU{}
	bus.SetAPU(apu)

	bus.Write(0xFF11, 0x80)
	if got := bus.Read(0xFF11); got != 0x80 {
		t.Errorf("APU register = 0x%02X, want 0x80", got)
	}
}

func TestBusWRAMAndEchoShareStorage(t *testing.T) {
	bus := NewBus()

	bus.Write(0xC010, 0x55)
	if got := bus.Read(0xE010); got != 0x55 {
		t.Errorf("echo RAM byte = 0x%02X, want 0x55 (mirrors WRAM)", got)
	}
}

func TestBusHRAMAndInterruptEnable(t *testing.T) {
	bus := NewBus()

	bus.Write(0xFF90, 0x33)
	if got := bus.Read(0xFF90); got != 0x33 {
		t.Errorf("HRAM byte = 0x%02X, want 0x33", got)
	}

	bus.Write(0xFFFF, 0x1F)
	if got := bus.Read(0xFFFF); got != 0x1F {
		t.Errorf("IE register = 0x%02X, want 0x1F", got)
	}
}

func TestBusUnattachedComponentsReadAsFF(t *testing.T) {
	bus := NewBus()

	if got := bus.Read(0x0100); got != 0xFF {
		t.Errorf("unattached ROM read = 0x%02X, want 0xFF", got)
	}
	if got := bus.Read(0x8000); got != 0xFF {
		t.Errorf("unattached VRAM read = 0x%02X, want 0xFF", got)
	}
}

func TestBusStrictReportsMissingComponents(t *testing.T) {
	bus := NewBus()

	if _, err := bus.ReadStrict(0x0100); err != ErrBadAddress {
		t.Errorf("ReadStrict on unattached cartridge range = %v, want ErrBadAddress", err)
	}

	bus.SetCartridge(&fakeCartridge{})
	if _, err := bus.ReadStrict(0x0100); err != nil {
		t.Errorf("ReadStrict with cartridge attached returned %v, want nil", err)
	}

	if err := bus.WriteStrict(0xC000, 0x01); err != nil {
		t.Errorf("WriteStrict to WRAM returned %v, want nil (always bus-owned)", err)
	}
}

func TestBusStrictOAMRequiresPPU(t *testing.T) {
	bus := NewBus()

	if err := bus.WriteStrict(0xFE00, 0x01); err != ErrBadAddress {
		t.Errorf("WriteStrict to OAM with no PPU attached = %v, want ErrBadAddress", err)
	}

	bus.SetPPU(&fakePPU{})
	if err := bus.WriteStrict(0xFE00, 0x01); err != nil {
		t.Errorf("WriteStrict to OAM with PPU attached = %v, want nil", err)
	}
}
