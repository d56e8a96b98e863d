// Package apu implements the Audio Processing Unit: channel register
// decode, timing, and a push into an abstract synthesizer sink.
//
// The APU generates no samples itself. Every Cycle call recomputes
// each channel's frequency/volume/duty/pan and pushes the result into
// a synth.Params sink; turning those parameters into an actual
// waveform, resampling it, and playing it through a host audio device
// are external collaborators and are not implemented here.
package apu

import "github.com/milohale/dmgcore/internal/synth"

// cpuClockHz is the console's fixed T-cycle clock.
const cpuClockHz = 4 * 1024 * 1024

// hzToCycles returns the number of T-cycles between edges of a signal
// at the given frequency, truncated like the reference implementation
// this timing model is grounded on.
func hzToCycles(hz uint32) uint32 {
	return cpuClockHz / hz
}

// Panning bits for NR51: low nibble routes a channel to the right
// speaker, high nibble to the left.
const (
	PanCH1Right = 1 << 0
	PanCH2Right = 1 << 1
	PanCH3Right = 1 << 2
	PanCH4Right = 1 << 3
	PanCH1Left  = 1 << 4
	PanCH2Left  = 1 << 5
	PanCH3Left  = 1 << 6
	PanCH4Left  = 1 << 7
)

// APU is the Audio Processing Unit.
type APU struct {
	enabled bool // NR52 bit 7

	channel1 *PulseChannel // NR1x, with sweep
	channel2 *PulseChannel // NR2x, no sweep
	channel3 *WaveChannel  // NR3x
	channel4 *NoiseChannel // NR4x

	leftVolume, rightVolume uint8 // NR50 bits 6-4 / 2-0
	vinLeft, vinRight       bool  // NR50 bits 7 / 3
	panning                 uint8 // NR51

	params *synth.Params
}

// New creates an APU that feeds the given synth parameter sink on
// every Cycle call. Pass synth.NewParams() to get a sink that
// discards everything, or set individual slots to observe specific
// channels.
func New(params *synth.Params) *APU {
	if params == nil {
		params = synth.NewParams()
	}
	return &APU{
		enabled:  true,
		channel1: NewPulseChannel(true),
		channel2: NewPulseChannel(false),
		channel3: NewWaveChannel(),
		channel4: NewNoiseChannel(),
		params:   params,
	}
}

// Cycle advances all four channels by the given number of T-cycles
// and pushes their current parameters into the synth sink.
func (a *APU) Cycle(cycles uint16) {
	if !a.enabled {
		return
	}

	a.channel1.Cycle(cycles)
	a.channel2.Cycle(cycles)
	a.channel3.Cycle(cycles)
	a.channel4.Cycle(cycles)

	s1Vol := 0.0
	if a.channel1.DACEnabled() {
		s1Vol = float64(a.channel1.Volume()) / 15.0
	}
	s2Vol := 0.0
	if a.channel2.DACEnabled() {
		s2Vol = float64(a.channel2.Volume()) / 15.0
	}
	s3Vol := 0.0
	if a.channel3.DACEnabled() {
		s3Vol = a.channel3.VolumeFraction()
	}
	s4Vol := 0.0
	if a.channel4.DACEnabled() {
		s4Vol = float64(a.channel4.Volume()) / 15.0
	}

	globalL, globalR := 0.0, 0.0
	if a.enabled {
		globalL = float64(a.leftVolume) / 15.0
		globalR = float64(a.rightVolume) / 15.0
	}

	a.params.S1Freq.SetValue(131072.0 / (2048.0 - float64(a.channel1.Period())))
	a.params.S1Vol.SetValue(s1Vol)
	a.params.S1Duty.SetValue(a.channel1.DutyFraction())
	a.params.S1Left.SetValue(synth.Gate(a.panning&PanCH1Left != 0))
	a.params.S1Right.SetValue(synth.Gate(a.panning&PanCH1Right != 0))

	a.params.S2Freq.SetValue(131072.0 / (2048.0 - float64(a.channel2.Period())))
	a.params.S2Vol.SetValue(s2Vol)
	a.params.S2Duty.SetValue(a.channel2.DutyFraction())
	a.params.S2Left.SetValue(synth.Gate(a.panning&PanCH2Left != 0))
	a.params.S2Right.SetValue(synth.Gate(a.panning&PanCH2Right != 0))

	a.params.S3Freq.SetValue(65536.0 / (2048.0 - float64(a.channel3.Period())))
	a.params.S3Vol.SetValue(s3Vol)
	a.params.S3Left.SetValue(synth.Gate(a.panning&PanCH3Left != 0))
	a.params.S3Right.SetValue(synth.Gate(a.panning&PanCH3Right != 0))

	a.params.S4Freq.SetValue(a.channel4.Frequency())
	a.params.S4Vol.SetValue(s4Vol)
	a.params.S4Left.SetValue(synth.Gate(a.panning&PanCH4Left != 0))
	a.params.S4Right.SetValue(synth.Gate(a.panning&PanCH4Right != 0))

	a.params.GlobalLeft.SetValue(globalL)
	a.params.GlobalRight.SetValue(globalR)
}

// Read reads an APU register.
func (a *APU) Read(addr uint16) uint8 {
	switch addr {
	case 0xFF10:
		return a.channel1.ReadNR10()
	case 0xFF11:
		return a.channel1.ReadNR11()
	case 0xFF12:
		return a.channel1.ReadNR12()
	case 0xFF13:
		return a.channel1.ReadNR13()
	case 0xFF14:
		return a.channel1.ReadNR14()
	case 0xFF15:
		return 0xFF

	case 0xFF16:
		return a.channel2.ReadNR21()
	case 0xFF17:
		return a.channel2.ReadNR22()
	case 0xFF18:
		return a.channel2.ReadNR23()
	case 0xFF19:
		return a.channel2.ReadNR24()

	case 0xFF1A:
		return a.channel3.ReadNR30()
	case 0xFF1B:
		return a.channel3.ReadNR31()
	case 0xFF1C:
		return a.channel3.ReadNR32()
	case 0xFF1D:
		return a.channel3.ReadNR33()
	case 0xFF1E:
		return a.channel3.ReadNR34()

	case 0xFF20:
		return a.channel4.ReadNR41()
	case 0xFF21:
		return a.channel4.ReadNR42()
	case 0xFF22:
		return a.channel4.ReadNR43()
	case 0xFF23:
		return a.channel4.ReadNR44()

	case 0xFF24:
		return a.readNR50()
	case 0xFF25:
		return a.panning
	case 0xFF26:
		return a.readNR52()

	default:
		if addr >= 0xFF30 && addr <= 0xFF3F {
			return a.channel3.ReadWaveRAM(addr - 0xFF30)
		}
		return 0xFF
	}
}

// Write writes an APU register.
func (a *APU) Write(addr uint16, value uint8) {
	if addr == 0xFF26 {
		a.writeNR52(value)
		return
	}

	// Wave RAM remains writable even while the APU is disabled.
	if addr >= 0xFF30 && addr <= 0xFF3F {
		a.channel3.WriteWaveRAM(addr-0xFF30, value)
		return
	}

	if !a.enabled {
		return
	}

	switch addr {
	case 0xFF10:
		a.channel1.WriteNR10(value)
	case 0xFF11:
		a.channel1.WriteNR11(value)
	case 0xFF12:
		a.channel1.WriteNR12(value)
	case 0xFF13:
		a.channel1.WriteNR13(value)
	case 0xFF14:
		a.channel1.WriteNR14(value)
	case 0xFF15:
		// Unused register.

	case 0xFF16:
		a.channel2.WriteNR21(value)
	case 0xFF17:
		a.channel2.WriteNR22(value)
	case 0xFF18:
		a.channel2.WriteNR23(value)
	case 0xFF19:
		a.channel2.WriteNR24(value)

	case 0xFF1A:
		a.channel3.WriteNR30(value)
	case 0xFF1B:
		a.channel3.WriteNR31(value)
	case 0xFF1C:
		a.channel3.WriteNR32(value)
	case 0xFF1D:
		a.channel3.WriteNR33(value)
	case 0xFF1E:
		a.channel3.WriteNR34(value)

	case 0xFF20:
		a.channel4.WriteNR41(value)
	case 0xFF21:
		a.channel4.WriteNR42(value)
	case 0xFF22:
		a.channel4.WriteNR43(value)
	case 0xFF23:
		a.channel4.WriteNR44(value)

	case 0xFF24:
		a.writeNR50(value)
	case 0xFF25:
		a.panning = value
	}
}

func (a *APU) readNR50() uint8 {
	var v uint8
	if a.vinLeft {
		v |= 0x80
	}
	v |= (a.leftVolume & 0x07) << 4
	if a.vinRight {
		v |= 0x08
	}
	v |= a.rightVolume & 0x07
	return v
}

func (a *APU) writeNR50(value uint8) {
	a.vinLeft = value&0x80 != 0
	a.leftVolume = (value >> 4) & 0x07
	a.vinRight = value&0x08 != 0
	a.rightVolume = value & 0x07
}

func (a *APU) readNR52() uint8 {
	var v uint8
	if a.enabled {
		v |= 0x80
	}
	if a.channel1.IsEnabled() {
		v |= 0x01
	}
	if a.channel2.IsEnabled() {
		v |= 0x02
	}
	if a.channel3.IsEnabled() {
		v |= 0x04
	}
	if a.channel4.IsEnabled() {
		v |= 0x08
	}
	v |= 0x70
	return v
}

func (a *APU) writeNR52(value uint8) {
	wasEnabled := a.enabled
	a.enabled = value&0x80 != 0

	if wasEnabled && !a.enabled {
		a.clearOnDisable()
	}
}

// clearOnDisable clears every channel and the master-volume/panning
// registers, matching the hardware behavior of turning the APU off.
func (a *APU) clearOnDisable() {
	a.channel1.Reset()
	a.channel2.Reset()
	a.channel3.Reset()
	a.channel4.Reset()
	a.leftVolume = 0
	a.rightVolume = 0
	a.vinLeft = false
	a.vinRight = false
	a.panning = 0
}

// Reset returns the APU to its power-on state.
func (a *APU) Reset() {
	a.enabled = true
	a.clearOnDisable()
}
