// Package audio implements the sound register surface of the DMG APU.
//
// This module does not synthesize audio: it stores and echoes the register
// writes a real program performs (so ROMs that probe NR52/wave RAM behave as
// expected) and always reports silence. No channel, envelope, or mixing
// logic runs here.
package audio

import (
	"github.com/kalleberg/dmgcore/dmgcore/addr"
	"github.com/kalleberg/dmgcore/dmgcore/bit"
)

const waveRAMSize = 16

// APU is a register-accurate but silent stand-in for the DMG sound unit.
type APU struct {
	enabled bool

	nr10, nr11, nr12, nr13, nr14 uint8
	nr21, nr22, nr23, nr24       uint8
	nr30, nr31, nr32, nr33, nr34 uint8
	nr41, nr42, nr43, nr44       uint8
	nr50, nr51, nr52             uint8
	waveRAM                      [waveRAMSize]uint8
}

// New creates an APU with all channels powered off, matching DMG boot state.
func New() *APU {
	return &APU{}
}

// Tick is a no-op: this module produces no samples.
func (a *APU) Tick(cycles int) {}

// GetSamples always returns silence, sized for the requested sample count.
func (a *APU) GetSamples(count int) []int16 {
	if count <= 0 {
		return nil
	}
	return make([]int16, count*2)
}

// ReadRegister returns the stored register value, with write-only and
// always-1 bits masked in the same pattern real hardware reports.
func (a *APU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.NR10:
		return a.nr10 | 0b1000_0000
	case addr.NR11:
		return a.nr11 | 0b0011_1111
	case addr.NR12:
		return a.nr12
	case addr.NR13:
		return 0xFF
	case addr.NR14:
		return a.nr14 | 0b1011_1111
	case addr.NR21:
		return a.nr21 | 0b0011_1111
	case addr.NR22:
		return a.nr22
	case addr.NR23:
		return 0xFF
	case addr.NR24:
		return a.nr24 | 0b1011_1111
	case addr.NR30:
		return a.nr30 | 0b0111_1111
	case addr.NR31:
		return 0xFF
	case addr.NR32:
		return a.nr32 | 0b1001_1111
	case addr.NR33:
		return 0xFF
	case addr.NR34:
		return a.nr34 | 0b1011_1111
	case addr.NR41:
		return 0xFF
	case addr.NR42:
		return a.nr42
	case addr.NR43:
		return a.nr43
	case addr.NR44:
		return a.nr44 | 0b1011_1111
	case addr.NR50:
		return a.nr50
	case addr.NR51:
		return a.nr51
	case addr.NR52:
		status := uint8(0b0111_0000)
		if a.enabled {
			status = bit.Set(7, status)
		}
		return status
	}
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		return a.waveRAM[address-addr.WaveRAMStart]
	}
	return 0xFF
}

// WriteRegister stores value, ignoring writes to channel registers while
// the unit is powered off (NR52 bit 7 clear), matching real hardware.
func (a *APU) WriteRegister(address uint16, value uint8) {
	isWaveRAM := address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd

	if !a.enabled && address != addr.NR52 && !isWaveRAM {
		return
	}

	switch address {
	case addr.NR10:
		a.nr10 = value
	case addr.NR11:
		a.nr11 = value
	case addr.NR12:
		a.nr12 = value
	case addr.NR13:
		a.nr13 = value
	case addr.NR14:
		a.nr14 = value
	case addr.NR21:
		a.nr21 = value
	case addr.NR22:
		a.nr22 = value
	case addr.NR23:
		a.nr23 = value
	case addr.NR24:
		a.nr24 = value
	case addr.NR30:
		a.nr30 = value
	case addr.NR31:
		a.nr31 = value
	case addr.NR32:
		a.nr32 = value
	case addr.NR33:
		a.nr33 = value
	case addr.NR34:
		a.nr34 = value
	case addr.NR41:
		a.nr41 = value
	case addr.NR42:
		a.nr42 = value
	case addr.NR43:
		a.nr43 = value
	case addr.NR44:
		a.nr44 = value
	case addr.NR50:
		a.nr50 = value
	case addr.NR51:
		a.nr51 = value
	case addr.NR52:
		a.nr52 = value
		a.enabled = bit.IsSet(7, value)
		if !a.enabled {
			a.nr10, a.nr11, a.nr12, a.nr13, a.nr14 = 0, 0, 0, 0, 0
			a.nr21, a.nr22, a.nr23, a.nr24 = 0, 0, 0, 0
			a.nr30, a.nr31, a.nr32, a.nr33, a.nr34 = 0, 0, 0, 0, 0
			a.nr41, a.nr42, a.nr43, a.nr44 = 0, 0, 0, 0
			a.nr50, a.nr51 = 0, 0
		}
	}

	if isWaveRAM {
		a.waveRAM[address-addr.WaveRAMStart] = value
	}
}
