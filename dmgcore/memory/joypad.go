package memory

import "github.com/kalleberg/dmgcore/dmgcore/bit"

// JoypadKey represents a key on the Gameboy joypad.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Keypad tracks the state of the eight DMG buttons and renders them onto
// the P1 register according to the column selected by bits 4-5.
//
// Two rows, both active-low, 4 bits each:
//   - buttons row: bit0=A, bit1=B, bit2=Select, bit3=Start
//   - d-pad row:   bit0=Right, bit1=Left, bit2=Up, bit3=Down
//
// 0 means pressed, 1 means released. Bits 6-7 always read as 1.
type Keypad struct {
	buttons uint8
	dpad    uint8
	select_ uint8 // raw P1 bits 4-5 as last written
}

// NewKeypad creates a Keypad with every button released.
func NewKeypad() *Keypad {
	return &Keypad{
		buttons: 0x0F,
		dpad:    0x0F,
	}
}

// keyBit returns which row a key belongs to and its bit index within it.
func keyBit(key JoypadKey) (dpad bool, index uint8) {
	switch key {
	case JoypadRight:
		return true, 0
	case JoypadLeft:
		return true, 1
	case JoypadUp:
		return true, 2
	case JoypadDown:
		return true, 3
	case JoypadA:
		return false, 0
	case JoypadB:
		return false, 1
	case JoypadSelect:
		return false, 2
	case JoypadStart:
		return false, 3
	default:
		return false, 0
	}
}

// Press clears the key's bit (pressed) and reports whether this is a
// high-to-low transition, which should raise the Joypad interrupt.
func (k *Keypad) Press(key JoypadKey) (transitioned bool) {
	dpad, index := keyBit(key)
	if dpad {
		before := k.dpad
		k.dpad = bit.Reset(index, k.dpad)
		return before != k.dpad
	}
	before := k.buttons
	k.buttons = bit.Reset(index, k.buttons)
	return before != k.buttons
}

// Release sets the key's bit back to released. Releases never raise an interrupt.
func (k *Keypad) Release(key JoypadKey) {
	dpad, index := keyBit(key)
	if dpad {
		k.dpad = bit.Set(index, k.dpad)
	} else {
		k.buttons = bit.Set(index, k.buttons)
	}
}

// WriteSelect stores the column-select bits (4-5) written to P1.
func (k *Keypad) WriteSelect(value uint8) {
	k.select_ = value & 0b0011_0000
}

// Read renders the P1 register: bits 6-7 always 1, bits 4-5 the last
// selection written, bits 0-3 the selected row(s) ANDed together.
func (k *Keypad) Read() uint8 {
	result := uint8(0b1100_0000) | k.select_

	selectDpad := !bit.IsSet(4, k.select_)
	selectButtons := !bit.IsSet(5, k.select_)

	switch {
	case selectButtons && !selectDpad:
		result |= k.buttons & 0x0F
	case selectDpad && !selectButtons:
		result |= k.dpad & 0x0F
	case selectButtons && selectDpad:
		result |= k.buttons & k.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}
