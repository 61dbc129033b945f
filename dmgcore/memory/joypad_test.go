package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeypadPressReleaseSymmetry(t *testing.T) {
	k := NewKeypad()

	k.WriteSelect(0x10) // bit4=1 (dpad off), bit5=0 (buttons selected)
	assert.Equal(t, uint8(0xDF), k.Read())

	transitioned := k.Press(JoypadA)
	assert.True(t, transitioned)
	assert.Equal(t, uint8(0xDE), k.Read())

	// Pressing an already-pressed key is not a transition.
	assert.False(t, k.Press(JoypadA))

	k.Release(JoypadA)
	assert.Equal(t, uint8(0xDF), k.Read())
}

func TestKeypadDpadSelection(t *testing.T) {
	k := NewKeypad()

	k.WriteSelect(0x20) // bit4=0 (dpad selected), bit5=1 (buttons off)
	k.Press(JoypadUp)
	assert.Equal(t, uint8(0xEB), k.Read())
}

func TestKeypadBothSelectedANDsRows(t *testing.T) {
	k := NewKeypad()

	k.WriteSelect(0x00) // both rows selected
	k.Press(JoypadA)
	k.Press(JoypadUp)

	assert.Equal(t, uint8(0xCA), k.Read())
}

func TestKeypadNoSelectionReadsHigh(t *testing.T) {
	k := NewKeypad()
	k.WriteSelect(0x30)
	assert.Equal(t, uint8(0xFF), k.Read())
}
