package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeHeader(cartType, ramSizeCode byte) []byte {
	data := make([]byte, 0x8000)
	copy(data[titleAddress:titleAddress+titleLength], []byte("TESTGAME"))
	data[cartridgeTypeAddress] = cartType
	data[ramSizeAddress] = ramSizeCode
	return data
}

func TestNewCartridgeWithData_NoMBC(t *testing.T) {
	cart, err := NewCartridgeWithData(makeHeader(0x00, 0x00))
	require.NoError(t, err)
	assert.Equal(t, NoMBCType, cart.mbcType)
	assert.False(t, cart.hasBattery)
	assert.Equal(t, "TESTGAME", cart.Title())
}

func TestNewCartridgeWithData_MBC1Variants(t *testing.T) {
	cart, err := NewCartridgeWithData(makeHeader(0x01, 0x00))
	require.NoError(t, err)
	assert.Equal(t, MBC1Type, cart.mbcType)
	assert.False(t, cart.hasBattery)

	cart, err = NewCartridgeWithData(makeHeader(0x03, 0x03))
	require.NoError(t, err)
	assert.Equal(t, MBC1Type, cart.mbcType)
	assert.True(t, cart.hasBattery)
	assert.Equal(t, uint8(4), cart.ramBankCount)
}

func TestNewCartridgeWithData_UnsupportedType(t *testing.T) {
	_, err := NewCartridgeWithData(makeHeader(0x05, 0x00)) // MBC2
	require.Error(t, err)

	_, err = NewCartridgeWithData(makeHeader(0x19, 0x00)) // MBC5
	require.Error(t, err)
}

func TestRamBankCount(t *testing.T) {
	tests := []struct {
		code uint8
		want uint8
	}{
		{0x00, 0},
		{0x01, 1},
		{0x02, 1},
		{0x03, 4},
		{0x04, 16},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ramBankCount(tt.code))
	}
}
