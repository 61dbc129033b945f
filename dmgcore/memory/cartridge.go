package memory

import (
	"fmt"
	"strings"
)

const titleLength = 11

const (
	titleAddress          = 0x134
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	headerChecksumAddress = 0x14D
)

// MBCType identifies which memory bank controller a cartridge requires.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
)

// Cartridge holds the raw ROM image and the header fields needed to pick
// and configure a memory bank controller.
type Cartridge struct {
	data         []byte
	title        string
	mbcType      MBCType
	hasBattery   bool
	ramBankCount uint8
}

// NewCartridge creates an empty cartridge, useful only for debugging purposes.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:    make([]byte, 0x8000),
		mbcType: NoMBCType,
	}
}

// NewCartridgeWithData parses a ROM image's header and builds a Cartridge.
// It fails if the cartridge type byte names an MBC this module does not
// implement (anything other than MBC0 or MBC1).
func NewCartridgeWithData(bytes []byte) (*Cartridge, error) {
	if len(bytes) <= int(headerChecksumAddress) {
		return nil, fmt.Errorf("cartridge image too small: %d bytes", len(bytes))
	}

	cartType := bytes[cartridgeTypeAddress]
	mbcType, hasBattery, err := classifyCartridgeType(cartType)
	if err != nil {
		return nil, err
	}

	titleEnd := titleAddress + titleLength
	if titleEnd > len(bytes) {
		titleEnd = len(bytes)
	}

	cart := &Cartridge{
		data:         make([]byte, len(bytes)),
		title:        strings.TrimRight(string(bytes[titleAddress:titleEnd]), "\x00"),
		mbcType:      mbcType,
		hasBattery:   hasBattery,
		ramBankCount: ramBankCount(bytes[ramSizeAddress]),
	}

	copy(cart.data, bytes)

	return cart, nil
}

// classifyCartridgeType maps the 0x147 header byte to a supported MBCType.
// Only cartridge type 0x00 (ROM only) and 0x01-0x03 (MBC1 family) are
// supported; every other type is a load-time error.
func classifyCartridgeType(cartType uint8) (MBCType, bool, error) {
	switch cartType {
	case 0x00:
		return NoMBCType, false, nil
	case 0x01:
		return MBC1Type, false, nil
	case 0x02:
		return MBC1Type, false, nil
	case 0x03:
		return MBC1Type, true, nil
	default:
		return NoMBCType, false, fmt.Errorf("unsupported cartridge type 0x%02X", cartType)
	}
}

// ramBankCount decodes the 0x149 header byte into a count of 8 KiB RAM
// banks, per the literal size table: 1->2 KiB, 2->8 KiB, 3->32 KiB, 4->128 KiB.
func ramBankCount(code uint8) uint8 {
	switch code {
	case 0x01:
		return 1 // 2 KiB, partial bank
	case 0x02:
		return 1 // 8 KiB
	case 0x03:
		return 4 // 32 KiB
	case 0x04:
		return 16 // 128 KiB
	default:
		return 0
	}
}

// Title returns the cartridge's ASCII title as read from the header.
func (c *Cartridge) Title() string {
	return c.title
}

// ReadByte reads a byte at the specified address. Does not check bounds, so the caller must make sure the
// address is valid for the cartridge.
func (c *Cartridge) ReadByte(addr uint16) uint8 {
	return c.data[addr]
}
