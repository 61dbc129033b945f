package cpu

import "github.com/kalleberg/dmgcore/dmgcore/bit"

// Register pair accessors. The DMG has no real 16-bit register storage;
// BC/DE/HL/AF are always the combination of two 8-bit halves, so these
// just combine/split the CPU's individual fields.

func (c *CPU) af() uint16 { return bit.Combine(c.a, c.f) }
func (c *CPU) bc() uint16 { return bit.Combine(c.b, c.c) }
func (c *CPU) de() uint16 { return bit.Combine(c.d, c.e) }
func (c *CPU) hl() uint16 { return bit.Combine(c.h, c.l) }

func (c *CPU) setAF(v uint16) {
	c.a = bit.High(v)
	c.f = bit.Low(v) & 0xF0 // the low nibble of F doesn't exist in hardware
}

func (c *CPU) setBC(v uint16) {
	c.b = bit.High(v)
	c.c = bit.Low(v)
}

func (c *CPU) setDE(v uint16) {
	c.d = bit.High(v)
	c.e = bit.Low(v)
}

func (c *CPU) setHL(v uint16) {
	c.h = bit.High(v)
	c.l = bit.Low(v)
}

// reg8 returns a pointer to the 8-bit register selected by a 3-bit index
// in the conventional order B,C,D,E,H,L,(HL),A. Index 6, (HL), has no
// register storage and must be handled by the caller via memory access.
func (c *CPU) reg8(index uint8) *uint8 {
	switch index & 0x7 {
	case 0:
		return &c.b
	case 1:
		return &c.c
	case 2:
		return &c.d
	case 3:
		return &c.e
	case 4:
		return &c.h
	case 5:
		return &c.l
	case 7:
		return &c.a
	default:
		return nil
	}
}

// getReg8 reads the register/memory operand selected by index, routing
// index 6 through (HL).
func (c *CPU) getReg8(index uint8) uint8 {
	if index&0x7 == 6 {
		return c.memory.Read(c.hl())
	}
	return *c.reg8(index)
}

// setReg8 writes the register/memory operand selected by index.
func (c *CPU) setReg8(index uint8, value uint8) {
	if index&0x7 == 6 {
		c.memory.Write(c.hl(), value)
		return
	}
	*c.reg8(index) = value
}
