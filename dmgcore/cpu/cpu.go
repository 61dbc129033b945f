package cpu

import (
	"fmt"
	"log/slog"

	"github.com/kalleberg/dmgcore/dmgcore/addr"
	"github.com/kalleberg/dmgcore/dmgcore/bit"
	"github.com/kalleberg/dmgcore/dmgcore/memory"
)

// Flag is one of the 4 flags held in the high nibble of F.
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// CPU is the Sharp LR35902 register file plus the interrupt/HALT state
// machine that drives it. It holds the MMU it executes against but never
// owns it: the MMU is the sole owner of every other peripheral, and the
// CPU borrows it for the duration of each Step.
type CPU struct {
	memory *memory.MMU

	a, b, c, d, e, h, l, f uint8
	sp, pc                 uint16

	ime        bool
	halted     bool
	eiPending  int
	diPending  int

	logger *slog.Logger
}

// New returns a CPU initialized to the documented DMG post-boot-ROM state:
// A=0x01 F=0xB0 BC=0x0013 DE=0x00D8 HL=0x014D SP=0xFFFE PC=0x0100, IME set,
// IE and IF both cleared, PPU in HBlank at LY=0.
func New(m *memory.MMU) *CPU {
	c := &CPU{
		memory: m,
		sp:     0xFFFE,
		pc:     0x0100,
		ime:    true,
		logger: slog.Default().With("component", "cpu"),
	}
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	m.Write(addr.IE, 0x00)
	m.Write(addr.IF, 0x00)
	return c
}

func (c *CPU) PC() uint16 { return c.pc }
func (c *CPU) SP() uint16 { return c.sp }
func (c *CPU) A() uint8   { return c.a }
func (c *CPU) F() uint8   { return c.f }
func (c *CPU) BC() uint16 { return c.bc() }
func (c *CPU) DE() uint16 { return c.de() }
func (c *CPU) HL() uint16 { return c.hl() }
func (c *CPU) AF() uint16 { return c.af() }
func (c *CPU) IME() bool  { return c.ime }
func (c *CPU) Halted() bool { return c.halted }

func (c *CPU) setFlag(flag Flag)   { c.f |= uint8(flag) }
func (c *CPU) resetFlag(flag Flag) { c.f &^= uint8(flag) }

func (c *CPU) setFlagToCondition(flag Flag, cond bool) {
	if cond {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

func (c *CPU) flagBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) fetchByte() uint8 {
	v := c.memory.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetchWord() uint16 {
	low := c.fetchByte()
	high := c.fetchByte()
	return bit.Combine(high, low)
}

func (c *CPU) pushStack(v uint16) {
	c.sp--
	c.memory.Write(c.sp, bit.High(v))
	c.sp--
	c.memory.Write(c.sp, bit.Low(v))
}

func (c *CPU) popStack() uint16 {
	low := c.memory.Read(c.sp)
	c.sp++
	high := c.memory.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

// Step runs the interrupt-dispatch check, then either the HALT idle or one
// instruction fetch/execute, and returns the M-cycle count consumed.
func (c *CPU) Step() int {
	c.serviceEIDIPending()

	woke, cycles, dispatched := c.checkInterrupts()
	if dispatched {
		return cycles
	}
	if c.halted && !woke {
		return 1
	}

	opcode := c.fetchByte()
	return c.execute(opcode)
}

func (c *CPU) serviceEIDIPending() {
	if c.eiPending > 0 {
		c.eiPending--
		if c.eiPending == 0 {
			c.ime = true
		}
	}
	if c.diPending > 0 {
		c.diPending--
		if c.diPending == 0 {
			c.ime = false
		}
	}
}

// checkInterrupts implements the dispatch algorithm: wake on any triggered
// interrupt regardless of IME, but only push/jump/clear-IF when IME is set.
func (c *CPU) checkInterrupts() (woke bool, cycles int, dispatched bool) {
	ie := c.memory.Read(addr.IE)
	ifReg := c.memory.Read(addr.IF)
	triggered := ie & ifReg & 0x1F
	if triggered == 0 {
		return false, 0, false
	}

	c.halted = false

	if !c.ime {
		return true, 0, false
	}

	c.ime = false
	n := lowestSetBitIndex(triggered)
	c.memory.Write(addr.IF, bit.Reset(n, ifReg))
	c.pushStack(c.pc)
	c.pc = 0x0040 + 8*uint16(n)
	return true, 4, true
}

func lowestSetBitIndex(v uint8) uint8 {
	for i := uint8(0); i < 5; i++ {
		if v&(1<<i) != 0 {
			return i
		}
	}
	panic(fmt.Sprintf("lowestSetBitIndex: no bit set in 0x%02X", v))
}
