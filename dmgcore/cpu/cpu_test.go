package cpu

import (
	"testing"

	"github.com/kalleberg/dmgcore/dmgcore/addr"
	"github.com/kalleberg/dmgcore/dmgcore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadProgram writes bytes into WRAM (always writable, regardless of
// cartridge state) and points PC at the start of them.
func loadProgram(c *CPU, bytes ...uint8) uint16 {
	const base = 0xC000
	for i, b := range bytes {
		c.memory.Write(base+uint16(i), b)
	}
	c.pc = base
	return base
}

func TestResetState(t *testing.T) {
	c := newTestCPU()

	assert.Equal(t, uint8(0x01), c.A())
	assert.Equal(t, uint8(0xB0), c.F())
	assert.Equal(t, uint16(0xFFFE), c.SP())
	assert.Equal(t, uint16(0x0100), c.PC())
	assert.True(t, c.IME())
	assert.Equal(t, uint8(0x00), c.memory.Read(addr.IF))
	assert.Equal(t, uint8(0x00), c.memory.Read(addr.IE))
}

func TestNopAdvancesPCByOne(t *testing.T) {
	c := newTestCPU()
	base := loadProgram(c, 0x00)

	cycles := c.Step()

	assert.Equal(t, 1, cycles)
	assert.Equal(t, base+1, c.PC())
}

func TestLDAImmediateThenADD(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0x3E, 0x0F, 0xC6, 0x01) // LD A,0x0F ; ADD A,0x01

	c.Step()
	c.Step()

	assert.Equal(t, uint8(0x10), c.a)
	assert.False(t, c.isSetFlag(zeroFlag))
	assert.False(t, c.isSetFlag(subFlag))
	assert.True(t, c.isSetFlag(halfCarryFlag))
	assert.False(t, c.isSetFlag(carryFlag))
}

func TestLDAImmediateThenAddSelf(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0x3E, 0xFF, 0x87) // LD A,0xFF ; ADD A,A

	c.Step()
	c.Step()

	assert.Equal(t, uint8(0xFE), c.a)
	assert.False(t, c.isSetFlag(zeroFlag))
	assert.False(t, c.isSetFlag(subFlag))
	assert.True(t, c.isSetFlag(halfCarryFlag))
	assert.True(t, c.isSetFlag(carryFlag))
}

func TestDAAAfterAdditionScenario(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0x3E, 0x45, 0xC6, 0x38, 0x27) // LD A,0x45 ; ADD A,0x38 ; DAA

	c.Step()
	c.Step()
	c.Step()

	assert.Equal(t, uint8(0x83), c.a)
	assert.False(t, c.isSetFlag(zeroFlag))
	assert.False(t, c.isSetFlag(subFlag))
	assert.False(t, c.isSetFlag(halfCarryFlag))
	assert.False(t, c.isSetFlag(carryFlag))
}

func TestInterruptDispatchScenario(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0x00) // opcode at PC is irrelevant; dispatch preempts fetch
	startPC := c.pc

	c.ime = true
	c.memory.Write(addr.IE, 0x01)
	c.memory.Write(addr.IF, 0x01)

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.False(t, c.IME())
	assert.False(t, c.memory.ReadBit(0, addr.IF))
	assert.Equal(t, uint16(0xFFFE-2), c.SP())
	assert.Equal(t, uint16(0x0040), c.PC())

	low := c.memory.Read(c.SP())
	high := c.memory.Read(c.SP() + 1)
	assert.Equal(t, startPC, uint16(high)<<8|uint16(low))
}

func TestInterruptPriorityOrder(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0x00)

	c.ime = true
	c.memory.Write(addr.IE, 0x1F)
	c.memory.Write(addr.IF, 0b0000_0110) // LCD-STAT and Timer both pending

	c.Step()

	assert.Equal(t, uint16(0x0048), c.PC()) // LCD-STAT (bit 1) wins over Timer (bit 2)
	assert.True(t, c.memory.ReadBit(2, addr.IF))  // Timer still pending
	assert.False(t, c.memory.ReadBit(1, addr.IF)) // LCD-STAT cleared
}

func TestHaltWaitsForPendingInterruptWithoutDispatchingWhenIMEIsFalse(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0x76) // HALT
	c.ime = false

	cycles := c.Step()
	require.Equal(t, 1, cycles)
	assert.True(t, c.Halted())

	c.memory.Write(addr.IE, 0x01)
	c.memory.Write(addr.IF, 0x01)

	cycles = c.Step()
	assert.Equal(t, 1, cycles) // HALT wake only, no dispatch since IME is false
	assert.False(t, c.Halted())
	assert.True(t, c.memory.ReadBit(0, addr.IF)) // flag untouched
}

func TestHaltDispatchesWhenIMEIsTrue(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0x76) // HALT
	c.ime = true

	c.Step()
	assert.True(t, c.Halted())

	c.memory.Write(addr.IE, 0x01)
	c.memory.Write(addr.IF, 0x01)

	cycles := c.Step()
	assert.Equal(t, 4, cycles)
	assert.False(t, c.Halted())
	assert.Equal(t, uint16(0x0040), c.PC())
}

func TestEIDelaysOneInstruction(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0xFB, 0x00, 0x00) // EI ; NOP ; NOP
	c.ime = false

	c.Step() // executes EI itself; IME not yet true
	assert.False(t, c.IME())

	c.Step() // executes the instruction immediately after EI; still not true
	assert.False(t, c.IME())

	c.Step() // by now the instruction after EI has fully completed: IME commits
	assert.True(t, c.IME())
}

func TestDIDisablesAfterOneInstructionDelay(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0xF3, 0x00, 0x00) // DI ; NOP ; NOP
	c.ime = true

	c.Step() // DI itself; IME still true
	assert.True(t, c.IME())

	c.Step() // the instruction immediately after DI; still true
	assert.True(t, c.IME())

	c.Step() // now committed
	assert.False(t, c.IME())
}

func TestIllegalOpcodePanics(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0xD3)

	assert.Panics(t, func() { c.Step() })
}

func TestPushPopBCRoundTrips(t *testing.T) {
	c := newTestCPU()
	loadProgram(c, 0xC5, 0xC1) // PUSH BC ; POP BC
	c.setBC(0x1234)

	c.Step()
	c.setBC(0x0000)
	c.Step()

	assert.Equal(t, uint16(0x1234), c.bc())
}

func TestRelativeJumpBackward(t *testing.T) {
	c := newTestCPU()
	base := loadProgram(c, 0x00, 0x00, 0x18, 0xFC) // NOP; NOP; JR -4
	c.pc = base + 2

	c.Step()

	assert.Equal(t, base, c.PC())
}

func TestRETIPopsAndSchedulesIME(t *testing.T) {
	mmu := memory.New()
	c := New(mmu)
	c.ime = false
	c.pushStack(0x1234)
	loadProgram(c, 0xD9) // RETI

	c.Step()

	assert.Equal(t, uint16(0x1234), c.PC())
	assert.Equal(t, 1, c.eiPending) // IME commits on the next Step
}
