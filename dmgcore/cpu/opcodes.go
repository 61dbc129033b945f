package cpu

import "fmt"

// illegalOpcodes lists every primary-page byte that has no defined
// behavior on real hardware; executing one aborts with a diagnostic.
var illegalOpcodes = map[uint8]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

// execute dispatches a fetched primary-page opcode and returns its
// M-cycle count. The register-to-register MOV block (0x40-0x7F, minus
// 0x76 which is HALT) and the ALU-on-A block (0x80-0xBF) are fully
// regular, so they're computed from the opcode's bit pattern instead of
// enumerated; everything else is a dense per-opcode match.
func (c *CPU) execute(opcode uint8) int {
	if opcode >= 0x40 && opcode <= 0x7F && opcode != 0x76 {
		return c.executeLoad(opcode)
	}
	if opcode >= 0x80 && opcode <= 0xBF {
		return c.executeALU(opcode)
	}
	if illegalOpcodes[opcode] {
		panic(fmt.Sprintf("illegal opcode 0x%02X at PC=0x%04X", opcode, c.pc-1))
	}

	switch opcode {
	case 0x00: // NOP
		return 1
	case 0x01: // LD BC,d16
		c.setBC(c.fetchWord())
		return 3
	case 0x02: // LD (BC),A
		c.memory.Write(c.bc(), c.a)
		return 2
	case 0x03: // INC BC
		c.setBC(c.bc() + 1)
		return 2
	case 0x04: // INC B
		c.b = c.inc8(c.b)
		return 1
	case 0x05: // DEC B
		c.b = c.dec8(c.b)
		return 1
	case 0x06: // LD B,d8
		c.b = c.fetchByte()
		return 2
	case 0x07: // RLCA
		c.a = c.rlc(c.a)
		c.resetFlag(zeroFlag)
		return 1
	case 0x08: // LD (a16),SP
		target := c.fetchWord()
		c.memory.Write(target, uint8(c.sp&0xFF))
		c.memory.Write(target+1, uint8(c.sp>>8))
		return 5
	case 0x09: // ADD HL,BC
		c.addHL(c.bc())
		return 2
	case 0x0A: // LD A,(BC)
		c.a = c.memory.Read(c.bc())
		return 2
	case 0x0B: // DEC BC
		c.setBC(c.bc() - 1)
		return 2
	case 0x0C: // INC C
		c.c = c.inc8(c.c)
		return 1
	case 0x0D: // DEC C
		c.c = c.dec8(c.c)
		return 1
	case 0x0E: // LD C,d8
		c.c = c.fetchByte()
		return 2
	case 0x0F: // RRCA
		c.a = c.rrc(c.a)
		c.resetFlag(zeroFlag)
		return 1

	case 0x10: // STOP
		c.fetchByte() // discard the padding byte
		return 1
	case 0x11: // LD DE,d16
		c.setDE(c.fetchWord())
		return 3
	case 0x12: // LD (DE),A
		c.memory.Write(c.de(), c.a)
		return 2
	case 0x13: // INC DE
		c.setDE(c.de() + 1)
		return 2
	case 0x14: // INC D
		c.d = c.inc8(c.d)
		return 1
	case 0x15: // DEC D
		c.d = c.dec8(c.d)
		return 1
	case 0x16: // LD D,d8
		c.d = c.fetchByte()
		return 2
	case 0x17: // RLA
		c.a = c.rl(c.a)
		c.resetFlag(zeroFlag)
		return 1
	case 0x18: // JR r8
		return c.jrConditional(true)
	case 0x19: // ADD HL,DE
		c.addHL(c.de())
		return 2
	case 0x1A: // LD A,(DE)
		c.a = c.memory.Read(c.de())
		return 2
	case 0x1B: // DEC DE
		c.setDE(c.de() - 1)
		return 2
	case 0x1C: // INC E
		c.e = c.inc8(c.e)
		return 1
	case 0x1D: // DEC E
		c.e = c.dec8(c.e)
		return 1
	case 0x1E: // LD E,d8
		c.e = c.fetchByte()
		return 2
	case 0x1F: // RRA
		c.a = c.rr(c.a)
		c.resetFlag(zeroFlag)
		return 1

	case 0x20: // JR NZ,r8
		return c.jrConditional(!c.isSetFlag(zeroFlag))
	case 0x21: // LD HL,d16
		c.setHL(c.fetchWord())
		return 3
	case 0x22: // LD (HL+),A
		c.memory.Write(c.hl(), c.a)
		c.setHL(c.hl() + 1)
		return 2
	case 0x23: // INC HL
		c.setHL(c.hl() + 1)
		return 2
	case 0x24: // INC H
		c.h = c.inc8(c.h)
		return 1
	case 0x25: // DEC H
		c.h = c.dec8(c.h)
		return 1
	case 0x26: // LD H,d8
		c.h = c.fetchByte()
		return 2
	case 0x27: // DAA
		c.daa()
		return 1
	case 0x28: // JR Z,r8
		return c.jrConditional(c.isSetFlag(zeroFlag))
	case 0x29: // ADD HL,HL
		c.addHL(c.hl())
		return 2
	case 0x2A: // LD A,(HL+)
		c.a = c.memory.Read(c.hl())
		c.setHL(c.hl() + 1)
		return 2
	case 0x2B: // DEC HL
		c.setHL(c.hl() - 1)
		return 2
	case 0x2C: // INC L
		c.l = c.inc8(c.l)
		return 1
	case 0x2D: // DEC L
		c.l = c.dec8(c.l)
		return 1
	case 0x2E: // LD L,d8
		c.l = c.fetchByte()
		return 2
	case 0x2F: // CPL
		c.cpl()
		return 1

	case 0x30: // JR NC,r8
		return c.jrConditional(!c.isSetFlag(carryFlag))
	case 0x31: // LD SP,d16
		c.sp = c.fetchWord()
		return 3
	case 0x32: // LD (HL-),A
		c.memory.Write(c.hl(), c.a)
		c.setHL(c.hl() - 1)
		return 2
	case 0x33: // INC SP
		c.sp++
		return 2
	case 0x34: // INC (HL)
		c.memory.Write(c.hl(), c.inc8(c.memory.Read(c.hl())))
		return 3
	case 0x35: // DEC (HL)
		c.memory.Write(c.hl(), c.dec8(c.memory.Read(c.hl())))
		return 3
	case 0x36: // LD (HL),d8
		c.memory.Write(c.hl(), c.fetchByte())
		return 3
	case 0x37: // SCF
		c.scf()
		return 1
	case 0x38: // JR C,r8
		return c.jrConditional(c.isSetFlag(carryFlag))
	case 0x39: // ADD HL,SP
		c.addHL(c.sp)
		return 2
	case 0x3A: // LD A,(HL-)
		c.a = c.memory.Read(c.hl())
		c.setHL(c.hl() - 1)
		return 2
	case 0x3B: // DEC SP
		c.sp--
		return 2
	case 0x3C: // INC A
		c.a = c.inc8(c.a)
		return 1
	case 0x3D: // DEC A
		c.a = c.dec8(c.a)
		return 1
	case 0x3E: // LD A,d8
		c.a = c.fetchByte()
		return 2
	case 0x3F: // CCF
		c.ccf()
		return 1

	case 0x76: // HALT
		c.halted = true
		return 1

	case 0xC0: // RET NZ
		return c.retConditional(!c.isSetFlag(zeroFlag))
	case 0xC1: // POP BC
		c.setBC(c.popStack())
		return 3
	case 0xC2: // JP NZ,a16
		return c.jpConditional(!c.isSetFlag(zeroFlag))
	case 0xC3: // JP a16
		return c.jpConditional(true)
	case 0xC4: // CALL NZ,a16
		return c.callConditional(!c.isSetFlag(zeroFlag))
	case 0xC5: // PUSH BC
		c.pushStack(c.bc())
		return 4
	case 0xC6: // ADD A,d8
		c.addA(c.fetchByte(), false)
		return 2
	case 0xC7: // RST 0x00
		c.rst(0x00)
		return 4
	case 0xC8: // RET Z
		return c.retConditional(c.isSetFlag(zeroFlag))
	case 0xC9: // RET
		c.pc = c.popStack()
		return 4
	case 0xCA: // JP Z,a16
		return c.jpConditional(c.isSetFlag(zeroFlag))
	case 0xCB: // CB prefix
		return c.executeCB(c.fetchByte())
	case 0xCC: // CALL Z,a16
		return c.callConditional(c.isSetFlag(zeroFlag))
	case 0xCD: // CALL a16
		return c.callConditional(true)
	case 0xCE: // ADC A,d8
		c.addA(c.fetchByte(), true)
		return 2
	case 0xCF: // RST 0x08
		c.rst(0x08)
		return 4

	case 0xD0: // RET NC
		return c.retConditional(!c.isSetFlag(carryFlag))
	case 0xD1: // POP DE
		c.setDE(c.popStack())
		return 3
	case 0xD2: // JP NC,a16
		return c.jpConditional(!c.isSetFlag(carryFlag))
	case 0xD4: // CALL NC,a16
		return c.callConditional(!c.isSetFlag(carryFlag))
	case 0xD5: // PUSH DE
		c.pushStack(c.de())
		return 4
	case 0xD6: // SUB d8
		c.subA(c.fetchByte(), false, true)
		return 2
	case 0xD7: // RST 0x10
		c.rst(0x10)
		return 4
	case 0xD8: // RET C
		return c.retConditional(c.isSetFlag(carryFlag))
	case 0xD9: // RETI
		c.pc = c.popStack()
		c.eiPending = 1 // commits IME on the very next Step, unlike EI's one-instruction delay
		return 4
	case 0xDA: // JP C,a16
		return c.jpConditional(c.isSetFlag(carryFlag))
	case 0xDC: // CALL C,a16
		return c.callConditional(c.isSetFlag(carryFlag))
	case 0xDE: // SBC A,d8
		c.subA(c.fetchByte(), true, true)
		return 2
	case 0xDF: // RST 0x18
		c.rst(0x18)
		return 4

	case 0xE0: // LDH (a8),A
		c.memory.Write(0xFF00+uint16(c.fetchByte()), c.a)
		return 3
	case 0xE1: // POP HL
		c.setHL(c.popStack())
		return 3
	case 0xE2: // LD (C),A
		c.memory.Write(0xFF00+uint16(c.c), c.a)
		return 2
	case 0xE5: // PUSH HL
		c.pushStack(c.hl())
		return 4
	case 0xE6: // AND d8
		c.andA(c.fetchByte())
		return 2
	case 0xE7: // RST 0x20
		c.rst(0x20)
		return 4
	case 0xE8: // ADD SP,r8
		c.sp = c.addSPSigned(int8(c.fetchByte()))
		return 4
	case 0xE9: // JP (HL)
		c.pc = c.hl()
		return 1
	case 0xEA: // LD (a16),A
		c.memory.Write(c.fetchWord(), c.a)
		return 4
	case 0xEE: // XOR d8
		c.xorA(c.fetchByte())
		return 2
	case 0xEF: // RST 0x28
		c.rst(0x28)
		return 4

	case 0xF0: // LDH A,(a8)
		c.a = c.memory.Read(0xFF00 + uint16(c.fetchByte()))
		return 3
	case 0xF1: // POP AF
		c.setAF(c.popStack())
		return 3
	case 0xF2: // LD A,(C)
		c.a = c.memory.Read(0xFF00 + uint16(c.c))
		return 2
	case 0xF3: // DI
		c.diPending = 2
		return 1
	case 0xF5: // PUSH AF
		c.pushStack(c.af())
		return 4
	case 0xF6: // OR d8
		c.orA(c.fetchByte())
		return 2
	case 0xF7: // RST 0x30
		c.rst(0x30)
		return 4
	case 0xF8: // LDHL SP,r8
		c.setHL(c.addSPSigned(int8(c.fetchByte())))
		return 3
	case 0xF9: // LD SP,HL
		c.sp = c.hl()
		return 2
	case 0xFA: // LD A,(a16)
		c.a = c.memory.Read(c.fetchWord())
		return 4
	case 0xFB: // EI
		c.eiPending = 2
		return 1
	case 0xFE: // CP d8
		c.subA(c.fetchByte(), false, false)
		return 2
	case 0xFF: // RST 0x38
		c.rst(0x38)
		return 4
	}

	panic(fmt.Sprintf("unimplemented opcode 0x%02X at PC=0x%04X", opcode, c.pc-1))
}

// executeLoad handles the register-to-register MOV block, 0x40-0x7F minus
// 0x76 (HALT). Bits 5-3 select the destination, bits 2-0 the source.
func (c *CPU) executeLoad(opcode uint8) int {
	dst := (opcode >> 3) & 0x7
	src := opcode & 0x7
	c.setReg8(dst, c.getReg8(src))

	if dst == 6 || src == 6 {
		return 2
	}
	return 1
}

// executeALU handles ADD/ADC/SUB/SBC/AND/XOR/OR/CP on A, 0x80-0xBF. Bits
// 5-3 select the operation, bits 2-0 the right-hand operand.
func (c *CPU) executeALU(opcode uint8) int {
	op := (opcode >> 3) & 0x7
	value := c.getReg8(opcode & 0x7)

	switch op {
	case 0:
		c.addA(value, false)
	case 1:
		c.addA(value, true)
	case 2:
		c.subA(value, false, true)
	case 3:
		c.subA(value, true, true)
	case 4:
		c.andA(value)
	case 5:
		c.xorA(value)
	case 6:
		c.orA(value)
	case 7:
		c.subA(value, false, false)
	}

	if opcode&0x7 == 6 {
		return 2
	}
	return 1
}

func (c *CPU) jrConditional(cond bool) int {
	offset := int8(c.fetchByte())
	if cond {
		c.pc = uint16(int32(c.pc) + int32(offset))
		return 3
	}
	return 2
}

func (c *CPU) jpConditional(cond bool) int {
	target := c.fetchWord()
	if cond {
		c.pc = target
		return 4
	}
	return 3
}

func (c *CPU) callConditional(cond bool) int {
	target := c.fetchWord()
	if cond {
		c.pushStack(c.pc)
		c.pc = target
		return 6
	}
	return 3
}

func (c *CPU) retConditional(cond bool) int {
	if cond {
		c.pc = c.popStack()
		return 5
	}
	return 2
}

func (c *CPU) rst(target uint16) {
	c.pushStack(c.pc)
	c.pc = target
}
