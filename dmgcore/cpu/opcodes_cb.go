package cpu

// executeCB dispatches a CB-prefixed opcode. Unlike the primary page, this
// region is fully regular: bits 7-6 select the operation group, bits 5-3
// select the bit index (for BIT/RES/SET) or the rotate/shift variant, and
// bits 2-0 select the 8-bit operand (B,C,D,E,H,L,(HL),A). Computing the
// dispatch from the opcode's bits replaces what would otherwise be a
// 256-arm switch.
func (c *CPU) executeCB(opcode uint8) int {
	group := (opcode >> 6) & 0x3
	bitIndex := (opcode >> 3) & 0x7
	operand := opcode & 0x7
	targetsMemory := operand == 6

	switch group {
	case 0: // rotate/shift
		value := c.getReg8(operand)
		c.setReg8(operand, c.shiftOrRotate(bitIndex, value))
		if targetsMemory {
			return 4
		}
		return 2
	case 1: // BIT n,r
		c.bitTest(bitIndex, c.getReg8(operand))
		if targetsMemory {
			return 3
		}
		return 2
	case 2: // RES n,r
		c.setReg8(operand, resBit(bitIndex, c.getReg8(operand)))
		if targetsMemory {
			return 4
		}
		return 2
	default: // SET n,r
		c.setReg8(operand, setBit(bitIndex, c.getReg8(operand)))
		if targetsMemory {
			return 4
		}
		return 2
	}
}

// shiftOrRotate picks among the 8 rotate/shift variants in the CB page's
// first group, ordered RLC,RRC,RL,RR,SLA,SRA,SWAP,SRL per the opcode's
// bits 5-3.
func (c *CPU) shiftOrRotate(variant uint8, value uint8) uint8 {
	switch variant {
	case 0:
		return c.rlc(value)
	case 1:
		return c.rrc(value)
	case 2:
		return c.rl(value)
	case 3:
		return c.rr(value)
	case 4:
		return c.sla(value)
	case 5:
		return c.sra(value)
	case 6:
		return c.swap(value)
	default:
		return c.srl(value)
	}
}
