package cpu

// opcodeEntry describes one of the 256 opcode slots: its mnemonic (used by
// the disassembler), its addressing mode, the access class that drives
// cycle accounting, and the function that carries out its semantics.
type opcodeEntry struct {
	mnemonic string
	mode     addrMode
	cls      class
	exec     func(c *CPU, op opcodeEntry)
}

var opcodeTable [256]opcodeEntry

// entry wraps a memory-operand instruction: resolve the effective address
// per op.mode/op.cls, then hand it to fn.
func entry(mnemonic string, mode addrMode, cls class, fn func(c *CPU, addr uint16)) opcodeEntry {
	return opcodeEntry{
		mnemonic: mnemonic,
		mode:     mode,
		cls:      cls,
		exec: func(c *CPU, op opcodeEntry) {
			addr, _ := c.resolve(op.mode, op.cls)
			fn(c, addr)
		},
	}
}

// bespoke wraps an instruction that manages its own addressing and cycle
// count entirely (branches, jumps, stack ops, flag/register ops).
func bespoke(mnemonic string, mode addrMode, fn func(c *CPU)) opcodeEntry {
	return opcodeEntry{
		mnemonic: mnemonic,
		mode:     mode,
		cls:      classOther,
		exec:     func(c *CPU, op opcodeEntry) { fn(c) },
	}
}

func init() {
	t := &opcodeTable

	t[0x00] = bespoke("BRK", modeImplied, opBRK)
	t[0x01] = entry("ORA", modeIndirectX, classRead, opORA)
	t[0x02] = bespoke("KIL", modeImplied, opKIL)
	t[0x03] = entry("SLO", modeIndirectX, classRMW, opSLO)
	t[0x04] = entry("NOP", modeZeroPage, classRead, opNOP)
	t[0x05] = entry("ORA", modeZeroPage, classRead, opORA)
	t[0x06] = entry("ASL", modeZeroPage, classRMW, opASL)
	t[0x07] = entry("SLO", modeZeroPage, classRMW, opSLO)
	t[0x08] = bespoke("PHP", modeImplied, opPHP)
	t[0x09] = entry("ORA", modeImmediate, classRead, opORA)
	t[0x0A] = bespoke("ASL", modeAccumulator, opASLAcc)
	t[0x0B] = entry("ANC", modeImmediate, classRead, opANC)
	t[0x0C] = entry("NOP", modeAbsolute, classRead, opNOP)
	t[0x0D] = entry("ORA", modeAbsolute, classRead, opORA)
	t[0x0E] = entry("ASL", modeAbsolute, classRMW, opASL)
	t[0x0F] = entry("SLO", modeAbsolute, classRMW, opSLO)

	t[0x10] = bespoke("BPL", modeRelative, opBPL)
	t[0x11] = entry("ORA", modeIndirectY, classRead, opORA)
	t[0x12] = bespoke("KIL", modeImplied, opKIL)
	t[0x13] = entry("SLO", modeIndirectY, classRMW, opSLO)
	t[0x14] = entry("NOP", modeZeroPageX, classRead, opNOP)
	t[0x15] = entry("ORA", modeZeroPageX, classRead, opORA)
	t[0x16] = entry("ASL", modeZeroPageX, classRMW, opASL)
	t[0x17] = entry("SLO", modeZeroPageX, classRMW, opSLO)
	t[0x18] = bespoke("CLC", modeImplied, opCLC)
	t[0x19] = entry("ORA", modeAbsoluteY, classRead, opORA)
	t[0x1A] = bespoke("NOP", modeImplied, opNOPimp)
	t[0x1B] = entry("SLO", modeAbsoluteY, classRMW, opSLO)
	t[0x1C] = entry("NOP", modeAbsoluteX, classRead, opNOP)
	t[0x1D] = entry("ORA", modeAbsoluteX, classRead, opORA)
	t[0x1E] = entry("ASL", modeAbsoluteX, classRMW, opASL)
	t[0x1F] = entry("SLO", modeAbsoluteX, classRMW, opSLO)

	t[0x20] = bespoke("JSR", modeAbsolute, opJSR)
	t[0x21] = entry("AND", modeIndirectX, classRead, opAND)
	t[0x22] = bespoke("KIL", modeImplied, opKIL)
	t[0x23] = entry("RLA", modeIndirectX, classRMW, opRLA)
	t[0x24] = entry("BIT", modeZeroPage, classRead, opBIT)
	t[0x25] = entry("AND", modeZeroPage, classRead, opAND)
	t[0x26] = entry("ROL", modeZeroPage, classRMW, opROL)
	t[0x27] = entry("RLA", modeZeroPage, classRMW, opRLA)
	t[0x28] = bespoke("PLP", modeImplied, opPLP)
	t[0x29] = entry("AND", modeImmediate, classRead, opAND)
	t[0x2A] = bespoke("ROL", modeAccumulator, opROLAcc)
	t[0x2B] = entry("ANC", modeImmediate, classRead, opANC)
	t[0x2C] = entry("BIT", modeAbsolute, classRead, opBIT)
	t[0x2D] = entry("AND", modeAbsolute, classRead, opAND)
	t[0x2E] = entry("ROL", modeAbsolute, classRMW, opROL)
	t[0x2F] = entry("RLA", modeAbsolute, classRMW, opRLA)

	t[0x30] = bespoke("BMI", modeRelative, opBMI)
	t[0x31] = entry("AND", modeIndirectY, classRead, opAND)
	t[0x32] = bespoke("KIL", modeImplied, opKIL)
	t[0x33] = entry("RLA", modeIndirectY, classRMW, opRLA)
	t[0x34] = entry("NOP", modeZeroPageX, classRead, opNOP)
	t[0x35] = entry("AND", modeZeroPageX, classRead, opAND)
	t[0x36] = entry("ROL", modeZeroPageX, classRMW, opROL)
	t[0x37] = entry("RLA", modeZeroPageX, classRMW, opRLA)
	t[0x38] = bespoke("SEC", modeImplied, opSEC)
	t[0x39] = entry("AND", modeAbsoluteY, classRead, opAND)
	t[0x3A] = bespoke("NOP", modeImplied, opNOPimp)
	t[0x3B] = entry("RLA", modeAbsoluteY, classRMW, opRLA)
	t[0x3C] = entry("NOP", modeAbsoluteX, classRead, opNOP)
	t[0x3D] = entry("AND", modeAbsoluteX, classRead, opAND)
	t[0x3E] = entry("ROL", modeAbsoluteX, classRMW, opROL)
	t[0x3F] = entry("RLA", modeAbsoluteX, classRMW, opRLA)

	t[0x40] = bespoke("RTI", modeImplied, opRTI)
	t[0x41] = entry("EOR", modeIndirectX, classRead, opEOR)
	t[0x42] = bespoke("KIL", modeImplied, opKIL)
	t[0x43] = entry("SRE", modeIndirectX, classRMW, opSRE)
	t[0x44] = entry("NOP", modeZeroPage, classRead, opNOP)
	t[0x45] = entry("EOR", modeZeroPage, classRead, opEOR)
	t[0x46] = entry("LSR", modeZeroPage, classRMW, opLSR)
	t[0x47] = entry("SRE", modeZeroPage, classRMW, opSRE)
	t[0x48] = bespoke("PHA", modeImplied, opPHA)
	t[0x49] = entry("EOR", modeImmediate, classRead, opEOR)
	t[0x4A] = bespoke("LSR", modeAccumulator, opLSRAcc)
	t[0x4B] = entry("ALR", modeImmediate, classRead, opALR)
	t[0x4C] = entry("JMP", modeAbsolute, classOther, opJMPAbs)
	t[0x4D] = entry("EOR", modeAbsolute, classRead, opEOR)
	t[0x4E] = entry("LSR", modeAbsolute, classRMW, opLSR)
	t[0x4F] = entry("SRE", modeAbsolute, classRMW, opSRE)

	t[0x50] = bespoke("BVC", modeRelative, opBVC)
	t[0x51] = entry("EOR", modeIndirectY, classRead, opEOR)
	t[0x52] = bespoke("KIL", modeImplied, opKIL)
	t[0x53] = entry("SRE", modeIndirectY, classRMW, opSRE)
	t[0x54] = entry("NOP", modeZeroPageX, classRead, opNOP)
	t[0x55] = entry("EOR", modeZeroPageX, classRead, opEOR)
	t[0x56] = entry("LSR", modeZeroPageX, classRMW, opLSR)
	t[0x57] = entry("SRE", modeZeroPageX, classRMW, opSRE)
	t[0x58] = bespoke("CLI", modeImplied, opCLI)
	t[0x59] = entry("EOR", modeAbsoluteY, classRead, opEOR)
	t[0x5A] = bespoke("NOP", modeImplied, opNOPimp)
	t[0x5B] = entry("SRE", modeAbsoluteY, classRMW, opSRE)
	t[0x5C] = entry("NOP", modeAbsoluteX, classRead, opNOP)
	t[0x5D] = entry("EOR", modeAbsoluteX, classRead, opEOR)
	t[0x5E] = entry("LSR", modeAbsoluteX, classRMW, opLSR)
	t[0x5F] = entry("SRE", modeAbsoluteX, classRMW, opSRE)

	t[0x60] = bespoke("RTS", modeImplied, opRTS)
	t[0x61] = entry("ADC", modeIndirectX, classRead, opADC)
	t[0x62] = bespoke("KIL", modeImplied, opKIL)
	t[0x63] = entry("RRA", modeIndirectX, classRMW, opRRA)
	t[0x64] = entry("NOP", modeZeroPage, classRead, opNOP)
	t[0x65] = entry("ADC", modeZeroPage, classRead, opADC)
	t[0x66] = entry("ROR", modeZeroPage, classRMW, opROR)
	t[0x67] = entry("RRA", modeZeroPage, classRMW, opRRA)
	t[0x68] = bespoke("PLA", modeImplied, opPLA)
	t[0x69] = entry("ADC", modeImmediate, classRead, opADC)
	t[0x6A] = bespoke("ROR", modeAccumulator, opRORAcc)
	t[0x6B] = entry("ARR", modeImmediate, classRead, opARR)
	t[0x6C] = entry("JMP", modeIndirect, classOther, opJMPInd)
	t[0x6D] = entry("ADC", modeAbsolute, classRead, opADC)
	t[0x6E] = entry("ROR", modeAbsolute, classRMW, opROR)
	t[0x6F] = entry("RRA", modeAbsolute, classRMW, opRRA)

	t[0x70] = bespoke("BVS", modeRelative, opBVS)
	t[0x71] = entry("ADC", modeIndirectY, classRead, opADC)
	t[0x72] = bespoke("KIL", modeImplied, opKIL)
	t[0x73] = entry("RRA", modeIndirectY, classRMW, opRRA)
	t[0x74] = entry("NOP", modeZeroPageX, classRead, opNOP)
	t[0x75] = entry("ADC", modeZeroPageX, classRead, opADC)
	t[0x76] = entry("ROR", modeZeroPageX, classRMW, opROR)
	t[0x77] = entry("RRA", modeZeroPageX, classRMW, opRRA)
	t[0x78] = bespoke("SEI", modeImplied, opSEI)
	t[0x79] = entry("ADC", modeAbsoluteY, classRead, opADC)
	t[0x7A] = bespoke("NOP", modeImplied, opNOPimp)
	t[0x7B] = entry("RRA", modeAbsoluteY, classRMW, opRRA)
	t[0x7C] = entry("NOP", modeAbsoluteX, classRead, opNOP)
	t[0x7D] = entry("ADC", modeAbsoluteX, classRead, opADC)
	t[0x7E] = entry("ROR", modeAbsoluteX, classRMW, opROR)
	t[0x7F] = entry("RRA", modeAbsoluteX, classRMW, opRRA)

	t[0x80] = entry("NOP", modeImmediate, classRead, opNOP)
	t[0x81] = entry("STA", modeIndirectX, classWrite, opSTA)
	t[0x82] = entry("NOP", modeImmediate, classRead, opNOP)
	t[0x83] = entry("SAX", modeIndirectX, classWrite, opSAX)
	t[0x84] = entry("STY", modeZeroPage, classWrite, opSTY)
	t[0x85] = entry("STA", modeZeroPage, classWrite, opSTA)
	t[0x86] = entry("STX", modeZeroPage, classWrite, opSTX)
	t[0x87] = entry("SAX", modeZeroPage, classWrite, opSAX)
	t[0x88] = bespoke("DEY", modeImplied, opDEY)
	t[0x89] = entry("NOP", modeImmediate, classRead, opNOP)
	t[0x8A] = bespoke("TXA", modeImplied, opTXA)
	t[0x8B] = entry("XAA", modeImmediate, classRead, opXAA)
	t[0x8C] = entry("STY", modeAbsolute, classWrite, opSTY)
	t[0x8D] = entry("STA", modeAbsolute, classWrite, opSTA)
	t[0x8E] = entry("STX", modeAbsolute, classWrite, opSTX)
	t[0x8F] = entry("SAX", modeAbsolute, classWrite, opSAX)

	t[0x90] = bespoke("BCC", modeRelative, opBCC)
	t[0x91] = entry("STA", modeIndirectY, classWrite, opSTA)
	t[0x92] = bespoke("KIL", modeImplied, opKIL)
	t[0x93] = entry("SHA", modeIndirectY, classWrite, opSHA)
	t[0x94] = entry("STY", modeZeroPageX, classWrite, opSTY)
	t[0x95] = entry("STA", modeZeroPageX, classWrite, opSTA)
	t[0x96] = entry("STX", modeZeroPageY, classWrite, opSTX)
	t[0x97] = entry("SAX", modeZeroPageY, classWrite, opSAX)
	t[0x98] = bespoke("TYA", modeImplied, opTYA)
	t[0x99] = entry("STA", modeAbsoluteY, classWrite, opSTA)
	t[0x9A] = bespoke("TXS", modeImplied, opTXS)
	t[0x9B] = entry("TAS", modeAbsoluteY, classWrite, opTAS)
	t[0x9C] = entry("SHY", modeAbsoluteX, classWrite, opSHY)
	t[0x9D] = entry("STA", modeAbsoluteX, classWrite, opSTA)
	t[0x9E] = entry("SHX", modeAbsoluteY, classWrite, opSHX)
	t[0x9F] = entry("SHA", modeAbsoluteY, classWrite, opSHA)

	t[0xA0] = entry("LDY", modeImmediate, classRead, opLDY)
	t[0xA1] = entry("LDA", modeIndirectX, classRead, opLDA)
	t[0xA2] = entry("LDX", modeImmediate, classRead, opLDX)
	t[0xA3] = entry("LAX", modeIndirectX, classRead, opLAX)
	t[0xA4] = entry("LDY", modeZeroPage, classRead, opLDY)
	t[0xA5] = entry("LDA", modeZeroPage, classRead, opLDA)
	t[0xA6] = entry("LDX", modeZeroPage, classRead, opLDX)
	t[0xA7] = entry("LAX", modeZeroPage, classRead, opLAX)
	t[0xA8] = bespoke("TAY", modeImplied, opTAY)
	t[0xA9] = entry("LDA", modeImmediate, classRead, opLDA)
	t[0xAA] = bespoke("TAX", modeImplied, opTAX)
	t[0xAB] = entry("LAX", modeImmediate, classRead, opLAX)
	t[0xAC] = entry("LDY", modeAbsolute, classRead, opLDY)
	t[0xAD] = entry("LDA", modeAbsolute, classRead, opLDA)
	t[0xAE] = entry("LDX", modeAbsolute, classRead, opLDX)
	t[0xAF] = entry("LAX", modeAbsolute, classRead, opLAX)

	t[0xB0] = bespoke("BCS", modeRelative, opBCS)
	t[0xB1] = entry("LDA", modeIndirectY, classRead, opLDA)
	t[0xB2] = bespoke("KIL", modeImplied, opKIL)
	t[0xB3] = entry("LAX", modeIndirectY, classRead, opLAX)
	t[0xB4] = entry("LDY", modeZeroPageX, classRead, opLDY)
	t[0xB5] = entry("LDA", modeZeroPageX, classRead, opLDA)
	t[0xB6] = entry("LDX", modeZeroPageY, classRead, opLDX)
	t[0xB7] = entry("LAX", modeZeroPageY, classRead, opLAX)
	t[0xB8] = bespoke("CLV", modeImplied, opCLV)
	t[0xB9] = entry("LDA", modeAbsoluteY, classRead, opLDA)
	t[0xBA] = bespoke("TSX", modeImplied, opTSX)
	t[0xBB] = entry("LAS", modeAbsoluteY, classRead, opLAS)
	t[0xBC] = entry("LDY", modeAbsoluteX, classRead, opLDY)
	t[0xBD] = entry("LDA", modeAbsoluteX, classRead, opLDA)
	t[0xBE] = entry("LDX", modeAbsoluteY, classRead, opLDX)
	t[0xBF] = entry("LAX", modeAbsoluteY, classRead, opLAX)

	t[0xC0] = entry("CPY", modeImmediate, classRead, opCPY)
	t[0xC1] = entry("CMP", modeIndirectX, classRead, opCMP)
	t[0xC2] = entry("NOP", modeImmediate, classRead, opNOP)
	t[0xC3] = entry("DCP", modeIndirectX, classRMW, opDCP)
	t[0xC4] = entry("CPY", modeZeroPage, classRead, opCPY)
	t[0xC5] = entry("CMP", modeZeroPage, classRead, opCMP)
	t[0xC6] = entry("DEC", modeZeroPage, classRMW, opDEC)
	t[0xC7] = entry("DCP", modeZeroPage, classRMW, opDCP)
	t[0xC8] = bespoke("INY", modeImplied, opINY)
	t[0xC9] = entry("CMP", modeImmediate, classRead, opCMP)
	t[0xCA] = bespoke("DEX", modeImplied, opDEX)
	t[0xCB] = entry("AXS", modeImmediate, classRead, opAXS)
	t[0xCC] = entry("CPY", modeAbsolute, classRead, opCPY)
	t[0xCD] = entry("CMP", modeAbsolute, classRead, opCMP)
	t[0xCE] = entry("DEC", modeAbsolute, classRMW, opDEC)
	t[0xCF] = entry("DCP", modeAbsolute, classRMW, opDCP)

	t[0xD0] = bespoke("BNE", modeRelative, opBNE)
	t[0xD1] = entry("CMP", modeIndirectY, classRead, opCMP)
	t[0xD2] = bespoke("KIL", modeImplied, opKIL)
	t[0xD3] = entry("DCP", modeIndirectY, classRMW, opDCP)
	t[0xD4] = entry("NOP", modeZeroPageX, classRead, opNOP)
	t[0xD5] = entry("CMP", modeZeroPageX, classRead, opCMP)
	t[0xD6] = entry("DEC", modeZeroPageX, classRMW, opDEC)
	t[0xD7] = entry("DCP", modeZeroPageX, classRMW, opDCP)
	t[0xD8] = bespoke("CLD", modeImplied, opCLD)
	t[0xD9] = entry("CMP", modeAbsoluteY, classRead, opCMP)
	t[0xDA] = bespoke("NOP", modeImplied, opNOPimp)
	t[0xDB] = entry("DCP", modeAbsoluteY, classRMW, opDCP)
	t[0xDC] = entry("NOP", modeAbsoluteX, classRead, opNOP)
	t[0xDD] = entry("CMP", modeAbsoluteX, classRead, opCMP)
	t[0xDE] = entry("DEC", modeAbsoluteX, classRMW, opDEC)
	t[0xDF] = entry("DCP", modeAbsoluteX, classRMW, opDCP)

	t[0xE0] = entry("CPX", modeImmediate, classRead, opCPX)
	t[0xE1] = entry("SBC", modeIndirectX, classRead, opSBC)
	t[0xE2] = entry("NOP", modeImmediate, classRead, opNOP)
	t[0xE3] = entry("ISB", modeIndirectX, classRMW, opISB)
	t[0xE4] = entry("CPX", modeZeroPage, classRead, opCPX)
	t[0xE5] = entry("SBC", modeZeroPage, classRead, opSBC)
	t[0xE6] = entry("INC", modeZeroPage, classRMW, opINC)
	t[0xE7] = entry("ISB", modeZeroPage, classRMW, opISB)
	t[0xE8] = bespoke("INX", modeImplied, opINX)
	t[0xE9] = entry("SBC", modeImmediate, classRead, opSBC)
	t[0xEA] = bespoke("NOP", modeImplied, opNOPimp)
	t[0xEB] = entry("SBC", modeImmediate, classRead, opSBC)
	t[0xEC] = entry("CPX", modeAbsolute, classRead, opCPX)
	t[0xED] = entry("SBC", modeAbsolute, classRead, opSBC)
	t[0xEE] = entry("INC", modeAbsolute, classRMW, opINC)
	t[0xEF] = entry("ISB", modeAbsolute, classRMW, opISB)

	t[0xF0] = bespoke("BEQ", modeRelative, opBEQ)
	t[0xF1] = entry("SBC", modeIndirectY, classRead, opSBC)
	t[0xF2] = bespoke("KIL", modeImplied, opKIL)
	t[0xF3] = entry("ISB", modeIndirectY, classRMW, opISB)
	t[0xF4] = entry("NOP", modeZeroPageX, classRead, opNOP)
	t[0xF5] = entry("SBC", modeZeroPageX, classRead, opSBC)
	t[0xF6] = entry("INC", modeZeroPageX, classRMW, opINC)
	t[0xF7] = entry("ISB", modeZeroPageX, classRMW, opISB)
	t[0xF8] = bespoke("SED", modeImplied, opSED)
	t[0xF9] = entry("SBC", modeAbsoluteY, classRead, opSBC)
	t[0xFA] = bespoke("NOP", modeImplied, opNOPimp)
	t[0xFB] = entry("ISB", modeAbsoluteY, classRMW, opISB)
	t[0xFC] = entry("NOP", modeAbsoluteX, classRead, opNOP)
	t[0xFD] = entry("SBC", modeAbsoluteX, classRead, opSBC)
	t[0xFE] = entry("INC", modeAbsoluteX, classRMW, opINC)
	t[0xFF] = entry("ISB", modeAbsoluteX, classRMW, opISB)
}
