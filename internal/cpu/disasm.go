package cpu

import (
	"fmt"
	"io"
)

// ppuPositioner is implemented by buses that can report the PPU's current
// scanline/dot, for trace lines that include a "PPU:scanline,dot" field.
// Optional: a bus that doesn't implement it just gets zeros in the trace.
type ppuPositioner interface {
	PPUPosition() (scanline, dot int)
}

// Tracer writes one line per executed instruction in the nestest log format
// (opcode bytes, mnemonic, operand, register file, PPU position, cycle
// count), enough to diff byte-for-byte against a reference trace.
type Tracer struct {
	w io.Writer
}

func NewTracer(w io.Writer) *Tracer { return &Tracer{w: w} }

// Record is called by the CPU immediately before it fetches and executes
// the opcode at PC; it must not itself perform any side-effecting bus
// access, so it reads exclusively through Peek8.
func (t *Tracer) Record(c *CPU) {
	pc := c.PC
	opcode := c.Peek8(pc)
	op := opcodeTable[opcode]

	nb := operandLen(op.mode)
	var raw [3]uint8
	for i := 0; i < nb; i++ {
		raw[i] = c.Peek8(pc + uint16(i))
	}

	bytesCol := ""
	for i := 0; i < nb; i++ {
		bytesCol += fmt.Sprintf("%02X ", raw[i])
	}

	scanline, dot := 0, 0
	if pp, ok := c.Bus.(ppuPositioner); ok {
		scanline, dot = pp.PPUPosition()
	}

	fmt.Fprintf(t.w, "%04X  %-9s%-32sA:%02X X:%02X Y:%02X P:%02X SP:%02X PPU:%3d,%3d CYC:%d\n",
		pc, bytesCol, formatOperand(op, raw, pc),
		c.A, c.X, c.Y, uint8(c.P), c.SP, scanline, dot, c.Cycles)
}

func operandLen(mode addrMode) int {
	switch mode {
	case modeImplied, modeAccumulator:
		return 1
	case modeImmediate, modeZeroPage, modeZeroPageX, modeZeroPageY,
		modeRelative, modeIndirectX, modeIndirectY:
		return 2
	case modeAbsolute, modeAbsoluteX, modeAbsoluteY, modeIndirect:
		return 3
	default:
		return 1
	}
}

func formatOperand(op opcodeEntry, raw [3]uint8, pc uint16) string {
	mnem := op.mnemonic
	switch op.mode {
	case modeImplied:
		return mnem
	case modeAccumulator:
		return mnem + " A"
	case modeImmediate:
		return fmt.Sprintf("%s #$%02X", mnem, raw[1])
	case modeZeroPage:
		return fmt.Sprintf("%s $%02X", mnem, raw[1])
	case modeZeroPageX:
		return fmt.Sprintf("%s $%02X,X", mnem, raw[1])
	case modeZeroPageY:
		return fmt.Sprintf("%s $%02X,Y", mnem, raw[1])
	case modeAbsolute:
		return fmt.Sprintf("%s $%02X%02X", mnem, raw[2], raw[1])
	case modeAbsoluteX:
		return fmt.Sprintf("%s $%02X%02X,X", mnem, raw[2], raw[1])
	case modeAbsoluteY:
		return fmt.Sprintf("%s $%02X%02X,Y", mnem, raw[2], raw[1])
	case modeIndirect:
		return fmt.Sprintf("%s ($%02X%02X)", mnem, raw[2], raw[1])
	case modeIndirectX:
		return fmt.Sprintf("%s ($%02X,X)", mnem, raw[1])
	case modeIndirectY:
		return fmt.Sprintf("%s ($%02X),Y", mnem, raw[1])
	case modeRelative:
		target := uint16(int32(pc) + 2 + int32(int8(raw[1])))
		return fmt.Sprintf("%s $%04X", mnem, target)
	default:
		return mnem
	}
}
