// Package cpu implements a cycle-accurate interpreter for the 6502-derived
// CPU at the heart of the console, including every documented unofficial
// opcode.
package cpu

import (
	"nescore/internal/log"
)

// Vector addresses.
const (
	NMIVector   = uint16(0xFFFA)
	ResetVector = uint16(0xFFFC)
	IRQVector   = uint16(0xFFFE)
)

// IRQSource identifies one of the independent level-triggered IRQ lines
// feeding into the CPU; several can be asserted simultaneously.
type IRQSource uint8

const (
	IRQFrameCounter IRQSource = 1 << iota
	IRQDMC
	IRQMapper
)

// Bus is the minimal surface the CPU needs from its memory bus.
type Bus interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
	Peek8(addr uint16) uint8 // no side effects, used by the disassembler/debugger

	// Tick advances the PPU by three dots and the APU by one cycle, and
	// clocks any cycle-counted mapper IRQ logic. Called once per CPU cycle,
	// before the access it accompanies.
	Tick()
}

// CPU holds the 6502 register file plus the bookkeeping needed for
// cycle-accurate interrupt polling.
type CPU struct {
	Bus Bus

	A, X, Y, SP uint8
	PC          uint16
	P           P

	Cycles int64 // total CPU cycles since power-up

	nmiLine     bool // current level of the PPU's NMI output
	prevNmiLine bool
	needNmi     bool
	prevNeedNmi bool

	irqSources IRQSource
	runIRQ     bool
	prevRunIRQ bool

	halted bool // set by KIL/JAM opcodes

	tracer *Tracer
}

func New(bus Bus) *CPU {
	return &CPU{Bus: bus, SP: 0xFD, P: P(flagI | flagU)}
}

// Reset reasserts either a power-up (soft=false) or console-panel
// (soft=true) reset. A soft reset leaves A/X/Y untouched, burns SP by 3
// without actually writing memory, and sets I; a hard reset clears the
// registers outright.
func (c *CPU) Reset(soft bool) {
	if soft {
		c.SP -= 3
		c.P.setIntDisable(true)
	} else {
		c.A, c.X, c.Y = 0, 0, 0
		c.SP = 0xFD
		c.P = P(flagI | flagU)
		c.irqSources = 0
	}

	c.nmiLine, c.prevNmiLine, c.needNmi, c.prevNeedNmi = false, false, false, false
	c.runIRQ, c.prevRunIRQ = false, false
	c.halted = false

	c.PC = c.read16(ResetVector)
}

// SetNMILine is called by the PPU whenever the logical NMI output (vblank &&
// ppuctrl.nmi_enable) changes level. The CPU performs its own edge detection
// against this level, matching real hardware's behavior where repeatedly
// toggling ppuctrl during vblank can re-trigger NMIs.
func (c *CPU) SetNMILine(level bool) { c.nmiLine = level }

// NMILine reports the current level of the NMI input, for debuggers and
// tests observing whether the PPU has asserted it.
func (c *CPU) NMILine() bool { return c.nmiLine }

func (c *CPU) RaiseIRQ(src IRQSource)  { c.irqSources |= src }
func (c *CPU) ClearIRQ(src IRQSource)  { c.irqSources &^= src }
func (c *CPU) HasIRQSource(src IRQSource) bool { return c.irqSources&src != 0 }

// PollInterrupts runs once per CPU cycle, right after the bus access. It
// implements the "status of
// the interrupt lines at the end of the second-to-last cycle" rule: the
// values latched here are consumed at the end of the *current* Step(), which
// means an IRQ/NMI asserted on an instruction's last cycle is deferred to the
// next one, exactly matching CLI/SEI/PLP's one-instruction delay.
func (c *CPU) PollInterrupts() {
	c.prevNeedNmi = c.needNmi
	if !c.prevNmiLine && c.nmiLine {
		c.needNmi = true
	}
	c.prevNmiLine = c.nmiLine

	c.prevRunIRQ = c.runIRQ
	c.runIRQ = c.irqSources != 0 && !c.P.IntDisable()
}

func (c *CPU) IsHalted() bool { return c.halted }

func (c *CPU) halt() {
	if !c.halted {
		log.ModCPU.WarnZ("CPU jammed").Hex16("pc", c.PC).End()
	}
	c.halted = true
}

/* bus access helpers */

func (c *CPU) read8(addr uint16) uint8 {
	c.Bus.Tick()
	v := c.Bus.Read8(addr)
	c.Cycles++
	c.PollInterrupts()
	return v
}

func (c *CPU) write8(addr uint16, val uint8) {
	c.Bus.Tick()
	c.Bus.Write8(addr, val)
	c.Cycles++
	c.PollInterrupts()
}

// Peek8 reads without side effects, for the disassembler/debugger.
func (c *CPU) Peek8(addr uint16) uint8 { return c.Bus.Peek8(addr) }

// CurrentCycle reports the total CPU cycle count; mappers such as MMC1 use
// it to detect and ignore writes issued on back-to-back cycles.
func (c *CPU) CurrentCycle() int64 { return c.Cycles }

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.read8(addr)
	hi := c.read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// read16bug reproduces the JMP ($xxFF) page-wrap bug: the high byte is
// fetched from $xx00 instead of wrapping into the next page.
func (c *CPU) read16bug(addr uint16) uint16 {
	lo := c.read8(addr)
	hiAddr := (addr & 0xFF00) | uint16(uint8(addr)+1)
	hi := c.read8(hiAddr)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push8(v uint8) {
	c.write8(0x0100+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) push16(v uint16) {
	c.push8(uint8(v >> 8))
	c.push8(uint8(v))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	return c.read8(0x0100 + uint16(c.SP))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* interrupt sequences */

// serviceInterrupt runs the 7-cycle push-vector sequence shared by NMI and
// IRQ. If an NMI was latched while an IRQ sequence was already underway
// (before the vector fetch), the vector is hijacked to the NMI vector.
func (c *CPU) serviceInterrupt(brk bool) {
	c.read8(c.PC) // dummy read of the next opcode byte
	if !brk {
		c.read8(c.PC)
	} else {
		c.PC++
	}

	c.push16(c.PC)

	p := c.P
	p.setUnused(true)
	p.setBrk(brk)

	nmi := c.needNmi
	if nmi {
		c.needNmi = false
	}
	c.push8(uint8(p))
	c.P.setIntDisable(true)

	if nmi {
		c.PC = c.read16(NMIVector)
	} else {
		c.PC = c.read16(IRQVector)
	}

	// Guard against running a just-latched NMI as the very first instruction
	// after servicing this interrupt (needed so e.g. an IRQ handler's first
	// instruction always executes before a pending NMI fires).
	c.prevNeedNmi = false
}

/* tracing */

func (c *CPU) SetTracer(t *Tracer) { c.tracer = t }

func (c *CPU) traceStep() {
	if c.tracer != nil {
		c.tracer.Record(c)
	}
}

// Step executes exactly one "step": either the pending interrupt sequence
// latched by the previous instruction's penultimate cycle, or one opcode
// fetch-decode-execute. It returns the number of CPU cycles consumed.
func (c *CPU) Step() int {
	before := c.Cycles
	if c.halted {
		return 0
	}

	if c.prevRunIRQ || c.prevNeedNmi {
		c.serviceInterrupt(false)
		return int(c.Cycles - before)
	}

	c.traceStep()

	opcode := c.read8(c.PC)
	c.PC++
	op := opcodeTable[opcode]
	op.exec(c, op)

	return int(c.Cycles - before)
}

// State is the register-file and interrupt-latch snapshot a save state
// captures; the bus, PPU, APU, and mapper are captured separately.
type State struct {
	A, X, Y, SP uint8
	PC          uint16
	P           uint8

	Cycles int64

	NMILine     bool
	PrevNMILine bool
	NeedNMI     bool
	PrevNeedNMI bool

	IRQSources IRQSource
	RunIRQ     bool
	PrevRunIRQ bool

	Halted bool
}

func (c *CPU) Snapshot() State {
	return State{
		A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC, P: uint8(c.P),
		Cycles:      c.Cycles,
		NMILine:     c.nmiLine,
		PrevNMILine: c.prevNmiLine,
		NeedNMI:     c.needNmi,
		PrevNeedNMI: c.prevNeedNmi,
		IRQSources:  c.irqSources,
		RunIRQ:      c.runIRQ,
		PrevRunIRQ:  c.prevRunIRQ,
		Halted:      c.halted,
	}
}

func (c *CPU) Restore(s State) {
	c.A, c.X, c.Y, c.SP, c.PC, c.P = s.A, s.X, s.Y, s.SP, s.PC, P(s.P)
	c.Cycles = s.Cycles
	c.nmiLine, c.prevNmiLine = s.NMILine, s.PrevNMILine
	c.needNmi, c.prevNeedNmi = s.NeedNMI, s.PrevNeedNMI
	c.irqSources = s.IRQSources
	c.runIRQ, c.prevRunIRQ = s.RunIRQ, s.PrevRunIRQ
	c.halted = s.Halted
}
