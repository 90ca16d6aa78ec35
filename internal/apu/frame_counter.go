package apu

import "nescore/internal/cpu"

type frameEvent uint8

const (
	noEvent frameEvent = iota
	quarterEvent
	halfEvent
)

// stepCycles gives the CPU-cycle offset of each of the six sequencer steps;
// the last step in each mode is the wraparound point. 4-step mode repeats
// its last step cycle three times (28, 29, 30) so the frame IRQ, which is
// asserted on each of those cycles rather than just once, stays accurate.
var stepCycles = [2][6]uint32{
	{7457, 14913, 22371, 29828, 29829, 29830},
	{7457, 14913, 22371, 29829, 37281, 37282},
}

// stepEvents gives the quarter/half-frame clock fired at each step, shared
// by both modes since the two tables line up positionally.
var stepEvents = [6]frameEvent{quarterEvent, halfEvent, quarterEvent, noEvent, halfEvent, noEvent}

type frameSequencer struct {
	cpu CPU

	mode       int // 0: 4-step, 1: 5-step
	inhibitIRQ bool

	prevCycle uint32
	step      int

	pending int8 // delay counter before a $4017 write takes effect, -1 idle
	nextVal uint8
}

func (f *frameSequencer) reset(soft bool) {
	f.prevCycle, f.step = 0, 0
	f.pending = -1
	if !soft {
		f.mode = 0
		f.inhibitIRQ = false
	}
}

func (f *frameSequencer) write(val uint8) {
	f.nextVal = val
	inhibit := val&0x40 != 0
	f.inhibitIRQ = inhibit
	if inhibit {
		f.cpu.ClearIRQ(cpu.IRQFrameCounter)
	}
	if f.cpu.CurrentCycle()%2 == 0 {
		f.pending = 3
	} else {
		f.pending = 4
	}
}

func (f *frameSequencer) tick(a *APU) {
	f.prevCycle++
	if f.prevCycle >= stepCycles[f.mode][f.step] {
		if f.mode == 0 && f.step >= 3 && !f.inhibitIRQ {
			f.cpu.RaiseIRQ(cpu.IRQFrameCounter)
		}
		switch stepEvents[f.step] {
		case quarterEvent:
			a.quarterFrame()
		case halfEvent:
			a.quarterFrame()
			a.halfFrame()
		}
		f.step++
		if f.step >= 6 {
			f.step = 0
			f.prevCycle = 0
		}
	}

	if f.pending >= 0 {
		f.pending--
		if f.pending == 0 {
			f.pending = -1
			if f.nextVal&0x80 != 0 {
				f.mode = 1
			} else {
				f.mode = 0
			}
			f.step, f.prevCycle = 0, 0
			if f.mode == 1 {
				a.quarterFrame()
				a.halfFrame()
			}
		}
	}
}
