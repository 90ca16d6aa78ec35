// Package apu implements the 5-channel Audio Processing Unit: two pulse
// channels, triangle, noise, and the delta-modulation channel, mixed through
// a frame sequencer and a band-limited resampler down to host sample rate.
package apu

import (
	"nescore/ines"
	"nescore/internal/cpu"
	"nescore/internal/log"
)

const ntscClockRate = 1789773
const palClockRate = 1662607

// CPU is the subset of *cpu.CPU the APU needs: IRQ lines and the cycle
// counter the frame-counter write-delay depends on.
type CPU interface {
	RaiseIRQ(src cpu.IRQSource)
	ClearIRQ(src cpu.IRQSource)
	HasIRQSource(src cpu.IRQSource) bool
	CurrentCycle() int64
}

// DMAReader lets the DMC channel perform its sample-fetch DMA: a CPU-bus
// read that also stalls the CPU for the cycles real hardware spends handing
// the bus to the APU.
type DMAReader interface {
	ReadDMCSample(addr uint16) uint8
	StallCPU(cycles int)
}

// APU owns every channel, the frame sequencer, and the output mixer.
type APU struct {
	cpu CPU
	dma DMAReader

	pulse1, pulse2 pulseChannel
	triangle       triangleChannel
	noise          noiseChannel
	dmc            dmcChannel

	frame frameSequencer
	mix   mixer

	cycle uint64
}

// New builds an APU clocked for tv. PAL and Dendy consoles share the same
// noise/DMC period tables and run off a slower CPU clock than NTSC; the
// frame sequencer's cycle counts are identical on every system.
func New(c CPU, dma DMAReader, sampleRate int, tv ines.TVSystem) *APU {
	pal := tv == ines.PAL || tv == ines.Dendy
	a := &APU{cpu: c, dma: dma}
	a.pulse1.isChannel1 = true
	a.noise.pal = pal
	a.noise.shiftReg = 1
	a.noise.timerPeriod = a.noise.periodTable()[0]
	a.dmc.cpu = c
	a.dmc.dma = dma
	a.dmc.pal = pal
	clockRate := ntscClockRate
	if pal {
		clockRate = palClockRate
	}
	a.mix.init(sampleRate, clockRate)
	a.frame.cpu = c
	return a
}

func (a *APU) Reset(soft bool) {
	a.cycle = 0
	a.pulse1.reset()
	a.pulse2.reset()
	a.triangle.reset()
	a.noise.reset()
	a.dmc.reset(soft)
	a.frame.reset(soft)
	a.mix.reset()
}

// Tick advances every channel and the frame sequencer by one CPU cycle and
// accumulates the instantaneous output into the resampler.
func (a *APU) Tick() {
	a.triangle.tickTimer()
	if a.cycle%2 == 0 {
		a.pulse1.tickTimer()
		a.pulse2.tickTimer()
		a.noise.tickTimer()
		a.dmc.tickTimer()
	}
	a.frame.tick(a)

	a.mix.sample(a.cycle, a.pulse1.output(), a.pulse2.output(), a.triangle.output(), a.noise.output(), a.dmc.output())
	a.cycle++
}

// quarterFrame clocks envelopes and the triangle's linear counter.
func (a *APU) quarterFrame() {
	a.pulse1.envelope.tick()
	a.pulse2.envelope.tick()
	a.noise.envelope.tick()
	a.triangle.tickLinearCounter()
}

// halfFrame clocks length counters and the sweep units.
func (a *APU) halfFrame() {
	a.pulse1.length.tick()
	a.pulse2.length.tick()
	a.triangle.length.tick()
	a.noise.length.tick()
	a.pulse1.tickSweep()
	a.pulse2.tickSweep()
}

// EndFrame flushes the resampler and returns the host-rate samples produced
// since the last call. The mixer's clock is frame-relative, so the cycle
// counter feeding it resets here too.
func (a *APU) EndFrame() []int16 {
	samples := a.mix.endFrame(a.cycle)
	a.cycle = 0
	return samples
}

func (a *APU) ReadRegister(addr uint16) uint8 {
	if addr == 0x4015 {
		return a.readStatus()
	}
	return 0
}

func (a *APU) WriteRegister(addr uint16, val uint8) {
	switch {
	case addr >= 0x4000 && addr <= 0x4003:
		a.pulse1.write(addr-0x4000, val)
	case addr >= 0x4004 && addr <= 0x4007:
		a.pulse2.write(addr-0x4004, val)
	case addr >= 0x4008 && addr <= 0x400B:
		a.triangle.write(addr-0x4008, val)
	case addr >= 0x400C && addr <= 0x400F:
		a.noise.write(addr-0x400C, val)
	case addr >= 0x4010 && addr <= 0x4013:
		a.dmc.write(addr-0x4010, val)
	case addr == 0x4015:
		a.writeStatus(val)
	case addr == 0x4017:
		a.frame.write(val)
	}
}

func (a *APU) readStatus() uint8 {
	var v uint8
	if a.pulse1.length.counter > 0 {
		v |= 0x01
	}
	if a.pulse2.length.counter > 0 {
		v |= 0x02
	}
	if a.triangle.length.counter > 0 {
		v |= 0x04
	}
	if a.noise.length.counter > 0 {
		v |= 0x08
	}
	if a.dmc.bytesRemaining > 0 {
		v |= 0x10
	}
	if a.cpu.HasIRQSource(cpu.IRQFrameCounter) {
		v |= 0x40
	}
	if a.cpu.HasIRQSource(cpu.IRQDMC) {
		v |= 0x80
	}
	a.cpu.ClearIRQ(cpu.IRQFrameCounter)
	log.ModAPU.DebugZ("read status").Uint8("status", v).End()
	return v
}

func (a *APU) writeStatus(val uint8) {
	a.pulse1.length.setEnabled(val&0x01 != 0)
	a.pulse2.length.setEnabled(val&0x02 != 0)
	a.triangle.length.setEnabled(val&0x04 != 0)
	a.noise.length.setEnabled(val&0x08 != 0)
	a.dmc.setEnabled(val&0x10 != 0)
	a.cpu.ClearIRQ(cpu.IRQDMC)
}

// State captures every channel's audible state plus the frame sequencer;
// the mixer's resampling buffer is excluded; it holds no logical state, only
// in-flight audio that a restored session regenerates from scratch.
type State struct {
	Pulse1, Pulse2 pulseState
	Triangle       triangleState
	Noise          noiseState
	DMC            dmcState
	Frame          frameState
	Cycle          uint64
}

type lengthState struct {
	Enabled bool
	Halt    bool
	Counter uint8
}

func snapshotLength(l lengthCounter) lengthState {
	return lengthState{Enabled: l.enabled, Halt: l.halt, Counter: l.counter}
}
func restoreLength(l *lengthCounter, s lengthState) {
	l.enabled, l.halt, l.counter = s.Enabled, s.Halt, s.Counter
}

type envelopeState struct {
	StartFlag    bool
	Loop         bool
	Constant     bool
	VolumeOrRate uint8
	Divider      uint8
	Decay        uint8
}

func snapshotEnvelope(e envelope) envelopeState {
	return envelopeState{e.startFlag, e.loop, e.constant, e.volumeOrRate, e.divider, e.decay}
}
func restoreEnvelope(e *envelope, s envelopeState) {
	e.startFlag, e.loop, e.constant, e.volumeOrRate, e.divider, e.decay =
		s.StartFlag, s.Loop, s.Constant, s.VolumeOrRate, s.Divider, s.Decay
}

type pulseState struct {
	Envelope envelopeState
	Length   lengthState

	Duty, DutyPos uint8

	TimerPeriod, Timer uint16

	SweepEnabled bool
	SweepPeriod  uint8
	SweepNegate  bool
	SweepShift   uint8
	SweepDivider uint8
	SweepReload  bool
}

func snapshotPulse(p *pulseChannel) pulseState {
	return pulseState{
		Envelope: snapshotEnvelope(p.envelope), Length: snapshotLength(p.length),
		Duty: p.duty, DutyPos: p.dutyPos,
		TimerPeriod: p.timerPeriod, Timer: p.timer,
		SweepEnabled: p.sweepEnabled, SweepPeriod: p.sweepPeriod, SweepNegate: p.sweepNegate,
		SweepShift: p.sweepShift, SweepDivider: p.sweepDivider, SweepReload: p.sweepReload,
	}
}

func restorePulse(p *pulseChannel, s pulseState) {
	restoreEnvelope(&p.envelope, s.Envelope)
	restoreLength(&p.length, s.Length)
	p.duty, p.dutyPos = s.Duty, s.DutyPos
	p.timerPeriod, p.timer = s.TimerPeriod, s.Timer
	p.sweepEnabled, p.sweepPeriod, p.sweepNegate = s.SweepEnabled, s.SweepPeriod, s.SweepNegate
	p.sweepShift, p.sweepDivider, p.sweepReload = s.SweepShift, s.SweepDivider, s.SweepReload
}

type triangleState struct {
	Length                                            lengthState
	TimerPeriod, Timer                                uint16
	Pos                                               uint8
	LinearCounter, LinearCounterReload                uint8
	LinearControl, LinearReload                       bool
}

func snapshotTriangle(t *triangleChannel) triangleState {
	return triangleState{
		Length: snapshotLength(t.length), TimerPeriod: t.timerPeriod, Timer: t.timer, Pos: t.pos,
		LinearCounter: t.linearCounter, LinearCounterReload: t.linearCounterReload,
		LinearControl: t.linearControl, LinearReload: t.linearReload,
	}
}

func restoreTriangle(t *triangleChannel, s triangleState) {
	restoreLength(&t.length, s.Length)
	t.timerPeriod, t.timer, t.pos = s.TimerPeriod, s.Timer, s.Pos
	t.linearCounter, t.linearCounterReload = s.LinearCounter, s.LinearCounterReload
	t.linearControl, t.linearReload = s.LinearControl, s.LinearReload
}

type noiseState struct {
	Envelope                 envelopeState
	Length                   lengthState
	Mode                     bool
	TimerPeriod, Timer       uint16
	ShiftReg                 uint16
}

func snapshotNoise(n *noiseChannel) noiseState {
	return noiseState{
		Envelope: snapshotEnvelope(n.envelope), Length: snapshotLength(n.length),
		Mode: n.mode, TimerPeriod: n.timerPeriod, Timer: n.timer, ShiftReg: n.shiftReg,
	}
}

func restoreNoise(n *noiseChannel, s noiseState) {
	restoreEnvelope(&n.envelope, s.Envelope)
	restoreLength(&n.length, s.Length)
	n.mode, n.timerPeriod, n.timer, n.shiftReg = s.Mode, s.TimerPeriod, s.Timer, s.ShiftReg
}

type dmcState struct {
	IRQEnabled, Loop           bool
	SampleAddr, SampleLen      uint16
	CurAddr, BytesRemaining    uint16
	ReadBuf                    uint8
	BufEmpty                   bool
	ShiftReg, BitsLeft         uint8
	Silence                    bool
	OutputLevel                uint8
	TimerPeriod, Timer         uint16
}

func snapshotDMC(d *dmcChannel) dmcState {
	return dmcState{
		IRQEnabled: d.irqEnabled, Loop: d.loop,
		SampleAddr: d.sampleAddr, SampleLen: d.sampleLen,
		CurAddr: d.curAddr, BytesRemaining: d.bytesRemaining,
		ReadBuf: d.readBuf, BufEmpty: d.bufEmpty,
		ShiftReg: d.shiftReg, BitsLeft: d.bitsLeft, Silence: d.silence,
		OutputLevel: d.outputLevel, TimerPeriod: d.timerPeriod, Timer: d.timer,
	}
}

func restoreDMC(d *dmcChannel, s dmcState) {
	d.irqEnabled, d.loop = s.IRQEnabled, s.Loop
	d.sampleAddr, d.sampleLen = s.SampleAddr, s.SampleLen
	d.curAddr, d.bytesRemaining = s.CurAddr, s.BytesRemaining
	d.readBuf, d.bufEmpty = s.ReadBuf, s.BufEmpty
	d.shiftReg, d.bitsLeft, d.silence = s.ShiftReg, s.BitsLeft, s.Silence
	d.outputLevel, d.timerPeriod, d.timer = s.OutputLevel, s.TimerPeriod, s.Timer
}

type frameState struct {
	Mode       int
	InhibitIRQ bool
	PrevCycle  uint32
	Step       int
	Pending    int8
	NextVal    uint8
}

func snapshotFrame(f *frameSequencer) frameState {
	return frameState{f.mode, f.inhibitIRQ, f.prevCycle, f.step, f.pending, f.nextVal}
}

func restoreFrame(f *frameSequencer, s frameState) {
	f.mode, f.inhibitIRQ, f.prevCycle, f.step, f.pending, f.nextVal =
		s.Mode, s.InhibitIRQ, s.PrevCycle, s.Step, s.Pending, s.NextVal
}

func (a *APU) Snapshot() State {
	return State{
		Pulse1: snapshotPulse(&a.pulse1), Pulse2: snapshotPulse(&a.pulse2),
		Triangle: snapshotTriangle(&a.triangle), Noise: snapshotNoise(&a.noise),
		DMC: snapshotDMC(&a.dmc), Frame: snapshotFrame(&a.frame), Cycle: a.cycle,
	}
}

func (a *APU) Restore(s State) {
	restorePulse(&a.pulse1, s.Pulse1)
	restorePulse(&a.pulse2, s.Pulse2)
	restoreTriangle(&a.triangle, s.Triangle)
	restoreNoise(&a.noise, s.Noise)
	restoreDMC(&a.dmc, s.DMC)
	restoreFrame(&a.frame, s.Frame)
	a.cycle = s.Cycle
}
