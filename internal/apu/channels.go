package apu

// squareDuty holds the four duty-cycle waveforms in output order; the
// sequencer position counts up from 0 through each row.
var squareDuty = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

type pulseChannel struct {
	isChannel1 bool

	envelope envelope
	length   lengthCounter

	duty    uint8
	dutyPos uint8

	timerPeriod uint16
	timer       uint16

	sweepEnabled bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepDivider uint8
	sweepReload  bool
}

func (p *pulseChannel) write(reg uint16, val uint8) {
	switch reg {
	case 0: // $4000/$4004
		p.envelope.write(val)
		p.duty = val >> 6
		p.length.halt = val&0x20 != 0
	case 1: // $4001/$4005 sweep
		p.sweepEnabled = val&0x80 != 0
		p.sweepPeriod = (val>>4)&0x07 + 1
		p.sweepNegate = val&0x08 != 0
		p.sweepShift = val & 0x07
		p.sweepReload = true
	case 2: // $4002/$4006 timer low
		p.timerPeriod = p.timerPeriod&0x0700 | uint16(val)
	case 3: // $4003/$4007 timer high + length load
		p.timerPeriod = p.timerPeriod&0x00FF | uint16(val&0x07)<<8
		p.length.load(val >> 3)
		p.dutyPos = 0
		p.envelope.restart()
	}
}

func (p *pulseChannel) targetPeriod() int32 {
	change := int32(p.timerPeriod >> p.sweepShift)
	if p.sweepNegate {
		change = -change
		if p.isChannel1 {
			change--
		}
	}
	return int32(p.timerPeriod) + change
}

func (p *pulseChannel) sweepMuted() bool {
	target := p.targetPeriod()
	return p.timerPeriod < 8 || target > 0x7FF
}

func (p *pulseChannel) tickSweep() {
	target := p.targetPeriod()
	if p.sweepDivider == 0 && p.sweepEnabled && p.sweepShift > 0 && !p.sweepMuted() {
		p.timerPeriod = uint16(target)
	}
	if p.sweepDivider == 0 || p.sweepReload {
		p.sweepDivider = p.sweepPeriod
		p.sweepReload = false
	} else {
		p.sweepDivider--
	}
}

func (p *pulseChannel) tickTimer() {
	if p.timer == 0 {
		p.timer = p.timerPeriod
		p.dutyPos = (p.dutyPos + 1) & 0x07
	} else {
		p.timer--
	}
}

func (p *pulseChannel) output() uint8 {
	if !p.length.active() || p.sweepMuted() || squareDuty[p.duty][p.dutyPos] == 0 {
		return 0
	}
	return p.envelope.volume()
}

func (p *pulseChannel) reset() {
	*p = pulseChannel{isChannel1: p.isChannel1}
}

var triangleSequence = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

type triangleChannel struct {
	length lengthCounter

	timerPeriod uint16
	timer       uint16
	pos         uint8

	linearCounter       uint8
	linearCounterReload uint8
	linearControl       bool
	linearReload        bool
}

func (t *triangleChannel) write(reg uint16, val uint8) {
	switch reg {
	case 0: // $4008
		t.linearControl = val&0x80 != 0
		t.linearCounterReload = val & 0x7F
		t.length.halt = t.linearControl
	case 2: // $400A
		t.timerPeriod = t.timerPeriod&0x0700 | uint16(val)
	case 3: // $400B
		t.timerPeriod = t.timerPeriod&0x00FF | uint16(val&0x07)<<8
		t.length.load(val >> 3)
		t.linearReload = true
	}
}

func (t *triangleChannel) tickLinearCounter() {
	if t.linearReload {
		t.linearCounter = t.linearCounterReload
	} else if t.linearCounter > 0 {
		t.linearCounter--
	}
	if !t.linearControl {
		t.linearReload = false
	}
}

func (t *triangleChannel) tickTimer() {
	if t.timer == 0 {
		t.timer = t.timerPeriod
		if t.length.active() && t.linearCounter > 0 {
			t.pos = (t.pos + 1) & 0x1F
		}
	} else {
		t.timer--
	}
}

func (t *triangleChannel) output() uint8 {
	// Silencing the channel entirely (rather than letting the sequencer
	// freeze) avoids the audible pop ultrasonic periods below 2 would cause.
	if t.timerPeriod < 2 {
		return 0
	}
	return triangleSequence[t.pos]
}

func (t *triangleChannel) reset() { *t = triangleChannel{} }

// noisePeriodTable and noisePeriodTablePAL are the $400E period lookup, in
// APU clock cycles; PAL's are shorter because the chip runs off a slower
// clock but needs the same audible frequencies.
var noisePeriodTable = [16]uint16{4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068}
var noisePeriodTablePAL = [16]uint16{4, 7, 14, 30, 60, 88, 118, 148, 188, 236, 354, 472, 708, 944, 1890, 3778}

type noiseChannel struct {
	envelope envelope
	length   lengthCounter

	pal bool

	mode        bool
	timerPeriod uint16
	timer       uint16
	shiftReg    uint16
}

func (n *noiseChannel) periodTable() *[16]uint16 {
	if n.pal {
		return &noisePeriodTablePAL
	}
	return &noisePeriodTable
}

func (n *noiseChannel) write(reg uint16, val uint8) {
	switch reg {
	case 0: // $400C
		n.envelope.write(val)
		n.length.halt = val&0x20 != 0
	case 2: // $400E
		n.mode = val&0x80 != 0
		n.timerPeriod = n.periodTable()[val&0x0F]
	case 3: // $400F
		n.length.load(val >> 3)
		n.envelope.restart()
	}
}

func (n *noiseChannel) tickTimer() {
	if n.timer == 0 {
		n.timer = n.timerPeriod
		tap := uint8(1)
		if n.mode {
			tap = 6
		}
		feedback := (n.shiftReg ^ (n.shiftReg >> tap)) & 0x01
		n.shiftReg >>= 1
		n.shiftReg |= feedback << 14
	} else {
		n.timer--
	}
}

func (n *noiseChannel) output() uint8 {
	if !n.length.active() || n.shiftReg&0x01 != 0 {
		return 0
	}
	return n.envelope.volume()
}

func (n *noiseChannel) reset() {
	pal := n.pal
	*n = noiseChannel{pal: pal, shiftReg: 1}
	n.timerPeriod = n.periodTable()[0]
}
