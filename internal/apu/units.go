package apu

// lengthCounterTable maps the 5-bit value written to $4003/4007/400B/400F's
// top bits to the number of frame-sequencer half-frame ticks the channel
// keeps playing.
var lengthCounterTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

type lengthCounter struct {
	enabled bool
	halt    bool
	counter uint8
}

func (l *lengthCounter) load(index uint8) {
	if l.enabled {
		l.counter = lengthCounterTable[index&0x1F]
	}
}

func (l *lengthCounter) setEnabled(enabled bool) {
	l.enabled = enabled
	if !enabled {
		l.counter = 0
	}
}

func (l *lengthCounter) tick() {
	if l.counter > 0 && !l.halt {
		l.counter--
	}
}

func (l *lengthCounter) active() bool { return l.counter > 0 }

// envelope implements the pulse/noise volume envelope: either a constant
// volume or a 4-bit decay counter that optionally loops.
type envelope struct {
	startFlag    bool
	loop         bool
	constant     bool
	volumeOrRate uint8

	divider uint8
	decay   uint8
}

func (e *envelope) write(val uint8) {
	e.loop = val&0x20 != 0
	e.constant = val&0x10 != 0
	e.volumeOrRate = val & 0x0F
}

func (e *envelope) restart() { e.startFlag = true }

func (e *envelope) tick() {
	if e.startFlag {
		e.startFlag = false
		e.decay = 15
		e.divider = e.volumeOrRate
		return
	}
	if e.divider > 0 {
		e.divider--
		return
	}
	e.divider = e.volumeOrRate
	if e.decay > 0 {
		e.decay--
	} else if e.loop {
		e.decay = 15
	}
}

func (e *envelope) volume() uint8 {
	if e.constant {
		return e.volumeOrRate
	}
	return e.decay
}
