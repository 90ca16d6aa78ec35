package apu

import "nescore/internal/cpu"

var dmcPeriodTable = [16]uint16{428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54}
var dmcPeriodTablePAL = [16]uint16{398, 354, 316, 298, 276, 236, 210, 198, 176, 148, 132, 118, 98, 78, 66, 50}

// dmcChannel plays 1-bit delta-PCM samples fetched directly from PRG via CPU
// DMA, the one channel whose output directly stalls the rest of the system.
type dmcChannel struct {
	cpu CPU
	dma DMAReader

	pal bool

	irqEnabled bool
	loop       bool

	sampleAddr uint16
	sampleLen  uint16

	curAddr        uint16
	bytesRemaining uint16

	readBuf  uint8
	bufEmpty bool

	shiftReg uint8
	bitsLeft uint8
	silence  bool

	outputLevel uint8

	timerPeriod uint16
	timer       uint16
}

func (d *dmcChannel) write(reg uint16, val uint8) {
	switch reg {
	case 0: // $4010
		d.irqEnabled = val&0x80 != 0
		d.loop = val&0x40 != 0
		d.timerPeriod = d.periodTable()[val&0x0F]
		if !d.irqEnabled {
			d.cpu.ClearIRQ(cpu.IRQDMC)
		}
	case 1: // $4011
		d.outputLevel = val & 0x7F
	case 2: // $4012
		d.sampleAddr = 0xC000 | uint16(val)<<6
	case 3: // $4013
		d.sampleLen = uint16(val)<<4 | 0x01
	}
}

func (d *dmcChannel) setEnabled(enabled bool) {
	if !enabled {
		d.bytesRemaining = 0
		return
	}
	if d.bytesRemaining == 0 {
		d.curAddr = d.sampleAddr
		d.bytesRemaining = d.sampleLen
	}
}

func (d *dmcChannel) fillBuffer() {
	if !d.bufEmpty || d.bytesRemaining == 0 {
		return
	}
	d.dma.StallCPU(4)
	d.readBuf = d.dma.ReadDMCSample(d.curAddr)
	d.bufEmpty = false

	d.curAddr++
	if d.curAddr == 0 {
		d.curAddr = 0x8000
	}
	d.bytesRemaining--
	if d.bytesRemaining == 0 {
		if d.loop {
			d.curAddr = d.sampleAddr
			d.bytesRemaining = d.sampleLen
		} else if d.irqEnabled {
			d.cpu.RaiseIRQ(cpu.IRQDMC)
		}
	}
}

func (d *dmcChannel) tickTimer() {
	if d.timer == 0 {
		d.timer = d.timerPeriod
		d.clockOutputUnit()
	} else {
		d.timer--
	}
}

func (d *dmcChannel) clockOutputUnit() {
	if !d.silence {
		if d.shiftReg&0x01 != 0 {
			if d.outputLevel <= 125 {
				d.outputLevel += 2
			}
		} else if d.outputLevel >= 2 {
			d.outputLevel -= 2
		}
	}
	d.shiftReg >>= 1

	d.bitsLeft--
	if d.bitsLeft == 0 {
		d.bitsLeft = 8
		if d.bufEmpty {
			d.silence = true
		} else {
			d.silence = false
			d.shiftReg = d.readBuf
			d.bufEmpty = true
			d.fillBuffer()
		}
	}
}

func (d *dmcChannel) output() uint8 { return d.outputLevel }

func (d *dmcChannel) periodTable() *[16]uint16 {
	if d.pal {
		return &dmcPeriodTablePAL
	}
	return &dmcPeriodTable
}

func (d *dmcChannel) reset(soft bool) {
	c, dma, pal := d.cpu, d.dma, d.pal
	*d = dmcChannel{cpu: c, dma: dma, pal: pal, bitsLeft: 8, bufEmpty: true}
	if !soft {
		d.sampleAddr = 0xC000
		d.sampleLen = 1
	}
	d.timerPeriod = d.periodTable()[0]
}
