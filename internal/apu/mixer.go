package apu

import "github.com/arl/blip"

// mixer turns the five channels' instantaneous outputs into a mono sample
// stream at host rate, accumulating deltas into a band-limited synthesis
// buffer rather than naively decimating.
type mixer struct {
	buf        *blip.Buffer
	sampleRate int
	prevOutput int16
}

func (m *mixer) init(sampleRate int, clockRate int) {
	m.sampleRate = sampleRate
	m.buf = blip.NewBuffer(sampleRate)
	m.buf.SetRates(float64(clockRate), float64(sampleRate))
}

func (m *mixer) reset() {
	m.buf.Clear()
	m.prevOutput = 0
}

// mixOutput applies the nonlinear additive mix used by the real hardware's
// DAC: pulses sum through one table, triangle/noise/DMC through another.
func mixOutput(pulse1, pulse2, triangle, noise, dmc uint8) int16 {
	var pulseOut, tndOut float64
	if pulseSum := float64(pulse1) + float64(pulse2); pulseSum > 0 {
		pulseOut = 95.88 / (8128.0/pulseSum + 100.0)
	}
	if tnd := float64(triangle)/8227.0 + float64(noise)/12241.0 + float64(dmc)/22638.0; tnd > 0 {
		tndOut = 159.79 / (1.0/tnd + 100.0)
	}
	return int16((pulseOut + tndOut) * 32767.0)
}

func (m *mixer) sample(cycle uint64, pulse1, pulse2, triangle, noise, dmc uint8) {
	out := mixOutput(pulse1, pulse2, triangle, noise, dmc)
	if out != m.prevOutput {
		m.buf.AddDelta(cycle, int32(out)-int32(m.prevOutput))
		m.prevOutput = out
	}
}

func (m *mixer) endFrame(cycle uint64) []int16 {
	m.buf.EndFrame(int(cycle))
	avail := m.buf.SamplesAvailable()
	if avail == 0 {
		return nil
	}
	out := make([]int16, avail)
	m.buf.ReadSamples(out, avail, false)
	return out
}
