package nescore

import (
	"io"

	"nescore/internal/apu"
	"nescore/internal/bus"
	"nescore/internal/cart"
	"nescore/internal/cpu"
	"nescore/internal/ppu"
)

// Emu is one running (or not-yet-loaded) machine: the six chips, wired
// together, plus the bookkeeping a host needs between step() calls. Its
// zero value (returned by BootEmpty) has every method below behave as a
// no-op until it's replaced or loaded into via LoadFromEmu.
type Emu struct {
	cart   *cart.Cartridge
	mapper interface{}
	bus    *bus.Bus
	cpu    *cpu.CPU
	ppu    *ppu.PPU
	apu    *apu.APU

	samples []int16

	framesThisSecond int
	cyclesAtLastTally int64
	fps               int
}

// cyclesPerSecond approximates the NTSC CPU clock; get_fps uses it to turn
// elapsed CPU cycles into a rolling frames-per-second estimate without
// depending on wall-clock time, which this package never reads.
const cyclesPerSecond = 1789773

// Step executes exactly one CPU instruction (or a pending interrupt
// sequence), ticking the PPU and APU alongside it, and returns the number
// of CPU cycles it consumed, including any DMA stall cycles the instruction
// triggered. It is a no-op returning 0 on an empty Emu.
func (e *Emu) Step() int {
	if e.cpu == nil {
		return 0
	}
	return e.cpu.Step()
}

// StepUntilVBlank runs Step repeatedly until the PPU starts scanline 241
// (the start of vblank), i.e. until exactly one frame's worth of pixels has
// been produced. It is a no-op on an empty Emu.
func (e *Emu) StepUntilVBlank() {
	if e.cpu == nil {
		return
	}
	for {
		e.cpu.Step()
		if e.ppu.FrameReady() {
			break
		}
	}
	e.tallyFrame()
}

func (e *Emu) tallyFrame() {
	e.framesThisSecond++
	if e.cpu.CurrentCycle()-e.cyclesAtLastTally >= cyclesPerSecond {
		e.fps = e.framesThisSecond
		e.framesThisSecond = 0
		e.cyclesAtLastTally = e.cpu.CurrentCycle()
	}
}

// Reset reasserts the console's reset line: PC is reloaded from the reset
// vector, the stack pointer is decremented by 3 without writing memory, I is
// set, PRG/CHR/SRAM/mirroring are left untouched, and the PPU's vblank flag
// is cleared. It is a no-op on an empty Emu.
func (e *Emu) Reset() {
	if e.cpu == nil {
		return
	}
	e.cpu.Reset(true)
	e.ppu.Reset()
	e.bus.Reset()
}

// GetRawScreen returns the current frame's pixels as packed RGBA bytes
// (256*240*4), row-major, opaque alpha. Each call converts the PPU's
// framebuffer into a newly allocated slice that the caller owns.
// It returns nil on an empty Emu.
func (e *Emu) GetRawScreen() []byte {
	if e.ppu == nil {
		return nil
	}
	fb := e.ppu.Framebuffer
	out := make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4)
	for i, rgb := range fb {
		out[i*4+0] = uint8(rgb >> 16)
		out[i*4+1] = uint8(rgb >> 8)
		out[i*4+2] = uint8(rgb)
		out[i*4+3] = 0xFF
	}
	return out
}

// drainSamples pulls whatever the APU has mixed since the last call into
// e.samples.
func (e *Emu) drainSamples() {
	if e.apu == nil {
		return
	}
	e.samples = append(e.samples, e.apu.EndFrame()...)
}

// GetRawSamples returns the signed 16-bit mono PCM samples produced since
// the last ConsumeSamples call, at 44.1kHz.
func (e *Emu) GetRawSamples() []int16 {
	e.drainSamples()
	return e.samples
}

// GetSamplesCount reports len(GetRawSamples()) without allocating a copy.
func (e *Emu) GetSamplesCount() int {
	e.drainSamples()
	return len(e.samples)
}

// ConsumeSamples discards every sample returned by the most recent
// GetRawSamples/GetSamplesCount call, so the host's next pull only sees
// audio produced afterward.
func (e *Emu) ConsumeSamples() {
	e.samples = e.samples[:0]
}

// ButtonPressed sets every button named in mask as held down on controller
// 1. mask uses the bit layout of the Button* constants.
func (e *Emu) ButtonPressed(mask uint8) {
	if e.bus == nil {
		return
	}
	e.bus.Pads().Pad1.SetButton(mask, true)
}

// ButtonReleased clears every button named in mask on controller 1.
func (e *Emu) ButtonReleased(mask uint8) {
	if e.bus == nil {
		return
	}
	e.bus.Pads().Pad1.SetButton(mask, false)
}

// SaveSRAM returns a copy of the cartridge's battery-backed work RAM, or nil
// if the cartridge has none (or none is loaded).
func (e *Emu) SaveSRAM() []byte {
	if e.cart == nil || !e.cart.Battery {
		return nil
	}
	return append([]byte(nil), e.cart.SRAM...)
}

// LoadSRAM copies data into the cartridge's battery-backed work RAM,
// truncating or zero-padding to its size. It is a no-op if no cartridge
// with battery-backed RAM is loaded.
func (e *Emu) LoadSRAM(data []byte) {
	if e.cart == nil || !e.cart.Battery {
		return
	}
	n := copy(e.cart.SRAM, data)
	for i := n; i < len(e.cart.SRAM); i++ {
		e.cart.SRAM[i] = 0
	}
}

// Peek reads one CPU-bus byte without side effects (no PPU register
// latching, no OAM DMA trigger), for hosts that want to inspect work RAM or
// a cartridge's test-status bytes between steps. It returns 0 on an empty
// Emu.
func (e *Emu) Peek(addr uint16) uint8 {
	if e.cpu == nil {
		return 0
	}
	return e.cpu.Peek8(addr)
}

// GetFPS reports the most recently completed second's frame count, as
// measured in emulated CPU cycles rather than wall-clock time.
func (e *Emu) GetFPS() int {
	return e.fps
}

// EnableTrace makes the CPU write one line per executed instruction to w, in
// the nestest reference log format, until DisableTrace is called. It is a
// no-op on an empty Emu.
func (e *Emu) EnableTrace(w io.Writer) {
	if e.cpu == nil {
		return
	}
	e.cpu.SetTracer(cpu.NewTracer(w))
}

// DisableTrace stops a trace previously started with EnableTrace.
func (e *Emu) DisableTrace() {
	if e.cpu == nil {
		return
	}
	e.cpu.SetTracer(nil)
}
