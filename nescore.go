// Package nescore is the stable, host-facing surface of the emulator: a
// single Emu type wired to the internal CPU/PPU/APU/bus/mapper chips, plus
// the functions that load a ROM, step the machine, and pull frames, audio,
// and battery RAM back out.
//
// Everything under internal/ is an implementation detail; a host embedding
// this package (a CLI frontend, a test harness, a future WASM build)
// should never need to import anything below this file and emu.go.
package nescore

import (
	"errors"
	"fmt"

	"nescore/ines"
	"nescore/internal/apu"
	"nescore/internal/bus"
	"nescore/internal/cart"
	"nescore/internal/cpu"
	"nescore/internal/log"
	"nescore/internal/mapper"
	"nescore/internal/ppu"
	"nescore/internal/snapshot"
)

// LoadError wraps any failure encountered while decoding or wiring up a
// ROM image, so callers can type-switch on the ines/mapper sentinel errors
// it wraps without reaching into this package's internals.
type LoadError struct {
	err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("nescore: %s", e.err) }
func (e *LoadError) Unwrap() error { return e.err }

// Button bits, in the order they shift out of $4016/$4017 on controller 1.
const (
	ButtonA uint8 = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

const samplesPerSecond = 44100

// BootFromBytes parses rom as an iNES/NES 2.0 image (optionally ZIP-wrapped)
// and wires up a running Emu. The returned error is always a *LoadError
// wrapping one of ines.ErrBadHeader, ines.ErrTruncatedRom, ines.ErrBadZip,
// or *mapper.UnsupportedMapper.
func BootFromBytes(rom []byte) (*Emu, error) {
	r, err := ines.Load(rom)
	if err != nil {
		return nil, &LoadError{err: err}
	}

	c := cart.FromRom(r)
	m, err := mapper.New(c)
	if err != nil {
		return nil, &LoadError{err: err}
	}

	e := newEmu(c, m)
	e.cpu.Reset(false)
	log.ModEmu.InfoZ("rom loaded").
		Hex16("mapper", c.Mapper).
		Int("prg-kb", len(c.PRG)/1024).
		Int("chr-kb", len(c.CHR)/1024).
		End()
	return e, nil
}

// BootEmpty returns an Emu with no cartridge loaded. Every method on it is a
// safe no-op until a ROM is booted into it via LoadFromEmu or by replacing
// it with the result of BootFromBytes; it exists so a host can hold a
// non-nil Emu handle before the user has picked a ROM.
func BootEmpty() *Emu {
	return &Emu{}
}

var errEmpty = errors.New("nescore: emu has no cartridge loaded")

func newEmu(c *cart.Cartridge, m mapper.Mapper) *Emu {
	b := bus.New(m)
	cc := cpu.New(b)
	b.AttachCPU(cc)
	p := ppu.New(cc, m, c)
	b.AttachPPU(p)
	a := apu.New(cc, b, samplesPerSecond, c.TVSystem)
	b.AttachAPU(a)

	if attacher, ok := m.(interface {
		AttachCPU(interface{ CurrentCycle() int64 })
	}); ok {
		attacher.AttachCPU(cc)
	}

	return &Emu{
		cart:   c,
		mapper: m,
		bus:    b,
		cpu:    cc,
		ppu:    p,
		apu:    a,
	}
}

// LoadFromEmu replaces e's entire state (every chip register, RAM, and the
// cartridge's mutable storage) with other's, via a snapshot round-trip. The
// two must have been booted from the same ROM (same mapper, same PRG); a
// mismatch returns snapshot.ErrStateMismatch and leaves e untouched. An
// empty e (from BootEmpty) is first wired up with its own chips and its own
// copy of other's cartridge storage.
func (e *Emu) LoadFromEmu(other *Emu) error {
	if other.cart == nil {
		return errEmpty
	}
	if e.cart == nil {
		// An empty Emu gets its own chips and its own copy of other's
		// mutable cartridge storage before the state is applied.
		c := *other.cart
		c.CHR = append([]byte(nil), other.cart.CHR...)
		c.SRAM = append([]byte(nil), other.cart.SRAM...)
		m, err := mapper.New(&c)
		if err != nil {
			return err
		}
		*e = *newEmu(&c, m)
	}
	s := snapshot.Capture(other.cpu, other.ppu, other.apu, other.bus, other.cart)
	return snapshot.Apply(s, e.cpu, e.ppu, e.apu, e.bus, e.cart)
}
