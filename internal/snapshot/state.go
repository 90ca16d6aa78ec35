// Package snapshot implements save states: a point-in-time capture of every
// chip's state, encoded with encoding/gob and tagged with a fingerprint of
// the cartridge it was taken against so a state can't silently be loaded
// onto the wrong ROM.
package snapshot

import (
	"bytes"
	"encoding/gob"
	"errors"
	"hash/crc32"

	"github.com/go-faster/jx"

	"nescore/internal/apu"
	"nescore/internal/bus"
	"nescore/internal/cart"
	"nescore/internal/cpu"
	"nescore/internal/ppu"
)

// version is bumped whenever the shape of State changes incompatibly.
const version = 1

// ErrStateMismatch is returned by Decode when a state's cartridge
// fingerprint doesn't match the ROM it's being loaded against.
var ErrStateMismatch = errors.New("snapshot: state was saved against a different cartridge")

// State is the complete, self-contained snapshot of one moment of
// emulation: every chip's internal registers and the cartridge's mutable
// storage (SRAM and CHR RAM), but not the host-facing framebuffer or audio
// queue, both of which a single subsequent frame regenerates.
type State struct {
	Version     int
	Fingerprint uint32

	CPU  cpu.State
	PPU  ppu.State
	APU  apu.State
	Bus  bus.State
	Cart cart.State
}

// Fingerprint hashes a cartridge's PRG ROM contents and its mapper and
// submapper numbers, giving a stable identity to check a loaded state
// against.
func Fingerprint(c *cart.Cartridge) uint32 {
	h := crc32.NewIEEE()
	h.Write(c.PRG)
	h.Write([]byte{uint8(c.Mapper), uint8(c.Mapper >> 8), c.SubMapper})
	return h.Sum32()
}

// Capture builds a State from the four chips and the cartridge's mutable
// storage.
func Capture(c *cpu.CPU, p *ppu.PPU, a *apu.APU, b *bus.Bus, cart *cart.Cartridge) *State {
	return &State{
		Version:     version,
		Fingerprint: Fingerprint(cart),
		CPU:         c.Snapshot(),
		PPU:         p.Snapshot(),
		APU:         a.Snapshot(),
		Bus:         b.Snapshot(),
		Cart:        cart.Snapshot(),
	}
}

// Apply restores a previously captured State onto the four chips and the
// cartridge, after checking its fingerprint matches.
func Apply(s *State, c *cpu.CPU, p *ppu.PPU, a *apu.APU, b *bus.Bus, cart *cart.Cartridge) error {
	if s.Fingerprint != Fingerprint(cart) {
		return ErrStateMismatch
	}
	c.Restore(s.CPU)
	p.Restore(s.PPU)
	a.Restore(s.APU)
	b.Restore(s.Bus)
	cart.Restore(s.Cart)
	return nil
}

// Encode serializes a State to its wire form.
func Encode(s *State) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a State previously produced by Encode.
func Decode(data []byte) (*State, error) {
	var s State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MismatchDiagnostic renders the fingerprint mismatch behind ErrStateMismatch
// as a small JSON object (the state's fingerprint vs. the cartridge
// currently loaded), for host UIs that want to report it machine-readably
// rather than just bubbling up the error.
func MismatchDiagnostic(s *State, current *cart.Cartridge) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("stateFingerprint", func(e *jx.Encoder) { e.UInt32(s.Fingerprint) })
		e.Field("cartFingerprint", func(e *jx.Encoder) { e.UInt32(Fingerprint(current)) })
		e.Field("stateVersion", func(e *jx.Encoder) { e.Int(s.Version) })
	})
	return e.Bytes()
}
