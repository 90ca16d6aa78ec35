package snapshot

import (
	"testing"

	"nescore/internal/apu"
	"nescore/internal/bus"
	"nescore/internal/cart"
	"nescore/internal/cpu"
	"nescore/internal/mapper"
	"nescore/internal/ppu"
)

func newTestSystem(t *testing.T) (*cpu.CPU, *ppu.PPU, *apu.APU, *bus.Bus, *cart.Cartridge) {
	t.Helper()
	c := &cart.Cartridge{
		PRG: make([]byte, 0x4000),
		CHR: make([]byte, 0x2000),
	}
	m, err := mapper.New(c)
	if err != nil {
		t.Fatalf("mapper.New: %v", err)
	}

	b := bus.New(m)
	cc := cpu.New(b)
	b.AttachCPU(cc)
	p := ppu.New(cc, m, c)
	b.AttachPPU(p)
	a := apu.New(cc, b, 44100, c.TVSystem)
	b.AttachAPU(a)

	return cc, p, a, b, c
}

func TestCaptureApplyRoundTrip(t *testing.T) {
	cc, p, a, b, c := newTestSystem(t)

	cc.PC = 0xC000
	cc.A = 0x42
	b.Write8(0x0010, 0x99)

	s := Capture(cc, p, a, b, c)
	data, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	cc2, p2, a2, b2, c2 := newTestSystem(t)
	if err := Apply(decoded, cc2, p2, a2, b2, c2); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if cc2.PC != 0xC000 || cc2.A != 0x42 {
		t.Errorf("CPU state not restored: PC=%04X A=%02X", cc2.PC, cc2.A)
	}
	if got := b2.Read8(0x0010); got != 0x99 {
		t.Errorf("RAM not restored: got %02X, want 99", got)
	}
}

func TestApplyRejectsMismatchedCartridge(t *testing.T) {
	cc, p, a, b, c := newTestSystem(t)
	s := Capture(cc, p, a, b, c)

	other := &cart.Cartridge{PRG: make([]byte, 0x8000), CHR: make([]byte, 0x2000)}
	m2, _ := mapper.New(other)
	b2 := bus.New(m2)
	cc2 := cpu.New(b2)
	b2.AttachCPU(cc2)
	p2 := ppu.New(cc2, m2, other)
	b2.AttachPPU(p2)
	a2 := apu.New(cc2, b2, 44100, other.TVSystem)
	b2.AttachAPU(a2)

	if err := Apply(s, cc2, p2, a2, b2, other); err != ErrStateMismatch {
		t.Errorf("Apply error = %v, want ErrStateMismatch", err)
	}
}
