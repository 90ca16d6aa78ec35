package bus

import (
	"testing"

	"nescore/internal/cpu"
)

type stubPPU struct {
	regs      [8]uint8
	oam       [256]uint8
	oamIdx    int
	steps     int
}

func (s *stubPPU) ReadRegister(reg uint16) uint8  { return s.regs[reg&0x07] }
func (s *stubPPU) WriteRegister(reg uint16, v uint8) { s.regs[reg&0x07] = v }
func (s *stubPPU) WriteOAMDMAByte(v uint8) {
	s.oam[s.oamIdx] = v
	s.oamIdx++
}
func (s *stubPPU) Step() { s.steps++ }

type stubAPU struct {
	writes map[uint16]uint8
	ticks  int
}

func (s *stubAPU) ReadRegister(addr uint16) uint8 { return 0x42 }
func (s *stubAPU) WriteRegister(addr uint16, v uint8) {
	if s.writes == nil {
		s.writes = make(map[uint16]uint8)
	}
	s.writes[addr] = v
}
func (s *stubAPU) Tick() { s.ticks++ }

type stubMapper struct {
	prg [0xC000]uint8
}

func (m *stubMapper) CPURead(addr uint16) uint8       { return m.prg[addr-0x4020] }
func (m *stubMapper) CPUWrite(addr uint16, v uint8)   { m.prg[addr-0x4020] = v }
func (m *stubMapper) PPURead(addr uint16) uint8       { return 0 }
func (m *stubMapper) PPUWrite(addr uint16, v uint8)   {}
func (m *stubMapper) TickCPU()                        {}
func (m *stubMapper) NotifyPPUAddr(addr uint16)       {}
func (m *stubMapper) IRQPending() bool                { return false }
func (m *stubMapper) ClearIRQ()                       {}
func (m *stubMapper) Reset()                          {}
func (m *stubMapper) SaveState() []byte               { return nil }
func (m *stubMapper) LoadState(data []byte)           {}

func newTestBus() (*Bus, *stubPPU, *stubAPU, *cpu.CPU) {
	m := &stubMapper{}
	b := New(m)
	p := &stubPPU{}
	a := &stubAPU{}
	b.AttachPPU(p)
	b.AttachAPU(a)
	c := cpu.New(b)
	b.AttachCPU(c)
	return b, p, a, c
}

func TestRAMMirroring(t *testing.T) {
	b, _, _, _ := newTestBus()

	b.Write8(0x0000, 0xAB)
	if got := b.Read8(0x0800); got != 0xAB {
		t.Errorf("mirrored RAM read = %02X, want AB", got)
	}
	if got := b.Read8(0x1800); got != 0xAB {
		t.Errorf("mirrored RAM read = %02X, want AB", got)
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	b, p, _, _ := newTestBus()

	b.Write8(0x2001, 0x1E) // PPUMASK
	if p.regs[1] != 0x1E {
		t.Fatalf("PPU register not written")
	}
	b.Write8(0x2009, 0x00) // mirrors 0x2001
	if got := b.Read8(0x3FF9); got != p.regs[1] {
		t.Errorf("PPU register mirroring broken: got %02X", got)
	}
}

func TestAPURegisterDispatch(t *testing.T) {
	b, _, a, _ := newTestBus()

	b.Write8(0x4000, 0x7F)
	if a.writes[0x4000] != 0x7F {
		t.Errorf("APU register write not dispatched")
	}
	if got := b.Read8(0x4015); got != 0x42 {
		t.Errorf("APU status read = %02X, want 42", got)
	}
}

func TestJoypadReadWrite(t *testing.T) {
	b, _, _, _ := newTestBus()

	b.Pads().Pad1.SetButton(1, true) // A button held
	b.Write8(0x4016, 0x01)           // strobe high
	b.Write8(0x4016, 0x00)           // strobe low, latch
	if got := b.Read8(0x4016) & 0x01; got != 1 {
		t.Errorf("joypad 1 bit 0 = %d, want 1 (A pressed)", got)
	}
}

func TestOAMDMATransfersAllBytes(t *testing.T) {
	b, p, _, _ := newTestBus()

	for i := 0; i < 256; i++ {
		b.Write8(0x0300+uint16(i), uint8(i))
	}
	b.Write8(0x4014, 0x03) // page 3 -> $0300-$03FF

	if p.oamIdx != 256 {
		t.Fatalf("OAM DMA transferred %d bytes, want 256", p.oamIdx)
	}
	for i := 0; i < 256; i++ {
		if p.oam[i] != uint8(i) {
			t.Errorf("oam[%d] = %02X, want %02X", i, p.oam[i], uint8(i))
		}
	}
}

func TestOAMDMAStallsAtLeast513Cycles(t *testing.T) {
	b, p, _, c := newTestBus()

	before := p.steps
	cyclesBefore := c.CurrentCycle()
	b.Write8(0x4014, 0x00)
	after := p.steps
	cyclesAfter := c.CurrentCycle()

	if after-before < 513*3 {
		t.Errorf("PPU steps during OAM DMA = %d, want at least %d", after-before, 513*3)
	}

	// StallCPU's ticks must also advance cpu.Cycles, or the CPU's own cycle
	// counter falls out of sync with the PPU/APU/mapper it's paced against.
	if got := cyclesAfter - cyclesBefore; got != 513 && got != 514 {
		t.Errorf("cpu.Cycles advanced by %d during OAM DMA, want 513 or 514", got)
	}
}

func TestMapperDispatchAboveCartWindow(t *testing.T) {
	b, _, _, _ := newTestBus()

	b.Write8(0x8000, 0x99)
	if got := b.Read8(0x8000); got != 0x99 {
		t.Errorf("mapper dispatch broken: got %02X", got)
	}
}
