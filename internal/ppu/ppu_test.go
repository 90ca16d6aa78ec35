package ppu

import (
	"testing"

	"nescore/internal/cart"
	"nescore/internal/cpu"
	"nescore/ines"
)

// stubBus satisfies cpu.Bus for tests that only need a CPU to exist so the
// PPU has somewhere to deliver NMIs; nothing in these tests steps the CPU.
type stubBus struct{ ram [0x10000]uint8 }

func (b *stubBus) Read8(addr uint16) uint8          { return b.ram[addr] }
func (b *stubBus) Write8(addr uint16, val uint8)    { b.ram[addr] = val }
func (b *stubBus) Peek8(addr uint16) uint8          { return b.ram[addr] }
func (b *stubBus) Tick()                            {}

// stubMapper is a flat 8KiB CHR RAM with no bank switching, enough to
// exercise nametable/palette/register behavior without a real cartridge.
type stubMapper struct{ chr [0x2000]uint8 }

func (m *stubMapper) PPURead(addr uint16) uint8       { return m.chr[addr&0x1FFF] }
func (m *stubMapper) PPUWrite(addr uint16, val uint8) { m.chr[addr&0x1FFF] = val }
func (m *stubMapper) NotifyPPUAddr(addr uint16)       {}

func newTestPPU(mirroring ines.Mirroring) *PPU {
	c := cart.FromRom(&ines.Rom{PRG: make([]byte, 0x8000), Mirroring: mirroring})
	cc := cpu.New(&stubBus{})
	return New(cc, &stubMapper{}, c)
}

func TestScrollRegisterWrites(t *testing.T) {
	p := newTestPPU(ines.Vertical)

	p.WriteRegister(0x2000, 0) // PPUCTRL
	if nt := (p.t >> 10) & 0x03; nt != 0 {
		t.Errorf("t nametable bits = %02b, want 00", nt)
	}

	p.ReadRegister(0x2002) // PPUSTATUS clears w
	if p.w {
		t.Errorf("w = true after PPUSTATUS read, want false")
	}

	p.WriteRegister(0x2005, 0b01111_101) // first PPUSCROLL write
	if coarseX := p.t & 0x001F; coarseX != 0b01111 {
		t.Errorf("t coarse X = %05b, want 01111", coarseX)
	}
	if p.x != 0b101 {
		t.Errorf("fine X = %03b, want 101", p.x)
	}
	if !p.w {
		t.Errorf("w = false after first PPUSCROLL write, want true")
	}

	p.WriteRegister(0x2005, 0b01_011_110) // second PPUSCROLL write
	if coarseY := (p.t >> 5) & 0x001F; coarseY != 0b01011 {
		t.Errorf("t coarse Y = %05b, want 01011", coarseY)
	}
	if fineY := (p.t >> 12) & 0x07; fineY != 0b110 {
		t.Errorf("t fine Y = %03b, want 110", fineY)
	}
	if p.w {
		t.Errorf("w = true after second PPUSCROLL write, want false")
	}

	p.WriteRegister(0x2006, 0b00_111101) // first PPUADDR write
	if hi := (p.t >> 8) & 0x3F; hi != 0b111101 {
		t.Errorf("t high byte = %06b, want 111101", hi)
	}

	p.WriteRegister(0x2006, 0b11110000) // second PPUADDR write
	if p.v != p.t {
		t.Errorf("v = %04X, want v == t (%04X)", p.v, p.t)
	}
}

func TestPaletteMirroring(t *testing.T) {
	p := newTestPPU(ines.Horizontal)

	p.writePalette(0x3F00, 0x0F)
	if got := p.readPalette(0x3F10); got != 0x0F {
		t.Errorf("palette[$3F10] = %02X, want mirror of $3F00 (0F)", got)
	}

	p.writePalette(0x3F04, 0x12)
	if got := p.readPalette(0x3F14); got != 0x12 {
		t.Errorf("palette[$3F14] = %02X, want mirror of $3F04 (12)", got)
	}
}

func TestNametableMirroringHorizontal(t *testing.T) {
	p := newTestPPU(ines.Horizontal)

	p.busWrite(0x2000, 0xAB)
	if got := p.busRead(0x2400); got != 0xAB {
		t.Errorf("$2400 = %02X under horizontal mirroring, want mirror of $2000 (AB)", got)
	}
	if got := p.busRead(0x2800); got == 0xAB {
		t.Errorf("$2800 should be the other physical bank under horizontal mirroring")
	}
}

func TestNametableMirroringVertical(t *testing.T) {
	p := newTestPPU(ines.Vertical)

	p.busWrite(0x2000, 0xCD)
	if got := p.busRead(0x2800); got != 0xCD {
		t.Errorf("$2800 = %02X under vertical mirroring, want mirror of $2000 (CD)", got)
	}
	if got := p.busRead(0x2400); got == 0xCD {
		t.Errorf("$2400 should be the other physical bank under vertical mirroring")
	}
}

func TestPPUDataReadBufferQuirk(t *testing.T) {
	p := newTestPPU(ines.Vertical)

	p.mapper.PPUWrite(0x0010, 0x42)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2006, 0x10)

	if got := p.ReadRegister(0x2007); got != 0 {
		t.Errorf("first PPUDATA read = %02X, want stale buffer contents (0)", got)
	}
	if got := p.ReadRegister(0x2007); got != 0x42 {
		t.Errorf("second PPUDATA read = %02X, want 0x42", got)
	}
}

func TestPPUCTRLRetriggersNMIDuringVBlank(t *testing.T) {
	p := newTestPPU(ines.Vertical)
	p.status |= statusVBlank

	p.WriteRegister(0x2000, ctrlNMIEnable)
	if !p.cpu.NMILine() {
		t.Errorf("NMI line should assert immediately when NMI is enabled during vblank")
	}
}

func TestSpriteZeroHit(t *testing.T) {
	p := newTestPPU(ines.Vertical)
	p.mask = maskShowBG | maskShowSprites | maskShowBGLeft | maskShowSprLeft
	p.scanline = 10
	p.dot = 2 // x = 1, clear of the x=0/x=255 edge cases

	p.bgShiftPatLo = 0x8000
	p.sprCount = 1
	p.sprIsZero[0] = true
	p.sprX[0] = 1
	p.sprPatLo[0] = 0x80

	p.renderPixel()

	if p.status&statusSprite0Hit == 0 {
		t.Errorf("expected sprite-0 hit to be flagged")
	}
}

func TestSpriteEvaluationRunsOnPreRenderLine(t *testing.T) {
	p := newTestPPU(ines.Vertical)
	p.mask = maskShowBG | maskShowSprites

	// A sprite at Y=0 is visible on scanline 0, whose secondary-OAM fill is
	// evaluated one line early, during the pre-render line's dot 257. Every
	// other sprite is parked at Y=$FF, below the visible area.
	for i := range p.oam {
		p.oam[i] = 0xFF
	}
	p.oam[0] = 0x00
	p.oam[1] = 0x77
	p.oam[2] = 0x00
	p.oam[3] = 0x05

	p.scanline = -1
	p.dot = 257
	p.Step()

	if p.sprCount != 1 {
		t.Fatalf("sprite count after pre-render evaluation = %d, want 1", p.sprCount)
	}
	if p.secOAM[1] != 0x77 {
		t.Errorf("secondary OAM tile byte = %02X, want 77", p.secOAM[1])
	}
}

func TestOAMDMAWritesSequentialSlots(t *testing.T) {
	p := newTestPPU(ines.Vertical)
	p.oamAddr = 0xFE

	p.WriteOAMDMAByte(0x11)
	p.WriteOAMDMAByte(0x22)

	if p.oam[0xFE] != 0x11 || p.oam[0xFF] != 0x22 {
		t.Errorf("OAM DMA did not wrap/advance correctly: %02X %02X", p.oam[0xFE], p.oam[0xFF])
	}
}
