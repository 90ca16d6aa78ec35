package mapper

import "nescore/internal/cart"

// nrom implements mapper 0: no bank switching at all. PRG ROM is either
// 16 KiB (mirrored into both halves of $8000-$FFFF) or a full 32 KiB.
type nrom struct {
	base
}

func newNROM(c *cart.Cartridge) *nrom { return &nrom{base{c: c}} }

func (m *nrom) CPURead(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.sramRead(addr)
	default:
		off := int(addr-0x8000) % len(m.c.PRG)
		return m.c.PRG[off]
	}
}

func (m *nrom) CPUWrite(addr uint16, val uint8) {
	if addr < 0x8000 {
		m.sramWrite(addr, val)
	}
	// writes to ROM are ignored
}

func (m *nrom) PPURead(addr uint16) uint8 {
	if int(addr) < len(m.c.CHR) {
		return m.c.CHR[addr]
	}
	return 0
}

func (m *nrom) PPUWrite(addr uint16, val uint8) {
	if m.c.ChrIsRAM && int(addr) < len(m.c.CHR) {
		m.c.CHR[addr] = val
	}
}
