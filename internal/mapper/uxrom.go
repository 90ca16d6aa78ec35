package mapper

import "nescore/internal/cart"

// uxrom implements mapper 2: a single switchable 16 KiB PRG window at
// $8000, with $C000 fixed to the last bank. CHR is always RAM (8 KiB).
type uxrom struct {
	base
	bank int
}

func newUxROM(c *cart.Cartridge) *uxrom { return &uxrom{base: base{c: c}} }

func (m *uxrom) CPURead(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.sramRead(addr)
	case addr < 0xC000:
		return m.c.PRG[prgBankOffset16K(m.c, m.bank)+int(addr-0x8000)]
	default:
		return m.c.PRG[prgBankOffset16K(m.c, m.c.PRGBanks16K()-1)+int(addr-0xC000)]
	}
}

func (m *uxrom) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr < 0x8000:
		m.sramWrite(addr, val)
	default:
		m.bank = int(val) & 0x0F
	}
}

func (m *uxrom) PPURead(addr uint16) uint8 {
	if int(addr) < len(m.c.CHR) {
		return m.c.CHR[addr]
	}
	return 0
}

func (m *uxrom) PPUWrite(addr uint16, val uint8) {
	if int(addr) < len(m.c.CHR) {
		m.c.CHR[addr] = val
	}
}

func (m *uxrom) SaveState() []byte     { return []byte{uint8(m.bank)} }
func (m *uxrom) LoadState(data []byte) {
	if len(data) > 0 {
		m.bank = int(data[0])
	}
}
