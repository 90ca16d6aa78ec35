package mapper

import (
	"nescore/internal/cart"
	"nescore/ines"
)

// axrom implements mapper 7: a single switchable 32 KiB PRG window and
// single-screen mirroring selected by bit 4 of the bank register. CHR is
// always RAM.
type axrom struct {
	base
	bank int
}

func newAxROM(c *cart.Cartridge) *axrom { return &axrom{base: base{c: c}} }

func (m *axrom) CPURead(addr uint16) uint8 {
	if addr < 0x8000 {
		return m.sramRead(addr)
	}
	off := (m.bank % max1(m.c.PRGBanks8K()/4)) * 0x8000
	return m.c.PRG[off+int(addr-0x8000)]
}

func (m *axrom) CPUWrite(addr uint16, val uint8) {
	if addr < 0x8000 {
		m.sramWrite(addr, val)
		return
	}
	m.bank = int(val) & 0x07
	if val&0x10 != 0 {
		m.c.SetMirroring(ines.SingleScreenHigh)
	} else {
		m.c.SetMirroring(ines.SingleScreenLow)
	}
}

func (m *axrom) PPURead(addr uint16) uint8 {
	if int(addr) < len(m.c.CHR) {
		return m.c.CHR[addr]
	}
	return 0
}

func (m *axrom) PPUWrite(addr uint16, val uint8) {
	if int(addr) < len(m.c.CHR) {
		m.c.CHR[addr] = val
	}
}

func (m *axrom) SaveState() []byte { return []byte{uint8(m.bank)} }
func (m *axrom) LoadState(data []byte) {
	if len(data) > 0 {
		m.bank = int(data[0])
	}
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// gxrom implements mapper 66: a single register selecting both a 32 KiB PRG
// bank and an 8 KiB CHR bank.
type gxrom struct {
	base
	prgBank, chrBank int
}

func newGxROM(c *cart.Cartridge) *gxrom { return &gxrom{base: base{c: c}} }

func (m *gxrom) CPURead(addr uint16) uint8 {
	if addr < 0x8000 {
		return m.sramRead(addr)
	}
	off := (m.prgBank % max1(m.c.PRGBanks8K()/4)) * 0x8000
	return m.c.PRG[off+int(addr-0x8000)]
}

func (m *gxrom) CPUWrite(addr uint16, val uint8) {
	if addr < 0x8000 {
		m.sramWrite(addr, val)
		return
	}
	m.chrBank = int(val) & 0x03
	m.prgBank = int(val>>4) & 0x03
}

func (m *gxrom) PPURead(addr uint16) uint8 {
	return m.c.CHR[chrBankOffset8K(m.c, m.chrBank)+int(addr)]
}

func (m *gxrom) PPUWrite(addr uint16, val uint8) {
	if m.c.ChrIsRAM {
		m.c.CHR[chrBankOffset8K(m.c, m.chrBank)+int(addr)] = val
	}
}

func (m *gxrom) SaveState() []byte { return []byte{uint8(m.prgBank), uint8(m.chrBank)} }
func (m *gxrom) LoadState(data []byte) {
	if len(data) < 2 {
		return
	}
	m.prgBank, m.chrBank = int(data[0]), int(data[1])
}
