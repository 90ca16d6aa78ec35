package mapper

import (
	"nescore/internal/cart"
	"nescore/ines"
)

// mmc1 implements mapper 1. Register writes are serialized one bit at a
// time through a 5-bit shift register; a write with bit 7 set resets the
// shift register instead of shifting in a bit. Consecutive-cycle writes are
// ignored, since real MMC1 boards latch the bus once every other cycle and
// some games (deliberately or not) perform back-to-back RMW writes to the
// same register.
type mmc1 struct {
	base

	cpu interface{ CurrentCycle() int64 }

	prevWriteCycle int64
	serial         uint8
	shiftCount     uint8

	ctrl     uint8
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8
}

func newMMC1(c *cart.Cartridge) *mmc1 {
	m := &mmc1{base: base{c: c}}
	m.ctrl = 0x0C
	return m
}

// AttachCPU lets the emulator wiring give the mapper a cycle-counter source, needed to
// detect and ignore consecutive-cycle writes. Mappers that don't need CPU
// timing information simply never have this called.
func (m *mmc1) AttachCPU(cpu interface{ CurrentCycle() int64 }) { m.cpu = cpu }

func (m *mmc1) CPURead(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.sramRead(addr)
	case addr < 0xC000:
		return m.c.PRG[m.prgOffset(0)+int(addr-0x8000)]
	default:
		return m.c.PRG[m.prgOffset(1)+int(addr-0xC000)]
	}
}

func (m *mmc1) CPUWrite(addr uint16, val uint8) {
	if addr < 0x8000 {
		m.sramWrite(addr, val)
		return
	}

	cycle := int64(0)
	if m.cpu != nil {
		cycle = m.cpu.CurrentCycle()
	}
	consecutive := cycle-m.prevWriteCycle < 2
	m.prevWriteCycle = cycle

	if val&0x80 != 0 {
		m.serial, m.shiftCount = 0, 0
		m.ctrl |= 0x0C
		return
	}
	if consecutive {
		return
	}

	m.serial = m.serial>>1 | (val&0x01)<<4
	m.shiftCount++
	if m.shiftCount < 5 {
		return
	}

	switch (addr >> 13) & 0x03 {
	case 0:
		m.ctrl = m.serial
		switch m.ctrl & 0x03 {
		case 0:
			m.c.SetMirroring(ines.SingleScreenLow)
		case 1:
			m.c.SetMirroring(ines.SingleScreenHigh)
		case 2:
			m.c.SetMirroring(ines.Vertical)
		case 3:
			m.c.SetMirroring(ines.Horizontal)
		}
	case 1:
		m.chrBank0 = m.serial
	case 2:
		m.chrBank1 = m.serial
	case 3:
		m.prgBank = m.serial & 0x0F
	}
	m.serial, m.shiftCount = 0, 0
}

// prgOffset returns the byte offset of the 16 KiB half (0 = $8000, 1 =
// $C000), honoring the control register's PRG bank-switch mode.
func (m *mmc1) prgOffset(half int) int {
	switch (m.ctrl >> 2) & 0x03 {
	case 0, 1:
		bank := int(m.prgBank&0x0E) + half
		return prgBankOffset16K(m.c, bank)
	case 2:
		if half == 0 {
			return 0
		}
		return prgBankOffset16K(m.c, int(m.prgBank))
	default: // 3
		if half == 0 {
			return prgBankOffset16K(m.c, int(m.prgBank))
		}
		return prgBankOffset16K(m.c, m.c.PRGBanks16K()-1)
	}
}

func (m *mmc1) chrOffset(half int) int {
	if m.ctrl&0x10 == 0 { // 8 KiB mode: one bank spans both halves
		return chrBankOffset8K(m.c, int(m.chrBank0)>>1) + half*0x1000
	}
	banks4K := len(m.c.CHR) / 0x1000
	if banks4K == 0 {
		return 0
	}
	bank := int(m.chrBank0)
	if half == 1 {
		bank = int(m.chrBank1)
	}
	return (bank % banks4K) * 0x1000
}

func (m *mmc1) PPURead(addr uint16) uint8 {
	half := 0
	if addr >= 0x1000 {
		half = 1
	}
	off := m.chrOffset(half) + int(addr)%0x1000
	if off < len(m.c.CHR) {
		return m.c.CHR[off]
	}
	return 0
}

func (m *mmc1) PPUWrite(addr uint16, val uint8) {
	if !m.c.ChrIsRAM {
		return
	}
	half := 0
	if addr >= 0x1000 {
		half = 1
	}
	off := m.chrOffset(half) + int(addr)%0x1000
	if off < len(m.c.CHR) {
		m.c.CHR[off] = val
	}
}

func (m *mmc1) SaveState() []byte {
	return []byte{m.serial, m.shiftCount, m.ctrl, m.chrBank0, m.chrBank1, m.prgBank}
}

func (m *mmc1) LoadState(data []byte) {
	if len(data) < 6 {
		return
	}
	m.serial, m.shiftCount, m.ctrl = data[0], data[1], data[2]
	m.chrBank0, m.chrBank1, m.prgBank = data[3], data[4], data[5]
}
