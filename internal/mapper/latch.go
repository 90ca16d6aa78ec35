package mapper

import (
	"nescore/internal/cart"
	"nescore/ines"
)

// mmc2mmc4 implements mappers 9 (MMC2) and 10 (MMC4): CHR banking is
// latch-driven rather than register-driven. Reading tile $FD or $FE from
// either half of the pattern table flips that half's active latch, which
// selects between two preset CHR banks on the next read. MMC2 fixes PRG to
// an 8 KiB switchable window plus three fixed banks; MMC4 uses a 16 KiB
// switchable window plus one fixed bank, matching its PRG-heavier games.
type mmc2mmc4 struct {
	base
	isMMC4 bool

	prgBank8K  uint8 // MMC2 only
	prgBank16K uint8 // MMC4 only

	chrBank [4]uint8 // FD/0, FE/0, FD/1, FE/1
	latch0, latch1 bool // false=$FD selected, true=$FE selected
}

func newMMC2(c *cart.Cartridge) *mmc2mmc4 { return &mmc2mmc4{base: base{c: c}} }
func newMMC4(c *cart.Cartridge) *mmc2mmc4 { return &mmc2mmc4{base: base{c: c}, isMMC4: true} }

func (m *mmc2mmc4) CPURead(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.sramRead(addr)
	case m.isMMC4 && addr < 0xC000:
		return m.c.PRG[prgBankOffset16K(m.c, int(m.prgBank16K))+int(addr-0x8000)]
	case m.isMMC4:
		// Fixed to the last 16 KiB bank.
		return m.c.PRG[prgBankOffset16K(m.c, m.c.PRGBanks16K()-1)+int(addr-0xC000)]
	case addr < 0xA000:
		return m.c.PRG[prgBankOffset8K(m.c, int(m.prgBank8K))+int(addr-0x8000)]
	default:
		banks8K := m.c.PRGBanks8K()
		// Three fixed 8 KiB banks at the top of PRG.
		fixedBase := prgBankOffset8K(m.c, banks8K-3)
		return m.c.PRG[fixedBase+int(addr-0xA000)]
	}
}

func (m *mmc2mmc4) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr < 0x8000:
		m.sramWrite(addr, val)
	case addr < 0xA000:
		if m.isMMC4 {
			m.prgBank16K = val & 0x0F
		} else {
			m.prgBank8K = val & 0x0F
		}
	case addr < 0xB000:
		m.chrBank[0] = val & 0x1F // $FD, CHR half 0
	case addr < 0xC000:
		m.chrBank[1] = val & 0x1F // $FE, CHR half 0
	case addr < 0xD000:
		m.chrBank[2] = val & 0x1F // $FD, CHR half 1
	case addr < 0xE000:
		m.chrBank[3] = val & 0x1F // $FE, CHR half 1
	case addr < 0xF000:
		if val&0x01 != 0 {
			m.c.SetMirroring(ines.Horizontal)
		} else {
			m.c.SetMirroring(ines.Vertical)
		}
	}
}

func (m *mmc2mmc4) PPURead(addr uint16) uint8 {
	half := 0
	if addr >= 0x1000 {
		half = 1
	}
	latch := m.latch0
	if half == 1 {
		latch = m.latch1
	}
	bankIdx := half * 2
	if latch {
		bankIdx++
	}
	off := chrBankOffset4K(m.c, int(m.chrBank[bankIdx])) + int(addr)%0x1000
	var v uint8
	if off < len(m.c.CHR) {
		v = m.c.CHR[off]
	}
	m.updateLatch(addr)
	return v
}

func (m *mmc2mmc4) PPUWrite(addr uint16, val uint8) {
	if !m.c.ChrIsRAM {
		return
	}
	half := 0
	if addr >= 0x1000 {
		half = 1
	}
	latch := m.latch0
	if half == 1 {
		latch = m.latch1
	}
	bankIdx := half * 2
	if latch {
		bankIdx++
	}
	off := chrBankOffset4K(m.c, int(m.chrBank[bankIdx])) + int(addr)%0x1000
	if off < len(m.c.CHR) {
		m.c.CHR[off] = val
	}
}

func (m *mmc2mmc4) updateLatch(addr uint16) {
	tile := addr & 0x0FF0
	switch {
	case tile == 0x0FD0 && addr < 0x1000:
		m.latch0 = false
	case tile == 0x0FE0 && addr < 0x1000:
		m.latch0 = true
	case tile == 0x0FD0 && addr >= 0x1000:
		m.latch1 = false
	case tile == 0x0FE0 && addr >= 0x1000:
		m.latch1 = true
	}
}

func (m *mmc2mmc4) SaveState() []byte {
	out := []byte{m.prgBank8K, m.prgBank16K}
	out = append(out, m.chrBank[:]...)
	out = append(out, boolByte(m.latch0), boolByte(m.latch1))
	return out
}

func (m *mmc2mmc4) LoadState(data []byte) {
	if len(data) < 8 {
		return
	}
	m.prgBank8K, m.prgBank16K = data[0], data[1]
	copy(m.chrBank[:], data[2:6])
	m.latch0, m.latch1 = data[6] != 0, data[7] != 0
}

func chrBankOffset4K(c *cart.Cartridge, n int) int {
	banks := len(c.CHR) / 0x1000
	if banks == 0 {
		return 0
	}
	return (n % banks) * 0x1000
}
