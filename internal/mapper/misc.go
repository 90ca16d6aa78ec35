package mapper

import (
	"nescore/internal/cart"
	"nescore/ines"
)

// colorDreams implements mapper 11: one register selects both a 32 KiB PRG
// bank (bits 0-1) and an 8 KiB CHR bank (high nibble).
type colorDreams struct {
	base
	prgBank, chrBank int
}

func newColorDreams(c *cart.Cartridge) *colorDreams { return &colorDreams{base: base{c: c}} }

func (m *colorDreams) CPURead(addr uint16) uint8 {
	if addr < 0x8000 {
		return m.sramRead(addr)
	}
	off := (m.prgBank % max1(m.c.PRGBanks8K()/4)) * 0x8000
	return m.c.PRG[off+int(addr-0x8000)]
}

func (m *colorDreams) CPUWrite(addr uint16, val uint8) {
	if addr < 0x8000 {
		m.sramWrite(addr, val)
		return
	}
	m.prgBank = int(val) & 0x03
	m.chrBank = int(val>>4) & 0x0F
}

func (m *colorDreams) PPURead(addr uint16) uint8 {
	return m.c.CHR[chrBankOffset8K(m.c, m.chrBank)+int(addr)]
}
func (m *colorDreams) PPUWrite(addr uint16, val uint8) {
	if m.c.ChrIsRAM {
		m.c.CHR[chrBankOffset8K(m.c, m.chrBank)+int(addr)] = val
	}
}

func (m *colorDreams) SaveState() []byte { return []byte{uint8(m.prgBank), uint8(m.chrBank)} }
func (m *colorDreams) LoadState(data []byte) {
	if len(data) < 2 {
		return
	}
	m.prgBank, m.chrBank = int(data[0]), int(data[1])
}

// cprom implements mapper 13: fixed 32 KiB PRG, 4 KiB of CHR RAM fixed at
// $0000 and a switchable 4 KiB CHR RAM bank at $1000 (one of four).
type cprom struct {
	base
	chrBank int
}

func newCPROM(c *cart.Cartridge) *cprom { return &cprom{base: base{c: c}} }

func (m *cprom) CPURead(addr uint16) uint8 {
	if addr < 0x8000 {
		return m.sramRead(addr)
	}
	return m.c.PRG[int(addr-0x8000)%len(m.c.PRG)]
}

func (m *cprom) CPUWrite(addr uint16, val uint8) {
	if addr < 0x8000 {
		m.sramWrite(addr, val)
		return
	}
	m.chrBank = int(val) & 0x03
}

func (m *cprom) PPURead(addr uint16) uint8 {
	if addr < 0x1000 {
		return m.c.CHR[addr]
	}
	return m.c.CHR[chrBankOffset4K(m.c, m.chrBank)+int(addr-0x1000)]
}

func (m *cprom) PPUWrite(addr uint16, val uint8) {
	if addr < 0x1000 {
		m.c.CHR[addr] = val
		return
	}
	m.c.CHR[chrBankOffset4K(m.c, m.chrBank)+int(addr-0x1000)] = val
}

func (m *cprom) SaveState() []byte { return []byte{uint8(m.chrBank)} }
func (m *cprom) LoadState(data []byte) {
	if len(data) > 0 {
		m.chrBank = int(data[0])
	}
}

// bnromNINA covers mapper 34 in its two incompatible guises: BNROM (one
// register at any $8000-$FFFF address selects a 32 KiB PRG bank, CHR is
// fixed 8 KiB RAM) and NINA-001 (three registers at $7FFD/$7FFE/$7FFF select
// PRG and CHR banks independently). The two are told apart by CHR ROM
// presence, since BNROM boards never carry CHR ROM.
type bnromNINA struct {
	base
	prgBank, chrBank0, chrBank1 int
	isNINA                      bool
}

func newBNROMOrNINA(c *cart.Cartridge) *bnromNINA {
	return &bnromNINA{base: base{c: c}, isNINA: !c.ChrIsRAM}
}

func (m *bnromNINA) CPURead(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.sramRead(addr)
	default:
		off := (m.prgBank % max1(m.c.PRGBanks8K()/4)) * 0x8000
		return m.c.PRG[off+int(addr-0x8000)]
	}
}

func (m *bnromNINA) CPUWrite(addr uint16, val uint8) {
	switch {
	case m.isNINA && addr == 0x7FFD:
		m.prgBank = int(val) & 0x01
	case m.isNINA && addr == 0x7FFE:
		m.chrBank0 = int(val) & 0x0F
	case m.isNINA && addr == 0x7FFF:
		m.chrBank1 = int(val) & 0x0F
	case addr < 0x8000:
		m.sramWrite(addr, val)
	default:
		m.prgBank = int(val) & 0x03
	}
}

func (m *bnromNINA) PPURead(addr uint16) uint8 {
	if !m.isNINA {
		if int(addr) < len(m.c.CHR) {
			return m.c.CHR[addr]
		}
		return 0
	}
	if addr < 0x1000 {
		return m.c.CHR[chrBankOffset4K(m.c, m.chrBank0)+int(addr)]
	}
	return m.c.CHR[chrBankOffset4K(m.c, m.chrBank1)+int(addr-0x1000)]
}

func (m *bnromNINA) PPUWrite(addr uint16, val uint8) {
	if m.c.ChrIsRAM && int(addr) < len(m.c.CHR) {
		m.c.CHR[addr] = val
	}
}

func (m *bnromNINA) SaveState() []byte {
	return []byte{uint8(m.prgBank), uint8(m.chrBank0), uint8(m.chrBank1)}
}

func (m *bnromNINA) LoadState(data []byte) {
	if len(data) < 3 {
		return
	}
	m.prgBank, m.chrBank0, m.chrBank1 = int(data[0]), int(data[1]), int(data[2])
}

// camerica implements mapper 71 (Camerica/Codemasters): a switchable 16 KiB
// PRG window at $8000, fixed last bank at $C000, CHR always RAM. Some
// boards (Fire Hawk) also support single-screen mirroring control via
// $9000-$9FFF; that subset is handled here too since it's a strict
// superset of plain mapper 71 behavior.
type camerica struct {
	base
	bank int
}

func newCamerica(c *cart.Cartridge) *camerica { return &camerica{base: base{c: c}} }

func (m *camerica) CPURead(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.sramRead(addr)
	case addr < 0xC000:
		return m.c.PRG[prgBankOffset16K(m.c, m.bank)+int(addr-0x8000)]
	default:
		return m.c.PRG[prgBankOffset16K(m.c, m.c.PRGBanks16K()-1)+int(addr-0xC000)]
	}
}

func (m *camerica) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr < 0x8000:
		m.sramWrite(addr, val)
	case addr >= 0x9000 && addr < 0xA000:
		if val&0x10 != 0 {
			m.c.SetMirroring(ines.SingleScreenHigh)
		} else {
			m.c.SetMirroring(ines.SingleScreenLow)
		}
	case addr >= 0xC000:
		m.bank = int(val) & 0x0F
	}
}

func (m *camerica) PPURead(addr uint16) uint8 {
	if int(addr) < len(m.c.CHR) {
		return m.c.CHR[addr]
	}
	return 0
}
func (m *camerica) PPUWrite(addr uint16, val uint8) {
	if int(addr) < len(m.c.CHR) {
		m.c.CHR[addr] = val
	}
}

func (m *camerica) SaveState() []byte { return []byte{uint8(m.bank)} }
func (m *camerica) LoadState(data []byte) {
	if len(data) > 0 {
		m.bank = int(data[0])
	}
}

// namco108 implements mapper 206 (Namco 108, a simplified MMC3 ancestor
// with no IRQ and no PRG-mode-invert bit).
type namco108 struct {
	base
	bankSelect uint8
	bank       [8]uint8
}

func newNamco108(c *cart.Cartridge) *namco108 { return &namco108{base: base{c: c}} }

func (m *namco108) CPURead(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.sramRead(addr)
	default:
		slot := int(addr-0x8000) / 0x2000
		var bank int
		switch slot {
		case 0:
			bank = int(m.bank[6])
		case 1:
			bank = int(m.bank[7])
		default:
			bank = m.c.PRGBanks8K() - (3 - slot)
		}
		return m.c.PRG[prgBankOffset8K(m.c, bank)+int(addr)%0x2000]
	}
}

func (m *namco108) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr < 0x8000:
		m.sramWrite(addr, val)
	case addr < 0xA000:
		if addr&1 == 0 {
			m.bankSelect = val & 0x07
		} else {
			m.bank[m.bankSelect] = val
		}
	}
}

func (m *namco108) PPURead(addr uint16) uint8 {
	slot := addr / 0x0400
	off := chrBankOffset1K(m.c, int(m.bank[slot]))
	if off+int(addr)%0x0400 < len(m.c.CHR) {
		return m.c.CHR[off+int(addr)%0x0400]
	}
	return 0
}

func (m *namco108) PPUWrite(addr uint16, val uint8) {
	if !m.c.ChrIsRAM {
		return
	}
	slot := addr / 0x0400
	off := chrBankOffset1K(m.c, int(m.bank[slot]))
	if off+int(addr)%0x0400 < len(m.c.CHR) {
		m.c.CHR[off+int(addr)%0x0400] = val
	}
}

func (m *namco108) SaveState() []byte {
	out := append([]byte{m.bankSelect}, m.bank[:]...)
	return out
}

func (m *namco108) LoadState(data []byte) {
	if len(data) < 9 {
		return
	}
	m.bankSelect = data[0]
	copy(m.bank[:], data[1:9])
}

// fme7 implements mapper 69 (Sunsoft FME-7): 8 command/data registers
// selecting independent 8 KiB PRG windows (the first of which can map to
// SRAM instead of ROM) and 1 KiB CHR windows, plus a CPU-cycle-counted IRQ.
type fme7 struct {
	base
	command uint8
	chrBank [8]uint8
	prgBank [4]uint8 // index 0 is the $6000 window, which can target SRAM instead
	prgRAMSelect bool
	prgRAMEnable bool

	irqEnabled bool
	irqCounter uint16
	irqPending bool
}

func newFME7(c *cart.Cartridge) *fme7 { return &fme7{base: base{c: c}} }

func (m *fme7) CPURead(addr uint16) uint8 {
	switch {
	case addr < 0x6000:
		return 0
	case addr < 0x8000:
		if m.prgRAMSelect && m.prgRAMEnable {
			return m.sramRead(addr)
		}
		return m.c.PRG[prgBankOffset8K(m.c, int(m.prgBank[0]))+int(addr-0x6000)]
	default:
		slot := int(addr-0x8000) / 0x2000
		if slot == 3 {
			return m.c.PRG[prgBankOffset8K(m.c, m.c.PRGBanks8K()-1)+int(addr)%0x2000]
		}
		return m.c.PRG[prgBankOffset8K(m.c, int(m.prgBank[slot+1]))+int(addr)%0x2000]
	}
}

func (m *fme7) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMSelect && m.prgRAMEnable {
			m.sramWrite(addr, val)
		}
	case addr >= 0x8000 && addr < 0xA000:
		m.command = val & 0x0F
	case addr >= 0xA000 && addr < 0xC000:
		m.writeRegister(val)
	}
}

func (m *fme7) writeRegister(val uint8) {
	switch {
	case m.command <= 0x07:
		m.chrBank[m.command] = val
	case m.command == 0x08:
		m.prgRAMSelect = val&0x40 != 0
		m.prgRAMEnable = val&0x80 != 0
		m.prgBank[0] = val & 0x3F
	case m.command >= 0x09 && m.command <= 0x0B:
		m.prgBank[m.command-0x08] = val & 0x3F
	case m.command == 0x0C:
		switch val & 0x03 {
		case 0:
			m.c.SetMirroring(ines.Vertical)
		case 1:
			m.c.SetMirroring(ines.Horizontal)
		case 2:
			m.c.SetMirroring(ines.SingleScreenLow)
		case 3:
			m.c.SetMirroring(ines.SingleScreenHigh)
		}
	case m.command == 0x0D:
		m.irqEnabled = val&0x01 != 0
		m.irqPending = false
	case m.command == 0x0E:
		m.irqCounter = m.irqCounter&0xFF00 | uint16(val)
	case m.command == 0x0F:
		m.irqCounter = m.irqCounter&0x00FF | uint16(val)<<8
	}
}

func (m *fme7) PPURead(addr uint16) uint8 {
	slot := addr / 0x0400
	off := chrBankOffset1K(m.c, int(m.chrBank[slot]))
	if off+int(addr)%0x0400 < len(m.c.CHR) {
		return m.c.CHR[off+int(addr)%0x0400]
	}
	return 0
}

func (m *fme7) PPUWrite(addr uint16, val uint8) {
	if !m.c.ChrIsRAM {
		return
	}
	slot := addr / 0x0400
	off := chrBankOffset1K(m.c, int(m.chrBank[slot]))
	if off+int(addr)%0x0400 < len(m.c.CHR) {
		m.c.CHR[off+int(addr)%0x0400] = val
	}
}

func (m *fme7) TickCPU() {
	if !m.irqEnabled {
		return
	}
	m.irqCounter--
	if m.irqCounter == 0xFFFF {
		m.irqPending = true
	}
}

func (m *fme7) IRQPending() bool { return m.irqPending }
func (m *fme7) ClearIRQ()        { m.irqPending = false }

func (m *fme7) SaveState() []byte {
	out := make([]byte, 0, 16)
	out = append(out, m.command)
	out = append(out, m.chrBank[:]...)
	out = append(out, m.prgBank[:]...)
	out = append(out, boolByte(m.prgRAMSelect), boolByte(m.prgRAMEnable), boolByte(m.irqEnabled), boolByte(m.irqPending))
	out = append(out, uint8(m.irqCounter>>8), uint8(m.irqCounter))
	return out
}

func (m *fme7) LoadState(data []byte) {
	if len(data) < 19 {
		return
	}
	m.command = data[0]
	copy(m.chrBank[:], data[1:9])
	copy(m.prgBank[:], data[9:13])
	m.prgRAMSelect, m.prgRAMEnable = data[13] != 0, data[14] != 0
	m.irqEnabled, m.irqPending = data[15] != 0, data[16] != 0
	m.irqCounter = uint16(data[17])<<8 | uint16(data[18])
}
