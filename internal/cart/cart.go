// Package cart owns the memory a cartridge contributes to the system: PRG
// and CHR storage (ROM or RAM), battery-backed save RAM, and the nametable
// mirroring policy currently in effect. The bank-switching logic that reads
// and writes through these arrays lives in internal/mapper.
package cart

import "nescore/ines"

// Cartridge holds a loaded ROM's storage and header-derived configuration.
// Mappers hold a pointer to one and compute bank offsets into it; Cartridge
// itself performs no address translation.
type Cartridge struct {
	Mapper    uint16
	SubMapper uint8

	PRG []byte // PRG ROM, read-only
	CHR []byte // CHR ROM if ChrIsRAM is false, otherwise pattern RAM

	ChrIsRAM bool

	SRAM    []byte // battery-backed or volatile work RAM at $6000-$7FFF
	Battery bool

	mirroring ines.Mirroring
	TVSystem  ines.TVSystem
}

// FromRom builds a Cartridge's storage from a parsed iNES/NES 2.0 image. It
// does not select a mapper; callers pass the result to mapper.New.
func FromRom(rom *ines.Rom) *Cartridge {
	c := &Cartridge{
		Mapper:    rom.Mapper,
		SubMapper: rom.SubMapper,
		PRG:       rom.PRG,
		Battery:   rom.Battery,
		mirroring: rom.Mirroring,
		TVSystem:  rom.TVSystem,
	}

	if rom.CHRRAMSize > 0 {
		c.CHR = make([]byte, rom.CHRRAMSize)
		c.ChrIsRAM = true
	} else {
		c.CHR = rom.CHR
	}

	sramSize := rom.PRGRAMSize + rom.PRGNVRAMSize
	if sramSize == 0 {
		sramSize = 8192
	}
	c.SRAM = make([]byte, sramSize)

	return c
}

func (c *Cartridge) Mirroring() ines.Mirroring { return c.mirroring }

// SetMirroring lets a mapper override the header's declared mirroring, as
// several bank-switching schemes (MMC1, MMC3, AxROM, ...) select it at
// runtime via a control register.
func (c *Cartridge) SetMirroring(m ines.Mirroring) { c.mirroring = m }

func (c *Cartridge) PRGBanks16K() int {
	if len(c.PRG) == 0 {
		return 0
	}
	return len(c.PRG) / 0x4000
}

func (c *Cartridge) PRGBanks8K() int {
	if len(c.PRG) == 0 {
		return 0
	}
	return len(c.PRG) / 0x2000
}

func (c *Cartridge) CHRBanks8K() int {
	if len(c.CHR) == 0 {
		return 0
	}
	return len(c.CHR) / 0x2000
}

func (c *Cartridge) CHRBanks1K() int {
	if len(c.CHR) == 0 {
		return 0
	}
	return len(c.CHR) / 0x0400
}

// State is the part of a cartridge's storage a save state needs: SRAM
// (battery-backed or not), CHR only when it's RAM, and the mirroring mode a
// mapper may have selected at runtime. PRG and CHR ROM never change and
// aren't captured.
type State struct {
	SRAM      []byte
	CHRRAM    []byte
	Mirroring ines.Mirroring
}

func (c *Cartridge) Snapshot() State {
	s := State{
		SRAM:      append([]byte(nil), c.SRAM...),
		Mirroring: c.mirroring,
	}
	if c.ChrIsRAM {
		s.CHRRAM = append([]byte(nil), c.CHR...)
	}
	return s
}

func (c *Cartridge) Restore(s State) {
	copy(c.SRAM, s.SRAM)
	c.mirroring = s.Mirroring
	if c.ChrIsRAM {
		copy(c.CHR, s.CHRRAM)
	}
}
