// Package mapper implements the cartridge bank-switching and IRQ-generation
// logic the bus and PPU dispatch through. Each supported mapper number gets
// its own type implementing Mapper; New selects one by header mapper number.
package mapper

import (
	"fmt"

	"nescore/internal/cart"
)

// Mapper is the capability set a mapper implementation exposes: bus
// read/write through its current bank windows, an IRQ line polled once per
// CPU cycle or PPU A12 edge depending on the chip, and a reset hook.
type Mapper interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, val uint8)
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, val uint8)

	// TickCPU is called once per CPU cycle, for mappers whose IRQ counter is
	// clocked by CPU cycles (here, FME-7).
	TickCPU()

	// NotifyPPUAddr is called whenever the PPU bus address changes, so
	// MMC3-family mappers can detect A12 rising edges for their scanline
	// counter.
	NotifyPPUAddr(addr uint16)

	IRQPending() bool
	ClearIRQ()

	Reset()

	// SaveState/LoadState let a save state capture and restore whatever
	// bank-select and IRQ-counter registers this mapper owns. Mappers with
	// no switchable state beyond what's already in the cartridge (NROM)
	// inherit base's no-op pair.
	SaveState() []byte
	LoadState(data []byte)
}

// UnsupportedMapper reports a header mapper number with no registered
// implementation.
type UnsupportedMapper struct{ Number uint16 }

func (e *UnsupportedMapper) Error() string {
	return fmt.Sprintf("mapper %d: no implementation", e.Number)
}

// New selects and constructs the Mapper for c's header mapper number.
func New(c *cart.Cartridge) (Mapper, error) {
	switch c.Mapper {
	case 0:
		return newNROM(c), nil
	case 1:
		return newMMC1(c), nil
	case 2:
		return newUxROM(c), nil
	case 3:
		return newCNROM(c), nil
	case 4:
		return newMMC3(c), nil
	case 7:
		return newAxROM(c), nil
	case 9:
		return newMMC2(c), nil
	case 10:
		return newMMC4(c), nil
	case 11:
		return newColorDreams(c), nil
	case 13:
		return newCPROM(c), nil
	case 34:
		return newBNROMOrNINA(c), nil
	case 66:
		return newGxROM(c), nil
	case 69:
		return newFME7(c), nil
	case 71:
		return newCamerica(c), nil
	case 206:
		return newNamco108(c), nil
	default:
		return nil, &UnsupportedMapper{Number: c.Mapper}
	}
}

// prgBankOffset16K returns the byte offset of 16 KiB bank n (wrapping on
// the cartridge's actual bank count), the windowing scheme shared by UxROM,
// MMC1, MMC4 and Camerica.
func prgBankOffset16K(c *cart.Cartridge, n int) int {
	banks := c.PRGBanks16K()
	if banks == 0 {
		return 0
	}
	return (n % banks) * 0x4000
}

func prgBankOffset8K(c *cart.Cartridge, n int) int {
	banks := c.PRGBanks8K()
	if banks == 0 {
		return 0
	}
	return (n % banks) * 0x2000
}

func chrBankOffset8K(c *cart.Cartridge, n int) int {
	banks := c.CHRBanks8K()
	if banks == 0 {
		return 0
	}
	return (n % banks) * 0x2000
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func chrBankOffset1K(c *cart.Cartridge, n int) int {
	banks := c.CHRBanks1K()
	if banks == 0 {
		return 0
	}
	return (n % banks) * 0x0400
}

// base is embedded by every mapper: it forwards to the cartridge's SRAM
// window and supplies no-op defaults for the optional IRQ/A12 hooks so each
// mapper only overrides what it actually uses.
type base struct {
	c *cart.Cartridge
}

func (b *base) sramRead(addr uint16) uint8 {
	if len(b.c.SRAM) == 0 {
		return 0
	}
	return b.c.SRAM[int(addr-0x6000)%len(b.c.SRAM)]
}

func (b *base) sramWrite(addr uint16, val uint8) {
	if len(b.c.SRAM) == 0 {
		return
	}
	b.c.SRAM[int(addr-0x6000)%len(b.c.SRAM)] = val
}

func (b *base) TickCPU()                  {}
func (b *base) NotifyPPUAddr(addr uint16) {}
func (b *base) IRQPending() bool          { return false }
func (b *base) ClearIRQ()                 {}
func (b *base) Reset()                    {}
func (b *base) SaveState() []byte         { return nil }
func (b *base) LoadState(data []byte)     {}
