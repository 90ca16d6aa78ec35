// Package ppu implements the Picture Processing Unit: the per-dot pixel
// pipeline, VRAM/OAM, and the scroll/address latch ("v"/"t"/"x"/"w") that
// the CPU programs through $2000-$2007.
package ppu

import (
	"nescore/internal/cart"
	"nescore/internal/cpu"
	"nescore/ines"
)

// Mapper is the subset of mapper.Mapper the PPU needs: pattern-table
// access and the A12 edge notification MMC3-family IRQ counters watch.
type Mapper interface {
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, val uint8)
	NotifyPPUAddr(addr uint16)
}

const (
	ScreenWidth  = 256
	ScreenHeight = 240
)

// PPUCTRL/PPUMASK/PPUSTATUS bit positions.
const (
	ctrlNMIEnable     = 1 << 7
	ctrlSpriteHeight  = 1 << 5
	ctrlBGPatternAddr = 1 << 4
	ctrlSpritePattern = 1 << 3
	ctrlIncrement32   = 1 << 2

	maskGrayscale    = 1 << 0
	maskShowBGLeft   = 1 << 1
	maskShowSprLeft  = 1 << 2
	maskShowBG       = 1 << 3
	maskShowSprites  = 1 << 4
	maskEmphasizeR   = 1 << 5
	maskEmphasizeG   = 1 << 6
	maskEmphasizeB   = 1 << 7

	statusSpriteOverflow = 1 << 5
	statusSprite0Hit     = 1 << 6
	statusVBlank         = 1 << 7
)

// PPU holds all per-dot pixel-pipeline state.
type PPU struct {
	cpu    *cpu.CPU
	mapper Mapper
	cart   *cart.Cartridge

	ctrl, mask, status uint8
	oamAddr            uint8

	v, t uint16 // 15-bit VRAM address / temp address
	x    uint8  // 3-bit fine X scroll
	w    bool   // write toggle

	readBuffer uint8
	busLatch   uint8 // last value driven on the PPU's external data bus

	oam     [256]uint8
	secOAM  [32]uint8
	palette [32]uint8
	ciram   [0x800]uint8

	scanline int // -1 (pre-render) .. 260
	dot      int // 0..340
	oddFrame bool

	frameDone bool

	// background pipeline
	ntByte, atByte, patLo, patHi uint8
	bgShiftPatLo, bgShiftPatHi   uint16
	bgShiftAttrLo, bgShiftAttrHi uint16

	// sprite pipeline, filled for the scanline about to render
	sprCount                int
	sprPatLo, sprPatHi      [8]uint8
	sprAttr, sprX           [8]uint8
	sprIsZero               [8]bool

	Framebuffer [ScreenWidth * ScreenHeight]uint32

	SuppressVBlank bool // debug hook: disables NMI/vblank for headless trace tests
}

func New(c *cpu.CPU, m Mapper, cartridge *cart.Cartridge) *PPU {
	p := &PPU{cpu: c, mapper: m, cart: cartridge, scanline: -1}
	return p
}

func (p *PPU) Reset() {
	p.ctrl, p.mask, p.status = 0, 0, 0
	p.oamAddr = 0
	p.v, p.t, p.x = 0, 0, 0
	p.w = false
	p.readBuffer = 0
	p.scanline, p.dot = -1, 0
	p.oddFrame = false
}

// FrameReady reports (and clears) whether the PPU has reached the start of
// vblank (scanline 241, dot 1) since the last call, the signal
// step_until_vblank polls.
func (p *PPU) FrameReady() bool {
	v := p.frameDone
	p.frameDone = false
	return v
}

/* nametable mirroring */

func (p *PPU) mirrorNametable(addr uint16) uint16 {
	addr &= 0x0FFF
	table := addr / 0x0400
	offset := addr % 0x0400

	var physical uint16
	switch p.cart.Mirroring() {
	case ines.Vertical:
		physical = uint16(table%2)*0x0400 + offset
	case ines.Horizontal:
		physical = uint16(table/2)*0x0400 + offset
	case ines.SingleScreenLow:
		physical = offset
	case ines.SingleScreenHigh:
		physical = 0x0400 + offset
	default: // four-screen: fold onto the 2KiB CIRAM, losing the extra banks
		physical = uint16(table%2)*0x0400 + offset
	}
	return physical
}

/* PPU-bus access ($0000-$3FFF as seen from inside the PPU) */

func (p *PPU) busRead(addr uint16) uint8 {
	addr &= 0x3FFF
	p.mapper.NotifyPPUAddr(addr)
	switch {
	case addr < 0x2000:
		return p.mapper.PPURead(addr)
	case addr < 0x3F00:
		return p.ciram[p.mirrorNametable(addr)]
	default:
		return p.readPalette(addr)
	}
}

func (p *PPU) busWrite(addr uint16, val uint8) {
	addr &= 0x3FFF
	p.mapper.NotifyPPUAddr(addr)
	switch {
	case addr < 0x2000:
		p.mapper.PPUWrite(addr, val)
	case addr < 0x3F00:
		p.ciram[p.mirrorNametable(addr)] = val
	default:
		p.writePalette(addr, val)
	}
}

func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx >= 0x10 && idx%4 == 0 {
		idx -= 0x10 // $3F10/14/18/1C alias $3F00/04/08/0C
	}
	return idx
}

func (p *PPU) readPalette(addr uint16) uint8 {
	v := p.palette[paletteIndex(addr)]
	if p.mask&maskGrayscale != 0 {
		v &= 0x30
	}
	return v
}

func (p *PPU) writePalette(addr uint16, val uint8) {
	p.palette[paletteIndex(addr)] = val & 0x3F
}

/* register access, $2000-$2007 as seen from the CPU side */

func (p *PPU) ReadRegister(reg uint16) uint8 {
	switch reg & 0x07 {
	case 2: // PPUSTATUS
		v := p.status&0xE0 | p.busLatch&0x1F
		p.status &^= statusVBlank
		p.w = false
		return v
	case 4: // OAMDATA
		return p.oam[p.oamAddr]
	case 7: // PPUDATA
		return p.readPPUData()
	default:
		return p.busLatch
	}
}

func (p *PPU) WriteRegister(reg uint16, val uint8) {
	p.busLatch = val
	switch reg & 0x07 {
	case 0: // PPUCTRL
		prevNMI := p.ctrl & ctrlNMIEnable
		p.ctrl = val
		p.t = p.t&0x73FF | uint16(val&0x03)<<10
		if prevNMI == 0 && p.ctrl&ctrlNMIEnable != 0 && p.status&statusVBlank != 0 {
			p.cpu.SetNMILine(true)
		}
		if p.ctrl&ctrlNMIEnable == 0 {
			p.cpu.SetNMILine(false)
		}
	case 1: // PPUMASK
		p.mask = val
	case 3: // OAMADDR
		p.oamAddr = val
	case 4: // OAMDATA
		p.oam[p.oamAddr] = val
		p.oamAddr++
	case 5: // PPUSCROLL
		if !p.w {
			p.t = p.t&0x7FE0 | uint16(val>>3)
			p.x = val & 0x07
		} else {
			p.t = p.t&0x0C1F | uint16(val&0xF8)<<2 | uint16(val&0x07)<<12
		}
		p.w = !p.w
	case 6: // PPUADDR
		if !p.w {
			p.t = p.t&0x00FF | uint16(val&0x3F)<<8
		} else {
			p.t = p.t&0x7F00 | uint16(val)
			p.v = p.t
		}
		p.w = !p.w
	case 7: // PPUDATA
		p.writePPUData(val)
	}
}

func (p *PPU) readPPUData() uint8 {
	addr := p.v & 0x3FFF
	var ret uint8
	if addr >= 0x3F00 {
		ret = p.readPalette(addr)
		p.readBuffer = p.ciram[p.mirrorNametable(addr)]
	} else {
		ret = p.readBuffer
		p.readBuffer = p.busRead(addr)
	}
	p.advanceVRAMAddr()
	return ret
}

func (p *PPU) writePPUData(val uint8) {
	p.busWrite(p.v&0x3FFF, val)
	p.advanceVRAMAddr()
}

func (p *PPU) advanceVRAMAddr() {
	if p.rendering() {
		// During rendering, $2007 accesses act as a coarse-scroll increment
		// instead of the configured VRAM-address step.
		p.incrementCoarseX()
		p.incrementY()
		return
	}
	if p.ctrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
}

func (p *PPU) rendering() bool {
	return (p.mask&(maskShowBG|maskShowSprites)) != 0 &&
		(p.scanline < 240 || p.scanline == -1)
}

func (p *PPU) WriteOAMDMAByte(val uint8) {
	p.oam[p.oamAddr] = val
	p.oamAddr++
}

func (p *PPU) PPUPosition() (scanline, dot int) { return p.scanline, p.dot }

// State is the part of PPU a save state needs to reproduce: everything
// except the framebuffer, which is regenerated by the next frame rendered
// after a restore and isn't needed to resume deterministically.
type State struct {
	Ctrl, Mask, Status uint8
	OAMAddr            uint8

	V, T uint16
	X    uint8
	W    bool

	ReadBuffer uint8
	BusLatch   uint8

	OAM     [256]uint8
	SecOAM  [32]uint8
	Palette [32]uint8
	CIRAM   [0x800]uint8

	Scanline int
	Dot      int
	OddFrame bool

	NTByte, ATByte, PatLo, PatHi uint8
	BgShiftPatLo, BgShiftPatHi   uint16
	BgShiftAttrLo, BgShiftAttrHi uint16

	SprCount  int
	SprPatLo  [8]uint8
	SprPatHi  [8]uint8
	SprAttr   [8]uint8
	SprX      [8]uint8
	SprIsZero [8]bool
}

func (p *PPU) Snapshot() State {
	return State{
		Ctrl: p.ctrl, Mask: p.mask, Status: p.status, OAMAddr: p.oamAddr,
		V: p.v, T: p.t, X: p.x, W: p.w,
		ReadBuffer: p.readBuffer, BusLatch: p.busLatch,
		OAM: p.oam, SecOAM: p.secOAM, Palette: p.palette, CIRAM: p.ciram,
		Scanline: p.scanline, Dot: p.dot, OddFrame: p.oddFrame,
		NTByte: p.ntByte, ATByte: p.atByte, PatLo: p.patLo, PatHi: p.patHi,
		BgShiftPatLo: p.bgShiftPatLo, BgShiftPatHi: p.bgShiftPatHi,
		BgShiftAttrLo: p.bgShiftAttrLo, BgShiftAttrHi: p.bgShiftAttrHi,
		SprCount: p.sprCount, SprPatLo: p.sprPatLo, SprPatHi: p.sprPatHi,
		SprAttr: p.sprAttr, SprX: p.sprX, SprIsZero: p.sprIsZero,
	}
}

func (p *PPU) Restore(s State) {
	p.ctrl, p.mask, p.status, p.oamAddr = s.Ctrl, s.Mask, s.Status, s.OAMAddr
	p.v, p.t, p.x, p.w = s.V, s.T, s.X, s.W
	p.readBuffer, p.busLatch = s.ReadBuffer, s.BusLatch
	p.oam, p.secOAM, p.palette, p.ciram = s.OAM, s.SecOAM, s.Palette, s.CIRAM
	p.scanline, p.dot, p.oddFrame = s.Scanline, s.Dot, s.OddFrame
	p.ntByte, p.atByte, p.patLo, p.patHi = s.NTByte, s.ATByte, s.PatLo, s.PatHi
	p.bgShiftPatLo, p.bgShiftPatHi = s.BgShiftPatLo, s.BgShiftPatHi
	p.bgShiftAttrLo, p.bgShiftAttrHi = s.BgShiftAttrLo, s.BgShiftAttrHi
	p.sprCount = s.SprCount
	p.sprPatLo, p.sprPatHi = s.SprPatLo, s.SprPatHi
	p.sprAttr, p.sprX, p.sprIsZero = s.SprAttr, s.SprX, s.SprIsZero
}
