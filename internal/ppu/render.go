package ppu

import "nescore/ines"

// Step advances the PPU by exactly one dot, the unit Bus.Tick calls three
// times per CPU cycle.
func (p *PPU) Step() {
	switch {
	case p.scanline >= -1 && p.scanline < 240:
		p.visibleOrPreRenderDot()
	case p.scanline == 241 && p.dot == 1:
		p.frameDone = true
		if !p.SuppressVBlank {
			p.status |= statusVBlank
			if p.ctrl&ctrlNMIEnable != 0 {
				p.cpu.SetNMILine(true)
			}
		}
	}

	p.dot++
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > p.lastScanline() {
			p.scanline = -1
			p.oddFrame = !p.oddFrame
			// Odd-frame skip: NTSC shortens the pre-render line by one dot on
			// odd frames when background rendering is on. PAL and Dendy run
			// every pre-render line to full length.
			if !p.pal() && p.oddFrame && p.mask&maskShowBG != 0 {
				p.dot = 1
			}
		}
	}
}

// lastScanline is the highest scanline number before the pre-render line
// wraps back to -1: 260 for NTSC/DualCompatible (262 scanlines/frame), 310
// for PAL/Dendy (312 scanlines/frame).
func (p *PPU) lastScanline() int {
	if p.pal() {
		return 310
	}
	return 260
}

func (p *PPU) pal() bool {
	return p.cart != nil && (p.cart.TVSystem == ines.PAL || p.cart.TVSystem == ines.Dendy)
}

func (p *PPU) visibleOrPreRenderDot() {
	if p.scanline == -1 && p.dot == 1 {
		p.status &^= statusVBlank | statusSprite0Hit | statusSpriteOverflow
		p.cpu.SetNMILine(false)
	}

	renderingOn := p.mask&(maskShowBG|maskShowSprites) != 0

	if renderingOn && (p.dot >= 1 && p.dot <= 256 || p.dot >= 321 && p.dot <= 336) {
		p.backgroundFetchCycle()
	}

	if p.scanline >= 0 && p.dot >= 1 && p.dot <= 256 {
		p.renderPixel()
	}

	if renderingOn && p.dot == 256 {
		p.incrementY()
	}
	if renderingOn && p.dot == 257 {
		p.transferX()
	}
	if renderingOn && p.scanline == -1 && p.dot >= 280 && p.dot <= 304 {
		p.transferY()
	}

	if p.dot == 257 && p.scanline >= -1 && p.scanline < 240 {
		p.evaluateSprites()
	}
	if renderingOn && p.dot >= 257 && p.dot <= 320 {
		p.fetchSpritePatterns()
	}
}

/* background fetch pipeline, the classic 8-dot nametable/attribute/pattern
   fetch cycle driving the two 16-bit shift registers. */

func (p *PPU) backgroundFetchCycle() {
	p.shiftBackgroundRegisters()

	switch (p.dot - 1) % 8 {
	case 0:
		p.loadBackgroundShifters()
		ntAddr := 0x2000 | (p.v & 0x0FFF)
		p.ntByte = p.busRead(ntAddr)
	case 2:
		atAddr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
		p.atByte = p.busRead(atAddr)
		shift := (p.v >> 4) & 0x04 | p.v&0x02
		p.atByte = (p.atByte >> shift) & 0x03
	case 4:
		base := uint16(0)
		if p.ctrl&ctrlBGPatternAddr != 0 {
			base = 0x1000
		}
		fineY := (p.v >> 12) & 0x07
		p.patLo = p.busRead(base + uint16(p.ntByte)*16 + fineY)
	case 6:
		base := uint16(0)
		if p.ctrl&ctrlBGPatternAddr != 0 {
			base = 0x1000
		}
		fineY := (p.v >> 12) & 0x07
		p.patHi = p.busRead(base + uint16(p.ntByte)*16 + fineY + 8)
	case 7:
		p.incrementCoarseX()
	}
}

func (p *PPU) loadBackgroundShifters() {
	p.bgShiftPatLo = p.bgShiftPatLo&0xFF00 | uint16(p.patLo)
	p.bgShiftPatHi = p.bgShiftPatHi&0xFF00 | uint16(p.patHi)
	attrLo, attrHi := uint16(0), uint16(0)
	if p.atByte&0x01 != 0 {
		attrLo = 0xFF
	}
	if p.atByte&0x02 != 0 {
		attrHi = 0xFF
	}
	p.bgShiftAttrLo = p.bgShiftAttrLo&0xFF00 | attrLo
	p.bgShiftAttrHi = p.bgShiftAttrHi&0xFF00 | attrHi
}

func (p *PPU) shiftBackgroundRegisters() {
	if p.mask&maskShowBG == 0 {
		return
	}
	p.bgShiftPatLo <<= 1
	p.bgShiftPatHi <<= 1
	p.bgShiftAttrLo <<= 1
	p.bgShiftAttrHi <<= 1
}

/* v/t scroll address manipulation (the "LoopyRegister" bit layout). */

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = p.v&^0x03E0 | y<<5
}

func (p *PPU) transferX() { p.v = p.v&^0x041F | p.t&0x041F }
func (p *PPU) transferY() { p.v = p.v&^0x7BE0 | p.t&0x7BE0 }

/* sprite evaluation: dot 257 runs the full secondary-OAM scan for the next
   scanline in one shot rather than spreading it across dots 1-256, since
   only the final membership/overflow outcome is externally observable. */

func (p *PPU) evaluateSprites() {
	spriteHeight := 8
	if p.ctrl&ctrlSpriteHeight != 0 {
		spriteHeight = 16
	}

	for i := range p.secOAM {
		p.secOAM[i] = 0xFF
	}
	p.sprCount = 0
	for i := range p.sprIsZero {
		p.sprIsZero[i] = false
	}

	n := 0
	nextLine := p.scanline + 1
	for i := 0; i < 64 && p.sprCount < 8; i++ {
		y := int(p.oam[i*4])
		row := nextLine - y
		if row < 0 || row >= spriteHeight {
			continue
		}
		copy(p.secOAM[p.sprCount*4:p.sprCount*4+4], p.oam[i*4:i*4+4])
		p.sprIsZero[p.sprCount] = i == 0
		p.sprCount++
		n = i + 1
	}

	// Diagonal-read overflow detection: hardware keeps scanning OAM with a
	// buggy increment that also walks the byte-within-sprite index, which is
	// why overflow can spuriously trip (or fail to) depending on OAM layout.
	m := 0
	for i := n; i < 64; i++ {
		y := int(p.oam[i*4+m])
		row := nextLine - y
		if row >= 0 && row < spriteHeight {
			p.status |= statusSpriteOverflow
			break
		}
		m = (m + 1) % 4
	}
}

func (p *PPU) fetchSpritePatterns() {
	if p.dot != 320 {
		return
	}
	spriteHeight := 8
	if p.ctrl&ctrlSpriteHeight != 0 {
		spriteHeight = 16
	}
	nextLine := p.scanline + 1

	for i := 0; i < p.sprCount; i++ {
		y := int(p.secOAM[i*4])
		tile := p.secOAM[i*4+1]
		attr := p.secOAM[i*4+2]
		x := p.secOAM[i*4+3]

		row := nextLine - y
		flipV := attr&0x80 != 0
		flipH := attr&0x40 != 0
		if flipV {
			row = spriteHeight - 1 - row
		}

		var base uint16
		var tileIndex int
		if spriteHeight == 16 {
			base = uint16(tile&0x01) * 0x1000
			tileIndex = int(tile &^ 0x01)
			if row >= 8 {
				tileIndex++
				row -= 8
			}
		} else {
			if p.ctrl&ctrlSpritePattern != 0 {
				base = 0x1000
			}
			tileIndex = int(tile)
		}

		lo := p.busRead(base + uint16(tileIndex)*16 + uint16(row))
		hi := p.busRead(base + uint16(tileIndex)*16 + uint16(row) + 8)
		if flipH {
			lo, hi = reverseBits(lo), reverseBits(hi)
		}

		p.sprPatLo[i] = lo
		p.sprPatHi[i] = hi
		p.sprAttr[i] = attr
		p.sprX[i] = x
	}
	for i := p.sprCount; i < 8; i++ {
		p.sprPatLo[i], p.sprPatHi[i] = 0, 0
	}
}

func reverseBits(b uint8) uint8 {
	b = b<<4 | b>>4
	b = (b&0x33)<<2 | (b&0xCC)>>2
	b = (b&0x55)<<1 | (b&0xAA)>>1
	return b
}

/* pixel multiplexer */

func (p *PPU) renderPixel() {
	x := p.dot - 1

	bgPixel, bgPalette := uint8(0), uint8(0)
	if p.mask&maskShowBG != 0 && !(x < 8 && p.mask&maskShowBGLeft == 0) {
		shift := 15 - p.x
		bit0 := uint8(p.bgShiftPatLo>>shift) & 1
		bit1 := uint8(p.bgShiftPatHi>>shift) & 1
		bgPixel = bit1<<1 | bit0
		a0 := uint8(p.bgShiftAttrLo>>shift) & 1
		a1 := uint8(p.bgShiftAttrHi>>shift) & 1
		bgPalette = a1<<1 | a0
	}

	sprPixel, sprPalette, sprPriority, isSprite0 := uint8(0), uint8(0), uint8(0), false
	if p.mask&maskShowSprites != 0 && !(x < 8 && p.mask&maskShowSprLeft == 0) {
		for i := 0; i < p.sprCount; i++ {
			offset := x - int(p.sprX[i])
			if offset < 0 || offset > 7 {
				continue
			}
			var bit0, bit1 uint8
			if p.sprAttr[i]&0x40 != 0 {
				bit0 = (p.sprPatLo[i] >> offset) & 1
				bit1 = (p.sprPatHi[i] >> offset) & 1
			} else {
				bit0 = (p.sprPatLo[i] >> (7 - offset)) & 1
				bit1 = (p.sprPatHi[i] >> (7 - offset)) & 1
			}
			px := bit1<<1 | bit0
			if px == 0 {
				continue
			}
			sprPixel = px
			sprPalette = p.sprAttr[i]&0x03 + 4
			sprPriority = p.sprAttr[i] & 0x20
			isSprite0 = p.sprIsZero[i]
			break
		}
	}

	if bgPixel != 0 && sprPixel != 0 && isSprite0 && x != 255 && x >= 1 {
		p.status |= statusSprite0Hit
	}

	var finalPixel, finalPalette uint8
	switch {
	case bgPixel == 0 && sprPixel == 0:
		finalPixel, finalPalette = 0, 0
	case bgPixel == 0:
		finalPixel, finalPalette = sprPixel, sprPalette
	case sprPixel == 0:
		finalPixel, finalPalette = bgPixel, bgPalette
	case sprPriority == 0:
		finalPixel, finalPalette = sprPixel, sprPalette
	default:
		finalPixel, finalPalette = bgPixel, bgPalette
	}

	colorIndex := p.readPalette(0x3F00 + uint16(finalPalette)*4 + uint16(finalPixel))
	rgb := nesPalette[colorIndex&0x3F]
	if p.mask&(maskEmphasizeR|maskEmphasizeG|maskEmphasizeB) != 0 {
		rgb = emphasize(rgb, p.mask)
	}
	p.Framebuffer[p.scanline*ScreenWidth+x] = rgb
}

func emphasize(rgb uint32, mask uint8) uint32 {
	r := uint8(rgb >> 16)
	g := uint8(rgb >> 8)
	b := uint8(rgb)
	dim := func(v uint8) uint8 { return uint8(uint16(v) * 3 / 4) }
	if mask&maskEmphasizeR != 0 {
		g, b = dim(g), dim(b)
	}
	if mask&maskEmphasizeG != 0 {
		r, b = dim(r), dim(b)
	}
	if mask&maskEmphasizeB != 0 {
		r, g = dim(r), dim(g)
	}
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
