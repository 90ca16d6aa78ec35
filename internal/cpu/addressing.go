package cpu

// addrMode identifies one of the 6502's addressing modes.
type addrMode uint8

const (
	modeImplied addrMode = iota
	modeAccumulator
	modeImmediate
	modeRelative
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndirectX
	modeIndirectY
)

// class groups instructions by the bus-access pattern that determines their
// cycle count and dummy accesses, per spec §4.1's cycle accounting rules.
type class uint8

const (
	classOther  class = iota // branches, jumps, stack ops, flag ops: timing is bespoke
	classRead                // LDA/AND/CMP/... : +1 cycle only if indexing crosses a page
	classWrite               // STA/SAX/SHA/...  : always the worst-case cycle count
	classRMW                 // ASL/INC/SLO/...  : always worst-case, plus a dummy write
)

// dummyReadPC performs a throwaway read of the next instruction byte without
// advancing PC, the second cycle of every 2-cycle implied/accumulator op.
func (c *CPU) dummyReadPC() { c.read8(c.PC) }

// fetch8 reads the next operand byte and advances PC.
func (c *CPU) fetch8() uint8 {
	v := c.read8(c.PC)
	c.PC++
	return v
}

// resolve computes the effective address for op's addressing mode, issuing
// exactly the bus accesses real hardware would (including dummy reads for
// index-carry fixups), and reports whether a page boundary was crossed.
func (c *CPU) resolve(mode addrMode, cls class) (addr uint16, pageCrossed bool) {
	switch mode {
	case modeImmediate:
		addr = c.PC
		c.PC++

	case modeZeroPage:
		addr = uint16(c.fetch8())

	case modeZeroPageX:
		base := c.fetch8()
		c.read8(uint16(base)) // dummy read before indexing
		addr = uint16(base + c.X)

	case modeZeroPageY:
		base := c.fetch8()
		c.read8(uint16(base))
		addr = uint16(base + c.Y)

	case modeAbsolute:
		lo := c.fetch8()
		hi := c.fetch8()
		addr = uint16(hi)<<8 | uint16(lo)

	case modeAbsoluteX:
		addr, pageCrossed = c.resolveAbsIndexed(c.X, cls)

	case modeAbsoluteY:
		addr, pageCrossed = c.resolveAbsIndexed(c.Y, cls)

	case modeIndirect:
		lo := c.fetch8()
		hi := c.fetch8()
		ptr := uint16(hi)<<8 | uint16(lo)
		addr = c.read16bug(ptr)

	case modeIndirectX:
		ptr := c.fetch8()
		c.read8(uint16(ptr)) // dummy read at unindexed zp pointer
		ptr += c.X
		lo := c.read8(uint16(ptr))
		hi := c.read8(uint16(uint8(ptr + 1)))
		addr = uint16(hi)<<8 | uint16(lo)

	case modeIndirectY:
		ptr := c.fetch8()
		lo := c.read8(uint16(ptr))
		hi := c.read8(uint16(uint8(ptr + 1)))
		base := uint16(hi)<<8 | uint16(lo)
		addr = base + uint16(c.Y)
		pageCrossed = addr&0xFF00 != base&0xFF00
		if pageCrossed || cls != classRead {
			dummy := (base & 0xFF00) | (addr & 0x00FF)
			c.read8(dummy)
		}

	case modeRelative:
		offset := int8(c.fetch8())
		addr = uint16(int32(c.PC) + int32(offset))
	}
	return addr, pageCrossed
}

func (c *CPU) resolveAbsIndexed(reg uint8, cls class) (addr uint16, pageCrossed bool) {
	lo := c.fetch8()
	hi := c.fetch8()
	base := uint16(hi)<<8 | uint16(lo)
	addr = base + uint16(reg)
	pageCrossed = addr&0xFF00 != base&0xFF00
	if pageCrossed || cls != classRead {
		dummy := (base & 0xFF00) | (addr & 0x00FF)
		c.read8(dummy)
	}
	return addr, pageCrossed
}

// rmw implements the read-modify-write bus pattern: read the operand, write
// it back unchanged (the documented dummy write), then write the new value.
func (c *CPU) rmw(addr uint16, f func(*CPU, uint8) uint8) {
	v := c.read8(addr)
	c.write8(addr, v)
	c.write8(addr, f(c, v))
}
