package cpu

// Status flags bit positions of the 6502 P register.
const (
	flagC uint8 = 1 << 0 // Carry
	flagZ uint8 = 1 << 1 // Zero
	flagI uint8 = 1 << 2 // Interrupt disable
	flagD uint8 = 1 << 3 // Decimal (no-op on this chip: ADC/SBC ignore it)
	flagB uint8 = 1 << 4 // Break (only meaningful in the pushed copy)
	flagU uint8 = 1 << 5 // Unused, always pushed as 1
	flagV uint8 = 1 << 6 // Overflow
	flagN uint8 = 1 << 7 // Negative
)

// P is the processor status register.
type P uint8

func (p *P) set(flag uint8, v bool) {
	if v {
		*p |= P(flag)
	} else {
		*p &^= P(flag)
	}
}

func (p P) has(flag uint8) bool { return uint8(p)&flag != 0 }

func (p P) Carry() bool    { return p.has(flagC) }
func (p P) Zero() bool     { return p.has(flagZ) }
func (p P) IntDisable() bool { return p.has(flagI) }
func (p P) Decimal() bool  { return p.has(flagD) }
func (p P) Overflow() bool { return p.has(flagV) }
func (p P) Negative() bool { return p.has(flagN) }

func (p *P) setCarry(v bool)      { p.set(flagC, v) }
func (p *P) setZero(v bool)       { p.set(flagZ, v) }
func (p *P) setIntDisable(v bool) { p.set(flagI, v) }
func (p *P) setDecimal(v bool)    { p.set(flagD, v) }
func (p *P) setBrk(v bool)        { p.set(flagB, v) }
func (p *P) setUnused(v bool)     { p.set(flagU, v) }
func (p *P) setOverflow(v bool)   { p.set(flagV, v) }
func (p *P) setNegative(v bool)   { p.set(flagN, v) }

// setZN updates Z and N from the given result byte, as almost every
// load/transfer/ALU instruction does.
func (p *P) setZN(v uint8) {
	p.setZero(v == 0)
	p.setNegative(v&0x80 != 0)
}

func (p P) String() string {
	buf := [8]byte{'n', 'v', 'u', 'b', 'd', 'i', 'z', 'c'}
	flags := [8]uint8{flagN, flagV, flagU, flagB, flagD, flagI, flagZ, flagC}
	for i, f := range flags {
		if p.has(f) {
			buf[i] -= 'a' - 'A'
		}
	}
	return string(buf[:])
}
