// Package bus wires the CPU to RAM, the PPU/APU register windows, the
// joypads, and the cartridge mapper, and owns the cross-chip timing: every
// CPU access ticks the PPU three dots and the APU one cycle first, and OAM
// DMA or DMC DMA can stall the CPU for a number of such ticks.
package bus

import (
	"nescore/internal/apu"
	"nescore/internal/cpu"
	"nescore/internal/joypad"
	"nescore/internal/log"
	"nescore/internal/mapper"
)

// PPU is the subset of *ppu.PPU the bus needs.
type PPU interface {
	ReadRegister(reg uint16) uint8
	WriteRegister(reg uint16, val uint8)
	WriteOAMDMAByte(val uint8)
	Step()
}

// APU is the subset of *apu.APU the bus needs.
type APU interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, val uint8)
	Tick()
}

type Bus struct {
	cpu    *cpu.CPU
	ppu    PPU
	apu    APU
	mapper mapper.Mapper
	pads   joypad.Joypads

	ram [0x0800]uint8

	openBus uint8
}

func New(m mapper.Mapper) *Bus {
	return &Bus{mapper: m}
}

// AttachCPU completes construction; the CPU, PPU, and APU all need a
// pointer back to the bus (or to each other) so they're built in two steps.
func (b *Bus) AttachCPU(c *cpu.CPU)  { b.cpu = c }
func (b *Bus) AttachPPU(p PPU)       { b.ppu = p }
func (b *Bus) AttachAPU(a APU)       { b.apu = a }

func (b *Bus) Pads() *joypad.Joypads { return &b.pads }

func (b *Bus) Reset() {
	b.openBus = 0
	b.mapper.Reset()
}

// Tick advances the PPU three dots and the APU one cycle, and clocks any
// cycle-counted mapper IRQ logic. Called once per CPU cycle, before the
// access it accompanies.
func (b *Bus) Tick() {
	b.ppu.Step()
	b.ppu.Step()
	b.ppu.Step()
	b.apu.Tick()
	b.mapper.TickCPU()

	if b.mapper.IRQPending() {
		b.cpu.RaiseIRQ(cpu.IRQMapper)
	} else {
		b.cpu.ClearIRQ(cpu.IRQMapper)
	}
}

func (b *Bus) Read8(addr uint16) uint8 {
	var v uint8
	switch {
	case addr < 0x2000:
		v = b.ram[addr&0x07FF]
	case addr < 0x4000:
		v = b.ppu.ReadRegister(addr & 0x2007)
	case addr == 0x4015:
		v = b.apu.ReadRegister(addr)
	case addr == 0x4016:
		v = b.pads.Read4016()&0x01 | b.openBus&0xE0
	case addr == 0x4017:
		v = b.pads.Read4017()&0x01 | b.openBus&0xE0
	case addr < 0x4020:
		v = b.openBus // write-only APU registers read back as open bus
	default:
		v = b.mapper.CPURead(addr)
	}
	b.openBus = v
	return v
}

// Peek8 behaves like Read8 without side effects, for the disassembler.
func (b *Bus) Peek8(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr&0x07FF]
	case addr < 0x4020:
		return b.openBus
	default:
		return b.mapper.CPURead(addr)
	}
}

func (b *Bus) Write8(addr uint16, val uint8) {
	b.openBus = val
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = val
	case addr < 0x4000:
		b.ppu.WriteRegister(addr&0x2007, val)
	case addr == 0x4014:
		b.startOAMDMA(val)
	case addr == 0x4016:
		b.pads.WriteStrobe(val)
	case addr == 0x4017:
		b.apu.WriteRegister(addr, val)
	case addr < 0x4020:
		b.apu.WriteRegister(addr, val)
	default:
		b.mapper.CPUWrite(addr, val)
	}
}

// startOAMDMA copies 256 bytes from page val*0x100 into OAM, costing 513
// cycles (514 if it begins on an odd CPU cycle).
func (b *Bus) startOAMDMA(page uint8) {
	log.ModBus.DebugZ("start OAM DMA").Hex8("page", page).End()

	cycles := 513
	if b.cpu.CurrentCycle()%2 != 0 {
		cycles++
	}
	b.StallCPU(cycles)

	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		b.ppu.WriteOAMDMAByte(b.Read8(base + uint16(i)))
	}
}

// StallCPU is called by OAM DMA and, via ReadDMCSample's caller, DMC DMA to
// account for cycles spent handing the bus to a DMA unit instead of the CPU.
// It advances the PPU/APU/mapper exactly like a CPU-driven access would, and
// folds the same number of cycles into the CPU's own counter so cpu.Cycles
// stays in lockstep with the PPU dots and APU ticks it just produced.
func (b *Bus) StallCPU(cycles int) {
	for i := 0; i < cycles; i++ {
		b.Tick()
	}
	b.cpu.Cycles += int64(cycles)
}

// ReadDMCSample performs the CPU-bus read the DMC channel's DMA uses to
// fetch its next sample byte; unmapped PRG returns the open-bus value.
func (b *Bus) ReadDMCSample(addr uint16) uint8 {
	if addr < 0x8000 {
		return b.Read8(addr)
	}
	return b.mapper.CPURead(addr)
}

var _ apu.DMAReader = (*Bus)(nil)

// State is the bus's own contribution to a save state: work RAM, the
// open-bus latch, and the cartridge mapper's bank-select registers. The
// PPU, APU, and CPU snapshot themselves separately.
type State struct {
	RAM        [0x0800]uint8
	OpenBus    uint8
	MapperData []byte
}

func (b *Bus) Snapshot() State {
	return State{RAM: b.ram, OpenBus: b.openBus, MapperData: b.mapper.SaveState()}
}

func (b *Bus) Restore(s State) {
	b.ram = s.RAM
	b.openBus = s.OpenBus
	b.mapper.LoadState(s.MapperData)
}
