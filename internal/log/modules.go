// Package log implements a small module-scoped structured logger on top of
// logrus. Each hardware component (CPU, PPU, APU, mapper...) logs through its
// own Module, and debug-level logging can be enabled per module so a single
// noisy chip doesn't have to be silenced by turning off logging entirely.
package log

import "github.com/sirupsen/logrus"

type ModuleMask uint64

const ModuleMaskAll ModuleMask = 0xFFFFFFFFFFFFFFFF

type Module uint

const (
	ModEmu Module = iota + 1
	ModCPU
	ModPPU
	ModAPU
	ModMapper
	ModCart
	ModBus
	ModInput
	ModSnapshot

	endStandardMods
)

var modNames = []string{
	"<error>", "emu", "cpu", "ppu", "apu", "mapper", "cart", "bus", "input", "snapshot",
}

var modDebugMask ModuleMask

func ModuleNames() []string { return modNames[1:] }

func ModuleByName(name string) (Module, bool) {
	for idx, s := range modNames {
		if s == name {
			return Module(idx), true
		}
	}
	return 0, false
}

func (mod Module) Mask() ModuleMask { return 1 << ModuleMask(mod) }

func (mod Module) name() string {
	if int(mod) < len(modNames) {
		return modNames[mod]
	}
	return "<unknown>"
}

func EnableDebugModules(mask ModuleMask) {
	modDebugMask |= mask
	logrus.SetLevel(logrus.DebugLevel)
}

func DisableDebugModules(mask ModuleMask) { modDebugMask &^= mask }
func Disable()                          { modDebugMask = 0 }

func (mod Module) debugEnabled() bool {
	return modDebugMask&mod.Mask() != 0
}

func (mod Module) DebugZ(msg string) *Entry {
	if !mod.debugEnabled() {
		return nil
	}
	return newEntry(mod, logrus.DebugLevel, msg)
}

func (mod Module) InfoZ(msg string) *Entry  { return newEntry(mod, logrus.InfoLevel, msg) }
func (mod Module) WarnZ(msg string) *Entry  { return newEntry(mod, logrus.WarnLevel, msg) }
func (mod Module) ErrorZ(msg string) *Entry { return newEntry(mod, logrus.ErrorLevel, msg) }
func (mod Module) FatalZ(msg string) *Entry { return newEntry(mod, logrus.FatalLevel, msg) }
