// Command nescore is the reference frontend for the nescore library: an
// SDL2/OpenGL window around the core plus a rom-info inspector, wired the
// way the library's host API expects a real embedder to drive it.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/go-faster/jx"

	"nescore/ines"
	"nescore/internal/log"
)

type CLI struct {
	Run     RunCmd     `cmd:"" default:"1" help:"Run a ROM in the emulator window."`
	RomInfo RomInfoCmd `cmd:"" name:"rom-info" help:"Print a ROM header summary and exit."`
	Version VersionCmd `cmd:"" help:"Print the nescore version."`
}

type RunCmd struct {
	RomPath string `arg:"" name:"rom" help:"Path to the .nes or .zip ROM image." type:"existingfile"`

	Config     string `name:"config" help:"Path to a TOML config file." type:"path"`
	Trace      string `name:"trace" help:"Write a CPU trace log to FILE|stdout|stderr." placeholder:"FILE"`
	Log        string `name:"log" help:"Comma-separated list of modules to debug-log, or 'all'."`
	CPUProfile string `name:"cpuprofile" help:"Write a CPU profile to FILE." type:"path"`
}

type RomInfoCmd struct {
	RomPath string `arg:"" name:"rom" help:"Path to the .nes or .zip ROM image." type:"existingfile"`
	JSON    bool   `name:"json" help:"Print the summary as JSON instead of text."`
}

type VersionCmd struct{}

const version = "0.1.0"

func (c *RunCmd) Run() error {
	if c.Log != "" {
		if err := enableLogging(c.Log); err != nil {
			return err
		}
	}
	cfg := defaultConfig()
	if c.Config != "" {
		var err error
		cfg, err = loadConfig(c.Config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	return runROM(c, cfg)
}

func (c *RomInfoCmd) Run() error {
	rom, err := ines.Open(c.RomPath)
	if err != nil {
		return err
	}
	if c.JSON {
		os.Stdout.Write(romInfoJSON(rom))
		fmt.Println()
		return nil
	}
	rom.PrintInfos(os.Stdout)
	return nil
}

func (c *VersionCmd) Run() error {
	fmt.Println("nescore", version)
	return nil
}

func romInfoJSON(rom *ines.Rom) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("mapper", func() { e.UInt16(rom.Mapper) })
		e.Field("submapper", func() { e.UInt8(rom.SubMapper) })
		e.Field("nes20", func() { e.Bool(rom.NES20) })
		e.Field("prgRomBytes", func() { e.Int(rom.PRGROMSize) })
		e.Field("chrRomBytes", func() { e.Int(rom.CHRROMSize) })
		e.Field("prgRamBytes", func() { e.Int(rom.PRGRAMSize) })
		e.Field("battery", func() { e.Bool(rom.Battery) })
		e.Field("mirroring", func() { e.Str(rom.Mirroring.String()) })
		e.Field("tvSystem", func() { e.Str(rom.TVSystem.String()) })
	})
	return e.Bytes()
}

func enableLogging(spec string) error {
	if spec == "no" {
		log.Disable()
		return nil
	}
	if spec == "all" {
		log.EnableDebugModules(log.ModuleMaskAll)
		return nil
	}
	var mask log.ModuleMask
	for _, name := range splitComma(spec) {
		m, ok := log.ModuleByName(name)
		if !ok {
			return fmt.Errorf("unknown log module %q", name)
		}
		mask |= m.Mask()
	}
	log.EnableDebugModules(mask)
	return nil
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("nescore"),
		kong.Description("A cycle-accurate NES emulator."),
		kong.UsageOnError())
	ctx.FatalIfErrorf(ctx.Run())
}
