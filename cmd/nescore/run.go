package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sync/errgroup"

	"nescore"
)

// runROM loads romPath and drives it in an SDL2/OpenGL window until the
// user closes it or sends SIGINT/SIGTERM. sdl.Main pins SDL's event loop to
// the OS thread it requires; the emulation/present loop and signal watcher
// run as errgroup members inside it so either one's exit tears down the
// other.
func runROM(cmd *RunCmd, cfg Config) error {
	data, err := os.ReadFile(cmd.RomPath)
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}

	emu, err := nescore.BootFromBytes(data)
	if err != nil {
		return fmt.Errorf("booting rom: %w", err)
	}

	var traceOut io.WriteCloser
	if cmd.Trace != "" {
		traceOut, err = openTraceOut(cmd.Trace)
		if err != nil {
			return fmt.Errorf("opening trace output: %w", err)
		}
		defer traceOut.Close()
	}

	if cmd.CPUProfile != "" {
		f, err := os.Create(cmd.CPUProfile)
		if err != nil {
			return fmt.Errorf("creating cpu profile: %w", err)
		}
		pprof.StartCPUProfile(f)
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
		}()
	}

	var runErr error
	sdl.Main(func() {
		runErr = runLoop(emu, cfg, traceOut)
	})
	return runErr
}

func openTraceOut(name string) (io.WriteCloser, error) {
	switch name {
	case "stdout":
		return nopCloser{os.Stdout}, nil
	case "stderr":
		return nopCloser{os.Stderr}, nil
	default:
		return os.Create(name)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func runLoop(emu *nescore.Emu, cfg Config, traceOut io.Writer) error {
	fe, err := newFrontend(cfg)
	if err != nil {
		return err
	}
	defer fe.Close()

	if traceOut != nil {
		emu.EnableTrace(traceOut)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		for ctx.Err() == nil {
			if !fe.PollInput(emu) {
				return nil
			}
			emu.StepUntilVBlank()
			fe.Draw(emu.GetRawScreen())
			fe.QueueAudio(emu.GetRawSamples())
			emu.ConsumeSamples()
		}
		return nil
	})

	return g.Wait()
}
