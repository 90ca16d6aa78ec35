package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the frontend's own TOML-backed configuration, separate from
// anything the core cares about: window/audio device setup and the control
// bindings, not emulation semantics.
type Config struct {
	Video VideoConfig `toml:"video"`
	Audio AudioConfig `toml:"audio"`
	Input InputConfig `toml:"input"`
}

type VideoConfig struct {
	Scale        int  `toml:"scale"`
	DisableVSync bool `toml:"disable_vsync"`
	Monitor      int  `toml:"monitor"`
}

type AudioConfig struct {
	DisableAudio bool `toml:"disable_audio"`
	SampleRate   int  `toml:"sample_rate"`
}

type InputConfig struct {
	Up, Down, Left, Right string `toml:""`
	A, B, Select, Start   string `toml:""`
}

func defaultConfig() Config {
	return Config{
		Video: VideoConfig{Scale: 3, Monitor: 0},
		Audio: AudioConfig{SampleRate: 44100},
		Input: InputConfig{
			Up: "Up", Down: "Down", Left: "Left", Right: "Right",
			A: "Z", B: "X", Select: "RShift", Start: "Return",
		},
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
