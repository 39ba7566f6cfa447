package config

import (
	"bytes"
	"embed"
	"fmt"
	"sort"

	"github.com/san-kum/trampball/internal/worldfile"
)

//go:embed worlds/*.txt
var worlds embed.FS

type Preset struct {
	Description string
	File        string
	Duration    float64
}

var Presets = map[string]Preset{
	"drop": {
		Description: "ball dropped onto a 49-anchor trampoline",
		File:        "worlds/drop.txt",
		Duration:    8.0,
	},
	"collide": {
		Description: "two stacked balls meeting over a sloped wall",
		File:        "worlds/collide.txt",
		Duration:    6.0,
	},
	"playground": {
		Description: "two trampolines, walls and three balls",
		File:        "worlds/playground.txt",
		Duration:    20.0,
	},
}

func HasPreset(name string) bool {
	_, ok := Presets[name]
	return ok
}

// GetPreset returns a default configuration running the named preset, or
// nil when there is no such preset.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Preset = name
	cfg.Duration = p.Duration
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetWorld returns the raw world file of a preset.
func PresetWorld(name string) ([]byte, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	return worlds.ReadFile(p.File)
}

func PresetScene(name string) (*worldfile.Scene, error) {
	data, err := PresetWorld(name)
	if err != nil {
		return nil, err
	}
	s, err := worldfile.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", name, err)
	}
	return s, nil
}
