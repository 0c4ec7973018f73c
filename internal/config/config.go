// Package config holds the player's tunables table (spec §6): defaults
// baked in at compile time, optionally overridden by a YAML file. Struct
// layout and the Load function follow nishisan-dev-n-backup's
// internal/config package (os.ReadFile + yaml.Unmarshal into a tagged
// struct).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/avcore/goplay/internal/coordinator"
	"github.com/avcore/goplay/internal/errors"
)

// Config is the player's full tunables table, immutable once Load/Default
// returns it — callers that need per-session overrides (e.g. --volume)
// copy it by value and mutate the copy.
type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Status   StatusConfig   `yaml:"status"`
	KeyBinds map[string]string `yaml:"key_bindings"`
}

// PlaybackConfig mirrors spec §6's CLI flags. cmd/player does not apply
// these values from a loaded file: it takes playback settings from its
// flags and uses only the key_bindings section of the file.
type PlaybackConfig struct {
	Loop        int    `yaml:"loop"`
	FrameDrop   string `yaml:"framedrop"` // auto|on|off
	Volume      int    `yaml:"volume"`
	Muted       bool   `yaml:"mute"`
	AudioCodec  string `yaml:"audio_codec"`
	VideoCodec  string `yaml:"video_codec"`
	StartTime   float64 `yaml:"start_time"`
	Duration    float64 `yaml:"duration"`
	Realtime    bool   `yaml:"realtime"`
}

// StatusConfig controls the spec §6 status line.
type StatusConfig struct {
	Format string `yaml:"format"` // text|json
}

// DefaultKeyBindings is the compiled-in key → coordinator.Command table
// (spec §6), overridable per-entry by a config file's key_bindings map.
func DefaultKeyBindings() map[string]coordinator.Command {
	return map[string]coordinator.Command{
		"q":          coordinator.CommandQuit,
		"f":          coordinator.CommandToggleFullscreen,
		"space":      coordinator.CommandTogglePause,
		"p":          coordinator.CommandTogglePause,
		"m":          coordinator.CommandToggleMute,
		"9":          coordinator.CommandVolumeDown,
		"0":          coordinator.CommandVolumeUp,
		"s":          coordinator.CommandStepFrame,
		"a":          coordinator.CommandCycleAudio,
		"v":          coordinator.CommandCycleVideo,
		"t":          coordinator.CommandCycleSubtitle,
		"c":          coordinator.CommandCycleAll,
		"left":       coordinator.CommandSeekBack10,
		"right":      coordinator.CommandSeekForward10,
		"down":       coordinator.CommandSeekBack60,
		"up":         coordinator.CommandSeekForward60,
		"page_down":  coordinator.CommandSeekChapterPrev,
		"page_up":    coordinator.CommandSeekChapterNext,
	}
}

// Default returns the compiled-in tunables table (spec §6's defaults).
func Default() Config {
	return Config{
		Playback: PlaybackConfig{
			Loop:      1,
			FrameDrop: "auto",
			Volume:    100,
		},
		Status: StatusConfig{Format: "text"},
	}
}

// Load reads a YAML config file and overlays it onto the compiled-in
// defaults: a key present in the file overwrites the matching default,
// even with a zero value, and a key absent from it leaves the default
// untouched — a straight struct overwrite the way
// nishisan-dev-n-backup's LoadAgentConfig does it.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.New(errors.KindResource, "config.load", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.New(errors.KindFormat, "config.parse", fmt.Errorf("%s: %w", path, err))
	}
	return cfg, nil
}

// ResolveKeyBindings merges the config file's overrides onto the
// compiled-in defaults, keyed by the same key names.
func (c Config) ResolveKeyBindings() map[string]coordinator.Command {
	out := DefaultKeyBindings()
	for key, name := range c.KeyBinds {
		if cmd, ok := commandByName[name]; ok {
			out[key] = cmd
		}
	}
	return out
}

var commandByName = buildCommandByName()

func buildCommandByName() map[string]coordinator.Command {
	all := []coordinator.Command{
		coordinator.CommandQuit, coordinator.CommandToggleFullscreen, coordinator.CommandTogglePause,
		coordinator.CommandToggleMute, coordinator.CommandVolumeUp, coordinator.CommandVolumeDown,
		coordinator.CommandStepFrame, coordinator.CommandCycleAudio, coordinator.CommandCycleVideo,
		coordinator.CommandCycleSubtitle, coordinator.CommandCycleAll, coordinator.CommandSeekBack10,
		coordinator.CommandSeekForward10, coordinator.CommandSeekBack60, coordinator.CommandSeekForward60,
		coordinator.CommandSeekChapterPrev, coordinator.CommandSeekChapterNext,
	}
	m := make(map[string]coordinator.Command, len(all))
	for _, c := range all {
		m[c.String()] = c
	}
	return m
}
