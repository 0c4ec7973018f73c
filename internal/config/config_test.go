package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avcore/goplay/internal/coordinator"
	"github.com/avcore/goplay/internal/errors"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.Playback.Loop)
	assert.Equal(t, "auto", cfg.Playback.FrameDrop)
	assert.Equal(t, 100, cfg.Playback.Volume)
	assert.Equal(t, "text", cfg.Status.Format)
}

func TestLoadOverlaysYAMLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	content := "playback:\n  volume: 42\n  loop: 0\nstatus:\n  format: json\nkey_bindings:\n  k: toggle_pause\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Playback.Volume)
	assert.Equal(t, 0, cfg.Playback.Loop)
	assert.Equal(t, "json", cfg.Status.Format)
	assert.Equal(t, "auto", cfg.Playback.FrameDrop) // untouched field keeps compiled-in default
	assert.Equal(t, "toggle_pause", cfg.KeyBinds["k"])
}

func TestLoadMissingFileReturnsResourceError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindResource))
}

func TestLoadInvalidYAMLReturnsFormatError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("playback: [this is not a mapping"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindFormat))
}

func TestDefaultKeyBindingsCoversCoreCommands(t *testing.T) {
	bindings := DefaultKeyBindings()
	assert.Equal(t, coordinator.CommandQuit, bindings["q"])
	assert.Equal(t, coordinator.CommandTogglePause, bindings["space"])
	assert.Equal(t, coordinator.CommandTogglePause, bindings["p"])
	assert.Equal(t, coordinator.CommandSeekForward10, bindings["right"])
}

func TestResolveKeyBindingsOverridesByName(t *testing.T) {
	cfg := Default()
	cfg.KeyBinds = map[string]string{"q": "toggle_mute"}

	resolved := cfg.ResolveKeyBindings()
	assert.Equal(t, coordinator.CommandToggleMute, resolved["q"])
	// Unrelated bindings remain the compiled-in default.
	assert.Equal(t, coordinator.CommandTogglePause, resolved["space"])
}

func TestResolveKeyBindingsIgnoresUnknownCommandName(t *testing.T) {
	cfg := Default()
	cfg.KeyBinds = map[string]string{"q": "not_a_real_command"}

	resolved := cfg.ResolveKeyBindings()
	assert.Equal(t, coordinator.CommandQuit, resolved["q"])
}
