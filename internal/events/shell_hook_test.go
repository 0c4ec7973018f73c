package events

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellHookRunsScriptWithEventEnv(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "hook-*.sh")
	require.NoError(t, err)

	out := tmp.Name() + ".out"
	script := "#!/bin/sh\nenv | grep ^GOPLAY_ > " + out + "\n"
	_, err = tmp.WriteString(script)
	require.NoError(t, err)
	require.NoError(t, tmp.Close())
	require.NoError(t, os.Chmod(tmp.Name(), 0755))

	h := NewShellHook("on-eof", tmp.Name())
	ev := *New(TypeEOF, time.Now()).WithStreamKey("audio-0").WithData("reason", "drained")

	require.NoError(t, h.Execute(context.Background(), ev))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, "GOPLAY_EVENT_TYPE=eof"))
	assert.True(t, strings.Contains(content, "GOPLAY_STREAM_KEY=audio-0"))
	assert.True(t, strings.Contains(content, "GOPLAY_REASON=drained"))
}

func TestShellHookPropagatesScriptFailure(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "hook-*.sh")
	require.NoError(t, err)
	_, err = tmp.WriteString("#!/bin/sh\nexit 1\n")
	require.NoError(t, err)
	require.NoError(t, tmp.Close())
	require.NoError(t, os.Chmod(tmp.Name(), 0755))

	h := NewShellHook("on-quit", tmp.Name())
	err = h.Execute(context.Background(), *New(TypeQuit, time.Now()))
	assert.Error(t, err)
}

func TestShellHookIdentity(t *testing.T) {
	h := NewShellHook("my-id", "/bin/true")
	assert.Equal(t, "shell", h.Type())
	assert.Equal(t, "my-id", h.ID())
}

func TestEnvKeyUppercases(t *testing.T) {
	assert.Equal(t, "RETRY_COUNT", envKey("retry_count"))
}
