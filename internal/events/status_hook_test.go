package events

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusHookTextFormat(t *testing.T) {
	h := NewStatusHook("text")
	var buf bytes.Buffer
	h.SetOutput(&buf)

	require.NoError(t, h.Execute(context.Background(), *New(TypePauseChanged, time.Now()).WithStreamKey("v0")))
	assert.Equal(t, "pause_changed:v0\n", buf.String())
}

func TestStatusHookJSONFormat(t *testing.T) {
	h := NewStatusHook("json")
	var buf bytes.Buffer
	h.SetOutput(&buf)

	ev := *New(TypeSeek, time.Now()).WithData("pos", int64(1024))
	require.NoError(t, h.Execute(context.Background(), ev))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "seek", decoded["type"])
	assert.EqualValues(t, 1024, decoded["data"].(map[string]any)["pos"])
}

func TestStatusHookIdentity(t *testing.T) {
	h := NewStatusHook("text")
	assert.Equal(t, "status", h.Type())
	assert.Equal(t, "status", h.ID())
}
