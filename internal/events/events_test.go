package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEventStampsTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	e := New(TypeEOF, now)
	assert.Equal(t, TypeEOF, e.Type)
	assert.Equal(t, int64(1700000000), e.Timestamp)
	assert.NotNil(t, e.Data)
}

func TestWithDataAndStreamKeyChain(t *testing.T) {
	e := New(TypeStreamSwitch, time.Now()).WithStreamKey("audio-0").WithData("index", 3)
	assert.Equal(t, "audio-0", e.StreamKey)
	assert.Equal(t, 3, e.Data["index"])
}

func TestEventStringIncludesStreamKeyWhenSet(t *testing.T) {
	e := New(TypeSeek, time.Now())
	assert.Equal(t, "seek", e.String())

	e.WithStreamKey("v0")
	assert.Equal(t, "seek:v0", e.String())
}

func TestWithDataInitializesNilMap(t *testing.T) {
	e := &Event{Type: TypeQuit}
	e.WithData("k", "v")
	assert.Equal(t, "v", e.Data["k"])
}
