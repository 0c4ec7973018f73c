package clock

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedSerial struct{ s int }

func (f fixedSerial) Serial() int { return f.s }

func TestNewClockStartsNaN(t *testing.T) {
	c := New(fixedSerial{0})
	assert.True(t, math.IsNaN(c.Get()))
	assert.Equal(t, -1, c.Serial())
}

func TestSetThenGetReturnsApproximatelyPTS(t *testing.T) {
	c := New(fixedSerial{5})
	c.Set(10.0, 5)
	got := c.Get()
	assert.InDelta(t, 10.0, got, 0.05)
	assert.Equal(t, 5, c.Serial())
}

func TestGetGoesStaleAfterQueueSerialAdvances(t *testing.T) {
	s := &fixedSerial{1}
	c := New(s)
	c.Set(3.0, 1)
	assert.False(t, math.IsNaN(c.Get()))

	s.s = 2 // queue flushed out from under the clock
	assert.True(t, math.IsNaN(c.Get()))
}

func TestSetPausedFreezesValue(t *testing.T) {
	c := New(fixedSerial{0})
	c.Set(7.0, 0)
	c.SetPaused(true)
	first := c.Get()
	assert.InDelta(t, 7.0, first, 0.001)
	second := c.Get()
	assert.Equal(t, first, second)
}

func TestSetSpeedReanchorsWithoutJump(t *testing.T) {
	c := New(fixedSerial{0})
	c.Set(5.0, 0)
	before := c.Get()
	c.SetSpeed(2.0)
	after := c.Get()
	assert.InDelta(t, before, after, 0.05)
	assert.Equal(t, 2.0, c.Speed())
}

func TestSyncToPullsWhenDiverged(t *testing.T) {
	a := New(fixedSerial{0})
	b := New(fixedSerial{1})
	a.Set(0, 0)
	b.Set(50, 1) // far beyond NoSyncThreshold

	a.SyncTo(b)
	assert.InDelta(t, 50, a.Get(), 0.1)
}

func TestSyncToIgnoresSmallDrift(t *testing.T) {
	a := New(fixedSerial{0})
	b := New(fixedSerial{1})
	a.Set(10, 0)
	b.Set(11, 1) // well under NoSyncThreshold

	a.SyncTo(b)
	assert.InDelta(t, 10, a.Get(), 0.1)
}

func TestSyncToIgnoresInvalidSlave(t *testing.T) {
	a := New(fixedSerial{0})
	b := New(fixedSerial{1}) // never Set, stays NaN
	a.Set(10, 0)

	a.SyncTo(b)
	assert.InDelta(t, 10, a.Get(), 0.1)
}
