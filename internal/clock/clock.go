// Package clock implements the three-clock synchronization primitive that
// drives A/V timing: each of the audio, video and external clocks tracks a
// drifting PTS value plus the serial of the packet queue it's derived from,
// so a clock silently stops reporting fresh time once its queue has been
// flushed out from under it (spec §4.3).
package clock

import (
	"math"
	"sync"
	"time"
)

// SerialSource reports a packet queue's current generation counter. A Clock
// compares its own stamped serial against this on every Get to detect that
// it has gone stale after a flush.
type SerialSource interface {
	Serial() int
}

// Clock is a single drifting time base. The zero value is not usable; use
// New.
type Clock struct {
	mu sync.Mutex

	pts         float64 // last set PTS, seconds
	ptsDrift    float64 // pts - lastUpdated, the quantity that actually drifts
	lastUpdated float64 // wall time of the last Set, seconds
	speed       float64
	paused      bool
	serial      int

	queueSerial SerialSource
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// New creates a clock observing queueSerial for staleness and initializes it
// to NaN/serial -1, matching ffplay's init_clock.
func New(queueSerial SerialSource) *Clock {
	c := &Clock{speed: 1.0, queueSerial: queueSerial}
	c.setAt(math.NaN(), -1, nowSeconds())
	return c
}

func (c *Clock) setAt(pts float64, serial int, t float64) {
	c.pts = pts
	c.lastUpdated = t
	c.ptsDrift = c.pts - t
	c.serial = serial
}

// Set stamps the clock with pts at the current wall time, tagged with
// serial.
func (c *Clock) Set(pts float64, serial int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setAt(pts, serial, nowSeconds())
}

// SetPaused toggles whether Get extrapolates from drift or returns the
// frozen pts.
func (c *Clock) SetPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = paused
}

func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Serial returns the serial this clock was last stamped with.
func (c *Clock) Serial() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serial
}

// Speed returns the clock's current playback speed multiplier.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetSpeed changes the rate at which Get extrapolates time, re-anchoring
// the clock at its current value first so the change doesn't cause a jump.
func (c *Clock) SetSpeed(speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pts, serial := c.getLocked()
	c.setAt(pts, serial, nowSeconds())
	c.speed = speed
}

func (c *Clock) getLocked() (pts float64, serial int) {
	if c.queueSerial != nil && c.queueSerial.Serial() != c.serial {
		return math.NaN(), c.serial
	}
	if c.paused {
		return c.pts, c.serial
	}
	t := nowSeconds()
	return c.ptsDrift + t - (t-c.lastUpdated)*(1.0-c.speed), c.serial
}

// Get returns the clock's current extrapolated PTS, or NaN if the clock has
// gone stale (its stamped serial no longer matches its queue's).
func (c *Clock) Get() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	pts, _ := c.getLocked()
	return pts
}

// NoSyncThreshold bounds how far two clocks may drift apart before
// SyncTo considers them diverged rather than merely jittering (spec §4.3).
const NoSyncThreshold = 10.0

// SyncTo pulls c to slave's current value if slave is valid and c is either
// invalid or more than NoSyncThreshold away from it. The copied value is
// stamped with the current serial of c's own queue (slave's serial when c
// has none), so c stays valid after the pull.
func (c *Clock) SyncTo(slave *Clock) {
	self := c.Get()
	other := slave.Get()
	if !math.IsNaN(other) && (math.IsNaN(self) || math.Abs(self-other) > NoSyncThreshold) {
		serial := slave.Serial()
		if c.queueSerial != nil {
			serial = c.queueSerial.Serial()
		}
		c.Set(other, serial)
	}
}
