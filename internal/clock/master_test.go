package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestMaster(hasAudio, hasVideo bool, syncType SyncType) *MasterClock {
	m := NewMasterClock(fixedSerial{0}, fixedSerial{0}, fixedSerial{0}, syncType)
	m.SetStreams(hasAudio, hasVideo)
	return m
}

func TestEffectiveSyncTypeFallsBackWhenAudioMissing(t *testing.T) {
	m := newTestMaster(false, true, SyncAudioMaster)
	assert.Equal(t, SyncExternalClock, m.EffectiveSyncType())
}

func TestEffectiveSyncTypeFallsBackWhenVideoMissing(t *testing.T) {
	m := newTestMaster(true, false, SyncVideoMaster)
	assert.Equal(t, SyncAudioMaster, m.EffectiveSyncType())
}

func TestEffectiveSyncTypeHonorsConfiguredWhenAvailable(t *testing.T) {
	m := newTestMaster(true, true, SyncVideoMaster)
	assert.Equal(t, SyncVideoMaster, m.EffectiveSyncType())
}

func TestMasterClockGetDelegatesToEffectiveClock(t *testing.T) {
	m := newTestMaster(true, true, SyncVideoMaster)
	m.Video.Set(42.0, 0)
	assert.InDelta(t, 42.0, m.Get(), 0.05)
}

func TestSetAllPausedAffectsAllThreeClocks(t *testing.T) {
	m := newTestMaster(true, true, SyncAudioMaster)
	m.SetAllPaused(true)
	assert.True(t, m.Audio.Paused())
	assert.True(t, m.Video.Paused())
	assert.True(t, m.External.Paused())
}

func TestSyncTypeStringNames(t *testing.T) {
	assert.Equal(t, "audio", SyncAudioMaster.String())
	assert.Equal(t, "video", SyncVideoMaster.String())
	assert.Equal(t, "external", SyncExternalClock.String())
}
