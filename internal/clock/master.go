package clock

// SyncType selects which of the three clocks the Synchronizer treats as
// ground truth.
type SyncType int

const (
	SyncAudioMaster SyncType = iota // default
	SyncVideoMaster
	SyncExternalClock
)

func (t SyncType) String() string {
	switch t {
	case SyncVideoMaster:
		return "video"
	case SyncExternalClock:
		return "external"
	default:
		return "audio"
	}
}

// MasterClock bundles the three clocks and the configured sync policy,
// falling back one step (video -> audio -> external) when the preferred
// stream isn't present (spec §4.3).
type MasterClock struct {
	Audio, Video, External *Clock

	syncType   SyncType
	hasAudio   bool
	hasVideo   bool
}

// NewMasterClock wires up the three clocks against their respective packet
// queue serial sources.
func NewMasterClock(audioSerial, videoSerial, externalSerial SerialSource, syncType SyncType) *MasterClock {
	return &MasterClock{
		Audio:    New(audioSerial),
		Video:    New(videoSerial),
		External: New(externalSerial),
		syncType: syncType,
	}
}

// SetStreams records which of the audio/video streams are actually present,
// used by EffectiveSyncType's fallback.
func (m *MasterClock) SetStreams(hasAudio, hasVideo bool) {
	m.hasAudio = hasAudio
	m.hasVideo = hasVideo
}

// SyncType returns the configured (not necessarily effective) policy.
func (m *MasterClock) SyncType() SyncType { return m.syncType }

// SetSyncType changes the configured policy.
func (m *MasterClock) SetSyncType(t SyncType) { m.syncType = t }

// EffectiveSyncType resolves the configured policy against which streams are
// actually open, falling back video -> audio -> external.
func (m *MasterClock) EffectiveSyncType() SyncType {
	switch m.syncType {
	case SyncVideoMaster:
		if m.hasVideo {
			return SyncVideoMaster
		}
		return SyncAudioMaster
	case SyncAudioMaster:
		if m.hasAudio {
			return SyncAudioMaster
		}
		return SyncExternalClock
	default:
		return SyncExternalClock
	}
}

// Get returns the current value of whichever clock EffectiveSyncType
// selects.
func (m *MasterClock) Get() float64 {
	switch m.EffectiveSyncType() {
	case SyncVideoMaster:
		return m.Video.Get()
	case SyncAudioMaster:
		return m.Audio.Get()
	default:
		return m.External.Get()
	}
}

// SetAllPaused pauses or resumes the three clocks together. Each clock is
// first re-stamped at its current value, so a paused clock holds the value
// it had when paused and a resumed clock continues from that value. No
// clock is synced to another here.
func (m *MasterClock) SetAllPaused(paused bool) {
	for _, c := range []*Clock{m.Audio, m.Video, m.External} {
		c.Set(c.Get(), c.Serial())
		c.SetPaused(paused)
	}
}
