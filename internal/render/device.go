package render

// AudioDevice is the "out of scope" audio device spec.md §1 assumes: a
// pull-callback sink that asks for exactly as many interleaved PCM bytes
// as its hardware buffer needs, on its own library-owned thread (spec §5).
type AudioDevice interface {
	// Start begins calling pull on the device's own goroutine whenever it
	// needs more samples; pull must fill buf completely (zero-pad if the
	// renderer has nothing left) and return quickly.
	Start(pull func(buf []byte)) error
	Stop() error
	// BufferSize is the device's hardware buffer size in bytes, used by
	// the audio synchronizer's correction threshold (spec §4.4).
	BufferSize() int
	SampleRate() int
	Channels() int
	BytesPerSec() int
}
