package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avcore/goplay/internal/clock"
	"github.com/avcore/goplay/internal/container/wire"
	"github.com/avcore/goplay/internal/decode"
	"github.com/avcore/goplay/internal/decode/codec"
	"github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/events"
	"github.com/avcore/goplay/internal/media"
	"github.com/avcore/goplay/internal/queue"
	"github.com/avcore/goplay/internal/reader"
	"github.com/avcore/goplay/internal/render"
	"github.com/avcore/goplay/internal/source"
)

// DeviceFactory opens an AudioDevice once the audio stream's format is
// known from the container's stream table — the format isn't available
// until after Open has read that table, so a concrete device can't be
// passed in up front.
type DeviceFactory func(sampleRate, channels int, format media.SampleFormat) (render.AudioDevice, error)

// Options configures how a VideoState builds its pipeline (the flag/config
// surface of spec §6, already resolved to concrete values by the caller).
type Options struct {
	Overrides StreamOverrides
	Loop      int // 0 = infinite, 1 = no looping, N = N times
	Realtime  bool
	FrameDrop bool
	Volume    int
	Muted     bool
}

// VideoState is the spec's per-playback aggregate: every queue, clock,
// decoder driver, and renderer for one opened input, plus the lifecycle
// and command-dispatch operations spec §4.6/§6 describe. Grounded on the
// teacher's conn.Conn (accept → handshake → spawn read/write loops →
// Close tears everything down) generalized from one network connection to
// one media pipeline.
type VideoState struct {
	logger *slog.Logger
	opts   Options

	container source.Container
	table     wire.StreamTable
	sel       reader.Selection

	queues map[int]*queue.PacketQueue

	audioFrameQ    *queue.FrameQueue
	videoFrameQ    *queue.FrameQueue
	subtitleFrameQ *queue.FrameQueue

	audclk *clock.Clock
	vidclk *clock.Clock
	extclk *clock.Clock
	master *clock.MasterClock

	rd             *reader.Reader
	audioDriver    *decode.Driver
	videoDriver    *decode.Driver
	subtitleDriver *decode.Driver

	audioRenderer *render.AudioRenderer
	videoRenderer *render.VideoRenderer
	fanout        *render.Fanout

	dispatcher *events.Dispatcher

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	hasAudio, hasVideo, hasSubtitle bool
}

// Open constructs and starts the full pipeline for rawURL: resolves the
// source, reads its stream table, selects streams, wires queues/clocks/
// decoders/renderers, and spawns every goroutine (spec §4.6 step 1-ish;
// the "demuxer init" ffplay performs synchronously at open).
func Open(ctx context.Context, rawURL string, opts Options, deviceFactory DeviceFactory, surface render.VideoSurface, dispatcher *events.Dispatcher, logger *slog.Logger) (*VideoState, error) {
	if logger == nil {
		logger = slog.Default()
	}

	container, err := source.Open(ctx, rawURL, opts.Realtime)
	if err != nil {
		return nil, errors.New(errors.KindInput, "coordinator.open", err)
	}

	table, err := wire.ReadStreamTable(container)
	if err != nil {
		container.Close()
		return nil, errors.New(errors.KindFormat, "coordinator.read_stream_table", err)
	}

	sel := SelectStreams(table, opts.Overrides)

	vs := &VideoState{
		logger:     logger,
		opts:       opts,
		container:  container,
		table:      table,
		sel:        sel,
		queues:     make(map[int]*queue.PacketQueue),
		dispatcher: dispatcher,
		fanout:     render.NewFanout(logger),
	}

	vs.hasAudio = sel.AudioIndex != -1
	vs.hasVideo = sel.VideoIndex != -1
	vs.hasSubtitle = sel.SubtitleIndex != -1

	for _, idx := range []int{sel.AudioIndex, sel.VideoIndex, sel.SubtitleIndex} {
		if idx == -1 {
			continue
		}
		q := queue.NewPacketQueue()
		q.Start()
		vs.queues[idx] = q
	}

	vs.master = clock.NewMasterClock(serialSourceFor(vs.queues, sel.AudioIndex), serialSourceFor(vs.queues, sel.VideoIndex), constSerial{}, clock.SyncAudioMaster)
	vs.master.SetStreams(vs.hasAudio, vs.hasVideo)
	vs.audclk = vs.master.Audio
	vs.vidclk = vs.master.Video
	vs.extclk = vs.master.External

	if vs.hasAudio {
		info := streamInfo(table, sel.AudioIndex)
		c, err := codec.New(info)
		if err != nil {
			vs.Close()
			return nil, errors.New(errors.KindDecode, "coordinator.audio_codec", err)
		}
		vs.audioFrameQ = queue.NewFrameQueue(vs.queues[sel.AudioIndex], 9, false)
		vs.audioDriver = decode.NewDriver(c, vs.queues[sel.AudioIndex], vs.audioFrameQ, media.Audio, sel.AudioIndex, logger)
		if deviceFactory != nil {
			device, err := deviceFactory(info.SampleRate, info.Channels, media.SampleS16)
			if err != nil {
				vs.Close()
				return nil, errors.New(errors.KindDevice, "coordinator.audio_device", err)
			}
			vs.audioRenderer = render.NewAudioRenderer(vs.audioFrameQ, vs.queues[sel.AudioIndex], vs.audclk, vs.extclk, device, vs.master, logger)
			vs.audioRenderer.SetVolume(opts.Volume)
			vs.audioRenderer.SetMuted(opts.Muted)
		}
	}

	if vs.hasVideo {
		info := streamInfo(table, sel.VideoIndex)
		c, err := codec.New(info)
		if err != nil {
			vs.Close()
			return nil, errors.New(errors.KindDecode, "coordinator.video_codec", err)
		}
		vs.videoFrameQ = queue.NewFrameQueue(vs.queues[sel.VideoIndex], 3, true)
		vs.videoDriver = decode.NewDriver(c, vs.queues[sel.VideoIndex], vs.videoFrameQ, media.Video, sel.VideoIndex, logger)
		if surface != nil {
			vs.videoRenderer = render.NewVideoRenderer(vs.videoFrameQ, vs.queues[sel.VideoIndex], vs.subtitleFrameQ, surface, vs.master, vs.vidclk, logger)
			vs.videoRenderer.FrameDrop = opts.FrameDrop
		}
	}

	if vs.hasSubtitle {
		info := streamInfo(table, sel.SubtitleIndex)
		c, err := codec.New(info)
		if err != nil {
			vs.Close()
			return nil, errors.New(errors.KindDecode, "coordinator.subtitle_codec", err)
		}
		vs.subtitleFrameQ = queue.NewFrameQueue(vs.queues[sel.SubtitleIndex], 16, false)
		vs.subtitleDriver = decode.NewDriver(c, vs.queues[sel.SubtitleIndex], vs.subtitleFrameQ, media.Subtitle, sel.SubtitleIndex, logger)
		if vs.videoRenderer != nil {
			vs.videoRenderer = render.NewVideoRenderer(vs.videoFrameQ, vs.queues[sel.VideoIndex], vs.subtitleFrameQ, surface, vs.master, vs.vidclk, logger)
			vs.videoRenderer.FrameDrop = opts.FrameDrop
		}
	}

	vs.rd = reader.New(container, sel, vs.queues, vs.extclk, opts.Loop, logger)
	vs.rd.SetDrainers(vs.drainers())

	vs.start(ctx)
	return vs, nil
}

func (vs *VideoState) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	vs.cancel = cancel

	vs.wg.Add(1)
	go func() {
		defer vs.wg.Done()
		if err := vs.rd.Run(runCtx); err != nil {
			vs.logger.Error("reader loop exited", "error", err)
			vs.emit(events.TypeError, map[string]any{"error": err.Error()})
		}
	}()

	if vs.audioDriver != nil {
		vs.wg.Add(1)
		go func() { defer vs.wg.Done(); vs.audioDriver.Run(runCtx) }()
	}
	if vs.videoDriver != nil {
		vs.wg.Add(1)
		go func() { defer vs.wg.Done(); vs.videoDriver.Run(runCtx) }()
	}
	if vs.subtitleDriver != nil {
		vs.wg.Add(1)
		go func() { defer vs.wg.Done(); vs.subtitleDriver.Run(runCtx) }()
	}

	if vs.audioRenderer != nil {
		if err := vs.audioRenderer.Start(); err != nil {
			vs.logger.Error("audio device start failed", "error", err)
		}
	}
	if vs.videoRenderer != nil {
		vs.wg.Add(1)
		go func() {
			defer vs.wg.Done()
			vs.videoRenderer.Run(runCtx, vs.opts.Realtime, vs.packetCount(vs.sel.VideoIndex), vs.packetCount(vs.sel.AudioIndex), vs.hasVideo, vs.hasAudio)
		}()
	}
}

// drainers collects the reader.Drainer view of every stream driver that
// was actually constructed, so the reader's loop-to-start/EOF check can
// confirm each decoder has genuinely finished (not just that its packet
// queue emptied) before treating playback as drained.
func (vs *VideoState) drainers() []reader.Drainer {
	var ds []reader.Drainer
	for _, d := range []*decode.Driver{vs.audioDriver, vs.videoDriver, vs.subtitleDriver} {
		if d != nil {
			ds = append(ds, d)
		}
	}
	return ds
}

func (vs *VideoState) packetCount(streamIndex int) func() int {
	return func() int {
		if streamIndex == -1 {
			return 0
		}
		if q, ok := vs.queues[streamIndex]; ok {
			return q.NbPackets()
		}
		return 0
	}
}

func (vs *VideoState) emit(typ events.Type, data map[string]any) {
	if vs.dispatcher == nil {
		return
	}
	ev := events.New(typ, time.Now())
	for k, v := range data {
		ev.WithData(k, v)
	}
	vs.dispatcher.Trigger(context.Background(), *ev)
}

// Close tears down every goroutine and the underlying container, the way
// conn.Conn.Close stops its read/write loops before releasing the socket.
func (vs *VideoState) Close() error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.cancel != nil {
		vs.cancel()
	}
	for _, q := range vs.queues {
		q.Abort()
	}
	if vs.audioFrameQ != nil {
		vs.audioFrameQ.Signal()
	}
	if vs.videoFrameQ != nil {
		vs.videoFrameQ.Signal()
	}
	if vs.subtitleFrameQ != nil {
		vs.subtitleFrameQ.Signal()
	}
	if vs.audioRenderer != nil {
		vs.audioRenderer.Stop()
	}
	vs.wg.Wait()
	return vs.container.Close()
}

func streamInfo(table wire.StreamTable, index int) media.StreamInfo {
	for _, s := range table.Streams {
		if s.Index == index {
			return s
		}
	}
	return media.StreamInfo{Index: index}
}

func serialSourceFor(queues map[int]*queue.PacketQueue, index int) clock.SerialSource {
	if index == -1 {
		return constSerial{}
	}
	return queues[index]
}

// constSerial backs the external clock: it never goes stale since it has
// no packet-queue generation to track (ffplay's external clock uses its
// own dedicated serial counter; ours simply never invalidates).
type constSerial struct{}

func (constSerial) Serial() int { return 0 }
