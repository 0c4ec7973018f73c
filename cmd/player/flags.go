package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// version is injected at build time with -ldflags "-X main.version=...".
var version = "dev"

// cliConfig holds user-supplied flag values before translation into
// coordinator.Options, the way the teacher's cliConfig
// sits between flag.Parse and server.Config.
type cliConfig struct {
	input string

	loop        int
	frameDrop   string
	volume      int
	mute        bool
	audioCodec  string
	videoCodec  string
	startTime   float64
	duration    float64
	realtime    bool
	statusFmt   string
	configPath  string
	onEOFScript string
	onQuit      string
	logLevel    string
	showVersion bool
}

func parseFlags(args []string) (*cliConfig, error) {
	fs := pflag.NewFlagSet("player", pflag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	cfg := &cliConfig{}

	fs.IntVar(&cfg.loop, "loop", 1, "number of times to play the input, 0 = forever")
	fs.StringVar(&cfg.frameDrop, "framedrop", "auto", "auto|on|off")
	fs.IntVar(&cfg.volume, "volume", 100, "initial volume, 0-100")
	fs.BoolVar(&cfg.mute, "mute", false, "start muted")
	fs.StringVar(&cfg.audioCodec, "audio-codec", "", "force audio codec id")
	fs.StringVar(&cfg.videoCodec, "video-codec", "", "force video codec id")
	fs.Float64Var(&cfg.startTime, "start-time", 0, "seconds into the input to start")
	fs.Float64Var(&cfg.duration, "duration", 0, "seconds to play, 0 = until EOF")
	fs.BoolVar(&cfg.realtime, "realtime", false, "treat the input as a live, non-seekable source")
	fs.StringVar(&cfg.statusFmt, "status-format", "text", "text|json")
	fs.StringVar(&cfg.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&cfg.onEOFScript, "on-eof", "", "script to run when playback reaches end of stream")
	fs.StringVar(&cfg.onQuit, "on-quit", "", "script to run on quit")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "debug|info|warn|error")
	fs.BoolVar(&cfg.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if !cfg.showVersion {
		if fs.NArg() < 1 {
			return nil, fmt.Errorf("usage: player [flags] <input>")
		}
		cfg.input = fs.Arg(0)
	}

	switch cfg.frameDrop {
	case "auto", "on", "off":
	default:
		return nil, fmt.Errorf("invalid --framedrop %q", cfg.frameDrop)
	}
	switch cfg.statusFmt {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid --status-format %q", cfg.statusFmt)
	}
	if cfg.volume < 0 || cfg.volume > 100 {
		return nil, fmt.Errorf("--volume must be between 0 and 100, got %d", cfg.volume)
	}
	switch cfg.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid --log-level %q", cfg.logLevel)
	}

	return cfg, nil
}
