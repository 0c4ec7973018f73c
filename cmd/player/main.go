package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avcore/goplay/internal/config"
	"github.com/avcore/goplay/internal/coordinator"
	"github.com/avcore/goplay/internal/events"
	"github.com/avcore/goplay/internal/input"
	"github.com/avcore/goplay/internal/logger"
	"github.com/avcore/goplay/internal/media"
	"github.com/avcore/goplay/internal/render"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.showVersion {
		fmt.Println(version)
		return
	}

	logger.Init()
	if err := logger.SetLevel(cfg.logLevel); err != nil {
		fmt.Printf("warning: invalid log level %q, using default\n", cfg.logLevel)
	}
	log := logger.Logger().With("component", "cli")

	fileCfg := config.Default()
	if cfg.configPath != "" {
		fileCfg, err = config.Load(cfg.configPath)
		if err != nil {
			log.Error("failed to load config", "path", cfg.configPath, "error", err)
			os.Exit(1)
		}
	}

	dispatcherCfg := events.DefaultDispatcherConfig()
	dispatcherCfg.StatusFormat = cfg.statusFmt
	dispatcher := events.NewDispatcher(dispatcherCfg, log)
	defer dispatcher.Close()

	if cfg.onEOFScript != "" {
		dispatcher.Register(events.TypeEOF, events.NewShellHook("on-eof", cfg.onEOFScript))
	}
	if cfg.onQuit != "" {
		dispatcher.Register(events.TypeQuit, events.NewShellHook("on-quit", cfg.onQuit))
	}

	opts := coordinator.Options{
		Overrides: coordinator.StreamOverrides{AudioCodec: cfg.audioCodec, VideoCodec: cfg.videoCodec},
		Loop:      cfg.loop,
		Realtime:  cfg.realtime,
		FrameDrop: cfg.frameDrop != "off",
		Volume:    cfg.volume,
		Muted:     cfg.mute,
	}

	surface := render.NewFramebufferSurface(640, 480)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vs, err := coordinator.Open(ctx, cfg.input, opts, portaudioFactory, surface, dispatcher, log)
	if err != nil {
		log.Error("failed to open input", "input", cfg.input, "error", err)
		os.Exit(1)
	}
	log.Info("playback started", "input", cfg.input, "version", version)

	keys, err := input.Open(fileCfg.ResolveKeyBindings(), log)
	if err != nil {
		log.Warn("raw terminal key input unavailable, continuing without it", "error", err)
	} else {
		defer keys.Close()
		stopKeys := make(chan struct{})
		defer close(stopKeys)
		go func() {
			if err := keys.Run(stopKeys, vs.Dispatch); err != nil {
				log.Debug("key reader exited", "error", err)
			}
		}()
	}

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		if err := vs.Close(); err != nil {
			log.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	select {
	case <-done:
		log.Info("stopped cleanly")
	case <-shutdownCtx.Done():
		log.Error("forced exit after timeout")
	}
}

func portaudioFactory(sampleRate, channels int, format media.SampleFormat) (render.AudioDevice, error) {
	return render.NewPortaudioDevice(sampleRate, channels, format)
}
