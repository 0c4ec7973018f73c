// Command fixture-server is a loopback TCP server that serves a
// pre-recorded wire-format fixture to any client connecting over the
// tcp:// protocol (spec §4.9): it performs the server side of the
// handshake, then streams the fixture file's bytes to the connection.
// Test suites and manual exercising of source.Container's tcp:// path use
// this instead of standing up a full demuxer/origin server.
package main

import (
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/spf13/pflag"

	"github.com/avcore/goplay/internal/logger"
	"github.com/avcore/goplay/internal/source"
)

func main() {
	var listenAddr, fixturePath string
	fs := pflag.NewFlagSet("fixture-server", pflag.ExitOnError)
	fs.StringVar(&listenAddr, "listen", "127.0.0.1:9935", "TCP listen address")
	fs.StringVar(&fixturePath, "fixture", "", "path to a wire-format fixture file to serve")
	fs.Parse(os.Args[1:])

	logger.Init()
	log := logger.Logger().With("component", "fixture-server")

	if fixturePath == "" {
		log.Error("--fixture is required")
		os.Exit(2)
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		log.Error("listen failed", "addr", listenAddr, "error", err)
		os.Exit(1)
	}
	log.Info("serving fixture", "addr", ln.Addr().String(), "fixture", fixturePath)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Error("accept failed", "error", err)
			return
		}
		go serve(conn, fixturePath, log)
	}
}

func serve(raw net.Conn, fixturePath string, log *slog.Logger) {
	defer raw.Close()

	conn, window, err := source.AcceptConn(raw)
	if err != nil {
		log.Warn("handshake failed", "remote", raw.RemoteAddr(), "error", err)
		return
	}
	log.Info("client connected", "remote", raw.RemoteAddr(), "window", window)

	f, err := os.Open(fixturePath)
	if err != nil {
		log.Error("failed to open fixture", "path", fixturePath, "error", err)
		return
	}
	defer f.Close()

	if _, err := io.Copy(conn, f); err != nil {
		log.Debug("client disconnected mid-stream", "remote", raw.RemoteAddr(), "error", err)
	}
}
