// Package source resolves a player's <input> argument into an opened
// container stream (spec §4.9): a local file, an HTTP(S) URL, an S3
// object, or our own tcp:// wire protocol, behind one Container interface.
package source

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/avcore/goplay/internal/errors"
)

// Container is what internal/container's demuxer reads from. Seek support
// varies by scheme; Realtime reports whether the reader loop should treat
// this source as live (pacing reads to wall time rather than draining as
// fast as the queues allow).
type Container interface {
	io.ReadCloser
	io.Seeker
	// Seekable reports whether Seek is meaningful for this source; callers
	// should not attempt byte seeks on a false return even though Seek
	// itself will just return an error in that case.
	Seekable() bool
	// Realtime reports whether this source should be paced to wall clock
	// (spec §4.5's external-clock speed control applies).
	Realtime() bool
}

// Open resolves rawURL's scheme and opens the corresponding Container.
// realtimeOverride forces Realtime() to true regardless of scheme
// heuristics, matching the CLI's --realtime flag.
func Open(ctx context.Context, rawURL string, realtimeOverride bool) (Container, error) {
	scheme, rest := splitScheme(rawURL)
	var (
		c   Container
		err error
	)
	switch scheme {
	case "", "file":
		c, err = openFile(rest)
	case "http", "https":
		c, err = openHTTP(ctx, rawURL)
	case "s3":
		c, err = openS3(ctx, rest)
	case "tcp":
		c, err = openTCP(ctx, rest)
	default:
		return nil, errors.New(errors.KindInput, "source.open", unsupportedScheme(scheme))
	}
	if err != nil {
		return nil, err
	}
	if realtimeOverride {
		return forceRealtime{c}, nil
	}
	return c, nil
}

func splitScheme(rawURL string) (scheme, rest string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return "", rawURL
	}
	switch u.Scheme {
	case "file":
		return "file", u.Path
	case "tcp":
		return "tcp", u.Host
	case "s3":
		return "s3", strings.TrimPrefix(rawURL, "s3://")
	default:
		return u.Scheme, rawURL
	}
}

type unsupportedScheme string

func (s unsupportedScheme) Error() string { return "source: unsupported scheme " + string(s) }

// forceRealtime wraps a Container to report Realtime()==true regardless of
// the underlying source's own heuristic.
type forceRealtime struct{ Container }

func (forceRealtime) Realtime() bool { return true }
