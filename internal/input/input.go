// Package input reads raw key presses from a terminal and turns them into
// coordinator.Command values via a configurable key-binding table (spec
// §6). Terminal handling follows doismellburning-samoyed's serial_port.go
// use of github.com/pkg/term (term.Open with term.RawMode, byte-at-a-time
// reads) — here applied to the controlling tty instead of a serial device.
// A real GUI build would feed the same Command channel from SDL/GLFW key
// events instead of this reader.
package input

import (
	"log/slog"

	"github.com/pkg/term"

	"github.com/avcore/goplay/internal/coordinator"
	"github.com/avcore/goplay/internal/errors"
)

// KeyReader reads raw bytes from a terminal and decodes them into key
// names, yielded to a Dispatch callback as coordinator.Command values.
type KeyReader struct {
	tty      *term.Term
	bindings map[string]coordinator.Command
	logger   *slog.Logger
}

// Open puts the controlling terminal into raw mode and returns a
// KeyReader bound to bindings (typically config.Config.ResolveKeyBindings).
func Open(bindings map[string]coordinator.Command, logger *slog.Logger) (*KeyReader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		return nil, errors.New(errors.KindResource, "input.open", err)
	}
	return &KeyReader{tty: t, bindings: bindings, logger: logger}, nil
}

func (k *KeyReader) Close() error {
	if k.tty == nil {
		return nil
	}
	return k.tty.Restore()
}

// Run blocks reading key presses and invoking dispatch for each one that
// maps to a bound command, until stop is closed or a read error occurs.
func (k *KeyReader) Run(stop <-chan struct{}, dispatch func(coordinator.Command)) error {
	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 8)
		for {
			n, err := k.tty.Read(buf)
			if err != nil {
				done <- errors.New(errors.KindResource, "input.read", err)
				return
			}
			if n == 0 {
				continue
			}
			name := decodeKey(buf[:n])
			if cmd, ok := k.bindings[name]; ok {
				dispatch(cmd)
			} else {
				k.logger.Debug("unbound key", "key", name)
			}
		}
	}()

	select {
	case <-stop:
		return nil
	case err := <-done:
		return err
	}
}

// decodeKey maps a raw byte sequence to the key names used by
// config.DefaultKeyBindings — printable ASCII passes through as itself;
// the handful of escape sequences used by arrow/page keys are recognized
// explicitly.
func decodeKey(b []byte) string {
	switch {
	case len(b) == 1 && b[0] == ' ':
		return "space"
	case len(b) == 1:
		return string(b[0])
	case len(b) == 3 && b[0] == 0x1b && b[1] == '[':
		switch b[2] {
		case 'D':
			return "left"
		case 'C':
			return "right"
		case 'A':
			return "up"
		case 'B':
			return "down"
		}
	case len(b) == 4 && b[0] == 0x1b && b[1] == '[':
		switch b[2] {
		case '5':
			return "page_up"
		case '6':
			return "page_down"
		}
	}
	return ""
}
