package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string { return "fake timeout" }
func (fakeTimeoutErr) Timeout() bool { return true }

func TestIsClassifiesByKind(t *testing.T) {
	root := stdErrors.New("root")
	wrapped := fmt.Errorf("adding context: %w", root)
	err := New(KindInput, "source.open", wrapped)

	if !Is(err, KindInput) {
		t.Fatalf("expected Is(err, KindInput) = true")
	}
	if Is(err, KindDecode) {
		t.Fatalf("expected Is(err, KindDecode) = false")
	}
	if !stdErrors.Is(err, root) {
		t.Fatalf("expected errors.Is to reach the wrapped root cause")
	}

	var pe *PlayerError
	if !stdErrors.As(err, &pe) {
		t.Fatalf("expected errors.As to *PlayerError")
	}
	if pe.Op != "source.open" {
		t.Fatalf("unexpected op: %s", pe.Op)
	}
}

func TestPlayerErrorString(t *testing.T) {
	withCause := New(KindDevice, "audio.start", stdErrors.New("no device"))
	if s := withCause.Error(); s == "" {
		t.Fatalf("expected non-empty error string")
	}

	bare := New(KindFormat, "wire.parse", nil)
	if s := bare.Error(); s == "" {
		t.Fatalf("expected non-empty error string for nil cause")
	}
}

func TestIsTimeout(t *testing.T) {
	to := NewTimeout("handshake.read", 5*time.Second, fakeTimeoutErr{})
	if !IsTimeout(to) {
		t.Fatalf("expected TimeoutError recognized")
	}
	if Is(to, KindInput) {
		t.Fatalf("timeout should not classify under any Kind")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded recognized as timeout")
	}
	var netLike error = fakeTimeoutErr{}
	if !IsTimeout(netLike) {
		t.Fatalf("expected a Timeout()-bool error recognized")
	}
	if IsTimeout(nil) {
		t.Fatalf("nil should not be a timeout")
	}
	if IsTimeout(stdErrors.New("plain")) {
		t.Fatalf("plain error should not be a timeout")
	}
}

func TestUnwrapChains(t *testing.T) {
	base := stdErrors.New("io EOF")
	l1 := fmt.Errorf("read: %w", base)
	l2 := New(KindResource, "reader.fill", l1)
	if !stdErrors.Is(l2, base) {
		t.Fatalf("errors.Is should reach base cause through PlayerError.Unwrap")
	}
}

func TestSentinels(t *testing.T) {
	wrapped := fmt.Errorf("queue: %w", ErrAborted)
	if !stdErrors.Is(wrapped, ErrAborted) {
		t.Fatalf("expected ErrAborted to be found via errors.Is")
	}
	if stdErrors.Is(wrapped, ErrEOF) {
		t.Fatalf("ErrAborted wrapper should not match ErrEOF")
	}
}

func TestIsNilSafety(t *testing.T) {
	if Is(nil, KindInput) {
		t.Fatalf("Is(nil, ...) should be false")
	}
}
