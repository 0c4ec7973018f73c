package events

import "context"

// Hook runs in response to a dispatched Event.
type Hook interface {
	Execute(ctx context.Context, event Event) error
	Type() string
	ID() string
}

// DispatcherConfig tunes hook execution.
type DispatcherConfig struct {
	Timeout     string // default: "5s"
	Concurrency int    // default: 4
	StatusFormat string // "json", "text", or ""
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{Timeout: "5s", Concurrency: 4}
}
