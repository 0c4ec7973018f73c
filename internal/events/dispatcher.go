package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher registers hooks per Type and fires them concurrently off the
// caller's goroutine, the way the teacher's HookManager runs connection
// hooks without blocking the RTMP conn loop — here, without blocking the
// coordinator/reader loops.
type Dispatcher struct {
	mu         sync.RWMutex
	hooks      map[Type][]Hook
	statusHook *StatusHook
	logger     *slog.Logger
	config     DispatcherConfig
	pool       chan struct{}
}

func NewDispatcher(config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	d := &Dispatcher{
		hooks:  make(map[Type][]Hook),
		logger: logger,
		config: config,
		pool:   make(chan struct{}, config.Concurrency),
	}
	if config.StatusFormat != "" {
		d.EnableStatusOutput(config.StatusFormat)
	}
	return d
}

func (d *Dispatcher) Register(typ Type, hook Hook) {
	if hook == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks[typ] = append(d.hooks[typ], hook)
}

func (d *Dispatcher) Unregister(typ Type, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	hooks := d.hooks[typ]
	for i, h := range hooks {
		if h.ID() == id {
			d.hooks[typ] = append(hooks[:i], hooks[i+1:]...)
			return true
		}
	}
	return false
}

// EnableStatusOutput turns on the stdio status writer, which prints one
// line per triggered event (text or json).
func (d *Dispatcher) EnableStatusOutput(format string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statusHook = NewStatusHook(format)
}

// Trigger fires every hook registered for event.Type, plus the status
// hook if enabled, each in its own goroutine bounded by the dispatcher's
// concurrency pool.
func (d *Dispatcher) Trigger(ctx context.Context, event Event) {
	d.mu.RLock()
	hooks := make([]Hook, len(d.hooks[event.Type]))
	copy(hooks, d.hooks[event.Type])
	status := d.statusHook
	d.mu.RUnlock()

	if status != nil {
		hooks = append(hooks, status)
	}
	if len(hooks) == 0 {
		return
	}

	for _, h := range hooks {
		d.run(ctx, h, event)
	}
}

func (d *Dispatcher) run(ctx context.Context, hook Hook, event Event) {
	timeout, err := time.ParseDuration(d.config.Timeout)
	if err != nil {
		timeout = 5 * time.Second
	}
	go func() {
		d.pool <- struct{}{}
		defer func() { <-d.pool }()

		hctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := hook.Execute(hctx, event); err != nil {
			d.logger.Error("event hook failed", "hook_type", hook.Type(), "hook_id", hook.ID(), "event", event.String(), "error", err)
		}
	}()
}

// Close waits for in-flight hook executions to drain.
func (d *Dispatcher) Close() {
	for i := 0; i < cap(d.pool); i++ {
		d.pool <- struct{}{}
	}
	for i := 0; i < cap(d.pool); i++ {
		<-d.pool
	}
}
