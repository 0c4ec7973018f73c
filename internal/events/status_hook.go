package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// StatusHook writes one line to stdout for every event it receives: the
// event's String() form, or the event encoded as JSON when the format is
// "json" — adapted from the teacher's StdioHook.
type StatusHook struct {
	format string // "json" or "text"
	output io.Writer
}

func NewStatusHook(format string) *StatusHook {
	return &StatusHook{format: format, output: os.Stdout}
}

func (h *StatusHook) SetOutput(w io.Writer) { h.output = w }

func (h *StatusHook) Execute(ctx context.Context, event Event) error {
	switch h.format {
	case "json":
		enc := json.NewEncoder(h.output)
		return enc.Encode(event)
	default:
		_, err := fmt.Fprintf(h.output, "%s\n", event.String())
		return err
	}
}

func (h *StatusHook) Type() string { return "status" }
func (h *StatusHook) ID() string   { return "status" }
