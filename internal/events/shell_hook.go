package events

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ShellHook runs a script on an event (spec §6's --on-eof/--on-quit),
// passing event fields as environment variables — adapted from the
// teacher's ShellHook.
type ShellHook struct {
	id      string
	command string
	args    []string
}

func NewShellHook(id, scriptPath string) *ShellHook {
	return &ShellHook{id: id, command: "/bin/sh", args: []string{scriptPath}}
}

func (h *ShellHook) Execute(ctx context.Context, event Event) error {
	cmd := exec.CommandContext(ctx, h.command, h.args...)
	cmd.Env = append(cmd.Env, buildEnv(event)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("shell hook %s: %w", h.id, err)
	}
	return nil
}

func (h *ShellHook) Type() string { return "shell" }
func (h *ShellHook) ID() string   { return h.id }

func buildEnv(event Event) []string {
	env := []string{
		"GOPLAY_EVENT_TYPE=" + string(event.Type),
		fmt.Sprintf("GOPLAY_TIMESTAMP=%d", event.Timestamp),
	}
	if event.StreamKey != "" {
		env = append(env, "GOPLAY_STREAM_KEY="+event.StreamKey)
	}
	for k, v := range event.Data {
		env = append(env, fmt.Sprintf("GOPLAY_%s=%v", envKey(k), v))
	}
	return env
}

func envKey(k string) string { return strings.ToUpper(k) }
