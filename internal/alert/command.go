package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// CommandSink hands each event to an external notifier command as JSON on
// stdin. The command owns the actual notification (toast, sound, webhook);
// this process only invokes it and enforces a deadline.
type CommandSink struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// Deliver runs the notifier once for the event. It creates a context with
// the configured timeout, marshals the event to JSON and sends it to the
// command via stdin. Stdout is ignored; stderr is captured for the error.
func (s *CommandSink) Deliver(ev Event) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Stdin = bytes.NewReader(payload)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("notifier timeout after %s", timeout)
	}
	if err != nil {
		if stderrStr := stderr.String(); stderrStr != "" {
			return fmt.Errorf("notifier failed: %w, stderr: %s", err, stderrStr)
		}
		return fmt.Errorf("notifier failed: %w", err)
	}

	return nil
}
