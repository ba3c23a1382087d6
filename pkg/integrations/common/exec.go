package common

import (
	"context"
	"os/exec"
	"time"
)

// DefaultTimeout bounds every external OS query so a hung tool cannot
// stall a poll loop.
const DefaultTimeout = 2 * time.Second

// Run executes a command with a bounded timeout and returns its stdout.
func Run(timeout time.Duration, name string, args ...string) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return exec.CommandContext(ctx, name, args...).Output()
}

// CommandExists checks if a command is available in PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ProcessRunning reports whether a process with the exact given name is
// running, using pgrep.
func ProcessRunning(name string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	return exec.CommandContext(ctx, "pgrep", "-x", name).Run() == nil
}
