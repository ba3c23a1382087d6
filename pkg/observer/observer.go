// Package observer assembles the window-detection backends into a single
// fallback chain chosen from the session type at startup.
package observer

import (
	"fmt"
	"log"
	"os"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/integrations/exttool"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/integrations/process"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/integrations/wayland"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/integrations/x11"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/window"
)

// DetectDisplayServer reports the session's display-server type.
func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}

// New builds the observer chain for the current session. The chain is
// never nil: even with no usable backend it returns a Chain whose polls
// simply fail, which the tracker treats as degraded-but-alive.
func New() *Chain {
	var backends []window.Observer

	switch DetectDisplayServer() {
	case "wayland":
		backends = append(backends, wayland.New())
	case "x11":
		backends = append(backends, x11.New())
	default:
		// No display hints at all; heuristics only.
	}

	backends = append(backends, process.New(), exttool.New())

	chain := NewChain(backends...)
	log.Printf("Window observer chain: %v", chain.Backends())
	return chain
}

// Chain walks an ordered list of backends on every call, degrading to
// the next on any failure. Order is fixed at construction; availability
// is re-checked per call so a backend that starts answering later is
// picked up automatically.
type Chain struct {
	backends []window.Observer
	lastUsed string
}

// NewChain creates a chain over the given backends in priority order.
func NewChain(backends ...window.Observer) *Chain {
	return &Chain{backends: backends}
}

// ActiveWindow tries each backend in order and returns the first answer.
func (c *Chain) ActiveWindow() (*window.Snapshot, error) {
	var firstErr error

	for _, b := range c.backends {
		if !b.IsAvailable() {
			continue
		}
		snap, err := b.ActiveWindow()
		if err == nil && snap != nil && snap.AppName != "" {
			c.lastUsed = b.Backend()
			return snap, nil
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		firstErr = fmt.Errorf("no window observation backend available")
	}
	return nil, firstErr
}

// IsAvailable reports whether any backend can currently answer.
func (c *Chain) IsAvailable() bool {
	for _, b := range c.backends {
		if b.IsAvailable() {
			return true
		}
	}
	return false
}

// Backend returns the backend that served the last successful query.
func (c *Chain) Backend() string {
	if c.lastUsed != "" {
		return c.lastUsed
	}
	return "none"
}

// Backends lists the chain's backend identifiers in priority order.
func (c *Chain) Backends() []string {
	names := make([]string, 0, len(c.backends))
	for _, b := range c.backends {
		names = append(names, b.Backend())
	}
	return names
}

// Close closes every backend, keeping the first error.
func (c *Chain) Close() error {
	var firstErr error
	for _, b := range c.backends {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
