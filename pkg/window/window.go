package window

import "time"

// Snapshot describes the window holding user focus at one observation.
// Snapshots are produced fresh on every poll and never mutated.
type Snapshot struct {
	AppName     string
	WindowTitle string
	WindowClass string
	PID         int
	ObservedAt  time.Time
}

// Same reports whether two snapshots refer to the same focus target.
// Focus identity is the (app name, window title) pair; class and PID are
// informational only.
func (s *Snapshot) Same(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.AppName == other.AppName && s.WindowTitle == other.WindowTitle
}

// Observer is the contract every window-detection backend must satisfy.
type Observer interface {
	// ActiveWindow returns the currently focused window, or an error when
	// this backend cannot answer. Backends never retry internally; the
	// caller's poll cadence is the retry mechanism.
	ActiveWindow() (*Snapshot, error)

	// IsAvailable checks if this backend can run on the current system.
	IsAvailable() bool

	// Backend returns a short identifier ("x11", "wayland", "process", ...).
	Backend() string

	// Close cleans up any resources used by the backend.
	Close() error
}

// IdleMonitor reports how long the user has been inactive.
type IdleMonitor interface {
	// IdleSeconds returns the idle time in seconds. Implementations fail
	// open: when no mechanism answers they return 0, never an error.
	IdleSeconds() int64
}
