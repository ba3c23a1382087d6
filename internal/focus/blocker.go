package focus

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/notify"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/integrations/common"
)

// Blocker soft-enforces a blocklist while a focus session runs. It
// detects and notifies; it does not kill anything unless KillBlocked is
// invoked explicitly. Hard blocking would need root privileges and is
// out of scope.
type Blocker struct {
	interval  time.Duration
	notifier  notify.Sender
	onBlocked func(string)
	procRoot  string
	selfPID   int

	mu       sync.Mutex
	apps     []string
	running  bool
	stopChan chan struct{}
	done     chan struct{}
}

// NewBlocker creates a blocker that scans on the given interval.
func NewBlocker(interval time.Duration, notifier notify.Sender) *Blocker {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Blocker{
		interval: interval,
		notifier: notifier,
		procRoot: "/proc",
		selfPID:  os.Getpid(),
	}
}

// SetOnBlocked sets the callback fired for every detected blocked app.
func (b *Blocker) SetOnBlocked(fn func(string)) {
	b.onBlocked = fn
}

// Start begins the enforcement loop for the given apps. Matching is a
// lowercase substring test against process names.
func (b *Blocker) Start(apps []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return
	}

	b.apps = make([]string, 0, len(apps))
	for _, app := range apps {
		if app = strings.ToLower(strings.TrimSpace(app)); app != "" {
			b.apps = append(b.apps, app)
		}
	}
	if len(b.apps) == 0 {
		return
	}

	b.running = true
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.loop(b.stopChan, b.done)

	log.Printf("Started blocking apps: %v", b.apps)
}

// Stop ends the enforcement loop and waits for it to exit.
func (b *Blocker) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	stop, done := b.stopChan, b.done
	b.apps = nil
	b.mu.Unlock()

	close(stop)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("Timed out waiting for blocker loop to exit")
	}

	log.Println("Stopped app blocking")
}

// IsRunning reports whether the enforcement loop is active.
func (b *Blocker) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *Blocker) loop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.sweep()
		}
	}
}

// sweep runs one enforcement cycle. Every failure in here logs and
// moves on; a bad cycle never stops the loop.
func (b *Blocker) sweep() {
	matches, err := b.scanBlocked()
	if err != nil {
		log.Printf("Error checking processes: %v", err)
		return
	}

	for _, name := range matches {
		if b.onBlocked != nil {
			b.onBlocked(name)
		}
		b.notifier.Send(
			"Focus Mode Active",
			fmt.Sprintf("%q is blocked during your focus session.\nStay focused!", name),
			notify.UrgencyCritical,
		)
	}
}

// scanBlocked enumerates running processes and returns the names that
// match the blocklist, deduplicated.
func (b *Blocker) scanBlocked() ([]string, error) {
	b.mu.Lock()
	apps := b.apps
	b.mu.Unlock()
	if len(apps) == 0 {
		return nil, nil
	}

	entries, err := os.ReadDir(b.procRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.procRoot, err)
	}

	seen := make(map[string]bool)
	var matches []string

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid == b.selfPID {
			continue
		}

		comm, err := os.ReadFile(filepath.Join(b.procRoot, entry.Name(), "comm"))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(comm))
		lower := strings.ToLower(name)

		for _, blocked := range apps {
			if strings.Contains(lower, blocked) {
				if !seen[name] {
					seen[name] = true
					matches = append(matches, name)
				}
				break
			}
		}
	}

	return matches, nil
}

// KillBlocked forcefully closes all blocked apps and returns the list
// of blocklist entries that matched a live process.
func (b *Blocker) KillBlocked() []string {
	b.mu.Lock()
	apps := make([]string, len(b.apps))
	copy(apps, b.apps)
	b.mu.Unlock()

	var killed []string
	for _, app := range apps {
		if _, err := common.Run(5*time.Second, "pkill", "-f", app); err == nil {
			killed = append(killed, app)
		}
	}
	return killed
}
