// Package focus manages time-boxed focus sessions with optional soft
// app blocking.
package focus

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/config"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/notify"
)

// Rejected-operation conditions. Neither has side effects.
var (
	ErrSessionActive = errors.New("a focus session is already active")
	ErrNoSession     = errors.New("no active focus session")
)

// Milestone thresholds for one-shot "time remaining" notifications.
const (
	milestoneFiveMin = 300
	milestoneOneMin  = 60
)

// DurationPresets maps preset names to session lengths in minutes.
var DurationPresets = map[string]int{
	"pomodoro":  25,
	"short":     15,
	"medium":    45,
	"long":      60,
	"deep_work": 90,
}

// BlockPresets maps preset names to commonly distracting apps.
var BlockPresets = map[string][]string{
	"social":   {"discord", "slack", "telegram", "signal"},
	"video":    {"youtube", "netflix", "vlc", "mpv", "totem"},
	"browsing": {"firefox", "chromium", "chrome", "brave"},
	"games":    {"steam", "lutris", "retroarch"},
	"all":      {"discord", "slack", "telegram", "youtube", "firefox", "chromium", "steam"},
}

// Store is the slice of the store the manager needs.
type Store interface {
	OpenFocusSession(durationMinutes int, blockedApps []string) (uint, error)
	CloseFocusSession(id uint, completed bool) error
}

// Options configures a new focus session. Preset values feed the
// explicit ones: a duration preset overrides DurationMinutes, and a
// block preset is unioned with BlockedApps.
type Options struct {
	DurationMinutes int
	BlockedApps     []string
	DurationPreset  string
	BlockPreset     string
}

// Info is a point-in-time view of a session for callbacks and queries.
type Info struct {
	ID               uint     `json:"id"`
	StartTime        string   `json:"start_time"`
	PlannedSeconds   int64    `json:"planned_seconds"`
	ElapsedSeconds   int64    `json:"elapsed_seconds"`
	RemainingSeconds int64    `json:"remaining_seconds"`
	ProgressPercent  float64  `json:"progress_percent"`
	BlockedApps      []string `json:"blocked_apps"`
}

// FormattedRemaining renders the remaining time as MM:SS.
func (i Info) FormattedRemaining() string {
	remaining := i.RemainingSeconds
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%02d:%02d", remaining/60, remaining%60)
}

// session is the manager's private state for one active session.
type session struct {
	id             uint
	startTime      time.Time
	plannedSeconds int64
	blockedApps    []string
	notifiedFive   bool
	notifiedOne    bool
}

// Manager is the focus-session state machine: Idle or Active, with a
// 1-second tick loop while Active. The session row in the store is
// mutated only by this manager.
type Manager struct {
	config   *config.Config
	store    Store
	notifier notify.Sender
	blocker  *Blocker

	onTick        func(Info)
	onComplete    func(Info)
	onInterrupted func(Info)

	mu              sync.Mutex
	current         *session
	defaultDuration time.Duration
	stopChan        chan struct{}
	done            chan struct{}
	now             func() time.Time
}

// NewManager creates a focus-session manager.
func NewManager(cfg *config.Config, store Store, notifier notify.Sender) *Manager {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Manager{
		config:          cfg,
		store:           store,
		notifier:        notifier,
		blocker:         NewBlocker(cfg.Focus.BlockerInterval, notifier),
		defaultDuration: cfg.Focus.DefaultDuration,
		now:             time.Now,
	}
}

// SetDefaultDuration updates the fallback session length used when a
// start request names neither a duration nor a preset. The daemon feeds
// the persisted setting through here on reload.
func (m *Manager) SetDefaultDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.defaultDuration = d
	m.mu.Unlock()
}

// Blocker exposes the enforcement loop for explicit operations (kill,
// blocked-app callback registration).
func (m *Manager) Blocker() *Blocker {
	return m.blocker
}

// KillBlocked terminates processes matching the current blocklist.
// Fails with ErrNoSession when nothing is active.
func (m *Manager) KillBlocked() ([]string, error) {
	if !m.Active() {
		return nil, ErrNoSession
	}
	return m.blocker.KillBlocked(), nil
}

// SetOnTick sets the per-second progress callback.
func (m *Manager) SetOnTick(fn func(Info)) { m.onTick = fn }

// SetOnComplete sets the natural-completion callback.
func (m *Manager) SetOnComplete(fn func(Info)) { m.onComplete = fn }

// SetOnInterrupted sets the early-stop callback.
func (m *Manager) SetOnInterrupted(fn func(Info)) { m.onInterrupted = fn }

// resolveOptions applies preset tables to the explicit options.
func resolveOptions(opts Options, defaultMinutes int) (int, []string, error) {
	minutes := opts.DurationMinutes

	if opts.DurationPreset != "" {
		preset, ok := DurationPresets[opts.DurationPreset]
		if !ok {
			return 0, nil, fmt.Errorf("unknown duration preset %q", opts.DurationPreset)
		}
		minutes = preset
	}

	if minutes <= 0 {
		minutes = defaultMinutes
	}

	apps := make(map[string]bool)
	for _, app := range opts.BlockedApps {
		if app = strings.ToLower(strings.TrimSpace(app)); app != "" {
			apps[app] = true
		}
	}

	if opts.BlockPreset != "" {
		preset, ok := BlockPresets[opts.BlockPreset]
		if !ok {
			return 0, nil, fmt.Errorf("unknown block preset %q", opts.BlockPreset)
		}
		for _, app := range preset {
			apps[app] = true
		}
	}

	blocked := make([]string, 0, len(apps))
	for app := range apps {
		blocked = append(blocked, app)
	}
	sort.Strings(blocked)

	return minutes, blocked, nil
}

// Start begins a new focus session. It fails with ErrSessionActive if
// one is already running; preset resolution failures reject the start
// with no side effects.
func (m *Manager) Start(opts Options) (*Info, error) {
	m.mu.Lock()
	defaultMinutes := int(m.defaultDuration.Minutes())
	m.mu.Unlock()

	minutes, blocked, err := resolveOptions(opts, defaultMinutes)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.current != nil {
		m.mu.Unlock()
		return nil, ErrSessionActive
	}

	id, err := m.store.OpenFocusSession(minutes, blocked)
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to persist focus session: %w", err)
	}

	plannedSeconds := int64(minutes) * 60
	m.current = &session{
		id:             id,
		startTime:      m.now(),
		plannedSeconds: plannedSeconds,
		blockedApps:    blocked,
		// A session that begins at or below a threshold never crossed
		// it, so its milestone starts disarmed.
		notifiedFive: plannedSeconds <= milestoneFiveMin,
		notifiedOne:  plannedSeconds <= milestoneOneMin,
	}
	m.stopChan = make(chan struct{})
	m.done = make(chan struct{})
	info := m.infoLocked()
	m.mu.Unlock()

	if len(blocked) > 0 {
		m.blocker.Start(blocked)
	}

	go m.tickLoop(m.stopChan, m.done)

	m.notifier.Send(
		"Focus Session Started",
		fmt.Sprintf("Stay focused for %d minutes!", minutes),
		notify.UrgencyNormal,
	)
	log.Printf("Started focus session: %dm, blocking: %v", minutes, blocked)

	return info, nil
}

// Stop ends the current session. completed records whether the session
// ran its full course; callers stopping early pass false. Returns
// ErrNoSession with no side effects when nothing is active.
func (m *Manager) Stop(completed bool) error {
	info, ok := m.finish(completed)
	if !ok {
		return ErrNoSession
	}

	m.joinLoop()

	if completed {
		if m.onComplete != nil {
			m.onComplete(info)
		}
		m.notifier.Send(
			"Focus Session Complete!",
			fmt.Sprintf("Great job! You stayed focused for %d minutes.", info.PlannedSeconds/60),
			notify.UrgencyNormal,
		)
	} else {
		if m.onInterrupted != nil {
			m.onInterrupted(info)
		}
		m.notifier.Send(
			"Focus Session Ended",
			fmt.Sprintf("Session interrupted after %d minutes.", info.ElapsedSeconds/60),
			notify.UrgencyNormal,
		)
	}

	log.Printf("Ended focus session: completed=%v", completed)
	return nil
}

// finish transitions Active -> Idle: stops the blocker and closes the
// store row. Returns the final session view and whether there was a
// session to finish.
func (m *Manager) finish(completed bool) (Info, bool) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return Info{}, false
	}
	info := *m.infoLocked()
	id := m.current.id
	m.current = nil
	m.mu.Unlock()

	m.blocker.Stop()

	if err := m.store.CloseFocusSession(id, completed); err != nil {
		log.Printf("Failed to close focus session %d: %v", id, err)
	}

	return info, true
}

// joinLoop signals the tick loop and waits for it, bounded. Safe when
// the loop has already exited.
func (m *Manager) joinLoop() {
	m.mu.Lock()
	stop, done := m.stopChan, m.done
	m.mu.Unlock()
	if stop == nil {
		return
	}

	select {
	case <-stop:
	default:
		close(stop)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("Timed out waiting for focus tick loop to exit")
	}
}

// Extend adds minutes to the running session, effective on the next
// tick. A milestone re-arms when the extension lifts the countdown back
// above its threshold; otherwise fired milestones stay fired.
func (m *Manager) Extend(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("extension must be positive, got %d minutes", minutes)
	}

	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return ErrNoSession
	}
	s := m.current
	s.plannedSeconds += int64(minutes) * 60
	remaining := s.plannedSeconds - int64(m.now().Sub(s.startTime).Seconds())
	if remaining > milestoneFiveMin {
		s.notifiedFive = false
	}
	if remaining > milestoneOneMin {
		s.notifiedOne = false
	}
	m.mu.Unlock()

	m.notifier.Send(
		"Session Extended",
		fmt.Sprintf("Added %d more minutes to your focus session.", minutes),
		notify.UrgencyNormal,
	)
	return nil
}

// Active reports whether a session is running.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Info returns a view of the running session, or nil when Idle.
func (m *Manager) Info() *Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	return m.infoLocked()
}

// infoLocked builds an Info snapshot. Callers hold m.mu.
func (m *Manager) infoLocked() *Info {
	s := m.current
	elapsed := int64(m.now().Sub(s.startTime).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := s.plannedSeconds - elapsed
	if remaining < 0 {
		remaining = 0
	}

	progress := 100.0
	if s.plannedSeconds > 0 {
		progress = float64(elapsed) / float64(s.plannedSeconds) * 100
		if progress > 100 {
			progress = 100
		}
	}

	apps := make([]string, len(s.blockedApps))
	copy(apps, s.blockedApps)

	return &Info{
		ID:               s.id,
		StartTime:        s.startTime.Format(time.RFC3339),
		PlannedSeconds:   s.plannedSeconds,
		ElapsedSeconds:   elapsed,
		RemainingSeconds: remaining,
		ProgressPercent:  progress,
		BlockedApps:      apps,
	}
}

func (m *Manager) tickLoop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if m.tick(m.now()) {
				// Completion closes out the session from inside the
				// loop; Stop would deadlock waiting on it.
				info, ok := m.finish(true)
				if ok {
					if m.onComplete != nil {
						m.onComplete(info)
					}
					m.notifier.Send(
						"Focus Session Complete!",
						fmt.Sprintf("Great job! You stayed focused for %d minutes.", info.PlannedSeconds/60),
						notify.UrgencyNormal,
					)
					log.Println("Focus session completed")
				}
				return
			}
		}
	}
}

// tick evaluates one second of the session. Returns true when the
// planned duration has elapsed. Milestones fire on the downward
// crossing, once per arming; an exact equality test could miss a value
// under scheduler jitter.
func (m *Manager) tick(now time.Time) bool {
	m.mu.Lock()
	s := m.current
	if s == nil {
		m.mu.Unlock()
		return false
	}

	elapsed := int64(now.Sub(s.startTime).Seconds())
	remaining := s.plannedSeconds - elapsed

	var milestone string
	switch {
	case !s.notifiedFive && remaining <= milestoneFiveMin && remaining > milestoneOneMin:
		s.notifiedFive = true
		milestone = "5 Minutes Remaining"
	case !s.notifiedOne && remaining <= milestoneOneMin && remaining > 0:
		s.notifiedOne = true
		milestone = "1 Minute Remaining"
	}

	info := *m.infoLocked()
	m.mu.Unlock()

	if m.onTick != nil {
		m.onTick(info)
	}

	if milestone != "" {
		m.notifier.Send(milestone, "Almost there, keep going!", notify.UrgencyNormal)
	}

	return remaining <= 0
}

// Shutdown stops the loops without closing the store row, so a crash or
// daemon restart recovers the session through the stale sweep.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	active := m.current != nil
	m.current = nil
	m.mu.Unlock()

	if !active {
		return
	}

	m.blocker.Stop()
	m.joinLoop()
	log.Println("Focus manager shut down with session left open for recovery")
}
