package tracker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/config"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/models"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/window"
)

// Recorder is the slice of the store the tracker needs.
type Recorder interface {
	OpenAppSession(appName, windowTitle string) (uint, error)
	CloseAppSession(id uint) error
	CloseAppSessionAt(id uint, end time.Time) error
}

// ErrorStore persists poll failures. Optional.
type ErrorStore interface {
	CreateErrorLog(errorLog *models.ErrorLog) error
}

// Service drives the session state machine from a fixed-interval poll
// loop. Exactly one app session is open at a time; the service owns it
// until it is closed, at which point ownership transfers to the store.
type Service struct {
	config   *config.Config
	recorder Recorder
	observer window.Observer
	idle     window.IdleMonitor
	errors   ErrorStore

	onWindowChange func(window.Snapshot)
	onIdleChange   func(bool)

	mu            sync.Mutex
	current       *window.Snapshot
	sessionID     uint
	idleState     bool
	lastPoll      time.Time
	idleThreshold time.Duration
	running       bool
	lastErrMsg    string
	lastErrAt     time.Time

	stopChan chan struct{}
	stopped  chan struct{}
	now      func() time.Time
}

// NewService creates a tracker. The error store may be nil.
func NewService(cfg *config.Config, recorder Recorder, observer window.Observer, idle window.IdleMonitor, errors ErrorStore) *Service {
	return &Service{
		config:        cfg,
		recorder:      recorder,
		observer:      observer,
		idle:          idle,
		errors:        errors,
		idleThreshold: cfg.Tracker.IdleThreshold,
		now:           time.Now,
	}
}

// SetOnWindowChange sets the focus-change callback. Must be called
// before Start.
func (s *Service) SetOnWindowChange(fn func(window.Snapshot)) {
	s.onWindowChange = fn
}

// SetOnIdleChange sets the idle-transition callback. Fired at most once
// per transition. Must be called before Start.
func (s *Service) SetOnIdleChange(fn func(bool)) {
	s.onIdleChange = fn
}

// SetIdleThreshold updates the idle threshold (settings reload).
func (s *Service) SetIdleThreshold(threshold time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if threshold > 0 {
		s.idleThreshold = threshold
	}
}

// Start runs the poll loop until the context is canceled or Stop is
// called. It blocks; run it in its own goroutine. Any open session is
// closed synchronously before Start returns.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("tracker is already running")
	}
	s.running = true
	// Fresh channels per run, so a stopped service can be started again.
	s.stopChan = make(chan struct{})
	s.stopped = make(chan struct{})
	stopChan, stopped := s.stopChan, s.stopped
	s.mu.Unlock()

	log.Printf("Starting tracker with %v poll interval", s.config.Tracker.PollInterval)

	defer func() {
		s.closeCurrentSession()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(stopped)
	}()

	ticker := time.NewTicker(s.config.Tracker.PollInterval)
	defer ticker.Stop()

	if err := s.pollOnce(s.now()); err != nil {
		s.storeError(err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Tracker stopped by context")
			return ctx.Err()

		case <-stopChan:
			log.Println("Tracker stopped")
			return nil

		case <-ticker.C:
			if err := s.pollOnce(s.now()); err != nil {
				s.storeError(err)
			}
		}
	}
}

// Stop signals the loop to exit and waits for it with a bounded timeout.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stopChan, stopped := s.stopChan, s.stopped
	s.mu.Unlock()

	select {
	case <-stopChan:
		// Already signaled.
	default:
		close(stopChan)
	}

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		log.Println("Timed out waiting for tracker loop to exit")
	}
}

// IsRunning reports whether the poll loop is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// CurrentWindow returns the last observed focus target, or nil.
func (s *Service) CurrentWindow() *window.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	snap := *s.current
	return &snap
}

// IsIdle reports the current idle state.
func (s *Service) IsIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idleState
}

// pollOnce evaluates one tick of the state machine: suspend-gap check,
// idle transition, then focus-change detection. A poll with nothing
// changed performs no store writes.
func (s *Service) pollOnce(now time.Time) error {
	// A large gap between polls means the system slept; the gap must
	// not be charged to the open session.
	s.mu.Lock()
	lastPoll := s.lastPoll
	s.lastPoll = now
	suspendThreshold := s.config.Tracker.SuspendThreshold
	idleThreshold := s.idleThreshold
	s.mu.Unlock()

	if !lastPoll.IsZero() && now.Sub(lastPoll) > suspendThreshold {
		// Close at the last pre-gap poll so the sleep itself is not
		// charged to the session.
		log.Printf("Detected suspend/sleep (gap: %v), closing current session", now.Sub(lastPoll).Round(time.Second))
		s.closeCurrentSessionAt(lastPoll)
	}

	idleSeconds := s.idle.IdleSeconds()
	isIdle := time.Duration(idleSeconds)*time.Second >= idleThreshold

	s.mu.Lock()
	wasIdle := s.idleState
	s.idleState = isIdle
	s.mu.Unlock()

	if isIdle != wasIdle {
		if isIdle {
			s.closeCurrentSession()
		}
		// Leaving idle does not reopen the prior window; the
		// observation below decides what is focused now.
		if s.onIdleChange != nil {
			s.onIdleChange(isIdle)
		}
	}

	if isIdle {
		return nil
	}

	snap, err := s.observer.ActiveWindow()
	if err != nil {
		// No data this tick; keep the current session open.
		return fmt.Errorf("failed to get focused window: %w", err)
	}
	if snap == nil || snap.AppName == "" {
		return nil
	}

	s.mu.Lock()
	changed := !snap.Same(s.current)
	s.mu.Unlock()

	if !changed {
		return nil
	}

	s.closeCurrentSession()

	id, err := s.recorder.OpenAppSession(snap.AppName, snap.WindowTitle)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	s.mu.Lock()
	s.current = snap
	s.sessionID = id
	s.mu.Unlock()

	if s.onWindowChange != nil {
		s.onWindowChange(*snap)
	}

	return nil
}

// closeCurrentSession closes the open session, if any. Safe to call
// repeatedly; the id guard makes double closes no-ops.
func (s *Service) closeCurrentSession() {
	s.mu.Lock()
	id := s.sessionID
	s.sessionID = 0
	s.current = nil
	s.mu.Unlock()

	if id == 0 {
		return
	}

	if err := s.recorder.CloseAppSession(id); err != nil {
		s.storeError(fmt.Errorf("failed to close session %d: %w", id, err))
	}
}

// closeCurrentSessionAt closes the open session at an explicit end time.
func (s *Service) closeCurrentSessionAt(end time.Time) {
	s.mu.Lock()
	id := s.sessionID
	s.sessionID = 0
	s.current = nil
	s.mu.Unlock()

	if id == 0 {
		return
	}

	if err := s.recorder.CloseAppSessionAt(id, end); err != nil {
		s.storeError(fmt.Errorf("failed to close session %d: %w", id, err))
	}
}

// errorLogRepeatWindow suppresses duplicate rows when the same failure
// repeats every poll, as a dead backend does.
const errorLogRepeatWindow = time.Minute

func (s *Service) storeError(err error) {
	if err == nil {
		return
	}

	if s.errors == nil {
		log.Printf("Tracker error: %v", err)
		return
	}

	msg := err.Error()
	now := s.now()

	s.mu.Lock()
	repeat := msg == s.lastErrMsg && now.Sub(s.lastErrAt) < errorLogRepeatWindow
	if !repeat {
		s.lastErrMsg = msg
		s.lastErrAt = now
	}
	s.mu.Unlock()

	if repeat {
		return
	}

	errorLog := &models.ErrorLog{
		Timestamp: now,
		ErrorMsg:  msg,
	}

	if dbErr := s.errors.CreateErrorLog(errorLog); dbErr != nil {
		log.Printf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	} else {
		log.Printf("Error logged to database: %v", err)
	}
}
