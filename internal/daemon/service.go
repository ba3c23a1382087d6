package daemon

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/models"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/notify"
)

const (
	maintenanceInterval = 10 * time.Second
	settingsReloadEvery = time.Hour
	cleanupEvery        = 24 * time.Hour
	retentionDays       = 90
	staleSessionMaxAge  = time.Hour
)

// Tracker is the slice of the tracker the maintenance loop drives.
type Tracker interface {
	IsIdle() bool
	SetIdleThreshold(threshold time.Duration)
}

// FocusDefaults receives the persisted default session length.
type FocusDefaults interface {
	SetDefaultDuration(d time.Duration)
}

// Store is the persistence surface for recovery and maintenance.
type Store interface {
	CloseStaleAppSessions(maxAge time.Duration) (int64, error)
	CloseStaleFocusSessions() (int64, error)
	DeleteSessionsBefore(before time.Time) (int64, error)
	DeleteErrorLogsBefore(before time.Time) (int64, error)
	GetSetting(key, defaultValue string) (string, error)
}

// Service runs the daemon's housekeeping: crash recovery at startup,
// break reminders, retention cleanup, and periodic settings reload.
type Service struct {
	store    Store
	tracker  Tracker
	focus    FocusDefaults
	notifier notify.Sender

	breakInterval time.Duration
	lastBreak     time.Time
	lastReload    time.Time
	lastCleanup   time.Time
	now           func() time.Time
}

func NewService(store Store, tracker Tracker, notifier notify.Sender) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		store:         store,
		tracker:       tracker,
		notifier:      notifier,
		breakInterval: time.Hour,
		now:           time.Now,
	}
}

// SetFocusDefaults registers the focus manager so settings reloads can
// update its default session length.
func (s *Service) SetFocusDefaults(f FocusDefaults) {
	s.focus = f
}

// Recover closes sessions left open by a previous crash or hard stop.
// Called once before tracking starts.
func (s *Service) Recover() {
	if n, err := s.store.CloseStaleAppSessions(staleSessionMaxAge); err != nil {
		log.Printf("Failed to recover app sessions: %v", err)
	} else if n > 0 {
		log.Printf("Recovered %d stale app sessions", n)
	}

	if n, err := s.store.CloseStaleFocusSessions(); err != nil {
		log.Printf("Failed to recover focus sessions: %v", err)
	} else if n > 0 {
		log.Printf("Recovered %d stale focus sessions", n)
	}
}

// Run drives the housekeeping loop until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	now := s.now()
	s.lastBreak = now
	s.lastCleanup = now.Add(-cleanupEvery) // cleanup on first pass
	s.reloadSettings()
	s.lastReload = now

	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(s.now())
		}
	}
}

func (s *Service) pass(now time.Time) {
	s.checkBreakReminder(now)

	if now.Sub(s.lastReload) >= settingsReloadEvery {
		s.reloadSettings()
		s.lastReload = now
	}

	if now.Sub(s.lastCleanup) >= cleanupEvery {
		s.cleanup(now)
		s.lastCleanup = now
	}
}

// checkBreakReminder nudges the user after continuous activity. Idle
// time counts as a break and resets the clock.
func (s *Service) checkBreakReminder(now time.Time) {
	if s.breakInterval <= 0 {
		return
	}

	if s.tracker.IsIdle() {
		s.lastBreak = now
		return
	}

	if now.Sub(s.lastBreak) < s.breakInterval {
		return
	}

	minutes := int(s.breakInterval.Minutes())
	s.notifier.Send(
		"Time for a Break",
		"You've been active for over "+strconv.Itoa(minutes)+" minutes. Step away from the screen for a bit.",
		notify.UrgencyNormal,
	)
	s.lastBreak = now
}

func (s *Service) cleanup(now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	n, err := s.store.DeleteSessionsBefore(cutoff)
	if err != nil {
		log.Printf("Retention cleanup failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Retention cleanup removed %d sessions older than %d days", n, retentionDays)
	}

	if n, err := s.store.DeleteErrorLogsBefore(cutoff); err != nil {
		log.Printf("Error log cleanup failed: %v", err)
	} else if n > 0 {
		log.Printf("Retention cleanup removed %d error logs", n)
	}
}

// reloadSettings folds database-held settings back into the running
// services, so UI edits apply without a restart.
func (s *Service) reloadSettings() {
	if v, err := s.store.GetSetting(models.SettingIdleThreshold, "300"); err == nil {
		if seconds, err := strconv.ParseInt(v, 10, 64); err == nil && seconds > 0 {
			s.tracker.SetIdleThreshold(time.Duration(seconds) * time.Second)
		}
	}

	if v, err := s.store.GetSetting(models.SettingBreakInterval, "3600"); err == nil {
		if seconds, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.breakInterval = time.Duration(seconds) * time.Second
		}
	}

	if s.focus != nil {
		if v, err := s.store.GetSetting(models.SettingFocusDefaultDuration, "1500"); err == nil {
			if seconds, err := strconv.ParseInt(v, 10, 64); err == nil && seconds > 0 {
				s.focus.SetDefaultDuration(time.Duration(seconds) * time.Second)
			}
		}
	}

	if v, err := s.store.GetSetting(models.SettingEnableNotifications, "true"); err == nil {
		if toggler, ok := s.notifier.(interface{ SetEnabled(bool) }); ok {
			toggler.SetEnabled(v == "true" || v == "1")
		}
	}
}
