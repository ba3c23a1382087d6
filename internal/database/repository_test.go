package database

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/models"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	db := &DB{gdb}
	if err := db.Initialize(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	return NewRepository(db)
}

func TestOpenAndCloseAppSession(t *testing.T) {
	repo := testRepository(t)

	id, err := repo.OpenAppSession("Firefox", "Mozilla Firefox")
	if err != nil {
		t.Fatalf("OpenAppSession() error: %v", err)
	}

	session, err := repo.GetAppSession(id)
	if err != nil {
		t.Fatalf("GetAppSession() error: %v", err)
	}
	if session.AppName != "firefox" {
		t.Errorf("AppName = %s, want lowercased firefox", session.AppName)
	}
	if session.EndTime != nil {
		t.Error("EndTime set on a fresh session")
	}
	if session.Day != time.Now().Format("2006-01-02") {
		t.Errorf("Day = %s, want today", session.Day)
	}

	if err := repo.CloseAppSession(id); err != nil {
		t.Fatalf("CloseAppSession() error: %v", err)
	}

	session, err = repo.GetAppSession(id)
	if err != nil {
		t.Fatalf("GetAppSession() error: %v", err)
	}
	if session.EndTime == nil {
		t.Fatal("EndTime still nil after close")
	}
	if session.DurationSeconds < 0 {
		t.Errorf("DurationSeconds = %d, want >= 0", session.DurationSeconds)
	}
}

func TestCloseAppSessionIdempotent(t *testing.T) {
	repo := testRepository(t)

	id, err := repo.OpenAppSession("code", "main.go")
	if err != nil {
		t.Fatalf("OpenAppSession() error: %v", err)
	}

	end := time.Now().Add(-time.Minute)
	if err := repo.CloseAppSessionAt(id, end); err != nil {
		t.Fatalf("CloseAppSessionAt() error: %v", err)
	}
	session, _ := repo.GetAppSession(id)
	firstDuration := session.DurationSeconds

	// Closing again must not move the end time or duration.
	if err := repo.CloseAppSession(id); err != nil {
		t.Fatalf("second CloseAppSession() error: %v", err)
	}
	session, _ = repo.GetAppSession(id)
	if session.DurationSeconds != firstDuration {
		t.Errorf("DurationSeconds changed on double close: %d -> %d", firstDuration, session.DurationSeconds)
	}

	// Closing an unknown id is a no-op, not an error.
	if err := repo.CloseAppSession(99999); err != nil {
		t.Errorf("CloseAppSession(unknown) error: %v", err)
	}
}

func TestCloseAppSessionClampsNegativeDuration(t *testing.T) {
	repo := testRepository(t)

	id, err := repo.OpenAppSession("firefox", "t")
	if err != nil {
		t.Fatalf("OpenAppSession() error: %v", err)
	}

	// An end time before the start (clock skew) must not go negative.
	if err := repo.CloseAppSessionAt(id, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("CloseAppSessionAt() error: %v", err)
	}

	session, _ := repo.GetAppSession(id)
	if session.DurationSeconds != 0 {
		t.Errorf("DurationSeconds = %d, want clamped to 0", session.DurationSeconds)
	}
}

func TestCloseStaleAppSessionsCapsDuration(t *testing.T) {
	repo := testRepository(t)

	id, err := repo.OpenAppSession("firefox", "t")
	if err != nil {
		t.Fatalf("OpenAppSession() error: %v", err)
	}

	// Backdate the start far past the cap.
	old := time.Now().Add(-5 * time.Hour)
	if err := repo.db.Model(&models.AppSession{}).Where("id = ?", id).
		Update("start_time", old).Error; err != nil {
		t.Fatal(err)
	}

	closed, err := repo.CloseStaleAppSessions(time.Hour)
	if err != nil {
		t.Fatalf("CloseStaleAppSessions() error: %v", err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}

	session, _ := repo.GetAppSession(id)
	if session.EndTime == nil {
		t.Fatal("stale session not closed")
	}
	if session.DurationSeconds != 3600 {
		t.Errorf("DurationSeconds = %d, want capped at 3600", session.DurationSeconds)
	}

	open, err := repo.OpenAppSessions()
	if err != nil {
		t.Fatalf("OpenAppSessions() error: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("open sessions = %d, want 0 after sweep", len(open))
	}
}

func TestAppSummarySince(t *testing.T) {
	repo := testRepository(t)

	backdates := []struct {
		app     string
		seconds int
	}{
		{"firefox", 40},
		{"firefox", 20},
		{"code", 30},
	}
	for _, bd := range backdates {
		id, err := repo.OpenAppSession(bd.app, "t")
		if err != nil {
			t.Fatal(err)
		}
		start := time.Now().Add(-time.Duration(bd.seconds) * time.Second)
		if err := repo.db.Model(&models.AppSession{}).Where("id = ?", id).
			Update("start_time", start).Error; err != nil {
			t.Fatal(err)
		}
		if err := repo.CloseAppSession(id); err != nil {
			t.Fatal(err)
		}
	}

	summaries, err := repo.AppSummarySince(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("AppSummarySince() error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d apps, want 2: %v", len(summaries), summaries)
	}

	// firefox totals 60s against code's 30s and sorts first.
	if summaries[0].AppName != "firefox" || summaries[0].SessionCount != 2 {
		t.Errorf("top summary = %+v, want firefox with 2 sessions", summaries[0])
	}
	if summaries[0].TotalSeconds <= summaries[1].TotalSeconds {
		t.Errorf("totals = %d and %d, want firefox ahead", summaries[0].TotalSeconds, summaries[1].TotalSeconds)
	}
}

func TestDeleteSessionsBefore(t *testing.T) {
	repo := testRepository(t)

	oldID, _ := repo.OpenAppSession("firefox", "old")
	repo.db.Model(&models.AppSession{}).Where("id = ?", oldID).
		Update("start_time", time.Now().AddDate(0, 0, -100))
	repo.CloseAppSession(oldID)

	newID, _ := repo.OpenAppSession("firefox", "new")
	repo.CloseAppSession(newID)

	deleted, err := repo.DeleteSessionsBefore(time.Now().AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteSessionsBefore() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	sessions, _ := repo.SessionsSince(time.Now().AddDate(0, 0, -365))
	if len(sessions) != 1 {
		t.Errorf("remaining sessions = %d, want 1", len(sessions))
	}
}

func TestDeleteErrorLogsBefore(t *testing.T) {
	repo := testRepository(t)

	repo.CreateErrorLog(&models.ErrorLog{
		Timestamp: time.Now().AddDate(0, 0, -100),
		ErrorMsg:  "failed to get focused window: no backend",
	})
	repo.CreateErrorLog(&models.ErrorLog{
		Timestamp: time.Now(),
		ErrorMsg:  "failed to open session: disk full",
	})

	deleted, err := repo.DeleteErrorLogsBefore(time.Now().AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteErrorLogsBefore() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	var remaining int64
	repo.db.Model(&models.ErrorLog{}).Count(&remaining)
	if remaining != 1 {
		t.Errorf("remaining error logs = %d, want 1", remaining)
	}
}

func TestFocusSessionLifecycle(t *testing.T) {
	repo := testRepository(t)

	id, err := repo.OpenFocusSession(25, []string{"discord", "slack"})
	if err != nil {
		t.Fatalf("OpenFocusSession() error: %v", err)
	}

	active, err := repo.ActiveFocusSession()
	if err != nil {
		t.Fatalf("ActiveFocusSession() error: %v", err)
	}
	if active == nil || active.ID != id {
		t.Fatalf("ActiveFocusSession() = %v, want session %d", active, id)
	}
	if active.PlannedSeconds != 1500 {
		t.Errorf("PlannedSeconds = %d, want 1500", active.PlannedSeconds)
	}
	apps := active.BlockedApps()
	if len(apps) != 2 || apps[0] != "discord" {
		t.Errorf("BlockedApps() = %v, want [discord slack]", apps)
	}

	if err := repo.CloseFocusSession(id, false); err != nil {
		t.Fatalf("CloseFocusSession() error: %v", err)
	}

	active, err = repo.ActiveFocusSession()
	if err != nil {
		t.Fatalf("ActiveFocusSession() error: %v", err)
	}
	if active != nil {
		t.Errorf("ActiveFocusSession() = %v after close, want nil", active)
	}

	history, err := repo.FocusHistory(7)
	if err != nil {
		t.Fatalf("FocusHistory() error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history = %d sessions, want 1", len(history))
	}
	if !history[0].Interrupted || history[0].Completed {
		t.Errorf("session = %+v, want interrupted and not completed", history[0])
	}

	// Double close keeps the first outcome.
	if err := repo.CloseFocusSession(id, true); err != nil {
		t.Fatalf("second CloseFocusSession() error: %v", err)
	}
	history, _ = repo.FocusHistory(7)
	if history[0].Completed {
		t.Error("double close rewrote the outcome")
	}
}

func TestCloseStaleFocusSessionsCapsAtPlanned(t *testing.T) {
	repo := testRepository(t)

	id, err := repo.OpenFocusSession(25, nil)
	if err != nil {
		t.Fatalf("OpenFocusSession() error: %v", err)
	}
	repo.db.Model(&models.FocusSession{}).Where("id = ?", id).
		Update("start_time", time.Now().Add(-3*time.Hour))

	closed, err := repo.CloseStaleFocusSessions()
	if err != nil {
		t.Fatalf("CloseStaleFocusSessions() error: %v", err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}

	history, _ := repo.FocusHistory(7)
	if len(history) != 1 {
		t.Fatal("stale focus session missing from history")
	}
	if history[0].ActualSeconds != 1500 {
		t.Errorf("ActualSeconds = %d, want capped at the planned 1500", history[0].ActualSeconds)
	}
	if !history[0].Interrupted {
		t.Error("stale session not marked interrupted")
	}
}

func TestSettings(t *testing.T) {
	repo := testRepository(t)

	// Defaults are seeded by Initialize.
	v, err := repo.GetSetting(models.SettingIdleThreshold, "0")
	if err != nil {
		t.Fatalf("GetSetting() error: %v", err)
	}
	if v != "300" {
		t.Errorf("idle_threshold = %s, want seeded 300", v)
	}

	if err := repo.SetSetting(models.SettingIdleThreshold, "600"); err != nil {
		t.Fatalf("SetSetting() error: %v", err)
	}
	v, _ = repo.GetSetting(models.SettingIdleThreshold, "0")
	if v != "600" {
		t.Errorf("idle_threshold = %s after update, want 600", v)
	}

	// Unknown keys fall back to the caller's default.
	v, err = repo.GetSetting("no_such_key", "fallback")
	if err != nil {
		t.Fatalf("GetSetting() error: %v", err)
	}
	if v != "fallback" {
		t.Errorf("unknown key = %s, want fallback", v)
	}

	all, err := repo.AllSettings()
	if err != nil {
		t.Fatalf("AllSettings() error: %v", err)
	}
	if len(all) != len(models.DefaultSettings()) {
		t.Errorf("settings count = %d, want %d", len(all), len(models.DefaultSettings()))
	}
}

func TestClear(t *testing.T) {
	repo := testRepository(t)

	repo.OpenAppSession("firefox", "t")
	repo.OpenFocusSession(25, nil)

	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	sessions, _ := repo.SessionsSince(time.Now().AddDate(0, 0, -1))
	if len(sessions) != 0 {
		t.Errorf("app sessions remain after Clear: %d", len(sessions))
	}
	active, _ := repo.ActiveFocusSession()
	if active != nil {
		t.Error("focus session remains after Clear")
	}
	v, _ := repo.GetSetting(models.SettingIdleThreshold, "0")
	if v != "300" {
		t.Error("Clear wiped settings; they must survive")
	}
}
