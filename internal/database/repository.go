package database

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/models"
)

// Repository handles all database operations for the tracking engine.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// OpenAppSession records the start of an app usage session and returns
// its id.
func (r *Repository) OpenAppSession(appName, windowTitle string) (uint, error) {
	now := time.Now()
	session := &models.AppSession{
		AppName:     strings.ToLower(appName),
		WindowTitle: windowTitle,
		StartTime:   now,
		Day:         now.Format("2006-01-02"),
		Category:    "uncategorized",
	}

	if err := r.db.Create(session).Error; err != nil {
		return 0, errors.Wrap(err, "failed to open app session")
	}
	return session.ID, nil
}

// CloseAppSession ends an open session now, computing its duration from
// the stored start time. Closing an already-closed session is a no-op.
func (r *Repository) CloseAppSession(id uint) error {
	return r.CloseAppSessionAt(id, time.Now())
}

// CloseAppSessionAt ends an open session at an explicit end time. Used
// by the tracker's suspend-gap handling so sleep time is not charged to
// the session.
func (r *Repository) CloseAppSessionAt(id uint, end time.Time) error {
	var session models.AppSession
	if err := r.db.First(&session, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return errors.Wrap(err, "failed to load app session")
	}

	if session.EndTime != nil {
		return nil
	}

	duration := int64(end.Sub(session.StartTime).Seconds())
	if duration < 0 {
		duration = 0
	}

	session.EndTime = &end
	session.DurationSeconds = duration
	if err := r.db.Save(&session).Error; err != nil {
		return errors.Wrap(err, "failed to close app session")
	}
	return nil
}

// CloseStaleAppSessions closes every session left open by a previous
// run. The true end time is unknowable, so durations are capped.
func (r *Repository) CloseStaleAppSessions(maxAge time.Duration) (int64, error) {
	var stale []models.AppSession
	if err := r.db.Where("end_time IS NULL").Find(&stale).Error; err != nil {
		return 0, errors.Wrap(err, "failed to query stale app sessions")
	}

	now := time.Now()
	capSeconds := int64(maxAge.Seconds())

	var closed int64
	for i := range stale {
		duration := int64(now.Sub(stale[i].StartTime).Seconds())
		if duration < 0 {
			duration = 0
		}
		if duration > capSeconds {
			duration = capSeconds
		}

		stale[i].EndTime = &now
		stale[i].DurationSeconds = duration
		if err := r.db.Save(&stale[i]).Error; err != nil {
			return closed, errors.Wrap(err, "failed to close stale app session")
		}
		closed++
	}

	return closed, nil
}

// OpenAppSessions returns every session without an end time.
func (r *Repository) OpenAppSessions() ([]models.AppSession, error) {
	var sessions []models.AppSession
	if err := r.db.Where("end_time IS NULL").Find(&sessions).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query open app sessions")
	}
	return sessions, nil
}

// GetAppSession retrieves a session by id.
func (r *Repository) GetAppSession(id uint) (*models.AppSession, error) {
	var session models.AppSession
	if err := r.db.First(&session, id).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get app session")
	}
	return &session, nil
}

// SessionsSince retrieves all closed or open sessions started since a
// given time, oldest first.
func (r *Repository) SessionsSince(since time.Time) ([]models.AppSession, error) {
	var sessions []models.AppSession
	err := r.db.Where("start_time >= ?", since).Order("start_time ASC").Find(&sessions).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query app sessions")
	}
	return sessions, nil
}

// AppSummarySince returns aggregated usage since a given time. The SUM
// runs in SQL; percentages are left to the caller.
func (r *Repository) AppSummarySince(since time.Time) ([]models.AppSummary, error) {
	var summaries []models.AppSummary

	err := r.db.Model(&models.AppSession{}).
		Select("app_name, SUM(duration_seconds) as total_seconds, COUNT(*) as session_count").
		Where("start_time >= ? AND duration_seconds > 0", since).
		Group("app_name").
		Order("total_seconds DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query app summary")
	}

	return summaries, nil
}

// TotalSecondsForDay returns total recorded usage for a calendar day.
func (r *Repository) TotalSecondsForDay(day string) (int64, error) {
	var total int64
	err := r.db.Model(&models.AppSession{}).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Where("day = ?", day).
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to query daily total")
	}
	return total, nil
}

// DeleteSessionsBefore removes sessions older than a cutoff (soft
// delete) and returns how many were removed.
func (r *Repository) DeleteSessionsBefore(before time.Time) (int64, error) {
	result := r.db.Where("start_time < ?", before).Delete(&models.AppSession{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old sessions")
	}
	return result.RowsAffected, nil
}

// OpenFocusSession records the start of a focus session.
func (r *Repository) OpenFocusSession(durationMinutes int, blockedApps []string) (uint, error) {
	session := &models.FocusSession{
		StartTime:      time.Now(),
		PlannedSeconds: int64(durationMinutes) * 60,
	}
	session.SetBlockedApps(blockedApps)

	if err := r.db.Create(session).Error; err != nil {
		return 0, errors.Wrap(err, "failed to open focus session")
	}
	return session.ID, nil
}

// CloseFocusSession ends a focus session, recording the elapsed wall
// clock time and whether it completed or was interrupted. Closing an
// already-closed session is a no-op.
func (r *Repository) CloseFocusSession(id uint, completed bool) error {
	var session models.FocusSession
	if err := r.db.First(&session, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return errors.Wrap(err, "failed to load focus session")
	}

	if session.EndTime != nil {
		return nil
	}

	now := time.Now()
	actual := int64(now.Sub(session.StartTime).Seconds())
	if actual < 0 {
		actual = 0
	}

	session.EndTime = &now
	session.ActualSeconds = actual
	session.Completed = completed
	session.Interrupted = !completed
	if err := r.db.Save(&session).Error; err != nil {
		return errors.Wrap(err, "failed to close focus session")
	}
	return nil
}

// CloseStaleFocusSessions marks focus sessions left open by a previous
// run as interrupted, with duration capped at the planned length.
func (r *Repository) CloseStaleFocusSessions() (int64, error) {
	var stale []models.FocusSession
	if err := r.db.Where("end_time IS NULL").Find(&stale).Error; err != nil {
		return 0, errors.Wrap(err, "failed to query stale focus sessions")
	}

	now := time.Now()
	var closed int64
	for i := range stale {
		actual := int64(now.Sub(stale[i].StartTime).Seconds())
		if actual < 0 {
			actual = 0
		}
		if actual > stale[i].PlannedSeconds {
			actual = stale[i].PlannedSeconds
		}

		stale[i].EndTime = &now
		stale[i].ActualSeconds = actual
		stale[i].Interrupted = true
		if err := r.db.Save(&stale[i]).Error; err != nil {
			return closed, errors.Wrap(err, "failed to close stale focus session")
		}
		closed++
	}

	return closed, nil
}

// ActiveFocusSession returns the open focus session, or nil.
func (r *Repository) ActiveFocusSession() (*models.FocusSession, error) {
	var session models.FocusSession
	err := r.db.Where("end_time IS NULL").Order("start_time DESC").First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to query active focus session")
	}
	return &session, nil
}

// FocusHistory returns focus sessions started within the past N days,
// newest first.
func (r *Repository) FocusHistory(days int) ([]models.FocusSession, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var sessions []models.FocusSession
	err := r.db.Where("start_time >= ?", cutoff).Order("start_time DESC").Find(&sessions).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to query focus history")
	}
	return sessions, nil
}

// GetSetting reads a setting value, returning the default when unset.
func (r *Repository) GetSetting(key, defaultValue string) (string, error) {
	var setting models.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return defaultValue, nil
		}
		return defaultValue, errors.Wrap(err, "failed to read setting")
	}
	return setting.Value, nil
}

// SetSetting writes a setting value.
func (r *Repository) SetSetting(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	err := r.db.Save(&setting).Error
	if err != nil {
		return errors.Wrap(err, "failed to write setting")
	}
	return nil
}

// AllSettings returns every setting as a map.
func (r *Repository) AllSettings() (map[string]string, error) {
	var settings []models.Setting
	if err := r.db.Find(&settings).Error; err != nil {
		return nil, errors.Wrap(err, "failed to read settings")
	}

	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	return out, nil
}

// CreateErrorLog persists a tracker failure.
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	if err := r.db.Create(errorLog).Error; err != nil {
		return errors.Wrap(err, "failed to insert error log")
	}
	return nil
}

// DeleteErrorLogsBefore removes error logs older than a cutoff and
// returns how many were removed.
func (r *Repository) DeleteErrorLogsBefore(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old error logs")
	}
	return result.RowsAffected, nil
}

// Clear removes all usage and focus data.
func (r *Repository) Clear() error {
	if err := r.db.Exec("DELETE FROM app_sessions").Error; err != nil {
		return errors.Wrap(err, "failed to clear app sessions")
	}
	if err := r.db.Exec("DELETE FROM focus_sessions").Error; err != nil {
		return errors.Wrap(err, "failed to clear focus sessions")
	}
	return nil
}
