package models

import (
	"time"

	"gorm.io/gorm"
)

// Setting is one key/value configuration entry.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Default setting keys and values, seeded at schema initialization.
const (
	SettingIdleThreshold        = "idle_threshold"
	SettingBreakInterval        = "break_reminder_interval"
	SettingDailyGoalMinutes     = "daily_goal_minutes"
	SettingEnableNotifications  = "enable_notifications"
	SettingTrackWindowTitles    = "track_window_titles"
	SettingFocusDefaultDuration = "focus_default_duration"
)

// DefaultSettings returns the seed values for a fresh settings table.
func DefaultSettings() map[string]string {
	return map[string]string{
		SettingIdleThreshold:        "300",
		SettingBreakInterval:        "3600",
		SettingDailyGoalMinutes:     "480",
		SettingEnableNotifications:  "true",
		SettingTrackWindowTitles:    "true",
		SettingFocusDefaultDuration: "1500",
	}
}

// ErrorLog records a tracker poll failure for later inspection.
type ErrorLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
