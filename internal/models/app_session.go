package models

import (
	"time"

	"gorm.io/gorm"
)

// AppSession is one contiguous stretch of focus on a single
// (app name, window title) pair. At most one row has a null EndTime at
// any moment; the tracker owns the open row until it closes it.
type AppSession struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	AppName         string         `gorm:"not null;index" json:"app_name"`
	WindowTitle     string         `gorm:"not null" json:"window_title"`
	StartTime       time.Time      `gorm:"not null;index" json:"start_time"`
	EndTime         *time.Time     `gorm:"index" json:"end_time"`
	DurationSeconds int64          `gorm:"not null;default:0" json:"duration_seconds"`
	Day             string         `gorm:"not null;index" json:"day"` // YYYY-MM-DD
	Category        string         `gorm:"not null;default:uncategorized" json:"category"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// AppSummary aggregates usage for one application over a report period.
type AppSummary struct {
	AppName      string  `json:"app_name"`
	TotalSeconds int64   `json:"total_seconds"`
	TotalMinutes float64 `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	SessionCount int     `json:"session_count"`
	Percentage   float64 `json:"percentage,omitempty"`
}

// ReportPeriod bounds a usage report.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

// Report is a rendered usage summary for a period.
type Report struct {
	Period       ReportPeriod `json:"period"`
	Apps         []AppSummary `json:"apps"`
	TotalSeconds int64        `json:"total_seconds"`
	TotalMinutes float64      `json:"total_minutes"`
	TotalHours   float64      `json:"total_hours"`
	GeneratedAt  time.Time    `json:"generated_at"`
}
