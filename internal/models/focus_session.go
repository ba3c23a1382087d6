package models

import (
	"encoding/json"
	"time"
)

// FocusSession is one bounded, voluntarily-entered work session. At most
// one row has a null EndTime at any moment.
type FocusSession struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	StartTime       time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime         *time.Time `gorm:"index" json:"end_time"`
	PlannedSeconds  int64      `gorm:"not null" json:"planned_seconds"`
	ActualSeconds   int64      `gorm:"not null;default:0" json:"actual_seconds"`
	BlockedAppsJSON string     `gorm:"column:blocked_apps" json:"-"`
	Completed       bool       `gorm:"not null;default:false" json:"completed"`
	Interrupted     bool       `gorm:"not null;default:false" json:"interrupted"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// BlockedApps decodes the stored blocklist.
func (f *FocusSession) BlockedApps() []string {
	if f.BlockedAppsJSON == "" {
		return nil
	}
	var apps []string
	if err := json.Unmarshal([]byte(f.BlockedAppsJSON), &apps); err != nil {
		return nil
	}
	return apps
}

// SetBlockedApps encodes the blocklist for storage.
func (f *FocusSession) SetBlockedApps(apps []string) {
	if len(apps) == 0 {
		f.BlockedAppsJSON = "[]"
		return
	}
	data, err := json.Marshal(apps)
	if err != nil {
		f.BlockedAppsJSON = "[]"
		return
	}
	f.BlockedAppsJSON = string(data)
}
