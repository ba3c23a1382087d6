package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Tracker configuration
	Tracker TrackerConfig

	// Focus mode configuration
	Focus FocusConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Notification configuration
	Notify NotifyConfig

	// Web server configuration
	Web WebConfig
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Path string // Path to SQLite database file
}

// TrackerConfig holds tracking behavior configuration.
type TrackerConfig struct {
	PollInterval     time.Duration // How often to check the focused window
	IdleThreshold    time.Duration // Time before considering the user idle
	SuspendThreshold time.Duration // Poll gap treated as system suspend
}

// FocusConfig holds focus-mode configuration.
type FocusConfig struct {
	BlockerInterval time.Duration // How often the blocker scans processes
	DefaultDuration time.Duration // Session length when none is given
}

// DaemonConfig holds daemon process configuration.
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
	LogFile string // Daemon log destination
}

// NotifyConfig holds desktop-notification configuration.
type NotifyConfig struct {
	Enabled bool
}

// WebConfig holds status-API server configuration.
type WebConfig struct {
	Host string
	Port int
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/wellbeing/wellbeing.db
		},
		Tracker: TrackerConfig{
			PollInterval:     1 * time.Second,
			IdleThreshold:    300 * time.Second,
			SuspendThreshold: 300 * time.Second,
		},
		Focus: FocusConfig{
			BlockerInterval: 2 * time.Second,
			DefaultDuration: 25 * time.Minute,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/wellbeing-%d.pid", os.Getuid()),
			LogFile: "/tmp/wellbeing.log",
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10000 + os.Getuid(),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Tracker.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.Tracker.PollInterval)
	}

	if c.Tracker.IdleThreshold < 0 {
		return fmt.Errorf("idle threshold cannot be negative")
	}

	if c.Tracker.SuspendThreshold <= c.Tracker.PollInterval {
		return fmt.Errorf("suspend threshold (%v) must exceed the poll interval (%v)",
			c.Tracker.SuspendThreshold, c.Tracker.PollInterval)
	}

	if c.Focus.BlockerInterval <= 0 {
		return fmt.Errorf("blocker interval must be positive, got %v", c.Focus.BlockerInterval)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// IdleThresholdSeconds returns the idle threshold in seconds.
func (c *Config) IdleThresholdSeconds() int64 {
	return int64(c.Tracker.IdleThreshold.Seconds())
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
  Tracker:
    Poll Interval: %v
    Idle Threshold: %v
    Suspend Threshold: %v
  Focus:
    Blocker Interval: %v
    Default Duration: %v
  Daemon:
    PID File: %s
    Log File: %s
  Notifications: %v
  Web:
    Host: %s
    Port: %d`,
		c.Database.Path,
		c.Tracker.PollInterval,
		c.Tracker.IdleThreshold,
		c.Tracker.SuspendThreshold,
		c.Focus.BlockerInterval,
		c.Focus.DefaultDuration,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Notify.Enabled,
		c.Web.Host,
		c.Web.Port,
	)
}
