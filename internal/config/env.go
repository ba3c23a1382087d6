package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables.
// Environment variables override default values.
func LoadFromEnv(cfg *Config) {
	if dbPath := os.Getenv("WELLBEING_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if pollInterval := os.Getenv("WELLBEING_POLL_INTERVAL"); pollInterval != "" {
		if seconds, err := strconv.Atoi(pollInterval); err == nil && seconds > 0 {
			cfg.Tracker.PollInterval = time.Duration(seconds) * time.Second
		}
	}

	if idleThreshold := os.Getenv("WELLBEING_IDLE_THRESHOLD"); idleThreshold != "" {
		if seconds, err := strconv.Atoi(idleThreshold); err == nil && seconds > 0 {
			cfg.Tracker.IdleThreshold = time.Duration(seconds) * time.Second
		}
	}

	if suspendThreshold := os.Getenv("WELLBEING_SUSPEND_THRESHOLD"); suspendThreshold != "" {
		if seconds, err := strconv.Atoi(suspendThreshold); err == nil && seconds > 0 {
			cfg.Tracker.SuspendThreshold = time.Duration(seconds) * time.Second
		}
	}

	if pidFile := os.Getenv("WELLBEING_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := os.Getenv("WELLBEING_LOG_FILE"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	if notifications := os.Getenv("WELLBEING_ENABLE_NOTIFICATIONS"); notifications != "" {
		if val, err := strconv.ParseBool(notifications); err == nil {
			cfg.Notify.Enabled = val
		}
	}

	if webHost := os.Getenv("WELLBEING_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("WELLBEING_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// New creates a new Config with default values and loads from environment.
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
