package config_test

import (
	"fmt"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Poll Interval:", cfg.Tracker.PollInterval)
	fmt.Println("Idle Threshold:", cfg.Tracker.IdleThreshold)
	fmt.Println("Focus Duration:", cfg.Focus.DefaultDuration)
	// Output:
	// Poll Interval: 1s
	// Idle Threshold: 5m0s
	// Focus Duration: 25m0s
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	// Output:
	// Configuration is valid
}

// Example of reading the idle threshold in seconds
func ExampleConfig_IdleThresholdSeconds() {
	cfg := config.Default()
	fmt.Println(cfg.IdleThresholdSeconds())
	// Output:
	// 300
}
