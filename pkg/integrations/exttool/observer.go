// Package exttool is the last-resort observer: it shells out to xdotool,
// which answers on X11 and on XWayland bridges.
package exttool

import (
	"fmt"
	"strings"
	"time"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/integrations/common"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/window"
)

// Observer implements window.Observer via xdotool.
type Observer struct {
	hasXdotool bool
}

// New creates an xdotool-backed observer.
func New() *Observer {
	return &Observer{hasXdotool: common.CommandExists("xdotool")}
}

// IsAvailable reports whether xdotool is installed.
func (o *Observer) IsAvailable() bool {
	return o.hasXdotool
}

// Backend returns "exttool".
func (o *Observer) Backend() string {
	return "exttool"
}

// ActiveWindow queries the active window name and class through xdotool.
func (o *Observer) ActiveWindow() (*window.Snapshot, error) {
	if !o.hasXdotool {
		return nil, fmt.Errorf("xdotool not available")
	}

	titleOut, err := common.Run(common.DefaultTimeout, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		return nil, fmt.Errorf("xdotool getwindowname failed: %w", err)
	}
	title := strings.TrimSpace(string(titleOut))

	appName := "Unknown"
	if classOut, err := common.Run(common.DefaultTimeout, "xdotool", "getactivewindow", "getwindowclassname"); err == nil {
		if class := strings.TrimSpace(string(classOut)); class != "" {
			appName = class
		}
	}

	return &window.Snapshot{
		AppName:     appName,
		WindowTitle: title,
		WindowClass: appName,
		ObservedAt:  time.Now(),
	}, nil
}

// Close is a no-op.
func (o *Observer) Close() error {
	return nil
}
