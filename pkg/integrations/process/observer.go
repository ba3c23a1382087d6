// Package process approximates the focused application by scanning live
// processes. Used when no compositor API answers; the most recently
// started known GUI application is taken as a proxy for focus.
package process

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/window"
)

// guiApps maps process names to display names for applications we treat
// as focus candidates.
var guiApps = map[string]string{
	"chrome":         "Chrome",
	"chromium":       "Chromium",
	"firefox":        "Firefox",
	"firefox-esr":    "Firefox",
	"code":           "VS Code",
	"code-oss":       "VS Code",
	"cursor":         "Cursor",
	"slack":          "Slack",
	"discord":        "Discord",
	"spotify":        "Spotify",
	"telegram":       "Telegram",
	"thunderbird":    "Thunderbird",
	"nautilus":       "Files",
	"gnome-terminal": "Terminal",
	"tilix":          "Tilix",
	"alacritty":      "Alacritty",
	"kitty":          "Kitty",
	"obs":            "OBS",
	"gimp":           "GIMP",
	"inkscape":       "Inkscape",
	"blender":        "Blender",
	"steam":          "Steam",
	"vlc":            "VLC",
	"mpv":            "mpv",
	"eog":            "Image Viewer",
	"evince":         "Document Viewer",
	"gedit":          "Text Editor",
	"libreoffice":    "LibreOffice",
}

// Observer implements window.Observer by heuristics over /proc.
type Observer struct {
	procRoot string
	selfPID  int
}

// New creates a process-scan observer.
func New() *Observer {
	return &Observer{
		procRoot: "/proc",
		selfPID:  os.Getpid(),
	}
}

// IsAvailable reports whether /proc can be read.
func (o *Observer) IsAvailable() bool {
	_, err := os.Stat(o.procRoot)
	return err == nil
}

// Backend returns "process".
func (o *Observer) Backend() string {
	return "process"
}

type candidate struct {
	startedAt time.Time
	appName   string
	procName  string
	pid       int
}

// ActiveWindow scans /proc for known GUI applications and returns the
// most recently started match, excluding this process itself. The
// window title is unknowable here and left empty.
func (o *Observer) ActiveWindow() (*window.Snapshot, error) {
	entries, err := os.ReadDir(o.procRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", o.procRoot, err)
	}

	var found []candidate

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid == o.selfPID {
			continue
		}

		dir := filepath.Join(o.procRoot, entry.Name())
		comm, err := os.ReadFile(filepath.Join(dir, "comm"))
		if err != nil {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(string(comm)))

		cmdline := name
		if data, err := os.ReadFile(filepath.Join(dir, "cmdline")); err == nil && len(data) > 0 {
			cmdline = strings.ToLower(strings.ReplaceAll(string(data), "\x00", " "))
		}

		for procName, appName := range guiApps {
			if strings.Contains(name, procName) || strings.Contains(cmdline, procName) {
				c := candidate{appName: appName, procName: procName, pid: pid}
				if info, err := os.Stat(dir); err == nil {
					c.startedAt = info.ModTime()
				}
				found = append(found, c)
				break
			}
		}
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("no known GUI applications running")
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].startedAt.After(found[j].startedAt)
	})

	best := found[0]
	return &window.Snapshot{
		AppName:     best.appName,
		WindowClass: best.procName,
		PID:         best.pid,
		ObservedAt:  time.Now(),
	}, nil
}

// Close is a no-op; the observer holds no resources.
func (o *Observer) Close() error {
	return nil
}
