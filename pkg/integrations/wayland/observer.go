// Package wayland queries the focused window through compositor-specific
// channels. Wayland has no portable active-window protocol, so every
// variant here is best effort.
package wayland

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/integrations/common"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/window"
)

// Observer implements window.Observer for Wayland compositors.
type Observer struct {
	compositor string
	hasSwaymsg bool
	hasHyprctl bool
	hasQdbus   bool
	session    *dbus.Conn
}

// New creates a Wayland observer and detects the running compositor.
func New() *Observer {
	o := &Observer{
		hasSwaymsg: common.CommandExists("swaymsg"),
		hasHyprctl: common.CommandExists("hyprctl"),
		hasQdbus:   common.CommandExists("qdbus"),
	}
	o.compositor = detectCompositor()
	return o
}

func detectCompositor() string {
	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	session := strings.ToLower(os.Getenv("XDG_SESSION_DESKTOP"))

	switch {
	case strings.Contains(desktop, "gnome") || strings.Contains(session, "gnome") ||
		strings.Contains(desktop, "ubuntu"):
		return "gnome"
	case strings.Contains(desktop, "kde") || strings.Contains(session, "kde") ||
		strings.Contains(desktop, "plasma"):
		return "kde"
	case strings.Contains(desktop, "sway") || strings.Contains(session, "sway"):
		return "sway"
	case strings.Contains(desktop, "hyprland") || strings.Contains(session, "hyprland"):
		return "hyprland"
	}

	// Env unset or unhelpful; fall back to looking at live processes.
	for proc, name := range map[string]string{
		"sway":         "sway",
		"Hyprland":     "hyprland",
		"gnome-shell":  "gnome",
		"kwin_wayland": "kde",
	} {
		if common.ProcessRunning(proc) {
			return name
		}
	}

	return "unknown"
}

// IsAvailable checks whether the detected compositor can be queried.
func (o *Observer) IsAvailable() bool {
	if os.Getenv("WAYLAND_DISPLAY") == "" && os.Getenv("XDG_SESSION_TYPE") != "wayland" {
		return false
	}

	switch o.compositor {
	case "sway":
		return o.hasSwaymsg
	case "hyprland":
		return o.hasHyprctl
	case "gnome":
		return true
	case "kde":
		return o.hasQdbus
	default:
		return false
	}
}

// Backend returns "wayland".
func (o *Observer) Backend() string {
	return "wayland"
}

// ActiveWindow dispatches to the compositor-specific query.
func (o *Observer) ActiveWindow() (*window.Snapshot, error) {
	switch o.compositor {
	case "sway":
		return o.activeWindowSway()
	case "hyprland":
		return o.activeWindowHyprland()
	case "gnome":
		return o.activeWindowGnome()
	case "kde":
		return o.activeWindowKDE()
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %s", o.compositor)
	}
}

// swayNode is the subset of sway's tree we care about.
type swayNode struct {
	Focused          bool       `json:"focused"`
	Name             string     `json:"name"`
	AppID            string     `json:"app_id"`
	PID              int        `json:"pid"`
	WindowProperties struct {
		Class string `json:"class"`
	} `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func (o *Observer) activeWindowSway() (*window.Snapshot, error) {
	out, err := common.Run(common.DefaultTimeout, "swaymsg", "-t", "get_tree")
	if err != nil {
		return nil, fmt.Errorf("failed to execute swaymsg: %w", err)
	}
	return parseSwayTree(out)
}

func parseSwayTree(data []byte) (*window.Snapshot, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}

	focused := findFocused(&root)
	if focused == nil {
		return nil, fmt.Errorf("no focused window in sway tree")
	}

	appName := focused.AppID
	if appName == "" {
		appName = focused.WindowProperties.Class
	}
	if appName == "" {
		appName = "Unknown"
	}

	return &window.Snapshot{
		AppName:     appName,
		WindowTitle: focused.Name,
		WindowClass: focused.AppID,
		PID:         focused.PID,
		ObservedAt:  time.Now(),
	}, nil
}

func findFocused(node *swayNode) *swayNode {
	if node.Focused {
		return node
	}
	for i := range node.Nodes {
		if found := findFocused(&node.Nodes[i]); found != nil {
			return found
		}
	}
	for i := range node.FloatingNodes {
		if found := findFocused(&node.FloatingNodes[i]); found != nil {
			return found
		}
	}
	return nil
}

type hyprlandWindow struct {
	Class string `json:"class"`
	Title string `json:"title"`
	PID   int    `json:"pid"`
}

func (o *Observer) activeWindowHyprland() (*window.Snapshot, error) {
	out, err := common.Run(common.DefaultTimeout, "hyprctl", "activewindow", "-j")
	if err != nil {
		return nil, fmt.Errorf("failed to execute hyprctl: %w", err)
	}
	return parseHyprlandWindow(out)
}

func parseHyprlandWindow(data []byte) (*window.Snapshot, error) {
	var win hyprlandWindow
	if err := json.Unmarshal(data, &win); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}

	appName := win.Class
	if appName == "" {
		appName = "Unknown"
	}

	return &window.Snapshot{
		AppName:     appName,
		WindowTitle: win.Title,
		WindowClass: win.Class,
		PID:         win.PID,
		ObservedAt:  time.Now(),
	}, nil
}

// gnomeEvalScript asks GNOME Shell for the focused window. Shell.Eval is
// disabled on recent GNOME releases, so a rejection here is normal and
// the caller falls through to the next backend.
const gnomeEvalScript = `
	let fw = global.get_window_actors()
		.map(a => a.meta_window)
		.find(w => w && w.has_focus());
	if (!fw) {
		fw = global.display.get_focus_window();
	}
	if (fw) {
		JSON.stringify({
			wm_class: fw.get_wm_class() || '',
			title: fw.get_title() || '',
			pid: fw.get_pid() || 0
		});
	} else {
		'';
	}
`

func (o *Observer) sessionBus() (*dbus.Conn, error) {
	if o.session != nil {
		return o.session, nil
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	o.session = conn
	return conn, nil
}

func (o *Observer) activeWindowGnome() (*window.Snapshot, error) {
	conn, err := o.sessionBus()
	if err != nil {
		return nil, err
	}

	obj := conn.Object("org.gnome.Shell", "/org/gnome/Shell")
	var ok bool
	var result string
	call := obj.Call("org.gnome.Shell.Eval", 0, gnomeEvalScript)
	if call.Err != nil {
		return nil, fmt.Errorf("gnome shell eval failed: %w", call.Err)
	}
	if err := call.Store(&ok, &result); err != nil {
		return nil, fmt.Errorf("unexpected gnome shell eval reply: %w", err)
	}
	if !ok || result == "" || result == `""` {
		return nil, fmt.Errorf("gnome shell eval rejected or returned no window")
	}

	return parseGnomeEval(result)
}

func parseGnomeEval(result string) (*window.Snapshot, error) {
	// The payload is a JSON object serialized inside a JSON string.
	var inner string
	if err := json.Unmarshal([]byte(result), &inner); err != nil {
		inner = result
	}

	var win struct {
		WMClass string `json:"wm_class"`
		Title   string `json:"title"`
		PID     int    `json:"pid"`
	}
	if err := json.Unmarshal([]byte(inner), &win); err != nil {
		return nil, fmt.Errorf("failed to parse gnome eval payload: %w", err)
	}
	if win.WMClass == "" && win.Title == "" {
		return nil, fmt.Errorf("gnome eval returned empty window")
	}

	appName := win.WMClass
	if appName == "" {
		appName = "Unknown"
	}

	return &window.Snapshot{
		AppName:     appName,
		WindowTitle: win.Title,
		WindowClass: win.WMClass,
		PID:         win.PID,
		ObservedAt:  time.Now(),
	}, nil
}

func (o *Observer) activeWindowKDE() (*window.Snapshot, error) {
	out, err := common.Run(common.DefaultTimeout, "qdbus", "org.kde.KWin", "/KWin", "org.kde.KWin.activeWindow")
	if err != nil {
		return nil, fmt.Errorf("failed to query KWin active window: %w", err)
	}

	id := strings.TrimSpace(string(out))
	if id == "" {
		return nil, fmt.Errorf("no active KWin window")
	}

	classOut, err := common.Run(common.DefaultTimeout, "qdbus", "org.kde.KWin",
		"/KWin/Window"+id, "org.kde.KWin.Window.resourceClass")
	if err != nil {
		return nil, fmt.Errorf("failed to query KWin window class: %w", err)
	}

	appName := strings.TrimSpace(string(classOut))
	if appName == "" {
		return nil, fmt.Errorf("KWin returned empty window class")
	}

	return &window.Snapshot{
		AppName:     appName,
		WindowClass: appName,
		ObservedAt:  time.Now(),
	}, nil
}

// Close releases the D-Bus connection if one was opened.
func (o *Observer) Close() error {
	if o.session != nil {
		err := o.session.Close()
		o.session = nil
		return err
	}
	return nil
}
