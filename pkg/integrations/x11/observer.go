// Package x11 queries the focused window directly over the X protocol.
package x11

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/window"
)

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// Observer implements window.Observer over a native X connection.
type Observer struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

// New creates an X11 observer. The connection is opened lazily on the
// first query so construction never fails on Wayland-only hosts.
func New() *Observer {
	return &Observer{}
}

func (o *Observer) connect() error {
	if o.conn != nil {
		return nil
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}

	o.conn = conn
	o.root = xproto.Setup(conn).DefaultScreen(conn).Root
	o.atoms = make(map[string]xproto.Atom, len(atomNames))

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			o.reset()
			return fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		o.atoms[name] = reply.Atom
	}

	return nil
}

func (o *Observer) reset() {
	if o.conn != nil {
		o.conn.Close()
		o.conn = nil
	}
}

// IsAvailable checks whether an X display is reachable.
func (o *Observer) IsAvailable() bool {
	if os.Getenv("DISPLAY") == "" {
		return false
	}
	return o.connect() == nil
}

// Backend returns "x11".
func (o *Observer) Backend() string {
	return "x11"
}

// ActiveWindow returns the focused window via EWMH properties, falling
// back to the input focus when _NET_ACTIVE_WINDOW is unset.
func (o *Observer) ActiveWindow() (*window.Snapshot, error) {
	if err := o.connect(); err != nil {
		return nil, err
	}

	id, err := o.activeWindowID()
	if err != nil {
		// Drop the connection so the next poll reconnects cleanly.
		o.reset()
		return nil, err
	}

	instance, class := o.windowClass(id)
	appName := class
	if appName == "" {
		appName = instance
	}
	if appName == "" {
		appName = "Unknown"
	}

	return &window.Snapshot{
		AppName:     appName,
		WindowTitle: o.windowName(id),
		WindowClass: instance,
		PID:         int(o.windowPID(id)),
		ObservedAt:  time.Now(),
	}, nil
}

func (o *Observer) activeWindowID() (xproto.Window, error) {
	if id := o.activeWindowFromProperty(); id != 0 && o.hasValidName(id) {
		return id, nil
	}

	if id := o.activeWindowFromInputFocus(); id != 0 && id != o.root {
		top := o.topLevelParent(id)
		if top != 0 && o.hasValidName(top) {
			return top, nil
		}
	}

	return 0, fmt.Errorf("no active window found")
}

func (o *Observer) getProperty(win xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(o.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (o *Observer) activeWindowFromProperty() xproto.Window {
	data, err := o.getProperty(o.root, o.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(data))
}

func (o *Observer) activeWindowFromInputFocus() xproto.Window {
	reply, err := xproto.GetInputFocus(o.conn).Reply()
	if err != nil {
		return 0
	}
	return reply.Focus
}

// topLevelParent walks up the window tree to the child of the root,
// which is where WM_CLASS and the title live.
func (o *Observer) topLevelParent(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(o.conn, win).Reply()
		if err != nil || reply.Parent == o.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (o *Observer) hasValidName(win xproto.Window) bool {
	data, _ := o.getProperty(win, o.atoms["_NET_WM_NAME"], o.atoms["UTF8_STRING"], 1)
	if len(data) > 0 {
		return true
	}
	data, _ = o.getProperty(win, o.atoms["WM_NAME"], xproto.AtomString, 1)
	return len(data) > 0
}

func (o *Observer) windowName(win xproto.Window) string {
	data, err := o.getProperty(win, o.atoms["_NET_WM_NAME"], o.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = o.getProperty(win, o.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	return ""
}

// windowClass returns the WM_CLASS pair: the instance name and the class
// name (two null-terminated strings).
func (o *Observer) windowClass(win xproto.Window) (instance, class string) {
	data, err := o.getProperty(win, o.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil || len(data) == 0 {
		return "", ""
	}

	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

func (o *Observer) windowPID(win xproto.Window) uint32 {
	data, err := o.getProperty(win, o.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

// Close releases the X connection.
func (o *Observer) Close() error {
	o.reset()
	return nil
}
