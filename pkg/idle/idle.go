// Package idle reports how long the user has been inactive, trying
// whichever mechanism the current session supports.
package idle

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/integrations/common"
)

// Monitor implements window.IdleMonitor. Every query path is best
// effort; when nothing answers the monitor reports 0, so idle detection
// fails open rather than closing sessions erroneously.
type Monitor struct {
	sessionType   string
	hasXprintidle bool
	hasQdbus      bool

	xconn *xgb.Conn
	xroot xproto.Window

	session *dbus.Conn
}

// New creates an idle monitor for the current session type.
func New() *Monitor {
	return &Monitor{
		sessionType:   os.Getenv("XDG_SESSION_TYPE"),
		hasXprintidle: common.CommandExists("xprintidle"),
		hasQdbus:      common.CommandExists("qdbus"),
	}
}

// IdleSeconds returns the user idle time in seconds, or 0 when no
// mechanism can answer.
func (m *Monitor) IdleSeconds() int64 {
	if m.sessionType == "wayland" {
		if secs, err := m.idleMutter(); err == nil {
			return secs
		}
		if secs, err := m.idleKDE(); err == nil {
			return secs
		}
		// XWayland tools sometimes still answer below.
	}

	if m.hasXprintidle {
		if secs, err := m.idleXprintidle(); err == nil {
			return secs
		}
	}

	if secs, err := m.idleScreensaverExt(); err == nil {
		return secs
	}

	if m.sessionType != "wayland" {
		if secs, err := m.idleMutter(); err == nil {
			return secs
		}
	}

	return 0
}

func (m *Monitor) idleXprintidle() (int64, error) {
	out, err := common.Run(common.DefaultTimeout, "xprintidle")
	if err != nil {
		return 0, err
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected xprintidle output: %w", err)
	}
	return ms / 1000, nil
}

// idleScreensaverExt queries the MIT-SCREEN-SAVER extension directly.
func (m *Monitor) idleScreensaverExt() (int64, error) {
	if os.Getenv("DISPLAY") == "" {
		return 0, fmt.Errorf("no X display")
	}

	if m.xconn == nil {
		conn, err := xgb.NewConn()
		if err != nil {
			return 0, err
		}
		if err := screensaver.Init(conn); err != nil {
			conn.Close()
			return 0, err
		}
		m.xconn = conn
		m.xroot = xproto.Setup(conn).DefaultScreen(conn).Root
	}

	reply, err := screensaver.QueryInfo(m.xconn, xproto.Drawable(m.xroot)).Reply()
	if err != nil {
		m.xconn.Close()
		m.xconn = nil
		return 0, err
	}
	return int64(reply.MsSinceUserInput) / 1000, nil
}

func (m *Monitor) sessionBus() (*dbus.Conn, error) {
	if m.session != nil {
		return m.session, nil
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	m.session = conn
	return conn, nil
}

// idleMutter asks GNOME Mutter's IdleMonitor over the session bus.
func (m *Monitor) idleMutter() (int64, error) {
	conn, err := m.sessionBus()
	if err != nil {
		return 0, err
	}

	obj := conn.Object("org.gnome.Mutter.IdleMonitor", "/org/gnome/Mutter/IdleMonitor/Core")
	var idleMs uint64
	call := obj.Call("org.gnome.Mutter.IdleMonitor.GetIdletime", 0)
	if call.Err != nil {
		return 0, call.Err
	}
	if err := call.Store(&idleMs); err != nil {
		return 0, err
	}
	return int64(idleMs / 1000), nil
}

func (m *Monitor) idleKDE() (int64, error) {
	if !m.hasQdbus {
		return 0, fmt.Errorf("qdbus not available")
	}

	out, err := common.Run(common.DefaultTimeout, "qdbus", "org.kde.screensaver",
		"/ScreenSaver", "org.freedesktop.ScreenSaver.GetSessionIdleTime")
	if err != nil {
		return 0, err
	}

	secs, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected screensaver reply: %w", err)
	}
	return secs, nil
}

// Close releases any held connections.
func (m *Monitor) Close() error {
	if m.xconn != nil {
		m.xconn.Close()
		m.xconn = nil
	}
	if m.session != nil {
		if err := m.session.Close(); err != nil {
			log.Printf("Error closing session bus: %v", err)
		}
		m.session = nil
	}
	return nil
}
