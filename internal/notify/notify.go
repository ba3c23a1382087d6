// Package notify sends desktop notifications. Notifications are a
// fire-and-forget side channel: every failure is swallowed after at
// most a log line.
package notify

import (
	"context"
	"log"
	"os/exec"
	"time"

	"github.com/godbus/dbus/v5"
)

// Urgency levels per the Desktop Notifications specification.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

const appName = "Digital Wellbeing"

// Sender delivers one notification.
type Sender interface {
	Send(title, body string, urgency Urgency)
}

// Desktop sends notifications over the session bus, falling back to
// notify-send when D-Bus is unavailable.
type Desktop struct {
	enabled bool
	session *dbus.Conn
}

// NewDesktop creates a desktop notification sender. When enabled is
// false every Send is a no-op.
func NewDesktop(enabled bool) *Desktop {
	return &Desktop{enabled: enabled}
}

// SetEnabled toggles delivery at runtime (settings reload).
func (d *Desktop) SetEnabled(enabled bool) {
	d.enabled = enabled
}

// Send delivers a notification, best effort.
func (d *Desktop) Send(title, body string, urgency Urgency) {
	if !d.enabled {
		return
	}

	if err := d.sendDBus(title, body, urgency); err == nil {
		return
	}

	d.sendNotifySend(title, body, urgency)
}

func (d *Desktop) sendDBus(title, body string, urgency Urgency) error {
	if d.session == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return err
		}
		d.session = conn
	}

	obj := d.session.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(urgency)),
	}

	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		appName, uint32(0), "preferences-system-time", title, body,
		[]string{}, hints, int32(5000))
	if call.Err != nil {
		// Connection may be stale; retry fresh next time.
		d.session = nil
		return call.Err
	}
	return nil
}

func (d *Desktop) sendNotifySend(title, body string, urgency Urgency) {
	level := "normal"
	if urgency == UrgencyCritical {
		level = "critical"
	} else if urgency == UrgencyLow {
		level = "low"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "notify-send",
		"--urgency="+level,
		"--app-name="+appName,
		title, body)
	if err := cmd.Run(); err != nil {
		log.Printf("Could not send notification: %v", err)
	}
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Send(title, body string, urgency Urgency) {}
