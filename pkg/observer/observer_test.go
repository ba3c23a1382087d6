package observer

import (
	"fmt"
	"testing"
	"time"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/window"
)

type fakeBackend struct {
	name      string
	available bool
	snap      *window.Snapshot
	err       error
	calls     int
	closed    bool
}

func (f *fakeBackend) ActiveWindow() (*window.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

func (f *fakeBackend) IsAvailable() bool { return f.available }
func (f *fakeBackend) Backend() string   { return f.name }
func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func snapFor(app string) *window.Snapshot {
	return &window.Snapshot{AppName: app, ObservedAt: time.Now()}
}

func TestChainUsesFirstAvailableBackend(t *testing.T) {
	first := &fakeBackend{name: "x11", available: true, snap: snapFor("firefox")}
	second := &fakeBackend{name: "process", available: true, snap: snapFor("bash")}
	chain := NewChain(first, second)

	snap, err := chain.ActiveWindow()
	if err != nil {
		t.Fatalf("ActiveWindow() error: %v", err)
	}
	if snap.AppName != "firefox" {
		t.Errorf("AppName = %s, want firefox from the first backend", snap.AppName)
	}
	if second.calls != 0 {
		t.Error("second backend queried although the first answered")
	}
	if chain.Backend() != "x11" {
		t.Errorf("Backend() = %s, want x11", chain.Backend())
	}
}

func TestChainFallsBackOnError(t *testing.T) {
	first := &fakeBackend{name: "x11", available: true, err: fmt.Errorf("connection refused")}
	second := &fakeBackend{name: "process", available: true, snap: snapFor("bash")}
	chain := NewChain(first, second)

	snap, err := chain.ActiveWindow()
	if err != nil {
		t.Fatalf("ActiveWindow() error: %v", err)
	}
	if snap.AppName != "bash" {
		t.Errorf("AppName = %s, want the fallback backend's answer", snap.AppName)
	}
	if chain.Backend() != "process" {
		t.Errorf("Backend() = %s, want process", chain.Backend())
	}
}

func TestChainSkipsUnavailableBackends(t *testing.T) {
	first := &fakeBackend{name: "wayland", available: false, snap: snapFor("ignored")}
	second := &fakeBackend{name: "exttool", available: true, snap: snapFor("vim")}
	chain := NewChain(first, second)

	snap, err := chain.ActiveWindow()
	if err != nil {
		t.Fatalf("ActiveWindow() error: %v", err)
	}
	if first.calls != 0 {
		t.Error("unavailable backend was queried")
	}
	if snap.AppName != "vim" {
		t.Errorf("AppName = %s, want vim", snap.AppName)
	}
}

func TestChainSkipsEmptySnapshots(t *testing.T) {
	first := &fakeBackend{name: "x11", available: true, snap: snapFor("")}
	second := &fakeBackend{name: "process", available: true, snap: snapFor("bash")}
	chain := NewChain(first, second)

	snap, err := chain.ActiveWindow()
	if err != nil {
		t.Fatalf("ActiveWindow() error: %v", err)
	}
	if snap.AppName != "bash" {
		t.Errorf("AppName = %s, want the next backend's answer", snap.AppName)
	}
}

func TestChainAllBackendsFail(t *testing.T) {
	firstErr := fmt.Errorf("first failure")
	chain := NewChain(
		&fakeBackend{name: "x11", available: true, err: firstErr},
		&fakeBackend{name: "process", available: true, err: fmt.Errorf("second failure")},
	)

	if _, err := chain.ActiveWindow(); err != firstErr {
		t.Errorf("ActiveWindow() error = %v, want the first backend's error", err)
	}
	if chain.Backend() != "none" {
		t.Errorf("Backend() = %s, want none before any success", chain.Backend())
	}
}

func TestChainEmptyIsUnavailable(t *testing.T) {
	chain := NewChain()
	if chain.IsAvailable() {
		t.Error("IsAvailable() = true for an empty chain")
	}
	if _, err := chain.ActiveWindow(); err == nil {
		t.Error("ActiveWindow() = nil error for an empty chain")
	}
}

func TestChainAvailabilityRecheckedPerCall(t *testing.T) {
	backend := &fakeBackend{name: "x11", available: false, snap: snapFor("firefox")}
	chain := NewChain(backend)

	if _, err := chain.ActiveWindow(); err == nil {
		t.Fatal("ActiveWindow() succeeded with no available backend")
	}

	// Backend comes up later; the chain picks it up without rebuilding.
	backend.available = true
	snap, err := chain.ActiveWindow()
	if err != nil {
		t.Fatalf("ActiveWindow() error after backend came up: %v", err)
	}
	if snap.AppName != "firefox" {
		t.Errorf("AppName = %s, want firefox", snap.AppName)
	}
}

func TestChainCloseClosesAllBackends(t *testing.T) {
	first := &fakeBackend{name: "x11", available: true}
	second := &fakeBackend{name: "process", available: true}
	chain := NewChain(first, second)

	if err := chain.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !first.closed || !second.closed {
		t.Error("Close() did not reach every backend")
	}
}
