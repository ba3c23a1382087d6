package wayland

import (
	"testing"
)

func TestParseSwayTree(t *testing.T) {
	tree := []byte(`{
		"focused": false,
		"nodes": [
			{
				"focused": false,
				"nodes": [
					{
						"focused": true,
						"name": "main.go - Code",
						"app_id": "code",
						"pid": 4242,
						"nodes": []
					}
				]
			}
		]
	}`)

	snap, err := parseSwayTree(tree)
	if err != nil {
		t.Fatalf("parseSwayTree() error: %v", err)
	}
	if snap.AppName != "code" {
		t.Errorf("AppName = %s, want code", snap.AppName)
	}
	if snap.WindowTitle != "main.go - Code" {
		t.Errorf("WindowTitle = %s, want main.go - Code", snap.WindowTitle)
	}
	if snap.PID != 4242 {
		t.Errorf("PID = %d, want 4242", snap.PID)
	}
}

func TestParseSwayTreeFloatingAndXWayland(t *testing.T) {
	// XWayland windows carry window_properties.class instead of app_id.
	tree := []byte(`{
		"focused": false,
		"nodes": [{"focused": false, "nodes": []}],
		"floating_nodes": [
			{
				"focused": true,
				"name": "Picture-in-Picture",
				"app_id": "",
				"pid": 77,
				"window_properties": {"class": "firefox"}
			}
		]
	}`)

	snap, err := parseSwayTree(tree)
	if err != nil {
		t.Fatalf("parseSwayTree() error: %v", err)
	}
	if snap.AppName != "firefox" {
		t.Errorf("AppName = %s, want the window_properties class", snap.AppName)
	}
}

func TestParseSwayTreeNoFocus(t *testing.T) {
	if _, err := parseSwayTree([]byte(`{"focused": false, "nodes": []}`)); err == nil {
		t.Error("parseSwayTree() accepted a tree with no focused window")
	}
	if _, err := parseSwayTree([]byte(`not json`)); err == nil {
		t.Error("parseSwayTree() accepted invalid JSON")
	}
}

func TestParseHyprlandWindow(t *testing.T) {
	data := []byte(`{"class": "kitty", "title": "~/src", "pid": 900}`)

	snap, err := parseHyprlandWindow(data)
	if err != nil {
		t.Fatalf("parseHyprlandWindow() error: %v", err)
	}
	if snap.AppName != "kitty" || snap.WindowTitle != "~/src" || snap.PID != 900 {
		t.Errorf("snapshot = %+v, want kitty/~/src/900", snap)
	}
}

func TestParseHyprlandWindowEmptyClass(t *testing.T) {
	snap, err := parseHyprlandWindow([]byte(`{"class": "", "title": "t", "pid": 1}`))
	if err != nil {
		t.Fatalf("parseHyprlandWindow() error: %v", err)
	}
	if snap.AppName != "Unknown" {
		t.Errorf("AppName = %s, want Unknown for an empty class", snap.AppName)
	}
}

func TestParseGnomeEval(t *testing.T) {
	// Shell.Eval returns the script result serialized as a JSON string,
	// so the window object arrives double-encoded.
	result := `"{\"wm_class\":\"org.gnome.Nautilus\",\"title\":\"Home\",\"pid\":1234}"`

	snap, err := parseGnomeEval(result)
	if err != nil {
		t.Fatalf("parseGnomeEval() error: %v", err)
	}
	if snap.AppName != "org.gnome.Nautilus" {
		t.Errorf("AppName = %s, want org.gnome.Nautilus", snap.AppName)
	}
	if snap.WindowTitle != "Home" || snap.PID != 1234 {
		t.Errorf("snapshot = %+v, want Home/1234", snap)
	}
}

func TestParseGnomeEvalSingleEncoded(t *testing.T) {
	result := `{"wm_class":"firefox","title":"Tab","pid":5}`

	snap, err := parseGnomeEval(result)
	if err != nil {
		t.Fatalf("parseGnomeEval() error: %v", err)
	}
	if snap.AppName != "firefox" {
		t.Errorf("AppName = %s, want firefox", snap.AppName)
	}
}

func TestParseGnomeEvalEmptyWindow(t *testing.T) {
	if _, err := parseGnomeEval(`{"wm_class":"","title":"","pid":0}`); err == nil {
		t.Error("parseGnomeEval() accepted an empty window")
	}
	if _, err := parseGnomeEval(`garbage`); err == nil {
		t.Error("parseGnomeEval() accepted invalid JSON")
	}
}
