package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/focus"
)

// Client talks to a running daemon's API from the CLI.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(host string, port int) *Client {
	return &Client{
		baseURL: fmt.Sprintf("http://%s:%d", host, port),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Status fetches /api/status as a generic document.
func (c *Client) Status() (map[string]interface{}, error) {
	var status map[string]interface{}
	if err := c.get("/api/status", &status); err != nil {
		return nil, err
	}
	return status, nil
}

// FocusInfo fetches the active focus session, or nil when none.
func (c *Client) FocusInfo() (*focus.Info, error) {
	var resp struct {
		Active  bool        `json:"active"`
		Session *focus.Info `json:"session"`
	}
	if err := c.get("/api/focus", &resp); err != nil {
		return nil, err
	}
	if !resp.Active {
		return nil, nil
	}
	return resp.Session, nil
}

// FocusStart asks the daemon to begin a focus session.
func (c *Client) FocusStart(req FocusStartRequest) (*focus.Info, error) {
	var info focus.Info
	if err := c.post("/api/focus/start", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// FocusStop ends the active focus session early.
func (c *Client) FocusStop() error {
	return c.post("/api/focus/stop", nil, nil)
}

// FocusExtend adds minutes to the active focus session.
func (c *Client) FocusExtend(minutes int) (*focus.Info, error) {
	var info focus.Info
	if err := c.post("/api/focus/extend", FocusExtendRequest{Minutes: minutes}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// FocusKill terminates processes matching the active blocklist.
func (c *Client) FocusKill() ([]string, error) {
	var resp struct {
		Killed []string `json:"killed"`
	}
	if err := c.post("/api/focus/kill", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Killed, nil
}

func (c *Client) get(path string, out interface{}) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("daemon not reachable: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *Client) post(path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = strings.NewReader("{}")
	}

	resp, err := c.http.Post(c.baseURL+path, "application/json", reader)
	if err != nil {
		return fmt.Errorf("daemon not reachable: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("%s", msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
