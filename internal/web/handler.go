package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/config"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/database"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/focus"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/reporter"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/window"
)

// TrackerStatus is the live tracking state the handler reads.
type TrackerStatus interface {
	CurrentWindow() *window.Snapshot
	IsIdle() bool
	IsRunning() bool
}

// FocusControl is the focus-session surface the API exposes. The CLI
// drives the daemon's focus manager through these endpoints.
type FocusControl interface {
	Info() *focus.Info
	Start(opts focus.Options) (*focus.Info, error)
	Stop(completed bool) error
	Extend(minutes int) error
	KillBlocked() ([]string, error)
}

// FocusStartRequest is the body of POST /api/focus/start.
type FocusStartRequest struct {
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	BlockedApps     []string `json:"blocked_apps,omitempty"`
	DurationPreset  string   `json:"duration_preset,omitempty"`
	BlockPreset     string   `json:"block_preset,omitempty"`
}

// FocusExtendRequest is the body of POST /api/focus/extend.
type FocusExtendRequest struct {
	Minutes int `json:"minutes"`
}

type Handler struct {
	config   *config.Config
	repo     *database.Repository
	reporter *reporter.Reporter
	tracker  TrackerStatus
	focus    FocusControl
}

func NewHandler(cfg *config.Config, repo *database.Repository, tracker TrackerStatus, focusMgr FocusControl) *Handler {
	return &Handler{
		config:   cfg,
		repo:     repo,
		reporter: reporter.New(cfg, repo),
		tracker:  tracker,
		focus:    focusMgr,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/summary", h.handleSummary)
	mux.HandleFunc("/api/sessions", h.handleSessions)
	mux.HandleFunc("/api/focus", h.handleFocus)
	mux.HandleFunc("/api/focus/start", h.handleFocusStart)
	mux.HandleFunc("/api/focus/stop", h.handleFocusStop)
	mux.HandleFunc("/api/focus/extend", h.handleFocusExtend)
	mux.HandleFunc("/api/focus/kill", h.handleFocusKill)
	mux.HandleFunc("/api/settings", h.handleSettings)

	mux.HandleFunc("/health", h.handleHealth)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]interface{}{
		"tracking":      h.tracker.IsRunning(),
		"idle":          h.tracker.IsIdle(),
		"poll_interval": h.config.Tracker.PollInterval.String(),
		"database_path": h.config.Database.Path,
	}

	if snap := h.tracker.CurrentWindow(); snap != nil {
		status["current_window"] = map[string]interface{}{
			"app_name":     snap.AppName,
			"window_title": snap.WindowTitle,
			"observed_at":  snap.ObservedAt.Format(time.RFC3339),
		}
	}

	if info := h.focus.Info(); info != nil {
		status["focus_session"] = info
	}

	respondJSON(w, status)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, report)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get summary: %v", err), http.StatusInternalServerError)
		return
	}

	used, goal, percent, goalErr := h.reporter.DailyGoalProgress()

	response := map[string]interface{}{
		"period":        report.Period,
		"apps":          report.Apps,
		"total_seconds": report.TotalSeconds,
		"total_minutes": report.TotalMinutes,
		"total_hours":   report.TotalHours,
	}
	if goalErr == nil {
		response["daily_goal"] = map[string]interface{}{
			"used_seconds": used,
			"goal_seconds": goal,
			"percent":      percent,
		}
	}

	respondJSON(w, response)
}

func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}

	sessions, err := h.repo.SessionsSince(time.Now().Add(-time.Duration(hours) * time.Hour))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch sessions: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, sessions)
}

func (h *Handler) handleFocus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info := h.focus.Info()
	if info == nil {
		respondJSON(w, map[string]interface{}{"active": false})
		return
	}

	respondJSON(w, map[string]interface{}{
		"active":  true,
		"session": info,
	})
}

func (h *Handler) handleFocusStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req FocusStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	info, err := h.focus.Start(focus.Options{
		DurationMinutes: req.DurationMinutes,
		BlockedApps:     req.BlockedApps,
		DurationPreset:  req.DurationPreset,
		BlockPreset:     req.BlockPreset,
	})
	if err != nil {
		status := http.StatusBadRequest
		if err == focus.ErrSessionActive {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	respondJSON(w, info)
}

func (h *Handler) handleFocusStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.focus.Stop(false); err != nil {
		status := http.StatusInternalServerError
		if err == focus.ErrNoSession {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	respondJSON(w, map[string]string{"status": "stopped"})
}

func (h *Handler) handleFocusExtend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req FocusExtendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.focus.Extend(req.Minutes); err != nil {
		status := http.StatusBadRequest
		if err == focus.ErrNoSession {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	respondJSON(w, h.focus.Info())
}

func (h *Handler) handleFocusKill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	killed, err := h.focus.KillBlocked()
	if err != nil {
		status := http.StatusInternalServerError
		if err == focus.ErrNoSession {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	respondJSON(w, map[string]interface{}{"killed": killed})
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	settings, err := h.repo.AllSettings()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch settings: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, settings)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}
