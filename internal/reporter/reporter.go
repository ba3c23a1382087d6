// Package reporter builds and renders usage reports from recorded
// sessions.
package reporter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/config"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/models"
)

// Store is the query surface the reporter reads from.
type Store interface {
	AppSummarySince(since time.Time) ([]models.AppSummary, error)
	TotalSecondsForDay(day string) (int64, error)
	GetSetting(key, defaultValue string) (string, error)
	FocusHistory(days int) ([]models.FocusSession, error)
}

type Reporter struct {
	config *config.Config
	store  Store
	now    func() time.Time
}

func New(cfg *config.Config, store Store) *Reporter {
	return &Reporter{
		config: cfg,
		store:  store,
		now:    time.Now,
	}
}

// GenerateReport builds a usage report for "day", "week" or "month".
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	summaries, err := r.store.AppSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get app summary: %w", err)
	}

	var totalSeconds int64
	for i := range summaries {
		summaries[i].TotalMinutes = float64(summaries[i].TotalSeconds) / 60.0
		summaries[i].TotalHours = float64(summaries[i].TotalSeconds) / 3600.0
		totalSeconds += summaries[i].TotalSeconds
	}

	if totalSeconds > 0 {
		for i := range summaries {
			summaries[i].Percentage = (float64(summaries[i].TotalSeconds) / float64(totalSeconds)) * 100.0
		}
	}

	return &models.Report{
		Period:       *period,
		Apps:         summaries,
		TotalSeconds: totalSeconds,
		TotalMinutes: float64(totalSeconds) / 60.0,
		TotalHours:   float64(totalSeconds) / 3600.0,
		GeneratedAt:  r.now(),
	}, nil
}

// DailyGoalProgress compares today's tracked time against the
// daily_goal_minutes setting. Returns used seconds, goal seconds and
// percent of goal reached.
func (r *Reporter) DailyGoalProgress() (int64, int64, float64, error) {
	day := r.now().Format("2006-01-02")
	used, err := r.store.TotalSecondsForDay(day)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to total today's sessions: %w", err)
	}

	goalStr, err := r.store.GetSetting(models.SettingDailyGoalMinutes, "480")
	if err != nil {
		return 0, 0, 0, err
	}
	goalMinutes, err := strconv.ParseInt(goalStr, 10, 64)
	if err != nil || goalMinutes <= 0 {
		goalMinutes = 480
	}

	goalSeconds := goalMinutes * 60
	percent := float64(used) / float64(goalSeconds) * 100.0
	return used, goalSeconds, percent, nil
}

func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := r.now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.Add(24 * time.Hour)

	case "week":
		// Week starts Monday.
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText renders the report for the terminal.
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder

	header := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)
	bar := color.New(color.FgGreen)

	b.WriteString(header.Sprintf("Activity Report - %s\n", report.Period.Type))
	b.WriteString(dim.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Total Time: %s (%.2fh)\n\n",
		FormatDuration(report.TotalSeconds), report.TotalHours))

	if len(report.Apps) == 0 {
		b.WriteString("No activity recorded for this period.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%-28s %10s %9s  %s\n", "Application", "Time", "Percent", ""))
	b.WriteString(strings.Repeat("-", 72) + "\n")

	for _, app := range report.Apps {
		b.WriteString(fmt.Sprintf("%-28s %10s %8.1f%%  %s\n",
			truncate(app.AppName, 28),
			FormatDuration(app.TotalSeconds),
			app.Percentage,
			bar.Sprint(progressBar(app.Percentage, 20))))
	}

	return b.String()
}

// FormatReportJSON renders the report as indented JSON.
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// FormatFocusHistory renders recent focus sessions for the terminal.
func (r *Reporter) FormatFocusHistory(sessions []models.FocusSession) string {
	if len(sessions) == 0 {
		return "No focus sessions recorded.\n"
	}

	var b strings.Builder
	good := color.New(color.FgGreen)
	bad := color.New(color.FgYellow)

	b.WriteString(fmt.Sprintf("%-18s %9s %9s  %s\n", "Started", "Planned", "Actual", "Outcome"))
	b.WriteString(strings.Repeat("-", 52) + "\n")

	for _, s := range sessions {
		outcome := good.Sprint("completed")
		if s.Interrupted {
			outcome = bad.Sprint("interrupted")
		} else if !s.Completed {
			outcome = bad.Sprint("open")
		}
		b.WriteString(fmt.Sprintf("%-18s %9s %9s  %s\n",
			s.StartTime.Format("2006-01-02 15:04"),
			FormatDuration(s.PlannedSeconds),
			FormatDuration(s.ActualSeconds),
			outcome))
	}

	return b.String()
}

// FormatDuration renders seconds as a compact human unit: 45s, 12m,
// or 1h30m.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm", seconds/60)
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, minutes)
}

func progressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
