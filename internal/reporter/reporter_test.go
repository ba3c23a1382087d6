package reporter

import (
	"strings"
	"testing"
	"time"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/config"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/models"
)

type mockStore struct {
	summaries []models.AppSummary
	dayTotal  int64
	settings  map[string]string
	since     time.Time
}

func (m *mockStore) AppSummarySince(since time.Time) ([]models.AppSummary, error) {
	m.since = since
	return m.summaries, nil
}

func (m *mockStore) TotalSecondsForDay(day string) (int64, error) {
	return m.dayTotal, nil
}

func (m *mockStore) GetSetting(key, defaultValue string) (string, error) {
	if v, ok := m.settings[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (m *mockStore) FocusHistory(days int) ([]models.FocusSession, error) {
	return nil, nil
}

func newTestReporter(store *mockStore) *Reporter {
	return New(config.Default(), store)
}

func TestGenerateReportPercentages(t *testing.T) {
	store := &mockStore{
		summaries: []models.AppSummary{
			{AppName: "firefox", TotalSeconds: 3600, SessionCount: 4},
			{AppName: "code", TotalSeconds: 1800, SessionCount: 2},
		},
	}
	rep := newTestReporter(store)

	report, err := rep.GenerateReport("day")
	if err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}

	if report.TotalSeconds != 5400 {
		t.Errorf("TotalSeconds = %d, want 5400", report.TotalSeconds)
	}
	if report.TotalHours != 1.5 {
		t.Errorf("TotalHours = %.2f, want 1.5", report.TotalHours)
	}

	wantPercent := []float64{100.0 * 3600 / 5400, 100.0 * 1800 / 5400}
	for i, want := range wantPercent {
		got := report.Apps[i].Percentage
		if got < want-0.01 || got > want+0.01 {
			t.Errorf("Apps[%d].Percentage = %.2f, want %.2f", i, got, want)
		}
	}
}

func TestGenerateReportPeriods(t *testing.T) {
	store := &mockStore{}
	rep := newTestReporter(store)
	now := time.Date(2026, 8, 26, 15, 30, 0, 0, time.Local) // a Wednesday
	rep.now = func() time.Time { return now }

	report, err := rep.GenerateReport("day")
	if err != nil {
		t.Fatalf("GenerateReport(day) error: %v", err)
	}
	wantDayStart := time.Date(2026, 8, 26, 0, 0, 0, 0, time.Local)
	if !report.Period.Start.Equal(wantDayStart) {
		t.Errorf("day start = %v, want %v", report.Period.Start, wantDayStart)
	}

	report, err = rep.GenerateReport("week")
	if err != nil {
		t.Fatalf("GenerateReport(week) error: %v", err)
	}
	wantWeekStart := time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local) // Monday
	if !report.Period.Start.Equal(wantWeekStart) {
		t.Errorf("week start = %v, want Monday %v", report.Period.Start, wantWeekStart)
	}

	report, err = rep.GenerateReport("month")
	if err != nil {
		t.Fatalf("GenerateReport(month) error: %v", err)
	}
	wantMonthStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	if !report.Period.Start.Equal(wantMonthStart) {
		t.Errorf("month start = %v, want %v", report.Period.Start, wantMonthStart)
	}

	if _, err := rep.GenerateReport("year"); err == nil {
		t.Error("GenerateReport(year) = nil error, want invalid period")
	}
}

func TestDailyGoalProgress(t *testing.T) {
	store := &mockStore{
		dayTotal: 7200,
		settings: map[string]string{models.SettingDailyGoalMinutes: "240"},
	}
	rep := newTestReporter(store)

	used, goal, percent, err := rep.DailyGoalProgress()
	if err != nil {
		t.Fatalf("DailyGoalProgress() error: %v", err)
	}
	if used != 7200 {
		t.Errorf("used = %d, want 7200", used)
	}
	if goal != 240*60 {
		t.Errorf("goal = %d, want 14400", goal)
	}
	if percent != 50 {
		t.Errorf("percent = %.1f, want 50", percent)
	}
}

func TestDailyGoalProgressBadSetting(t *testing.T) {
	store := &mockStore{
		dayTotal: 100,
		settings: map[string]string{models.SettingDailyGoalMinutes: "a lot"},
	}
	rep := newTestReporter(store)

	_, goal, _, err := rep.DailyGoalProgress()
	if err != nil {
		t.Fatalf("DailyGoalProgress() error: %v", err)
	}
	if goal != 480*60 {
		t.Errorf("goal = %d, want the 480-minute default for a bad setting", goal)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{3599, "59m"},
		{3600, "1h"},
		{5400, "1h30m"},
		{-90, "1m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %s, want %s", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatReportTextEmpty(t *testing.T) {
	rep := newTestReporter(&mockStore{})
	report, err := rep.GenerateReport("day")
	if err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}

	out := rep.FormatReportText(report)
	if !strings.Contains(out, "No activity recorded") {
		t.Errorf("empty report output missing placeholder:\n%s", out)
	}
}

func TestFormatReportJSON(t *testing.T) {
	store := &mockStore{
		summaries: []models.AppSummary{{AppName: "firefox", TotalSeconds: 60}},
	}
	rep := newTestReporter(store)
	report, err := rep.GenerateReport("day")
	if err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}

	out, err := rep.FormatReportJSON(report)
	if err != nil {
		t.Fatalf("FormatReportJSON() error: %v", err)
	}
	if !strings.Contains(out, `"app_name": "firefox"`) {
		t.Errorf("JSON output missing app entry:\n%s", out)
	}
}
