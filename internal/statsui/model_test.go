package statsui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
)

type fakeSource struct {
	snap model.Snapshot
}

func (f fakeSource) Snapshot(context.Context) model.Snapshot {
	return f.snap
}

func sampleSnapshot(now time.Time) model.Snapshot {
	today := stats.LocalDateKey(now)
	return model.Snapshot{
		Sessions: []model.Session{
			{ID: "a", Subject: model.Physics, Topic: "Optics", Attempted: 30, Correct: 6, Timestamp: model.MillisOf(now)},
			{ID: "b", Subject: model.Maths, Topic: "Limits", Attempted: 60, Correct: 50, Timestamp: model.MillisOf(now)},
		},
		Tests: []model.TestResult{
			{ID: "t1", Name: "Mock 1", Date: "2026-01-10", Marks: 150, Total: 300},
		},
		Targets: []model.Target{
			{ID: "x", Date: today, Text: "Revise optics", Type: model.TargetTask},
			{ID: "y", Date: today, Text: "Full mock", Type: model.TargetTest, Completed: true},
		},
		Goals: model.Goals{model.Physics: 30, model.Chemistry: 30, model.Maths: 30},
	}
}

func TestTopicRowsFollowSyllabus(t *testing.T) {
	now := time.Now()
	topics := map[model.Subject][]string{model.Physics: {"Kinematics", "Optics"}}
	m := NewModel(fakeSource{snap: sampleSnapshot(now)}, topics, model.StatsConfig{Subject: model.Physics})
	rows := m.topicTable.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 physics rows, got %d", len(rows))
	}
	if rows[0][1] != "Kinematics" || rows[0][2] != "untouched" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][1] != "Optics" || rows[1][2] != "needs work" || rows[1][4] != "20%" {
		t.Fatalf("unexpected second row: %v", rows[1])
	}
}

func TestApplyFilter(t *testing.T) {
	m := NewModel(fakeSource{}, nil, model.StatsConfig{})
	m.filterInputs[0].SetValue("chem")
	m.filterInputs[1].SetValue("2026-02-01")
	m.filterInputs[2].SetValue("5")
	if err := m.applyFilter(); err != nil {
		t.Fatalf("apply filter: %v", err)
	}
	if m.cfg.Subject != model.Chemistry || m.cfg.Since == nil || m.cfg.TrendWindow != 5 {
		t.Fatalf("unexpected config: %+v", m.cfg)
	}

	m.filterInputs[2].SetValue("11")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected trend window above the cap to fail")
	}
	m.filterInputs[2].SetValue("3")
	m.filterInputs[1].SetValue("01/02/2026")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected bad since date to fail")
	}
}

func TestTrendWindowSteps(t *testing.T) {
	if got := nextTrendWindow(0); got != stats.MaxTrendTests {
		t.Fatalf("expected unset window to stay at cap, got %d", got)
	}
	if got := prevTrendWindow(0); got != stats.MaxTrendTests-1 {
		t.Fatalf("expected step down from cap, got %d", got)
	}
	if got := prevTrendWindow(1); got != 1 {
		t.Fatalf("expected floor at 1, got %d", got)
	}
	if got := nextTrendWindow(4); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestRenderPlannerMarksToday(t *testing.T) {
	now := time.Now()
	r := stats.BuildReport(sampleSnapshot(now), nil, model.StatsConfig{}, now)
	out := renderPlanner(r)
	if !strings.Contains(out, "(today)") || !strings.Contains(out, "[ ] Revise optics") || !strings.Contains(out, "[x]") {
		t.Fatalf("unexpected planner output:\n%s", out)
	}
	if !strings.Contains(out, "(test)") {
		t.Fatalf("expected test targets to be labelled:\n%s", out)
	}
	if got := renderPlanner(stats.Report{}); !strings.Contains(got, "No targets") {
		t.Fatalf("expected empty planner message, got %q", got)
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	now := time.Now()
	m := NewModel(fakeSource{snap: sampleSnapshot(now)}, nil, model.StatsConfig{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	for i := range m.tabs {
		view := m.View()
		if lines := strings.Count(view, "\n") + 1; lines != 40 {
			t.Fatalf("tab %s: expected 40 lines, got %d", m.tabs[i], lines)
		}
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
	}
	if m.activeTab != tabOverview {
		t.Fatalf("expected tabs to wrap around, got %d", m.activeTab)
	}
	if !strings.Contains(renderOverview(m.report, 100), "Daily goals") {
		t.Fatalf("expected goal progress in overview")
	}
}

func TestTruncateLineUsesDisplayWidth(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"Optics", 10, "Optics"},
		{"Electrostatics", 8, "Elect..."},
		{"Kinematics", 2, "Ki"},
		{"光学と波動", 7, "光学..."},
	}
	for _, tc := range cases {
		if got := truncateLine(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncateLine(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
