package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/trackly/internal/model"
)

func TestBuildReport(t *testing.T) {
	now := time.Date(2026, 5, 2, 15, 0, 0, 0, time.Local)
	since := now.AddDate(0, 0, -3)
	snap := model.Snapshot{
		Sessions: []model.Session{
			{Subject: model.Physics, Topic: "Optics", Attempted: 10, Correct: 8, Timestamp: model.MillisOf(now.Add(-time.Hour)),
				Mistakes: model.Mistakes{model.MistakeCalc: 2}},
			{Subject: model.Physics, Topic: "Waves", Attempted: 20, Correct: 4, Timestamp: model.MillisOf(now.AddDate(0, 0, -10)),
				Mistakes: model.Mistakes{model.MistakeConcept: 16}},
			{Subject: model.Maths, Topic: "Limits", Attempted: 6, Correct: 6, Timestamp: model.MillisOf(now.Add(-2 * time.Hour))},
		},
		Targets: []model.Target{
			{ID: "b", Date: "2026-05-03", Text: "Mock", Type: model.TargetTest, Timestamp: 2},
			{ID: "a", Date: "2026-05-02", Text: "Optics DPP", Completed: true, Timestamp: 1},
			{ID: "c", Date: "2026-05-02", Text: "Revise", Timestamp: 3},
		},
		Goals: model.Goals{model.Physics: 40, model.Maths: 6},
		Today: model.DailyLog{model.Physics: 10},
	}
	topics := map[model.Subject][]string{model.Physics: {"Optics", "Kinematics"}}

	report := BuildReport(snap, topics, model.StatsConfig{Since: &since}, now)

	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions after since filter, got %d", len(report.Sessions))
	}
	if report.Subjects[0].Attempted != 10 {
		t.Fatalf("expected filtered physics attempts 10, got %v", report.Subjects[0].Attempted)
	}
	if report.Mistakes.Total != 2 {
		t.Fatalf("expected filtered mistakes total 2, got %v", report.Mistakes.Total)
	}
	phys := report.Heatmap[model.Physics]
	if len(phys) != 3 || phys[2].Topic != "Waves" {
		t.Fatalf("expected all-time heatmap with extra topic, got %+v", phys)
	}
	if report.Goals[0].Done != 20 || report.Goals[0].Scale != 0.5 {
		t.Fatalf("unexpected physics goal progress: %+v", report.Goals[0])
	}
	if report.Goals[2].Scale != 1 {
		t.Fatalf("expected maths goal met, got %+v", report.Goals[2])
	}
	if report.Streak != 1 {
		t.Fatalf("expected streak 1, got %d", report.Streak)
	}
	if len(report.Agenda) != 2 || report.Agenda[0].Targets[0].ID != "c" {
		t.Fatalf("expected pending targets first, got %+v", report.Agenda)
	}

	var buf bytes.Buffer
	if err := RenderSummary(&buf, report); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderHeatmap(&buf, report); err != nil {
		t.Fatalf("render heatmap: %v", err)
	}
	if err := RenderMistakes(&buf, "Mistakes", report.Mistakes, 10); err != nil {
		t.Fatalf("render mistakes: %v", err)
	}
	if err := RenderTrend(&buf, report.Trend, 80, 6, false); err != nil {
		t.Fatalf("render trend: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Physics", "80%", "Kinematics", "untouched", "Calculation", "No tests recorded."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Concept gap") {
		t.Fatalf("expected empty mistake types hidden:\n%s", out)
	}
}
