package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/trackly/internal/model"
)

func TestScoreSubject(t *testing.T) {
	got := ScoreSubject(model.Physics, model.SubjectBreakdown{Correct: 20, Incorrect: 5, Unattempted: 5})
	if got.Accuracy != 0.8 {
		t.Fatalf("expected accuracy 0.8, got %v", got.Accuracy)
	}
	// (80 - 5) / 120
	if want := 75.0 / 120.0 * 100; got.ScorePercent != want {
		t.Fatalf("expected score %v, got %v", want, got.ScorePercent)
	}

	negative := ScoreSubject(model.Maths, model.SubjectBreakdown{Correct: 0, Incorrect: 10})
	if negative.ScorePercent != 0 {
		t.Fatalf("expected negative score clamped to 0, got %v", negative.ScorePercent)
	}
	empty := ScoreSubject(model.Maths, model.SubjectBreakdown{})
	if empty.Accuracy != 0 || empty.ScorePercent != 0 {
		t.Fatalf("expected zero score for empty breakdown, got %+v", empty)
	}
}

func TestTestTrendOrdersAndLimits(t *testing.T) {
	var tests []model.TestResult
	for i, date := range []string{"2026-03-05", "2026-01-10", "2026-02-01", "bad-date"} {
		tests = append(tests, model.TestResult{
			ID:    date,
			Name:  date,
			Date:  date,
			Marks: model.Num(100 + i*10),
			Total: 300,
			Breakdown: map[model.Subject]model.SubjectBreakdown{
				model.Physics: {Correct: 10, Incorrect: 2, Mistakes: model.Mistakes{model.MistakeCalc: 2}},
				model.Maths:   {Correct: 5, Incorrect: 5, Mistakes: model.Mistakes{model.MistakeConcept: 1, model.MistakeCalc: 1}},
			},
		})
	}
	trend := TestTrend(tests, 3)
	var dates []string
	for _, p := range trend.Points {
		dates = append(dates, p.Date)
	}
	if diff := cmp.Diff([]string{"2026-01-10", "2026-02-01", "2026-03-05"}, dates); diff != "" {
		t.Fatalf("unexpected trend order (-want +got):\n%s", diff)
	}
	if trend.Points[2].Overall != 100.0/300.0*100 {
		t.Fatalf("unexpected overall percent %v", trend.Points[2].Overall)
	}
	if trend.Mistakes.Total != 12 || trend.Mistakes.Counts[model.MistakeCalc] != 9 {
		t.Fatalf("unexpected aggregated mistakes: %+v", trend.Mistakes)
	}
	if len(trend.Series()) != 1+len(model.Subjects()) {
		t.Fatalf("expected overall plus per-subject series")
	}

	if all := TestTrend(tests, 50); len(all.Points) != 4 || all.Points[0].Date != "bad-date" {
		t.Fatalf("expected window capped and malformed date sorted first, got %+v", all.Points)
	}
}

func TestReallocate(t *testing.T) {
	cases := []struct {
		total int
		want  []float64
	}{
		{75, []float64{25, 25, 25}},
		{76, []float64{26, 25, 25}},
		{77, []float64{26, 26, 25}},
		{-4, []float64{0, 0, 0}},
	}
	for _, tc := range cases {
		got := Reallocate(tc.total, nil)
		for i, subject := range model.Subjects() {
			if q := got[subject].Questions(); q != tc.want[i] {
				t.Fatalf("total %d: %s has %v questions, want %v", tc.total, subject, q, tc.want[i])
			}
		}
	}
}

func TestReallocateKeepsAnsweredFloor(t *testing.T) {
	current := map[model.Subject]model.SubjectBreakdown{
		model.Physics:   {Correct: 30, Incorrect: 5, Unattempted: 0, Mistakes: model.Mistakes{model.MistakeRead: 5}},
		model.Chemistry: {Correct: 10, Incorrect: 2, Unattempted: 20},
	}
	got := Reallocate(60, current)
	phys := got[model.Physics]
	if phys.Unattempted != 0 || phys.Questions() != 35 {
		t.Fatalf("expected physics floor of 35 answered, got %+v", phys)
	}
	if phys.Mistakes[model.MistakeRead] != 5 {
		t.Fatalf("expected mistakes preserved, got %+v", phys.Mistakes)
	}
	chem := got[model.Chemistry]
	if chem.Unattempted != 8 {
		t.Fatalf("expected chemistry unattempted 8, got %v", chem.Unattempted)
	}
	if got[model.Maths].Unattempted != 20 {
		t.Fatalf("expected maths all unattempted, got %+v", got[model.Maths])
	}
}
