package coach

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func sampleReport() stats.Report {
	now := time.Date(2026, 4, 2, 12, 0, 0, 0, time.Local)
	snap := model.Snapshot{
		Sessions: []model.Session{
			{Subject: model.Physics, Topic: "Optics", Attempted: 40, Correct: 10, Mistakes: model.Mistakes{model.MistakeConcept: 30}, Timestamp: model.MillisOf(now)},
			{Subject: model.Maths, Topic: "Limits", Attempted: 20, Correct: 18, Mistakes: model.Mistakes{model.MistakeCalc: 2}, Timestamp: model.MillisOf(now)},
		},
		Tests: []model.TestResult{{
			Name: "Mock 3", Date: "2026-03-30", Marks: 120, Total: 300,
			Breakdown: map[model.Subject]model.SubjectBreakdown{
				model.Physics: {Correct: 10, Incorrect: 10, Unattempted: 5, Mistakes: model.Mistakes{model.MistakePanic: 10}},
			},
		}},
	}
	return stats.BuildReport(snap, nil, model.StatsConfig{}, now)
}

func TestAdviseParsesFencedJSON(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"bottleneckTitle\":\"Optics concepts\",\"analysis\":\"Concept gaps dominate.\",\"temperament\":\"Stay calm.\",\"actionPlan\":[\"Re-read ray optics\",\"Do 20 PYQs\"]}\n```"}
	c := New(gen, zaptest.NewLogger(t))
	got, err := c.Advise(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("advise: %v", err)
	}
	want := Advice{
		BottleneckTitle: "Optics concepts",
		Analysis:        "Concept gaps dominate.",
		Temperament:     "Stay calm.",
		ActionPlan:      []string{"Re-read ray optics", "Do 20 PYQs"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected advice (-want +got):\n%s", diff)
	}
	for _, needle := range []string{"Physics: 40 attempted, 10 correct, 25% accuracy", "Physics / Optics", "Concept gap: 30", "Mock 3", "Time pressure: 10"} {
		if !strings.Contains(gen.prompt, needle) {
			t.Fatalf("prompt missing %q:\n%s", needle, gen.prompt)
		}
	}
}

func TestAdviseWithoutData(t *testing.T) {
	c := New(&fakeGenerator{}, nil)
	if _, err := c.Advise(context.Background(), stats.Report{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestAdviseWrapsGeneratorError(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := New(&fakeGenerator{err: boom}, nil)
	if _, err := c.Advise(context.Background(), sampleReport()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
}

func TestParseAdvice(t *testing.T) {
	if _, err := ParseAdvice("I cannot help with that."); err == nil {
		t.Fatalf("expected error without JSON")
	}
	if _, err := ParseAdvice(`{"actionPlan":["x"]}`); err == nil {
		t.Fatalf("expected error when title and analysis are missing")
	}
	got, err := ParseAdvice("Sure! {\"bottleneckTitle\":\"Speed\",\"analysis\":\"Too slow.\"} Good luck.")
	if err != nil || got.BottleneckTitle != "Speed" {
		t.Fatalf("expected prose-wrapped JSON to parse, got %+v err=%v", got, err)
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
