package stats

import (
	"testing"

	"github.com/verte-zerg/trackly/internal/model"
)

func TestMistakeDistributionSumsKnownTypes(t *testing.T) {
	sessions := []model.Session{
		{Mistakes: model.Mistakes{model.MistakeCalc: 2, model.MistakeConcept: 1}},
		{Mistakes: model.Mistakes{model.MistakeCalc: 3, "luck": 7}},
		{},
	}
	d := MistakeDistribution(sessions)
	if d.Total != 6 {
		t.Fatalf("expected total 6, got %v", d.Total)
	}
	if d.Counts[model.MistakeCalc] != 5 || d.Counts[model.MistakeConcept] != 1 {
		t.Fatalf("unexpected counts: %v", d.Counts)
	}
	var sum float64
	for _, s := range sessions {
		sum += s.Mistakes.Sum()
	}
	if sum != d.Total {
		t.Fatalf("distribution total %v differs from per-session sum %v", d.Total, sum)
	}
}

func TestVisibleHidesEmptyTypesOnceDataExists(t *testing.T) {
	d := MergeMistakes(model.Mistakes{model.MistakeRead: 1, model.MistakePanic: 4})
	bars := d.Visible()
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Type != model.MistakePanic || bars[1].Type != model.MistakeRead {
		t.Fatalf("unexpected ranking: %+v", bars)
	}
	if bars[0].Share != 0.8 {
		t.Fatalf("expected share 0.8, got %v", bars[0].Share)
	}
}

func TestVisibleShowsAllTypesWithoutData(t *testing.T) {
	bars := MergeMistakes().Visible()
	if len(bars) != len(model.MistakeTypes()) {
		t.Fatalf("expected all %d types, got %d", len(model.MistakeTypes()), len(bars))
	}
	for i, b := range bars {
		if b.Count != 0 || b.Type != model.MistakeTypes()[i] {
			t.Fatalf("unexpected bar %d: %+v", i, b)
		}
	}
}
