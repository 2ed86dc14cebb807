package wizard

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/trackly/internal/model"
)

func TestNextValidatesCounts(t *testing.T) {
	cases := []struct {
		name string
		flow Flow
	}{
		{"no subject", Flow{Topic: "Optics", Attempted: 1}},
		{"blank topic", Flow{Subject: model.Physics, Topic: "  ", Attempted: 1}},
		{"negative attempted", Flow{Subject: model.Physics, Topic: "Optics", Attempted: -1}},
		{"correct above attempted", Flow{Subject: model.Physics, Topic: "Optics", Attempted: 3, Correct: 4}},
		{"negative correct", Flow{Subject: model.Physics, Topic: "Optics", Attempted: 3, Correct: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := New()
			f.Subject, f.Topic, f.Attempted, f.Correct = tc.flow.Subject, tc.flow.Topic, tc.flow.Attempted, tc.flow.Correct
			if err := f.Next(); !errors.Is(err, ErrInvalidCounts) {
				t.Fatalf("expected ErrInvalidCounts, got %v", err)
			}
			if f.Step() != StepCounts {
				t.Fatalf("expected to stay on counts, got %s", f.Step())
			}
		})
	}
}

func TestAllCorrectSkipsTagging(t *testing.T) {
	f := New()
	f.Subject, f.Topic, f.Attempted, f.Correct = model.Maths, "Limits", 10, 10
	if err := f.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if f.Step() != StepReview || !f.CanSave() {
		t.Fatalf("expected review step with save enabled, got %s", f.Step())
	}
	s, err := f.Session()
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if s.Mistakes != nil {
		t.Fatalf("expected no mistakes, got %v", s.Mistakes)
	}
}

func TestSaveRequiresExactTagging(t *testing.T) {
	f := New()
	f.Subject, f.Topic, f.Attempted, f.Correct = model.Chemistry, " Equilibrium ", 12, 9
	if err := f.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if f.Step() != StepMistakes || f.Incorrect() != 3 {
		t.Fatalf("expected tagging for 3 incorrect, got step=%s incorrect=%d", f.Step(), f.Incorrect())
	}
	f.Increment(model.MistakeCalc)
	f.Increment(model.MistakeCalc)
	if f.CanSave() {
		t.Fatalf("save must stay disabled while under-tagged")
	}
	if _, err := f.Session(); !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced, got %v", err)
	}
	f.Increment(model.MistakeRead)
	f.Increment(model.MistakeRead)
	if f.CanSave() || f.Remaining() != -1 {
		t.Fatalf("save must stay disabled while over-tagged, remaining=%d", f.Remaining())
	}
	f.Decrement(model.MistakeRead)
	if !f.CanSave() {
		t.Fatalf("expected save once tags match")
	}
	s, err := f.Session()
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	want := model.Session{
		Subject:   model.Chemistry,
		Topic:     "Equilibrium",
		Attempted: 12,
		Correct:   9,
		Mistakes:  model.Mistakes{model.MistakeCalc: 2, model.MistakeRead: 1},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("unexpected session (-want +got):\n%s", diff)
	}
}

func TestDecrementStopsAtZero(t *testing.T) {
	f := NewTagging(model.Physics, 2)
	f.Decrement(model.MistakePanic)
	f.Decrement(model.MistakePanic)
	if f.Count(model.MistakePanic) != 0 || f.Tagged() != 0 {
		t.Fatalf("expected zero tags, got %d", f.Tagged())
	}
	f.Increment("luck")
	if f.Tagged() != 0 {
		t.Fatalf("unknown types must be ignored")
	}
	f.SetCount(model.MistakeConcept, -3)
	if f.Count(model.MistakeConcept) != 0 {
		t.Fatalf("expected negative set to clamp at zero")
	}
	f.SetCount(model.MistakeConcept, 2)
	if !f.CanSave() {
		t.Fatalf("expected save after tagging both incorrect answers")
	}
}

func TestTaggingWithNoIncorrect(t *testing.T) {
	f := NewTagging(model.Maths, 0)
	if f.Step() != StepReview || !f.CanSave() {
		t.Fatalf("expected immediate review, got %s", f.Step())
	}
	f.SetCount(model.MistakeCalc, 3)
	if f.CanSave() {
		t.Fatalf("tags without incorrect answers must block saving")
	}
	f.SetCount(model.MistakeCalc, 0)
	if !f.CanSave() || len(f.Mistakes()) != 0 {
		t.Fatalf("expected save enabled once tags are cleared")
	}
}

func TestBackKeepsTags(t *testing.T) {
	f := New()
	f.Subject, f.Topic, f.Attempted, f.Correct = model.Physics, "Optics", 4, 2
	if err := f.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	f.Increment(model.MistakeFormula)
	f.Back()
	if f.Step() != StepCounts || f.CanSave() {
		t.Fatalf("expected counts step with save disabled")
	}
	f.Correct = 3
	if err := f.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if !f.CanSave() {
		t.Fatalf("expected kept tag to cover the single incorrect answer")
	}
}
