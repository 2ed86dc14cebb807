// Package wizard implements the two-step logging flow: counts entry, then
// mistake tagging until every incorrect answer has a cause.
package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/trackly/internal/model"
)

// Step identifies the current screen of the flow.
type Step int

// Flow steps.
const (
	StepCounts Step = iota
	StepMistakes
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepCounts:
		return "counts"
	case StepMistakes:
		return "mistakes"
	case StepReview:
		return "review"
	}
	return "unknown"
}

// ErrInvalidCounts is returned when step one input cannot be accepted.
var ErrInvalidCounts = errors.New("invalid counts")

// ErrUnbalanced is returned when saving with tagged mistakes that do not
// add up to the incorrect count.
var ErrUnbalanced = errors.New("tagged mistakes do not match incorrect answers")

// Flow holds the in-progress entry.
type Flow struct {
	Subject   model.Subject
	Topic     string
	Attempted int
	Correct   int

	step      Step
	incorrect int
	tags      model.Mistakes
}

// New starts a session logging flow.
func New() *Flow {
	return &Flow{step: StepCounts, tags: model.Mistakes{}}
}

// NewTagging starts directly on the tagging step with a known incorrect
// count, as used for a test's per-subject breakdown.
func NewTagging(subject model.Subject, incorrect int) *Flow {
	if incorrect < 0 {
		incorrect = 0
	}
	f := &Flow{Subject: subject, step: StepMistakes, incorrect: incorrect, tags: model.Mistakes{}}
	if incorrect == 0 {
		f.step = StepReview
	}
	return f
}

// Step returns the current step.
func (f *Flow) Step() Step {
	return f.step
}

// Validate checks the step one fields.
func (f *Flow) Validate() error {
	if !f.Subject.Valid() {
		return fmt.Errorf("choose a subject: %w", ErrInvalidCounts)
	}
	if strings.TrimSpace(f.Topic) == "" {
		return fmt.Errorf("topic is required: %w", ErrInvalidCounts)
	}
	if f.Attempted < 0 {
		return fmt.Errorf("attempted must be >= 0: %w", ErrInvalidCounts)
	}
	if f.Correct < 0 || f.Correct > f.Attempted {
		return fmt.Errorf("correct must be between 0 and %d: %w", f.Attempted, ErrInvalidCounts)
	}
	return nil
}

// Next leaves step one. Tagging is skipped when nothing was wrong.
func (f *Flow) Next() error {
	if f.step != StepCounts {
		return nil
	}
	if err := f.Validate(); err != nil {
		return err
	}
	f.incorrect = f.Attempted - f.Correct
	if f.incorrect > 0 {
		f.step = StepMistakes
		return nil
	}
	f.tags = model.Mistakes{}
	f.step = StepReview
	return nil
}

// Back returns to counts entry. Tags are kept.
func (f *Flow) Back() {
	f.step = StepCounts
}

// Incorrect is the number of answers that need a cause.
func (f *Flow) Incorrect() int {
	return f.incorrect
}

// Count returns the tagged count for a type.
func (f *Flow) Count(t model.MistakeType) int {
	return f.tags[t].Int()
}

// Increment tags one more mistake of type t.
func (f *Flow) Increment(t model.MistakeType) {
	if !t.Valid() {
		return
	}
	f.tags[t] = model.Num(f.Count(t) + 1)
}

// SetCount sets the tag count for t directly. Negative counts become 0.
func (f *Flow) SetCount(t model.MistakeType, n int) {
	if !t.Valid() {
		return
	}
	if n < 0 {
		n = 0
	}
	f.tags[t] = model.Num(n)
}

// Decrement removes one tag of type t. Counts never drop below zero.
func (f *Flow) Decrement(t model.MistakeType) {
	if !t.Valid() || f.Count(t) == 0 {
		return
	}
	f.tags[t] = model.Num(f.Count(t) - 1)
}

// Tagged totals all tags.
func (f *Flow) Tagged() int {
	return int(f.tags.Sum())
}

// Remaining is incorrect minus tagged; negative when over-tagged.
func (f *Flow) Remaining() int {
	return f.incorrect - f.Tagged()
}

// CanSave reports whether the entry is complete.
func (f *Flow) CanSave() bool {
	if f.step == StepCounts {
		return false
	}
	return f.Tagged() == f.incorrect
}

// Mistakes returns the non-zero tags.
func (f *Flow) Mistakes() model.Mistakes {
	out := model.Mistakes{}
	for _, t := range model.MistakeTypes() {
		if n := f.tags[t]; n > 0 {
			out[t] = n
		}
	}
	return out
}

// Session builds the record to store.
func (f *Flow) Session() (model.Session, error) {
	if err := f.Validate(); err != nil {
		return model.Session{}, err
	}
	if f.step == StepCounts {
		if err := f.Next(); err != nil {
			return model.Session{}, err
		}
	}
	if !f.CanSave() {
		return model.Session{}, fmt.Errorf("%d tagged, %d incorrect: %w", f.Tagged(), f.incorrect, ErrUnbalanced)
	}
	s := model.Session{
		Subject:   f.Subject,
		Topic:     strings.TrimSpace(f.Topic),
		Attempted: model.Num(f.Attempted),
		Correct:   model.Num(f.Correct),
	}
	if m := f.Mistakes(); len(m) > 0 {
		s.Mistakes = m
	}
	return s, nil
}
