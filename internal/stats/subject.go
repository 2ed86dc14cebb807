package stats

import (
	"math"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/safe"
)

// SubjectTotals sums attempts for one subject.
type SubjectTotals struct {
	Subject   model.Subject
	Attempted float64
	Correct   float64
}

// Accuracy returns the correct fraction.
func (t SubjectTotals) Accuracy() float64 {
	return Accuracy(t.Attempted, t.Correct)
}

// AggregateSubject sums attempted and correct over sessions of one subject.
func AggregateSubject(sessions []model.Session, subject model.Subject) SubjectTotals {
	totals := SubjectTotals{Subject: subject}
	for _, s := range sessions {
		if s.Subject != subject {
			continue
		}
		totals.Attempted += safe.Number(float64(s.Attempted))
		totals.Correct += safe.Number(float64(s.Correct))
	}
	return totals
}

// AggregateAll returns totals for every subject in subject order.
func AggregateAll(sessions []model.Session) []SubjectTotals {
	out := make([]SubjectTotals, 0, len(model.Subjects()))
	for _, subject := range model.Subjects() {
		out = append(out, AggregateSubject(sessions, subject))
	}
	return out
}

// Accuracy returns correct/attempted, or 0 when nothing was attempted.
func Accuracy(attempted, correct float64) float64 {
	if safe.Float(attempted) <= 0 {
		return 0
	}
	return safe.Divide(correct, attempted)
}

// AccuracyPercent returns accuracy as a rounded percentage.
func AccuracyPercent(attempted, correct float64) int {
	return int(math.Round(Accuracy(attempted, correct) * 100))
}

// ProgressScale turns a ratio into a bar fill factor in [0, 1].
func ProgressScale(value, goal float64) float64 {
	f := safe.Divide(value, goal)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
