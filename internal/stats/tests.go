package stats

import (
	"sort"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/safe"
)

// MaxTrendTests caps the number of tests in a trend view.
const MaxTrendTests = 10

const (
	marksPerCorrect   = 4
	marksPerIncorrect = 1
)

// SubjectScore summarizes one subject of one test.
type SubjectScore struct {
	Subject      model.Subject
	Accuracy     float64
	ScorePercent float64
}

// ScoreSubject computes accuracy over attempted questions and the +4/-1
// score as a percentage of the maximum, floored at 0.
func ScoreSubject(subject model.Subject, b model.SubjectBreakdown) SubjectScore {
	correct := safe.Number(float64(b.Correct))
	incorrect := safe.Number(float64(b.Incorrect))
	unattempted := safe.Number(float64(b.Unattempted))
	score := safe.Divide(correct*marksPerCorrect-incorrect*marksPerIncorrect, (correct+incorrect+unattempted)*marksPerCorrect)
	return SubjectScore{
		Subject:      subject,
		Accuracy:     safe.Divide(correct, correct+incorrect),
		ScorePercent: safe.NonNegative(score) * 100,
	}
}

// OverallPercent returns marks as a percentage of total.
func OverallPercent(t model.TestResult) float64 {
	return safe.Divide(safe.Number(float64(t.Marks)), safe.Number(float64(t.Total))) * 100
}

// TestPoint is one test in a trend series.
type TestPoint struct {
	ID       string
	Name     string
	Date     string
	Overall  float64
	Subjects map[model.Subject]float64
}

// Trend is the recent-tests time series plus their combined mistakes.
type Trend struct {
	Points   []TestPoint
	Mistakes Distribution
}

// Series returns the overall and per-subject percentages as plot series.
func (t Trend) Series() []Series {
	overall := make([]float64, len(t.Points))
	for i, p := range t.Points {
		overall[i] = p.Overall
	}
	out := []Series{{Name: "Overall", Values: overall}}
	for _, subject := range model.Subjects() {
		values := make([]float64, len(t.Points))
		for i, p := range t.Points {
			values[i] = p.Subjects[subject]
		}
		out = append(out, Series{Name: string(subject), Values: values})
	}
	return out
}

// SortTestsByDate returns a copy ordered by date then timestamp, oldest first.
func SortTestsByDate(tests []model.TestResult) []model.TestResult {
	out := append([]model.TestResult(nil), tests...)
	sort.SliceStable(out, func(i, j int) bool {
		di := ParseDateKey(out[i].Date)
		dj := ParseDateKey(out[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// TestTrend builds the trend over the most recent n tests (1..MaxTrendTests).
func TestTrend(tests []model.TestResult, n int) Trend {
	if n <= 0 || n > MaxTrendTests {
		n = MaxTrendTests
	}
	sorted := SortTestsByDate(tests)
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	trend := Trend{Points: make([]TestPoint, 0, len(sorted))}
	var mistakes []model.Mistakes
	for _, t := range sorted {
		point := TestPoint{
			ID:       t.ID,
			Name:     t.Name,
			Date:     t.Date,
			Overall:  OverallPercent(t),
			Subjects: map[model.Subject]float64{},
		}
		for _, subject := range model.Subjects() {
			b := t.Breakdown[subject]
			point.Subjects[subject] = ScoreSubject(subject, b).ScorePercent
			mistakes = append(mistakes, b.Mistakes)
		}
		trend.Points = append(trend.Points, point)
	}
	trend.Mistakes = MergeMistakes(mistakes...)
	return trend
}

// Reallocate spreads total questions across subjects: floor(total/3) each,
// one extra for the first total%3 subjects. A subject never drops below its
// answered count; unattempted absorbs the difference.
func Reallocate(total int, breakdown map[model.Subject]model.SubjectBreakdown) map[model.Subject]model.SubjectBreakdown {
	if total < 0 {
		total = 0
	}
	subjects := model.Subjects()
	base := total / len(subjects)
	extra := total % len(subjects)
	out := make(map[model.Subject]model.SubjectBreakdown, len(subjects))
	for i, subject := range subjects {
		share := base
		if i < extra {
			share++
		}
		b := breakdown[subject]
		correct := safe.NonNegative(float64(b.Correct))
		incorrect := safe.NonNegative(float64(b.Incorrect))
		answered := correct + incorrect
		subjectTotal := float64(share)
		if answered > subjectTotal {
			subjectTotal = answered
		}
		out[subject] = model.SubjectBreakdown{
			Correct:     model.Num(correct),
			Incorrect:   model.Num(incorrect),
			Unattempted: model.Num(subjectTotal - answered),
			Mistakes:    b.Mistakes.Clone(),
		}
	}
	return out
}
