// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Subject is one of the tracked exam subjects.
type Subject string

// Tracked subjects, in display and allocation order.
const (
	Physics   Subject = "Physics"
	Chemistry Subject = "Chemistry"
	Maths     Subject = "Maths"
)

// Subjects returns every subject in iteration order.
func Subjects() []Subject {
	return []Subject{Physics, Chemistry, Maths}
}

// Valid reports whether s is a known subject.
func (s Subject) Valid() bool {
	switch s {
	case Physics, Chemistry, Maths:
		return true
	}
	return false
}

// Short returns an abbreviated label.
func (s Subject) Short() string {
	switch s {
	case Physics:
		return "Phy"
	case Chemistry:
		return "Chem"
	case Maths:
		return "Math"
	}
	return string(s)
}

// ParseSubject resolves user input to a subject, ignoring case.
func ParseSubject(input string) (Subject, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "physics", "phy", "p":
		return Physics, nil
	case "chemistry", "chem", "c":
		return Chemistry, nil
	case "maths", "math", "mathematics", "m":
		return Maths, nil
	}
	return "", fmt.Errorf("unknown subject %q (use Physics, Chemistry or Maths)", input)
}

// MistakeType categorizes why a question went wrong.
type MistakeType string

// Mistake categories.
const (
	MistakeConcept   MistakeType = "concept"
	MistakeFormula   MistakeType = "formula"
	MistakeCalc      MistakeType = "calc"
	MistakeRead      MistakeType = "read"
	MistakePanic     MistakeType = "panic"
	MistakeOverthink MistakeType = "overthink"
)

// MistakeTypes returns every mistake type in canonical order.
func MistakeTypes() []MistakeType {
	return []MistakeType{MistakeConcept, MistakeFormula, MistakeCalc, MistakeRead, MistakePanic, MistakeOverthink}
}

// Valid reports whether m is a known mistake type.
func (m MistakeType) Valid() bool {
	for _, t := range MistakeTypes() {
		if t == m {
			return true
		}
	}
	return false
}

// Label returns a human-readable name.
func (m MistakeType) Label() string {
	switch m {
	case MistakeConcept:
		return "Concept gap"
	case MistakeFormula:
		return "Formula recall"
	case MistakeCalc:
		return "Calculation"
	case MistakeRead:
		return "Misread"
	case MistakePanic:
		return "Time pressure"
	case MistakeOverthink:
		return "Overthinking"
	}
	return string(m)
}

// ParseMistakeType resolves a mistake key, ignoring case.
func ParseMistakeType(input string) (MistakeType, error) {
	m := MistakeType(strings.ToLower(strings.TrimSpace(input)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mistake type %q", input)
	}
	return m, nil
}

// Mistakes maps mistake types to tagged counts.
type Mistakes map[MistakeType]Num

// Sum totals the known mistake types; unknown keys are ignored.
func (m Mistakes) Sum() float64 {
	var total float64
	for _, t := range MistakeTypes() {
		total += m[t].Float()
	}
	return total
}

// Clone returns a copy of the map.
func (m Mistakes) Clone() Mistakes {
	if m == nil {
		return nil
	}
	out := make(Mistakes, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Session is one logged practice block.
type Session struct {
	ID        string   `json:"id"`
	Subject   Subject  `json:"subject"`
	Topic     string   `json:"topic"`
	Attempted Num      `json:"attempted"`
	Correct   Num      `json:"correct"`
	Mistakes  Mistakes `json:"mistakes,omitempty"`
	Timestamp Millis   `json:"timestamp"`
}

// Temperament records how a test felt.
type Temperament string

// Temperament values.
const (
	TemperamentCalm      Temperament = "calm"
	TemperamentAnxious   Temperament = "anxious"
	TemperamentRushed    Temperament = "rushed"
	TemperamentFatigued  Temperament = "fatigued"
	TemperamentConfident Temperament = "confident"
)

// ParseTemperament validates a temperament value. Empty input means calm.
func ParseTemperament(input string) (Temperament, error) {
	t := Temperament(strings.ToLower(strings.TrimSpace(input)))
	switch t {
	case "":
		return TemperamentCalm, nil
	case TemperamentCalm, TemperamentAnxious, TemperamentRushed, TemperamentFatigued, TemperamentConfident:
		return t, nil
	}
	return "", fmt.Errorf("unknown temperament %q", input)
}

// SubjectBreakdown holds per-subject counts for one test.
type SubjectBreakdown struct {
	Correct     Num      `json:"correct"`
	Incorrect   Num      `json:"incorrect"`
	Unattempted Num      `json:"unattempted"`
	Mistakes    Mistakes `json:"mistakes,omitempty"`
}

// Questions returns the subject's question count.
func (b SubjectBreakdown) Questions() float64 {
	return b.Correct.Float() + b.Incorrect.Float() + b.Unattempted.Float()
}

// TestResult is a recorded mock test.
type TestResult struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Date        string                       `json:"date"`
	Marks       Num                          `json:"marks"`
	Total       Num                          `json:"total"`
	Temperament Temperament                  `json:"temperament"`
	Breakdown   map[Subject]SubjectBreakdown `json:"breakdown"`
	Timestamp   Millis                       `json:"timestamp"`
}

// TargetType distinguishes plain tasks from scheduled tests.
type TargetType string

// Target types.
const (
	TargetTask TargetType = "task"
	TargetTest TargetType = "test"
)

// Target is a calendar to-do item.
type Target struct {
	ID        string     `json:"id"`
	Date      string     `json:"date"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Timestamp Millis     `json:"timestamp"`
	Type      TargetType `json:"type"`
}

// Goals holds per-subject daily question goals.
type Goals map[Subject]Num

// DailyLog holds quick-log counters for one day.
type DailyLog map[Subject]Num

// TimerPrefs holds focus timer durations in minutes.
type TimerPrefs struct {
	FocusMinutes      Num `json:"focus"`
	ShortBreakMinutes Num `json:"shortBreak"`
	LongBreakMinutes  Num `json:"longBreak"`
}

// Settings collects persisted user preferences.
type Settings struct {
	Theme string
	Pro   bool
	Timer TimerPrefs
}

// StatsConfig defines filters and options for dashboard output.
type StatsConfig struct {
	Subject     Subject
	Since       *time.Time
	TrendWindow int
}

// Snapshot is a read-only copy of every persisted collection.
type Snapshot struct {
	Sessions []Session
	Tests    []TestResult
	Targets  []Target
	Goals    Goals
	Today    DailyLog
	Settings Settings
}
