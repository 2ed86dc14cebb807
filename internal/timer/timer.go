// Package timer implements a deadline-based Pomodoro countdown.
package timer

import (
	"time"

	"github.com/verte-zerg/trackly/internal/model"
)

// Mode is the current block type.
type Mode string

// Timer modes.
const (
	Focus      Mode = "focus"
	ShortBreak Mode = "short"
	LongBreak  Mode = "long"
)

// Label returns a display name for the mode.
func (m Mode) Label() string {
	switch m {
	case ShortBreak:
		return "Short break"
	case LongBreak:
		return "Long break"
	}
	return "Focus"
}

// LongBreakEvery is the number of focus blocks between long breaks.
const LongBreakEvery = 4

// Timer counts down from a wall-clock deadline so time keeps passing while
// the process is not running.
type Timer struct {
	prefs     model.TimerPrefs
	mode      Mode
	cycles    int
	running   bool
	remaining time.Duration
	deadline  time.Time
}

// New returns a paused focus timer.
func New(prefs model.TimerPrefs) *Timer {
	t := &Timer{prefs: prefs, mode: Focus}
	t.remaining = t.Duration(Focus)
	return t
}

// Duration returns the configured length of a mode. Non-positive
// preferences fall back to 25/5/15 minutes.
func (t *Timer) Duration(m Mode) time.Duration {
	var minutes, fallback float64
	switch m {
	case ShortBreak:
		minutes, fallback = t.prefs.ShortBreakMinutes.Float(), 5
	case LongBreak:
		minutes, fallback = t.prefs.LongBreakMinutes.Float(), 15
	default:
		minutes, fallback = t.prefs.FocusMinutes.Float(), 25
	}
	if minutes <= 0 {
		minutes = fallback
	}
	return time.Duration(minutes * float64(time.Minute))
}

// Mode returns the current mode.
func (t *Timer) Mode() Mode {
	return t.mode
}

// Cycles returns the number of completed focus blocks.
func (t *Timer) Cycles() int {
	return t.cycles
}

// Running reports whether the countdown is active.
func (t *Timer) Running() bool {
	return t.running
}

// Start sets the deadline from the remaining time.
func (t *Timer) Start(now time.Time) {
	if t.running {
		return
	}
	if t.remaining <= 0 {
		t.remaining = t.Duration(t.mode)
	}
	t.deadline = now.Add(t.remaining)
	t.running = true
}

// Pause freezes the remaining time.
func (t *Timer) Pause(now time.Time) {
	if !t.running {
		return
	}
	t.remaining = t.Left(now)
	t.running = false
}

// Toggle starts a paused timer or pauses a running one.
func (t *Timer) Toggle(now time.Time) {
	if t.running {
		t.Pause(now)
		return
	}
	t.Start(now)
}

// Left returns the time remaining, never negative.
func (t *Timer) Left(now time.Time) time.Duration {
	if !t.running {
		return t.remaining
	}
	left := t.deadline.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Reset stops the timer and restores the mode's full duration.
func (t *Timer) Reset() {
	t.running = false
	t.remaining = t.Duration(t.mode)
	t.deadline = time.Time{}
}

// Skip ends the current block and moves to the next mode, paused.
func (t *Timer) Skip() {
	if t.mode == Focus {
		t.cycles++
		if t.cycles%LongBreakEvery == 0 {
			t.mode = LongBreak
		} else {
			t.mode = ShortBreak
		}
	} else {
		t.mode = Focus
	}
	t.Reset()
}

// Tick advances to the next mode when a running block reaches zero and
// reports whether that happened.
func (t *Timer) Tick(now time.Time) bool {
	if !t.running || t.Left(now) > 0 {
		return false
	}
	t.Skip()
	return true
}

// Progress returns the elapsed fraction of the current block.
func (t *Timer) Progress(now time.Time) float64 {
	total := t.Duration(t.mode)
	if total <= 0 {
		return 0
	}
	p := 1 - float64(t.Left(now))/float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// State is the persisted form of a timer.
type State struct {
	Mode        Mode         `json:"mode"`
	Cycles      model.Num    `json:"cycles"`
	Running     bool         `json:"running"`
	RemainingMs model.Num    `json:"remainingMs"`
	Deadline    model.Millis `json:"deadline"`
}

// State captures the timer for persistence.
func (t *Timer) State() State {
	s := State{
		Mode:        t.mode,
		Cycles:      model.Num(t.cycles),
		Running:     t.running,
		RemainingMs: model.Num(t.remaining.Milliseconds()),
	}
	if t.running {
		s.Deadline = model.MillisOf(t.deadline)
	}
	return s
}

// Restore rebuilds a timer from saved state. A running timer keeps its
// original deadline so time spent away is counted.
func Restore(prefs model.TimerPrefs, s State) *Timer {
	t := New(prefs)
	switch s.Mode {
	case Focus, ShortBreak, LongBreak:
		t.mode = s.Mode
	}
	if c := s.Cycles.Int(); c > 0 {
		t.cycles = c
	}
	t.remaining = time.Duration(s.RemainingMs.Float()) * time.Millisecond
	if t.remaining <= 0 || t.remaining > t.Duration(t.mode) {
		t.remaining = t.Duration(t.mode)
	}
	if s.Running && s.Deadline > 0 {
		t.running = true
		t.deadline = s.Deadline.Time()
	}
	return t
}
