// Package timerui provides the Bubble Tea focus timer screen.
package timerui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/trackly/internal/stats"
	"github.com/verte-zerg/trackly/internal/timer"
)

// StateStore persists timer state between runs.
type StateStore interface {
	Persist(ctx context.Context, key string, v any) error
}

// StateKey is the storage key for timer state.
const StateKey = "trackly_timer_state"

type tickMsg time.Time

var (
	modeStyles = map[timer.Mode]lipgloss.Style{
		timer.Focus:      lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
		timer.ShortBreak: lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true),
		timer.LongBreak:  lipgloss.NewStyle().Foreground(lipgloss.Color("#1890FF")).Bold(true),
	}
	clockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea timer UI.
type Model struct {
	timer *timer.Timer
	store StateStore
	log   *zap.Logger
	now   func() time.Time

	ticking bool
	notice  string
	errMsg  string

	width  int
	height int
}

// NewModel wraps a timer, usually restored from saved state.
func NewModel(t *timer.Timer, st StateStore, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	return &Model{timer: t, store: st, log: log, now: time.Now}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.timer.Running() {
		m.ticking = true
		return tick()
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.timer.Running() {
			m.ticking = false
			return m, nil
		}
		mode := m.timer.Mode()
		if m.timer.Tick(m.now()) {
			m.notice = fmt.Sprintf("%s finished. Press space to start %s.", mode.Label(), strings.ToLower(m.timer.Mode().Label()))
			m.log.Info("timer block finished", zap.String("mode", string(mode)), zap.Int("cycles", m.timer.Cycles()))
			m.save()
			m.ticking = false
			return m, nil
		}
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.save()
			return m, tea.Quit
		case " ", "enter":
			m.timer.Toggle(m.now())
			m.notice = ""
			m.save()
			return m, m.ensureTicking()
		case "r":
			m.timer.Reset()
			m.notice = ""
			m.save()
			return m, nil
		case "s":
			m.timer.Skip()
			m.notice = fmt.Sprintf("Skipped to %s.", strings.ToLower(m.timer.Mode().Label()))
			m.save()
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) ensureTicking() tea.Cmd {
	if !m.timer.Running() || m.ticking {
		return nil
	}
	m.ticking = true
	return tick()
}

func (m *Model) save() {
	if m.store == nil {
		return
	}
	if err := m.store.Persist(context.Background(), StateKey, m.timer.State()); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
}

// View implements tea.Model.
func (m *Model) View() string {
	now := m.now()
	mode := m.timer.Mode()
	status := "paused"
	if m.timer.Running() {
		status = "running"
	}
	lines := []string{
		modeStyles[mode].Render(mode.Label()),
		"",
		clockStyle.Render(FormatClock(m.timer.Left(now))),
		stats.Bar(m.timer.Progress(now), 30),
		"",
		mutedStyle.Render(fmt.Sprintf("%s · %d focus blocks done", status, m.timer.Cycles())),
	}
	if m.notice != "" {
		lines = append(lines, "", m.notice)
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	body := strings.Join(lines, "\n")
	footer := footerStyle.Render("space: start/pause  r: reset  s: skip  q: quit")
	if m.width == 0 || m.height < 3 {
		return body + "\n\n" + footer
	}
	content := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	return content + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

// FormatClock renders a duration as MM:SS, rounding partial seconds up.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
