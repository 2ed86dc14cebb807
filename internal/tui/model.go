// Package tui provides the Bubble Tea session logging interface.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/trackly/internal/model"
	statsPkg "github.com/verte-zerg/trackly/internal/stats"
	"github.com/verte-zerg/trackly/internal/wizard"
)

// SessionStore records sessions.
type SessionStore interface {
	AddSession(ctx context.Context, s model.Session) (model.Session, error)
	Sessions() []model.Session
}

const (
	fieldSubject = iota
	fieldTopic
	fieldAttempted
	fieldCorrect
	fieldCount
)

// Model implements the Bubble Tea logging UI.
type Model struct {
	store  SessionStore
	log    *zap.Logger
	topics map[model.Subject][]string
	now    func() time.Time

	flow       *wizard.Flow
	subjectIdx int
	inputs     []textinput.Model
	field      int
	topicIdx   int
	mistakeIdx int

	status string
	errMsg string
	saved  int

	width  int
	height int

	todayAttempted float64
	todayCorrect   float64
	todaySessions  int
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a logging TUI model. topics feeds topic completion.
func NewModel(st SessionStore, log *zap.Logger, topics map[model.Subject][]string, subject model.Subject) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{
		store:  st,
		log:    log,
		topics: topics,
		now:    time.Now,
	}
	for i, s := range model.Subjects() {
		if s == subject {
			m.subjectIdx = i
		}
	}
	m.initInputs()
	m.resetFlow()
	m.loadFooterStats()
	return m
}

// Saved returns the number of sessions stored during this run.
func (m *Model) Saved() int {
	return m.saved
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.flow.Step() {
		case wizard.StepMistakes:
			return m.updateMistakes(msg)
		case wizard.StepReview:
			return m.updateReview(msg)
		default:
			return m.updateCounts(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.flow.Step() {
	case wizard.StepMistakes:
		body = m.renderMistakes()
	case wizard.StepReview:
		body = m.renderReview()
	default:
		body = m.renderCounts()
	}
	if m.errMsg != "" {
		body += "\n\n" + errorStyle.Render(m.errMsg)
	} else if m.status != "" {
		body += "\n\n" + okStyle.Render(m.status)
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	content := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return content + "\n" + footerLine
}

func (m *Model) initInputs() {
	topic := textinput.New()
	topic.Prompt = "Topic: "
	topic.CharLimit = 80
	attempted := textinput.New()
	attempted.Prompt = "Attempted: "
	attempted.CharLimit = 5
	correct := textinput.New()
	correct.Prompt = "Correct: "
	correct.CharLimit = 5
	m.inputs = []textinput.Model{topic, attempted, correct}
}

func (m *Model) subject() model.Subject {
	return model.Subjects()[m.subjectIdx]
}

func (m *Model) resetFlow() {
	m.flow = wizard.New()
	m.flow.Subject = m.subject()
	m.mistakeIdx = 0
	m.topicIdx = -1
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.setField(fieldTopic)
}

func (m *Model) setField(field int) tea.Cmd {
	if field < 0 {
		field = fieldCount - 1
	}
	if field >= fieldCount {
		field = 0
	}
	m.field = field
	var cmd tea.Cmd
	for i := range m.inputs {
		if i+1 == field {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) updateCounts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		return m, m.setField(m.field + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setField(m.field - 1)
	case tea.KeyCtrlT:
		m.cycleTopic()
		return m, nil
	case tea.KeyEnter:
		m.status = ""
		if err := m.readCounts(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		if err := m.flow.Next(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		return m, nil
	}
	if m.field == fieldSubject {
		switch msg.String() {
		case "left", "h":
			m.moveSubject(-1)
		case "right", "l", " ":
			m.moveSubject(1)
		}
		return m, nil
	}
	idx := m.field - 1
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	if idx > 0 {
		m.inputs[idx].SetValue(digitsOnly(m.inputs[idx].Value()))
	}
	return m, cmd
}

func (m *Model) moveSubject(delta int) {
	count := len(model.Subjects())
	m.subjectIdx = (m.subjectIdx + delta + count) % count
	m.flow.Subject = m.subject()
	m.topicIdx = -1
}

func (m *Model) cycleTopic() {
	topics := m.topics[m.subject()]
	if len(topics) == 0 {
		return
	}
	m.topicIdx = (m.topicIdx + 1) % len(topics)
	m.inputs[0].SetValue(topics[m.topicIdx])
	m.inputs[0].CursorEnd()
}

func (m *Model) readCounts() error {
	attempted, err := parseCount(m.inputs[1].Value(), "attempted")
	if err != nil {
		return err
	}
	correct, err := parseCount(m.inputs[2].Value(), "correct")
	if err != nil {
		return err
	}
	m.flow.Subject = m.subject()
	m.flow.Topic = m.inputs[0].Value()
	m.flow.Attempted = attempted
	m.flow.Correct = correct
	return nil
}

func (m *Model) updateMistakes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	types := model.MistakeTypes()
	switch msg.String() {
	case "esc":
		m.flow.Back()
		m.errMsg = ""
		return m, m.setField(m.field)
	case "up", "k":
		m.mistakeIdx = (m.mistakeIdx - 1 + len(types)) % len(types)
	case "down", "j", "tab":
		m.mistakeIdx = (m.mistakeIdx + 1) % len(types)
	case "+", "=", "right", "l":
		m.flow.Increment(types[m.mistakeIdx])
	case "-", "_", "left", "h":
		m.flow.Decrement(types[m.mistakeIdx])
	case "enter":
		return m.save()
	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(types) {
			m.mistakeIdx = n - 1
			m.flow.Increment(types[m.mistakeIdx])
		}
	}
	return m, nil
}

func (m *Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.flow.Back()
		return m, m.setField(m.field)
	case tea.KeyEnter:
		return m.save()
	}
	return m, nil
}

func (m *Model) save() (tea.Model, tea.Cmd) {
	if !m.flow.CanSave() {
		m.errMsg = fmt.Sprintf("Tag every incorrect answer: %d of %d tagged", m.flow.Tagged(), m.flow.Incorrect())
		return m, nil
	}
	s, err := m.flow.Session()
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	stored, err := m.store.AddSession(context.Background(), s)
	if err != nil {
		m.log.Error("failed to save session", zap.Error(err))
		m.errMsg = fmt.Sprintf("failed to save session: %v", err)
		return m, nil
	}
	m.saved++
	m.errMsg = ""
	m.status = fmt.Sprintf("Saved %s · %s: %d/%d", stored.Subject, stored.Topic, stored.Correct.Int(), stored.Attempted.Int())
	if statsPkg.SessionDateKey(stored) == statsPkg.LocalDateKey(m.now()) {
		m.todayAttempted += stored.Attempted.Float()
		m.todayCorrect += stored.Correct.Float()
		m.todaySessions++
	}
	m.resetFlow()
	return m, nil
}

func (m *Model) renderCounts() string {
	lines := []string{titleStyle.Render("Log practice session"), ""}
	subjects := make([]string, 0, len(model.Subjects()))
	for i, s := range model.Subjects() {
		if i == m.subjectIdx {
			subjects = append(subjects, selectedStyle.Render("["+string(s)+"]"))
		} else {
			subjects = append(subjects, mutedStyle.Render(" "+string(s)+" "))
		}
	}
	label := "Subject: "
	if m.field == fieldSubject {
		label = selectedStyle.Render("Subject: ")
	}
	lines = append(lines, label+strings.Join(subjects, " "))
	for _, input := range m.inputs {
		lines = append(lines, input.View())
	}
	lines = append(lines, "", mutedStyle.Render("tab: next field  ←/→: subject  ctrl+t: syllabus topic  enter: continue  esc: quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderMistakes() string {
	header := fmt.Sprintf("Why were %d answers wrong? (%s · %s)", m.flow.Incorrect(), m.flow.Subject, strings.TrimSpace(m.flow.Topic))
	lines := []string{titleStyle.Render(header), ""}
	for i, t := range model.MistakeTypes() {
		line := fmt.Sprintf("%d. %-16s %3d", i+1, t.Label(), m.flow.Count(t))
		if i == m.mistakeIdx {
			lines = append(lines, selectedStyle.Render("> "+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	lines = append(lines, "")
	tally := fmt.Sprintf("Tagged %d/%d", m.flow.Tagged(), m.flow.Incorrect())
	if m.flow.CanSave() {
		lines = append(lines, okStyle.Render(tally+" · enter: save"))
	} else {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%s · %d remaining", tally, m.flow.Remaining())))
	}
	lines = append(lines, mutedStyle.Render("↑/↓: select  +/-: adjust  1-6: add  esc: back"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderReview() string {
	lines := []string{
		titleStyle.Render("All correct!"),
		"",
		fmt.Sprintf("%s · %s: %d/%d", m.flow.Subject, strings.TrimSpace(m.flow.Topic), m.flow.Correct, m.flow.Attempted),
		"",
		mutedStyle.Render("enter: save  esc: back"),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) loadFooterStats() {
	today := statsPkg.LocalDateKey(m.now())
	for _, s := range statsPkg.SessionsOn(m.store.Sessions(), today) {
		m.todayAttempted += s.Attempted.Float()
		m.todayCorrect += s.Correct.Float()
		m.todaySessions++
	}
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Today %d sessions", m.todaySessions),
		fmt.Sprintf("%.0f questions", m.todayAttempted),
		fmt.Sprintf("%d%% accuracy", statsPkg.AccuracyPercent(m.todayAttempted, m.todayCorrect)),
	}
	if m.saved > 0 {
		segments = append(segments, fmt.Sprintf("Saved this run %d", m.saved))
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}

func parseCount(value, name string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a whole number >= 0", name)
	}
	return n, nil
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
