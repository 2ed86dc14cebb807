// Package statsui provides the Bubble Tea dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/trackly/internal/model"
	"github.com/verte-zerg/trackly/internal/stats"
)

const (
	tabOverview = iota
	tabTopics
	tabMistakes
	tabTests
	tabPlanner
)

const (
	plotHeight = 10
	barWidth   = 24
)

// Source supplies the data the dashboard renders.
type Source interface {
	Snapshot(ctx context.Context) model.Snapshot
}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	doneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Strikethrough(true)
	todayStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// Model implements the Bubble Tea dashboard UI.
type Model struct {
	source Source
	topics map[model.Subject][]string
	cfg    model.StatsConfig
	now    func() time.Time

	report stats.Report
	errMsg string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	topicTable  table.Model
	topicLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a dashboard model.
func NewModel(src Source, topics map[model.Subject][]string, cfg model.StatsConfig) *Model {
	m := &Model{
		source: src,
		topics: topics,
		cfg:    cfg,
		now:    time.Now,
		tabs:   []string{"Overview", "Topics", "Mistakes", "Tests", "Planner"},
	}
	m.initInputs()
	m.topicTable = newTopicTable()
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabTopics {
			m.topicTable.Focus()
		} else {
			m.topicTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=", "+":
			m.cfg.TrendWindow = nextTrendWindow(m.cfg.TrendWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.TrendWindow = prevTrendWindow(m.cfg.TrendWindow)
			m.refreshReport()
			return m, nil
		case "r":
			m.refreshReport()
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabTopics {
				m.topicTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabTopics {
				m.topicTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabTopics {
				var cmd tea.Cmd
				m.topicTable, cmd = m.topicTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Subject: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Trend window: "),
	}
	m.setInputsFromConfig()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	m.filterInputs[0].SetValue(string(m.cfg.Subject))
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format(stats.DateLayout))
	} else {
		m.filterInputs[1].SetValue("")
	}
	m.filterInputs[2].SetValue(strconv.Itoa(trendWindow(m.cfg.TrendWindow)))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setTopicTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabTopics {
		m.topicTable.Focus()
	} else {
		m.topicTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	subject := "all"
	if m.cfg.Subject != "" {
		subject = string(m.cfg.Subject)
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(stats.DateLayout)
	}
	summary := fmt.Sprintf("Settings: subject=%s  since=%s  trend=%d tests", subject, since, trendWindow(m.cfg.TrendWindow))
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Trend: -/=  Reload: r  Settings: /  Quit: q")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabTopics {
		if len(m.topicTable.Rows()) == 0 {
			return fitLines("No topics found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.topicTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	snap := m.source.Snapshot(context.Background())
	m.report = stats.BuildReport(snap, m.topics, m.cfg, m.now())
	m.errMsg = ""
	rows := topicRows(m.report)
	m.topicTable.SetRows(rows)
	m.topicLayout.rowCount = len(rows)
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.topicLayout.width = 0
	m.setTopicTableSize(width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabMistakes].SetContent(renderMistakes(m.report))
	m.viewports[tabTests].SetContent(renderTests(m.report, width))
	m.viewports[tabPlanner].SetContent(renderPlanner(m.report))
}

func renderOverview(r stats.Report, width int) string {
	cards := renderSummaryCards(r, width)
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, r); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	goals := renderGoals(r.Goals)
	return strings.TrimRight(cards+"\n\n"+buf.String()+goals, "\n")
}

func renderSummaryCards(r stats.Report, width int) string {
	var attempted, correct float64
	for _, s := range r.Subjects {
		attempted += s.Attempted
		correct += s.Correct
	}
	today := 0.0
	for _, g := range r.Goals {
		today += g.Done
	}
	cards := []string{
		metricCard("Sessions", strconv.Itoa(len(r.Sessions))),
		metricCard("Questions", fmt.Sprintf("%.0f", attempted)),
		metricCard("Accuracy", fmt.Sprintf("%d%%", stats.AccuracyPercent(attempted, correct))),
		metricCard("Streak", fmt.Sprintf("%d days", r.Streak)),
		metricCard("Today", fmt.Sprintf("%.0f questions", today)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderGoals(goals []stats.GoalProgress) string {
	lines := []string{"Daily goals"}
	for _, g := range goals {
		lines = append(lines, fmt.Sprintf("%-10s %s %.0f/%.0f", g.Subject, stats.Bar(g.Scale, barWidth), g.Done, g.Goal))
	}
	return strings.Join(lines, "\n")
}

func renderMistakes(r stats.Report) string {
	var buf bytes.Buffer
	if err := stats.RenderMistakes(&buf, "Practice mistakes", r.Mistakes, barWidth); err != nil {
		return fmt.Sprintf("Failed to render mistakes: %v", err)
	}
	if len(r.Trend.Points) > 0 {
		title := fmt.Sprintf("Test mistakes (last %d tests)", len(r.Trend.Points))
		if err := stats.RenderMistakes(&buf, title, r.Trend.Mistakes, barWidth); err != nil {
			return fmt.Sprintf("Failed to render mistakes: %v", err)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderTests(r stats.Report, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderTrend(&buf, r.Trend, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render test trend: %v", err)
	}
	if len(r.Trend.Points) == 0 {
		return strings.TrimRight(buf.String(), "\n")
	}
	lines := []string{strings.TrimRight(buf.String(), "\n"), ""}
	for i := len(r.Trend.Points) - 1; i >= 0; i-- {
		p := r.Trend.Points[i]
		parts := []string{fmt.Sprintf("%s  %-20s %5.1f%%", p.Date, truncateLine(p.Name, 20), p.Overall)}
		for _, subject := range model.Subjects() {
			parts = append(parts, fmt.Sprintf("%s %.0f%%", subject.Short(), p.Subjects[subject]))
		}
		lines = append(lines, strings.Join(parts, "  "))
	}
	return strings.Join(lines, "\n")
}

func renderPlanner(r stats.Report) string {
	if len(r.Agenda) == 0 {
		return "No targets scheduled. Add one with `trackly target add`."
	}
	var lines []string
	for _, day := range r.Agenda {
		header := day.Date
		if day.Date == r.Today {
			header = todayStyle.Render(day.Date + " (today)")
		}
		lines = append(lines, header)
		for _, t := range day.Targets {
			box := "[ ]"
			text := t.Text
			if t.Completed {
				box = "[x]"
				text = doneStyle.Render(text)
			}
			kind := ""
			if t.Type == model.TargetTest {
				kind = " (test)"
			}
			lines = append(lines, fmt.Sprintf("  %s %s%s", box, text, kind))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func topicColumns() []table.Column {
	return []table.Column{
		{Title: "Subject", Width: 10},
		{Title: "Topic", Width: 28},
		{Title: "Status", Width: 11},
		{Title: "Attempted", Width: 9},
		{Title: "Accuracy", Width: 8},
	}
}

func topicRows(r stats.Report) []table.Row {
	var rows []table.Row
	for _, subject := range model.Subjects() {
		cells, ok := r.Heatmap[subject]
		if !ok {
			continue
		}
		for _, c := range cells {
			rows = append(rows, table.Row{
				string(subject),
				c.Topic,
				c.Bucket.String(),
				fmt.Sprintf("%.0f", c.Attempted),
				fmt.Sprintf("%d%%", stats.AccuracyPercent(c.Attempted, c.Correct)),
			})
		}
	}
	return rows
}

func newTopicTable() table.Model {
	t := table.New(
		table.WithColumns(topicColumns()),
		table.WithHeight(1),
	)
	t.SetStyles(topicTableStyles())
	return t
}

func (m *Model) setTopicTableSize(width, height int) {
	viewportHeight := max(1, height-1)
	if m.topicLayout.width == width && m.topicLayout.height == viewportHeight {
		return
	}
	m.topicLayout.width = width
	m.topicLayout.height = viewportHeight
	m.topicTable.SetWidth(width)
	m.topicTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustTopicTableHeight(height)
	if m.topicLayout.height != viewportHeight {
		m.topicLayout.height = viewportHeight
		m.topicTable.SetHeight(viewportHeight)
	}
}

func topicTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) adjustTopicTableHeight(bodyHeight int) int {
	target := max(1, bodyHeight)
	height := m.topicTable.Height()
	viewHeight := lipgloss.Height(m.topicTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.topicTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.topicTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	var subject model.Subject
	if raw := strings.TrimSpace(m.filterInputs[0].Value()); raw != "" && !strings.EqualFold(raw, "all") {
		parsed, err := model.ParseSubject(raw)
		if err != nil {
			return err
		}
		subject = parsed
	}

	sinceInput := strings.TrimSpace(m.filterInputs[1].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation(stats.DateLayout, sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	windowInput := strings.TrimSpace(m.filterInputs[2].Value())
	window := 0
	if windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil || parsed < 1 || parsed > stats.MaxTrendTests {
			return fmt.Errorf("invalid trend window (use 1-%d)", stats.MaxTrendTests)
		}
		window = parsed
	}

	m.cfg = model.StatsConfig{
		Subject:     subject,
		Since:       since,
		TrendWindow: window,
	}
	return nil
}

func trendWindow(n int) int {
	if n <= 0 || n > stats.MaxTrendTests {
		return stats.MaxTrendTests
	}
	return n
}

func nextTrendWindow(n int) int {
	n = trendWindow(n)
	if n >= stats.MaxTrendTests {
		return stats.MaxTrendTests
	}
	return n + 1
}

func prevTrendWindow(n int) int {
	n = trendWindow(n)
	if n <= 1 {
		return 1
	}
	return n - 1
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// truncateLine shortens s to width display cells, marking the cut with "...".
func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
