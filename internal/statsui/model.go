// Package statsui provides the Bubble Tea progress screen.
package statsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tempotype/internal/model"
	"github.com/verte-zerg/tempotype/internal/progress"
	"github.com/verte-zerg/tempotype/internal/report"
)

const (
	chartHeight = 10
	loadTimeout = 5 * time.Second
)

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
)

// RecordSource reads a user's history.
type RecordSource interface {
	ListRecords(ctx context.Context, userID string, since *time.Time) ([]model.AnalyticsRecord, error)
}

// Model implements the Bubble Tea progress UI.
type Model struct {
	source RecordSource
	userID string
	since  *time.Time
	loc    *time.Location

	records []model.AnalyticsRecord
	summary progress.Summary
	points  []progress.Point
	errMsg  string

	active   int
	chart    viewport.Model
	pointTab table.Model

	width  int
	height int
}

// NewModel loads the user's records and opens on the given granularity.
func NewModel(source RecordSource, userID string, since *time.Time, g progress.Granularity) *Model {
	m := &Model{
		source:   source,
		userID:   userID,
		since:    since,
		loc:      time.Local,
		chart:    viewport.New(0, 0),
		pointTab: newPointTable(),
	}
	for i, candidate := range progress.Granularities {
		if candidate == g {
			m.active = i
		}
	}
	m.reload()
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
		m.renderContents()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.reload()
			return m, nil
		case "g", "home":
			m.pointTab.GotoTop()
			return m, nil
		case "G", "end":
			m.pointTab.GotoBottom()
			return m, nil
		default:
			var cmd tea.Cmd
			m.pointTab, cmd = m.pointTab.Update(msg)
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
	headerHeight, chartRows, tableHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	parts := []string{header, fitLines(m.chart.View(), m.width, chartRows)}
	if tableHeight > 0 && len(m.points) > 0 {
		parts = append(parts, fitLines(tableMutedStyle.Render(m.pointTab.View()), m.width, tableHeight))
	}
	parts = append(parts, m.renderFooter())
	return strings.Join(parts, "\n")
}

// Granularity returns the selected tab.
func (m *Model) Granularity() progress.Granularity {
	return progress.Granularities[m.active]
}

func (m *Model) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	records, err := m.source.ListRecords(ctx, m.userID, m.since)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load records: %v", err)
		m.records = nil
	} else {
		m.errMsg = ""
		m.records = records
	}
	m.summary = progress.Summarize(m.records)
	m.regroup()
}

func (m *Model) regroup() {
	m.points = progress.AggregateIn(m.records, m.Granularity(), m.loc)
	m.pointTab.SetRows(pointRows(m.points))
	m.pointTab.GotoBottom()
	m.updateLayout()
	m.renderContents()
}

func (m *Model) moveTab(delta int) {
	count := len(progress.Granularities)
	m.active = (m.active + delta + count) % count
	m.regroup()
}

func (m *Model) layoutHeights() (header, chart, tbl int) {
	header = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footer := 1
	body := m.height - header - footer
	if body < 1 {
		body = 1
	}
	if len(m.points) > 0 {
		tbl = minInt(len(m.points)+3, body/3)
	}
	chart = body - tbl
	if chart < 1 {
		chart = 1
	}
	return header, chart, tbl
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, chartRows, tableHeight := m.layoutHeights()
	m.chart.Width = m.width
	m.chart.Height = chartRows
	m.pointTab.SetWidth(m.width)
	m.pointTab.SetHeight(maxInt(3, tableHeight))
}

func (m *Model) renderContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.chart.SetContent(renderOverview(m.summary, m.points, m.Granularity(), width))
}

func renderOverview(summary progress.Summary, points []progress.Point, g progress.Granularity, width int) string {
	if summary.Sessions == 0 {
		return "No sessions recorded yet."
	}
	cards := renderSummaryCards(summary, width)
	if len(points) == 0 {
		return cards + "\n\n" + report.EmptyMessage(g)
	}
	chart := report.Chart(points, report.Options{Width: width, Height: chartHeight, Color: true})
	return strings.TrimRight(cards+"\n\n"+chart+"\n"+report.Legend(true), "\n")
}

func renderSummaryCards(s progress.Summary, width int) string {
	cards := []string{
		metricCard("Sessions", strconv.Itoa(s.Sessions)),
		metricCard("Latest WPM", strconv.Itoa(s.LatestWPM)),
		metricCard("Best WPM", strconv.Itoa(s.BestWPM)),
		metricCard("Avg WPM", strconv.Itoa(s.AverageWPM)),
		metricCard("Avg Acc", strconv.Itoa(s.AverageAccuracy)+"%"),
	}
	if width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func newPointTable() table.Model {
	columns := []table.Column{
		{Title: "Period", Width: 22},
		{Title: "WPM", Width: 5},
		{Title: "Accuracy", Width: 9},
		{Title: "Sessions", Width: 8},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(true))
	t.SetStyles(pointTableStyles())
	return t
}

func pointRows(points []progress.Point) []table.Row {
	rows := make([]table.Row, 0, len(points))
	for _, cells := range report.SeriesRows(points) {
		rows = append(rows, table.Row(cells))
	}
	return rows
}

func pointTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(progress.Granularities))
	for i, g := range progress.Granularities {
		label := strings.ToUpper(g.String()[:1]) + g.String()[1:]
		if i == m.active {
			parts = append(parts, activeNavStyle.Render(label))
		} else {
			parts = append(parts, inactiveNavStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	since := "all time"
	if m.since != nil {
		since = "since " + m.since.Format("2006-01-02")
	}
	info := truncateLine(fmt.Sprintf("User: %s  %s  points: %d", m.userID, since, len(m.points)), m.width)
	return m.renderTabs() + "\n" + headerStyle.Render(info)
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return headerStyle.Render("Granularity: left/right  Scroll: up/down  Reload: r  Quit: q")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
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

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
