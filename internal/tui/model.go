// Package tui provides the Bubble Tea practice screen.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gen2brain/beeep"

	"github.com/verte-zerg/tempotype/internal/logger"
	"github.com/verte-zerg/tempotype/internal/model"
	"github.com/verte-zerg/tempotype/internal/progress"
	"github.com/verte-zerg/tempotype/internal/session"
)

// ResultStore persists finished sessions and reads back history.
type ResultStore interface {
	InsertResult(ctx context.Context, userID string, result model.SessionResult) (int64, error)
	ListRecords(ctx context.Context, userID string, since *time.Time) ([]model.AnalyticsRecord, error)
}

// Options wires the practice screen to its collaborators.
type Options struct {
	UserID string
	Store  ResultStore
	Texts  session.TextSource
	Notify bool
}

// savedMsg reports the outcome of persisting a result.
type savedMsg struct {
	id     int64
	err    error
	result model.SessionResult
}

const saveTimeout = 5 * time.Second

// Model implements the Bubble Tea practice UI.
type Model struct {
	engine *session.Engine
	clock  *teaClock
	opts   Options
	notify func(title, body string) error

	width  int
	height int

	finished *model.SessionResult
	saving   bool
	saveErr  error
	history  []model.AnalyticsRecord
	summary  progress.Summary
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	resultStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 3)
)

// NewModel constructs the practice UI with a text loaded and the countdown
// idle until the first keystroke.
func NewModel(settings model.Settings, opts Options) *Model {
	m := &Model{
		clock:  &teaClock{},
		opts:   opts,
		notify: notifyDesktop,
	}
	m.engine = session.NewEngine(settings,
		session.WithClock(m.clock),
		session.WithTextSource(opts.Texts),
		session.WithOnComplete(func(r model.SessionResult) { m.finished = &r }),
	)
	m.engine.Start(settings.DurationSeconds, model.ReferenceText{})
	m.loadHistory()
	return m
}

func notifyDesktop(title, body string) error {
	return beeep.Notify(title, body, "")
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
		return m, nil
	case tickMsg:
		fn := m.clock.fire(msg.gen)
		if fn == nil {
			return m, nil
		}
		fn()
		return m, m.afterEngine(m.clock.next(msg.gen))
	case savedMsg:
		m.saving = false
		m.saveErr = msg.err
		if msg.err == nil {
			m.history = append(m.history, model.AnalyticsRecord{
				Timestamp: msg.result.Timestamp,
				WPM:       float64(msg.result.WordsPerMinute),
				Accuracy:  float64(msg.result.AccuracyPercent),
			})
			m.summary = progress.Summarize(m.history)
		}
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return tea.Quit
	case tea.KeyCtrlR:
		m.restart()
		return nil
	case tea.KeyTab:
		s := m.engine.Settings()
		s.DurationSeconds = nextDuration(s.DurationSeconds)
		m.reconfigure(s)
		return nil
	case tea.KeyCtrlD:
		s := m.engine.Settings()
		s.Difficulty = nextDifficulty(s.Difficulty)
		m.reconfigure(s)
		return nil
	case tea.KeyCtrlL:
		s := m.engine.Settings()
		s.Language = nextLanguage(s.Language)
		m.reconfigure(s)
		return nil
	case tea.KeyEnter:
		if m.engine.Phase() == session.PhaseCompleted {
			m.restart()
		}
		return nil
	case tea.KeyBackspace, tea.KeyDelete:
		typed := []rune(m.engine.Snapshot().Typed)
		if len(typed) == 0 {
			return nil
		}
		m.engine.OnInputChanged(string(typed[:len(typed)-1]))
		return m.afterEngine()
	case tea.KeySpace:
		return m.handleRunes([]rune{' '})
	case tea.KeyRunes:
		return m.handleRunes(msg.Runes)
	default:
		return nil
	}
}

// handleRunes feeds runes one at a time so a text completes at its exact
// length even when input arrives in bursts.
func (m *Model) handleRunes(runes []rune) tea.Cmd {
	for _, r := range runes {
		if m.engine.Phase() == session.PhaseCompleted {
			break
		}
		typed := m.engine.Snapshot().Typed
		m.engine.OnInputChanged(typed + string(r))
	}
	return m.afterEngine()
}

func (m *Model) restart() {
	m.engine.Restart()
	m.finished = nil
	m.saveErr = nil
}

func (m *Model) reconfigure(s model.Settings) {
	if err := m.engine.Reconfigure(s); err != nil {
		logger.Warn("rejected settings", "error", err)
		return
	}
	m.finished = nil
	m.saveErr = nil
}

// afterEngine collects the commands an engine call may have produced: the
// first tick of a fresh countdown and the save of a finished session.
func (m *Model) afterEngine(cmds ...tea.Cmd) tea.Cmd {
	cmds = append(cmds, m.clock.pending())
	if m.finished != nil {
		cmds = append(cmds, m.saveCmd(*m.finished))
	}
	return tea.Batch(cmds...)
}

func (m *Model) saveCmd(result model.SessionResult) tea.Cmd {
	m.saving = true
	m.finished = nil
	store, userID := m.opts.Store, m.opts.UserID
	notify := m.opts.Notify
	notifier := m.notify
	return func() tea.Msg {
		var (
			id  int64
			err error
		)
		if store != nil {
			ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			id, err = store.InsertResult(ctx, userID, result)
			cancel()
			if err != nil {
				logger.Error("failed to save result", "user", userID, "error", err)
			}
		}
		if notify && notifier != nil {
			body := fmt.Sprintf("%d WPM · %d%% accuracy", result.WordsPerMinute, result.AccuracyPercent)
			if nerr := notifier("Typing session complete", body); nerr != nil {
				logger.Warn("failed to send notification", "error", nerr)
			}
		}
		return savedMsg{id: id, err: err, result: result}
	}
}

func (m *Model) loadHistory() {
	if m.opts.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	records, err := m.opts.Store.ListRecords(ctx, m.opts.UserID, nil)
	if err != nil {
		logger.Error("failed to load history", "user", m.opts.UserID, "error", err)
		return
	}
	m.history = records
	m.summary = progress.Summarize(records)
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.engine.Snapshot()
	var body string
	if snap.Phase == session.PhaseCompleted {
		body = m.renderResult(snap)
	} else {
		body = m.renderText(snap)
	}
	status := statusStyle.Render(renderStatus(snap))
	footer := m.renderFooter()

	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{status, body, footer}, "\n\n")
	}
	content := lipgloss.JoinVertical(lipgloss.Center, status, "", body)
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	main := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return main + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) renderText(snap session.Snapshot) string {
	reference := []rune(snap.Reference.Body)
	typed := []rune(snap.Typed)
	cursor := -1
	if len(typed) < len(reference) {
		cursor = len(typed)
	}
	glyphs := styleGlyphs(reference, typed, cursor)
	if m.width == 0 {
		return joinGlyphs(glyphs)
	}
	width := int(float64(m.width) * 0.70)
	if width < 1 {
		width = 1
	}
	return lipgloss.NewStyle().Width(width).Render(wrapGlyphs(glyphs, width))
}

func renderStatus(snap session.Snapshot) string {
	s := snap.Settings
	segments := []string{
		formatCountdown(snap.RemainingSeconds),
		fmt.Sprintf("%d WPM", snap.LiveWPM),
		fmt.Sprintf("%d%%", snap.LiveAccuracy),
		fmt.Sprintf("%d errors", snap.Totals.Errors+snap.ErrorCount),
		fmt.Sprintf("%s · %s · %s", s.Difficulty, s.Language, s.Mode),
	}
	if snap.Phase == session.PhaseIdle {
		segments = append(segments, "start typing")
	}
	return strings.Join(segments, "  ")
}

func formatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func (m *Model) renderResult(snap session.Snapshot) string {
	r := snap.Result
	lines := []string{
		fmt.Sprintf("%d WPM", r.WordsPerMinute),
		fmt.Sprintf("Accuracy  %d%%", r.AccuracyPercent),
		fmt.Sprintf("Errors    %d", r.ErrorCount),
		fmt.Sprintf("Texts     %d", r.TextsCompleted),
		fmt.Sprintf("Score     %d", r.Score),
	}
	switch {
	case m.saving:
		lines = append(lines, "", "saving…")
	case m.saveErr != nil:
		lines = append(lines, "", incorrectStyle.Render("not saved: "+m.saveErr.Error()))
	}
	lines = append(lines, "", footerStyle.Render("enter or ctrl+r to go again"))
	return resultStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.summary.Sessions > 0 {
		segments = append(segments,
			fmt.Sprintf("Last %d WPM", m.summary.LatestWPM),
			fmt.Sprintf("Best %d WPM", m.summary.BestWPM),
			fmt.Sprintf("Avg %d WPM · %d%%", m.summary.AverageWPM, m.summary.AverageAccuracy),
		)
	}
	segments = append(segments, "tab time  ^d difficulty  ^l language  ^r restart")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func nextDuration(current int) int {
	for i, d := range model.DurationOptions {
		if d == current {
			return model.DurationOptions[(i+1)%len(model.DurationOptions)]
		}
	}
	for _, d := range model.DurationOptions {
		if d > current {
			return d
		}
	}
	return model.DurationOptions[0]
}

func nextDifficulty(current model.Difficulty) model.Difficulty {
	for i, d := range model.Difficulties {
		if d == current {
			return model.Difficulties[(i+1)%len(model.Difficulties)]
		}
	}
	return model.Difficulties[0]
}

func nextLanguage(current model.Language) model.Language {
	for i, l := range model.Languages {
		if l == current {
			return model.Languages[(i+1)%len(model.Languages)]
		}
	}
	return model.Languages[0]
}
