// Package session measures a single typing attempt under a countdown.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/verte-zerg/tempotype/internal/logger"
	"github.com/verte-zerg/tempotype/internal/model"
)

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// TextSource supplies reference texts for a difficulty and language.
type TextSource interface {
	Next(ctx context.Context, difficulty model.Difficulty, language model.Language) (model.ReferenceText, error)
}

// Snapshot is a read-only view of the live session.
type Snapshot struct {
	Phase            Phase
	Settings         model.Settings
	Reference        model.ReferenceText
	Typed            string
	ErrorCount       int
	RemainingSeconds int
	Totals           model.SessionTotals
	LiveWPM          int
	LiveAccuracy     int
	Result           model.SessionResult
	HasResult        bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the tick source. Defaults to RealClock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithTextSource sets where follow-up texts come from.
func WithTextSource(src TextSource) Option {
	return func(e *Engine) { e.texts = src }
}

// WithNow overrides the wall clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithOnComplete registers a callback fired once per finalized session.
func WithOnComplete(fn func(model.SessionResult)) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// Engine owns one typing attempt at a time. All methods are safe for
// concurrent use; callbacks run after the internal lock is released.
type Engine struct {
	mu         sync.Mutex
	clock      Clock
	texts      TextSource
	now        func() time.Time
	onComplete func(model.SessionResult)

	settings  model.Settings
	reference model.ReferenceText
	refRunes  []rune
	typed     []rune

	phase      Phase
	errorCount int
	remaining  int
	totals     model.SessionTotals
	completed  []string
	startedAt  time.Time
	ticker     Ticker
	tickGen    uint64

	result    model.SessionResult
	hasResult bool
}

// NewEngine builds an idle engine. Call Start or Reconfigure to load a text.
func NewEngine(settings model.Settings, opts ...Option) *Engine {
	e := &Engine{
		clock:    RealClock{},
		now:      time.Now,
		settings: settings,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start resets all counters and loads text with a countdown of
// durationSeconds. Any running ticker is cancelled. An empty text is
// replaced by one from the text source or the fallback text.
func (e *Engine) Start(durationSeconds int, text model.ReferenceText) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if text.Body == "" {
		text = e.fetchText()
	}
	e.startLocked(durationSeconds, text)
}

// Restart starts over with the current settings and a fresh text.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked(e.settings.DurationSeconds, e.fetchText())
}

// Reconfigure applies new settings. Changing settings always performs a
// full reset, even mid-session.
func (e *Engine) Reconfigure(settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = settings
	e.startLocked(settings.DurationSeconds, e.fetchText())
	return nil
}

// OnInputChanged replaces the typed input.
func (e *Engine) OnInputChanged(input string) {
	fire := e.onInputChanged(input)
	fire()
}

func (e *Engine) onInputChanged(input string) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseCompleted {
		return noop
	}
	runes := []rune(input)
	if e.phase == PhaseIdle {
		if len(runes) == 0 {
			return noop
		}
		e.phase = PhaseRunning
		e.startedAt = e.now()
		gen := e.tickGen
		e.ticker = e.clock.Every(time.Second, func() { e.onTickGen(gen) })
	}
	e.typed = runes
	e.errorCount = CountErrors(e.typed, e.refRunes)

	if len(e.refRunes) == 0 || len(e.typed) != len(e.refRunes) {
		return noop
	}
	if e.settings.Mode == model.ModeSingle || e.remaining <= 0 {
		e.fold(true)
		return e.finalizeLocked()
	}
	e.fold(true)
	e.loadLocked(e.fetchText())
	return noop
}

// OnTick advances the countdown by one second. It does nothing unless the
// session is running.
func (e *Engine) OnTick() {
	fire := e.onTick()
	fire()
}

// onTickGen handles a tick from the subscription numbered gen. A callback
// already in flight when its ticker was stopped finds a newer generation
// and is dropped.
func (e *Engine) onTickGen(gen uint64) {
	e.mu.Lock()
	if gen != e.tickGen {
		e.mu.Unlock()
		return
	}
	fire := e.tickLocked()
	e.mu.Unlock()
	fire()
}

func (e *Engine) onTick() func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickLocked()
}

func (e *Engine) tickLocked() func() {
	if e.phase != PhaseRunning {
		return noop
	}
	e.remaining--
	if e.remaining > 0 {
		return noop
	}
	e.remaining = 0
	e.fold(false)
	return e.finalizeLocked()
}

// Finalize ends the session and returns its result. A running session has
// its partial text folded in first. Repeated calls return the same result.
func (e *Engine) Finalize() model.SessionResult {
	e.mu.Lock()
	if e.phase == PhaseRunning {
		e.fold(false)
	}
	fire := e.finalizeLocked()
	result := e.result
	e.mu.Unlock()
	fire()
	return result
}

// Result returns the finalized result, if any.
func (e *Engine) Result() (model.SessionResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result, e.hasResult
}

// Phase reports the current lifecycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Settings returns the active settings.
func (e *Engine) Settings() model.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Snapshot captures the live state for rendering.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		Phase:            e.phase,
		Settings:         e.settings,
		Reference:        e.reference,
		Typed:            string(e.typed),
		ErrorCount:       e.errorCount,
		RemainingSeconds: e.remaining,
		Totals:           e.totals,
		Result:           e.result,
		HasResult:        e.hasResult,
	}
	if e.hasResult {
		snap.LiveWPM = e.result.WordsPerMinute
		snap.LiveAccuracy = e.result.AccuracyPercent
		return snap
	}
	words := e.totals.WordsTyped + CountWords(string(e.typed))
	elapsed := e.settings.DurationSeconds - e.remaining
	snap.LiveWPM = WordsPerMinute(words, elapsed)
	snap.LiveAccuracy = AccuracyPercent(e.totals.Chars+len(e.typed), e.totals.Errors+e.errorCount)
	return snap
}

func (e *Engine) startLocked(durationSeconds int, text model.ReferenceText) {
	e.stopTicker()
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	e.settings.DurationSeconds = durationSeconds
	e.phase = PhaseIdle
	e.remaining = durationSeconds
	e.totals = model.SessionTotals{}
	e.completed = nil
	e.startedAt = time.Time{}
	e.result = model.SessionResult{}
	e.hasResult = false
	e.loadLocked(text)
}

func (e *Engine) loadLocked(text model.ReferenceText) {
	e.reference = text
	e.refRunes = []rune(text.Body)
	e.typed = nil
	e.errorCount = 0
}

func (e *Engine) fetchText() model.ReferenceText {
	if e.texts == nil {
		return model.FallbackText
	}
	text, err := e.texts.Next(context.Background(), e.settings.Difficulty, e.settings.Language)
	if err != nil || text.Body == "" {
		logger.Warn("falling back to default text",
			"difficulty", e.settings.Difficulty, "language", e.settings.Language, "error", err)
		return model.FallbackText
	}
	return text
}

// fold moves the current segment into the session totals.
func (e *Engine) fold(matched bool) {
	e.totals.WordsTyped += CountWords(string(e.typed))
	e.totals.Chars += len(e.typed)
	e.totals.Errors += e.errorCount
	if matched {
		e.totals.TextsCompleted++
		e.completed = append(e.completed, e.reference.ID)
	}
	e.typed = nil
	e.errorCount = 0
}

func (e *Engine) finalizeLocked() func() {
	if e.hasResult {
		return noop
	}
	e.stopTicker()
	e.phase = PhaseCompleted

	now := e.now()
	elapsed := 0
	if !e.startedAt.IsZero() {
		elapsed = int(now.Sub(e.startedAt) / time.Second)
	}
	wpm := WordsPerMinute(e.totals.WordsTyped, e.settings.DurationSeconds)
	acc := AccuracyPercent(e.totals.Chars, e.totals.Errors)
	e.result = model.SessionResult{
		WordsPerMinute:  wpm,
		AccuracyPercent: acc,
		ErrorCount:      e.totals.Errors,
		Timestamp:       now,
		DurationSeconds: e.settings.DurationSeconds,
		ElapsedSeconds:  elapsed,
		TextsCompleted:  e.totals.TextsCompleted,
		CompletedTexts:  append([]string(nil), e.completed...),
		Score:           Score(wpm, acc, e.settings.Difficulty),
		Settings:        e.settings,
	}
	e.hasResult = true

	if e.onComplete == nil {
		return noop
	}
	cb := e.onComplete
	result := e.result
	return func() { cb(result) }
}

func (e *Engine) stopTicker() {
	e.tickGen++
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	e.ticker = nil
}

func noop() {}
