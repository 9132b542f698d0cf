// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidSettings    = errors.New("invalid settings")
	ErrUnknownGranularity = errors.New("unknown granularity")
	ErrNoText             = errors.New("no reference text available")
)

// Difficulty tags a reference text.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the supported tiers in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty normalizes a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "e":
		return DifficultyEasy, nil
	case "medium", "m":
		return DifficultyMedium, nil
	case "hard", "h":
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidSettings, s)
	}
}

// Language tags a reference text.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
	LanguageArabic  Language = "ar"
)

// DefaultLanguage is used when a text is missing for the requested language.
const DefaultLanguage = LanguageEnglish

// Languages lists the built-in languages.
var Languages = []Language{LanguageEnglish, LanguageSpanish, LanguageArabic}

// ParseLanguage accepts both codes and long names.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return LanguageEnglish, nil
	case "es", "spanish", "español":
		return LanguageSpanish, nil
	case "ar", "arabic":
		return LanguageArabic, nil
	default:
		return "", fmt.Errorf("%w: unknown language %q", ErrInvalidSettings, s)
	}
}

// Mode selects whether texts are chained until the countdown ends.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// ParseMode normalizes a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return ModeSingle, nil
	case "multi", "":
		return ModeMulti, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, s)
	}
}

// ReferenceText is the immutable text a user reproduces.
type ReferenceText struct {
	ID         string     `json:"id" toml:"id"`
	Body       string     `json:"text" toml:"text"`
	Difficulty Difficulty `json:"difficulty" toml:"difficulty"`
	Language   Language   `json:"language" toml:"language"`
	Source     string     `json:"source,omitempty" toml:"source"`
}

// Settings configures a typing session.
type Settings struct {
	DurationSeconds int
	Difficulty      Difficulty
	Language        Language
	Mode            Mode
}

// DurationOptions are the selectable countdown lengths in seconds.
var DurationOptions = []int{30, 60, 90, 120, 180, 300}

// DefaultDurationFor returns the suggested countdown for a difficulty.
func DefaultDurationFor(d Difficulty) int {
	switch d {
	case DifficultyMedium:
		return 90
	case DifficultyHard:
		return 120
	default:
		return 60
	}
}

// Validate checks the settings for obvious mistakes.
func (s Settings) Validate() error {
	if s.DurationSeconds < 0 {
		return fmt.Errorf("%w: duration must be >= 0", ErrInvalidSettings)
	}
	if _, err := ParseDifficulty(string(s.Difficulty)); err != nil {
		return err
	}
	if _, err := ParseLanguage(string(s.Language)); err != nil {
		return err
	}
	if s.Mode != ModeSingle && s.Mode != ModeMulti {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, s.Mode)
	}
	return nil
}

// SessionTotals accumulates folded text segments within one session.
type SessionTotals struct {
	WordsTyped     int
	Chars          int
	Errors         int
	TextsCompleted int
}

// SessionResult captures a finalized typing session.
type SessionResult struct {
	WordsPerMinute  int
	AccuracyPercent int
	ErrorCount      int
	Timestamp       time.Time
	DurationSeconds int
	ElapsedSeconds  int
	TextsCompleted  int
	CompletedTexts  []string
	Score           int
	Settings        Settings
}

// AnalyticsRecord is one historical result as read back from the store.
type AnalyticsRecord struct {
	Timestamp time.Time `json:"timestamp"`
	WPM       float64   `json:"wpm"`
	Accuracy  float64   `json:"accuracy"`
}

// StoredResult is a persisted session with its row id.
type StoredResult struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"userId"`
	CreatedAt       time.Time  `json:"createdAt"`
	WordsPerMinute  int        `json:"wpm"`
	AccuracyPercent int        `json:"accuracy"`
	ErrorCount      int        `json:"errorCount"`
	DurationSeconds int        `json:"durationSeconds"`
	TextsCompleted  int        `json:"textsCompleted"`
	Score           int        `json:"score"`
	Difficulty      Difficulty `json:"difficulty,omitempty"`
	Language        Language   `json:"language,omitempty"`
	Mode            Mode       `json:"mode,omitempty"`
}

// FallbackText is used when no text source can supply anything.
var FallbackText = ReferenceText{
	ID:         "fallback",
	Body:       "The quick brown fox jumps over the lazy dog.",
	Difficulty: DifficultyEasy,
	Language:   LanguageEnglish,
	Source:     "Pangram",
}
