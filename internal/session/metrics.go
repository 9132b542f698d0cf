package session

import (
	"math"
	"strings"

	"github.com/verte-zerg/tempotype/internal/model"
)

// CountErrors compares typed against reference rune by rune. Every rune
// typed past the end of reference is an error.
func CountErrors(typed, reference []rune) int {
	n := len(typed)
	if len(reference) < n {
		n = len(reference)
	}
	errs := 0
	for i := 0; i < n; i++ {
		if typed[i] != reference[i] {
			errs++
		}
	}
	if len(typed) > len(reference) {
		errs += len(typed) - len(reference)
	}
	return errs
}

// CountWords counts maximal runs of non-whitespace.
func CountWords(typed string) int {
	return len(strings.Fields(typed))
}

// WordsPerMinute divides words by the nominal duration in minutes.
func WordsPerMinute(words, durationSeconds int) int {
	if durationSeconds <= 0 || words <= 0 {
		return 0
	}
	return roundHalfUp(float64(words) * 60 / float64(durationSeconds))
}

// AccuracyPercent is the rounded share of correct characters, clamped to
// [0, 100]. No characters means 100.
func AccuracyPercent(chars, errs int) int {
	if chars <= 0 {
		return 100
	}
	acc := roundHalfUp(100 * float64(chars-errs) / float64(chars))
	if acc < 0 {
		return 0
	}
	if acc > 100 {
		return 100
	}
	return acc
}

// Score weights speed by accuracy with a bonus for harder texts.
func Score(wpm, accuracy int, difficulty model.Difficulty) int {
	bonus := 0.0
	switch difficulty {
	case model.DifficultyHard:
		bonus = 0.2
	case model.DifficultyMedium:
		bonus = 0.1
	}
	return roundHalfUp(float64(wpm) * (float64(accuracy) / 100) * (1 + bonus))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
