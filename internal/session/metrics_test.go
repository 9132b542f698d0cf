package session

import (
	"testing"

	"github.com/verte-zerg/tempotype/internal/model"
)

func TestCountErrors(t *testing.T) {
	cases := []struct {
		typed, ref string
		want       int
	}{
		{"", "abc", 0},
		{"teh", "the", 2},
		{"abc", "abc", 0},
		{"abcd", "abc", 1},
		{"xbcdef", "abc", 4},
		{"ذهب", "ذهب", 0},
	}
	for _, tc := range cases {
		if got := CountErrors([]rune(tc.typed), []rune(tc.ref)); got != tc.want {
			t.Fatalf("CountErrors(%q, %q) = %d, want %d", tc.typed, tc.ref, got, tc.want)
		}
	}
}

func TestCountWords(t *testing.T) {
	if got := CountWords("  the  cat\tsat \n"); got != 3 {
		t.Fatalf("expected 3 words, got %d", got)
	}
	if got := CountWords("   "); got != 0 {
		t.Fatalf("expected 0 words, got %d", got)
	}
}

func TestAccuracyPercentBounds(t *testing.T) {
	for chars := 0; chars <= 20; chars++ {
		for errs := 0; errs <= chars+5; errs++ {
			acc := AccuracyPercent(chars, errs)
			if acc < 0 || acc > 100 {
				t.Fatalf("accuracy out of range for chars=%d errs=%d: %d", chars, errs, acc)
			}
		}
	}
	if got := AccuracyPercent(0, 0); got != 100 {
		t.Fatalf("expected 100 for no chars, got %d", got)
	}
	if got := AccuracyPercent(3, 2); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
	if got := AccuracyPercent(8, 1); got != 88 {
		t.Fatalf("expected 87.5 to round up to 88, got %d", got)
	}
}

func TestWordsPerMinute(t *testing.T) {
	if got := WordsPerMinute(3, 60); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := WordsPerMinute(45, 90); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
	if got := WordsPerMinute(10, 0); got != 0 {
		t.Fatalf("expected 0 for zero duration, got %d", got)
	}
}

func TestScore(t *testing.T) {
	if got := Score(50, 90, model.DifficultyEasy); got != 45 {
		t.Fatalf("expected 45, got %d", got)
	}
	if got := Score(50, 90, model.DifficultyMedium); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}
