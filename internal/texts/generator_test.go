package texts

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/tempotype/internal/model"
)

func TestGeneratorWordCounts(t *testing.T) {
	g := NewGenerator([]string{"alpha", "beta", "gamma"}, GeneratorOptions{CapsPct: 1, PunctPct: 1})
	cases := map[model.Difficulty]int{
		model.DifficultyEasy:   12,
		model.DifficultyMedium: 20,
		model.DifficultyHard:   30,
	}
	for d, want := range cases {
		text, err := g.Next(context.Background(), d, model.LanguageEnglish)
		if err != nil {
			t.Fatalf("Next(%s): %v", d, err)
		}
		if got := len(strings.Fields(text.Body)); got != want {
			t.Fatalf("%s: expected %d words, got %d", d, want, got)
		}
		if text.Difficulty != d || text.Language != model.LanguageEnglish {
			t.Fatalf("unexpected tags: %+v", text)
		}
	}
}

func TestGeneratorEasyIsPlain(t *testing.T) {
	g := NewGenerator([]string{"alpha", "beta"}, GeneratorOptions{CapsPct: 1, PunctPct: 1})
	text, err := g.Next(context.Background(), model.DifficultyEasy, model.LanguageEnglish)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if text.Body != strings.ToLower(text.Body) || strings.ContainsAny(text.Body, DefaultPunctSet) {
		t.Fatalf("expected plain lowercase words, got %q", text.Body)
	}
}

func TestGeneratorUniqueIDs(t *testing.T) {
	g := NewGenerator([]string{"word"}, GeneratorOptions{})
	a, _ := g.Next(context.Background(), model.DifficultyHard, model.LanguageEnglish)
	b, _ := g.Next(context.Background(), model.DifficultyHard, model.LanguageEnglish)
	if a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q twice", a.ID)
	}
}

func TestGeneratorEmptyWordList(t *testing.T) {
	_, err := NewGenerator(nil, GeneratorOptions{}).Next(context.Background(), model.DifficultyEasy, model.LanguageEnglish)
	if !errors.Is(err, model.ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestApplyCapsAndPunct(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	if got := applyCaps(rnd, "élan", 1); got != "Élan" {
		t.Fatalf("expected capitalized word, got %q", got)
	}
	if got := applyCaps(rnd, "word", 0); got != "word" {
		t.Fatalf("expected unchanged word, got %q", got)
	}
	if got := applyPunct(rnd, "word", 1, []rune{'!'}); got != "word!" {
		t.Fatalf("expected punctuation, got %q", got)
	}
	if got := applyPunct(rnd, "word", 1, nil); got != "word" {
		t.Fatalf("expected unchanged word, got %q", got)
	}
}

func TestLoadWordsFiltersEnglish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("apple\nBanana\n\ncafé\n  pear  \nx1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	words, err := LoadWords(path, model.LanguageEnglish)
	if err != nil {
		t.Fatalf("LoadWords: %v", err)
	}
	if strings.Join(words, ",") != "apple,pear" {
		t.Fatalf("unexpected words: %v", words)
	}

	all, err := LoadWords(path, model.LanguageSpanish)
	if err != nil {
		t.Fatalf("LoadWords: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 words without filtering, got %v", all)
	}
}

func TestLoadWordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadWords(path, model.LanguageEnglish); err == nil {
		t.Fatalf("expected error for empty list")
	}
}
