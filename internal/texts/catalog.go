// Package texts supplies reference texts for typing sessions.
package texts

import (
	"context"
	_ "embed" // Built-in catalog.
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/tempotype/internal/model"
)

//go:embed catalog.toml
var builtinCatalog string

type catalogFile struct {
	Texts []model.ReferenceText `toml:"texts"`
}

// Catalog picks random texts with a fallback chain when the requested
// combination is missing.
type Catalog struct {
	mu      sync.RWMutex
	builtin []model.ReferenceText
	texts   []model.ReferenceText

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewCatalog builds a catalog over the given texts.
func NewCatalog(texts []model.ReferenceText) *Catalog {
	c := &Catalog{
		builtin: append([]model.ReferenceText(nil), texts...),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.texts = c.builtin
	return c
}

// Builtin returns a catalog of the embedded texts.
func Builtin() (*Catalog, error) {
	texts, err := decode(builtinCatalog)
	if err != nil {
		return nil, fmt.Errorf("failed to decode built-in catalog: %w", err)
	}
	return NewCatalog(texts), nil
}

// LoadFile reads a user catalog. A missing file is not an error.
func LoadFile(path string) ([]model.ReferenceText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	texts, err := decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}
	return texts, nil
}

func decode(data string) ([]model.ReferenceText, error) {
	var file catalogFile
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, err
	}
	out := make([]model.ReferenceText, 0, len(file.Texts))
	for i, t := range file.Texts {
		if t.Body == "" {
			continue
		}
		if t.Language == "" {
			t.Language = model.DefaultLanguage
		}
		difficulty, err := model.ParseDifficulty(string(t.Difficulty))
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		language, err := model.ParseLanguage(string(t.Language))
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		t.Difficulty = difficulty
		t.Language = language
		if t.ID == "" {
			t.ID = fmt.Sprintf("%s-%s-%d", language, difficulty, i+1)
		}
		out = append(out, t)
	}
	return out, nil
}

// SetExtra replaces the user-supplied texts that sit alongside the
// built-in ones.
func (c *Catalog) SetExtra(extra []model.ReferenceText) {
	merged := make([]model.ReferenceText, 0, len(c.builtin)+len(extra))
	merged = append(merged, c.builtin...)
	merged = append(merged, extra...)
	c.mu.Lock()
	c.texts = merged
	c.mu.Unlock()
}

// List returns texts matching the filters. Empty filters match anything.
func (c *Catalog) List(difficulty model.Difficulty, language model.Language) []model.ReferenceText {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []model.ReferenceText
	for _, t := range c.texts {
		if difficulty != "" && t.Difficulty != difficulty {
			continue
		}
		if language != "" && t.Language != language {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Next picks a text for the combination, falling back to the same
// difficulty in the default language, then any text, then the fallback
// text.
func (c *Catalog) Next(ctx context.Context, difficulty model.Difficulty, language model.Language) (model.ReferenceText, error) {
	if err := ctx.Err(); err != nil {
		return model.ReferenceText{}, err
	}
	candidates := [][2]string{
		{string(difficulty), string(language)},
		{string(difficulty), string(model.DefaultLanguage)},
		{"", ""},
	}
	for _, cand := range candidates {
		pool := c.List(model.Difficulty(cand[0]), model.Language(cand[1]))
		if len(pool) > 0 {
			return pool[c.intn(len(pool))], nil
		}
	}
	return model.FallbackText, nil
}

func (c *Catalog) intn(n int) int {
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.rnd.Intn(n)
}
