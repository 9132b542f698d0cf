package texts

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/verte-zerg/tempotype/internal/model"
)

// GeneratorOptions tunes generated texts.
type GeneratorOptions struct {
	Language model.Language
	CapsPct  float64
	PunctPct float64
	PunctSet string
}

// DefaultPunctSet is used when GeneratorOptions.PunctSet is empty.
const DefaultPunctSet = ".,!?;:"

// Generator builds reference texts from a word list. Easy texts are plain
// lowercase words; capitals and punctuation appear from medium up.
type Generator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	words []string
	opts  GeneratorOptions
	seq   int
}

// NewGenerator returns a Generator seeded with the current time.
func NewGenerator(words []string, opts GeneratorOptions) *Generator {
	if opts.PunctSet == "" {
		opts.PunctSet = DefaultPunctSet
	}
	if opts.Language == "" {
		opts.Language = model.DefaultLanguage
	}
	return &Generator{
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		words: words,
		opts:  opts,
	}
}

// Next implements session.TextSource. The language argument is ignored:
// a generator only knows its own word list.
func (g *Generator) Next(ctx context.Context, difficulty model.Difficulty, _ model.Language) (model.ReferenceText, error) {
	if err := ctx.Err(); err != nil {
		return model.ReferenceText{}, err
	}
	if len(g.words) == 0 {
		return model.ReferenceText{}, model.ErrNoText
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	caps, punct := g.opts.CapsPct, g.opts.PunctPct
	if difficulty == model.DifficultyEasy {
		caps, punct = 0, 0
	}
	words := g.generate(wordsFor(difficulty), caps, punct, []rune(g.opts.PunctSet))
	g.seq++
	return model.ReferenceText{
		ID:         fmt.Sprintf("gen-%s-%d", difficulty, g.seq),
		Body:       strings.Join(words, " "),
		Difficulty: difficulty,
		Language:   g.opts.Language,
		Source:     "wordlist",
	}, nil
}

func wordsFor(d model.Difficulty) int {
	switch d {
	case model.DifficultyMedium:
		return 20
	case model.DifficultyHard:
		return 30
	default:
		return 12
	}
}

func (g *Generator) generate(count int, capsPct, punctPct float64, punctSet []rune) []string {
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := g.words[g.rnd.Intn(len(g.words))]
		word = applyCaps(g.rnd, word, capsPct)
		word = applyPunct(g.rnd, word, punctPct, punctSet)
		result = append(result, word)
	}
	return result
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}
