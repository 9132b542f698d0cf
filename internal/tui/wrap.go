package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// glyph is one rendered cell of the reference text.
type glyph struct {
	s       string
	width   int
	isSpace bool
}

const wrongSpace = '•'

// styleGlyphs colors the reference against the typed input. Typed runes
// past the end of the reference are appended as errors.
func styleGlyphs(reference, typed []rune, cursor int) []glyph {
	words := findWords(reference)
	current := wordAt(words, cursor)

	out := make([]glyph, 0, max(len(reference), len(typed)))
	for i, want := range reference {
		shown := want
		style := pendingStyle
		switch {
		case i < len(typed) && want == ' ' && typed[i] != ' ':
			shown = wrongSpace
			style = incorrectStyle
		case i < len(typed) && typed[i] == want:
			style = correctStyle
		case i < len(typed):
			style = incorrectStyle
		case want != ' ' && current != nil && i >= current.start && i < current.end:
			style = currentWordStyle
		}
		if i == cursor && i >= len(typed) {
			style = style.Underline(true)
		}
		out = append(out, newGlyph(style.Render(string(shown)), shown, want == ' '))
	}
	for _, extra := range typedOverflow(reference, typed) {
		shown := extra
		if extra == ' ' {
			shown = wrongSpace
		}
		out = append(out, newGlyph(incorrectStyle.Render(string(shown)), shown, false))
	}
	return out
}

func newGlyph(rendered string, r rune, isSpace bool) glyph {
	return glyph{s: rendered, width: runewidth.RuneWidth(r), isSpace: isSpace}
}

func typedOverflow(reference, typed []rune) []rune {
	if len(typed) <= len(reference) {
		return nil
	}
	return typed[len(reference):]
}

type wordRange struct {
	start int
	end   int
}

func findWords(reference []rune) []wordRange {
	var words []wordRange
	start := -1
	for i, r := range reference {
		if r == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(reference)})
	}
	return words
}

// wordAt returns the word under the cursor, or the next word when the
// cursor sits on a space.
func wordAt(words []wordRange, cursor int) *wordRange {
	if len(words) == 0 {
		return nil
	}
	if cursor < 0 {
		return &words[0]
	}
	for i := range words {
		if cursor < words[i].end {
			return &words[i]
		}
	}
	return &words[len(words)-1]
}

func joinGlyphs(glyphs []glyph) string {
	var b strings.Builder
	for _, g := range glyphs {
		b.WriteString(g.s)
	}
	return b.String()
}

// wrapGlyphs breaks lines at the last space that fits within width, or
// mid-word when a word is wider than the line. The space at a break is
// not rendered.
func wrapGlyphs(glyphs []glyph, width int) string {
	if width <= 0 {
		return joinGlyphs(glyphs)
	}
	var lines []string
	line := make([]glyph, 0, width)
	lineWidth := 0
	lastSpace := -1

	for _, g := range glyphs {
		if g.isSpace && lineWidth+g.width > width && len(line) > 0 {
			lines = append(lines, joinGlyphs(line))
			line, lineWidth, lastSpace = line[:0], 0, -1
			continue
		}
		for lineWidth+g.width > width && len(line) > 0 {
			if lastSpace < 0 {
				lines = append(lines, joinGlyphs(line))
				line, lineWidth = line[:0], 0
				break
			}
			lines = append(lines, joinGlyphs(line[:lastSpace]))
			line = append([]glyph(nil), line[lastSpace+1:]...)
			lineWidth = 0
			lastSpace = -1
			for i, rest := range line {
				lineWidth += rest.width
				if rest.isSpace {
					lastSpace = i
				}
			}
		}
		line = append(line, g)
		lineWidth += g.width
		if g.isSpace {
			lastSpace = len(line) - 1
		}
	}
	lines = append(lines, joinGlyphs(line))
	return strings.Join(lines, "\n")
}
