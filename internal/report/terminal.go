package report

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	fallbackWidth = 80
	minChartWidth = 20
	axisWidth     = 8
)

// TerminalWidth returns the stdout width, or a fallback when it is not a
// terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

// ChartWidthFor leaves room for the y-axis labels.
func ChartWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = fallbackWidth
	}
	width := totalWidth - axisWidth
	if width < minChartWidth {
		width = minChartWidth
	}
	return width
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
