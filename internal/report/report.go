// Package report renders progress series and results as plain text.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tempotype/internal/model"
	"github.com/verte-zerg/tempotype/internal/progress"
)

// Options controls chart rendering.
type Options struct {
	Width  int
	Height int
	Color  bool
}

const defaultChartHeight = 10

// Chart draws WPM and accuracy as two lines on a shared axis. It returns an
// empty string when there is nothing to plot.
func Chart(points []progress.Point, opts Options) string {
	if len(points) == 0 {
		return ""
	}
	wpm := make([]float64, len(points))
	acc := make([]float64, len(points))
	for i, p := range points {
		wpm[i] = float64(p.WPM)
		acc[i] = float64(p.Accuracy)
	}

	height := opts.Height
	if height <= 0 {
		height = defaultChartHeight
	}
	graphOpts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(ChartWidthFor(opts.Width)),
		asciigraph.LowerBound(0),
		asciigraph.Precision(0),
	}
	if opts.Color {
		graphOpts = append(graphOpts, asciigraph.SeriesColors(asciigraph.Green, asciigraph.Blue))
	}
	return asciigraph.PlotMany([][]float64{wpm, acc}, graphOpts...)
}

// Legend names the chart lines.
func Legend(color bool) string {
	if !color {
		return "Legend: first line WPM, second line accuracy %"
	}
	return fmt.Sprintf("Legend: %s■%s WPM  %s■%s accuracy %%",
		asciigraph.Green, asciigraph.Default, asciigraph.Blue, asciigraph.Default)
}

// SeriesRows formats points as table rows: label, wpm, accuracy, sessions.
func SeriesRows(points []progress.Point) [][]string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.Label,
			strconv.Itoa(p.WPM),
			strconv.Itoa(p.Accuracy) + "%",
			strconv.Itoa(p.Count),
		})
	}
	return rows
}

// EmptyMessage is printed in place of a chart with no points.
func EmptyMessage(g progress.Granularity) string {
	return fmt.Sprintf("No data for %s.", g)
}

// RenderSeries writes a chart followed by an aligned table of the points.
func RenderSeries(w io.Writer, points []progress.Point, g progress.Granularity, opts Options) error {
	if len(points) == 0 {
		_, err := fmt.Fprintln(w, EmptyMessage(g))
		return err
	}

	var b strings.Builder
	title := fmt.Sprintf("Progress (%s)", g)
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("-", len(title)) + "\n")
	b.WriteString(Chart(points, opts) + "\n")
	b.WriteString(Legend(opts.Color) + "\n\n")

	lines := formatTable([]string{"Period", "WPM", "Accuracy", "Sessions"}, SeriesRows(points), map[int]bool{1: true, 2: true, 3: true})
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary writes the headline numbers.
func RenderSummary(w io.Writer, s progress.Summary) error {
	if s.Sessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}
	rows := [][]string{
		{"Sessions", strconv.Itoa(s.Sessions)},
		{"Latest WPM", strconv.Itoa(s.LatestWPM)},
		{"Best WPM", strconv.Itoa(s.BestWPM)},
		{"Average WPM", strconv.Itoa(s.AverageWPM)},
		{"Average accuracy", strconv.Itoa(s.AverageAccuracy) + "%"},
	}
	for _, line := range formatTable(nil, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderResults writes a table of recent results, newest first.
func RenderResults(w io.Writer, results []model.StoredResult) error {
	if len(results) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.WordsPerMinute),
			strconv.Itoa(r.AccuracyPercent) + "%",
			strconv.Itoa(r.ErrorCount),
			strconv.Itoa(r.Score),
			string(r.Difficulty),
			string(r.Language),
		})
	}
	headers := []string{"When", "WPM", "Accuracy", "Errors", "Score", "Difficulty", "Lang"}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTexts lists reference texts, cutting each body to fit width.
func RenderTexts(w io.Writer, texts []model.ReferenceText, width int) error {
	if len(texts) == 0 {
		_, err := fmt.Fprintln(w, "No texts found.")
		return err
	}
	rows := make([][]string, 0, len(texts))
	idWidth := 0
	for _, t := range texts {
		if n := runewidth.StringWidth(t.ID); n > idWidth {
			idWidth = n
		}
	}
	// id, difficulty, language and the separators come before the body.
	bodyWidth := width - idWidth - len("medium") - len("lang") - 3*2
	if bodyWidth < 10 {
		bodyWidth = 10
	}
	for _, t := range texts {
		body := strings.Join(strings.Fields(t.Body), " ")
		rows = append(rows, []string{
			t.ID,
			string(t.Difficulty),
			string(t.Language),
			runewidth.Truncate(body, bodyWidth, "..."),
		})
	}
	for _, line := range formatTable([]string{"ID", "Level", "Lang", "Text"}, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
