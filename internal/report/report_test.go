package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tempotype/internal/model"
	"github.com/verte-zerg/tempotype/internal/progress"
)

func samplePoints() []progress.Point {
	return []progress.Point{
		{Label: "Jan 2024", WPM: 40, Accuracy: 90, Count: 3},
		{Label: "Feb 2024", WPM: 52, Accuracy: 94, Count: 12},
		{Label: "Mar 2024", WPM: 61, Accuracy: 97, Count: 1},
	}
}

func TestRenderSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSeries(&buf, samplePoints(), progress.Monthly, Options{Width: 60, Height: 5}); err != nil {
		t.Fatalf("RenderSeries: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Progress (monthly)") {
		t.Fatalf("expected title in output:\n%s", out)
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color escapes without color")
	}
	if !strings.Contains(out, "Feb 2024   52       94%        12") {
		t.Fatalf("expected aligned table row in output:\n%s", out)
	}
}

func TestRenderSeriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSeries(&buf, nil, progress.Weekly, Options{}); err != nil {
		t.Fatalf("RenderSeries: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "No data for weekly." {
		t.Fatalf("unexpected empty output: %q", got)
	}
}

func TestChartSinglePoint(t *testing.T) {
	out := Chart([]progress.Point{{Label: "x", WPM: 30, Accuracy: 30}}, Options{Width: 40, Height: 3})
	if out == "" {
		t.Fatalf("expected a chart for a single point")
	}
	if Chart(nil, Options{}) != "" {
		t.Fatalf("expected empty chart for no points")
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, progress.Summary{Sessions: 4, LatestWPM: 50, BestWPM: 72, AverageWPM: 55, AverageAccuracy: 93}); err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	if lines[4] != "Average accuracy  93%" {
		t.Fatalf("unexpected line: %q", lines[4])
	}

	buf.Reset()
	if err := RenderSummary(&buf, progress.Summary{}); err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions") {
		t.Fatalf("expected empty summary message, got %q", buf.String())
	}
}

func TestRenderResults(t *testing.T) {
	var buf bytes.Buffer
	results := []model.StoredResult{
		{CreatedAt: time.Now(), WordsPerMinute: 48, AccuracyPercent: 91, ErrorCount: 4, Score: 48, Difficulty: model.DifficultyEasy, Language: model.LanguageEnglish},
	}
	if err := RenderResults(&buf, results); err != nil {
		t.Fatalf("RenderResults: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "When") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Period", "WPM", "Accuracy"}
	rows := [][]string{
		{"Week 1, 2024", "52", "94%"},
		{"日本", "7", "100%"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Period        WPM  Accuracy" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Week 1, 2024   52       94%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "日本            7      100%" {
		t.Fatalf("unexpected wide row line: %q", lines[2])
	}
}

func TestChartWidthFor(t *testing.T) {
	if got := ChartWidthFor(100); got != 100-axisWidth {
		t.Fatalf("expected %d, got %d", 100-axisWidth, got)
	}
	if got := ChartWidthFor(10); got != minChartWidth {
		t.Fatalf("expected min width %d, got %d", minChartWidth, got)
	}
	if got := ChartWidthFor(0); got != fallbackWidth-axisWidth {
		t.Fatalf("expected fallback width, got %d", got)
	}
}

func TestShouldUseColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if ShouldUseColor(&bytes.Buffer{}, false) {
		t.Fatalf("buffer is not a terminal")
	}
	if !ShouldUseColor(&bytes.Buffer{}, true) {
		t.Fatalf("force should enable color")
	}
	t.Setenv("NO_COLOR", "1")
	if ShouldUseColor(&bytes.Buffer{}, true) {
		t.Fatalf("NO_COLOR should win")
	}
}

func TestRenderTexts(t *testing.T) {
	var buf bytes.Buffer
	texts := []model.ReferenceText{
		{ID: "en-easy-1", Body: "the quick  brown\nfox jumps over the lazy dog", Difficulty: model.DifficultyEasy, Language: model.LanguageEnglish},
	}
	if err := RenderTexts(&buf, texts, 40); err != nil {
		t.Fatalf("RenderTexts: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", buf.String())
	}
	if lines[1] != "en-easy-1  easy   en    the quick br..." {
		t.Fatalf("unexpected row: %q", lines[1])
	}

	buf.Reset()
	if err := RenderTexts(&buf, nil, 40); err != nil {
		t.Fatalf("RenderTexts: %v", err)
	}
	if buf.String() != "No texts found.\n" {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}
}
