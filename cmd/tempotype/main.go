// Package main provides the CLI entrypoint for tempotype.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tempotype/internal/api"
	"github.com/verte-zerg/tempotype/internal/config"
	"github.com/verte-zerg/tempotype/internal/logger"
	"github.com/verte-zerg/tempotype/internal/model"
	"github.com/verte-zerg/tempotype/internal/progress"
	"github.com/verte-zerg/tempotype/internal/report"
	"github.com/verte-zerg/tempotype/internal/session"
	"github.com/verte-zerg/tempotype/internal/statsui"
	"github.com/verte-zerg/tempotype/internal/store"
	"github.com/verte-zerg/tempotype/internal/texts"
	"github.com/verte-zerg/tempotype/internal/tui"
)

const (
	defaultDifficulty  = "easy"
	defaultLang        = "en"
	defaultMode        = "single"
	defaultUser        = "local"
	defaultCaps        = 0.5
	defaultPunct       = 0.5
	defaultGranularity = "weekly"
	defaultAddr        = ":8080"
	defaultResults     = 10
)

var (
	practiceDuration   int
	practiceDifficulty string
	practiceLang       string
	practiceMode       string
	practiceUser       string
	practiceWordlist   string
	practiceNotify     bool
	practiceCaps       float64
	practicePunct      float64
	practicePunctSet   string

	statsGranularity string
	statsSince       string
	statsUser        string

	reportGranularity string
	reportSince       string
	reportUser        string
	reportResults     int
	reportColor       bool

	serveAddr string

	textsDifficulty string
	textsLang       string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tempotype",
		Short:         "Timed typing practice with progress tracking",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().IntVar(&practiceDuration, "duration", 0, "countdown in seconds (0 uses the difficulty default)")
	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "easy, medium or hard")
	rootCmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "language code (en, es, ar)")
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "single or multi")
	rootCmd.Flags().StringVar(&practiceUser, "user", defaultUser, "user id results are stored under")
	rootCmd.Flags().StringVar(&practiceWordlist, "wordlist", "", "generate texts from this word list instead of the catalog")
	rootCmd.Flags().BoolVar(&practiceNotify, "notify", false, "desktop notification when a session ends")
	rootCmd.Flags().Float64Var(&practiceCaps, "caps", defaultCaps, "capitalized word probability for generated texts (0-1)")
	rootCmd.Flags().Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability for generated texts (0-1)")
	rootCmd.Flags().StringVar(&practicePunctSet, "punct-set", texts.DefaultPunctSet, "punctuation set for generated texts")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTextsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	p := app.file.Practice
	applyIntConfig(cmd, "duration", &practiceDuration, p.Duration)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, p.Difficulty)
	applyStringConfig(cmd, "lang", &practiceLang, p.Lang)
	applyStringConfig(cmd, "mode", &practiceMode, p.Mode)
	applyStringConfig(cmd, "wordlist", &practiceWordlist, p.Wordlist)
	applyBoolConfig(cmd, "notify", &practiceNotify, p.Notify)
	applyFloatConfig(cmd, "caps", &practiceCaps, p.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, p.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, p.PunctSet)
	practiceUser = app.user(cmd, "user", practiceUser)

	settings, err := practiceSettings(practiceDuration, practiceDifficulty, practiceLang, practiceMode)
	if err != nil {
		return err
	}
	if err := validateGenerator(practiceCaps, practicePunct); err != nil {
		return err
	}

	closeLog, err := app.logToFile()
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	source, stop, err := practiceSource(settings.Language)
	if err != nil {
		return err
	}
	defer stop()

	logger.Info("practice starting",
		"user", practiceUser,
		"duration", settings.DurationSeconds,
		"difficulty", settings.Difficulty,
		"language", settings.Language,
		"mode", settings.Mode)
	m := tui.NewModel(settings, tui.Options{
		UserID: practiceUser,
		Store:  st,
		Texts:  source,
		Notify: practiceNotify,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// practiceSource returns the generator when a word list is configured,
// otherwise the catalog kept in sync with the user's texts file.
func practiceSource(lang model.Language) (session.TextSource, func(), error) {
	if practiceWordlist != "" {
		words, err := texts.LoadWords(expandHome(practiceWordlist), lang)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load word list: %w", err)
		}
		gen := texts.NewGenerator(words, texts.GeneratorOptions{
			Language: lang,
			CapsPct:  practiceCaps,
			PunctPct: practicePunct,
			PunctSet: practicePunctSet,
		})
		return gen, func() {}, nil
	}

	catalog, err := texts.Builtin()
	if err != nil {
		return nil, nil, err
	}
	return catalog, watchUserTexts(catalog), nil
}

// watchUserTexts merges the user's texts file into catalog and follows its
// changes. Failures leave the built-in texts in place. The returned func
// stops watching.
func watchUserTexts(catalog *texts.Catalog) func() {
	path := config.DefaultTextsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn("user texts disabled", "error", err)
		return func() {}
	}
	watcher, err := texts.Watch(catalog, path, func(n int) {
		logger.Info("user texts loaded", "path", path, "count", n)
	})
	if err != nil {
		logger.Warn("user texts disabled", "path", path, "error", err)
		return func() {}
	}
	return func() {
		if cerr := watcher.Close(); cerr != nil {
			logger.Warn("failed to close texts watcher", "error", cerr)
		}
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress over time",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsGranularity, "granularity", defaultGranularity, "monthly, weekly, daily, hourly or minutely")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&statsUser, "user", defaultUser, "user id")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "granularity", &statsGranularity, app.file.Stats.Granularity)
	statsUser = app.user(cmd, "user", statsUser)

	g, err := progress.ParseGranularity(statsGranularity)
	if err != nil {
		return err
	}
	since, err := parseSince(statsSince)
	if err != nil {
		return err
	}

	closeLog, err := app.logToFile()
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	m := statsui.NewModel(st, statsUser, since, g)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print progress as a chart and table",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportGranularity, "granularity", defaultGranularity, "monthly, weekly, daily, hourly or minutely")
	cmd.Flags().StringVar(&reportSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reportUser, "user", defaultUser, "user id")
	cmd.Flags().IntVar(&reportResults, "results", defaultResults, "recent results to list (0 hides the table)")
	cmd.Flags().BoolVar(&reportColor, "color", false, "force colored output")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "granularity", &reportGranularity, app.file.Stats.Granularity)
	reportUser = app.user(cmd, "user", reportUser)
	app.logToStderr()

	g, err := progress.ParseGranularity(reportGranularity)
	if err != nil {
		return err
	}
	since, err := parseSince(reportSince)
	if err != nil {
		return err
	}

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	records, err := st.ListRecords(ctx, reportUser, since)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := report.RenderSummary(out, progress.Summarize(records)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	opts := report.Options{
		Width: report.ChartWidthFor(report.TerminalWidth()),
		Color: report.ShouldUseColor(out, reportColor),
	}
	if err := report.RenderSeries(out, progress.Aggregate(records, g), g, opts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if reportResults <= 0 {
		return nil
	}
	results, err := st.ListResults(ctx, reportUser, reportResults)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderResults(out, results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve results and progress over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("addr") {
		serveAddr = config.FirstNonEmpty(deref(app.file.Server.Addr), app.env.Addr, serveAddr)
	}
	app.logToStderr()

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	catalog, err := texts.Builtin()
	if err != nil {
		return err
	}
	defer watchUserTexts(catalog)()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	handler := api.NewRouter(api.NewHandler(st, catalog), app.file.Server.AllowedOrigins)
	return api.Serve(ctx, serveAddr, handler)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeDefaultConfig(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newTextsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texts",
		Short: "List reference texts",
		Args:  cobra.NoArgs,
		RunE:  runTextsCmd,
	}
	cmd.Flags().StringVar(&textsDifficulty, "difficulty", "", "only this difficulty")
	cmd.Flags().StringVar(&textsLang, "lang", "", "only this language")
	return cmd
}

func runTextsCmd(cmd *cobra.Command, _ []string) error {
	var (
		difficulty model.Difficulty
		language   model.Language
		err        error
	)
	if textsDifficulty != "" {
		if difficulty, err = model.ParseDifficulty(textsDifficulty); err != nil {
			return err
		}
	}
	if textsLang != "" {
		if language, err = model.ParseLanguage(textsLang); err != nil {
			return err
		}
	}

	catalog, err := texts.Builtin()
	if err != nil {
		return err
	}
	extra, err := texts.LoadFile(config.DefaultTextsPath())
	if err != nil {
		return fmt.Errorf("failed to load user texts: %w", err)
	}
	catalog.SetExtra(extra)
	return report.RenderTexts(cmd.OutOrStdout(), catalog.List(difficulty, language), report.TerminalWidth())
}

func parseSince(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logger.Error("failed to close db", "error", cerr)
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
