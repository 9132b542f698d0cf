package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tempotype/internal/config"
	"github.com/verte-zerg/tempotype/internal/logger"
	"github.com/verte-zerg/tempotype/internal/model"
	"github.com/verte-zerg/tempotype/internal/store"
	"github.com/verte-zerg/tempotype/internal/texts"
)

// app holds the layers below the command line: the TOML file and the
// environment.
type app struct {
	file config.FileConfig
	env  config.Env
}

func loadApp() (*app, error) {
	env, err := config.LoadEnv(config.EnvPaths()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &app{file: fileCfg, env: env}, nil
}

// user resolves the user id: flag, config file, environment, default.
func (a *app) user(cmd *cobra.Command, flag, current string) string {
	if cmd.Flags().Changed(flag) {
		return current
	}
	return config.FirstNonEmpty(deref(a.file.Practice.User), a.env.User, current)
}

func (a *app) dbPath() string {
	return config.FirstNonEmpty(deref(a.file.DBPath), a.env.DBPath, config.DefaultDBPath())
}

func (a *app) logLevel() string {
	return config.FirstNonEmpty(deref(a.file.Log.Level), a.env.LogLevel, "info")
}

func (a *app) openStore() (*store.Store, error) {
	path := a.dbPath()
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db %s: %w", path, err)
	}
	return st, nil
}

// logToFile sends logs to the log file so they do not draw over the
// alternate screen.
func (a *app) logToFile() (func(), error) {
	closer, err := logger.InitFile(config.DefaultLogPath(), logger.ParseLevel(a.logLevel()))
	if err != nil {
		return nil, err
	}
	return func() {
		if cerr := closer.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}, nil
}

func (a *app) logToStderr() {
	logger.Init(os.Stderr, logger.ParseLevel(a.logLevel()))
}

// practiceSettings validates the practice flags. A zero duration picks the
// difficulty's default.
func practiceSettings(duration int, difficulty, lang, mode string) (model.Settings, error) {
	d, err := model.ParseDifficulty(difficulty)
	if err != nil {
		return model.Settings{}, err
	}
	l, err := model.ParseLanguage(lang)
	if err != nil {
		return model.Settings{}, err
	}
	m, err := model.ParseMode(mode)
	if err != nil {
		return model.Settings{}, err
	}
	if duration < 0 {
		return model.Settings{}, fmt.Errorf("--duration must be >= 0")
	}
	if duration == 0 {
		duration = model.DefaultDurationFor(d)
	}
	settings := model.Settings{DurationSeconds: duration, Difficulty: d, Language: l, Mode: m}
	return settings, settings.Validate()
}

func validateGenerator(caps, punct float64) error {
	if caps < 0 || caps > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if punct < 0 || punct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// writeDefaultConfig creates the commented template unless a config exists.
func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tempotype configuration
# Uncomment a value to enable it. CLI flags override config values,
# config values override TEMPOTYPE_* environment variables.

# db-path = %q

[practice]
# duration = 60           # Countdown in seconds (0 uses the difficulty default)
# difficulty = %q      # easy, medium or hard
# lang = %q              # en, es or ar
# mode = %q          # single or multi
# user = %q           # User id results are stored under
# wordlist = ""           # Generate texts from a word list file
# notify = false          # Desktop notification when a session ends
# caps = %.2f             # Capitalized word probability for generated texts
# punct = %.2f            # Punctuation probability for generated texts
# punct-set = %q      # Punctuation set for generated texts

[stats]
# granularity = %q   # monthly, weekly, daily, hourly or minutely

[server]
# addr = %q
# allowed-origins = ["*"]

[log]
# level = "info"          # debug, info, warn or error
`,
		config.DefaultDBPath(),
		defaultDifficulty,
		defaultLang,
		defaultMode,
		defaultUser,
		defaultCaps,
		defaultPunct,
		texts.DefaultPunctSet,
		defaultGranularity,
		defaultAddr,
	)
}
