package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Practice.Duration != nil || cfg.DBPath != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `db-path = "/tmp/t.db"

[practice]
duration = 90
difficulty = "hard"
notify = true
caps = 0.25

[stats]
granularity = "daily"

[server]
addr = ":9000"
allowed-origins = ["http://localhost:3000"]

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Practice.Duration == nil || *cfg.Practice.Duration != 90 {
		t.Fatalf("duration not decoded: %+v", cfg.Practice)
	}
	if cfg.Practice.Difficulty == nil || *cfg.Practice.Difficulty != "hard" {
		t.Fatalf("difficulty not decoded")
	}
	if cfg.Practice.Notify == nil || !*cfg.Practice.Notify {
		t.Fatalf("notify not decoded")
	}
	if cfg.Practice.Lang != nil || cfg.Practice.Mode != nil {
		t.Fatalf("unset keys must stay nil")
	}
	if cfg.Stats.Granularity == nil || *cfg.Stats.Granularity != "daily" {
		t.Fatalf("granularity not decoded")
	}
	if cfg.Server.Addr == nil || *cfg.Server.Addr != ":9000" || len(cfg.Server.AllowedOrigins) != 1 {
		t.Fatalf("server not decoded: %+v", cfg.Server)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" || cfg.DBPath == nil {
		t.Fatalf("log or db path not decoded")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nwords = 25\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "practice.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	cases := map[string]string{
		DefaultConfigPath(): filepath.Join("/cfg", "tempotype", "config.toml"),
		DefaultTextsPath():  filepath.Join("/cfg", "tempotype", "texts.toml"),
		DefaultEnvPath():    filepath.Join("/cfg", "tempotype", ".env"),
		DefaultDBPath():     filepath.Join("/data", "tempotype", "tempotype.db"),
		DefaultLogPath():    filepath.Join("/data", "tempotype", "tempotype.log"),
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unsetenv: %v", err)
		}
	}
}

func TestLoadEnvFromFile(t *testing.T) {
	unsetForTest(t, EnvDBPath, EnvUser, EnvLogLevel, EnvAddr)
	t.Setenv(EnvAddr, ":7000")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "TEMPOTYPE_USER=carol\nTEMPOTYPE_LOG_LEVEL=warn\nTEMPOTYPE_ADDR=:1234\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	env, err := LoadEnv(filepath.Join(dir, "missing.env"), path)
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if env.User != "carol" || env.LogLevel != "warn" || env.DBPath != "" {
		t.Fatalf("unexpected env: %+v", env)
	}
	if env.Addr != ":7000" {
		t.Fatalf("existing variables must win over .env, got %q", env.Addr)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "b", "c"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
