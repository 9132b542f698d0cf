package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment keys.
const (
	EnvDBPath   = "TEMPOTYPE_DB_PATH"
	EnvUser     = "TEMPOTYPE_USER"
	EnvLogLevel = "TEMPOTYPE_LOG_LEVEL"
	EnvAddr     = "TEMPOTYPE_ADDR"
)

// Env holds values taken from the process environment.
type Env struct {
	DBPath   string
	User     string
	LogLevel string
	Addr     string
}

// LoadEnv loads the first existing .env file among paths, without
// overriding variables already set, then reads the TEMPOTYPE_* keys.
func LoadEnv(paths ...string) (Env, error) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return Env{}, err
		}
		break
	}
	return Env{
		DBPath:   getEnvString(EnvDBPath),
		User:     getEnvString(EnvUser),
		LogLevel: getEnvString(EnvLogLevel),
		Addr:     getEnvString(EnvAddr),
	}, nil
}

// EnvPaths returns the .env locations checked by the CLI.
func EnvPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	return append(paths, DefaultEnvPath())
}

func getEnvString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
