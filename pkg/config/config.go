// Package config collects runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/akale22/Image-Manipulator/pkg/logger"
)

// Environment variable names.
const (
	EnvLogLevel       = "IMGMANIP_LOG_LEVEL"
	EnvLogFormat      = "IMGMANIP_LOG_FORMAT"
	EnvJPEGQuality    = "IMGMANIP_JPEG_QUALITY"
	EnvUpdateRepo     = "IMGMANIP_UPDATE_REPO"
	EnvPreviewBackend = "PREVIEW_BACKEND"
	EnvPreviewDebug   = "PREVIEW_DEBUG"
)

const DefaultUpdateRepo = "akale22/Image-Manipulator"

type Config struct {
	LogLevel       slog.Level
	LogFormat      string
	JPEGQuality    int
	UpdateRepo     string
	PreviewBackend string
	PreviewDebug   bool
}

func Default() Config {
	return Config{
		LogLevel:    slog.LevelInfo,
		LogFormat:   "text",
		JPEGQuality: 92,
		UpdateRepo:  DefaultUpdateRepo,
	}
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and then builds a Config from it. A missing default
// .env is not an error; a missing named file is. Variables already set in the
// environment win over .env entries.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", strings.Join(envFiles, ", "), err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from a lookup function such as os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		l, err := logger.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = l
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		v = strings.ToLower(v)
		if v != "text" && v != "json" {
			return Config{}, fmt.Errorf("%s: want text or json, got %q", EnvLogFormat, v)
		}
		cfg.LogFormat = v
	}
	if v, ok := lookup(EnvJPEGQuality); ok && v != "" {
		q, err := strconv.Atoi(v)
		if err != nil || q < 1 || q > 100 {
			return Config{}, fmt.Errorf("%s: want an integer in [1, 100], got %q", EnvJPEGQuality, v)
		}
		cfg.JPEGQuality = q
	}
	if v, ok := lookup(EnvUpdateRepo); ok && v != "" {
		if strings.Count(v, "/") != 1 {
			return Config{}, fmt.Errorf("%s: want owner/name, got %q", EnvUpdateRepo, v)
		}
		cfg.UpdateRepo = v
	}
	if v, ok := lookup(EnvPreviewBackend); ok {
		cfg.PreviewBackend = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvPreviewDebug); ok {
		cfg.PreviewDebug = v == "1" || strings.EqualFold(v, "true")
	}
	return cfg, nil
}
