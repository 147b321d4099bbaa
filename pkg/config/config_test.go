package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, Default())
	}
}

func TestFromLookupValues(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		EnvLogLevel:       "debug",
		EnvLogFormat:      "JSON",
		EnvJPEGQuality:    "75",
		EnvUpdateRepo:     "someone/fork",
		EnvPreviewBackend: " Kitty ",
		EnvPreviewDebug:   "true",
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		LogLevel:       slog.LevelDebug,
		LogFormat:      "json",
		JPEGQuality:    75,
		UpdateRepo:     "someone/fork",
		PreviewBackend: "kitty",
		PreviewDebug:   true,
	}
	if cfg != want {
		t.Fatalf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestFromLookupRejectsBadValues(t *testing.T) {
	for _, env := range []map[string]string{
		{EnvLogLevel: "chatty"},
		{EnvLogFormat: "xml"},
		{EnvJPEGQuality: "0"},
		{EnvJPEGQuality: "high"},
		{EnvUpdateRepo: "no-slash"},
	} {
		if _, err := FromLookup(lookupFrom(env)); err == nil {
			t.Fatalf("expected error for %v", env)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("# settings\nIMGMANIP_JPEG_QUALITY=60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set.
	t.Setenv(EnvJPEGQuality, "")
	os.Unsetenv(EnvJPEGQuality)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.JPEGQuality != 60 {
		t.Fatalf("JPEGQuality = %d, want 60", cfg.JPEGQuality)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for a missing named env file")
	}
}
