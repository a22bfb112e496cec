package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != ConfigVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, ConfigVersion)
	}
	if cfg.Retrieval.MaxTokens <= 0 {
		t.Error("MaxTokens should be positive")
	}
	if cfg.Retrieval.Alpha < 0 || cfg.Retrieval.Alpha > 1 {
		t.Errorf("Alpha = %g, want value in [0,1]", cfg.Retrieval.Alpha)
	}
	if cfg.Embedding.Dimensions <= 0 {
		t.Error("Dimensions should be positive")
	}
	if len(cfg.Index.Ignore) == 0 {
		t.Error("Ignore should have defaults")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Retrieval.MaxTokens != DefaultConfig().Retrieval.MaxTokens {
		t.Errorf("missing config should yield defaults")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Retrieval.MaxTokens = 1234
	cfg.Retrieval.Alpha = 0.7
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Retrieval.MaxTokens != 1234 {
		t.Errorf("MaxTokens = %d, want 1234", loaded.Retrieval.MaxTokens)
	}
	if loaded.Retrieval.Alpha != 0.7 {
		t.Errorf("Alpha = %g, want 0.7", loaded.Retrieval.Alpha)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	aideDir := filepath.Join(dir, AideDir)
	if err := os.MkdirAll(aideDir, 0755); err != nil {
		t.Fatal(err)
	}
	bad := `{"version":1,"retrieval":{"maxTokens":4000,"alpha":2.5}}`
	if err := os.WriteFile(filepath.Join(aideDir, "config.json"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load should reject alpha outside [0,1]")
	}
}

func TestGetSet(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Set(KeyMaxTokens, "900"); err != nil {
		t.Fatalf("Set max_tokens: %v", err)
	}
	if got := cfg.Get(KeyMaxTokens, 0); got != 900 {
		t.Errorf("Get(%s) = %v, want 900", KeyMaxTokens, got)
	}

	if err := cfg.Set(KeyAlpha, "0.25"); err != nil {
		t.Fatalf("Set alpha: %v", err)
	}
	if got := cfg.Get(KeyAlpha, 0.0); got != 0.25 {
		t.Errorf("Get(%s) = %v, want 0.25", KeyAlpha, got)
	}

	tests := []struct {
		key   string
		value string
	}{
		{KeyMaxTokens, "zero"},
		{KeyMaxTokens, "-5"},
		{KeyAlpha, "1.5"},
		{KeyAlpha, "nope"},
		{KeyLogFormat, "xml"},
		{KeyLogLevel, "loud"},
		{"made.up.key", "1"},
	}
	for _, tt := range tests {
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%q, %q) should fail", tt.key, tt.value)
		}
	}

	// Unknown keys fall back to the caller's default on Get.
	if got := cfg.Get("made.up.key", "fallback"); got != "fallback" {
		t.Errorf("Get(unknown) = %v, want fallback", got)
	}
}
