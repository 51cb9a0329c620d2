package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("BATCH_SKIP_FINAL", "")
	t.Setenv("RATE_LIMIT_RPS", "")

	cfg := Load()
	if cfg.NATSSubject != "outlines.generate" {
		t.Fatalf("expected default subject outlines.generate, got %q", cfg.NATSSubject)
	}
	if !cfg.BatchSkipFinal {
		t.Fatal("expected batch to skip final sections by default")
	}
	if cfg.RateLimitRPS != 25 {
		t.Fatalf("expected default rate limit 25, got %v", cfg.RateLimitRPS)
	}
	if cfg.GenerationTimeoutSeconds != 120 {
		t.Fatalf("expected default generation timeout 120, got %d", cfg.GenerationTimeoutSeconds)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("GENERATION_URL", "http://gen.internal:9000")
	t.Setenv("BATCH_SKIP_FINAL", "false")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := Load()
	if cfg.GenerationURL != "http://gen.internal:9000" {
		t.Fatalf("expected generation url override, got %q", cfg.GenerationURL)
	}
	if cfg.BatchSkipFinal {
		t.Fatal("expected skip-final override to false")
	}
	if cfg.RetryMaxAttempts != 5 {
		t.Fatalf("expected retry attempts 5, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadYAMLOverlayLosesToEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drafter.yaml")
	overlay := "API_PORT: \"9999\"\nSTYLE_TEMPLATE: compact\nMAX_IN_FLIGHT: 7\n"
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "8081")
	t.Setenv("STYLE_TEMPLATE", "")
	t.Setenv("MAX_IN_FLIGHT", "")

	cfg := Load()
	if cfg.APIPort != "8081" {
		t.Fatalf("expected env to win over yaml, got %q", cfg.APIPort)
	}
	if cfg.StyleTemplate != "compact" {
		t.Fatalf("expected yaml value for style template, got %q", cfg.StyleTemplate)
	}
	if cfg.MaxInFlight != 7 {
		t.Fatalf("expected yaml value 7 for max in flight, got %d", cfg.MaxInFlight)
	}
}

func TestLoadIgnoresMalformedOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte(":::: not yaml"), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "")

	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default port with malformed overlay, got %q", cfg.APIPort)
	}
}
