package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.CookieName != "tracktalk-login-session" {
		t.Errorf("unexpected cookie name %q", cfg.Session.CookieName)
	}
	if cfg.Limits.PromptCalls != 50 {
		t.Errorf("expected 50 prompt calls, got %d", cfg.Limits.PromptCalls)
	}
	if cfg.Limits.PromptWindow() != 60*time.Second {
		t.Errorf("expected 60s window, got %s", cfg.Limits.PromptWindow())
	}
	if cfg.Listen == "" {
		t.Error("expected a default listen address")
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen: "0.0.0.0:9090"
spotify:
  client_id: file-id
  client_secret: file-secret
completion:
  model: gpt-4o-mini
limits:
  prompt_calls: 10
  prompt_window_s: 30
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9090" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Spotify.ClientID != "env-id" {
		t.Errorf("env override lost, client_id = %q", cfg.Spotify.ClientID)
	}
	if cfg.Spotify.ClientSecret != "file-secret" {
		t.Errorf("file value lost, client_secret = %q", cfg.Spotify.ClientSecret)
	}
	if cfg.Completion.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.Completion.Model)
	}
	if cfg.Limits.PromptWindow() != 30*time.Second {
		t.Errorf("window = %s", cfg.Limits.PromptWindow())
	}
}

func TestLoad_MissingFileIsNotFatal(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("missing config file should not be fatal: %v", err)
	}
}
