// Package config loads application configuration from an optional YAML file
// with environment-variable overrides on top of built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultCookieName   = "tracktalk-login-session"
	defaultDatabasePath = "tracktalk.db"
	defaultPromptCalls  = 50
	defaultPromptWindow = 60 * time.Second
	defaultGenreLookups = 50
)

// Config is the root application configuration.
type Config struct {
	Listen     string           `yaml:"listen"`
	Database   string           `yaml:"database"`
	Spotify    SpotifyConfig    `yaml:"spotify"`
	Completion CompletionConfig `yaml:"completion"`
	Session    SessionConfig    `yaml:"session"`
	Auth       AuthConfig       `yaml:"auth"`
	Limits     LimitsConfig     `yaml:"limits"`
}

// SpotifyConfig holds the identity-provider client credentials. RedirectURL
// may be left empty, in which case it is derived from the incoming request.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// CompletionConfig holds the language-model API settings.
type CompletionConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// SessionConfig controls the browser-session cookie.
type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
}

// AuthConfig controls credential-lifecycle policy.
type AuthConfig struct {
	// ForceLogoutOnAuthError destroys the session when a refresh fails with
	// a permanent error (revoked or invalid grant). When off, the stale
	// bundle is kept so a transient provider outage never logs anyone out.
	ForceLogoutOnAuthError bool `yaml:"force_logout_on_auth_error"`
}

// LimitsConfig bounds upstream fan-out and inbound request rates.
type LimitsConfig struct {
	PromptCalls   int `yaml:"prompt_calls"`    // prompt submissions allowed per window
	PromptWindowS int `yaml:"prompt_window_s"` // window length in seconds
	GenreLookups  int `yaml:"genre_lookups"`   // max distinct-artist lookups per genre aggregation
}

// PromptWindow returns the configured rate-limit window as a duration.
func (l LimitsConfig) PromptWindow() time.Duration {
	if l.PromptWindowS <= 0 {
		return defaultPromptWindow
	}
	return time.Duration(l.PromptWindowS) * time.Second
}

// Load reads configuration from path (skipped when empty or missing) and
// applies environment overrides. Defaults cover everything except the
// Spotify client credentials, which must come from the file or environment.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Database: defaultDatabasePath,
		Session:  SessionConfig{CookieName: defaultCookieName},
		Limits: LimitsConfig{
			PromptCalls:  defaultPromptCalls,
			GenreLookups: defaultGenreLookups,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Listen == "" {
		host := os.Getenv("HOST")
		if host == "" {
			host = "127.0.0.1" // set HOST=0.0.0.0 for LAN access
		}
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		cfg.Listen = host + ":" + port
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = defaultCookieName
	}
	if cfg.Limits.PromptCalls <= 0 {
		cfg.Limits.PromptCalls = defaultPromptCalls
	}
	if cfg.Limits.GenreLookups <= 0 {
		cfg.Limits.GenreLookups = defaultGenreLookups
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URL"); v != "" {
		cfg.Spotify.RedirectURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Completion.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Completion.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Completion.Model = v
	}
	if v := os.Getenv("TRACKTALK_DB"); v != "" {
		cfg.Database = v
	}
}
