// Package spotify implements the OAuth authorize-redirect flow against the
// Spotify accounts service.
package spotify

import (
	"fmt"
	"net/http"

	"github.com/dwrenn/tracktalk/internal/config"
	"golang.org/x/oauth2"
)

// Endpoint is the Spotify accounts service OAuth2 endpoint.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.spotify.com/authorize",
	TokenURL: "https://accounts.spotify.com/api/token",
}

// Scopes required for library reads and private playlist creation.
var Scopes = []string{
	"user-top-read",
	"playlist-modify-private",
	"user-library-read",
}

// OAuthConfig returns the OAuth2 config for Spotify authentication.
func OAuthConfig(cfg config.SpotifyConfig, redirectURL string) *oauth2.Config {
	if redirectURL == "" {
		redirectURL = cfg.RedirectURL
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     Endpoint,
	}
}

// RedirectURL resolves the callback URL: the configured value when set,
// otherwise derived from the incoming request.
func RedirectURL(cfg config.SpotifyConfig, r *http.Request) string {
	if cfg.RedirectURL != "" {
		return cfg.RedirectURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/callback", scheme, r.Host)
}
