package spotify

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dwrenn/tracktalk/internal/config"
	"github.com/dwrenn/tracktalk/internal/session"
)

// HandleCallback processes the OAuth redirect from Spotify: it validates the
// state token, exchanges the authorization code for a credential bundle and
// establishes the login session before sending the user to /home.
func HandleCallback(cfg config.SpotifyConfig, store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		if state != GetStateToken() {
			http.Error(w, "Invalid state token", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		oauthCfg := OAuthConfig(cfg, RedirectURL(cfg, r))

		token, err := oauthCfg.Exchange(r.Context(), code)
		if err != nil {
			log.Printf("❌ Token exchange failed: %v", err)
			http.Error(w, fmt.Sprintf("Error obtaining access token: %v", err), http.StatusBadRequest)
			return
		}

		bundle := session.Bundle{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresAt:    token.Expiry,
		}
		if err := store.Establish(w, r, bundle); err != nil {
			log.Printf("❌ Failed to establish session: %v", err)
			http.Error(w, "Failed to establish session", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/home", http.StatusFound)
	}
}

// HandleLogout destroys the session and returns the user to the login page.
func HandleLogout(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Destroy(w, r); err != nil {
			log.Printf("⚠️ Failed to destroy session: %v", err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}
