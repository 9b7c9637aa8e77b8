package spotify

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/dwrenn/tracktalk/internal/config"
	"golang.org/x/oauth2"
)

// stateToken is used to protect against CSRF attacks
var stateToken string

func init() {
	b := make([]byte, 16)
	rand.Read(b)
	stateToken = hex.EncodeToString(b)
}

// GetStateToken returns the current CSRF state token for validation.
func GetStateToken() string {
	return stateToken
}

// AuthorizeURL builds the Spotify consent-page URL for this request. The
// show_dialog parameter forces the Spotify login page to appear every time.
func AuthorizeURL(cfg config.SpotifyConfig, r *http.Request) string {
	oauthCfg := OAuthConfig(cfg, RedirectURL(cfg, r))
	return oauthCfg.AuthCodeURL(stateToken,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("show_dialog", "true"),
	)
}
