// Package token owns the credential lifecycle for browser sessions: expiry
// checking with a safety margin, transparent refresh through the identity
// provider, and handing out catalog client handles bound to a usable token.
package token

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/dwrenn/tracktalk/internal/catalog"
	"github.com/dwrenn/tracktalk/internal/session"
	"golang.org/x/oauth2"
)

var (
	// ErrNotAuthenticated is returned when the request has no login session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRefreshFailed is returned when the stored token is expired and the
	// provider refused or failed to refresh it.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// defaultMargin is the safety margin against races between the expiry check
// and the token's first use upstream.
const defaultMargin = 60 * time.Second

// Manager acquires usable catalog clients for incoming requests.
type Manager struct {
	store       *session.Store
	oauth       *oauth2.Config
	margin      time.Duration
	forceLogout bool
	clientOpts  []catalog.Option
}

// Option customizes a Manager.
type Option func(*Manager)

// WithMargin overrides the expiry safety margin.
func WithMargin(d time.Duration) Option {
	return func(m *Manager) { m.margin = d }
}

// WithForceLogout makes the manager destroy the session when a refresh fails
// with a permanent error (revoked or invalid grant). Off by default: a
// transient provider outage should never log a user out.
func WithForceLogout(on bool) Option {
	return func(m *Manager) { m.forceLogout = on }
}

// WithClientOptions sets options applied to every catalog client handed out.
func WithClientOptions(opts ...catalog.Option) Option {
	return func(m *Manager) { m.clientOpts = opts }
}

// NewManager creates a credential manager over the given session store and
// identity-provider config.
func NewManager(store *session.Store, oauth *oauth2.Config, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		oauth:  oauth,
		margin: defaultMargin,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns a catalog client bound to a valid access token for the
// request's session. The stored bundle is refreshed and persisted first when
// it expires within the safety margin; callers therefore always observe the
// refreshed token on subsequent store reads within the same request.
//
// On refresh failure the stale bundle is deliberately left in the store so a
// transient provider error does not end the session; the user keeps their
// cookie and the next request retries the refresh.
func (m *Manager) Acquire(w http.ResponseWriter, r *http.Request) (*catalog.Client, error) {
	sess, err := m.store.Current(r)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	if time.Until(sess.ExpiresAt) >= m.margin {
		return catalog.NewClient(sess.AccessToken, m.clientOpts...), nil
	}

	bundle, err := m.refresh(r.Context(), sess.RefreshToken)
	if err != nil {
		log.Printf("❌ Refresh token failed for session %s: %v", sess.ID, err)
		if m.forceLogout && isPermanentRefreshError(err) {
			log.Printf("🔒 Permanent auth failure, ending session %s", sess.ID)
			if derr := m.store.Destroy(w, r); derr != nil {
				log.Printf("⚠️ Failed to destroy session %s: %v", sess.ID, derr)
			}
		}
		return nil, ErrRefreshFailed
	}

	// Persist the replacement bundle before handing out the handle.
	if err := m.store.Update(sess.ID, *bundle); err != nil {
		log.Printf("⚠️ Failed to store refreshed token for session %s: %v", sess.ID, err)
		return nil, ErrRefreshFailed
	}
	log.Printf("✅ Refreshed token for session %s (expires: %s)", sess.ID, bundle.ExpiresAt.Format(time.RFC3339))

	return catalog.NewClient(bundle.AccessToken, m.clientOpts...), nil
}

// refresh exchanges the refresh token for a new bundle. The provider may or
// may not rotate the refresh token; whatever comes back is what gets stored.
func (m *Manager) refresh(ctx context.Context, refreshToken string) (*session.Bundle, error) {
	src := m.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, err
	}

	bundle := &session.Bundle{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if bundle.RefreshToken == "" {
		bundle.RefreshToken = refreshToken
	}
	return bundle, nil
}

func isPermanentRefreshError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	permanentMarkers := []string{
		"invalid_grant",
		"invalid_client",
		"unauthorized_client",
		"token has been expired or revoked",
		"revoked",
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
