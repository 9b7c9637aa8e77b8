// Package session implements the per-browser-session credential store. A
// signed cookie carries an opaque session ID; the bundle itself lives in a
// SQLite row keyed by that ID and is deleted when the session ends.
package session

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dwrenn/tracktalk/internal/db/models"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"
)

// ErrNoSession is returned when the request carries no live login session.
var ErrNoSession = errors.New("no active session")

const cookieKey = "sid"

// Bundle is the credential set held for one browser session. A refresh
// replaces the bundle wholesale; fields are never patched individually.
type Bundle struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Store manages browser sessions: a signed cookie on the client side and a
// session row on the server side.
type Store struct {
	db      *gorm.DB
	cookies *sessions.CookieStore
	name    string
}

// NewStore creates a session store. The cookie has no MaxAge so it expires
// with the browser session, matching the lifetime of the credential bundle.
func NewStore(db *gorm.DB, secret []byte, cookieName string) *Store {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{db: db, cookies: cs, name: cookieName}
}

// Establish starts a logged-in session holding the given bundle and sets the
// signed cookie. The login flag and the bundle land in one insert, so a
// session is never observable half-authenticated.
func (s *Store) Establish(w http.ResponseWriter, r *http.Request, b Bundle) error {
	row := models.Session{
		ID:           uuid.New().String(),
		AccessToken:  b.AccessToken,
		RefreshToken: b.RefreshToken,
		ExpiresAt:    b.ExpiresAt,
		LoggedIn:     true,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return err
	}

	cookie, _ := s.cookies.New(r, s.name)
	cookie.Values[cookieKey] = row.ID
	return s.cookies.Save(r, w, cookie)
}

// Current returns the session row for the request, or ErrNoSession when the
// cookie is absent, unverifiable, or no longer backed by a logged-in row.
func (s *Store) Current(r *http.Request) (*models.Session, error) {
	cookie, err := s.cookies.Get(r, s.name)
	if err != nil {
		return nil, ErrNoSession
	}
	id, ok := cookie.Values[cookieKey].(string)
	if !ok || id == "" {
		return nil, ErrNoSession
	}

	var row models.Session
	if err := s.db.First(&row, "id = ? AND logged_in = ?", id, true).Error; err != nil {
		return nil, ErrNoSession
	}
	return &row, nil
}

// Update replaces the stored bundle for a session, typically after a token
// refresh. The previous bundle is overwritten, never merged.
func (s *Store) Update(id string, b Bundle) error {
	result := s.db.Model(&models.Session{}).Where("id = ?", id).Updates(map[string]interface{}{
		"access_token":  b.AccessToken,
		"refresh_token": b.RefreshToken,
		"expires_at":    b.ExpiresAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoSession
	}
	return nil
}

// Destroy ends the session: the row is deleted and the cookie expired. Safe
// to call without an active session.
func (s *Store) Destroy(w http.ResponseWriter, r *http.Request) error {
	cookie, _ := s.cookies.Get(r, s.name)
	if id, ok := cookie.Values[cookieKey].(string); ok && id != "" {
		if err := s.db.Delete(&models.Session{}, "id = ?", id).Error; err != nil {
			return err
		}
	}
	delete(cookie.Values, cookieKey)
	cookie.Options.MaxAge = -1
	return s.cookies.Save(r, w, cookie)
}

// StartCleanupLoop periodically deletes session rows whose cookies are long
// gone (browser closed, cookie never presented again). Runs until process
// exit.
func (s *Store) StartCleanupLoop(maxIdle time.Duration) {
	ticker := time.NewTicker(time.Hour)
	go func() {
		for range ticker.C {
			cutoff := time.Now().Add(-maxIdle)
			result := s.db.Delete(&models.Session{}, "updated_at < ?", cutoff)
			if result.RowsAffected > 0 {
				log.Printf("🧹 Removed %d idle sessions", result.RowsAffected)
			}
		}
	}()
	log.Printf("🧹 Session cleanup loop started (interval: 1h, max idle: %s)", maxIdle)
}
