package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dwrenn/tracktalk/internal/assistant"
	"github.com/dwrenn/tracktalk/internal/auth/token"
	"github.com/dwrenn/tracktalk/internal/catalog"
	"github.com/dwrenn/tracktalk/internal/config"
	"github.com/dwrenn/tracktalk/internal/db/models"
	"github.com/dwrenn/tracktalk/internal/session"
	"github.com/glebarez/sqlite"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type stubCompleter struct {
	reply string
	err   error
}

func (c *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.reply, c.err
}

type testEnv struct {
	router http.Handler
	store  *session.Store
}

// newTestEnv wires a full router against an in-memory session store and a
// fake catalog API.
func newTestEnv(t *testing.T, api http.HandlerFunc, limiter *rate.Limiter) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	store := session.NewStore(db, []byte("0123456789abcdef0123456789abcdef"), "tracktalk-login-session")

	var opts []catalog.Option
	if api != nil {
		srv := httptest.NewServer(api)
		t.Cleanup(srv.Close)
		opts = append(opts, catalog.WithBaseURL(srv.URL))
	}

	tokens := token.NewManager(store, &oauth2.Config{}, token.WithClientOptions(opts...))
	svc := assistant.New(&stubCompleter{reply: "ok"})

	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	router := NewRouter(Deps{
		Spotify:       config.SpotifyConfig{ClientID: "cid", ClientSecret: "secret"},
		Store:         store,
		Tokens:        tokens,
		Assistant:     svc,
		PromptLimiter: limiter,
	})
	return &testEnv{router: router, store: store}
}

// login establishes a session and returns the cookies a browser would replay.
func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/callback", nil)
	bundle := session.Bundle{
		AccessToken:  "at-test",
		RefreshToken: "rt-test",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := e.store.Establish(rec, req, bundle); err != nil {
		t.Fatalf("establish: %v", err)
	}
	return rec.Result().Cookies()
}

func (e *testEnv) do(t *testing.T, method, target, form string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestLoginPage_ShowsConsentLink(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(t, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "accounts.spotify.com/authorize") {
		t.Fatalf("login page missing consent link: %s", rec.Body.String())
	}
}

func TestLoginPage_RedirectsWhenLoggedIn(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	cookies := env.login(t)

	rec := env.do(t, http.MethodGet, "/", "", cookies)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/home" {
		t.Fatalf("redirect = %q, want /home", loc)
	}
}

func TestProtectedPages_RedirectWhenUnauthenticated(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	for _, path := range []string{"/home", "/top_songs", "/top_artists", "/most_played_genres", "/recommended_playlist"} {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, "", nil)
			if rec.Code != http.StatusFound {
				t.Fatalf("status = %d, want 302", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != "/" {
				t.Fatalf("redirect = %q, want /", loc)
			}
		})
	}
}

func TestHome_ShowsSuggestedPrompts(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	cookies := env.login(t)

	rec := env.do(t, http.MethodGet, "/home", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	for _, p := range suggestedPrompts {
		if !strings.Contains(rec.Body.String(), p) {
			t.Fatalf("home page missing prompt %q", p)
		}
	}
}

func TestPrompt_KeywordPlaylist(t *testing.T) {
	api := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tracks": map[string]interface{}{
				"items": []catalog.Track{
					{ID: "t1", Name: "Evening Drift", Artists: []catalog.Artist{{Name: "Low Tide"}}, DurationMS: 213000},
				},
			},
		})
	}
	env := newTestEnv(t, api, nil)
	cookies := env.login(t)

	form := url.Values{"prompt": {"create a chill playlist"}}.Encode()
	rec := env.do(t, http.MethodPost, "/home", form, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Here&#39;s a playlist based on the chill mood:") {
		t.Fatalf("missing playlist message: %s", body)
	}
	if !strings.Contains(body, "Evening Drift") || !strings.Contains(body, "Low Tide") {
		t.Fatalf("missing track row: %s", body)
	}
}

func TestPrompt_CatalogErrorIs500(t *testing.T) {
	api := func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}
	env := newTestEnv(t, api, nil)
	cookies := env.login(t)

	form := url.Values{"prompt": {"create a chill playlist"}}.Encode()
	rec := env.do(t, http.MethodPost, "/home", form, cookies)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestPrompt_RateLimited(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.001), 2)
	env := newTestEnv(t, nil, limiter)

	form := url.Values{"prompt": {"anything"}}.Encode()
	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/home", form, nil)
		if rec.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d rejected too early", i+1)
		}
	}

	rec := env.do(t, http.MethodPost, "/home", form, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}

func TestRateLimit_OnlyGuardsPrompt(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	env := newTestEnv(t, nil, limiter)

	form := url.Values{"prompt": {"anything"}}.Encode()
	env.do(t, http.MethodPost, "/home", form, nil)

	// GET routes stay reachable after the prompt budget is spent.
	rec := env.do(t, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
