package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dwrenn/tracktalk/internal/assistant"
	"github.com/dwrenn/tracktalk/internal/auth/spotify"
	"github.com/dwrenn/tracktalk/internal/auth/token"
	"github.com/dwrenn/tracktalk/internal/completion"
	"github.com/dwrenn/tracktalk/internal/config"
	"github.com/dwrenn/tracktalk/internal/db"
	"github.com/dwrenn/tracktalk/internal/session"
	"github.com/dwrenn/tracktalk/internal/version"
	"github.com/dwrenn/tracktalk/internal/web"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load(os.Getenv("TRACKTALK_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
		log.Fatal("Spotify client credentials are required (SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET)")
	}

	database, err := db.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	secret := db.CookieSecret(database)
	if secret == nil {
		log.Fatal("Cookie secret unavailable")
	}

	store := session.NewStore(database, secret, cfg.Session.CookieName)
	store.StartCleanupLoop(24 * time.Hour)

	tokens := token.NewManager(store,
		spotify.OAuthConfig(cfg.Spotify, cfg.Spotify.RedirectURL),
		token.WithForceLogout(cfg.Auth.ForceLogoutOnAuthError),
	)

	var completionOpts []completion.Option
	if cfg.Completion.BaseURL != "" {
		completionOpts = append(completionOpts, completion.WithBaseURL(cfg.Completion.BaseURL))
	}
	if cfg.Completion.Model != "" {
		completionOpts = append(completionOpts, completion.WithModel(cfg.Completion.Model))
	}
	completer := completion.NewClient(cfg.Completion.APIKey, completionOpts...)

	svc := assistant.New(completer, assistant.WithMaxGenreLookups(cfg.Limits.GenreLookups))

	window := cfg.Limits.PromptWindow()
	limiter := rate.NewLimiter(
		rate.Limit(float64(cfg.Limits.PromptCalls)/window.Seconds()),
		cfg.Limits.PromptCalls,
	)

	router := web.NewRouter(web.Deps{
		Spotify:       cfg.Spotify,
		Store:         store,
		Tokens:        tokens,
		Assistant:     svc,
		PromptLimiter: limiter,
	})

	log.Printf("🚀 TrackTalk %s starting on http://%s", version.Version, cfg.Listen)
	log.Printf("🎵 Log in at http://%s/ to connect your Spotify account", cfg.Listen)

	if err := http.ListenAndServe(cfg.Listen, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
