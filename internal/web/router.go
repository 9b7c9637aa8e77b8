package web

import (
	"net/http"

	"github.com/dwrenn/tracktalk/internal/assistant"
	"github.com/dwrenn/tracktalk/internal/auth/spotify"
	"github.com/dwrenn/tracktalk/internal/auth/token"
	"github.com/dwrenn/tracktalk/internal/config"
	"github.com/dwrenn/tracktalk/internal/logging"
	"github.com/dwrenn/tracktalk/internal/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Spotify       config.SpotifyConfig
	Store         *session.Store
	Tokens        *token.Manager
	Assistant     *assistant.Service
	PromptLimiter *rate.Limiter
}

// NewRouter builds the full route table.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(logging.RequestID)

	r.Get("/", LoginPageHandler(d.Spotify, d.Store))
	r.Get("/callback", spotify.HandleCallback(d.Spotify, d.Store))
	r.Get("/logout", spotify.HandleLogout(d.Store))

	r.Get("/home", HomePageHandler(d.Tokens))
	r.With(RateLimit(d.PromptLimiter)).Post("/home", PromptHandler(d.Tokens, d.Assistant))

	r.Get("/recommended_playlist", RecommendHandler(d.Tokens, d.Assistant))
	r.Get("/top_songs", TopSongsHandler(d.Tokens, d.Assistant))
	r.Get("/top_artists", TopArtistsHandler(d.Tokens, d.Assistant))
	r.Get("/most_played_genres", GenresHandler(d.Tokens, d.Assistant))

	return r
}
