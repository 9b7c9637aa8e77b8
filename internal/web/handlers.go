package web

import (
	"log"
	"net/http"

	"github.com/dwrenn/tracktalk/internal/assistant"
	"github.com/dwrenn/tracktalk/internal/auth/spotify"
	"github.com/dwrenn/tracktalk/internal/auth/token"
	"github.com/dwrenn/tracktalk/internal/config"
	"github.com/dwrenn/tracktalk/internal/session"
)

// suggestedPrompts are shown on the home page as starting points.
var suggestedPrompts = []string{
	"What's my most played genre?",
	"What's my favorite artist?",
	"What's the average duration of my top tracks?",
	"What's the most popular song in my top tracks?",
	"Can you recommend a new artist based on my listening history?",
}

type homeData struct {
	Prompts  []string
	Response string
	Playlist []assistant.TrackRecord
}

// LoginPageHandler serves the landing page with the Spotify consent link.
// Users who already hold a live session are sent straight to /home.
func LoginPageHandler(cfg config.SpotifyConfig, store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.Current(r); err == nil {
			http.Redirect(w, r, "/home", http.StatusFound)
			return
		}
		render(w, "login.html", map[string]string{
			"AuthURL": spotify.AuthorizeURL(cfg, r),
		})
	}
}

// HomePageHandler serves the prompt form with the suggested prompts.
func HomePageHandler(tokens *token.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := tokens.Acquire(w, r); err != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		render(w, "home.html", homeData{Prompts: suggestedPrompts})
	}
}

// PromptHandler answers a submitted prompt and re-renders the home page with
// the response and any track list the answer produced.
func PromptHandler(tokens *token.Manager, svc *assistant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := tokens.Acquire(w, r)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		prompt := r.PostFormValue("prompt")

		reply, err := svc.Respond(r.Context(), client, prompt)
		if err != nil {
			log.Printf("❌ Prompt failed: %v", err)
			http.Error(w, "Error fetching your listening data", http.StatusInternalServerError)
			return
		}

		render(w, "home.html", homeData{
			Prompts:  suggestedPrompts,
			Response: reply.Message,
			Playlist: reply.Playlist,
		})
	}
}

// RecommendHandler builds the recommended playlist page: top songs, the AI
// picks that resolved in the catalog, and a link to the created playlist.
func RecommendHandler(tokens *token.Manager, svc *assistant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := tokens.Acquire(w, r)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		rec, err := svc.Recommend(r.Context(), client)
		if err != nil {
			log.Printf("❌ Recommendation failed: %v", err)
			http.Error(w, "Error building your playlist", http.StatusInternalServerError)
			return
		}

		data := map[string]interface{}{
			"TopSongs":    rec.TopSongs,
			"Playlist":    rec.Playlist,
			"PlaylistURL": rec.PlaylistURL,
			"Error":       "",
		}
		if rec.Empty {
			data["Error"] = "No valid tracks found for the playlist."
		}
		render(w, "recommended_playlist.html", data)
	}
}

// TopSongsHandler lists the user's top tracks.
func TopSongsHandler(tokens *token.Manager, svc *assistant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := tokens.Acquire(w, r)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		songs, err := svc.TopSongs(r.Context(), client)
		if err != nil {
			log.Printf("❌ Top songs failed: %v", err)
			http.Error(w, "Error fetching your top songs", http.StatusInternalServerError)
			return
		}
		render(w, "top_songs.html", map[string]interface{}{"TopSongs": songs})
	}
}

// TopArtistsHandler lists the user's top artists.
func TopArtistsHandler(tokens *token.Manager, svc *assistant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := tokens.Acquire(w, r)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		artists, err := svc.TopArtists(r.Context(), client)
		if err != nil {
			log.Printf("❌ Top artists failed: %v", err)
			http.Error(w, "Error fetching your top artists", http.StatusInternalServerError)
			return
		}
		render(w, "top_artists.html", map[string]interface{}{"TopArtists": artists})
	}
}

// GenresHandler lists the genres of the user's top artists, most played first.
func GenresHandler(tokens *token.Manager, svc *assistant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := tokens.Acquire(w, r)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		genres, err := svc.MostPlayedGenres(r.Context(), client)
		if err != nil {
			log.Printf("❌ Genre listing failed: %v", err)
			http.Error(w, "Error fetching your genres", http.StatusInternalServerError)
			return
		}
		render(w, "most_played_genres.html", map[string]interface{}{"Genres": genres})
	}
}
