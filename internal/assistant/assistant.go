// Package assistant orchestrates catalog and completion calls into
// user-facing answers: prompt routing, library aggregation and playlist
// building.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/dwrenn/tracktalk/internal/catalog"
	"github.com/dwrenn/tracktalk/internal/util"
)

const (
	// keywordResultCap bounds keyword playlist searches.
	keywordResultCap = 20

	// contextSampleSize bounds the library sample sent as completion context.
	contextSampleSize = 10

	// defaultGenreLookups bounds distinct-artist lookups during genre
	// aggregation; the catalog has no batch artist endpoint, so each lookup
	// is one upstream call.
	defaultGenreLookups = 50

	// completionErrorReply is the fixed user-visible message when the
	// language model is unavailable. Upstream detail is never surfaced.
	completionErrorReply = "Error processing your request."

	dataAssistantPrompt = "You are a Spotify data assistant that analyzes the user's listening history and answers any questions from the user based on their data."
)

// Catalog is the slice of the music-service API the assistant consumes.
// *catalog.Client implements it; tests substitute fakes.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]catalog.Track, error)
	SavedTracks(ctx context.Context, limit, offset int) (*catalog.SavedTrackPage, error)
	AllSavedTracks(ctx context.Context) ([]catalog.SavedTrack, error)
	TopTracks(ctx context.Context, limit int, timeRange string) ([]catalog.Track, error)
	TopArtists(ctx context.Context, limit int, timeRange string) ([]catalog.Artist, error)
	Artist(ctx context.Context, artistID string) (*catalog.Artist, error)
	CurrentUser(ctx context.Context) (*catalog.User, error)
	CreatePlaylist(ctx context.Context, userID, name string, public bool) (*catalog.Playlist, error)
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// Completer produces a free-text reply from a system/user prompt pair.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// TrackRecord is the per-request view of a track rendered to the user. It
// has no identity beyond the request that produced it.
type TrackRecord struct {
	Song     string
	Artist   string
	Album    string
	Duration string // mm:ss
	CoverURL string
}

// ArtistRecord is the rendered view of an artist.
type ArtistRecord struct {
	Name       string
	Genres     []string
	Popularity int
	ImageURL   string
}

// GenreCount is one genre with its play count.
type GenreCount struct {
	Genre string
	Count int
}

// Reply is the outcome of routing one prompt.
type Reply struct {
	Message  string
	Playlist []TrackRecord
}

// Service routes prompts and builds answers. It holds the completion client
// and policy knobs; the catalog handle arrives per request because it is
// bound to that request's access token.
type Service struct {
	completer       Completer
	maxGenreLookups int
}

// Option customizes a Service.
type Option func(*Service)

// WithMaxGenreLookups bounds per-artist genre lookups.
func WithMaxGenreLookups(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxGenreLookups = n
		}
	}
}

// New creates an assistant service.
func New(completer Completer, opts ...Option) *Service {
	s := &Service{
		completer:       completer,
		maxGenreLookups: defaultGenreLookups,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Respond classifies the prompt and dispatches to the matching handler.
func (s *Service) Respond(ctx context.Context, cat Catalog, prompt string) (*Reply, error) {
	intent := Classify(prompt)
	switch intent.Kind {
	case KindPlaylistByKeyword:
		return s.keywordPlaylist(ctx, cat, intent.Keyword)
	case KindMostPopularArtist:
		return s.mostPopularArtist(ctx, cat)
	default:
		return s.generalQuery(ctx, cat, intent.Query)
	}
}

// keywordPlaylist searches the catalog for the keyword and returns the
// results as a playlist. Results are not deduplicated against the user's
// library.
func (s *Service) keywordPlaylist(ctx context.Context, cat Catalog, keyword string) (*Reply, error) {
	tracks, err := cat.SearchTracks(ctx, keyword, keywordResultCap)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return &Reply{
		Message:  fmt.Sprintf("Here's a playlist based on the %s mood:", keyword),
		Playlist: trackRecords(tracks),
	}, nil
}

// mostPopularArtist walks the whole saved-tracks library and picks the
// artist appearing most often. Ties break to the lexicographically smallest
// name so the answer is deterministic.
func (s *Service) mostPopularArtist(ctx context.Context, cat Catalog) (*Reply, error) {
	saved, err := cat.AllSavedTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch saved tracks: %w", err)
	}
	if len(saved) == 0 {
		return &Reply{Message: "You have no saved tracks yet."}, nil
	}

	frequency := make(map[string]int)
	for _, item := range saved {
		if len(item.Track.Artists) == 0 {
			continue
		}
		frequency[item.Track.Artists[0].Name]++
	}

	var best string
	var bestCount int
	for name, count := range frequency {
		if count > bestCount || (count == bestCount && name < best) {
			best, bestCount = name, count
		}
	}

	return &Reply{
		Message: fmt.Sprintf("Your most popular artist is %s, based on your saved tracks.", best),
	}, nil
}

// generalQuery forwards the prompt to the language model together with a
// bounded sample of the user's saved tracks. A completion failure degrades
// to a fixed message; it never fails the request.
func (s *Service) generalQuery(ctx context.Context, cat Catalog, query string) (*Reply, error) {
	page, err := cat.SavedTracks(ctx, contextSampleSize, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch library sample: %w", err)
	}

	type contextTrack struct {
		Song   string `json:"song"`
		Artist string `json:"artist"`
	}
	sample := make([]contextTrack, 0, len(page.Items))
	for _, item := range page.Items {
		artist := ""
		if len(item.Track.Artists) > 0 {
			artist = item.Track.Artists[0].Name
		}
		sample = append(sample, contextTrack{Song: item.Track.Name, Artist: artist})
	}
	sampleJSON, _ := json.Marshal(sample)

	userPrompt := fmt.Sprintf(
		"Here is some of the user's favorite data: %s. Now answer the following question based on this data: %s",
		sampleJSON, query,
	)

	reply, err := s.completer.Complete(ctx, dataAssistantPrompt, userPrompt)
	if err != nil {
		log.Printf("❌ Completion request failed: %v", err)
		return &Reply{Message: completionErrorReply}, nil
	}
	return &Reply{Message: reply}, nil
}

func trackRecords(tracks []catalog.Track) []TrackRecord {
	records := make([]TrackRecord, 0, len(tracks))
	for _, t := range tracks {
		records = append(records, trackRecord(t))
	}
	return records
}

func trackRecord(t catalog.Track) TrackRecord {
	rec := TrackRecord{
		Song:     t.Name,
		Album:    t.Album.Name,
		Duration: util.FormatDuration(t.DurationMS),
	}
	if len(t.Artists) > 0 {
		rec.Artist = t.Artists[0].Name
	}
	if len(t.Album.Images) > 0 {
		rec.CoverURL = t.Album.Images[0].URL
	}
	return rec
}
