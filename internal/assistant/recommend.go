package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	// recommendTarget is how many resolved tracks the playlist aims for.
	recommendTarget = 20

	// likedSampleSize is the single page of liked songs used for dedup.
	likedSampleSize = 50

	playlistAssistantPrompt = "You are a playlist generating assistant."

	recommendedPlaylistName = "Recommended Playlist"

	playlistURLPrefix = "https://open.spotify.com/playlist/"
)

// recommendLinePattern matches completion reply lines of the form
//
//	1. "Song Title" by Artist Name
//
// Lines that do not match are dropped without raising an error; partial or
// garbled completions simply yield fewer candidates.
var recommendLinePattern = regexp.MustCompile(`^\s*\d+\.\s*"([^"]+)"\s+by\s+(.+?)\s*$`)

type candidate struct {
	Song   string
	Artist string
}

// parseRecommendations extracts (song, artist) candidates from the
// completion's free-text reply, line by line.
func parseRecommendations(reply string) []candidate {
	var candidates []candidate
	for _, line := range strings.Split(reply, "\n") {
		if m := recommendLinePattern.FindStringSubmatch(line); m != nil {
			candidates = append(candidates, candidate{Song: m[1], Artist: m[2]})
		}
	}
	return candidates
}

// Recommendation is the outcome of the recommendation flow.
type Recommendation struct {
	TopSongs    []TrackRecord
	Playlist    []TrackRecord
	PlaylistURL string

	// Empty is set when no candidate resolved to a real track; in that case
	// no playlist was created.
	Empty bool
}

// Recommend asks the language model for songs similar to the user's top
// tracks, resolves each suggestion against the catalog, skips anything
// already in the user's liked songs and collects the result into a new
// private playlist.
func (s *Service) Recommend(ctx context.Context, cat Catalog) (*Recommendation, error) {
	top, err := cat.TopTracks(ctx, 5, "")
	if err != nil {
		return nil, fmt.Errorf("fetch top tracks: %w", err)
	}

	type seedTrack struct {
		Song   string `json:"song"`
		Artist string `json:"artist"`
	}
	seeds := make([]seedTrack, 0, len(top))
	for _, t := range top {
		artist := ""
		if len(t.Artists) > 0 {
			artist = t.Artists[0].Name
		}
		seeds = append(seeds, seedTrack{Song: t.Name, Artist: artist})
	}

	// One page of liked songs, by design: dedup is best-effort, not a full
	// library scan.
	liked, err := cat.SavedTracks(ctx, likedSampleSize, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch liked songs: %w", err)
	}
	likedIDs := make(map[string]bool, len(liked.Items))
	for _, item := range liked.Items {
		likedIDs[item.Track.ID] = true
	}

	seedsJSON, _ := json.Marshal(seeds)
	prompt := fmt.Sprintf(
		"Generate a playlist of %d songs that are similar to the following songs but by different artists in the same genre: %s",
		recommendTarget, seedsJSON,
	)

	reply, err := s.completer.Complete(ctx, playlistAssistantPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}

	var trackIDs []string
	var resolved []TrackRecord
	for _, cand := range parseRecommendations(reply) {
		tracks, err := cat.SearchTracks(ctx, cand.Song+" "+cand.Artist, 1)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", cand.Song, err)
		}
		if len(tracks) == 0 {
			continue
		}
		track := tracks[0]
		if likedIDs[track.ID] {
			continue
		}
		trackIDs = append(trackIDs, track.ID)
		resolved = append(resolved, trackRecord(track))
		if len(trackIDs) == recommendTarget {
			break
		}
	}

	rec := &Recommendation{TopSongs: trackRecords(top), Playlist: resolved}

	// Creation is conditional on non-empty results; an empty playlist is
	// never created.
	if len(trackIDs) == 0 {
		rec.Empty = true
		return rec, nil
	}

	user, err := cat.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch user profile: %w", err)
	}
	playlist, err := cat.CreatePlaylist(ctx, user.ID, recommendedPlaylistName, false)
	if err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}
	if err := cat.AddTracks(ctx, playlist.ID, trackIDs); err != nil {
		return nil, fmt.Errorf("add tracks: %w", err)
	}

	rec.PlaylistURL = playlistURLPrefix + playlist.ID
	return rec, nil
}
