package assistant

import (
	"context"
	"fmt"
	"log"
	"sort"
)

const (
	topListingSize  = 25
	genreSampleSize = 50
)

// TopSongs returns the user's top tracks as renderable records.
func (s *Service) TopSongs(ctx context.Context, cat Catalog) ([]TrackRecord, error) {
	tracks, err := cat.TopTracks(ctx, topListingSize, "")
	if err != nil {
		return nil, fmt.Errorf("fetch top tracks: %w", err)
	}
	return trackRecords(tracks), nil
}

// TopArtists returns the user's top artists as renderable records.
func (s *Service) TopArtists(ctx context.Context, cat Catalog) ([]ArtistRecord, error) {
	artists, err := cat.TopArtists(ctx, topListingSize, "")
	if err != nil {
		return nil, fmt.Errorf("fetch top artists: %w", err)
	}

	records := make([]ArtistRecord, 0, len(artists))
	for _, a := range artists {
		rec := ArtistRecord{Name: a.Name, Genres: a.Genres, Popularity: a.Popularity}
		if len(a.Images) > 0 {
			rec.ImageURL = a.Images[0].URL
		}
		records = append(records, rec)
	}
	return records, nil
}

// MostPlayedGenres aggregates genre tags across the artists of the user's
// top tracks. Genre tags live on the artist resource, so this costs one
// lookup per distinct artist; the fan-out is bounded by maxGenreLookups and
// each artist is looked up once no matter how many tracks it appears on.
// A track with several artists contributes through each of them, weighted
// by how many tracks the artist appears on.
func (s *Service) MostPlayedGenres(ctx context.Context, cat Catalog) ([]GenreCount, error) {
	tracks, err := cat.TopTracks(ctx, genreSampleSize, "")
	if err != nil {
		return nil, fmt.Errorf("fetch top tracks: %w", err)
	}

	// Count artist occurrences across track credits, keeping first-seen
	// order so the lookup cap cuts deterministically.
	occurrences := make(map[string]int)
	var order []string
	for _, t := range tracks {
		for _, a := range t.Artists {
			if a.ID == "" {
				continue
			}
			if occurrences[a.ID] == 0 {
				order = append(order, a.ID)
			}
			occurrences[a.ID]++
		}
	}

	if len(order) > s.maxGenreLookups {
		log.Printf("⚠️ Genre aggregation capped at %d of %d distinct artists", s.maxGenreLookups, len(order))
		order = order[:s.maxGenreLookups]
	}

	counts := make(map[string]int)
	for _, id := range order {
		artist, err := cat.Artist(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch artist %s: %w", id, err)
		}
		for _, genre := range artist.Genres {
			counts[genre] += occurrences[id]
		}
	}

	genres := make([]GenreCount, 0, len(counts))
	for genre, count := range counts {
		genres = append(genres, GenreCount{Genre: genre, Count: count})
	}
	sort.Slice(genres, func(i, j int) bool {
		if genres[i].Count != genres[j].Count {
			return genres[i].Count > genres[j].Count
		}
		return genres[i].Genre < genres[j].Genre
	})
	return genres, nil
}
