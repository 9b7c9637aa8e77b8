package assistant

import (
	"context"
	"testing"

	"github.com/dwrenn/tracktalk/internal/catalog"
)

func TestTopArtists_MapsRecords(t *testing.T) {
	cat := &fakeCatalog{
		topArtists: []catalog.Artist{
			{ID: "a1", Name: "Artist A", Genres: []string{"indie rock"}, Popularity: 80,
				Images: []catalog.Image{{URL: "http://img/a1"}}},
			{ID: "a2", Name: "Artist B", Popularity: 60},
		},
	}
	svc := New(&fakeCompleter{})

	records, err := svc.TopArtists(context.Background(), cat)
	if err != nil {
		t.Fatalf("top artists: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].ImageURL != "http://img/a1" {
		t.Errorf("image = %q", records[0].ImageURL)
	}
	if records[1].ImageURL != "" {
		t.Errorf("artist without images should have empty URL, got %q", records[1].ImageURL)
	}
}

func TestMostPlayedGenres_AggregatesAndSorts(t *testing.T) {
	// Artist a1 appears on two tracks, a2 on one. Shared genre "rock" gets
	// 2+1=3, "folk" gets 2, "jazz" gets 1.
	cat := &fakeCatalog{
		topTracks: []catalog.Track{
			{ID: "t1", Artists: []catalog.Artist{{ID: "a1"}}},
			{ID: "t2", Artists: []catalog.Artist{{ID: "a1"}}},
			{ID: "t3", Artists: []catalog.Artist{{ID: "a2"}}},
		},
		artists: map[string]*catalog.Artist{
			"a1": {ID: "a1", Genres: []string{"rock", "folk"}},
			"a2": {ID: "a2", Genres: []string{"rock", "jazz"}},
		},
	}
	svc := New(&fakeCompleter{})

	genres, err := svc.MostPlayedGenres(context.Background(), cat)
	if err != nil {
		t.Fatalf("genres: %v", err)
	}

	want := []GenreCount{{"rock", 3}, {"folk", 2}, {"jazz", 1}}
	if len(genres) != len(want) {
		t.Fatalf("genres = %+v", genres)
	}
	for i := range want {
		if genres[i] != want[i] {
			t.Fatalf("genres[%d] = %+v, want %+v", i, genres[i], want[i])
		}
	}

	// a1 appears on two tracks but must be looked up once.
	if len(cat.artistCalls) != 2 {
		t.Fatalf("artist lookups = %v, want one per distinct artist", cat.artistCalls)
	}
}

func TestMostPlayedGenres_CapsLookups(t *testing.T) {
	tracks := make([]catalog.Track, 10)
	artists := make(map[string]*catalog.Artist, 10)
	for i := range tracks {
		id := "a" + string(rune('0'+i))
		tracks[i] = catalog.Track{ID: "t" + id, Artists: []catalog.Artist{{ID: id}}}
		artists[id] = &catalog.Artist{ID: id, Genres: []string{"ambient"}}
	}
	cat := &fakeCatalog{topTracks: tracks, artists: artists}
	svc := New(&fakeCompleter{}, WithMaxGenreLookups(3))

	genres, err := svc.MostPlayedGenres(context.Background(), cat)
	if err != nil {
		t.Fatalf("genres: %v", err)
	}
	if len(cat.artistCalls) != 3 {
		t.Fatalf("artist lookups = %d, want capped at 3", len(cat.artistCalls))
	}
	if len(genres) != 1 || genres[0].Count != 3 {
		t.Fatalf("genres = %+v", genres)
	}
}
