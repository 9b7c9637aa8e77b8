package assistant

import (
	"regexp"
	"strings"
)

// Kind enumerates the recognized purposes of a free-text prompt.
type Kind int

const (
	// KindGeneralQuery sends the prompt to the language model with a sample
	// of the user's library as context.
	KindGeneralQuery Kind = iota

	// KindPlaylistByKeyword builds a track list from a catalog search.
	KindPlaylistByKeyword

	// KindMostPopularArtist aggregates the user's saved tracks by artist.
	KindMostPopularArtist
)

// Intent is the classified purpose of a prompt. It is derived purely from
// the prompt text and recomputed on every request.
type Intent struct {
	Kind    Kind
	Keyword string // playlist keyword, set when Kind is KindPlaylistByKeyword
	Query   string // lowercased prompt, set when Kind is KindGeneralQuery
}

var playlistPattern = regexp.MustCompile(`create a (\w+) playlist`)

// Classify derives an Intent from the raw prompt. Matching is
// case-insensitive and the first rule wins.
func Classify(prompt string) Intent {
	p := strings.ToLower(prompt)

	if m := playlistPattern.FindStringSubmatch(p); m != nil {
		return Intent{Kind: KindPlaylistByKeyword, Keyword: m[1]}
	}
	if strings.Contains(p, "most popular artist") {
		return Intent{Kind: KindMostPopularArtist}
	}
	return Intent{Kind: KindGeneralQuery, Query: p}
}
