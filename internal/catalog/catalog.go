// Package catalog holds the video-on-demand catalog built from playlists:
// movies and series with their episodes.
package catalog

import (
	"errors"
	"sort"
	"strings"
)

// DefaultGenre is used when an entry carries no group label.
const DefaultGenre = "Uncategorized"

// Domain errors
var (
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrEmptyAddress   = errors.New("address cannot be empty")
	ErrMovieNotFound  = errors.New("movie not found")
	ErrSeriesNotFound = errors.New("series not found")
)

// Movie is a standalone release.
type Movie struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Address     string `json:"address"`
	ImageURL    string `json:"image_url"`
	Genre       string `json:"genre"`
	Year        string `json:"year"`
}

// Episode is one playable item of a series.
type Episode struct {
	Title   string `json:"title"`
	Address string `json:"address"`
}

// Series groups episodes under a title inferred from their names.
type Series struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Genre       string    `json:"genre"`
	Year        string    `json:"year"`
	Episodes    []Episode `json:"episodes"`
}

// Key returns the grouping key of the series.
func (s Series) Key() string {
	return SeriesKey(s.Title)
}

// HasEpisode reports whether an episode with the given address exists.
func (s Series) HasEpisode(address string) bool {
	for _, ep := range s.Episodes {
		if ep.Address == address {
			return true
		}
	}
	return false
}

// AddEpisode appends ep unless an episode with the same address is
// already present. It reports whether the episode was added.
func (s *Series) AddEpisode(ep Episode) bool {
	if s.HasEpisode(ep.Address) {
		return false
	}
	s.Episodes = append(s.Episodes, ep)
	return true
}

// SeriesKey normalizes a series title into its case-insensitive key.
func SeriesKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Validate checks the fields a movie cannot be stored without.
func (m Movie) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(m.Address) == "" {
		return ErrEmptyAddress
	}
	return nil
}

// Filter narrows catalog listings. Zero value matches everything.
type Filter struct {
	Query string
	Genre string
}

// Match reports whether a title/genre pair passes the filter: the query is
// a case-insensitive substring of the title, the genre matches exactly.
func (f Filter) Match(title, genre string) bool {
	if f.Genre != "" && genre != f.Genre {
		return false
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(f.Query))
}

// FilterMovies returns the movies that pass f, keeping their order.
func FilterMovies(movies []Movie, f Filter) []Movie {
	result := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if f.Match(m.Title, m.Genre) {
			result = append(result, m)
		}
	}
	return result
}

// FilterSeries returns the series that pass f, keeping their order.
func FilterSeries(series []Series, f Filter) []Series {
	result := make([]Series, 0, len(series))
	for _, s := range series {
		if f.Match(s.Title, s.Genre) {
			result = append(result, s)
		}
	}
	return result
}

// Genres returns the distinct non-empty genres used across the catalog.
func Genres(movies []Movie, series []Series) []string {
	seen := make(map[string]bool)
	var genres []string

	add := func(g string) {
		if g != "" && !seen[g] {
			seen[g] = true
			genres = append(genres, g)
		}
	}
	for _, m := range movies {
		add(m.Genre)
	}
	for _, s := range series {
		add(s.Genre)
	}

	sort.Strings(genres)
	if genres == nil {
		genres = []string{}
	}
	return genres
}
