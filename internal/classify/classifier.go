// Package classify turns flat playlist entries into a catalog of movies
// and series. Live channels and entries that look like neither are
// dropped; classification never fails.
package classify

import (
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/alorle/iptv-catalog/internal/catalog"
	"github.com/alorle/iptv-catalog/internal/m3u"
)

// Options carries the values classification would otherwise read from
// the environment.
type Options struct {
	// CurrentYear is assigned to series and to movies whose title has no
	// year. Zero means the wall-clock year at construction time.
	CurrentYear int
	// DefaultGenre is used for entries without a group label.
	DefaultGenre string
	// Language selects the collation used to order titles.
	Language language.Tag
}

// Stats counts how a classification pass routed its input.
type Stats struct {
	Total      int `json:"total"`
	Channels   int `json:"channels"`
	Movies     int `json:"movies"`
	Series     int `json:"series"`
	Episodes   int `json:"episodes"`
	Duplicates int `json:"duplicates"`
	Discarded  int `json:"discarded"`
}

// Result is the catalog produced from one entry sequence.
type Result struct {
	Movies []catalog.Movie
	Series []catalog.Series
	Stats  Stats
}

// Classifier applies a rule set to entry sequences. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	rules *Rules
	opts  Options
}

// New creates a Classifier. A nil rules value selects DefaultRules.
func New(rules *Rules, opts Options) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	if opts.CurrentYear == 0 {
		opts.CurrentYear = time.Now().Year()
	}
	if opts.DefaultGenre == "" {
		opts.DefaultGenre = catalog.DefaultGenre
	}
	return &Classifier{rules: rules, opts: opts}
}

// Classify partitions entries into movies and series. Channel detection
// takes precedence over everything else; episodes are grouped by series
// key and deduplicated by address; outputs are sorted by title.
func (c *Classifier) Classify(entries []m3u.Entry) Result {
	currentYear := strconv.Itoa(c.opts.CurrentYear)
	stats := Stats{Total: len(entries)}

	movies := []catalog.Movie{}
	seriesByKey := make(map[string]*catalog.Series)
	var keys []string

	for _, e := range entries {
		if c.rules.IsChannel(e.Title, e.Group) {
			stats.Channels++
			continue
		}

		if c.rules.IsEpisode(e.Title) {
			title := c.rules.SeriesTitle(e.Title)
			key := catalog.SeriesKey(title)
			ep := catalog.Episode{Title: e.Title, Address: e.URI}

			if s, ok := seriesByKey[key]; ok {
				if !s.AddEpisode(ep) {
					stats.Duplicates++
				}
				continue
			}

			seriesByKey[key] = &catalog.Series{
				Title:    title,
				ImageURL: e.Logo,
				Genre:    c.genre(e.Group),
				Year:     currentYear,
				Episodes: []catalog.Episode{ep},
			}
			keys = append(keys, key)
			continue
		}

		if c.rules.IsMovie(e.Title) {
			year, ok := c.rules.ReleaseYear(e.Title)
			if !ok {
				year = currentYear
			}
			movies = append(movies, catalog.Movie{
				Title:    c.rules.MovieTitle(e.Title),
				Address:  e.URI,
				ImageURL: e.Logo,
				Genre:    c.genre(e.Group),
				Year:     year,
			})
			continue
		}

		stats.Discarded++
	}

	series := make([]catalog.Series, 0, len(keys))
	for _, key := range keys {
		s := seriesByKey[key]
		c.SortEpisodes(s.Episodes)
		stats.Episodes += len(s.Episodes)
		series = append(series, *s)
	}

	c.SortMovies(movies)
	c.SortSeries(series)

	stats.Movies = len(movies)
	stats.Series = len(series)

	return Result{Movies: movies, Series: series, Stats: stats}
}

// SortEpisodes orders episodes by the number found in their titles.
// Episodes without a number sort first; ties keep their relative order.
func (c *Classifier) SortEpisodes(episodes []catalog.Episode) {
	sort.SliceStable(episodes, func(i, j int) bool {
		return c.rules.EpisodeNumberOf(episodes[i].Title) < c.rules.EpisodeNumberOf(episodes[j].Title)
	})
}

// SortMovies orders movies by title with the classifier's collation.
func (c *Classifier) SortMovies(movies []catalog.Movie) {
	// Collators keep scratch buffers, so each call gets its own.
	col := collate.New(c.opts.Language)
	sort.SliceStable(movies, func(i, j int) bool {
		return col.CompareString(movies[i].Title, movies[j].Title) < 0
	})
}

// SortSeries orders series by title with the classifier's collation.
func (c *Classifier) SortSeries(series []catalog.Series) {
	col := collate.New(c.opts.Language)
	sort.SliceStable(series, func(i, j int) bool {
		return col.CompareString(series[i].Title, series[j].Title) < 0
	})
}

func (c *Classifier) genre(group string) string {
	if group == "" {
		return c.opts.DefaultGenre
	}
	return group
}
