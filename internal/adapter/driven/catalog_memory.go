package driven

import (
	"context"
	"sort"
	"sync"

	"github.com/alorle/iptv-catalog/internal/catalog"
)

// CatalogSorter orders catalog listings. *classify.Classifier satisfies it.
type CatalogSorter interface {
	SortMovies(movies []catalog.Movie)
	SortSeries(series []catalog.Series)
	SortEpisodes(episodes []catalog.Episode)
}

// CatalogMemoryRepository implements the CatalogRepository port in memory.
// Movies are keyed by address and series by series key.
type CatalogMemoryRepository struct {
	mu     sync.RWMutex
	sorter CatalogSorter
	movies map[string]catalog.Movie
	series map[string]*catalog.Series
}

// NewCatalogMemoryRepository creates an empty in-memory catalog.
func NewCatalogMemoryRepository(sorter CatalogSorter) *CatalogMemoryRepository {
	return &CatalogMemoryRepository{
		sorter: sorter,
		movies: make(map[string]catalog.Movie),
		series: make(map[string]*catalog.Series),
	}
}

// Merge adds movies and series. A movie whose address is already stored is
// skipped; a series whose key is already stored only gains new episodes.
// Records without a title or address are left out and counted in the
// returned rejected total.
func (r *CatalogMemoryRepository) Merge(ctx context.Context, movies []catalog.Movie, series []catalog.Series) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rejected := 0
	for _, m := range movies {
		if err := m.Validate(); err != nil {
			rejected++
			continue
		}
		if _, exists := r.movies[m.Address]; !exists {
			r.movies[m.Address] = m
		}
	}

	for _, s := range series {
		if s.Key() == "" {
			rejected++
			continue
		}

		existing, ok := r.series[s.Key()]
		if !ok {
			stored := s
			stored.Episodes = append([]catalog.Episode(nil), s.Episodes...)
			r.series[s.Key()] = &stored
			continue
		}

		added := false
		for _, ep := range s.Episodes {
			if existing.AddEpisode(ep) {
				added = true
			}
		}
		if added {
			r.sorter.SortEpisodes(existing.Episodes)
		}
	}

	return rejected, nil
}

// ListMovies returns all movies ordered by title, then by address.
func (r *CatalogMemoryRepository) ListMovies(ctx context.Context) ([]catalog.Movie, error) {
	r.mu.RLock()
	movies := make([]catalog.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		movies = append(movies, m)
	}
	r.mu.RUnlock()

	// Map iteration order is random; the title sort is stable.
	sort.Slice(movies, func(i, j int) bool { return movies[i].Address < movies[j].Address })
	r.sorter.SortMovies(movies)
	return movies, nil
}

// ListSeries returns all series ordered by title, then by series key.
func (r *CatalogMemoryRepository) ListSeries(ctx context.Context) ([]catalog.Series, error) {
	r.mu.RLock()
	series := make([]catalog.Series, 0, len(r.series))
	for _, s := range r.series {
		series = append(series, copySeries(s))
	}
	r.mu.RUnlock()

	sort.Slice(series, func(i, j int) bool { return series[i].Key() < series[j].Key() })
	r.sorter.SortSeries(series)
	return series, nil
}

// FindSeries retrieves a series by title, ignoring case.
func (r *CatalogMemoryRepository) FindSeries(ctx context.Context, title string) (catalog.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.series[catalog.SeriesKey(title)]
	if !ok {
		return catalog.Series{}, catalog.ErrSeriesNotFound
	}
	return copySeries(s), nil
}

// DeleteMovie removes the movie stored under address.
func (r *CatalogMemoryRepository) DeleteMovie(ctx context.Context, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.movies[address]; !ok {
		return catalog.ErrMovieNotFound
	}
	delete(r.movies, address)
	return nil
}

// DeleteSeries removes a series by title, ignoring case.
func (r *CatalogMemoryRepository) DeleteSeries(ctx context.Context, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := catalog.SeriesKey(title)
	if _, ok := r.series[key]; !ok {
		return catalog.ErrSeriesNotFound
	}
	delete(r.series, key)
	return nil
}

// Clear removes every movie and series.
func (r *CatalogMemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.movies = make(map[string]catalog.Movie)
	r.series = make(map[string]*catalog.Series)
	return nil
}

// Ping always succeeds; the catalog lives in process memory.
func (r *CatalogMemoryRepository) Ping(ctx context.Context) error {
	return nil
}

func copySeries(s *catalog.Series) catalog.Series {
	out := *s
	out.Episodes = append([]catalog.Episode(nil), s.Episodes...)
	return out
}
