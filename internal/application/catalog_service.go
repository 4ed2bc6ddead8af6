package application

import (
	"context"

	"github.com/alorle/iptv-catalog/internal/catalog"
	"github.com/alorle/iptv-catalog/internal/port/driven"
)

// CatalogService provides use cases for browsing and pruning the catalog.
// It depends only on domain packages and port interfaces.
type CatalogService struct {
	repo driven.CatalogRepository
}

// NewCatalogService creates a new CatalogService with the given repository.
func NewCatalogService(repo driven.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// ListMovies returns the movies matching f, ordered by title.
func (s *CatalogService) ListMovies(ctx context.Context, f catalog.Filter) ([]catalog.Movie, error) {
	movies, err := s.repo.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FilterMovies(movies, f), nil
}

// ListSeries returns the series matching f, ordered by title.
func (s *CatalogService) ListSeries(ctx context.Context, f catalog.Filter) ([]catalog.Series, error) {
	series, err := s.repo.ListSeries(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FilterSeries(series, f), nil
}

// GetSeries retrieves a series by title.
// Returns catalog.ErrSeriesNotFound if the series does not exist.
func (s *CatalogService) GetSeries(ctx context.Context, title string) (catalog.Series, error) {
	if catalog.SeriesKey(title) == "" {
		return catalog.Series{}, catalog.ErrEmptyTitle
	}
	return s.repo.FindSeries(ctx, title)
}

// Genres returns the distinct genres across movies and series.
func (s *CatalogService) Genres(ctx context.Context) ([]string, error) {
	movies, err := s.repo.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	series, err := s.repo.ListSeries(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Genres(movies, series), nil
}

// DeleteMovie removes the movie with the given address.
// Returns catalog.ErrMovieNotFound if it does not exist.
func (s *CatalogService) DeleteMovie(ctx context.Context, address string) error {
	if address == "" {
		return catalog.ErrEmptyAddress
	}
	return s.repo.DeleteMovie(ctx, address)
}

// DeleteSeries removes a series and all its episodes.
// Returns catalog.ErrSeriesNotFound if it does not exist.
func (s *CatalogService) DeleteSeries(ctx context.Context, title string) error {
	if catalog.SeriesKey(title) == "" {
		return catalog.ErrEmptyTitle
	}
	return s.repo.DeleteSeries(ctx, title)
}

// Clear empties the catalog.
func (s *CatalogService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
