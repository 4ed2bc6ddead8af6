package application

import (
	"context"

	"github.com/alorle/iptv-catalog/internal/catalog"
)

// mockPlaylistSource is a mock implementation of driven.PlaylistSource for testing.
type mockPlaylistSource struct {
	fetchFunc func(ctx context.Context, url string) (string, error)
}

func (m *mockPlaylistSource) Fetch(ctx context.Context, url string) (string, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return "", nil
}

// mockCatalogRepository is a mock implementation of driven.CatalogRepository for testing.
type mockCatalogRepository struct {
	mergeFunc        func(ctx context.Context, movies []catalog.Movie, series []catalog.Series) (int, error)
	listMoviesFunc   func(ctx context.Context) ([]catalog.Movie, error)
	listSeriesFunc   func(ctx context.Context) ([]catalog.Series, error)
	findSeriesFunc   func(ctx context.Context, title string) (catalog.Series, error)
	deleteMovieFunc  func(ctx context.Context, address string) error
	deleteSeriesFunc func(ctx context.Context, title string) error
	clearFunc        func(ctx context.Context) error
	pingFunc         func(ctx context.Context) error
}

func (m *mockCatalogRepository) Merge(ctx context.Context, movies []catalog.Movie, series []catalog.Series) (int, error) {
	if m.mergeFunc != nil {
		return m.mergeFunc(ctx, movies, series)
	}
	return 0, nil
}

func (m *mockCatalogRepository) ListMovies(ctx context.Context) ([]catalog.Movie, error) {
	if m.listMoviesFunc != nil {
		return m.listMoviesFunc(ctx)
	}
	return []catalog.Movie{}, nil
}

func (m *mockCatalogRepository) ListSeries(ctx context.Context) ([]catalog.Series, error) {
	if m.listSeriesFunc != nil {
		return m.listSeriesFunc(ctx)
	}
	return []catalog.Series{}, nil
}

func (m *mockCatalogRepository) FindSeries(ctx context.Context, title string) (catalog.Series, error) {
	if m.findSeriesFunc != nil {
		return m.findSeriesFunc(ctx, title)
	}
	return catalog.Series{}, catalog.ErrSeriesNotFound
}

func (m *mockCatalogRepository) DeleteMovie(ctx context.Context, address string) error {
	if m.deleteMovieFunc != nil {
		return m.deleteMovieFunc(ctx, address)
	}
	return nil
}

func (m *mockCatalogRepository) DeleteSeries(ctx context.Context, title string) error {
	if m.deleteSeriesFunc != nil {
		return m.deleteSeriesFunc(ctx, title)
	}
	return nil
}

func (m *mockCatalogRepository) Clear(ctx context.Context) error {
	if m.clearFunc != nil {
		return m.clearFunc(ctx)
	}
	return nil
}

func (m *mockCatalogRepository) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}
