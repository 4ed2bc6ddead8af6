package driven

import (
	"context"

	"github.com/alorle/iptv-catalog/internal/catalog"
)

// CatalogRepository defines the interface for storing the imported catalog.
type CatalogRepository interface {
	// Merge adds movies and series to the catalog. Movies already stored
	// under the same address are kept; series are matched by key and gain
	// the episodes they did not have yet. Records that cannot be stored
	// (no title, no address) are skipped and counted in rejected.
	Merge(ctx context.Context, movies []catalog.Movie, series []catalog.Series) (rejected int, err error)

	// ListMovies returns every stored movie ordered by title.
	ListMovies(ctx context.Context) ([]catalog.Movie, error)

	// ListSeries returns every stored series ordered by title.
	ListSeries(ctx context.Context) ([]catalog.Series, error)

	// FindSeries retrieves a series by title, compared by series key.
	// Returns catalog.ErrSeriesNotFound if it does not exist.
	FindSeries(ctx context.Context, title string) (catalog.Series, error)

	// DeleteMovie removes the movie stored under address.
	// Returns catalog.ErrMovieNotFound if it does not exist.
	DeleteMovie(ctx context.Context, address string) error

	// DeleteSeries removes a series by title.
	// Returns catalog.ErrSeriesNotFound if it does not exist.
	DeleteSeries(ctx context.Context, title string) error

	// Clear removes everything.
	Clear(ctx context.Context) error

	// Ping checks if the repository is operational.
	Ping(ctx context.Context) error
}
