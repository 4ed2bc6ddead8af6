package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/alorle/iptv-catalog/internal/classify"
	"github.com/alorle/iptv-catalog/internal/m3u"
	"github.com/alorle/iptv-catalog/internal/port/driven"
	"github.com/alorle/iptv-catalog/metrics"
)

// Import errors
var (
	ErrNoSources   = errors.New("at least one playlist URL is required")
	ErrFetchFailed = errors.New("failed to fetch playlist")
	ErrNoImport    = errors.New("no import has completed yet")
	ErrReadFailed  = errors.New("failed to read playlist")
)

// maxConcurrentFetches bounds parallel downloads within one import.
const maxConcurrentFetches = 4

// ImportReport summarizes one completed import.
type ImportReport struct {
	ID         uuid.UUID      `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []string       `json:"sources"`
	Stats      classify.Stats `json:"stats"`
	// Rejected counts classified records the catalog could not store,
	// such as entries whose title is nothing but markers.
	Rejected int `json:"rejected"`
}

// ImportService downloads playlists, classifies their entries and merges
// the result into the catalog.
type ImportService struct {
	source     driven.PlaylistSource
	repo       driven.CatalogRepository
	classifier *classify.Classifier
	logger     zerolog.Logger
	now        func() time.Time

	mu   sync.RWMutex
	last *ImportReport
}

// NewImportService creates a new ImportService.
func NewImportService(
	source driven.PlaylistSource,
	repo driven.CatalogRepository,
	classifier *classify.Classifier,
	logger zerolog.Logger,
) *ImportService {
	return &ImportService{
		source:     source,
		repo:       repo,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Import fetches every URL concurrently and imports their entries in URL
// order. If any download fails nothing is merged and the error wraps
// ErrFetchFailed.
func (s *ImportService) Import(ctx context.Context, urls ...string) (ImportReport, error) {
	if len(urls) == 0 {
		return ImportReport{}, ErrNoSources
	}

	started := s.now()
	texts := make([]string, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, url := range urls {
		g.Go(func() error {
			text, err := s.source.Fetch(gctx, url)
			if err != nil {
				metrics.RecordSourceFetchError()
				s.logger.Warn().Err(err).Str("url", url).Msg("playlist download failed")
				return fmt.Errorf("%w: %s: %w", ErrFetchFailed, url, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordImport(false, s.now().Sub(started).Seconds())
		return ImportReport{}, err
	}

	var entries []m3u.Entry
	for _, text := range texts {
		entries = append(entries, m3u.Parse(text)...)
	}

	return s.run(ctx, started, append([]string(nil), urls...), entries)
}

// ImportReader imports a playlist supplied directly rather than downloaded,
// streaming it from r. Read errors wrap
// ErrReadFailed and the reader's own error; nothing is merged.
func (s *ImportService) ImportReader(ctx context.Context, r io.Reader) (ImportReport, error) {
	started := s.now()
	entries, err := m3u.ParseReader(r)
	if err != nil {
		metrics.RecordImport(false, s.now().Sub(started).Seconds())
		return ImportReport{}, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return s.run(ctx, started, []string{}, entries)
}

// LastReport returns the most recent successful import.
// Returns ErrNoImport if none has completed.
func (s *ImportService) LastReport() (ImportReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return ImportReport{}, ErrNoImport
	}
	return *s.last, nil
}

func (s *ImportService) run(ctx context.Context, started time.Time, sources []string, entries []m3u.Entry) (ImportReport, error) {
	result := s.classifier.Classify(entries)

	rejected, err := s.repo.Merge(ctx, result.Movies, result.Series)
	if err != nil {
		metrics.RecordImport(false, s.now().Sub(started).Seconds())
		return ImportReport{}, fmt.Errorf("failed to merge catalog: %w", err)
	}

	report := ImportReport{
		ID:         uuid.New(),
		StartedAt:  started,
		FinishedAt: s.now(),
		Sources:    sources,
		Stats:      result.Stats,
		Rejected:   rejected,
	}

	st := result.Stats
	metrics.RecordImport(true, report.FinishedAt.Sub(started).Seconds())
	metrics.RecordEntries(st.Channels, st.Movies, st.Episodes, st.Duplicates, st.Discarded)
	s.updateCatalogSize(ctx)

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	s.logger.Info().
		Str("id", report.ID.String()).
		Int("sources", len(sources)).
		Int("entries", st.Total).
		Int("channels", st.Channels).
		Int("movies", st.Movies).
		Int("series", st.Series).
		Int("episodes", st.Episodes).
		Int("discarded", st.Discarded).
		Int("rejected", rejected).
		Dur("duration", report.FinishedAt.Sub(started)).
		Msg("import finished")

	return report, nil
}

func (s *ImportService) updateCatalogSize(ctx context.Context) {
	movies, err := s.repo.ListMovies(ctx)
	if err != nil {
		return
	}
	series, err := s.repo.ListSeries(ctx)
	if err != nil {
		return
	}
	metrics.SetCatalogSize(len(movies), len(series))
}
