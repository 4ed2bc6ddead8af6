package application

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/alorle/iptv-catalog/internal/adapter/driven"
	"github.com/alorle/iptv-catalog/internal/catalog"
	"github.com/alorle/iptv-catalog/internal/classify"
)

const (
	moviesPlaylist = `#EXTM3U
#EXTINF:-1 tvg-logo="http://img/heat.png" group-title="Action",Heat (1995)
http://vod/heat.mp4
#EXTINF:-1 group-title="Deportes",ESPN HD
http://live/espn
`
	seriesPlaylist = `#EXTM3U
#EXTINF:-1 group-title="Drama",Dark S01E02
http://vod/dark2.mp4
#EXTINF:-1 group-title="Drama",Dark S01E01
http://vod/dark1.mp4
`
)

func newTestClassifier() *classify.Classifier {
	return classify.New(nil, classify.Options{CurrentYear: 2030, Language: language.English})
}

func TestImportService_Import(t *testing.T) {
	t.Run("imports every source in URL order", func(t *testing.T) {
		source := &mockPlaylistSource{
			fetchFunc: func(ctx context.Context, url string) (string, error) {
				switch url {
				case "http://a/movies.m3u":
					return moviesPlaylist, nil
				case "http://a/series.m3u":
					return seriesPlaylist, nil
				}
				return "", errors.New("unexpected url")
			},
		}

		var merged struct {
			movies []catalog.Movie
			series []catalog.Series
		}
		repo := &mockCatalogRepository{
			mergeFunc: func(ctx context.Context, movies []catalog.Movie, series []catalog.Series) (int, error) {
				merged.movies = movies
				merged.series = series
				return 0, nil
			},
		}

		service := NewImportService(source, repo, newTestClassifier(), zerolog.Nop())
		report, err := service.Import(context.Background(), "http://a/movies.m3u", "http://a/series.m3u")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if report.ID == uuid.Nil {
			t.Error("expected report ID to be set")
		}
		if len(report.Sources) != 2 || report.Sources[0] != "http://a/movies.m3u" {
			t.Errorf("unexpected sources: %v", report.Sources)
		}
		want := classify.Stats{Total: 4, Channels: 1, Movies: 1, Series: 1, Episodes: 2}
		if report.Stats != want {
			t.Errorf("expected stats %+v, got %+v", want, report.Stats)
		}
		if len(merged.movies) != 1 || merged.movies[0].Title != "Heat" || merged.movies[0].Year != "1995" {
			t.Errorf("unexpected merged movies: %+v", merged.movies)
		}
		if len(merged.series) != 1 || merged.series[0].Episodes[0].Address != "http://vod/dark1.mp4" {
			t.Errorf("unexpected merged series: %+v", merged.series)
		}
		if report.FinishedAt.Before(report.StartedAt) {
			t.Error("expected FinishedAt not before StartedAt")
		}
	})

	t.Run("returns ErrNoSources without URLs", func(t *testing.T) {
		service := NewImportService(&mockPlaylistSource{}, &mockCatalogRepository{}, newTestClassifier(), zerolog.Nop())

		_, err := service.Import(context.Background())
		if !errors.Is(err, ErrNoSources) {
			t.Errorf("expected ErrNoSources, got %v", err)
		}
	})

	t.Run("fetch failure merges nothing", func(t *testing.T) {
		upstream := errors.New("connection refused")
		source := &mockPlaylistSource{
			fetchFunc: func(ctx context.Context, url string) (string, error) {
				if url == "http://a/broken.m3u" {
					return "", upstream
				}
				return moviesPlaylist, nil
			},
		}
		var mergeCalls atomic.Int32
		repo := &mockCatalogRepository{
			mergeFunc: func(ctx context.Context, movies []catalog.Movie, series []catalog.Series) (int, error) {
				mergeCalls.Add(1)
				return 0, nil
			},
		}

		service := NewImportService(source, repo, newTestClassifier(), zerolog.Nop())
		_, err := service.Import(context.Background(), "http://a/movies.m3u", "http://a/broken.m3u")

		if !errors.Is(err, ErrFetchFailed) {
			t.Errorf("expected ErrFetchFailed, got %v", err)
		}
		if !errors.Is(err, upstream) {
			t.Errorf("expected upstream error to be wrapped, got %v", err)
		}
		if mergeCalls.Load() != 0 {
			t.Errorf("expected no merge, got %d", mergeCalls.Load())
		}
		if _, err := service.LastReport(); !errors.Is(err, ErrNoImport) {
			t.Errorf("expected ErrNoImport after failed import, got %v", err)
		}
	})

	t.Run("merge failure is returned", func(t *testing.T) {
		repo := &mockCatalogRepository{
			mergeFunc: func(ctx context.Context, movies []catalog.Movie, series []catalog.Series) (int, error) {
				return 0, errors.New("store unavailable")
			},
		}
		source := &mockPlaylistSource{
			fetchFunc: func(ctx context.Context, url string) (string, error) { return moviesPlaylist, nil },
		}

		service := NewImportService(source, repo, newTestClassifier(), zerolog.Nop())
		if _, err := service.Import(context.Background(), "http://a/movies.m3u"); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestImportService_ImportReader_EmptySources(t *testing.T) {
	service := NewImportService(&mockPlaylistSource{}, &mockCatalogRepository{}, newTestClassifier(), zerolog.Nop())

	report, err := service.ImportReader(context.Background(), strings.NewReader(seriesPlaylist))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.Stats.Series != 1 || report.Stats.Episodes != 2 {
		t.Errorf("unexpected stats: %+v", report.Stats)
	}
	if report.Sources == nil || len(report.Sources) != 0 {
		t.Errorf("expected empty non-nil sources, got %v", report.Sources)
	}
}

func TestImportService_ImportReader(t *testing.T) {
	t.Run("imports a streamed playlist", func(t *testing.T) {
		service := NewImportService(&mockPlaylistSource{}, &mockCatalogRepository{}, newTestClassifier(), zerolog.Nop())

		report, err := service.ImportReader(context.Background(), strings.NewReader(seriesPlaylist))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if report.Stats.Series != 1 || report.Stats.Episodes != 2 {
			t.Errorf("unexpected stats: %+v", report.Stats)
		}
	})

	t.Run("read failure merges nothing", func(t *testing.T) {
		broken := errors.New("connection reset")
		var mergeCalls atomic.Int32
		repo := &mockCatalogRepository{
			mergeFunc: func(ctx context.Context, movies []catalog.Movie, series []catalog.Series) (int, error) {
				mergeCalls.Add(1)
				return 0, nil
			},
		}
		service := NewImportService(&mockPlaylistSource{}, repo, newTestClassifier(), zerolog.Nop())

		_, err := service.ImportReader(context.Background(), iotest.ErrReader(broken))
		if !errors.Is(err, ErrReadFailed) || !errors.Is(err, broken) {
			t.Errorf("expected ErrReadFailed wrapping the reader error, got %v", err)
		}
		if mergeCalls.Load() != 0 {
			t.Errorf("expected no merge, got %d", mergeCalls.Load())
		}
	})
}

func TestImportService_LogsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str("component", "import").Logger()
	service := NewImportService(&mockPlaylistSource{}, &mockCatalogRepository{}, newTestClassifier(), logger)

	if _, err := service.ImportReader(context.Background(), strings.NewReader(moviesPlaylist)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "import finished") {
		t.Fatalf("expected import log line, got %q", line)
	}
	if n := strings.Count(line, `"component"`); n != 1 {
		t.Errorf("expected component field once, found %d in %q", n, line)
	}
}

func TestImportService_MarkerOnlyTitles(t *testing.T) {
	const playlist = `#EXTM3U
#EXTINF:-1,Alien (1979)
http://vod/alien.mp4
#EXTINF:-1,S01E01
http://vod/untitled1.mp4
#EXTINF:-1,Show S01E01
http://vod/show1.mp4
#EXTINF:-1,(1999)
http://vod/untitled2.mp4
`
	classifier := newTestClassifier()
	repo := driven.NewCatalogMemoryRepository(classifier)
	service := NewImportService(&mockPlaylistSource{}, repo, classifier, zerolog.Nop())

	report, err := service.ImportReader(context.Background(), strings.NewReader(playlist))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.Rejected != 2 {
		t.Errorf("expected 2 rejected records, got %d", report.Rejected)
	}
	if _, err := service.LastReport(); err != nil {
		t.Errorf("expected report to be kept, got %v", err)
	}

	movies, _ := repo.ListMovies(context.Background())
	if len(movies) != 1 || movies[0].Title != "Alien" {
		t.Errorf("expected only Alien stored, got %+v", movies)
	}
	series, _ := repo.ListSeries(context.Background())
	if len(series) != 1 || series[0].Title != "Show" {
		t.Errorf("expected only Show stored, got %+v", series)
	}
}

func TestImportService_LastReport(t *testing.T) {
	service := NewImportService(&mockPlaylistSource{}, &mockCatalogRepository{}, newTestClassifier(), zerolog.Nop())
	fixed := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	if _, err := service.LastReport(); !errors.Is(err, ErrNoImport) {
		t.Fatalf("expected ErrNoImport, got %v", err)
	}

	first, _ := service.ImportReader(context.Background(), strings.NewReader(moviesPlaylist))
	second, _ := service.ImportReader(context.Background(), strings.NewReader(seriesPlaylist))

	last, err := service.LastReport()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if last.ID != second.ID || last.ID == first.ID {
		t.Errorf("expected the latest report, got %v", last.ID)
	}
	if !last.StartedAt.Equal(fixed) {
		t.Errorf("expected StartedAt %v, got %v", fixed, last.StartedAt)
	}
}
