package driven

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/alorle/iptv-catalog/internal/port/driven"
	"github.com/alorle/iptv-catalog/metrics"
)

// ErrCacheMiss is returned when no usable cached playlist exists.
var ErrCacheMiss = errors.New("playlist not cached")

// cachedPlaylist is the on-disk form of a cached download.
type cachedPlaylist struct {
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PlaylistFileCache stores the last successful download of each playlist
// URL as a JSON file named after the URL hash.
type PlaylistFileCache struct {
	baseDir string
	now     func() time.Time
}

// NewPlaylistFileCache creates a file cache rooted at baseDir, creating
// the directory if needed.
func NewPlaylistFileCache(baseDir string) (*PlaylistFileCache, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("cache directory cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &PlaylistFileCache{baseDir: baseDir, now: time.Now}, nil
}

// Get returns the cached playlist for url and when it was stored.
func (c *PlaylistFileCache) Get(url string) (string, time.Time, error) {
	data, err := os.ReadFile(c.path(url))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", time.Time{}, ErrCacheMiss
		}
		return "", time.Time{}, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry cachedPlaylist
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return entry.Content, entry.Timestamp, nil
}

// Set stores content as the latest download of url.
func (c *PlaylistFileCache) Set(url, content string) error {
	data, err := json.Marshal(cachedPlaylist{URL: url, Content: content, Timestamp: c.now()})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	// Write then rename so readers never see a partial file.
	tmp, err := os.CreateTemp(c.baseDir, "playlist-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(url)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cache file: %w", err)
	}
	return nil
}

func (c *PlaylistFileCache) path(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(c.baseDir, hex.EncodeToString(hash[:])+".json")
}

// FallbackPlaylistSource wraps a PlaylistSource and serves the last
// successful download when the upstream fails. Entries older than maxAge
// are not served; zero maxAge accepts any age.
type FallbackPlaylistSource struct {
	upstream driven.PlaylistSource
	cache    *PlaylistFileCache
	maxAge   time.Duration
	logger   zerolog.Logger
}

// NewFallbackPlaylistSource creates a caching decorator around upstream.
func NewFallbackPlaylistSource(upstream driven.PlaylistSource, cache *PlaylistFileCache, maxAge time.Duration, logger zerolog.Logger) *FallbackPlaylistSource {
	return &FallbackPlaylistSource{
		upstream: upstream,
		cache:    cache,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// Fetch downloads url, refreshing the cache on success and falling back
// to it on failure. The upstream error is returned when no usable cache
// entry exists.
func (s *FallbackPlaylistSource) Fetch(ctx context.Context, url string) (string, error) {
	text, err := s.upstream.Fetch(ctx, url)
	if err == nil {
		if setErr := s.cache.Set(url, text); setErr != nil {
			s.logger.Warn().Err(setErr).Str("url", url).Msg("failed to update playlist cache")
		}
		return text, nil
	}

	// A cancelled import must not be rescued by the cache.
	if ctx.Err() != nil {
		return "", err
	}

	cached, storedAt, cacheErr := s.cache.Get(url)
	if cacheErr != nil {
		return "", err
	}
	age := s.cache.now().Sub(storedAt)
	if s.maxAge > 0 && age > s.maxAge {
		return "", err
	}

	metrics.RecordCacheFallback()
	s.logger.Warn().
		Err(err).
		Str("url", url).
		Time("cached_at", storedAt).
		Msg("serving cached playlist after download failure")
	return cached, nil
}

// Ensure FallbackPlaylistSource implements the driven.PlaylistSource interface
var _ driven.PlaylistSource = (*FallbackPlaylistSource)(nil)
