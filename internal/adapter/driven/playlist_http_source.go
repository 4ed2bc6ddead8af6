package driven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alorle/iptv-catalog/internal/port/driven"
)

const (
	// HTTP client timeout for fetching playlists
	defaultFetchTimeout = 30 * time.Second

	// Upper bound on a playlist body
	defaultMaxPlaylistBytes int64 = 64 << 20
)

// ErrPlaylistTooLarge is returned when a playlist body exceeds the size cap.
var ErrPlaylistTooLarge = errors.New("playlist exceeds size limit")

// PlaylistHTTPSource implements the PlaylistSource port by downloading
// playlists over HTTP.
type PlaylistHTTPSource struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewPlaylistHTTPSource creates a new HTTP playlist source. Non-positive
// arguments select the defaults.
func NewPlaylistHTTPSource(timeout time.Duration, maxBytes int64) *PlaylistHTTPSource {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxPlaylistBytes
	}
	return &PlaylistHTTPSource{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBytes: maxBytes,
	}
}

// Fetch downloads the playlist at url and returns its body.
func (s *PlaylistHTTPSource) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	if int64(len(body)) > s.maxBytes {
		return "", fmt.Errorf("%s: %w (%d bytes)", url, ErrPlaylistTooLarge, s.maxBytes)
	}

	return string(body), nil
}

// Ensure PlaylistHTTPSource implements the driven.PlaylistSource interface
var _ driven.PlaylistSource = (*PlaylistHTTPSource)(nil)
