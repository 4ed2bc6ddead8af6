package driven

import "context"

// PlaylistSource defines the interface for retrieving raw M3U playlists.
// This is a driven port implemented by transport adapters (e.g., HTTP).
type PlaylistSource interface {
	// Fetch returns the playlist text published at url.
	Fetch(ctx context.Context, url string) (string, error)
}
