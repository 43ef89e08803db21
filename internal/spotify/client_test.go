package spotify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"groovecall/internal/core"
)

func TestExtractTrackID(t *testing.T) {
	c := NewClient(&core.SpotifyConfig{}, zap.NewNop())

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "canonical track URL",
			url:  "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT",
			want: "4cOdK2wGLETKBW3PvgPWqT",
		},
		{
			name: "track URL with query",
			url:  "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT?si=abc123",
			want: "4cOdK2wGLETKBW3PvgPWqT",
		},
		{
			name: "intl track URL",
			url:  "https://open.spotify.com/intl-de/track/4cOdK2wGLETKBW3PvgPWqT",
			want: "4cOdK2wGLETKBW3PvgPWqT",
		},
		{
			name: "spotify URI",
			url:  "spotify:track:4cOdK2wGLETKBW3PvgPWqT",
			want: "4cOdK2wGLETKBW3PvgPWqT",
		},
		{
			name: "URL without scheme",
			url:  "open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT",
			want: "4cOdK2wGLETKBW3PvgPWqT",
		},
		{
			name:    "album URL",
			url:     "https://open.spotify.com/album/abc",
			wantErr: true,
		},
		{
			name:    "unrelated URL",
			url:     "https://example.com/track/abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ExtractTrackID(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ExtractTrackID(%q) = %q, expected error", tt.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractTrackID(%q) error = %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ExtractTrackID(%q) = %q, expected %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestLookupLinkUnauthenticated(t *testing.T) {
	c := NewClient(&core.SpotifyConfig{}, zap.NewNop())

	_, err := c.LookupLink(context.Background(), "https://open.spotify.com/track/abc")
	if !errors.Is(err, core.ErrResolutionBackend) {
		t.Errorf("LookupLink() error = %v, expected ErrResolutionBackend", err)
	}
}

func TestSearchTrackUnauthenticated(t *testing.T) {
	c := NewClient(&core.SpotifyConfig{}, zap.NewNop())

	_, err := c.SearchTrack(context.Background(), "some song")
	if !errors.Is(err, core.ErrResolutionBackend) {
		t.Errorf("SearchTrack() error = %v, expected ErrResolutionBackend", err)
	}
}

func TestStripQuery(t *testing.T) {
	if got := stripQuery("abc?si=1"); got != "abc" {
		t.Errorf("stripQuery() = %q", got)
	}
	if got := stripQuery("abc"); got != "abc" {
		t.Errorf("stripQuery() = %q", got)
	}
}
