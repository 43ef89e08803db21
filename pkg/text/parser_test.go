package text

import (
	"testing"

	"groovecall/internal/core"
)

func TestClassify(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name         string
		query        string
		expectedKind core.SourceKind
		expectedRef  string
	}{
		{
			name:         "free text search",
			query:        "never gonna give you up",
			expectedKind: core.KindYouTube,
			expectedRef:  "never gonna give you up",
		},
		{
			name:         "youtube watch link",
			query:        "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expectedKind: core.KindYouTube,
			expectedRef:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "short link canonicalized",
			query:        "https://youtu.be/dQw4w9WgXcQ?t=10",
			expectedKind: core.KindYouTube,
			expectedRef:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "shorts link canonicalized",
			query:        "https://www.youtube.com/shorts/abc123xyz00",
			expectedKind: core.KindYouTube,
			expectedRef:  "https://www.youtube.com/watch?v=abc123xyz00",
		},
		{
			name:         "watch link with playlist params trimmed",
			query:        "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123",
			expectedKind: core.KindYouTube,
			expectedRef:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "spotify track link",
			query:        "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			expectedKind: core.KindSpotify,
			expectedRef:  "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:         "youtube music link",
			query:        "https://music.youtube.com/watch?v=abc",
			expectedKind: core.KindYTMusic,
			expectedRef:  "https://music.youtube.com/watch?v=abc",
		},
		{
			name:         "ytm search prefix",
			query:        "ytm: some quiet song",
			expectedKind: core.KindYTMusic,
			expectedRef:  "some quiet song",
		},
		{
			name:         "m3u8 link is index",
			query:        "https://cdn.example.org/live/stream.m3u8",
			expectedKind: core.KindIndex,
			expectedRef:  "https://cdn.example.org/live/stream.m3u8",
		},
		{
			name:         "unknown site is index",
			query:        "https://example.org/some/file.mp4",
			expectedKind: core.KindIndex,
			expectedRef:  "https://example.org/some/file.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ref := p.Classify(tt.query)
			if kind != tt.expectedKind {
				t.Errorf("Classify(%q) kind = %v, expected %v", tt.query, kind, tt.expectedKind)
			}
			if ref != tt.expectedRef {
				t.Errorf("Classify(%q) ref = %q, expected %q", tt.query, ref, tt.expectedRef)
			}
		})
	}
}

func TestExtractURL(t *testing.T) {
	p := NewParser()

	if got := p.ExtractURL("play https://youtu.be/x please"); got != "https://youtu.be/x" {
		t.Errorf("ExtractURL() = %q", got)
	}
	if got := p.ExtractURL("no links here"); got != "" {
		t.Errorf("ExtractURL() = %q, expected empty", got)
	}
}

func TestIsPlaylistIndex(t *testing.T) {
	tests := []struct {
		link     string
		expected bool
	}{
		{"https://cdn.example.org/stream.m3u8", true},
		{"https://cdn.example.org/stream.m3u8?token=abc", true},
		{"https://cdn.example.org/manifest.mpd", true},
		{"https://www.youtube.com/watch?v=abc", false},
	}

	for _, tt := range tests {
		if got := IsPlaylistIndex(tt.link); got != tt.expected {
			t.Errorf("IsPlaylistIndex(%q) = %v, expected %v", tt.link, got, tt.expected)
		}
	}
}
