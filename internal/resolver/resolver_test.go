package resolver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"groovecall/internal/core"
)

func testService(catalog Catalog) *Service {
	cfg := &core.ResolverConfig{
		CacheCapacity:  16,
		CacheTTL:       time.Minute,
		ExtractTimeout: time.Second,
	}
	return NewService(cfg, catalog, zap.NewNop())
}

func TestResolveUnroutableKind(t *testing.T) {
	s := testService(nil)

	for _, kind := range []core.SourceKind{core.KindTelegram, core.KindIndex} {
		_, err := s.Resolve(context.Background(), kind, "whatever")
		if err == nil {
			t.Errorf("Resolve(%s) expected error", kind)
		}
	}
}

func TestResolveCatalogLinkWithoutClient(t *testing.T) {
	s := testService(nil)

	_, err := s.Resolve(context.Background(), core.KindSpotify, "https://open.spotify.com/track/abc")
	if err == nil {
		t.Fatal("Resolve() without a catalog client expected error")
	}
	if !strings.Contains(err.Error(), "catalog client") {
		t.Errorf("error = %v, expected missing-client message", err)
	}
}

func TestIsLink(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"http://example.com/stream", true},
		{"never gonna give you up", false},
		{"ftp://example.com/file", false},
	}
	for _, tt := range tests {
		if got := isLink(tt.ref); got != tt.want {
			t.Errorf("isLink(%q) = %v, expected %v", tt.ref, got, tt.want)
		}
	}
}

func TestDurationDisplay(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, ""},
		{-1, ""},
		{59, "0:59"},
		{221, "3:41"},
		{3600, "1:00:00"},
	}
	for _, tt := range tests {
		if got := durationDisplay(tt.seconds); got != tt.want {
			t.Errorf("durationDisplay(%d) = %q, expected %q", tt.seconds, got, tt.want)
		}
	}
}

func TestThumbURL(t *testing.T) {
	if got := thumbURL(""); got != "" {
		t.Errorf("thumbURL(\"\") = %q, expected empty", got)
	}
	got := thumbURL("dQw4w9WgXcQ")
	if got != "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Errorf("thumbURL() = %q", got)
	}
}

func TestParseMetadataLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want *trackMetadata
	}{
		{
			name: "full line",
			line: "dQw4w9WgXcQ\tNever Gonna Give You Up\t213\tFalse",
			want: &trackMetadata{ID: "dQw4w9WgXcQ", Title: "Never Gonna Give You Up", DurationSecs: 213},
		},
		{
			name: "live broadcast",
			line: "abc\tLofi Radio\tNA\tTrue",
			want: &trackMetadata{ID: "abc", Title: "Lofi Radio", IsLive: true},
		},
		{
			name: "missing id",
			line: "NA\tSomething",
			want: nil,
		},
		{
			name: "too few fields",
			line: "justonefield",
			want: nil,
		},
		{
			name: "id and title only",
			line: "abc\tShort",
			want: &trackMetadata{ID: "abc", Title: "Short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMetadataLine(tt.line)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("parseMetadataLine() = %+v, expected nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("parseMetadataLine() = nil, expected a value")
			}
			if *got != *tt.want {
				t.Errorf("parseMetadataLine() = %+v, expected %+v", got, tt.want)
			}
		})
	}
}

func TestCookieFileUsable(t *testing.T) {
	if cookieFileUsable("") {
		t.Error("empty path should not be usable")
	}
	if cookieFileUsable("/nonexistent/cookies.txt") {
		t.Error("missing file should not be usable")
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if cookieFileUsable(empty) {
		t.Error("empty file should not be usable")
	}

	filled := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(filled, []byte("# Netscape HTTP Cookie File\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !cookieFileUsable(filled) {
		t.Error("non-empty file should be usable")
	}
}
