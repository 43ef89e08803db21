// Package text provides playback-request parsing: URL extraction and source
// kind classification for chat commands.
package text

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"groovecall/internal/core"
)

const (
	// ytMusicPrefix routes a search query to the music-by-search service.
	ytMusicPrefix = "ytm:"

	watchBaseURL = "https://www.youtube.com/watch?v="
)

var (
	urlRegex = regexp.MustCompile(`https?://\S+`)

	youtubeDomains = map[string]bool{
		"youtube.com":   true,
		"youtu.be":      true,
		"m.youtube.com": true,
	}

	playlistSuffixes = []string{".m3u8", ".m3u", ".mpd", ".ts"}
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Classify decides which source kind a raw play query belongs to and returns
// the reference the resolver needs: a prepared link for URLs, the query text
// for searches.
func (p *Parser) Classify(query string) (core.SourceKind, string) {
	query = p.normalizeText(query)

	if strings.HasPrefix(strings.ToLower(query), ytMusicPrefix) {
		return core.KindYTMusic, strings.TrimSpace(query[len(ytMusicPrefix):])
	}

	link := p.ExtractURL(query)
	if link == "" {
		return core.KindYouTube, query
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return core.KindIndex, link
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	switch {
	case host == "music.youtube.com":
		return core.KindYTMusic, link
	case youtubeDomains[host]:
		return core.KindYouTube, PrepareYouTubeLink(link)
	case host == "open.spotify.com" || host == "spotify.com":
		return core.KindSpotify, link
	default:
		// Anything else is treated as a raw direct link or playlist index.
		return core.KindIndex, link
	}
}

// ExtractURL returns the first URL in the text, or empty.
func (p *Parser) ExtractURL(text string) string {
	return urlRegex.FindString(text)
}

// PrepareYouTubeLink canonicalizes the share-link variants (youtu.be, shorts,
// live) to a plain watch URL and drops trailing query parameters.
func PrepareYouTubeLink(link string) string {
	if strings.Contains(link, "youtu.be/") {
		id := lastPathSegment(link)
		if id != "" {
			return watchBaseURL + id
		}
	}
	for _, marker := range []string{"youtube.com/shorts/", "youtube.com/live/"} {
		if strings.Contains(link, marker) {
			id := lastPathSegment(link)
			if id != "" {
				return watchBaseURL + id
			}
		}
	}
	return strings.SplitN(link, "&", 2)[0]
}

func lastPathSegment(link string) string {
	trimmed := strings.SplitN(link, "?", 2)[0]
	parts := strings.Split(strings.TrimRight(trimmed, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// IsPlaylistIndex reports whether the link looks like a raw stream index
// rather than a catalog page.
func IsPlaylistIndex(link string) bool {
	lower := strings.ToLower(link)
	trimmed := strings.SplitN(lower, "?", 2)[0]
	for _, suffix := range playlistSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}

func (p *Parser) normalizeText(text string) string {
	text = norm.NFC.String(text)
	return strings.TrimSpace(text)
}
