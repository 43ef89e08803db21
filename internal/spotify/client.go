// Package spotify provides the secondary music catalog: track lookup behind
// Spotify links and title search for cross-source fallback.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"groovecall/internal/core"
	"groovecall/pkg/fuzzy"
)

const (
	// MaxSearchResults limits track search results considered for ranking.
	MaxSearchResults = 10
	// ShortLinkTimeout bounds the redirect resolution of shortened links.
	ShortLinkTimeout = 10 * time.Second
)

var (
	trackURLRegex = regexp.MustCompile(`(?:https?://)?(?:open\.)?spotify\.com/(?:intl-[a-z]{2}/)?track/([a-zA-Z0-9]+)`)
	trackURIRegex = regexp.MustCompile(`spotify:track:([a-zA-Z0-9]+)`)
)

// Client talks to the Spotify Web API with client-credentials auth. Only the
// public catalog is touched, so no user token or OAuth redirect is involved.
type Client struct {
	config     *core.SpotifyConfig
	logger     *zap.Logger
	client     *spotify.Client
	normalizer *fuzzy.Normalizer
	httpClient *http.Client
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	return &Client{
		config:     config,
		logger:     logger,
		normalizer: fuzzy.NewNormalizer(),
		httpClient: &http.Client{Timeout: ShortLinkTimeout},
	}
}

// Authenticate obtains an app token. The oauth2 transport refreshes it
// transparently afterwards.
func (c *Client) Authenticate(ctx context.Context) error {
	creds := &clientcredentials.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}

	c.client = spotify.New(spotifyauth.New().Client(ctx, token))
	c.logger.Info("Authenticated with the music catalog")
	return nil
}

// LookupLink resolves a track link to catalog metadata.
func (c *Client) LookupLink(ctx context.Context, link string) (*core.ResolvedTrack, error) {
	if c.client == nil {
		return nil, fmt.Errorf("%w: catalog client not authenticated", core.ErrResolutionBackend)
	}

	trackID, err := c.ExtractTrackID(link)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, err)
	}

	track, err := c.client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrResolutionBackend, err)
	}

	return c.convertTrack(track, link), nil
}

// SearchTrack finds the catalog track best matching a free-text title, used
// when the primary source cannot produce playable media.
func (c *Client) SearchTrack(ctx context.Context, title string) (*core.ResolvedTrack, error) {
	if c.client == nil {
		return nil, fmt.Errorf("%w: catalog client not authenticated", core.ErrResolutionBackend)
	}

	query := c.normalizer.NormalizeTitle(title)
	results, err := c.client.Search(ctx, query, spotify.SearchTypeTrack)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrResolutionBackend, err)
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, fmt.Errorf("%w: %q", core.ErrNotFound, title)
	}

	tracks := results.Tracks.Tracks
	if len(tracks) > MaxSearchResults {
		tracks = tracks[:MaxSearchResults]
	}

	best := c.rankTracks(tracks, query)
	return c.convertTrack(best, best.ExternalURLs["spotify"]), nil
}

// rankTracks orders candidates by title similarity to the query and returns
// the winner. Search relevance from the backend is a tiebreaker via the
// stable sort.
func (c *Client) rankTracks(tracks []spotify.FullTrack, normalizedQuery string) *spotify.FullTrack {
	type scored struct {
		idx   int
		score float64
	}

	ranked := make([]scored, 0, len(tracks))
	for i := range tracks {
		candidate := c.normalizer.NormalizeTitle(displayTitle(&tracks[i]))
		ranked = append(ranked, scored{
			idx:   i,
			score: c.normalizer.CalculateSimilarity(normalizedQuery, candidate),
		})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})
	return &tracks[ranked[0].idx]
}

func (c *Client) convertTrack(track *spotify.FullTrack, link string) *core.ResolvedTrack {
	resolved := &core.ResolvedTrack{
		Title:    displayTitle(track),
		Link:     link,
		SourceID: string(track.ID),
		Kind:     core.KindSpotify,
	}
	if track.Duration > 0 {
		seconds := int(time.Duration(track.Duration) * time.Millisecond / time.Second)
		resolved.DurationDisplay = core.SecondsToDisplay(seconds)
	}
	if len(track.Album.Images) > 0 {
		resolved.Thumbnail = track.Album.Images[0].URL
	}
	return resolved
}

// ExtractTrackID pulls the track id out of any of the link shapes Spotify
// hands out: canonical URLs, spotify: URIs, and shortened redirect links.
func (c *Client) ExtractTrackID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)

	if matches := trackURIRegex.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1], nil
	}
	if matches := trackURLRegex.FindStringSubmatch(rawURL); len(matches) > 1 {
		return stripQuery(matches[1]), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	hostname := strings.ToLower(u.Hostname())
	if hostname == "spotify.link" || hostname == "spotify.app.link" {
		resolved, err := c.resolveShortURL(rawURL)
		if err != nil {
			return "", fmt.Errorf("failed to resolve shortened URL: %w", err)
		}
		return c.ExtractTrackID(resolved)
	}

	return "", fmt.Errorf("no track id in %q", rawURL)
}

// resolveShortURL follows a shortened link to its canonical location without
// fetching the page body.
func (c *Client) resolveShortURL(shortURL string) (string, error) {
	req, err := http.NewRequest(http.MethodHead, shortURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	final := resp.Request.URL.String()
	if final == shortURL {
		return "", fmt.Errorf("short link did not redirect")
	}
	return final, nil
}

func displayTitle(track *spotify.FullTrack) string {
	if len(track.Artists) == 0 {
		return track.Name
	}
	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}
	return track.Name + " - " + strings.Join(names, ", ")
}

func stripQuery(id string) string {
	if idx := strings.IndexAny(id, "?&"); idx != -1 {
		return id[:idx]
	}
	return id
}
