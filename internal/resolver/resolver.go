// Package resolver turns source references (search queries, watch links,
// catalog links) into resolved track metadata.
package resolver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ppalone/ytsearch"
	"github.com/raitonoberu/ytmusic"
	"go.uber.org/zap"

	"groovecall/internal/core"
	"groovecall/pkg/fuzzy"
)

const (
	watchURLBase = "https://www.youtube.com/watch?v="
	// searchFallbackLimit bounds the yt-dlp flat search used when the primary
	// search client fails.
	searchFallbackLimit = 5
)

// Catalog looks up track metadata behind an external music catalog link.
// The Spotify client implements it.
type Catalog interface {
	LookupLink(ctx context.Context, link string) (*core.ResolvedTrack, error)
}

// Service implements core.Resolver across all searchable source kinds.
// Catalog search runs first; yt-dlp extraction is the fallback, always under
// the configured wall-clock timeout so a wedged subprocess cannot stall a
// chat.
type Service struct {
	config     *core.ResolverConfig
	catalog    Catalog
	normalizer *fuzzy.Normalizer
	cache      *queryCache
	logger     *zap.Logger
}

func NewService(config *core.ResolverConfig, catalog Catalog, logger *zap.Logger) *Service {
	return &Service{
		config:     config,
		catalog:    catalog,
		normalizer: fuzzy.NewNormalizer(),
		cache:      newQueryCache(config.CacheCapacity, config.CacheTTL),
		logger:     logger,
	}
}

func (s *Service) Resolve(ctx context.Context, kind core.SourceKind, ref string) (*core.ResolvedTrack, error) {
	switch kind {
	case core.KindYouTube:
		if isLink(ref) {
			return s.resolveYouTubeLink(ctx, ref)
		}
		return s.resolveYouTubeSearch(ctx, ref)
	case core.KindYTMusic:
		return s.resolveMusicSearch(ctx, ref)
	case core.KindSpotify:
		return s.resolveCatalogLink(ctx, ref)
	case core.KindLive:
		return s.resolveLive(ctx, ref)
	default:
		return nil, fmt.Errorf("%w: no catalog for source kind %s", core.ErrNotFound, kind)
	}
}

// IsLive probes whether a link points at a live broadcast. Probe failures
// count as not live; the regular branch will surface a real error later.
func (s *Service) IsLive(ctx context.Context, link string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.config.ExtractTimeout)
	defer cancel()

	meta, err := extractMetadata(ctx, link, s.config.CookieFile)
	if err != nil {
		s.logger.Debug("Liveness probe failed", zap.String("link", link), zap.Error(err))
		return false
	}
	return meta.IsLive
}

func (s *Service) resolveYouTubeSearch(ctx context.Context, query string) (*core.ResolvedTrack, error) {
	key := s.normalizer.NormalizeQuery(query)
	if track := s.cache.Get(key); track != nil {
		return track, nil
	}

	id, title, durationSecs, err := s.searchYouTube(ctx, query)
	if err != nil {
		return nil, err
	}

	track := &core.ResolvedTrack{
		Title:           title,
		Link:            watchURLBase + id,
		SourceID:        id,
		DurationDisplay: durationDisplay(durationSecs),
		Thumbnail:       thumbURL(id),
		Kind:            core.KindYouTube,
	}
	s.cache.Put(key, track)
	return track, nil
}

// searchYouTube returns the top catalog hit for a query. The search client
// runs first; on failure or an empty result set a yt-dlp flat search takes
// over under the extraction timeout.
func (s *Service) searchYouTube(ctx context.Context, query string) (id, title string, durationSecs int, err error) {
	client := ytsearch.NewClient(nil)
	res, searchErr := client.Search(ctx, query)
	if searchErr == nil && len(res.Results) > 0 {
		top := res.Results[0]
		return top.VideoID, top.Title, s.probeDuration(ctx, top.VideoID), nil
	}
	if searchErr != nil {
		s.logger.Debug("Search client failed, falling back to yt-dlp",
			zap.String("query", query), zap.Error(searchErr))
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.config.ExtractTimeout)
	defer cancel()

	hits, dlpErr := flatSearch(probeCtx, query, s.config.CookieFile, searchFallbackLimit)
	if dlpErr != nil {
		return "", "", 0, fmt.Errorf("%w: %s", core.ErrResolutionBackend, dlpErr)
	}
	if len(hits) == 0 {
		return "", "", 0, fmt.Errorf("%w: %q", core.ErrNotFound, query)
	}
	return hits[0].ID, hits[0].Title, hits[0].DurationSecs, nil
}

// probeDuration fills in the duration the search client does not carry.
// Best effort: an empty display means unknown and the queue shows it as such.
func (s *Service) probeDuration(ctx context.Context, id string) int {
	probeCtx, cancel := context.WithTimeout(ctx, s.config.ExtractTimeout)
	defer cancel()

	meta, err := extractMetadata(probeCtx, watchURLBase+id, s.config.CookieFile)
	if err != nil {
		s.logger.Debug("Duration probe failed", zap.String("id", id), zap.Error(err))
		return 0
	}
	return meta.DurationSecs
}

func (s *Service) resolveYouTubeLink(ctx context.Context, link string) (*core.ResolvedTrack, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ExtractTimeout)
	defer cancel()

	meta, err := extractMetadata(ctx, link, s.config.CookieFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrResolutionBackend, err)
	}

	return &core.ResolvedTrack{
		Title:           meta.Title,
		Link:            watchURLBase + meta.ID,
		SourceID:        meta.ID,
		DurationDisplay: durationDisplay(meta.DurationSecs),
		Thumbnail:       thumbURL(meta.ID),
		Kind:            core.KindYouTube,
	}, nil
}

func (s *Service) resolveMusicSearch(ctx context.Context, query string) (*core.ResolvedTrack, error) {
	key := "ytm:" + s.normalizer.NormalizeQuery(query)
	if track := s.cache.Get(key); track != nil {
		return track, nil
	}

	search := ytmusic.TrackSearch(query)
	res, err := search.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrResolutionBackend, err)
	}

	for _, hit := range res.Tracks {
		if hit.VideoID == "" {
			continue
		}
		title := hit.Title
		if len(hit.Artists) > 0 {
			title = hit.Title + " - " + hit.Artists[0].Name
		}
		track := &core.ResolvedTrack{
			Title:           title,
			Link:            watchURLBase + hit.VideoID,
			SourceID:        hit.VideoID,
			DurationDisplay: durationDisplay(hit.Duration),
			Thumbnail:       thumbURL(hit.VideoID),
			Kind:            core.KindYTMusic,
		}
		s.cache.Put(key, track)
		return track, nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrNotFound, query)
}

// resolveCatalogLink resolves a Spotify link: the catalog supplies the
// metadata, then a YouTube search finds the matching upload to stream.
func (s *Service) resolveCatalogLink(ctx context.Context, link string) (*core.ResolvedTrack, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("%w: catalog client not configured", core.ErrResolutionBackend)
	}

	meta, err := s.catalog.LookupLink(ctx, link)
	if err != nil {
		return nil, err
	}

	id, _, durationSecs, err := s.searchYouTube(ctx, meta.Title)
	if err != nil {
		return nil, err
	}

	track := &core.ResolvedTrack{
		Title:           meta.Title,
		Link:            watchURLBase + id,
		SourceID:        id,
		DurationDisplay: meta.DurationDisplay,
		Thumbnail:       meta.Thumbnail,
		Kind:            core.KindSpotify,
	}
	if track.DurationDisplay == "" {
		track.DurationDisplay = durationDisplay(durationSecs)
	}
	if track.Thumbnail == "" {
		track.Thumbnail = thumbURL(id)
	}
	return track, nil
}

func (s *Service) resolveLive(ctx context.Context, link string) (*core.ResolvedTrack, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ExtractTimeout)
	defer cancel()

	meta, err := extractMetadata(ctx, link, s.config.CookieFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrResolutionBackend, err)
	}

	return &core.ResolvedTrack{
		Title:           meta.Title,
		Link:            link,
		SourceID:        meta.ID,
		DurationDisplay: core.LiveDuration,
		Thumbnail:       thumbURL(meta.ID),
		Kind:            core.KindLive,
	}, nil
}

func isLink(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func durationDisplay(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return core.SecondsToDisplay(seconds)
}

// thumbURL builds the stable thumbnail location for a video id.
func thumbURL(id string) string {
	if id == "" {
		return ""
	}
	return "https://i.ytimg.com/vi/" + url.PathEscape(id) + "/hqdefault.jpg"
}
