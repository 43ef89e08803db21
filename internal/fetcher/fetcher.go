// Package fetcher turns resolved tracks into playable payloads: a file
// downloaded to disk or a direct stream URL.
package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"groovecall/internal/core"
	"groovecall/internal/store"
)

const (
	audioFormat = "bestaudio[ext=m4a]/bestaudio/best"
	videoFormat = "(bestvideo[height<=?720][width<=?1280][ext=mp4])+(bestaudio[ext=m4a])/best[height<=?720]"

	// directURLTTL bounds how long an extracted stream URL is reused; the
	// signed URLs the backends hand out expire server-side not long after.
	directURLTTL = 30 * time.Minute
	directURLCap = 256
)

// Service implements core.Fetcher. Downloads are deduplicated through the
// store index so a track queued twice hits disk once.
type Service struct {
	config *core.Config
	index  *store.DownloadIndex
	direct *expirable.LRU[string, string]
	logger *zap.Logger
}

func NewService(config *core.Config, index *store.DownloadIndex, logger *zap.Logger) *Service {
	return &Service{
		config: config,
		index:  index,
		direct: expirable.NewLRU[string, string](directURLCap, nil, directURLTTL),
		logger: logger,
	}
}

func (s *Service) Fetch(ctx context.Context, track *core.ResolvedTrack, opts core.FetchOptions) (core.PlaybackPayload, error) {
	switch track.Kind {
	case core.KindLive:
		url, err := s.streamURL(ctx, track.Link, opts.Video)
		if err != nil {
			return core.PlaybackPayload{}, err
		}
		return core.DirectStream(url), nil
	case core.KindIndex:
		return core.DirectStream(track.Link), nil
	case core.KindTelegram:
		// Chat media arrives already downloaded by the frontend.
		return core.PlaybackPayload{}, fmt.Errorf("%w: chat media carries its own file", core.ErrUnsupportedFormat)
	default:
		if opts.Video && s.config.Fetcher.DirectVideoStream {
			url, err := s.streamURL(ctx, track.Link, true)
			if err != nil {
				return core.PlaybackPayload{}, err
			}
			return core.DirectStream(url), nil
		}
		return s.download(ctx, track, opts)
	}
}

func (s *Service) download(ctx context.Context, track *core.ResolvedTrack, opts core.FetchOptions) (core.PlaybackPayload, error) {
	key := dedupKey(track.SourceID, opts)
	if path, ok := s.index.Lookup(key); ok {
		if fileExists(path) {
			s.logger.Debug("Reusing downloaded file",
				zap.String("id", track.SourceID),
				zap.String("path", path))
			return core.LocalFile(path), nil
		}
		s.index.Remove(key)
	}

	cmd, args := s.newCommand()
	res, err := cmd.
		Format(formatFor(opts)).
		Output(s.outputTemplate(opts)).
		Print("%(filename)s").
		NoSimulate().
		Run(ctx, append(args, track.Link)...)
	if err != nil {
		if res != nil && strings.Contains(strings.ToLower(res.Stderr), "requested format") {
			return core.PlaybackPayload{}, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, err)
		}
		return core.PlaybackPayload{}, fmt.Errorf("%w: %s", core.ErrDownload, err)
	}

	path := firstLine(res.Stdout)
	if path == "" || !fileExists(path) {
		return core.PlaybackPayload{}, fmt.Errorf("%w: no file produced for %q", core.ErrDownload, track.SourceID)
	}

	s.index.Add(key, path)
	return core.LocalFile(path), nil
}

// streamURL extracts a direct media URL without downloading, used for live
// broadcasts and the direct-video mode. URLs are cached until they expire.
func (s *Service) streamURL(ctx context.Context, link string, video bool) (string, error) {
	key := link
	if video {
		key = "v:" + link
	}
	if url, ok := s.direct.Get(key); ok {
		return url, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.config.Resolver.ExtractTimeout)
	defer cancel()

	format := audioFormat
	if video {
		format = videoFormat
	}

	cmd, args := s.newCommand()
	res, err := cmd.
		Format(format).
		Print("%(url)s").
		Run(probeCtx, append(args, "--skip-download", link)...)
	if err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrDownload, err)
	}

	url := firstLine(res.Stdout)
	if url == "" {
		return "", fmt.Errorf("%w: no stream URL for %q", core.ErrDownload, link)
	}

	s.direct.Add(key, url)
	return url, nil
}

func (s *Service) newCommand() (*ytdlp.Command, []string) {
	cmd := ytdlp.New().
		Quiet().
		NoWarnings().
		IgnoreConfig()

	args := []string{
		"--no-playlist",
		"--no-check-certificates",
		"--socket-timeout", "30",
	}
	if cookie := s.config.Resolver.CookieFile; cookie != "" {
		if info, err := os.Stat(cookie); err == nil && info.Size() > 0 {
			args = append(args, "--cookies", cookie)
		}
	}
	return cmd, args
}

func (s *Service) outputTemplate(opts core.FetchOptions) string {
	name := "%(id)s.%(ext)s"
	if opts.TitleOverride != "" {
		name = sanitizeFileName(opts.TitleOverride) + ".%(ext)s"
	}
	return filepath.Join(s.config.Fetcher.DownloadDir, name)
}

func formatFor(opts core.FetchOptions) string {
	if opts.SongFormatID != "" {
		return opts.SongFormatID
	}
	if opts.Video {
		return videoFormat
	}
	return audioFormat
}

// dedupKey separates the audio and video renditions of the same source id.
func dedupKey(sourceID string, opts core.FetchOptions) string {
	mode := "audio"
	if opts.Video {
		mode = "video"
	}
	if opts.SongFormatID != "" {
		mode = "fmt_" + opts.SongFormatID
	}
	return sourceID + "/" + mode
}

func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "%", "_", "\x00", "")
	return replacer.Replace(name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func firstLine(out string) string {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
