package resolver

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// trackMetadata is one parsed line of yt-dlp print output.
type trackMetadata struct {
	ID           string
	Title        string
	DurationSecs int
	IsLive       bool
}

const metadataPrintTemplate = "%(id)s\t%(title)s\t%(duration)s\t%(is_live)s"

// newCommand builds a yt-dlp invocation with the shared hardening flags. The
// cookie file is attached only when it exists and is non-empty; yt-dlp aborts
// on an empty cookie jar.
func newCommand(cookieFile string) (*ytdlp.Command, []string) {
	cmd := ytdlp.New().
		Quiet().
		NoWarnings().
		IgnoreConfig()

	args := []string{
		"--no-playlist",
		"--no-check-certificates",
		"--socket-timeout", "30",
	}
	if cookieFileUsable(cookieFile) {
		args = append(args, "--cookies", cookieFile)
	}
	return cmd, args
}

func cookieFileUsable(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// extractMetadata resolves a single link to its track metadata without
// downloading anything.
func extractMetadata(ctx context.Context, link, cookieFile string) (*trackMetadata, error) {
	cmd, args := newCommand(cookieFile)

	res, err := cmd.
		Print(metadataPrintTemplate).
		NoSimulate().
		Run(ctx, append(args, "--skip-download", link)...)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp metadata: %w", err)
	}

	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		if meta := parseMetadataLine(line); meta != nil {
			return meta, nil
		}
	}
	return nil, fmt.Errorf("yt-dlp metadata: no parsable output")
}

// flatSearch runs a yt-dlp catalog search without resolving each hit, used
// when the primary search client fails or returns nothing.
func flatSearch(ctx context.Context, query, cookieFile string, limit int) ([]trackMetadata, error) {
	cmd, args := newCommand(cookieFile)

	res, err := cmd.
		FlatPlaylist().
		Print(metadataPrintTemplate).
		PlaylistItems(fmt.Sprintf("1-%d", limit)).
		Run(ctx, append(args, fmt.Sprintf("ytsearch%d:%s", limit, query))...)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search: %w", err)
	}

	var hits []trackMetadata
	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		if meta := parseMetadataLine(line); meta != nil {
			hits = append(hits, *meta)
		}
	}
	return hits, nil
}

func parseMetadataLine(line string) *trackMetadata {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 || parts[0] == "" || parts[0] == "NA" {
		return nil
	}

	meta := &trackMetadata{ID: parts[0], Title: parts[1]}
	if len(parts) > 2 {
		if secs, err := strconv.Atoi(parts[2]); err == nil {
			meta.DurationSecs = secs
		}
	}
	if len(parts) > 3 {
		meta.IsLive = strings.EqualFold(parts[3], "true")
	}
	return meta
}
