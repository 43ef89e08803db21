package core

import (
	"context"

	"groovecall/internal/chat"
)

// SourceKind identifies which backend family a track came from.
type SourceKind int

const (
	// KindYouTube is the primary video catalog (search or direct link).
	KindYouTube SourceKind = iota
	// KindSpotify is the catalog-equivalent music service; metadata comes from
	// Spotify, audio from the matching YouTube upload.
	KindSpotify
	// KindYTMusic is the music-by-search service (YouTube Music).
	KindYTMusic
	// KindTelegram is forwarded chat media already downloaded by the frontend.
	KindTelegram
	// KindLive is a live broadcast played from its stream URL.
	KindLive
	// KindIndex is a raw direct link or playlist index (m3u8 and friends).
	KindIndex
)

// String returns the lowercase tag used in logs and metrics labels.
func (k SourceKind) String() string {
	switch k {
	case KindYouTube:
		return "youtube"
	case KindSpotify:
		return "spotify"
	case KindYTMusic:
		return "ytmusic"
	case KindTelegram:
		return "telegram"
	case KindLive:
		return "live"
	case KindIndex:
		return "index"
	default:
		return "unknown"
	}
}

// MediaType distinguishes audio-only from video playback.
type MediaType string

const (
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

// LiveDuration is the display sentinel for live/unknown track durations.
const LiveDuration = "Live Track"

// ResolvedTrack is the output of resolution. Immutable once produced.
type ResolvedTrack struct {
	Title           string
	Link            string // canonical watch/page URL
	SourceID        string // backend-native identifier (video id etc.)
	DurationDisplay string // "3:41", LiveDuration, or "" when unknown
	Thumbnail       string
	Kind            SourceKind
}

// PayloadKind tags a PlaybackPayload so the dispatcher knows whether
// post-playback file cleanup applies.
type PayloadKind int

const (
	// PayloadNone is the zero payload, produced by failed fetches.
	PayloadNone PayloadKind = iota
	// PayloadLocalFile is a downloaded file; it is cleaned up after playback.
	PayloadLocalFile
	// PayloadDirectStream is a remote URL playable without download; nothing
	// local exists to clean up.
	PayloadDirectStream
)

// PlaybackPayload is the output of fetch: a local file or a direct stream URL.
type PlaybackPayload struct {
	Kind PayloadKind
	Path string // set for PayloadLocalFile
	URL  string // set for PayloadDirectStream
}

// LocalFile builds a local-file payload.
func LocalFile(path string) PlaybackPayload {
	return PlaybackPayload{Kind: PayloadLocalFile, Path: path}
}

// DirectStream builds a direct-stream payload.
func DirectStream(url string) PlaybackPayload {
	return PlaybackPayload{Kind: PayloadDirectStream, URL: url}
}

// Ref returns the media reference handed to the voice call: the file path for
// local payloads, the URL for direct streams, empty for no payload.
func (p PlaybackPayload) Ref() string {
	switch p.Kind {
	case PayloadLocalFile:
		return p.Path
	case PayloadDirectStream:
		return p.URL
	default:
		return ""
	}
}

// QueueEntry is one row in a chat's playback queue. The entry at index 0 is
// the track currently streaming into the voice call.
type QueueEntry struct {
	ChatID          int64
	OriginChatID    int64
	MediaRef        string // local path, or a tagged reference (vid_/live_/index_url)
	Title           string
	DurationDisplay string
	RequestedBy     string
	SourceID        string
	MediaType       MediaType

	// NowPlaying is set exactly once, when the entry becomes head of queue and
	// its announcement message has been sent.
	NowPlaying *chat.MessageRef
}

// FetchOptions select the fetch mode for a resolved track.
type FetchOptions struct {
	Video         bool
	SongFormatID  string // song mode: explicit format id
	TitleOverride string // song mode: file name override
}

// Resolver produces a ResolvedTrack from a source reference.
type Resolver interface {
	Resolve(ctx context.Context, kind SourceKind, ref string) (*ResolvedTrack, error)
	IsLive(ctx context.Context, link string) bool
}

// Fetcher turns a ResolvedTrack into a playable payload.
type Fetcher interface {
	Fetch(ctx context.Context, track *ResolvedTrack, opts FetchOptions) (PlaybackPayload, error)
}

// VoiceClient drives the external voice-call transport.
type VoiceClient interface {
	// JoinCall joins the chat's voice call and starts streaming mediaRef.
	JoinCall(ctx context.Context, chatID, originChatID int64, mediaRef string, video bool, poster string) error

	// LeaveCall disconnects from the chat's voice call.
	LeaveCall(ctx context.Context, chatID int64) error
}
