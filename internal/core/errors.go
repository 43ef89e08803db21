package core

import (
	"errors"
)

// Resolution and fetch failures, raised by the leaf components.
var (
	// ErrNotFound means no catalog had metadata for the reference.
	ErrNotFound = errors.New("track not found")
	// ErrResolutionBackend means a catalog backend failed outright.
	ErrResolutionBackend = errors.New("resolution backend error")
	// ErrDownload means the download or extraction step failed.
	ErrDownload = errors.New("download failed")
	// ErrUnsupportedFormat means no playable format exists for the request.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Dispatcher-visible failures. Everything a collaborator can throw is
// normalized into one of these two at the dispatcher boundary; internal
// distinctions (which catalog, which subprocess) stay behind it.
var (
	// ErrPlaybackUnavailable is terminal for a request: no usable media
	// reference after every configured fallback.
	ErrPlaybackUnavailable = errors.New("playback unavailable")
	// ErrPlaybackBackend is a transport failure (notification send) after the
	// media itself was viable.
	ErrPlaybackBackend = errors.New("playback backend error")
)
