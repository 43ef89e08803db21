package core

import (
	"context"
)

// FallbackStep is one alternative source for a track that failed to fetch:
// re-resolve the known title against another catalog, then fetch from there.
// A second, independent resolve+fetch round-trip, never a retry of the
// original call.
type FallbackStep struct {
	Name    string
	Resolve func(ctx context.Context, title string) (*ResolvedTrack, error)
	Fetch   func(ctx context.Context, track *ResolvedTrack) (PlaybackPayload, error)
}

// FallbackChain is the ordered list of alternatives tried for a source kind.
type FallbackChain []FallbackStep

// run walks the chain and returns the first step that yields a usable payload.
// The returned track is the fallback's own resolved data, not the primary's.
func (c FallbackChain) run(ctx context.Context, title string) (*ResolvedTrack, PlaybackPayload, string, error) {
	var lastErr error
	for _, step := range c {
		track, err := step.Resolve(ctx, title)
		if err != nil {
			lastErr = err
			continue
		}
		payload, err := step.Fetch(ctx, track)
		if err != nil {
			lastErr = err
			continue
		}
		if payload.Ref() == "" {
			continue
		}
		return track, payload, step.Name, nil
	}
	if lastErr == nil {
		lastErr = ErrNotFound
	}
	return nil, PlaybackPayload{}, "", lastErr
}
