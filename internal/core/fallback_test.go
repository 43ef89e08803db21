package core

import (
	"context"
	"errors"
	"testing"
)

func step(name string, resolveErr, fetchErr error, ref string) FallbackStep {
	return FallbackStep{
		Name: name,
		Resolve: func(context.Context, string) (*ResolvedTrack, error) {
			if resolveErr != nil {
				return nil, resolveErr
			}
			return &ResolvedTrack{Title: name}, nil
		},
		Fetch: func(context.Context, *ResolvedTrack) (PlaybackPayload, error) {
			if fetchErr != nil {
				return PlaybackPayload{}, fetchErr
			}
			if ref == "" {
				return PlaybackPayload{}, nil
			}
			return DirectStream(ref), nil
		},
	}
}

func TestFallbackChainFirstUsableWins(t *testing.T) {
	chain := FallbackChain{
		step("broken-resolve", ErrNotFound, nil, ""),
		step("broken-fetch", nil, ErrDownload, ""),
		step("empty-payload", nil, nil, ""),
		step("works", nil, nil, "http://x/stream"),
		step("never-reached", nil, nil, "http://y/stream"),
	}

	track, payload, name, err := chain.run(context.Background(), "some title")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if name != "works" {
		t.Errorf("winning step = %q, expected %q", name, "works")
	}
	if track.Title != "works" {
		t.Errorf("track = %v, expected the winning step's data", track)
	}
	if payload.Ref() != "http://x/stream" {
		t.Errorf("payload ref = %q", payload.Ref())
	}
}

func TestFallbackChainExhausted(t *testing.T) {
	chain := FallbackChain{
		step("a", ErrNotFound, nil, ""),
		step("b", nil, ErrDownload, ""),
	}

	_, _, _, err := chain.run(context.Background(), "title")
	if !errors.Is(err, ErrDownload) {
		t.Errorf("run() error = %v, expected the last failure", err)
	}
}

func TestFallbackChainEmpty(t *testing.T) {
	var chain FallbackChain

	_, _, _, err := chain.run(context.Background(), "title")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("run() error = %v, expected ErrNotFound", err)
	}
}
