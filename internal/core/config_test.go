package core

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Resolver.CacheCapacity != DefaultCacheCapacity {
		t.Errorf("CacheCapacity = %d, expected %d", cfg.Resolver.CacheCapacity, DefaultCacheCapacity)
	}
	if cfg.Resolver.ExtractTimeout != DefaultExtractTimeoutSecs*time.Second {
		t.Errorf("ExtractTimeout = %v", cfg.Resolver.ExtractTimeout)
	}
	if cfg.App.CleanupBufferSecs != DefaultCleanupBufferSecs {
		t.Errorf("CleanupBufferSecs = %d, expected %d", cfg.App.CleanupBufferSecs, DefaultCleanupBufferSecs)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Port = %d, expected %d", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.App.Language != "en" {
		t.Errorf("Language = %q, expected en", cfg.App.Language)
	}
	if cfg.Fetcher.DownloadDir == "" {
		t.Error("DownloadDir must have a default")
	}
	if cfg.Voice.BridgeURL == "" {
		t.Error("BridgeURL must have a default")
	}
}

func TestSourceKindString(t *testing.T) {
	tests := []struct {
		kind SourceKind
		want string
	}{
		{KindYouTube, "youtube"},
		{KindSpotify, "spotify"},
		{KindYTMusic, "ytmusic"},
		{KindTelegram, "telegram"},
		{KindLive, "live"},
		{KindIndex, "index"},
		{SourceKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, expected %q", got, tt.want)
		}
	}
}

func TestPlaybackPayloadRef(t *testing.T) {
	if got := LocalFile("/tmp/a.m4a").Ref(); got != "/tmp/a.m4a" {
		t.Errorf("LocalFile Ref() = %q", got)
	}
	if got := DirectStream("http://x/y").Ref(); got != "http://x/y" {
		t.Errorf("DirectStream Ref() = %q", got)
	}
	if got := (PlaybackPayload{}).Ref(); got != "" {
		t.Errorf("zero payload Ref() = %q, expected empty", got)
	}
}
