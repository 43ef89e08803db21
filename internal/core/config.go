package core

import (
	"time"
)

const (
	// DefaultCleanupBufferSecs is added to a track's duration before its
	// downloaded file is deleted.
	DefaultCleanupBufferSecs = 30
	// DefaultExtractTimeoutSecs bounds a single yt-dlp extraction subprocess.
	DefaultExtractTimeoutSecs = 25
	// DefaultCacheCapacity caps the resolver's metadata cache.
	DefaultCacheCapacity = 512
	// DefaultCacheTTLSecs is how long a cached search result stays fresh.
	DefaultCacheTTLSecs = 1800
	// DefaultServerPort is the metrics/health HTTP port.
	DefaultServerPort = 8080
)

type Config struct {
	Telegram TelegramConfig
	Voice    VoiceConfig
	Spotify  SpotifyConfig
	Resolver ResolverConfig
	Fetcher  FetcherConfig
	Posters  PostersConfig
	Server   ServerConfig
	Log      LogConfig
	App      AppConfig
}

type TelegramConfig struct {
	BotToken string
	Username string // bot username, used in deep links on announcements
}

type VoiceConfig struct {
	BridgeURL   string // base URL of the voice-call bridge sidecar
	JoinTimeout time.Duration
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

type ResolverConfig struct {
	CacheCapacity  int
	CacheTTL       time.Duration
	ExtractTimeout time.Duration
	CookieFile     string
}

type FetcherConfig struct {
	DownloadDir string
	// DirectVideoStream trades storage for bandwidth: resolve non-live video
	// to a direct stream URL instead of downloading to disk.
	DirectVideoStream bool
	DedupCapacity     int
}

// PostersConfig holds the static poster images used for sources that have no
// per-track thumbnail.
type PostersConfig struct {
	Stream        string
	TelegramAudio string
	TelegramVideo string
	YTMusic       string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type AppConfig struct {
	Language          string
	CleanupBufferSecs int
}

func DefaultConfig() *Config {
	return &Config{
		Voice: VoiceConfig{
			BridgeURL:   "http://localhost:9390",
			JoinTimeout: 30 * time.Second,
		},
		Resolver: ResolverConfig{
			CacheCapacity:  DefaultCacheCapacity,
			CacheTTL:       DefaultCacheTTLSecs * time.Second,
			ExtractTimeout: DefaultExtractTimeoutSecs * time.Second,
		},
		Fetcher: FetcherConfig{
			DownloadDir:   "./downloads",
			DedupCapacity: 2048,
		},
		Posters: PostersConfig{
			Stream:        "https://telegra.ph/file/c54e2ae294102e1f22f05.jpg",
			TelegramAudio: "https://telegra.ph/file/d6f92c979ad96b2031cba.jpg",
			TelegramVideo: "https://telegra.ph/file/d6f92c979ad96b2031cba.jpg",
			YTMusic:       "https://telegra.ph/file/abb1a770b282045a53b2a.jpg",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		App: AppConfig{
			Language:          "en",
			CleanupBufferSecs: DefaultCleanupBufferSecs,
		},
	}
}
