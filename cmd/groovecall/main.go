// Package main provides the GrooveCall CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"groovecall/internal/chat/telegram"
	"groovecall/internal/core"
	"groovecall/internal/fetcher"
	httpserver "groovecall/internal/http"
	"groovecall/internal/resolver"
	"groovecall/internal/spotify"
	"groovecall/internal/store"
	"groovecall/internal/voice"
	"groovecall/pkg/text"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "groovecall",
	Short: "GrooveCall - Telegram group voice chat music bot",
	Long: `GrooveCall resolves music requests from Telegram group chats and streams
them into the group voice call through an external call bridge, with per-chat
queues and cross-source fallback.`,
	RunE: runGrooveCall,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("telegram-bot-token", "", "Telegram bot token")
	rootCmd.PersistentFlags().String("telegram-username", "", "Telegram bot username (without @)")
	rootCmd.PersistentFlags().String("voice-bridge-url", "", "voice call bridge base URL")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("download-dir", "./downloads", "directory for downloaded media")
	rootCmd.PersistentFlags().String("cookie-file", "", "cookie file passed to yt-dlp")
	rootCmd.PersistentFlags().Bool("direct-video-stream", false, "stream video from a direct URL instead of downloading")
	rootCmd.PersistentFlags().Int("server-port", core.DefaultServerPort, "HTTP server port")
	rootCmd.PersistentFlags().String("language", "en", "bot language (en, hi)")
	rootCmd.PersistentFlags().Int("cleanup-buffer", core.DefaultCleanupBufferSecs, "seconds added past track duration before file deletion")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("GROOVECALL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Telegram.BotToken = viper.GetString("telegram-bot-token")
	cfg.Telegram.Username = viper.GetString("telegram-username")

	if bridgeURL := viper.GetString("voice-bridge-url"); bridgeURL != "" {
		cfg.Voice.BridgeURL = bridgeURL
	}
	if joinTimeout := viper.GetInt("voice-join-timeout"); joinTimeout > 0 {
		cfg.Voice.JoinTimeout = time.Duration(joinTimeout) * time.Second
	}

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")

	cfg.Resolver.CookieFile = viper.GetString("cookie-file")
	if capacity := viper.GetInt("cache-capacity"); capacity > 0 {
		cfg.Resolver.CacheCapacity = capacity
	}
	if timeout := viper.GetInt("extract-timeout"); timeout > 0 {
		cfg.Resolver.ExtractTimeout = time.Duration(timeout) * time.Second
	}

	cfg.Fetcher.DownloadDir = viper.GetString("download-dir")
	if cfg.Fetcher.DownloadDir == "" {
		cfg.Fetcher.DownloadDir = "./downloads"
	}
	cfg.Fetcher.DirectVideoStream = viper.GetBool("direct-video-stream")

	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	cfg.Server.Port = viper.GetInt("server-port")

	cfg.Log.Level = viper.GetString("log-level")

	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = "en"
	}
	cfg.App.CleanupBufferSecs = viper.GetInt("cleanup-buffer")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runGrooveCall(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting GrooveCall",
		zap.String("version", "1.0.0"),
		zap.String("language", config.App.Language))

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := os.MkdirAll(config.Fetcher.DownloadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	index := store.NewDownloadIndex(config.Fetcher.DedupCapacity, 0.001)

	var catalog resolver.Catalog
	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if config.Spotify.ClientID != "" {
		if err := spotifyClient.Authenticate(ctx); err != nil {
			return fmt.Errorf("failed to authenticate with Spotify: %w", err)
		}
		catalog = spotifyClient
	} else {
		logger.Info("Spotify credentials not set, catalog fallback disabled")
	}

	resolverSvc := resolver.NewService(&config.Resolver, catalog, logger.Named("resolver"))
	fetcherSvc := fetcher.NewService(config, index, logger.Named("fetcher"))
	voiceClient := voice.NewClient(&config.Voice, logger.Named("voice"))

	frontend := telegram.NewFrontend(&telegram.Config{
		BotToken:    config.Telegram.BotToken,
		Username:    config.Telegram.Username,
		DownloadDir: config.Fetcher.DownloadDir,
		Language:    config.App.Language,
	}, logger.Named("telegram"))

	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"))

	cleaner := core.NewCleanupScheduler(
		time.Duration(config.App.CleanupBufferSecs)*time.Second,
		logger.Named("cleanup"))
	cleaner.SetDeleteHook(httpServer.RecordCleanupDelete)
	defer cleaner.Stop()

	queueStore := core.NewQueueStore()

	fallbacks := buildFallbacks(catalog, spotifyClient, resolverSvc, fetcherSvc)

	dispatcher := core.NewDispatcher(
		config,
		queueStore,
		voiceClient,
		frontend,
		cleaner,
		fallbacks,
		logger.Named("dispatcher"),
	)
	dispatcher.SetMetrics(httpServer)
	dispatcher.SetRefetch(buildRefetch(fetcherSvc))

	orchestrator := core.NewOrchestrator(
		config,
		frontend,
		resolverSvc,
		fetcherSvc,
		dispatcher,
		text.NewParser(),
		logger.Named("orchestrator"),
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return orchestrator.Start(gCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				httpServer.SetActiveChats(queueStore.ActiveChats())
				httpServer.SetQueuedEntries(queueStore.TotalEntries())
			}
		}
	})

	logger.Info("GrooveCall started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("GrooveCall stopped with error", zap.Error(err))
		return err
	}

	logger.Info("GrooveCall stopped gracefully")
	return nil
}

// buildFallbacks wires the per-kind cross-source chains: a failed YouTube
// fetch retries through the Spotify catalog (corrected title, new search),
// and failed catalog kinds retry through plain YouTube.
func buildFallbacks(
	catalog resolver.Catalog,
	spotifyClient *spotify.Client,
	resolverSvc *resolver.Service,
	fetcherSvc *fetcher.Service,
) map[core.SourceKind]core.FallbackChain {
	youtubeStep := core.FallbackStep{
		Name: "youtube",
		Resolve: func(ctx context.Context, title string) (*core.ResolvedTrack, error) {
			return resolverSvc.Resolve(ctx, core.KindYouTube, title)
		},
		Fetch: func(ctx context.Context, track *core.ResolvedTrack) (core.PlaybackPayload, error) {
			return fetcherSvc.Fetch(ctx, track, core.FetchOptions{})
		},
	}

	fallbacks := map[core.SourceKind]core.FallbackChain{
		core.KindSpotify: {youtubeStep},
		core.KindYTMusic: {youtubeStep},
	}

	if catalog != nil {
		fallbacks[core.KindYouTube] = core.FallbackChain{{
			Name: "spotify",
			Resolve: func(ctx context.Context, title string) (*core.ResolvedTrack, error) {
				match, err := spotifyClient.SearchTrack(ctx, title)
				if err != nil {
					return nil, err
				}
				track, err := resolverSvc.Resolve(ctx, core.KindYouTube, match.Title)
				if err != nil {
					return nil, err
				}
				resolved := *track
				resolved.Title = match.Title
				resolved.Kind = core.KindSpotify
				if match.Thumbnail != "" {
					resolved.Thumbnail = match.Thumbnail
				}
				if match.DurationDisplay != "" {
					resolved.DurationDisplay = match.DurationDisplay
				}
				return &resolved, nil
			},
			Fetch: func(ctx context.Context, track *core.ResolvedTrack) (core.PlaybackPayload, error) {
				return fetcherSvc.Fetch(ctx, track, core.FetchOptions{})
			},
		}}
	}

	return fallbacks
}

// buildRefetch rebuilds a playable reference for tagged queue entries when
// the queue advances. Local paths never reach this; direct URLs pass through.
func buildRefetch(fetcherSvc *fetcher.Service) func(context.Context, *core.QueueEntry) (string, error) {
	return func(ctx context.Context, entry *core.QueueEntry) (string, error) {
		video := entry.MediaType == core.MediaVideo

		switch {
		case strings.HasPrefix(entry.MediaRef, "vid_"):
			id := strings.TrimPrefix(entry.MediaRef, "vid_")
			track := &core.ResolvedTrack{
				Title:    entry.Title,
				Link:     "https://www.youtube.com/watch?v=" + id,
				SourceID: id,
				Kind:     core.KindYouTube,
			}
			payload, err := fetcherSvc.Fetch(ctx, track, core.FetchOptions{Video: video})
			if err != nil {
				return "", err
			}
			return payload.Ref(), nil
		case strings.HasPrefix(entry.MediaRef, "live_"):
			id := strings.TrimPrefix(entry.MediaRef, "live_")
			track := &core.ResolvedTrack{
				Title:    entry.Title,
				Link:     "https://www.youtube.com/watch?v=" + id,
				SourceID: id,
				Kind:     core.KindLive,
			}
			payload, err := fetcherSvc.Fetch(ctx, track, core.FetchOptions{Video: video})
			if err != nil {
				return "", err
			}
			return payload.Ref(), nil
		case entry.MediaRef == "index_url":
			return entry.SourceID, nil
		default:
			return entry.MediaRef, nil
		}
	}
}

func validateConfig() error {
	if config.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required")
	}

	if config.Voice.BridgeURL == "" {
		return fmt.Errorf("voice bridge URL is required")
	}

	if (config.Spotify.ClientID == "") != (config.Spotify.ClientSecret == "") {
		return fmt.Errorf("spotify client ID and secret must be set together")
	}

	return nil
}
