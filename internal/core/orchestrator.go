package core

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"groovecall/internal/chat"
	"groovecall/internal/i18n"
)

// RequestClassifier decides which source kind a raw query belongs to and
// extracts the reference the resolver needs.
type RequestClassifier interface {
	Classify(query string) (SourceKind, string)
}

// Orchestrator connects the chat frontend to the resolve → fetch → dispatch
// pipeline. It owns no playback state itself; everything per-chat lives in
// the dispatcher and its queue store.
type Orchestrator struct {
	config     *Config
	frontend   chat.Frontend
	resolver   Resolver
	fetcher    Fetcher
	dispatcher *Dispatcher
	classifier RequestClassifier
	localizer  *i18n.Localizer
	logger     *zap.Logger
}

func NewOrchestrator(
	config *Config,
	frontend chat.Frontend,
	resolver Resolver,
	fetcher Fetcher,
	dispatcher *Dispatcher,
	classifier RequestClassifier,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		config:     config,
		frontend:   frontend,
		resolver:   resolver,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		classifier: classifier,
		localizer:  i18n.NewLocalizer(config.App.Language),
		logger:     logger,
	}
}

// Start brings up the frontend and blocks processing commands until the
// context is canceled.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.logger.Info("Starting playback orchestrator")

	if err := o.frontend.Start(ctx); err != nil {
		return err
	}

	o.frontend.SetPlayHandler(o.handlePlay)
	o.frontend.SetSkipHandler(o.handleSkip)

	return o.frontend.Listen(ctx)
}

func (o *Orchestrator) handlePlay(req *chat.PlayRequest) {
	ctx := context.Background()

	o.logger.Debug("Play request",
		zap.Int64("chat_id", req.ChatID),
		zap.String("user", req.UserName),
		zap.String("query", req.Query),
		zap.Bool("video", req.Video))

	dreq := o.buildDispatchRequest(ctx, req)
	if dreq == nil {
		return
	}

	if err := o.dispatcher.Dispatch(ctx, dreq); err != nil {
		o.logger.Warn("Dispatch failed",
			zap.Int64("chat_id", req.ChatID),
			zap.String("query", req.Query),
			zap.Error(err))
		o.replyFailure(ctx, req.ChatID, err)
	}
}

// buildDispatchRequest runs classification, resolution and fetch. A fetch
// failure is carried into the request so the dispatcher can run its fallback
// chain; a resolution failure ends the request here.
func (o *Orchestrator) buildDispatchRequest(ctx context.Context, req *chat.PlayRequest) *DispatchRequest {
	dreq := &DispatchRequest{
		ChatID:       req.ChatID,
		OriginChatID: req.ChatID,
		RequestedBy:  req.UserName,
		Video:        req.Video,
		ForcePlay:    req.ForcePlay,
	}

	if req.Media != nil {
		dreq.Kind = KindTelegram
		dreq.Video = req.Media.IsVideo
		dreq.Resolved = &ResolvedTrack{
			Title:           req.Media.Title,
			Link:            req.Media.Link,
			DurationDisplay: req.Media.Duration,
			Kind:            KindTelegram,
		}
		dreq.Payload = LocalFile(req.Media.Path)
		return dreq
	}

	kind, ref := o.classifier.Classify(req.Query)
	if kind == KindYouTube && o.resolver.IsLive(ctx, ref) {
		kind = KindLive
	}
	dreq.Kind = kind

	if kind == KindIndex {
		// SourceID carries the stream URL so queue advancement can replay it.
		dreq.Resolved = &ResolvedTrack{
			Title:    o.localizer.T("index.title"),
			Link:     ref,
			SourceID: ref,
			Kind:     KindIndex,
		}
		dreq.Payload = DirectStream(ref)
		return dreq
	}

	resolved, err := o.resolver.Resolve(ctx, kind, ref)
	if err != nil {
		o.logger.Warn("Resolution failed",
			zap.String("kind", kind.String()),
			zap.String("ref", ref),
			zap.Error(err))
		o.replyFailure(ctx, req.ChatID, err)
		return nil
	}
	dreq.Resolved = resolved

	dreq.Payload, dreq.FetchErr = o.fetcher.Fetch(ctx, resolved, FetchOptions{Video: req.Video})
	return dreq
}

func (o *Orchestrator) handleSkip(chatID int64, userName string) {
	ctx := context.Background()

	next, err := o.dispatcher.AdvanceQueue(ctx, chatID)
	if err != nil {
		o.logger.Warn("Queue advance failed", zap.Int64("chat_id", chatID), zap.Error(err))
		o.replyFailure(ctx, chatID, err)
		return
	}
	if next == nil {
		o.reply(ctx, chatID, o.localizer.T("skip.empty"))
		return
	}
	o.logger.Info("Skipped to next track",
		zap.Int64("chat_id", chatID),
		zap.String("title", next.Title))
}

func (o *Orchestrator) replyFailure(ctx context.Context, chatID int64, err error) {
	var key string
	switch {
	case errors.Is(err, ErrNotFound):
		key = "error.not_found"
	case errors.Is(err, ErrPlaybackUnavailable):
		key = "error.playback_unavailable"
	default:
		key = "error.backend"
	}
	o.reply(ctx, chatID, o.localizer.T(key))
}

func (o *Orchestrator) reply(ctx context.Context, chatID int64, text string) {
	if _, err := o.frontend.SendText(ctx, chatID, text, nil); err != nil {
		o.logger.Warn("Failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
