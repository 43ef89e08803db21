package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"groovecall/internal/chat"
	"groovecall/internal/i18n"
)

const (
	// queueTitleWidth is the display truncation for queued-position messages.
	queueTitleWidth = 27
	// captionTitleWidth is the display truncation for now-playing captions.
	captionTitleWidth = 23
)

// DispatchMetrics receives dispatcher counters. Implemented by the HTTP
// metrics server; nil-safe throughout.
type DispatchMetrics interface {
	RecordDispatch(kind, status string)
	RecordFallback(kind, step, status string)
}

// DispatchRequest carries one resolved+fetched track into the dispatcher.
type DispatchRequest struct {
	ChatID       int64 // voice-call chat
	OriginChatID int64 // chat the command came from, target of notifications
	Kind         SourceKind
	Resolved     *ResolvedTrack
	Payload      PlaybackPayload
	// FetchErr is the upstream fetch failure, if any. A non-nil value (or an
	// empty payload) triggers the kind's fallback chain before giving up.
	FetchErr    error
	RequestedBy string
	Video       bool
	ForcePlay   bool
}

// Dispatcher decides, per chat, whether a track starts playing immediately or
// joins the pending queue, coordinates the voice-call join, and schedules
// post-playback cleanup. One instance serves all chats; dispatches for the
// same chat serialize on a per-chat lock so two concurrent first-tracks can
// never both join the call.
type Dispatcher struct {
	config    *Config
	store     *QueueStore
	voice     VoiceClient
	notifier  chat.Notifier
	cleaner   *CleanupScheduler
	fallbacks map[SourceKind]FallbackChain
	localizer *i18n.Localizer
	logger    *zap.Logger
	metrics   DispatchMetrics

	// refetch rebuilds a playable reference for a tagged queue entry when the
	// queue advances (vid_/live_ refs are not directly playable).
	refetch func(ctx context.Context, entry *QueueEntry) (string, error)

	locksMu   sync.Mutex
	chatLocks map[int64]*sync.Mutex
}

func NewDispatcher(
	config *Config,
	store *QueueStore,
	voice VoiceClient,
	notifier chat.Notifier,
	cleaner *CleanupScheduler,
	fallbacks map[SourceKind]FallbackChain,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		config:    config,
		store:     store,
		voice:     voice,
		notifier:  notifier,
		cleaner:   cleaner,
		fallbacks: fallbacks,
		localizer: i18n.NewLocalizer(config.App.Language),
		logger:    logger,
		chatLocks: make(map[int64]*sync.Mutex),
	}
}

// SetMetrics attaches the metrics sink.
func (d *Dispatcher) SetMetrics(m DispatchMetrics) {
	d.metrics = m
}

// SetRefetch registers the tagged-reference resolver used on queue advance.
func (d *Dispatcher) SetRefetch(fn func(ctx context.Context, entry *QueueEntry) (string, error)) {
	d.refetch = fn
}

// IsActive reports whether the chat is currently playing or has a queue.
func (d *Dispatcher) IsActive(chatID int64) bool {
	return d.store.IsActive(chatID)
}

// QueueLength returns the chat's queue length, head included.
func (d *Dispatcher) QueueLength(chatID int64) int {
	return d.store.Length(chatID)
}

// Dispatch runs the full decision for one track: cross-source fallback if the
// fetch failed, then immediate-play or enqueue depending on the chat's state.
func (d *Dispatcher) Dispatch(ctx context.Context, req *DispatchRequest) error {
	if req.Resolved == nil {
		d.record(req.Kind, "rejected")
		return fmt.Errorf("%w: nothing resolved", ErrPlaybackUnavailable)
	}

	if req.FetchErr != nil || req.Payload.Ref() == "" {
		if err := d.runFallback(ctx, req); err != nil {
			d.record(req.Kind, "unavailable")
			return err
		}
	}

	if req.Payload.Ref() == "" {
		d.record(req.Kind, "unavailable")
		return fmt.Errorf("%w: no media reference", ErrPlaybackUnavailable)
	}

	lock := d.lockFor(req.ChatID)
	lock.Lock()
	defer lock.Unlock()

	var err error
	if d.store.IsActive(req.ChatID) && !req.ForcePlay {
		err = d.enqueue(ctx, req)
	} else {
		err = d.playNow(ctx, req)
	}
	if err != nil {
		d.record(req.Kind, "failed")
		return err
	}
	d.record(req.Kind, "ok")
	return nil
}

// runFallback walks the kind's fallback chain, replacing the request's
// resolved data and payload with the first alternative that works. The queue
// entry built afterwards carries the fallback's data, not the primary's.
func (d *Dispatcher) runFallback(ctx context.Context, req *DispatchRequest) error {
	chain, ok := d.fallbacks[req.Kind]
	if !ok || len(chain) == 0 {
		return fmt.Errorf("%w: fetch failed for %q", ErrPlaybackUnavailable, req.Resolved.Title)
	}

	d.logger.Info("Primary fetch failed, trying fallback chain",
		zap.String("kind", req.Kind.String()),
		zap.String("title", req.Resolved.Title),
		zap.Error(req.FetchErr))

	track, payload, step, err := chain.run(ctx, req.Resolved.Title)
	if err != nil {
		d.recordFallback(req.Kind, step, "failed")
		return fmt.Errorf("%w: all sources exhausted for %q", ErrPlaybackUnavailable, req.Resolved.Title)
	}

	d.recordFallback(req.Kind, step, "ok")
	d.logger.Info("Fallback resolved track",
		zap.String("step", step),
		zap.String("title", track.Title))

	req.Resolved = track
	req.Payload = payload
	req.FetchErr = nil
	return nil
}

// enqueue appends behind the playing head and reports the position. The voice
// call is never touched on this path.
func (d *Dispatcher) enqueue(ctx context.Context, req *DispatchRequest) error {
	entry := d.buildEntry(req)
	position := d.store.Append(entry)

	d.logger.Info("Track queued",
		zap.Int64("chat_id", req.ChatID),
		zap.String("title", entry.Title),
		zap.Int("position", position))

	text := d.localizer.T("queue.added",
		position,
		truncateTitle(entry.Title, queueTitleWidth),
		entry.DurationDisplay,
		entry.RequestedBy)

	if _, err := d.notifier.SendText(ctx, req.OriginChatID, text, d.queueMarkup()); err != nil {
		return fmt.Errorf("%w: queue notification: %v", ErrPlaybackBackend, err)
	}
	return nil
}

// playNow is the idle branch: join the call, seat the head entry, announce,
// and schedule cleanup for local files. On join failure the store is restored
// to its pre-dispatch snapshot, so a failed join never leaves a phantom head.
func (d *Dispatcher) playNow(ctx context.Context, req *DispatchRequest) error {
	snapshot := d.store.Snapshot(req.ChatID)
	if !req.ForcePlay {
		// Force-play preserves pre-seeded queue state; everything else starts
		// from a clean sequence.
		d.store.Reset(req.ChatID)
	}

	if err := d.voice.JoinCall(ctx, req.ChatID, req.OriginChatID, req.Payload.Ref(), req.Video, req.Resolved.Thumbnail); err != nil {
		d.store.Restore(req.ChatID, snapshot)
		d.logger.Warn("Voice call join failed",
			zap.Int64("chat_id", req.ChatID),
			zap.Error(err))
		return fmt.Errorf("%w: joining call: %v", ErrPlaybackUnavailable, err)
	}

	entry := d.buildEntry(req)
	if req.ForcePlay {
		d.store.AppendHead(entry)
	} else {
		d.store.Append(entry)
	}

	d.logger.Info("Now playing",
		zap.Int64("chat_id", req.ChatID),
		zap.String("kind", req.Kind.String()),
		zap.String("title", entry.Title),
		zap.Bool("video", req.Video))

	profile := profileFor(req.Kind)
	ref, err := d.notifier.SendPoster(ctx,
		req.OriginChatID,
		d.posterFor(profile, req),
		d.captionFor(profile, req),
		d.playerMarkup())
	if err != nil {
		// Playback is already running; the missing announcement is surfaced
		// but deliberately not rolled back.
		return fmt.Errorf("%w: announcement: %v", ErrPlaybackBackend, err)
	}
	d.store.SetNowPlaying(req.ChatID, ref)

	if req.Payload.Kind == PayloadLocalFile {
		d.cleaner.Schedule(req.Payload.Path, req.Resolved.DurationDisplay)
	}
	return nil
}

// AdvanceQueue pops the finished (or skipped) head and starts the next entry,
// leaving the call when the queue empties. Returns the new head, if any.
func (d *Dispatcher) AdvanceQueue(ctx context.Context, chatID int64) (*QueueEntry, error) {
	lock := d.lockFor(chatID)
	lock.Lock()
	defer lock.Unlock()

	finished, ok := d.store.PopHead(chatID)
	if !ok {
		return nil, nil
	}
	if isLocalRef(finished.MediaRef) {
		// Early skip: don't wait for the original timer.
		d.cleaner.Flush(finished.MediaRef)
	}

	next := d.store.Head(chatID)
	if next == nil {
		if err := d.voice.LeaveCall(ctx, chatID); err != nil {
			d.logger.Warn("Leaving call failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		return nil, nil
	}

	mediaRef := next.MediaRef
	if !isLocalRef(mediaRef) && d.refetch != nil {
		refreshed, err := d.refetch(ctx, next)
		if err != nil {
			d.store.PopHead(chatID)
			return nil, fmt.Errorf("%w: refetching next track: %v", ErrPlaybackUnavailable, err)
		}
		mediaRef = refreshed
	}

	if err := d.voice.JoinCall(ctx, chatID, next.OriginChatID, mediaRef, next.MediaType == MediaVideo, ""); err != nil {
		return nil, fmt.Errorf("%w: joining call for next track: %v", ErrPlaybackUnavailable, err)
	}

	text := d.localizer.T("stream.next",
		truncateTitle(next.Title, captionTitleWidth),
		next.DurationDisplay,
		next.RequestedBy)
	ref, err := d.notifier.SendText(ctx, next.OriginChatID, text, d.playerMarkup())
	if err != nil {
		d.logger.Warn("Next-track announcement failed", zap.Error(err))
	} else {
		d.store.SetNowPlaying(chatID, ref)
	}

	if isLocalRef(next.MediaRef) {
		d.cleaner.Schedule(next.MediaRef, next.DurationDisplay)
	}
	return next, nil
}

func (d *Dispatcher) buildEntry(req *DispatchRequest) *QueueEntry {
	mediaType := MediaAudio
	if req.Video {
		mediaType = MediaVideo
	}
	return &QueueEntry{
		ChatID:          req.ChatID,
		OriginChatID:    req.OriginChatID,
		MediaRef:        profileFor(req.Kind).mediaRef(req.Payload, req.Resolved),
		Title:           req.Resolved.Title,
		DurationDisplay: req.Resolved.DurationDisplay,
		RequestedBy:     req.RequestedBy,
		SourceID:        req.Resolved.SourceID,
		MediaType:       mediaType,
	}
}

func (d *Dispatcher) posterFor(profile sourceProfile, req *DispatchRequest) string {
	if profile.trackPoster && req.Resolved.Thumbnail != "" {
		return req.Resolved.Thumbnail
	}
	if profile.staticPoster != nil {
		return profile.staticPoster(&d.config.Posters, req.Video)
	}
	return d.config.Posters.Stream
}

func (d *Dispatcher) captionFor(profile sourceProfile, req *DispatchRequest) string {
	if profile.captionKey == "stream.index" {
		return d.localizer.T("stream.index", req.RequestedBy)
	}
	link := req.Resolved.Link
	if d.config.Telegram.Username != "" && req.Resolved.SourceID != "" && req.Kind != KindTelegram {
		link = fmt.Sprintf("https://t.me/%s?start=info_%s", d.config.Telegram.Username, req.Resolved.SourceID)
	}
	return d.localizer.T(profile.captionKey,
		link,
		truncateTitle(req.Resolved.Title, captionTitleWidth),
		req.Resolved.DurationDisplay,
		req.RequestedBy)
}

func (d *Dispatcher) queueMarkup() [][]chat.Button {
	return [][]chat.Button{{
		{Label: d.localizer.T("button.close"), Data: "close"},
	}}
}

func (d *Dispatcher) playerMarkup() [][]chat.Button {
	return [][]chat.Button{{
		{Label: d.localizer.T("button.skip"), Data: "skip"},
		{Label: d.localizer.T("button.close"), Data: "close"},
	}}
}

// lockFor returns the chat's dispatch lock, creating it on first use. Locks
// are never removed; the per-chat footprint is one mutex.
func (d *Dispatcher) lockFor(chatID int64) *sync.Mutex {
	d.locksMu.Lock()
	defer d.locksMu.Unlock()
	lock, ok := d.chatLocks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		d.chatLocks[chatID] = lock
	}
	return lock
}

func (d *Dispatcher) record(kind SourceKind, status string) {
	if d.metrics != nil {
		d.metrics.RecordDispatch(kind.String(), status)
	}
}

func (d *Dispatcher) recordFallback(kind SourceKind, step, status string) {
	if d.metrics != nil {
		d.metrics.RecordFallback(kind.String(), step, status)
	}
}

// isLocalRef distinguishes on-disk paths from tagged remote references.
func isLocalRef(ref string) bool {
	if ref == "" || ref == "index_url" {
		return false
	}
	if strings.HasPrefix(ref, "vid_") || strings.HasPrefix(ref, "live_") {
		return false
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return false
	}
	return true
}

func truncateTitle(title string, width int) string {
	runes := []rune(title)
	if len(runes) <= width {
		return title
	}
	return string(runes[:width])
}
