// Package chat provides a unified interface for chat frontends (Telegram today,
// anything with group messages and inline buttons tomorrow).
package chat

import (
	"context"
)

// MessageRef identifies a message the bot has sent, so it can be edited or
// deleted later (e.g. turning a "starting" announcement into "now playing").
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Button is a single inline keyboard button.
type Button struct {
	Label string
	Data  string
}

// MediaFile describes a chat-native media attachment (forwarded audio/video)
// that the frontend has already downloaded to local disk.
type MediaFile struct {
	Path     string
	Title    string
	Duration string // display form, m:ss
	Link     string // public link to the original message, if any
	IsVideo  bool
}

// PlayRequest is a normalized playback command from any frontend.
type PlayRequest struct {
	ChatID    int64
	UserID    int64
	UserName  string
	Query     string // free text or URL; empty when Media is set
	Media     *MediaFile
	Video     bool
	ForcePlay bool
}

// Notifier posts user-visible playback messages. Implemented by the Telegram
// frontend; the dispatcher only ever talks to this interface.
type Notifier interface {
	// SendText sends a plain text message with optional inline buttons.
	SendText(ctx context.Context, chatID int64, text string, buttons [][]Button) (*MessageRef, error)

	// SendPoster sends a photo (remote URL or local path) with a caption.
	SendPoster(ctx context.Context, chatID int64, image string, caption string, buttons [][]Button) (*MessageRef, error)

	// EditText replaces the text of a previously sent message.
	EditText(ctx context.Context, ref *MessageRef, text string, buttons [][]Button) error

	// DeleteMessage removes a previously sent message.
	DeleteMessage(ctx context.Context, ref *MessageRef) error
}

// Frontend is a full chat integration: a Notifier that also listens for
// playback commands.
type Frontend interface {
	Notifier

	// Start initializes the frontend and verifies connectivity.
	Start(ctx context.Context) error

	// Listen blocks, delivering playback commands to the registered handlers
	// until the context is canceled.
	Listen(ctx context.Context) error

	// SetPlayHandler registers the handler invoked for each play command.
	SetPlayHandler(handler func(*PlayRequest))

	// SetSkipHandler registers the handler invoked for each skip command.
	SetSkipHandler(handler func(chatID int64, userName string))
}
