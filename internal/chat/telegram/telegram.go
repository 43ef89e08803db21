// Package telegram implements the chat frontend on the Telegram Bot API
// using the go-telegram/bot library.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"groovecall/internal/chat"
	"groovecall/internal/i18n"
)

const (
	chatTypeGroup      = "group"
	chatTypeSuperGroup = "supergroup"

	// mediaDownloadTimeout bounds fetching a forwarded attachment from the
	// Bot API file servers.
	mediaDownloadTimeout = 2 * time.Minute
)

// Config holds Telegram-specific configuration.
type Config struct {
	BotToken    string
	Username    string // bot username, without the @
	DownloadDir string // where forwarded attachments land
	Language    string
}

// Frontend implements chat.Frontend for Telegram group chats.
type Frontend struct {
	config     *Config
	logger     *zap.Logger
	bot        *bot.Bot
	localizer  *i18n.Localizer
	httpClient *http.Client

	playHandler func(*chat.PlayRequest)
	skipHandler func(chatID int64, userName string)
}

func NewFrontend(config *Config, logger *zap.Logger) *Frontend {
	return &Frontend{
		config:     config,
		logger:     logger,
		localizer:  i18n.NewLocalizer(config.Language),
		httpClient: &http.Client{Timeout: mediaDownloadTimeout},
	}
}

// Start creates the bot and verifies the token.
func (f *Frontend) Start(ctx context.Context) error {
	opts := []bot.Option{
		bot.WithDefaultHandler(f.handleUpdate),
		bot.WithCallbackQueryDataHandler("close", bot.MatchTypeExact, f.handleCloseCallback),
		bot.WithCallbackQueryDataHandler("skip", bot.MatchTypeExact, f.handleSkipCallback),
	}

	b, err := bot.New(f.config.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	f.bot = b

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify bot token: %w", err)
	}
	if f.config.Username == "" {
		f.config.Username = me.Username
	}

	f.logger.Info("Telegram frontend started", zap.String("username", me.Username))
	return nil
}

// Listen blocks processing updates until the context is canceled.
func (f *Frontend) Listen(ctx context.Context) error {
	f.bot.Start(ctx)
	return nil
}

func (f *Frontend) SetPlayHandler(handler func(*chat.PlayRequest)) {
	f.playHandler = handler
}

func (f *Frontend) SetSkipHandler(handler func(chatID int64, userName string)) {
	f.skipHandler = handler
}

// SendText sends a markdown text message with optional inline buttons.
func (f *Frontend) SendText(ctx context.Context, chatID int64, text string, buttons [][]chat.Button) (*chat.MessageRef, error) {
	disabled := true
	params := &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               text,
		ParseMode:          models.ParseModeMarkdown,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: &disabled},
	}
	if markup := toKeyboard(buttons); markup != nil {
		params.ReplyMarkup = markup
	}

	msg, err := f.bot.SendMessage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &chat.MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

// SendPoster sends a photo with a caption. The image may be a remote URL or
// a file id; Telegram fetches either server-side.
func (f *Frontend) SendPoster(ctx context.Context, chatID int64, image, caption string, buttons [][]chat.Button) (*chat.MessageRef, error) {
	if image == "" {
		return f.SendText(ctx, chatID, caption, buttons)
	}

	params := &bot.SendPhotoParams{
		ChatID:    chatID,
		Photo:     &models.InputFileString{Data: image},
		Caption:   caption,
		ParseMode: models.ParseModeMarkdown,
	}
	if markup := toKeyboard(buttons); markup != nil {
		params.ReplyMarkup = markup
	}

	msg, err := f.bot.SendPhoto(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to send poster: %w", err)
	}
	return &chat.MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

func (f *Frontend) EditText(ctx context.Context, ref *chat.MessageRef, text string, buttons [][]chat.Button) error {
	params := &bot.EditMessageTextParams{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	}
	if markup := toKeyboard(buttons); markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := f.bot.EditMessageText(ctx, params); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (f *Frontend) DeleteMessage(ctx context.Context, ref *chat.MessageRef) error {
	_, err := f.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (f *Frontend) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	f.handleMessage(ctx, update.Message)
}

func (f *Frontend) handleMessage(ctx context.Context, msg *models.Message) {
	chatType := string(msg.Chat.Type)
	if chatType != chatTypeGroup && chatType != chatTypeSuperGroup {
		return
	}

	command, args := parseCommand(msg.Text, f.config.Username)
	if command == "" {
		return
	}

	switch command {
	case "play", "vplay", "playforce", "vplayforce":
		f.handlePlayCommand(ctx, msg, command, args)
	case "skip":
		if f.skipHandler != nil {
			f.skipHandler(msg.Chat.ID, displayName(msg.From))
		}
	}
}

func (f *Frontend) handlePlayCommand(ctx context.Context, msg *models.Message, command, args string) {
	if f.playHandler == nil {
		return
	}

	req := &chat.PlayRequest{
		ChatID:    msg.Chat.ID,
		UserName:  displayName(msg.From),
		Query:     args,
		Video:     strings.HasPrefix(command, "v"),
		ForcePlay: strings.HasSuffix(command, "force"),
	}
	if msg.From != nil {
		req.UserID = msg.From.ID
	}

	if args == "" {
		media, err := f.replyMedia(ctx, msg)
		if err != nil {
			f.logger.Warn("Failed to download chat media",
				zap.Int64("chat_id", msg.Chat.ID),
				zap.Error(err))
			f.reply(ctx, msg.Chat.ID, f.localizer.T("error.backend"))
			return
		}
		if media == nil {
			f.reply(ctx, msg.Chat.ID, f.localizer.T("play.usage"))
			return
		}
		req.Media = media
	}

	f.playHandler(req)
}

// replyMedia downloads the audio/voice/video attachment of the replied-to
// message, if any.
func (f *Frontend) replyMedia(ctx context.Context, msg *models.Message) (*chat.MediaFile, error) {
	replied := msg.ReplyToMessage
	if replied == nil {
		return nil, nil
	}

	var (
		fileID   string
		title    string
		duration int
		isVideo  bool
	)
	switch {
	case replied.Audio != nil:
		fileID = replied.Audio.FileID
		duration = replied.Audio.Duration
		title = replied.Audio.Title
		if title == "" {
			title = replied.Audio.FileName
		}
	case replied.Voice != nil:
		fileID = replied.Voice.FileID
		duration = replied.Voice.Duration
		title = "Voice Message"
	case replied.Video != nil:
		fileID = replied.Video.FileID
		duration = replied.Video.Duration
		title = replied.Video.FileName
		isVideo = true
	default:
		return nil, nil
	}
	if title == "" {
		title = "Telegram Media"
	}

	path, err := f.downloadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	return &chat.MediaFile{
		Path:     path,
		Title:    title,
		Duration: durationDisplay(duration),
		Link:     messageLink(msg.Chat.ID, replied.ID),
		IsVideo:  isVideo,
	}, nil
}

// downloadFile pulls a file off the Bot API file servers into the download
// directory.
func (f *Frontend) downloadFile(ctx context.Context, fileID string) (string, error) {
	file, err := f.bot.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("failed to look up file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.bot.FileDownloadLink(file), nil)
	if err != nil {
		return "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(f.config.DownloadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(f.config.DownloadDir, file.FileUniqueID+filepath.Ext(file.FilePath))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

func (f *Frontend) handleCloseCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	f.answerCallback(ctx, b, update.CallbackQuery.ID)

	msg := callbackMessage(update)
	if msg == nil {
		return
	}
	if err := f.DeleteMessage(ctx, &chat.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID}); err != nil {
		f.logger.Debug("Failed to delete closed message", zap.Error(err))
	}
}

func (f *Frontend) handleSkipCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	f.answerCallback(ctx, b, update.CallbackQuery.ID)

	msg := callbackMessage(update)
	if msg == nil || f.skipHandler == nil {
		return
	}
	f.skipHandler(msg.Chat.ID, displayName(&update.CallbackQuery.From))
}

func (f *Frontend) answerCallback(ctx context.Context, b *bot.Bot, callbackID string) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
	}); err != nil {
		f.logger.Debug("Failed to answer callback query", zap.Error(err))
	}
}

func (f *Frontend) reply(ctx context.Context, chatID int64, text string) {
	if _, err := f.SendText(ctx, chatID, text, nil); err != nil {
		f.logger.Warn("Failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func callbackMessage(update *models.Update) *models.Message {
	if update.CallbackQuery == nil {
		return nil
	}
	return update.CallbackQuery.Message.Message
}

// parseCommand splits "/play@botname some query" into ("play", "some query").
// Non-command text returns an empty command.
func parseCommand(text, botUsername string) (command, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}

	parts := strings.SplitN(text[1:], " ", 2)
	command = strings.ToLower(parts[0])
	if at := strings.Index(command, "@"); at != -1 {
		if botUsername != "" && !strings.EqualFold(command[at+1:], botUsername) {
			return "", ""
		}
		command = command[:at]
	}
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return command, args
}

func toKeyboard(buttons [][]chat.Button) *models.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	keyboard := make([][]models.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		converted := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			converted = append(converted, models.InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: b.Data,
			})
		}
		keyboard = append(keyboard, converted)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

func displayName(user *models.User) string {
	if user == nil {
		return "someone"
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

// messageLink builds the t.me link to a message in a supergroup.
func messageLink(chatID int64, messageID int) string {
	id := strconv.FormatInt(chatID, 10)
	if !strings.HasPrefix(id, "-100") {
		return ""
	}
	return "https://t.me/c/" + id[4:] + "/" + strconv.Itoa(messageID)
}

func durationDisplay(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	m, s := seconds/60, seconds%60
	return fmt.Sprintf("%d:%02d", m, s)
}
