// Package voice talks to the external voice-call bridge that does the actual
// group-call streaming. The bridge exposes a small JSON API; this process
// only tells it what to play where.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"groovecall/internal/core"
)

type Client struct {
	config     *core.VoiceConfig
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
}

type joinRequest struct {
	ChatID       int64  `json:"chat_id"`
	OriginChatID int64  `json:"origin_chat_id"`
	MediaRef     string `json:"media_ref"`
	Video        bool   `json:"video"`
	Poster       string `json:"poster,omitempty"`
}

type leaveRequest struct {
	ChatID int64 `json:"chat_id"`
}

type bridgeResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func NewClient(config *core.VoiceConfig, logger *zap.Logger) *Client {
	baseURL := config.BridgeURL
	if baseURL == "" {
		baseURL = "http://localhost:9390"
	}

	return &Client{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: config.JoinTimeout},
		baseURL:    baseURL,
	}
}

// JoinCall asks the bridge to join the chat's voice call and start streaming
// mediaRef. Re-joining an already joined chat switches the stream.
func (c *Client) JoinCall(ctx context.Context, chatID, originChatID int64, mediaRef string, video bool, poster string) error {
	req := joinRequest{
		ChatID:       chatID,
		OriginChatID: originChatID,
		MediaRef:     mediaRef,
		Video:        video,
		Poster:       poster,
	}

	if err := c.post(ctx, "/call/join", req); err != nil {
		return fmt.Errorf("join call: %w", err)
	}

	c.logger.Info("Joined voice call",
		zap.Int64("chat_id", chatID),
		zap.Bool("video", video))
	return nil
}

// LeaveCall disconnects the bridge from the chat's voice call.
func (c *Client) LeaveCall(ctx context.Context, chatID int64) error {
	if err := c.post(ctx, "/call/leave", leaveRequest{ChatID: chatID}); err != nil {
		return fmt.Errorf("leave call: %w", err)
	}

	c.logger.Info("Left voice call", zap.Int64("chat_id", chatID))
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bridge call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bridge returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var bridgeResp bridgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&bridgeResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !bridgeResp.OK {
		return fmt.Errorf("bridge rejected request: %s", bridgeResp.Error)
	}
	return nil
}
