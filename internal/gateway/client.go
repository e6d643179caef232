// Package gateway is the HTTP client for the chat session gateway, the
// separate process that owns the actual messaging session (pairing, delivery,
// typing indicators). The core only depends on message identities being
// stable and on send returning an identity usable as a correlation key.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Config holds gateway client configuration
type Config struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// Client talks to the session gateway's REST API
type Client struct {
	baseURL  string
	apiToken string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a new gateway client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		apiToken: cfg.APIToken,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

type typingRequest struct {
	To    string `json:"to"`
	State string `json:"state"` // composing or paused
}

// SendText sends a text message and returns the identity the gateway
// assigned to it
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	payload, err := json.Marshal(sendRequest{To: to, Body: body})
	if err != nil {
		return "", fmt.Errorf("failed to encode send request: %w", err)
	}

	var result sendResponse
	if err := c.post(ctx, "/api/send", "application/json", bytes.NewReader(payload), &result); err != nil {
		c.logger.Error("Failed to send message",
			zap.String("to", to),
			zap.Error(err))
		return "", err
	}

	c.logger.Debug("Message sent",
		zap.String("to", to),
		zap.String("message_id", result.MessageID))
	return result.MessageID, nil
}

// SendFile uploads a local file and sends it as a document with a caption
func (c *Client) SendFile(ctx context.Context, to, path, caption string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file for sending: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("to", to); err != nil {
		return fmt.Errorf("failed to build multipart form: %w", err)
	}
	if err := w.WriteField("caption", caption); err != nil {
		return fmt.Errorf("failed to build multipart form: %w", err)
	}
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read file for sending: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	var result sendResponse
	if err := c.post(ctx, "/api/send-file", w.FormDataContentType(), &buf, &result); err != nil {
		c.logger.Error("Failed to send file",
			zap.String("to", to),
			zap.String("path", path),
			zap.Error(err))
		return err
	}

	c.logger.Info("File sent",
		zap.String("to", to),
		zap.String("path", path))
	return nil
}

// SetTyping toggles the typing indicator for a chat
func (c *Client) SetTyping(ctx context.Context, to string, typing bool) error {
	state := "paused"
	if typing {
		state = "composing"
	}
	payload, err := json.Marshal(typingRequest{To: to, State: state})
	if err != nil {
		return fmt.Errorf("failed to encode typing request: %w", err)
	}
	return c.post(ctx, "/api/typing", "application/json", bytes.NewReader(payload), nil)
}

// DownloadMedia fetches the raw bytes of an inbound media payload by its
// gateway reference
func (c *Client) DownloadMedia(ctx context.Context, mediaRef string) ([]byte, error) {
	endpoint := c.baseURL + "/api/media/" + url.PathEscape(mediaRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build media request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway error: status=%d downloading media %s", resp.StatusCode, mediaRef)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}

	c.logger.Debug("Media downloaded",
		zap.String("media_ref", mediaRef),
		zap.Int("size", len(data)))
	return data, nil
}

// post performs a POST against the gateway and decodes the response into out
// when non-nil
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out *sendResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway error: status=%d body=%s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
		if out.Error != "" {
			return fmt.Errorf("gateway error: %s", out.Error)
		}
	}
	return nil
}
