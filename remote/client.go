// Package remote talks to the low-code platform's file API. Fetched content
// is normalized here, before the review core ever sees it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scriptsync/logger"
	"scriptsync/text"

	"github.com/andybalholm/brotli"
)

const (
	fetchPath = "/api/v1/files/get"
	pushPath  = "/api/v1/files/put"
	listPath  = "/api/v1/files/list"
)

type Config struct {
	BaseURL   string
	Token     string
	TimeoutMs int // 0 = no timeout
}

// Client is the HTTP client for the platform file API.
type Client struct {
	HTTPClient *http.Client
	baseURL    string
	token      string
}

func NewClient(cfg Config) *Client {
	timeout := time.Duration(0)
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
	}
}

type fetchRequest struct {
	Path string `json:"path"`
}

type fetchResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type pushRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type listRequest struct {
	Prefix string `json:"prefix"`
}

type listResponse struct {
	Paths []string `json:"paths"`
}

// FetchFile retrieves the full remote text for a remote path, with line
// terminators canonicalized and trailing horizontal whitespace stripped.
func (c *Client) FetchFile(ctx context.Context, remotePath string) (string, error) {
	defer logger.Span("remote.FetchFile")()

	var resp fetchResponse
	if err := c.do(ctx, fetchPath, &fetchRequest{Path: remotePath}, &resp); err != nil {
		return "", fmt.Errorf("fetch %s: %w", remotePath, err)
	}
	return text.Normalize(resp.Content), nil
}

// PushFile uploads local content to the remote path.
func (c *Client) PushFile(ctx context.Context, remotePath, content string) error {
	defer logger.Span("remote.PushFile")()

	if err := c.do(ctx, pushPath, &pushRequest{Path: remotePath, Content: content}, nil); err != nil {
		return fmt.Errorf("push %s: %w", remotePath, err)
	}
	return nil
}

// ListFiles returns the remote paths under the given prefix.
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	defer logger.Span("remote.ListFiles")()

	var resp listResponse
	if err := c.do(ctx, listPath, &listRequest{Prefix: prefix}, &resp); err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	return resp.Paths, nil
}

// do sends one JSON request with a brotli-compressed body and decodes the
// JSON response into out (when out is non-nil).
func (c *Client) do(ctx context.Context, path string, reqBody, out any) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	// Compress with brotli (quality 1 for speed)
	var compressedBuf bytes.Buffer
	brotliWriter := brotli.NewWriterLevel(&compressedBuf, 1)
	if _, err := brotliWriter.Write(jsonData); err != nil {
		return fmt.Errorf("failed to compress request: %w", err)
	}
	if err := brotliWriter.Close(); err != nil {
		return fmt.Errorf("failed to close brotli writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, &compressedBuf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Content-Encoding", "br")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
