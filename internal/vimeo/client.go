package vimeo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/batchlms/backend/config"
)

// Video is one entry in the Vimeo catalog. ID is the numeric tail of the URI
// (URI format: /videos/123456789).
type Video struct {
	URI         string `json:"uri"`
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Duration    int    `json:"duration"`
	CreatedTime string `json:"created_time"`
}

// VideoID returns the numeric id extracted from the video URI.
func (v Video) VideoID() string {
	parts := strings.Split(v.URI, "/")
	return parts[len(parts)-1]
}

type listResponse struct {
	Data []Video `json:"data"`
}

// APIError is a non-2xx response from the Vimeo API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vimeo: api status %d: %s", e.Status, e.Body)
}

// Client calls the Vimeo REST API with a personal access token.
type Client struct {
	cfg        config.VimeoConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Vimeo API client.
func NewClient(cfg config.VimeoConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string) ([]byte, error) {
	if c.cfg.AccessToken == "" {
		return nil, fmt.Errorf("vimeo: access token not configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("vimeo: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vimeo: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// ListVideos returns the authenticated account's videos.
func (c *Client) ListVideos(ctx context.Context) ([]Video, error) {
	fields := url.QueryEscape("uri,name,description,link,created_time,duration")
	body, err := c.do(ctx, http.MethodGet, "/me/videos?fields="+fields)
	if err != nil {
		c.logger.Error("list vimeo videos failed", zap.Error(err))
		return nil, err
	}
	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("vimeo: decode list response: %w", err)
	}
	return list.Data, nil
}

// DeleteVideo deletes one video by its numeric id.
func (c *Client) DeleteVideo(ctx context.Context, videoID string) error {
	if videoID == "" {
		return fmt.Errorf("vimeo: video id missing")
	}
	_, err := c.do(ctx, http.MethodDelete, "/videos/"+url.PathEscape(videoID))
	if err != nil {
		c.logger.Error("delete vimeo video failed", zap.Error(err), zap.String("video_id", videoID))
		return err
	}
	return nil
}
