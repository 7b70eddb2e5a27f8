package zoom

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/batchlms/backend/config"
)

// tokenExpiryMargin is subtracted from the token lifetime so a token is
// refreshed before it can expire mid-request.
const tokenExpiryMargin = 60 * time.Second

// APIError is a non-2xx response from the Zoom API with the remote error
// payload attached.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zoom: api status %d: %s", e.Status, e.Body)
}

// Meeting is the response from meeting creation.
type Meeting struct {
	ID       int64  `json:"id"`
	UUID     string `json:"uuid"`
	Topic    string `json:"topic"`
	JoinURL  string `json:"join_url"`
	StartURL string `json:"start_url,omitempty"`
}

// MeetingRecordings is the response from the recordings listing endpoint.
type MeetingRecordings struct {
	UUID           string          `json:"uuid"`
	MeetingUUID    string          `json:"meeting_uuid"`
	ID             FlexID          `json:"id"`
	Topic          string          `json:"topic"`
	RecordingFiles []RecordingFile `json:"recording_files"`
}

// ResolvedUUID returns the stable meeting uuid from whichever field Zoom set.
func (m *MeetingRecordings) ResolvedUUID() string {
	if m.UUID != "" {
		return m.UUID
	}
	return m.MeetingUUID
}

type meetingSettings struct {
	AutoRecording         string `json:"auto_recording"`
	HostVideo             bool   `json:"host_video"`
	ParticipantVideo      bool   `json:"participant_video"`
	AllowParticipantsChat bool   `json:"allow_participants_chat"`
	MuteUponEntry         bool   `json:"mute_upon_entry"`
	WaitingRoom           bool   `json:"waiting_room"`
}

type createMeetingRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Settings  meetingSettings `json:"settings"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Client calls the Zoom REST API using server-to-server OAuth. The access
// token and its expiry are cached on the client and refreshed only when the
// token is absent or within tokenExpiryMargin of expiring.
type Client struct {
	cfg        config.ZoomConfig
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a Zoom API client.
func NewClient(cfg config.ZoomConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
}

// getAccessToken returns a cached token or exchanges client credentials for
// a fresh one.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	if c.cfg.AccountID == "" || c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", fmt.Errorf("zoom: OAuth credentials not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", c.cfg.AccountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("zoom: build token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ClientID + ":" + c.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("zoom: token request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("zoom auth failed", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return "", &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("zoom: decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpiryMargin)
	return c.accessToken, nil
}

// do issues an authenticated request and decodes a 2xx JSON response into
// out (when non-nil). Non-2xx statuses come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("zoom: marshal request: %w", err)
		}
		reqBody = strings.NewReader(string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("zoom: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("zoom: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("zoom: decode response: %w", err)
		}
	}
	return nil
}

// CreateMeeting schedules a meeting with cloud auto-recording enabled.
// startTime is an ISO 8601 timestamp.
func (c *Client) CreateMeeting(ctx context.Context, topic, startTime string) (*Meeting, error) {
	req := createMeetingRequest{
		Topic:     topic,
		Type:      2, // scheduled
		StartTime: startTime,
		Settings: meetingSettings{
			AutoRecording:         "cloud",
			HostVideo:             true,
			ParticipantVideo:      false,
			AllowParticipantsChat: false,
			MuteUponEntry:         true,
			WaitingRoom:           false,
		},
	}
	var m Meeting
	if err := c.do(ctx, http.MethodPost, "/users/me/meetings", req, &m); err != nil {
		c.logger.Error("create meeting failed", zap.Error(err), zap.String("topic", topic))
		return nil, err
	}
	return &m, nil
}

// GetRecordings lists cloud recordings for a meeting. The response includes
// the stable meeting uuid.
func (c *Client) GetRecordings(ctx context.Context, meetingID string) (*MeetingRecordings, error) {
	mid := url.PathEscape(NormalizeMeetingID(meetingID))
	var recs MeetingRecordings
	if err := c.do(ctx, http.MethodGet, "/meetings/"+mid+"/recordings", nil, &recs); err != nil {
		return nil, err
	}
	return &recs, nil
}

// DeleteRecordings deletes all cloud recordings for a meeting. A 404 or 400
// means there is nothing to delete and is treated as success.
func (c *Client) DeleteRecordings(ctx context.Context, meetingID string) error {
	if meetingID == "" {
		return fmt.Errorf("zoom: meeting id missing")
	}
	mid := url.PathEscape(NormalizeMeetingID(meetingID))
	err := c.do(ctx, http.MethodDelete, "/meetings/"+mid+"/recordings?action=delete", nil, nil)
	if isGone(err) {
		c.logger.Info("no recordings found or already deleted", zap.String("meeting_id", meetingID))
		return nil
	}
	return err
}

// DeleteMeeting deletes the meeting itself. A 404 or 400 means it is already
// gone and is treated as success.
func (c *Client) DeleteMeeting(ctx context.Context, meetingID string) error {
	mid := url.PathEscape(NormalizeMeetingID(meetingID))
	err := c.do(ctx, http.MethodDelete, "/meetings/"+mid, nil, nil)
	if isGone(err) {
		return nil
	}
	return err
}

// isGone reports whether err is an APIError for a resource that no longer
// exists on Zoom's side.
func isGone(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && (apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusBadRequest)
}
