// Package telemetry relays activity events to the configured logging
// endpoint.
//
// The relay is strictly best-effort: a failed or slow delivery never
// fails the operation that produced the event. Failures are logged and
// dropped.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/photokeepapp/photokeep-server/internal/config"
	"github.com/photokeepapp/photokeep-server/internal/domain"
	domainerrors "github.com/photokeepapp/photokeep-server/internal/errors"
)

// Client posts activity events to the telemetry endpoint.
type Client struct {
	cfg         config.TelemetryConfig
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a telemetry client.
// Rate limited to one event per second with a small burst so an upload
// batch doesn't hammer the endpoint.
func NewClient(cfg config.TelemetryConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:      logger,
	}
}

// Enabled reports whether events are actually relayed.
func (c *Client) Enabled() bool {
	return c.cfg.Enabled && c.cfg.Endpoint != ""
}

// activityEvent is the payload for login, logout, and sync events.
type activityEvent struct {
	Email     string `json:"email"`
	Activity  string `json:"activity"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// photoUploadEvent is the payload for a stored photo.
// The thumbnail travels inline so the sheet can render a preview.
type photoUploadEvent struct {
	Email      string   `json:"email"`
	PhotoName  string   `json:"photoName"`
	PhotoSize  int64    `json:"photoSize"`
	PhotoType  string   `json:"photoType"`
	Tags       []string `json:"tags,omitempty"`
	UploadDate string   `json:"uploadDate"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	PhotoHash  string   `json:"photoHash"`
	Type       string   `json:"type"`
}

// RecordActivity relays a user activity event (login, logout, sync).
// Never returns an error; delivery failures are logged and dropped.
func (c *Client) RecordActivity(ctx context.Context, email, activity string) {
	if !c.Enabled() {
		return
	}

	event := activityEvent{
		Email:     email,
		Activity:  activity,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Type:      "user_activity",
	}

	if err := c.post(ctx, event); err != nil {
		c.warn("activity event dropped", "activity", activity, "code", domainerrors.CodeTelemetry, "error", err)
	}
}

// RecordPhotoUpload relays a stored photo's metadata.
// Never returns an error; delivery failures are logged and dropped.
func (c *Client) RecordPhotoUpload(ctx context.Context, photo *domain.Photo, thumbnailDataURL string) {
	if !c.Enabled() {
		return
	}

	event := photoUploadEvent{
		Email:      photo.OwnerEmail,
		PhotoName:  photo.Name,
		PhotoSize:  photo.Size,
		PhotoType:  photo.MimeType,
		Tags:       photo.Tags,
		UploadDate: photo.UploadedAt.UTC().Format(time.RFC3339),
		Thumbnail:  thumbnailDataURL,
		PhotoHash:  photo.Fingerprint,
		Type:       "photo_upload",
	}

	if err := c.post(ctx, event); err != nil {
		c.warn("photo upload event dropped", "photo_id", photo.ID, "code", domainerrors.CodeTelemetry, "error", err)
	}
}

// RecordActivityAsync relays an activity event without blocking the caller.
func (c *Client) RecordActivityAsync(email, activity string) {
	if !c.Enabled() {
		return
	}
	go c.RecordActivity(context.Background(), email, activity)
}

// RecordPhotoUploadAsync relays a photo upload event without blocking the
// caller.
func (c *Client) RecordPhotoUploadAsync(photo *domain.Photo, thumbnailDataURL string) {
	if !c.Enabled() {
		return
	}
	go c.RecordPhotoUpload(context.Background(), photo, thumbnailDataURL)
}

// post delivers one event. Every failure comes back as a telemetry-coded
// error so dropped events are identifiable in the logs.
func (c *Client) post(ctx context.Context, event any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeTelemetry, "rate limit")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeTelemetry, "marshal event")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(data))
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeTelemetry, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeTelemetry, "relay request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domainerrors.Telemetry(fmt.Sprintf("relay failed: status %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
