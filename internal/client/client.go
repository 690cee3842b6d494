// Package client calls the publication API from the observer side. Triggers
// use it to run the publish-due sweep and to read back a record whose id the
// sweep did not return.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// StatusError is returned for any non-2xx reply. A non-2xx from publish-due
// means no transition was reported and the call may be retried.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("publication api: status %d", e.Code)
	}
	return fmt.Sprintf("publication api: status %d: %s", e.Code, e.Message)
}

// Unwrap maps well-known statuses onto domain sentinels.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusServiceUnavailable:
		return domain.ErrTransientStore
	case http.StatusBadRequest:
		return domain.ErrValidation
	}
	return nil
}

// Record is the subset of a publication a trigger needs to settle.
type Record struct {
	ID                uuid.UUID     `json:"id"`
	Title             string        `json:"title"`
	Status            domain.Status `json:"status"`
	ScheduledAt       *time.Time    `json:"scheduled_at"`
	ScheduledTimezone string        `json:"scheduled_timezone"`
	PublishedAt       *time.Time    `json:"published_at"`
}

// Client talks to one publication API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	reads      singleflight.Group
}

// New creates a Client. timeout caps every request; callers usually pass a
// tighter per-call context deadline as well.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "publication_client"),
	}
}

// PublishDue runs one sweep on the server and returns the ids this call
// transitioned.
func (c *Client) PublishDue(ctx context.Context) ([]uuid.UUID, error) {
	var body struct {
		Count     int `json:"count"`
		Published []struct {
			ID uuid.UUID `json:"id"`
		} `json:"published"`
	}
	if err := c.do(ctx, http.MethodPost, "/publications/publish-due", &body); err != nil {
		return nil, fmt.Errorf("publish due: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(body.Published))
	for _, p := range body.Published {
		ids = append(ids, p.ID)
	}
	c.log.DebugContext(ctx, "publish due", slog.Int("count", len(ids)))
	return ids, nil
}

// Get reads a record. Concurrent reads of the same id share one request,
// which keeps a burst of triggers for one record from fanning out.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	ch := c.reads.DoChan(id.String(), func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.httpClient.Timeout)
		defer cancel()

		var rec Record
		if err := c.do(rctx, http.MethodGet, "/publications/"+id.String(), &rec); err != nil {
			return Record{}, err
		}
		return rec, nil
	})

	select {
	case <-ctx.Done():
		return Record{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Record{}, fmt.Errorf("get publication %s: %w", id, res.Err)
		}
		return res.Val.(Record), nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}

// IsRetryable reports whether err leaves the outcome unknown, so the same
// call may simply be repeated.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	return err != nil
}
