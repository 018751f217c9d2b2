package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/picnichood/picnic-cli/internal/logging"
)

// ErrAuthExpired is returned on any 401. The session has already been
// cleared when callers see it; they must redirect to login, never retry.
var ErrAuthExpired = errors.New("authentication expired")

// RequestError carries the status of a failed call and, where the server
// supplied one, its message.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// SessionStore is the slice of the session the client needs: the current
// token for the Authorization header and Clear for the 401 path.
type SessionStore interface {
	Token() string
	Clear() error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    SessionStore
}

func NewClient(baseURL string, session SessionStore) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		session: session,
	}
}

// do issues an authenticated JSON request. A 401 anywhere clears the
// session and fails with ErrAuthExpired; other non-2xx statuses fail with
// *RequestError. On success the body is decoded into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.session.Token())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	l := logging.FromContext(ctx).With("method", method, "path", path)

	if resp.StatusCode == http.StatusUnauthorized {
		l.Warn("auth_expired", "status", resp.StatusCode)
		if err := c.session.Clear(); err != nil {
			l.Error("session_clear_failed", "error", err)
		}
		return ErrAuthExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			reqErr.Message = payload.Message
		}
		l.Warn("request_failed", "status", resp.StatusCode, "message", reqErr.Message)
		return reqErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
