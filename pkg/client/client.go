// Package client talks to a running hemicycle server.
//
//	c := client.New("http://localhost:8080")
//	resp, err := c.Submit(ctx, feed.Update{Entry: "ca-12", Party: "DEM"})
//
// Requests that fail with a network error, a 5xx status or 429 are retried
// with exponential backoff. Error responses from the server are returned as
// [errors.Error] values carrying the server's error code, so callers can use
// errors.Is with the usual codes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/feed"
	"github.com/matzehuels/hemicycle/pkg/frame"
	"github.com/matzehuels/hemicycle/pkg/server"
)

// Defaults for [New].
const (
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
	DefaultTimeout  = 10 * time.Second
)

// Client is an HTTP client for one server.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Attempts int
	Backoff  time.Duration
}

// New returns a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: DefaultTimeout},
		Attempts: DefaultAttempts,
		Backoff:  DefaultBackoff,
	}
}

// Broadcast returns the description of the served broadcast.
func (c *Client) Broadcast(ctx context.Context) (server.BroadcastInfo, error) {
	var info server.BroadcastInfo
	err := c.do(ctx, http.MethodGet, "/v1/broadcast", nil, &info)
	return info, err
}

// Frame returns the latest frame.
func (c *Client) Frame(ctx context.Context) (frame.Frame, error) {
	var f frame.Frame
	err := c.do(ctx, http.MethodGet, "/v1/frame", nil, &f)
	return f, err
}

// Submit sends an update and returns the update as recorded together with
// the new frame.
func (c *Client) Submit(ctx context.Context, u feed.Update) (server.SubmitResponse, error) {
	var resp server.SubmitResponse
	body, err := json.Marshal(u)
	if err != nil {
		return resp, fmt.Errorf("marshal update: %w", err)
	}
	err = c.do(ctx, http.MethodPost, "/v1/results", body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	url := c.BaseURL + path
	return Retry(ctx, c.Attempts, c.Backoff, func() error {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, r)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, url)}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			err := responseError(resp)
			if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
				return &RetryableError{Err: err}
			}
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s response", path)
		}
		return nil
	})
}

// responseError turns an error response into an error carrying the server's
// code.
func responseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var e server.ErrorResponse
	if err := json.Unmarshal(data, &e); err != nil || e.Code == "" {
		return errors.New(errors.ErrCodeNetwork, "server returned %s", resp.Status)
	}
	return errors.New(errors.Code(e.Code), "%s", e.Message)
}
