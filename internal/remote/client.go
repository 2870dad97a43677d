// Package remote is a notes.Store that talks to the seaglass note API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/san-kum/seaglass/internal/notes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var _ notes.Store = (*Client)(nil)

type Options struct {
	// RatePerSecond caps outgoing requests. Zero means unlimited.
	RatePerSecond float64
	Retries       int
	Backoff       time.Duration
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		RatePerSecond: 5,
		Retries:       3,
		Backoff:       200 * time.Millisecond,
	}
}

type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	retries int
	backoff time.Duration
	log     *zap.Logger
}

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: status %d: %s", e.Code, e.Body)
}

func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &Client{
		base:    u,
		http:    opts.HTTPClient,
		limiter: rate.NewLimiter(limit, 1),
		retries: opts.Retries,
		backoff: opts.Backoff,
		log:     opts.Logger.Named("remote"),
	}, nil
}

func (c *Client) notesURL(owner string, id ...string) string {
	parts := append([]string{"api", "owners", owner, "notes"}, id...)
	return c.base.JoinPath(parts...).String()
}

func (c *Client) List(ctx context.Context, owner string) ([]notes.Note, error) {
	var out []notes.Note
	if err := c.do(ctx, http.MethodGet, c.notesURL(owner), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, n notes.Note) error {
	return c.do(ctx, http.MethodPost, c.notesURL(n.Owner), n, nil)
}

func (c *Client) Update(ctx context.Context, owner, id, text string) error {
	body := map[string]string{"text": text}
	return c.do(ctx, http.MethodPatch, c.notesURL(owner, id), body, nil)
}

func (c *Client) Delete(ctx context.Context, owner, id string) error {
	return c.do(ctx, http.MethodDelete, c.notesURL(owner, id), nil, nil)
}

// do sends one request, retrying transport errors and 5xx responses with
// exponential backoff. 404 maps to notes.ErrNotFound.
func (c *Client) do(ctx context.Context, method, target string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	wait := c.backoff
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.log.Debug("retrying", zap.String("method", method), zap.String("url", target), zap.Int("attempt", attempt), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.once(ctx, method, target, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}
	return fmt.Errorf("%s %s: giving up after %d attempts: %w", method, target, c.retries+1, lastErr)
}

func (c *Client) once(ctx context.Context, method, target string, payload []byte, out any) (retry bool, err error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return false, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, notes.ErrNotFound
	case resp.StatusCode >= 500:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return true, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}
