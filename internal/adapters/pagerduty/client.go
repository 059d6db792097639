// Package pagerduty provides a small PagerDuty REST v2 client for on-call lookups and incident creation
package pagerduty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/logger"
)

const (
	baseURLDefault = "https://api.pagerduty.com"
	defaultTimeout = 15 * time.Second
	defaultUA      = "oncallbot"
	acceptV2       = "application/vnd.pagerduty+json;version=2"
	maxBody        = 4 << 20
)

// Options configures the Client
type Options struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration

	// HTTPClient overrides the transport, tests pass httptest clients here
	HTTPClient *http.Client
}

// Client is a minimal PagerDuty REST client
// it never retries; callers see the first failure
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{
		http: hc,
		opts: o,
		log:  *logger.Named("pagerduty"),
	}
}

// StatusError carries a non-2xx response from PagerDuty
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pagerduty %s %s: status %d", e.Method, e.Path, e.Status)
}

// HTTPStatus exposes the upstream status code
func (e *StatusError) HTTPStatus() int { return e.Status }

// request is one call against the API
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	header http.Header
	want   int
}

// do issues the request and decodes a JSON body into out
// non-want statuses and network failures are Transport errors; undecodable bodies are MalformedResponse
func (c *Client) do(ctx context.Context, r request, out any) error {
	if c.opts.Token == "" {
		return perr.Configf("pagerduty token is not configured")
	}
	u := c.opts.BaseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "pagerduty encode %s", r.path)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "pagerduty new request failed")
	}
	req.Header.Set("Accept", acceptV2)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token token="+c.opts.Token)
	req.Header.Set("User-Agent", c.opts.UserAgent)
	for k, vv := range r.header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeTransport, "pagerduty %s %s failed", r.method, r.path)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", r.path).Msg("pagerduty close body failed")
		}
	}()

	c.log.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("pagerduty http response")

	want := r.want
	if want == 0 {
		want = http.StatusOK
	}
	b, rerr := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if resp.StatusCode != want {
		se := &StatusError{Method: r.method, Path: r.path, Status: resp.StatusCode, Body: tail(b)}
		return perr.Wrap(se, perr.ErrorCodeTransport, upstreamMessage(b, resp.StatusCode))
	}
	if rerr != nil {
		return perr.Wrapf(rerr, perr.ErrorCodeTransport, "pagerduty read %s", r.path)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "pagerduty %s: undecodable body", r.path)
	}
	return nil
}

// GetJSON issues an authenticated GET and decodes the 200 body into out
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

// upstreamMessage prefers PagerDuty's error.message over a bare status line
func upstreamMessage(b []byte, status int) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(b, &env) == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return fmt.Sprintf("HTTP %d", status)
}

func tail(b []byte) string {
	const n = 2048
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
