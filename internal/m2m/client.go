// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package m2m implements the session protocol of the USGS Machine-to-Machine
// JSON API: a Client that performs single enveloped POST calls, and a
// Session that holds the login token and exposes the catalog operations.
//
// Every response has the shape
//
//	{"requestId": 1, "version": "stable", "data": ..., "errorCode": null, "errorMessage": null}
//
// and the operations return the decoded data payload directly.
package m2m

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pdiddy/m2m-fetch/internal/httputil"
	"github.com/pdiddy/m2m-fetch/pkg/types"
)

const (
	// authHeader carries the session token on every call after login.
	authHeader = "X-Auth-Token"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 64 << 20
)

// replayUnsafe lists the endpoints whose calls must not be sent twice once
// they may have reached the service. A repeated login opens a second session
// and a repeated download-request stages the downloads again.
var replayUnsafe = map[string]bool{
	endpointLogin:           true,
	endpointDownloadRequest: true,
}

// Client executes enveloped JSON calls against the API root.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxRetries int
}

// limitedTransport waits on limiter before every round trip, so retried
// attempts are throttled like first attempts.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// NewClient creates a Client from cfg, filling unset fields with defaults.
func NewClient(cfg types.SessionConfig) *Client {
	cfg = cfg.WithDefaults()
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
	}
	if cfg.RequestsPerSecond > 0 {
		c.httpClient.Transport = &limitedTransport{
			base:    http.DefaultTransport,
			limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		}
	}
	return c
}

// envelope is the wrapper around every response payload.
type envelope struct {
	RequestID    int64           `json:"requestId"`
	Version      string          `json:"version"`
	Data         json.RawMessage `json:"data"`
	ErrorCode    *string         `json:"errorCode"`
	ErrorMessage *string         `json:"errorMessage"`
}

// call POSTs body as JSON to endpoint and decodes the envelope's data into
// out. An empty token sends the call anonymously. A nil body is sent as
// JSON null; a nil out discards the payload.
func (c *Client) call(ctx context.Context, endpoint string, body any, token string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("m2m %s: encoding request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("m2m %s: creating request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set(authHeader, token)
	}

	retryable := httputil.IsTransient
	if replayUnsafe[endpoint] {
		retryable = httputil.IsConnectFailure
	}
	resp, err := httputil.DoWithRetryIf(ctx, c.httpClient, req, c.maxRetries, retryable)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("m2m %s: %w", endpoint, ctx.Err())
		}
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("reading response: %w", err)}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &RemoteAPIError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  http.StatusText(resp.StatusCode),
		}
		if decodeErr == nil {
			if env.ErrorMessage != nil && *env.ErrorMessage != "" {
				apiErr.Message = *env.ErrorMessage
			}
			if env.ErrorCode != nil {
				apiErr.Code = *env.ErrorCode
			}
		}
		return apiErr
	}

	if decodeErr != nil {
		return fmt.Errorf("m2m %s: decoding response: %w", endpoint, decodeErr)
	}
	// A success status still fails when the envelope names an error.
	code, msg := deref(env.ErrorCode), deref(env.ErrorMessage)
	if code != "" || msg != "" {
		return &RemoteAPIError{Endpoint: endpoint, Status: resp.StatusCode, Code: code, Message: msg}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("m2m %s: decoding data: %w", endpoint, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
