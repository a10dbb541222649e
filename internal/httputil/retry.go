// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// maxRetryAfter caps a server supplied Retry-After.
const maxRetryAfter = 2 * time.Minute

const defaultMaxRetries = 3

// DoWithRetry executes an HTTP request and retries it when the response is
// HTTP 429 (Too Many Requests) or the exchange fails with a transient
// network error (see IsTransient). The delay starts at RetryBaseDelay and
// doubles each attempt; a longer Retry-After on a 429 wins.
//
// When maxRetries is 0 the default (3) is used. Request bodies are replayed
// through req.GetBody, which http.NewRequest sets for in-memory bodies. On
// each 429 the response body is drained and closed before sleeping. If the
// context is cancelled the function returns ctx.Err(). After exhausting
// retries the last 429 response, or the last network error, is returned.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	return DoWithRetryIf(ctx, client, req, maxRetries, IsTransient)
}

// DoWithRetryIf is DoWithRetry with the network errors worth retrying chosen
// by retryable. A 429 is always retried since the server refused the request
// before acting on it.
func DoWithRetryIf(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, retryable func(error) bool) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if ctxErr := ctx.Err(); ctxErr != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, ctxErr
		}

		backoff := time.Duration(1<<attempt) * RetryBaseDelay
		switch {
		case err != nil:
			if !retryable(err) || attempt >= maxRetries {
				return nil, err
			}
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt >= maxRetries {
				return resp, nil
			}
			if d := retryAfter(resp); d > backoff {
				backoff = d
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		default:
			return resp, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// IsTransient reports whether err is a network failure worth retrying:
// timeouts, DNS failures, refused or reset connections, and connections
// closed mid-response. Caller cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsConnectFailure reports whether err happened before the request could
// reach the server: DNS failures and refused or failed dials. Such errors are
// safe to retry even for requests that must not be sent twice.
func IsConnectFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d
}
