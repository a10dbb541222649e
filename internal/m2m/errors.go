// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package m2m

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned by catalog operations on a session that
// never logged in or has already logged out. No request is issued.
var ErrNotAuthenticated = errors.New("m2m: session is not authenticated")

// RemoteAPIError is a response the service rejected: HTTP status >= 400, or
// a success status whose envelope carries an error code. Message is the
// service's errorMessage verbatim.
type RemoteAPIError struct {
	Endpoint string
	Status   int
	Code     string
	Message  string
}

func (e *RemoteAPIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("m2m %s: HTTP %d %s: %s", e.Endpoint, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("m2m %s: HTTP %d: %s", e.Endpoint, e.Status, e.Message)
}

// TransportError is a network-level failure that persisted through retries.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("m2m %s: transport: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports a failed login.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login as %q failed: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
