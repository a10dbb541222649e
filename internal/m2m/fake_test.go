// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package m2m

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/m2m-fetch/internal/httputil"
	"github.com/pdiddy/m2m-fetch/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

const testToken = "tok-123"

// recordedCall is one request seen by the fake service.
type recordedCall struct {
	Endpoint  string
	Token     string
	UserAgent string
	Body      string
}

// fakeService is a minimal M2M stand-in. Handlers return the data payload
// (wrapped in an envelope) or, with a non-zero status, an error envelope.
type fakeService struct {
	t        *testing.T
	mu       sync.Mutex
	calls    []recordedCall
	handlers map[string]func(body []byte) (status int, data any, errMsg string)
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	f := &fakeService{t: t, handlers: map[string]func([]byte) (int, any, string){
		endpointLogin: func([]byte) (int, any, string) { return 0, testToken, "" },
		endpointLogout: func([]byte) (int, any, string) {
			return 0, nil, ""
		},
	}}
	ts := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(ts.Close)
	return f, ts
}

func (f *fakeService) handle(endpoint string, h func(body []byte) (int, any, string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[endpoint] = h
}

func (f *fakeService) serve(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/")
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Endpoint:  endpoint,
		Token:     r.Header.Get("X-Auth-Token"),
		UserAgent: r.Header.Get("User-Agent"),
		Body:      string(body),
	})
	h := f.handlers[endpoint]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"data": nil, "errorCode": "UNKNOWN_ENDPOINT", "errorMessage": "no such endpoint " + endpoint})
		return
	}
	status, data, errMsg := h(body)
	if status != 0 {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{"data": nil, "errorCode": "TEST_ERROR", "errorMessage": errMsg})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"requestId": 1, "version": "stable", "data": data, "errorCode": nil, "errorMessage": nil})
}

// callsTo returns the recorded calls to endpoint.
func (f *fakeService) callsTo(endpoint string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.Endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

func testClient(ts *httptest.Server) *Client {
	return NewClient(types.SessionConfig{
		BaseURL:    ts.URL + "/",
		HTTPConfig: types.HTTPConfig{UserAgent: "m2m-fetch-test", MaxRetries: 1},
	})
}

var testCreds = types.Credentials{Username: "alice", Password: "secret"}
