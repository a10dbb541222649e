// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package m2m

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// LogoutTimeout bounds the cleanup logout call. Logout runs detached from
// the caller's cancellation so an aborted run still releases its token.
var LogoutTimeout = 15 * time.Second

// State is the lifecycle stage of a Session.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateLoggedOut:
		return "logged-out"
	default:
		return "anonymous"
	}
}

// Session holds the token issued at login and attaches it to every catalog
// call. It is safe for concurrent use.
type Session struct {
	client *Client

	mu    sync.RWMutex
	token string
	state State
}

// Login exchanges creds for a token and returns an authenticated Session.
// Any failure is returned as *AuthError.
func Login(ctx context.Context, client *Client, creds types.Credentials) (*Session, error) {
	if creds.Empty() {
		return nil, &AuthError{Username: creds.Username, Err: errors.New("username and password are required")}
	}

	var token string
	err := client.call(ctx, endpointLogin, loginRequest{Username: creds.Username, Password: creds.Password}, "", &token)
	if err != nil {
		return nil, &AuthError{Username: creds.Username, Err: err}
	}
	if token == "" {
		return nil, &AuthError{Username: creds.Username, Err: errors.New("service returned an empty token")}
	}

	return &Session{client: client, token: token, state: StateAuthenticated}, nil
}

// WithSession logs in, runs fn, and always attempts to log out afterwards,
// including when fn fails or panics. When login fails fn is not run and
// no logout is attempted. A logout failure is joined to fn's error.
func WithSession(ctx context.Context, client *Client, creds types.Credentials, fn func(*Session) error) (err error) {
	sess, err := Login(ctx, client, creds)
	if err != nil {
		return err
	}
	defer func() {
		if logoutErr := sess.Logout(ctx); logoutErr != nil {
			err = errors.Join(err, logoutErr)
		}
	}()
	return fn(sess)
}

// State returns the session's lifecycle stage.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Logout releases the token. Only the first call on an authenticated
// session issues a request; later calls return nil. The session is
// LoggedOut afterwards even when the request fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		s.mu.Unlock()
		return nil
	}
	token := s.token
	s.token = ""
	s.state = StateLoggedOut
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LogoutTimeout)
	defer cancel()
	if err := s.client.call(ctx, endpointLogout, nil, token, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// authorized returns the token, or ErrNotAuthenticated.
func (s *Session) authorized() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated {
		return "", fmt.Errorf("%w (state %s)", ErrNotAuthenticated, s.state)
	}
	return s.token, nil
}

// do issues an authenticated call.
func (s *Session) do(ctx context.Context, endpoint string, body, out any) error {
	token, err := s.authorized()
	if err != nil {
		return err
	}
	return s.client.call(ctx, endpoint, body, token, out)
}

// SearchDatasets lists datasets whose name matches name.
func (s *Session) SearchDatasets(ctx context.Context, name string) ([]types.Dataset, error) {
	var datasets []types.Dataset
	if err := s.do(ctx, endpointDatasetSearch, datasetSearchRequest{DatasetName: name}, &datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

// GridToCoordinates resolves a WRS path/row to its center point. The
// service may return more than one coordinate.
func (s *Session) GridToCoordinates(ctx context.Context, ref types.GridRef) ([]types.Coordinate, error) {
	req := gridRequest{
		GridType:      string(ref.Type),
		ResponseShape: "point",
		Path:          strconv.Itoa(ref.Path),
		Row:           strconv.Itoa(ref.Row),
	}
	var resp gridResponse
	if err := s.do(ctx, endpointGrid2LL, req, &resp); err != nil {
		return nil, err
	}
	return resp.Coordinates, nil
}

// SearchScenes fetches the single page of scenes that starts at
// search.StartingNumber. Use Scenes to walk every page.
func (s *Session) SearchScenes(ctx context.Context, search SceneSearch) (ScenePage, error) {
	var page ScenePage
	if err := s.do(ctx, endpointSceneSearch, search.body(), &page); err != nil {
		return ScenePage{}, err
	}
	return page, nil
}

// DownloadOptions lists the products offered for the given scenes.
func (s *Session) DownloadOptions(ctx context.Context, dataset string, entityIDs []string) ([]types.DownloadOption, error) {
	var options []types.DownloadOption
	req := downloadOptionsRequest{DatasetName: dataset, EntityIDs: entityIDs}
	if err := s.do(ctx, endpointDownloadOptions, req, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// RequestDownloads asks for URLs for the selected products. The service may
// return fewer available items than were requested; that is not an error.
func (s *Session) RequestDownloads(ctx context.Context, selections []types.DownloadSelection, label string) (DownloadRequestResult, error) {
	var resp downloadRequestResponse
	if err := s.do(ctx, endpointDownloadRequest, downloadRequest{Downloads: selections, Label: label}, &resp); err != nil {
		return DownloadRequestResult{}, err
	}

	result := DownloadRequestResult{
		Available: make([]types.DownloadableItem, 0, len(resp.AvailableDownloads)),
		Preparing: len(resp.PreparingDownloads),
		Failed:    len(resp.Failed),
	}
	for _, d := range resp.AvailableDownloads {
		result.Available = append(result.Available, types.DownloadableItem{
			DownloadID: string(d.DownloadID),
			URL:        d.URL,
			EntityID:   d.EntityID,
			DisplayID:  d.DisplayID,
		})
	}
	return result, nil
}
