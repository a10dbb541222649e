// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package m2m

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// pagedScenes serves total scenes in pages of pageSize, honoring the
// request's startingNumber. failAt makes the page starting there fail.
func pagedScenes(total, pageSize, failAt int) func([]byte) (int, any, string) {
	return func(body []byte) (int, any, string) {
		var req sceneSearchRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return http.StatusBadRequest, nil, err.Error()
		}
		if failAt != 0 && req.StartingNumber == failAt {
			return http.StatusInternalServerError, nil, "search backend unavailable"
		}
		var results []types.Scene
		for i := req.StartingNumber; i < req.StartingNumber+pageSize && i <= total; i++ {
			results = append(results, types.Scene{EntityID: fmt.Sprintf("LC8%03d", i)})
		}
		return 0, map[string]any{
			"results":         results,
			"recordsReturned": len(results),
			"totalHits":       total,
			"startingNumber":  req.StartingNumber,
			"nextRecord":      req.StartingNumber + len(results),
		}, ""
	}
}

func loggedIn(t *testing.T, f *fakeService, client *Client) *Session {
	t.Helper()
	sess, err := Login(context.Background(), client, testCreds)
	require.NoError(t, err)
	return sess
}

func drain(t *testing.T, seq iter.Seq2[types.Scene, error]) ([]string, error) {
	t.Helper()
	var ids []string
	for s, err := range seq {
		if err != nil {
			return nil, err
		}
		ids = append(ids, s.EntityID)
	}
	return ids, nil
}

func TestScenesFollowsEveryPage(t *testing.T) {
	f, ts := newFakeService(t)
	f.handle(endpointSceneSearch, pagedScenes(7, 3, 0))
	sess := loggedIn(t, f, testClient(ts))

	ids, err := drain(t, sess.Scenes(context.Background(), SceneSearch{Dataset: "ds", PageSize: 3}))
	require.NoError(t, err)

	require.Len(t, ids, 7)
	assert.Equal(t, "LC8001", ids[0])
	assert.Equal(t, "LC8007", ids[6])
	assert.Len(t, f.callsTo(endpointSceneSearch), 3)
}

func TestScenesIsRestartable(t *testing.T) {
	f, ts := newFakeService(t)
	f.handle(endpointSceneSearch, pagedScenes(4, 2, 0))
	sess := loggedIn(t, f, testClient(ts))

	seq := sess.Scenes(context.Background(), SceneSearch{Dataset: "ds", PageSize: 2})

	var first, second []string
	for s, err := range seq {
		require.NoError(t, err)
		first = append(first, s.EntityID)
	}
	for s, err := range seq {
		require.NoError(t, err)
		second = append(second, s.EntityID)
	}
	assert.Equal(t, first, second)
	assert.Len(t, first, 4)
}

func TestScenesStopsFetchingWhenRangeStops(t *testing.T) {
	f, ts := newFakeService(t)
	f.handle(endpointSceneSearch, pagedScenes(100, 10, 0))
	sess := loggedIn(t, f, testClient(ts))

	n := 0
	for _, err := range sess.Scenes(context.Background(), SceneSearch{Dataset: "ds", PageSize: 10}) {
		require.NoError(t, err)
		n++
		if n == 5 {
			break
		}
	}
	assert.Len(t, f.callsTo(endpointSceneSearch), 1)
}

func TestScenesSurfacesPageError(t *testing.T) {
	f, ts := newFakeService(t)
	f.handle(endpointSceneSearch, pagedScenes(9, 3, 4))
	sess := loggedIn(t, f, testClient(ts))

	ids, err := drain(t, sess.Scenes(context.Background(), SceneSearch{Dataset: "ds", PageSize: 3}))
	assert.Nil(t, ids)

	var apiErr *RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "search backend unavailable", apiErr.Message)
}

func TestScenesLastCursorEqualsTotalHits(t *testing.T) {
	f, ts := newFakeService(t)
	// The last page reports nextRecord == totalHits instead of totalHits+1.
	f.handle(endpointSceneSearch, func(body []byte) (int, any, string) {
		var req sceneSearchRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return http.StatusBadRequest, nil, err.Error()
		}
		var results []types.Scene
		for i := req.StartingNumber; i < req.StartingNumber+3 && i <= 5; i++ {
			results = append(results, types.Scene{EntityID: fmt.Sprintf("E%d", i)})
		}
		next := req.StartingNumber + len(results)
		if next > 5 {
			next = 5
		}
		return 0, map[string]any{
			"results":         results,
			"recordsReturned": len(results),
			"totalHits":       5,
			"startingNumber":  req.StartingNumber,
			"nextRecord":      next,
		}, ""
	})
	sess := loggedIn(t, f, testClient(ts))

	ids, err := drain(t, sess.Scenes(context.Background(), SceneSearch{Dataset: "ds", PageSize: 3}))
	require.NoError(t, err)
	assert.Equal(t, []string{"E1", "E2", "E3", "E4", "E5"}, ids)
	assert.Len(t, f.callsTo(endpointSceneSearch), 2)
}

func TestScenesCursorStuckOnServer(t *testing.T) {
	f, ts := newFakeService(t)
	// The service ignores startingNumber and always serves the first page.
	f.handle(endpointSceneSearch, func([]byte) (int, any, string) {
		return 0, map[string]any{
			"results":         []types.Scene{{EntityID: "E1"}},
			"recordsReturned": 1,
			"startingNumber":  1,
			"nextRecord":      2,
		}, ""
	})
	sess := loggedIn(t, f, testClient(ts))

	ids, err := drain(t, sess.Scenes(context.Background(), SceneSearch{Dataset: "ds", PageSize: 1}))
	require.NoError(t, err)
	assert.Equal(t, []string{"E1"}, ids)
	assert.LessOrEqual(t, len(f.callsTo(endpointSceneSearch)), 2)
}

func TestScenePageNextStart(t *testing.T) {
	tests := []struct {
		name     string
		page     ScenePage
		start    int
		consumed int
		want     int
		ok       bool
	}{
		{"more pages", ScenePage{Scenes: make([]types.Scene, 2), TotalHits: 5, StartingNumber: 1, NextRecord: 3}, 1, 2, 3, true},
		{"last page", ScenePage{Scenes: make([]types.Scene, 1), TotalHits: 5, StartingNumber: 5, NextRecord: 6}, 5, 5, 0, false},
		{"cursor equals total hits", ScenePage{Scenes: make([]types.Scene, 2), TotalHits: 5, StartingNumber: 4, NextRecord: 5}, 4, 5, 0, false},
		{"empty page", ScenePage{TotalHits: 5, StartingNumber: 1, NextRecord: 3}, 1, 0, 0, false},
		{"no cursor", ScenePage{Scenes: make([]types.Scene, 2), TotalHits: 2, StartingNumber: 1}, 1, 2, 0, false},
		{"cursor does not pass request", ScenePage{Scenes: make([]types.Scene, 1), StartingNumber: 1, NextRecord: 2}, 2, 2, 0, false},
		{"unknown total", ScenePage{Scenes: make([]types.Scene, 2), StartingNumber: 3, NextRecord: 5}, 3, 4, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.page.nextStart(tt.start, tt.consumed)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
