// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package m2m

import (
	"context"
	"iter"

	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// Scenes returns a lazy sequence of every scene matching search. Pages are
// fetched on demand by following each page's nextRecord; stopping the range
// early stops fetching. Each range over the sequence starts again from the
// first page. A failed page yields its error once and ends the sequence.
//
// A scene is yielded at most once per range even when pages overlap. The
// sequence ends when a page is empty, when the cursor does not move past the
// requested start, when totalHits records have been read, or when a page
// brings no scene not already yielded.
func (s *Session) Scenes(ctx context.Context, search SceneSearch) iter.Seq2[types.Scene, error] {
	return func(yield func(types.Scene, error) bool) {
		req := search
		if req.StartingNumber <= 0 {
			req.StartingNumber = 1
		}
		seen := make(map[string]struct{})
		consumed := 0
		for {
			page, err := s.SearchScenes(ctx, req)
			if err != nil {
				yield(types.Scene{}, err)
				return
			}
			consumed += len(page.Scenes)
			fresh := 0
			for _, scene := range page.Scenes {
				if scene.EntityID != "" {
					if _, dup := seen[scene.EntityID]; dup {
						continue
					}
					seen[scene.EntityID] = struct{}{}
				}
				fresh++
				if !yield(scene, nil) {
					return
				}
			}
			next, ok := page.nextStart(req.StartingNumber, consumed)
			if !ok || fresh == 0 {
				return
			}
			req.StartingNumber = next
		}
	}
}
