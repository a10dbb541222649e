// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"iter"
	"sync"

	"github.com/pdiddy/m2m-fetch/internal/m2m"
	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// fakeCatalog is an in-memory Catalog. Nil funcs return empty results.
type fakeCatalog struct {
	datasets  func(name string) ([]types.Dataset, error)
	grid      func(ref types.GridRef) ([]types.Coordinate, error)
	scenes    []types.Scene
	scenesErr error
	options   func(entityIDs []string) ([]types.DownloadOption, error)
	downloads func(sel []types.DownloadSelection) (m2m.DownloadRequestResult, error)

	mu            sync.Mutex
	searches      []m2m.SceneSearch
	optionBatches [][]string
	requests      [][]types.DownloadSelection
	labels        []string
}

func (f *fakeCatalog) SearchDatasets(_ context.Context, name string) ([]types.Dataset, error) {
	if f.datasets == nil {
		return nil, nil
	}
	return f.datasets(name)
}

func (f *fakeCatalog) GridToCoordinates(_ context.Context, ref types.GridRef) ([]types.Coordinate, error) {
	if f.grid == nil {
		return []types.Coordinate{{Latitude: 1, Longitude: 2}}, nil
	}
	return f.grid(ref)
}

func (f *fakeCatalog) Scenes(_ context.Context, search m2m.SceneSearch) iter.Seq2[types.Scene, error] {
	f.mu.Lock()
	f.searches = append(f.searches, search)
	f.mu.Unlock()
	return func(yield func(types.Scene, error) bool) {
		for _, s := range f.scenes {
			if !yield(s, nil) {
				return
			}
		}
		if f.scenesErr != nil {
			yield(types.Scene{}, f.scenesErr)
		}
	}
}

func (f *fakeCatalog) DownloadOptions(_ context.Context, _ string, entityIDs []string) ([]types.DownloadOption, error) {
	f.mu.Lock()
	f.optionBatches = append(f.optionBatches, append([]string(nil), entityIDs...))
	f.mu.Unlock()
	if f.options == nil {
		return nil, nil
	}
	return f.options(entityIDs)
}

func (f *fakeCatalog) RequestDownloads(_ context.Context, sel []types.DownloadSelection, label string) (m2m.DownloadRequestResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, append([]types.DownloadSelection(nil), sel...))
	f.labels = append(f.labels, label)
	f.mu.Unlock()
	if f.downloads == nil {
		return availableFor(sel), nil
	}
	return f.downloads(sel)
}

// availableFor accepts every selection, using the product id as download id.
func availableFor(sel []types.DownloadSelection) m2m.DownloadRequestResult {
	var res m2m.DownloadRequestResult
	for _, s := range sel {
		res.Available = append(res.Available, types.DownloadableItem{
			DownloadID: s.ProductID,
			URL:        "https://dds.example/" + s.ProductID,
			EntityID:   s.EntityID,
		})
	}
	return res
}

// bundleOption is an option that passes the default criteria.
func bundleOption(entityID, productID string) types.DownloadOption {
	return types.DownloadOption{
		ID:          productID,
		EntityID:    entityID,
		DisplayID:   "LC08_L1TP_201032_20200601_20200608_02_T1",
		ProductName: types.DefaultProductName,
		Available:   true,
	}
}

func pointFilter() types.FilterSpec {
	return types.FilterSpec{
		Dataset: "landsat_ot_c2_l1",
		Point:   &types.Coordinate{Latitude: 40.3, Longitude: -3.9},
		Start:   "2013-01-01",
		End:     "2020-12-31",
		Months:  []int{5, 6, 7},
		CloudCover: types.CloudCover{
			Min: 0,
			Max: 5,
		},
	}
}
