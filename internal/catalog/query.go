// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog turns a filter into downloadable items by driving the
// catalog session through its dependent steps: dataset lookup, grid
// resolution, scene search, download-option filtering, and download-URL
// resolution. A failure in any step ends the query with a *StepError.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/google/uuid"

	"github.com/pdiddy/m2m-fetch/internal/m2m"
	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// Step names reported in StepError.
const (
	StepFilter   = "filter validation"
	StepDatasets = "dataset search"
	StepGrid     = "grid resolution"
	StepScenes   = "scene search"
	StepOptions  = "download options"
	StepURLs     = "download request"
)

// ErrAmbiguousGrid is returned under GridReject when a grid reference
// resolves to more than one coordinate.
var ErrAmbiguousGrid = errors.New("grid reference resolved to more than one coordinate")

// ErrNoCoordinates is returned when a grid reference resolves to nothing.
var ErrNoCoordinates = errors.New("grid reference resolved to no coordinates")

// StepError names the step a query failed in.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// Catalog is the set of session operations a query drives. *m2m.Session
// implements it.
type Catalog interface {
	SearchDatasets(ctx context.Context, name string) ([]types.Dataset, error)
	GridToCoordinates(ctx context.Context, ref types.GridRef) ([]types.Coordinate, error)
	Scenes(ctx context.Context, search m2m.SceneSearch) iter.Seq2[types.Scene, error]
	DownloadOptions(ctx context.Context, dataset string, entityIDs []string) ([]types.DownloadOption, error)
	RequestDownloads(ctx context.Context, selections []types.DownloadSelection, label string) (m2m.DownloadRequestResult, error)
}

// Resolution is the outcome of a complete query.
type Resolution struct {
	Point     types.Coordinate
	Scenes    []types.Scene
	Options   int
	Selected  []types.DownloadSelection
	Items     []types.DownloadableItem
	Preparing int
	Failed    int
}

// Query resolves filters against a catalog.
type Query struct {
	cat      Catalog
	cfg      types.QueryConfig
	criteria OptionCriteria
	w        io.Writer

	// newLabel names each download request; tests replace it.
	newLabel func() string
}

// NewQuery creates a Query. Status lines are written to w.
func NewQuery(cat Catalog, cfg types.QueryConfig, w io.Writer) *Query {
	cfg = cfg.WithDefaults()
	if w == nil {
		w = io.Discard
	}
	return &Query{
		cat:      cat,
		cfg:      cfg,
		criteria: CriteriaFrom(cfg),
		w:        w,
		newLabel: func() string { return cfg.LabelPrefix + "-" + uuid.NewString() },
	}
}

// Datasets lists the datasets matching name so the caller can choose an
// alias for the filter.
func (q *Query) Datasets(ctx context.Context, name string) ([]types.Dataset, error) {
	datasets, err := q.cat.SearchDatasets(ctx, name)
	if err != nil {
		return nil, &StepError{Step: StepDatasets, Err: err}
	}
	return datasets, nil
}

// Resolve runs every step for f and returns the downloadable items. The
// service may accept fewer products than were selected; the shorter list
// is returned without error.
func (q *Query) Resolve(ctx context.Context, f types.FilterSpec) (Resolution, error) {
	var res Resolution
	if err := f.Validate(); err != nil {
		return res, &StepError{Step: StepFilter, Err: err}
	}

	point, err := q.ResolvePoint(ctx, f)
	if err != nil {
		return res, err
	}
	res.Point = point

	scenes, err := q.SearchScenes(ctx, f, point)
	if err != nil {
		return res, err
	}
	res.Scenes = scenes
	fmt.Fprintf(q.w, "found %d scene(s) in %s\n", len(scenes), f.Dataset)
	if len(scenes) == 0 {
		return res, nil
	}

	options, err := q.ListOptions(ctx, f.Dataset, scenes)
	if err != nil {
		return res, err
	}
	res.Options = len(options)
	res.Selected = q.criteria.Select(options)
	fmt.Fprintf(q.w, "selected %d of %d download option(s) (%s, %s tier, available)\n",
		len(res.Selected), len(options), q.criteria.ProductName, q.criteria.DisplayIDSuffix)
	if len(res.Selected) == 0 {
		return res, nil
	}

	dl, err := q.RequestURLs(ctx, res.Selected)
	if err != nil {
		return res, err
	}
	res.Items = dl.Available
	res.Preparing = dl.Preparing
	res.Failed = dl.Failed
	fmt.Fprintf(q.w, "resolved %d of %d download URL(s) (%d preparing, %d rejected)\n",
		len(res.Items), len(res.Selected), res.Preparing, res.Failed)
	return res, nil
}

// ResolvePoint returns the search point: the filter's explicit point, or
// the center of its grid reference under the configured GridPolicy.
func (q *Query) ResolvePoint(ctx context.Context, f types.FilterSpec) (types.Coordinate, error) {
	if f.Point != nil {
		return *f.Point, nil
	}
	if f.Grid == nil {
		return types.Coordinate{}, &StepError{Step: StepGrid, Err: errors.New("filter has neither a point nor a grid reference")}
	}

	coords, err := q.cat.GridToCoordinates(ctx, *f.Grid)
	if err != nil {
		return types.Coordinate{}, &StepError{Step: StepGrid, Err: err}
	}
	point, err := pickCoordinate(coords, q.cfg.GridPolicy)
	if err != nil {
		return types.Coordinate{}, &StepError{Step: StepGrid, Err: fmt.Errorf("%s path %d row %d: %w", f.Grid.Type, f.Grid.Path, f.Grid.Row, err)}
	}
	fmt.Fprintf(q.w, "resolved %s path %d row %d to (%.4f, %.4f)\n",
		f.Grid.Type, f.Grid.Path, f.Grid.Row, point.Latitude, point.Longitude)
	return point, nil
}

func pickCoordinate(coords []types.Coordinate, policy types.GridPolicy) (types.Coordinate, error) {
	if len(coords) == 0 {
		return types.Coordinate{}, ErrNoCoordinates
	}
	switch policy {
	case types.GridReject:
		if len(coords) > 1 {
			return types.Coordinate{}, fmt.Errorf("%w (%d returned)", ErrAmbiguousGrid, len(coords))
		}
		return coords[0], nil
	case types.GridCentroid:
		var c types.Coordinate
		for _, p := range coords {
			c.Latitude += p.Latitude
			c.Longitude += p.Longitude
		}
		n := float64(len(coords))
		return types.Coordinate{Latitude: c.Latitude / n, Longitude: c.Longitude / n}, nil
	case types.GridFirst, "":
		return coords[0], nil
	default:
		return types.Coordinate{}, fmt.Errorf("unknown grid policy %q", policy)
	}
}

// SearchScenes returns every scene covering point that matches the filter's
// dates, months, and cloud cover, following pagination to the end.
func (q *Query) SearchScenes(ctx context.Context, f types.FilterSpec, point types.Coordinate) ([]types.Scene, error) {
	search := m2m.SceneSearch{
		Dataset:    f.Dataset,
		Point:      point,
		Start:      f.Start,
		End:        f.End,
		Months:     f.Months,
		CloudCover: f.CloudCover,
		PageSize:   q.cfg.PageSize,
	}
	var scenes []types.Scene
	for scene, err := range q.cat.Scenes(ctx, search) {
		if err != nil {
			return nil, &StepError{Step: StepScenes, Err: err}
		}
		scenes = append(scenes, scene)
	}
	return scenes, nil
}

// ListOptions fetches the download options of scenes in batches of
// OptionsBatchSize entity ids.
func (q *Query) ListOptions(ctx context.Context, dataset string, scenes []types.Scene) ([]types.DownloadOption, error) {
	ids := make([]string, len(scenes))
	for i, s := range scenes {
		ids[i] = s.EntityID
	}

	var options []types.DownloadOption
	for start := 0; start < len(ids); start += q.cfg.OptionsBatchSize {
		end := min(start+q.cfg.OptionsBatchSize, len(ids))
		batch, err := q.cat.DownloadOptions(ctx, dataset, ids[start:end])
		if err != nil {
			return nil, &StepError{Step: StepOptions, Err: err}
		}
		options = append(options, batch...)
	}
	return options, nil
}

// RequestURLs requests download URLs for sel in one labelled call. When the
// service rejects the batch outright, each selection is requested on its
// own and the ones it still rejects are dropped. The query fails only when
// nothing can be requested.
func (q *Query) RequestURLs(ctx context.Context, sel []types.DownloadSelection) (m2m.DownloadRequestResult, error) {
	label := q.newLabel()
	res, err := q.cat.RequestDownloads(ctx, sel, label)
	if err == nil {
		return res, nil
	}

	var apiErr *m2m.RemoteAPIError
	if !errors.As(err, &apiErr) || len(sel) == 1 {
		return m2m.DownloadRequestResult{}, &StepError{Step: StepURLs, Err: err}
	}
	fmt.Fprintf(q.w, "warning: batch download request rejected (%v), retrying %d product(s) individually\n", err, len(sel))

	var merged m2m.DownloadRequestResult
	accepted := 0
	for _, s := range sel {
		one, oneErr := q.cat.RequestDownloads(ctx, []types.DownloadSelection{s}, label)
		if oneErr != nil {
			if !errors.As(oneErr, &apiErr) {
				return m2m.DownloadRequestResult{}, &StepError{Step: StepURLs, Err: oneErr}
			}
			fmt.Fprintf(q.w, "dropped: %s/%s (%v)\n", s.EntityID, s.ProductID, oneErr)
			merged.Failed++
			continue
		}
		accepted++
		merged.Available = append(merged.Available, one.Available...)
		merged.Preparing += one.Preparing
		merged.Failed += one.Failed
	}
	if accepted == 0 {
		return m2m.DownloadRequestResult{}, &StepError{Step: StepURLs, Err: err}
	}
	return merged, nil
}
