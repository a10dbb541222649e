// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the acquisition date format used by filters and the wire.
const DateLayout = "2006-01-02"

// GridType names a Worldwide Reference System grid.
type GridType string

const (
	GridWRS1 GridType = "WRS1"
	GridWRS2 GridType = "WRS2"
)

// GridRef is a path/row reference on a WRS grid.
type GridRef struct {
	Type GridType `json:"gridType" yaml:"type"`
	Path int      `json:"path" yaml:"path"`
	Row  int      `json:"row" yaml:"row"`
}

// CloudCover bounds scene cloud cover in percent.
type CloudCover struct {
	Min            int  `json:"min" yaml:"min"`
	Max            int  `json:"max" yaml:"max"`
	IncludeUnknown bool `json:"includeUnknown" yaml:"include_unknown"`
}

// FilterSpec describes which scenes a catalog query selects. Exactly one of
// Grid or Point locates the search; a grid reference is resolved to its
// center point before scene search.
type FilterSpec struct {
	// Dataset is the already-chosen dataset alias.
	Dataset string `json:"dataset" yaml:"dataset"`

	Grid  *GridRef    `json:"grid,omitempty" yaml:"grid,omitempty"`
	Point *Coordinate `json:"point,omitempty" yaml:"point,omitempty"`

	// Start and End bound the acquisition date, inclusive (YYYY-MM-DD).
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`

	// Months restricts acquisitions to these calendar months (1-12).
	// Empty means every month.
	Months []int `json:"months,omitempty" yaml:"months,omitempty"`

	CloudCover CloudCover `json:"cloudCover" yaml:"cloud_cover"`
}

// Validate checks the filter for internal consistency.
func (f FilterSpec) Validate() error {
	var errs []error
	if f.Dataset == "" {
		errs = append(errs, errors.New("dataset alias is required"))
	}

	switch {
	case f.Grid == nil && f.Point == nil:
		errs = append(errs, errors.New("a grid reference or a point is required"))
	case f.Grid != nil && f.Point != nil:
		errs = append(errs, errors.New("grid reference and point are mutually exclusive"))
	case f.Grid != nil:
		if f.Grid.Type != GridWRS1 && f.Grid.Type != GridWRS2 {
			errs = append(errs, fmt.Errorf("grid type %q: must be WRS1 or WRS2", f.Grid.Type))
		}
		if f.Grid.Path <= 0 || f.Grid.Row <= 0 {
			errs = append(errs, fmt.Errorf("grid path and row must be positive, got path %d row %d", f.Grid.Path, f.Grid.Row))
		}
	case f.Point != nil:
		if f.Point.Latitude < -90 || f.Point.Latitude > 90 {
			errs = append(errs, fmt.Errorf("latitude %v out of range", f.Point.Latitude))
		}
		if f.Point.Longitude < -180 || f.Point.Longitude > 180 {
			errs = append(errs, fmt.Errorf("longitude %v out of range", f.Point.Longitude))
		}
	}

	start, startErr := time.Parse(DateLayout, f.Start)
	if startErr != nil {
		errs = append(errs, fmt.Errorf("start date %q: want YYYY-MM-DD", f.Start))
	}
	end, endErr := time.Parse(DateLayout, f.End)
	if endErr != nil {
		errs = append(errs, fmt.Errorf("end date %q: want YYYY-MM-DD", f.End))
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		errs = append(errs, fmt.Errorf("end date %s is before start date %s", f.End, f.Start))
	}

	for _, m := range f.Months {
		if m < 1 || m > 12 {
			errs = append(errs, fmt.Errorf("month %d out of range 1-12", m))
		}
	}

	cc := f.CloudCover
	if cc.Min < 0 || cc.Max > 100 || cc.Min > cc.Max {
		errs = append(errs, fmt.Errorf("cloud cover bounds %d-%d: want 0 <= min <= max <= 100", cc.Min, cc.Max))
	}

	return errors.Join(errs...)
}
