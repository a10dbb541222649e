package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/m2m-fetch/internal/catalog"
	"github.com/pdiddy/m2m-fetch/pkg/types"
)

func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("filter", "", "YAML filter file; other filter flags override its fields")
	f.String("dataset", "", "dataset alias (e.g. landsat_ot_c2_l1)")
	f.String("grid", string(types.GridWRS2), "grid type for --path/--row: WRS1 or WRS2")
	f.Int("path", 0, "WRS path")
	f.Int("row", 0, "WRS row")
	f.Float64("lat", 0, "point latitude (instead of --path/--row)")
	f.Float64("lon", 0, "point longitude (instead of --path/--row)")
	f.String("start", "", "acquisition start date (YYYY-MM-DD)")
	f.String("end", "", "acquisition end date (YYYY-MM-DD)")
	f.IntSlice("months", nil, "calendar months to keep (e.g. 5,6,7)")
	f.Int("cloud-min", 0, "minimum cloud cover percent")
	f.Int("cloud-max", 100, "maximum cloud cover percent")
	f.Bool("include-unknown-cloud", false, "keep scenes whose cloud cover is unknown")
}

// filterFromFlags builds the filter from --filter and the individual
// flags. Flags the user set override the file.
func filterFromFlags(cmd *cobra.Command) (types.FilterSpec, error) {
	flags := cmd.Flags()

	var spec types.FilterSpec
	if path, _ := flags.GetString("filter"); path != "" {
		var err error
		if spec, err = catalog.ReadFilterFile(path); err != nil {
			return spec, err
		}
	} else {
		spec.CloudCover.Max = 100
	}

	if flags.Changed("dataset") {
		spec.Dataset, _ = flags.GetString("dataset")
	}
	if flags.Changed("start") {
		spec.Start, _ = flags.GetString("start")
	}
	if flags.Changed("end") {
		spec.End, _ = flags.GetString("end")
	}
	if flags.Changed("months") {
		spec.Months, _ = flags.GetIntSlice("months")
	}
	if flags.Changed("cloud-min") {
		spec.CloudCover.Min, _ = flags.GetInt("cloud-min")
	}
	if flags.Changed("cloud-max") {
		spec.CloudCover.Max, _ = flags.GetInt("cloud-max")
	}
	if flags.Changed("include-unknown-cloud") {
		spec.CloudCover.IncludeUnknown, _ = flags.GetBool("include-unknown-cloud")
	}

	gridSet := flags.Changed("path") || flags.Changed("row") || flags.Changed("grid")
	pointSet := flags.Changed("lat") || flags.Changed("lon")
	if gridSet && pointSet {
		return spec, fmt.Errorf("use either --path/--row or --lat/--lon, not both")
	}
	if gridSet {
		grid := types.GridRef{Type: types.GridWRS2}
		if spec.Grid != nil {
			grid = *spec.Grid
		}
		if flags.Changed("grid") {
			g, _ := flags.GetString("grid")
			grid.Type = types.GridType(strings.ToUpper(g))
		}
		if flags.Changed("path") {
			grid.Path, _ = flags.GetInt("path")
		}
		if flags.Changed("row") {
			grid.Row, _ = flags.GetInt("row")
		}
		spec.Grid, spec.Point = &grid, nil
	}
	if pointSet {
		var pt types.Coordinate
		if spec.Point != nil {
			pt = *spec.Point
		}
		if flags.Changed("lat") {
			pt.Latitude, _ = flags.GetFloat64("lat")
		}
		if flags.Changed("lon") {
			pt.Longitude, _ = flags.GetFloat64("lon")
		}
		spec.Point, spec.Grid = &pt, nil
	}

	if err := spec.Validate(); err != nil {
		return spec, fmt.Errorf("invalid filter:\n%w", err)
	}
	return spec, nil
}
