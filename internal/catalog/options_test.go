// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/m2m-fetch/pkg/types"
)

func TestEligibleRequiresAllThreeConditions(t *testing.T) {
	c := CriteriaFrom(types.QueryConfig{})

	for _, product := range []bool{true, false} {
		for _, tier := range []bool{true, false} {
			for _, available := range []bool{true, false} {
				opt := bundleOption("E1", "P1")
				if !product {
					opt.ProductName = "Landsat Collection 2 Level-2 Product Bundle"
				}
				if !tier {
					opt.DisplayID = "LC08_L1TP_201032_20200601_20200608_02_T2"
				}
				opt.Available = available

				want := product && tier && available
				assert.Equal(t, want, c.Eligible(opt),
					"product=%v tier=%v available=%v", product, tier, available)
			}
		}
	}
}

func TestEligibleIsExactMatch(t *testing.T) {
	c := CriteriaFrom(types.QueryConfig{})

	tests := []struct {
		name string
		mod  func(*types.DownloadOption)
	}{
		{"product name prefix", func(o *types.DownloadOption) { o.ProductName = "Landsat Collection 2 Level-1" }},
		{"product name case", func(o *types.DownloadOption) { o.ProductName = "landsat collection 2 level-1 product bundle" }},
		{"tier in middle", func(o *types.DownloadOption) { o.DisplayID = "LC08_T1_201032_RT" }},
		{"realtime tier", func(o *types.DownloadOption) { o.DisplayID = "LC08_L1TP_201032_20200601_20200608_02_RT" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := bundleOption("E1", "P1")
			tt.mod(&opt)
			assert.False(t, c.Eligible(opt))
		})
	}
}

func TestSelectKeepsOrderAndCollapsesDuplicates(t *testing.T) {
	c := CriteriaFrom(types.QueryConfig{})
	unavailable := bundleOption("E2", "P2")
	unavailable.Available = false

	got := c.Select([]types.DownloadOption{
		bundleOption("E3", "P3"),
		unavailable,
		bundleOption("E1", "P1"),
		bundleOption("E3", "P3"),
		bundleOption("E3", "P4"),
	})

	assert.Equal(t, []types.DownloadSelection{
		{EntityID: "E3", ProductID: "P3"},
		{EntityID: "E1", ProductID: "P1"},
		{EntityID: "E3", ProductID: "P4"},
	}, got)
}

func TestSelectHonorsConfiguredCriteria(t *testing.T) {
	c := CriteriaFrom(types.QueryConfig{ProductName: "Level-2 Bundle", DisplayIDSuffix: "T2"})

	opt := bundleOption("E1", "P1")
	assert.Empty(t, c.Select([]types.DownloadOption{opt}))

	opt.ProductName = "Level-2 Bundle"
	opt.DisplayID = "LC08_L2SP_201032_T2"
	assert.Len(t, c.Select([]types.DownloadOption{opt}), 1)
}
