// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"strings"

	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// OptionCriteria is the exact-match rule a download option must satisfy.
type OptionCriteria struct {
	ProductName     string
	DisplayIDSuffix string
}

// CriteriaFrom extracts the option rule from a query configuration.
func CriteriaFrom(cfg types.QueryConfig) OptionCriteria {
	cfg = cfg.WithDefaults()
	return OptionCriteria{ProductName: cfg.ProductName, DisplayIDSuffix: cfg.DisplayIDSuffix}
}

// Eligible reports whether opt is the configured product, in the configured
// collection tier, and available now. All three must hold.
func (c OptionCriteria) Eligible(opt types.DownloadOption) bool {
	return opt.ProductName == c.ProductName &&
		strings.HasSuffix(opt.DisplayID, c.DisplayIDSuffix) &&
		opt.Available
}

// Select keeps the eligible options as download selections, in input order,
// collapsing repeated entity/product pairs. Ineligible options are dropped,
// never substituted.
func (c OptionCriteria) Select(opts []types.DownloadOption) []types.DownloadSelection {
	seen := make(map[types.DownloadSelection]bool)
	var selected []types.DownloadSelection
	for _, opt := range opts {
		if !c.Eligible(opt) {
			continue
		}
		sel := types.DownloadSelection{EntityID: opt.EntityID, ProductID: opt.ID}
		if seen[sel] {
			continue
		}
		seen[sel] = true
		selected = append(selected, sel)
	}
	return selected
}
