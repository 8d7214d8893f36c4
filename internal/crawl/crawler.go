// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"

	"github.com/pdiddy/price-scout/pkg/types"
)

// Harvest is a crawler's output: either one flat collection matched
// against every catalog item, or per-item collections aligned with the
// catalog order. Exactly one of the two is populated.
type Harvest struct {
	Flat   []types.Product
	ByItem [][]types.Product
}

// For returns the candidate products for the catalog item at index i.
func (h Harvest) For(i int) []types.Product {
	if h.ByItem != nil {
		return h.ByItem[i]
	}
	return h.Flat
}

// Crawler retrieves listings from one source. The two implementations
// keep their very different concurrency shapes explicit rather than
// sharing a base.
type Crawler interface {
	Source() types.Source
	Crawl(ctx context.Context, items []types.CatalogItem) (Harvest, error)
}

// Progress is a coarse progress marker emitted during a crawl: page P of
// N fetched, or item I of N processed. External trackers derive
// percent-complete from these; the core never computes one.
type Progress struct {
	Source  types.Source
	Stage   string // "page" or "item"
	Current int
	Total   int
}

// ProgressFunc observes Progress events. May be nil.
type ProgressFunc func(Progress)

func (f ProgressFunc) emit(p Progress) {
	if f != nil {
		f(p)
	}
}
