// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compare reconciles per-source matches into the per-item
// comparison rows that the reports and the history store consume.
package compare

import (
	"github.com/pdiddy/price-scout/pkg/types"
)

// Representative collapses a listing price to a single yen value: the
// floor midpoint of a range, otherwise the listed price.
func Representative(p types.Product) int {
	if p.HasRange() {
		return (p.PriceLow + p.PriceHigh) / 2
	}
	return p.PriceLow
}

// Reconcile joins both sources' matches by catalog item. Rows come out
// in catalog order, one per item, regardless of which sources matched.
// The price delta and recommendation are computed only when both
// sources produced an accepted match; the recommendation names the
// cheaper source.
func Reconcile(items []types.CatalogItem, matches map[types.Source][]types.Match) []types.ComparisonRow {
	bySource := make(map[types.Source]map[int]types.Match, len(matches))
	for source, ms := range matches {
		indexed := make(map[int]types.Match, len(ms))
		for _, m := range ms {
			indexed[m.Item.ID] = m
		}
		bySource[source] = indexed
	}

	rows := make([]types.ComparisonRow, 0, len(items))
	for _, item := range items {
		row := types.ComparisonRow{Item: item}
		if m, ok := bySource[types.SourceFastbuy][item.ID]; ok && m.Product != nil {
			row.Fastbuy = &m
		}
		if m, ok := bySource[types.SourceOnechome][item.ID]; ok && m.Product != nil {
			row.Onechome = &m
		}

		if row.Fastbuy != nil && row.Onechome != nil {
			diff := Representative(*row.Onechome.Product) - Representative(*row.Fastbuy.Product)
			row.PriceDiff = &diff
			row.Recommendation = recommend(diff)
		}
		rows = append(rows, row)
	}
	return rows
}

func recommend(diff int) types.Recommendation {
	switch {
	case diff > 0:
		return types.RecommendFastbuy
	case diff < 0:
		return types.RecommendOnechome
	default:
		return types.RecommendEqual
	}
}
