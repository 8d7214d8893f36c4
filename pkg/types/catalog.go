// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared value records for the price-scout pipeline.
// All records are created fresh per run and never mutated after creation.
package types

// Source identifies one of the two retail sources.
type Source string

const (
	// SourceFastbuy is the paginated-document source (fastbuy.jp).
	SourceFastbuy Source = "fastbuy"

	// SourceOnechome is the interactive-search source (1-chome.com).
	SourceOnechome Source = "1chome"
)

// ProductType tags a catalog item as a sealed box or a bundled set.
type ProductType string

const (
	TypeBox ProductType = "BOX"
	TypeSet ProductType = "SET"
)

// CatalogItem is one known collectible the user wants priced. The catalog
// is supplied once per run by an external provider and never mutated.
type CatalogItem struct {
	// ID is the stable numeric identity of the item within the catalog.
	ID int `json:"id" yaml:"id"`

	// Name is the display name (Japanese product title).
	Name string `json:"name" yaml:"name"`

	// Series is the expansion or series label the item belongs to.
	Series string `json:"series" yaml:"series"`

	// Quantity is how many copies the user holds; reports multiply by it.
	Quantity int `json:"quantity" yaml:"quantity"`

	// Type tags the item as a box or set product.
	Type ProductType `json:"type" yaml:"type"`

	// Keywords lists search terms in priority order. The interactive
	// crawler tries them first to last and stops at the first that yields
	// results; the matcher scores every keyword.
	Keywords []string `json:"keywords" yaml:"keywords"`
}
