// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Product is one listing observed on a source during a run. It has no
// identity beyond its fields.
type Product struct {
	// Source identifies which source the listing was extracted from.
	Source Source `json:"source" yaml:"source"`

	// Name is the raw extracted listing title.
	Name string `json:"name" yaml:"name"`

	// PriceLow is the listing price in yen, or the lower bound when the
	// listing is expressed as a range.
	PriceLow int `json:"price_low" yaml:"price_low"`

	// PriceHigh is the upper bound of a ranged listing; zero when the
	// listing carries a single price.
	PriceHigh int `json:"price_high,omitempty" yaml:"price_high,omitempty"`

	// URL is the listing page, when the source exposes one.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// ProductID is the source-native listing identifier, when present.
	ProductID string `json:"product_id,omitempty" yaml:"product_id,omitempty"`

	// JANCode is the 13-digit standardized product code, when present.
	JANCode string `json:"jan_code,omitempty" yaml:"jan_code,omitempty"`

	// Enhanced marks a promotional "買取強化" listing.
	Enhanced bool `json:"enhanced,omitempty" yaml:"enhanced,omitempty"`

	// Condition is the listing condition label (新品/中古), when present.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`

	// Variant is an optional variant label (e.g. shrink-wrapped).
	Variant string `json:"variant,omitempty" yaml:"variant,omitempty"`
}

// HasRange reports whether the listing price was expressed as a range.
func (p Product) HasRange() bool { return p.PriceHigh > 0 }

// Match binds a catalog item to at most one product for one source.
// Product is nil whenever Score is below the acceptance threshold, even if
// a best candidate existed; Keyword still names the keyword that produced
// the best score, for diagnostics.
type Match struct {
	Item    CatalogItem `json:"item" yaml:"item"`
	Source  Source      `json:"source" yaml:"source"`
	Product *Product    `json:"product,omitempty" yaml:"product,omitempty"`

	// Score is the best similarity found across all (keyword, product)
	// pairs, in [0.0, 1.0].
	Score float64 `json:"score" yaml:"score"`

	// Keyword is the search keyword that produced Score; empty when no
	// pair scored above zero.
	Keyword string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
}

// Recommendation names the cheaper source for an item, or "equal".
type Recommendation string

const (
	RecommendFastbuy  Recommendation = Recommendation(SourceFastbuy)
	RecommendOnechome Recommendation = Recommendation(SourceOnechome)
	RecommendEqual    Recommendation = "equal"
)

// ComparisonRow is the per-item output of a run: both source matches (each
// may be nil), and the price delta and recommendation when both sources
// produced an accepted match.
type ComparisonRow struct {
	Item     CatalogItem `json:"item" yaml:"item"`
	Fastbuy  *Match      `json:"fastbuy,omitempty" yaml:"fastbuy,omitempty"`
	Onechome *Match      `json:"onechome,omitempty" yaml:"onechome,omitempty"`

	// PriceDiff is onechome's representative price minus fastbuy's; nil
	// unless both sources matched.
	PriceDiff *int `json:"price_diff,omitempty" yaml:"price_diff,omitempty"`

	// Recommendation is set iff PriceDiff is.
	Recommendation Recommendation `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}
