// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads the item catalog a run prices. The catalog is a
// YAML file supplied by the user; it is validated once on load and
// treated as immutable afterwards.
package catalog

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/price-scout/pkg/types"
)

// file is the on-disk catalog shape.
type file struct {
	Items []types.CatalogItem `yaml:"items"`
}

// Load reads and validates the catalog at path.
func Load(path string) ([]types.CatalogItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := Validate(f.Items); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return f.Items, nil
}

// Validate checks the catalog invariants: at least one item, unique
// positive IDs, a name and at least one keyword per item.
func Validate(items []types.CatalogItem) error {
	if len(items) == 0 {
		return fmt.Errorf("catalog has no items")
	}
	seen := make(map[int]bool, len(items))
	for i, item := range items {
		if item.ID <= 0 {
			return fmt.Errorf("item %d: non-positive id %d", i, item.ID)
		}
		if seen[item.ID] {
			return fmt.Errorf("duplicate item id %d", item.ID)
		}
		seen[item.ID] = true
		if item.Name == "" {
			return fmt.Errorf("item %d: missing name", item.ID)
		}
		if len(item.Keywords) == 0 {
			return fmt.Errorf("item %d: no keywords", item.ID)
		}
		for _, kw := range item.Keywords {
			if kw == "" {
				return fmt.Errorf("item %d: empty keyword", item.ID)
			}
		}
	}
	return nil
}

// FilterByIDs keeps only the items whose ID appears in ids, preserving
// catalog order. An id with no matching item is an error.
func FilterByIDs(items []types.CatalogItem, ids []int) ([]types.CatalogItem, error) {
	if len(ids) == 0 {
		return items, nil
	}

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var out []types.CatalogItem
	for _, item := range items {
		if wanted[item.ID] {
			out = append(out, item)
			delete(wanted, item.ID)
		}
	}
	if len(wanted) > 0 {
		for id := range wanted {
			return nil, fmt.Errorf("unknown item id %d", id)
		}
	}
	return out, nil
}
