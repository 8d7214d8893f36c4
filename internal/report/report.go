// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a run's comparison rows as text, CSV, or JSON
// and writes timestamped report files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pdiddy/price-scout/internal/compare"
	"github.com/pdiddy/price-scout/pkg/types"
)

// Text writes a human-readable comparison table followed by per-source
// totals. Totals weight each item's representative price by the held
// quantity; items a source did not match contribute nothing to its
// total.
func Text(w io.Writer, rows []types.ComparisonRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tQTY\tFASTBUY\tONECHOME\tDIFF\tBUY AT")

	var fastbuyTotal, onechomeTotal int
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
			row.Item.ID,
			row.Item.Name,
			row.Item.Quantity,
			matchPrice(row.Fastbuy),
			matchPrice(row.Onechome),
			diffString(row.PriceDiff),
			string(row.Recommendation),
		)
		qty := max(row.Item.Quantity, 1)
		if row.Fastbuy != nil {
			fastbuyTotal += compare.Representative(*row.Fastbuy.Product) * qty
		}
		if row.Onechome != nil {
			onechomeTotal += compare.Representative(*row.Onechome.Product) * qty
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nfastbuy total: ¥%s\n", yen(fastbuyTotal))
	fmt.Fprintf(w, "1chome total:  ¥%s\n", yen(onechomeTotal))
	return nil
}

func matchPrice(m *types.Match) string {
	if m == nil {
		return "-"
	}
	p := m.Product
	if p.HasRange() {
		return fmt.Sprintf("¥%s~¥%s", yen(p.PriceLow), yen(p.PriceHigh))
	}
	return "¥" + yen(p.PriceLow)
}

func diffString(diff *int) string {
	if diff == nil {
		return "-"
	}
	if *diff >= 0 {
		return "+¥" + yen(*diff)
	}
	return "-¥" + yen(-*diff)
}

// yen formats n with thousands separators.
func yen(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var csvHeader = []string{
	"item_id", "item_name", "series", "quantity",
	"fastbuy_price", "fastbuy_score",
	"onechome_price", "onechome_score",
	"price_diff", "recommendation",
}

// CSV writes one record per comparison row. Unmatched sources leave
// their columns empty.
func CSV(w io.Writer, rows []types.ComparisonRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Item.ID),
			row.Item.Name,
			row.Item.Series,
			strconv.Itoa(row.Item.Quantity),
			"", "", "", "", "",
			string(row.Recommendation),
		}
		if row.Fastbuy != nil {
			record[4] = strconv.Itoa(compare.Representative(*row.Fastbuy.Product))
			record[5] = strconv.FormatFloat(row.Fastbuy.Score, 'f', 2, 64)
		}
		if row.Onechome != nil {
			record[6] = strconv.Itoa(compare.Representative(*row.Onechome.Product))
			record[7] = strconv.FormatFloat(row.Onechome.Score, 'f', 2, 64)
		}
		if row.PriceDiff != nil {
			record[8] = strconv.Itoa(*row.PriceDiff)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSON writes the rows with a generation timestamp.
func JSON(w io.Writer, rows []types.ComparisonRow) error {
	doc := struct {
		GeneratedAt time.Time             `json:"generated_at"`
		Rows        []types.ComparisonRow `json:"rows"`
	}{
		GeneratedAt: time.Now().UTC(),
		Rows:        rows,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Save renders all three formats into dir with a shared timestamp in
// the filenames and returns the written paths.
func Save(dir string, rows []types.ComparisonRow, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	stamp := now.Format("20060102_150405")
	renderers := []struct {
		ext    string
		render func(io.Writer, []types.ComparisonRow) error
	}{
		{"txt", Text},
		{"csv", CSV},
		{"json", JSON},
	}

	var paths []string
	for _, r := range renderers {
		path := filepath.Join(dir, fmt.Sprintf("comparison_%s.%s", stamp, r.ext))
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating report file: %w", err)
		}
		if err := r.render(f, rows); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing %s report: %w", r.ext, err)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
