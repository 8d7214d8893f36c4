// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one pricing run: crawl the requested
// sources in parallel, match every catalog item against each source's
// harvest, and reconcile the matches into comparison rows.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/price-scout/internal/compare"
	"github.com/pdiddy/price-scout/internal/crawl"
	"github.com/pdiddy/price-scout/internal/match"
	"github.com/pdiddy/price-scout/pkg/types"
)

// SourceFailure records one source that produced no data this run.
type SourceFailure struct {
	Source types.Source
	Err    error
}

// Result is the outcome of a run. Rows always covers the full catalog;
// items a failed source would have priced simply carry no match for it.
// Failures lets callers distinguish "source down" from "source found
// nothing".
type Result struct {
	Rows     []types.ComparisonRow
	Failures []SourceFailure
	Started  time.Time
	Duration time.Duration
}

// Pipeline runs the crawl → match → reconcile sequence over a fixed set
// of crawlers.
type Pipeline struct {
	crawlers  []crawl.Crawler
	threshold float64
	log       *zap.Logger
}

// New builds a pipeline over the given crawlers.
func New(threshold float64, log *zap.Logger, crawlers ...crawl.Crawler) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{crawlers: crawlers, threshold: threshold, log: log}
}

// Run executes one pricing run over items. The crawlers run in
// parallel; a source that fails is dropped from the comparison and
// reported in Result.Failures. Run itself errors only when every
// source fails, since a run with no data at all has nothing to report.
func (p *Pipeline) Run(ctx context.Context, items []types.CatalogItem) (Result, error) {
	started := time.Now()

	type crawlOutcome struct {
		source  types.Source
		harvest crawl.Harvest
		err     error
	}

	ch := make(chan crawlOutcome, len(p.crawlers))
	var wg sync.WaitGroup
	for _, c := range p.crawlers {
		wg.Add(1)
		go func(c crawl.Crawler) {
			defer wg.Done()
			h, err := c.Crawl(ctx, items)
			ch <- crawlOutcome{source: c.Source(), harvest: h, err: err}
		}(c)
	}
	wg.Wait()
	close(ch)

	matches := make(map[types.Source][]types.Match, len(p.crawlers))
	var failures []SourceFailure
	for out := range ch {
		if out.err != nil {
			p.log.Error("source failed",
				zap.String("source", string(out.source)),
				zap.Error(out.err))
			failures = append(failures, SourceFailure{Source: out.source, Err: out.err})
			continue
		}
		matches[out.source] = p.matchAll(items, out.harvest, out.source)
	}

	if len(p.crawlers) > 0 && len(failures) == len(p.crawlers) {
		return Result{}, fmt.Errorf("all sources failed: %w", failures[0].Err)
	}

	result := Result{
		Rows:     compare.Reconcile(items, matches),
		Failures: failures,
		Started:  started,
		Duration: time.Since(started),
	}
	p.log.Info("run complete",
		zap.Int("items", len(items)),
		zap.Int("sources_failed", len(failures)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// matchAll resolves every catalog item against its candidate products
// from one source's harvest.
func (p *Pipeline) matchAll(items []types.CatalogItem, h crawl.Harvest, source types.Source) []types.Match {
	matches := make([]types.Match, len(items))
	for i, item := range items {
		matches[i] = match.Best(item, h.For(i), source, p.threshold)
		if matches[i].Product == nil {
			p.log.Debug("no match",
				zap.String("source", string(source)),
				zap.Int("item_id", item.ID),
				zap.Float64("best_score", matches[i].Score))
		}
	}
	return matches
}
