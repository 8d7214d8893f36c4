// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/price-scout/internal/extract"
	"github.com/pdiddy/price-scout/pkg/types"
)

// Session is one interactive browser session against the search source:
// submit a keyword, wait for the rendered results, return the card texts.
// A timeout waiting for the first result card reports no texts, not an
// error. The production implementation lives in internal/browser.
type Session interface {
	Search(ctx context.Context, keyword string) ([]string, error)
	Close() error
}

// SessionFactory opens a new session navigated to the storefront.
type SessionFactory func(ctx context.Context) (Session, error)

// Onechome resolves each catalog item with a live search against a pool
// of interactive sessions.
type Onechome struct {
	cfg        types.OnechomeConfig
	newSession SessionFactory
	log        *zap.Logger
	observe    ProgressFunc
}

// NewOnechome builds the interactive-session crawler.
func NewOnechome(cfg types.OnechomeConfig, factory SessionFactory, log *zap.Logger, observe ProgressFunc) *Onechome {
	if log == nil {
		log = zap.NewNop()
	}
	return &Onechome{cfg: cfg, newSession: factory, log: log, observe: observe}
}

// Source identifies the crawler.
func (c *Onechome) Source() types.Source { return types.SourceOnechome }

// Crawl partitions the catalog round-robin across K sessions (K capped at
// the catalog size). Each session works its partition strictly
// sequentially; results land in a per-item slice indexed by the item's
// original position, so catalog order is reconstructed exactly no matter
// how the sessions interleave. Any session's unrecoverable error is fatal
// for the whole crawl, mirroring the paginated no-partial-result policy.
func (c *Onechome) Crawl(ctx context.Context, items []types.CatalogItem) (Harvest, error) {
	if len(items) == 0 {
		return Harvest{ByItem: [][]types.Product{}}, nil
	}

	k := c.cfg.Sessions
	if k <= 0 {
		k = 1
	}
	if k > len(items) {
		k = len(items)
	}

	// Item index modulo K; each index is owned by exactly one session, so
	// byItem needs no locking during the parallel phase.
	partitions := make([][]int, k)
	for i := range items {
		partitions[i%k] = append(partitions[i%k], i)
	}

	byItem := make([][]types.Product, len(items))
	errs := make(chan error, k)
	var processed atomic.Int64
	var wg sync.WaitGroup

	for s := 0; s < k; s++ {
		wg.Add(1)
		go func(s int, part []int) {
			defer wg.Done()

			sess, err := Retry(ctx, c.cfg.Retry, func(ctx context.Context) (Session, error) {
				return c.newSession(ctx)
			})
			if err != nil {
				errs <- fmt.Errorf("session %d: %w", s, err)
				return
			}
			defer sess.Close()

			for _, idx := range part {
				byItem[idx] = c.searchItem(ctx, sess, items[idx])

				n := int(processed.Add(1))
				c.log.Info("item processed",
					zap.String("source", string(types.SourceOnechome)),
					zap.Int("item", n),
					zap.Int("total", len(items)),
					zap.Int("item_id", items[idx].ID),
					zap.Int("products", len(byItem[idx])))
				c.observe.emit(Progress{Source: types.SourceOnechome, Stage: "item", Current: n, Total: len(items)})

				if err := c.pace(ctx); err != nil {
					errs <- fmt.Errorf("session %d: %w", s, err)
					return
				}
			}
		}(s, partitions[s])
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return Harvest{}, fmt.Errorf("1chome: %w", err)
		}
	}

	return Harvest{ByItem: byItem}, nil
}

// searchItem tries the item's keywords in declared order and returns the
// records of the first keyword that yields any. A keyword whose search
// interaction fails is logged and skipped, not retried; an item whose
// keywords all fail or come up empty resolves to no candidates, which the
// matcher turns into a zero-confidence result.
func (c *Onechome) searchItem(ctx context.Context, sess Session, item types.CatalogItem) []types.Product {
	for _, keyword := range item.Keywords {
		texts, err := sess.Search(ctx, keyword)
		if err != nil {
			c.log.Warn("search failed",
				zap.Int("item_id", item.ID),
				zap.String("keyword", keyword),
				zap.Error(err))
			continue
		}
		if products := extract.OnechomeCards(texts); len(products) > 0 {
			return products
		}
	}
	return nil
}

// pace sleeps a random delay within the configured bounds before the
// session moves to its next item.
func (c *Onechome) pace(ctx context.Context) error {
	span := c.cfg.DelayMax - c.cfg.DelayMin
	delay := c.cfg.DelayMin
	if span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
