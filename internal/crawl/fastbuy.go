// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/price-scout/internal/extract"
	"github.com/pdiddy/price-scout/pkg/types"
)

// Fetcher retrieves one listing page body. The production implementation
// is HTTPFetcher; tests substitute a fake.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages with a rotating User-Agent and the fixed
// ja-locale headers.
type HTTPFetcher struct {
	client *http.Client
	cfg    types.FastbuyConfig
}

// NewHTTPFetcher builds the production fetcher for the paginated source.
func NewHTTPFetcher(cfg types.FastbuyConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// Fetch retrieves url and returns the body. Any non-200 status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if n := len(f.cfg.UserAgents); n > 0 {
		req.Header.Set("User-Agent", f.cfg.UserAgents[rand.Intn(n)])
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if f.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", f.cfg.AcceptLanguage)
	}
	if f.cfg.Referer != "" {
		req.Header.Set("Referer", f.cfg.Referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(body), nil
}

// Fastbuy crawls the fixed set of category pages of the paginated source
// and unions their extracted records.
type Fastbuy struct {
	cfg     types.FastbuyConfig
	fetcher Fetcher
	log     *zap.Logger
	observe ProgressFunc
}

// NewFastbuy builds the paginated-document crawler.
func NewFastbuy(cfg types.FastbuyConfig, fetcher Fetcher, log *zap.Logger, observe ProgressFunc) *Fastbuy {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fastbuy{cfg: cfg, fetcher: fetcher, log: log, observe: observe}
}

// Source identifies the crawler.
func (c *Fastbuy) Source() types.Source { return types.SourceFastbuy }

// PageURL builds the listing URL for a 1-based page number.
func (c *Fastbuy) PageURL(page int) string {
	if page == 1 {
		return fmt.Sprintf("%s?id=%d", c.cfg.BaseURL, c.cfg.CategoryID)
	}
	return fmt.Sprintf("%s?hide_next=1&id=%d&page=%d", c.cfg.BaseURL, c.cfg.CategoryID, page)
}

// Crawl fetches every page concurrently, each start staggered by
// (page-1)×Stagger so the requests do not land as one burst. Page order
// does not matter: the outputs are unioned. Any page that still fails
// after retries is fatal for the whole crawl; a silent gap would bias the
// comparison.
func (c *Fastbuy) Crawl(ctx context.Context, _ []types.CatalogItem) (Harvest, error) {
	pages := c.cfg.Pages
	if pages <= 0 {
		return Harvest{}, fmt.Errorf("fastbuy: no pages configured")
	}

	type pageResult struct {
		page     int
		products []types.Product
		err      error
	}

	ch := make(chan pageResult, pages)
	var wg sync.WaitGroup

	for page := 1; page <= pages; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()

			if offset := time.Duration(page-1) * c.cfg.Stagger; offset > 0 {
				select {
				case <-ctx.Done():
					ch <- pageResult{page: page, err: ctx.Err()}
					return
				case <-time.After(offset):
				}
			}

			url := c.PageURL(page)
			body, err := Retry(ctx, c.cfg.Retry, func(ctx context.Context) (string, error) {
				return c.fetcher.Fetch(ctx, url)
			})
			if err != nil {
				ch <- pageResult{page: page, err: fmt.Errorf("page %d: %w", page, err)}
				return
			}

			products, err := extract.FastbuyPage(body)
			if err != nil {
				ch <- pageResult{page: page, err: fmt.Errorf("page %d: parsing: %w", page, err)}
				return
			}

			c.log.Info("page fetched",
				zap.String("source", string(types.SourceFastbuy)),
				zap.Int("page", page),
				zap.Int("total", pages),
				zap.Int("products", len(products)))
			c.observe.emit(Progress{Source: types.SourceFastbuy, Stage: "page", Current: page, Total: pages})

			ch <- pageResult{page: page, products: products}
		}(page)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.Product
	var firstErr error
	for r := range ch {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		all = append(all, r.products...)
	}
	if firstErr != nil {
		return Harvest{}, fmt.Errorf("fastbuy: %w", firstErr)
	}

	c.log.Info("crawl complete",
		zap.String("source", string(types.SourceFastbuy)),
		zap.Int("products", len(all)))
	return Harvest{Flat: all}, nil
}
