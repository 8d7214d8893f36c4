// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/price-scout/internal/browser"
	"github.com/pdiddy/price-scout/internal/catalog"
	"github.com/pdiddy/price-scout/internal/crawl"
	"github.com/pdiddy/price-scout/internal/pipeline"
	"github.com/pdiddy/price-scout/internal/report"
	"github.com/pdiddy/price-scout/internal/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a full price comparison over the catalog",
	Long: `Scrape crawls the enabled sources, matches every catalog item against
the harvested listings, and writes a comparison report. Both sources run
by default; a source that fails is dropped from the comparison and the
run proceeds with what remains.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().String("catalog", "catalog.yaml", "catalog file listing the items to price")
	scrapeCmd.Flags().IntSlice("items", nil, "restrict the run to these catalog item IDs")
	scrapeCmd.Flags().Bool("fastbuy-only", false, "crawl only the paginated source")
	scrapeCmd.Flags().Bool("onechome-only", false, "crawl only the interactive source")
	scrapeCmd.Flags().String("output-dir", "reports", "directory for report files")
	scrapeCmd.Flags().Bool("json", false, "print the report as JSON instead of text")
	scrapeCmd.Flags().Bool("no-history", false, "skip recording the run to the price history")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	fastbuyOnly, _ := cmd.Flags().GetBool("fastbuy-only")
	onechomeOnly, _ := cmd.Flags().GetBool("onechome-only")
	if fastbuyOnly && onechomeOnly {
		return fmt.Errorf("--fastbuy-only and --onechome-only are mutually exclusive")
	}

	log := newLogger()
	defer log.Sync()

	catalogPath, _ := cmd.Flags().GetString("catalog")
	items, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	if ids, _ := cmd.Flags().GetIntSlice("items"); len(ids) > 0 {
		if items, err = catalog.FilterByIDs(items, ids); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()

	progress := func(p crawl.Progress) {
		fmt.Fprintf(os.Stderr, "[%s] %s %d/%d\n", p.Source, p.Stage, p.Current, p.Total)
	}

	var crawlers []crawl.Crawler
	if !onechomeOnly {
		fetcher := crawl.NewHTTPFetcher(cfg.Fastbuy)
		crawlers = append(crawlers, crawl.NewFastbuy(cfg.Fastbuy, fetcher, log, progress))
	}
	if !fastbuyOnly {
		pool := browser.NewPool(cfg.Onechome, log)
		if err := pool.Start(); err != nil {
			return fmt.Errorf("starting browser: %w", err)
		}
		defer pool.Close()
		crawlers = append(crawlers, crawl.NewOnechome(cfg.Onechome, pool.NewSession, log, progress))
	}

	result, err := pipeline.New(cfg.MatchThreshold, log, crawlers...).Run(ctx, items)
	if err != nil {
		return err
	}
	for _, f := range result.Failures {
		log.Warn("source skipped", zap.String("source", string(f.Source)), zap.Error(f.Err))
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		err = report.JSON(os.Stdout, result.Rows)
	} else {
		err = report.Text(os.Stdout, result.Rows)
	}
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	paths, err := report.Save(outputDir, result.Rows, time.Now())
	if err != nil {
		return fmt.Errorf("saving reports: %w", err)
	}
	for _, path := range paths {
		log.Info("report written", zap.String("path", path))
	}

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		s, err := store.NewStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("opening price history: %w", err)
		}
		defer s.Close()

		runID, err := s.SaveRun(ctx, result.Rows, result.Started, result.Duration)
		if err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
		log.Info("run recorded", zap.String("run_id", runID))
	}

	return nil
}
