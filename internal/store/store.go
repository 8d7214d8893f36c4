// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists run results to a SQLite price history, so
// price movement for an item can be tracked across runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/price-scout/internal/compare"
	"github.com/pdiddy/price-scout/pkg/types"
)

const dbFile = "pricescout.db"

// Store manages the price history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database under cfg.Dir,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			item_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS observations (
			run_id TEXT NOT NULL REFERENCES runs(id),
			item_id INTEGER NOT NULL,
			item_name TEXT NOT NULL,
			source TEXT NOT NULL,
			product_name TEXT NOT NULL,
			price_low INTEGER NOT NULL,
			price_high INTEGER NOT NULL,
			representative INTEGER NOT NULL,
			score REAL NOT NULL,
			keyword TEXT,
			PRIMARY KEY (run_id, item_id, source)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_observations_item ON observations(item_id)`,
		`CREATE TABLE IF NOT EXISTS comparisons (
			run_id TEXT NOT NULL REFERENCES runs(id),
			item_id INTEGER NOT NULL,
			price_diff INTEGER NOT NULL,
			recommendation TEXT NOT NULL,
			PRIMARY KEY (run_id, item_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun persists one run's comparison rows and returns the run ID.
func (s *Store) SaveRun(ctx context.Context, rows []types.ComparisonRow, started time.Time, duration time.Duration) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started, duration_ms, item_count) VALUES (?, ?, ?, ?)`,
		runID, started.UTC().Format(time.RFC3339Nano), duration.Milliseconds(), len(rows),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	obsStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO observations (run_id, item_id, item_name, source, product_name,
			price_low, price_high, representative, score, keyword)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing observation insert: %w", err)
	}
	defer obsStmt.Close()

	for _, row := range rows {
		for _, m := range []*types.Match{row.Fastbuy, row.Onechome} {
			if m == nil || m.Product == nil {
				continue
			}
			_, err := obsStmt.ExecContext(ctx,
				runID, row.Item.ID, row.Item.Name, string(m.Source), m.Product.Name,
				m.Product.PriceLow, m.Product.PriceHigh,
				compare.Representative(*m.Product), m.Score, m.Keyword,
			)
			if err != nil {
				return "", fmt.Errorf("inserting observation for item %d: %w", row.Item.ID, err)
			}
		}

		if row.PriceDiff != nil {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO comparisons (run_id, item_id, price_diff, recommendation) VALUES (?, ?, ?, ?)`,
				runID, row.Item.ID, *row.PriceDiff, string(row.Recommendation),
			)
			if err != nil {
				return "", fmt.Errorf("inserting comparison for item %d: %w", row.Item.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RunInfo summarizes one persisted run.
type RunInfo struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Items    int
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started, duration_ms, item_count FROM runs ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		var started string
		var durationMS int64
		if err := rows.Scan(&r.ID, &started, &durationMS, &r.Items); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing run timestamp: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Observation is one matched price recorded for an item in a run.
type Observation struct {
	RunID          string
	Observed       time.Time
	ItemID         int
	ItemName       string
	Source         types.Source
	ProductName    string
	PriceLow       int
	PriceHigh      int
	Representative int
	Score          float64
	Keyword        string
}

// ItemHistory returns every recorded observation for an item, newest
// run first.
func (s *Store) ItemHistory(ctx context.Context, itemID int) ([]Observation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT o.run_id, r.started, o.item_id, o.item_name, o.source, o.product_name,
			o.price_low, o.price_high, o.representative, o.score, o.keyword
		 FROM observations o JOIN runs r ON r.id = o.run_id
		 WHERE o.item_id = ?
		 ORDER BY r.started DESC, o.source`, itemID)
	if err != nil {
		return nil, fmt.Errorf("querying item history: %w", err)
	}
	defer rows.Close()

	var history []Observation
	for rows.Next() {
		var o Observation
		var started, source string
		if err := rows.Scan(&o.RunID, &started, &o.ItemID, &o.ItemName, &source,
			&o.ProductName, &o.PriceLow, &o.PriceHigh, &o.Representative, &o.Score, &o.Keyword); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		if o.Observed, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing observation timestamp: %w", err)
		}
		o.Source = types.Source(source)
		history = append(history, o)
	}
	return history, rows.Err()
}
