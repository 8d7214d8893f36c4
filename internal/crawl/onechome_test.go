// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/price-scout/pkg/types"
)

// fakeSession resolves searches from a keyword→card-texts table, with an
// optional per-call delay to shake up session interleaving.
type fakeSession struct {
	results map[string][]string
	errs    map[string]error
	delay   time.Duration
	mu      sync.Mutex
	calls   []string
	closed  bool
}

func (s *fakeSession) Search(_ context.Context, keyword string) ([]string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, keyword)
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(s.delay))))
	}
	if err, ok := s.errs[keyword]; ok {
		return nil, err
	}
	return s.results[keyword], nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func yen(n int) string {
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

func cardText(name string, price int) string {
	return fmt.Sprintf("%s\n新品\n¥%s\nカートに入れる", name, yen(price))
}

func testItems(n int) []types.CatalogItem {
	items := make([]types.CatalogItem, n)
	for i := range items {
		items[i] = types.CatalogItem{
			ID:       i + 1,
			Name:     fmt.Sprintf("ポケモンカード 拡張パック 第%d弾 BOX", i+1),
			Keywords: []string{fmt.Sprintf("第%d弾", i+1)},
		}
	}
	return items
}

func onechomeTestConfig(sessions int) types.OnechomeConfig {
	return types.OnechomeConfig{
		Sessions: sessions,
		Retry:    types.RetryConfig{MaxAttempts: 2, BackoffBase: 2.0},
	}
}

func TestOnechomeCrawlReassemblesCatalogOrder(t *testing.T) {
	const n = 17
	items := testItems(n)

	results := make(map[string][]string, n)
	for i := range items {
		results[items[i].Keywords[0]] = []string{cardText(items[i].Name, 1000*(i+1))}
	}

	var opened atomic.Int64
	factory := func(context.Context) (Session, error) {
		opened.Add(1)
		return &fakeSession{results: results, delay: 2 * time.Millisecond}, nil
	}

	c := NewOnechome(onechomeTestConfig(4), factory, nil, nil)
	h, err := c.Crawl(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, h.ByItem, n)
	assert.Equal(t, int64(4), opened.Load())

	// Output index i holds the results for catalog item i, no matter how
	// the sessions interleaved.
	for i := range items {
		require.Len(t, h.ByItem[i], 1, "item %d", i)
		assert.Equal(t, items[i].Name, h.ByItem[i][0].Name)
		assert.Equal(t, 1000*(i+1), h.ByItem[i][0].PriceLow)
		assert.Equal(t, types.SourceOnechome, h.ByItem[i][0].Source)
	}
}

func TestOnechomeCrawlCapsSessionsAtCatalogSize(t *testing.T) {
	items := testItems(2)
	results := map[string][]string{
		items[0].Keywords[0]: {cardText(items[0].Name, 100)},
		items[1].Keywords[0]: {cardText(items[1].Name, 200)},
	}

	var opened atomic.Int64
	factory := func(context.Context) (Session, error) {
		opened.Add(1)
		return &fakeSession{results: results}, nil
	}

	c := NewOnechome(onechomeTestConfig(6), factory, nil, nil)
	h, err := c.Crawl(context.Background(), items)
	require.NoError(t, err)
	assert.Len(t, h.ByItem, 2)
	assert.Equal(t, int64(2), opened.Load())
}

func TestOnechomeCrawlKeywordShortCircuit(t *testing.T) {
	item := types.CatalogItem{
		ID:       1,
		Name:     "ポケモンカード 拡張パック BOX",
		Keywords: []string{"first", "second", "third"},
	}
	sess := &fakeSession{results: map[string][]string{
		"second": {cardText(item.Name, 5000)},
		"third":  {cardText(item.Name, 9999)},
	}}
	factory := func(context.Context) (Session, error) { return sess, nil }

	c := NewOnechome(onechomeTestConfig(1), factory, nil, nil)
	h, err := c.Crawl(context.Background(), []types.CatalogItem{item})
	require.NoError(t, err)
	require.Len(t, h.ByItem[0], 1)
	assert.Equal(t, 5000, h.ByItem[0][0].PriceLow)

	// "third" was never searched: the first keyword with results wins.
	assert.Equal(t, []string{"first", "second"}, sess.calls)
}

func TestOnechomeCrawlKeywordFailureSkipped(t *testing.T) {
	item := types.CatalogItem{
		ID:       1,
		Name:     "ポケモンカード 拡張パック BOX",
		Keywords: []string{"broken", "working"},
	}
	sess := &fakeSession{
		results: map[string][]string{"working": {cardText(item.Name, 3000)}},
		errs:    map[string]error{"broken": errors.New("stale element")},
	}
	factory := func(context.Context) (Session, error) { return sess, nil }

	c := NewOnechome(onechomeTestConfig(1), factory, nil, nil)
	h, err := c.Crawl(context.Background(), []types.CatalogItem{item})
	require.NoError(t, err)
	require.Len(t, h.ByItem[0], 1)
	assert.Equal(t, 3000, h.ByItem[0][0].PriceLow)

	// The failed keyword was tried once, not retried.
	assert.Equal(t, []string{"broken", "working"}, sess.calls)
}

func TestOnechomeCrawlItemWithNoResults(t *testing.T) {
	items := testItems(1)
	sess := &fakeSession{results: map[string][]string{}}
	factory := func(context.Context) (Session, error) { return sess, nil }

	c := NewOnechome(onechomeTestConfig(1), factory, nil, nil)
	h, err := c.Crawl(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, h.ByItem, 1)
	assert.Empty(t, h.ByItem[0])
}

func TestOnechomeCrawlSessionFailureIsFatal(t *testing.T) {
	boom := errors.New("browser launch failed")
	var attempts atomic.Int64
	factory := func(context.Context) (Session, error) {
		attempts.Add(1)
		return nil, boom
	}

	cfg := onechomeTestConfig(1)
	c := NewOnechome(cfg, factory, nil, nil)
	h, err := c.Crawl(context.Background(), testItems(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, h.ByItem)

	// Session creation goes through the retry wrapper.
	assert.Equal(t, int64(cfg.Retry.MaxAttempts), attempts.Load())
}

func TestOnechomeCrawlClosesSessions(t *testing.T) {
	items := testItems(3)
	results := make(map[string][]string)
	for _, it := range items {
		results[it.Keywords[0]] = []string{cardText(it.Name, 100)}
	}

	var sessions []*fakeSession
	var mu sync.Mutex
	factory := func(context.Context) (Session, error) {
		s := &fakeSession{results: results}
		mu.Lock()
		sessions = append(sessions, s)
		mu.Unlock()
		return s, nil
	}

	c := NewOnechome(onechomeTestConfig(2), factory, nil, nil)
	_, err := c.Crawl(context.Background(), items)
	require.NoError(t, err)

	require.Len(t, sessions, 2)
	for _, s := range sessions {
		assert.True(t, s.closed)
	}
}

func TestOnechomeCrawlEmptyCatalog(t *testing.T) {
	c := NewOnechome(onechomeTestConfig(6), nil, nil, nil)
	h, err := c.Crawl(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, h.ByItem)
}

func TestOnechomeCrawlEmitsProgress(t *testing.T) {
	items := testItems(4)
	results := make(map[string][]string)
	for _, it := range items {
		results[it.Keywords[0]] = []string{cardText(it.Name, 100)}
	}
	factory := func(context.Context) (Session, error) {
		return &fakeSession{results: results}, nil
	}

	var mu sync.Mutex
	var events []Progress
	c := NewOnechome(onechomeTestConfig(2), factory, nil, func(p Progress) {
		mu.Lock()
		events = append(events, p)
		mu.Unlock()
	})
	_, err := c.Crawl(context.Background(), items)
	require.NoError(t, err)

	require.Len(t, events, 4)
	seen := make(map[int]bool)
	for _, e := range events {
		assert.Equal(t, types.SourceOnechome, e.Source)
		assert.Equal(t, "item", e.Stage)
		assert.Equal(t, 4, e.Total)
		seen[e.Current] = true
	}
	assert.Len(t, seen, 4)
}
