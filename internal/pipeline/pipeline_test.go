// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/price-scout/internal/crawl"
	"github.com/pdiddy/price-scout/pkg/types"
)

type fakeCrawler struct {
	source  types.Source
	harvest crawl.Harvest
	err     error
}

func (c *fakeCrawler) Source() types.Source { return c.source }

func (c *fakeCrawler) Crawl(context.Context, []types.CatalogItem) (crawl.Harvest, error) {
	return c.harvest, c.err
}

var testItems = []types.CatalogItem{
	{ID: 1, Name: "ポケモンカード クレイバースト BOX", Keywords: []string{"クレイバースト"}},
	{ID: 2, Name: "ポケモンカード VSTARユニバース BOX", Keywords: []string{"VSTARユニバース"}},
}

func product(source types.Source, name string, price int) types.Product {
	return types.Product{Source: source, Name: name, PriceLow: price}
}

func TestRunBothSources(t *testing.T) {
	fastbuy := &fakeCrawler{
		source: types.SourceFastbuy,
		harvest: crawl.Harvest{Flat: []types.Product{
			product(types.SourceFastbuy, "クレイバースト BOX シュリンク付き", 5000),
			product(types.SourceFastbuy, "VSTARユニバース BOX 新品", 8000),
		}},
	}
	onechome := &fakeCrawler{
		source: types.SourceOnechome,
		harvest: crawl.Harvest{ByItem: [][]types.Product{
			{product(types.SourceOnechome, "クレイバースト BOX", 7000)},
			{product(types.SourceOnechome, "VSTARユニバース BOX", 7500)},
		}},
	}

	p := New(0.5, nil, fastbuy, onechome)
	result, err := p.Run(context.Background(), testItems)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Empty(t, result.Failures)

	row := result.Rows[0]
	require.NotNil(t, row.Fastbuy)
	require.NotNil(t, row.Onechome)
	require.NotNil(t, row.PriceDiff)
	assert.Equal(t, 2000, *row.PriceDiff)
	assert.Equal(t, types.RecommendFastbuy, row.Recommendation)

	row = result.Rows[1]
	require.NotNil(t, row.PriceDiff)
	assert.Equal(t, -500, *row.PriceDiff)
	assert.Equal(t, types.RecommendOnechome, row.Recommendation)
}

func TestRunSingleSourceFailureDegrades(t *testing.T) {
	boom := errors.New("browser launch failed")
	fastbuy := &fakeCrawler{
		source: types.SourceFastbuy,
		harvest: crawl.Harvest{Flat: []types.Product{
			product(types.SourceFastbuy, "クレイバースト BOX", 5000),
		}},
	}
	onechome := &fakeCrawler{source: types.SourceOnechome, err: boom}

	p := New(0.5, nil, fastbuy, onechome)
	result, err := p.Run(context.Background(), testItems)
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, types.SourceOnechome, result.Failures[0].Source)
	assert.ErrorIs(t, result.Failures[0].Err, boom)

	require.Len(t, result.Rows, 2)
	assert.NotNil(t, result.Rows[0].Fastbuy)
	assert.Nil(t, result.Rows[0].Onechome)
	assert.Nil(t, result.Rows[0].PriceDiff)
}

func TestRunAllSourcesFailed(t *testing.T) {
	boom := errors.New("network down")
	p := New(0.5, nil,
		&fakeCrawler{source: types.SourceFastbuy, err: boom},
		&fakeCrawler{source: types.SourceOnechome, err: boom},
	)
	_, err := p.Run(context.Background(), testItems)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRunNoCandidatesIsNotAFailure(t *testing.T) {
	fastbuy := &fakeCrawler{
		source:  types.SourceFastbuy,
		harvest: crawl.Harvest{},
	}
	p := New(0.5, nil, fastbuy)
	result, err := p.Run(context.Background(), testItems)
	require.NoError(t, err)

	assert.Empty(t, result.Failures)
	require.Len(t, result.Rows, 2)
	assert.Nil(t, result.Rows[0].Fastbuy)
}

func TestRunRejectsWeakMatches(t *testing.T) {
	fastbuy := &fakeCrawler{
		source: types.SourceFastbuy,
		harvest: crawl.Harvest{Flat: []types.Product{
			product(types.SourceFastbuy, "遊戯王 青眼の白龍 スターターデッキ", 3000),
		}},
	}
	p := New(0.5, nil, fastbuy)
	result, err := p.Run(context.Background(), testItems)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Nil(t, result.Rows[0].Fastbuy)
	assert.Nil(t, result.Rows[1].Fastbuy)
}
