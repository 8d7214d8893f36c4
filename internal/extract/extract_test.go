// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/price-scout/pkg/types"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		low  int
		high int
		ok   bool
	}{
		{"prefixed range", "¥5,900 ~ ¥7,000", 5900, 7000, true},
		{"fullwidth prefix", "￥11,000", 11000, 0, true},
		{"suffixed single", "5,900円", 5900, 0, true},
		{"suffixed range", "5,900 ~ 7,000円", 5900, 7000, true},
		{"fullwidth tilde", "¥5,900～7,000", 5900, 7000, true},
		{"bare number rejected", "2024", 0, 0, false},
		{"year in title not matched", "ポケモンカード 2024 スペシャル", 0, 0, false},
		{"first match wins", "¥1,000 のち ¥9,999", 1000, 0, true},
		{"no price", "カートに入れる", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, high, ok := ParsePrice(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.low, low)
			assert.Equal(t, tt.high, high)
		})
	}
}

const fastbuyPage = `<html><body>
<a href="/index/index/goodsdetail?id=123">
  <span>強化</span>
  <div>【SV2D】クレイバースト 1BOX シュリンク付き</div>
  <div>5,900 ~ 7,000円</div>
</a>
<a href="/index/index/goodsdetail?id=456">
  <div>【SV4a】シャイニートレジャーex BOX</div>
  <div>¥8,800</div>
</a>
<a href="/index/index/goodsdetail?id=789">
  <div>色</div>
</a>
<a href="/other/link">ナビゲーション リンクテキスト</a>
</body></html>`

func TestFastbuyPage(t *testing.T) {
	products, err := FastbuyPage(fastbuyPage)
	require.NoError(t, err)
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, types.SourceFastbuy, first.Source)
	assert.Equal(t, "【SV2D】クレイバースト 1BOX シュリンク付き", first.Name)
	assert.Equal(t, 5900, first.PriceLow)
	assert.Equal(t, 7000, first.PriceHigh)
	assert.Equal(t, "https://fastbuy.jp/index/index/goodsdetail?id=123", first.URL)
	assert.Equal(t, "123", first.ProductID)
	assert.True(t, first.Enhanced)

	second := products[1]
	assert.Equal(t, 8800, second.PriceLow)
	assert.Zero(t, second.PriceHigh)
	assert.False(t, second.Enhanced)
}

func TestFastbuyPageEmpty(t *testing.T) {
	products, err := FastbuyPage("<html><body><p>メンテナンス中</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestOnechomeCards(t *testing.T) {
	cards := []string{
		"【S＆V】クレイバースト BOX\nJAN: 4521329346182\nポケモンカード\n※シュリンク付き、新品未開封\n新品\n¥11,000\nカートに入れる",
		// No price: dropped.
		"【SV4a】シャイニートレジャーex BOX\nカートに入れる",
		// No title (every line is control text or too short): dropped.
		"JAN: 4521329346183\n¥500\nカート",
		// Length-heuristic title, used condition.
		"ナンジャモ スペシャルセット 未開封\n中古\n¥4,300",
	}

	products := OnechomeCards(cards)
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, types.SourceOnechome, first.Source)
	assert.Equal(t, "【S＆V】クレイバースト BOX", first.Name)
	assert.Equal(t, 11000, first.PriceLow)
	assert.Zero(t, first.PriceHigh)
	assert.Equal(t, "4521329346182", first.JANCode)
	assert.Equal(t, "新品", first.Condition)

	second := products[1]
	assert.Equal(t, "ナンジャモ スペシャルセット 未開封", second.Name)
	assert.Equal(t, 4300, second.PriceLow)
	assert.Equal(t, "中古", second.Condition)
}

func TestOnechomeCardBracketPriority(t *testing.T) {
	// A short bracketed line beats a longer plain line that comes later.
	products := OnechomeCards([]string{"【SV】BOX\nとても長い商品説明のテキストです\n¥1,000"})
	require.Len(t, products, 1)
	assert.Equal(t, "【SV】BOX", products[0].Name)
}
