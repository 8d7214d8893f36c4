// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores candidate products against catalog items using a
// multi-signal fuzzy similarity over Japanese product names.
package match

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/price-scout/pkg/types"
)

// DefaultThreshold is the minimum score for a candidate to count as a match.
const DefaultThreshold = 0.5

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	delimiterRe  = regexp.MustCompile(`[【】\[\]「」（）()・×/]`)
)

// stopwords are generic filler terms that appear in many product names and
// cause false token hits.
var stopwords = map[string]struct{}{
	"box": {}, "ボックス": {}, "パック": {}, "セット": {}, "拡張": {}, "強化": {},
	"ポケモンカードゲーム": {}, "ポケモンカード": {}, "ポケモン": {},
	"スカーレット": {}, "バイオレット": {}, "ソード": {}, "シールド": {},
	"拡張パック": {}, "ハイクラスパック": {}, "強化拡張パック": {}, "ex": {}, "mega": {},
}

// normalize lowercases, folds the full-width ampersand and tilde to their
// ASCII forms, and collapses whitespace runs.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "＆", "&")
	s = strings.ReplaceAll(s, "～", "~")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// tokenize splits a normalized string on bracket and punctuation
// delimiters, dropping one-rune tokens and, when filterStop is set, the
// stopword terms.
func tokenize(s string, filterStop bool) map[string]struct{} {
	cleaned := delimiterRe.ReplaceAllString(s, " ")
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(t) <= 1 {
			continue
		}
		if filterStop {
			if _, ok := stopwords[t]; ok {
				continue
			}
		}
		tokens[t] = struct{}{}
	}
	return tokens
}

// lcsRatio is a character-sequence similarity in [0, 1]:
// 2×LCS(a,b) / (len(a)+len(b)) over runes.
func lcsRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return 2.0 * float64(prev[len(rb)]) / float64(len(ra)+len(rb))
}

// Score computes the similarity between a search keyword and a product
// name as the maximum of four signals: substring containment (0.95),
// reverse containment (0.90), LCS ratio, and stopword-filtered token hit
// rate. Deterministic; always in [0.0, 1.0].
func Score(keyword, name string) float64 {
	kw := normalize(keyword)
	pn := normalize(name)

	best := 0.0

	if strings.Contains(pn, kw) {
		best = 0.95
	}
	if strings.Contains(kw, pn) && 0.90 > best {
		best = 0.90
	}

	if r := lcsRatio(kw, pn); r > best {
		best = r
	}

	kwTokens := tokenize(kw, true)
	if len(kwTokens) > 0 {
		pnTokens := tokenize(pn, true)
		hits := 0
		for t := range kwTokens {
			if _, ok := pnTokens[t]; ok {
				hits++
			}
		}
		if rate := float64(hits) / float64(len(kwTokens)); rate > best {
			best = rate
		}
	}

	return best
}

// Best scores every (keyword, product) pair and returns the match with the
// maximum score. Ties keep the first pair encountered in keyword-major,
// product-minor order. When the best score is below threshold the result
// carries no product, but still names the best-scoring keyword.
func Best(item types.CatalogItem, products []types.Product, source types.Source, threshold float64) types.Match {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	bestScore := 0.0
	var bestProduct *types.Product
	var bestKeyword string

	for _, keyword := range item.Keywords {
		for i := range products {
			if score := Score(keyword, products[i].Name); score > bestScore {
				bestScore = score
				bestProduct = &products[i]
				bestKeyword = keyword
			}
		}
	}

	m := types.Match{
		Item:    item,
		Source:  source,
		Score:   bestScore,
		Keyword: bestKeyword,
	}
	if bestScore >= threshold && bestProduct != nil {
		p := *bestProduct
		m.Product = &p
	}
	return m
}
