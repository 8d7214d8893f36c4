// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/price-scout/pkg/types"
)

var janRe = regexp.MustCompile(`JAN[:\s]*(\d{13})`)

// OnechomeCards parses the rendered inner text of result cards, one string
// per card, as handed over by an interactive session. Cards that yield no
// title or price are skipped.
//
// Expected card shape:
//
//	【S＆V】クレイバースト BOX
//	JAN: 4521329346182
//	ポケモンカード
//	※シュリンク付き、新品未開封
//	新品
//	¥11,000
//	カートに入れる
func OnechomeCards(cardTexts []string) []types.Product {
	var products []types.Product
	for _, text := range cardTexts {
		if p, ok := onechomeCard(text); ok {
			products = append(products, p)
		}
	}
	return products
}

func onechomeCard(text string) (types.Product, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return types.Product{}, false
	}

	// Title: a bracketed line wins outright; otherwise the first
	// substantial line that is not cart/code/price/disclaimer text.
	name := ""
	for _, line := range lines {
		if strings.Contains(line, "【") || (utf8.RuneCountInString(line) > minTitleRunes &&
			!strings.Contains(line, "カート") && !strings.Contains(line, "JAN") &&
			!strings.ContainsAny(line, "¥￥") && !strings.Contains(line, "※")) {
			name = line
			break
		}
	}
	if name == "" {
		return types.Product{}, false
	}

	low, high, ok := ParsePrice(text)
	if !ok {
		return types.Product{}, false
	}

	jan := ""
	if m := janRe.FindStringSubmatch(text); m != nil {
		jan = m[1]
	}

	condition := ""
	switch {
	case strings.Contains(text, "新品"):
		condition = "新品"
	case strings.Contains(text, "中古"):
		condition = "中古"
	}

	return types.Product{
		Source:    types.SourceOnechome,
		Name:      name,
		PriceLow:  low,
		PriceHigh: high,
		JANCode:   jan,
		Condition: condition,
	}, true
}
