// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/price-scout/pkg/types"
)

const (
	fastbuyOrigin       = "https://fastbuy.jp"
	fastbuyCardSelector = "a[href*='goodsdetail']"

	// minTitleRunes filters out short control labels (色, 強化, ...) when
	// picking the title line of a card.
	minTitleRunes = 5
)

var productIDRe = regexp.MustCompile(`id=(\d+)`)

// FastbuyPage parses one category listing page and returns the product
// records of every well-formed card on it.
func FastbuyPage(pageHTML string) ([]types.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, err
	}

	var products []types.Product
	doc.Find(fastbuyCardSelector).Each(func(_ int, card *goquery.Selection) {
		if p, ok := fastbuyCard(card); ok {
			products = append(products, p)
		}
	})
	return products, nil
}

// fastbuyCard extracts one product from a card anchor. A card with no
// resolvable title or price yields no record.
func fastbuyCard(card *goquery.Selection) (types.Product, bool) {
	lines := textLines(card)
	allText := strings.Join(lines, "\n")

	name := ""
	for _, line := range lines {
		if utf8.RuneCountInString(line) > minTitleRunes {
			name = line
			break
		}
	}
	if name == "" {
		return types.Product{}, false
	}

	low, high, ok := ParsePrice(allText)
	if !ok {
		return types.Product{}, false
	}

	href, _ := card.Attr("href")
	url := href
	if strings.HasPrefix(href, "/") {
		url = fastbuyOrigin + href
	}
	productID := ""
	if m := productIDRe.FindStringSubmatch(href); m != nil {
		productID = m[1]
	}

	return types.Product{
		Source:    types.SourceFastbuy,
		Name:      name,
		PriceLow:  low,
		PriceHigh: high,
		URL:       url,
		ProductID: productID,
		Enhanced:  strings.Contains(allText, "強化"),
	}, true
}

// textLines collects the trimmed text nodes of a selection's subtree in
// document order, one line per node.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return lines
}
