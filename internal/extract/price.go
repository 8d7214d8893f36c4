// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns raw page payloads into structured product records.
// It knows nothing about networking or concurrency; a card that fails its
// structural checks is skipped, never an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// priceRe matches either a ¥-prefixed amount with an optional ~-separated
// upper bound, or a bare amount suffixed with 円. Bare numbers with neither
// marker never match, so release years and similar numerals inside titles
// are ignored. Groups: 1,2 = prefixed low/high; 3,4 = suffixed low/high.
var priceRe = regexp.MustCompile(
	`(?:[￥¥]\s*(\d{1,3}(?:,\d{3})*)\s*(?:[~～]\s*[￥¥]?\s*(\d{1,3}(?:,\d{3})*))?|(\d{1,3}(?:,\d{3})*)\s*(?:[~～]\s*(\d{1,3}(?:,\d{3})*))?\s*円)`,
)

// ParsePrice extracts the first price from text. When the listing carries
// a range, high is the upper bound; otherwise high is zero. The first
// match with a valid low amount is authoritative.
func ParsePrice(text string) (low, high int, ok bool) {
	for _, m := range priceRe.FindAllStringSubmatch(text, -1) {
		lowStr := m[1]
		highStr := m[2]
		if lowStr == "" {
			lowStr = m[3]
			highStr = m[4]
		}
		if lowStr == "" {
			continue
		}
		lowVal, err := strconv.Atoi(strings.ReplaceAll(lowStr, ",", ""))
		if err != nil {
			continue
		}
		highVal := 0
		if highStr != "" {
			if h, err := strconv.Atoi(strings.ReplaceAll(highStr, ",", "")); err == nil {
				highVal = h
			}
		}
		return lowVal, highVal, true
	}
	return 0, 0, false
}
