// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgents is the pool of User-Agent values rotated across requests.
	UserAgents []string `json:"user_agents" yaml:"user_agents"`

	// AcceptLanguage is sent with every request (e.g. "ja,en-US;q=0.9").
	AcceptLanguage string `json:"accept_language" yaml:"accept_language"`
}

// RetryConfig controls the shared retry wrapper. Every failure is
// retryable; after MaxAttempts the final error propagates.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// BackoffBase is the exponential backoff base: the wait before attempt
	// n+1 is BackoffBase^n seconds.
	BackoffBase float64 `json:"backoff_base" yaml:"backoff_base"`
}

// FastbuyConfig holds settings for the paginated-document crawler.
type FastbuyConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the category listing endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// CategoryID selects the trading-card category.
	CategoryID int `json:"category_id" yaml:"category_id"`

	// Pages is the fixed number of category pages to fetch.
	Pages int `json:"pages" yaml:"pages"`

	// Stagger offsets the start of page fetch n by n×Stagger so the
	// concurrent fetches do not land as a single burst.
	Stagger time.Duration `json:"stagger" yaml:"stagger"`

	// Referer is sent with each page request.
	Referer string `json:"referer" yaml:"referer"`

	Retry RetryConfig `json:"retry" yaml:"retry"`
}

// OnechomeConfig holds settings for the interactive-session crawler.
type OnechomeConfig struct {
	// BaseURL is the storefront the sessions navigate to before searching.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Sessions is the number of concurrent browser sessions; capped at the
	// catalog size.
	Sessions int `json:"sessions" yaml:"sessions"`

	// ResultWait bounds the wait for the first result card after a search
	// settles. A timeout here means "no results", not a failure. Tunable,
	// not a derived invariant.
	ResultWait time.Duration `json:"result_wait" yaml:"result_wait"`

	// SearchTimeout bounds a single search interaction end to end.
	SearchTimeout time.Duration `json:"search_timeout" yaml:"search_timeout"`

	// DelayMin and DelayMax bound the random pacing delay a session sleeps
	// between items in its partition.
	DelayMin time.Duration `json:"delay_min" yaml:"delay_min"`
	DelayMax time.Duration `json:"delay_max" yaml:"delay_max"`

	// Headless controls whether the browser runs without a window.
	Headless bool `json:"headless" yaml:"headless"`

	// UserAgents is the pool of User-Agent values the sessions pick from.
	UserAgents []string `json:"user_agents" yaml:"user_agents"`

	// AcceptLanguage is applied to the browser context.
	AcceptLanguage string `json:"accept_language" yaml:"accept_language"`

	Retry RetryConfig `json:"retry" yaml:"retry"`
}

// StoreConfig holds settings for the price-history store.
type StoreConfig struct {
	// Dir is the directory holding the SQLite database file.
	Dir string `json:"dir" yaml:"dir"`
}

// Config groups all stage configurations for a pipeline run.
type Config struct {
	Fastbuy  FastbuyConfig  `json:"fastbuy" yaml:"fastbuy"`
	Onechome OnechomeConfig `json:"onechome" yaml:"onechome"`

	// MatchThreshold is the minimum similarity for an accepted match.
	MatchThreshold float64 `json:"match_threshold" yaml:"match_threshold"`

	Store StoreConfig `json:"store" yaml:"store"`
}

// defaultUserAgents is rotated across requests and sessions so repeated
// fetches do not present a single fingerprint.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// DefaultConfig returns the run configuration with the production defaults
// for both sources.
func DefaultConfig() Config {
	retry := RetryConfig{MaxAttempts: 3, BackoffBase: 2.0}
	return Config{
		Fastbuy: FastbuyConfig{
			HTTPConfig: HTTPConfig{
				Timeout:        30 * time.Second,
				UserAgents:     defaultUserAgents,
				AcceptLanguage: "ja,en-US;q=0.9",
			},
			BaseURL:    "https://fastbuy.jp/index/index/categorydetail",
			CategoryID: 8,
			Pages:      7,
			Stagger:    200 * time.Millisecond,
			Referer:    "https://fastbuy.jp/",
			Retry:      retry,
		},
		Onechome: OnechomeConfig{
			BaseURL:        "https://1-chome.com",
			Sessions:       6,
			ResultWait:     2 * time.Second,
			SearchTimeout:  10 * time.Second,
			DelayMin:       500 * time.Millisecond,
			DelayMax:       time.Second,
			Headless:       true,
			UserAgents:     defaultUserAgents,
			AcceptLanguage: "ja,en-US;q=0.9",
			Retry:          retry,
		},
		MatchThreshold: 0.5,
		Store:          StoreConfig{Dir: "data"},
	}
}
