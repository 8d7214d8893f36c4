// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browser drives the interactive storefront with real browser
// sessions. It implements crawl.Session on top of go-rod: one shared
// browser process, one page per session.
package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/pdiddy/price-scout/internal/crawl"
	"github.com/pdiddy/price-scout/pkg/types"
)

const (
	searchInputSelector  = "input.el-input__inner[placeholder*='商品名']"
	searchButtonSelector = "button.search-btn"
	resultCardSelector   = ".commodity-item"
)

// Pool owns the browser process and hands out sessions backed by
// separate pages. Start before use, Close when the crawl is done.
type Pool struct {
	cfg     types.OnechomeConfig
	log     *zap.Logger
	browser *rod.Browser
}

// NewPool builds an unstarted pool.
func NewPool(cfg types.OnechomeConfig, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{cfg: cfg, log: log}
}

// Start launches the browser process and connects to it.
func (p *Pool) Start() error {
	url, err := launcher.New().
		Headless(p.cfg.Headless).
		NoSandbox(true).
		Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connecting to browser: %w", err)
	}
	p.browser = browser
	p.log.Info("browser started", zap.Bool("headless", p.cfg.Headless))
	return nil
}

// NewSession opens a fresh page navigated to the storefront. It
// satisfies crawl.SessionFactory.
func (p *Pool) NewSession(ctx context.Context) (crawl.Session, error) {
	if p.browser == nil {
		return nil, errors.New("browser pool not started")
	}

	page, err := p.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}

	ua := &proto.NetworkSetUserAgentOverride{AcceptLanguage: p.cfg.AcceptLanguage}
	if n := len(p.cfg.UserAgents); n > 0 {
		ua.UserAgent = p.cfg.UserAgents[rand.Intn(n)]
	}
	if ua.UserAgent != "" || ua.AcceptLanguage != "" {
		if err := page.SetUserAgent(ua); err != nil {
			page.Close()
			return nil, fmt.Errorf("setting user agent: %w", err)
		}
	}

	page = page.Context(ctx)
	if err := page.Navigate(p.cfg.BaseURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigating to %s: %w", p.cfg.BaseURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		page.Close()
		return nil, fmt.Errorf("waiting for storefront: %w", err)
	}

	return &session{cfg: p.cfg, page: page, log: p.log}, nil
}

// Close shuts the browser process down.
func (p *Pool) Close() error {
	if p.browser == nil {
		return nil
	}
	return p.browser.Close()
}

// session is one live page against the storefront search form.
type session struct {
	cfg  types.OnechomeConfig
	page *rod.Page
	log  *zap.Logger
}

// Search types keyword into the search field, submits, and returns the
// inner text of every rendered result card. A timeout waiting for the
// first card means the keyword has no results and reports no texts.
func (s *session) Search(ctx context.Context, keyword string) ([]string, error) {
	page := s.page.Context(ctx)
	if s.cfg.SearchTimeout > 0 {
		page = page.Timeout(s.cfg.SearchTimeout)
	}

	input, err := page.Element(searchInputSelector)
	if err != nil {
		return nil, fmt.Errorf("finding search input: %w", err)
	}
	if err := input.SelectAllText(); err != nil {
		return nil, fmt.Errorf("clearing search input: %w", err)
	}
	if err := input.Input(keyword); err != nil {
		return nil, fmt.Errorf("typing keyword: %w", err)
	}

	button, err := page.Element(searchButtonSelector)
	if err != nil {
		return nil, fmt.Errorf("finding search button: %w", err)
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("submitting search: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for results: %w", err)
	}

	// No card inside ResultWait means an empty result set, not a failure.
	if _, err := page.Timeout(s.cfg.ResultWait).Element(resultCardSelector); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Debug("no results", zap.String("keyword", keyword))
			return nil, nil
		}
		return nil, fmt.Errorf("waiting for result cards: %w", err)
	}

	cards, err := page.Elements(resultCardSelector)
	if err != nil {
		return nil, fmt.Errorf("collecting result cards: %w", err)
	}

	texts := make([]string, 0, len(cards))
	for _, card := range cards {
		text, err := card.Text()
		if err != nil {
			return nil, fmt.Errorf("reading result card: %w", err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// Close releases the session's page. The shared browser stays up for
// the pool's other sessions.
func (s *session) Close() error {
	return s.page.Close()
}
