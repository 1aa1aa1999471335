// Package scrape extracts product data from Amazon product pages rendered in
// a headless browser.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gnithesh/productowl/internal/models"
	"github.com/gnithesh/productowl/internal/pricing"
)

// ScrapeError is a failed scrape of a single URL. The browser session is not
// torn down by a single failure; only the page is released.
type ScrapeError struct {
	URL string
	Op  string
	Err error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// Scraper turns product URLs into normalized snapshots. It owns the browser
// session lifecycle; calls are safe to make sequentially and share one
// underlying browser process.
type Scraper struct {
	session         Session
	robots          *RobotsGate
	userAgent       string
	selectorTimeout time.Duration
}

// New creates a Scraper over the given session. robots may be nil.
func New(session Session, robots *RobotsGate, userAgent string, selectorTimeout time.Duration) *Scraper {
	return &Scraper{
		session:         session,
		robots:          robots,
		userAgent:       userAgent,
		selectorTimeout: selectorTimeout,
	}
}

// ScrapeProduct loads url and extracts a full product snapshot: title, image
// and both prices, normalized and coerced so OriginalPrice >= CurrentPrice.
// The first-snapshot stats (highest/lowest/average) are derived from the two
// prices alone; later averages come from the persisted history.
func (s *Scraper) ScrapeProduct(ctx context.Context, url string) (models.Snapshot, error) {
	page, err := s.openPage(ctx, url)
	if err != nil {
		return models.Snapshot{}, err
	}
	defer page.Close()

	waitForTitle(page, s.selectorTimeout)
	data := extractProductData(page)

	current := pricing.Parse(data.PriceText)
	original := pricing.Parse(data.OriginalPriceText)
	if original <= current {
		original = current
	}

	avg := int(float64(current+original)/2 + 0.5)
	return models.Snapshot{
		Title:         data.Title,
		ImageURL:      data.ImageURL,
		CurrentPrice:  current,
		OriginalPrice: original,
		HighestPrice:  original,
		LowestPrice:   current,
		AveragePrice:  avg,
	}, nil
}

// ScrapePriceUpdate loads url and extracts only the current price. It returns
// 0 when the price could not be determined; callers treat 0 as unknown.
func (s *Scraper) ScrapePriceUpdate(ctx context.Context, url string) (int, error) {
	page, err := s.openPage(ctx, url)
	if err != nil {
		return 0, err
	}
	defer page.Close()

	return pricing.Parse(quickPriceField.extract(page)), nil
}

// Close shuts down the underlying browser session.
func (s *Scraper) Close() error {
	return s.session.Close()
}

func (s *Scraper) openPage(ctx context.Context, url string) (RenderedPage, error) {
	if s.robots != nil {
		allowed, err := s.robots.Allowed(s.userAgent, url)
		if err != nil {
			return nil, &ScrapeError{URL: url, Op: "robots", Err: err}
		}
		if !allowed {
			return nil, &ScrapeError{URL: url, Op: "robots", Err: errors.New("disallowed by robots.txt")}
		}
	}

	page, err := s.session.Open(ctx, url)
	if err != nil {
		return nil, &ScrapeError{URL: url, Op: "navigate", Err: err}
	}
	return page, nil
}
