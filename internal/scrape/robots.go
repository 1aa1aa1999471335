package scrape

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/gnithesh/productowl/internal/httputil"
)

// RobotsGate caches and checks robots.txt rules per origin. It is an opt-in
// courtesy check; when disabled every URL is allowed.
type RobotsGate struct {
	client   *http.Client
	enabled  bool
	cacheTTL time.Duration

	mu     sync.RWMutex
	rules  map[string]*robotstxt.RobotsData
	expiry map[string]time.Time
}

// NewRobotsGate creates a gate backed by the given client. A nil client gets
// the shared default.
func NewRobotsGate(client *http.Client, enabled bool) *RobotsGate {
	if client == nil {
		client = httputil.NewClient()
	}
	return &RobotsGate{
		client:   client,
		enabled:  enabled,
		cacheTTL: time.Hour,
		rules:    make(map[string]*robotstxt.RobotsData),
		expiry:   make(map[string]time.Time),
	}
}

// Allowed reports whether userAgent may fetch rawURL. An unreachable or
// unparsable robots.txt allows the request.
func (g *RobotsGate) Allowed(userAgent, rawURL string) (bool, error) {
	if !g.enabled {
		return true, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false, err
	}

	origin := u.Scheme + "://" + u.Host
	data, err := g.getRules(origin)
	if err != nil {
		return true, nil
	}

	return data.FindGroup(userAgent).Test(u.Path), nil
}

func (g *RobotsGate) getRules(origin string) (*robotstxt.RobotsData, error) {
	g.mu.RLock()
	data, ok := g.rules[origin]
	exp := g.expiry[origin]
	g.mu.RUnlock()
	if ok && time.Now().Before(exp) {
		return data, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if data, ok := g.rules[origin]; ok && time.Now().Before(g.expiry[origin]) {
		return data, nil
	}

	resp, err := g.client.Get(origin + "/robots.txt")
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err = robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	g.rules[origin] = data
	g.expiry[origin] = time.Now().Add(g.cacheTTL)
	return data, nil
}
