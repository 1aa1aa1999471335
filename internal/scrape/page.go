package scrape

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RenderedPage is one loaded browser tab. Selector misses are not errors;
// they yield empty strings and downstream defaulting applies.
type RenderedPage interface {
	// WaitVisible blocks until the selector matches or the timeout expires.
	WaitVisible(selector string, timeout time.Duration) bool
	// Text returns the trimmed text content of the first match, or "".
	Text(selector string) string
	// Attr returns the named attribute of the first match, or "".
	Attr(selector, name string) string
	Close() error
}

// Session owns a browser process shared across scrape calls. Each call gets
// its own page; only the process handle is shared.
type Session interface {
	Open(ctx context.Context, url string) (RenderedPage, error)
	Close() error
}

// BrowserSession implements Session on a headless Chromium instance driven
// by rod. The browser is launched lazily on the first Open and reused until
// Close.
type BrowserSession struct {
	userAgent  string
	bin        string
	navTimeout time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowserSession creates a session; no browser process is started yet.
// bin optionally points at a system Chromium binary (e.g. in containers).
func NewBrowserSession(userAgent, bin string, navTimeout time.Duration) *BrowserSession {
	return &BrowserSession{
		userAgent:  userAgent,
		bin:        bin,
		navTimeout: navTimeout,
	}
}

func (s *BrowserSession) ensure() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return s.browser, nil
	}

	l := launcher.New().Headless(true).NoSandbox(true).Logger(io.Discard)
	if s.bin != "" {
		l = l.Bin(s.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	s.launcher = l
	s.browser = browser
	return browser, nil
}

// Open loads url in a fresh page and waits for it to settle. The page is
// closed on any failure; the browser process survives single-page failures.
func (s *BrowserSession) Open(ctx context.Context, pageURL string) (RenderedPage, error) {
	browser, err := s.ensure()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.userAgent}); err != nil {
		page.Close()
		return nil, fmt.Errorf("set user agent: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{Width: 1920, Height: 1080}); err != nil {
		page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	nav := page.Context(ctx).Timeout(s.navTimeout)
	if err := nav.Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	if err := nav.WaitLoad(); err != nil {
		page.Close()
		return nil, fmt.Errorf("wait load %s: %w", pageURL, err)
	}
	// Let late-rendered price blocks settle; not fatal if the page keeps mutating.
	_ = nav.WaitStable(time.Second)

	return &rodPage{page: page}, nil
}

// Close tears down the browser process. A later Open starts a fresh one.
func (s *BrowserSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.launcher.Cleanup()
	s.browser = nil
	s.launcher = nil
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) WaitVisible(selector string, timeout time.Duration) bool {
	el, err := p.page.Timeout(timeout).Element(selector)
	return err == nil && el != nil
}

func (p *rodPage) Text(selector string) string {
	el, err := p.page.Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		return ""
	}
	txt, err := el.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(txt)
}

func (p *rodPage) Attr(selector, name string) string {
	el, err := p.page.Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		return ""
	}
	v, err := el.Attribute(name)
	if err != nil || v == nil {
		return ""
	}
	return *v
}

func (p *rodPage) Close() error {
	return p.page.Close()
}
