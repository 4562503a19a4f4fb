// Package browser renders JavaScript-heavy pages through a headless
// Chromium instance. It is an injected capability: extractors that need it
// take a Renderer and fall back to plain HTTP when given nil.
package browser

import (
	"context"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/kayz/osprey/internal/logger"
)

// Renderer returns the rendered HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// RodRenderer drives a shared headless browser. The browser is launched on
// first use so that constructing a registry never requires Chromium to be
// installed.
type RodRenderer struct {
	bin string

	mu      sync.Mutex
	browser *rod.Browser
}

func NewRodRenderer(bin string) *RodRenderer {
	return &RodRenderer{bin: bin}
}

func (r *RodRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true).NoSandbox(true)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, err
	}
	logger.Debugf("browser: connected to headless instance")
	r.browser = b
	return b, nil
}

// Render navigates to the URL, waits for the load event and returns the
// resulting DOM as HTML.
func (r *RodRenderer) Render(ctx context.Context, url string) (string, error) {
	b, err := r.connect()
	if err != nil {
		return "", err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	return page.HTML()
}

// Close shuts the shared browser down, if one was launched.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}
