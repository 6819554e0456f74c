// Package render materializes reconstructed content on an off-screen
// Chrome surface so the raster targets (jpg, png, pdf) can capture it.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// BrowserConfig configures the headless Chrome lifecycle.
type BrowserConfig struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local headless Chrome via launcher.
	RemoteURL string

	Logger *slog.Logger
}

func (c *BrowserConfig) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Browser owns a single Chrome process (or remote connection) shared by
// render bridges. Call Start before creating bridges, Close on shutdown.
type Browser struct {
	cfg     BrowserConfig
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewBrowser creates a Browser. Call Start to launch or connect.
func NewBrowser(cfg BrowserConfig) *Browser {
	cfg.defaults()
	return &Browser{cfg: cfg}
}

// Start launches local headless Chrome or connects to RemoteURL.
func (b *Browser) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("render: browser is closed")
	}
	if b.browser != nil {
		return nil
	}

	log := b.cfg.Logger

	wsURL := b.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("render: launch chrome: %w", err)
		}
		b.lnch = l
		wsURL = u
		log.Info("render: launched local chrome", "url", wsURL)
	} else {
		log.Info("render: connecting to remote chrome", "url", wsURL)
	}

	br := rod.New().ControlURL(wsURL).Context(ctx)
	if err := br.Connect(); err != nil {
		b.cleanupLocked()
		return fmt.Errorf("render: connect: %w", err)
	}
	b.browser = br
	return nil
}

// Rod returns the underlying rod browser, or nil before Start.
func (b *Browser) Rod() *rod.Browser {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.browser
}

// Close shuts down Chrome.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return b.cleanupLocked()
}

func (b *Browser) cleanupLocked() error {
	if b.browser != nil {
		b.browser.Close()
		b.browser = nil
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
	return nil
}
