package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

const (
	// PageWidthPx is the fixed surface width: an A4 page at 96 dpi.
	PageWidthPx = 794

	// PageHeightPx is one A4 page height at the same resolution.
	PageHeightPx = 1123

	// ScaleFactor is the capture device scale. 2x keeps text crisp in
	// the raster targets.
	ScaleFactor = 2
)

// pageShell pins the typography so the same fragment always lays out the
// same way: fixed width, fixed font stack, fixed line height and padding,
// whitespace-preserving wrapping, opaque white background.
const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
html, body { margin: 0; background: #ffffff; }
body {
  width: %dpx;
  box-sizing: border-box;
  padding: 40px;
  font-family: Arial, Helvetica, sans-serif;
  font-size: 16px;
  line-height: 1.6;
  color: #1a1a2e;
  white-space: pre-wrap;
  overflow-wrap: break-word;
}
h1 { font-size: 28px; margin: 0 0 16px; }
h2 { font-size: 22px; margin: 24px 0 12px; }
p { margin: 0 0 12px; }
ul { margin: 0 0 12px; padding-left: 28px; }
li { margin: 0 0 6px; }
</style>
</head>
<body>%s</body>
</html>`

// Surface describes the laid-out page in CSS pixels.
type Surface struct {
	Width  int
	Height int
}

// Config configures a Bridge.
type Config struct {
	Browser *Browser

	// MinSettle is the stabilization floor: even if the DOM reports
	// stable immediately, Render waits at least this long before the
	// surface is considered final. Default: 100ms.
	MinSettle time.Duration

	// StableWindow is how long the DOM must stay unchanged to count as
	// settled. Default: 300ms.
	StableWindow time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MinSettle <= 0 {
		c.MinSettle = 100 * time.Millisecond
	}
	if c.StableWindow <= 0 {
		c.StableWindow = 300 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Bridge owns one hidden page. The page is exclusive to the in-flight
// conversion attempt: every render replaces the whole document, so
// repeated calls never accumulate content, and render+capture run under
// one lock so concurrent attempts cannot interleave on the surface.
type Bridge struct {
	cfg  Config
	mu   sync.Mutex
	page *rod.Page
}

// NewBridge creates a Bridge on a started Browser.
func NewBridge(cfg Config) *Bridge {
	cfg.defaults()
	return &Bridge{cfg: cfg}
}

// RenderJPEG writes the sanitized fragment into the hidden page, waits
// for fonts and layout to settle, and captures a full-page JPEG at
// ScaleFactor. Render and capture happen in one critical section: the
// surface cannot be repainted by a concurrent attempt between layout and
// screenshot, so the returned bytes always show the given fragment.
// Background is opaque white — JPEG has no alpha and the shell paints
// white behind everything.
func (b *Bridge) RenderJPEG(ctx context.Context, fragmentHTML string, quality int) (Surface, []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	surface, page, err := b.renderLocked(ctx, fragmentHTML)
	if err != nil {
		return Surface{}, nil, err
	}
	bin, err := page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(quality),
	})
	if err != nil {
		return Surface{}, nil, fmt.Errorf("render: capture jpeg: %w", err)
	}
	return surface, bin, nil
}

// RenderPNG is RenderJPEG with a lossless PNG capture.
func (b *Bridge) RenderPNG(ctx context.Context, fragmentHTML string) (Surface, []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	surface, page, err := b.renderLocked(ctx, fragmentHTML)
	if err != nil {
		return Surface{}, nil, err
	}
	bin, err := page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return Surface{}, nil, fmt.Errorf("render: capture png: %w", err)
	}
	return surface, bin, nil
}

// renderLocked sets the page content, waits for stability and measures
// the surface. Caller holds mu.
func (b *Bridge) renderLocked(ctx context.Context, fragmentHTML string) (Surface, *rod.Page, error) {
	page, err := b.pageLocked()
	if err != nil {
		return Surface{}, nil, err
	}

	doc := fmt.Sprintf(pageShell, PageWidthPx, fragmentHTML)
	if err := page.Context(ctx).SetDocumentContent(doc); err != nil {
		return Surface{}, nil, fmt.Errorf("render: set content: %w", err)
	}

	if err := b.waitStable(ctx, page); err != nil {
		return Surface{}, nil, err
	}

	surface, err := b.measure(ctx, page)
	if err != nil {
		return Surface{}, nil, err
	}
	return surface, page, nil
}

// Clear empties the surface between attempts so nothing leaks across.
func (b *Bridge) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.page == nil {
		return nil
	}
	doc := fmt.Sprintf(pageShell, PageWidthPx, "")
	if err := b.page.Context(ctx).SetDocumentContent(doc); err != nil {
		return fmt.Errorf("render: clear: %w", err)
	}
	return nil
}

// Close releases the hidden page.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.page != nil {
		err := b.page.Close()
		b.page = nil
		return err
	}
	return nil
}

func (b *Bridge) pageLocked() (*rod.Page, error) {
	if b.page != nil {
		return b.page, nil
	}
	br := b.cfg.Browser.Rod()
	if br == nil {
		return nil, fmt.Errorf("render: browser not started")
	}
	page, err := br.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("render: create page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             PageWidthPx,
		Height:            PageHeightPx,
		DeviceScaleFactor: ScaleFactor,
	}); err != nil {
		page.Close()
		return nil, fmt.Errorf("render: set viewport: %w", err)
	}
	b.page = page
	return page, nil
}

// waitStable guarantees the surface is final before capture: a fixed
// minimum delay, then fonts loaded, then the DOM unchanged for a full
// stability window.
func (b *Bridge) waitStable(ctx context.Context, page *rod.Page) error {
	select {
	case <-time.After(b.cfg.MinSettle):
	case <-ctx.Done():
		return ctx.Err()
	}

	if _, err := page.Context(ctx).Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		b.cfg.Logger.Warn("render: font wait failed", "error", err)
	}

	if err := page.Context(ctx).WaitDOMStable(b.cfg.StableWindow, 0); err != nil {
		return fmt.Errorf("render: wait stable: %w", err)
	}
	return nil
}

func (b *Bridge) measure(ctx context.Context, page *rod.Page) (Surface, error) {
	res, err := page.Context(ctx).Eval(`() => ({
		w: document.body.scrollWidth,
		h: document.body.scrollHeight
	})`)
	if err != nil {
		return Surface{}, fmt.Errorf("render: measure: %w", err)
	}
	s := Surface{
		Width:  res.Value.Get("w").Int(),
		Height: res.Value.Get("h").Int(),
	}
	if s.Width <= 0 || s.Height <= 0 {
		return Surface{}, fmt.Errorf("render: surface has no extent")
	}
	return s, nil
}
