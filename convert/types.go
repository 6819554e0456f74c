// Package convert orchestrates one conversion attempt: extraction →
// fragment validation → render → encode → result packaging. It owns the
// attempt state machine and the stale-result guard.
package convert

import (
	"context"
	"errors"
	"sync"

	"github.com/hazyhaar/docport/encode"
	"github.com/hazyhaar/docport/render"
)

// Status is the attempt state machine value.
//
//	idle → converting → {completed | error}
//
// Both terminal states transition back to idle on reset or on selecting a
// new source document.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConverting Status = "converting"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Error taxonomy. Every failure is caught at the orchestrator and mapped
// to one of these classes; no failure leaves an attempt in converting.
var (
	// ErrNoSource: starting a conversion with no document is a no-op.
	ErrNoSource = errors.New("convert: no source document selected")

	// ErrInFlight: one attempt at a time; target format is fixed once
	// converting starts.
	ErrInFlight = errors.New("convert: a conversion is already in progress")

	// ErrSuperseded: the attempt finished after a reset or a new
	// selection; its result was discarded, not applied.
	ErrSuperseded = errors.New("convert: attempt superseded")

	// ErrRejectedInput: legacy format refused at selection time, before
	// any extraction.
	ErrRejectedInput = errors.New("convert: unsupported input format")

	// ErrExtraction: the reconstruction service failed or returned
	// empty/invalid content.
	ErrExtraction = errors.New("convert: extraction failed")

	// ErrRender: the export surface is missing or capture failed.
	ErrRender = errors.New("convert: export surface lost")

	// ErrEncode: an encoder failed on the reconstructed content.
	ErrEncode = errors.New("convert: encoding failed")
)

// SourceDocument is the selected upload. Immutable once created; owned by
// the session until reset.
type SourceDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Result is a downloadable conversion payload. It must be released before
// a new result replaces it; Release drops the payload so stale references
// can never serve bytes again.
type Result struct {
	encode.Result

	ID string `json:"id"`

	mu        sync.Mutex
	released  bool
	onRelease func(id string)
}

// Release invalidates the result reference and frees its payload.
// Idempotent.
func (r *Result) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.Payload = nil
	if r.onRelease != nil {
		r.onRelease(r.ID)
	}
}

// Released reports whether the reference has been invalidated.
func (r *Result) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Renderer is the off-screen surface the raster targets capture.
// Render and capture are one operation: implementations sharing a single
// surface across attempts must not let another attempt repaint it between
// layout and screenshot. *render.Bridge is the production implementation.
type Renderer interface {
	RenderJPEG(ctx context.Context, fragmentHTML string, quality int) (render.Surface, []byte, error)
	RenderPNG(ctx context.Context, fragmentHTML string) (render.Surface, []byte, error)
	Clear(ctx context.Context) error
}
