package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hazyhaar/docport/encode"
	"github.com/hazyhaar/docport/extractor"
	"github.com/hazyhaar/docport/fragment"
	"github.com/hazyhaar/docport/idgen"
	"github.com/hazyhaar/docport/office"
)

// Capture qualities. Image targets ship at 0.90; the PDF intermediate is
// captured at 0.95 before pagination.
const (
	imageJPEGQuality = 90
	pdfJPEGQuality   = 95
)

// Coarse advisory progress marks — not a measure of byte progress.
const (
	progressStarted   = 10
	progressExtracted = 50
	progressPackaged  = 100
)

// newResultID generates short result identifiers, distinct from the
// attempt ID space.
var newResultID = idgen.Prefixed("res_", idgen.NanoID(12))

// legacyRejects maps pre-XML Office extensions to guidance. These are
// refused at selection time and never reach the extractor.
var legacyRejects = map[string]string{
	".doc": "legacy .doc files are not supported — save the document as .docx (Office Open XML) and retry",
	".xls": "legacy .xls files are not supported — save the workbook as .xlsx and retry",
	".ppt": "legacy .ppt files are not supported — save the presentation as .pptx and retry",
}

// Config configures the orchestrator.
type Config struct {
	Extractor extractor.Extractor
	Renderer  Renderer

	// NewID generates attempt and result identifiers.
	// Default: prefixed UUIDv7.
	NewID idgen.Generator

	// OnProgress receives the advisory progress marks (10/50/100).
	OnProgress func(pct int)

	// OnRelease is called when a result reference is invalidated.
	OnRelease func(resultID string)

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NewID == nil {
		c.NewID = idgen.Prefixed("att_", idgen.UUIDv7())
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Service runs conversion attempts for one session. Single-attempt
// semantics: source selection and reset supersede any in-flight attempt,
// and a superseded attempt's result is discarded when it resolves.
type Service struct {
	cfg Config

	mu        sync.Mutex
	status    Status
	source    *SourceDocument
	attemptID string
	result    *Result
	preview   string
	errMsg    string
}

// New creates a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("convert: Extractor is required")
	}
	cfg.defaults()
	return &Service{cfg: cfg, status: StatusIdle}, nil
}

// SelectSource validates and stores a new source document. Legacy
// single-extension Office formats are rejected immediately with guidance.
// Selecting a source discards any held result and returns the session to
// idle, superseding an in-flight attempt.
func (s *Service) SelectSource(name, mimeType string, data []byte) (*SourceDocument, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if msg, ok := legacyRejects[ext]; ok {
		return nil, fmt.Errorf("%w: %s", ErrRejectedInput, msg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.attemptID = "" // invalidates any in-flight attempt
	s.releaseResultLocked()
	s.preview = ""
	s.errMsg = ""
	s.status = StatusIdle

	doc := &SourceDocument{
		ID:       s.cfg.NewID(),
		Name:     name,
		Size:     int64(len(data)),
		MimeType: mimeType,
		Data:     data,
	}
	s.source = doc
	s.cfg.Logger.Debug("convert: source selected", "name", name, "size", doc.Size, "mime", mimeType)
	return doc, nil
}

// Convert runs one attempt against the current source. The target format
// is fixed for the whole attempt. On success the result is held by the
// session until superseded, released on reset.
func (s *Service) Convert(ctx context.Context, target encode.Format) (*Result, error) {
	s.mu.Lock()
	if s.source == nil {
		s.mu.Unlock()
		return nil, ErrNoSource
	}
	if s.status == StatusConverting {
		s.mu.Unlock()
		return nil, ErrInFlight
	}
	attempt := s.cfg.NewID()
	s.attemptID = attempt
	s.status = StatusConverting
	s.errMsg = ""
	src := s.source
	s.mu.Unlock()

	log := s.cfg.Logger.With("attempt", attempt, "target", target, "source", src.Name)
	log.Info("convert: attempt started")
	s.progress(progressStarted)

	frag, err := s.reconstruct(ctx, src, target)
	if err != nil {
		return nil, s.fail(attempt, log, err)
	}
	s.progress(progressExtracted)

	payload, err := s.encodeTarget(ctx, src, frag, target)
	if err != nil {
		return nil, s.fail(attempt, log, err)
	}
	s.progress(progressPackaged)

	result := &Result{
		Result: encode.Result{
			Payload:     payload,
			Filename:    encode.OutputName(src.Name, target),
			ContentType: target.ContentType(),
		},
		ID:        newResultID(),
		onRelease: s.cfg.OnRelease,
	}
	preview := encode.PlainText(frag.Blocks)

	// Stale-result guard: only the attempt that is still current may
	// apply its result. A reset or new selection in the meantime wins.
	s.mu.Lock()
	if s.attemptID != attempt {
		s.mu.Unlock()
		result.Release()
		log.Info("convert: attempt superseded, result discarded")
		return nil, ErrSuperseded
	}
	s.releaseResultLocked()
	s.result = result
	s.preview = preview
	s.status = StatusCompleted
	s.mu.Unlock()

	log.Info("convert: attempt completed", "filename", result.Filename, "bytes", len(result.Payload))
	return result, nil
}

// Reset releases the held result, discards the source, clears the render
// surface and returns to idle. An in-flight attempt is superseded.
func (s *Service) Reset(ctx context.Context) {
	s.mu.Lock()
	s.attemptID = ""
	s.releaseResultLocked()
	s.source = nil
	s.preview = ""
	s.errMsg = ""
	s.status = StatusIdle
	s.mu.Unlock()

	if s.cfg.Renderer != nil {
		if err := s.cfg.Renderer.Clear(ctx); err != nil {
			s.cfg.Logger.Warn("convert: clear surface", "error", err)
		}
	}
}

// Status returns the current state machine value.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Source returns the selected document, or nil.
func (s *Service) Source() *SourceDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Result returns the held conversion result, or nil.
func (s *Service) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Preview returns the plain-text preview of the last completed attempt.
func (s *Service) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// ErrMessage returns the terminal error message, empty unless in error.
func (s *Service) ErrMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// reconstruct runs the optional office pre-step, calls the extractor and
// parses the response into a validated fragment.
func (s *Service) reconstruct(ctx context.Context, src *SourceDocument, target encode.Format) (*fragment.Fragment, error) {
	data := src.Data
	mimeType := src.MimeType

	if office.IsOfficeDocument(src.Name) {
		text, err := office.ExtractText(src.Data, src.Name)
		if err != nil {
			// Best effort only: fall back to generic text handling.
			s.cfg.Logger.Warn("convert: office pre-extraction failed, treating as text",
				"source", src.Name, "error", err)
		} else {
			data = []byte(text)
		}
		mimeType = "text/plain"
	}

	raw, err := s.cfg.Extractor.Reconstruct(ctx, extractor.Request{
		Data:       data,
		MimeType:   mimeType,
		TargetHint: string(target),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	frag, err := fragment.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return frag, nil
}

// encodeTarget dispatches to the encoder family for the target format.
func (s *Service) encodeTarget(ctx context.Context, src *SourceDocument, frag *fragment.Fragment, target encode.Format) ([]byte, error) {
	switch target {
	case encode.FormatMD:
		return []byte(encode.Markdown(frag.Blocks)), nil

	case encode.FormatTXT:
		return []byte(encode.PlainText(frag.Blocks)), nil

	case encode.FormatDocx:
		return encode.WordHTML(frag.HTML, documentTitle(frag, src.Name)), nil

	case encode.FormatJPG, encode.FormatPNG, encode.FormatPDF:
		if s.cfg.Renderer == nil {
			return nil, fmt.Errorf("%w: no renderer configured", ErrRender)
		}

		switch target {
		case encode.FormatJPG:
			_, payload, err := s.cfg.Renderer.RenderJPEG(ctx, frag.HTML, imageJPEGQuality)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRender, err)
			}
			return payload, nil

		case encode.FormatPNG:
			_, payload, err := s.cfg.Renderer.RenderPNG(ctx, frag.HTML)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRender, err)
			}
			return payload, nil

		default: // PDF
			surface, capture, err := s.cfg.Renderer.RenderJPEG(ctx, frag.HTML, pdfJPEGQuality)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRender, err)
			}
			payload, err := encode.PaginatePDF(capture, surface.Width, surface.Height)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrEncode, err)
			}
			s.cfg.Logger.Debug("convert: pdf paginated",
				"pages", encode.PDFPageCount(surface.Width, surface.Height),
				"surface_height", surface.Height)
			return payload, nil
		}

	default:
		return nil, fmt.Errorf("%w: unknown target %q", ErrEncode, target)
	}
}

// fail records the terminal error for the attempt, unless it was already
// superseded.
func (s *Service) fail(attempt string, log *slog.Logger, err error) error {
	s.mu.Lock()
	if s.attemptID == attempt {
		s.status = StatusError
		s.errMsg = err.Error()
	}
	s.mu.Unlock()
	log.Error("convert: attempt failed", "error", err)
	return err
}

func (s *Service) progress(pct int) {
	if s.cfg.OnProgress != nil {
		s.cfg.OnProgress(pct)
	}
}

// releaseResultLocked releases and drops the held result. Caller holds mu.
func (s *Service) releaseResultLocked() {
	if s.result != nil {
		s.result.Release()
		s.result = nil
	}
}

// documentTitle picks the first heading, falling back to the source base
// name without extension.
func documentTitle(frag *fragment.Fragment, sourceName string) string {
	for _, b := range frag.Blocks {
		if b.Kind == fragment.BlockHeading {
			return b.Text()
		}
	}
	base := filepath.Base(sourceName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
