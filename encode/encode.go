// Package encode turns reconstructed content into target-format payloads.
//
// Target families:
//   - md / txt  — block-sequence serializers over the fragment grammar
//   - docx      — Word-compatible HTML envelope (import shim, not OOXML)
//   - jpg / png — raster capture of the rendered surface, passed through
//   - pdf       — raster capture paginated across A4 pages
package encode

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a conversion target.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatTXT  Format = "txt"
	FormatJPG  Format = "jpg"
	FormatPNG  Format = "png"
	FormatMD   Format = "md"
)

// ParseFormat returns the Format for a user-supplied target name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDocx, nil
	case "txt", "text":
		return FormatTXT, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "png":
		return FormatPNG, nil
	case "md", "markdown":
		return FormatMD, nil
	default:
		return "", fmt.Errorf("encode: unsupported target format: %q", s)
	}
}

// ContentType returns the MIME type of the encoded payload.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDocx:
		// Legacy Word MIME: Word opens the HTML envelope through its
		// import compatibility path, not native OOXML parsing.
		return "application/msword"
	case FormatJPG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatMD:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Ext returns the lowercase file extension for the format, with dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// SupportedFormats lists all conversion targets.
func SupportedFormats() []string {
	return []string{"pdf", "docx", "txt", "jpg", "png", "md"}
}

// Result is a finished conversion payload.
type Result struct {
	Payload     []byte `json:"-"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// OutputName derives the suggested download name from the source file
// name: base name kept, extension replaced by the target's.
func OutputName(source string, f Format) string {
	base := filepath.Base(source)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "document"
	}
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" {
		base = "document"
	}
	return base + f.Ext()
}
