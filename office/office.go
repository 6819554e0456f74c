// Package office is the optional pre-step for structured Office inputs:
// best-effort plain-text extraction from modern Office documents so the
// reconstruction service receives text instead of a ZIP container.
//
// Supported: .docx (word/document.xml) and .odt (content.xml). Anything
// else, and any extraction failure, falls back to treating the payload as
// generic text — the orchestrator owns that fallback.
package office

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
)

// maxXMLDepth guards against XML bombs in hostile archives.
const maxXMLDepth = 256

// IsOfficeDocument reports whether the file name names a modern Office
// container this package can pre-extract.
func IsOfficeDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx", ".odt":
		return true
	}
	return false
}

// ExtractText pulls best-effort plain text out of a modern Office
// document payload. Paragraphs are separated by newlines.
func ExtractText(data []byte, name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		return extractDocx(data)
	case ".odt":
		return extractODT(data)
	default:
		return "", fmt.Errorf("office: not an office document: %q", name)
	}
}

// extractDocx reads word/document.xml from the ZIP container and walks
// its paragraph runs.
func extractDocx(data []byte) (string, error) {
	content, err := openArchiveFile(data, "word/document.xml")
	if err != nil {
		return "", err
	}

	decoder := xml.NewDecoder(bytes.NewReader(content))
	var sb strings.Builder
	var current strings.Builder
	var inParagraph bool
	depth := 0

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return "", fmt.Errorf("office: XML nesting depth exceeds %d", maxXMLDepth)
			}
			if t.Name.Local == "p" {
				inParagraph = true
				current.Reset()
			}

		case xml.CharData:
			if inParagraph {
				current.Write(t)
			}

		case xml.EndElement:
			depth--
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				if text := strings.TrimSpace(current.String()); text != "" {
					if sb.Len() > 0 {
						sb.WriteByte('\n')
					}
					sb.WriteString(text)
				}
			}
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("office: no text content in document")
	}
	return sb.String(), nil
}

// extractODT reads content.xml and walks <text:h>/<text:p> elements.
func extractODT(data []byte) (string, error) {
	content, err := openArchiveFile(data, "content.xml")
	if err != nil {
		return "", err
	}

	decoder := xml.NewDecoder(bytes.NewReader(content))
	var sb strings.Builder
	var current strings.Builder
	var collecting bool
	depth := 0

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return "", fmt.Errorf("office: XML nesting depth exceeds %d", maxXMLDepth)
			}
			if t.Name.Local == "h" || t.Name.Local == "p" {
				collecting = true
				current.Reset()
			}

		case xml.CharData:
			if collecting {
				current.Write(t)
			}

		case xml.EndElement:
			depth--
			if (t.Name.Local == "h" || t.Name.Local == "p") && collecting {
				collecting = false
				if text := strings.TrimSpace(current.String()); text != "" {
					if sb.Len() > 0 {
						sb.WriteByte('\n')
					}
					sb.WriteString(text)
				}
			}
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("office: no text content in document")
	}
	return sb.String(), nil
}

// openArchiveFile returns the named file's bytes from a ZIP payload.
func openArchiveFile(data []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("office: open archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("office: open %s: %w", name, err)
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return nil, fmt.Errorf("office: read %s: %w", name, err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("office: %s not found in archive", name)
}
