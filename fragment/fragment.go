// Package fragment models the reconstructed content produced by the
// content-reconstruction service: an HTML fragment restricted to a fixed
// tag allowlist {h1, h2, p, br, ul, li, strong}.
//
// The service is treated as an untrusted producer. Every response passes
// through Sanitize before parsing, so anything outside the allowlist is
// stripped regardless of what the service claims to emit. Parse then turns
// the sanitized fragment into a flat block sequence that the per-format
// serializers in package encode consume.
package fragment

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrEmpty is returned when a fragment contains no text after
// sanitization. Empty reconstructed content is terminal for an attempt.
var ErrEmpty = errors.New("fragment: reconstructed content is empty")

// Block kinds.
const (
	BlockHeading   = "heading"
	BlockParagraph = "paragraph"
	BlockListItem  = "list_item"
)

// Span is an inline run inside a block. A span is either a text run
// (possibly strong) or a line break.
type Span struct {
	Text   string
	Strong bool
	Break  bool
}

// Block is a structural unit of the fragment.
type Block struct {
	Kind  string
	Level int // heading level 1-2, 0 otherwise
	Spans []Span
}

// Text returns the block's text with breaks rendered as newlines.
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		if s.Break {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(s.Text)
	}
	return strings.TrimSpace(sb.String())
}

// Fragment is a sanitized, parsed reconstruction of a document's content.
type Fragment struct {
	// HTML is the sanitized fragment markup, safe to hand to the render
	// bridge and the Office-HTML encoder.
	HTML string

	// Blocks is the structured block sequence used by the text-family
	// serializers.
	Blocks []Block
}

// Parse sanitizes raw extractor output and parses it into a Fragment.
// Returns ErrEmpty if nothing survives sanitization.
func Parse(raw string) (*Fragment, error) {
	clean := Sanitize(raw)
	if strings.TrimSpace(clean) == "" {
		return nil, ErrEmpty
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(clean), body)
	if err != nil {
		return nil, err
	}

	var blocks []Block
	var loose []Span // top-level text outside any block element
	flushLoose := func() {
		if spans := trimSpans(loose); len(spans) > 0 {
			blocks = append(blocks, Block{Kind: BlockParagraph, Spans: spans})
		}
		loose = nil
	}

	for _, n := range nodes {
		walkTop(n, &blocks, &loose, flushLoose)
	}
	flushLoose()

	if len(blocks) == 0 {
		return nil, ErrEmpty
	}
	return &Fragment{HTML: clean, Blocks: blocks}, nil
}

// walkTop dispatches a top-level node to a block or to the loose span
// accumulator.
func walkTop(n *html.Node, blocks *[]Block, loose *[]Span, flushLoose func()) {
	switch n.Type {
	case html.TextNode:
		if t := collapseSpace(n.Data); t != "" {
			*loose = append(*loose, Span{Text: t})
		}
		return
	case html.ElementNode:
		// handled below
	default:
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2:
		flushLoose()
		level := 1
		if n.DataAtom == atom.H2 {
			level = 2
		}
		if spans := trimSpans(inlineSpans(n, false)); len(spans) > 0 {
			*blocks = append(*blocks, Block{Kind: BlockHeading, Level: level, Spans: spans})
		}
	case atom.P:
		flushLoose()
		if spans := trimSpans(inlineSpans(n, false)); len(spans) > 0 {
			*blocks = append(*blocks, Block{Kind: BlockParagraph, Spans: spans})
		}
	case atom.Ul:
		flushLoose()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkTop(c, blocks, loose, flushLoose)
		}
	case atom.Li:
		flushLoose()
		if spans := trimSpans(inlineSpans(n, false)); len(spans) > 0 {
			*blocks = append(*blocks, Block{Kind: BlockListItem, Spans: spans})
		}
	case atom.Br:
		// A top-level break stays a line break inside the surrounding
		// loose paragraph, it does not split it in two.
		*loose = append(*loose, Span{Break: true})
	case atom.Strong:
		*loose = append(*loose, inlineSpans(n, true)...)
	default:
		// Not on the allowlist; the sanitizer already dropped the tag,
		// but keep any text the parser attached under it.
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkTop(c, blocks, loose, flushLoose)
		}
	}
}

// inlineSpans collects the inline content of a block element.
func inlineSpans(n *html.Node, strong bool) []Span {
	var spans []Span
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			if t := collapseSpace(c.Data); t != "" {
				spans = append(spans, Span{Text: t, Strong: strong})
			}
		case c.Type == html.ElementNode && c.DataAtom == atom.Br:
			spans = append(spans, Span{Break: true})
		case c.Type == html.ElementNode && c.DataAtom == atom.Strong:
			spans = append(spans, inlineSpans(c, true)...)
		case c.Type == html.ElementNode:
			spans = append(spans, inlineSpans(c, strong)...)
		}
	}
	return spans
}

// trimSpans drops leading and trailing breaks and returns nil for
// all-whitespace content.
func trimSpans(spans []Span) []Span {
	start, end := 0, len(spans)
	for start < end && spans[start].Break {
		start++
	}
	for end > start && spans[end-1].Break {
		end--
	}
	spans = spans[start:end]
	for _, s := range spans {
		if !s.Break && strings.TrimSpace(s.Text) != "" {
			return spans
		}
	}
	return nil
}

// collapseSpace folds runs of whitespace into single spaces. Boundary
// whitespace is kept as a single space so adjacent inline runs do not
// fuse ("Hello <strong>world</strong>" must stay two words).
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if s[0] == ' ' || s[0] == '\n' || s[0] == '\t' || s[0] == '\r' {
		out = " " + out
	}
	last := s[len(s)-1]
	if last == ' ' || last == '\n' || last == '\t' || last == '\r' {
		out += " "
	}
	return out
}
