package fragment

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBasicStructure(t *testing.T) {
	frag, err := Parse(`<h1>Title</h1><p>Body text</p><ul><li>one</li><li>two</li></ul>`)
	if err != nil {
		t.Fatal(err)
	}

	kinds := make([]string, 0, len(frag.Blocks))
	for _, b := range frag.Blocks {
		kinds = append(kinds, b.Kind)
	}
	want := []string{BlockHeading, BlockParagraph, BlockListItem, BlockListItem}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("block %d: got %q, want %q", i, kinds[i], want[i])
		}
	}

	if frag.Blocks[0].Level != 1 {
		t.Errorf("h1 level = %d, want 1", frag.Blocks[0].Level)
	}
	if frag.Blocks[0].Text() != "Title" {
		t.Errorf("heading text = %q", frag.Blocks[0].Text())
	}
}

func TestParseHeadingLevels(t *testing.T) {
	frag, err := Parse(`<h1>One</h1><h2>Two</h2>`)
	if err != nil {
		t.Fatal(err)
	}
	if frag.Blocks[0].Level != 1 || frag.Blocks[1].Level != 2 {
		t.Fatalf("levels = %d, %d", frag.Blocks[0].Level, frag.Blocks[1].Level)
	}
}

func TestParseLineBreaks(t *testing.T) {
	frag, err := Parse(`<p>Line one<br/>Line two</p>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(frag.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(frag.Blocks))
	}
	if got := frag.Blocks[0].Text(); got != "Line one\nLine two" {
		t.Fatalf("text = %q, want %q", got, "Line one\nLine two")
	}
}

func TestParseStrong(t *testing.T) {
	frag, err := Parse(`<p>Hello <strong>world</strong> again</p>`)
	if err != nil {
		t.Fatal(err)
	}
	spans := frag.Blocks[0].Spans
	var strongText string
	for _, s := range spans {
		if s.Strong {
			strongText += s.Text
		}
	}
	if strings.TrimSpace(strongText) != "world" {
		t.Fatalf("strong text = %q", strongText)
	}
	if got := frag.Blocks[0].Text(); got != "Hello world again" {
		t.Fatalf("full text = %q", got)
	}
}

func TestParseEmpty(t *testing.T) {
	// WHAT: empty and whitespace-only fragments are terminal errors.
	for _, in := range []string{"", "   ", "\n\t", "<p>   </p>"} {
		if _, err := Parse(in); !errors.Is(err, ErrEmpty) {
			t.Errorf("Parse(%q): expected ErrEmpty, got %v", in, err)
		}
	}
}

func TestParseStripsDisallowedTags(t *testing.T) {
	// WHAT: tags outside the allowlist are a contract violation and are
	// stripped; their text content survives.
	frag, err := Parse(`<div><h3>Not a heading</h3><p>Kept <em>emphasis</em></p></div><script>alert(1)</script>`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(frag.HTML, "<div") || strings.Contains(frag.HTML, "<h3") ||
		strings.Contains(frag.HTML, "<em") || strings.Contains(frag.HTML, "script") {
		t.Fatalf("disallowed tags survived sanitization: %q", frag.HTML)
	}
	var all []string
	for _, b := range frag.Blocks {
		all = append(all, b.Text())
	}
	joined := strings.Join(all, "\n")
	if !strings.Contains(joined, "Kept emphasis") {
		t.Errorf("text of stripped inline tag lost: %q", joined)
	}
	if strings.Contains(joined, "alert") {
		t.Errorf("script body leaked into content: %q", joined)
	}
}

func TestParseLooseText(t *testing.T) {
	// Top-level text outside any block becomes an implicit paragraph.
	frag, err := Parse(`plain text before<p>a paragraph</p>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(frag.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(frag.Blocks))
	}
	if frag.Blocks[0].Kind != BlockParagraph || frag.Blocks[0].Text() != "plain text before" {
		t.Fatalf("loose text block = %+v", frag.Blocks[0])
	}
}

func TestParseTopLevelBreak(t *testing.T) {
	// WHAT: a break between loose top-level text runs keeps them in one
	// paragraph, rendered as a line break — not two paragraphs.
	frag, err := Parse(`Line one<br/>Line two`)
	if err != nil {
		t.Fatal(err)
	}
	if len(frag.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d: %+v", len(frag.Blocks), frag.Blocks)
	}
	if got := frag.Blocks[0].Text(); got != "Line one\nLine two" {
		t.Fatalf("text = %q, want %q", got, "Line one\nLine two")
	}
}

func TestSanitizeDropsAttributes(t *testing.T) {
	out := Sanitize(`<p style="display:none" onclick="x()">safe</p>`)
	if strings.Contains(out, "style") || strings.Contains(out, "onclick") {
		t.Fatalf("attributes survived: %q", out)
	}
	if !strings.Contains(out, "safe") {
		t.Fatalf("content lost: %q", out)
	}
}

func TestParseDeterministic(t *testing.T) {
	// WHAT: parsing the same fragment twice yields identical structure.
	const in = `<h1>T</h1><p>a<br/>b</p><ul><li>x</li></ul>`
	a, err := Parse(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Blocks) != len(b.Blocks) || a.HTML != b.HTML {
		t.Fatal("parse is not deterministic")
	}
}
