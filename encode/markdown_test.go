package encode

import (
	"regexp"
	"strings"
	"testing"

	"github.com/hazyhaar/docport/fragment"
)

func mustParse(t *testing.T, raw string) *fragment.Fragment {
	t.Helper()
	frag, err := fragment.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return frag
}

func TestMarkdownScenario(t *testing.T) {
	// WHAT: the canonical fragment produces "# Title", a blank line,
	// then the paragraph with the break as a bare newline.
	frag := mustParse(t, `<h1>Title</h1><p>Line one<br/>Line two</p>`)
	got := Markdown(frag.Blocks)

	want := "# Title\n\nLine one\nLine two"
	if got != want {
		t.Fatalf("Markdown = %q, want %q", got, want)
	}
}

func TestMarkdownLooseBreak(t *testing.T) {
	// Breaks in unwrapped top-level text map to a newline, not to a
	// paragraph-separating blank line.
	frag := mustParse(t, `Line one<br/>Line two`)
	got := Markdown(frag.Blocks)
	if got != "Line one\nLine two" {
		t.Fatalf("Markdown = %q, want %q", got, "Line one\nLine two")
	}
}

func TestMarkdownHeadings(t *testing.T) {
	frag := mustParse(t, `<h1>One</h1><h2>Two</h2><p>body</p>`)
	got := Markdown(frag.Blocks)
	if !strings.Contains(got, "# One\n\n") {
		t.Errorf("missing h1: %q", got)
	}
	if !strings.Contains(got, "## Two\n\n") {
		t.Errorf("missing h2: %q", got)
	}
}

func TestMarkdownList(t *testing.T) {
	frag := mustParse(t, `<ul><li>first</li><li>second</li></ul>`)
	got := Markdown(frag.Blocks)
	if got != "* first\n* second" {
		t.Fatalf("list = %q", got)
	}
}

func TestMarkdownStrong(t *testing.T) {
	frag := mustParse(t, `<p>plain <strong>bold</strong> tail</p>`)
	got := Markdown(frag.Blocks)
	if got != "plain **bold** tail" {
		t.Fatalf("strong = %q", got)
	}
}

func TestMarkdownNoMarkup(t *testing.T) {
	frag := mustParse(t, `<h1>T</h1><p>a<br/>b</p><ul><li>c</li></ul>`)
	got := Markdown(frag.Blocks)
	if strings.ContainsAny(got, "<>") {
		t.Fatalf("markup leaked into markdown: %q", got)
	}
}

// stripMarkdown removes the syntax Markdown adds, leaving content only.
var mdSyntaxRe = regexp.MustCompile(`(?m)^(#{1,2} |\* )|\*\*`)

func TestMarkdownPreservesContent(t *testing.T) {
	// WHAT: markdown output minus markdown syntax equals the plain-text
	// output (modulo blank-line spacing) — nothing is lost or invented.
	const in = `<h1>Report</h1><p>First line<br/>second line</p><ul><li>alpha</li><li>beta</li></ul><p>Closing <strong>remark</strong></p>`
	frag := mustParse(t, in)

	md := mdSyntaxRe.ReplaceAllString(Markdown(frag.Blocks), "")
	txt := PlainText(frag.Blocks)

	collapse := func(s string) string {
		return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' }), "\n")
	}
	if collapse(md) != collapse(txt) {
		t.Fatalf("content diverged:\nmd  = %q\ntxt = %q", collapse(md), collapse(txt))
	}
}
