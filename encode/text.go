package encode

import (
	"strings"

	"github.com/hazyhaar/docport/fragment"
)

// PlainText serializes a fragment block sequence to plain text: one block
// per line, <br> as a newline, headings as bare text, no markup of any
// kind. Leading and trailing whitespace is trimmed.
func PlainText(blocks []fragment.Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t := spanText(b.Spans, false); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
