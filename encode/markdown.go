package encode

import (
	"strings"

	"github.com/hazyhaar/docport/fragment"
)

// Markdown serializes a fragment block sequence to Markdown.
//
// Headings become "# " / "## " lines followed by a blank line, paragraphs
// are separated by blank lines with <br> rendered as a plain newline, list
// items become "* " lines, and strong runs are wrapped in "**". The block
// model guarantees no markup survives into the output.
func Markdown(blocks []fragment.Block) string {
	var sb strings.Builder
	prevList := false

	for _, b := range blocks {
		switch b.Kind {
		case fragment.BlockHeading:
			if prevList {
				sb.WriteByte('\n')
			}
			sb.WriteString(strings.Repeat("#", b.Level))
			sb.WriteByte(' ')
			sb.WriteString(spanText(b.Spans, true))
			sb.WriteString("\n\n")
			prevList = false
		case fragment.BlockListItem:
			sb.WriteString("* ")
			sb.WriteString(spanText(b.Spans, true))
			sb.WriteByte('\n')
			prevList = true
		default:
			if prevList {
				sb.WriteByte('\n')
			}
			sb.WriteString(spanText(b.Spans, true))
			sb.WriteString("\n\n")
			prevList = false
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// spanText flattens inline spans. With markdown=true strong runs get
// "**" delimiters and breaks become bare newlines.
func spanText(spans []fragment.Span, markdown bool) string {
	var sb strings.Builder
	for _, s := range spans {
		if s.Break {
			sb.WriteByte('\n')
			continue
		}
		if markdown && s.Strong {
			if strings.HasPrefix(s.Text, " ") {
				sb.WriteByte(' ')
			}
			sb.WriteString("**")
			sb.WriteString(strings.TrimSpace(s.Text))
			sb.WriteString("**")
			// Re-add the boundary spaces the delimiters displaced.
			if strings.HasSuffix(s.Text, " ") {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.WriteString(s.Text)
	}
	return strings.TrimSpace(sb.String())
}
