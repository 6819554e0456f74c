package encode

import (
	"bytes"
	"strings"
	"testing"
)

func TestWordHTMLEnvelope(t *testing.T) {
	out := WordHTML("<h1>Doc</h1><p>body</p>", "Doc")

	if !bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("missing UTF-8 BOM prefix")
	}

	s := string(out)
	for _, want := range []string{
		`xmlns:o="urn:schemas-microsoft-com:office:office"`,
		`xmlns:w="urn:schemas-microsoft-com:office:word"`,
		"<!--[if gte mso 9]>",
		"<w:View>Print</w:View>",
		"<h1>Doc</h1>",
		"<title>Doc</title>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("envelope missing %q", want)
		}
	}
}

func TestWordHTMLTitleEscaped(t *testing.T) {
	out := string(WordHTML("<p>x</p>", `a<b>&"c"`))
	if strings.Contains(out, "<title>a<b>") {
		t.Fatal("title not escaped")
	}
	if !strings.Contains(out, "<title>a&lt;b&gt;&amp;&quot;c&quot;</title>") {
		t.Fatalf("escaped title wrong: %q", out)
	}
}

func TestDocxContentType(t *testing.T) {
	// Legacy Word MIME: the envelope rides Word's HTML import path.
	if got := FormatDocx.ContentType(); got != "application/msword" {
		t.Fatalf("ContentType = %q", got)
	}
}
