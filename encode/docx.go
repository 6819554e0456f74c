package encode

import (
	"bytes"
	"strings"
)

// utf8BOM makes Word detect the encoding before it parses the envelope.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const wordHeader = `<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word" xmlns="http://www.w3.org/TR/REC-html40">
<head>
<meta charset="utf-8">
<!--[if gte mso 9]>
<xml>
<w:WordDocument>
<w:View>Print</w:View>
<w:Zoom>100</w:Zoom>
<w:DoNotOptimizeForBrowser/>
</w:WordDocument>
</xml>
<![endif]-->
<style>
body { font-family: Calibri, Arial, sans-serif; font-size: 11pt; line-height: 1.5; }
</style>
</head>
<body>
`

const wordFooter = "\n</body>\n</html>\n"

// WordHTML wraps a sanitized fragment in the legacy Word HTML envelope:
// UTF-8 BOM, Office XML namespaces, and the conditional comment that
// forces Print view. This is a compatibility shim — Word opens it through
// its HTML import path, it is not OOXML packaging.
func WordHTML(fragmentHTML, title string) []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	header := wordHeader
	if title != "" {
		header = strings.Replace(header, "<meta charset=\"utf-8\">",
			"<meta charset=\"utf-8\">\n<title>"+htmlEscape(title)+"</title>", 1)
	}
	buf.WriteString(header)
	buf.WriteString(fragmentHTML)
	buf.WriteString(wordFooter)
	return buf.Bytes()
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func htmlEscape(s string) string {
	return htmlEscaper.Replace(s)
}
