package encode

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"pdf", FormatPDF},
		{"PDF", FormatPDF},
		{".docx", FormatDocx},
		{"txt", FormatTXT},
		{"text", FormatTXT},
		{"jpg", FormatJPG},
		{"jpeg", FormatJPG},
		{"png", FormatPNG},
		{"md", FormatMD},
		{"markdown", FormatMD},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFormat("xlsx"); err == nil {
		t.Error("expected error for unsupported target")
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		source string
		target Format
		want   string
	}{
		{"report.pdf", FormatMD, "report.md"},
		{"report.docx", FormatPDF, "report.pdf"},
		{"archive.tar.gz", FormatTXT, "archive.tar.txt"},
		{"noext", FormatPNG, "noext.png"},
		{"", FormatJPG, "document.jpg"},
		{"UPPER.TXT", FormatDocx, "UPPER.docx"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.source, tt.target); got != tt.want {
			t.Errorf("OutputName(%q, %s) = %q, want %q", tt.source, tt.target, got, tt.want)
		}
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	if len(formats) != 6 {
		t.Fatalf("expected 6 formats, got %d: %v", len(formats), formats)
	}
}
