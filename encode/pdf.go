package encode

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pageEpsilon absorbs float rounding when the scaled image height lands
// exactly on a page boundary. A surface of exactly N page heights must
// produce N pages, never a trailing blank one.
const pageEpsilon = 0.01 // mm

// A4 portrait dimensions, matching gofpdf's "A4" page size.
const (
	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

// PaginatePDF slices a full-page JPEG capture of the rendered surface
// across as many A4 portrait pages as its height requires.
//
// The image is registered once at full page width with proportional
// height. Page 1 places it at offset 0; every following page places the
// same image shifted up by the height already shown. No per-page
// re-rasterization happens — the visual effect is one tall image cut into
// page-sized strips. Page count is floor(H/P)+1, or exactly H/P when the
// height is a whole multiple of the page height.
//
// The assembled document is validated with pdfcpu before being returned,
// so a malformed payload surfaces as an encode error instead of a broken
// download.
func PaginatePDF(jpeg []byte, pxWidth, pxHeight int) ([]byte, error) {
	if len(jpeg) == 0 {
		return nil, fmt.Errorf("encode/pdf: empty capture")
	}
	if pxWidth <= 0 || pxHeight <= 0 {
		return nil, fmt.Errorf("encode/pdf: invalid surface dimensions %dx%d", pxWidth, pxHeight)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	pageW, pageH := pdf.GetPageSize()
	imgW := pageW
	imgH := pageW * float64(pxHeight) / float64(pxWidth)

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("surface", opts, bytes.NewReader(jpeg))

	for offset := 0.0; ; offset += pageH {
		pdf.AddPage()
		pdf.ImageOptions("surface", 0, -offset, imgW, imgH, false, opts, 0, "")
		if imgH-(offset+pageH) <= pageEpsilon {
			break
		}
	}

	if pdf.Err() {
		return nil, fmt.Errorf("encode/pdf: %v", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode/pdf: output: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.Validate(bytes.NewReader(buf.Bytes()), conf); err != nil {
		return nil, fmt.Errorf("encode/pdf: validate: %w", err)
	}

	return buf.Bytes(), nil
}

// PDFPageCount returns the number of pages a surface of the given pixel
// height produces, using the same boundary arithmetic as PaginatePDF.
// The orchestrator reports it alongside the assembled document.
func PDFPageCount(pxWidth, pxHeight int) int {
	if pxWidth <= 0 || pxHeight <= 0 {
		return 0
	}
	imgH := a4WidthMM * float64(pxHeight) / float64(pxWidth)

	pages := 1
	for offset := a4HeightMM; imgH-offset > pageEpsilon; offset += a4HeightMM {
		pages++
	}
	return pages
}
