package formatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"

	"github.com/segaai/testcase-backend/internal/entity"
)

const (
	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Relative paths where the TTF font may live.
	// In Docker runtime we copy fonts to /app/ttf,
	// so for the compiled binary the path is ./ttf/DejaVuSans.ttf.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// Source-relative path (useful when running from repo root with `go run`).
	pdfFontSourcePath = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath tries to find the DejaVuSans font in
// runtime layout (next to the binary) or source layout.
func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}

	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}

	return ""
}

// FormatTestCase renders a printable test case document: title, base
// fields, then the numbered steps.
func (f *PDFFormatter) FormatTestCase(testCase *entity.TestCase) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// The step texts are Russian, so a UTF-8 capable font is needed;
	// fall back to the builtin Arial when the bundled TTF is missing.
	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, fmt.Sprintf("%s — %s", testCase.Number, testCase.Name))
	pdf.Ln(14)

	pdf.SetFont(fontName, "", 11)
	_, lineHeight := pdf.GetFontSize()

	writeField := func(label, value string) {
		pdf.SetFont(fontName, "B", 11)
		pdf.Cell(45, lineHeight*1.5, label)
		pdf.SetFont(fontName, "", 11)
		pdf.MultiCell(0, lineHeight*1.5, value, "", "", false)
	}

	writeField("Creation Date", testCase.CreationDate.Format("2006-01-02"))
	writeField("Author", testCase.Author)
	writeField("Status", string(testCase.Status))
	writeField("Precondition", testCase.Precondition)
	writeField("Postcondition", testCase.Postcondition)
	pdf.Ln(6)

	pdf.SetFont(fontName, "B", 13)
	pdf.Cell(0, 10, "Steps")
	pdf.Ln(10)

	pdf.SetFont(fontName, "", 11)
	for _, step := range testCase.Steps {
		pdf.SetFont(fontName, "B", 11)
		pdf.MultiCell(0, lineHeight*1.5, fmt.Sprintf("%d. %s", step.StepNumber, step.Action), "", "", false)
		pdf.SetFont(fontName, "", 11)
		pdf.MultiCell(0, lineHeight*1.5, step.ExpectedResult, "", "", false)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
