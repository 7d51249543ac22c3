package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/segaai/testcase-backend/internal/entity"
)

type ExcelFormatter struct{}

func NewExcelFormatter() *ExcelFormatter {
	return &ExcelFormatter{}
}

// FormatTestCase renders a test case into a single-sheet workbook.
// The base fields occupy row 2; steps run from row 2 downwards in the
// last three columns.
func (f *ExcelFormatter) FormatTestCase(testCase *entity.TestCase) ([]byte, error) {
	wb := spreadsheet.New()
	defer wb.Close()

	sheet := wb.AddSheet()
	sheet.SetName("TestCase")

	header := sheet.AddRow()
	for _, title := range []string{
		"Number", "Creation Date", "Name", "Author", "Precondition",
		"Postcondition", "Status", "Step Number", "Action", "Expected Result",
	} {
		header.AddCell().SetString(title)
	}

	base := sheet.AddRow()
	base.Cell("A").SetString(testCase.Number)
	base.Cell("B").SetString(testCase.CreationDate.Format("2006-01-02 15:04:05"))
	base.Cell("C").SetString(testCase.Name)
	base.Cell("D").SetString(testCase.Author)
	base.Cell("E").SetString(testCase.Precondition)
	base.Cell("F").SetString(testCase.Postcondition)
	base.Cell("G").SetString(string(testCase.Status))

	for i, step := range testCase.Steps {
		row := base
		if i > 0 {
			row = sheet.AddRow()
		}
		row.Cell("H").SetNumber(float64(step.StepNumber))
		row.Cell("I").SetString(step.Action)
		row.Cell("J").SetString(step.ExpectedResult)
	}

	widths := []float64{25, 10, 35, 10, 35, 35, 12, 12, 40, 40}
	for i, width := range widths {
		sheet.Column(uint32(i + 1)).SetWidth(measurement.Distance(width) * measurement.Character)
	}

	var buf bytes.Buffer
	if err := wb.Save(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
