// Package formatter renders test cases and data pools into
// downloadable document formats.
package formatter

const (
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVContentType   = "text/csv"
	PDFContentType   = "application/pdf"
	JavaContentType  = "text/x-java-source"

	ExcelFileExtension = ".xlsx"
	CSVFileExtension   = ".csv"
	PDFFileExtension   = ".pdf"
	JavaFileExtension  = ".java"
)
