package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Field is a labelled value printed under the document title.
type Field struct {
	Label string
	Value string
}

// Document is a single-column printable sheet.
type Document struct {
	Title  string
	Fields []Field
	Body   string
	Table  *Table
}

// RenderPDF lays the document out on A4 pages.
func RenderPDF(doc Document) ([]byte, error) {
	if doc.Table != nil {
		if err := doc.Table.validate(); err != nil {
			return nil, err
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.MultiCell(0, 8, tr(doc.Title), "", "L", false)
		pdf.Ln(3)
	}

	for _, field := range doc.Fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 6, tr(field.Label), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, tr(field.Value), "", "L", false)
	}

	if doc.Body != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 5.5, tr(doc.Body), "", "L", false)
	}

	if doc.Table != nil {
		pdf.Ln(4)
		width := 180.0 / float64(len(doc.Table.Columns))
		pdf.SetFont("Arial", "B", 9)
		for _, column := range doc.Table.Columns {
			pdf.CellFormat(width, 7, tr(column), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, record := range doc.Table.Records {
			for _, value := range record {
				pdf.CellFormat(width, 6, tr(value), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
