package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/recipepipe/core"
)

// PDFRenderer lays a recipe out as a one-column A4 card.
// Images are not embedded.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the PDF bytes.
func (r *PDFRenderer) Render(_ context.Context, recipe *core.Recipe) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(recipe.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	// Core fonts are cp1252; translate so accented recipe text survives.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, tr(recipe.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, tr("Source: "+recipe.URL), "", "L", false)
	if meta := metaLine(recipe); meta != "" {
		pdf.MultiCell(0, 5, tr(meta), "", "L", false)
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	if recipe.Description != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(recipe.Description), "", "L", false)
		pdf.Ln(4)
	}

	renderHeading(pdf, "Ingredients")
	pdf.SetFont("Helvetica", "", 10)
	for _, ing := range recipe.Ingredients {
		pdf.MultiCell(0, 5, tr("• "+ing), "", "L", false)
	}
	pdf.Ln(4)

	renderHeading(pdf, "Directions")
	pdf.SetFont("Helvetica", "", 10)
	for i, step := range recipe.Directions {
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, step)), "", "L", false)
		pdf.Ln(1)
	}

	if len(recipe.Categories) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr("Categories: "+strings.Join(recipe.Categories, ", ")), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func renderHeading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.MultiCell(0, 7, text, "", "L", false)
	pdf.Ln(1)
}
