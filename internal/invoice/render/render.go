// Package render turns finished documents into HTML and PDF. It only reads
// computed totals and never recalculates them.
package render

import (
	"time"

	"github.com/smallbiznis/invoicer/internal/invoice/domain"
)

// Party is a name and address block printed on a document.
type Party struct {
	Name    string
	Email   string
	Address []string
}

type Input struct {
	Document     domain.Document
	Organization Party
	Customer     Party
	// ShipTo is the customer location the document is issued for, if any.
	ShipTo *Party
	// AccentColor is a #rrggbb color for headings.
	AccentColor string
}

type Renderer interface {
	RenderHTML(input Input) (string, error)
	RenderPDF(input Input) ([]byte, error)
}

type renderer struct {
	html *HTMLRenderer
	pdf  *PDFRenderer
}

// New returns a renderer producing both formats.
func New() Renderer {
	return &renderer{html: NewHTMLRenderer(), pdf: NewPDFRenderer()}
}

func (r *renderer) RenderHTML(input Input) (string, error) { return r.html.RenderHTML(input) }

func (r *renderer) RenderPDF(input Input) ([]byte, error) { return r.pdf.RenderPDF(input) }

func title(docType domain.DocumentType) string {
	if docType == domain.DocumentTypeEstimate {
		return "Estimate"
	}
	return "Invoice"
}

func formatDate(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02")
}
