package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	issued := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	notes := "Thank you for your business <3"
	doc := domain.Document{
		InvoiceNumber: "INV-2026-10-0001",
		Type:          domain.DocumentTypeInvoice,
		Status:        domain.DocumentStatusDraft,
		Currency:      "INR",
		IssuedAt:      &issued,
		Notes:         &notes,
		Items: []domain.LineItem{
			{Description: "Consulting <b>hours</b>", Quantity: 10, UnitPrice: 750, TaxRate: taxdomain.PercentInt(18)},
			{Description: "Travel", Quantity: 1, UnitPrice: 1234567, TaxRate: taxdomain.Unspecified()},
		},
	}
	doc.Recalculate()

	return Input{
		Document:     doc,
		Organization: Party{Name: "Acme Pvt Ltd", Address: []string{"MG Road", "Bengaluru"}},
		Customer:     Party{Name: "Globex", Email: "billing@globex.test"},
		ShipTo:       &Party{Name: "Globex Warehouse", Address: []string{"Plot 7"}},
		AccentColor:  "red; background: url(x)",
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := New().RenderHTML(sampleInput())
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Invoice</h1>")
	assert.Contains(t, html, "INV-2026-10-0001")
	assert.Contains(t, html, "₹12,420.67")
	assert.Contains(t, html, "₹13.50")
	assert.Contains(t, html, "₹12,434.17")
	assert.Contains(t, html, "18%")
	assert.Contains(t, html, "2026-10-01")
	assert.Contains(t, html, "Globex Warehouse")
	assert.Contains(t, html, "Consulting &lt;b&gt;hours&lt;/b&gt;")
	assert.NotContains(t, html, "url(x)")
	assert.Contains(t, html, defaultAccent)
}

func TestRenderHTMLEstimateTitle(t *testing.T) {
	input := sampleInput()
	input.Document.Type = domain.DocumentTypeEstimate
	input.ShipTo = nil

	html, err := NewHTMLRenderer().RenderHTML(input)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Estimate</h1>")
	assert.False(t, strings.Contains(html, "Ship to"))
}

func TestRenderPDF(t *testing.T) {
	out, err := New().RenderPDF(sampleInput())
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestSanitizeColor(t *testing.T) {
	assert.Equal(t, "#ff0000", sanitizeColor(" #ff0000 "))
	assert.Equal(t, defaultAccent, sanitizeColor(""))
	assert.Equal(t, defaultAccent, sanitizeColor("blue"))
}
