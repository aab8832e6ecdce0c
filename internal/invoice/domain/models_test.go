package domain

import (
	"testing"
	"time"

	"github.com/smallbiznis/invoicer/internal/invoice/calc"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculateOverwritesTotals(t *testing.T) {
	doc := Document{
		Subtotal: 1,
		Tax:      2,
		Total:    99,
		Items: []LineItem{
			{Quantity: 2, UnitPrice: 1000, TaxRate: taxdomain.PercentInt(10)},
			{Quantity: 1, UnitPrice: 1500, TaxRate: taxdomain.PercentInt(20)},
		},
	}

	got := doc.Recalculate()
	want := calc.Totals{Subtotal: 3500, Tax: 500, Total: 4000}
	assert.Equal(t, want, got)
	assert.Equal(t, want, doc.Totals())

	assert.Equal(t, want, doc.Recalculate())

	doc.Items = nil
	assert.Equal(t, calc.Zero(), doc.Recalculate())
}

func TestLineItemDerivedValues(t *testing.T) {
	item := LineItem{Quantity: 10, UnitPrice: 750, TaxRate: taxdomain.PercentInt(18)}
	assert.Equal(t, int64(7500), item.LineTotal())
	assert.Equal(t, int64(1350), item.TaxAmount())
	assert.Equal(t, int64(8850), item.LineTotalWithTax())

	item.TaxRate = taxdomain.Unspecified()
	assert.Equal(t, int64(0), item.TaxAmount())
}

func TestTransition(t *testing.T) {
	at := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		docType DocumentType
		from    DocumentStatus
		to      DocumentStatus
		ok      bool
	}{
		{name: "send draft", docType: DocumentTypeInvoice, from: DocumentStatusDraft, to: DocumentStatusSent, ok: true},
		{name: "pay sent invoice", docType: DocumentTypeInvoice, from: DocumentStatusSent, to: DocumentStatusPaid, ok: true},
		{name: "pay sent estimate", docType: DocumentTypeEstimate, from: DocumentStatusSent, to: DocumentStatusPaid},
		{name: "pay draft", docType: DocumentTypeInvoice, from: DocumentStatusDraft, to: DocumentStatusPaid},
		{name: "void draft", docType: DocumentTypeEstimate, from: DocumentStatusDraft, to: DocumentStatusVoid, ok: true},
		{name: "void sent", docType: DocumentTypeInvoice, from: DocumentStatusSent, to: DocumentStatusVoid, ok: true},
		{name: "void paid", docType: DocumentTypeInvoice, from: DocumentStatusPaid, to: DocumentStatusVoid},
		{name: "resend", docType: DocumentTypeInvoice, from: DocumentStatusSent, to: DocumentStatusSent},
		{name: "back to draft", docType: DocumentTypeInvoice, from: DocumentStatusSent, to: DocumentStatusDraft},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := Document{Type: tc.docType, Status: tc.from}
			err := doc.Transition(tc.to, at)
			if !tc.ok {
				require.ErrorIs(t, err, ErrInvalidStatusTransition)
				assert.Equal(t, tc.from, doc.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, doc.Status)
			assert.Equal(t, at, doc.UpdatedAt)
		})
	}
}

func TestEditable(t *testing.T) {
	assert.True(t, (&Document{Status: DocumentStatusDraft}).Editable())
	assert.False(t, (&Document{Status: DocumentStatusSent}).Editable())
}
