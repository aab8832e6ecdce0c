// Package domain contains the document aggregate shared by invoices and
// estimates.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicer/internal/invoice/calc"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"gorm.io/datatypes"
)

// DocumentType distinguishes invoices from estimates.
type DocumentType string

const (
	DocumentTypeInvoice  DocumentType = "invoice"
	DocumentTypeEstimate DocumentType = "estimate"
)

func (t DocumentType) Valid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeEstimate
}

// DocumentStatus represents the document lifecycle.
type DocumentStatus string

const (
	DocumentStatusDraft DocumentStatus = "draft"
	DocumentStatusSent  DocumentStatus = "sent"
	DocumentStatusPaid  DocumentStatus = "paid"
	DocumentStatusVoid  DocumentStatus = "void"
)

// Document is an invoice or an estimate. Subtotal, Tax and Total are
// always derived from Items by Recalculate.
type Document struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	ULID             string            `gorm:"column:ulid;type:varchar(26);not null;uniqueIndex:ux_documents_ulid" json:"ulid"`
	OrgID            snowflake.ID      `gorm:"not null;uniqueIndex:ux_documents_org_number,priority:1" json:"organization_id"`
	InvoiceNumber    string            `gorm:"type:varchar(64);not null;uniqueIndex:ux_documents_org_number,priority:2" json:"invoice_number"`
	CustomerID       snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	LocationID       *snowflake.ID     `gorm:"index" json:"location_id,omitempty"`
	Type             DocumentType      `gorm:"type:varchar(16);not null" json:"type"`
	Status           DocumentStatus    `gorm:"type:varchar(16);not null;default:draft" json:"status"`
	Currency         string            `gorm:"type:varchar(3);not null" json:"currency"`
	Subtotal         int64             `gorm:"not null;default:0" json:"subtotal"`
	Tax              int64             `gorm:"not null;default:0" json:"tax"`
	Total            int64             `gorm:"not null;default:0" json:"total"`
	IssuedAt         *time.Time        `json:"issued_at"`
	DueAt            *time.Time        `json:"due_at"`
	Notes            *string           `gorm:"type:text" json:"notes,omitempty"`
	SourceEstimateID *snowflake.ID     `gorm:"index" json:"source_estimate_id,omitempty"`
	SentAt           *time.Time        `json:"sent_at,omitempty"`
	PaidAt           *time.Time        `json:"paid_at,omitempty"`
	VoidedAt         *time.Time        `json:"voided_at,omitempty"`
	Metadata         datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt        time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null" json:"updated_at"`

	Items []LineItem `gorm:"foreignKey:DocumentID" json:"items"`
}

// TableName sets the database table name.
func (Document) TableName() string { return "documents" }

// Totals returns the stored totals.
func (d *Document) Totals() calc.Totals {
	return calc.Totals{Subtotal: d.Subtotal, Tax: d.Tax, Total: d.Total}
}

// Recalculate overwrites the stored totals from the current items.
func (d *Document) Recalculate() calc.Totals {
	totals := calc.CalculateLines(d.Items)
	d.Subtotal = totals.Subtotal
	d.Tax = totals.Tax
	d.Total = totals.Total
	return totals
}

// Editable reports whether items, dates and notes may still change.
func (d *Document) Editable() bool {
	return d.Status == DocumentStatusDraft
}

// Transition moves the document to status, stamping the matching
// timestamp. Allowed moves are draft→sent, sent→paid (invoices only) and
// draft|sent→void.
func (d *Document) Transition(to DocumentStatus, at time.Time) error {
	switch {
	case d.Status == DocumentStatusDraft && to == DocumentStatusSent:
		d.SentAt = &at
	case d.Status == DocumentStatusSent && to == DocumentStatusPaid && d.Type == DocumentTypeInvoice:
		d.PaidAt = &at
	case (d.Status == DocumentStatusDraft || d.Status == DocumentStatusSent) && to == DocumentStatusVoid:
		d.VoidedAt = &at
	default:
		return ErrInvalidStatusTransition
	}
	d.Status = to
	d.UpdatedAt = at
	return nil
}

// LineItem is one row of a document. Items are owned by exactly one
// document and replaced wholesale on edit.
type LineItem struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID   `gorm:"not null;index" json:"-"`
	DocumentID  snowflake.ID   `gorm:"not null;index" json:"document_id"`
	Position    int            `gorm:"not null;default:0" json:"position"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Quantity    int64          `gorm:"not null" json:"quantity"`
	UnitPrice   int64          `gorm:"not null" json:"unit_price"`
	TaxRate     taxdomain.Rate `gorm:"type:numeric(9,4)" json:"tax_rate"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (LineItem) TableName() string { return "document_items" }

func (i LineItem) CalcItem() calc.Item {
	return calc.Item{Quantity: i.Quantity, UnitPrice: i.UnitPrice, TaxRate: i.TaxRate}
}

func (i LineItem) LineTotal() int64        { return i.CalcItem().LineTotal() }
func (i LineItem) TaxAmount() int64        { return i.CalcItem().TaxAmount() }
func (i LineItem) LineTotalWithTax() int64 { return i.CalcItem().LineTotalWithTax() }
