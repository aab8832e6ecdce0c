package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"github.com/smallbiznis/invoicer/pkg/db/pagination"
)

// LineItemInput is a line item as submitted by the editor.
type LineItemInput struct {
	Description string         `json:"description" validate:"required,max=1000"`
	Quantity    int64          `json:"quantity" validate:"gte=1"`
	UnitPrice   int64          `json:"unit_price" validate:"gte=0"`
	TaxRate     taxdomain.Rate `json:"tax_rate"`
}

type CreateDocumentRequest struct {
	Type       DocumentType    `json:"type" validate:"required,oneof=invoice estimate"`
	CustomerID string          `json:"customer_id" validate:"required"`
	LocationID *string         `json:"location_id"`
	IssuedAt   *time.Time      `json:"issued_at"`
	DueAt      *time.Time      `json:"due_at"`
	Notes      *string         `json:"notes" validate:"omitempty,max=5000"`
	Items      []LineItemInput `json:"items" validate:"max=500,dive"`
	Metadata   map[string]any  `json:"metadata"`
}

// UpdateDocumentRequest replaces the editable parts of a draft. Items are
// replaced wholesale; nil dates clear the stored dates, except that a nil
// due date follows the issue date by the default payment terms, as on
// create.
type UpdateDocumentRequest struct {
	ID         string          `json:"-"`
	LocationID *string         `json:"location_id"`
	IssuedAt   *time.Time      `json:"issued_at"`
	DueAt      *time.Time      `json:"due_at"`
	Notes      *string         `json:"notes" validate:"omitempty,max=5000"`
	Items      []LineItemInput `json:"items" validate:"max=500,dive"`
}

type ListDocumentRequest struct {
	Type       string
	Status     string
	CustomerID string
	PageToken  string
	PageSize   int
}

type ListDocumentResponse struct {
	pagination.PageInfo
	Documents []Document `json:"documents"`
}

// PreviewItem is an in-progress editor row. Descriptions may still be
// empty and quantities zero.
type PreviewItem struct {
	Quantity  int64          `json:"quantity" validate:"gte=0"`
	UnitPrice int64          `json:"unit_price" validate:"gte=0"`
	TaxRate   taxdomain.Rate `json:"tax_rate"`
}

type PreviewRequest struct {
	Currency string        `json:"currency"`
	Items    []PreviewItem `json:"items" validate:"max=500,dive"`
}

type PreviewLine struct {
	LineTotal        int64 `json:"line_total"`
	TaxAmount        int64 `json:"tax_amount"`
	LineTotalWithTax int64 `json:"line_total_with_tax"`
}

type PreviewResponse struct {
	Currency       string            `json:"currency"`
	// DefaultTaxRate is the organization's default tax definition, offered
	// to the editor for new rows. Null when none is configured.
	DefaultTaxRate taxdomain.Rate    `json:"default_tax_rate"`
	Subtotal       int64             `json:"subtotal"`
	Tax            int64             `json:"tax"`
	Total          int64             `json:"total"`
	Formatted      map[string]string `json:"formatted"`
	Lines          []PreviewLine     `json:"lines"`
}

//go:generate mockgen -source=service.go -destination=./mocks/mock_service.go -package=mocks
type Service interface {
	Create(ctx context.Context, req CreateDocumentRequest) (Document, error)
	Update(ctx context.Context, req UpdateDocumentRequest) (Document, error)
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, req ListDocumentRequest) (ListDocumentResponse, error)
	Delete(ctx context.Context, id string) error
	Recalculate(ctx context.Context, id string) (Document, error)
	ConvertEstimate(ctx context.Context, estimateID string) (Document, error)
	MarkSent(ctx context.Context, id string) (Document, error)
	MarkPaid(ctx context.Context, id string) (Document, error)
	Void(ctx context.Context, id string) (Document, error)
	RenderHTML(ctx context.Context, id string) (string, error)
	RenderPDF(ctx context.Context, id string) ([]byte, error)
	Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error)
}

// CurrencyResolver returns the currency new documents of an organization
// are issued in.
type CurrencyResolver interface {
	Currency(ctx context.Context, orgID snowflake.ID) (string, error)
}
