package service

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ConvertEstimate creates a draft invoice from an estimate. Items, dates,
// currency and the customer location are copied; totals are derived again
// from the copied items. The estimate itself is left untouched.
func (s *Service) ConvertEstimate(ctx context.Context, estimateID string) (domain.Document, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Document{}, err
	}
	id, err := parseID(estimateID, domain.ErrInvalidDocumentID)
	if err != nil {
		return domain.Document{}, err
	}

	estimate, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Document{}, err
	}
	if estimate == nil {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	if estimate.Type != domain.DocumentTypeEstimate {
		return domain.Document{}, domain.ErrInvalidConversion
	}

	now := s.clock.Now()
	sourceID := estimate.ID
	invoice := domain.Document{
		ID:               s.genID.Generate(),
		ULID:             ulid.Make().String(),
		OrgID:            estimate.OrgID,
		CustomerID:       estimate.CustomerID,
		LocationID:       estimate.LocationID,
		Type:             domain.DocumentTypeInvoice,
		Status:           domain.DocumentStatusDraft,
		Currency:         estimate.Currency,
		IssuedAt:         estimate.IssuedAt,
		DueAt:            estimate.DueAt,
		Notes:            estimate.Notes,
		SourceEstimateID: &sourceID,
		Metadata:         datatypes.JSONMap{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	invoice.Items = make([]domain.LineItem, 0, len(estimate.Items))
	for _, item := range estimate.Items {
		invoice.Items = append(invoice.Items, domain.LineItem{
			ID:          s.genID.Generate(),
			OrgID:       invoice.OrgID,
			DocumentID:  invoice.ID,
			Position:    item.Position,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			CreatedAt:   now,
		})
	}
	invoice.Recalculate()

	if err := s.saveNumbered(ctx, &invoice, nil); err != nil {
		return domain.Document{}, err
	}

	s.metrics.RecordConversion(ctx)
	s.metrics.RecordDocumentCreated(ctx, string(invoice.Type), invoice.Currency, invoice.Total)
	s.log.Info("document.converted",
		zap.String("org_id", invoice.OrgID.String()),
		zap.String("estimate_id", estimate.ID.String()),
		zap.String("estimate_number", estimate.InvoiceNumber),
		zap.String("document_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int64("total", invoice.Total),
	)
	return invoice, nil
}
