package service

import (
	"context"

	"github.com/smallbiznis/invoicer/internal/invoice/calc"
	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/money"
	"github.com/smallbiznis/invoicer/internal/orgcontext"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
)

// Preview prices editor rows without touching storage. Rows may be
// incomplete; an empty description or a zero quantity is fine here.
// Rows are priced exactly as Create would store them, so a null rate is
// tax free; the org default is only reported for the editor's new rows.
func (s *Service) Preview(ctx context.Context, req domain.PreviewRequest) (domain.PreviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return domain.PreviewResponse{}, err
	}

	items := make([]calc.Item, 0, len(req.Items))
	for i, row := range req.Items {
		if err := checkRate(i, row.TaxRate); err != nil {
			return domain.PreviewResponse{}, err
		}
		items = append(items, calc.Item{
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			TaxRate:   row.TaxRate,
		})
	}

	currency, defaultRate, err := s.previewDefaults(ctx, req.Currency)
	if err != nil {
		return domain.PreviewResponse{}, err
	}

	totals := calc.Calculate(items)
	lines := make([]domain.PreviewLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.PreviewLine{
			LineTotal:        item.LineTotal(),
			TaxAmount:        item.TaxAmount(),
			LineTotalWithTax: item.LineTotalWithTax(),
		})
	}

	return domain.PreviewResponse{
		Currency:       currency,
		DefaultTaxRate: defaultRate,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Total:          totals.Total,
		Formatted: map[string]string{
			"subtotal": money.New(totals.Subtotal, currency).String(),
			"tax":      money.New(totals.Tax, currency).String(),
			"total":    money.New(totals.Total, currency).String(),
		},
		Lines: lines,
	}, nil
}

// previewDefaults picks the display currency: a supported requested code
// wins, then the organization's currency, then the configured default.
func (s *Service) previewDefaults(ctx context.Context, requested string) (string, taxdomain.Rate, error) {
	rate := taxdomain.Unspecified()
	currency := ""
	if money.IsSupported(requested) {
		currency = money.Normalize(requested)
	}

	if orgID, ok := orgcontext.OrgIDFromContext(ctx); ok {
		if currency == "" {
			resolved, err := s.currency.Currency(ctx, orgID)
			if err != nil {
				return "", rate, err
			}
			currency = resolved
		}
		def, err := s.taxes.DefaultRate(ctx, orgID)
		if err != nil {
			return "", rate, err
		}
		rate = def
	}

	if currency == "" {
		currency = money.Normalize(s.config.Get().DefaultCurrency)
	}
	return currency, rate, nil
}
