package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicer/internal/clock"
	"github.com/smallbiznis/invoicer/internal/config"
	customerdomain "github.com/smallbiznis/invoicer/internal/customer/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/render"
	locationdomain "github.com/smallbiznis/invoicer/internal/location/domain"
	obsmetrics "github.com/smallbiznis/invoicer/internal/observability/metrics"
	"github.com/smallbiznis/invoicer/internal/orgcontext"
	orgdomain "github.com/smallbiznis/invoicer/internal/organization/domain"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"github.com/smallbiznis/invoicer/pkg/db/pagination"
	"github.com/smallbiznis/invoicer/pkg/repository"
	"github.com/smallbiznis/invoicer/pkg/validator"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxTaxRatePercent bounds line item rates well inside numeric(9,4).
const maxTaxRatePercent = 1000

type ServiceParam struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	Customers     customerdomain.Repository
	Locations     repository.Repository[locationdomain.Location]
	Organizations orgdomain.Repository
	Currency      domain.CurrencyResolver
	Taxes         taxdomain.Resolver
	Renderer      render.Renderer
	Clock         clock.Clock
	Config        config.InvoicingConfigSource
	Validator     *validator.Validator
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID         *snowflake.Node
	repo          domain.Repository
	customers     customerdomain.Repository
	locations     repository.Repository[locationdomain.Location]
	organizations orgdomain.Repository
	currency      domain.CurrencyResolver
	taxes         taxdomain.Resolver
	renderer      render.Renderer
	clock         clock.Clock
	config        config.InvoicingConfigSource
	validator     *validator.Validator
	metrics       *obsmetrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:         p.GenID,
		repo:          p.Repo,
		customers:     p.Customers,
		locations:     p.Locations,
		organizations: p.Organizations,
		currency:      p.Currency,
		taxes:         p.Taxes,
		renderer:      p.Renderer,
		clock:         p.Clock,
		config:        p.Config,
		validator:     p.Validator,
		metrics:       p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDocumentRequest) (domain.Document, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Document{}, err
	}

	req.Type = domain.DocumentType(strings.ToLower(strings.TrimSpace(string(req.Type))))
	if !req.Type.Valid() {
		return domain.Document{}, domain.ErrInvalidDocumentType
	}
	if err := s.validator.Struct(req); err != nil {
		return domain.Document{}, err
	}
	if err := validateRates(req.Items); err != nil {
		return domain.Document{}, err
	}

	customerID, err := parseID(req.CustomerID, domain.ErrInvalidCustomer)
	if err != nil {
		return domain.Document{}, err
	}
	locationID, err := parseOptionalID(req.LocationID, domain.ErrInvalidLocation)
	if err != nil {
		return domain.Document{}, err
	}

	currency, err := s.currency.Currency(ctx, orgID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("resolve currency: %w", err)
	}

	now := s.clock.Now()
	issuedAt := utcPtr(req.IssuedAt)
	dueAt := s.dueDate(issuedAt, req.DueAt)

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	doc := domain.Document{
		ID:         s.genID.Generate(),
		ULID:       ulid.Make().String(),
		OrgID:      orgID,
		CustomerID: customerID,
		LocationID: locationID,
		Type:       req.Type,
		Status:     domain.DocumentStatusDraft,
		Currency:   currency,
		IssuedAt:   issuedAt,
		DueAt:      dueAt,
		Notes:      trimOptional(req.Notes),
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	doc.Items = s.buildItems(doc, req.Items, now)
	doc.Recalculate()

	err = s.saveNumbered(ctx, &doc, func(tx *gorm.DB) error {
		return s.checkParties(ctx, tx, orgID, customerID, locationID)
	})
	if err != nil {
		return domain.Document{}, err
	}

	s.metrics.RecordDocumentCreated(ctx, string(doc.Type), doc.Currency, doc.Total)
	s.audit(ctx, "document.created", &doc)
	return doc, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateDocumentRequest) (domain.Document, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Document{}, err
	}
	id, err := parseID(req.ID, domain.ErrInvalidDocumentID)
	if err != nil {
		return domain.Document{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return domain.Document{}, err
	}
	if err := validateRates(req.Items); err != nil {
		return domain.Document{}, err
	}
	locationID, err := parseOptionalID(req.LocationID, domain.ErrInvalidLocation)
	if err != nil {
		return domain.Document{}, err
	}

	var updated domain.Document
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.repo.FindByID(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrDocumentNotFound
		}
		if !doc.Editable() {
			return domain.ErrDocumentNotEditable
		}
		if err := s.checkLocation(ctx, tx, orgID, doc.CustomerID, locationID); err != nil {
			return err
		}

		now := s.clock.Now()
		doc.LocationID = locationID
		doc.IssuedAt = utcPtr(req.IssuedAt)
		doc.DueAt = s.dueDate(doc.IssuedAt, req.DueAt)
		doc.Notes = trimOptional(req.Notes)
		doc.UpdatedAt = now
		doc.Items = s.buildItems(*doc, req.Items, now)
		doc.Recalculate()

		if err := s.repo.DeleteItems(ctx, tx, orgID, doc.ID); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, doc.Items); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, doc); err != nil {
			return err
		}
		updated = *doc
		return nil
	})
	if err != nil {
		return domain.Document{}, err
	}

	s.audit(ctx, "document.updated", &updated)
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Document, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Document{}, err
	}
	docID, err := parseID(id, domain.ErrInvalidDocumentID)
	if err != nil {
		return domain.Document{}, err
	}

	doc, err := s.repo.FindByID(ctx, s.db, orgID, docID)
	if err != nil {
		return domain.Document{}, err
	}
	if doc == nil {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return *doc, nil
}

func (s *Service) List(ctx context.Context, req domain.ListDocumentRequest) (domain.ListDocumentResponse, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.ListDocumentResponse{}, err
	}

	filter := domain.ListDocumentFilter{}
	if raw := strings.TrimSpace(req.Type); raw != "" {
		filter.Type = domain.DocumentType(strings.ToLower(raw))
		if !filter.Type.Valid() {
			return domain.ListDocumentResponse{}, domain.ErrInvalidDocumentType
		}
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		filter.Status = domain.DocumentStatus(strings.ToLower(raw))
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := parseID(raw, domain.ErrInvalidCustomer)
		if err != nil {
			return domain.ListDocumentResponse{}, err
		}
		filter.CustomerID = customerID
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return domain.ListDocumentResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, req.PageSize, func(doc *domain.Document) string {
		return doc.ID.String()
	})

	docs := make([]domain.Document, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		docs = append(docs, *item)
	}

	return domain.ListDocumentResponse{PageInfo: pageInfo, Documents: docs}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return err
	}
	docID, err := parseID(id, domain.ErrInvalidDocumentID)
	if err != nil {
		return err
	}

	var deleted *domain.Document
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.repo.FindByID(ctx, tx, orgID, docID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrDocumentNotFound
		}
		if err := s.repo.DeleteItems(ctx, tx, orgID, docID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, orgID, docID); err != nil {
			return err
		}
		deleted = doc
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, "document.deleted", deleted)
	return nil
}

// Recalculate rewrites the stored totals from the stored items. Running it
// on consistent data changes nothing.
func (s *Service) Recalculate(ctx context.Context, id string) (domain.Document, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Document{}, err
	}
	docID, err := parseID(id, domain.ErrInvalidDocumentID)
	if err != nil {
		return domain.Document{}, err
	}

	var result domain.Document
	var changed bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.repo.FindByID(ctx, tx, orgID, docID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrDocumentNotFound
		}

		before := doc.Totals()
		after := doc.Recalculate()
		result = *doc
		if before == after {
			return nil
		}
		changed = true
		doc.UpdatedAt = s.clock.Now()
		result.UpdatedAt = doc.UpdatedAt
		return s.repo.Update(ctx, tx, doc)
	})
	if err != nil {
		return domain.Document{}, err
	}

	if changed {
		s.audit(ctx, "document.recalculated", &result)
	}
	return result, nil
}

// buildItems turns editor input into rows owned by doc, in input order.
func (s *Service) buildItems(doc domain.Document, inputs []domain.LineItemInput, now time.Time) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(inputs))
	for i, in := range inputs {
		items = append(items, domain.LineItem{
			ID:          s.genID.Generate(),
			OrgID:       doc.OrgID,
			DocumentID:  doc.ID,
			Position:    i,
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			TaxRate:     in.TaxRate,
			CreatedAt:   now,
		})
	}
	return items
}

// dueDate returns the requested due date, or issuedAt plus the configured
// payment terms when only the issue date is known.
func (s *Service) dueDate(issuedAt, requested *time.Time) *time.Time {
	if dueAt := utcPtr(requested); dueAt != nil {
		return dueAt
	}
	if issuedAt == nil {
		return nil
	}
	days := s.config.Get().DefaultDueDays
	if days <= 0 {
		return nil
	}
	due := issuedAt.AddDate(0, 0, days)
	return &due
}

// checkParties verifies that the customer, and the location when given,
// belong to the organization.
func (s *Service) checkParties(ctx context.Context, tx *gorm.DB, orgID, customerID snowflake.ID, locationID *snowflake.ID) error {
	customer, err := s.customers.FindByID(ctx, tx, orgID, customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrInvalidCustomer
	}
	return s.checkLocation(ctx, tx, orgID, customerID, locationID)
}

func (s *Service) checkLocation(ctx context.Context, tx *gorm.DB, orgID, customerID snowflake.ID, locationID *snowflake.ID) error {
	if locationID == nil {
		return nil
	}
	loc, err := s.locations.WithTrx(tx).FindOne(ctx, &locationdomain.Location{
		ID:         *locationID,
		OrgID:      orgID,
		CustomerID: customerID,
	})
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.ErrInvalidLocation
	}
	return nil
}

// audit writes one structured line per mutation.
func (s *Service) audit(ctx context.Context, action string, doc *domain.Document) {
	if doc == nil {
		return
	}
	s.log.Info(action,
		zap.String("org_id", doc.OrgID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("ulid", doc.ULID),
		zap.String("type", string(doc.Type)),
		zap.String("invoice_number", doc.InvoiceNumber),
		zap.String("status", string(doc.Status)),
		zap.String("currency", doc.Currency),
		zap.Int64("subtotal", doc.Subtotal),
		zap.Int64("tax", doc.Tax),
		zap.Int64("total", doc.Total),
		zap.Int("items", len(doc.Items)),
	)
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return 0, domain.ErrInvalidOrganization
	}
	return orgID, nil
}

// validateRates covers what struct tags cannot express on tax rates.
func validateRates(items []domain.LineItemInput) error {
	for i, item := range items {
		if err := checkRate(i, item.TaxRate); err != nil {
			return err
		}
	}
	return nil
}

func checkRate(index int, rate taxdomain.Rate) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: items[%d].tax_rate must not be negative", domain.ErrInvalidLineItems, index)
	}
	if rate.Decimal().GreaterThan(decimal.NewFromInt(maxTaxRatePercent)) {
		return fmt.Errorf("%w: items[%d].tax_rate must not exceed %d", domain.ErrInvalidLineItems, index, maxTaxRatePercent)
	}
	return nil
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}

func parseOptionalID(raw *string, invalid error) (*snowflake.ID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := parseID(*raw, invalid)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
