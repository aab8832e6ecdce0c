package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicer/internal/clock"
	"github.com/smallbiznis/invoicer/internal/orgcontext"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"github.com/smallbiznis/invoicer/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  taxdomain.Repository
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  taxdomain.Repository
	clock clock.Clock
}

func NewService(p serviceParams) taxdomain.Service {
	return &Service{
		log:   p.Log.Named("tax.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) List(ctx context.Context, req taxdomain.ListRequest) ([]taxdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, taxdomain.ErrInvalidOrganization
	}

	filter := taxdomain.ListRequest{
		Name:      strings.TrimSpace(req.Name),
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		IsEnabled: req.IsEnabled,
		SortBy:    strings.TrimSpace(req.SortBy),
		OrderBy:   strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]taxdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}

	return resp, nil
}

func (s *Service) Create(ctx context.Context, req taxdomain.CreateRequest) (*taxdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, taxdomain.ErrInvalidOrganization
	}

	isEnabled := true
	if req.IsEnabled != nil {
		isEnabled = *req.IsEnabled
	}

	now := s.clock.Now()
	record := &taxdomain.TaxDefinition{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Rate:        req.Rate,
		Description: normalizeDescription(req.Description),
		IsDefault:   req.IsDefault && isEnabled,
		IsEnabled:   isEnabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(repo taxdomain.Repository) error {
		if err := repo.Create(ctx, record); err != nil {
			return err
		}
		return s.keepSingleDefault(ctx, repo, record)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, taxdomain.ErrDuplicateTaxCode
		}
		return nil, err
	}

	s.log.Info("tax definition created",
		zap.String("org_id", orgID.String()),
		zap.String("tax_definition_id", record.ID.String()),
		zap.String("code", record.Code),
		zap.String("rate", record.Rate.String()),
	)

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req taxdomain.UpdateRequest) (*taxdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, taxdomain.ErrInvalidOrganization
	}

	item, err := s.find(ctx, orgID, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Rate != nil {
		item.Rate = *req.Rate
	}
	if req.Description != nil {
		item.Description = normalizeDescription(req.Description)
	}
	if req.IsDefault != nil {
		item.IsDefault = *req.IsDefault && item.IsEnabled
	}

	item.UpdatedAt = s.clock.Now()
	if err := item.Validate(); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(repo taxdomain.Repository) error {
		if err := repo.Update(ctx, item); err != nil {
			return err
		}
		return s.keepSingleDefault(ctx, repo, item)
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

// keepSingleDefault demotes every other definition of the org once def
// became the default.
func (s *Service) keepSingleDefault(ctx context.Context, repo taxdomain.Repository, def *taxdomain.TaxDefinition) error {
	if !def.IsDefault {
		return nil
	}
	return repo.ClearDefault(ctx, def.OrgID, def.ID)
}

func (s *Service) Disable(ctx context.Context, id string) (*taxdomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, taxdomain.ErrInvalidOrganization
	}

	item, err := s.find(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	item.IsEnabled = false
	item.IsDefault = false
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("tax definition disabled",
		zap.String("org_id", orgID.String()),
		zap.String("tax_definition_id", item.ID.String()),
	)

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) find(ctx context.Context, orgID snowflake.ID, id string) (*taxdomain.TaxDefinition, error) {
	defID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || defID == 0 {
		return nil, taxdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, orgID, defID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, taxdomain.ErrNotFound
	}
	return item, nil
}

func toResponse(def *taxdomain.TaxDefinition) taxdomain.Response {
	return taxdomain.Response{
		ID:             def.ID.String(),
		OrganizationID: def.OrgID.String(),
		Code:           def.Code,
		Name:           def.Name,
		Rate:           def.Rate,
		Description:    def.Description,
		IsDefault:      def.IsDefault,
		IsEnabled:      def.IsEnabled,
		CreatedAt:      def.CreatedAt,
		UpdatedAt:      def.UpdatedAt,
	}
}

func normalizeDescription(value *string) *string {
	if value == nil {
		return nil
	}
	description := strings.TrimSpace(*value)
	if description == "" {
		return nil
	}
	return &description
}
