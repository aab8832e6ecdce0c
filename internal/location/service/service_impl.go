package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicer/internal/clock"
	customerdomain "github.com/smallbiznis/invoicer/internal/customer/domain"
	"github.com/smallbiznis/invoicer/internal/location/domain"
	"github.com/smallbiznis/invoicer/internal/orgcontext"
	"github.com/smallbiznis/invoicer/pkg/db/option"
	"github.com/smallbiznis/invoicer/pkg/repository"
	"github.com/smallbiznis/invoicer/pkg/validator"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         repository.Repository[domain.Location]
	CustomerRepo customerdomain.Repository
	Clock        clock.Clock
	Validator    *validator.Validator
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         repository.Repository[domain.Location]
	customerRepo customerdomain.Repository
	clock        clock.Clock
	validator    *validator.Validator
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("location.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		clock:        p.Clock,
		validator:    p.Validator,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateLocationRequest) (domain.Location, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Location{}, domain.ErrInvalidOrganization
	}

	customerID, err := s.customerInOrg(ctx, orgID, req.CustomerID)
	if err != nil {
		return domain.Location{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Location{}, domain.ErrInvalidName
	}
	req.CountryCode = strings.ToUpper(strings.TrimSpace(req.CountryCode))
	if err := s.validator.Struct(req); err != nil {
		return domain.Location{}, err
	}

	lines := make([]string, 0, len(req.AddressLines))
	for _, line := range req.AddressLines {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	now := s.clock.Now()
	loc := domain.Location{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		CustomerID:   customerID,
		Name:         req.Name,
		AddressLines: lines,
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		PostalCode:   strings.TrimSpace(req.PostalCode),
		CountryCode:  req.CountryCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, &loc); err != nil {
		return domain.Location{}, err
	}

	s.log.Info("location created",
		zap.String("org_id", orgID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("location_id", loc.ID.String()),
	)
	return loc, nil
}

func (s *Service) List(ctx context.Context, customerID string) ([]domain.Location, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	custID, err := s.customerInOrg(ctx, orgID, customerID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.Find(ctx,
		&domain.Location{OrgID: orgID, CustomerID: custID},
		option.WithSortBy(option.WithQuerySortBy("name", "asc", map[string]bool{"name": true})),
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Location, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Location, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Location{}, domain.ErrInvalidOrganization
	}

	locID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || locID == 0 {
		return domain.Location{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindOne(ctx, &domain.Location{ID: locID, OrgID: orgID})
	if err != nil {
		return domain.Location{}, err
	}
	if item == nil {
		return domain.Location{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) customerInOrg(ctx context.Context, orgID snowflake.ID, raw string) (snowflake.ID, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || customerID == 0 {
		return 0, domain.ErrInvalidCustomer
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, orgID, customerID)
	if err != nil {
		return 0, err
	}
	if customer == nil {
		return 0, domain.ErrInvalidCustomer
	}
	return customerID, nil
}
