package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/invoicer/internal/clock"
	"github.com/smallbiznis/invoicer/internal/config"
	"github.com/smallbiznis/invoicer/internal/money"
	"github.com/smallbiznis/invoicer/internal/organization/domain"
	"github.com/smallbiznis/invoicer/pkg/validator"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultTimezone = "UTC"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Clock     clock.Clock
	Config    config.InvoicingConfigSource
	Validator *validator.Validator
}

type service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	genID     *snowflake.Node
	clock     clock.Clock
	config    config.InvoicingConfigSource
	validator *validator.Validator
}

func NewService(p Params) domain.Service {
	return &service{
		db:        p.DB,
		log:       p.Log.Named("organization.service"),
		repo:      p.Repo,
		genID:     p.GenID,
		clock:     p.Clock,
		config:    p.Config,
		validator: p.Validator,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.CountryCode = strings.ToUpper(strings.TrimSpace(req.CountryCode))
	req.SupportEmail = strings.TrimSpace(req.SupportEmail)
	if req.Name == "" {
		return nil, domain.ErrInvalidName
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	currency, err := s.normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	timezone, err := normalizeTimezone(req.Timezone)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	org := domain.Organization{
		ID:           s.genID.Generate(),
		Name:         req.Name,
		SupportEmail: req.SupportEmail,
		CountryCode:  req.CountryCode,
		AddressLines: trimLines(req.AddressLines),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	prefs := domain.OrganizationBillingPreferences{
		OrgID:     org.ID,
		Currency:  currency,
		Timezone:  timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orgSlug, err := s.uniqueSlug(ctx, repo, org.Name, org.ID)
		if err != nil {
			return err
		}
		org.Slug = orgSlug
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}
		return repo.UpsertBillingPreferences(ctx, prefs)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("slug", org.Slug),
		zap.String("currency", currency),
	)
	return toResponse(org, &prefs), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.OrganizationResponse, error) {
	orgID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}

	prefs, err := s.repo.GetBillingPreferences(ctx, orgID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(*org, prefs)
	if prefs == nil {
		resp.Currency = s.defaultCurrency()
	}
	return resp, nil
}

func (s *service) SetBillingPreferences(ctx context.Context, id string, req domain.BillingPreferencesRequest) (*domain.OrganizationResponse, error) {
	orgID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if !money.IsSupported(currency) {
		return nil, domain.ErrInvalidCurrency
	}
	timezone, err := normalizeTimezone(req.Timezone)
	if err != nil {
		return nil, err
	}

	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}

	now := s.clock.Now()
	existing, err := s.repo.GetBillingPreferences(ctx, orgID)
	if err != nil {
		return nil, err
	}
	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}

	prefs := domain.OrganizationBillingPreferences{
		OrgID:     orgID,
		Currency:  currency,
		Timezone:  timezone,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertBillingPreferences(ctx, prefs); err != nil {
		return nil, err
	}

	s.log.Info("billing preferences updated",
		zap.String("org_id", orgID.String()),
		zap.String("currency", currency),
		zap.String("timezone", timezone),
	)
	return toResponse(*org, &prefs), nil
}

func (s *service) Currency(ctx context.Context, orgID snowflake.ID) (string, error) {
	if orgID == 0 {
		return "", domain.ErrInvalidOrganization
	}
	prefs, err := s.repo.GetBillingPreferences(ctx, orgID)
	if err != nil {
		return "", err
	}
	if prefs == nil || !money.IsSupported(prefs.Currency) {
		return s.defaultCurrency(), nil
	}
	return money.Normalize(prefs.Currency), nil
}

func (s *service) defaultCurrency() string {
	if s.config == nil {
		return money.DefaultCurrency
	}
	return money.Normalize(s.config.Get().DefaultCurrency)
}

func (s *service) normalizeCurrency(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return s.defaultCurrency(), nil
	}
	if !money.IsSupported(code) {
		return "", domain.ErrInvalidCurrency
	}
	return money.Normalize(code), nil
}

// uniqueSlug suffixes the slug with the org id when the plain slug is taken.
func (s *service) uniqueSlug(ctx context.Context, repo domain.Repository, name string, id snowflake.ID) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "org"
	}
	taken, err := repo.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return base + "-" + id.Base36(), nil
}

func normalizeTimezone(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultTimezone, nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return "", domain.ErrInvalidTimezone
	}
	return name, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidOrganization
	}
	return id, nil
}

func trimLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func toResponse(org domain.Organization, prefs *domain.OrganizationBillingPreferences) *domain.OrganizationResponse {
	resp := &domain.OrganizationResponse{
		ID:           org.ID.String(),
		Name:         org.Name,
		Slug:         org.Slug,
		CountryCode:  org.CountryCode,
		SupportEmail: org.SupportEmail,
		AddressLines: []string(org.AddressLines),
		Timezone:     defaultTimezone,
	}
	if resp.AddressLines == nil {
		resp.AddressLines = []string{}
	}
	if prefs != nil {
		resp.Currency = prefs.Currency
		resp.Timezone = prefs.Timezone
	}
	return resp
}
