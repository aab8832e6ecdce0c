package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicer/internal/organization/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOrganization(ctx context.Context, org domain.Organization) error {
	return r.db.WithContext(ctx).Create(&org).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM organizations WHERE slug = ?`,
		slug,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) GetBillingPreferences(ctx context.Context, orgID snowflake.ID) (*domain.OrganizationBillingPreferences, error) {
	var prefs domain.OrganizationBillingPreferences
	err := r.db.WithContext(ctx).Raw(
		`SELECT org_id, currency, timezone, created_at, updated_at
		 FROM organization_billing_preferences WHERE org_id = ?`,
		orgID,
	).Scan(&prefs).Error
	if err != nil {
		return nil, err
	}
	if prefs.OrgID == 0 {
		return nil, nil
	}
	return &prefs, nil
}

func (r *repository) UpsertBillingPreferences(ctx context.Context, prefs domain.OrganizationBillingPreferences) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"currency", "timezone", "updated_at"}),
	}).Create(&prefs).Error
}
