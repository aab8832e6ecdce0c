package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"github.com/smallbiznis/invoicer/pkg/db/option"
	"gorm.io/gorm"
)

// TaxDefinitionRecord is the stored form of a tax definition. Rates are
// kept in basis points here; the domain works in percentages.
type TaxDefinitionRecord struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OrgID       snowflake.ID `gorm:"column:org_id;not null;uniqueIndex:ux_tax_definitions_org_code,priority:1"`
	Name        string       `gorm:"type:text;not null"`
	Code        string       `gorm:"type:text;not null;uniqueIndex:ux_tax_definitions_org_code,priority:2"`
	RateBps     int64        `gorm:"column:rate_bps;not null"`
	Description *string      `gorm:"type:text"`
	IsDefault   bool         `gorm:"column:is_default;not null;default:false"`
	IsEnabled   bool         `gorm:"column:is_enabled;not null;default:true"`
	CreatedAt   time.Time    `gorm:"not null"`
	UpdatedAt   time.Time    `gorm:"not null"`
}

func (TaxDefinitionRecord) TableName() string { return "tax_definitions" }

func toRecord(def *taxdomain.TaxDefinition) (*TaxDefinitionRecord, error) {
	bps, ok := def.Rate.BasisPoints()
	if !ok {
		return nil, taxdomain.ErrInvalidTaxRate
	}
	return &TaxDefinitionRecord{
		ID:          def.ID,
		OrgID:       def.OrgID,
		Name:        def.Name,
		Code:        def.Code,
		RateBps:     bps,
		Description: def.Description,
		IsDefault:   def.IsDefault,
		IsEnabled:   def.IsEnabled,
		CreatedAt:   def.CreatedAt,
		UpdatedAt:   def.UpdatedAt,
	}, nil
}

func (r TaxDefinitionRecord) toDomain() *taxdomain.TaxDefinition {
	return &taxdomain.TaxDefinition{
		ID:          r.ID,
		OrgID:       r.OrgID,
		Name:        r.Name,
		Code:        r.Code,
		Rate:        taxdomain.FromBasisPoints(r.RateBps),
		Description: r.Description,
		IsDefault:   r.IsDefault,
		IsEnabled:   r.IsEnabled,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const selectColumns = `id, org_id, name, code, rate_bps, description, is_default, is_enabled, created_at, updated_at`

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxdomain.Repository {
	return &repository{db: db}
}

func (r *repository) GetDefault(ctx context.Context, orgID snowflake.ID) (*taxdomain.TaxDefinition, error) {
	var rec TaxDefinitionRecord
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+`
		 FROM tax_definitions
		 WHERE org_id = ? AND is_enabled = ? AND is_default = ?
		 ORDER BY id ASC
		 LIMIT 1`,
		orgID, true, true,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return rec.toDomain(), nil
}

func (r *repository) Create(ctx context.Context, def *taxdomain.TaxDefinition) error {
	rec, err := toRecord(def)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO tax_definitions (`+selectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.OrgID,
		rec.Name,
		rec.Code,
		rec.RateBps,
		rec.Description,
		rec.IsDefault,
		rec.IsEnabled,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, id snowflake.ID) (*taxdomain.TaxDefinition, error) {
	var rec TaxDefinitionRecord
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+`
		 FROM tax_definitions
		 WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return rec.toDomain(), nil
}

func (r *repository) List(ctx context.Context, orgID snowflake.ID, filter taxdomain.ListRequest) ([]taxdomain.TaxDefinition, error) {
	var records []TaxDefinitionRecord
	stmt := r.db.WithContext(ctx).
		Model(&TaxDefinitionRecord{}).
		Where("org_id = ?", orgID)

	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Code != "" {
		stmt = stmt.Where("code = ?", filter.Code)
	}
	if filter.IsEnabled != nil {
		stmt = stmt.Where("is_enabled = ?", *filter.IsEnabled)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
	})).Apply(stmt)

	if err := stmt.Find(&records).Error; err != nil {
		return nil, err
	}

	items := make([]taxdomain.TaxDefinition, 0, len(records))
	for _, rec := range records {
		items = append(items, *rec.toDomain())
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, def *taxdomain.TaxDefinition) error {
	rec, err := toRecord(def)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(
		`UPDATE tax_definitions
		 SET name = ?, rate_bps = ?, description = ?, is_default = ?, is_enabled = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		rec.Name,
		rec.RateBps,
		rec.Description,
		rec.IsDefault,
		rec.IsEnabled,
		rec.UpdatedAt,
		rec.OrgID,
		rec.ID,
	).Error
}

func (r *repository) Transaction(ctx context.Context, fn func(repo taxdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) ClearDefault(ctx context.Context, orgID, exceptID snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE tax_definitions SET is_default = ? WHERE org_id = ? AND id <> ?`,
		false, orgID, exceptID,
	).Error
}
