package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/pkg/db/option"
	"github.com/smallbiznis/invoicer/pkg/db/pagination"
	"gorm.io/gorm"
)

const documentColumns = `id, ulid, org_id, invoice_number, customer_id, location_id, type, status,
	currency, subtotal, tax, total, issued_at, due_at, notes, source_estimate_id,
	sent_at, paid_at, voided_at, metadata, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO documents (`+documentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID,
		doc.ULID,
		doc.OrgID,
		doc.InvoiceNumber,
		doc.CustomerID,
		doc.LocationID,
		doc.Type,
		doc.Status,
		doc.Currency,
		doc.Subtotal,
		doc.Tax,
		doc.Total,
		doc.IssuedAt,
		doc.DueAt,
		doc.Notes,
		doc.SourceEstimateID,
		doc.SentAt,
		doc.PaidAt,
		doc.VoidedAt,
		doc.Metadata,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, orgID, documentID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM document_items WHERE org_id = ? AND document_id = ?`,
		orgID,
		documentID,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return db.WithContext(ctx).Exec(
		`UPDATE documents
		 SET location_id = ?, status = ?, subtotal = ?, tax = ?, total = ?,
		     issued_at = ?, due_at = ?, notes = ?, sent_at = ?, paid_at = ?,
		     voided_at = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		doc.LocationID,
		doc.Status,
		doc.Subtotal,
		doc.Tax,
		doc.Total,
		doc.IssuedAt,
		doc.DueAt,
		doc.Notes,
		doc.SentAt,
		doc.PaidAt,
		doc.VoidedAt,
		doc.UpdatedAt,
		doc.OrgID,
		doc.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Document, error) {
	var doc domain.Document
	err := db.WithContext(ctx).Raw(
		`SELECT `+documentColumns+`
		 FROM documents WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&doc).Error
	if err != nil {
		return nil, err
	}
	if doc.ID == 0 {
		return nil, nil
	}

	items, err := r.ListItems(ctx, db, orgID, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Items = items
	return &doc, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, orgID, documentID snowflake.ID) ([]domain.LineItem, error) {
	items := []domain.LineItem{}
	err := db.WithContext(ctx).
		Where("org_id = ? AND document_id = ?", orgID, documentID).
		Order("position asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListDocumentFilter, page pagination.Pagination) ([]*domain.Document, error) {
	var docs []*domain.Document
	opts := []option.QueryOption{}
	if filter.Type != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "type", Operator: option.EQ, Value: filter.Type}))
	}
	if filter.Status != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "status", Operator: option.EQ, Value: filter.Status}))
	}
	if filter.CustomerID != 0 {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "customer_id", Operator: option.EQ, Value: filter.CustomerID}))
	}
	opts = append(opts, option.ApplyPagination(page))

	stmt := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("org_id = ?", orgID)
	if err := option.ApplyAll(stmt, opts...).Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM documents WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}

func (r *repo) LastNumberInBucket(ctx context.Context, db *gorm.DB, orgID snowflake.ID, docType domain.DocumentType, bucketPrefix string) (*string, error) {
	var numbers []string
	err := db.WithContext(ctx).Raw(
		`SELECT invoice_number
		 FROM documents
		 WHERE org_id = ? AND type = ? AND invoice_number LIKE ?
		 ORDER BY invoice_number DESC
		 LIMIT 1`,
		orgID,
		docType,
		bucketPrefix+"%",
	).Scan(&numbers).Error
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return nil, nil
	}
	return &numbers[0], nil
}

func (r *repo) NumberTaken(ctx context.Context, db *gorm.DB, orgID snowflake.ID, number string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("org_id = ? AND invoice_number = ?", orgID, number).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
