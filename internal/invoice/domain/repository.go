package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicer/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListDocumentFilter struct {
	Type       DocumentType
	Status     DocumentStatus
	CustomerID snowflake.ID
}

// Repository persists documents. Every method runs on the db it is given so
// callers can compose several calls in one transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, doc *Document) error
	InsertItems(ctx context.Context, db *gorm.DB, items []LineItem) error
	DeleteItems(ctx context.Context, db *gorm.DB, orgID, documentID snowflake.ID) error
	Update(ctx context.Context, db *gorm.DB, doc *Document) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Document, error)
	ListItems(ctx context.Context, db *gorm.DB, orgID, documentID snowflake.ID) ([]LineItem, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListDocumentFilter, page pagination.Pagination) ([]*Document, error)
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	// LastNumberInBucket returns the greatest number starting with
	// bucketPrefix for the organization, or nil when the bucket is empty.
	LastNumberInBucket(ctx context.Context, db *gorm.DB, orgID snowflake.ID, docType DocumentType, bucketPrefix string) (*string, error)
	NumberTaken(ctx context.Context, db *gorm.DB, orgID snowflake.ID, number string) (bool, error)
}
