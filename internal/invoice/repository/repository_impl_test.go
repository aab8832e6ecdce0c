package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/invoicer/internal/invoice/domain"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"github.com/smallbiznis/invoicer/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Document{}, &domain.LineItem{}))
	return db
}

func newDocument(node *snowflake.Node, orgID snowflake.ID, docType domain.DocumentType, number string) *domain.Document {
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID:            node.Generate(),
		ULID:          ulid.Make().String(),
		OrgID:         orgID,
		InvoiceNumber: number,
		CustomerID:    node.Generate(),
		Type:          docType,
		Status:        domain.DocumentStatusDraft,
		Currency:      "INR",
		Metadata:      datatypes.JSONMap{"source": "test"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestInsertFindAndItems(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	r := Provide()
	ctx := context.Background()
	orgID := node.Generate()

	doc := newDocument(node, orgID, domain.DocumentTypeEstimate, "EST-2026-10-0001")
	issued := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	doc.IssuedAt = &issued
	require.NoError(t, r.Insert(ctx, db, doc))

	items := []domain.LineItem{
		{ID: node.Generate(), OrgID: orgID, DocumentID: doc.ID, Position: 1, Description: "B", Quantity: 1, UnitPrice: 10000, TaxRate: taxdomain.Unspecified(), CreatedAt: doc.CreatedAt},
		{ID: node.Generate(), OrgID: orgID, DocumentID: doc.ID, Position: 0, Description: "A", Quantity: 10, UnitPrice: 750, TaxRate: taxdomain.MustPercent("18.5"), CreatedAt: doc.CreatedAt},
		{ID: node.Generate(), OrgID: orgID, DocumentID: doc.ID, Position: 2, Description: "C", Quantity: 1, UnitPrice: 5, TaxRate: taxdomain.PercentInt(0), CreatedAt: doc.CreatedAt},
	}
	require.NoError(t, r.InsertItems(ctx, db, items))

	found, err := r.FindByID(ctx, db, orgID, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, doc.ULID, found.ULID)
	assert.Equal(t, domain.DocumentTypeEstimate, found.Type)
	require.NotNil(t, found.IssuedAt)
	assert.True(t, issued.Equal(*found.IssuedAt))
	assert.Nil(t, found.DueAt)
	assert.Equal(t, "test", found.Metadata["source"])

	require.Len(t, found.Items, 3)
	assert.Equal(t, "A", found.Items[0].Description)
	assert.True(t, found.Items[0].TaxRate.Equal(taxdomain.MustPercent("18.5")))
	assert.False(t, found.Items[1].TaxRate.IsSet(), "null rate must survive storage")
	assert.True(t, found.Items[2].TaxRate.IsSet(), "zero rate must survive storage")
	assert.True(t, found.Items[2].TaxRate.IsZero())

	missing, err := r.FindByID(ctx, db, node.Generate(), doc.ID)
	require.NoError(t, err)
	assert.Nil(t, missing, "documents are scoped by organization")

	require.NoError(t, r.DeleteItems(ctx, db, orgID, doc.ID))
	remaining, err := r.ListItems(ctx, db, orgID, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	require.NoError(t, r.Delete(ctx, db, orgID, doc.ID))
	gone, err := r.FindByID(ctx, db, orgID, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestLastNumberInBucket(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	r := Provide()
	ctx := context.Background()
	orgID := node.Generate()
	otherOrg := node.Generate()

	last, err := r.LastNumberInBucket(ctx, db, orgID, domain.DocumentTypeInvoice, "INV-2026-10-")
	require.NoError(t, err)
	assert.Nil(t, last)

	for _, d := range []*domain.Document{
		newDocument(node, orgID, domain.DocumentTypeInvoice, "INV-2026-10-0002"),
		newDocument(node, orgID, domain.DocumentTypeInvoice, "INV-2026-10-0010"),
		newDocument(node, orgID, domain.DocumentTypeInvoice, "INV-2026-09-0099"),
		newDocument(node, orgID, domain.DocumentTypeEstimate, "EST-2026-10-0050"),
		newDocument(node, otherOrg, domain.DocumentTypeInvoice, "INV-2026-10-0500"),
	} {
		require.NoError(t, r.Insert(ctx, db, d))
	}

	last, err = r.LastNumberInBucket(ctx, db, orgID, domain.DocumentTypeInvoice, "INV-2026-10-")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "INV-2026-10-0010", *last)

	dup := newDocument(node, orgID, domain.DocumentTypeInvoice, "INV-2026-10-0010")
	assert.Error(t, r.Insert(ctx, db, dup), "numbers are unique per organization")

	taken, err := r.NumberTaken(ctx, db, orgID, "INV-2026-10-0010")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.NumberTaken(ctx, db, orgID, "INV-2026-10-0011")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = r.NumberTaken(ctx, db, otherOrg, "INV-2026-10-0010")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	r := Provide()
	ctx := context.Background()
	orgID := node.Generate()

	var ids []snowflake.ID
	for i := 1; i <= 5; i++ {
		d := newDocument(node, orgID, domain.DocumentTypeInvoice, fmt.Sprintf("INV-2026-10-%04d", i))
		require.NoError(t, r.Insert(ctx, db, d))
		ids = append(ids, d.ID)
	}
	require.NoError(t, r.Insert(ctx, db, newDocument(node, orgID, domain.DocumentTypeEstimate, "EST-2026-10-0001")))

	first, err := r.List(ctx, db, orgID, domain.ListDocumentFilter{Type: domain.DocumentTypeInvoice}, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first, 3, "one lookahead row")
	assert.Equal(t, ids[4], first[0].ID)
	assert.Equal(t, ids[3], first[1].ID)

	page, info := pagination.Trim(first, 2, func(d *domain.Document) string { return d.ID.String() })
	require.Len(t, page, 2)
	require.True(t, info.HasMore)

	second, err := r.List(ctx, db, orgID, domain.ListDocumentFilter{Type: domain.DocumentTypeInvoice}, pagination.Pagination{PageSize: 2, PageToken: info.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.Equal(t, ids[2], second[0].ID)

	estimates, err := r.List(ctx, db, orgID, domain.ListDocumentFilter{Type: domain.DocumentTypeEstimate}, pagination.Pagination{})
	require.NoError(t, err)
	assert.Len(t, estimates, 1)

	_, err = r.List(ctx, db, orgID, domain.ListDocumentFilter{}, pagination.Pagination{PageToken: "garbage!"})
	assert.ErrorIs(t, err, pagination.ErrInvalidPageToken)
}
