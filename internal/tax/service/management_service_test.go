package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/invoicer/internal/clock"
	"github.com/smallbiznis/invoicer/internal/orgcontext"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"github.com/smallbiznis/invoicer/internal/tax/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type taxFixture struct {
	svc      taxdomain.Service
	resolver taxdomain.Resolver
	ctx      context.Context
	orgID    snowflake.ID
}

func setupTaxService(t *testing.T) taxFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&repository.TaxDefinitionRecord{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := repository.NewRepository(db)
	svc := NewService(serviceParams{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repo,
		Clock: clock.NewFakeClock(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)),
	})

	orgID := node.Generate()
	return taxFixture{
		svc:      svc,
		resolver: NewResolver(resolverParam{Repository: repo}),
		ctx:      orgcontext.WithOrgID(context.Background(), orgID),
		orgID:    orgID,
	}
}

func TestCreateStoresBasisPointsAndResolvesDefault(t *testing.T) {
	f := setupTaxService(t)

	created, err := f.svc.Create(f.ctx, taxdomain.CreateRequest{
		Code:      "gst18",
		Name:      "GST",
		Rate:      taxdomain.MustPercent("18.25"),
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "GST18", created.Code)
	assert.True(t, created.IsEnabled)

	rate, err := f.resolver.DefaultRate(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.True(t, rate.Equal(taxdomain.MustPercent("18.25")), "got %s", rate)

	second, err := f.svc.Create(f.ctx, taxdomain.CreateRequest{
		Code:      "GST5",
		Name:      "GST reduced",
		Rate:      taxdomain.PercentInt(5),
		IsDefault: true,
	})
	require.NoError(t, err)

	rate, err = f.resolver.DefaultRate(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.True(t, rate.Equal(taxdomain.PercentInt(5)))

	items, err := f.svc.List(f.ctx, taxdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	defaults := 0
	for _, item := range items {
		if item.IsDefault {
			defaults++
			assert.Equal(t, second.ID, item.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := setupTaxService(t)

	_, err := f.svc.Create(f.ctx, taxdomain.CreateRequest{Code: "X", Name: "X", Rate: taxdomain.Unspecified()})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxRate)

	_, err = f.svc.Create(f.ctx, taxdomain.CreateRequest{Code: "X", Name: "X", Rate: taxdomain.MustPercent("18.333")})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxRate)

	_, err = f.svc.Create(f.ctx, taxdomain.CreateRequest{Code: "X", Name: "X", Rate: taxdomain.PercentInt(-1)})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxRate)

	_, err = f.svc.Create(f.ctx, taxdomain.CreateRequest{Code: " ", Name: "X", Rate: taxdomain.PercentInt(1)})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidTaxCode)

	_, err = f.svc.Create(context.Background(), taxdomain.CreateRequest{Code: "X", Name: "X", Rate: taxdomain.PercentInt(1)})
	assert.ErrorIs(t, err, taxdomain.ErrInvalidOrganization)

	_, err = f.svc.Create(f.ctx, taxdomain.CreateRequest{Code: "VAT", Name: "VAT", Rate: taxdomain.PercentInt(20)})
	require.NoError(t, err)
	_, err = f.svc.Create(f.ctx, taxdomain.CreateRequest{Code: "vat", Name: "VAT again", Rate: taxdomain.PercentInt(20)})
	assert.ErrorIs(t, err, taxdomain.ErrDuplicateTaxCode)
}

func TestUpdateAndDisable(t *testing.T) {
	f := setupTaxService(t)

	created, err := f.svc.Create(f.ctx, taxdomain.CreateRequest{
		Code:      "GST",
		Name:      "GST",
		Rate:      taxdomain.PercentInt(18),
		IsDefault: true,
	})
	require.NoError(t, err)

	newRate := taxdomain.MustPercent("12.5")
	newName := "GST (revised)"
	updated, err := f.svc.Update(f.ctx, taxdomain.UpdateRequest{ID: created.ID, Name: &newName, Rate: &newRate})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.True(t, updated.Rate.Equal(newRate))

	disabled, err := f.svc.Disable(f.ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, disabled.IsEnabled)
	assert.False(t, disabled.IsDefault)

	rate, err := f.resolver.DefaultRate(f.ctx, f.orgID)
	require.NoError(t, err)
	assert.False(t, rate.IsSet())

	_, err = f.svc.Disable(f.ctx, "not-an-id")
	assert.ErrorIs(t, err, taxdomain.ErrInvalidID)

	_, err = f.svc.Disable(f.ctx, "12345")
	assert.ErrorIs(t, err, taxdomain.ErrNotFound)
}
