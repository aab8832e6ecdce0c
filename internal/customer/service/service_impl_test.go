package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/invoicer/internal/clock"
	"github.com/smallbiznis/invoicer/internal/customer/domain"
	"github.com/smallbiznis/invoicer/internal/customer/repository"
	"github.com/smallbiznis/invoicer/internal/orgcontext"
	"github.com/smallbiznis/invoicer/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Clock:     clk,
		Validator: validator.New(),
	})
	return svc, clk
}

func TestCreateAndGetCustomer(t *testing.T) {
	svc, _ := setupService(t)
	ctx := orgcontext.WithOrgID(context.Background(), 100)

	phone := " +91 98450 00000 "
	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:     "Wayne Enterprises",
		Emails:   []string{"ap@wayne.test", "AP@wayne.test", "cfo@wayne.test"},
		Phone:    &phone,
		Metadata: map[string]any{"gstin": "29ABCDE1234F1Z5"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EmailList{"ap@wayne.test", "cfo@wayne.test"}, created.Emails)
	require.NotNil(t, created.Phone)
	assert.Equal(t, "+91 98450 00000", *created.Phone)

	got, err := svc.GetByID(ctx, domain.GetCustomerRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.Emails, got.Emails)
	assert.Equal(t, "29ABCDE1234F1Z5", got.Metadata["gstin"])

	other := orgcontext.WithOrgID(context.Background(), 200)
	_, err = svc.GetByID(other, domain.GetCustomerRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := orgcontext.WithOrgID(context.Background(), 100)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "x", Emails: []string{"broken"}})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.GetByID(ctx, domain.GetCustomerRequest{ID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListCustomersPaginates(t *testing.T) {
	svc, clk := setupService(t)
	ctx := orgcontext.WithOrgID(context.Background(), 100)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: fmt.Sprintf("Customer %d", i)})
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}

	first, err := svc.List(ctx, domain.ListCustomerRequest{PageSize: 3})
	require.NoError(t, err)
	require.Len(t, first.Customers, 3)
	assert.True(t, first.HasMore)
	assert.Equal(t, "Customer 4", first.Customers[0].Name)

	second, err := svc.List(ctx, domain.ListCustomerRequest{PageSize: 3, PageToken: first.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second.Customers, 2)
	assert.False(t, second.HasMore)
	assert.Equal(t, "Customer 0", second.Customers[1].Name)

	filtered, err := svc.List(ctx, domain.ListCustomerRequest{Query: "customer 2"})
	require.NoError(t, err)
	require.Len(t, filtered.Customers, 1)
}

func TestListCustomersSearchesEmails(t *testing.T) {
	svc, _ := setupService(t)
	ctx := orgcontext.WithOrgID(context.Background(), 100)

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Wayne Enterprises", Emails: []string{"Bruce@Wayne.test"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Daily Planet", Emails: []string{"clark@planet.test"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "100% Cotton"})
	require.NoError(t, err)

	byEmail, err := svc.List(ctx, domain.ListCustomerRequest{Query: "wayne.TEST"})
	require.NoError(t, err)
	require.Len(t, byEmail.Customers, 1)
	assert.Equal(t, "Wayne Enterprises", byEmail.Customers[0].Name)

	literal, err := svc.List(ctx, domain.ListCustomerRequest{Query: "0%"})
	require.NoError(t, err)
	require.Len(t, literal.Customers, 1)
	assert.Equal(t, "100% Cotton", literal.Customers[0].Name)
}
