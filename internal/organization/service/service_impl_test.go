package service

import (
	"context"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/invoicer/internal/clock"
	"github.com/smallbiznis/invoicer/internal/config"
	"github.com/smallbiznis/invoicer/internal/organization/domain"
	"github.com/smallbiznis/invoicer/internal/organization/repository"
	"github.com/smallbiznis/invoicer/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, defaultCurrency string) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Organization{}, &domain.OrganizationBillingPreferences{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.DefaultInvoicingConfig()
	cfg.DefaultCurrency = defaultCurrency

	return NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.NewRepository(db),
		Clock:     clock.NewFakeClock(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)),
		Config:    config.Static(cfg),
		Validator: validator.New(),
	})
}

func TestCreateOrganization(t *testing.T) {
	svc := newTestService(t, "INR")
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{
		Name:         "  Acme Traders  ",
		CountryCode:  "in",
		AddressLines: []string{"12 MG Road", " ", "Bengaluru"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", org.Name)
	assert.Equal(t, "acme-traders", org.Slug)
	assert.Equal(t, "IN", org.CountryCode)
	assert.Equal(t, []string{"12 MG Road", "Bengaluru"}, org.AddressLines)
	assert.Equal(t, "INR", org.Currency)
	assert.Equal(t, "UTC", org.Timezone)

	second, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme Traders"})
	require.NoError(t, err)
	assert.NotEqual(t, org.Slug, second.Slug)
	assert.Contains(t, second.Slug, "acme-traders-")

	got, err := svc.GetByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, org.Slug, got.Slug)
}

func TestCreateOrganizationRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t, "INR")
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme", Currency: "XYZ"})
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)

	_, err = svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme", Timezone: "Mars/Olympus"})
	assert.ErrorIs(t, err, domain.ErrInvalidTimezone)

	_, err = svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Acme", SupportEmail: "nope"})
	assert.ErrorIs(t, err, validator.ErrValidation)
}

func TestCurrencyFallsBackToConfiguredDefault(t *testing.T) {
	svc := newTestService(t, "USD")
	ctx := context.Background()

	currency, err := svc.Currency(ctx, snowflake.ID(12345))
	require.NoError(t, err)
	assert.Equal(t, "USD", currency)

	_, err = svc.Currency(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestSetBillingPreferencesChangesCurrency(t *testing.T) {
	svc := newTestService(t, "INR")
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Globex"})
	require.NoError(t, err)

	updated, err := svc.SetBillingPreferences(ctx, org.ID, domain.BillingPreferencesRequest{
		Currency: "eur",
		Timezone: "Europe/Berlin",
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", updated.Currency)
	assert.Equal(t, "Europe/Berlin", updated.Timezone)

	id, err := snowflake.ParseString(org.ID)
	require.NoError(t, err)
	currency, err := svc.Currency(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "EUR", currency)

	_, err = svc.SetBillingPreferences(ctx, org.ID, domain.BillingPreferencesRequest{Currency: "ABC"})
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newTestService(t, "INR")

	_, err := svc.GetByID(context.Background(), "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}
