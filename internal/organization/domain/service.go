package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, id string) (*OrganizationResponse, error)
	SetBillingPreferences(ctx context.Context, orgID string, req BillingPreferencesRequest) (*OrganizationResponse, error)
	// Currency returns the organization's billing currency, or the configured
	// default when no preference is stored.
	Currency(ctx context.Context, orgID snowflake.ID) (string, error)
}

type CreateOrganizationRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	CountryCode  string   `json:"country_code" validate:"omitempty,iso3166_1_alpha2"`
	SupportEmail string   `json:"support_email" validate:"omitempty,email"`
	AddressLines []string `json:"address_lines" validate:"max=6"`
	Currency     string   `json:"currency"`
	Timezone     string   `json:"timezone"`
}

type BillingPreferencesRequest struct {
	Currency string `json:"currency" validate:"required,len=3"`
	Timezone string `json:"timezone"`
}

type OrganizationResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	CountryCode  string   `json:"country_code"`
	SupportEmail string   `json:"support_email,omitempty"`
	AddressLines []string `json:"address_lines"`
	Currency     string   `json:"currency"`
	Timezone     string   `json:"timezone"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidTimezone     = errors.New("invalid_timezone")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrNotFound            = errors.New("not_found")
)
