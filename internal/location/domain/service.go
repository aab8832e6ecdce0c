package domain

import (
	"context"
	"errors"
)

type CreateLocationRequest struct {
	CustomerID   string   `json:"-"`
	Name         string   `json:"name" validate:"required,max=200"`
	AddressLines []string `json:"address_lines" validate:"max=6,dive,max=200"`
	City         string   `json:"city" validate:"max=100"`
	State        string   `json:"state" validate:"max=100"`
	PostalCode   string   `json:"postal_code" validate:"max=20"`
	CountryCode  string   `json:"country_code" validate:"omitempty,iso3166_1_alpha2"`
}

type Service interface {
	Create(ctx context.Context, req CreateLocationRequest) (Location, error)
	List(ctx context.Context, customerID string) ([]Location, error)
	GetByID(ctx context.Context, id string) (Location, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
