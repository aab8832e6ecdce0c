package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/invoicer/pkg/db/pagination"
)

// ListCustomerRequest filters by Query, a case-insensitive fragment of the
// customer name or any of its email addresses.
type ListCustomerRequest struct {
	PageToken   string
	PageSize    int
	Query       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerFilter struct {
	Query       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name     string         `json:"name" validate:"required,max=200"`
	Emails   []string       `json:"emails" validate:"max=10"`
	Phone    *string        `json:"phone" validate:"omitempty,max=40"`
	Metadata map[string]any `json:"metadata"`
}

type GetCustomerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
