package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Resolver suggests the rate a new line item starts with.
type Resolver interface {
	DefaultRate(ctx context.Context, orgID snowflake.ID) (Rate, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Disable(ctx context.Context, id string) (*Response, error)
}

type ListRequest struct {
	Name      string
	Code      string
	IsEnabled *bool
	SortBy    string
	OrderBy   string
}

type CreateRequest struct {
	Code        string  `json:"code" validate:"required,max=64"`
	Name        string  `json:"name" validate:"required,max=255"`
	Rate        Rate    `json:"rate"`
	Description *string `json:"description"`
	IsDefault   bool    `json:"is_default"`
	IsEnabled   *bool   `json:"is_enabled"`
}

type UpdateRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	Rate        *Rate   `json:"rate,omitempty"`
	Description *string `json:"description,omitempty"`
	IsDefault   *bool   `json:"is_default,omitempty"`
}

type Response struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Rate           Rate      `json:"rate"`
	Description    *string   `json:"description,omitempty"`
	IsDefault      bool      `json:"is_default"`
	IsEnabled      bool      `json:"is_enabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
