package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// TaxDefinition is an org-scoped named rate offered to the document editor
// (for example "GST 18%"). The code is stable once created; the name and
// rate are editable.
type TaxDefinition struct {
	ID    snowflake.ID
	OrgID snowflake.ID

	Name string
	Code string
	Rate Rate

	Description *string
	IsDefault   bool
	IsEnabled   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *TaxDefinition) Validate() error {
	if strings.TrimSpace(t.Code) == "" {
		return ErrInvalidTaxCode
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrInvalidName
	}
	if !t.Rate.IsSet() || t.Rate.IsNegative() {
		return ErrInvalidTaxRate
	}
	if _, ok := t.Rate.BasisPoints(); !ok {
		return ErrInvalidTaxRate
	}
	return nil
}
