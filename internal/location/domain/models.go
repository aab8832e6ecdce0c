package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Location is a billing or shipping address belonging to a customer.
// Documents reference one optionally.
type Location struct {
	ID           snowflake.ID                `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID                `gorm:"not null;index:ix_customer_locations_org_customer,priority:1" json:"-"`
	CustomerID   snowflake.ID                `gorm:"not null;index:ix_customer_locations_org_customer,priority:2" json:"customer_id"`
	Name         string                      `gorm:"type:text;not null" json:"name"`
	AddressLines datatypes.JSONSlice[string] `gorm:"column:address_lines" json:"address_lines"`
	City         string                      `gorm:"type:text" json:"city"`
	State        string                      `gorm:"type:text" json:"state"`
	PostalCode   string                      `gorm:"type:text;column:postal_code" json:"postal_code"`
	CountryCode  string                      `gorm:"type:varchar(2);column:country_code" json:"country_code"`
	CreatedAt    time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Location) TableName() string { return "customer_locations" }

// Lines returns the printable address: street lines followed by
// "city state postal" and the country code, skipping empty parts.
func (l Location) Lines() []string {
	out := make([]string, 0, len(l.AddressLines)+2)
	out = append(out, l.AddressLines...)
	locality := joinNonEmpty(" ", l.City, l.State, l.PostalCode)
	if locality != "" {
		out = append(out, locality)
	}
	if l.CountryCode != "" {
		out = append(out, l.CountryCode)
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
