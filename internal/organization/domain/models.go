// Package domain contains persistence models for the org service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Organization represents a tenant.
type Organization struct {
	ID           snowflake.ID                `gorm:"primaryKey" json:"id"`
	Name         string                      `gorm:"type:text;not null" json:"name"`
	Slug         string                      `gorm:"type:varchar(191);not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	SupportEmail string                      `gorm:"type:text;column:support_email" json:"support_email"`
	CountryCode  string                      `gorm:"type:varchar(2);column:country_code" json:"country_code"`
	AddressLines datatypes.JSONSlice[string] `gorm:"column:address_lines" json:"address_lines"`
	CreatedAt    time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// OrganizationBillingPreferences stores billing defaults for an organization.
type OrganizationBillingPreferences struct {
	OrgID     snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"org_id"`
	Currency  string       `gorm:"type:varchar(3);not null" json:"currency"`
	Timezone  string       `gorm:"type:text;not null" json:"timezone"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (OrganizationBillingPreferences) TableName() string { return "organization_billing_preferences" }
