package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EntityTypeCustomer = "customer"
	EntityTypeSupplier = "supplier"
	EntityTypeBoth     = "both"
)

// BusinessEntity is the unified counterparty record. Supplier-specific fields
// (lead time, quality rating) are retained even when the entity is only a
// customer; they are simply unused until a supplier merge promotes the type.
type BusinessEntity struct {
	ID               uuid.UUID        `json:"id"`
	WorkspaceID      uuid.UUID        `json:"workspace_id"`
	CompanyID        uuid.UUID        `json:"company_id"`
	EntityType       string           `json:"entity_type"`
	Name             string           `json:"name"`
	TaxNumber        *string          `json:"tax_number,omitempty"`
	CustomerCode     *string          `json:"customer_code,omitempty"`
	SupplierCode     *string          `json:"supplier_code,omitempty"`
	Email            *string          `json:"email,omitempty"`
	Phone            *string          `json:"phone,omitempty"`
	Address          *string          `json:"address,omitempty"`
	City             *string          `json:"city,omitempty"`
	Country          *string          `json:"country,omitempty"`
	CreditLimit      decimal.Decimal  `json:"credit_limit"`
	OpeningBalance   decimal.Decimal  `json:"opening_balance"`
	PaymentTermsDays int              `json:"payment_terms_days"`
	LeadTimeDays     *int             `json:"lead_time_days,omitempty"`
	QualityRating    *decimal.Decimal `json:"quality_rating,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	DeletedAt        *time.Time       `json:"deleted_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (e *BusinessEntity) IsCustomer() bool {
	return e.EntityType == EntityTypeCustomer || e.EntityType == EntityTypeBoth
}

func (e *BusinessEntity) IsSupplier() bool {
	return e.EntityType == EntityTypeSupplier || e.EntityType == EntityTypeBoth
}
