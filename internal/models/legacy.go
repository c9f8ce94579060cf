package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer and Supplier are the pre-consolidation tables. The consolidation
// engine reads them and folds each row into business_entities, preserving the
// original primary key so foreign keys elsewhere keep resolving.

type Customer struct {
	ID               uuid.UUID
	WorkspaceID      uuid.UUID
	CompanyID        uuid.UUID
	Name             string
	TaxNumber        *string
	Code             *string
	Email            *string
	Phone            *string
	Address          *string
	City             *string
	Country          *string
	CreditLimit      decimal.Decimal
	OpeningBalance   decimal.Decimal
	PaymentTermsDays int
	CreatedAt        time.Time
}

type Supplier struct {
	ID               uuid.UUID
	WorkspaceID      uuid.UUID
	CompanyID        uuid.UUID
	Name             string
	TaxNumber        *string
	Code             *string
	Email            *string
	Phone            *string
	Address          *string
	City             *string
	Country          *string
	OpeningBalance   decimal.Decimal
	PaymentTermsDays int
	LeadTimeDays     *int
	QualityRating    *decimal.Decimal
	CreatedAt        time.Time
}
