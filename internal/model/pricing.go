package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeTypeCode is the stable identifier for a fee category. Invoice items
// reference fee types by code, never by display name.
type FeeTypeCode string

const (
	FeeTypeRegistration FeeTypeCode = "REGISTRATION"
	FeeTypeMonthly      FeeTypeCode = "MONTHLY"
	FeeTypeQuarterly    FeeTypeCode = "QUARTERLY"
	FeeTypeService      FeeTypeCode = "SERVICE"
)

// FeeType is a reference row used to tag invoice line items.
// The table is seeded at startup; rows are never deleted.
type FeeType struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      FeeTypeCode `gorm:"type:varchar(20);uniqueIndex;not null"`
	Name      string      `gorm:"not null"`
	Active    bool        `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PricingSchema is immutable reference data keyed by (branch, grade),
// looked up once at registration time. Fees are snapshotted onto the
// Registration so later schema edits never change an open registration.
type PricingSchema struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_pricing_branch_grade"`
	GradeID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_pricing_branch_grade"`
	RegistrationFee decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MonthlyFee      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	QuarterlyFee    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ServiceFee      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Branch *Branch `gorm:"foreignKey:BranchID"`
	Grade  *Grade  `gorm:"foreignKey:GradeID"`
}
