package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegistrationStatus is the registration state machine:
//
//	PENDING_PAYMENT → PAYMENT_COMPLETED → ENROLLED
//
// CANCELLED is terminal and reachable from any non-terminal state.
type RegistrationStatus string

const (
	RegistrationPendingPayment   RegistrationStatus = "PENDING_PAYMENT"
	RegistrationPaymentCompleted RegistrationStatus = "PAYMENT_COMPLETED"
	RegistrationEnrolled         RegistrationStatus = "ENROLLED"
	RegistrationCancelled        RegistrationStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed.
func (s RegistrationStatus) Terminal() bool {
	return s == RegistrationEnrolled || s == RegistrationCancelled
}

// CanTransitionTo enforces the state machine above.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	switch {
	case next == RegistrationCancelled:
		return !s.Terminal()
	case s == RegistrationPendingPayment:
		return next == RegistrationPaymentCompleted
	case s == RegistrationPaymentCompleted:
		return next == RegistrationEnrolled
	default:
		return false
	}
}

// PaymentDuration is the fee plan chosen at registration time.
type PaymentDuration string

const (
	DurationMonthly   PaymentDuration = "MONTHLY"
	DurationQuarterly PaymentDuration = "QUARTERLY"
)

// FeeTypeCode maps the duration to the fee type tagging its invoice item.
func (d PaymentDuration) FeeTypeCode() FeeTypeCode {
	if d == DurationQuarterly {
		return FeeTypeQuarterly
	}
	return FeeTypeMonthly
}

// ItemDescription is the human-readable line-item text for the plan.
func (d PaymentDuration) ItemDescription() string {
	switch d {
	case DurationMonthly:
		return "Monthly Fee (1st & Last Month)"
	case DurationQuarterly:
		return "Quarterly Fee (2.5 Months)"
	default:
		return "Additional Fee"
	}
}

// Registration is a student's request to enroll for a period. Fee amounts
// are snapshotted from the pricing schema at creation time.
//
// Invariants: TotalAmount = RegistrationFee + AdditionalFee + ServiceFee;
// DiscountAmount = (RegistrationFee + AdditionalFee) * DiscountPercentage / 100.
type Registration struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegistrationNumber string             `gorm:"uniqueIndex;not null"`
	StudentID          uuid.UUID          `gorm:"type:uuid;index;not null"`
	BranchID           uuid.UUID          `gorm:"type:uuid;index;not null"`
	GradeID            uuid.UUID          `gorm:"type:uuid;not null"`
	Status             RegistrationStatus `gorm:"type:varchar(20);not null;default:'PENDING_PAYMENT';index"`
	PaymentDuration    PaymentDuration    `gorm:"type:varchar(10);not null"`
	RegistrationFee    decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	AdditionalFee      decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0"`
	ServiceFee         decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount        decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	DiscountPercentage decimal.Decimal    `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount     decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0"`
	PaidAmount         decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentDueDate     *time.Time
	CompletedAt        *time.Time
	CancelledReason    *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Student *Student `gorm:"foreignKey:StudentID"`
	Branch  *Branch  `gorm:"foreignKey:BranchID"`
	Grade   *Grade   `gorm:"foreignKey:GradeID"`
}
