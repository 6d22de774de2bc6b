package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod splits into two groups with different settlement semantics:
//
//   - Manual (CASH, BANK_TRANSFER): verified synchronously by staff; the
//     cashier-entered amount is trusted verbatim.
//   - Gateway (ONLINE, TELEBIRR): confirmed asynchronously by the payment
//     provider; amount is always the computed final amount.
//
// Every decision point dispatches on Manual() exactly once instead of
// re-comparing method strings.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodTelebirr     PaymentMethod = "TELEBIRR"
	MethodOnline       PaymentMethod = "ONLINE"
)

// Manual reports whether the method is settled synchronously by staff.
func (m PaymentMethod) Manual() bool {
	return m == MethodCash || m == MethodBankTransfer
}

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodTelebirr, MethodOnline:
		return true
	}
	return false
}

// PaymentStatus values.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment records funds received (manual) or expected (gateway) against an
// invoice and registration.
type Payment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PaymentNumber  string          `gorm:"uniqueIndex;not null"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	StudentID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	RegistrationID *uuid.UUID      `gorm:"type:uuid;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method         PaymentMethod   `gorm:"type:varchar(20);not null;index"`
	Status         PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	// TransactionID holds the cashier receipt number, bank reference, or
	// gateway transaction id — whichever applies.
	TransactionID *string `gorm:"index"`
	Notes         *string
	PaymentDate   time.Time  `gorm:"not null"`
	ProcessedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Invoice *Invoice `gorm:"foreignKey:InvoiceID"`
	Student *Student `gorm:"foreignKey:StudentID"`
}
