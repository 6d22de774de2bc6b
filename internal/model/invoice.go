package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus values. Manual payments settle the invoice synchronously
// (PAID); gateway payments leave it PENDING until the callback confirms.
type InvoiceStatus string

const (
	InvoicePending       InvoiceStatus = "PENDING"
	InvoicePaid          InvoiceStatus = "PAID"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceOverdue       InvoiceStatus = "OVERDUE"
	InvoiceCancelled     InvoiceStatus = "CANCELLED"
)

// Invoice is the billing document generated when a registration's payment
// is initiated, itemized by fee type.
type Invoice struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceNumber  string          `gorm:"uniqueIndex;not null"`
	StudentID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	BranchID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	RegistrationID *uuid.UUID      `gorm:"type:uuid;index"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	FinalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status         InvoiceStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DueDate        *time.Time
	// PDFPath is relative to PDF_STORAGE_PATH; set by the receipt worker.
	PDFPath   *string `gorm:"column:pdf_path"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Student      *Student      `gorm:"foreignKey:StudentID"`
	Branch       *Branch       `gorm:"foreignKey:BranchID"`
	Registration *Registration `gorm:"foreignKey:RegistrationID"`
	Items        []InvoiceItem `gorm:"foreignKey:InvoiceID"`
	Payments     []Payment     `gorm:"foreignKey:InvoiceID"`
}

// InvoiceItem is one fee component of an invoice. Zero-amount components
// are never materialized as items.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	FeeTypeID   uuid.UUID       `gorm:"type:uuid;not null"`
	Description string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null;default:1"`
	CreatedAt   time.Time

	FeeType *FeeType `gorm:"foreignKey:FeeTypeID"`
}
