package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SubmitPaymentRequest is the body of POST /v1/registrations/:id/payment.
// For CASH / BANK_TRANSFER the cashier must supply PaidAmount plus at least
// one of ReceiptNumber / TransactionNumber; the cashier-entered amount is
// trusted as the amount actually collected.
type SubmitPaymentRequest struct {
	PaymentMethod      string           `json:"payment_method"      validate:"required,oneof=CASH BANK_TRANSFER TELEBIRR ONLINE"`
	DiscountPercentage decimal.Decimal  `json:"discount_percentage" validate:"min=0,max=100"`
	ReceiptNumber      *string          `json:"receipt_number"      validate:"omitempty,min=1"`
	TransactionNumber  *string          `json:"transaction_number"  validate:"omitempty,min=1"`
	PaidAmount         *decimal.Decimal `json:"paid_amount"`
	Notes              *string          `json:"notes"`
	// PaymentDate is YYYY-MM-DD; empty = today.
	PaymentDate string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
}

// ConfirmPaymentRequest is the gateway callback body confirming a PENDING
// TELEBIRR / ONLINE payment.
type ConfirmPaymentRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PaymentResponse struct {
	ID            string          `json:"id"`
	PaymentNumber string          `json:"payment_number"`
	InvoiceID     string          `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	TransactionID *string         `json:"transaction_id"`
	Notes         *string         `json:"notes"`
	PaymentDate   string          `json:"payment_date"`
	CreatedAt     string          `json:"created_at"`
}

// SubmitPaymentResponse is returned by POST /v1/registrations/:id/payment.
// RedirectTo is the gateway payment link for TELEBIRR / ONLINE submissions,
// or the registration success page for manual ones.
type SubmitPaymentResponse struct {
	Registration RegistrationResponse `json:"registration"`
	Invoice      InvoiceResponse      `json:"invoice"`
	Payment      PaymentResponse      `json:"payment"`
	RedirectTo   string               `json:"redirect_to"`
}

// PaymentDetailResponse is returned by GET /v1/registrations/:id/payment —
// everything the payment page needs to render.
type PaymentDetailResponse struct {
	Registration  RegistrationResponse `json:"registration"`
	LatestInvoice *InvoiceResponse     `json:"latest_invoice,omitempty"`
}
