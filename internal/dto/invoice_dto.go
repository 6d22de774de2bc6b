package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// InvoiceFilter is bound from the query string of GET /v1/invoices.
// BranchID is honored only for unrestricted roles; branch-scoped roles are
// always pinned to their own branch.
type InvoiceFilter struct {
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=20" validate:"min=1,max=100"`
	Status        string `form:"status"         validate:"omitempty,oneof=PENDING PAID PARTIALLY_PAID OVERDUE CANCELLED"`
	BranchID      string `form:"branch_id"      validate:"omitempty,uuid"`
	PaymentMethod string `form:"payment_method" validate:"omitempty,oneof=CASH BANK_TRANSFER TELEBIRR ONLINE"`
	// Search matches invoice number, student first/last name or student id
	// (case-insensitive substring).
	Search string `form:"search"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type InvoiceListItem struct {
	ID            string           `json:"id"`
	InvoiceNumber string           `json:"invoice_number"`
	Student       *StudentResponse `json:"student,omitempty"`
	Branch        *BranchResponse  `json:"branch,omitempty"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	FinalAmount   decimal.Decimal  `json:"final_amount"`
	PaidAmount    decimal.Decimal  `json:"paid_amount"`
	Status        string           `json:"status"`
	DueDate       *string          `json:"due_date"`
	CreatedAt     string           `json:"created_at"`
}

type InvoiceListResponse struct {
	Invoices   []InvoiceListItem `json:"invoices"`
	Pagination Pagination        `json:"pagination"`
}

// ─── Detail ──────────────────────────────────────────────────────────────────

type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	FeeType     string          `json:"fee_type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    int             `json:"quantity"`
}

type InvoiceResponse struct {
	ID             string                `json:"id"`
	InvoiceNumber  string                `json:"invoice_number"`
	RegistrationID *string               `json:"registration_id"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	FinalAmount    decimal.Decimal       `json:"final_amount"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	Status         string                `json:"status"`
	DueDate        *string               `json:"due_date"`
	Items          []InvoiceItemResponse `json:"items"`
	Payments       []PaymentResponse     `json:"payments,omitempty"`
	Student        *StudentResponse      `json:"student,omitempty"`
	PDFUrl         *string               `json:"pdf_url,omitempty"`
	CreatedAt      string                `json:"created_at"`
}
