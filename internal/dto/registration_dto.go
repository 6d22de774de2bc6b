package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateRegistrationRequest struct {
	StudentID       string `json:"student_id"       validate:"required,uuid"`
	PaymentDuration string `json:"payment_duration" validate:"required,oneof=MONTHLY QUARTERLY"`
}

type CancelRegistrationRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ParentResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
}

type StudentResponse struct {
	ID        string          `json:"id"`
	StudentID string          `json:"student_id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Parent    *ParentResponse `json:"parent,omitempty"`
}

type BranchResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type GradeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RegistrationResponse struct {
	ID                 string          `json:"id"`
	RegistrationNumber string          `json:"registration_number"`
	Status             string          `json:"status"`
	PaymentDuration    string          `json:"payment_duration"`
	RegistrationFee    decimal.Decimal `json:"registration_fee"`
	AdditionalFee      decimal.Decimal `json:"additional_fee"`
	ServiceFee         decimal.Decimal `json:"service_fee"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	PaymentDueDate     *string         `json:"payment_due_date"`
	CompletedAt        *string         `json:"completed_at"`
	Student            *StudentResponse `json:"student,omitempty"`
	Branch             *BranchResponse  `json:"branch,omitempty"`
	Grade              *GradeResponse   `json:"grade,omitempty"`
	CreatedAt          string          `json:"created_at"`
}
