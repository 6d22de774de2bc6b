package service

import (
	"errors"

	"schoolpay/internal/model"

	"github.com/google/uuid"
)

// Service-level error sentinels. Handlers map these onto HTTP status codes;
// any other error surfaces as a generic 400/500 without leaking internals.
var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrAccessDenied         = errors.New("access denied")

	// ErrPaymentAlreadyCompleted covers both the pre-flight status check and
	// the conditional update inside the transaction losing a race.
	ErrPaymentAlreadyCompleted = errors.New("payment already completed")
)

// Request errors — caller mistakes that surface as 400 with the message
// intact. Anything not in this family or the sentinels above is treated as an
// internal failure by the handler layer.
var (
	ErrUnknownPaymentMethod   = errors.New("unknown payment method")
	ErrUnknownPaymentDuration = errors.New("unknown payment duration")
	ErrManualReferenceMissing = errors.New("receipt number or transaction number is required for cash and bank transfer payments")
	ErrManualAmountMissing    = errors.New("paid amount is required and must be greater than zero")
	ErrNotGatewayPayment      = errors.New("manual payments are settled at submission time")
	ErrNoPricingSchema        = errors.New("no pricing schema configured for this branch and grade")
	ErrInvalidStudentID       = errors.New("invalid student id")
	ErrInvalidBranchID        = errors.New("invalid branch id")
	ErrReceiptNotReady        = errors.New("receipt PDF not yet generated")
)

// Actor is the authenticated staff member performing an operation, resolved
// from JWT claims by the handler layer.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     string
	BranchID *uuid.UUID
}

// Unrestricted reports whether the actor may operate across all branches.
func (a Actor) Unrestricted() bool { return a.Role == model.RoleAdmin }

// CanAccessBranch is the branch guard applied to every scoped operation.
func (a Actor) CanAccessBranch(branchID uuid.UUID) bool {
	if a.Unrestricted() {
		return true
	}
	return a.BranchID != nil && *a.BranchID == branchID
}
