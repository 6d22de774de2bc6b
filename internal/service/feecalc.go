package service

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidDiscount is returned before any computation or persistence when
// the discount percentage falls outside [0, 100].
var ErrInvalidDiscount = errors.New("discount percentage must be between 0 and 100")

var hundred = decimal.NewFromInt(100)

// FeeBreakdown is the result of the fee calculation:
//
//	BaseTotal      = registrationFee + additionalFee
//	DiscountAmount = BaseTotal * discountPct / 100
//	FinalAmount    = BaseTotal - DiscountAmount
type FeeBreakdown struct {
	BaseTotal      decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
}

// ComputeFees derives the payable amounts for a registration. It is a pure
// function; amounts are rounded to 2 decimal places (cents of a Birr).
func ComputeFees(registrationFee, additionalFee, discountPct decimal.Decimal) (FeeBreakdown, error) {
	if discountPct.IsNegative() || discountPct.GreaterThan(hundred) {
		return FeeBreakdown{}, ErrInvalidDiscount
	}

	base := registrationFee.Add(additionalFee)
	discount := base.Mul(discountPct).Div(hundred).Round(2)

	return FeeBreakdown{
		BaseTotal:      base,
		DiscountAmount: discount,
		FinalAmount:    base.Sub(discount),
	}, nil
}
