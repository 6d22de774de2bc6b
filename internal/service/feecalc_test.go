package service_test

import (
	"testing"

	"schoolpay/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeFees_WithDiscount(t *testing.T) {
	// registration 500 + monthly plan 8000 = 8500; 10% off = 850; payable 7650
	fees, err := service.ComputeFees(d("500"), d("8000"), d("10"))
	require.NoError(t, err)
	assert.Equal(t, "8500", fees.BaseTotal.String())
	assert.Equal(t, "850", fees.DiscountAmount.String())
	assert.Equal(t, "7650", fees.FinalAmount.String())
}

func TestComputeFees_ZeroDiscount(t *testing.T) {
	fees, err := service.ComputeFees(d("500"), d("20000"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "20500", fees.BaseTotal.String())
	assert.True(t, fees.DiscountAmount.IsZero())
	assert.Equal(t, "20500", fees.FinalAmount.String())
}

func TestComputeFees_FullDiscount(t *testing.T) {
	fees, err := service.ComputeFees(d("500"), d("8000"), d("100"))
	require.NoError(t, err)
	assert.True(t, fees.FinalAmount.IsZero())
}

func TestComputeFees_RoundsToCents(t *testing.T) {
	// 1000.01 × 12.5% = 125.00125 → 125.00
	fees, err := service.ComputeFees(d("1000.01"), decimal.Zero, d("12.5"))
	require.NoError(t, err)
	assert.Equal(t, "125", fees.DiscountAmount.String())
	assert.Equal(t, "875.01", fees.FinalAmount.String())
}

func TestComputeFees_DiscountOutOfRange(t *testing.T) {
	_, err := service.ComputeFees(d("500"), d("8000"), d("-1"))
	assert.ErrorIs(t, err, service.ErrInvalidDiscount)

	_, err = service.ComputeFees(d("500"), d("8000"), d("100.01"))
	assert.ErrorIs(t, err, service.ErrInvalidDiscount)
}
