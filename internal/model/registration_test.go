package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to RegistrationStatus
		allowed  bool
	}{
		{RegistrationPendingPayment, RegistrationPaymentCompleted, true},
		{RegistrationPendingPayment, RegistrationCancelled, true},
		{RegistrationPendingPayment, RegistrationEnrolled, false},
		{RegistrationPaymentCompleted, RegistrationEnrolled, true},
		{RegistrationPaymentCompleted, RegistrationCancelled, true},
		{RegistrationPaymentCompleted, RegistrationPendingPayment, false},
		{RegistrationEnrolled, RegistrationCancelled, false},
		{RegistrationEnrolled, RegistrationPendingPayment, false},
		{RegistrationCancelled, RegistrationPendingPayment, false},
		{RegistrationCancelled, RegistrationCancelled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestRegistrationStatus_Terminal(t *testing.T) {
	assert.False(t, RegistrationPendingPayment.Terminal())
	assert.False(t, RegistrationPaymentCompleted.Terminal())
	assert.True(t, RegistrationEnrolled.Terminal())
	assert.True(t, RegistrationCancelled.Terminal())
}

func TestPaymentDuration_FeeTypeCode(t *testing.T) {
	assert.Equal(t, FeeTypeMonthly, DurationMonthly.FeeTypeCode())
	assert.Equal(t, FeeTypeQuarterly, DurationQuarterly.FeeTypeCode())
}

func TestPaymentDuration_ItemDescription(t *testing.T) {
	assert.Equal(t, "Monthly Fee (1st & Last Month)", DurationMonthly.ItemDescription())
	assert.Equal(t, "Quarterly Fee (2.5 Months)", DurationQuarterly.ItemDescription())
}
