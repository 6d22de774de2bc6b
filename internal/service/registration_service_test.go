package service_test

import (
	"context"
	"testing"

	"schoolpay/internal/dto"
	"schoolpay/internal/model"
	"schoolpay/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRegistrationSvc() (service.RegistrationService, *stubRegistrationRepo, *stubStudentRepo, *stubPricingRepo) {
	regRepo := newStubRegistrationRepo()
	studentRepo := newStubStudentRepo()
	pricingRepo := newStubPricingRepo()
	svc := service.NewRegistrationService(regRepo, studentRepo, pricingRepo, 7)
	return svc, regRepo, studentRepo, pricingRepo
}

// seedStudentWithPricing stores a student and the pricing schema of their
// (branch, grade): registration 500, monthly 1500, quarterly 3750, service 200.
func seedStudentWithPricing(studentRepo *stubStudentRepo, pricingRepo *stubPricingRepo) *model.Student {
	branchID, gradeID := uuid.New(), uuid.New()
	student := &model.Student{
		ID:        uuid.New(),
		StudentID: "YM-2026-0042",
		FirstName: "Hanna",
		LastName:  "Tesfaye",
		BranchID:  branchID,
		GradeID:   gradeID,
		Active:    true,
	}
	studentRepo.students[student.ID] = student
	pricingRepo.schemas[pricingKey{branchID, gradeID}] = &model.PricingSchema{
		ID:              uuid.New(),
		BranchID:        branchID,
		GradeID:         gradeID,
		RegistrationFee: d("500"),
		MonthlyFee:      d("1500"),
		QuarterlyFee:    d("3750"),
		ServiceFee:      d("200"),
		Active:          true,
	}
	return student
}

func registrarAt(branchID uuid.UUID) service.Actor {
	return service.Actor{UserID: uuid.New(), Username: "registrar1", Role: model.RoleRegistrar, BranchID: &branchID}
}

func TestCreateRegistration_MonthlyPlan(t *testing.T) {
	svc, regRepo, studentRepo, pricingRepo := buildRegistrationSvc()
	student := seedStudentWithPricing(studentRepo, pricingRepo)

	resp, err := svc.Create(context.Background(), registrarAt(student.BranchID), dto.CreateRegistrationRequest{
		StudentID:       student.ID.String(),
		PaymentDuration: "MONTHLY",
	})
	require.NoError(t, err)

	assert.Equal(t, "REG-000001", resp.RegistrationNumber)
	assert.Equal(t, string(model.RegistrationPendingPayment), resp.Status)
	assert.Equal(t, "500", resp.RegistrationFee.String())
	// Monthly plan collects first and last month up front: 2 × 1500
	assert.Equal(t, "3000", resp.AdditionalFee.String())
	assert.Equal(t, "200", resp.ServiceFee.String())
	assert.Equal(t, "3700", resp.TotalAmount.String())
	assert.NotNil(t, resp.PaymentDueDate)

	assert.Len(t, regRepo.regs, 1)
}

func TestCreateRegistration_QuarterlyPlan(t *testing.T) {
	svc, _, studentRepo, pricingRepo := buildRegistrationSvc()
	student := seedStudentWithPricing(studentRepo, pricingRepo)

	resp, err := svc.Create(context.Background(), registrarAt(student.BranchID), dto.CreateRegistrationRequest{
		StudentID:       student.ID.String(),
		PaymentDuration: "QUARTERLY",
	})
	require.NoError(t, err)
	assert.Equal(t, "3750", resp.AdditionalFee.String())
	assert.Equal(t, "4450", resp.TotalAmount.String())
}

func TestCreateRegistration_StudentNotFound(t *testing.T) {
	svc, _, _, _ := buildRegistrationSvc()

	_, err := svc.Create(context.Background(), registrarAt(uuid.New()), dto.CreateRegistrationRequest{
		StudentID:       uuid.New().String(),
		PaymentDuration: "MONTHLY",
	})
	assert.ErrorIs(t, err, service.ErrStudentNotFound)
}

func TestCreateRegistration_BranchScopeDenied(t *testing.T) {
	svc, _, studentRepo, pricingRepo := buildRegistrationSvc()
	student := seedStudentWithPricing(studentRepo, pricingRepo)

	_, err := svc.Create(context.Background(), registrarAt(uuid.New()), dto.CreateRegistrationRequest{
		StudentID:       student.ID.String(),
		PaymentDuration: "MONTHLY",
	})
	assert.ErrorIs(t, err, service.ErrAccessDenied)
}

func TestCreateRegistration_NoPricingSchema(t *testing.T) {
	svc, _, studentRepo, _ := buildRegistrationSvc()
	student := &model.Student{ID: uuid.New(), BranchID: uuid.New(), GradeID: uuid.New()}
	studentRepo.students[student.ID] = student

	_, err := svc.Create(context.Background(), registrarAt(student.BranchID), dto.CreateRegistrationRequest{
		StudentID:       student.ID.String(),
		PaymentDuration: "MONTHLY",
	})
	assert.ErrorContains(t, err, "no pricing schema")
}

func TestEnroll_FromPaymentCompleted(t *testing.T) {
	svc, regRepo, _, _ := buildRegistrationSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)
	reg.Status = model.RegistrationPaymentCompleted

	resp, err := svc.Enroll(context.Background(), registrarAt(branchID), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.RegistrationEnrolled), resp.Status)
}

func TestEnroll_RejectsUnpaid(t *testing.T) {
	svc, regRepo, _, _ := buildRegistrationSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID) // still PENDING_PAYMENT

	_, err := svc.Enroll(context.Background(), registrarAt(branchID), reg.ID)
	assert.ErrorIs(t, err, service.ErrNotReadyForEnrollment)
}

func TestCancel_PendingRegistration(t *testing.T) {
	svc, regRepo, _, _ := buildRegistrationSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)

	err := svc.Cancel(context.Background(), registrarAt(branchID), reg.ID, "duplicate registration")
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationCancelled, reg.Status)
	require.NotNil(t, reg.CancelledReason)
	assert.Equal(t, "duplicate registration", *reg.CancelledReason)
}

func TestCancel_AlreadyFinalized(t *testing.T) {
	svc, regRepo, _, _ := buildRegistrationSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)
	reg.Status = model.RegistrationEnrolled

	err := svc.Cancel(context.Background(), registrarAt(branchID), reg.ID, "too late")
	assert.ErrorIs(t, err, service.ErrAlreadyFinalized)
}
