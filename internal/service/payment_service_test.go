package service_test

import (
	"context"
	"testing"

	"schoolpay/internal/dto"
	"schoolpay/internal/model"
	"schoolpay/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDomain = "https://pay.school.example"

func buildPaymentSvc() (service.PaymentService, *stubRegistrationRepo, *stubInvoiceRepo, *stubPaymentRepo) {
	regRepo := newStubRegistrationRepo()
	invoiceRepo := newStubInvoiceRepo()
	paymentRepo := newStubPaymentRepo()
	feeTypeRepo := newStubFeeTypeRepo()

	svc := service.NewPaymentService(regRepo, invoiceRepo, paymentRepo, feeTypeRepo, nil, testDomain)
	return svc, regRepo, invoiceRepo, paymentRepo
}

// seedRegistration stores a PENDING_PAYMENT monthly registration:
// 500 registration fee + 8000 first-and-last-month fee.
func seedRegistration(regRepo *stubRegistrationRepo, branchID uuid.UUID) *model.Registration {
	reg := &model.Registration{
		ID:                 uuid.New(),
		RegistrationNumber: "REG-000001",
		StudentID:          uuid.New(),
		BranchID:           branchID,
		GradeID:            uuid.New(),
		Status:             model.RegistrationPendingPayment,
		PaymentDuration:    model.DurationMonthly,
		RegistrationFee:    d("500"),
		AdditionalFee:      d("8000"),
		ServiceFee:         d("200"),
		TotalAmount:        d("8700"),
	}
	regRepo.regs[reg.ID] = reg
	return reg
}

func cashierAt(branchID uuid.UUID) service.Actor {
	return service.Actor{
		UserID:   uuid.New(),
		Username: "cashier1",
		Role:     model.RoleCashier,
		BranchID: &branchID,
	}
}

func strPtr(s string) *string { return &s }

func TestSubmitPayment_CashSettlesSynchronously(t *testing.T) {
	svc, regRepo, invoiceRepo, paymentRepo := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)

	paid := d("7650")
	resp, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod:      "CASH",
		DiscountPercentage: d("10"),
		ReceiptNumber:      strPtr("RCP-4411"),
		PaidAmount:         &paid,
	})
	require.NoError(t, err)

	// Invoice settled with the computed breakdown
	assert.Equal(t, "INV-000001", resp.Invoice.InvoiceNumber)
	assert.Equal(t, string(model.InvoicePaid), resp.Invoice.Status)
	assert.Equal(t, "8500", resp.Invoice.TotalAmount.String())
	assert.Equal(t, "850", resp.Invoice.DiscountAmount.String())
	assert.Equal(t, "7650", resp.Invoice.FinalAmount.String())
	assert.Len(t, resp.Invoice.Items, 2)

	// Payment completed with the cashier's reference
	assert.Equal(t, "PAY-000001", resp.Payment.PaymentNumber)
	assert.Equal(t, string(model.PaymentCompleted), resp.Payment.Status)
	require.NotNil(t, resp.Payment.TransactionID)
	assert.Equal(t, "RCP-4411", *resp.Payment.TransactionID)

	// Registration advanced in the same unit of work
	assert.Equal(t, model.RegistrationPaymentCompleted, reg.Status)
	assert.NotNil(t, reg.CompletedAt)
	assert.Equal(t, "7650", reg.PaidAmount.String())
	assert.Equal(t, "850", reg.DiscountAmount.String())

	assert.Equal(t, "/registrations/"+reg.ID.String()+"?payment=success", resp.RedirectTo)

	assert.Len(t, invoiceRepo.invoices, 1)
	assert.Len(t, paymentRepo.payments, 1)
}

func TestSubmitPayment_OnlineStaysPending(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)

	resp, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "ONLINE",
	})
	require.NoError(t, err)

	// Nothing settles until the gateway confirms
	assert.Equal(t, string(model.InvoicePending), resp.Invoice.Status)
	assert.Equal(t, string(model.PaymentPending), resp.Payment.Status)
	assert.Equal(t, model.RegistrationPendingPayment, reg.Status)
	assert.Nil(t, reg.CompletedAt)

	// Gateway charges the full computed amount
	assert.Equal(t, "8500", resp.Payment.Amount.String())

	// Caller is redirected to the hosted payment link
	assert.Equal(t, testDomain+"/pay/"+resp.Invoice.ID, resp.RedirectTo)
}

func TestSubmitPayment_TelebirrWithDiscount(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)

	resp, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod:      "TELEBIRR",
		DiscountPercentage: d("25"),
	})
	require.NoError(t, err)
	assert.Equal(t, "6375", resp.Payment.Amount.String())
	assert.Equal(t, "6375", resp.Invoice.FinalAmount.String())
}

func TestSubmitPayment_AlreadyCompleted(t *testing.T) {
	svc, regRepo, invoiceRepo, _ := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)
	reg.Status = model.RegistrationPaymentCompleted

	paid := d("8500")
	_, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "CASH",
		ReceiptNumber: strPtr("RCP-1"),
		PaidAmount:    &paid,
	})
	assert.ErrorIs(t, err, service.ErrPaymentAlreadyCompleted)
	assert.Empty(t, invoiceRepo.invoices)
}

func TestSubmitPayment_LosesRaceInsideTransaction(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)

	// A concurrent submission completes the registration after pre-flight
	// passes but before the conditional update runs.
	regRepo.beforeApply = func() { reg.Status = model.RegistrationPaymentCompleted }

	paid := d("8500")
	_, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "CASH",
		ReceiptNumber: strPtr("RCP-2"),
		PaidAmount:    &paid,
	})
	assert.ErrorIs(t, err, service.ErrPaymentAlreadyCompleted)
}

func TestSubmitPayment_ManualRequiresReference(t *testing.T) {
	svc, regRepo, invoiceRepo, _ := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)

	paid := d("8500")
	_, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "BANK_TRANSFER",
		PaidAmount:    &paid,
	})
	assert.ErrorContains(t, err, "receipt number or transaction number")
	assert.Empty(t, invoiceRepo.invoices)
}

func TestSubmitPayment_ManualRequiresPositiveAmount(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)

	_, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "CASH",
		ReceiptNumber: strPtr("RCP-3"),
	})
	assert.ErrorContains(t, err, "paid amount")
}

func TestSubmitPayment_BranchScopeDenied(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	reg := seedRegistration(regRepo, uuid.New())

	otherBranch := uuid.New()
	paid := d("8500")
	_, err := svc.SubmitPayment(context.Background(), cashierAt(otherBranch), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "CASH",
		ReceiptNumber: strPtr("RCP-4"),
		PaidAmount:    &paid,
	})
	assert.ErrorIs(t, err, service.ErrAccessDenied)
}

func TestSubmitPayment_AdminCrossesBranches(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	reg := seedRegistration(regRepo, uuid.New())

	admin := service.Actor{UserID: uuid.New(), Username: "root", Role: model.RoleAdmin}
	paid := d("8500")
	_, err := svc.SubmitPayment(context.Background(), admin, reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "CASH",
		ReceiptNumber: strPtr("RCP-5"),
		PaidAmount:    &paid,
	})
	assert.NoError(t, err)
}

func TestSubmitPayment_InvalidDiscount(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)

	paid := d("8500")
	_, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod:      "CASH",
		DiscountPercentage: d("120"),
		ReceiptNumber:      strPtr("RCP-6"),
		PaidAmount:         &paid,
	})
	assert.ErrorIs(t, err, service.ErrInvalidDiscount)
}

func TestSubmitPayment_RegistrationNotFound(t *testing.T) {
	svc, _, _, _ := buildPaymentSvc()

	_, err := svc.SubmitPayment(context.Background(), cashierAt(uuid.New()), uuid.New(), dto.SubmitPaymentRequest{
		PaymentMethod: "ONLINE",
	})
	assert.ErrorIs(t, err, service.ErrRegistrationNotFound)
}

func TestSubmitPayment_ZeroFeeComponentOmitted(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)
	reg.RegistrationFee = decimal.Zero // returning student: no registration fee

	resp, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "ONLINE",
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoice.Items, 1)
	assert.Equal(t, "Monthly Fee (1st & Last Month)", resp.Invoice.Items[0].Description)
	assert.Equal(t, "8000", resp.Invoice.FinalAmount.String())
}

// ── Gateway confirmation ──────────────────────────────────────────────────────

func seedPendingGatewaySubmission(t *testing.T, svc service.PaymentService, regRepo *stubRegistrationRepo) (*model.Registration, *dto.SubmitPaymentResponse) {
	t.Helper()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)
	resp, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "TELEBIRR",
	})
	require.NoError(t, err)
	return reg, resp
}

func TestConfirmGatewayPayment_SettlesEverything(t *testing.T) {
	svc, regRepo, invoiceRepo, paymentRepo := buildPaymentSvc()
	reg, resp := seedPendingGatewaySubmission(t, svc, regRepo)

	err := svc.ConfirmGatewayPayment(context.Background(), resp.Payment.PaymentNumber, dto.ConfirmPaymentRequest{
		TransactionID: "TB-9001",
	})
	require.NoError(t, err)

	payment := paymentRepo.payments[resp.Payment.PaymentNumber]
	assert.Equal(t, model.PaymentCompleted, payment.Status)
	require.NotNil(t, payment.TransactionID)
	assert.Equal(t, "TB-9001", *payment.TransactionID)

	invoice := invoiceRepo.invoices[uuid.MustParse(resp.Invoice.ID)]
	assert.Equal(t, model.InvoicePaid, invoice.Status)
	assert.Equal(t, invoice.FinalAmount.String(), invoice.PaidAmount.String())

	assert.Equal(t, model.RegistrationPaymentCompleted, reg.Status)
	assert.NotNil(t, reg.CompletedAt)
}

func TestConfirmGatewayPayment_DuplicateCallback(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	_, resp := seedPendingGatewaySubmission(t, svc, regRepo)

	require.NoError(t, svc.ConfirmGatewayPayment(context.Background(), resp.Payment.PaymentNumber,
		dto.ConfirmPaymentRequest{TransactionID: "TB-1"}))

	err := svc.ConfirmGatewayPayment(context.Background(), resp.Payment.PaymentNumber,
		dto.ConfirmPaymentRequest{TransactionID: "TB-2"})
	assert.ErrorIs(t, err, service.ErrPaymentAlreadyCompleted)
}

func TestConfirmGatewayPayment_RejectsManual(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)

	paid := d("8500")
	resp, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "CASH",
		ReceiptNumber: strPtr("RCP-7"),
		PaidAmount:    &paid,
	})
	require.NoError(t, err)

	err = svc.ConfirmGatewayPayment(context.Background(), resp.Payment.PaymentNumber,
		dto.ConfirmPaymentRequest{TransactionID: "TB-3"})
	assert.ErrorContains(t, err, "manual payments")
}

func TestConfirmGatewayPayment_UnknownNumber(t *testing.T) {
	svc, _, _, _ := buildPaymentSvc()
	err := svc.ConfirmGatewayPayment(context.Background(), "PAY-999999",
		dto.ConfirmPaymentRequest{TransactionID: "TB-4"})
	assert.ErrorIs(t, err, service.ErrPaymentNotFound)
}

// ── Payment page ──────────────────────────────────────────────────────────────

func TestGetPaymentDetail_IncludesLatestInvoice(t *testing.T) {
	svc, regRepo, _, _ := buildPaymentSvc()
	branchID := uuid.New()
	reg := seedRegistration(regRepo, branchID)

	resp, err := svc.SubmitPayment(context.Background(), cashierAt(branchID), reg.ID, dto.SubmitPaymentRequest{
		PaymentMethod: "ONLINE",
	})
	require.NoError(t, err)

	detail, err := svc.GetPaymentDetail(context.Background(), cashierAt(branchID), reg.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.LatestInvoice)
	assert.Equal(t, resp.Invoice.InvoiceNumber, detail.LatestInvoice.InvoiceNumber)
}

func TestGetPaymentDetail_NotFound(t *testing.T) {
	svc, _, _, _ := buildPaymentSvc()
	_, err := svc.GetPaymentDetail(context.Background(), cashierAt(uuid.New()), uuid.New())
	assert.ErrorIs(t, err, service.ErrRegistrationNotFound)
}
