package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"schoolpay/internal/dto"
	"schoolpay/internal/model"
	"schoolpay/internal/repository"
	"schoolpay/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// paymentTxTimeout bounds the financial transaction. Past it the transaction
// aborts with no partial state retained.
const paymentTxTimeout = 15 * time.Second

type PaymentService interface {
	GetPaymentDetail(ctx context.Context, actor Actor, registrationID uuid.UUID) (*dto.PaymentDetailResponse, error)
	SubmitPayment(ctx context.Context, actor Actor, registrationID uuid.UUID, req dto.SubmitPaymentRequest) (*dto.SubmitPaymentResponse, error)
	ConfirmGatewayPayment(ctx context.Context, paymentNumber string, req dto.ConfirmPaymentRequest) error
}

type paymentService struct {
	regRepo     repository.RegistrationRepository
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	feeTypeRepo repository.FeeTypeRepository
	dispatcher  *worker.Dispatcher
	domain      string
}

func NewPaymentService(
	regRepo repository.RegistrationRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	feeTypeRepo repository.FeeTypeRepository,
	dispatcher *worker.Dispatcher,
	domain string,
) PaymentService {
	return &paymentService{
		regRepo:     regRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		feeTypeRepo: feeTypeRepo,
		dispatcher:  dispatcher,
		domain:      domain,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── GetPaymentDetail ──────────────────────────────────────────────────────────

func (s *paymentService) GetPaymentDetail(ctx context.Context, actor Actor, registrationID uuid.UUID) (*dto.PaymentDetailResponse, error) {
	reg, err := s.regRepo.FindDetail(ctx, registrationID)
	if err != nil {
		return nil, ErrRegistrationNotFound
	}
	if !actor.CanAccessBranch(reg.BranchID) {
		return nil, ErrAccessDenied
	}

	resp := &dto.PaymentDetailResponse{Registration: *registrationToResponse(reg)}
	if inv, err := s.invoiceRepo.FindLatestByRegistration(ctx, reg.ID); err == nil {
		resp.LatestInvoice = invoiceToResponse(inv)
	}
	return resp, nil
}

// ── SubmitPayment ─────────────────────────────────────────────────────────────
// The payment/invoice unit of work:
//   1. Validate everything outside the transaction (registration status,
//      branch access, discount range, manual-method fields).
//   2. BEGIN TX: nextval invoice+payment numbers, create invoice with line
//      items, create payment, conditionally update the registration.
//   3. COMMIT
//   4. (async) enqueue SMS confirmation / payment link + receipt job.
//
// The registration status precondition is re-asserted by the conditional
// update inside the transaction, so a concurrent double-submission loses the
// race cleanly instead of double-charging.

func (s *paymentService) SubmitPayment(ctx context.Context, actor Actor, registrationID uuid.UUID, req dto.SubmitPaymentRequest) (*dto.SubmitPaymentResponse, error) {
	method := model.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownPaymentMethod, req.PaymentMethod)
	}

	// 1. Pre-flight validation — nothing below touches the database for writes.
	reg, err := s.regRepo.FindByID(ctx, registrationID)
	if err != nil {
		return nil, ErrRegistrationNotFound
	}
	if !actor.CanAccessBranch(reg.BranchID) {
		return nil, ErrAccessDenied
	}
	if reg.Status != model.RegistrationPendingPayment {
		return nil, ErrPaymentAlreadyCompleted
	}

	fees, err := ComputeFees(reg.RegistrationFee, reg.AdditionalFee, req.DiscountPercentage)
	if err != nil {
		return nil, err
	}

	// Single manual/gateway dispatch: the cashier-entered amount is trusted
	// verbatim for manual methods; gateway methods always charge the computed
	// final amount.
	var (
		paidAmount decimal.Decimal
		txRef      *string
	)
	if method.Manual() {
		if req.ReceiptNumber == nil && req.TransactionNumber == nil {
			return nil, ErrManualReferenceMissing
		}
		if req.PaidAmount == nil || !req.PaidAmount.IsPositive() {
			return nil, ErrManualAmountMissing
		}
		paidAmount = *req.PaidAmount
		if req.ReceiptNumber != nil {
			txRef = req.ReceiptNumber
		} else {
			txRef = req.TransactionNumber
		}
	} else {
		paidAmount = fees.FinalAmount
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		if d, err := time.Parse("2006-01-02", req.PaymentDate); err == nil {
			paymentDate = d
		}
	}

	invoiceStatus := model.InvoicePending
	paymentStatus := model.PaymentPending
	if method.Manual() {
		invoiceStatus = model.InvoicePaid
		paymentStatus = model.PaymentCompleted
	}

	txCtx, cancel := context.WithTimeout(ctx, paymentTxTimeout)
	defer cancel()

	// 2. ACID transaction
	var (
		invoice model.Invoice
		payment model.Payment
	)
	txErr := runTx(txCtx, s.regRepo.DB(), func(tx *gorm.DB) error {
		invoiceNum, err := s.invoiceRepo.NextInvoiceNumber(txCtx, tx)
		if err != nil {
			return err
		}
		paymentNum, err := s.paymentRepo.NextPaymentNumber(txCtx, tx)
		if err != nil {
			return err
		}

		items, err := s.buildInvoiceItems(txCtx, reg)
		if err != nil {
			return err
		}

		regID := reg.ID
		invoice = model.Invoice{
			InvoiceNumber:  fmt.Sprintf("INV-%06d", invoiceNum),
			StudentID:      reg.StudentID,
			BranchID:       reg.BranchID,
			RegistrationID: &regID,
			TotalAmount:    fees.BaseTotal,
			DiscountAmount: fees.DiscountAmount,
			FinalAmount:    fees.FinalAmount,
			PaidAmount:     paidAmount,
			Status:         invoiceStatus,
			DueDate:        reg.PaymentDueDate,
			Items:          items,
		}
		if err := s.invoiceRepo.CreateTx(txCtx, tx, &invoice); err != nil {
			return err
		}

		processedBy := actor.UserID
		payment = model.Payment{
			PaymentNumber:  fmt.Sprintf("PAY-%06d", paymentNum),
			InvoiceID:      invoice.ID,
			StudentID:      reg.StudentID,
			RegistrationID: &regID,
			Amount:         paidAmount,
			Method:         method,
			Status:         paymentStatus,
			TransactionID:  txRef,
			Notes:          req.Notes,
			PaymentDate:    paymentDate,
			ProcessedBy:    &processedBy,
		}
		if err := s.paymentRepo.CreateTx(txCtx, tx, &payment); err != nil {
			return err
		}

		err = s.regRepo.ApplyPaymentTx(txCtx, tx, reg.ID, repository.PaymentFields{
			PaidAmount:         paidAmount,
			DiscountPercentage: req.DiscountPercentage,
			DiscountAmount:     fees.DiscountAmount,
		}, method.Manual(), time.Now())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentAlreadyCompleted
		}
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	// 3. Reload the registration with nested data for the response.
	updated, err := s.regRepo.FindDetail(ctx, reg.ID)
	if err != nil {
		updated = reg
	}

	// 4. Best-effort notifications — the financial transaction has committed;
	// failures here are logged and never surface to the caller.
	paymentLink := fmt.Sprintf("%s/pay/%s", s.domain, invoice.ID)
	s.notifySubmission(ctx, updated, &invoice, method.Manual(), paidAmount, paymentLink)

	redirectTo := fmt.Sprintf("/registrations/%s?payment=success", reg.ID)
	if !method.Manual() {
		redirectTo = paymentLink
	}

	return &dto.SubmitPaymentResponse{
		Registration: *registrationToResponse(updated),
		Invoice:      *invoiceToResponse(&invoice),
		Payment:      *paymentToResponse(&payment),
		RedirectTo:   redirectTo,
	}, nil
}

// buildInvoiceItems materializes one line item per non-zero fee component.
// Fee types are resolved by stable code, never by display name.
func (s *paymentService) buildInvoiceItems(ctx context.Context, reg *model.Registration) ([]model.InvoiceItem, error) {
	var items []model.InvoiceItem

	if reg.RegistrationFee.IsPositive() {
		ft, err := s.feeTypeRepo.FindByCode(ctx, model.FeeTypeRegistration)
		if err != nil {
			return nil, fmt.Errorf("fee type %s not found: %w", model.FeeTypeRegistration, err)
		}
		items = append(items, model.InvoiceItem{
			FeeTypeID:   ft.ID,
			Description: "Registration Fee",
			Amount:      reg.RegistrationFee,
			Quantity:    1,
		})
	}

	if reg.AdditionalFee.IsPositive() {
		code := reg.PaymentDuration.FeeTypeCode()
		ft, err := s.feeTypeRepo.FindByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("fee type %s not found: %w", code, err)
		}
		items = append(items, model.InvoiceItem{
			FeeTypeID:   ft.ID,
			Description: reg.PaymentDuration.ItemDescription(),
			Amount:      reg.AdditionalFee,
			Quantity:    1,
		})
	}

	return items, nil
}

// notifySubmission enqueues the post-commit notifications: a confirmation
// SMS plus receipt job for settled payments, or a payment-link SMS for
// pending gateway payments.
func (s *paymentService) notifySubmission(ctx context.Context, reg *model.Registration, invoice *model.Invoice, settled bool, amount decimal.Decimal, paymentLink string) {
	if s.dispatcher == nil {
		return
	}

	student := reg.Student
	if student == nil || student.Parent == nil || student.Parent.Phone == "" {
		log.Warn().
			Str("registration", reg.RegistrationNumber).
			Msg("payment: no parent phone on file, skipping SMS")
		return
	}

	var err error
	if settled {
		gradeName := ""
		if reg.Grade != nil {
			gradeName = reg.Grade.Name
		}
		err = s.dispatcher.EnqueueConfirmationSMS(ctx, worker.ConfirmationSMSPayload{
			Phone:              student.Parent.Phone,
			StudentName:        student.FirstName + " " + student.LastName,
			StudentID:          student.StudentID,
			RegistrationNumber: reg.RegistrationNumber,
			Amount:             amount.StringFixed(2),
			GradeName:          gradeName,
			DiscountPercentage: reg.DiscountPercentage.StringFixed(0),
		})
	} else {
		err = s.dispatcher.EnqueuePaymentLinkSMS(ctx, worker.PaymentLinkSMSPayload{
			Phone:         student.Parent.Phone,
			StudentName:   student.FirstName + " " + student.LastName,
			StudentID:     student.StudentID,
			Amount:        amount.StringFixed(2),
			PaymentLink:   paymentLink,
			InvoiceNumber: invoice.InvoiceNumber,
		})
	}
	if err != nil {
		log.Error().Err(err).
			Str("invoice", invoice.InvoiceNumber).
			Msg("payment: failed to enqueue SMS")
	}

	// Receipt PDF (and email, when the parent has one) for settled invoices.
	if settled {
		if err := s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJobPayload{InvoiceID: invoice.ID.String()}); err != nil {
			log.Error().Err(err).
				Str("invoice", invoice.InvoiceNumber).
				Msg("payment: failed to enqueue receipt job")
		}
	}
}

// ── ConfirmGatewayPayment ─────────────────────────────────────────────────────
// Callback path for TELEBIRR / ONLINE: settles the PENDING payment, marks the
// invoice PAID and completes the registration. All three updates are
// conditional, so a duplicate callback is rejected instead of re-applied.

func (s *paymentService) ConfirmGatewayPayment(ctx context.Context, paymentNumber string, req dto.ConfirmPaymentRequest) error {
	payment, err := s.paymentRepo.FindByNumber(ctx, paymentNumber)
	if err != nil {
		return ErrPaymentNotFound
	}
	if payment.Method.Manual() {
		return ErrNotGatewayPayment
	}
	if payment.Status != model.PaymentPending {
		return ErrPaymentAlreadyCompleted
	}

	txCtx, cancel := context.WithTimeout(ctx, paymentTxTimeout)
	defer cancel()

	txErr := runTx(txCtx, s.paymentRepo.DB(), func(tx *gorm.DB) error {
		if err := s.paymentRepo.ConfirmTx(txCtx, tx, paymentNumber, req.TransactionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentAlreadyCompleted
			}
			return err
		}
		if err := s.invoiceRepo.SettleTx(txCtx, tx, payment.InvoiceID); err != nil &&
			!errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if payment.RegistrationID != nil {
			if err := s.regRepo.CompleteTx(txCtx, tx, *payment.RegistrationID, time.Now()); err != nil &&
				!errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	if payment.RegistrationID != nil {
		if reg, err := s.regRepo.FindDetail(ctx, *payment.RegistrationID); err == nil {
			if inv, err := s.invoiceRepo.FindByID(ctx, payment.InvoiceID); err == nil {
				s.notifySubmission(ctx, reg, inv, true, payment.Amount, "")
			}
		}
	}
	return nil
}
