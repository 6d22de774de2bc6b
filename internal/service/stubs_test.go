package service_test

// In-memory repository stubs shared by the service tests. The services run
// their transactions through runTx, which calls the closure directly when
// DB() returns nil, so the stubs never need a real *gorm.DB.

import (
	"context"
	"sort"
	"strings"
	"time"

	"schoolpay/internal/dto"
	"schoolpay/internal/model"
	"schoolpay/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Registration repository ───────────────────────────────────────────────────

type stubRegistrationRepo struct {
	regs map[uuid.UUID]*model.Registration
	seq  int64
	// beforeApply runs at the start of ApplyPaymentTx — used to simulate a
	// concurrent submission landing between pre-flight and the update.
	beforeApply func()
}

func newStubRegistrationRepo() *stubRegistrationRepo {
	return &stubRegistrationRepo{regs: make(map[uuid.UUID]*model.Registration)}
}

func (r *stubRegistrationRepo) Create(_ context.Context, _ *gorm.DB, reg *model.Registration) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	r.regs[reg.ID] = reg
	return nil
}

func (r *stubRegistrationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Registration, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reg, nil
}

func (r *stubRegistrationRepo) FindDetail(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	return r.FindByID(ctx, id)
}

func (r *stubRegistrationRepo) NextRegistrationNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubRegistrationRepo) ApplyPaymentTx(_ context.Context, _ *gorm.DB, id uuid.UUID, fields repository.PaymentFields, completed bool, now time.Time) error {
	if r.beforeApply != nil {
		r.beforeApply()
	}
	reg, ok := r.regs[id]
	if !ok || reg.Status != model.RegistrationPendingPayment {
		return gorm.ErrRecordNotFound
	}
	reg.PaidAmount = fields.PaidAmount
	reg.DiscountPercentage = fields.DiscountPercentage
	reg.DiscountAmount = fields.DiscountAmount
	if completed {
		reg.Status = model.RegistrationPaymentCompleted
		reg.CompletedAt = &now
	}
	return nil
}

func (r *stubRegistrationRepo) CompleteTx(_ context.Context, _ *gorm.DB, id uuid.UUID, now time.Time) error {
	reg, ok := r.regs[id]
	if !ok || reg.Status != model.RegistrationPendingPayment {
		return gorm.ErrRecordNotFound
	}
	reg.Status = model.RegistrationPaymentCompleted
	reg.CompletedAt = &now
	return nil
}

func (r *stubRegistrationRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to model.RegistrationStatus, updates map[string]interface{}) error {
	reg, ok := r.regs[id]
	if !ok || reg.Status != from {
		return gorm.ErrRecordNotFound
	}
	reg.Status = to
	if reason, ok := updates["cancelled_reason"].(string); ok {
		reg.CancelledReason = &reason
	}
	return nil
}

func (r *stubRegistrationRepo) DB() *gorm.DB { return nil }

var _ repository.RegistrationRepository = (*stubRegistrationRepo)(nil)

// ── Invoice repository ────────────────────────────────────────────────────────

type stubInvoiceRepo struct {
	invoices  map[uuid.UUID]*model.Invoice
	seq       int64
	lastScope repository.InvoiceScope
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *stubInvoiceRepo) CreateTx(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	for i := range inv.Items {
		if inv.Items[i].ID == uuid.Nil {
			inv.Items[i].ID = uuid.New()
		}
		inv.Items[i].InvoiceID = inv.ID
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubInvoiceRepo) FindLatestByRegistration(_ context.Context, registrationID uuid.UUID) (*model.Invoice, error) {
	var latest *model.Invoice
	for _, inv := range r.invoices {
		if inv.RegistrationID == nil || *inv.RegistrationID != registrationID {
			continue
		}
		if latest == nil || inv.CreatedAt.After(latest.CreatedAt) {
			latest = inv
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (r *stubInvoiceRepo) NextInvoiceNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubInvoiceRepo) List(_ context.Context, scope repository.InvoiceScope, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	r.lastScope = scope

	var matched []model.Invoice
	for _, inv := range r.invoices {
		if scope.BranchID != nil && inv.BranchID != *scope.BranchID {
			continue
		}
		if filter.Status != "" && string(inv.Status) != filter.Status {
			continue
		}
		if filter.PaymentMethod != "" && !invoiceHasMethod(inv, filter.PaymentMethod) {
			continue
		}
		if filter.Search != "" && !invoiceMatchesSearch(inv, filter.Search) {
			continue
		}
		matched = append(matched, *inv)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func invoiceHasMethod(inv *model.Invoice, method string) bool {
	for _, p := range inv.Payments {
		if string(p.Method) == method {
			return true
		}
	}
	return false
}

// invoiceMatchesSearch mirrors the ILIKE search over invoice number and the
// student's first name, last name and school student id.
func invoiceMatchesSearch(inv *model.Invoice, search string) bool {
	needle := strings.ToLower(search)
	haystack := inv.InvoiceNumber
	if inv.Student != nil {
		haystack += " " + inv.Student.FirstName + " " + inv.Student.LastName + " " + inv.Student.StudentID
	}
	return strings.Contains(strings.ToLower(haystack), needle)
}

func (r *stubInvoiceRepo) UpdatePDFPath(_ context.Context, id uuid.UUID, path string) error {
	inv, ok := r.invoices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.PDFPath = &path
	return nil
}

func (r *stubInvoiceRepo) SettleTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	inv, ok := r.invoices[id]
	if !ok || inv.Status != model.InvoicePending {
		return gorm.ErrRecordNotFound
	}
	inv.Status = model.InvoicePaid
	inv.PaidAmount = inv.FinalAmount
	return nil
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// ── Payment repository ────────────────────────────────────────────────────────

type stubPaymentRepo struct {
	payments map[string]*model.Payment // keyed by payment number
	seq      int64
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{payments: make(map[string]*model.Payment)}
}

func (r *stubPaymentRepo) CreateTx(_ context.Context, _ *gorm.DB, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments[p.PaymentNumber] = p
	return nil
}

func (r *stubPaymentRepo) FindByNumber(_ context.Context, paymentNumber string) (*model.Payment, error) {
	p, ok := r.payments[paymentNumber]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPaymentRepo) NextPaymentNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubPaymentRepo) ConfirmTx(_ context.Context, _ *gorm.DB, paymentNumber, transactionID string) error {
	p, ok := r.payments[paymentNumber]
	if !ok || p.Status != model.PaymentPending {
		return gorm.ErrRecordNotFound
	}
	p.Status = model.PaymentCompleted
	p.TransactionID = &transactionID
	return nil
}

func (r *stubPaymentRepo) DB() *gorm.DB { return nil }

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

// ── Fee type repository ───────────────────────────────────────────────────────

type stubFeeTypeRepo struct {
	types map[model.FeeTypeCode]*model.FeeType
}

func newStubFeeTypeRepo() *stubFeeTypeRepo {
	r := &stubFeeTypeRepo{types: make(map[model.FeeTypeCode]*model.FeeType)}
	for _, code := range []model.FeeTypeCode{
		model.FeeTypeRegistration, model.FeeTypeMonthly,
		model.FeeTypeQuarterly, model.FeeTypeService,
	} {
		r.types[code] = &model.FeeType{ID: uuid.New(), Code: code, Name: string(code), Active: true}
	}
	return r
}

func (r *stubFeeTypeRepo) FindByCode(_ context.Context, code model.FeeTypeCode) (*model.FeeType, error) {
	ft, ok := r.types[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ft, nil
}

var _ repository.FeeTypeRepository = (*stubFeeTypeRepo)(nil)

// ── Student repository ────────────────────────────────────────────────────────

type stubStudentRepo struct {
	students map[uuid.UUID]*model.Student
}

func newStubStudentRepo() *stubStudentRepo {
	return &stubStudentRepo{students: make(map[uuid.UUID]*model.Student)}
}

func (r *stubStudentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

var _ repository.StudentRepository = (*stubStudentRepo)(nil)

// ── Pricing repository ────────────────────────────────────────────────────────

type pricingKey struct{ branch, grade uuid.UUID }

type stubPricingRepo struct {
	schemas map[pricingKey]*model.PricingSchema
}

func newStubPricingRepo() *stubPricingRepo {
	return &stubPricingRepo{schemas: make(map[pricingKey]*model.PricingSchema)}
}

func (r *stubPricingRepo) FindByBranchGrade(_ context.Context, branchID, gradeID uuid.UUID) (*model.PricingSchema, error) {
	ps, ok := r.schemas[pricingKey{branchID, gradeID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ps, nil
}

var _ repository.PricingRepository = (*stubPricingRepo)(nil)
