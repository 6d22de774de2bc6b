package repository

import (
	"context"

	"schoolpay/internal/dto"
	"schoolpay/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceScope restricts listing to one branch. BranchID nil = all branches
// (unrestricted roles only — the service layer decides).
type InvoiceScope struct {
	BranchID *uuid.UUID
}

type InvoiceRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindLatestByRegistration(ctx context.Context, registrationID uuid.UUID) (*model.Invoice, error)
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, scope InvoiceScope, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)
	UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error
	// SettleTx marks a PENDING invoice PAID with the given paid amount.
	SettleTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) CreateTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return tx.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items.FeeType").
		Preload("Payments").
		Preload("Student.Parent").
		First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) FindLatestByRegistration(ctx context.Context, registrationID uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items.FeeType").
		Where("registration_id = ?", registrationID).
		Order("created_at DESC").
		First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('invoices_number_seq')").Scan(&num).Error
	return num, err
}

func (r *invoiceRepo) List(ctx context.Context, scope InvoiceScope, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Invoice{})

	if scope.BranchID != nil {
		q = q.Where("invoices.branch_id = ?", *scope.BranchID)
	}
	if filter.Status != "" {
		q = q.Where("invoices.status = ?", filter.Status)
	}
	if filter.PaymentMethod != "" {
		q = q.Where("EXISTS (SELECT 1 FROM payments WHERE payments.invoice_id = invoices.id AND payments.method = ?)",
			filter.PaymentMethod)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Joins("JOIN students ON students.id = invoices.student_id").
			Where(`invoices.invoice_number ILIKE ? OR students.first_name ILIKE ?
			       OR students.last_name ILIKE ? OR students.student_id ILIKE ?`,
				like, like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Student").Preload("Branch").
		Order("invoices.created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepo) UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ?", id).
		Update("pdf_path", path).Error
}

func (r *invoiceRepo) SettleTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := tx.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ? AND status = ?", id, model.InvoicePending).
		Updates(map[string]interface{}{
			"status":      model.InvoicePaid,
			"paid_amount": gorm.Expr("final_amount"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
