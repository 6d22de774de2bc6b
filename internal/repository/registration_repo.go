package repository

import (
	"context"
	"time"

	"schoolpay/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentFields are the amounts persisted on the registration when a payment
// is submitted, regardless of method.
type PaymentFields struct {
	PaidAmount         decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
}

type RegistrationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *model.Registration) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Registration, error)
	// FindDetail preloads student/parent/branch/grade for the payment page.
	FindDetail(ctx context.Context, id uuid.UUID) (*model.Registration, error)
	NextRegistrationNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	// ApplyPaymentTx persists the payment fields and, when completed is true,
	// advances the status to PAYMENT_COMPLETED stamping completed_at. The
	// update is conditional on status still being PENDING_PAYMENT; it returns
	// gorm.ErrRecordNotFound when zero rows match, which callers treat as a
	// lost race (payment already completed).
	ApplyPaymentTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields PaymentFields, completed bool, now time.Time) error
	// CompleteTx advances PENDING_PAYMENT → PAYMENT_COMPLETED inside an
	// existing transaction (gateway confirmation path).
	CompleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, now time.Time) error
	// TransitionStatus performs a conditional status update guarded by the
	// expected current status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.RegistrationStatus, updates map[string]interface{}) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type registrationRepo struct{ db *gorm.DB }

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepo{db: db}
}

func (r *registrationRepo) DB() *gorm.DB { return r.db }

func (r *registrationRepo) Create(ctx context.Context, tx *gorm.DB, reg *model.Registration) error {
	return tx.WithContext(ctx).Create(reg).Error
}

func (r *registrationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error
	return &reg, err
}

func (r *registrationRepo) FindDetail(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.WithContext(ctx).
		Preload("Student.Parent").
		Preload("Branch").
		Preload("Grade").
		First(&reg, "id = ?", id).Error
	return &reg, err
}

func (r *registrationRepo) NextRegistrationNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	// PostgreSQL sequence for atomic, collision-free number generation
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('registrations_number_seq')").Scan(&num).Error
	return num, err
}

func (r *registrationRepo) ApplyPaymentTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields PaymentFields, completed bool, now time.Time) error {
	updates := map[string]interface{}{
		"paid_amount":         fields.PaidAmount,
		"discount_percentage": fields.DiscountPercentage,
		"discount_amount":     fields.DiscountAmount,
	}
	if completed {
		updates["status"] = model.RegistrationPaymentCompleted
		updates["completed_at"] = now
	}

	res := tx.WithContext(ctx).Model(&model.Registration{}).
		Where("id = ? AND status = ?", id, model.RegistrationPendingPayment).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Status changed between the pre-flight check and this update.
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepo) CompleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, now time.Time) error {
	res := tx.WithContext(ctx).Model(&model.Registration{}).
		Where("id = ? AND status = ?", id, model.RegistrationPendingPayment).
		Updates(map[string]interface{}{
			"status":       model.RegistrationPaymentCompleted,
			"completed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.RegistrationStatus, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	res := r.db.WithContext(ctx).Model(&model.Registration{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
