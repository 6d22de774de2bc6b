package repository

import (
	"context"

	"schoolpay/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Payment) error
	FindByNumber(ctx context.Context, paymentNumber string) (*model.Payment, error)
	NextPaymentNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	// ConfirmTx marks a PENDING payment COMPLETED with the gateway
	// transaction id. Conditional on the current status so a duplicate
	// callback cannot complete the same payment twice.
	ConfirmTx(ctx context.Context, tx *gorm.DB, paymentNumber, transactionID string) error
	DB() *gorm.DB
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) DB() *gorm.DB { return r.db }

func (r *paymentRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) FindByNumber(ctx context.Context, paymentNumber string) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Preload("Invoice").
		Where("payment_number = ?", paymentNumber).
		First(&p).Error
	return &p, err
}

func (r *paymentRepo) NextPaymentNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('payments_number_seq')").Scan(&num).Error
	return num, err
}

func (r *paymentRepo) ConfirmTx(ctx context.Context, tx *gorm.DB, paymentNumber, transactionID string) error {
	res := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("payment_number = ? AND status = ?", paymentNumber, model.PaymentPending).
		Updates(map[string]interface{}{
			"status":         model.PaymentCompleted,
			"transaction_id": transactionID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
