package repository

import (
	"context"

	"schoolpay/internal/model"

	"gorm.io/gorm"
)

type FeeTypeRepository interface {
	// FindByCode resolves a fee type by its stable code. Lookup by display
	// name is deliberately not offered.
	FindByCode(ctx context.Context, code model.FeeTypeCode) (*model.FeeType, error)
}

type feeTypeRepo struct{ db *gorm.DB }

func NewFeeTypeRepository(db *gorm.DB) FeeTypeRepository { return &feeTypeRepo{db: db} }

func (r *feeTypeRepo) FindByCode(ctx context.Context, code model.FeeTypeCode) (*model.FeeType, error) {
	var ft model.FeeType
	err := r.db.WithContext(ctx).Where("code = ? AND active", code).First(&ft).Error
	return &ft, err
}
