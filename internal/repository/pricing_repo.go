package repository

import (
	"context"

	"schoolpay/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PricingRepository interface {
	FindByBranchGrade(ctx context.Context, branchID, gradeID uuid.UUID) (*model.PricingSchema, error)
}

type pricingRepo struct{ db *gorm.DB }

func NewPricingRepository(db *gorm.DB) PricingRepository { return &pricingRepo{db: db} }

func (r *pricingRepo) FindByBranchGrade(ctx context.Context, branchID, gradeID uuid.UUID) (*model.PricingSchema, error) {
	var ps model.PricingSchema
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND grade_id = ? AND active", branchID, gradeID).
		First(&ps).Error
	return &ps, err
}
