package repository

import (
	"context"

	"schoolpay/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
}

type studentRepo struct{ db *gorm.DB }

func NewStudentRepository(db *gorm.DB) StudentRepository { return &studentRepo{db: db} }

func (r *studentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Preload("Parent").
		Preload("Branch").
		Preload("Grade").
		First(&s, "id = ?", id).Error
	return &s, err
}
