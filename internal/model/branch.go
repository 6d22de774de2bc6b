package model

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a school campus. All registrations, invoices and payments are
// scoped to exactly one branch.
type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	Phone     *string
	Address   *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Grade is a school year level (KG1 … Grade 12).
type Grade struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Level     int       `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
