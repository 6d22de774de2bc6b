package model

import (
	"time"

	"github.com/google/uuid"
)

// Parent is the guardian who receives SMS confirmations and payment links.
type Parent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FirstName string    `gorm:"not null"`
	LastName  string    `gorm:"not null"`
	Phone     string    `gorm:"index;not null"`
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Student belongs to one branch, one grade and (optionally) one parent.
// StudentID is the school-issued identifier printed on ID cards — distinct
// from the database primary key.
type Student struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StudentID   string    `gorm:"uniqueIndex;not null"`
	FirstName   string    `gorm:"index;not null"`
	LastName    string    `gorm:"index;not null"`
	Gender      *string   `gorm:"type:varchar(10)"`
	DateOfBirth *time.Time
	BranchID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	GradeID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Active      bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Branch *Branch `gorm:"foreignKey:BranchID"`
	Grade  *Grade  `gorm:"foreignKey:GradeID"`
	Parent *Parent `gorm:"foreignKey:ParentID"`
}
