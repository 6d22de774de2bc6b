package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles recognised by the authorization layer.
// cashier / registrar / branch_admin are scoped to a single branch;
// admin has unrestricted access across branches.
const (
	RoleCashier     = "cashier"
	RoleRegistrar   = "registrar"
	RoleBranchAdmin = "branch_admin"
	RoleAdmin       = "admin"
)

// User is a staff account. BranchID is nil only for unrestricted admins.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	FullName     string    `gorm:"not null"`
	Email        *string
	PasswordHash string     `gorm:"not null"`
	Role         string     `gorm:"type:varchar(20);not null"`
	BranchID     *uuid.UUID `gorm:"type:uuid;index"`
	Active       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Branch *Branch `gorm:"foreignKey:BranchID"`
}
