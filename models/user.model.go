package models

import (
	"gorm.io/gorm"
)

// Role enum values
const (
	RoleOperator   = "OPERATOR"
	RoleSupervisor = "SUPERVISOR"
	RoleAdmin      = "ADMIN"
)

// User is a warehouse operator account. Authentication only; every mutating
// operation records the user id for attribution.
type User struct {
	gorm.Model
	Name      string `gorm:"not null" json:"name"`
	Email     string `gorm:"unique;not null" json:"email"`
	Mobile    string `gorm:"type:varchar(20)" json:"mobile"`
	Password  string `gorm:"not null" json:"-"`
	Role      string `gorm:"type:varchar(20);default:'OPERATOR'" json:"role"` // OPERATOR, SUPERVISOR, ADMIN
	IsDeleted bool   `gorm:"default:false" json:"isDeleted"`
}
