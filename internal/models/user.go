package models

import (
	"strings"

	"gorm.io/gorm"
)

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleDeveloper  = "developer"
)

// NormalizeRole maps the legacy "user" role onto "developer".
func NormalizeRole(role string) string {
	if strings.EqualFold(role, "user") {
		return RoleDeveloper
	}
	return role
}

// User is a portal account. Accounts are provisioned by the seed command.
type User struct {
	Username string `gorm:"primaryKey;type:varchar(255)" json:"username" yaml:"username"`
	Password string `gorm:"not null" json:"-" yaml:"password"`
	Role     string `gorm:"not null" json:"role" yaml:"role"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Role = NormalizeRole(u.Role)
	return nil
}

func (u *User) AfterFind(tx *gorm.DB) error {
	u.Role = NormalizeRole(u.Role)
	return nil
}
