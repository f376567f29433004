package models

import "gorm.io/gorm"

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleCoordinator UserRole = "coordinator"
	RolePilot       UserRole = "pilot"
	RoleViewer      UserRole = "viewer"
)

type User struct {
	gorm.Model
	Email        string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role"`

	FullName  string `gorm:"size:255" json:"fullName"`
	Phone     string `gorm:"size:50" json:"phone"`
	CertLevel string `gorm:"size:100" json:"certLevel"` // pilot certification, e.g. A2 / Part 107
	AvatarURL string `gorm:"size:512" json:"avatarUrl"`
}
