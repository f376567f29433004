package models

import (
	"time"

	"gorm.io/gorm"
)

// OnboardingInvite tracks an invite issued to a future user. The signed
// token the invitee receives carries InviteID as its jti claim, so a
// token is only usable while its row is unaccepted and unexpired.
type OnboardingInvite struct {
	gorm.Model
	InviteID string `gorm:"size:36;uniqueIndex;not null" json:"inviteId"`

	Email    string   `gorm:"size:255;not null" json:"email"`
	Role     UserRole `gorm:"type:varchar(20);not null" json:"role"`
	ClientID *uint    `gorm:"index" json:"clientId"` // scope for viewer accounts

	ExpiresAt  time.Time  `gorm:"not null" json:"expiresAt"`
	AcceptedAt *time.Time `json:"acceptedAt"`

	CreatedByUserID uint `json:"createdByUserId"`
}
