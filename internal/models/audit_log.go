package models

import "time"

// AuditLog is the platform-wide trail for non-grid mutations ("client",
// "deployment", "invoice", ...). The asset grid keeps its own richer
// GridAssetEvent history.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID uint `json:"userId"`
	User   User `json:"user,omitempty"`

	Entity   string `gorm:"size:50;not null" json:"entity"`
	EntityID uint   `json:"entityId"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "update", "status_change" ...
	Details  string `gorm:"type:text" json:"details"`
}
