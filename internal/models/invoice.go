package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

type Invoice struct {
	gorm.Model
	ClientID uint   `gorm:"index;not null" json:"clientId"`
	Client   Client `json:"client,omitempty"`

	Number      string        `gorm:"size:50;uniqueIndex;not null" json:"number"` // INV-YYYY-NNNN
	Status      InvoiceStatus `gorm:"type:varchar(20);not null;default:draft" json:"status"`
	Currency    string        `gorm:"size:3;not null;default:USD" json:"currency"`
	AmountCents int64         `gorm:"not null" json:"amountCents"`

	// [{"description": "...", "quantity": 2, "unitCents": 15000}, ...]
	LineItems datatypes.JSON `json:"lineItems"`

	IssuedAt *time.Time `json:"issuedAt"`
	DueAt    *time.Time `json:"dueAt"`
	SentAt   *time.Time `json:"sentAt"`
	PaidAt   *time.Time `json:"paidAt"`
}
