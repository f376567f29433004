package models

import "gorm.io/gorm"

// Client is a customer organization (tenant). Sites, deployments and
// invoices all hang off a client.
type Client struct {
	gorm.Model
	Name         string `gorm:"size:255;not null" json:"name"`
	Industry     string `gorm:"size:100" json:"industry"` // energy, telecom, wind, solar...
	ContactName  string `gorm:"size:255" json:"contactName"`
	ContactEmail string `gorm:"size:255" json:"contactEmail"`
	ContactPhone string `gorm:"size:50" json:"contactPhone"`
	BillingEmail string `gorm:"size:255" json:"billingEmail"`
	Notes        string `gorm:"type:text" json:"notes"`

	Sites []Site `json:"sites,omitempty"`
}
