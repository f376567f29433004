package models

import "gorm.io/gorm"

// Site is one physical location of a client where inspections run
// (a wind farm, a substation, a tower cluster).
type Site struct {
	gorm.Model
	ClientID uint   `gorm:"index;not null" json:"clientId"`
	Client   Client `json:"client,omitempty"`

	Name     string `gorm:"size:255;not null" json:"name"`
	Address  string `gorm:"size:512" json:"address"`
	Industry string `gorm:"size:100" json:"industry"`
	GeoNotes string `gorm:"type:text" json:"geoNotes"` // access roads, no-fly zones, landowner contacts
}
