package models

import "gorm.io/gorm"

type DroneStatus string

const (
	DroneAvailable   DroneStatus = "available"
	DroneDeployed    DroneStatus = "deployed"
	DroneMaintenance DroneStatus = "maintenance"
)

type Drone struct {
	gorm.Model
	Serial      string      `gorm:"size:100;uniqueIndex;not null" json:"serial"`
	ModelName   string      `gorm:"size:255;not null" json:"model"`
	Status      DroneStatus `gorm:"type:varchar(20);not null;default:available" json:"status"`
	FlightHours float64     `gorm:"not null;default:0" json:"flightHours"`
	Payload     string      `gorm:"size:255" json:"payload"` // mounted sensor package
	Notes       string      `gorm:"type:text" json:"notes"`
}
