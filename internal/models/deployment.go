package models

import (
	"time"

	"gorm.io/gorm"
)

type DeploymentType string
type DeploymentStatus string

const (
	DeploymentVisual  DeploymentType = "visual"
	DeploymentThermal DeploymentType = "thermal"
	DeploymentLidar   DeploymentType = "lidar"
	DeploymentSurvey  DeploymentType = "survey"

	DeploymentPlanned    DeploymentStatus = "planned"
	DeploymentInProgress DeploymentStatus = "in_progress"
	DeploymentOnReview   DeploymentStatus = "on_review"
	DeploymentFinished   DeploymentStatus = "finished"
	DeploymentCancelled  DeploymentStatus = "cancelled"
)

// Deployment is one scheduled inspection mission: a site, a drone and a
// pilot for a date window.
type Deployment struct {
	gorm.Model
	SiteID uint `gorm:"index;not null" json:"siteId"`
	Site   Site `json:"site,omitempty"`

	DroneID uint  `gorm:"index" json:"droneId"`
	Drone   Drone `json:"drone,omitempty"`

	PilotID uint `gorm:"index" json:"pilotId"` // User.ID with role pilot
	Pilot   User `gorm:"foreignKey:PilotID" json:"pilot,omitempty"`

	Title       string           `gorm:"size:255;not null" json:"title"`
	Type        DeploymentType   `gorm:"type:varchar(20);not null" json:"type"`
	Status      DeploymentStatus `gorm:"type:varchar(20);not null;default:planned" json:"status"`
	Description string           `gorm:"type:text" json:"description"`

	PlannedStart *time.Time `json:"plannedStart"`
	PlannedEnd   *time.Time `json:"plannedEnd"`
	ActualEnd    *time.Time `json:"actualEnd"`
}
