package models

import (
	"time"

	"gorm.io/datatypes"
)

type AssetStatus string

const (
	AssetNotStarted  AssetStatus = "not_started"
	AssetInProgress  AssetStatus = "in_progress"
	AssetComplete    AssetStatus = "complete"
	AssetBlocked     AssetStatus = "blocked"
	AssetNeedsReview AssetStatus = "needs_review"
)

func (s AssetStatus) Valid() bool {
	switch s {
	case AssetNotStarted, AssetInProgress, AssetComplete, AssetBlocked, AssetNeedsReview:
		return true
	}
	return false
}

// GridAsset is one trackable unit of inspection work on a site (a turbine,
// a tower, an inspection point). Rows are never hard-deleted; the only
// mutation path is grid.Service.Update, which guards every write with the
// Version column.
type GridAsset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	SiteID uint `gorm:"not null;uniqueIndex:idx_grid_assets_site_key" json:"siteId"`
	Site   Site `json:"-"`

	AssetKey  string `gorm:"size:100;not null;uniqueIndex:idx_grid_assets_site_key" json:"assetKey"`
	AssetType string `gorm:"size:100" json:"assetType"`
	Industry  string `gorm:"size:100" json:"industry"`

	Status         AssetStatus `gorm:"type:varchar(20);not null;default:not_started" json:"status"`
	PlannedCount   *int        `json:"plannedCount"`
	CompletedCount int         `gorm:"not null;default:0" json:"completedCount"`

	AssignedToUserID *uint  `gorm:"index" json:"assignedToUserId"`
	AssignedToName   string `gorm:"size:255" json:"assignedToName"`
	AssignedToAvatar string `gorm:"size:512" json:"assignedToAvatar"`

	// Optimistic-concurrency stamp: starts at 1, +1 on every successful
	// mutation. A write only lands when the caller proves it saw the
	// current value.
	Version int `gorm:"not null;default:1" json:"version"`

	LastUpdatedAt       *time.Time `json:"lastUpdatedAt"`
	LastUpdatedByUserID *uint      `json:"lastUpdatedByUserId"`

	// Opaque display payload written by bulk import; never interpreted here.
	Meta datatypes.JSONMap `json:"meta,omitempty"`
}

type GridEventType string

const (
	EventStatusChange GridEventType = "status_change"
	EventFieldUpdate  GridEventType = "field_update"
	EventComment      GridEventType = "comment"
	EventAttachment   GridEventType = "attachment"
	EventAssignment   GridEventType = "assignment"
)

// GridAssetEvent is an immutable fact about one transition of a GridAsset.
// Before/after snapshots cover only the fields the transition touched.
// Events are append-only; there is no update or delete path, and asset
// history is retained indefinitely.
type GridAssetEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	AssetID uint          `gorm:"index;not null" json:"assetId"`
	Type    GridEventType `gorm:"column:event_type;type:varchar(30);not null" json:"eventType"`

	BeforeState datatypes.JSONMap `json:"beforeState,omitempty"`
	AfterState  datatypes.JSONMap `json:"afterState,omitempty"`

	Message string `gorm:"type:text" json:"message,omitempty"`

	// nil means a system-originated event (e.g. bulk import).
	CreatedByUserID *uint `json:"createdByUserId"`
}
