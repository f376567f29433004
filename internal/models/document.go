package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentStatus string

const (
	DocumentUploaded  DocumentStatus = "uploaded"
	DocumentExtracted DocumentStatus = "extracted"
	DocumentFailed    DocumentStatus = "failed"
)

// Document is an uploaded mission file (permit, flight log, inspection
// sheet). The binary lives in object storage under StorageKey; only
// metadata and AI-extracted fields are kept here.
type Document struct {
	gorm.Model
	DeploymentID uint       `gorm:"index;not null" json:"deploymentId"`
	Deployment   Deployment `json:"-"`

	FileName    string `gorm:"size:255;not null" json:"fileName"`
	ContentType string `gorm:"size:100" json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	StorageKey  string `gorm:"size:255;uniqueIndex;not null" json:"storageKey"`
	DocType     string `gorm:"size:50" json:"docType"` // permit / flight_log / inspection_sheet / other

	Status          DocumentStatus    `gorm:"type:varchar(20);not null;default:uploaded" json:"status"`
	ExtractedFields datatypes.JSONMap `json:"extractedFields,omitempty"`
	ExtractError    string            `gorm:"size:512" json:"extractError,omitempty"`

	UploadedByUserID uint `json:"uploadedByUserId"`
}
