package grid

import (
	"context"
	"errors"
	"time"

	"aeroops/internal/models"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service owns every mutation of the asset grid. The correctness contract:
// an update lands only if the caller's expectedVersion equals the stored
// version at the instant of the write, each success bumps the version by
// exactly 1, and each success writes exactly one event in the same
// transaction. Updates to one asset are serialized by the conditional
// write; updates across assets are independent.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// ListBySite returns a site's assets ordered by asset key. The order is a
// stable implementation choice, not part of the contract.
func (s *Service) ListBySite(ctx context.Context, siteID uint) ([]models.GridAsset, error) {
	var assets []models.GridAsset
	err := s.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("asset_key asc").
		Find(&assets).Error
	return assets, err
}

func (s *Service) Get(ctx context.Context, assetID uint) (*models.GridAsset, error) {
	var asset models.GridAsset
	if err := s.db.WithContext(ctx).First(&asset, assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// History returns an asset's events ascending by creation time. Re-reading
// yields a superset as events accrue; existing entries never reorder.
func (s *Service) History(ctx context.Context, assetID uint) ([]models.GridAssetEvent, error) {
	if _, err := s.Get(ctx, assetID); err != nil {
		return nil, err
	}
	var events []models.GridAssetEvent
	err := s.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("created_at asc, id asc").
		Find(&events).Error
	return events, err
}

// Update applies a patch against an expected version.
//
// The version check and the write are one conditional UPDATE
// ("... WHERE id = ? AND version = ?" + affected-row count), so two racers
// reading the same version cannot both win: the loser's UPDATE matches
// zero rows and is reported as a VersionConflictError carrying the
// authoritative record. No automatic retry, no partial application:
// if anything in the transaction fails, neither the record nor its event
// is written.
func (s *Service) Update(ctx context.Context, assetID uint, expectedVersion int, p Patch, actorID *uint) (*models.GridAsset, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var out models.GridAsset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.GridAsset
		if err := tx.First(&cur, assetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// cheap staleness check before touching anything; the conditional
		// write below still guards the race window after this read
		if cur.Version != expectedVersion {
			return &VersionConflictError{Expected: expectedVersion, Current: cur}
		}

		cols, before, after, evType, err := diff(tx, &cur, p)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			// every declared field already holds the requested value;
			// succeed without burning a version or fabricating an event
			out = cur
			return nil
		}

		now := time.Now().UTC()
		cols["version"] = expectedVersion + 1
		cols["last_updated_at"] = now
		cols["last_updated_by_user_id"] = actorID

		res := tx.Model(&models.GridAsset{}).
			Where("id = ? AND version = ?", assetID, expectedVersion).
			Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race after our read; report the winner's record
			var current models.GridAsset
			if err := tx.First(&current, assetID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			return &VersionConflictError{Expected: expectedVersion, Current: current}
		}

		event := models.GridAssetEvent{
			AssetID:         assetID,
			Type:            evType,
			BeforeState:     before,
			AfterState:      after,
			CreatedByUserID: actorID,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		return tx.First(&out, assetID).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Comment appends a comment event without touching the record or its version.
func (s *Service) Comment(ctx context.Context, assetID uint, message string, actorID *uint) (*models.GridAssetEvent, error) {
	if message == "" {
		return nil, &ValidationError{Field: "message", Reason: "must not be empty"}
	}
	return s.appendEvent(ctx, assetID, models.GridAssetEvent{
		AssetID:         assetID,
		Type:            models.EventComment,
		Message:         message,
		CreatedByUserID: actorID,
	})
}

// Attachment records that a file was attached to an asset. The file itself
// lives with the documents surface; the grid only keeps the fact.
func (s *Service) Attachment(ctx context.Context, assetID uint, fileName string, actorID *uint) (*models.GridAssetEvent, error) {
	return s.appendEvent(ctx, assetID, models.GridAssetEvent{
		AssetID:         assetID,
		Type:            models.EventAttachment,
		Message:         fileName,
		AfterState:      datatypes.JSONMap{"fileName": fileName},
		CreatedByUserID: actorID,
	})
}

func (s *Service) appendEvent(ctx context.Context, assetID uint, event models.GridAssetEvent) (*models.GridAssetEvent, error) {
	if _, err := s.Get(ctx, assetID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// diff computes the column set an accepted patch would write, plus the
// before/after snapshots restricted to exactly the changed fields.
// Declared fields equal to the current value are dropped. Event type:
// status_change when status is among the changes, assignment when the
// assignment is the only change, field_update otherwise.
func diff(tx *gorm.DB, cur *models.GridAsset, p Patch) (map[string]any, datatypes.JSONMap, datatypes.JSONMap, models.GridEventType, error) {
	cols := map[string]any{}
	before := datatypes.JSONMap{}
	after := datatypes.JSONMap{}

	statusChanged := false
	assignChanged := false

	if p.Status != nil && *p.Status != cur.Status {
		cols["status"] = string(*p.Status)
		before["status"] = string(cur.Status)
		after["status"] = string(*p.Status)
		statusChanged = true
	}

	if p.CompletedCount != nil && *p.CompletedCount != cur.CompletedCount {
		cols["completed_count"] = *p.CompletedCount
		before["completedCount"] = cur.CompletedCount
		after["completedCount"] = *p.CompletedCount
	}

	if p.AssignedTo != nil {
		switch {
		case *p.AssignedTo == 0:
			if cur.AssignedToUserID != nil {
				cols["assigned_to_user_id"] = nil
				cols["assigned_to_name"] = ""
				cols["assigned_to_avatar"] = ""
				before["assignedToUserId"] = *cur.AssignedToUserID
				after["assignedToUserId"] = nil
				assignChanged = true
			}
		case cur.AssignedToUserID == nil || *cur.AssignedToUserID != *p.AssignedTo:
			var u models.User
			if err := tx.First(&u, *p.AssignedTo).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil, nil, "", ErrAssigneeNotFound
				}
				return nil, nil, nil, "", err
			}
			name := u.FullName
			if name == "" {
				name = u.Email
			}
			cols["assigned_to_user_id"] = u.ID
			cols["assigned_to_name"] = name
			cols["assigned_to_avatar"] = u.AvatarURL
			if cur.AssignedToUserID != nil {
				before["assignedToUserId"] = *cur.AssignedToUserID
			} else {
				before["assignedToUserId"] = nil
			}
			after["assignedToUserId"] = u.ID
			after["assignedToName"] = name
			assignChanged = true
		}
	}

	evType := models.EventFieldUpdate
	switch {
	case statusChanged:
		evType = models.EventStatusChange
	case assignChanged && len(cols) == 3:
		// the three assignment columns are the whole change
		evType = models.EventAssignment
	}

	return cols, before, after, evType, nil
}
