package grid

import (
	"context"
	"errors"
	"testing"

	"aeroops/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Site{},
		&models.GridAsset{},
		&models.GridAssetEvent{},
	))
	return NewService(db, zap.NewNop()), db
}

func seedAsset(t *testing.T, db *gorm.DB) *models.GridAsset {
	t.Helper()
	client := models.Client{Name: "Nordwind Energy"}
	require.NoError(t, db.Create(&client).Error)
	site := models.Site{ClientID: client.ID, Name: "Baltic Ridge Wind Farm"}
	require.NoError(t, db.Create(&site).Error)

	asset := models.GridAsset{
		SiteID:   site.ID,
		AssetKey: "WTG-01",
		Status:   models.AssetNotStarted,
		Version:  1,
	}
	require.NoError(t, db.Create(&asset).Error)
	return &asset
}

func statusPtr(s models.AssetStatus) *models.AssetStatus { return &s }
func intPtr(n int) *int                                  { return &n }
func uintPtr(n uint) *uint                               { return &n }

func countEvents(t *testing.T, db *gorm.DB, assetID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.GridAssetEvent{}).Where("asset_id = ?", assetID).Count(&n).Error)
	return n
}

func TestUpdateStatusSuccess(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	got, err := svc.Update(ctx, asset.ID, 1, Patch{Status: statusPtr(models.AssetInProgress)}, uintPtr(7))
	require.NoError(t, err)

	assert.Equal(t, 2, got.Version)
	assert.Equal(t, models.AssetInProgress, got.Status)
	require.NotNil(t, got.LastUpdatedAt)
	require.NotNil(t, got.LastUpdatedByUserID)
	assert.Equal(t, uint(7), *got.LastUpdatedByUserID)

	var events []models.GridAssetEvent
	require.NoError(t, db.Where("asset_id = ?", asset.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventStatusChange, events[0].Type)
	assert.Equal(t, "not_started", events[0].BeforeState["status"])
	assert.Equal(t, "in_progress", events[0].AfterState["status"])
	require.NotNil(t, events[0].CreatedByUserID)
	assert.Equal(t, uint(7), *events[0].CreatedByUserID)
}

func TestUpdateStaleVersionConflict(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	_, err := svc.Update(ctx, asset.ID, 1, Patch{Status: statusPtr(models.AssetInProgress)}, nil)
	require.NoError(t, err)

	// same call again with the now-stale version
	_, err = svc.Update(ctx, asset.ID, 1, Patch{Status: statusPtr(models.AssetInProgress)}, nil)
	var conflict *VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.Expected)
	assert.Equal(t, 2, conflict.Current.Version)
	assert.Equal(t, models.AssetInProgress, conflict.Current.Status)

	// the rejected call must not have produced an event
	assert.EqualValues(t, 1, countEvents(t, db, asset.ID))
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 9999, 1, Patch{Status: statusPtr(models.AssetComplete)}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRaceExactlyOneWinner(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	// both callers read version 1 and race with different patches
	winner, err := svc.Update(ctx, asset.ID, 1, Patch{CompletedCount: intPtr(5)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, winner.Version)

	_, err = svc.Update(ctx, asset.ID, 1, Patch{CompletedCount: intPtr(10)}, nil)
	var conflict *VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 2, conflict.Current.Version)
	// the loser sees only the winner's patch applied
	assert.Equal(t, 5, conflict.Current.CompletedCount)

	assert.EqualValues(t, 1, countEvents(t, db, asset.ID))
}

func TestManyStaleCallersOneWinner(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	successes := 0
	conflicts := 0
	for i := 0; i < 5; i++ {
		_, err := svc.Update(ctx, asset.ID, 1, Patch{CompletedCount: intPtr(i + 1)}, nil)
		switch {
		case err == nil:
			successes++
		default:
			var conflict *VersionConflictError
			require.ErrorAs(t, err, &conflict)
			conflicts++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 4, conflicts)
	assert.EqualValues(t, 1, countEvents(t, db, asset.ID))
}

func TestVersionMonotonicity(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	version := 1
	for i := 1; i <= 5; i++ {
		got, err := svc.Update(ctx, asset.ID, version, Patch{CompletedCount: intPtr(i)}, nil)
		require.NoError(t, err)
		assert.Equal(t, version+1, got.Version)
		version = got.Version
	}

	assert.Equal(t, 6, version)
	assert.EqualValues(t, 5, countEvents(t, db, asset.ID))
}

func TestConflictReportingIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	_, err := svc.Update(ctx, asset.ID, 1, Patch{Status: statusPtr(models.AssetInProgress)}, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Update(ctx, asset.ID, 1, Patch{CompletedCount: intPtr(9)}, nil)
		var conflict *VersionConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, 2, conflict.Current.Version)
	}

	// retrying with the current version finally lands
	got, err := svc.Update(ctx, asset.ID, 2, Patch{CompletedCount: intPtr(9)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Version)
	assert.EqualValues(t, 2, countEvents(t, db, asset.ID))
}

func TestPatchValidation(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	_, err := svc.Update(ctx, asset.ID, 1, Patch{}, nil)
	assert.ErrorIs(t, err, ErrEmptyPatch)

	bad := models.AssetStatus("launched")
	_, err = svc.Update(ctx, asset.ID, 1, Patch{Status: &bad}, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	_, err = svc.Update(ctx, asset.ID, 1, Patch{CompletedCount: intPtr(-1)}, nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "completedCount", verr.Field)

	// rejected patches must leave no trace
	assert.EqualValues(t, 0, countEvents(t, db, asset.ID))
	fresh, err := svc.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Version)
}

func TestNoopPatchDoesNotBurnVersion(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	got, err := svc.Update(ctx, asset.ID, 1, Patch{Status: statusPtr(models.AssetNotStarted), CompletedCount: intPtr(0)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.EqualValues(t, 0, countEvents(t, db, asset.ID))

	// a stale no-op is still a conflict: the version check runs first
	_, err = svc.Update(ctx, asset.ID, 2, Patch{Status: statusPtr(models.AssetNotStarted)}, nil)
	var conflict *VersionConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestAssignmentPatch(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	pilot := models.User{
		Email:     "pilot@aeroops.local",
		Role:      models.RolePilot,
		FullName:  "Dana Reyes",
		AvatarURL: "https://cdn.aeroops.local/a/dana.png",
	}
	require.NoError(t, db.Create(&pilot).Error)

	got, err := svc.Update(ctx, asset.ID, 1, Patch{AssignedTo: uintPtr(pilot.ID)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	require.NotNil(t, got.AssignedToUserID)
	assert.Equal(t, pilot.ID, *got.AssignedToUserID)
	assert.Equal(t, "Dana Reyes", got.AssignedToName)
	assert.Equal(t, "https://cdn.aeroops.local/a/dana.png", got.AssignedToAvatar)

	var events []models.GridAssetEvent
	require.NoError(t, db.Where("asset_id = ?", asset.ID).Order("id asc").Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventAssignment, events[0].Type)
	assert.Equal(t, "Dana Reyes", events[0].AfterState["assignedToName"])

	// clearing the assignment
	got, err = svc.Update(ctx, asset.ID, 2, Patch{AssignedTo: uintPtr(0)}, nil)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedToUserID)
	assert.Empty(t, got.AssignedToName)
	assert.Equal(t, 3, got.Version)
}

func TestAssigneeNotFound(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)

	_, err := svc.Update(context.Background(), asset.ID, 1, Patch{AssignedTo: uintPtr(404)}, nil)
	assert.True(t, errors.Is(err, ErrAssigneeNotFound))

	fresh, err := svc.Get(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Version)
}

func TestStatusAndCountTogether(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	got, err := svc.Update(ctx, asset.ID, 1, Patch{
		Status:         statusPtr(models.AssetInProgress),
		CompletedCount: intPtr(3),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, 3, got.CompletedCount)

	var events []models.GridAssetEvent
	require.NoError(t, db.Where("asset_id = ?", asset.ID).Find(&events).Error)
	require.Len(t, events, 1)
	// status among the changed fields wins the event type
	assert.Equal(t, models.EventStatusChange, events[0].Type)
	assert.Equal(t, "not_started", events[0].BeforeState["status"])
	assert.EqualValues(t, 0, events[0].BeforeState["completedCount"])
	assert.Equal(t, "in_progress", events[0].AfterState["status"])
	assert.EqualValues(t, 3, events[0].AfterState["completedCount"])
}

func TestCommentDoesNotTouchRecord(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	ev, err := svc.Comment(ctx, asset.ID, "blade photos uploaded to shared drive", uintPtr(3))
	require.NoError(t, err)
	assert.Equal(t, models.EventComment, ev.Type)

	fresh, err := svc.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Version)

	_, err = svc.Comment(ctx, asset.ID, "", nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Comment(ctx, 9999, "hello", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryOrderedAscending(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	version := 1
	for i := 1; i <= 3; i++ {
		got, err := svc.Update(ctx, asset.ID, version, Patch{CompletedCount: intPtr(i)}, nil)
		require.NoError(t, err)
		version = got.Version
	}
	_, err := svc.Comment(ctx, asset.ID, "done for today", nil)
	require.NoError(t, err)

	events, err := svc.History(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, events, 4)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].CreatedAt.Before(events[i-1].CreatedAt))
		assert.Greater(t, events[i].ID, events[i-1].ID)
	}
	assert.Equal(t, models.EventComment, events[3].Type)

	_, err = svc.History(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBySiteStableOrder(t *testing.T) {
	svc, db := newTestService(t)
	asset := seedAsset(t, db)
	ctx := context.Background()

	for _, key := range []string{"WTG-07", "WTG-03"} {
		require.NoError(t, db.Create(&models.GridAsset{
			SiteID:   asset.SiteID,
			AssetKey: key,
			Status:   models.AssetNotStarted,
			Version:  1,
		}).Error)
	}
	// an asset on another site must not leak in
	otherSite := models.Site{ClientID: 1, Name: "Elsewhere"}
	require.NoError(t, db.Create(&otherSite).Error)
	require.NoError(t, db.Create(&models.GridAsset{
		SiteID:   otherSite.ID,
		AssetKey: "WTG-99",
		Status:   models.AssetNotStarted,
		Version:  1,
	}).Error)

	first, err := svc.ListBySite(ctx, asset.SiteID)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, []string{"WTG-01", "WTG-03", "WTG-07"},
		[]string{first[0].AssetKey, first[1].AssetKey, first[2].AssetKey})

	second, err := svc.ListBySite(ctx, asset.SiteID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
