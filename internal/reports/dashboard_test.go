package reports

import (
	"context"
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
		&models.Drone{},
		&models.Deployment{},
		&models.GridAsset{},
	))
	return NewService(db, nil, zap.NewNop()), db
}

func TestSiteDashboard(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	client := models.Client{Name: "Nordwind Energy"}
	require.NoError(t, db.Create(&client).Error)
	site := models.Site{ClientID: client.ID, Name: "Baltic Ridge"}
	require.NoError(t, db.Create(&site).Error)

	planned := 10
	require.NoError(t, db.Create(&[]models.GridAsset{
		{SiteID: site.ID, AssetKey: "WTG-01", Status: models.AssetComplete, PlannedCount: &planned, CompletedCount: 10, Version: 3},
		{SiteID: site.ID, AssetKey: "WTG-02", Status: models.AssetInProgress, PlannedCount: &planned, CompletedCount: 4, Version: 2},
		{SiteID: site.ID, AssetKey: "WTG-03", Status: models.AssetNotStarted, Version: 1},
	}).Error)

	require.NoError(t, db.Create(&[]models.Deployment{
		{SiteID: site.ID, Title: "Blade pass", Type: models.DeploymentVisual, Status: models.DeploymentFinished},
		{SiteID: site.ID, Title: "Thermal pass", Type: models.DeploymentThermal, Status: models.DeploymentPlanned},
	}).Error)

	d, err := svc.SiteDashboard(ctx, site.ID)
	require.NoError(t, err)

	assert.Equal(t, "Baltic Ridge", d.SiteName)
	assert.Equal(t, 3, d.AssetTotal)
	assert.Equal(t, 1, d.AssetsByStatus["complete"])
	assert.Equal(t, 1, d.AssetsByStatus["in_progress"])
	assert.Equal(t, 20, d.PlannedTotal)
	assert.Equal(t, 14, d.CompletedTotal)
	assert.InDelta(t, 0.7, d.CompletionRatio, 0.001)
	// weights: complete 1.0*10 + in_progress 0.5*10 + not_started 0*1 = 15/21
	assert.InDelta(t, 71.4, d.APX, 0.05)
	assert.EqualValues(t, 1, d.Deployments["finished"])
	assert.EqualValues(t, 1, d.Deployments["planned"])
}

func TestSiteDashboardUnknownSite(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SiteDashboard(context.Background(), 4242)
	assert.ErrorIs(t, err, ErrSiteNotFound)
}

func TestExportGridXLSX(t *testing.T) {
	planned := 12
	assets := []models.GridAsset{
		{AssetKey: "WTG-01", AssetType: "turbine", Status: models.AssetComplete, CompletedCount: 12, PlannedCount: &planned, Version: 4},
		{AssetKey: "WTG-02", AssetType: "turbine", Status: models.AssetBlocked, Version: 2},
	}

	buf, err := ExportGridXLSX("Baltic Ridge", assets)
	require.NoError(t, err)
	assert.Greater(t, buf.Len(), 0)
}
