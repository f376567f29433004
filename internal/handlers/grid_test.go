package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aeroops/internal/grid"
	"aeroops/internal/middleware"
	"aeroops/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGridRouter(t *testing.T) (*gin.Engine, *gorm.DB, *models.GridAsset) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Site{},
		&models.GridAsset{},
		&models.GridAssetEvent{},
	))

	operator := models.User{Email: "ops@aeroops.local", PasswordHash: "x", Role: models.RoleCoordinator, FullName: "Ops One"}
	require.NoError(t, db.Create(&operator).Error)
	client := models.Client{Name: "Nordwind Energy"}
	require.NoError(t, db.Create(&client).Error)
	site := models.Site{ClientID: client.ID, Name: "Baltic Ridge"}
	require.NoError(t, db.Create(&site).Error)
	asset := models.GridAsset{SiteID: site.ID, AssetKey: "WTG-01", Status: models.AssetNotStarted, Version: 1}
	require.NoError(t, db.Create(&asset).Error)

	h := NewGridHandler(grid.NewService(db, zap.NewNop()))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetCurrentUser(c, operator)
		c.Next()
	})
	r.GET("/api/sites/:id/grid", h.ListBySite)
	r.GET("/api/grid/:id", h.Get)
	r.GET("/api/grid/:id/events", h.Events)
	r.PATCH("/api/grid/:id", h.Patch)
	r.POST("/api/grid/:id/comments", h.Comment)

	return r, db, &asset
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPatchEndpointSuccess(t *testing.T) {
	r, _, asset := setupGridRouter(t)

	w := doJSON(t, r, http.MethodPatch, "/api/grid/1", gin.H{
		"expectedVersion": 1,
		"status":          "in_progress",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Asset models.GridAsset `json:"asset"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, asset.ID, resp.Asset.ID)
	assert.Equal(t, 2, resp.Asset.Version)
	assert.Equal(t, models.AssetInProgress, resp.Asset.Status)
}

func TestPatchEndpointConflictCarriesCurrent(t *testing.T) {
	r, _, _ := setupGridRouter(t)

	w := doJSON(t, r, http.MethodPatch, "/api/grid/1", gin.H{"expectedVersion": 1, "completedCount": 5})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/grid/1", gin.H{"expectedVersion": 1, "completedCount": 10})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		Current models.GridAsset `json:"current"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "version_conflict", resp.Error.Code)
	assert.Equal(t, 2, resp.Current.Version)
	// only the winner's patch is visible
	assert.Equal(t, 5, resp.Current.CompletedCount)
}

func TestPatchEndpointValidation(t *testing.T) {
	r, _, _ := setupGridRouter(t)

	// missing expectedVersion
	w := doJSON(t, r, http.MethodPatch, "/api/grid/1", gin.H{"status": "complete"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// empty patch
	w = doJSON(t, r, http.MethodPatch, "/api/grid/1", gin.H{"expectedVersion": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown asset
	w = doJSON(t, r, http.MethodPatch, "/api/grid/999", gin.H{"expectedVersion": 1, "status": "complete"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGridReadEndpoints(t *testing.T) {
	r, _, _ := setupGridRouter(t)

	w := doJSON(t, r, http.MethodPatch, "/api/grid/1", gin.H{"expectedVersion": 1, "status": "in_progress"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/grid/1/comments", gin.H{"message": "east blade needs a second pass"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/sites/1/grid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Assets []models.GridAsset `json:"assets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Assets, 1)

	w = doJSON(t, r, http.MethodGet, "/api/grid/1/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var eventsResp struct {
		Events []models.GridAssetEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eventsResp))
	require.Len(t, eventsResp.Events, 2)
	assert.Equal(t, models.EventStatusChange, eventsResp.Events[0].Type)
	assert.Equal(t, models.EventComment, eventsResp.Events[1].Type)

	w = doJSON(t, r, http.MethodGet, "/api/grid/999/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
