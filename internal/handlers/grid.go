package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"aeroops/internal/grid"
	"aeroops/internal/middleware"
	"aeroops/internal/models"

	"github.com/gin-gonic/gin"
)

type GridHandler struct {
	svc *grid.Service
}

func NewGridHandler(svc *grid.Service) *GridHandler {
	return &GridHandler{svc: svc}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func actorID(c *gin.Context) *uint {
	if user, ok := middleware.CurrentUser(c); ok {
		id := user.ID
		return &id
	}
	return nil
}

// GET /api/sites/:id/grid
func (h *GridHandler) ListBySite(c *gin.Context) {
	siteID, ok := parseID(c, "id")
	if !ok {
		return
	}
	assets, err := h.svc.ListBySite(c.Request.Context(), siteID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to list grid assets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// GET /api/grid/:id
func (h *GridHandler) Get(c *gin.Context) {
	assetID, ok := parseID(c, "id")
	if !ok {
		return
	}
	asset, err := h.svc.Get(c.Request.Context(), assetID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// GET /api/grid/:id/events
func (h *GridHandler) Events(c *gin.Context) {
	assetID, ok := parseID(c, "id")
	if !ok {
		return
	}
	events, err := h.svc.History(c.Request.Context(), assetID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type gridPatchRequest struct {
	ExpectedVersion *int                `json:"expectedVersion"`
	Status          *models.AssetStatus `json:"status"`
	CompletedCount  *int                `json:"completedCount"`
	AssignedTo      *uint               `json:"assignedToUserId"`
}

// PATCH /api/grid/:id
//
// 409 carries the authoritative record so the SPA can show a conflict
// prompt without another fetch. Retrying is the client's call.
func (h *GridHandler) Patch(c *gin.Context) {
	assetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req gridPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid patch payload")
		return
	}
	if req.ExpectedVersion == nil || *req.ExpectedVersion < 1 {
		respondError(c, http.StatusBadRequest, "validation", "expectedVersion is required")
		return
	}

	patch := grid.Patch{
		Status:         req.Status,
		CompletedCount: req.CompletedCount,
		AssignedTo:     req.AssignedTo,
	}

	asset, err := h.svc.Update(c.Request.Context(), assetID, *req.ExpectedVersion, patch, actorID(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

type gridCommentRequest struct {
	Message string `json:"message"`
}

// POST /api/grid/:id/comments
func (h *GridHandler) Comment(c *gin.Context) {
	assetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req gridCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid comment payload")
		return
	}

	event, err := h.svc.Comment(c.Request.Context(), assetID, req.Message, actorID(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// POST /api/sites/:id/grid/import
func (h *GridHandler) Import(c *gin.Context) {
	siteID, ok := parseID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "inventory file is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "cannot read inventory file")
		return
	}
	defer src.Close()

	res, err := h.svc.ImportInventory(c.Request.Context(), siteID, src)
	if err != nil {
		respondError(c, http.StatusBadRequest, "import_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}

func (h *GridHandler) respondServiceError(c *gin.Context, err error) {
	var conflict *grid.VersionConflictError
	var verr *grid.ValidationError

	switch {
	case errors.Is(err, grid.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", "grid asset not found")
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": gin.H{
				"code":    "version_conflict",
				"message": conflict.Error(),
			},
			"current": conflict.Current,
		})
	case errors.Is(err, grid.ErrEmptyPatch),
		errors.Is(err, grid.ErrAssigneeNotFound),
		errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, "validation", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "db_error", "grid operation failed")
	}
}
