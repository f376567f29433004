package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"aeroops/internal/database"
	"aeroops/internal/extract"
	"aeroops/internal/grid"
	"aeroops/internal/middleware"
	"aeroops/internal/models"
	"aeroops/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// uploads are read fully into memory for the extraction call; cap them
const maxDocumentBytes = 25 << 20

type DocumentHandler struct {
	store     storage.Store
	extractor *extract.Client // nil when no extraction API is configured
	grid      *grid.Service
	log       *zap.Logger
}

func NewDocumentHandler(store storage.Store, extractor *extract.Client, gridSvc *grid.Service, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{store: store, extractor: extractor, grid: gridSvc, log: log}
}

// POST /api/deployments/:id/documents
//
// Stores the file, records the document row, then runs extraction in the
// request (there is no background worker in this system). Extraction
// failure marks the document failed but does not fail the upload.
func (h *DocumentHandler) Upload(c *gin.Context) {
	deploymentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var deployment models.Deployment
	if err := database.DB.First(&deployment, deploymentID).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "deployment not found")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "file is required")
		return
	}
	if file.Size > maxDocumentBytes {
		respondError(c, http.StatusBadRequest, "validation", "file exceeds 25 MB limit")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "cannot read file")
		return
	}
	content, err := io.ReadAll(io.LimitReader(src, maxDocumentBytes+1))
	src.Close()
	if err != nil || int64(len(content)) > maxDocumentBytes {
		respondError(c, http.StatusBadRequest, "bad_request", "cannot read file")
		return
	}

	contentType := file.Header.Get("Content-Type")
	key := fmt.Sprintf("deployments/%d/%s%s", deploymentID, uuid.NewString(), filepath.Ext(file.Filename))
	if err := h.store.Put(c.Request.Context(), key, bytes.NewReader(content), contentType); err != nil {
		h.log.Error("document upload failed", zap.String("key", key), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "storage_error", "failed to store file")
		return
	}

	user, _ := middleware.CurrentUser(c)
	doc := models.Document{
		DeploymentID:     deploymentID,
		FileName:         filepath.Base(file.Filename),
		ContentType:      contentType,
		SizeBytes:        int64(len(content)),
		StorageKey:       key,
		DocType:          strings.TrimSpace(c.PostForm("doc_type")),
		Status:           models.DocumentUploaded,
		UploadedByUserID: user.ID,
	}
	if err := database.DB.Create(&doc).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to record document")
		return
	}

	if h.extractor != nil {
		fields, err := h.extractor.ExtractFields(c.Request.Context(), doc.FileName, doc.DocType, content)
		if err != nil {
			h.log.Warn("document extraction failed",
				zap.Uint("document_id", doc.ID), zap.Error(err))
			doc.Status = models.DocumentFailed
			doc.ExtractError = err.Error()
		} else {
			doc.Status = models.DocumentExtracted
			doc.ExtractedFields = datatypes.JSONMap(fields)
		}
		if err := database.DB.Save(&doc).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "db_error", "failed to record extraction result")
			return
		}
	}

	// optionally pin the upload to a grid asset as an attachment event
	if assetIDStr := c.PostForm("asset_id"); assetIDStr != "" {
		var assetID uint
		if _, err := fmt.Sscanf(assetIDStr, "%d", &assetID); err == nil && assetID > 0 {
			if _, err := h.grid.Attachment(c.Request.Context(), assetID, doc.FileName, actorID(c)); err != nil {
				h.log.Warn("attachment event failed", zap.Uint("asset_id", assetID), zap.Error(err))
			}
		}
	}

	database.CreateAuditLog(user.ID, "document", doc.ID, "create", "Uploaded document: "+doc.FileName)
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// GET /api/deployments/:id/documents
func (h *DocumentHandler) ListByDeployment(c *gin.Context) {
	deploymentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var docs []models.Document
	if err := database.DB.
		Where("deployment_id = ?", deploymentID).
		Order("created_at asc").
		Find(&docs).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to list documents")
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// GET /api/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	var doc models.Document
	if err := database.DB.First(&doc, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "document not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// GET /api/documents/:id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	var doc models.Document
	if err := database.DB.First(&doc, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "document not found")
		return
	}

	rc, err := h.store.Get(c.Request.Context(), doc.StorageKey)
	if err != nil {
		h.log.Error("document download failed", zap.String("key", doc.StorageKey), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "storage_error", "failed to fetch file")
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.DataFromReader(http.StatusOK, doc.SizeBytes, doc.ContentType, rc, nil)
}
