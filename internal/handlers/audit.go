package handlers

import (
	"net/http"

	"aeroops/internal/database"
	"aeroops/internal/models"

	"github.com/gin-gonic/gin"
)

func ListAuditLogs(c *gin.Context) {
	var logs []models.AuditLog
	if err := database.DB.
		Preload("User").
		Order("created_at desc").
		Limit(200).
		Find(&logs).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to list audit logs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
