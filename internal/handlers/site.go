package handlers

import (
	"net/http"
	"strings"

	"aeroops/internal/database"
	"aeroops/internal/middleware"
	"aeroops/internal/models"

	"github.com/gin-gonic/gin"
)

func ListSites(c *gin.Context) {
	q := database.DB.Preload("Client").Order("name asc")
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}

	var sites []models.Site
	if err := q.Find(&sites).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to list sites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sites": sites})
}

type siteRequest struct {
	ClientID uint   `json:"clientId"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Industry string `json:"industry"`
	GeoNotes string `json:"geoNotes"`
}

func CreateSite(c *gin.Context) {
	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid site payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 3 {
		respondError(c, http.StatusBadRequest, "validation", "site name must be at least 3 characters")
		return
	}

	var client models.Client
	if err := database.DB.First(&client, req.ClientID).Error; err != nil {
		respondError(c, http.StatusBadRequest, "validation", "client not found")
		return
	}

	site := models.Site{
		ClientID: client.ID,
		Name:     req.Name,
		Address:  strings.TrimSpace(req.Address),
		Industry: strings.TrimSpace(req.Industry),
		GeoNotes: req.GeoNotes,
	}
	if err := database.DB.Create(&site).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to create site")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "site", site.ID, "create", "Created site: "+site.Name)
	}
	c.JSON(http.StatusCreated, gin.H{"site": site})
}

func GetSite(c *gin.Context) {
	var site models.Site
	if err := database.DB.Preload("Client").First(&site, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "site not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"site": site})
}

func UpdateSite(c *gin.Context) {
	var site models.Site
	if err := database.DB.First(&site, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "site not found")
		return
	}

	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid site payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 3 {
		respondError(c, http.StatusBadRequest, "validation", "site name must be at least 3 characters")
		return
	}
	if req.ClientID != 0 && req.ClientID != site.ClientID {
		var client models.Client
		if err := database.DB.First(&client, req.ClientID).Error; err != nil {
			respondError(c, http.StatusBadRequest, "validation", "client not found")
			return
		}
		site.ClientID = client.ID
	}

	site.Name = req.Name
	site.Address = strings.TrimSpace(req.Address)
	site.Industry = strings.TrimSpace(req.Industry)
	site.GeoNotes = req.GeoNotes

	if err := database.DB.Save(&site).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to update site")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "site", site.ID, "update", "Updated site: "+site.Name)
	}
	c.JSON(http.StatusOK, gin.H{"site": site})
}
