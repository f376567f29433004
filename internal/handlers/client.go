package handlers

import (
	"net/http"
	"strings"

	"aeroops/internal/database"
	"aeroops/internal/middleware"
	"aeroops/internal/models"

	"github.com/gin-gonic/gin"
)

func ListClients(c *gin.Context) {
	var clients []models.Client
	if err := database.DB.Order("name asc").Find(&clients).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to list clients")
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

type clientRequest struct {
	Name         string `json:"name"`
	Industry     string `json:"industry"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
	BillingEmail string `json:"billingEmail"`
	Notes        string `json:"notes"`
}

func (r *clientRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	if len(r.Name) < 3 {
		return "client name must be at least 3 characters"
	}
	return ""
}

func CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid client payload")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(c, http.StatusBadRequest, "validation", msg)
		return
	}

	client := models.Client{
		Name:         req.Name,
		Industry:     strings.TrimSpace(req.Industry),
		ContactName:  strings.TrimSpace(req.ContactName),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		BillingEmail: strings.TrimSpace(req.BillingEmail),
		Notes:        req.Notes,
	}
	if err := database.DB.Create(&client).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to create client")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "client", client.ID, "create", "Created client: "+client.Name)
	}
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

func GetClient(c *gin.Context) {
	var client models.Client
	if err := database.DB.Preload("Sites").First(&client, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "client not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

func UpdateClient(c *gin.Context) {
	var client models.Client
	if err := database.DB.First(&client, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "client not found")
		return
	}

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid client payload")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(c, http.StatusBadRequest, "validation", msg)
		return
	}

	client.Name = req.Name
	client.Industry = strings.TrimSpace(req.Industry)
	client.ContactName = strings.TrimSpace(req.ContactName)
	client.ContactEmail = strings.TrimSpace(req.ContactEmail)
	client.ContactPhone = strings.TrimSpace(req.ContactPhone)
	client.BillingEmail = strings.TrimSpace(req.BillingEmail)
	client.Notes = req.Notes

	if err := database.DB.Save(&client).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to update client")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "client", client.ID, "update", "Updated client: "+client.Name)
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}
