package handlers

import (
	"net/http"
	"strings"
	"time"

	"aeroops/internal/database"
	"aeroops/internal/middleware"
	"aeroops/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func validDeploymentType(t models.DeploymentType) bool {
	switch t {
	case models.DeploymentVisual, models.DeploymentThermal, models.DeploymentLidar, models.DeploymentSurvey:
		return true
	}
	return false
}

// allowed status transitions; anything absent is rejected
var deploymentTransitions = map[models.DeploymentStatus][]models.DeploymentStatus{
	models.DeploymentPlanned:    {models.DeploymentInProgress, models.DeploymentCancelled},
	models.DeploymentInProgress: {models.DeploymentOnReview, models.DeploymentCancelled},
	models.DeploymentOnReview:   {models.DeploymentFinished, models.DeploymentInProgress},
}

func transitionAllowed(from, to models.DeploymentStatus) bool {
	for _, next := range deploymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ListDeployments(c *gin.Context) {
	q := database.DB.Preload("Site").Preload("Drone").Preload("Pilot").
		Order("planned_start asc, id asc")
	if siteID := c.Query("site_id"); siteID != "" {
		q = q.Where("site_id = ?", siteID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var deployments []models.Deployment
	if err := q.Find(&deployments).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to list deployments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deployments": deployments})
}

type deploymentRequest struct {
	SiteID       uint                  `json:"siteId"`
	DroneID      uint                  `json:"droneId"`
	PilotID      uint                  `json:"pilotId"`
	Title        string                `json:"title"`
	Type         models.DeploymentType `json:"type"`
	Description  string                `json:"description"`
	PlannedStart *time.Time            `json:"plannedStart"`
	PlannedEnd   *time.Time            `json:"plannedEnd"`
}

func CreateDeployment(c *gin.Context) {
	var req deploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid deployment payload")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if len(req.Title) < 3 {
		respondError(c, http.StatusBadRequest, "validation", "deployment title must be at least 3 characters")
		return
	}
	if !validDeploymentType(req.Type) {
		respondError(c, http.StatusBadRequest, "validation", "unknown deployment type")
		return
	}

	var site models.Site
	if err := database.DB.First(&site, req.SiteID).Error; err != nil {
		respondError(c, http.StatusBadRequest, "validation", "site not found")
		return
	}
	var drone models.Drone
	if err := database.DB.First(&drone, req.DroneID).Error; err != nil {
		respondError(c, http.StatusBadRequest, "validation", "drone not found")
		return
	}
	if drone.Status == models.DroneMaintenance {
		respondError(c, http.StatusBadRequest, "validation", "drone is in maintenance")
		return
	}
	var pilot models.User
	if err := database.DB.First(&pilot, req.PilotID).Error; err != nil || pilot.Role != models.RolePilot {
		respondError(c, http.StatusBadRequest, "validation", "pilot not found")
		return
	}
	if req.PlannedStart != nil && req.PlannedEnd != nil && req.PlannedEnd.Before(*req.PlannedStart) {
		respondError(c, http.StatusBadRequest, "validation", "planned end is before planned start")
		return
	}

	deployment := models.Deployment{
		SiteID:       site.ID,
		DroneID:      drone.ID,
		PilotID:      pilot.ID,
		Title:        req.Title,
		Type:         req.Type,
		Status:       models.DeploymentPlanned,
		Description:  req.Description,
		PlannedStart: req.PlannedStart,
		PlannedEnd:   req.PlannedEnd,
	}
	if err := database.DB.Create(&deployment).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to create deployment")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "deployment", deployment.ID, "create", "Scheduled deployment: "+deployment.Title)
	}
	c.JSON(http.StatusCreated, gin.H{"deployment": deployment})
}

func GetDeployment(c *gin.Context) {
	var deployment models.Deployment
	if err := database.DB.Preload("Site").Preload("Drone").Preload("Pilot").
		First(&deployment, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "deployment not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deployment": deployment})
}

func UpdateDeployment(c *gin.Context) {
	var deployment models.Deployment
	if err := database.DB.First(&deployment, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "deployment not found")
		return
	}
	if deployment.Status == models.DeploymentFinished || deployment.Status == models.DeploymentCancelled {
		respondError(c, http.StatusBadRequest, "validation", "deployment is closed")
		return
	}

	var req deploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid deployment payload")
		return
	}
	if req.Title != "" {
		req.Title = strings.TrimSpace(req.Title)
		if len(req.Title) < 3 {
			respondError(c, http.StatusBadRequest, "validation", "deployment title must be at least 3 characters")
			return
		}
		deployment.Title = req.Title
	}
	if req.Type != "" {
		if !validDeploymentType(req.Type) {
			respondError(c, http.StatusBadRequest, "validation", "unknown deployment type")
			return
		}
		deployment.Type = req.Type
	}
	if req.DroneID != 0 && req.DroneID != deployment.DroneID {
		var drone models.Drone
		if err := database.DB.First(&drone, req.DroneID).Error; err != nil {
			respondError(c, http.StatusBadRequest, "validation", "drone not found")
			return
		}
		deployment.DroneID = drone.ID
	}
	if req.PilotID != 0 && req.PilotID != deployment.PilotID {
		var pilot models.User
		if err := database.DB.First(&pilot, req.PilotID).Error; err != nil || pilot.Role != models.RolePilot {
			respondError(c, http.StatusBadRequest, "validation", "pilot not found")
			return
		}
		deployment.PilotID = pilot.ID
	}
	if req.Description != "" {
		deployment.Description = req.Description
	}
	if req.PlannedStart != nil {
		deployment.PlannedStart = req.PlannedStart
	}
	if req.PlannedEnd != nil {
		deployment.PlannedEnd = req.PlannedEnd
	}

	if err := database.DB.Save(&deployment).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to update deployment")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "deployment", deployment.ID, "update", "Updated deployment: "+deployment.Title)
	}
	c.JSON(http.StatusOK, gin.H{"deployment": deployment})
}

type deploymentStatusRequest struct {
	Status models.DeploymentStatus `json:"status"`
}

func UpdateDeploymentStatus(c *gin.Context) {
	var deployment models.Deployment
	if err := database.DB.First(&deployment, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "deployment not found")
		return
	}

	var req deploymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid status payload")
		return
	}
	if !transitionAllowed(deployment.Status, req.Status) {
		respondError(c, http.StatusBadRequest, "validation",
			"cannot change status from "+string(deployment.Status)+" to "+string(req.Status))
		return
	}

	from := deployment.Status
	deployment.Status = req.Status

	// mirror the mission state onto the drone
	droneStatus := models.DroneStatus("")
	switch req.Status {
	case models.DeploymentInProgress:
		droneStatus = models.DroneDeployed
	case models.DeploymentFinished, models.DeploymentCancelled:
		droneStatus = models.DroneAvailable
	}
	if req.Status == models.DeploymentFinished {
		now := time.Now().UTC()
		deployment.ActualEnd = &now
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&deployment).Error; err != nil {
			return err
		}
		if droneStatus != "" && deployment.DroneID != 0 {
			if err := tx.Model(&models.Drone{}).
				Where("id = ?", deployment.DroneID).
				Update("status", droneStatus).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to change deployment status")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "deployment", deployment.ID, "status_change",
			"Deployment "+deployment.Title+": "+string(from)+" -> "+string(req.Status))
	}
	c.JSON(http.StatusOK, gin.H{"deployment": deployment})
}
