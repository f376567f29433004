package handlers

import (
	"net/http"
	"strings"

	"aeroops/internal/database"
	"aeroops/internal/middleware"
	"aeroops/internal/models"

	"github.com/gin-gonic/gin"
)

func validDroneStatus(s models.DroneStatus) bool {
	switch s {
	case models.DroneAvailable, models.DroneDeployed, models.DroneMaintenance:
		return true
	}
	return false
}

func ListDrones(c *gin.Context) {
	q := database.DB.Order("serial asc")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var drones []models.Drone
	if err := q.Find(&drones).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to list drones")
		return
	}
	c.JSON(http.StatusOK, gin.H{"drones": drones})
}

type droneRequest struct {
	Serial    string             `json:"serial"`
	Model     string             `json:"model"`
	Status    models.DroneStatus `json:"status"`
	Payload   string             `json:"payload"`
	Notes     string             `json:"notes"`
	FlightHrs *float64           `json:"flightHours"`
}

func CreateDrone(c *gin.Context) {
	var req droneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid drone payload")
		return
	}
	req.Serial = strings.TrimSpace(req.Serial)
	req.Model = strings.TrimSpace(req.Model)
	if req.Serial == "" || req.Model == "" {
		respondError(c, http.StatusBadRequest, "validation", "serial and model are required")
		return
	}
	if req.Status == "" {
		req.Status = models.DroneAvailable
	}
	if !validDroneStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "validation", "unknown drone status")
		return
	}

	var count int64
	database.DB.Model(&models.Drone{}).Where("serial = ?", req.Serial).Count(&count)
	if count > 0 {
		respondError(c, http.StatusBadRequest, "validation", "a drone with this serial already exists")
		return
	}

	drone := models.Drone{
		Serial:    req.Serial,
		ModelName: req.Model,
		Status:    req.Status,
		Payload:   strings.TrimSpace(req.Payload),
		Notes:     req.Notes,
	}
	if req.FlightHrs != nil && *req.FlightHrs >= 0 {
		drone.FlightHours = *req.FlightHrs
	}
	if err := database.DB.Create(&drone).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to create drone")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "drone", drone.ID, "create", "Added drone: "+drone.Serial)
	}
	c.JSON(http.StatusCreated, gin.H{"drone": drone})
}

func GetDrone(c *gin.Context) {
	var drone models.Drone
	if err := database.DB.First(&drone, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "drone not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"drone": drone})
}

func UpdateDrone(c *gin.Context) {
	var drone models.Drone
	if err := database.DB.First(&drone, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "drone not found")
		return
	}

	var req droneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid drone payload")
		return
	}
	if req.Status != "" && !validDroneStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "validation", "unknown drone status")
		return
	}

	if s := strings.TrimSpace(req.Model); s != "" {
		drone.ModelName = s
	}
	if req.Status != "" {
		drone.Status = req.Status
	}
	if req.Payload != "" {
		drone.Payload = strings.TrimSpace(req.Payload)
	}
	if req.Notes != "" {
		drone.Notes = req.Notes
	}
	if req.FlightHrs != nil && *req.FlightHrs >= 0 {
		drone.FlightHours = *req.FlightHrs
	}

	if err := database.DB.Save(&drone).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to update drone")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "drone", drone.ID, "update", "Updated drone: "+drone.Serial)
	}
	c.JSON(http.StatusOK, gin.H{"drone": drone})
}
