package handlers

import (
	"net/http"
	"strings"

	"aeroops/internal/database"
	"aeroops/internal/middleware"
	"aeroops/internal/models"

	"github.com/gin-gonic/gin"
)

func ListUsers(c *gin.Context) {
	q := database.DB.Order("email asc")
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type userUpdateRequest struct {
	Role      models.UserRole `json:"role"`
	FullName  string          `json:"fullName"`
	Phone     string          `json:"phone"`
	CertLevel string          `json:"certLevel"`
	AvatarURL string          `json:"avatarUrl"`
}

func UpdateUser(c *gin.Context) {
	var user models.User
	if err := database.DB.First(&user, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "user not found")
		return
	}

	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid user payload")
		return
	}

	if req.Role != "" {
		switch req.Role {
		case models.RoleAdmin, models.RoleCoordinator, models.RolePilot, models.RoleViewer:
			user.Role = req.Role
		default:
			respondError(c, http.StatusBadRequest, "validation", "unknown role")
			return
		}
	}
	if s := strings.TrimSpace(req.FullName); s != "" {
		user.FullName = s
	}
	if s := strings.TrimSpace(req.Phone); s != "" {
		user.Phone = s
	}
	if s := strings.TrimSpace(req.CertLevel); s != "" {
		user.CertLevel = s
	}
	if s := strings.TrimSpace(req.AvatarURL); s != "" {
		user.AvatarURL = s
	}

	if err := database.DB.Save(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to update user")
		return
	}

	// the grid stores a display projection of the assignee; keep it in
	// sync here so the update protocol never deals with cross-entity state
	name := user.FullName
	if name == "" {
		name = user.Email
	}
	if err := database.DB.Model(&models.GridAsset{}).
		Where("assigned_to_user_id = ?", user.ID).
		Updates(map[string]any{
			"assigned_to_name":   name,
			"assigned_to_avatar": user.AvatarURL,
		}).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to refresh assignments")
		return
	}

	if actor, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(actor.ID, "user", user.ID, "update", "Updated user: "+user.Email)
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
