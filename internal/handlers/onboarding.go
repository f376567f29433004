package handlers

import (
	"errors"
	"net/http"
	"strings"

	"aeroops/internal/database"
	"aeroops/internal/middleware"
	"aeroops/internal/models"
	"aeroops/internal/onboarding"

	"github.com/gin-gonic/gin"
)

type OnboardingHandler struct {
	svc *onboarding.Service
}

func NewOnboardingHandler(svc *onboarding.Service) *OnboardingHandler {
	return &OnboardingHandler{svc: svc}
}

type inviteRequest struct {
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	ClientID *uint           `json:"clientId"`
}

// POST /api/invites (admin). The token comes back in the response; mail
// delivery is a collaborator outside this backend.
func (h *OnboardingHandler) CreateInvite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid invite payload")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(c, http.StatusBadRequest, "validation", "a valid email is required")
		return
	}

	user, _ := middleware.CurrentUser(c)
	token, invite, err := h.svc.Issue(c.Request.Context(), req.Email, req.Role, req.ClientID, user.ID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	database.CreateAuditLog(user.ID, "invite", invite.ID, "create", "Invited "+invite.Email+" as "+string(invite.Role))
	c.JSON(http.StatusCreated, gin.H{"invite": invite, "token": token})
}

// GET /api/onboarding/:token (public): prefill data for the portal.
func (h *OnboardingHandler) Resolve(c *gin.Context) {
	invite, err := h.svc.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.respondInviteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":     invite.Email,
		"role":      invite.Role,
		"clientId":  invite.ClientID,
		"expiresAt": invite.ExpiresAt,
	})
}

type acceptRequest struct {
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

// POST /api/onboarding/:token/accept (public)
func (h *OnboardingHandler) Accept(c *gin.Context) {
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	user, err := h.svc.Accept(c.Request.Context(), c.Param("token"), strings.TrimSpace(req.FullName), req.Password)
	if err != nil {
		h.respondInviteError(c, err)
		return
	}

	database.CreateAuditLog(user.ID, "user", user.ID, "create", "Onboarded user "+user.Email)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *OnboardingHandler) respondInviteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, onboarding.ErrInviteInvalid):
		respondError(c, http.StatusNotFound, "invite_invalid", "invite not found or token invalid")
	case errors.Is(err, onboarding.ErrInviteExpired):
		respondError(c, http.StatusGone, "invite_expired", "invite has expired")
	case errors.Is(err, onboarding.ErrInviteUsed):
		respondError(c, http.StatusConflict, "invite_used", "invite was already accepted")
	default:
		respondError(c, http.StatusBadRequest, "validation", err.Error())
	}
}
