package handlers

import (
	"healthcare-app-server/internal/middleware"
	"healthcare-app-server/internal/services"
	"healthcare-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserHandler serves the authenticated patient's own account.
type UserHandler struct {
	Identity *services.IdentityService
	Log      logrus.FieldLogger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(identity *services.IdentityService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{Identity: identity, Log: log}
}

// GetProfile returns the caller's account.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}

	user, err := h.Identity.FindAccountByID(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Profile retrieved successfully", user.Sanitize())
}

// UpdateProfile updates the caller's name, phone, address, date of birth
// and gender. Other fields in the body are ignored.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}

	var req services.AccountUpdateInput
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	user, err := h.Identity.UpdateAccount(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Profile updated successfully", user.Sanitize())
}
