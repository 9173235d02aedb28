package handlers

import (
	"time"

	"healthcare-app-server/internal/apperror"
	"healthcare-app-server/internal/middleware"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/services"
	"healthcare-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Identity    *services.IdentityService
	Credentials *services.CredentialService
	Log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(identity *services.IdentityService, credentials *services.CredentialService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Identity: identity, Credentials: credentials, Log: log}
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	User      models.UserSanitized `json:"user"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	user, err := h.Identity.CreateAccount(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	token, err := h.Credentials.IssueToken(user.ID, user.Role, 0)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Created(c, "User registered successfully", AuthResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      user.Sanitize(),
	})
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	user, err := h.Identity.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	token, err := h.Credentials.IssueToken(user.ID, user.Role, 0)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	utils.Success(c, "Login successful", AuthResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      user.Sanitize(),
	})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c *gin.Context) {
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
	utils.Success(c, "User retrieved successfully", user.Sanitize())
}

// Logout revokes the bearer token used for the request.
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.RespondError(c, h.Log, apperror.New(apperror.KindUnauthenticated, "Not authenticated"))
		return
	}

	revoked, err := h.Credentials.RevokeToken(c.Request.Context(), principal.Claims)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Logged out successfully", gin.H{"revoked": revoked})
}
