package handlers

import (
	"strings"

	"healthcare-app-server/internal/middleware"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/services"
	"healthcare-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DoctorHandler serves the doctor directory and doctors' own profiles.
type DoctorHandler struct {
	Identity   *services.IdentityService
	Scheduling *services.SchedulingService
	Log        logrus.FieldLogger
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(identity *services.IdentityService, scheduling *services.SchedulingService, log logrus.FieldLogger) *DoctorHandler {
	return &DoctorHandler{Identity: identity, Scheduling: scheduling, Log: log}
}

// ListDoctors returns doctor profiles, optionally filtered by specialization.
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	filter := models.DoctorFilter{Specialization: strings.TrimSpace(c.Query("specialization"))}

	doctors, err := h.Identity.ListDoctors(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Doctors retrieved successfully", doctors)
}

// GetDoctor returns a doctor profile by its id.
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	profile, err := h.Identity.GetDoctorProfileByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Doctor retrieved successfully", profile)
}

// GetSlots returns the free slots of a doctor on the date query parameter.
func (h *DoctorHandler) GetSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.BadRequest(c, "date is required")
		return
	}

	schedule, err := h.Scheduling.AvailableSlots(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Available slots retrieved successfully", schedule)
}

// CreateProfile creates the caller's doctor profile.
func (h *DoctorHandler) CreateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}

	var req services.DoctorProfileInput
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	profile, err := h.Identity.CreateDoctorProfile(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Created(c, "Doctor profile created successfully", profile)
}

// GetMyProfile returns the caller's doctor profile.
func (h *DoctorHandler) GetMyProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}

	profile, err := h.Identity.GetDoctorProfile(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Doctor profile retrieved successfully", profile)
}

// UpdateProfile updates the caller's doctor profile.
func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}

	var req services.DoctorProfileUpdate
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	profile, err := h.Identity.UpdateDoctorProfile(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Doctor profile updated successfully", profile)
}
