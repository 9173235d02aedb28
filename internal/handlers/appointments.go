package handlers

import (
	"healthcare-app-server/internal/middleware"
	"healthcare-app-server/internal/services"
	"healthcare-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Scheduling *services.SchedulingService
	Log        logrus.FieldLogger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(scheduling *services.SchedulingService, log logrus.FieldLogger) *AppointmentHandler {
	return &AppointmentHandler{Scheduling: scheduling, Log: log}
}

// CreateAppointmentRequest represents the request body for booking an
// appointment. The patient is always the caller. date and time are accepted
// as short aliases of appointmentDate and appointmentTime.
type CreateAppointmentRequest struct {
	DoctorID        string `json:"doctorId"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Duration        *int   `json:"duration"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status             string `json:"status"`
	CancellationReason string `json:"cancellationReason"`
}

// CreateAppointment books an appointment for the calling patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Patient ID not found in token")
		return
	}

	var req CreateAppointmentRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	input := services.BookingInput{
		PatientID:       patientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: firstNonEmpty(req.AppointmentDate, req.Date),
		AppointmentTime: firstNonEmpty(req.AppointmentTime, req.Time),
		Duration:        req.Duration,
		Reason:          req.Reason,
		Notes:           req.Notes,
	}

	appointment, err := h.Scheduling.BookAppointment(c.Request.Context(), input)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetPatientAppointments lists the calling patient's appointments.
func (h *AppointmentHandler) GetPatientAppointments(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}

	appointments, err := h.Scheduling.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointments retrieved successfully", appointments)
}

// GetDoctorAppointments lists the calling doctor's appointments.
func (h *AppointmentHandler) GetDoctorAppointments(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}

	appointments, err := h.Scheduling.ListByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointments retrieved successfully", appointments)
}

// GetAppointmentByID returns an appointment to one of its participants.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	appointment, err := h.Scheduling.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	if err := services.RequireParticipant(userID, role, appointment); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointment retrieved successfully", appointment)
}

// UpdateAppointmentStatus moves an appointment to a new status.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	var req UpdateStatusRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}

	appointment, err := h.Scheduling.UpdateStatus(c.Request.Context(), services.StatusUpdateInput{
		AppointmentID:      c.Param("id"),
		Status:             req.Status,
		CallerID:           userID,
		CallerRole:         role,
		CancellationReason: req.CancellationReason,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Appointment status updated successfully", appointment)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
