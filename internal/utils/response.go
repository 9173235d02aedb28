package utils

import (
	"net/http"

	"healthcare-app-server/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    interface{}   `json:"data,omitempty"`
	Error   apperror.Kind `json:"error,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, kind apperror.Kind, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Success: false,
		Message: errorMessage,
		Error:   kind,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, apperror.KindValidation, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, apperror.KindUnauthenticated, errorMessage)
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindPastDate, apperror.KindIllegalTransition:
		return http.StatusBadRequest
	case apperror.KindUnauthenticated, apperror.KindTokenExpired, apperror.KindInvalidCredentials:
		return http.StatusUnauthorized
	case apperror.KindForbidden, apperror.KindAccountInactive:
		return http.StatusForbidden
	case apperror.KindNotFound, apperror.KindPatientNotFound, apperror.KindDoctorNotFound,
		apperror.KindAppointmentNotFound:
		return http.StatusNotFound
	case apperror.KindSlotAlreadyBooked, apperror.KindDuplicateEmail, apperror.KindDuplicateProfile:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// RespondError writes err as a structured error response. Internal errors
// are logged with their cause and returned with a generic message.
func RespondError(c *gin.Context, log logrus.FieldLogger, err error) {
	kind := apperror.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusInternalServerError && log != nil {
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	}
	Error(c, status, kind, apperror.MessageOf(err))
}
