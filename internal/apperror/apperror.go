package apperror

import (
	"errors"
	"fmt"
)

// Kind is the machine-checkable category of an application error.
type Kind string

const (
	KindValidation          Kind = "VALIDATION_ERROR"
	KindDuplicateEmail      Kind = "DUPLICATE_EMAIL"
	KindDuplicateProfile    Kind = "DUPLICATE_PROFILE"
	KindNotFound            Kind = "NOT_FOUND"
	KindPatientNotFound     Kind = "PATIENT_NOT_FOUND"
	KindDoctorNotFound      Kind = "DOCTOR_NOT_FOUND"
	KindAppointmentNotFound Kind = "APPOINTMENT_NOT_FOUND"
	KindPastDate            Kind = "PAST_DATE"
	KindSlotAlreadyBooked   Kind = "SLOT_ALREADY_BOOKED"
	KindIllegalTransition   Kind = "ILLEGAL_TRANSITION"
	KindUnauthenticated     Kind = "UNAUTHENTICATED"
	KindTokenExpired        Kind = "TOKEN_EXPIRED"
	KindForbidden           Kind = "FORBIDDEN"
	KindAccountInactive     Kind = "ACCOUNT_INACTIVE"
	KindInvalidCredentials  Kind = "INVALID_CREDENTIALS"
	KindInternal            Kind = "INTERNAL"
)

// Error is a structured application error. Message is safe to show to API
// clients; Cause is kept for logging only.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind, so callers can
// write errors.Is(err, apperror.ErrSlotAlreadyBooked).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind carrying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Internal wraps an unexpected failure (database, signing, hashing).
func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// Validation creates a validation error with the given message.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Forbidden creates a forbidden error with the given message.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Reference values for errors.Is comparisons.
var (
	ErrValidation          = New(KindValidation, "validation failed")
	ErrDuplicateEmail      = New(KindDuplicateEmail, "User with this email already exists")
	ErrDuplicateProfile    = New(KindDuplicateProfile, "Doctor profile already exists")
	ErrNotFound            = New(KindNotFound, "Resource not found")
	ErrPatientNotFound     = New(KindPatientNotFound, "Patient not found")
	ErrDoctorNotFound      = New(KindDoctorNotFound, "Doctor not found")
	ErrAppointmentNotFound = New(KindAppointmentNotFound, "Appointment not found")
	ErrPastDate            = New(KindPastDate, "Cannot book appointment in the past")
	ErrSlotAlreadyBooked   = New(KindSlotAlreadyBooked, "This time slot is already booked")
	ErrIllegalTransition   = New(KindIllegalTransition, "Illegal appointment status transition")
	ErrUnauthenticated     = New(KindUnauthenticated, "Authentication required")
	ErrTokenExpired        = New(KindTokenExpired, "Token has expired")
	ErrForbidden           = New(KindForbidden, "Access denied. Insufficient permissions")
	ErrAccountInactive     = New(KindAccountInactive, "Account is inactive. Please contact support")
	ErrInvalidCredentials  = New(KindInvalidCredentials, "Invalid email or password")
)

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "An internal error occurred"
}
