// Package repository persists accounts, doctor profiles and appointments.
// The GORM stores back the running service; the memory subpackage provides
// the same contracts for tests.
package repository

import (
	"context"
	"errors"

	"healthcare-app-server/internal/models"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale is returned when a conditional update matched no row because
	// the record changed since it was read.
	ErrStale = errors.New("record changed concurrently")
)

// AccountRepository stores user accounts. Emails are stored lower-cased.
type AccountRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	Update(ctx context.Context, id string, update models.AccountUpdate) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// DoctorRepository stores doctor profiles, at most one per account.
type DoctorRepository interface {
	Create(ctx context.Context, profile *models.DoctorProfile) error
	FindByID(ctx context.Context, id string) (*models.DoctorProfile, error)
	FindByUserID(ctx context.Context, userID string) (*models.DoctorProfile, error)
	Save(ctx context.Context, profile *models.DoctorProfile) error
	// List returns profiles newest first.
	List(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorProfile, error)
}

// AppointmentRepository stores appointments. Create must reject a second
// active appointment for the same slot with ErrDuplicate.
type AppointmentRepository interface {
	Create(ctx context.Context, apt *models.Appointment) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	// ListByPatient and ListByDoctor order by date then time, latest first.
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	ListActiveByDoctorOnDate(ctx context.Context, doctorID, date string) ([]models.Appointment, error)
	// ListPendingOnOrBefore returns pending appointments dated on or before date.
	ListPendingOnOrBefore(ctx context.Context, date string) ([]models.Appointment, error)
	// UpdateStatus persists the status fields of apt only if the stored
	// status still equals from; otherwise it returns ErrStale.
	UpdateStatus(ctx context.Context, apt *models.Appointment, from models.AppointmentStatus) error
}
