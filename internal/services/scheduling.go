package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthcare-app-server/internal/apperror"
	"healthcare-app-server/internal/logger"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/repository"
	"healthcare-app-server/internal/utils"

	"github.com/sirupsen/logrus"
)

// StaleCancellationReason is recorded when the sweep cancels an appointment
// that was still pending at its start time.
const StaleCancellationReason = "Appointment was not confirmed before its scheduled time"

// Notifier is told about appointment changes. Errors are logged and never
// fail the operation that triggered them.
type Notifier interface {
	AppointmentBooked(ctx context.Context, apt *models.Appointment) error
	AppointmentStatusChanged(ctx context.Context, apt *models.Appointment, from models.AppointmentStatus, actor models.Role) error
}

// SchedulingOptions configures a SchedulingService. Zero values use the
// wall clock, the local timezone and no notifications.
type SchedulingOptions struct {
	Now      func() time.Time
	Location *time.Location
	Notifier Notifier
}

// SchedulingService books appointments and drives their status.
type SchedulingService struct {
	accounts     repository.AccountRepository
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	notifier     Notifier
	log          *logger.Logger
	now          func() time.Time
	loc          *time.Location
}

// NewSchedulingService creates a new SchedulingService.
func NewSchedulingService(
	accounts repository.AccountRepository,
	doctors repository.DoctorRepository,
	appointments repository.AppointmentRepository,
	log *logger.Logger,
	opts SchedulingOptions,
) *SchedulingService {
	s := &SchedulingService{
		accounts:     accounts,
		doctors:      doctors,
		appointments: appointments,
		notifier:     opts.Notifier,
		log:          log,
		now:          opts.Now,
		loc:          opts.Location,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// BookingInput carries a booking request. PatientID comes from the
// authenticated caller, never from the request body.
type BookingInput struct {
	PatientID       string `json:"-" validate:"required"`
	DoctorID        string `json:"doctorId" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointmentTime" validate:"required,clock"`
	Duration        *int   `json:"duration" validate:"omitempty,min=15,max=480"`
	Reason          string `json:"reason" validate:"omitempty,max=500"`
	Notes           string `json:"notes" validate:"omitempty,max=5000"`
}

// BookAppointment creates a pending appointment for the slot.
func (s *SchedulingService) BookAppointment(ctx context.Context, in BookingInput) (*models.Appointment, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	patient, err := s.participant(ctx, in.PatientID, models.RolePatient)
	if err != nil {
		return nil, err
	}
	doctor, err := s.participant(ctx, in.DoctorID, models.RoleDoctor)
	if err != nil {
		return nil, err
	}

	start, err := models.SlotStart(in.AppointmentDate, in.AppointmentTime, s.loc)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if start.Before(s.now()) {
		return nil, apperror.ErrPastDate
	}

	duration := models.DefaultDurationMinutes
	if in.Duration != nil {
		duration = *in.Duration
	}

	apt := &models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: in.AppointmentDate,
		AppointmentTime: in.AppointmentTime,
		Duration:        duration,
		Status:          models.StatusPending,
		Reason:          in.Reason,
		Notes:           in.Notes,
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.Audit(patient.ID, "appointment.book", "doctor/"+doctor.ID, false, logrus.Fields{
				"date": in.AppointmentDate, "time": in.AppointmentTime, "reason": "slot_taken",
			})
			return nil, apperror.ErrSlotAlreadyBooked
		}
		return nil, apperror.Internal("Failed to create appointment", err)
	}

	apt.Patient = patient.AsParticipant()
	apt.Doctor = doctor.AsParticipant()

	s.log.Audit(patient.ID, "appointment.book", "appointment/"+apt.ID, true, logrus.Fields{
		"doctor_id": doctor.ID, "date": apt.AppointmentDate, "time": apt.AppointmentTime,
	})
	s.notify(func() error { return s.notifier.AppointmentBooked(ctx, apt) }, apt.ID)
	return apt, nil
}

// ListByPatient returns the patient's appointments, latest first.
func (s *SchedulingService) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	appointments, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch appointments", err)
	}
	return s.enrich(ctx, appointments)
}

// ListByDoctor returns the doctor's appointments, latest first.
func (s *SchedulingService) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	appointments, err := s.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch appointments", err)
	}
	return s.enrich(ctx, appointments)
}

// GetByID returns an appointment with participant details.
func (s *SchedulingService) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	apt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrAppointmentNotFound
		}
		return nil, apperror.Internal("Failed to fetch appointment", err)
	}
	enriched, err := s.enrich(ctx, []models.Appointment{*apt})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// StatusUpdateInput carries a status transition request.
type StatusUpdateInput struct {
	AppointmentID      string
	Status             string
	CallerID           string
	CallerRole         models.Role
	CancellationReason string
}

// UpdateStatus moves an appointment along pending → confirmed → completed,
// or to cancelled from either active status. Only the appointment's own
// patient or doctor may do so; the system actor may only cancel.
func (s *SchedulingService) UpdateStatus(ctx context.Context, in StatusUpdateInput) (*models.Appointment, error) {
	apt, err := s.appointments.FindByID(ctx, in.AppointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrAppointmentNotFound
		}
		return nil, apperror.Internal("Failed to fetch appointment", err)
	}

	if in.CallerRole == models.RoleSystem {
		if in.Status != string(models.StatusCancelled) {
			return nil, apperror.Forbidden("The system may only cancel appointments")
		}
	} else if err := RequireParticipant(in.CallerID, in.CallerRole, apt); err != nil {
		return nil, apperror.Forbidden("Unauthorized to update this appointment")
	}

	next, ok := models.ParseAppointmentStatus(strings.TrimSpace(in.Status))
	if !ok {
		return nil, apperror.Validation("status must be one of: pending, confirmed, completed, cancelled")
	}

	from := apt.Status
	if err := s.transition(ctx, apt, next, in.CallerRole, strings.TrimSpace(in.CancellationReason)); err != nil {
		return nil, err
	}

	actor := in.CallerID
	if actor == "" {
		actor = string(in.CallerRole)
	}
	s.log.Audit(actor, "appointment.status", "appointment/"+apt.ID, true, logrus.Fields{
		"status": apt.Status, "role": in.CallerRole,
	})

	enriched, err := s.enrich(ctx, []models.Appointment{*apt})
	if err != nil {
		return nil, err
	}
	result := &enriched[0]
	s.notify(func() error { return s.notifier.AppointmentStatusChanged(ctx, result, from, in.CallerRole) }, apt.ID)
	return result, nil
}

// transition applies next to apt and persists it conditionally on the
// status apt was read with.
func (s *SchedulingService) transition(ctx context.Context, apt *models.Appointment, next models.AppointmentStatus, actor models.Role, cancellationReason string) error {
	from := apt.Status
	if !from.CanTransitionTo(next) {
		return apperror.New(apperror.KindIllegalTransition,
			fmt.Sprintf("Cannot change appointment status from %s to %s", from, next))
	}

	apt.Status = next
	if next == models.StatusCancelled {
		apt.CancelledBy = actor
		if cancellationReason != "" {
			apt.CancellationReason = cancellationReason
		}
	}

	if err := s.appointments.UpdateStatus(ctx, apt, from); err != nil {
		apt.Status = from
		switch {
		case errors.Is(err, repository.ErrStale):
			return apperror.New(apperror.KindIllegalTransition,
				"Appointment was changed by someone else, reload and try again")
		case errors.Is(err, repository.ErrDuplicate):
			return apperror.ErrSlotAlreadyBooked
		}
		return apperror.Internal("Failed to update appointment status", err)
	}
	return nil
}

// TimeSlot is a bookable interval on a doctor's day.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DaySchedule lists the free slots of a doctor on a date.
type DaySchedule struct {
	DoctorID        string     `json:"doctorId"`
	ProfileID       string     `json:"profileId"`
	Date            string     `json:"date"`
	SlotMinutes     int        `json:"slotMinutes"`
	WorkingDay      bool       `json:"workingDay"`
	AvailableSlots  []TimeSlot `json:"availableSlots"`
	BookedSlotCount int        `json:"bookedSlotCount"`
}

// AvailableSlots returns the free default-length slots inside the doctor's
// working hours on date, excluding active bookings and slots already past.
func (s *SchedulingService) AvailableSlots(ctx context.Context, profileID, date string) (*DaySchedule, error) {
	day, err := time.ParseInLocation(models.DateLayout, date, s.loc)
	if err != nil {
		return nil, apperror.Validation("date must be a date in YYYY-MM-DD format")
	}

	profile, err := s.doctors.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrDoctorNotFound
		}
		return nil, apperror.Internal("Failed to look up doctor profile", err)
	}

	schedule := &DaySchedule{
		DoctorID:       profile.UserID,
		ProfileID:      profile.ID,
		Date:           date,
		SlotMinutes:    models.DefaultDurationMinutes,
		WorkingDay:     profile.Availability.On(day.Weekday()),
		AvailableSlots: []TimeSlot{},
	}
	if !schedule.WorkingDay {
		return schedule, nil
	}

	opens, closes, err := profile.WorkingHours.Bounds()
	if err != nil {
		return nil, apperror.Internal("Doctor working hours are invalid", err)
	}

	booked, err := s.appointments.ListActiveByDoctorOnDate(ctx, profile.UserID, date)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch appointments", err)
	}
	schedule.BookedSlotCount = len(booked)

	type interval struct{ start, end int }
	busy := make([]interval, 0, len(booked))
	for _, apt := range booked {
		start, err := models.ParseClock(apt.AppointmentTime)
		if err != nil {
			continue
		}
		busy = append(busy, interval{start, start + apt.Duration})
	}

	now := s.now().In(s.loc)
	step := models.DefaultDurationMinutes
	for start := opens; start+step <= closes; start += step {
		end := start + step
		slotStart := time.Date(day.Year(), day.Month(), day.Day(), start/60, start%60, 0, 0, s.loc)
		if slotStart.Before(now) {
			continue
		}
		free := true
		for _, b := range busy {
			if start < b.end && end > b.start {
				free = false
				break
			}
		}
		if free {
			schedule.AvailableSlots = append(schedule.AvailableSlots, TimeSlot{
				Start: models.FormatClock(start),
				End:   models.FormatClock(end),
			})
		}
	}
	return schedule, nil
}

// CancelStalePending cancels pending appointments whose start time has
// passed, on behalf of the system. It returns how many were cancelled.
func (s *SchedulingService) CancelStalePending(ctx context.Context) (int, error) {
	now := s.now().In(s.loc)
	pending, err := s.appointments.ListPendingOnOrBefore(ctx, now.Format(models.DateLayout))
	if err != nil {
		return 0, apperror.Internal("Failed to fetch pending appointments", err)
	}

	cancelled := 0
	for i := range pending {
		apt := &pending[i]
		start, err := apt.StartsAt(s.loc)
		if err != nil || !start.Before(now) {
			continue
		}
		if err := s.transition(ctx, apt, models.StatusCancelled, models.RoleSystem, StaleCancellationReason); err != nil {
			if apperror.KindOf(err) == apperror.KindIllegalTransition {
				continue
			}
			return cancelled, err
		}
		cancelled++
		s.log.Audit(string(models.RoleSystem), "appointment.status", "appointment/"+apt.ID, true, logrus.Fields{
			"status": apt.Status, "role": models.RoleSystem,
		})

		enriched, err := s.enrich(ctx, []models.Appointment{*apt})
		if err == nil {
			result := &enriched[0]
			s.notify(func() error {
				return s.notifier.AppointmentStatusChanged(ctx, result, models.StatusPending, models.RoleSystem)
			}, apt.ID)
		}
	}
	return cancelled, nil
}

// participant loads an active account of the given role.
func (s *SchedulingService) participant(ctx context.Context, id string, role models.Role) (*models.User, error) {
	notFound := apperror.ErrPatientNotFound
	if role == models.RoleDoctor {
		notFound = apperror.ErrDoctorNotFound
	}

	user, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound
		}
		return nil, apperror.Internal("Failed to look up account", err)
	}
	if user.Role != role || !user.IsActive {
		return nil, notFound
	}
	return user, nil
}

// enrich attaches patient and doctor display fields.
func (s *SchedulingService) enrich(ctx context.Context, appointments []models.Appointment) ([]models.Appointment, error) {
	if len(appointments) == 0 {
		return appointments, nil
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0, 2*len(appointments))
	for _, apt := range appointments {
		for _, id := range []string{apt.PatientID, apt.DoctorID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	users, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to load appointment participants", err)
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for i := range appointments {
		if u, ok := byID[appointments[i].PatientID]; ok {
			appointments[i].Patient = u.AsParticipant()
		}
		if u, ok := byID[appointments[i].DoctorID]; ok {
			appointments[i].Doctor = u.AsParticipant()
		}
	}
	return appointments, nil
}

func (s *SchedulingService) notify(send func() error, appointmentID string) {
	if s.notifier == nil {
		return
	}
	if err := send(); err != nil {
		s.log.WithComponent("scheduling").WithError(err).
			WithField("appointment_id", appointmentID).Warn("Failed to send appointment notification")
	}
}
