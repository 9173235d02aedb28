package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ParseAppointmentStatus returns the status named by s.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch status := AppointmentStatus(s); status {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return status, true
	}
	return "", false
}

// IsActive reports whether the status holds its slot.
func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transitions are allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

const (
	DefaultDurationMinutes = 30
	MinDurationMinutes     = 15

	DateLayout = "2006-01-02"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	if !clockPattern.MatchString(s) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	hours, _ := strconv.Atoi(s[:2])
	minutes, _ := strconv.Atoi(s[3:])
	return hours*60 + minutes, nil
}

// FormatClock converts minutes since midnight into "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SlotStart combines a calendar date and an "HH:MM" time in loc.
func SlotStart(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}

// SlotKey identifies a (doctor, date, time) slot.
func SlotKey(doctorID, date, clock string) string {
	return doctorID + "|" + date + "|" + clock
}

// Appointment represents a scheduled consultation between a patient and a doctor
type Appointment struct {
	BaseModel
	PatientID          string            `gorm:"size:36;not null;index:idx_patient_date,priority:1" json:"patientId"`
	DoctorID           string            `gorm:"size:36;not null;index:idx_doctor_date,priority:1" json:"doctorId"`
	AppointmentDate    string            `gorm:"size:10;not null;index:idx_patient_date,priority:2;index:idx_doctor_date,priority:2" json:"appointmentDate"`
	AppointmentTime    string            `gorm:"size:5;not null" json:"appointmentTime"`
	Duration           int               `gorm:"not null;default:30" json:"duration"`
	Status             AppointmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Reason             string            `gorm:"size:500" json:"reason,omitempty"`
	Notes              string            `gorm:"type:text" json:"notes,omitempty"`
	CancelledBy        Role              `gorm:"size:20" json:"cancelledBy,omitempty"`
	CancellationReason string            `gorm:"type:text" json:"cancellationReason,omitempty"`

	// SlotKey is set while the appointment is active and NULL otherwise, so the
	// unique index admits at most one active booking per slot.
	SlotKey *string `gorm:"size:100;uniqueIndex" json:"-"`

	Patient *Participant `gorm:"-" json:"patient,omitempty"`
	Doctor  *Participant `gorm:"-" json:"doctor,omitempty"`
}

// SyncSlotKey sets or clears SlotKey according to the current status.
func (a *Appointment) SyncSlotKey() {
	if a.Status.IsActive() {
		key := SlotKey(a.DoctorID, a.AppointmentDate, a.AppointmentTime)
		a.SlotKey = &key
		return
	}
	a.SlotKey = nil
}

// StartsAt returns the slot start in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return SlotStart(a.AppointmentDate, a.AppointmentTime, loc)
}
