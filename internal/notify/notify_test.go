package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"healthcare-app-server/internal/logger"
	"healthcare-app-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func bookedAppointment() *models.Appointment {
	apt := &models.Appointment{
		PatientID:       "p1",
		DoctorID:        "d1",
		AppointmentDate: "2030-01-15",
		AppointmentTime: "10:00",
		Duration:        30,
		Status:          models.StatusPending,
		Patient:         &models.Participant{ID: "p1", Name: "Asha", Email: "asha@example.com"},
		Doctor:          &models.Participant{ID: "d1", Name: "Rao", Email: "rao@example.com"},
	}
	apt.ID = "a1"
	return apt
}

func TestEmailNotifierBookedEmailsBothParticipants(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", "rao@example.com", "New appointment request", mock.MatchedBy(func(body string) bool {
		return containsAll(body, "Dear Rao,", "Asha has requested", "2030-01-15", "10:00")
	})).Return(nil).Once()
	sender.On("Send", "asha@example.com", "Appointment request received", mock.AnythingOfType("string")).Return(nil).Once()

	n := NewEmailNotifier(sender, logger.Discard())
	assert.NoError(t, n.AppointmentBooked(context.Background(), bookedAppointment()))
	sender.AssertExpectations(t)
}

func TestEmailNotifierStatusChangeSkipsActor(t *testing.T) {
	apt := bookedAppointment()
	apt.Status = models.StatusConfirmed

	sender := new(mockSender)
	sender.On("Send", "asha@example.com", "Appointment confirmed", mock.AnythingOfType("string")).Return(nil).Once()

	n := NewEmailNotifier(sender, logger.Discard())
	assert.NoError(t, n.AppointmentStatusChanged(context.Background(), apt, models.StatusPending, models.RoleDoctor))
	sender.AssertExpectations(t)
	sender.AssertNotCalled(t, "Send", "rao@example.com", mock.Anything, mock.Anything)
}

func TestEmailNotifierSystemCancellationEmailsBoth(t *testing.T) {
	apt := bookedAppointment()
	apt.Status = models.StatusCancelled
	apt.CancelledBy = models.RoleSystem
	apt.CancellationReason = "not confirmed"

	sender := new(mockSender)
	reasonInBody := mock.MatchedBy(func(body string) bool { return containsAll(body, "Reason: not confirmed") })
	sender.On("Send", "asha@example.com", "Appointment cancelled", reasonInBody).Return(nil).Once()
	sender.On("Send", "rao@example.com", "Appointment cancelled", reasonInBody).Return(errors.New("smtp down")).Once()

	n := NewEmailNotifier(sender, logger.Discard())
	err := n.AppointmentStatusChanged(context.Background(), apt, models.StatusPending, models.RoleSystem)
	assert.ErrorContains(t, err, "smtp down")
	sender.AssertExpectations(t)
}

func TestEmailNotifierEscapesUserInput(t *testing.T) {
	apt := bookedAppointment()
	apt.Status = models.StatusCancelled
	apt.CancelledBy = models.RolePatient
	apt.CancellationReason = `<a href="http://evil.example">reschedule here</a>`
	apt.Doctor.Name = "<b>Rao</b>"

	var body string
	sender := new(mockSender)
	sender.On("Send", "rao@example.com", "Appointment cancelled", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { body = args.String(2) }).
		Return(nil).Once()

	n := NewEmailNotifier(sender, logger.Discard())
	assert.NoError(t, n.AppointmentStatusChanged(context.Background(), apt, models.StatusConfirmed, models.RolePatient))
	sender.AssertExpectations(t)

	assert.NotContains(t, body, "<a href")
	assert.NotContains(t, body, "<b>Rao</b>")
	assert.Contains(t, body, "&lt;a href=&#34;http://evil.example&#34;&gt;reschedule here&lt;/a&gt;")
	assert.Contains(t, body, "Dear &lt;b&gt;Rao&lt;/b&gt;,")
}

func TestEmailNotifierKeepsSendErrors(t *testing.T) {
	errDown := errors.New("smtp down")
	errRefused := errors.New("mailbox refused")

	sender := new(mockSender)
	sender.On("Send", "rao@example.com", mock.Anything, mock.Anything).Return(errDown).Once()
	sender.On("Send", "asha@example.com", mock.Anything, mock.Anything).Return(errRefused).Once()

	n := NewEmailNotifier(sender, logger.Discard())
	err := n.AppointmentBooked(context.Background(), bookedAppointment())
	assert.ErrorIs(t, err, errDown)
	assert.ErrorIs(t, err, errRefused)
}

func TestEmailNotifierSkipsMissingAddresses(t *testing.T) {
	apt := bookedAppointment()
	apt.Patient = nil
	apt.Doctor.Email = ""

	sender := new(mockSender)
	n := NewEmailNotifier(sender, logger.Discard())
	assert.NoError(t, n.AppointmentBooked(context.Background(), apt))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(logger.Discard())
	apt := bookedAppointment()
	assert.NoError(t, n.AppointmentBooked(context.Background(), apt))
	assert.NoError(t, n.AppointmentStatusChanged(context.Background(), apt, models.StatusPending, models.RolePatient))
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
