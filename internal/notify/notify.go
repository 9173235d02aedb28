// Package notify tells appointment participants about bookings and status
// changes.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"healthcare-app-server/internal/config"
	"healthcare-app-server/internal/logger"
	"healthcare-app-server/internal/models"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends email through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a sender from the mailer configuration.
func NewSMTPSender(cfg config.MailerConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

// EmailNotifier emails the participants of an appointment.
type EmailNotifier struct {
	sender Sender
	log    *logrus.Entry
}

// NewEmailNotifier creates an EmailNotifier delivering through sender.
func NewEmailNotifier(sender Sender, log *logger.Logger) *EmailNotifier {
	return &EmailNotifier{sender: sender, log: log.WithComponent("notify")}
}

// AppointmentBooked emails the doctor about a new request and the patient
// a confirmation that it was received.
func (n *EmailNotifier) AppointmentBooked(_ context.Context, apt *models.Appointment) error {
	var errs []error
	if apt.Doctor != nil && apt.Doctor.Email != "" {
		line := fmt.Sprintf("%s has requested an appointment with you.", participantName(apt.Patient, "A patient"))
		errs = append(errs, n.send(apt.Doctor, "New appointment request", line, apt))
	}
	if apt.Patient != nil && apt.Patient.Email != "" {
		line := fmt.Sprintf("Your appointment request with %s has been received.", doctorName(apt.Doctor))
		errs = append(errs, n.send(apt.Patient, "Appointment request received", line, apt))
	}
	return errors.Join(errs...)
}

// AppointmentStatusChanged emails the participant who did not make the
// change. System cancellations go to both.
func (n *EmailNotifier) AppointmentStatusChanged(_ context.Context, apt *models.Appointment, from models.AppointmentStatus, actor models.Role) error {
	subject := fmt.Sprintf("Appointment %s", apt.Status)
	line := fmt.Sprintf("Your appointment status changed from %s to %s.", from, apt.Status)
	if from == "" {
		line = fmt.Sprintf("Your appointment is now %s.", apt.Status)
	}
	if apt.CancellationReason != "" && apt.Status == models.StatusCancelled {
		line += " Reason: " + apt.CancellationReason
	}

	var recipients []*models.Participant
	switch actor {
	case models.RolePatient:
		recipients = append(recipients, apt.Doctor)
	case models.RoleDoctor:
		recipients = append(recipients, apt.Patient)
	default:
		recipients = append(recipients, apt.Patient, apt.Doctor)
	}

	var errs []error
	for _, p := range recipients {
		if p == nil || p.Email == "" {
			continue
		}
		errs = append(errs, n.send(p, subject, line, apt))
	}
	err := errors.Join(errs...)
	if err == nil {
		n.log.WithFields(logrus.Fields{"appointment_id": apt.ID, "status": apt.Status}).Debug("Status notification sent")
	}
	return err
}

func (n *EmailNotifier) send(to *models.Participant, subject, line string, apt *models.Appointment) error {
	body, err := render(greeting(to.Name), line, apt)
	if err != nil {
		return err
	}
	if err := n.sender.Send(to.Email, subject, body); err != nil {
		return fmt.Errorf("send to %s: %w", to.Email, err)
	}
	return nil
}

// LogNotifier records notifications in the log instead of sending them.
type LogNotifier struct {
	log *logrus.Entry
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithComponent("notify")}
}

func (n *LogNotifier) AppointmentBooked(_ context.Context, apt *models.Appointment) error {
	n.log.WithFields(logrus.Fields{
		"appointment_id": apt.ID,
		"doctor_id":      apt.DoctorID,
		"patient_id":     apt.PatientID,
		"date":           apt.AppointmentDate,
		"time":           apt.AppointmentTime,
	}).Info("Appointment booked")
	return nil
}

func (n *LogNotifier) AppointmentStatusChanged(_ context.Context, apt *models.Appointment, from models.AppointmentStatus, actor models.Role) error {
	n.log.WithFields(logrus.Fields{
		"appointment_id": apt.ID,
		"from":           from,
		"to":             apt.Status,
		"actor":          actor,
	}).Info("Appointment status changed")
	return nil
}

var bodyTemplate = template.Must(template.New("appointment").Parse(`
		<p>{{.Greeting}}</p>
		<p>{{.Line}}</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Date:</strong> {{.Date}}</li>
			<li><strong>Time:</strong> {{.Time}}</li>
			<li><strong>Duration:</strong> {{.Duration}} minutes</li>
			<li><strong>Status:</strong> {{.Status}}</li>
		</ul>
		<p>Sehat Sathi</p>
	`))

// render builds the email body. Names and reasons come from users and are
// escaped by the template.
func render(greeting, line string, apt *models.Appointment) (string, error) {
	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		Greeting, Line, Date, Time string
		Duration                   int
		Status                     models.AppointmentStatus
	}{greeting, line, apt.AppointmentDate, apt.AppointmentTime, apt.Duration, apt.Status})
	if err != nil {
		return "", fmt.Errorf("render notification: %w", err)
	}
	return buf.String(), nil
}

func greeting(name string) string {
	if name == "" {
		return "Hello,"
	}
	return fmt.Sprintf("Dear %s,", name)
}

func participantName(p *models.Participant, fallback string) string {
	if p == nil || p.Name == "" {
		return fallback
	}
	return p.Name
}

func doctorName(p *models.Participant) string {
	if p == nil || p.Name == "" {
		return "your doctor"
	}
	return "Dr. " + p.Name
}
