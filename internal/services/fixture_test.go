package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"healthcare-app-server/internal/logger"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/repository/memory"
	"healthcare-app-server/internal/utils"

	"github.com/stretchr/testify/require"
)

// plainHasher avoids bcrypt cost in service tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Monday 14 January 2030, 08:00 UTC.
var testStart = time.Date(2030, time.January, 14, 8, 0, 0, 0, time.UTC)

type fixture struct {
	ctx          context.Context
	clock        *testClock
	accounts     *memory.AccountRepository
	doctors      *memory.DoctorRepository
	appointments *memory.AppointmentRepository
	revocations  *MemoryRevocationStore
	identity     *IdentityService
	credentials  *CredentialService
	guard        *Guard
	scheduling   *SchedulingService
}

func newFixture(t *testing.T, notifier Notifier) *fixture {
	t.Helper()

	clock := &testClock{now: testStart}
	log := logger.Discard()

	f := &fixture{
		ctx:          context.Background(),
		clock:        clock,
		accounts:     memory.NewAccountRepository(),
		doctors:      memory.NewDoctorRepository(),
		appointments: memory.NewAppointmentRepository(),
		revocations:  NewMemoryRevocationStore(clock.Now),
	}
	f.identity = NewIdentityService(f.accounts, f.doctors, plainHasher{}, log)
	signer := utils.NewJWTSignerWithClock("test-secret", clock.Now)
	f.credentials = NewCredentialService(signer, f.revocations, time.Hour, clock.Now)
	f.guard = NewGuard(f.credentials, f.accounts)
	f.scheduling = NewSchedulingService(f.accounts, f.doctors, f.appointments, log, SchedulingOptions{
		Now:      clock.Now,
		Location: time.UTC,
		Notifier: notifier,
	})
	return f
}

func (f *fixture) register(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	user, err := f.identity.CreateAccount(f.ctx, RegisterInput{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "secret123",
		Role:     string(role),
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) doctorWithProfile(t *testing.T, name string) (*models.User, *models.DoctorProfile) {
	t.Helper()
	doctor := f.register(t, name, models.RoleDoctor)
	experience, fee := 5, 500.0
	profile, err := f.identity.CreateDoctorProfile(f.ctx, doctor.ID, DoctorProfileInput{
		Specialization:  "Cardiology",
		Qualification:   "MBBS, MD",
		Experience:      &experience,
		ConsultationFee: &fee,
	})
	require.NoError(t, err)
	return doctor, profile
}

func (f *fixture) book(patientID, doctorID, date, clock string) (*models.Appointment, error) {
	return f.scheduling.BookAppointment(f.ctx, BookingInput{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: date,
		AppointmentTime: clock,
		Reason:          "Checkup",
	})
}
