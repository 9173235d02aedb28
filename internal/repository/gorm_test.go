package repository

import (
	"context"
	"database/sql/driver"
	"testing"

	"healthcare-app-server/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	mysqlerr "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB opens gorm on a sqlmock connection with the same error
// translation the service uses.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

// nullArg matches a NULL bound parameter.
type nullArg struct{}

func (nullArg) Match(v driver.Value) bool { return v == nil }

// textArg matches a string bound parameter.
type textArg string

func (a textArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s == string(a)
}

func duplicateEntry() error {
	return &mysqlerr.MySQLError{Number: 1062, Message: "Duplicate entry for key 'idx_appointments_slot_key'"}
}

func pendingAppointment() *models.Appointment {
	apt := &models.Appointment{
		PatientID:       "patient-1",
		DoctorID:        "doctor-1",
		AppointmentDate: "2030-01-15",
		AppointmentTime: "10:00",
		Duration:        30,
		Status:          models.StatusPending,
	}
	apt.ID = "apt-1"
	return apt
}

func TestGormAppointmentCreateSetsSlotKey(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `appointments`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	apt := pendingAppointment()
	require.NoError(t, repo.Create(context.Background(), apt))
	require.NotNil(t, apt.SlotKey)
	assert.Equal(t, "doctor-1|2030-01-15|10:00", *apt.SlotKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAppointmentCreateDuplicateSlot(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `appointments`").WillReturnError(duplicateEntry())
	mock.ExpectRollback()

	err := repo.Create(context.Background(), pendingAppointment())
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAppointmentUpdateStatusClearsSlotKeyOnCancel(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormAppointmentRepository(db)

	apt := pendingAppointment()
	apt.Status = models.StatusCancelled
	apt.CancelledBy = models.RolePatient
	apt.CancellationReason = "travelling"

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `appointments` SET .* WHERE id = \\? AND status = \\?").
		WithArgs(
			textArg("travelling"), // cancellation_reason
			textArg("patient"),    // cancelled_by
			nullArg{},             // slot_key
			textArg("cancelled"),  // status
			sqlmock.AnyArg(),      // updated_at
			textArg("apt-1"),
			textArg("pending"),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateStatus(context.Background(), apt, models.StatusPending))
	assert.Nil(t, apt.SlotKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAppointmentUpdateStatusKeepsSlotKeyWhileActive(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormAppointmentRepository(db)

	apt := pendingAppointment()
	apt.Status = models.StatusConfirmed

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `appointments` SET").
		WithArgs(
			textArg(""),
			textArg(""),
			textArg("doctor-1|2030-01-15|10:00"),
			textArg("confirmed"),
			sqlmock.AnyArg(),
			textArg("apt-1"),
			textArg("pending"),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateStatus(context.Background(), apt, models.StatusPending))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAppointmentUpdateStatusStale(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormAppointmentRepository(db)

	apt := pendingAppointment()
	apt.Status = models.StatusConfirmed

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `appointments` SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), apt, models.StatusPending)
	assert.ErrorIs(t, err, ErrStale)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAppointmentUpdateStatusTranslatesDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormAppointmentRepository(db)

	apt := pendingAppointment()
	apt.Status = models.StatusConfirmed

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `appointments` SET").WillReturnError(duplicateEntry())
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), apt, models.StatusPending)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAppointmentFindByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormAppointmentRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `appointments` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAccountCreateDuplicateEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormAccountRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnError(duplicateEntry())
	mock.ExpectRollback()

	user := &models.User{Name: "Asha", Email: " Asha@Example.com ", Password: "x", Role: models.RolePatient}
	err := repo.Create(context.Background(), user)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAccountSetActive(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		count    int64
		wantErr  error
	}{
		{name: "changed", affected: 1},
		{name: "already in state", affected: 0, count: 1},
		{name: "missing", affected: 0, count: 0, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewGormAccountRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec("UPDATE `users` SET `is_active`=\\?").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectCommit()
			if tt.affected == 0 {
				mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE id = \\?").
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))
			}

			err := repo.SetActive(context.Background(), "user-1", false)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormDoctorListEscapesFilter(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormDoctorRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `doctor_profiles` WHERE LOWER\\(specialization\\) LIKE \\? ORDER BY created_at desc").
		WithArgs(`%100\%\_care%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "specialization"}).
			AddRow("p1", "doctor-1", "100%_care"))

	profiles, err := repo.List(context.Background(), models.DoctorFilter{Specialization: " 100%_Care "})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "doctor-1", profiles[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDoctorCreateDuplicateProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormDoctorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `doctor_profiles`").WillReturnError(duplicateEntry())
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.DoctorProfile{UserID: "doctor-1", Specialization: "Cardiology"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
