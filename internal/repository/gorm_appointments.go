package repository

import (
	"context"

	"healthcare-app-server/internal/models"

	"gorm.io/gorm"
)

const latestFirst = "appointment_date desc, appointment_time desc"

// GormAppointmentRepository implements AppointmentRepository on a gorm.DB.
// Slot uniqueness relies on the unique index over slot_key.
type GormAppointmentRepository struct {
	DB *gorm.DB
}

// NewGormAppointmentRepository creates a new GormAppointmentRepository.
func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{DB: db}
}

func (r *GormAppointmentRepository) Create(ctx context.Context, apt *models.Appointment) error {
	apt.SyncSlotKey()
	return translate(r.DB.WithContext(ctx).Create(apt).Error)
}

func (r *GormAppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var apt models.Appointment
	if err := r.DB.WithContext(ctx).First(&apt, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &apt, nil
}

func (r *GormAppointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return r.find(ctx, r.DB.Where("patient_id = ?", patientID).Order(latestFirst))
}

func (r *GormAppointmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return r.find(ctx, r.DB.Where("doctor_id = ?", doctorID).Order(latestFirst))
}

func (r *GormAppointmentRepository) ListActiveByDoctorOnDate(ctx context.Context, doctorID, date string) ([]models.Appointment, error) {
	return r.find(ctx, r.DB.
		Where("doctor_id = ? AND appointment_date = ? AND status IN ?", doctorID, date,
			[]models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
		Order("appointment_time asc"))
}

func (r *GormAppointmentRepository) ListPendingOnOrBefore(ctx context.Context, date string) ([]models.Appointment, error) {
	return r.find(ctx, r.DB.
		Where("status = ? AND appointment_date <= ?", models.StatusPending, date).
		Order("appointment_date asc, appointment_time asc"))
}

func (r *GormAppointmentRepository) UpdateStatus(ctx context.Context, apt *models.Appointment, from models.AppointmentStatus) error {
	apt.SyncSlotKey()
	apt.UpdatedAt = r.DB.NowFunc()
	result := r.DB.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status = ?", apt.ID, from).
		Updates(map[string]interface{}{
			"status":              apt.Status,
			"cancelled_by":        apt.CancelledBy,
			"cancellation_reason": apt.CancellationReason,
			"slot_key":            apt.SlotKey,
			"updated_at":          apt.UpdatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *GormAppointmentRepository) find(ctx context.Context, query *gorm.DB) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := query.WithContext(ctx).Find(&appointments).Error; err != nil {
		return nil, translate(err)
	}
	return appointments, nil
}

var _ AppointmentRepository = (*GormAppointmentRepository)(nil)
