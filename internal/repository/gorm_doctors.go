package repository

import (
	"context"
	"strings"

	"healthcare-app-server/internal/models"

	"gorm.io/gorm"
)

// GormDoctorRepository implements DoctorRepository on a gorm.DB.
type GormDoctorRepository struct {
	DB *gorm.DB
}

// NewGormDoctorRepository creates a new GormDoctorRepository.
func NewGormDoctorRepository(db *gorm.DB) *GormDoctorRepository {
	return &GormDoctorRepository{DB: db}
}

func (r *GormDoctorRepository) Create(ctx context.Context, profile *models.DoctorProfile) error {
	return translate(r.DB.WithContext(ctx).Create(profile).Error)
}

func (r *GormDoctorRepository) FindByID(ctx context.Context, id string) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	if err := r.DB.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *GormDoctorRepository) FindByUserID(ctx context.Context, userID string) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	if err := r.DB.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *GormDoctorRepository) Save(ctx context.Context, profile *models.DoctorProfile) error {
	return translate(r.DB.WithContext(ctx).Save(profile).Error)
}

func (r *GormDoctorRepository) List(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorProfile, error) {
	query := r.DB.WithContext(ctx).Order("created_at desc")
	if s := strings.TrimSpace(filter.Specialization); s != "" {
		query = query.Where("LOWER(specialization) LIKE ?", "%"+escapeLike(strings.ToLower(s))+"%")
	}

	var profiles []models.DoctorProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, translate(err)
	}
	return profiles, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var (
	_ DoctorRepository  = (*GormDoctorRepository)(nil)
	_ AccountRepository = (*GormAccountRepository)(nil)
)
