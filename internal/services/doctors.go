package services

import (
	"context"
	"errors"
	"strings"

	"healthcare-app-server/internal/apperror"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/repository"
	"healthcare-app-server/internal/utils"

	"github.com/sirupsen/logrus"
)

// AvailabilityInput mirrors models.Availability with optional flags.
type AvailabilityInput struct {
	Monday    *bool `json:"monday"`
	Tuesday   *bool `json:"tuesday"`
	Wednesday *bool `json:"wednesday"`
	Thursday  *bool `json:"thursday"`
	Friday    *bool `json:"friday"`
	Saturday  *bool `json:"saturday"`
	Sunday    *bool `json:"sunday"`
}

func (in *AvailabilityInput) applyTo(a *models.Availability) {
	if in == nil {
		return
	}
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&a.Monday, in.Monday)
	set(&a.Tuesday, in.Tuesday)
	set(&a.Wednesday, in.Wednesday)
	set(&a.Thursday, in.Thursday)
	set(&a.Friday, in.Friday)
	set(&a.Saturday, in.Saturday)
	set(&a.Sunday, in.Sunday)
}

// WorkingHoursInput carries an optional working-hours window.
type WorkingHoursInput struct {
	Start *string `json:"start" validate:"omitempty,clock"`
	End   *string `json:"end" validate:"omitempty,clock"`
}

// DoctorProfileInput carries the fields of a new doctor profile.
type DoctorProfileInput struct {
	Specialization  string             `json:"specialization" validate:"required,max=100"`
	Qualification   string             `json:"qualification" validate:"required,max=255"`
	Experience      *int               `json:"experience" validate:"required,gte=0"`
	ConsultationFee *float64           `json:"consultationFee" validate:"required,gte=0"`
	Bio             string             `json:"bio" validate:"omitempty,max=1000"`
	Availability    *AvailabilityInput `json:"availability"`
	WorkingHours    *WorkingHoursInput `json:"workingHours"`
}

// DoctorProfileUpdate carries the optional fields of a profile update.
// Rating, review count and verification are not doctor-editable.
type DoctorProfileUpdate struct {
	Specialization  *string            `json:"specialization" validate:"omitempty,min=1,max=100"`
	Qualification   *string            `json:"qualification" validate:"omitempty,min=1,max=255"`
	Experience      *int               `json:"experience" validate:"omitempty,gte=0"`
	ConsultationFee *float64           `json:"consultationFee" validate:"omitempty,gte=0"`
	Bio             *string            `json:"bio" validate:"omitempty,max=1000"`
	Availability    *AvailabilityInput `json:"availability"`
	WorkingHours    *WorkingHoursInput `json:"workingHours"`
}

// CreateDoctorProfile creates the single profile of a doctor account.
func (s *IdentityService) CreateDoctorProfile(ctx context.Context, userID string, in DoctorProfileInput) (*models.DoctorProfile, error) {
	in.Specialization = strings.TrimSpace(in.Specialization)
	in.Qualification = strings.TrimSpace(in.Qualification)
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.FindAccountByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleDoctor {
		return nil, apperror.Validation("User is not a doctor")
	}

	profile := &models.DoctorProfile{
		UserID:          userID,
		Specialization:  in.Specialization,
		Qualification:   in.Qualification,
		Experience:      *in.Experience,
		ConsultationFee: *in.ConsultationFee,
		Bio:             strings.TrimSpace(in.Bio),
		Availability:    models.DefaultAvailability(),
		WorkingHours:    models.DefaultWorkingHours(),
	}
	in.Availability.applyTo(&profile.Availability)
	if err := applyWorkingHours(&profile.WorkingHours, in.WorkingHours); err != nil {
		return nil, err
	}

	if err := s.doctors.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.ErrDuplicateProfile
		}
		return nil, apperror.Internal("Failed to create doctor profile", err)
	}

	sanitized := user.Sanitize()
	profile.User = &sanitized
	s.log.WithFields(logrus.Fields{"user_id": userID, "profile_id": profile.ID}).Info("Doctor profile created")
	return profile, nil
}

// GetDoctorProfile returns the profile owned by the doctor account userID.
func (s *IdentityService) GetDoctorProfile(ctx context.Context, userID string) (*models.DoctorProfile, error) {
	profile, err := s.doctors.FindByUserID(ctx, userID)
	if err != nil {
		return nil, doctorLookupError(err)
	}
	return s.attachAccount(ctx, profile)
}

// GetDoctorProfileByID returns a profile by its own id.
func (s *IdentityService) GetDoctorProfileByID(ctx context.Context, id string) (*models.DoctorProfile, error) {
	profile, err := s.doctors.FindByID(ctx, id)
	if err != nil {
		return nil, doctorLookupError(err)
	}
	return s.attachAccount(ctx, profile)
}

// UpdateDoctorProfile applies in to the profile owned by userID.
func (s *IdentityService) UpdateDoctorProfile(ctx context.Context, userID string, in DoctorProfileUpdate) (*models.DoctorProfile, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	profile, err := s.doctors.FindByUserID(ctx, userID)
	if err != nil {
		return nil, doctorLookupError(err)
	}

	if in.Specialization != nil {
		profile.Specialization = strings.TrimSpace(*in.Specialization)
	}
	if in.Qualification != nil {
		profile.Qualification = strings.TrimSpace(*in.Qualification)
	}
	if in.Experience != nil {
		profile.Experience = *in.Experience
	}
	if in.ConsultationFee != nil {
		profile.ConsultationFee = *in.ConsultationFee
	}
	if in.Bio != nil {
		profile.Bio = strings.TrimSpace(*in.Bio)
	}
	in.Availability.applyTo(&profile.Availability)
	if err := applyWorkingHours(&profile.WorkingHours, in.WorkingHours); err != nil {
		return nil, err
	}

	if err := s.doctors.Save(ctx, profile); err != nil {
		return nil, apperror.Internal("Failed to update doctor profile", err)
	}
	return s.attachAccount(ctx, profile)
}

// ListDoctors returns doctor profiles, newest first, with their accounts.
func (s *IdentityService) ListDoctors(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorProfile, error) {
	profiles, err := s.doctors.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("Failed to list doctors", err)
	}

	ids := make([]string, len(profiles))
	for i := range profiles {
		ids[i] = profiles[i].UserID
	}
	users, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to load doctor accounts", err)
	}
	byID := make(map[string]models.UserSanitized, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].Sanitize()
	}

	for i := range profiles {
		if u, ok := byID[profiles[i].UserID]; ok {
			profiles[i].User = &u
		}
	}
	return profiles, nil
}

func (s *IdentityService) attachAccount(ctx context.Context, profile *models.DoctorProfile) (*models.DoctorProfile, error) {
	user, err := s.accounts.FindByID(ctx, profile.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal("Failed to load doctor account", err)
	}
	if user != nil {
		sanitized := user.Sanitize()
		profile.User = &sanitized
	}
	return profile, nil
}

func applyWorkingHours(dst *models.WorkingHours, in *WorkingHoursInput) error {
	if in == nil {
		return nil
	}
	next := *dst
	if in.Start != nil {
		next.Start = *in.Start
	}
	if in.End != nil {
		next.End = *in.End
	}
	if _, _, err := next.Bounds(); err != nil {
		return apperror.Validation("Working hours end must be after start")
	}
	*dst = next
	return nil
}

func doctorLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.New(apperror.KindNotFound, "Doctor profile not found")
	}
	return apperror.Internal("Failed to look up doctor profile", err)
}
