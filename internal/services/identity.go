package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"healthcare-app-server/internal/apperror"
	"healthcare-app-server/internal/logger"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/repository"
	"healthcare-app-server/internal/utils"

	"github.com/sirupsen/logrus"
)

// PasswordHasher hashes and verifies passwords. Compare returns a non-nil
// error when the password does not match.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// IdentityService owns accounts and doctor profiles.
type IdentityService struct {
	accounts repository.AccountRepository
	doctors  repository.DoctorRepository
	hasher   PasswordHasher
	log      *logrus.Entry
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(accounts repository.AccountRepository, doctors repository.DoctorRepository, hasher PasswordHasher, log *logger.Logger) *IdentityService {
	return &IdentityService{
		accounts: accounts,
		doctors:  doctors,
		hasher:   hasher,
		log:      log.WithComponent("identity"),
	}
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name        string     `json:"name" validate:"required,max=100"`
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=6,max=72"`
	Role        string     `json:"role" validate:"required,oneof=patient doctor"`
	Phone       string     `json:"phone" validate:"omitempty,max=20"`
	Address     string     `json:"address" validate:"omitempty,max=255"`
	DateOfBirth string     `json:"dateOfBirth"`
	Gender      string     `json:"gender" validate:"omitempty,oneof=male female other"`
}

// CreateAccount registers a new account and returns it. The stored password
// is hashed and never returned.
func (s *IdentityService) CreateAccount(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	if _, err := s.accounts.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperror.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal("Failed to look up account", err)
	}

	dob, err := parseDateOfBirth(in.DateOfBirth)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		// bcrypt limits input to 72 bytes, which multi-byte runes can exceed.
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, apperror.Wrap(apperror.KindValidation, "password cannot exceed 72 bytes", err)
		}
		return nil, apperror.Internal("Failed to hash password", err)
	}

	user := &models.User{
		Name:        in.Name,
		Email:       in.Email,
		Password:    hashed,
		Role:        models.Role(in.Role),
		Phone:       in.Phone,
		Address:     in.Address,
		DateOfBirth: dob,
		Gender:      models.Gender(in.Gender),
		IsActive:    true,
	}
	if err := s.accounts.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, apperror.Internal("Failed to create user", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("Account registered")
	return user, nil
}

// VerifyCredentials returns the account matching email and password.
func (s *IdentityService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperror.Validation("Email and password are required")
	}

	user, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Internal("Failed to look up account", err)
	}

	if err := s.hasher.Compare(user.Password, password); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountInactive
	}
	return user, nil
}

// FindAccountByID returns the account with id.
func (s *IdentityService) FindAccountByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "User not found")
		}
		return nil, apperror.Internal("Failed to look up account", err)
	}
	return user, nil
}

// AccountUpdateInput is the allow-listed set of mutable account fields.
type AccountUpdateInput struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Phone       *string    `json:"phone" validate:"omitempty,max=20"`
	Address     *string    `json:"address" validate:"omitempty,max=255"`
	DateOfBirth *string    `json:"dateOfBirth"`
	Gender      *string    `json:"gender" validate:"omitempty,oneof=male female other"`
}

// UpdateAccount applies the allow-listed fields to the account with id.
func (s *IdentityService) UpdateAccount(ctx context.Context, id string, in AccountUpdateInput) (*models.User, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	update := models.AccountUpdate{
		Name:    in.Name,
		Phone:   in.Phone,
		Address: in.Address,
	}
	if in.DateOfBirth != nil {
		dob, err := parseDateOfBirth(*in.DateOfBirth)
		if err != nil {
			return nil, err
		}
		update.DateOfBirth = dob
	}
	if in.Gender != nil {
		g := models.Gender(*in.Gender)
		update.Gender = &g
	}

	user, err := s.accounts.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "User not found")
		}
		return nil, apperror.Internal("Failed to update profile", err)
	}
	return user, nil
}

// SetAccountActive activates or deactivates the account with the given email.
func (s *IdentityService) SetAccountActive(ctx context.Context, email string, active bool) (*models.User, error) {
	user, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "User not found")
		}
		return nil, apperror.Internal("Failed to look up account", err)
	}
	if user.IsActive == active {
		return user, nil
	}
	if err := s.accounts.SetActive(ctx, user.ID, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "User not found")
		}
		return nil, apperror.Internal("Failed to update account status", err)
	}
	user.IsActive = active
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "active": active}).Info("Account status changed")
	return user, nil
}

// parseDateOfBirth accepts a calendar date ("1990-01-01") or an RFC 3339
// timestamp. An empty string means no date was given.
func parseDateOfBirth(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{models.DateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.Validation("dateOfBirth must be a date in YYYY-MM-DD format")
}
