package models

import (
	"time"
)

// Role enum
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"

	// RoleSystem is not an account role. It identifies automated actors,
	// such as the stale appointment sweep, when they cancel appointments.
	RoleSystem Role = "system"
)

// IsAccountRole reports whether r can be assigned to an account.
func (r Role) IsAccountRole() bool {
	return r == RolePatient || r == RoleDoctor
}

// Gender enum
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// User represents a patient or doctor account
type User struct {
	BaseModel
	Name        string     `gorm:"size:100;not null" json:"name"`
	Email       string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password    string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Role        Role       `gorm:"size:20;not null;index" json:"role"`
	Phone       string     `gorm:"size:20" json:"phone,omitempty"`
	Address     string     `gorm:"size:255" json:"address,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      Gender     `gorm:"size:10" json:"gender,omitempty"`
	IsActive    bool       `gorm:"not null;default:true" json:"isActive"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      Gender     `json:"gender,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Participant is the subset of an account echoed on appointments.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Phone:       u.Phone,
		Address:     u.Address,
		DateOfBirth: u.DateOfBirth,
		Gender:      u.Gender,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// AsParticipant returns the display fields used on appointments.
func (u *User) AsParticipant() *Participant {
	return &Participant{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
}

// AccountUpdate lists the account fields that may change after registration.
// Nil pointers are left untouched. Role and email are deliberately absent.
type AccountUpdate struct {
	Name        *string
	Phone       *string
	Address     *string
	DateOfBirth *time.Time
	Gender      *Gender
}

// Apply copies the non-nil fields onto u.
func (upd AccountUpdate) Apply(u *User) {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	if upd.DateOfBirth != nil {
		dob := *upd.DateOfBirth
		u.DateOfBirth = &dob
	}
	if upd.Gender != nil {
		u.Gender = *upd.Gender
	}
}
