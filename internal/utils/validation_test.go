package utils

import (
	"testing"

	"healthcare-app-server/internal/apperror"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=patient doctor"`
	Time     string `json:"time" validate:"omitempty,clock"`
	Fee      int    `json:"fee" validate:"gte=0"`
}

func TestValidateMessages(t *testing.T) {
	tests := []struct {
		name  string
		input sample
		want  string
	}{
		{"short password", sample{Email: "a@b.co", Password: "12345", Role: "patient"}, "password must be at least 6 characters long"},
		{"bad email", sample{Email: "nope", Password: "123456", Role: "patient"}, "Please provide a valid email address"},
		{"bad role", sample{Email: "a@b.co", Password: "123456", Role: "admin"}, "role must be one of: patient, doctor"},
		{"missing email", sample{Password: "123456", Role: "doctor"}, "email is required"},
		{"bad clock", sample{Email: "a@b.co", Password: "123456", Role: "doctor", Time: "25:00"}, "time must be a time in HH:MM format"},
		{"negative fee", sample{Email: "a@b.co", Password: "123456", Role: "doctor", Fee: -1}, "fee cannot be less than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.want, apperror.MessageOf(err))
		})
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, Validate(sample{Email: "a@b.co", Password: "123456", Role: "doctor", Time: "09:30"}))
}
