package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"healthcare-app-server/internal/apperror"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/repository"
	"healthcare-app-server/internal/utils"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	AccountID string
	Role      models.Role
	Claims    *utils.Claims
}

// Guard authenticates bearer tokens and answers role and ownership checks.
type Guard struct {
	credentials *CredentialService
	accounts    repository.AccountRepository
}

// NewGuard creates a new Guard.
func NewGuard(credentials *CredentialService, accounts repository.AccountRepository) *Guard {
	return &Guard{credentials: credentials, accounts: accounts}
}

// Authenticate verifies token and re-reads the account so deactivated
// accounts are rejected even while their tokens are unexpired.
func (g *Guard) Authenticate(ctx context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.New(apperror.KindUnauthenticated, "No token provided, authorization denied")
	}

	claims, err := g.credentials.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}

	account, err := g.accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.KindUnauthenticated, "User not found")
		}
		return nil, apperror.Internal("Failed to load account", err)
	}
	if !account.IsActive {
		return nil, apperror.ErrAccountInactive
	}
	if account.Role != claims.Role {
		return nil, apperror.New(apperror.KindUnauthenticated, "Token role no longer matches account")
	}

	return &Principal{AccountID: account.ID, Role: claims.Role, Claims: claims}, nil
}

// ExpiresAt returns when the principal's token stops being valid.
func (p *Principal) ExpiresAt() time.Time {
	if p.Claims == nil || p.Claims.ExpiresAt == nil {
		return time.Time{}
	}
	return p.Claims.ExpiresAt.Time
}

// RequireRole fails with Forbidden unless role is one of allowed.
func RequireRole(role models.Role, allowed ...models.Role) error {
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return apperror.ErrForbidden
}

// RequireOwnership fails with Forbidden unless callerID owns the resource.
func RequireOwnership(callerID, ownerID string) error {
	if callerID == "" || callerID != ownerID {
		return apperror.Forbidden("Unauthorized to access this resource")
	}
	return nil
}

// RequireParticipant fails with Forbidden unless the caller is the
// appointment's patient or doctor, matched on both id and role.
func RequireParticipant(callerID string, callerRole models.Role, apt *models.Appointment) error {
	switch callerRole {
	case models.RolePatient:
		return RequireOwnership(callerID, apt.PatientID)
	case models.RoleDoctor:
		return RequireOwnership(callerID, apt.DoctorID)
	}
	return apperror.Forbidden("Unauthorized to access this appointment")
}
