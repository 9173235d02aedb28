package services

import (
	"context"
	"time"

	"healthcare-app-server/internal/apperror"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSigner signs claims into a bearer token and verifies them back.
// Verify reports expiry as apperror.KindTokenExpired and any other defect
// as apperror.KindUnauthenticated.
type TokenSigner interface {
	Sign(claims *utils.Claims) (string, error)
	Verify(token string) (*utils.Claims, error)
}

// IssuedToken is a freshly signed bearer token.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CredentialService issues and verifies session tokens. Verification is
// stateless unless a RevocationStore is configured.
type CredentialService struct {
	signer      TokenSigner
	revocations RevocationStore
	defaultTTL  time.Duration
	now         func() time.Time
}

// NewCredentialService creates a CredentialService. revocations may be nil.
func NewCredentialService(signer TokenSigner, revocations RevocationStore, defaultTTL time.Duration, now func() time.Time) *CredentialService {
	if now == nil {
		now = time.Now
	}
	return &CredentialService{
		signer:      signer,
		revocations: revocations,
		defaultTTL:  defaultTTL,
		now:         now,
	}
}

// IssueToken signs a token for accountID and role valid for ttl. A
// non-positive ttl uses the configured default.
func (s *CredentialService) IssueToken(accountID string, role models.Role, ttl time.Duration) (*IssuedToken, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	issued := s.now()
	expires := issued.Add(ttl)

	claims := &utils.Claims{
		UserID: accountID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := s.signer.Sign(claims)
	if err != nil {
		return nil, apperror.Internal("Failed to generate token", err)
	}
	return &IssuedToken{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// VerifyToken decodes token and checks it has not been revoked.
func (s *CredentialService) VerifyToken(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, err
	}

	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperror.Internal("Failed to check token revocation", err)
		}
		if revoked {
			return nil, apperror.New(apperror.KindUnauthenticated, "Token has been revoked")
		}
	}
	return claims, nil
}

// RevokeToken invalidates token until its natural expiry. It reports false
// when no revocation store is configured.
func (s *CredentialService) RevokeToken(ctx context.Context, claims *utils.Claims) (bool, error) {
	if s.revocations == nil || claims == nil || claims.ID == "" {
		return false, nil
	}
	until := s.now()
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revocations.Revoke(ctx, claims.ID, until); err != nil {
		return false, apperror.Internal("Failed to revoke token", err)
	}
	return true, nil
}
