package utils

import (
	"errors"
	"fmt"
	"time"

	"healthcare-app-server/internal/apperror"
	"healthcare-app-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTSigner signs and verifies HS256 tokens.
type JWTSigner struct {
	secret []byte
	now    func() time.Time
}

// NewJWTSigner creates a signer for secret using the wall clock.
func NewJWTSigner(secret string) *JWTSigner {
	return NewJWTSignerWithClock(secret, time.Now)
}

// NewJWTSignerWithClock creates a signer whose expiry checks use now.
func NewJWTSignerWithClock(secret string, now func() time.Time) *JWTSigner {
	return &JWTSigner{secret: []byte(secret), now: now}
}

// Sign produces a signed token for claims.
func (s *JWTSigner) Sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// Verify validates a token's signature and expiry. Expired tokens yield a
// TokenExpired error; anything else unusable yields Unauthenticated.
func (s *JWTSigner) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Wrap(apperror.KindTokenExpired, "Token has expired", err)
		}
		return nil, apperror.Wrap(apperror.KindUnauthenticated, "Invalid token", err)
	}

	if !token.Valid || claims.UserID == "" || !claims.Role.IsAccountRole() {
		return nil, apperror.New(apperror.KindUnauthenticated, "Invalid token")
	}

	return claims, nil
}
