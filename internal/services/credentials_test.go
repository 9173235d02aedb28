package services

import (
	"testing"
	"time"

	"healthcare-app-server/internal/apperror"
	"healthcare-app-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyToken(t *testing.T) {
	f := newFixture(t, nil)

	issued, err := f.credentials.IssueToken("user-1", models.RolePatient, 0)
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(time.Hour), issued.ExpiresAt.UTC())

	claims, err := f.credentials.VerifyToken(f.ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RolePatient, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyTokenExpired(t *testing.T) {
	f := newFixture(t, nil)

	issued, err := f.credentials.IssueToken("user-1", models.RoleDoctor, time.Minute)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	_, err = f.credentials.VerifyToken(f.ctx, issued.Token)
	assert.Equal(t, apperror.KindTokenExpired, apperror.KindOf(err))
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.credentials.VerifyToken(f.ctx, "not.a.token")
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
}

func TestRevokeToken(t *testing.T) {
	f := newFixture(t, nil)

	issued, err := f.credentials.IssueToken("user-1", models.RolePatient, 0)
	require.NoError(t, err)
	claims, err := f.credentials.VerifyToken(f.ctx, issued.Token)
	require.NoError(t, err)

	revoked, err := f.credentials.RevokeToken(f.ctx, claims)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = f.credentials.VerifyToken(f.ctx, issued.Token)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
	assert.Equal(t, "Token has been revoked", apperror.MessageOf(err))

	other, err := f.credentials.IssueToken("user-1", models.RolePatient, 0)
	require.NoError(t, err)
	_, err = f.credentials.VerifyToken(f.ctx, other.Token)
	assert.NoError(t, err)
}

func TestRevokeTokenWithoutStore(t *testing.T) {
	f := newFixture(t, nil)
	creds := NewCredentialService(nil, nil, time.Hour, f.clock.Now)

	revoked, err := creds.RevokeToken(f.ctx, nil)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationStoreForgetsExpired(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.revocations.Revoke(f.ctx, "jti-1", testStart.Add(time.Minute)))
	revoked, err := f.revocations.IsRevoked(f.ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	f.clock.Advance(time.Minute)
	revoked, err = f.revocations.IsRevoked(f.ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestGuardAuthenticate(t *testing.T) {
	f := newFixture(t, nil)
	patient := f.register(t, "Asha", models.RolePatient)

	issued, err := f.credentials.IssueToken(patient.ID, patient.Role, 0)
	require.NoError(t, err)

	principal, err := f.guard.Authenticate(f.ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, principal.AccountID)
	assert.Equal(t, models.RolePatient, principal.Role)
	assert.Equal(t, issued.ExpiresAt.Unix(), principal.ExpiresAt().Unix())

	_, err = f.guard.Authenticate(f.ctx, "")
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	ghost, err := f.credentials.IssueToken("deleted-user", models.RolePatient, 0)
	require.NoError(t, err)
	_, err = f.guard.Authenticate(f.ctx, ghost.Token)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	wrongRole, err := f.credentials.IssueToken(patient.ID, models.RoleDoctor, 0)
	require.NoError(t, err)
	_, err = f.guard.Authenticate(f.ctx, wrongRole.Token)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	require.NoError(t, f.accounts.SetActive(f.ctx, patient.ID, false))
	_, err = f.guard.Authenticate(f.ctx, issued.Token)
	assert.Equal(t, apperror.KindAccountInactive, apperror.KindOf(err))
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(models.RoleDoctor, models.RoleDoctor))
	assert.NoError(t, RequireRole(models.RolePatient, models.RoleDoctor, models.RolePatient))

	err := RequireRole(models.RolePatient, models.RoleDoctor)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestRequireParticipant(t *testing.T) {
	apt := &models.Appointment{PatientID: "p1", DoctorID: "d1"}

	assert.NoError(t, RequireParticipant("p1", models.RolePatient, apt))
	assert.NoError(t, RequireParticipant("d1", models.RoleDoctor, apt))

	for _, tc := range []struct {
		id   string
		role models.Role
	}{
		{"p2", models.RolePatient},
		{"d2", models.RoleDoctor},
		{"d1", models.RolePatient},
		{"p1", models.RoleSystem},
		{"", models.RolePatient},
	} {
		err := RequireParticipant(tc.id, tc.role, apt)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err), "%s/%s", tc.id, tc.role)
	}
}

func TestOneSecondTokenExpiresAfterTwoSeconds(t *testing.T) {
	f := newFixture(t, nil)

	issued, err := f.credentials.IssueToken("user-1", models.RolePatient, time.Second)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Second)
	_, err = f.credentials.VerifyToken(f.ctx, issued.Token)
	assert.Equal(t, apperror.KindTokenExpired, apperror.KindOf(err))
}
