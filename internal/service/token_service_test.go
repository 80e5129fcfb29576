package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

func newTestTokenService() *TokenService {
	return NewTokenService(TokenConfig{Secret: "test-secret", Issuer: "lms-admin-api", AccessTTL: time.Hour, ResetTTL: 5 * time.Minute})
}

func TestTokenServiceAccessRoundTrip(t *testing.T) {
	svc := newTestTokenService()
	role := "Super Admin"
	in := models.NewAccessPayload(models.AccessClaims{
		ID:          "a1",
		Email:       "root@lms.io",
		Role:        &role,
		Permissions: []string{"admin.read", "course.create"},
		Type:        models.UserTypeAdmin,
	})

	token, err := svc.Issue(in, 0)
	require.NoError(t, err)

	out, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTokenServiceStudentHasEmptyPermissions(t *testing.T) {
	svc := newTestTokenService()
	in := models.NewAccessPayload(models.AccessClaims{ID: "s1", Email: "ada@lms.io", Type: models.UserTypeStudent})

	token, err := svc.Issue(in, 0)
	require.NoError(t, err)
	out, err := svc.Verify(token)
	require.NoError(t, err)

	claims, ok := out.AsAccess()
	require.True(t, ok)
	assert.Nil(t, claims.Role)
	assert.Equal(t, []string{}, claims.Permissions)
}

func TestTokenServiceResetRoundTrip(t *testing.T) {
	svc := newTestTokenService()
	in := models.NewResetPayload(models.ResetClaims{Email: "ada@lms.io", Type: models.UserTypeStudent})

	token, err := svc.Issue(in, 0)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	raw := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "password_reset", raw["purpose"])
	assert.NotContains(t, raw, "permissions")
	assert.NotContains(t, raw, "role")
	assert.NotContains(t, raw, "id")

	out, err := svc.Verify(token)
	require.NoError(t, err)
	_, isAccess := out.AsAccess()
	assert.False(t, isAccess)
	reset, ok := out.AsReset()
	require.True(t, ok)
	assert.Equal(t, "ada@lms.io", reset.Email)
}

func TestTokenServiceExpired(t *testing.T) {
	svc := newTestTokenService()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.Issue(models.NewAccessPayload(models.AccessClaims{ID: "a1", Email: "a@x.io", Type: models.UserTypeAdmin}), time.Minute)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrTokenExpired)
	assert.Equal(t, "token expired", appErrors.FromError(err).Message)
}

func TestTokenServiceRejectsTampering(t *testing.T) {
	svc := newTestTokenService()
	token, err := svc.Issue(models.NewAccessPayload(models.AccessClaims{ID: "a1", Email: "a@x.io", Type: models.UserTypeAdmin}), 0)
	require.NoError(t, err)

	other := NewTokenService(TokenConfig{Secret: "other-secret", Issuer: "lms-admin-api"})
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	wrongIssuer := NewTokenService(TokenConfig{Secret: "test-secret", Issuer: "auth-service"})
	_, err = wrongIssuer.Verify(token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = svc.Verify("not.a.jwt")
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestTokenServiceRejectsOtherAlgorithms(t *testing.T) {
	svc := newTestTokenService()
	claims := &models.JWTClaims{
		Purpose: models.PurposeAccess,
		ID:      "a1",
		Email:   "a@x.io",
		Type:    models.UserTypeAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "lms-admin-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestTokenServiceRejectsUnknownPurpose(t *testing.T) {
	svc := newTestTokenService()
	claims := &models.JWTClaims{
		Purpose: "refresh",
		ID:      "a1",
		Email:   "a@x.io",
		Type:    models.UserTypeAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "lms-admin-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}
