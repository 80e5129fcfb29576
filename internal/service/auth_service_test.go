package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type authFixture struct {
	svc      *AuthService
	admins   *memAdmins
	students *memStudents
	tokens   *TokenService
	otps     *OTPService
	recorder *captureRecorder
	notifier *captureNotifier
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	roleID := "role-1"
	perms := newMemPermissions(
		&models.Permission{ID: "p1", Name: "admin.read"},
		&models.Permission{ID: "p2", Name: "course.create"},
	)
	roles := newMemRoles(&models.Role{ID: roleID, Name: "Manager", PermissionIDs: []string{"p1", "p2"}, Kind: models.RoleKindSystem})
	admins := newMemAdmins(
		&models.Admin{ID: "a1", Name: "Root", Email: "root@lms.io", PasswordHash: mustHash(t, "secret123"), RoleID: &roleID, IsActive: true},
		&models.Admin{ID: "a2", Name: "Idle", Email: "idle@lms.io", PasswordHash: mustHash(t, "secret123"), IsActive: false},
	)
	students := newMemStudents(
		&models.Student{ID: "s1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@lms.io", PasswordHash: mustHash(t, "secret123"), IsActive: true},
	)
	otps, _ := newTestOTPService(t)
	tokens := newTestTokenService()
	recorder := &captureRecorder{}
	notifier := &captureNotifier{}

	svc := NewAuthService(AuthDeps{
		Admins:     admins,
		Students:   students,
		Resolver:   NewPermissionResolver(roles, perms, nil),
		Tokens:     tokens,
		OTPs:       otps,
		Recorder:   recorder,
		Notifier:   notifier,
		SaltRounds: bcrypt.MinCost,
	})
	return &authFixture{svc: svc, admins: admins, students: students, tokens: tokens, otps: otps, recorder: recorder, notifier: notifier}
}

func TestAuthServiceLoginAdmin(t *testing.T) {
	f := newAuthFixture(t)
	client := ClientInfo{IP: "10.0.0.1", UserAgent: "curl"}

	resp, err := f.svc.LoginAdmin(context.Background(), dto.LoginRequest{Email: "ROOT@lms.io", Password: "secret123"}, client)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	require.NotNil(t, resp.User.Role)
	assert.Equal(t, "Manager", *resp.User.Role)
	assert.ElementsMatch(t, []string{"admin.read", "course.create"}, resp.User.Permissions)

	payload, err := f.tokens.Verify(resp.Token)
	require.NoError(t, err)
	claims, ok := payload.AsAccess()
	require.True(t, ok)
	assert.Equal(t, "a1", claims.ID)
	assert.Equal(t, models.UserTypeAdmin, claims.Type)

	require.Len(t, f.recorder.logins, 1)
	login := f.recorder.logins[0]
	assert.Equal(t, "a1", login.UserID)
	require.NotNil(t, login.IP)
	assert.Equal(t, "10.0.0.1", *login.IP)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.LoginAdmin(ctx, dto.LoginRequest{Email: "nobody@lms.io", Password: "secret123"}, ClientInfo{})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = f.svc.LoginAdmin(ctx, dto.LoginRequest{Email: "root@lms.io", Password: "wrong-pass"}, ClientInfo{})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	// inactive is reported before the password is checked
	_, err = f.svc.LoginAdmin(ctx, dto.LoginRequest{Email: "idle@lms.io", Password: "wrong-pass"}, ClientInfo{})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)

	_, err = f.svc.LoginAdmin(ctx, dto.LoginRequest{Email: "bad", Password: "x"}, ClientInfo{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.Empty(t, f.recorder.logins)
}

func TestAuthServiceLoginStudentHasNoPermissions(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.LoginStudent(context.Background(), dto.LoginRequest{Email: "ada@lms.io", Password: "secret123"}, ClientInfo{})
	require.NoError(t, err)
	assert.Nil(t, resp.User.Role)
	assert.NotNil(t, resp.User.Permissions)
	assert.Empty(t, resp.User.Permissions)
	assert.Equal(t, "Ada Lovelace", resp.User.Name)

	payload, err := f.tokens.Verify(resp.Token)
	require.NoError(t, err)
	claims, _ := payload.AsAccess()
	assert.Equal(t, models.UserTypeStudent, claims.Type)
	assert.Empty(t, claims.Permissions)

	_, err = f.svc.LoginAdmin(context.Background(), dto.LoginRequest{Email: "ada@lms.io", Password: "secret123"}, ClientInfo{})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceMe(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	me, err := f.svc.Me(ctx, models.AccessClaims{ID: "a1", Type: models.UserTypeAdmin})
	require.NoError(t, err)
	assert.Equal(t, "root@lms.io", me.Email)
	assert.Len(t, me.Permissions, 2)

	_, err = f.svc.Me(ctx, models.AccessClaims{ID: "gone", Type: models.UserTypeStudent})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Equal(t, "user not found", appErrors.FromError(err).Message)
}

func TestAuthServicePasswordRecovery(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	otp, err := f.svc.RequestOTP(ctx, dto.OTPRequest{Email: "ada@lms.io", Source: "student"})
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, otp.Code, f.notifier.sent[0].code)
	assert.Equal(t, 5*time.Minute, f.notifier.sent[0].ttl)

	// reset before verification is refused
	early, err := f.tokens.Issue(models.NewResetPayload(models.ResetClaims{Email: "ada@lms.io", Type: models.UserTypeStudent}), 0)
	require.NoError(t, err)
	err = f.svc.ResetPassword(ctx, dto.ResetPasswordRequest{ResetToken: early, NewPassword: "brand-new"})
	assert.ErrorIs(t, err, appErrors.ErrBadRequest)

	reset, err := f.svc.VerifyOTP(ctx, dto.OTPVerifyRequest{Email: "ada@lms.io", OTP: otp.Code, Source: "student"})
	require.NoError(t, err)
	assert.Equal(t, int64(300), reset.ExpiresIn)

	require.NoError(t, f.svc.ResetPassword(ctx, dto.ResetPasswordRequest{ResetToken: reset.ResetToken, NewPassword: "brand-new"}))

	_, err = f.svc.LoginStudent(ctx, dto.LoginRequest{Email: "ada@lms.io", Password: "brand-new"}, ClientInfo{})
	require.NoError(t, err)

	// the code is single use
	err = f.svc.ResetPassword(ctx, dto.ResetPasswordRequest{ResetToken: reset.ResetToken, NewPassword: "another-one"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAuthServiceResetRejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	login, err := f.svc.LoginStudent(context.Background(), dto.LoginRequest{Email: "ada@lms.io", Password: "secret123"}, ClientInfo{})
	require.NoError(t, err)

	err = f.svc.ResetPassword(context.Background(), dto.ResetPasswordRequest{ResetToken: login.Token, NewPassword: "brand-new"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestAuthServiceRequestOTPUnknownAccount(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.RequestOTP(context.Background(), dto.OTPRequest{Email: "ghost@lms.io", Source: "admin"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, f.notifier.sent)
}
