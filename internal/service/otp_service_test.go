package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

func newTestOTPService(t *testing.T) (*OTPService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewOTPService(repository.NewOTPRepository(client), OTPConfig{TTL: 5 * time.Minute, Length: 6}, nil), mr
}

func TestGenerateOTPShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
	_, err := GenerateOTP(0)
	assert.Error(t, err)
}

func TestOTPServiceRequestBlocksPendingCode(t *testing.T) {
	svc, _ := newTestOTPService(t)
	ctx := context.Background()

	first, err := svc.Request(ctx, "Ada@LMS.io", models.UserTypeStudent)
	require.NoError(t, err)
	assert.Equal(t, "ada@lms.io", first.Email)
	assert.False(t, first.Verified)

	_, err = svc.Request(ctx, "ada@lms.io", models.UserTypeStudent)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrBadRequest)
	assert.Equal(t, "otp already exists", appErrors.FromError(err).Message)

	_, err = svc.Request(ctx, "ada@lms.io", models.UserTypeAdmin)
	assert.NoError(t, err)
}

func TestOTPServiceVerifyFlow(t *testing.T) {
	svc, _ := newTestOTPService(t)
	ctx := context.Background()

	otp, err := svc.Request(ctx, "ada@lms.io", models.UserTypeStudent)
	require.NoError(t, err)

	err = svc.ConsumeForReset(ctx, "ada@lms.io", models.UserTypeStudent)
	assert.Equal(t, "otp not verified", appErrors.FromError(err).Message)

	wrong := "000000"
	if otp.Code == wrong {
		wrong = "111111"
	}
	_, err = svc.Verify(ctx, "ada@lms.io", wrong, models.UserTypeStudent)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	verified, err := svc.Verify(ctx, "ada@lms.io", otp.Code, models.UserTypeStudent)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	_, err = svc.Verify(ctx, "ada@lms.io", otp.Code, models.UserTypeStudent)
	assert.Equal(t, "otp already verified", appErrors.FromError(err).Message)

	require.NoError(t, svc.ConsumeForReset(ctx, "ada@lms.io", models.UserTypeStudent))

	again, err := svc.Request(ctx, "ada@lms.io", models.UserTypeStudent)
	require.NoError(t, err)
	assert.False(t, again.Verified)
}

func TestOTPServiceExpiry(t *testing.T) {
	svc, mr := newTestOTPService(t)
	ctx := context.Background()

	otp, err := svc.Request(ctx, "ada@lms.io", models.UserTypeStudent)
	require.NoError(t, err)

	mr.FastForward(6 * time.Minute)
	_, err = svc.Verify(ctx, "ada@lms.io", otp.Code, models.UserTypeStudent)
	assert.Equal(t, "otp not found", appErrors.FromError(err).Message)

	err = svc.ConsumeForReset(ctx, "ada@lms.io", models.UserTypeStudent)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestOTPServiceVerifyRejectsStaleRecord(t *testing.T) {
	svc, _ := newTestOTPService(t)
	ctx := context.Background()

	otp, err := svc.Request(ctx, "ada@lms.io", models.UserTypeStudent)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	_, err = svc.Verify(ctx, "ada@lms.io", otp.Code, models.UserTypeStudent)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestOTPServiceDiscard(t *testing.T) {
	svc, mr := newTestOTPService(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, "ada@lms.io", models.UserTypeStudent)
	require.NoError(t, err)
	svc.Discard(ctx, "ada@lms.io", models.UserTypeStudent)
	assert.False(t, mr.Exists("otp:student:ada@lms.io"))
}
