package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

func TestValidatorReportsJSONNames(t *testing.T) {
	v := NewValidator()
	err := v.Struct(ResetPasswordRequest{ResetToken: "short", NewPassword: "abc"})
	require.Error(t, err)

	appErr := appErrors.FromValidator(err, "")
	fields := map[string]string{}
	for _, d := range appErr.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "must be at least 20", fields["resetToken"])
	assert.Equal(t, "must be at least 6", fields["newPassword"])
}

func TestOTPRequestSourceMustBeKnown(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(OTPRequest{Email: "a@b.io", Source: "student"}))

	err := v.Struct(OTPRequest{Email: "a@b.io", Source: "guest"})
	require.Error(t, err)
	appErr := appErrors.FromValidator(err, "")
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "source", appErr.Details[0].Field)
}

func TestPartialUpdatesSkipAbsentFields(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(UpdateCourseRequest{}))

	bad := "expert"
	assert.Error(t, v.Struct(UpdateCourseRequest{Level: &bad}))

	ids := []string{"not-a-uuid"}
	err := v.Struct(UpdateRoleRequest{PermissionIDs: &ids})
	require.Error(t, err)
	appErr := appErrors.FromValidator(err, "")
	assert.Equal(t, "permissions[0]", appErr.Details[0].Field)
}

func TestVerifyCodeMustBeNumeric(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(OTPVerifyRequest{Email: "a@b.io", OTP: "012345", Source: "admin"}))
	assert.Error(t, v.Struct(OTPVerifyRequest{Email: "a@b.io", OTP: "12a456", Source: "admin"}))
	assert.Error(t, v.Struct(OTPVerifyRequest{Email: "a@b.io", OTP: "123", Source: "admin"}))
}

func TestVerifyNeedsAccountType(t *testing.T) {
	v := NewValidator()
	err := v.Struct(OTPVerifyRequest{Email: "a@b.io", OTP: "012345"})
	require.Error(t, err)
	appErr := appErrors.FromValidator(err, "")
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "source", appErr.Details[0].Field)
}
