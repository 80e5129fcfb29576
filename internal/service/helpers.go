package service

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return string(hash), nil
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func conflictIf(exists bool, err error, message string) error {
	if err != nil {
		return internalError(err, "failed to check uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, message)
	}
	return nil
}
