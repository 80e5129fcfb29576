package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	err := Clone(ErrNotFound, "Admin not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("lookup: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.False(t, appErr.Operational())

	assert.True(t, ErrForbidden.Operational())
	assert.Nil(t, FromError(nil))
}

func TestFromValidatorCollectsFields(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		Password string `validate:"min=8"`
	}
	v := validator.New()
	err := v.Struct(payload{Email: "nope", Password: "short"})
	require.Error(t, err)

	appErr := FromValidator(err, "")
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
	assert.Equal(t, "validation failed", appErr.Message)
	require.Len(t, appErr.Details, 2)
	assert.Equal(t, "Email", appErr.Details[0].Field)
	assert.Equal(t, "must be a valid email address", appErr.Details[0].Message)
	assert.Equal(t, "must be at least 8", appErr.Details[1].Message)
}

func TestFromDatabase(t *testing.T) {
	assert.Nil(t, FromDatabase(nil, ""))

	notFound := FromDatabase(sql.ErrNoRows, "Course not found")
	assert.Equal(t, http.StatusNotFound, notFound.Status)
	assert.Equal(t, "Course not found", notFound.Message)

	dup := FromDatabase(&pq.Error{Code: "23505"}, "create course")
	assert.Equal(t, http.StatusConflict, dup.Status)
	assert.Equal(t, "duplicate key error", dup.Message)

	other := FromDatabase(errors.New("connection reset"), "list courses")
	assert.Equal(t, http.StatusInternalServerError, other.Status)
}
