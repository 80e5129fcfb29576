package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

var adminRowColumns = []string{"id", "name", "email", "password_hash", "role_id", "is_active", "created_at", "updated_at"}

func TestAdminRepositoryFindByEmailNormalizes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(adminRowColumns).AddRow("a1", "Root", "root@lms.io", "hash", "r1", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + adminColumns + " FROM admins WHERE email = $1 LIMIT 1")).
		WithArgs("root@lms.io").
		WillReturnRows(rows)

	admin, err := repo.FindByEmail(context.Background(), "  Root@LMS.io ")
	require.NoError(t, err)
	assert.Equal(t, "a1", admin.ID)
	require.NotNil(t, admin.RoleID)
	assert.Equal(t, "r1", *admin.RoleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	active := true
	filter := models.AdminFilter{
		ListQuery: models.ListQuery{Page: 2, Limit: 5, SortBy: "name", SortOrder: "asc"},
		Email:     "lms",
		IsActive:  &active,
	}
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + adminColumns + " FROM admins WHERE email ILIKE $1 AND is_active = $2 ORDER BY name ASC LIMIT 5 OFFSET 5")).
		WithArgs("%lms%", true).
		WillReturnRows(sqlmock.NewRows(adminRowColumns).AddRow("a1", "Root", "root@lms.io", "hash", nil, true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admins WHERE email ILIKE $1 AND is_active = $2")).
		WithArgs("%lms%", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	admins, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
	assert.Nil(t, admins[0].RoleID)
	assert.Equal(t, 6, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryCreateSurfacesUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectExec("INSERT INTO admins").WillReturnError(&pq.Error{Code: "23505"})

	admin := &models.Admin{Name: "Root", Email: "ROOT@lms.io", PasswordHash: "hash", IsActive: true}
	err := repo.Create(context.Background(), admin)
	require.Error(t, err)
	var pqErr *pq.Error
	assert.ErrorAs(t, err, &pqErr)
	assert.NotEmpty(t, admin.ID)
	assert.Equal(t, "root@lms.io", admin.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admins WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM admins WHERE email = $1 AND id <> $2 LIMIT 1")).
		WithArgs("root@lms.io", "a1").
		WillReturnError(sql.ErrNoRows)

	found, err := repo.ExistsByEmail(context.Background(), "root@lms.io", "a1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
