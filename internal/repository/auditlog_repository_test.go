package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

func TestAuditLogRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditLogRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLog{
		UserID:   "a1",
		UserType: models.UserTypeAdmin,
		Email:    "root@lms.io",
		Action:   models.AuditActionCreate,
		Resource: "course",
		Changes:  types.JSONText(`{"title":"Go"}`),
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepositoryListByResource(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditLogRepository(db)

	now := time.Now()
	cols := []string{"id", "user_id", "user_type", "email", "action", "resource", "resource_id", "changes", "ip", "user_agent", "timestamp"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + auditLogColumns + " FROM audit_logs WHERE action = $1 AND resource ILIKE $2 ORDER BY timestamp DESC LIMIT 10 OFFSET 0")).
		WithArgs("DELETE", "%course%").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("l1", "a1", "admin", "root@lms.io", "DELETE", "course", "c1", []byte(`{}`), "127.0.0.1", "curl", now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs WHERE action = $1 AND resource ILIKE $2")).
		WithArgs("DELETE", "%course%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	entries, total, err := repo.List(context.Background(), models.AuditLogFilter{Action: "delete", Resource: "course"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionDelete, entries[0].Action)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepositoryDeleteByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditLogRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM audit_logs WHERE user_id = $1")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteByUser(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserLogRepositoryExport(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserLogRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userLogColumns + " FROM user_logs WHERE user_type = $1 ORDER BY login_time DESC LIMIT 500")).
		WithArgs(models.UserTypeStudent).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "user_type", "email", "ip", "user_agent", "login_time"}).
			AddRow("u1", "s1", "student", "ada@lms.io", "10.0.0.1", nil, now))

	entries, err := repo.Export(context.Background(), models.UserLogFilter{UserType: models.UserTypeStudent}, 500)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UserAgent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
