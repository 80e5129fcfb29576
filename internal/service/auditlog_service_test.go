package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/export"
)

type memAuditLogs struct {
	entries    []models.AuditLog
	lastFilter models.AuditLogFilter
}

func (m *memAuditLogs) FindByID(ctx context.Context, id string) (*models.AuditLog, error) {
	for _, e := range m.entries {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memAuditLogs) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	m.lastFilter = filter
	return m.entries, len(m.entries), nil
}

func (m *memAuditLogs) Export(ctx context.Context, filter models.AuditLogFilter, max int) ([]models.AuditLog, error) {
	m.lastFilter = filter
	return m.entries, nil
}

func (m *memAuditLogs) Delete(ctx context.Context, id string) error {
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memAuditLogs) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(m.entries))
	m.entries = nil
	return n, nil
}

func (m *memAuditLogs) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	kept := m.entries[:0]
	var n int64
	for _, e := range m.entries {
		if e.UserID == userID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return n, nil
}

func sampleAuditLogs() []models.AuditLog {
	resourceID := "c1"
	return []models.AuditLog{
		{ID: "l1", UserID: "a1", Email: "root@lms.io", Action: models.AuditActionCreate, Resource: "course", ResourceID: &resourceID, Changes: types.JSONText(`{"title":"Go"}`)},
		{ID: "l2", UserID: "a2", Email: "ops@lms.io", Action: models.AuditActionDelete, Resource: "admin"},
	}
}

func TestAuditLogServiceListNormalisesFilter(t *testing.T) {
	repo := &memAuditLogs{entries: sampleAuditLogs()}
	svc := NewAuditLogService(repo, nil, nil)

	_, page, err := svc.List(context.Background(), models.AuditLogFilter{Action: "create"})
	require.NoError(t, err)
	assert.Equal(t, models.AuditActionCreate, repo.lastFilter.Action)
	assert.Equal(t, 2, page.Total)

	_, _, err = svc.ByResource(context.Background(), "course", models.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, "course", repo.lastFilter.Resource)
}

func TestAuditLogServiceExportCSV(t *testing.T) {
	repo := &memAuditLogs{entries: sampleAuditLogs()}
	svc := NewAuditLogService(repo, export.NewExporter(), nil)

	doc, err := svc.Export(context.Background(), models.AuditLogFilter{}, "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.Filename, "audit-logs-"))
	assert.Equal(t, "text/csv; charset=utf-8", doc.ContentType)
	body := string(doc.Body)
	assert.Contains(t, body, "timestamp,userId,userType")
	assert.Contains(t, body, "root@lms.io")

	_, err = svc.Export(context.Background(), models.AuditLogFilter{}, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrBadRequest)
}

func TestAuditLogServiceClear(t *testing.T) {
	repo := &memAuditLogs{entries: sampleAuditLogs()}
	svc := NewAuditLogService(repo, nil, nil)
	ctx := context.Background()

	n, err := svc.ClearByUser(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, svc.Delete(ctx, "l1"), appErrors.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "l2"))

	n, err = svc.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
