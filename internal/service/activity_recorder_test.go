package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/jobs"
)

type memAuditWriter struct {
	mu      sync.Mutex
	entries []models.AuditLog
	err     error
}

func (m *memAuditWriter) Create(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAuditWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type memLoginWriter struct {
	mu      sync.Mutex
	entries []models.UserLog
}

func (m *memLoginWriter) Create(ctx context.Context, entry *models.UserLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

type fullQueue struct{}

func (fullQueue) TryEnqueue(jobs.Job) error { return jobs.ErrQueueFull }

func TestActivityRecorderWritesThroughQueue(t *testing.T) {
	audits := &memAuditWriter{}
	logins := &memLoginWriter{}
	metrics := NewMetricsService()
	recorder := NewActivityRecorder(audits, logins, metrics, nil)

	queue := jobs.NewQueue("activity", recorder.Handle, jobs.QueueConfig{Workers: 1, BufferSize: 8})
	queue.Start(context.Background())
	recorder.Attach(queue)

	recorder.RecordAudit(models.AuditLog{UserID: "a1", Action: models.AuditActionCreate, Resource: "course"})
	recorder.RecordLogin(models.UserLog{UserID: "s1", UserType: models.UserTypeStudent})
	queue.Stop()

	assert.Equal(t, 1, audits.count())
	assert.Len(t, logins.entries, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.activityRecords.WithLabelValues(jobTypeAudit, OutcomeWritten)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.activityRecords.WithLabelValues(jobTypeLogin, OutcomeWritten)))
}

func TestActivityRecorderSwallowsFailures(t *testing.T) {
	audits := &memAuditWriter{err: errors.New("db down")}
	metrics := NewMetricsService()
	recorder := NewActivityRecorder(audits, &memLoginWriter{}, metrics, nil)

	assert.NotPanics(t, func() {
		recorder.RecordAudit(models.AuditLog{UserID: "a1"})
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.activityRecords.WithLabelValues(jobTypeAudit, OutcomeFailed)))

	recorder.Attach(fullQueue{})
	recorder.RecordAudit(models.AuditLog{UserID: "a1"})
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.activityRecords.WithLabelValues(jobTypeAudit, OutcomeDropped)))
}

type memMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *memMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"|"+body)
	return nil
}

func TestNotificationServiceSendOTP(t *testing.T) {
	mail := &memMailer{}
	metrics := NewMetricsService()
	svc := NewNotificationService(mail, metrics, nil)

	svc.SendOTP("ada@lms.io", "123456", 5*time.Minute)
	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0], "ada@lms.io|")
	assert.Contains(t, mail.sent[0], "123456")
	assert.Contains(t, mail.sent[0], "5 minutes")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.mailDeliveries.WithLabelValues(OutcomeSuccess)))

	mail.err = errors.New("relay refused")
	svc.SendOTP("ada@lms.io", "654321", time.Minute)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.mailDeliveries.WithLabelValues(OutcomeFailed)))
}

func TestPermissionResolver(t *testing.T) {
	perms := newMemPermissions(&models.Permission{ID: "p1", Name: "student.read"})
	roles := newMemRoles(&models.Role{ID: "r1", Name: "Viewer", PermissionIDs: []string{"p1", "deleted"}})
	resolver := NewPermissionResolver(roles, perms, nil)
	ctx := context.Background()

	roleID := "r1"
	got, err := resolver.Resolve(ctx, &models.Admin{ID: "a1", RoleID: &roleID})
	require.NoError(t, err)
	require.NotNil(t, got.RoleName)
	assert.Equal(t, "Viewer", *got.RoleName)
	assert.Equal(t, []string{"student.read"}, got.Permissions)

	got, err = resolver.Resolve(ctx, &models.Admin{ID: "a2"})
	require.NoError(t, err)
	assert.Nil(t, got.RoleName)
	assert.NotNil(t, got.Permissions)
	assert.Empty(t, got.Permissions)

	dangling := "gone"
	got, err = resolver.Resolve(ctx, &models.Admin{ID: "a3", RoleID: &dangling})
	require.NoError(t, err)
	assert.Nil(t, got.RoleName)
	assert.Empty(t, got.Permissions)

	assert.False(t, CanDelete(&models.Role{Kind: models.RoleKindSystem}))
	assert.True(t, CanDelete(&models.Role{Kind: models.RoleKindCustom}))
}
