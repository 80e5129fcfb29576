package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/jobs"
)

const (
	jobTypeAudit = "audit"
	jobTypeLogin = "login"
)

type auditLogWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

type userLogWriter interface {
	Create(ctx context.Context, entry *models.UserLog) error
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// ActivityRecorder writes audit and login records off the request path. Failures are
// logged and counted but never reach the caller.
type ActivityRecorder struct {
	audits  auditLogWriter
	logins  userLogWriter
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewActivityRecorder constructs an ActivityRecorder. Attach a queue before serving traffic;
// without one records are written inline.
func NewActivityRecorder(audits auditLogWriter, logins userLogWriter, metrics *MetricsService, logger *zap.Logger) *ActivityRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRecorder{audits: audits, logins: logins, metrics: metrics, logger: logger}
}

// Attach sets the queue records are dispatched through.
func (r *ActivityRecorder) Attach(queue jobEnqueuer) {
	r.queue = queue
}

// RecordAudit schedules an audit record.
func (r *ActivityRecorder) RecordAudit(entry models.AuditLog) {
	r.dispatch(jobTypeAudit, entry)
}

// RecordLogin schedules a login record.
func (r *ActivityRecorder) RecordLogin(entry models.UserLog) {
	r.dispatch(jobTypeLogin, entry)
}

// Handle is the queue handler that persists a single record.
func (r *ActivityRecorder) Handle(ctx context.Context, job jobs.Job) error {
	var err error
	switch payload := job.Payload.(type) {
	case models.AuditLog:
		err = r.audits.Create(ctx, &payload)
	case models.UserLog:
		err = r.logins.Create(ctx, &payload)
	default:
		err = fmt.Errorf("unsupported activity payload %T", job.Payload)
	}
	if err != nil {
		r.metrics.RecordActivity(job.Type, OutcomeFailed)
		return err
	}
	r.metrics.RecordActivity(job.Type, OutcomeWritten)
	return nil
}

func (r *ActivityRecorder) dispatch(kind string, payload interface{}) {
	job := jobs.Job{ID: uuid.NewString(), Type: kind, Payload: payload}
	if r.queue == nil {
		if err := r.Handle(context.Background(), job); err != nil {
			r.logger.Warn("failed to write activity record", zap.String("kind", kind), zap.Error(err))
		}
		return
	}
	if err := r.queue.TryEnqueue(job); err != nil {
		r.metrics.RecordActivity(kind, OutcomeDropped)
		r.logger.Warn("activity record dropped", zap.String("kind", kind), zap.Error(err))
	}
}
