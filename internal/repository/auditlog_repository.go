package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const auditLogColumns = "id, user_id, user_type, email, action, resource, resource_id, changes, ip, user_agent, timestamp"

var auditLogSorts = map[string]string{
	"timestamp": "timestamp",
	"createdAt": "timestamp",
	"action":    "action",
	"resource":  "resource",
	"email":     "email",
}

// AuditLogRepository persists audit records.
type AuditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository constructs an AuditLogRepository.
func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create appends an audit record.
func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		stamp(&entry.Timestamp, nil)
	}
	const query = `INSERT INTO audit_logs (id, user_id, user_type, email, action, resource, resource_id, changes, ip, user_agent, timestamp)
        VALUES (:id, :user_id, :user_type, :email, :action, :resource, :resource_id, :changes, :ip, :user_agent, :timestamp)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// FindByID fetches an audit record by ID.
func (r *AuditLogRepository) FindByID(ctx context.Context, id string) (*models.AuditLog, error) {
	query := fmt.Sprintf("SELECT %s FROM audit_logs WHERE id = $1", auditLogColumns)
	var entry models.AuditLog
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns audit records matching the filter together with the total count.
func (r *AuditLogRepository) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	b := auditLogConditions(filter)
	entries := make([]models.AuditLog, 0)
	total, err := selectPage(ctx, r.db, &entries, auditLogColumns, "audit_logs", b, orderAndPage(filter.ListQuery, auditLogSorts, "timestamp"))
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Export returns up to max records matching the filter, newest first.
func (r *AuditLogRepository) Export(ctx context.Context, filter models.AuditLogFilter, max int) ([]models.AuditLog, error) {
	b := auditLogConditions(filter)
	query := fmt.Sprintf("SELECT %s FROM audit_logs%s ORDER BY timestamp DESC LIMIT %d", auditLogColumns, b.where(), max)
	entries := make([]models.AuditLog, 0)
	if err := r.db.SelectContext(ctx, &entries, query, b.args...); err != nil {
		return nil, fmt.Errorf("export audit logs: %w", err)
	}
	return entries, nil
}

// Delete removes a single audit record.
func (r *AuditLogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete audit log: %w", err)
	}
	return requireAffected(res, "delete audit log")
}

// DeleteAll removes every audit record and reports how many were removed.
func (r *AuditLogRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs`)
	if err != nil {
		return 0, fmt.Errorf("clear audit logs: %w", err)
	}
	return res.RowsAffected()
}

// DeleteByUser removes the audit records of one user.
func (r *AuditLogRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear audit logs for user: %w", err)
	}
	return res.RowsAffected()
}

func auditLogConditions(filter models.AuditLogFilter) *filterBuilder {
	b := &filterBuilder{}
	b.search(filter.Search, "email", "resource")
	b.between("timestamp", filter.CreatedAfter, filter.CreatedBefore)
	if filter.UserID != "" {
		b.eq("user_id", filter.UserID)
	}
	if filter.UserType != "" {
		b.eq("user_type", filter.UserType)
	}
	b.contains("email", filter.Email)
	if filter.Action != "" {
		b.eq("action", strings.ToUpper(string(filter.Action)))
	}
	b.contains("resource", filter.Resource)
	if filter.ResourceID != "" {
		b.eq("resource_id", filter.ResourceID)
	}
	return b
}
