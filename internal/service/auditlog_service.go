package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/export"
)

type auditLogRepository interface {
	FindByID(ctx context.Context, id string) (*models.AuditLog, error)
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error)
	Export(ctx context.Context, filter models.AuditLogFilter, max int) ([]models.AuditLog, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

var auditLogHeaders = []string{"timestamp", "userId", "userType", "email", "action", "resource", "resourceId", "ip", "userAgent", "changes"}

// AuditLogService exposes the audit trail to administrators.
type AuditLogService struct {
	repo     auditLogRepository
	renderer documentRenderer
	logger   *zap.Logger
}

// NewAuditLogService constructs an AuditLogService.
func NewAuditLogService(repo auditLogRepository, renderer documentRenderer, logger *zap.Logger) *AuditLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogService{repo: repo, renderer: renderer, logger: logger}
}

// List returns audit records plus pagination data.
func (s *AuditLogService) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, *models.Pagination, error) {
	filter.Normalize()
	filter.Action = models.AuditAction(strings.ToUpper(string(filter.Action)))
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list audit logs")
	}
	return entries, models.NewPagination(filter.ListQuery, total), nil
}

// ByUser lists the records produced by one user.
func (s *AuditLogService) ByUser(ctx context.Context, userID string, q models.ListQuery) ([]models.AuditLog, *models.Pagination, error) {
	return s.List(ctx, models.AuditLogFilter{ListQuery: q, UserID: userID})
}

// ByResource lists the records touching one resource kind.
func (s *AuditLogService) ByResource(ctx context.Context, resource string, q models.ListQuery) ([]models.AuditLog, *models.Pagination, error) {
	return s.List(ctx, models.AuditLogFilter{ListQuery: q, Resource: resource})
}

// Get returns a single record.
func (s *AuditLogService) Get(ctx context.Context, id string) (*models.AuditLog, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "audit log not found")
		}
		return nil, internalError(err, "failed to load audit log")
	}
	return entry, nil
}

// Export renders the filtered records as CSV or PDF.
func (s *AuditLogService) Export(ctx context.Context, filter models.AuditLogFilter, rawFormat string) (*export.Document, error) {
	format, err := parseExportFormat(rawFormat)
	if err != nil {
		return nil, err
	}
	filter.Action = models.AuditAction(strings.ToUpper(string(filter.Action)))
	entries, err := s.repo.Export(ctx, filter, MaxExportRows)
	if err != nil {
		return nil, internalError(err, "failed to export audit logs")
	}

	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]string{
			"timestamp":  exportTime(e.Timestamp),
			"userId":     e.UserID,
			"userType":   string(e.UserType),
			"email":      e.Email,
			"action":     string(e.Action),
			"resource":   e.Resource,
			"resourceId": deref(e.ResourceID),
			"ip":         deref(e.IP),
			"userAgent":  deref(e.UserAgent),
			"changes":    e.Changes.String(),
		})
	}
	return renderExport(s.renderer, format, export.Dataset{Headers: auditLogHeaders, Rows: rows}, "Audit Logs")
}

// Delete removes one record.
func (s *AuditLogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.FromDatabase(err, "audit log not found")
	}
	return nil
}

// Clear removes every record and returns the count.
func (s *AuditLogService) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, internalError(err, "failed to clear audit logs")
	}
	s.logger.Info("audit logs cleared", zap.Int64("deleted", n))
	return n, nil
}

// ClearByUser removes the records of one user and returns the count.
func (s *AuditLogService) ClearByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, internalError(err, "failed to clear audit logs")
	}
	s.logger.Info("audit logs cleared for user", zap.String("user_id", userID), zap.Int64("deleted", n))
	return n, nil
}
