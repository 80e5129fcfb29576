package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/export"
)

type userLogRepository interface {
	FindByID(ctx context.Context, id string) (*models.UserLog, error)
	List(ctx context.Context, filter models.UserLogFilter) ([]models.UserLog, int, error)
	Export(ctx context.Context, filter models.UserLogFilter, max int) ([]models.UserLog, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

var userLogHeaders = []string{"loginTime", "userId", "userType", "email", "ip", "userAgent"}

// UserLogService exposes login history to administrators.
type UserLogService struct {
	repo     userLogRepository
	renderer documentRenderer
	logger   *zap.Logger
}

// NewUserLogService constructs a UserLogService.
func NewUserLogService(repo userLogRepository, renderer documentRenderer, logger *zap.Logger) *UserLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserLogService{repo: repo, renderer: renderer, logger: logger}
}

// List returns login records plus pagination data.
func (s *UserLogService) List(ctx context.Context, filter models.UserLogFilter) ([]models.UserLog, *models.Pagination, error) {
	filter.Normalize()
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list user logs")
	}
	return entries, models.NewPagination(filter.ListQuery, total), nil
}

// ByUser lists the logins of one user.
func (s *UserLogService) ByUser(ctx context.Context, userID string, q models.ListQuery) ([]models.UserLog, *models.Pagination, error) {
	return s.List(ctx, models.UserLogFilter{ListQuery: q, UserID: userID})
}

// Get returns a single record.
func (s *UserLogService) Get(ctx context.Context, id string) (*models.UserLog, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user log not found")
		}
		return nil, internalError(err, "failed to load user log")
	}
	return entry, nil
}

// Export renders the filtered records as CSV or PDF.
func (s *UserLogService) Export(ctx context.Context, filter models.UserLogFilter, rawFormat string) (*export.Document, error) {
	format, err := parseExportFormat(rawFormat)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.Export(ctx, filter, MaxExportRows)
	if err != nil {
		return nil, internalError(err, "failed to export user logs")
	}
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]string{
			"loginTime": exportTime(e.LoginTime),
			"userId":    e.UserID,
			"userType":  string(e.UserType),
			"email":     e.Email,
			"ip":        deref(e.IP),
			"userAgent": deref(e.UserAgent),
		})
	}
	return renderExport(s.renderer, format, export.Dataset{Headers: userLogHeaders, Rows: rows}, "User Logs")
}

// Delete removes one record.
func (s *UserLogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.FromDatabase(err, "user log not found")
	}
	return nil
}

// Clear removes every record and returns the count.
func (s *UserLogService) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, internalError(err, "failed to clear user logs")
	}
	s.logger.Info("user logs cleared", zap.Int64("deleted", n))
	return n, nil
}

// ClearByUser removes the logins of one user and returns the count.
func (s *UserLogService) ClearByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, internalError(err, "failed to clear user logs")
	}
	s.logger.Info("user logs cleared for user", zap.String("user_id", userID), zap.Int64("deleted", n))
	return n, nil
}
