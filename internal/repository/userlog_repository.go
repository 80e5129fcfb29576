package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const userLogColumns = "id, user_id, user_type, email, ip, user_agent, login_time"

var userLogSorts = map[string]string{
	"loginTime": "login_time",
	"createdAt": "login_time",
	"email":     "email",
	"userType":  "user_type",
}

// UserLogRepository persists login records.
type UserLogRepository struct {
	db *sqlx.DB
}

// NewUserLogRepository constructs a UserLogRepository.
func NewUserLogRepository(db *sqlx.DB) *UserLogRepository {
	return &UserLogRepository{db: db}
}

// Create appends a login record.
func (r *UserLogRepository) Create(ctx context.Context, entry *models.UserLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.LoginTime.IsZero() {
		stamp(&entry.LoginTime, nil)
	}
	const query = `INSERT INTO user_logs (id, user_id, user_type, email, ip, user_agent, login_time)
        VALUES (:id, :user_id, :user_type, :email, :ip, :user_agent, :login_time)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create user log: %w", err)
	}
	return nil
}

// FindByID fetches a login record by ID.
func (r *UserLogRepository) FindByID(ctx context.Context, id string) (*models.UserLog, error) {
	query := fmt.Sprintf("SELECT %s FROM user_logs WHERE id = $1", userLogColumns)
	var entry models.UserLog
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns login records matching the filter together with the total count.
func (r *UserLogRepository) List(ctx context.Context, filter models.UserLogFilter) ([]models.UserLog, int, error) {
	b := userLogConditions(filter)
	entries := make([]models.UserLog, 0)
	total, err := selectPage(ctx, r.db, &entries, userLogColumns, "user_logs", b, orderAndPage(filter.ListQuery, userLogSorts, "login_time"))
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Export returns up to max records matching the filter, newest first.
func (r *UserLogRepository) Export(ctx context.Context, filter models.UserLogFilter, max int) ([]models.UserLog, error) {
	b := userLogConditions(filter)
	query := fmt.Sprintf("SELECT %s FROM user_logs%s ORDER BY login_time DESC LIMIT %d", userLogColumns, b.where(), max)
	entries := make([]models.UserLog, 0)
	if err := r.db.SelectContext(ctx, &entries, query, b.args...); err != nil {
		return nil, fmt.Errorf("export user logs: %w", err)
	}
	return entries, nil
}

// Delete removes a single login record.
func (r *UserLogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user log: %w", err)
	}
	return requireAffected(res, "delete user log")
}

// DeleteAll removes every login record and reports how many were removed.
func (r *UserLogRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_logs`)
	if err != nil {
		return 0, fmt.Errorf("clear user logs: %w", err)
	}
	return res.RowsAffected()
}

// DeleteByUser removes the login records of one user.
func (r *UserLogRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_logs WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear user logs for user: %w", err)
	}
	return res.RowsAffected()
}

func userLogConditions(filter models.UserLogFilter) *filterBuilder {
	b := &filterBuilder{}
	b.search(filter.Search, "email", "ip")
	b.between("login_time", filter.CreatedAfter, filter.CreatedBefore)
	if filter.UserID != "" {
		b.eq("user_id", filter.UserID)
	}
	if filter.UserType != "" {
		b.eq("user_type", filter.UserType)
	}
	b.contains("email", filter.Email)
	b.contains("ip", filter.IP)
	return b
}
