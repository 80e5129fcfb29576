package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const adminColumns = "id, name, email, password_hash, role_id, is_active, created_at, updated_at"

var adminSorts = map[string]string{
	"name":      "name",
	"email":     "email",
	"isActive":  "is_active",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// AdminRepository persists admin accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByEmail fetches an admin by email, case-insensitively.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins WHERE email = $1 LIMIT 1", adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, normalizeEmail(email)); err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByID fetches an admin by ID.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins WHERE id = $1", adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		return nil, err
	}
	return &admin, nil
}

// ExistsByEmail reports whether another admin already uses email.
func (r *AdminRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return exists(ctx, r.db, "admins", "email", normalizeEmail(email), excludeID)
}

// List returns admins matching the filter together with the total count.
func (r *AdminRepository) List(ctx context.Context, filter models.AdminFilter) ([]models.Admin, int, error) {
	b := &filterBuilder{}
	b.search(filter.Search, "name", "email")
	b.between("created_at", filter.CreatedAfter, filter.CreatedBefore)
	b.contains("name", filter.Name)
	b.contains("email", filter.Email)
	if filter.RoleID != "" {
		b.eq("role_id", filter.RoleID)
	}
	if filter.IsActive != nil {
		b.eq("is_active", *filter.IsActive)
	}

	admins := make([]models.Admin, 0)
	total, err := selectPage(ctx, r.db, &admins, adminColumns, "admins", b, orderAndPage(filter.ListQuery, adminSorts, "created_at"))
	if err != nil {
		return nil, 0, err
	}
	return admins, total, nil
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	admin.Email = normalizeEmail(admin.Email)
	stamp(&admin.CreatedAt, &admin.UpdatedAt)
	const query = `INSERT INTO admins (id, name, email, password_hash, role_id, is_active, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :role_id, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// Update persists all mutable admin fields.
func (r *AdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	admin.Email = normalizeEmail(admin.Email)
	admin.UpdatedAt = time.Now().UTC()
	const query = `UPDATE admins SET name = :name, email = :email, password_hash = :password_hash, role_id = :role_id, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, admin)
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	return requireAffected(res, "update admin")
}

// UpdatePassword replaces the password hash of an admin.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE admins SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return requireAffected(res, "update admin password")
}

// Delete removes an admin.
func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	return requireAffected(res, "delete admin")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func exists(ctx context.Context, db *sqlx.DB, table, column string, value interface{}, excludeID string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = $1", table, column)
	args := []interface{}{value}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var found int
	if err := db.GetContext(ctx, &found, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check %s.%s: %w", table, column, err)
	}
	return true, nil
}
