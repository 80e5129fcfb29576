package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const permissionColumns = "id, name, resource, action, description, created_at, updated_at"

var permissionSorts = map[string]string{
	"name":      "name",
	"resource":  "resource",
	"action":    "action",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// PermissionRepository persists permissions.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository constructs a PermissionRepository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// FindByID fetches a permission by ID.
func (r *PermissionRepository) FindByID(ctx context.Context, id string) (*models.Permission, error) {
	query := fmt.Sprintf("SELECT %s FROM permissions WHERE id = $1", permissionColumns)
	var perm models.Permission
	if err := r.db.GetContext(ctx, &perm, query, id); err != nil {
		return nil, err
	}
	return &perm, nil
}

// FindByIDs returns the permissions whose IDs are in ids. Unknown IDs are skipped.
func (r *PermissionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Permission, error) {
	perms := make([]models.Permission, 0, len(ids))
	if len(ids) == 0 {
		return perms, nil
	}
	query := fmt.Sprintf("SELECT %s FROM permissions WHERE id = ANY($1) ORDER BY name ASC", permissionColumns)
	if err := r.db.SelectContext(ctx, &perms, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find permissions by ids: %w", err)
	}
	return perms, nil
}

// ExistsByName reports whether another permission already uses name.
func (r *PermissionRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return exists(ctx, r.db, "permissions", "name", name, excludeID)
}

// List returns permissions matching the filter together with the total count.
func (r *PermissionRepository) List(ctx context.Context, filter models.PermissionFilter) ([]models.Permission, int, error) {
	b := &filterBuilder{}
	b.search(filter.Search, "name", "resource", "action", "description")
	b.between("created_at", filter.CreatedAfter, filter.CreatedBefore)
	b.contains("name", filter.Name)
	b.contains("resource", filter.Resource)
	b.contains("action", filter.Action)
	b.contains("description", filter.Description)

	perms := make([]models.Permission, 0)
	total, err := selectPage(ctx, r.db, &perms, permissionColumns, "permissions", b, orderAndPage(filter.ListQuery, permissionSorts, "created_at"))
	if err != nil {
		return nil, 0, err
	}
	return perms, total, nil
}

// Create inserts a new permission.
func (r *PermissionRepository) Create(ctx context.Context, perm *models.Permission) error {
	if perm.ID == "" {
		perm.ID = uuid.NewString()
	}
	stamp(&perm.CreatedAt, &perm.UpdatedAt)
	const query = `INSERT INTO permissions (id, name, resource, action, description, created_at, updated_at)
        VALUES (:id, :name, :resource, :action, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, perm); err != nil {
		return fmt.Errorf("create permission: %w", err)
	}
	return nil
}

// Update persists all mutable permission fields.
func (r *PermissionRepository) Update(ctx context.Context, perm *models.Permission) error {
	perm.UpdatedAt = time.Now().UTC()
	const query = `UPDATE permissions SET name = :name, resource = :resource, action = :action, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, perm)
	if err != nil {
		return fmt.Errorf("update permission: %w", err)
	}
	return requireAffected(res, "update permission")
}

// Delete removes a permission. Roles still referencing it keep the dangling ID.
func (r *PermissionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	return requireAffected(res, "delete permission")
}
