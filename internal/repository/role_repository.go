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

const roleColumns = "id, name, description, permission_ids, kind, created_at, updated_at"

var roleSorts = map[string]string{
	"name":      "name",
	"type":      "kind",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// RoleRepository persists roles and their permission references.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository constructs a RoleRepository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// FindByID fetches a role by ID.
func (r *RoleRepository) FindByID(ctx context.Context, id string) (*models.Role, error) {
	query := fmt.Sprintf("SELECT %s FROM roles WHERE id = $1", roleColumns)
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, id); err != nil {
		return nil, err
	}
	return &role, nil
}

// ExistsByName reports whether another role already uses name.
func (r *RoleRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return exists(ctx, r.db, "roles", "name", name, excludeID)
}

// List returns roles matching the filter together with the total count.
func (r *RoleRepository) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, error) {
	b := &filterBuilder{}
	b.search(filter.Search, "name", "description")
	b.between("created_at", filter.CreatedAfter, filter.CreatedBefore)
	b.contains("name", filter.Name)
	b.contains("description", filter.Description)
	if filter.Kind != "" {
		b.eq("kind", filter.Kind)
	}

	roles := make([]models.Role, 0)
	total, err := selectPage(ctx, r.db, &roles, roleColumns, "roles", b, orderAndPage(filter.ListQuery, roleSorts, "created_at"))
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// ListNames returns every role as an id/name pair ordered by name.
func (r *RoleRepository) ListNames(ctx context.Context) ([]models.RoleName, error) {
	names := make([]models.RoleName, 0)
	if err := r.db.SelectContext(ctx, &names, `SELECT id, name FROM roles ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list role names: %w", err)
	}
	return names, nil
}

// Create inserts a new role.
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	if role.PermissionIDs == nil {
		role.PermissionIDs = pq.StringArray{}
	}
	stamp(&role.CreatedAt, &role.UpdatedAt)
	const query = `INSERT INTO roles (id, name, description, permission_ids, kind, created_at, updated_at)
        VALUES (:id, :name, :description, :permission_ids, :kind, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, role); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// Update persists all mutable role fields.
func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	if role.PermissionIDs == nil {
		role.PermissionIDs = pq.StringArray{}
	}
	role.UpdatedAt = time.Now().UTC()
	const query = `UPDATE roles SET name = :name, description = :description, permission_ids = :permission_ids, kind = :kind, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return requireAffected(res, "update role")
}

// Delete removes a role.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return requireAffected(res, "delete role")
}
