package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const moduleColumns = "id, name, course_id, created_at, updated_at"

var moduleSorts = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// ModuleRepository persists course modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs a ModuleRepository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// FindByID fetches a module by ID.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.Module, error) {
	query := fmt.Sprintf("SELECT %s FROM modules WHERE id = $1", moduleColumns)
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		return nil, err
	}
	return &module, nil
}

// List returns modules matching the filter together with the total count.
func (r *ModuleRepository) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, int, error) {
	b := &filterBuilder{}
	b.search(filter.Search, "name")
	b.between("created_at", filter.CreatedAfter, filter.CreatedBefore)
	if filter.CourseID != "" {
		b.eq("course_id", filter.CourseID)
	}

	modules := make([]models.Module, 0)
	total, err := selectPage(ctx, r.db, &modules, moduleColumns, "modules", b, orderAndPage(filter.ListQuery, moduleSorts, "created_at"))
	if err != nil {
		return nil, 0, err
	}
	return modules, total, nil
}

// Create inserts a new module.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	stamp(&module.CreatedAt, &module.UpdatedAt)
	const query = `INSERT INTO modules (id, name, course_id, created_at, updated_at) VALUES (:id, :name, :course_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Update persists all mutable module fields.
func (r *ModuleRepository) Update(ctx context.Context, module *models.Module) error {
	module.UpdatedAt = time.Now().UTC()
	const query = `UPDATE modules SET name = :name, course_id = :course_id, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, module)
	if err != nil {
		return fmt.Errorf("update module: %w", err)
	}
	return requireAffected(res, "update module")
}

// Delete removes a module.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	return requireAffected(res, "delete module")
}
