package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type roleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Role, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, error)
	ListNames(ctx context.Context) ([]models.RoleName, error)
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id string) error
}

var (
	errRoleNotFound           = appErrors.Clone(appErrors.ErrNotFound, "role not found")
	errPermissionsNotFound    = appErrors.Clone(appErrors.ErrNotFound, "one or more permissions not found")
	errSystemRoleNotDeletable = appErrors.Clone(appErrors.ErrBadRequest, "system roles cannot be deleted")
	errSystemRoleKindLocked   = appErrors.Clone(appErrors.ErrBadRequest, "system role type cannot be changed")
)

// RoleService manages roles and their permission sets.
type RoleService struct {
	repo        roleRepository
	permissions permissionFinder
	validator   *validator.Validate
	cache       roleCache
	logger      *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(repo roleRepository, permissions permissionFinder, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{repo: repo, permissions: permissions, validator: validate, logger: logger}
}

// List returns roles plus pagination data.
func (s *RoleService) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, *models.Pagination, error) {
	filter.Normalize()
	roles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list roles")
	}
	return roles, models.NewPagination(filter.ListQuery, total), nil
}

// Names returns every role's id and name.
func (s *RoleService) Names(ctx context.Context) ([]models.RoleName, error) {
	names, err := s.repo.ListNames(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list role names")
	}
	return names, nil
}

// Get returns a role by id.
func (s *RoleService) Get(ctx context.Context, id string) (*models.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errRoleNotFound
		}
		return nil, internalError(err, "failed to load role")
	}
	return role, nil
}

// Create adds a role. Roles default to the custom kind.
func (s *RoleService) Create(ctx context.Context, req dto.CreateRoleRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid role payload")
	}
	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.ExistsByName(ctx, name, "")
	if err := conflictIf(exists, err, "role name already exists"); err != nil {
		return nil, err
	}
	permissionIDs, err := s.ensurePermissions(ctx, req.PermissionIDs)
	if err != nil {
		return nil, err
	}

	role := &models.Role{
		Name:          name,
		Description:   normalizeOptional(req.Description),
		PermissionIDs: permissionIDs,
		Kind:          models.RoleKindCustom,
	}
	if req.Type != "" {
		role.Kind = models.RoleKind(req.Type)
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, appErrors.FromDatabase(err, "failed to create role")
	}
	return role, nil
}

// UseCache sets the cache cleared when role permissions change.
func (s *RoleService) UseCache(c roleCache) {
	s.cache = c
}

// Update applies a partial update. A provided permission list replaces the current one.
func (s *RoleService) Update(ctx context.Context, id string, req dto.UpdateRoleRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid role payload")
	}
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != role.Name {
			exists, err := s.repo.ExistsByName(ctx, name, id)
			if err := conflictIf(exists, err, "role name already exists"); err != nil {
				return nil, err
			}
		}
		role.Name = name
	}
	if req.Description != nil {
		role.Description = normalizeOptional(req.Description)
	}
	if req.PermissionIDs != nil {
		permissionIDs, err := s.ensurePermissions(ctx, *req.PermissionIDs)
		if err != nil {
			return nil, err
		}
		role.PermissionIDs = permissionIDs
	}
	if req.Type != nil {
		kind := models.RoleKind(*req.Type)
		if role.Kind == models.RoleKindSystem && kind != models.RoleKindSystem {
			return nil, errSystemRoleKindLocked
		}
		role.Kind = kind
	}

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, appErrors.FromDatabase(err, "role not found")
	}
	invalidateRoles(ctx, s.cache)
	return role, nil
}

// Delete removes a custom role. System roles are protected.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	role, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanDelete(role) {
		return errSystemRoleNotDeletable
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.FromDatabase(err, "role not found")
	}
	invalidateRoles(ctx, s.cache)
	return nil
}

// ensurePermissions de-duplicates ids and checks that every one exists.
func (s *RoleService) ensurePermissions(ctx context.Context, ids []string) ([]string, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return unique, nil
	}

	found, err := s.permissions.FindByIDs(ctx, unique)
	if err != nil {
		return nil, internalError(err, "failed to load permissions")
	}
	if len(found) != len(unique) {
		return nil, errPermissionsNotFound
	}
	return unique, nil
}
