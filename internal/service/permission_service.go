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

type permissionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Permission, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	List(ctx context.Context, filter models.PermissionFilter) ([]models.Permission, int, error)
	Create(ctx context.Context, perm *models.Permission) error
	Update(ctx context.Context, perm *models.Permission) error
	Delete(ctx context.Context, id string) error
}

var errPermissionNotFound = appErrors.Clone(appErrors.ErrNotFound, "permission not found")

// PermissionService manages the permission catalogue.
type PermissionService struct {
	repo      permissionRepository
	validator *validator.Validate
	cache     roleCache
	logger    *zap.Logger
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(repo permissionRepository, validate *validator.Validate, logger *zap.Logger) *PermissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{repo: repo, validator: validate, logger: logger}
}

// List returns permissions plus pagination data.
func (s *PermissionService) List(ctx context.Context, filter models.PermissionFilter) ([]models.Permission, *models.Pagination, error) {
	filter.Normalize()
	perms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list permissions")
	}
	return perms, models.NewPagination(filter.ListQuery, total), nil
}

// Get returns a permission by id.
func (s *PermissionService) Get(ctx context.Context, id string) (*models.Permission, error) {
	perm, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errPermissionNotFound
		}
		return nil, internalError(err, "failed to load permission")
	}
	return perm, nil
}

// Create adds a permission.
func (s *PermissionService) Create(ctx context.Context, req dto.CreatePermissionRequest) (*models.Permission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid permission payload")
	}
	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.ExistsByName(ctx, name, "")
	if err := conflictIf(exists, err, "permission name already exists"); err != nil {
		return nil, err
	}

	perm := &models.Permission{
		Name:        name,
		Resource:    strings.TrimSpace(req.Resource),
		Action:      strings.TrimSpace(req.Action),
		Description: normalizeOptional(req.Description),
	}
	if err := s.repo.Create(ctx, perm); err != nil {
		return nil, appErrors.FromDatabase(err, "failed to create permission")
	}
	return perm, nil
}

// UseCache sets the cache cleared when a permission is renamed or removed.
func (s *PermissionService) UseCache(c roleCache) {
	s.cache = c
}

// Update applies a partial update.
func (s *PermissionService) Update(ctx context.Context, id string, req dto.UpdatePermissionRequest) (*models.Permission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid permission payload")
	}
	perm, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != perm.Name {
			exists, err := s.repo.ExistsByName(ctx, name, id)
			if err := conflictIf(exists, err, "permission name already exists"); err != nil {
				return nil, err
			}
		}
		perm.Name = name
	}
	if req.Resource != nil {
		perm.Resource = strings.TrimSpace(*req.Resource)
	}
	if req.Action != nil {
		perm.Action = strings.TrimSpace(*req.Action)
	}
	if req.Description != nil {
		perm.Description = normalizeOptional(req.Description)
	}

	if err := s.repo.Update(ctx, perm); err != nil {
		return nil, appErrors.FromDatabase(err, "permission not found")
	}
	invalidateRoles(ctx, s.cache)
	return perm, nil
}

// Delete removes a permission.
func (s *PermissionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.FromDatabase(err, "permission not found")
	}
	invalidateRoles(ctx, s.cache)
	return nil
}
