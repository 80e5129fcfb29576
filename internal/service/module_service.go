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

type moduleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
	List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, int, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id string) error
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

var errModuleNotFound = appErrors.Clone(appErrors.ErrNotFound, "module not found")

// ModuleService manages course modules.
type ModuleService struct {
	repo      moduleRepository
	courses   courseFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService constructs a ModuleService.
func NewModuleService(repo moduleRepository, courses courseFinder, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// List returns modules plus pagination data, optionally scoped to a course.
func (s *ModuleService) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, *models.Pagination, error) {
	filter.Normalize()
	modules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list modules")
	}
	return modules, models.NewPagination(filter.ListQuery, total), nil
}

// Get returns a module by id.
func (s *ModuleService) Get(ctx context.Context, id string) (*models.Module, error) {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errModuleNotFound
		}
		return nil, internalError(err, "failed to load module")
	}
	return module, nil
}

// Create adds a module to an existing course.
func (s *ModuleService) Create(ctx context.Context, req dto.CreateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid module payload")
	}
	if err := s.ensureCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}
	module := &models.Module{Name: strings.TrimSpace(req.Name), CourseID: req.CourseID}
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, appErrors.FromDatabase(err, "failed to create module")
	}
	return module, nil
}

// Update applies a partial update. Moving a module requires the target course to exist.
func (s *ModuleService) Update(ctx context.Context, id string, req dto.UpdateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid module payload")
	}
	module, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CourseID != nil && *req.CourseID != module.CourseID {
		if err := s.ensureCourse(ctx, *req.CourseID); err != nil {
			return nil, err
		}
		module.CourseID = *req.CourseID
	}
	if req.Name != nil {
		module.Name = strings.TrimSpace(*req.Name)
	}
	if err := s.repo.Update(ctx, module); err != nil {
		return nil, appErrors.FromDatabase(err, "module not found")
	}
	return module, nil
}

// Delete removes a module.
func (s *ModuleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.FromDatabase(err, "module not found")
	}
	return nil
}

func (s *ModuleService) ensureCourse(ctx context.Context, courseID string) error {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errCourseNotFound
		}
		return internalError(err, "failed to load course")
	}
	return nil
}
