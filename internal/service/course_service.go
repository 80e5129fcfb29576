package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/storage"
)

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByTitle(ctx context.Context, title, excludeID string) (bool, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type adminFinder interface {
	FindByID(ctx context.Context, id string) (*models.Admin, error)
}

type imageStore interface {
	SaveBase64(data string) (string, error)
	Delete(name string) error
}

const courseTitleTaken = "course with this title already exists"

var (
	errCourseNotFound     = appErrors.Clone(appErrors.ErrNotFound, "course not found")
	errCourseAdminMissing = appErrors.Clone(appErrors.ErrNotFound, "admin not found")
)

// CourseService manages the course catalogue and course images.
type CourseService struct {
	repo      courseRepository
	admins    adminFinder
	images    imageStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService. images may be nil, in which case image
// values are stored verbatim.
func NewCourseService(repo courseRepository, admins adminFinder, images imageStore, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, admins: admins, images: images, validator: validate, logger: logger}
}

// List returns courses plus pagination data.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	filter.Normalize()
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list courses")
	}
	return courses, models.NewPagination(filter.ListQuery, total), nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errCourseNotFound
		}
		return nil, internalError(err, "failed to load course")
	}
	return course, nil
}

// Create adds a course. Inline base64 images are written to storage and replaced by their name.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid course payload")
	}
	title := strings.TrimSpace(req.Title)
	exists, err := s.repo.ExistsByTitle(ctx, title, "")
	if err := conflictIf(exists, err, courseTitleTaken); err != nil {
		return nil, err
	}
	adminID := normalizeOptional(req.AdminID)
	if err := s.ensureAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	image, err := s.storeImage(req.Image)
	if err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:      title,
		Overview:   req.Overview,
		Resources:  req.Resources,
		Image:      image,
		Categories: cleanCategories(req.Categories),
		Rating:     req.Rating,
		Minute:     req.Minute,
		Price:      req.Price,
		AdminID:    adminID,
		Level:      courseLevel(req.Level),
		IsActive:   true,
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, course); err != nil {
		s.discardImage(image, req.Image)
		return nil, appErrors.FromDatabase(err, "failed to create course")
	}
	return course, nil
}

// Update applies a partial update. A new inline image replaces and deletes the previous one.
func (s *CourseService) Update(ctx context.Context, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid course payload")
	}
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title != course.Title {
			exists, err := s.repo.ExistsByTitle(ctx, title, id)
			if err := conflictIf(exists, err, courseTitleTaken); err != nil {
				return nil, err
			}
		}
		course.Title = title
	}
	if req.AdminID != nil {
		adminID := normalizeOptional(req.AdminID)
		if err := s.ensureAdmin(ctx, adminID); err != nil {
			return nil, err
		}
		course.AdminID = adminID
	}
	if req.Overview != nil {
		course.Overview = *req.Overview
	}
	if req.Resources != nil {
		course.Resources = *req.Resources
	}
	if req.Categories != nil {
		course.Categories = cleanCategories(*req.Categories)
	}
	if req.Rating != nil {
		course.Rating = req.Rating
	}
	if req.Minute != nil {
		course.Minute = req.Minute
	}
	if req.Price != nil {
		course.Price = req.Price
	}
	if req.Level != nil {
		course.Level = courseLevel(req.Level)
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	previousImage := course.Image
	if req.Image != nil {
		image, err := s.storeImage(*req.Image)
		if err != nil {
			return nil, err
		}
		course.Image = image
	}

	if err := s.repo.Update(ctx, course); err != nil {
		if req.Image != nil {
			s.discardImage(course.Image, *req.Image)
		}
		return nil, appErrors.FromDatabase(err, "course not found")
	}
	if req.Image != nil && course.Image != previousImage {
		s.removeImage(previousImage)
	}
	return course, nil
}

// Delete removes a course, its modules and its stored image.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	course, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.FromDatabase(err, "course not found")
	}
	s.removeImage(course.Image)
	return nil
}

func (s *CourseService) ensureAdmin(ctx context.Context, adminID *string) error {
	if adminID == nil {
		return nil
	}
	if _, err := s.admins.FindByID(ctx, *adminID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errCourseAdminMissing
		}
		return internalError(err, "failed to load admin")
	}
	return nil
}

// maxImageRef bounds image values kept as given. Inline images are bounded by the store.
const maxImageRef = 500

func (s *CourseService) storeImage(value string) (string, error) {
	if s.images == nil || !storage.IsBase64Image(value) {
		if len(value) > maxImageRef {
			return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image must be at most %d characters", maxImageRef))
		}
		return value, nil
	}
	name, err := s.images.SaveBase64(value)
	switch {
	case err == nil:
		return name, nil
	case errors.Is(err, storage.ErrImageTooLarge):
		return "", appErrors.Clone(appErrors.ErrBadRequest, "image too large")
	case errors.Is(err, storage.ErrInvalidImage):
		return "", appErrors.Clone(appErrors.ErrBadRequest, "invalid image data")
	default:
		return "", internalError(err, "failed to store image")
	}
}

// discardImage removes an image stored for a write that did not commit.
func (s *CourseService) discardImage(stored, submitted string) {
	if stored != submitted {
		s.removeImage(stored)
	}
}

func (s *CourseService) removeImage(name string) {
	if s.images == nil || name == "" {
		return
	}
	if err := s.images.Delete(name); err != nil {
		s.logger.Warn("failed to delete course image", zap.String("image", name), zap.Error(err))
	}
}

func courseLevel(level *string) *models.CourseLevel {
	if level == nil || *level == "" {
		return nil
	}
	l := models.CourseLevel(*level)
	return &l
}

func cleanCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
