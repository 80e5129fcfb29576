package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListByEnrollmentYear(ctx context.Context, year int, q models.ListQuery) ([]models.Student, int, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

var errStudentNotFound = appErrors.Clone(appErrors.ErrNotFound, "student not found")

// StudentService manages learner accounts.
type StudentService struct {
	repo       studentRepository
	validator  *validator.Validate
	logger     *zap.Logger
	saltRounds int
	now        func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger, saltRounds int) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if saltRounds == 0 {
		saltRounds = bcrypt.DefaultCost
	}
	return &StudentService{repo: repo, validator: validate, logger: logger, saltRounds: saltRounds, now: time.Now}
}

// List returns students plus pagination data.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	filter.Normalize()
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	return students, models.NewPagination(filter.ListQuery, total), nil
}

// ListByEnrollmentYear returns the students of one intake.
func (s *StudentService) ListByEnrollmentYear(ctx context.Context, year int, q models.ListQuery) ([]models.Student, *models.Pagination, error) {
	if year < 1900 || year > 2100 {
		return nil, nil, appErrors.Clone(appErrors.ErrBadRequest, "invalid enrollment year")
	}
	q.Normalize()
	students, total, err := s.repo.ListByEnrollmentYear(ctx, year, q)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	return students, models.NewPagination(q, total), nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errStudentNotFound
		}
		return nil, internalError(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. The enrollment year defaults to the current year.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid student payload")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err := conflictIf(exists, err, "email already used"); err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password, s.saltRounds)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          req.Email,
		PasswordHash:   hash,
		Phone:          normalizeOptional(req.Phone),
		DateOfBirth:    req.DateOfBirth,
		Address:        normalizeOptional(req.Address),
		EnrollmentYear: s.now().Year(),
		IsActive:       true,
	}
	if req.EnrollmentYear != nil {
		student.EnrollmentYear = *req.EnrollmentYear
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.FromDatabase(err, "failed to create student")
	}
	return student, nil
}

// Update applies a partial update.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, student.Email) {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err := conflictIf(exists, err, "email already used"); err != nil {
			return nil, err
		}
		student.Email = *req.Email
	}
	if req.FirstName != nil {
		student.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		student.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password, s.saltRounds)
		if err != nil {
			return nil, err
		}
		student.PasswordHash = hash
	}
	if req.Phone != nil {
		student.Phone = normalizeOptional(req.Phone)
	}
	if req.DateOfBirth != nil {
		student.DateOfBirth = req.DateOfBirth
	}
	if req.Address != nil {
		student.Address = normalizeOptional(req.Address)
	}
	if req.EnrollmentYear != nil {
		student.EnrollmentYear = *req.EnrollmentYear
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.FromDatabase(err, "student not found")
	}
	return student, nil
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.FromDatabase(err, "student not found")
	}
	return nil
}
