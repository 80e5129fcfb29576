package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type adminRepository interface {
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	List(ctx context.Context, filter models.AdminFilter) ([]models.Admin, int, error)
	Create(ctx context.Context, admin *models.Admin) error
	Update(ctx context.Context, admin *models.Admin) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

var errAdminNotFound = appErrors.Clone(appErrors.ErrNotFound, "admin not found")

// AdminService manages back-office accounts.
type AdminService struct {
	repo       adminRepository
	roles      roleFinder
	validator  *validator.Validate
	logger     *zap.Logger
	saltRounds int
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo adminRepository, roles roleFinder, validate *validator.Validate, logger *zap.Logger, saltRounds int) *AdminService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if saltRounds == 0 {
		saltRounds = bcrypt.DefaultCost
	}
	return &AdminService{repo: repo, roles: roles, validator: validate, logger: logger, saltRounds: saltRounds}
}

// List returns admins plus pagination data.
func (s *AdminService) List(ctx context.Context, filter models.AdminFilter) ([]models.Admin, *models.Pagination, error) {
	filter.Normalize()
	admins, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list admins")
	}
	return admins, models.NewPagination(filter.ListQuery, total), nil
}

// Get returns an admin by id.
func (s *AdminService) Get(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errAdminNotFound
		}
		return nil, internalError(err, "failed to load admin")
	}
	return admin, nil
}

// Create registers a new admin with a hashed password.
func (s *AdminService) Create(ctx context.Context, req dto.CreateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid admin payload")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err := conflictIf(exists, err, "email already used"); err != nil {
		return nil, err
	}
	roleID := normalizeOptional(req.RoleID)
	if err := s.ensureRole(ctx, roleID); err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password, s.saltRounds)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		RoleID:       roleID,
		IsActive:     true,
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, appErrors.FromDatabase(err, "failed to create admin")
	}
	return admin, nil
}

// Update applies a partial update. A new password is re-hashed.
func (s *AdminService) Update(ctx context.Context, id string, req dto.UpdateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid admin payload")
	}
	admin, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, admin.Email) {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err := conflictIf(exists, err, "email already used"); err != nil {
			return nil, err
		}
		admin.Email = *req.Email
	}
	if req.RoleID != nil {
		roleID := normalizeOptional(req.RoleID)
		if err := s.ensureRole(ctx, roleID); err != nil {
			return nil, err
		}
		admin.RoleID = roleID
	}
	if req.Name != nil {
		admin.Name = strings.TrimSpace(*req.Name)
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password, s.saltRounds)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = hash
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, admin); err != nil {
		return nil, appErrors.FromDatabase(err, "admin not found")
	}
	return admin, nil
}

// Delete removes an admin.
func (s *AdminService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.FromDatabase(err, "admin not found")
	}
	return nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *AdminService) ChangePassword(ctx context.Context, id string, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidator(err, "invalid password payload")
	}
	admin, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrBadRequest, "old password is incorrect")
	}
	hash, err := hashPassword(req.NewPassword, s.saltRounds)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return appErrors.FromDatabase(err, "admin not found")
	}
	s.logger.Info("admin password changed", zap.String("admin_id", id))
	return nil
}

func (s *AdminService) ensureRole(ctx context.Context, roleID *string) error {
	if roleID == nil {
		return nil
	}
	if _, err := s.roles.FindByID(ctx, *roleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return internalError(err, "failed to load role")
	}
	return nil
}
