package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type roleFinder interface {
	FindByID(ctx context.Context, id string) (*models.Role, error)
}

type permissionFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Permission, error)
}

const (
	roleCachePattern  = "rbac:role:*"
	roleGenerationKey = "rbac:generation"
)

func roleCacheKey(id string) string {
	return "rbac:role:" + id
}

// roleCache is the cache the resolver reads through and the role services clear.
type roleCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// ResolvedRole is the role name and flattened permission names of an admin.
type ResolvedRole struct {
	RoleName    *string  `json:"roleName"`
	Permissions []string `json:"permissions"`
}

// PermissionResolver flattens an admin's role into permission names.
type PermissionResolver struct {
	roles       roleFinder
	permissions permissionFinder
	cache       roleCache
	logger      *zap.Logger
}

// NewPermissionResolver constructs a PermissionResolver.
func NewPermissionResolver(roles roleFinder, permissions permissionFinder, logger *zap.Logger) *PermissionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionResolver{roles: roles, permissions: permissions, logger: logger}
}

// UseCache makes Resolve read through c, keyed by role ID.
func (r *PermissionResolver) UseCache(c roleCache) {
	r.cache = c
}

// Resolve returns the admin's role name and permission names. Admins without a role, or
// whose role no longer exists, resolve to no role and no permissions. Permission IDs that
// no longer exist are skipped.
func (r *PermissionResolver) Resolve(ctx context.Context, admin *models.Admin) (ResolvedRole, error) {
	empty := ResolvedRole{Permissions: []string{}}
	if admin == nil || admin.RoleID == nil || *admin.RoleID == "" {
		return empty, nil
	}

	roleID := *admin.RoleID
	var generation string
	if r.cache != nil {
		var cached ResolvedRole
		if hit, _ := r.cache.Get(ctx, roleCacheKey(roleID), &cached); hit {
			return cached, nil
		}
		generation = cacheGeneration(ctx, r.cache)
	}

	role, err := r.roles.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("admin references missing role", zap.String("admin_id", admin.ID), zap.String("role_id", *admin.RoleID))
			return empty, nil
		}
		return ResolvedRole{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role")
	}

	perms, err := r.permissions.FindByIDs(ctx, role.PermissionIDs)
	if err != nil {
		return ResolvedRole{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load permissions")
	}

	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	name := role.Name
	resolved := ResolvedRole{RoleName: &name, Permissions: names}
	// A role or permission change since the lookup started bumps the generation; skip the stale write.
	if r.cache != nil && cacheGeneration(ctx, r.cache) == generation {
		_ = r.cache.Set(ctx, roleCacheKey(roleID), resolved, 0)
	}
	return resolved, nil
}

// CanDelete reports whether a role may be removed.
func CanDelete(role *models.Role) bool {
	return role != nil && role.Kind != models.RoleKindSystem
}

func cacheGeneration(ctx context.Context, c roleCache) string {
	var generation string
	if hit, err := c.Get(ctx, roleGenerationKey, &generation); err != nil || !hit {
		return ""
	}
	return generation
}

// invalidateRoles bumps the generation, then clears every cached resolution.
func invalidateRoles(ctx context.Context, c roleCache) {
	if c == nil {
		return
	}
	_ = c.Set(ctx, roleGenerationKey, uuid.NewString(), 0)
	_ = c.Invalidate(ctx, roleCachePattern)
}
