package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
)

func newTestCache(t *testing.T, metrics *MetricsService) *CacheService {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheService(repository.NewCacheRepository(client, "test:"), metrics, time.Minute, nil, true)
}

func TestCacheServiceDisabledAlwaysMisses(t *testing.T) {
	svc := NewCacheService(nil, nil, 0, nil, true)
	assert.False(t, svc.Enabled())

	var out string
	hit, err := svc.Get(context.Background(), "k", &out)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	assert.NoError(t, svc.Invalidate(context.Background(), "*"))
}

func TestCacheServiceCountsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	svc := newTestCache(t, metrics)
	ctx := context.Background()

	var out int
	hit, err := svc.Get(ctx, "n", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "n", 7, 0))
	hit, err = svc.Get(ctx, "n", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 7, out)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestResolverCacheIsClearedByRoleUpdate(t *testing.T) {
	cache := newTestCache(t, nil)
	perms := newMemPermissions(
		&models.Permission{ID: permReadID, Name: "course.read"},
		&models.Permission{ID: permCreateID, Name: "course.create"},
	)
	roles := newMemRoles(&models.Role{ID: "editor", Name: "Editor", PermissionIDs: []string{permReadID}, Kind: models.RoleKindCustom})

	resolver := NewPermissionResolver(roles, perms, nil)
	resolver.UseCache(cache)
	roleSvc := NewRoleService(roles, perms, nil, nil)
	roleSvc.UseCache(cache)
	ctx := context.Background()

	roleID := "editor"
	admin := &models.Admin{ID: "a1", RoleID: &roleID}
	got, err := resolver.Resolve(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"course.read"}, got.Permissions)

	// Direct store writes bypass invalidation, so the cached entry still wins.
	roles.items["editor"].PermissionIDs = []string{permCreateID}
	got, err = resolver.Resolve(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"course.read"}, got.Permissions)

	next := []string{permReadID, permCreateID}
	_, err = roleSvc.Update(ctx, "editor", dto.UpdateRoleRequest{PermissionIDs: &next})
	require.NoError(t, err)

	got, err = resolver.Resolve(ctx, admin)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"course.read", "course.create"}, got.Permissions)
}

type racingRoles struct {
	*memRoles
	onLoad func()
}

func (r racingRoles) FindByID(ctx context.Context, id string) (*models.Role, error) {
	role, err := r.memRoles.FindByID(ctx, id)
	r.onLoad()
	return role, err
}

func TestResolverSkipsCacheWriteAfterConcurrentInvalidation(t *testing.T) {
	cache := newTestCache(t, nil)
	ctx := context.Background()
	perms := newMemPermissions(&models.Permission{ID: permReadID, Name: "course.read"})
	roles := racingRoles{
		memRoles: newMemRoles(&models.Role{ID: "editor", Name: "Editor", PermissionIDs: []string{permReadID}}),
		onLoad:   func() { invalidateRoles(ctx, cache) },
	}
	resolver := NewPermissionResolver(roles, perms, nil)
	resolver.UseCache(cache)

	roleID := "editor"
	got, err := resolver.Resolve(ctx, &models.Admin{ID: "a1", RoleID: &roleID})
	require.NoError(t, err)
	assert.Equal(t, []string{"course.read"}, got.Permissions)

	var cached ResolvedRole
	hit, err := cache.Get(ctx, roleCacheKey("editor"), &cached)
	require.NoError(t, err)
	assert.False(t, hit)

	roles.onLoad = func() {}
	resolver = NewPermissionResolver(roles, perms, nil)
	resolver.UseCache(cache)
	_, err = resolver.Resolve(ctx, &models.Admin{ID: "a1", RoleID: &roleID})
	require.NoError(t, err)
	hit, err = cache.Get(ctx, roleCacheKey("editor"), &cached)
	require.NoError(t, err)
	assert.True(t, hit)
}
