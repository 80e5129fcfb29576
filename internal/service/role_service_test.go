package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

const (
	permReadID   = "11111111-1111-4111-8111-111111111111"
	permCreateID = "22222222-2222-4222-8222-222222222222"
	permGhostID  = "33333333-3333-4333-8333-333333333333"
)

func newTestRoleService() (*RoleService, *memRoles) {
	perms := newMemPermissions(
		&models.Permission{ID: permReadID, Name: "course.read"},
		&models.Permission{ID: permCreateID, Name: "course.create"},
	)
	roles := newMemRoles(&models.Role{ID: "sys", Name: "Super Admin", Kind: models.RoleKindSystem})
	return NewRoleService(roles, perms, nil, nil), roles
}

func TestRoleServiceCreate(t *testing.T) {
	svc, _ := newTestRoleService()
	ctx := context.Background()

	role, err := svc.Create(ctx, dto.CreateRoleRequest{Name: "Editor", PermissionIDs: []string{permReadID, permCreateID, permReadID}})
	require.NoError(t, err)
	assert.Equal(t, models.RoleKindCustom, role.Kind)
	assert.Equal(t, []string{permReadID, permCreateID}, []string(role.PermissionIDs))

	_, err = svc.Create(ctx, dto.CreateRoleRequest{Name: "Editor"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Create(ctx, dto.CreateRoleRequest{Name: "Ghosts", PermissionIDs: []string{permGhostID}})
	require.Error(t, err)
	assert.Equal(t, "one or more permissions not found", appErrors.FromError(err).Message)
}

func TestRoleServiceUpdateReplacesPermissions(t *testing.T) {
	svc, repo := newTestRoleService()
	ctx := context.Background()
	role, err := svc.Create(ctx, dto.CreateRoleRequest{Name: "Editor", PermissionIDs: []string{permReadID}})
	require.NoError(t, err)

	next := []string{permCreateID}
	_, err = svc.Update(ctx, role.ID, dto.UpdateRoleRequest{PermissionIDs: &next})
	require.NoError(t, err)
	assert.Equal(t, []string{permCreateID}, []string(repo.items[role.ID].PermissionIDs))

	name := "Super Admin"
	_, err = svc.Update(ctx, role.ID, dto.UpdateRoleRequest{Name: &name})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestRoleServiceDeleteProtectsSystemRoles(t *testing.T) {
	svc, repo := newTestRoleService()
	ctx := context.Background()

	err := svc.Delete(ctx, "sys")
	require.Error(t, err)
	assert.Equal(t, "system roles cannot be deleted", appErrors.FromError(err).Message)
	assert.Contains(t, repo.items, "sys")

	custom, err := svc.Create(ctx, dto.CreateRoleRequest{Name: "Temp"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, custom.ID))
	assert.ErrorIs(t, svc.Delete(ctx, custom.ID), appErrors.ErrNotFound)
}

func TestRoleServiceKeepsSystemRolesSystem(t *testing.T) {
	svc, repo := newTestRoleService()
	ctx := context.Background()

	custom := string(models.RoleKindCustom)
	_, err := svc.Update(ctx, "sys", dto.UpdateRoleRequest{Type: &custom})
	require.Error(t, err)
	assert.Equal(t, "system role type cannot be changed", appErrors.FromError(err).Message)
	assert.Equal(t, models.RoleKindSystem, repo.items["sys"].Kind)
	assert.Error(t, svc.Delete(ctx, "sys"))

	system := string(models.RoleKindSystem)
	_, err = svc.Update(ctx, "sys", dto.UpdateRoleRequest{Type: &system})
	assert.NoError(t, err)
}

func TestPermissionServiceCRUD(t *testing.T) {
	repo := newMemPermissions()
	svc := NewPermissionService(repo, nil, nil)
	ctx := context.Background()

	perm, err := svc.Create(ctx, dto.CreatePermissionRequest{Name: "course.export", Resource: "course", Action: "export"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, dto.CreatePermissionRequest{Name: "course.export", Resource: "course", Action: "export"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	desc := "Export courses"
	updated, err := svc.Update(ctx, perm.ID, dto.UpdatePermissionRequest{Description: &desc})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)

	require.NoError(t, svc.Delete(ctx, perm.ID))
	_, err = svc.Get(ctx, perm.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
