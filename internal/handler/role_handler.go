package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type roleService interface {
	List(ctx context.Context, filter models.RoleFilter) ([]models.Role, *models.Pagination, error)
	Names(ctx context.Context) ([]models.RoleName, error)
	Get(ctx context.Context, id string) (*models.Role, error)
	Create(ctx context.Context, req dto.CreateRoleRequest) (*models.Role, error)
	Update(ctx context.Context, id string, req dto.UpdateRoleRequest) (*models.Role, error)
	Delete(ctx context.Context, id string) error
}

type permissionService interface {
	List(ctx context.Context, filter models.PermissionFilter) ([]models.Permission, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Permission, error)
	Create(ctx context.Context, req dto.CreatePermissionRequest) (*models.Permission, error)
	Update(ctx context.Context, id string, req dto.UpdatePermissionRequest) (*models.Permission, error)
	Delete(ctx context.Context, id string) error
}

// RoleHandler exposes role and permission management.
type RoleHandler struct {
	roles       roleService
	permissions permissionService
}

// NewRoleHandler constructs RoleHandler.
func NewRoleHandler(roles roleService, permissions permissionService) *RoleHandler {
	return &RoleHandler{roles: roles, permissions: permissions}
}

// ListRoles godoc
// @Summary List roles
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Param name query string false "Filter by name"
// @Param type query string false "system or custom"
// @Success 200 {object} response.Envelope
// @Router /roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	filter := models.RoleFilter{
		ListQuery:   listQuery(c),
		Name:        strings.TrimSpace(c.Query("name")),
		Description: strings.TrimSpace(c.Query("description")),
		Kind:        models.RoleKind(c.Query("type")),
	}
	items, pagination, err := h.roles.List(c.Request.Context(), filter)
	page(c, items, pagination, err)
}

// RoleNames godoc
// @Summary List role names
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /roles/names [get]
func (h *RoleHandler) RoleNames(c *gin.Context) {
	names, err := h.roles.Names(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, names, "")
}

// GetRole godoc
// @Summary Get role
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Success 200 {object} response.Envelope
// @Router /roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	role, err := h.roles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, role, "")
}

// CreateRole godoc
// @Summary Create role
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateRoleRequest true "Role payload"
// @Success 201 {object} response.Envelope
// @Router /roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req dto.CreateRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roles.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, role, "role created successfully")
}

// UpdateRole godoc
// @Summary Update role
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Param payload body dto.UpdateRoleRequest true "Role payload"
// @Success 200 {object} response.Envelope
// @Router /roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	var req dto.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roles.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, role, "role updated successfully")
}

// DeleteRole godoc
// @Summary Delete role
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	if err := h.roles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "role deleted successfully")
}

// ListPermissions godoc
// @Summary List permissions
// @Tags Permissions
// @Produce json
// @Security BearerAuth
// @Param resource query string false "Filter by resource"
// @Param action query string false "Filter by action"
// @Success 200 {object} response.Envelope
// @Router /permissions [get]
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	filter := models.PermissionFilter{
		ListQuery:   listQuery(c),
		Name:        strings.TrimSpace(c.Query("name")),
		Resource:    strings.TrimSpace(c.Query("resource")),
		Action:      strings.TrimSpace(c.Query("action")),
		Description: strings.TrimSpace(c.Query("description")),
	}
	items, pagination, err := h.permissions.List(c.Request.Context(), filter)
	page(c, items, pagination, err)
}

// GetPermission godoc
// @Summary Get permission
// @Tags Permissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Permission ID"
// @Success 200 {object} response.Envelope
// @Router /permissions/{id} [get]
func (h *RoleHandler) GetPermission(c *gin.Context) {
	perm, err := h.permissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, perm, "")
}

// CreatePermission godoc
// @Summary Create permission
// @Tags Permissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreatePermissionRequest true "Permission payload"
// @Success 201 {object} response.Envelope
// @Router /permissions [post]
func (h *RoleHandler) CreatePermission(c *gin.Context) {
	var req dto.CreatePermissionRequest
	if !bindJSON(c, &req) {
		return
	}
	perm, err := h.permissions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, perm, "permission created successfully")
}

// UpdatePermission godoc
// @Summary Update permission
// @Tags Permissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Permission ID"
// @Param payload body dto.UpdatePermissionRequest true "Permission payload"
// @Success 200 {object} response.Envelope
// @Router /permissions/{id} [put]
func (h *RoleHandler) UpdatePermission(c *gin.Context) {
	var req dto.UpdatePermissionRequest
	if !bindJSON(c, &req) {
		return
	}
	perm, err := h.permissions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, perm, "permission updated successfully")
}

// DeletePermission godoc
// @Summary Delete permission
// @Tags Permissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Permission ID"
// @Success 200 {object} response.Envelope
// @Router /permissions/{id} [delete]
func (h *RoleHandler) DeletePermission(c *gin.Context) {
	if err := h.permissions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "permission deleted successfully")
}
