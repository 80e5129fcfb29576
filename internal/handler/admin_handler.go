package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type adminService interface {
	List(ctx context.Context, filter models.AdminFilter) ([]models.Admin, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Admin, error)
	Create(ctx context.Context, req dto.CreateAdminRequest) (*models.Admin, error)
	Update(ctx context.Context, id string, req dto.UpdateAdminRequest) (*models.Admin, error)
	Delete(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, id string, req dto.ChangePasswordRequest) error
}

// AdminHandler exposes admin account endpoints.
type AdminHandler struct {
	admins adminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admins adminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// List godoc
// @Summary List admins
// @Tags Admins
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name or email"
// @Param name query string false "Filter by name"
// @Param email query string false "Filter by email"
// @Param role query string false "Filter by role ID"
// @Param isActive query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sortBy query string false "Sort column"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	filter := models.AdminFilter{
		ListQuery: listQuery(c),
		Name:      strings.TrimSpace(c.Query("name")),
		Email:     strings.TrimSpace(c.Query("email")),
		RoleID:    c.Query("role"),
		IsActive:  boolQuery(c, "isActive"),
	}
	items, pagination, err := h.admins.List(c.Request.Context(), filter)
	page(c, items, pagination, err)
}

// Get godoc
// @Summary Get admin
// @Tags Admins
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admins/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	admin, err := h.admins.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, admin, "")
}

// Create godoc
// @Summary Create admin
// @Tags Admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admins [post]
func (h *AdminHandler) Create(c *gin.Context) {
	var req dto.CreateAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	admin, err := h.admins.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin, "admin created successfully")
}

// Update godoc
// @Summary Update admin
// @Tags Admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Param payload body dto.UpdateAdminRequest true "Admin payload"
// @Success 200 {object} response.Envelope
// @Router /admins/{id} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	var req dto.UpdateAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	admin, err := h.admins.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, admin, "admin updated successfully")
}

// Delete godoc
// @Summary Delete admin
// @Tags Admins
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Router /admins/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.admins.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "admin deleted successfully")
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Tags Admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ChangePasswordRequest true "Password payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admins/me/password [put]
func (h *AdminHandler) ChangePassword(c *gin.Context) {
	claims, ok := accessClaims(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admins.ChangePassword(c.Request.Context(), claims.ID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "password changed successfully")
}
