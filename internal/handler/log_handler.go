package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/export"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type auditLogService interface {
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, *models.Pagination, error)
	ByUser(ctx context.Context, userID string, q models.ListQuery) ([]models.AuditLog, *models.Pagination, error)
	ByResource(ctx context.Context, resource string, q models.ListQuery) ([]models.AuditLog, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.AuditLog, error)
	Export(ctx context.Context, filter models.AuditLogFilter, rawFormat string) (*export.Document, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int64, error)
	ClearByUser(ctx context.Context, userID string) (int64, error)
}

type userLogService interface {
	List(ctx context.Context, filter models.UserLogFilter) ([]models.UserLog, *models.Pagination, error)
	ByUser(ctx context.Context, userID string, q models.ListQuery) ([]models.UserLog, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.UserLog, error)
	Export(ctx context.Context, filter models.UserLogFilter, rawFormat string) (*export.Document, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int64, error)
	ClearByUser(ctx context.Context, userID string) (int64, error)
}

type clearedResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

// LogHandler exposes the audit trail and login history.
type LogHandler struct {
	audits auditLogService
	logins userLogService
}

// NewLogHandler constructs LogHandler.
func NewLogHandler(audits auditLogService, logins userLogService) *LogHandler {
	return &LogHandler{audits: audits, logins: logins}
}

func auditFilter(c *gin.Context) models.AuditLogFilter {
	return models.AuditLogFilter{
		ListQuery:  listQuery(c),
		UserID:     c.Query("userId"),
		UserType:   models.UserType(c.Query("userType")),
		Email:      strings.TrimSpace(c.Query("email")),
		Action:     models.AuditAction(strings.ToUpper(c.Query("action"))),
		Resource:   strings.TrimSpace(c.Query("resource")),
		ResourceID: c.Query("resourceId"),
	}
}

func userLogFilter(c *gin.Context) models.UserLogFilter {
	return models.UserLogFilter{
		ListQuery: listQuery(c),
		UserID:    c.Query("userId"),
		UserType:  models.UserType(c.Query("userType")),
		Email:     strings.TrimSpace(c.Query("email")),
		IP:        c.Query("ip"),
	}
}

// ListAudits godoc
// @Summary List audit logs
// @Tags Audit Logs
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Filter by user"
// @Param userType query string false "admin or student"
// @Param action query string false "CREATE, UPDATE or DELETE"
// @Param resource query string false "Filter by resource"
// @Param createdAfter query string false "Lower time bound"
// @Param createdBefore query string false "Upper time bound"
// @Success 200 {object} response.Envelope
// @Router /auditlogs [get]
func (h *LogHandler) ListAudits(c *gin.Context) {
	items, pagination, err := h.audits.List(c.Request.Context(), auditFilter(c))
	page(c, items, pagination, err)
}

// AuditsByUser godoc
// @Summary Audit logs of one user
// @Tags Audit Logs
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /auditlogs/user/{userId} [get]
func (h *LogHandler) AuditsByUser(c *gin.Context) {
	items, pagination, err := h.audits.ByUser(c.Request.Context(), c.Param("userId"), listQuery(c))
	page(c, items, pagination, err)
}

// AuditsByResource godoc
// @Summary Audit logs of one resource type
// @Tags Audit Logs
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Success 200 {object} response.Envelope
// @Router /auditlogs/resource/{resource} [get]
func (h *LogHandler) AuditsByResource(c *gin.Context) {
	items, pagination, err := h.audits.ByResource(c.Request.Context(), c.Param("resource"), listQuery(c))
	page(c, items, pagination, err)
}

// GetAudit godoc
// @Summary Get audit log
// @Tags Audit Logs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Audit log ID"
// @Success 200 {object} response.Envelope
// @Router /auditlogs/{id} [get]
func (h *LogHandler) GetAudit(c *gin.Context) {
	entry, err := h.audits.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry, "")
}

// ExportAudits godoc
// @Summary Export audit logs
// @Tags Audit Logs
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /auditlogs/export [get]
func (h *LogHandler) ExportAudits(c *gin.Context) {
	doc, err := h.audits.Export(c.Request.Context(), auditFilter(c), c.DefaultQuery("format", "csv"))
	sendDocument(c, doc, err)
}

// DeleteAudit godoc
// @Summary Delete audit log
// @Tags Audit Logs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Audit log ID"
// @Success 200 {object} response.Envelope
// @Router /auditlogs/{id} [delete]
func (h *LogHandler) DeleteAudit(c *gin.Context) {
	if err := h.audits.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "audit log deleted successfully")
}

// ClearAudits godoc
// @Summary Delete every audit log
// @Tags Audit Logs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auditlogs/clear [delete]
func (h *LogHandler) ClearAudits(c *gin.Context) {
	count, err := h.audits.Clear(c.Request.Context())
	cleared(c, count, err)
}

// ClearAuditsByUser godoc
// @Summary Delete the audit logs of one user
// @Tags Audit Logs
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /auditlogs/clear/user/{userId} [delete]
func (h *LogHandler) ClearAuditsByUser(c *gin.Context) {
	count, err := h.audits.ClearByUser(c.Request.Context(), c.Param("userId"))
	cleared(c, count, err)
}

// ListLogins godoc
// @Summary List login logs
// @Tags User Logs
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Filter by user"
// @Param userType query string false "admin or student"
// @Param email query string false "Filter by email"
// @Success 200 {object} response.Envelope
// @Router /userlogs [get]
func (h *LogHandler) ListLogins(c *gin.Context) {
	items, pagination, err := h.logins.List(c.Request.Context(), userLogFilter(c))
	page(c, items, pagination, err)
}

// LoginsByUser godoc
// @Summary Login logs of one user
// @Tags User Logs
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /userlogs/user/{userId} [get]
func (h *LogHandler) LoginsByUser(c *gin.Context) {
	items, pagination, err := h.logins.ByUser(c.Request.Context(), c.Param("userId"), listQuery(c))
	page(c, items, pagination, err)
}

// GetLogin godoc
// @Summary Get login log
// @Tags User Logs
// @Produce json
// @Security BearerAuth
// @Param id path string true "User log ID"
// @Success 200 {object} response.Envelope
// @Router /userlogs/{id} [get]
func (h *LogHandler) GetLogin(c *gin.Context) {
	entry, err := h.logins.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry, "")
}

// ExportLogins godoc
// @Summary Export login logs
// @Tags User Logs
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /userlogs/export [get]
func (h *LogHandler) ExportLogins(c *gin.Context) {
	doc, err := h.logins.Export(c.Request.Context(), userLogFilter(c), c.DefaultQuery("format", "csv"))
	sendDocument(c, doc, err)
}

// DeleteLogin godoc
// @Summary Delete login log
// @Tags User Logs
// @Produce json
// @Security BearerAuth
// @Param id path string true "User log ID"
// @Success 200 {object} response.Envelope
// @Router /userlogs/{id} [delete]
func (h *LogHandler) DeleteLogin(c *gin.Context) {
	if err := h.logins.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "user log deleted successfully")
}

// ClearLogins godoc
// @Summary Delete every login log
// @Tags User Logs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /userlogs/clear [delete]
func (h *LogHandler) ClearLogins(c *gin.Context) {
	count, err := h.logins.Clear(c.Request.Context())
	cleared(c, count, err)
}

// ClearLoginsByUser godoc
// @Summary Delete the login logs of one user
// @Tags User Logs
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /userlogs/clear/user/{userId} [delete]
func (h *LogHandler) ClearLoginsByUser(c *gin.Context) {
	count, err := h.logins.ClearByUser(c.Request.Context(), c.Param("userId"))
	cleared(c, count, err)
}

func cleared(c *gin.Context, count int64, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, clearedResponse{DeletedCount: count}, "logs cleared successfully")
}
