package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/service"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type authService interface {
	LoginAdmin(ctx context.Context, req dto.LoginRequest, client service.ClientInfo) (*models.LoginResponse, error)
	LoginStudent(ctx context.Context, req dto.LoginRequest, client service.ClientInfo) (*models.LoginResponse, error)
	Me(ctx context.Context, claims models.AccessClaims) (*models.IdentityResponse, error)
	RequestOTP(ctx context.Context, req dto.OTPRequest) (*models.OTP, error)
	VerifyOTP(ctx context.Context, req dto.OTPVerifyRequest) (*models.ResetTokenResponse, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service     authService
	exposeCodes bool
}

// NewAuthHandler creates a new handler. When exposeCodes is set the OTP is echoed
// back in the request response, which is only meant for non-production use.
func NewAuthHandler(svc authService, exposeCodes bool) *AuthHandler {
	return &AuthHandler{service: svc, exposeCodes: exposeCodes}
}

// LoginAdmin godoc
// @Summary Authenticate admin
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /auth/login/admin [post]
func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	h.login(c, h.service.LoginAdmin)
}

// LoginStudent godoc
// @Summary Authenticate student
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login/student [post]
func (h *AuthHandler) LoginStudent(c *gin.Context) {
	h.login(c, h.service.LoginStudent)
}

type loginFunc func(context.Context, dto.LoginRequest, service.ClientInfo) (*models.LoginResponse, error)

func (h *AuthHandler) login(c *gin.Context, fn loginFunc) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	client := service.ClientInfo{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	res, err := fn(c.Request.Context(), req, client)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res, "login successful")
}

// Me godoc
// @Summary Current identity
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := accessClaims(c)
	if !ok {
		return
	}
	identity, err := h.service.Me(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, identity, "")
}

// RequestOTP godoc
// @Summary Request a password reset code
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.OTPRequest true "OTP request"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/otp/request [post]
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req dto.OTPRequest
	if !bindJSON(c, &req) {
		return
	}
	otp, err := h.service.RequestOTP(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	res := dto.OTPRequestResponse{
		Email:     otp.Email,
		ExpiresIn: int64(otp.ExpiresAt.Sub(otp.CreatedAt).Seconds()),
	}
	if h.exposeCodes {
		res.Code = otp.Code
	}
	response.OK(c, res, "OTP sent successfully")
}

// VerifyOTP godoc
// @Summary Verify a password reset code
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.OTPVerifyRequest true "OTP verification"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.OTPVerifyRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res, "OTP verified successfully")
}

// ResetPassword godoc
// @Summary Reset password with a reset token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.ResetPasswordRequest true "Reset payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "password reset successfully")
}
