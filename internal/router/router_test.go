package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/handler"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/service"
	"github.com/noah-isme/lms-admin-api/pkg/config"
)

type noopAudits struct{}

func (noopAudits) RecordAudit(models.AuditLog) {}

func testEngine(t *testing.T, env string) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(service.TokenConfig{Secret: "router-secret", Issuer: "lms-admin-api", AccessTTL: time.Hour, ResetTTL: time.Minute})
	metrics := service.NewMetricsService()
	cfg := &config.Config{Env: env, APIPrefix: "/api/v1", Metrics: config.MetricsConfig{Enabled: true}}
	engine := New(Deps{
		Config:  cfg,
		Logger:  zap.NewNop(),
		Tokens:  tokens,
		Audits:  noopAudits{},
		Metrics: metrics,
	}, Handlers{
		Auth:    handler.NewAuthHandler(nil, false),
		Admins:  handler.NewAdminHandler(nil),
		Student: handler.NewStudentHandler(nil),
		Roles:   handler.NewRoleHandler(nil, nil),
		Courses: handler.NewCourseHandler(nil, nil),
		Logs:    handler.NewLogHandler(nil, nil),
		Metrics: handler.NewMetricsHandler(metrics, nil),
	})
	return engine, tokens
}

func serve(engine *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestProtectedRoutesRequireAdminAccess(t *testing.T) {
	engine, tokens := testEngine(t, config.EnvTest)

	student, err := tokens.Issue(models.NewAccessPayload(models.AccessClaims{ID: "s1", Email: "s@lms.io", Type: models.UserTypeStudent}), 0)
	require.NoError(t, err)
	reset, err := tokens.Issue(models.NewResetPayload(models.ResetClaims{Email: "a@lms.io", Type: models.UserTypeAdmin}), 0)
	require.NoError(t, err)
	viewer, err := tokens.Issue(models.NewAccessPayload(models.AccessClaims{ID: "a1", Email: "a@lms.io", Type: models.UserTypeAdmin, Permissions: []string{"course.read"}}), 0)
	require.NoError(t, err)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/admins"},
		{http.MethodDelete, "/api/v1/roles/r1"},
		{http.MethodPatch, "/api/v1/courses/c1"},
		{http.MethodGet, "/api/v1/auditlogs/export"},
		{http.MethodDelete, "/api/v1/userlogs/clear"},
	}
	for _, p := range paths {
		assert.Equal(t, http.StatusUnauthorized, serve(engine, p.method, p.path, "").Code, p.path)
		assert.Equal(t, http.StatusUnauthorized, serve(engine, p.method, p.path, reset).Code, p.path)
		assert.Equal(t, http.StatusForbidden, serve(engine, p.method, p.path, student).Code, p.path)
		assert.Equal(t, http.StatusForbidden, serve(engine, p.method, p.path, viewer).Code, p.path)
	}
}

func TestMeRejectsResetToken(t *testing.T) {
	engine, tokens := testEngine(t, config.EnvTest)
	reset, err := tokens.Issue(models.NewResetPayload(models.ResetClaims{Email: "a@lms.io", Type: models.UserTypeAdmin}), 0)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/auth/me", reset).Code)
}

func TestOperationalEndpoints(t *testing.T) {
	engine, _ := testEngine(t, config.EnvTest)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/metrics", "").Code)
	assert.NotEqual(t, http.StatusNotFound, serve(engine, http.MethodGet, "/docs/index.html", "").Code)
}

func TestDocsHiddenInProduction(t *testing.T) {
	engine, _ := testEngine(t, config.EnvProduction)
	gin.SetMode(gin.TestMode)

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/docs/index.html", "").Code)
}
