package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/service"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordedAudits struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (r *recordedAudits) RecordAudit(entry models.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func testTokens() *service.TokenService {
	return service.NewTokenService(service.TokenConfig{Secret: "mw-secret", Issuer: "lms-admin-api", AccessTTL: time.Hour, ResetTTL: time.Minute})
}

func accessToken(t *testing.T, tokens *service.TokenService, userType models.UserType, role string, perms ...string) string {
	t.Helper()
	claims := models.AccessClaims{ID: "u1", Email: "root@lms.io", Permissions: perms, Type: userType}
	if role != "" {
		claims.Role = &role
	}
	token, err := tokens.Issue(models.NewAccessPayload(claims), 0)
	require.NoError(t, err)
	return token
}

func resetToken(t *testing.T, tokens *service.TokenService) string {
	t.Helper()
	token, err := tokens.Issue(models.NewResetPayload(models.ResetClaims{Email: "root@lms.io", Type: models.UserTypeAdmin}), 0)
	require.NoError(t, err)
	return token
}

func perform(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mw-test")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func ok(c *gin.Context) { response.OK(c, gin.H{"ok": true}, "") }

func TestAuthenticateRejectsMissingAndInvalidTokens(t *testing.T) {
	tokens := testTokens()
	r := gin.New()
	r.GET("/me", Authenticate(tokens), RequireAccess(), ok)

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", "not-a-jwt", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/me", accessToken(t, tokens, models.UserTypeStudent, ""), "").Code)
}

func TestResetTokenCannotReachAccessRoutes(t *testing.T) {
	tokens := testTokens()
	r := gin.New()
	r.GET("/me", Authenticate(tokens), RequireAccess(), ok)
	r.GET("/admins", Authenticate(tokens), IsAdmin(), CheckPermission("admin.read"), ok)

	reset := resetToken(t, tokens)
	for _, path := range []string{"/me", "/admins"} {
		w := perform(r, http.MethodGet, path, reset, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "authentication required", decode(t, w).Message)
	}
}

func TestTypeGates(t *testing.T) {
	tokens := testTokens()
	r := gin.New()
	r.GET("/admin", Authenticate(tokens), IsAdmin(), ok)
	r.GET("/student", Authenticate(tokens), IsStudent(), ok)

	admin := accessToken(t, tokens, models.UserTypeAdmin, "")
	student := accessToken(t, tokens, models.UserTypeStudent, "")

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/admin", admin, "").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", student, "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/student", student, "").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/student", admin, "").Code)
}

func TestPermissionGates(t *testing.T) {
	tokens := testTokens()
	r := gin.New()
	r.GET("/any", Authenticate(tokens), CheckPermission("course.read", "course.update"), ok)
	r.GET("/all", Authenticate(tokens), CheckAllPermissions("course.read", "course.delete", "module.delete"), ok)
	r.GET("/role", Authenticate(tokens), CheckRole("Super Admin", "Manager"), ok)

	token := accessToken(t, tokens, models.UserTypeAdmin, "Viewer", "course.read")

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/any", token, "").Code)

	w := perform(r, http.MethodGet, "/all", token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	msg := decode(t, w).Message
	assert.Contains(t, msg, "course.delete")
	assert.Contains(t, msg, "module.delete")
	assert.NotContains(t, msg, "course.read")

	w = perform(r, http.MethodGet, "/role", token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode(t, w).Message, "Super Admin or Manager")

	manager := accessToken(t, tokens, models.UserTypeAdmin, "Manager")
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/role", manager, "").Code)
}

func TestOptionalAuthenticateNeverBlocks(t *testing.T) {
	tokens := testTokens()
	r := gin.New()
	r.GET("/open", OptionalAuthenticate(tokens), func(c *gin.Context) {
		_, found := IdentityFrom(c)
		response.OK(c, gin.H{"identified": found}, "")
	})

	w := perform(r, http.MethodGet, "/open", "garbage", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"identified":false`)

	w = perform(r, http.MethodGet, "/open", accessToken(t, tokens, models.UserTypeStudent, ""), "")
	assert.Contains(t, w.Body.String(), `"identified":true`)
}

func historyRouter(tokens *service.TokenService, audits *recordedAudits) *gin.Engine {
	r := gin.New()
	group := r.Group("/courses", Authenticate(tokens), IsAdmin())
	group.POST("", CheckPermission("course.create"), SaveHistory(audits, "course"), func(c *gin.Context) {
		response.Created(c, gin.H{"id": "c-42", "title": "Go"}, "course created")
	})
	group.PUT("/:id", CheckPermission("course.update"), SaveHistory(audits, "course"), ok)
	group.DELETE("/:id", CheckPermission("course.delete"), SaveHistory(audits, "course"), func(c *gin.Context) {
		response.Error(c, http.ErrAbortHandler)
	})
	group.GET("/:id", SaveHistory(audits, "course"), ok)
	return r
}

func TestSaveHistoryRecordsCreate(t *testing.T) {
	tokens := testTokens()
	audits := &recordedAudits{}
	r := historyRouter(tokens, audits)
	token := accessToken(t, tokens, models.UserTypeAdmin, "Manager", "course.create")

	w := perform(r, http.MethodPost, "/courses", token, `{"title":"Go","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, audits.entries, 1)
	entry := audits.entries[0]
	assert.Equal(t, models.AuditActionCreate, entry.Action)
	assert.Equal(t, "course", entry.Resource)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, models.UserTypeAdmin, entry.UserType)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "c-42", *entry.ResourceID)
	require.NotNil(t, entry.UserAgent)
	assert.Equal(t, "mw-test", *entry.UserAgent)
	assert.Contains(t, entry.Changes.String(), `"title":"Go"`)
	assert.NotContains(t, entry.Changes.String(), "hunter22")
}

func TestSaveHistoryUsesPathID(t *testing.T) {
	tokens := testTokens()
	audits := &recordedAudits{}
	r := historyRouter(tokens, audits)
	token := accessToken(t, tokens, models.UserTypeAdmin, "", "course.update")

	require.Equal(t, http.StatusOK, perform(r, http.MethodPut, "/courses/c-7", token, `{"title":"Go 2"}`).Code)
	require.Len(t, audits.entries, 1)
	assert.Equal(t, models.AuditActionUpdate, audits.entries[0].Action)
	assert.Equal(t, "c-7", *audits.entries[0].ResourceID)
}

func TestSaveHistorySkipsFailuresAndReads(t *testing.T) {
	tokens := testTokens()
	audits := &recordedAudits{}
	r := historyRouter(tokens, audits)

	viewer := accessToken(t, tokens, models.UserTypeAdmin, "Viewer", "course.read")
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPost, "/courses", viewer, `{}`).Code)

	deleter := accessToken(t, tokens, models.UserTypeAdmin, "", "course.delete")
	assert.Equal(t, http.StatusInternalServerError, perform(r, http.MethodDelete, "/courses/c-1", deleter, "").Code)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/courses/c-1", viewer, "").Code)
	assert.Empty(t, audits.entries)
}

func TestSaveHistoryLeavesLargeBodiesIntact(t *testing.T) {
	tokens := testTokens()
	audits := &recordedAudits{}
	r := gin.New()
	var seen int
	r.POST("/courses", Authenticate(tokens), SaveHistory(audits, "course"), func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		seen = len(raw)
		response.Created(c, gin.H{"id": "c-big"}, "course created")
	})

	body := `{"image":"` + strings.Repeat("A", 2*maxCapturedBody) + `"}`
	token := accessToken(t, tokens, models.UserTypeAdmin, "", "course.create")
	w := perform(r, http.MethodPost, "/courses", token, body)
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, len(body), seen)
	require.Len(t, audits.entries, 1)
	assert.Nil(t, audits.entries[0].Changes)
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func TestRateLimit(t *testing.T) {
	metrics := service.NewMetricsService()
	r := gin.New()
	r.POST("/auth/login/admin", RateLimit(denyAll{}, metrics), ok)
	r.POST("/open", RateLimit(nil, metrics), ok)

	w := perform(r, http.MethodPost, "/auth/login/admin", "", "{}")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/open", "", "{}").Code)
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/courses/:id", ok)

	perform(r, http.MethodGet, "/courses/abc", "", "")
	perform(r, http.MethodGet, "/nowhere", "", "")

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var routes []string
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "path" {
					routes = append(routes, l.GetValue())
				}
			}
		}
	}
	assert.ElementsMatch(t, []string{"/courses/:id", unmatchedRoute}, routes)
}
