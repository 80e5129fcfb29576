package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/handler"
	"github.com/noah-isme/lms-admin-api/internal/middleware"
	"github.com/noah-isme/lms-admin-api/internal/service"
	"github.com/noah-isme/lms-admin-api/pkg/config"
	"github.com/noah-isme/lms-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-admin-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth    *handler.AuthHandler
	Admins  *handler.AdminHandler
	Student *handler.StudentHandler
	Roles   *handler.RoleHandler
	Courses *handler.CourseHandler
	Logs    *handler.LogHandler
	Metrics *handler.MetricsHandler
}

// Deps carries everything the route table needs besides the handlers.
type Deps struct {
	Config     *config.Config
	Logger     *zap.Logger
	Tokens     middleware.TokenVerifier
	Audits     middleware.AuditRecorder
	Limiter    middleware.Limiter
	Metrics    *service.MetricsService
	UploadsDir string
}

// New builds the gin engine with the global middleware stack and every route.
func New(deps Deps, h Handlers) *gin.Engine {
	cfg := deps.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(deps.Metrics, "/metrics", "/health", "/ready"))
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if deps.UploadsDir != "" {
		r.Static("/uploads", deps.UploadsDir)
	}
	if !cfg.IsProduction() {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	registerAuth(api, deps, h.Auth)

	admin := api.Group("", middleware.Authenticate(deps.Tokens), middleware.IsAdmin())
	registerAdmins(admin, deps, h.Admins)
	registerStudents(admin, deps, h.Student)
	registerRoles(admin, deps, h.Roles)
	registerCourses(admin, deps, h.Courses)
	registerLogs(admin, deps, h.Logs)

	return r
}

func registerAuth(api *gin.RouterGroup, deps Deps, h *handler.AuthHandler) {
	auth := api.Group("/auth")
	limited := auth.Group("", middleware.RateLimit(deps.Limiter, deps.Metrics))
	limited.POST("/login/admin", h.LoginAdmin)
	limited.POST("/login/student", h.LoginStudent)
	limited.POST("/otp/request", h.RequestOTP)
	limited.POST("/otp/verify", h.VerifyOTP)
	limited.POST("/password/reset", h.ResetPassword)

	auth.GET("/me", middleware.Authenticate(deps.Tokens), middleware.RequireAccess(), h.Me)
}

func registerAdmins(api *gin.RouterGroup, deps Deps, h *handler.AdminHandler) {
	admins := api.Group("/admins")
	history := middleware.SaveHistory(deps.Audits, "admin")
	admins.PUT("/me/password", history, h.ChangePassword)
	admins.GET("", middleware.CheckPermission("admin.read"), h.List)
	admins.GET("/:id", middleware.CheckPermission("admin.read"), h.Get)
	admins.POST("", middleware.CheckPermission("admin.create"), history, h.Create)
	admins.PUT("/:id", middleware.CheckPermission("admin.update"), history, h.Update)
	admins.DELETE("/:id", middleware.CheckPermission("admin.delete"), history, h.Delete)
}

func registerStudents(api *gin.RouterGroup, deps Deps, h *handler.StudentHandler) {
	students := api.Group("/students")
	history := middleware.SaveHistory(deps.Audits, "student")
	students.GET("", middleware.CheckPermission("student.read"), h.List)
	students.GET("/year/:year", middleware.CheckPermission("student.read"), h.ByYear)
	students.GET("/:id", middleware.CheckPermission("student.read"), h.Get)
	students.POST("", middleware.CheckPermission("student.create"), history, h.Create)
	students.PUT("/:id", middleware.CheckPermission("student.update"), history, h.Update)
	students.DELETE("/:id", middleware.CheckPermission("student.delete"), history, h.Delete)
}

func registerRoles(api *gin.RouterGroup, deps Deps, h *handler.RoleHandler) {
	roles := api.Group("/roles")
	roleHistory := middleware.SaveHistory(deps.Audits, "role")
	roles.GET("", middleware.CheckPermission("role.read"), h.ListRoles)
	roles.GET("/names", middleware.CheckPermission("role.read"), h.RoleNames)
	roles.GET("/:id", middleware.CheckPermission("role.read"), h.GetRole)
	roles.POST("", middleware.CheckPermission("role.create"), roleHistory, h.CreateRole)
	roles.PUT("/:id", middleware.CheckPermission("role.update"), roleHistory, h.UpdateRole)
	roles.DELETE("/:id", middleware.CheckPermission("role.delete"), roleHistory, h.DeleteRole)

	perms := api.Group("/permissions")
	permHistory := middleware.SaveHistory(deps.Audits, "permission")
	perms.GET("", middleware.CheckPermission("permission.read"), h.ListPermissions)
	perms.GET("/:id", middleware.CheckPermission("permission.read"), h.GetPermission)
	perms.POST("", middleware.CheckPermission("permission.create"), permHistory, h.CreatePermission)
	perms.PUT("/:id", middleware.CheckPermission("permission.update"), permHistory, h.UpdatePermission)
	perms.DELETE("/:id", middleware.CheckPermission("permission.delete"), permHistory, h.DeletePermission)
}

func registerCourses(api *gin.RouterGroup, deps Deps, h *handler.CourseHandler) {
	courses := api.Group("/courses")
	courseHistory := middleware.SaveHistory(deps.Audits, "course")
	courses.GET("", middleware.CheckPermission("course.read"), h.ListCourses)
	courses.GET("/:id", middleware.CheckPermission("course.read"), h.GetCourse)
	courses.POST("", middleware.CheckPermission("course.create"), courseHistory, h.CreateCourse)
	courses.PATCH("/:id", middleware.CheckPermission("course.update"), courseHistory, h.UpdateCourse)
	courses.DELETE("/:id", middleware.CheckPermission("course.delete"), courseHistory, h.DeleteCourse)

	modules := api.Group("/modules")
	moduleHistory := middleware.SaveHistory(deps.Audits, "module")
	modules.GET("", middleware.CheckPermission("module.read"), h.ListModules)
	modules.GET("/:id", middleware.CheckPermission("module.read"), h.GetModule)
	modules.POST("", middleware.CheckPermission("module.create"), moduleHistory, h.CreateModule)
	modules.PUT("/:id", middleware.CheckPermission("module.update"), moduleHistory, h.UpdateModule)
	modules.DELETE("/:id", middleware.CheckPermission("module.delete"), moduleHistory, h.DeleteModule)
}

func registerLogs(api *gin.RouterGroup, deps Deps, h *handler.LogHandler) {
	audits := api.Group("/auditlogs")
	auditHistory := middleware.SaveHistory(deps.Audits, "auditlog")
	audits.GET("", middleware.CheckPermission("auditlog.read"), h.ListAudits)
	audits.GET("/export", middleware.CheckPermission("auditlog.read"), h.ExportAudits)
	audits.GET("/user/:userId", middleware.CheckPermission("auditlog.read"), h.AuditsByUser)
	audits.GET("/resource/:resource", middleware.CheckPermission("auditlog.read"), h.AuditsByResource)
	audits.GET("/:id", middleware.CheckPermission("auditlog.read"), h.GetAudit)
	audits.DELETE("/clear", middleware.CheckPermission("auditlog.delete"), auditHistory, h.ClearAudits)
	audits.DELETE("/clear/user/:userId", middleware.CheckPermission("auditlog.delete"), auditHistory, h.ClearAuditsByUser)
	audits.DELETE("/:id", middleware.CheckPermission("auditlog.delete"), auditHistory, h.DeleteAudit)

	logins := api.Group("/userlogs")
	loginHistory := middleware.SaveHistory(deps.Audits, "userlog")
	logins.GET("", middleware.CheckPermission("userlog.read"), h.ListLogins)
	logins.GET("/export", middleware.CheckPermission("userlog.read"), h.ExportLogins)
	logins.GET("/user/:userId", middleware.CheckPermission("userlog.read"), h.LoginsByUser)
	logins.GET("/:id", middleware.CheckPermission("userlog.read"), h.GetLogin)
	logins.DELETE("/clear", middleware.CheckPermission("userlog.delete"), loginHistory, h.ClearLogins)
	logins.DELETE("/clear/user/:userId", middleware.CheckPermission("userlog.delete"), loginHistory, h.ClearLoginsByUser)
	logins.DELETE("/:id", middleware.CheckPermission("userlog.delete"), loginHistory, h.DeleteLogin)
}
