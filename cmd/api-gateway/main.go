package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/lms-admin-api/api/swagger"
	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/handler"
	"github.com/noah-isme/lms-admin-api/internal/repository"
	"github.com/noah-isme/lms-admin-api/internal/router"
	"github.com/noah-isme/lms-admin-api/internal/service"
	"github.com/noah-isme/lms-admin-api/pkg/cache"
	"github.com/noah-isme/lms-admin-api/pkg/config"
	"github.com/noah-isme/lms-admin-api/pkg/database"
	"github.com/noah-isme/lms-admin-api/pkg/export"
	"github.com/noah-isme/lms-admin-api/pkg/jobs"
	"github.com/noah-isme/lms-admin-api/pkg/logger"
	"github.com/noah-isme/lms-admin-api/pkg/mailer"
	"github.com/noah-isme/lms-admin-api/pkg/ratelimit"
	"github.com/noah-isme/lms-admin-api/pkg/storage"
)

// @title LMS Admin API
// @version 1.0.0
// @description Administration backend for the learning management system
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		res, err := database.RunMigrations(db.DB, cfg.Database.MigrationsDir)
		if err != nil {
			logr.Fatal("migrations failed", zap.Error(err))
		}
		logr.Info("migrations applied", zap.Uint("version", res.Version), zap.Bool("changed", res.Changed))
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	files, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Fatal("failed to prepare uploads directory", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := dto.NewValidator()
	metrics := service.NewMetricsService()
	exporter := export.NewExporter()
	images := storage.NewImageStore(files, "courses", cfg.Uploads.MaxImageSize)

	adminRepo := repository.NewAdminRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	userLogRepo := repository.NewUserLogRepository(db)
	otpRepo := repository.NewOTPRepository(redisClient)

	recorder := service.NewActivityRecorder(auditRepo, userLogRepo, metrics, logr)
	activityQueue := jobs.NewQueue("activity", recorder.Handle, jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		JobTimeout: 5 * time.Second,
		Logger:     logr,
	})
	recorder.Attach(activityQueue)

	notifier := service.NewNotificationService(mailer.New(cfg.SMTP, logr), metrics, logr)
	mailQueue := jobs.NewQueue("mail", notifier.Handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 64,
		JobTimeout: 30 * time.Second,
		Logger:     logr,
	})
	notifier.Attach(mailQueue)

	activityQueue.Start(context.Background())
	mailQueue.Start(context.Background())

	tokens := service.NewTokenService(service.TokenConfig{
		Secret:    cfg.JWT.Secret,
		Issuer:    cfg.JWT.Issuer,
		AccessTTL: cfg.JWT.Expiration,
		ResetTTL:  cfg.JWT.ResetExpiration,
	})
	otps := service.NewOTPService(otpRepo, service.OTPConfig{TTL: cfg.OTP.TTL, Length: cfg.OTP.Length}, logr)
	roleCache := service.NewCacheService(repository.NewCacheRepository(redisClient, cfg.Cache.Prefix), metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	resolver := service.NewPermissionResolver(roleRepo, permissionRepo, logr)
	resolver.UseCache(roleCache)

	authSvc := service.NewAuthService(service.AuthDeps{
		Admins:     adminRepo,
		Students:   studentRepo,
		Resolver:   resolver,
		Tokens:     tokens,
		OTPs:       otps,
		Recorder:   recorder,
		Notifier:   notifier,
		Metrics:    metrics,
		Validator:  validate,
		Logger:     logr,
		SaltRounds: cfg.Security.SaltRounds,
	})
	adminSvc := service.NewAdminService(adminRepo, roleRepo, validate, logr, cfg.Security.SaltRounds)
	studentSvc := service.NewStudentService(studentRepo, validate, logr, cfg.Security.SaltRounds)
	roleSvc := service.NewRoleService(roleRepo, permissionRepo, validate, logr)
	permissionSvc := service.NewPermissionService(permissionRepo, validate, logr)
	roleSvc.UseCache(roleCache)
	permissionSvc.UseCache(roleCache)
	courseSvc := service.NewCourseService(courseRepo, adminRepo, images, validate, logr)
	moduleSvc := service.NewModuleService(moduleRepo, courseRepo, validate, logr)
	auditSvc := service.NewAuditLogService(auditRepo, exporter, logr)
	userLogSvc := service.NewUserLogService(userLogRepo, exporter, logr)

	limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	sweepStop := make(chan struct{})
	go limiter.Run(time.Minute, sweepStop)

	readiness := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}

	engine := router.New(router.Deps{
		Config:     cfg,
		Logger:     logr,
		Tokens:     tokens,
		Audits:     recorder,
		Limiter:    limiter,
		Metrics:    metrics,
		UploadsDir: files.BaseDir(),
	}, router.Handlers{
		Auth:    handler.NewAuthHandler(authSvc, !cfg.IsProduction()),
		Admins:  handler.NewAdminHandler(adminSvc),
		Student: handler.NewStudentHandler(studentSvc),
		Roles:   handler.NewRoleHandler(roleSvc, permissionSvc),
		Courses: handler.NewCourseHandler(courseSvc, moduleSvc),
		Logs:    handler.NewLogHandler(auditSvc, userLogSvc),
		Metrics: handler.NewMetricsHandler(metrics, readiness),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	close(sweepStop)
	activityQueue.Stop()
	mailQueue.Stop()
}
