package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/repository"
	"github.com/noah-isme/lms-admin-api/internal/seed"
	"github.com/noah-isme/lms-admin-api/pkg/config"
	"github.com/noah-isme/lms-admin-api/pkg/database"
	"github.com/noah-isme/lms-admin-api/pkg/logger"
)

func main() {
	var (
		migrate   = flag.Bool("migrate", true, "apply pending migrations before seeding")
		adminName = flag.String("admin-name", "Super Admin", "name of the bootstrap admin")
		email     = flag.String("admin-email", "admin@example.com", "email of the bootstrap admin, empty to skip")
		password  = flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "password of the bootstrap admin")
	)
	flag.Parse()

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

	if *migrate {
		res, err := database.RunMigrations(db.DB, cfg.Database.MigrationsDir)
		if err != nil {
			logr.Fatal("migrations failed", zap.Error(err))
		}
		logr.Info("migrations applied", zap.Uint("version", res.Version), zap.Bool("changed", res.Changed))
	}

	seeder := seed.New(
		repository.NewPermissionRepository(db),
		repository.NewRoleRepository(db),
		repository.NewAdminRepository(db),
		cfg.Security.SaltRounds,
		logr,
	)
	report, err := seeder.Run(context.Background(), seed.AdminAccount{Name: *adminName, Email: *email, Password: *password})
	if err != nil {
		logr.Fatal("seeding failed", zap.Error(err))
	}
	logr.Info("seeding completed",
		zap.Int("permissions", report.Permissions),
		zap.Int("roles", report.Roles),
		zap.Bool("admin", report.Admin),
	)
}
