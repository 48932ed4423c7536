package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"uia-atlas/atlas-portal/internal/auth"
	"uia-atlas/atlas-portal/internal/config"
	"uia-atlas/atlas-portal/internal/dashboard"
	"uia-atlas/atlas-portal/internal/notifications"
	"uia-atlas/atlas-portal/internal/projects"
	"uia-atlas/atlas-portal/pkg/catalog"
)

// App is the assembled API server.
type App struct {
	Router    *gin.Engine
	Projects  *projects.Service
	Dashboard *dashboard.Service
	Auth      *auth.Service
	Mail      *notifications.Service // nil when mail is disabled
	Digest    *notifications.DigestJob

	cache   *dashboard.Cache
	closers []func() error
}

type stores struct {
	projects projects.Repository
	users    auth.Repository
	sqlx     *sqlx.DB // nil for the memory driver
}

func openStores(cfg config.DatabaseConfig, logger *zap.Logger) (*stores, func() error, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("Using in-memory storage, data is lost on exit")
		return &stores{
			projects: projects.NewMemoryRepository(),
			users:    auth.NewMemoryRepository(),
		}, func() error { return nil }, nil
	}

	logger.Info("Connecting to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("db", cfg.DBName))
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	projectRepo := projects.NewGormRepository(db)
	userRepo := auth.NewGormRepository(db)
	if cfg.AutoMigrate {
		if err := errors.Join(projectRepo.AutoMigrate(), userRepo.AutoMigrate()); err != nil {
			sqlDB.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &stores{
		projects: projectRepo,
		users:    userRepo,
		sqlx:     sqlx.NewDb(sqlDB, "postgres"),
	}, sqlDB.Close, nil
}

func newMail(ctx context.Context, cfg config.EmailConfig, frontend config.FrontendConfig, logger *zap.Logger) (*notifications.Service, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	var sender notifications.Sender
	switch cfg.Provider {
	case "ses":
		ses, err := notifications.NewSESSender(ctx, cfg.Region, cfg.FromName, cfg.FromAddress)
		if err != nil {
			return nil, err
		}
		sender = ses
	default:
		sender = notifications.NewLogSender(logger)
	}
	templates, err := notifications.NewTemplateManager()
	if err != nil {
		return nil, err
	}
	links := notifications.Links{BaseURL: frontend.BaseURL}
	return notifications.NewService(sender, templates, links, cfg.AdminEmail, logger), nil
}

// New wires storage, services and routes from cfg.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	st, closeDB, err := openStores(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app := &App{closers: []func() error{closeDB}}

	mail, err := newMail(ctx, cfg.Email, cfg.Frontend, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Mail = mail

	opts := []projects.Option{projects.OnChange(func() { app.Dashboard.Invalidate() })}
	if mail != nil {
		opts = append(opts, projects.WithNotifier(mail))
	}
	app.Projects = projects.NewService(st.projects, logger, opts...)

	var store dashboard.Store = dashboard.NewMemoryStore(app.Projects)
	if st.sqlx != nil {
		store = dashboard.NewSQLStore(st.sqlx)
	}
	app.cache = dashboard.NewCache(cfg.Dashboard.CacheTTL)
	app.Dashboard = dashboard.NewService(store, app.cache, logger)

	app.Auth = auth.NewService(st.users, auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL), logger)
	if cfg.Security.AdminEmail != "" && cfg.Security.AdminPassword != "" {
		if _, err := app.Auth.EnsureUser(ctx, cfg.Security.AdminEmail, cfg.Security.AdminPassword, catalog.RoleAdmin); err != nil {
			app.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		logger.Info("Bootstrap admin ensured", zap.String("email", cfg.Security.AdminEmail))
	}

	if mail != nil {
		adminEmail := cfg.Email.AdminEmail
		if adminEmail == "" {
			adminEmail = cfg.Security.AdminEmail
		}
		app.Digest = notifications.NewDigestJob(app.Projects, mail, adminEmail, logger)
	}

	app.Router = NewRouter(Handlers{
		Auth:      auth.NewHandler(app.Auth, logger),
		AuthSvc:   app.Auth,
		Projects:  projects.NewHandler(app.Projects, logger),
		Dashboard: dashboard.NewHandler(app.Dashboard, app.Projects, logger),
	}, cfg.Server.CORSOrigins, logger)

	return app, nil
}

// Close flushes pending mail and releases storage.
func (a *App) Close() error {
	if a.Mail != nil {
		a.Mail.Wait()
	}
	if a.cache != nil {
		a.cache.Stop()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
