package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	sqlitestore "github.com/spec-kit/helpdesk/internal/repository/sqlite"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

// storage is the repository set of the configured driver.
type storage struct {
	driver        string
	roles         repository.RoleRepository
	employees     repository.EmployeeRepository
	tickets       repository.TicketRepository
	sqlDB         *sql.DB
	runMigrations bool
	ping          handlers.Pinger
	close         func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := persistence.NewSQLite(cfg.SQLite, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.SQLDB()
		if err != nil {
			db.Close()
			return nil, err
		}
		return &storage{
			driver:        config.DriverSQLite,
			roles:         sqlitestore.NewRoleRepository(db.DB),
			employees:     sqlitestore.NewEmployeeRepository(db.DB),
			tickets:       sqlitestore.NewTicketRepository(db.DB),
			sqlDB:         sqlDB,
			runMigrations: cfg.SQLite.RunMigrations,
			ping:          db,
			close:         db.Close,
		}, nil
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		pool := pg.Pool
		return &storage{
			driver:        config.DriverPostgres,
			roles:         repository.NewRoleRepository(pool),
			employees:     repository.NewEmployeeRepository(pool),
			tickets:       repository.NewTicketRepository(pool),
			sqlDB:         pg.SQLDB(),
			runMigrations: cfg.Postgres.RunMigrations,
			ping:          pg,
			close:         pg.Close,
		}, nil
	}
}

func (s *storage) migrate(ctx context.Context, logger *zap.Logger) error {
	if err := persistence.RunMigrations(ctx, s.sqlDB, s.driver, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

type services struct {
	dispatcher    events.Dispatcher
	roles         *service.RoleService
	employees     *service.EmployeeService
	tickets       *service.TicketService
	auth          *service.AuthService
	notifications *service.NotificationService
	bootstrap     *service.Bootstrapper
}

func newServices(cfg *config.Config, store *storage, logger *zap.Logger) *services {
	dispatcher := events.NewInMemoryDispatcher()
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	roles := service.NewRoleService(service.RoleDependencies{RoleRepo: store.roles, Logger: logger})
	employees := service.NewEmployeeService(service.EmployeeDependencies{
		EmployeeRepo: store.employees,
		RoleRepo:     store.roles,
		Hasher:       hasher,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.tickets,
		Assignees:  employees,
		Numbers:    service.NewTicketNumberGenerator(cfg.Ticket.NumberPrefix),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	return &services{
		dispatcher: dispatcher,
		roles:      roles,
		employees:  employees,
		tickets:    tickets,
		auth: service.NewAuthService(service.AuthDependencies{
			Employees: employees,
			Hasher:    hasher,
			Tokens:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
			Logger:    logger,
		}),
		notifications: service.NewNotificationService(dispatcher, logger, cfg.Notification),
		bootstrap:     service.NewBootstrapper(roles, employees, logger),
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	if store.runMigrations {
		if err := store.migrate(ctx, logger); err != nil {
			return err
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	svc := newServices(cfg, store, logger)
	var stream *events.StreamPublisher
	if redis.Enabled() {
		stream = events.NewStreamPublisher(redis.Client, cfg.Redis.Stream, cfg.Redis.StreamLen)
	}
	worker.StartNotificationWorker(svc.dispatcher, svc.notifications, stream, logger)

	if err := svc.bootstrap.Run(ctx, cfg.Seed); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	checks := map[string]handlers.Pinger{store.driver: store.ping}
	if redis.Enabled() {
		checks["redis"] = redis
	}
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks, metrics),
		Auth:           handlers.NewAuthHandler(svc.auth),
		Roles:          handlers.NewRolesHandler(svc.roles),
		Employees:      handlers.NewEmployeesHandler(svc.employees),
		Tickets:        handlers.NewTicketsHandler(svc.tickets),
		AuthMiddleware: auth.NewAuthMiddleware(svc.auth.TokenManager(), svc.employees),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", store.driver))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("fiber listen: %w", err)
		}
		return nil
	}

	return app.ShutdownWithTimeout(10 * time.Second)
}
