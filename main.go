package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"

	"ministry/internal/api"
	"ministry/internal/calendar"
	"ministry/internal/config"
	"ministry/internal/daemon"
	"ministry/internal/database"
	"ministry/internal/logger"
	"ministry/internal/middleware"
	"ministry/internal/monitoring"
	"ministry/internal/notifications"
	"ministry/internal/openfga"
	"ministry/internal/repository"
	"ministry/internal/service"
	"ministry/internal/session"
	"ministry/internal/storage"
	"ministry/internal/telemetry"
	"ministry/internal/validator"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tel, err := monitoring.New(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.NewPostgresDatabase(cfg.Database)
	if err != nil {
		return err
	}
	repo := repository.NewDatabaseRepository(db)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis is unreachable, login attempts will fail until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set, login rate limiting is disabled")
	}

	fgaClient, err := openfga.NewClient(cfg.OpenFGA, log)
	if err != nil {
		return err
	}
	var (
		granter service.AdminGranter
		checker middleware.AdminChecker
	)
	if fgaClient.IsEnabled() {
		if err := fgaClient.VerifyConnection(ctx); err != nil {
			return err
		}
		authz := openfga.NewAuthorizationService(fgaClient)
		granter, checker = authz, authz
	}

	photos, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	sessionStorage := postgres.New(postgres.Config{
		ConnectionURI: cfg.Database.URL(),
		Table:         cfg.Session.Table,
		Reset:         false,
		GCInterval:    10 * time.Minute,
	})
	sessions := session.NewStore(fibersession.New(fibersession.Config{
		Storage:        sessionStorage,
		KeyLookup:      "cookie:session_id",
		CookiePath:     "/",
		CookieSecure:   cfg.Session.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     cfg.Session.TokenTTL,
	}))

	clock := service.NewClock(cfg.Location())
	v := validator.New()
	metrics := tel.Metrics
	notifier := notifications.NewNotifier(log, repo, metrics)
	composer := notifications.NewComposer(cfg.Ministry.CurrencySymbol)
	audit := service.NewAuditService(repo, log, clock)
	tokens := session.NewTokens(cfg.Session.Secret, cfg.Session.TokenTTL)

	auth := service.NewAuthService(repo, tokens, service.NewRateLimiter(redisClient), v, granter, audit, metrics, log, clock)
	birthdays := service.NewBirthdayService(repo, notifier, composer, log, clock)
	dues := service.NewDuesService(repo, v, notifier, composer, audit, metrics, log, clock)
	events := service.NewEventService(repo, v, notifier, composer, audit, log, clock)

	services := api.Services{
		Auth:          auth,
		Google:        service.NewGoogleAuth(cfg.Google, auth),
		Members:       service.NewMemberService(repo, photos, v, audit, log, clock, cfg.Ministry.MemberEmailDomain),
		Attendance:    service.NewAttendanceService(repo, v, audit, metrics, log, clock),
		Assignments:   service.NewAssignmentService(repo, v, audit, log),
		Groups:        service.NewGroupService(repo, v, audit, log, clock),
		Dues:          dues,
		Payments:      service.NewPaymentService(repo, cfg.Stripe, cfg.Server.PublicURL, audit, metrics, log, clock),
		Events:        events,
		Notifications: service.NewNotificationService(repo, v, notifier, composer, audit, log, clock),
		Birthdays:     birthdays,
		Schedule:      service.NewScheduleService(repo, calendar.NewManager(log, repo), clock),
		Dashboard:     service.NewDashboardService(repo, birthdays, clock),
	}
	handler := api.NewHandler(services, sessions, log, clock)

	app := fiber.New(fiber.Config{
		AppName:               cfg.Telemetry.ServiceName,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		BodyLimit:             int(service.MaxPhotoSize) + 1<<20,
		ErrorHandler:          api.ErrorHandler(log),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowCredentials: true,
	}))
	app.Use(telemetry.FiberMiddleware(cfg.Telemetry.ServiceName, metrics))
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.SecurityHeaders())
	app.Use("/api", limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		},
	}))

	api.RegisterOps(app, api.NewHealthHandler(repo, redisClient, cfg.Telemetry.ServiceVersion), tel.Handler())
	handler.RegisterRoutes(app, middleware.Authenticated(auth, sessions), middleware.RequireAdmin(checker))

	manager := daemon.NewDaemonManager(log)
	manager.Add(daemon.OverdueSweepName, daemon.OverdueSweepTask(dues, log, time.Hour))
	manager.Add(daemon.BirthdayNoticesName, daemon.BirthdayNoticesTask(birthdays, log, 24*time.Hour))
	manager.Add(daemon.EventRemindersName, daemon.EventRemindersTask(events, cfg.Ministry.ReminderLeadTime, log, time.Hour))
	log.Info("Starting supervised daemons...")
	manager.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		log.Info("Starting HTTP server", "addr", addr, "environment", cfg.Server.Environment)
		serverErr <- app.Listen(addr)
	}()

	select {
	case err = <-serverErr:
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	errs := []error{err}
	if shutdownErr := app.ShutdownWithContext(shutdownCtx); shutdownErr != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", shutdownErr))
	}
	manager.Wait()
	log.Info("All daemons stopped")

	if redisClient != nil {
		if closeErr := redisClient.Close(); closeErr != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", closeErr))
		}
	}
	if closeErr := sessionStorage.Close(); closeErr != nil {
		errs = append(errs, fmt.Errorf("session storage close: %w", closeErr))
	}
	if closeErr := database.Close(db); closeErr != nil {
		errs = append(errs, fmt.Errorf("database close: %w", closeErr))
	}
	if shutdownErr := tel.Shutdown(shutdownCtx); shutdownErr != nil {
		errs = append(errs, shutdownErr)
	}

	log.Info("Server was shut down")
	return errors.Join(errs...)
}
