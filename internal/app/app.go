package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"mechanic-service/internal/auth"
	"mechanic-service/internal/config"
	"mechanic-service/internal/customer"
	"mechanic-service/internal/db"
	"mechanic-service/internal/health"
	"mechanic-service/internal/inventory"
	"mechanic-service/internal/listcache"
	"mechanic-service/internal/logger"
	"mechanic-service/internal/mechanic"
	"mechanic-service/internal/messaging"
	"mechanic-service/internal/metrics"
	"mechanic-service/internal/middleware"
	"mechanic-service/internal/models"
	"mechanic-service/internal/ratelimit"
	"mechanic-service/internal/telemetry"
	"mechanic-service/internal/ticket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	meterProvider *sdkmetric.MeterProvider
	events        *messaging.Producer
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	database := db.New(cfg.Database)
	models.RegisterJoinModels(database)

	ctx := context.Background()
	if err := db.RunMigrations(ctx, database, models.All()...); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	// Metrics are best effort. Without a collector the service still
	// runs, just unobserved.
	var appMetrics *metrics.Metrics
	meterProvider, err := telemetry.InitMeterProvider(ctx, ServiceName, Version, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize metrics exporter", "error", err)
		appMetrics = metrics.NewMock()
	} else {
		app.meterProvider = meterProvider
		appMetrics, err = metrics.New(meterProvider.Meter(ServiceName))
		if err != nil {
			slogLogger.Warn("failed to create metrics", "error", err)
			appMetrics = metrics.NewMock()
		}
	}

	app.router.Use(chimiddleware.StripSlashes)
	app.router.Use(chimiddleware.Recoverer)
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	tokens := auth.NewTokenService(cfg.Auth)
	cache := listcache.New(time.Duration(cfg.Cache.TTLSeconds)*time.Second, appMetrics)
	limits := ratelimit.New(cfg.RateLimit, appMetrics)

	natsProducer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize NATS producer", "error", err)
		natsProducer = nil
	} else {
		slogLogger.Info("NATS producer initialized successfully")
	}
	app.events = natsProducer

	customerRepo := customer.NewRepository(database, appMetrics)
	customerService := customer.NewService(customerRepo, tokens, natsProducer)
	customerHandler := customer.NewHandler(customerService, tokens, cache, slogLogger, appMetrics)
	customerHandler.RegisterRoutes(app.router, limits.CustomerCreate)

	mechanicRepo := mechanic.NewRepository(database, appMetrics)
	mechanicService := mechanic.NewService(mechanicRepo, natsProducer)
	mechanicHandler := mechanic.NewHandler(mechanicService, cache, slogLogger, appMetrics)
	mechanicHandler.RegisterRoutes(app.router, limits.MechanicCreate)

	inventoryRepo := inventory.NewRepository(database, appMetrics)
	inventoryService := inventory.NewService(inventoryRepo, natsProducer)
	inventoryHandler := inventory.NewHandler(inventoryService, cache, slogLogger, appMetrics)
	inventoryHandler.RegisterRoutes(app.router, limits.PartCreate)

	ticketRepo := ticket.NewRepository(database, appMetrics)
	ticketService := ticket.NewService(ticketRepo, natsProducer)
	ticketHandler := ticket.NewHandler(ticketService, tokens, cache, slogLogger, appMetrics)
	ticketHandler.RegisterRoutes(app.router, limits.TicketCreate)

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if a.meterProvider != nil {
		if err := telemetry.Shutdown(ctx, a.meterProvider, a.logger); err != nil {
			a.logger.Warn("failed to shut down metrics exporter", "error", err)
		}
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("failed to close NATS producer", "error", err)
		}
	}

	return a.server.Shutdown(ctx)
}
