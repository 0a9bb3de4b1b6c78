package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"patientdocs/docs"
	"patientdocs/internal/auth"
	"patientdocs/internal/config"
	"patientdocs/internal/cryptox"
	"patientdocs/internal/database"
	"patientdocs/internal/database/migration"
	handlers "patientdocs/internal/http/handler"
	"patientdocs/internal/http/middleware"
	"patientdocs/internal/logging"
	"patientdocs/internal/otel"
	"patientdocs/internal/ratelimit"
	"patientdocs/internal/repository/postgres"
	"patientdocs/internal/service"
	"patientdocs/internal/storage"
)

// @title Patient Documents API
// @version 1.0
// @description Encrypted medical document storage with time-limited QR sharing.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger, err := logging.New(cfg.Log)
	if err != nil {
		// No logger yet; stderr is all there is.
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	encKey, err := cryptox.ParseKey(cfg.Crypto.EncryptionKey)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	// PostgreSQL connection (pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		return err
	}

	// S3-compatible object storage for ciphertext (MinIO-supported)
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO, logger)
	if err != nil {
		return err
	}

	docRepo := postgres.NewDocumentPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHrs)*time.Hour)

	docSvc := service.NewDocumentService(objStore, docRepo, service.DocumentConfig{
		EncryptionKey:  encKey,
		QRDefaultHours: cfg.Documents.QRDefaultHours,
		QRMaxHours:     cfg.Documents.QRMaxHours,
		FrontendURL:    cfg.Documents.FrontendURL,
		MaxUploadBytes: int64(cfg.Documents.MaxUploadBytes),
	})
	authSvc := service.NewAuthService(userRepo, jwtManager)

	limitStore, closeStore := newRateLimitStore(ctx, cfg.Redis, logger)
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, cfg.Database.Name),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Multipart overhead on top of the largest accepted file.
		BodyLimit: cfg.Documents.MaxUploadBytes + 1<<20,
	})

	app.Use(otelfiber.Middleware(otelfiber.WithNext(handlers.IsCapabilityRequest)))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:        db,
		Documents: docSvc,
		Auth:      authSvc,
		Tokens:    jwtManager,
		Limiter: middleware.RateLimit(limitStore, cfg.RateLimit.Max,
			time.Duration(cfg.RateLimit.WindowSec)*time.Second, logger),
		Gatherer: reg,
		Logger:   logger,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", ":"+cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(sctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// newRateLimitStore uses Redis when configured and reachable so limits hold
// across replicas, and falls back to per-process counters otherwise.
func newRateLimitStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (ratelimit.Store, func()) {
	if cfg.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pctx).Err()
		cancel()
		if err == nil {
			logger.Info("rate limiter using redis", zap.String("addr", cfg.Addr))
			return ratelimit.NewRedisStore(client, "patientdocs:ratelimit:"), func() { _ = client.Close() }
		}
		logger.Warn("redis unavailable, rate limiting per process", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
	}

	store := ratelimit.NewMemoryStore()
	go store.RunSweeper(ctx, time.Minute)
	return store, func() {}
}
