package main

import (
	"context"
	"log"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vaultapi/internal/config"
	"vaultapi/internal/database"
	"vaultapi/internal/database/migration"
	handlers "vaultapi/internal/http/handler"
	"vaultapi/internal/http/middleware"
	"vaultapi/internal/otel"
	"vaultapi/internal/repository/postgres"
	"vaultapi/internal/service"
	"vaultapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx := context.Background()

	// Tracing; degrades to a noop provider when the collector is unreachable
	shutdownTracing, err := otel.Init(ctx, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize tracing", "error", err)
	}
	defer shutdownTracing(context.Background())

	// PostgreSQL connection (with pooling via database/sql, traced by otelsql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, sugar); err != nil {
		sugar.Fatalw("failed to migrate schema", "error", err)
	}

	// S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		sugar.Fatalw("failed to initialize object storage", "error", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := service.NewMetrics(registry)
	if err != nil {
		sugar.Fatalw("failed to register ingestion metrics", "error", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		sugar.Fatalw("failed to register http metrics", "error", err)
	}

	// Repositories and services
	assetRepo := postgres.NewAssetPostgres(db)
	folderRepo := postgres.NewFolderPostgres(db)

	enrichSvc := service.NewEnrichmentService(assetRepo, sugar, metrics)
	svcs := handlers.Services{
		Assets:  service.NewAssetService(assetRepo),
		Ingest:  service.NewIngestService(objStore, assetRepo, folderRepo, enrichSvc, sugar, metrics),
		Folders: service.NewFolderService(folderRepo, assetRepo, sugar),
		Merge:   service.NewMergeService(assetRepo, folderRepo, sugar),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    512 * 1024 * 1024, // batches of large audio files
	})

	// Global middleware: request IDs first so logging and metrics see them
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())
	app.Use(otelfiber.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, svcs)

	addr := ":" + cfg.Port
	sugar.Infow("starting server", "addr", addr)
	if err := app.Listen(addr); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
