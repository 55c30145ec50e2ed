package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/personal-ledger/ledger-backend/constants"
	"github.com/personal-ledger/ledger-backend/internal/common"
	"github.com/personal-ledger/ledger-backend/internal/domain"
	"github.com/personal-ledger/ledger-backend/internal/entity"
	"github.com/personal-ledger/ledger-backend/internal/export"
	"github.com/personal-ledger/ledger-backend/internal/ingest"
	"github.com/personal-ledger/ledger-backend/internal/repository"
	"github.com/personal-ledger/ledger-backend/internal/server"
	"github.com/personal-ledger/ledger-backend/internal/telemetry"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := telemetry.Init(telemetry.Config{
		Level: cfg.Server.LogLevel,
		JSON:  cfg.Server.LogJSON,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repositoryConfig(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)

	if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	categories := repository.NewCategoryRepository(db, logger)
	if err := seedDefaultChart(ctx, categories, logger); err != nil {
		logger.Error("failed to seed default categories", "error", err)
		os.Exit(1)
	}

	categoriesService := server.NewCategoriesService(categories, logger)
	importService := ingest.NewService(categories, logger)
	exportService := export.NewService(categories, logger)

	// Drop-directory imports are optional; an empty watch_dir disables them.
	var importQueue *ingest.ImportQueue
	if cfg.Ingest.WatchDir != "" {
		importQueue = ingest.NewImportQueue(importService, logger)
		events, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Dir:         cfg.Ingest.WatchDir,
			InitialScan: true,
			Debounce:    cfg.Ingest.Debounce,
		}, logger)
		if err != nil {
			logger.Error("failed to start import watcher", "dir", cfg.Ingest.WatchDir, "error", err)
			os.Exit(1)
		}
		go func() {
			for path := range events {
				_ = importQueue.Enqueue(ctx, path)
			}
		}()
		logger.Info("watching for import documents", "dir", cfg.Ingest.WatchDir)
	}

	// gRPC carries health and reflection for probes and grpcurl.
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr())
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr(), "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr(),
		Handler:           server.NewHTTPHandler(categoriesService, importService, exportService, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("ledgerd listening",
		"grpc_addr", cfg.Server.GRPCAddr(),
		"http_addr", cfg.Server.HTTPAddr(),
		"engine", db.Engine())

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	if importQueue != nil {
		importQueue.Shutdown(shutdownCtx)
	}
}

// repositoryConfig maps the loaded configuration onto the repository's
// connection settings.
func repositoryConfig(db common.DatabaseConfig) repository.Config {
	return repository.Config{
		Engine:           db.Engine,
		Path:             db.Path,
		URL:              db.URL,
		MaxConns:         db.MaxConns,
		MinConns:         db.MinConns,
		MaxConnLifetime:  db.MaxConnLifetime,
		MaxConnIdleTime:  db.MaxConnIdleTime,
		DialTimeout:      db.DialTimeout,
		StatementTimeout: db.StatementTimeout,
	}
}

// seedDefaultChart inserts the built-in chart of categories into an empty
// store so a fresh daemon starts usable.
func seedDefaultChart(ctx context.Context, categories repository.CategoryRepository, logger *slog.Logger) error {
	existing, err := categories.FindAll(ctx)
	if err != nil {
		return common.WrapError(err, "list categories")
	}
	if len(existing) > 0 {
		logger.Debug("categories already present, skipping seed", "count", len(existing))
		return nil
	}

	rows := constants.DefaultChart()
	batch := make([]*entity.Category, 0, len(rows))
	for _, row := range rows {
		category, err := seedCategoryEntity(row)
		if err != nil {
			return common.WrapError(err, "build seed category "+row.Code)
		}
		batch = append(batch, category)
	}
	if err := categories.InsertMany(ctx, batch); err != nil {
		return common.WrapError(err, "insert seed categories")
	}

	logger.Info("seeded default categories", "count", len(batch))
	return nil
}

func seedCategoryEntity(row constants.SeedCategory) (*entity.Category, error) {
	categoryType, err := domain.ParseCategoryType(row.CategoryType)
	if err != nil {
		return nil, err
	}
	slug, err := entity.OptionalURLSlug(&row.URLSlug)
	if err != nil {
		return nil, err
	}
	color, err := entity.OptionalHexColor(&row.Color)
	if err != nil {
		return nil, err
	}

	return entity.NewCategoryBuilder().
		WithCode(row.Code).
		WithName(row.Name).
		WithCategoryType(categoryType).
		WithDescriptionOpt(entity.OptionalString(&row.Description)).
		WithURLSlugOpt(slug).
		WithColorOpt(color).
		WithIconOpt(entity.OptionalString(&row.Icon)).
		Build()
}
