package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	pkgkafka "github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/kafka"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/observability"
	pkgpostgres "github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/postgres"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/tlsutil"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/usecase"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/artifact"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/config"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/messaging"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/metrics"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/postgres"
	grpcpresentation "github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/presentation/grpc"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/presentation/rest"
)

const serviceName = "stroke-service"

func main() {
	if err := run(); err != nil {
		slog.Error("stroke-service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
		File:    cfg.LogFile,
	})

	logger.Info("starting stroke-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"model_source", cfg.ModelSource,
	)

	// Tracing.
	if cfg.TracingEnabled() {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: serviceName,
		WithRuntime: true,
	})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			logger.Warn("meter provider shutdown", "error", err)
		}
	}()
	recorder, err := metrics.New(meterProvider)
	if err != nil {
		return fmt.Errorf("init instruments: %w", err)
	}

	// Database connection, only needed when serving from the registry.
	var pool *pgxpool.Pool
	if cfg.ModelSource == config.ModelSourcePostgres {
		pool, err = connectRegistry(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Model holder.
	decoder, err := artifact.NewDecoder(4)
	if err != nil {
		return err
	}
	var source artifact.Source
	if pool != nil {
		source = artifact.NewRegistrySource(postgres.NewArtifactRepository(pool))
	} else {
		source = artifact.NewFileStore(cfg.ModelPath)
	}
	holder := artifact.NewModelHolder(source, decoder, logger)

	// Wire use cases.
	predictUC := usecase.NewPredictStroke(holder, recorder)
	reloadUC := usecase.NewReloadModel(holder, recorder)

	// Optional TLS for both listeners.
	var (
		tlsConfig *tls.Config
		grpcOpts  []grpc.ServerOption
	)
	if cfg.TLSEnabled() {
		tlsConfig, err = tlsutil.ServerConfig(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return err
		}
		grpcOpts = append(grpcOpts, grpc.Creds(credentials.NewTLS(tlsConfig)))
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewPredictionHandler(predictUC, reloadUC, logger)
	grpcServer := grpcpresentation.NewServer(grpcHandler, cfg.GRPCAddress(), logger, grpcOpts...)

	// Initial load. A missing model is not fatal; the service reports not
	// ready until a reload succeeds.
	holder.OnLoad(func(string) { grpcServer.SetServing(true) })
	if _, err := reloadUC.Execute(ctx); err != nil {
		logger.Warn("no model loaded at startup", "source", source.Location(), "error", err)
	}

	// HTTP server.
	checks := map[string]rest.Check{
		"model": func(context.Context) error {
			if !holder.Ready() {
				return errors.New("no model loaded")
			}
			return nil
		},
	}
	if pool != nil {
		checks["database"] = func(ctx context.Context) error {
			return pkgpostgres.HealthCheck(ctx, pool)
		}
	}
	router := rest.NewRouter(rest.RouterConfig{
		Health:     rest.NewHealthHandler(logger, checks),
		Prediction: rest.NewPredictionHandler(predictUC, reloadUC, logger),
		Metrics:    metricsHandler,
		CORSOrigin: cfg.ClientURL,
		Logger:     logger,
	})
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      router,
		TLSConfig:    tlsConfig,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 4)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress(), "tls", tlsConfig != nil)
		var err error
		if tlsConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if cfg.WatchModel {
		watcher := artifact.NewWatcher(cfg.ModelPath, cfg.WatchDebounce, func(ctx context.Context) error {
			_, err := reloadUC.Execute(ctx)
			return err
		}, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				errCh <- fmt.Errorf("model watcher error: %w", err)
			}
		}()
	}

	if pool != nil && cfg.EventsEnabled() {
		listener := messaging.NewReloadListener(reloadUC, logger)
		consumer, err := pkgkafka.NewConsumer(pkgkafka.Config{
			Brokers:       pkgkafka.ParseBrokers(cfg.KafkaBroker),
			ConsumerGroup: cfg.KafkaGroup,
		}, cfg.KafkaTopic, listener.Handle, logger)
		if err != nil {
			return fmt.Errorf("create kafka consumer: %w", err)
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer error: %w", err)
			}
		}()
	}

	logger.Info("stroke-service started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down stroke-service")
	cancel()

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("stroke-service stopped")
	return runErr
}

func connectRegistry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, pkgpostgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pkgpostgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("connected to model registry")
	return pool, nil
}
