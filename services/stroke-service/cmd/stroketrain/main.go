package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgkafka "github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/kafka"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/observability"
	pkgpostgres "github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/postgres"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/usecase"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/port"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/artifact"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/config"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/dataset"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/messaging"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/postgres"
)

func main() {
	dataPath := flag.String("data", "healthcare-dataset-stroke-data.csv", "training CSV path")
	configPath := flag.String("config", "", "training YAML path (defaults apply when empty)")
	outPath := flag.String("out", "", "artifact output path (defaults to MODEL_PATH)")
	flag.Parse()

	if err := run(*dataPath, *configPath, *outPath); err != nil {
		slog.Error("training failed", "error", err)
		os.Exit(1)
	}
}

func run(dataPath, configPath, outPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  "text",
		Service: "stroketrain",
		File:    cfg.LogFile,
	})

	if cfg.TracingEnabled() {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: "stroketrain",
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	training, err := config.LoadTraining(configPath)
	if err != nil {
		return err
	}
	req, err := training.Request()
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = cfg.ModelPath
	}

	// Optional model registry.
	var (
		registry port.ArtifactRepository
		outbox   *postgres.OutboxRepository
	)
	if cfg.RegistryEnabled() {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pkgpostgres.NewPool(dbCtx, pkgpostgres.Config{URL: cfg.DatabaseURL})
		dbCancel()
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		if err := pkgpostgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		registry = postgres.NewArtifactRepository(pool)
		outbox = postgres.NewOutboxRepository(pool)
	}

	// Optional model-trained events. With a registry the event is staged in
	// the outbox by Save and relayed from there, older undelivered ones
	// included.
	var publisher port.EventPublisher
	if cfg.EventsEnabled() {
		producer, err := pkgkafka.NewProducer(pkgkafka.Config{Brokers: pkgkafka.ParseBrokers(cfg.KafkaBroker)})
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer producer.Close()
		if outbox != nil {
			publisher = messaging.NewOutboxRelay(outbox, producer, cfg.KafkaTopic, 0, logger)
		} else {
			publisher = messaging.NewKafkaPublisher(producer, cfg.KafkaTopic, logger)
		}
	}

	uc := usecase.NewTrainModel(
		dataset.NewCSVSource(dataPath),
		artifact.NewFileStore(outPath),
		registry,
		publisher,
		nil,
		logger,
	)

	resp, err := uc.Execute(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("LDA %.4f (%.4f)\n", resp.MeanAUC, resp.StdAUC)
	fmt.Printf("model saved to %s (checksum %s)\n", resp.Location, resp.Checksum[:12])
	return nil
}
