package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/roadgrid/cvstore/internal/adapter/api/handler"
	"github.com/roadgrid/cvstore/internal/adapter/messaging/kafka"
	"github.com/roadgrid/cvstore/internal/adapter/metrics"
	"github.com/roadgrid/cvstore/internal/adapter/objectstore/minio"
	"github.com/roadgrid/cvstore/internal/adapter/repository/postgres"
	"github.com/roadgrid/cvstore/internal/domain"
	"github.com/roadgrid/cvstore/internal/pkg/bootstrap"
	"github.com/roadgrid/cvstore/internal/pkg/config"
	"github.com/roadgrid/cvstore/internal/pkg/logger"
	"github.com/roadgrid/cvstore/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting archiver worker")

	if cfg.ArchiveEndpoint == "" {
		log.Error("ARCHIVE_ENDPOINT is required for the archiver worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer, "archiver")

	db, err := bootstrap.Postgres(ctx, cfg.PostgresURL, log)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	objects, err := minio.New(ctx, minio.Config{
		Endpoint:  cfg.ArchiveEndpoint,
		AccessKey: cfg.ArchiveAccessKey,
		SecretKey: cfg.ArchiveSecretKey,
		UseSSL:    cfg.ArchiveUseSSL,
		Bucket:    cfg.ArchiveBucket,
	}, log)
	if err != nil {
		log.Error("failed to connect to archive object store", "error", err)
		os.Exit(1)
	}

	archiveRepo := postgres.NewArchiveRepository(db, objects, log, m)
	archiveService := usecase.NewMessageLogService(archiveRepo, domain.TierArchive, m, log)

	archiveHandler := handler.NewArchiveHandler(objects, log)
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	adminMux.HandleFunc("GET /archive/objects", archiveHandler.Objects)

	adminServer := &http.Server{Addr: cfg.AdminAddr, Handler: adminMux}
	go func() {
		log.Info("starting admin server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("admin server failed", "error", err)
		}
	}()

	topics := cfg.TelemetryTopics()
	topicNames := make([]string, 0, len(topics))
	for topic := range topics {
		topicNames = append(topicNames, topic)
	}

	group := cfg.ConsumerGroup
	if group == "" {
		group = "cv-archiver"
	}
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, group, topicNames, log)
	defer consumer.Close()

	log.Info("consuming telemetry topics", "topics", topicNames, "group", group)
	err = consumer.Run(ctx, func(ctx context.Context, msg kafkago.Message) error {
		category, err := domain.ParseCategory(topics[msg.Topic])
		if err != nil {
			return err
		}
		return archiveService.Process(ctx, msg.Value, category)
	})
	if err != nil {
		log.Error("consumer stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", "error", err)
	}
	log.Info("archiver worker shut down gracefully")
}
