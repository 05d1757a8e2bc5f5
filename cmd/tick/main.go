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
	"github.com/robfig/cron/v3"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/roadgrid/cvstore/internal/adapter/messaging/kafka"
	"github.com/roadgrid/cvstore/internal/adapter/metrics"
	"github.com/roadgrid/cvstore/internal/pkg/config"
	"github.com/roadgrid/cvstore/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting tick producer")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer, "tick")

	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	adminServer := &http.Server{Addr: cfg.AdminAddr, Handler: adminMux}
	go func() {
		log.Info("starting admin server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("admin server failed", "error", err)
		}
	}()

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.TopicTick, log)
	defer producer.Close()

	scheduler := cron.New()
	_, err = scheduler.AddFunc("* * * * *", func() {
		now := time.Now().UTC()
		msg := kafkago.Message{
			Key:   []byte("tick"),
			Value: []byte(now.Format(time.RFC3339)),
		}
		if err := producer.Publish(ctx, msg); err != nil {
			log.Error("failed to publish tick", "error", err)
			m.JobRuns.WithLabelValues("tick", "error").Inc()
			return
		}
		m.JobRuns.WithLabelValues("tick", "ok").Inc()
		log.Debug("published tick", "at", now)
	})
	if err != nil {
		log.Error("failed to schedule tick", "error", err)
		os.Exit(1)
	}

	scheduler.Start()
	log.Info("publishing ticks every minute", "topic", cfg.TopicTick)

	<-ctx.Done()

	schedulerCtx := scheduler.Stop()
	<-schedulerCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", "error", err)
	}
	log.Info("tick producer shut down gracefully")
}
