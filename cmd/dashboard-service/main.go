package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/synaptica-ai/trialscope/pkg/analytics/charts"
	"github.com/synaptica-ai/trialscope/pkg/api"
	"github.com/synaptica-ai/trialscope/pkg/common/config"
	"github.com/synaptica-ai/trialscope/pkg/common/database"
	"github.com/synaptica-ai/trialscope/pkg/common/kafka"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
	"github.com/synaptica-ai/trialscope/pkg/datastore"
	"github.com/synaptica-ai/trialscope/pkg/filters"
	"github.com/synaptica-ai/trialscope/pkg/normalizer"
	"github.com/synaptica-ai/trialscope/pkg/sources"
	"github.com/synaptica-ai/trialscope/pkg/terminology"
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

func main() {
	logger.Init()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := terminology.Load(cfg.TerminologyPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load terminology catalog")
	}

	fetch := sources.FetchOptions{Timeout: cfg.DatasetFetchTimeout, Attempts: cfg.DatasetFetchTries}
	us := sources.New(string(trials.SourceUS), cfg.USDatasetPath, fetch)
	eu := sources.New(string(trials.SourceEU), cfg.EUDatasetPath, fetch)

	state := filters.NewState()
	var opts []datastore.Option
	var producer *kafka.Producer
	var consumer *kafka.Consumer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(cfg, cfg.KafkaEventsTopic)
		opts = append(opts, datastore.WithPublisher(producer))
		consumer = kafka.NewConsumer(cfg, cfg.KafkaFilterTopic, cfg.KafkaGroupID)
	}

	ingest := normalizer.NewService(normalizer.NewTransformer(catalog))
	store := datastore.NewService(ingest, us, eu, state, opts...)

	if consumer != nil {
		go func() {
			if err := consumer.Consume(ctx, filters.CommandHandler(state)); err != nil && ctx.Err() == nil {
				logger.Log.WithError(err).Error("Filter command consumer stopped")
			}
		}()
	}

	layouts, err := newLayoutService(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize layouts")
	}

	chartCache, err := charts.NewCache(64)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize chart cache")
	}

	handler := api.NewHandler(store, layouts, newPreferenceStore(cfg), chartCache, api.WithLoadTimeout(cfg.DatasetFetchTimeout*2))

	if cfg.LoadOnStart {
		go func() {
			if err := store.Load(ctx); err != nil {
				logger.Log.WithError(err).Warn("Initial dataset load failed")
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      api.NewRouter(handler, cfg.MaxRequestBody),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Dashboard service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down dashboard service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}
	if consumer != nil {
		consumer.Close()
	}
	if producer != nil {
		producer.Close()
	}
	database.ClosePostgres()
	database.CloseRedis()

	logger.Log.Info("Dashboard service stopped")
}
