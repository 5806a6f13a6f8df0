package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/docmill/internal/api"
	"github.com/timmy/docmill/internal/api/middleware"
	"github.com/timmy/docmill/internal/config"
	"github.com/timmy/docmill/internal/embed"
	"github.com/timmy/docmill/internal/logger"
	"github.com/timmy/docmill/internal/remote"
	"github.com/timmy/docmill/internal/repository"
	"github.com/timmy/docmill/internal/upstream"
	"github.com/timmy/docmill/internal/worker"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "docmill-api",
	})
	logger.SetDefaultLogger(appLogger)

	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	sourceRepo := repository.NewSourceRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	embedder := embed.NewRestEmbedder(&embed.RestEmbedderConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})

	var store embed.VectorStore
	if cfg.Store.Kind == "qdrant" {
		qdrantRepo, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
			Host:            cfg.Qdrant.Host,
			Port:            cfg.Qdrant.Port,
			Collection:      cfg.Qdrant.Collection,
			APIKey:          cfg.Qdrant.APIKey,
			UseTLS:          cfg.Qdrant.UseTLS,
			VectorDimension: cfg.Qdrant.Dimension,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize Qdrant repository")
		}
		defer qdrantRepo.Close()

		if err := qdrantRepo.EnsureCollection(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure Qdrant collection")
		}
		store = embed.NewQdrantStore(qdrantRepo)
	} else {
		store = embed.NewLocalStore()
	}

	upstreamClient := upstream.NewClient(&upstream.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		StoreKind: cfg.Store.Kind,
	})

	w := worker.New(worker.Deps{
		Upstream:    upstreamClient,
		Registry:    remote.NewRegistry(),
		Sink:        embed.NewSink(embedder, store, cfg.Embedding.BatchSize, appLogger),
		Sources:     sourceRepo,
		Attachments: attachmentRepo,
		Logger:      appLogger,
	})

	dispatcher, err := worker.NewDispatcher(w, cfg.Worker.PoolSize, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create dispatcher")
	}
	defer dispatcher.Close()

	router := api.SetupRouter(dispatcher, appLogger, cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.Server.Port).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}
}
