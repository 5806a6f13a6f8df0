package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/timmy/docmill/internal/config"
	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/embed"
	"github.com/timmy/docmill/internal/logger"
	"github.com/timmy/docmill/internal/remote"
	"github.com/timmy/docmill/internal/repository"
	"github.com/timmy/docmill/internal/upstream"
	"github.com/timmy/docmill/internal/worker"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "docmill-worker",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	mode := flag.String("mode", "ingest", "Job to run: ingest, remote, sync, attachment")
	jobName := flag.String("job", "", "Job name")
	user := flag.String("user", "local", "Owning user")
	filename := flag.String("file", "", "Stored filename (ingest) or attachment filename")
	directory := flag.String("dir", "", "Working-directory root; defaults from config")
	loader := flag.String("loader", "url", "Remote loader tag")
	sourceData := flag.String("source-data", "", "Remote loader configuration as JSON")
	docID := flag.String("doc-id", "", "Existing document-set id (remote sync mode)")
	opMode := flag.String("op", worker.ModeUpload, "Remote operation mode: upload or sync")
	frequency := flag.String("frequency", domain.SyncDaily, "Sync frequency to run")
	folder := flag.String("folder", "", "Attachment folder")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if *directory == "" {
		*directory = cfg.Worker.Dir
	}

	appLogger.WithFields(logger.Fields{
		"mode": *mode,
		"job":  *jobName,
		"user": *user,
	}).Info("Starting worker")

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	sourceRepo := repository.NewSourceRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

		if err := qdrantRepo.EnsureCollection(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure Qdrant collection")
		}
		store = embed.NewQdrantStore(qdrantRepo)
	} else {
		store = embed.NewLocalStore()
	}

	w := worker.New(worker.Deps{
		Upstream: upstream.NewClient(&upstream.Config{
			BaseURL:   cfg.API.BaseURL,
			Timeout:   cfg.API.Timeout,
			StoreKind: cfg.Store.Kind,
		}),
		Registry:    remote.NewRegistry(),
		Sink:        embed.NewSink(embedder, store, cfg.Embedding.BatchSize, appLogger),
		Sources:     sourceRepo,
		Attachments: attachmentRepo,
		Logger:      appLogger,
	})

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	progress := func(p int) {
		appLogger.WithField("progress", p).Info("Job progress")
	}

	switch *mode {
	case "ingest":
		result, err := w.Ingest(ctx, worker.IngestParams{
			Directory: *directory,
			Formats:   cfg.Worker.Formats,
			JobName:   *jobName,
			Filename:  *filename,
			User:      *user,
		}, progress)
		if err != nil {
			appLogger.WithError(err).Fatal("Ingestion failed")
		}
		printResult(appLogger, result)
	case "remote":
		var remoteConfig domain.RemoteConfig
		if *sourceData != "" {
			dec := json.NewDecoder(strings.NewReader(*sourceData))
			if err := dec.Decode(&remoteConfig); err != nil {
				appLogger.WithError(err).Fatal("Invalid source data")
			}
		}
		result, err := w.RemoteIngest(ctx, worker.RemoteParams{
			Config:    remoteConfig,
			JobName:   *jobName,
			User:      *user,
			Loader:    *loader,
			Directory: *directory,
			Mode:      *opMode,
			DocID:     *docID,
		}, progress)
		if err != nil {
			appLogger.WithError(err).Fatal("Remote ingestion failed")
		}
		printResult(appLogger, result)
	case "sync":
		stats, err := w.Sync(ctx, *frequency, *directory)
		if err != nil {
			appLogger.WithError(err).Fatal("Sync failed")
		}
		appLogger.WithFields(logger.Fields{
			"total":   stats.TotalSyncCount,
			"success": stats.SyncSuccess,
			"failure": stats.SyncFailure,
		}).Info("Sync completed")
		printResult(appLogger, stats)
	case "attachment":
		result := w.Attachment(ctx, worker.AttachmentParams{
			Directory: *directory,
			Folder:    *folder,
			Filename:  *filename,
			User:      *user,
		}, progress)
		if !result.OK() {
			appLogger.WithField("error", result.Error).Error("Attachment processing failed")
		}
		printResult(appLogger, result)
	default:
		appLogger.WithField("mode", *mode).Fatal("Unknown job mode")
	}
}

func printResult(log *logger.Logger, v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.WithError(err).Error("Failed to encode result")
		return
	}
	os.Stdout.Write(append(out, '\n'))
}
