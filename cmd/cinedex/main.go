package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"cinedex/internal/category"
	"cinedex/internal/config"
	"cinedex/internal/ingest"
	"cinedex/internal/merge"
	"cinedex/internal/notify"
	"cinedex/internal/scraper"
	"cinedex/internal/server"
	"cinedex/internal/storage"
)

func main() {
	ingestRun := flag.Bool("ingest", false, "scrape configured source URLs before serving")
	rebuild := flag.Bool("rebuild", false, "rebuild category artifacts before serving")
	force := flag.Bool("force", false, "rewrite artifacts and stored items even when unchanged")
	createEmpty := flag.Bool("create-empty", false, "write artifacts for categories with zero matches")
	comprehensive := flag.Bool("comprehensive", false, "include free-text search when matching categories")
	typeFilter := flag.String("type", "", "restrict rebuild to one category type")
	slugFilter := flag.String("slug", "", "restrict rebuild to one slug")
	flag.Parse()

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	log.WithFields(logrus.Fields{
		"badgerdb_path": cfg.BadgerDBPath,
		"artifact_dir":  cfg.ArtifactDir,
		"listen_addr":   cfg.ListenAddr,
	}).Info("Configuration loaded successfully")

	// --- Initialize Components ---
	log.Info("Initializing components...")

	merger := merge.New(log)

	// Database. Storage unavailable at startup is the one fatal failure.
	repo, err := storage.NewBadgerRepository(cfg.BadgerDBPath, merger, log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		log.Info("Closing database...")
		if err := repo.Close(); err != nil {
			log.WithError(err).Error("Error closing database")
		}
	}()

	// Optional Telegram announcements.
	var notifier ingest.Notifier
	if cfg.TelegramBotToken != "" {
		tn, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram notifier: %v", err)
		}
		notifier = tn
	}

	tax, err := category.Load(cfg.TaxonomyFile)
	if err != nil {
		log.Fatalf("Failed to load category taxonomy: %v", err)
	}

	matcher := category.NewMatcher(log)
	materializer := category.NewMaterializer(cfg.ArtifactDir, log)
	ingestService := ingest.New(repo, notifier, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Ingest Pass ---
	if *ingestRun {
		if len(cfg.SourceURLs) == 0 {
			log.Warn("Ingest requested but no source URLs configured")
		} else {
			summary, err := ingestService.RunSource(ctx, scraper.NewRodScraper(log), cfg.SourceURLs, *force)
			if err != nil {
				log.WithError(err).Error("Ingest run aborted")
			}
			log.WithFields(logrus.Fields{
				"created": summary.Created,
				"updated": summary.Updated,
				"failed":  summary.Failed,
			}).Info("Ingest pass finished")
		}
	}

	// --- Category Rebuild ---
	if *rebuild {
		items, err := repo.All(ctx)
		if err != nil {
			log.Fatalf("Failed to scan canonical store: %v", err)
		}
		result := matcher.Match(tax, items, category.MatchOptions{Comprehensive: *comprehensive})
		manifest := materializer.Materialize(result, tax, category.MaterializeOptions{
			Force:       *force,
			CreateEmpty: *createEmpty,
			Type:        *typeFilter,
			Slug:        *slugFilter,
		})
		if len(manifest.Errors) > 0 {
			log.WithField("errors", manifest.Errors).Warn("Category rebuild finished with per-slug errors")
		}
	}

	// --- HTTP Server ---
	cache := server.NewPageCache(cfg.CacheSize, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	srv := server.New(repo, materializer, tax, cache, log)
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server stopped unexpectedly")
			stop()
		}
	}()

	log.Info("cinedex is running. Press Ctrl+C to exit.")
	<-ctx.Done()

	// --- Graceful Shutdown ---
	log.Info("Shutting down cinedex...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	log.Info("cinedex shut down gracefully.")
}
