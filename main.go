package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/lexibot/internal/api"
	"github.com/example/lexibot/internal/config"
	"github.com/example/lexibot/internal/delivery/telegram"
	"github.com/example/lexibot/internal/importer"
	"github.com/example/lexibot/internal/logger"
	"github.com/example/lexibot/internal/notifier"
	"github.com/example/lexibot/internal/scheduler"
	"github.com/example/lexibot/internal/store"
)

func main() {
	importFile := flag.String("import", "", "import vocabulary from an .xlsx or .csv file and exit")
	importUser := flag.String("user", "", "user id owning the imported cards")
	flag.Parse()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("warning: Error loading .env file (this is fine in production): %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	st, closeStore, err := connectStore(cfg)
	if err != nil {
		zlog.Fatal("failed to connect record store", zap.Error(err))
	}
	defer closeStore()

	if *importFile != "" {
		runImport(st, zlog, *importFile, *importUser)
		return
	}

	var pusher notifier.Pusher
	if cfg.TelegramToken != "" {
		tg, err := telegram.NewPusher(cfg.TelegramToken, zlog)
		if err != nil {
			zlog.Fatal("failed to create telegram pusher", zap.Error(err))
		}
		pusher = tg
	}

	scanner := notifier.New(st, pusher, zlog, notifier.Config{
		Workers:     cfg.Scan.Workers,
		Deduplicate: cfg.Scan.Deduplicate,
	})

	sched := scheduler.New(scanner, zlog, cfg.Scan.Hour, cfg.Scan.Timeout)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	handler := api.NewHandler(st, scanner, zlog)
	router := api.NewRouter(handler, api.AuthConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		Bypass:    cfg.Auth.Bypass,
	}, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		zlog.Info("server starting", zap.Int("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	zlog.Info("received signal, shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	zlog.Info("server stopped")
}

func connectStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendSupabase:
		s, err := store.NewSupabase(cfg.Store.SupabaseURL, cfg.Store.SupabaseKey)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case config.BackendPostgres:
		s, err := store.ConnectSQL("postgres", cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		s, err := store.ConnectSQL("sqlite3", cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func runImport(st store.Store, zlog *zap.Logger, file, userID string) {
	if userID == "" {
		zlog.Fatal("-user is required with -import")
	}

	result, err := importer.New(st).ImportWords(context.Background(), importer.DefaultConfig(file, userID))
	if err != nil {
		zlog.Fatal("import failed", zap.Error(err))
	}
	zlog.Info("import finished",
		zap.Int("processed", result.TotalProcessed),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	for _, e := range result.Errors {
		zlog.Warn("import row error", zap.String("detail", e))
	}
}
