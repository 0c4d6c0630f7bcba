package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/config"
	"github.com/UnknownOlympus/waypoint/internal/filestore"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/repository"
	"github.com/UnknownOlympus/waypoint/internal/server"
	"github.com/UnknownOlympus/waypoint/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const shutdownTimeout = 5 * time.Second

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	primary, closeDB := setupPrimaryStore(ctx, logger, cfg.Database)
	defer closeDB()

	backup := filestore.New(cfg.LogFile)
	tracker := service.NewTrackerService(logger, primary, backup, appMetrics)
	handler := server.NewHandler(logger, tracker, cfg.VideoURL)

	router := handler.Routes()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		status, body := http.StatusOK, "OK"
		if !primary.IsAvailable(req.Context()) {
			body = "OK (backup file only)"
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			logger.ErrorContext(req.Context(), "failed to write reply", "error", err)
		}
	})

	readTimeout := 5
	writeTimeout := 10
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "Server running", "port", cfg.Port, "backup_file", backup.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "Graceful shutdown failed", "error", err)
	}

	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")
}

// setupPrimaryStore connects to PostgreSQL when it is configured. Any failure leaves the
// service running on the backup file alone.
func setupPrimaryStore(
	ctx context.Context,
	log *slog.Logger,
	cfg config.PostgresConfig,
) (repository.PrimaryStore, func()) {
	if !cfg.Enabled() {
		log.InfoContext(ctx, "No database configured, using backup file only")
		return repository.Disconnected{}, func() {}
	}

	dtb, err := repository.NewDatabase(ctx, cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
	if err != nil {
		log.WarnContext(ctx, "Failed to set up database, using backup file only", "error", err)
		return repository.Disconnected{}, func() {}
	}

	repo := repository.NewRepository(dtb, log)
	if err = repo.EnsureSchema(ctx); err != nil {
		log.WarnContext(ctx, "Database not ready at startup", "error", err)
	}

	return repo, dtb.Close
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelWarn,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
