package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	httpapi "rentacar-calendar/internal/api/http"
	"rentacar-calendar/internal/calendar"
	"rentacar-calendar/internal/config"
	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/jobs"
	"rentacar-calendar/internal/logger"
	"rentacar-calendar/internal/repository"
	"rentacar-calendar/internal/repository/postgres"
	"rentacar-calendar/internal/repository/rest"
	"rentacar-calendar/internal/scheduler"
	"rentacar-calendar/internal/security"
	"rentacar-calendar/internal/service"
	"rentacar-calendar/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit ('refresh-calendar', 'check-token', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Booking Calendar...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Booking API configuration", "base_url", cfg.API.BaseURL, "timeout", cfg.APITimeout().String())

	// Initialize Security
	tokens := security.NewTokenInspector()
	if err := tokens.CheckUsable(cfg.API.Token); err != nil {
		logger.Warn("Booking API token is not usable", "error", err)
	}

	// Initialize Repositories
	client := rest.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.APITimeout(), rest.WithTokenInspector(tokens))
	store := rest.NewStore(client)

	filterRepo, closeFilters, err := openFilterRepository(cfg)
	if err != nil {
		logger.Error("Failed to open preferences store", "type", cfg.Preferences.Type, "error", err)
		log.Fatalf("Failed to open preferences store: %v", err)
	}
	defer closeFilters()

	// Initialize the calendar
	bus := events.NewBus()
	feed := events.NewFeed(bus.Toast, 100)
	defer feed.Close()

	colors := calendar.NewColorAssigner(cfg.Calendar.Palette, cfg.Calendar.CarColors)
	panel := calendar.NewPanel(store.BookingRepository, filterRepo, bus, colors, calendar.Options{
		Mode:            domain.ViewMode(cfg.Calendar.Mode),
		Weekly:          cfg.Calendar.Weekly,
		DefaultDuration: time.Duration(cfg.Calendar.DefaultDurationHours) * time.Hour,
		MinimumDuration: time.Duration(cfg.Calendar.MinimumDurationMinutes) * time.Minute,
		FilterKey:       cfg.Preferences.Key,
		ReloadTimeout:   cfg.APITimeout(),
	})
	defer panel.Close()

	// Initialize Services
	bookingSvc := service.NewBookingService(store.BookingRepository, store.CarRepository, bus)
	filterSvc := service.NewFilterService(filterRepo, cfg.Preferences.Key)
	carSvc := service.NewCarListService(store.CarRepository, store.BookingRepository, filterSvc, bus)
	defer carSvc.Close()

	jobRunner := jobs.NewJobRunner(panel, tokens, bus, cfg)

	if *runOnce != "" {
		runJobOnce(jobRunner, *runOnce)
		return
	}

	// Initial load, a failure here is not fatal since the scheduler retries
	ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout())
	if err := panel.Refresh(ctx); err != nil {
		logger.Warn("Initial calendar load failed", "error", err)
	}
	cancel()

	// Initialize HTTP handlers
	router := mux.NewRouter()
	httpapi.RegisterRoutes(router, httpapi.Handlers{
		Calendar:      httpapi.NewCalendarHandler(panel, bus),
		Bookings:      httpapi.NewBookingHandler(bookingSvc),
		Cars:          httpapi.NewCarHandler(carSvc),
		Notifications: httpapi.NewNotificationHandler(feed),
	})

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.Wrap(router, cfg.Server.AllowedOrigins, os.Stdout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Initialize scheduler
	sched, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Failed to create scheduler", "error", err)
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Booking Calendar stopped")
}

// openFilterRepository picks the preferences backend from the configuration
func openFilterRepository(cfg *config.Config) (repository.FilterRepository, func(), error) {
	if cfg.Preferences.Type != "postgres" {
		logger.Info("Using local preferences store", "dir", cfg.Preferences.Dir)
		local, err := storage.NewLocalStore(cfg.Preferences.Dir)
		if err != nil {
			return nil, nil, err
		}
		return local, func() {}, nil
	}

	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to prepare preferences table: %w", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	return store.FilterRepository, func() { store.Close() }, nil
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jr *jobs.JobRunner, jobName string) {
	logger.Info("Running job once", "job", jobName)

	switch jobName {
	case "refresh-calendar":
		jr.RefreshVisibleWindow()
	case "check-token":
		jr.WarnExpiringToken()
	case "all":
		jr.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		log.Fatalf("Unknown job name: %s", jobName)
	}

	logger.Info("Job completed successfully", "job", jobName)
}
