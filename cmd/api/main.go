package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/app"
	"github.com/TuilaBo/TechRent-Backend-sub001/internal/clock"
	"github.com/TuilaBo/TechRent-Backend-sub001/internal/config"
	"github.com/TuilaBo/TechRent-Backend-sub001/internal/storage/postgres"
	transporthttp "github.com/TuilaBo/TechRent-Backend-sub001/internal/transport/http"
	"github.com/TuilaBo/TechRent-Backend-sub001/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Warn(".env not loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect to db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Error("db ping", "error", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	clk := clock.NewSystem()

	reservationRepo := postgres.NewReservationRepository(pool)
	ledger := app.NewReservationService(reservationRepo, clk, logger, app.WithHoldTTL(cfg.HoldTTL()))

	bookingRepo := postgres.NewBookingRepository(pool)
	calendar := app.NewBookingService(bookingRepo, clk, logger)

	deviceRepo := postgres.NewDeviceRepository(pool)
	availability := app.NewAvailabilityService(deviceRepo, bookingRepo, ledger, app.AvailabilityPolicy{
		EligibleDeviceStatuses:     cfg.EligibleDeviceStatusList(),
		DefaultBlockingStatuses:    cfg.DefaultBlockingStatusList(),
		TechnicianBlockingStatuses: cfg.TechnicianBlockingStatusList(),
	})

	router := transporthttp.NewRouter(transporthttp.RouterDeps{
		Availability: availability,
		Reservations: ledger,
		Bookings:     calendar,
		CORSOrigins:  cfg.CORSOriginList(),
		Logger:       logger,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := app.NewSweeper(ledger, cfg.SweepInterval(), logger)
	go sweeper.Run(sweepCtx)

	logger.Info("api listening", "port", cfg.Port, "sweep_interval", cfg.SweepInterval())

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
