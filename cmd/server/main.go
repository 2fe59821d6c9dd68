package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mfrancon/roomreserve/internal/app"
	"github.com/mfrancon/roomreserve/internal/clock"
	"github.com/mfrancon/roomreserve/internal/config"
	"github.com/mfrancon/roomreserve/internal/repository"
	"github.com/mfrancon/roomreserve/internal/service"
	transport "github.com/mfrancon/roomreserve/internal/transport/http"
	"github.com/mfrancon/roomreserve/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if version, err := migrator.Version(ctx); err == nil {
		logger.Info("Database migrated", zap.Int64("version", version))
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	reservationRepo := repository.NewReservationRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	clk := clock.Real{}
	validator := validation.New(clk)

	reservationSvc := service.NewReservationService(reservationRepo, roomRepo, userRepo, validator, clk, logger)
	roomSvc := service.NewRoomService(roomRepo, userRepo, logger)
	userSvc := service.NewUserService(userRepo, logger)

	router := transport.NewRouter(transport.RouterConfig{
		Reservations: transport.NewReservationHandler(reservationSvc, logger),
		Rooms:        transport.NewRoomHandler(roomSvc, reservationSvc, logger),
		Users:        transport.NewUserHandler(userSvc, logger),
		Logger:       logger,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
