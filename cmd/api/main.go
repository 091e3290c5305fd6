package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/auth"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/config"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/database"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/handlers"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/logger"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/routes"
)

func main() {
	// 1. --- Load Config ---
	cfg := config.Load()
	auth.Init(cfg.JWTSecret)

	// 2. --- Initialize Logger ---
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	// 3. --- Database Connection & Migrations ---
	db, err := database.OpenDB(cfg)
	if err != nil {
		log.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Error("failed to run migrations", logger.Error(err))
		os.Exit(1)
	}
	log.Info("database ready")

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:  db,
		Cfg: cfg,
		Log: log,
	}

	// 4. --- Background Worker ---
	// Pending requests whose needed_by deadline has passed are cancelled
	// on a fixed cadence so stale demand never lingers on the marketplace.
	go func() {
		interval := time.Duration(cfg.RequestExpirySweepMinutes) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info("request expiry worker started", logger.Any("interval", interval.String()))

		for range ticker.C {
			app.ProcessExpiredRequests()
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.AppPort)
	log.Info("starting HemoTrackr API server", logger.String("addr", addr))
	if err := router.Run(addr); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}
