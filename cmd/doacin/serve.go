package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"doacin/cmd/migration/initialize"
	"doacin/cmd/migration/seed"
	"doacin/config"
	"doacin/internal/app"
	"doacin/internal/database"
	"doacin/internal/handlers"
	"doacin/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	serveMigrate bool
	serveSeed    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply pending migrations before serving")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "seed collection points and the admin account before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.New("main").Function("runServe")

	cfg, err := loadConfig()
	if err != nil {
		return log.Err("failed to load config", err)
	}

	if serveMigrate || serveSeed {
		if err := prepareDatabase(cfg, serveMigrate, serveSeed); err != nil {
			return err
		}
	}

	a, err := app.NewWithConfig(cfg)
	if err != nil {
		return log.Err("failed to initialize app", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Er("failed to close app", err)
		}
	}()

	server := fiber.New(fiber.Config{
		AppName:               "doacin " + cfg.GeneralVersion,
		DisableStartupMessage: !cfg.IsDevelopment(),
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})
	server.Use(recover.New())
	server.Use(requestid.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins: cfg.ServerCorsOrigins,
		AllowHeaders: strings.Join([]string{
			fiber.HeaderOrigin,
			fiber.HeaderContentType,
			fiber.HeaderAccept,
			fiber.HeaderAuthorization,
		}, ", "),
	}))

	if err := handlers.Router(server, a); err != nil {
		return log.Err("failed to register routes", err)
	}

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.ServerPort, "env", cfg.ServerEnv)
		errCh <- server.Listen(fmt.Sprintf(":%d", cfg.ServerPort))
	}()

	select {
	case err := <-errCh:
		return log.Err("server stopped", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Er("failed to shutdown server", err)
	}
	return nil
}

func prepareDatabase(cfg config.Config, migrate, seedData bool) error {
	log := logger.New("main").Function("prepareDatabase")

	db, err := database.New(cfg)
	if err != nil {
		return log.Err("failed to open database", err, "driver", cfg.DatabaseDriver)
	}
	defer db.Close()

	if migrate {
		if err := initialize.InitializeTables(db.SQL, cfg, log); err != nil {
			return log.Err("failed to migrate database", err)
		}
	}

	if seedData {
		if err := seed.Seed(db.SQL, cfg, log); err != nil {
			return log.Err("failed to seed database", err)
		}
	}

	return nil
}

// withSignals cancels the returned context on SIGINT or SIGTERM.
func withSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
