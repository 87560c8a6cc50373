package main

import (
	"doacin/cmd/migration/initialize"
	"doacin/cmd/migration/seed"
	"doacin/internal/database"
	"doacin/internal/logger"

	"github.com/spf13/cobra"
)

var rollbackSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New("main").Function("migrate")

		cfg, err := loadConfig()
		if err != nil {
			return log.Err("failed to load config", err)
		}

		return prepareDatabase(cfg, true, false)
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll back the most recent migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New("main").Function("rollback")

		cfg, err := loadConfig()
		if err != nil {
			return log.Err("failed to load config", err)
		}

		db, err := database.New(cfg)
		if err != nil {
			return log.Err("failed to open database", err)
		}
		defer db.Close()

		return initialize.Rollback(db.SQL, cfg, rollbackSteps, log)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the Recife collection centres and the admin account",
	Long: `Insert the Recife collection centres and, when SEED_ADMIN_PASSWORD is
set, an admin account for SEED_ADMIN_EMAIL. Existing rows are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New("main").Function("seed")

		cfg, err := loadConfig()
		if err != nil {
			return log.Err("failed to load config", err)
		}

		db, err := database.New(cfg)
		if err != nil {
			return log.Err("failed to open database", err)
		}
		defer db.Close()

		return seed.Seed(db.SQL, cfg, log)
	},
}

func init() {
	rollbackCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(rollbackCmd)
}
