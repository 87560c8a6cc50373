package main

import (
	"fmt"
	"os"

	"doacin/config"
	"doacin/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "doacin",
	Short: "DoaCin blood donation loyalty backend",
	Long: `DoaCin tracks blood donations, rewards confirmed donations with
Capibas and tells donors when they may donate again.

Configuration is read from config.yaml, a .env file and the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win.
		_ = godotenv.Load(envFiles...)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(conectaCmd)
}

// loadConfig reads configuration and points the process logger at it.
func loadConfig() (config.Config, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return config.Config{}, err
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
