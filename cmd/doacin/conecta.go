package main

import (
	"encoding/json"
	"os"

	"doacin/internal/conecta"
	"doacin/internal/logger"

	"github.com/spf13/cobra"
)

var conectaCmd = &cobra.Command{
	Use:   "conecta",
	Short: "Inspect the Conecta gamification integration",
}

var conectaChallengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "List challenges visible to the service account",
	Long: `List the challenges and requirements visible to the Conecta service
account as JSON. Use it to find CONECTA_CHALLENGE_ID and
CONECTA_REQUIREMENT_ID for donation check-ins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New("main").Function("conectaChallenges")

		cfg, err := loadConfig()
		if err != nil {
			return log.Err("failed to load config", err)
		}

		client := conecta.New(cfg)
		if !client.Enabled() {
			return log.Err("conecta settings missing", conecta.ErrNotConfigured)
		}

		ctx, stop := withSignals(cmd.Context())
		defer stop()

		challenges, err := client.Challenges(ctx)
		if err != nil {
			return log.Err("failed to list challenges", err)
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(challenges)
	},
}

func init() {
	conectaCmd.AddCommand(conectaChallengesCmd)
}
