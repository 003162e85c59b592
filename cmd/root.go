package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-mindgarden/config"
	"go-mindgarden/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mindgarden",
	Short: "Rule-based mood journal and companion chatbot",
	Long: `mindgarden classifies journal entries and speech transcripts into emotions,
suggests coping strategies, and runs a small rule-based companion chatbot.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}
