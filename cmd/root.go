package cmd

import (
	"os"

	"github.com/killallgit/agui/pkg/config"
	"github.com/killallgit/agui/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "agui",
	Short: "AG-UI bridge for local Ollama models",
	Long: `Bridges a chat frontend to a local Ollama runtime, streaming
responses back as AG-UI events. Keyword commands in user messages
drive UI mutations like theme changes and dynamic buttons.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .agui/settings.yaml)")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("ollama-url", "http://localhost:11434", "Ollama base URL")
	viper.BindPFlag("ollama.url", rootCmd.PersistentFlags().Lookup("ollama-url"))

	rootCmd.PersistentFlags().StringP("model", "m", "mistral:latest", "model to use for chat requests")
	viper.BindPFlag("ollama.model", rootCmd.PersistentFlags().Lookup("model"))
}

// setup loads configuration and brings up the logger, shared by every
// subcommand.
func setup() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.Preserve); err != nil {
		return nil, err
	}

	return cfg, nil
}
