package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/killallgit/agui/pkg/config"
	"github.com/killallgit/agui/pkg/detect"
	"github.com/killallgit/agui/pkg/logger"
	"github.com/killallgit/agui/pkg/ollama"
	"github.com/killallgit/agui/pkg/relay"
	"github.com/killallgit/agui/pkg/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge server",
	Long:  `Serve the AG-UI chat endpoint, relaying requests to Ollama and streaming events back over SSE.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := setup()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Close()

		srv, err := buildServer(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("AG-UI bridge listening on %s (model %s)\n", cfg.Server.Addr(), cfg.Ollama.Model)
		if err := srv.Start(ctx); err != nil {
			logger.Error("server stopped: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func buildServer(cfg *config.Config) (*server.Server, error) {
	modelRelay, err := relay.New(relay.Config{
		BaseURL: cfg.Ollama.URL,
		Model:   cfg.Ollama.Model,
		Backend: relay.Backend(cfg.Relay.Backend),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create relay: %w", err)
	}

	ollamaClient := ollama.NewClientWithTimeout(cfg.Ollama.URL, cfg.Ollama.Timeout)

	return server.New(
		cfg.Server,
		detect.NewKeywordDetector(),
		modelRelay,
		ollamaClient,
		cfg.Ollama.Model,
	), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8000, "port to listen on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	serveCmd.Flags().String("host", "0.0.0.0", "host to bind")
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))

	serveCmd.Flags().String("backend", "ollama", "relay backend (ollama or langchain)")
	viper.BindPFlag("relay.backend", serveCmd.Flags().Lookup("backend"))
}
