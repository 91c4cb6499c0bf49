package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/agui/pkg/logger"
	"github.com/killallgit/agui/pkg/ollama"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models",
	Long:  `List all models the configured Ollama runtime has downloaded.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := setup()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Close()

		client := ollama.NewClientWithTimeout(cfg.Ollama.URL, cfg.Ollama.Timeout)
		tags, err := client.Tags(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing models: %v\n", err)
			os.Exit(1)
		}

		if len(tags.Models) == 0 {
			fmt.Println("No models found. Pull one with: ollama pull mistral:latest")
			return
		}

		for _, model := range tags.Models {
			fmt.Println(model.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
