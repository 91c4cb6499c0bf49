package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/killallgit/agui/pkg/chat"
	"github.com/killallgit/agui/pkg/client"
	"github.com/killallgit/agui/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bridge from the terminal",
	Long: `Interactive console client for the bridge server. Streams the
assistant's reply as it arrives and renders UI mutations (theme
changes, buttons) as notices. Use --prompt for a single turn.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := setup()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Close()

		console := &consoleChat{
			serverURL: cfg.Client.ServerURL,
			renderer:  client.NewConsoleRenderer(os.Stdout),
			state:     client.NewState(client.DefaultThemeColor),
			conv:      chat.NewConversationWithSystem(cfg.Ollama.Model, viper.GetString("system")),
		}

		if prompt := viper.GetString("prompt"); prompt != "" {
			if err := console.turn(cmd.Context(), prompt); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		console.loop(cmd.Context())
	},
}

// consoleChat holds one interactive conversation with the bridge.
type consoleChat struct {
	serverURL string
	renderer  *client.ConsoleRenderer
	state     client.State
	conv      chat.Conversation
}

func (c *consoleChat) loop(ctx context.Context) {
	fmt.Printf("Connected to %s (model %s). Ctrl-D to quit.\n", c.serverURL, c.conv.Model)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if err := c.turn(ctx, input); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

// turn sends the full conversation plus the new user message and folds
// the streamed reply back into the history.
func (c *consoleChat) turn(ctx context.Context, input string) error {
	userMessage := chat.NewUserMessage(input)
	if userMessage.IsEmpty() {
		return nil
	}

	c.state = c.state.NextTurn()
	c.conv = chat.AddMessage(c.conv, userMessage)

	body, err := json.Marshal(map[string]any{
		"messages": chat.WireMessages(c.conv),
		"model":    c.conv.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// No client timeout: streams stay open for as long as the model
	// generates.
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach bridge at %s: %w", c.serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	final, err := client.NewReader(c.state).Read(ctx, resp.Body, c.renderer)
	c.state = final
	if err != nil {
		return err
	}

	if final.ErrorText != "" {
		// Reported in-band by the renderer. Record the failure locally;
		// WireMessages keeps it off the next request.
		c.conv = chat.AddMessage(c.conv, chat.NewErrorMessage(final.ErrorText))
		return nil
	}

	c.conv = chat.AddMessage(c.conv, chat.NewAssistantMessage(final.AssistantText))
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		return errors.New(payload.Detail)
	}
	return fmt.Errorf("bridge returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("prompt", "p", "", "send a single prompt and exit")
	viper.BindPFlag("prompt", chatCmd.Flags().Lookup("prompt"))

	chatCmd.Flags().String("server", "http://localhost:8000", "bridge server URL")
	viper.BindPFlag("client.server_url", chatCmd.Flags().Lookup("server"))

	chatCmd.Flags().StringP("system", "s", "", "system prompt to seed the conversation")
	viper.BindPFlag("system", chatCmd.Flags().Lookup("system"))
}
