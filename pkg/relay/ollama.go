package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/killallgit/agui/pkg/chat"
	"github.com/killallgit/agui/pkg/logger"
)

// OllamaRelay streams chat completions from Ollama's native
// /api/chat endpoint, one fragment per NDJSON chunk.
type OllamaRelay struct {
	baseURL    string
	httpClient *http.Client
}

// NewOllamaRelay creates a relay against the given Ollama base URL.
// The HTTP client carries no hard timeout; streaming lifetime is
// bounded by the request context instead.
func NewOllamaRelay(baseURL string) *OllamaRelay {
	return &OllamaRelay{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatChunk struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// Stream implements Relay over Ollama's NDJSON streaming response.
func (r *OllamaRelay) Stream(ctx context.Context, messages []chat.Message, model string) (<-chan Fragment, error) {
	wireMessages := make([]ollamaMessage, 0, len(messages))
	for _, msg := range messages {
		wireMessages = append(wireMessages, ollamaMessage{Role: msg.Role, Content: msg.Content})
	}

	reqBody, err := json.Marshal(ollamaChatRequest{
		Model:    model,
		Messages: wireMessages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", r.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errorBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
		}

		var errorResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(errorBody, &errorResp) == nil && errorResp.Error != "" {
			return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, errorResp.Error)
		}
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(errorBody))
	}

	fragments := make(chan Fragment, 100)
	go r.readStream(ctx, resp.Body, fragments)

	return fragments, nil
}

// readStream turns NDJSON chunks into fragments until done, error, or
// cancellation. The body is always closed on exit.
func (r *OllamaRelay) readStream(ctx context.Context, body io.ReadCloser, fragments chan<- Fragment) {
	defer close(fragments)
	defer body.Close()

	scanner := bufio.NewScanner(body)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			// Best effort; the consumer may already be gone.
			select {
			case fragments <- Fragment{Err: ctx.Err()}:
			default:
			}
			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk ollamaChatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			emit(ctx, fragments, Fragment{Err: fmt.Errorf("failed to parse stream chunk: %w", err)})
			return
		}

		if chunk.Error != "" {
			emit(ctx, fragments, Fragment{Err: errors.New(chunk.Error)})
			return
		}

		if chunk.Message.Content != "" {
			if !emit(ctx, fragments, Fragment{Content: chunk.Message.Content}) {
				return
			}
		}

		if chunk.Done {
			emit(ctx, fragments, Fragment{Done: true})
			return
		}
	}

	if err := scanner.Err(); err != nil {
		emit(ctx, fragments, Fragment{Err: fmt.Errorf("stream reading error: %w", err)})
		return
	}

	// EOF without a done marker. Report it so the session does not
	// emit a clean end for a truncated stream.
	logger.Warn("ollama stream ended without done marker")
	emit(ctx, fragments, Fragment{Err: errors.New("stream ended unexpectedly")})
}

var _ Relay = (*OllamaRelay)(nil)
