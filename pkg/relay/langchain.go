package relay

import (
	"context"
	"fmt"

	"github.com/killallgit/agui/pkg/chat"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// LangChainRelay streams model output through LangChain Go's Ollama
// provider instead of the raw NDJSON endpoint.
type LangChainRelay struct {
	llm llms.Model
}

// NewLangChainRelay creates a relay backed by LangChain Go.
func NewLangChainRelay(baseURL, defaultModel string) (*LangChainRelay, error) {
	var opts []ollama.Option
	if baseURL != "" {
		opts = append(opts, ollama.WithServerURL(baseURL))
	}
	if defaultModel != "" {
		opts = append(opts, ollama.WithModel(defaultModel))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangChain Ollama client: %w", err)
	}

	return &LangChainRelay{llm: llm}, nil
}

// Stream implements Relay via llms.WithStreamingFunc. Each streaming
// callback becomes one fragment, in callback order.
func (r *LangChainRelay) Stream(ctx context.Context, messages []chat.Message, model string) (<-chan Fragment, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		messageType := llms.ChatMessageTypeHuman
		switch msg.Role {
		case chat.RoleSystem:
			messageType = llms.ChatMessageTypeSystem
		case chat.RoleAssistant:
			messageType = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(messageType, msg.Content))
	}

	fragments := make(chan Fragment, 100)

	go func() {
		defer close(fragments)

		streamingFunc := func(ctx context.Context, chunk []byte) error {
			select {
			case fragments <- Fragment{Content: string(chunk)}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		callOpts := []llms.CallOption{llms.WithStreamingFunc(streamingFunc)}
		if model != "" {
			callOpts = append(callOpts, llms.WithModel(model))
		}

		if _, err := r.llm.GenerateContent(ctx, content, callOpts...); err != nil {
			emit(ctx, fragments, Fragment{Err: err})
			return
		}

		emit(ctx, fragments, Fragment{Done: true})
	}()

	return fragments, nil
}

var _ Relay = (*LangChainRelay)(nil)
