package relay

import "fmt"

// Backend selects the relay implementation.
type Backend string

const (
	BackendOllama    Backend = "ollama"
	BackendLangChain Backend = "langchain"
)

// Config holds what a relay needs to reach the runtime.
type Config struct {
	BaseURL string
	Model   string
	Backend Backend
}

// New creates a relay for the configured backend. The raw Ollama
// backend is the default.
func New(config Config) (Relay, error) {
	switch config.Backend {
	case BackendLangChain:
		return NewLangChainRelay(config.BaseURL, config.Model)
	case BackendOllama, "":
		return NewOllamaRelay(config.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown relay backend: %q", config.Backend)
	}
}
