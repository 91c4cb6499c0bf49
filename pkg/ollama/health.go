package ollama

import (
	"context"
	"fmt"

	"github.com/killallgit/agui/pkg/logger"
)

// HealthStatus represents the health status of the Ollama service
type HealthStatus struct {
	Available bool
	Error     error
	Models    []Model
}

// CheckHealth checks if Ollama is reachable and returns the models it
// has available. Connectivity failures are reported in the status, not
// as a call error.
func (c *Client) CheckHealth(ctx context.Context) *HealthStatus {
	tagsResp, err := c.Tags(ctx)
	if err != nil {
		logger.Error("Ollama health check failed: %v", err)
		return &HealthStatus{
			Available: false,
			Error:     fmt.Errorf("cannot connect to Ollama at %s: %w", c.baseURL, err),
		}
	}

	logger.Debug("Ollama health check successful, %d models", len(tagsResp.Models))
	return &HealthStatus{
		Available: true,
		Models:    tagsResp.Models,
	}
}

// ModelNames returns the names of the available models.
func (h *HealthStatus) ModelNames() []string {
	names := make([]string, 0, len(h.Models))
	for _, model := range h.Models {
		names = append(names, model.Name)
	}
	return names
}
