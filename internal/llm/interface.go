package llm

import (
	"context"

	"careerpilot-utils/pkg/models"
)

// Provider defines the interface for LLM providers. The pipeline treats a
// provider as a black box that accepts a prompt and returns text plus usage
// metrics; timeouts and transport concerns live behind this boundary.
type Provider interface {
	// Complete sends a prompt and returns the provider's completion
	Complete(ctx context.Context, req models.CompletionRequest) (*models.Completion, error)

	// IsHealthy checks if the provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}
