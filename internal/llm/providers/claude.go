package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"careerpilot-utils/internal/config"
	"careerpilot-utils/internal/logging"
	"careerpilot-utils/internal/pipeline/aierrors"
	"careerpilot-utils/pkg/models"
)

// ClaudeProvider implements the LLM provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client anthropic.Client
	config *config.Config
	logger logging.Logger
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.APIKey),
	)

	return &ClaudeProvider{
		client: client,
		config: cfg,
		logger: logging.GetGlobalLogger().WithField("provider", "claude"),
	}
}

// Complete sends a prompt to Claude and maps the response into the
// provider-agnostic completion shape
func (cp *ClaudeProvider) Complete(ctx context.Context, req models.CompletionRequest) (*models.Completion, error) {
	startTime := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = cp.config.LLM.MaxTokens
	}

	temperature := req.Temperature
	if temperature <= 0 {
		temperature = cp.config.LLM.Temperature
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.LLM.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(float64(temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: req.Prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	response, err := cp.client.Messages.New(ctx, params)
	if err != nil {
		return nil, cp.wrapError(err)
	}

	completion := cp.mapResponse(response)

	cp.logger.Debug("Claude call completed", map[string]interface{}{
		"model":           completion.Model,
		"input_tokens":    completion.Usage.InputTokens,
		"output_tokens":   completion.Usage.OutputTokens,
		"processing_time": time.Since(startTime),
		"stop_reason":     completion.StopReason,
	})

	return completion, nil
}

// mapResponse converts an Anthropic message into the provider-agnostic
// completion: text blocks are concatenated, tool-use blocks become
// structured tool calls with their raw JSON arguments intact.
func (cp *ClaudeProvider) mapResponse(response *anthropic.Message) *models.Completion {
	var textParts []string
	var toolCalls []models.ToolCall

	for _, block := range response.Content {
		switch block.Type {
		case "text":
			textParts = append(textParts, block.AsText().Text)
		case "tool_use":
			toolUse := block.AsToolUse()
			toolCalls = append(toolCalls, models.ToolCall{
				ID:        toolUse.ID,
				Name:      toolUse.Name,
				Arguments: toolUse.Input,
			})
		}
	}

	return &models.Completion{
		Text:       strings.TrimSpace(strings.Join(textParts, "\n")),
		Model:      string(response.Model),
		StopReason: string(response.StopReason),
		Usage: models.TokenUsage{
			InputTokens:  int(response.Usage.InputTokens),
			OutputTokens: int(response.Usage.OutputTokens),
		},
		ToolCalls: toolCalls,
	}
}

// wrapError surfaces provider HTTP status codes so the classifier can match
// on them before falling back to message text
func (cp *ClaudeProvider) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &aierrors.HTTPError{
			StatusCode: apiErr.StatusCode,
			Body:       apiErr.Error(),
		}
	}
	return fmt.Errorf("claude API call failed: %w", err)
}

// IsHealthy checks if the Claude provider is healthy and available
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.config.LLM.APIKey == "" {
		return fmt.Errorf("Claude API key not configured - set LLM_API_KEY environment variable")
	}

	_, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cp.config.LLM.Model),
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "Hello"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})

	if err != nil {
		return fmt.Errorf("Claude API health check failed: %w", err)
	}

	return nil
}

// GetProviderName returns the name of the LLM provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}
