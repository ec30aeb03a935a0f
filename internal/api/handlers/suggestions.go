package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"careerpilot-utils/internal/llm"
	"careerpilot-utils/internal/orchestrator"
	"careerpilot-utils/internal/pipeline/schema"
	"careerpilot-utils/internal/ratelimit"
	"careerpilot-utils/pkg/models"
)

const suggestionsSystemPrompt = `You are an expert resume coach. You produce concrete, actionable improvement suggestions for a resume. Respond with a single JSON array and nothing else, using this shape:
[{"section": "<resume section>", "advice": "<what to change>", "impact": "<why it matters>"}]`

const defaultMaxSuggestions = 5

// suggestionSchema describes one suggestion item in the returned array
func suggestionSchema() []schema.Rule {
	return []schema.Rule{
		schema.StringRule{Field: "section", Required: true, MinLength: 1},
		schema.StringRule{Field: "advice", Required: true, MinLength: 1},
		schema.StringRule{Field: "impact"},
	}
}

// SuggestionsHandler generates improvement suggestions for a resume,
// optionally targeted at a specific job description
func SuggestionsHandler(orch *orchestrator.Orchestrator, llmManager *llm.Manager, rateCfg ratelimit.Config) echo.HandlerFunc {
	return orch.Handle(orchestrator.Operation{
		Name:       "resume_suggestions",
		RateLimit:  rateCfg,
		ItemSchema: suggestionSchema(),

		BindInput: func(c echo.Context) (interface{}, error) {
			var req models.SuggestionsRequest
			if err := c.Bind(&req); err != nil {
				return nil, fmt.Errorf("invalid request format: %w", err)
			}
			if err := validate.Struct(&req); err != nil {
				return nil, err
			}
			if req.MaxSuggestions == 0 {
				req.MaxSuggestions = defaultMaxSuggestions
			}
			return &req, nil
		},

		Invoke: func(ctx context.Context, input interface{}) (*models.Completion, error) {
			req := input.(*models.SuggestionsRequest)

			prompt := fmt.Sprintf("Give at most %d suggestions.\n\nResume:\n%s", req.MaxSuggestions, req.Resume)
			if req.JobDescription != "" {
				prompt += fmt.Sprintf("\n\nTarget job description:\n%s", req.JobDescription)
			}

			return llmManager.Complete(ctx, models.CompletionRequest{
				System: suggestionsSystemPrompt,
				Prompt: prompt,
			})
		},

		Render: func(c echo.Context, meta orchestrator.Meta, data map[string]interface{}) error {
			var payload struct {
				Items []models.Suggestion `json:"items"`
			}
			if err := remarshal(data, &payload); err != nil {
				return err
			}

			return c.JSON(http.StatusOK, models.SuggestionsResponse{
				Success:        true,
				Suggestions:    payload.Items,
				ProcessingTime: meta.Latency,
				Model:          meta.Model,
				RequestID:      meta.RequestID,
			})
		},
	})
}
