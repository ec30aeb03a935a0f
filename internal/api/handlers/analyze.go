package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"careerpilot-utils/internal/llm"
	"careerpilot-utils/internal/llm/processors"
	"careerpilot-utils/internal/orchestrator"
	"careerpilot-utils/internal/pipeline/schema"
	"careerpilot-utils/internal/ratelimit"
	"careerpilot-utils/pkg/models"
)

var validate = validator.New()

const analyzeSystemPrompt = `You are an expert technical recruiter. You compare resumes against job descriptions and produce a structured assessment. Respond with a single JSON object and nothing else, using this shape:
{"score": <0-100>, "summary": "<two or three sentences>", "strengths": ["..."], "gaps": ["..."]}`

// analyzeSchema describes the object the model must return for an analysis
func analyzeSchema() []schema.Rule {
	return []schema.Rule{
		schema.NumberRule{Field: "score", Required: true, Min: schema.Float(0), Max: schema.Float(100)},
		schema.StringRule{Field: "summary", Required: true, MinLength: 1},
		schema.ArrayRule{Field: "strengths", ItemType: schema.StringType},
		schema.ArrayRule{Field: "gaps", ItemType: schema.StringType},
	}
}

// AnalyzeHandler scores a resume against a job description
func AnalyzeHandler(orch *orchestrator.Orchestrator, llmManager *llm.Manager, rateCfg ratelimit.Config) echo.HandlerFunc {
	cleaner := processors.NewHTMLCleaner()

	return orch.Handle(orchestrator.Operation{
		Name:      "resume_analyze",
		RateLimit: rateCfg,
		Schema:    analyzeSchema(),

		BindInput: func(c echo.Context) (interface{}, error) {
			var req models.AnalyzeRequest
			if err := c.Bind(&req); err != nil {
				return nil, fmt.Errorf("invalid request format: %w", err)
			}
			if err := validate.Struct(&req); err != nil {
				return nil, err
			}

			// Pasted page sources get stripped to plain text before prompting
			if cleaner.LooksLikeHTML(req.JobDescription) {
				if text, err := cleaner.ExtractPostingText(req.JobDescription); err == nil && text != "" {
					req.JobDescription = text
				}
			}
			return &req, nil
		},

		Invoke: func(ctx context.Context, input interface{}) (*models.Completion, error) {
			req := input.(*models.AnalyzeRequest)
			return llmManager.Complete(ctx, models.CompletionRequest{
				System: analyzeSystemPrompt,
				Prompt: fmt.Sprintf("Resume:\n%s\n\nJob description:\n%s", req.Resume, req.JobDescription),
			})
		},

		Render: func(c echo.Context, meta orchestrator.Meta, data map[string]interface{}) error {
			var analysis models.AnalysisResult
			if err := remarshal(data, &analysis); err != nil {
				return err
			}

			return c.JSON(http.StatusOK, models.AnalyzeResponse{
				Success:        true,
				Analysis:       &analysis,
				ProcessingTime: meta.Latency,
				Model:          meta.Model,
				RequestID:      meta.RequestID,
			})
		},
	})
}

// remarshal converts the schema-checked generic object into a typed result.
// The schema guarantees field presence and types, so this cannot lose data.
func remarshal(data map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
