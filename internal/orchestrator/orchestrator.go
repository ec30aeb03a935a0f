package orchestrator

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"careerpilot-utils/internal/config"
	"careerpilot-utils/internal/llm"
	"careerpilot-utils/internal/logging"
	"careerpilot-utils/internal/pipeline/aierrors"
	"careerpilot-utils/internal/pipeline/extractor"
	"careerpilot-utils/internal/pipeline/retry"
	"careerpilot-utils/internal/pipeline/schema"
	"careerpilot-utils/internal/ratelimit"
	"careerpilot-utils/pkg/models"
	"careerpilot-utils/pkg/utils"
)

// Meta carries per-call telemetry to the response renderer
type Meta struct {
	RequestID string
	Model     string
	Usage     models.TokenUsage
	Latency   time.Duration
	CostUSD   float64
}

// Operation describes one AI-backed endpoint. The orchestrator owns the
// cross-cutting sequence (identity, rate limit, retry, extraction, call
// logging); the operation owns binding, prompting, and response shape.
type Operation struct {
	// Name keys rate-limit buckets and appears in call metrics
	Name string

	// RateLimit ceilings applied per caller identity
	RateLimit ratelimit.Config

	// MaxBodyBytes caps the request body; 0 means the 1 MiB default
	MaxBodyBytes int64

	// MaxRetries overrides the configured retry budget when positive;
	// -1 disables retries for the operation
	MaxRetries int

	// Schema the extracted JSON object must satisfy
	Schema []schema.Rule

	// ItemSchema, when set, marks the payload as a JSON array instead of an
	// object. Each item is validated against these rules and Render receives
	// the items under the "items" key. Schema is ignored for array payloads.
	ItemSchema []schema.Rule

	// BindInput decodes and validates the request. Errors are reported to
	// the caller as validation failures.
	BindInput func(c echo.Context) (interface{}, error)

	// Invoke performs one model call. It runs inside the retry loop, so it
	// must be safe to call repeatedly with the same input.
	Invoke func(ctx context.Context, input interface{}) (*models.Completion, error)

	// Render writes the success response from the extracted object
	Render func(c echo.Context, meta Meta, data map[string]interface{}) error
}

const defaultMaxBodyBytes = 1 << 20

// Orchestrator runs AI-backed endpoints through a uniform resilience
// sequence
type Orchestrator struct {
	config  *config.Config
	limiter *ratelimit.Limiter
	auth    Authenticator
}

// New creates an orchestrator over the shared limiter
func New(cfg *config.Config, limiter *ratelimit.Limiter, auth Authenticator) *Orchestrator {
	return &Orchestrator{
		config:  cfg,
		limiter: limiter,
		auth:    auth,
	}
}

// Handle wraps an operation into an echo handler
func (o *Orchestrator) Handle(op Operation) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := RequestID(c)
		logger := logging.LogWithRequestID(requestID)

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusNoContent)
		}

		identity, authErr := o.auth.Identify(c)
		if authErr != nil {
			return o.respondError(c, requestID, authErr)
		}

		result := o.limiter.Check(c.Request().Context(), identity, op.Name, op.RateLimit)
		if !result.Allowed {
			rateErr := aierrors.NewRateLimitError("rate limit exceeded for "+op.Name, result.RetryAfter)
			logger.Warn("Request rejected by rate limiter", map[string]interface{}{
				"identity":    identity,
				"operation":   op.Name,
				"retry_after": result.RetryAfter.String(),
			})
			return o.respondError(c, requestID, rateErr)
		}

		maxBody := op.MaxBodyBytes
		if maxBody <= 0 {
			maxBody = defaultMaxBodyBytes
		}
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxBody)

		input, err := op.BindInput(c)
		if err != nil {
			logger.Warn("Request validation failed", map[string]interface{}{
				"operation": op.Name,
				"error":     err.Error(),
			})
			return o.respondError(c, requestID, aierrors.NewValidationError(err.Error()))
		}

		maxRetries := o.config.Retry.MaxRetries
		if op.MaxRetries > 0 {
			maxRetries = op.MaxRetries
		} else if op.MaxRetries < 0 {
			maxRetries = 0
		}

		var lastCompletion *models.Completion

		// Extraction runs inside the retry loop: a response the pipeline
		// cannot parse is retried the same way a transient API failure is
		parsed, err := retry.Do(c.Request().Context(), func(ctx context.Context) (extractor.ParseResult[map[string]interface{}], error) {
			completion, callErr := op.Invoke(ctx, input)
			if callErr != nil {
				return extractor.ParseResult[map[string]interface{}]{}, callErr
			}
			lastCompletion = completion

			if len(op.ItemSchema) > 0 {
				arr := extractor.ExtractArray[interface{}](completion.Text, op.ItemSchema)
				if !arr.Success {
					return extractor.ParseResult[map[string]interface{}]{}, aierrors.NewInvalidResponseError(arr.Error)
				}
				return extractor.ParseResult[map[string]interface{}]{
					Success: true,
					Data:    map[string]interface{}{"items": arr.Data},
				}, nil
			}

			res := extractor.ExtractFromCompletion[map[string]interface{}](completion, op.Schema)
			if !res.Success {
				return res, aierrors.NewInvalidResponseError(res.Error)
			}
			return res, nil
		},
			retry.WithMaxRetries(maxRetries),
			retry.WithBaseDelay(o.config.Retry.BaseDelay),
			retry.WithMaxDelay(o.config.Retry.MaxDelay),
			retry.WithOnRetry(func(attempt int, retryErr *aierrors.AIError) {
				logger.Warn("Retrying AI call", map[string]interface{}{
					"operation": op.Name,
					"attempt":   attempt,
					"code":      string(retryErr.Code),
					"error":     retryErr.Message,
				})
			}),
		)

		latency := time.Since(startTime)
		meta := Meta{
			RequestID: requestID,
			Latency:   latency,
		}
		if lastCompletion != nil {
			meta.Model = lastCompletion.Model
			meta.Usage = lastCompletion.Usage
			meta.CostUSD = llm.EstimateCost(lastCompletion.Model, lastCompletion.Usage)
		}

		if err != nil {
			aiErr := aierrors.Classify(err)
			logging.LogAICall(logger, logging.AICallMetrics{
				Operation:    op.Name,
				Model:        meta.Model,
				InputTokens:  meta.Usage.InputTokens,
				OutputTokens: meta.Usage.OutputTokens,
				Latency:      latency,
				CostUSD:      meta.CostUSD,
				Success:      false,
				ErrorCode:    string(aiErr.Code),
				RequestID:    requestID,
			})
			return o.respondError(c, requestID, aiErr)
		}

		logging.LogAICall(logger, logging.AICallMetrics{
			Operation:    op.Name,
			Model:        meta.Model,
			InputTokens:  meta.Usage.InputTokens,
			OutputTokens: meta.Usage.OutputTokens,
			Latency:      latency,
			CostUSD:      meta.CostUSD,
			Success:      true,
			RequestID:    requestID,
		})

		return op.Render(c, meta, parsed.Data)
	}
}

// respondError writes the uniform error envelope. Internal detail only
// leaks into the response in development mode. Errors carrying a retry
// hint, from the limiter or from the provider, get it in both the body
// and the Retry-After header.
func (o *Orchestrator) respondError(c echo.Context, requestID string, aiErr *aierrors.AIError) error {
	resp := models.ErrorResponse{
		Error:     string(aiErr.Code),
		Message:   aiErr.UserMessage,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
	if aiErr.RetryAfter > 0 {
		secs := int((aiErr.RetryAfter + time.Second - 1) / time.Second)
		resp.RetryAfter = secs
		c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
	}
	if o.config.Diagnostics.Development {
		resp.Details = aiErr.Message
	}
	return c.JSON(aiErr.StatusCode, resp)
}

// RequestID returns the request ID set by middleware, generating one when
// the middleware did not run
func RequestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}
