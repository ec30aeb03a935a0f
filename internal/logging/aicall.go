package logging

import "time"

// AICallEvent is the message attached to every completed-call metric line
const AICallEvent = "AI_CALL_COMPLETED"

// AICallMetrics is the write-once telemetry record for a single LLM call.
// Aggregation across calls is an external collector's job; this package
// only formats and emits.
type AICallMetrics struct {
	Operation    string
	Model        string
	InputTokens  int
	OutputTokens int
	Latency      time.Duration
	CostUSD      float64
	Success      bool
	ErrorCode    string
	RequestID    string
}

// LogAICall emits one structured AI_CALL_COMPLETED event
func LogAICall(logger Logger, m AICallMetrics) {
	fields := map[string]interface{}{
		"operation":     m.Operation,
		"model":         m.Model,
		"input_tokens":  m.InputTokens,
		"output_tokens": m.OutputTokens,
		"latency_ms":    m.Latency.Milliseconds(),
		"cost_usd":      m.CostUSD,
		"success":       m.Success,
	}
	if m.ErrorCode != "" {
		fields["error_code"] = m.ErrorCode
	}
	if m.RequestID != "" {
		fields["request_id"] = m.RequestID
	}

	logger.Info(AICallEvent, fields)
}

// Time runs fn, logs its duration on success or its duration and error on
// failure, and always returns fn's result unchanged.
func Time[T any](logger Logger, label string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	elapsed := time.Since(start)

	if err != nil {
		logger.Error(label+" failed", map[string]interface{}{
			"duration_ms": elapsed.Milliseconds(),
			"error":       err.Error(),
		})
		return result, err
	}

	logger.Info(label+" completed", map[string]interface{}{
		"duration_ms": elapsed.Milliseconds(),
	})
	return result, nil
}
