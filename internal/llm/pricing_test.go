package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"careerpilot-utils/pkg/models"
)

func TestEstimateCost_KnownModels(t *testing.T) {
	usage := models.TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}

	assert.InDelta(t, 1.50, EstimateCost("claude-3-haiku-20240307", usage), 1e-9)
	assert.InDelta(t, 18.00, EstimateCost("claude-3-5-sonnet-20241022", usage), 1e-9)
	assert.InDelta(t, 90.00, EstimateCost("claude-3-opus-20240229", usage), 1e-9)
}

func TestEstimateCost_ScalesWithUsage(t *testing.T) {
	// 1000 in / 500 out on haiku: 1000*0.25/1M + 500*1.25/1M
	cost := EstimateCost("claude-3-haiku-20240307", models.TokenUsage{InputTokens: 1000, OutputTokens: 500})

	assert.InDelta(t, 0.000875, cost, 1e-9)
}

func TestEstimateCost_UnknownModelIsZero(t *testing.T) {
	usage := models.TokenUsage{InputTokens: 1000, OutputTokens: 1000}

	assert.Zero(t, EstimateCost("gpt-4o", usage))
	assert.Zero(t, EstimateCost("", usage))
}

func TestEstimateCost_ZeroUsage(t *testing.T) {
	assert.Zero(t, EstimateCost("claude-3-haiku-20240307", models.TokenUsage{}))
}
