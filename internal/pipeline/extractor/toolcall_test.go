package extractor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerpilot-utils/pkg/models"
)

func TestExtractFromCompletion_UsesToolArguments(t *testing.T) {
	completion := &models.Completion{
		Text: "ignored when a tool call is present",
		ToolCalls: []models.ToolCall{{
			ID:        "tool_1",
			Name:      "report_analysis",
			Arguments: json.RawMessage(`{"score": 95, "summary": "via tool"}`),
		}},
	}

	result := ExtractFromCompletion[map[string]interface{}](completion, analysisRules())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "via tool", result.Data["summary"])
}

func TestExtractFromCompletion_MalformedToolArguments(t *testing.T) {
	completion := &models.Completion{
		ToolCalls: []models.ToolCall{{
			Name:      "report_analysis",
			Arguments: json.RawMessage(`{"score": `),
		}},
	}

	result := ExtractFromCompletion[map[string]interface{}](completion, analysisRules())

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "report_analysis")
	assert.Contains(t, result.Error, "malformed")
}

func TestExtractFromCompletion_ToolArgumentsFailSchema(t *testing.T) {
	completion := &models.Completion{
		ToolCalls: []models.ToolCall{{
			Name:      "report_analysis",
			Arguments: json.RawMessage(`{"score": "not a number", "summary": "x"}`),
		}},
	}

	result := ExtractFromCompletion[map[string]interface{}](completion, analysisRules())

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "failed schema validation")
}

func TestExtractFromCompletion_FallsBackToText(t *testing.T) {
	completion := &models.Completion{
		Text: "```json\n{\"score\": 60, \"summary\": \"from text\"}\n```",
	}

	result := ExtractFromCompletion[map[string]interface{}](completion, analysisRules())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "from text", result.Data["summary"])
}

func TestExtractFromCompletion_NilCompletion(t *testing.T) {
	result := ExtractFromCompletion[map[string]interface{}](nil, nil)

	require.False(t, result.Success)
	assert.Equal(t, ErrNoJSON, result.Error)
}
