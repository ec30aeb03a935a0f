package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerpilot-utils/internal/pipeline/schema"
	"careerpilot-utils/pkg/models"
)

func TestAnalyzeSchema_AcceptsWellFormedVerdict(t *testing.T) {
	verdict := map[string]interface{}{
		"score":     87.0,
		"summary":   "Strong backend match.",
		"strengths": []interface{}{"Go", "distributed systems"},
		"gaps":      []interface{}{"no Kubernetes"},
	}

	assert.Empty(t, schema.Validate(verdict, analyzeSchema()))
}

func TestAnalyzeSchema_RejectsOutOfRangeScore(t *testing.T) {
	verdict := map[string]interface{}{
		"score":   150.0,
		"summary": "impossible",
	}

	errs := schema.Validate(verdict, analyzeSchema())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "score")
}

func TestAnalyzeSchema_RequiresSummary(t *testing.T) {
	errs := schema.Validate(map[string]interface{}{"score": 50.0}, analyzeSchema())

	require.Len(t, errs, 1)
	assert.Equal(t, "missing required field: summary", errs[0])
}

func TestSuggestionSchema_ValidatesItems(t *testing.T) {
	valid := map[string]interface{}{"section": "skills", "advice": "add Go"}
	assert.Empty(t, schema.Validate(valid, suggestionSchema()))

	// impact is optional, section and advice are not
	assert.NotEmpty(t, schema.Validate(map[string]interface{}{"advice": "add Go"}, suggestionSchema()))
	assert.NotEmpty(t, schema.Validate(map[string]interface{}{"section": "skills"}, suggestionSchema()))
}

func TestRemarshal_MapsVerdictToResult(t *testing.T) {
	var analysis models.AnalysisResult
	err := remarshal(map[string]interface{}{
		"score":     73.5,
		"summary":   "decent",
		"strengths": []interface{}{"Go"},
	}, &analysis)

	require.NoError(t, err)
	assert.Equal(t, 73.5, analysis.Score)
	assert.Equal(t, "decent", analysis.Summary)
	assert.Equal(t, []string{"Go"}, analysis.Strengths)
	assert.Empty(t, analysis.Gaps)
}

func TestAnalyzeRequestValidation(t *testing.T) {
	long := make([]byte, 60)
	for i := range long {
		long[i] = 'x'
	}

	t.Run("valid request passes", func(t *testing.T) {
		req := models.AnalyzeRequest{Resume: string(long), JobDescription: string(long)}
		assert.NoError(t, validate.Struct(&req))
	})

	t.Run("missing fields fail", func(t *testing.T) {
		assert.Error(t, validate.Struct(&models.AnalyzeRequest{}))
	})

	t.Run("too-short resume fails", func(t *testing.T) {
		req := models.AnalyzeRequest{Resume: "short", JobDescription: string(long)}
		assert.Error(t, validate.Struct(&req))
	})
}
