package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerpilot-utils/internal/pipeline/schema"
)

func analysisRules() []schema.Rule {
	return []schema.Rule{
		schema.NumberRule{Field: "score", Required: true, Min: schema.Float(0), Max: schema.Float(100)},
		schema.StringRule{Field: "summary", Required: true, MinLength: 1},
	}
}

func TestExtract_DirectJSON(t *testing.T) {
	result := Extract[map[string]interface{}](`{"score": 87, "summary": "Good fit"}`, analysisRules())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 87.0, result.Data["score"])
	assert.Equal(t, "Good fit", result.Data["summary"])
}

func TestExtract_FencedBlock(t *testing.T) {
	text := "Here is the assessment:\n```json\n{\"score\": 42, \"summary\": \"Partial match\"}\n```"

	result := Extract[map[string]interface{}](text, analysisRules())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 42.0, result.Data["score"])
}

func TestExtract_ChattyResponseWithTrailingComma(t *testing.T) {
	// The full gauntlet: prose before and after, a fenced block, and a
	// trailing comma that defeats every strategy until the cleanup pass
	text := "Sure! Here's the JSON you asked for:\n```json\n{\"score\": 87, \"summary\": \"Good fit\",}\n```\nHope that helps!"

	result := Extract[map[string]interface{}](text, analysisRules())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 87.0, result.Data["score"])
	assert.Equal(t, "Good fit", result.Data["summary"])
}

func TestExtract_ThinkBlockStripped(t *testing.T) {
	text := "<think>{\"score\": 1, \"summary\": \"draft\"}</think>{\"score\": 90, \"summary\": \"final\"}"

	result := Extract[map[string]interface{}](text, analysisRules())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "final", result.Data["summary"])
}

func TestExtract_LargestCandidateWins(t *testing.T) {
	text := `A fragment {"score": 1} appears before the payload {"score": 73, "summary": "the complete answer"} in this response.`

	result := Extract[map[string]interface{}](text, analysisRules())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 73.0, result.Data["score"])
	assert.Equal(t, "the complete answer", result.Data["summary"])
}

func TestExtract_BracesInsideStrings(t *testing.T) {
	text := `{"score": 50, "summary": "uses {braces} and \"quotes\" freely"}`

	result := Extract[map[string]interface{}](text, analysisRules())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, `uses {braces} and "quotes" freely`, result.Data["summary"])
}

func TestExtract_SchemaInvalidCandidate(t *testing.T) {
	result := Extract[map[string]interface{}](`{"score": "high", "summary": "ok"}`, analysisRules())

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "failed schema validation")
	assert.Contains(t, result.Error, "score")
}

func TestExtract_NoJSON(t *testing.T) {
	result := Extract[map[string]interface{}]("I cannot produce that output.", analysisRules())

	require.False(t, result.Success)
	assert.Equal(t, ErrNoJSON, result.Error)
}

func TestExtract_EmptyInput(t *testing.T) {
	result := Extract[map[string]interface{}]("", nil)

	require.False(t, result.Success)
	assert.Equal(t, ErrNoJSON, result.Error)
}

func TestExtract_TypedStruct(t *testing.T) {
	type analysis struct {
		Score   float64 `json:"score"`
		Summary string  `json:"summary"`
	}

	result := Extract[analysis](`{"score": 64, "summary": "decent"}`, analysisRules())

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 64.0, result.Data.Score)
	assert.Equal(t, "decent", result.Data.Summary)
}

func TestExtractArray_Fenced(t *testing.T) {
	text := "```json\n[{\"section\": \"skills\", \"advice\": \"add Go\"}, {\"section\": \"summary\", \"advice\": \"tighten\"}]\n```"
	rules := []schema.Rule{
		schema.StringRule{Field: "section", Required: true},
		schema.StringRule{Field: "advice", Required: true},
	}

	result := ExtractArray[map[string]interface{}](text, rules)

	require.True(t, result.Success, result.Error)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "skills", result.Data[0]["section"])
}

func TestExtractArray_ObjectIsNotArray(t *testing.T) {
	result := ExtractArray[map[string]interface{}](`{"section": "skills"}`, nil)

	require.False(t, result.Success)
	assert.Equal(t, "expected a JSON array in response", result.Error)
}

func TestExtractArray_AggregatesItemFailures(t *testing.T) {
	rules := []schema.Rule{schema.StringRule{Field: "section", Required: true}}

	result := ExtractArray[map[string]interface{}](`[{"section": "a"}, {"other": 1}, {"other": 2}]`, rules)

	require.False(t, result.Success)
	assert.Equal(t, "2 of 3 array items failed validation", result.Error)
}

func TestCleanResponseText_Idempotent(t *testing.T) {
	dirty := "```json\n{\"a\": 1, // comment\n \"b\": [1,2],}\n``` [3]"

	once := CleanResponseText(dirty)
	twice := CleanResponseText(once)

	assert.Equal(t, once, twice)
}

func TestCleanResponseText_StripsDecorations(t *testing.T) {
	dirty := "```json\n{\"items\": [\"a\", \"b\"],}\n```"

	cleaned := CleanResponseText(dirty)

	assert.Equal(t, `{"items": ["a", "b"]}`, cleaned)
}
