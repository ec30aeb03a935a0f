package llm

import (
	"strings"

	"careerpilot-utils/pkg/models"
)

// modelPricing holds per-million-token USD rates for a model family
type modelPricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// pricingTable maps model name prefixes to their published rates. Longest
// matching prefix wins, so more specific entries must not be shadowed by
// shorter ones.
var pricingTable = map[string]modelPricing{
	"claude-3-haiku":    {InputPerMTok: 0.25, OutputPerMTok: 1.25},
	"claude-3-5-haiku":  {InputPerMTok: 0.80, OutputPerMTok: 4.00},
	"claude-3-5-sonnet": {InputPerMTok: 3.00, OutputPerMTok: 15.00},
	"claude-3-7-sonnet": {InputPerMTok: 3.00, OutputPerMTok: 15.00},
	"claude-3-opus":     {InputPerMTok: 15.00, OutputPerMTok: 75.00},
}

// EstimateCost returns the approximate USD cost of a call based on token
// usage. Unknown models cost zero rather than guessing at a rate.
func EstimateCost(model string, usage models.TokenUsage) float64 {
	var best string
	for prefix := range pricingTable {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return 0
	}

	rates := pricingTable[best]
	inputCost := float64(usage.InputTokens) / 1_000_000 * rates.InputPerMTok
	outputCost := float64(usage.OutputTokens) / 1_000_000 * rates.OutputPerMTok
	return inputCost + outputCost
}
