// Package extractor recovers typed JSON values from noisy LLM response
// text. It runs an ordered list of fallback strategies, from a direct parse
// down to aggressive cleanup, and never returns an error through panicking
// or throwing: every failure mode is a ParseResult with Success false.
package extractor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"careerpilot-utils/internal/pipeline/schema"
)

// ErrNoJSON is the terminal extraction failure message
const ErrNoJSON = "Could not extract valid JSON from response"

var (
	thinkBlockRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fencedRegex     = regexp.MustCompile("```(?:[a-zA-Z]+)?\\s*([\\s\\S]*?)```")
	greedyObjRegex  = regexp.MustCompile(`(?s)\{.*\}`)
	greedyArrRegex  = regexp.MustCompile(`(?s)\[.*\]`)
	citationRegex   = regexp.MustCompile(`\[\d+(?:,\s*\d+)*\]`)
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
	lineComment     = regexp.MustCompile(`(?m)^\s*//.*$`)
	blockComment    = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// ParseResult is the outcome of an extraction or validation. Exactly one of
// Data or Error is meaningful, selected by Success.
type ParseResult[T any] struct {
	Success bool
	Data    T
	Error   string
}

func failure[T any](msg string) ParseResult[T] {
	return ParseResult[T]{Success: false, Error: msg}
}

// Extract recovers a JSON value of type T from text. When rules are given,
// a candidate must both parse and pass schema validation to be accepted;
// among multiple valid candidates the largest wins.
func Extract[T any](text string, rules []schema.Rule) ParseResult[T] {
	raw, errMsg := extractRaw(text, rules)
	if raw == "" {
		return failure[T](errMsg)
	}

	var data T
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return failure[T](fmt.Sprintf("extracted JSON does not match the expected shape: %v", err))
	}
	return ParseResult[T]{Success: true, Data: data}
}

// ExtractArray recovers a JSON array of T items. When itemRules are given,
// every item is validated and the result fails with an aggregate count of
// invalid items rather than the first offending index.
func ExtractArray[T any](text string, itemRules []schema.Rule) ParseResult[[]T] {
	raw, errMsg := extractRaw(text, nil)
	if raw == "" {
		return failure[[]T](errMsg)
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return failure[[]T](ErrNoJSON)
	}

	items, ok := decoded.([]interface{})
	if !ok {
		return failure[[]T]("expected a JSON array in response")
	}

	if len(itemRules) > 0 {
		invalid := 0
		for _, item := range items {
			if len(schema.Validate(item, itemRules)) > 0 {
				invalid++
			}
		}
		if invalid > 0 {
			return failure[[]T](fmt.Sprintf("%d of %d array items failed validation", invalid, len(items)))
		}
	}

	var data []T
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return failure[[]T](fmt.Sprintf("extracted array does not match the expected shape: %v", err))
	}
	return ParseResult[[]T]{Success: true, Data: data}
}

// extractRaw runs the strategy ladder and returns the winning candidate's
// raw JSON, or an empty string plus a failure message. Strategies are tried
// in order of likelihood; the first strategy that yields an accepted
// candidate wins. Within the brace-matching strategy candidates are ordered
// largest first, because the real payload is almost always the most
// structurally complete object in the text.
func extractRaw(text string, rules []schema.Rule) (string, string) {
	cleaned := strings.TrimSpace(thinkBlockRegex.ReplaceAllString(text, ""))
	if cleaned == "" {
		return "", ErrNoJSON
	}

	var schemaErrs []string

	strategies := [][]string{
		{cleaned},
		fencedCandidates(cleaned),
		balancedSpans(cleaned),
		greedyCandidates(cleaned),
		cleanedCandidates(cleaned),
	}

	for _, candidates := range strategies {
		for _, candidate := range candidates {
			candidate = strings.TrimSpace(candidate)
			if candidate == "" {
				continue
			}

			var decoded interface{}
			if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
				continue
			}

			if len(rules) > 0 {
				if errs := schema.Validate(decoded, rules); len(errs) > 0 {
					// parseable but schema-invalid: keep scanning
					if schemaErrs == nil {
						schemaErrs = errs
					}
					continue
				}
			}

			return candidate, ""
		}
	}

	if schemaErrs != nil {
		return "", fmt.Sprintf("extracted JSON failed schema validation: %s", strings.Join(schemaErrs, "; "))
	}
	return "", ErrNoJSON
}

// fencedCandidates returns the interiors of all fenced code blocks
func fencedCandidates(text string) []string {
	matches := fencedRegex.FindAllStringSubmatch(text, -1)
	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, m[1])
	}
	return candidates
}

// balancedSpans scans the text tracking brace depth and collects every
// top-level balanced {...} span, largest first. Braces inside JSON strings
// and escaped quotes are handled so prose containing stray braces does not
// break the scan.
func balancedSpans(text string) []string {
	var spans []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			if depth > 0 {
				inString = !inString
			}
		case '{':
			if !inString {
				if depth == 0 {
					start = i
				}
				depth++
			}
		case '}':
			if !inString && depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					spans = append(spans, text[start:i+1])
					start = -1
				}
			}
		}
	}

	// largest-valid tie-break: try the longest span first
	sort.SliceStable(spans, func(i, j int) bool {
		return len(spans[i]) > len(spans[j])
	})
	return spans
}

// greedyCandidates captures from the first opener to the last closer, for
// both objects and arrays
func greedyCandidates(text string) []string {
	var candidates []string
	if m := greedyObjRegex.FindString(text); m != "" {
		candidates = append(candidates, m)
	}
	if m := greedyArrRegex.FindString(text); m != "" {
		candidates = append(candidates, m)
	}
	return candidates
}

// cleanedCandidates applies the cleanup pass to the whole text and to its
// greedy captures, and retries those. The doubled-quote unescape is a
// second tier because it mangles legitimate empty-string values; it only
// runs when the gentler pass produced nothing parseable upstream.
func cleanedCandidates(text string) []string {
	var candidates []string
	for _, cleaned := range []string{CleanResponseText(text), unescapeDoubledQuotes(CleanResponseText(text))} {
		candidates = append(candidates, cleaned)
		if m := greedyObjRegex.FindString(cleaned); m != "" {
			candidates = append(candidates, m)
		}
		if m := greedyArrRegex.FindString(cleaned); m != "" {
			candidates = append(candidates, m)
		}
	}
	return candidates
}

// CleanResponseText strips the decorations LLMs habitually wrap around JSON
// payloads: citation markers, code fences, comments, and trailing commas
// before closers.
func CleanResponseText(text string) string {
	cleaned := citationRegex.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = blockComment.ReplaceAllString(cleaned, "")
	cleaned = lineComment.ReplaceAllString(cleaned, "")
	cleaned = trailingComma.ReplaceAllString(cleaned, "$1")
	return strings.TrimSpace(cleaned)
}

func unescapeDoubledQuotes(text string) string {
	return strings.ReplaceAll(text, `""`, `"`)
}
