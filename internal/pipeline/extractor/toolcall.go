package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"careerpilot-utils/internal/pipeline/schema"
	"careerpilot-utils/pkg/models"
)

// ExtractFromCompletion recovers a value from a completion that may carry a
// structured tool invocation. When the model invoked a tool, its arguments
// are already JSON and the text-extraction ladder is skipped; otherwise the
// completion's text goes through the general pipeline.
func ExtractFromCompletion[T any](completion *models.Completion, rules []schema.Rule) ParseResult[T] {
	if completion == nil {
		return failure[T](ErrNoJSON)
	}

	for _, call := range completion.ToolCalls {
		if len(call.Arguments) == 0 {
			continue
		}

		var decoded interface{}
		if err := json.Unmarshal(call.Arguments, &decoded); err != nil {
			return failure[T](fmt.Sprintf("tool invocation %q carried malformed arguments: %v", call.Name, err))
		}

		if len(rules) > 0 {
			if errs := schema.Validate(decoded, rules); len(errs) > 0 {
				return failure[T](fmt.Sprintf("tool invocation %q failed schema validation: %s", call.Name, strings.Join(errs, "; ")))
			}
		}

		var data T
		if err := json.Unmarshal(call.Arguments, &data); err != nil {
			return failure[T](fmt.Sprintf("tool invocation %q does not match the expected shape: %v", call.Name, err))
		}
		return ParseResult[T]{Success: true, Data: data}
	}

	return Extract[T](completion.Text, rules)
}
