// Package schema provides structural validation of values decoded from LLM
// responses. Validation is strict: types are checked as-is, never coerced,
// so formatting drift in model output stays visible to callers.
package schema

import "fmt"

// Validate checks a decoded JSON value against a list of field rules and
// returns every violation found. An empty slice means the value is valid.
func Validate(value interface{}, rules []Rule) []string {
	if len(rules) == 0 {
		return nil
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		return []string{fmt.Sprintf("expected a JSON object, got %s", jsonTypeName(value))}
	}

	var errs []string
	for _, rule := range rules {
		fieldValue, present := obj[rule.FieldName()]

		if !present || fieldValue == nil {
			if rule.IsRequired() {
				errs = append(errs, fmt.Sprintf("missing required field: %s", rule.FieldName()))
			}
			continue
		}

		errs = append(errs, rule.Check(fieldValue)...)
	}

	return errs
}
