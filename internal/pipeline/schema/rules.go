package schema

import "fmt"

// FieldType identifies the JSON type a rule expects
type FieldType string

const (
	StringType  FieldType = "string"
	NumberType  FieldType = "number"
	BooleanType FieldType = "boolean"
	ArrayType   FieldType = "array"
	ObjectType  FieldType = "object"
)

// Rule is a single field constraint in a schema. Each concrete rule carries
// only the constraints relevant to its type, so an impossible combination
// (a length bound on a boolean, say) cannot be expressed.
type Rule interface {
	// FieldName returns the object key this rule applies to
	FieldName() string

	// IsRequired reports whether the field must be present and non-null
	IsRequired() bool

	// Check validates a present, non-null value and returns zero or more
	// violation messages
	Check(value interface{}) []string
}

// StringRule validates string fields with optional length bounds
type StringRule struct {
	Field     string
	Required  bool
	MinLength int
	MaxLength int // 0 means unbounded
}

func (r StringRule) FieldName() string { return r.Field }
func (r StringRule) IsRequired() bool  { return r.Required }

func (r StringRule) Check(value interface{}) []string {
	s, ok := value.(string)
	if !ok {
		return []string{fmt.Sprintf("field %s: expected string, got %s", r.Field, jsonTypeName(value))}
	}

	var errs []string
	if r.MinLength > 0 && len(s) < r.MinLength {
		errs = append(errs, fmt.Sprintf("field %s: length %d is below minimum %d", r.Field, len(s), r.MinLength))
	}
	if r.MaxLength > 0 && len(s) > r.MaxLength {
		errs = append(errs, fmt.Sprintf("field %s: length %d exceeds maximum %d", r.Field, len(s), r.MaxLength))
	}
	return errs
}

// NumberRule validates numeric fields with optional bounds. Min and Max are
// pointers so that zero remains a usable bound.
type NumberRule struct {
	Field    string
	Required bool
	Min      *float64
	Max      *float64
}

func (r NumberRule) FieldName() string { return r.Field }
func (r NumberRule) IsRequired() bool  { return r.Required }

func (r NumberRule) Check(value interface{}) []string {
	// encoding/json decodes every JSON number into float64. A numeric
	// string is a violation, not a candidate for coercion.
	n, ok := value.(float64)
	if !ok {
		return []string{fmt.Sprintf("field %s: expected number, got %s", r.Field, jsonTypeName(value))}
	}

	var errs []string
	if r.Min != nil && n < *r.Min {
		errs = append(errs, fmt.Sprintf("field %s: value %v is below minimum %v", r.Field, n, *r.Min))
	}
	if r.Max != nil && n > *r.Max {
		errs = append(errs, fmt.Sprintf("field %s: value %v exceeds maximum %v", r.Field, n, *r.Max))
	}
	return errs
}

// BooleanRule validates boolean fields
type BooleanRule struct {
	Field    string
	Required bool
}

func (r BooleanRule) FieldName() string { return r.Field }
func (r BooleanRule) IsRequired() bool  { return r.Required }

func (r BooleanRule) Check(value interface{}) []string {
	if _, ok := value.(bool); !ok {
		return []string{fmt.Sprintf("field %s: expected boolean, got %s", r.Field, jsonTypeName(value))}
	}
	return nil
}

// ArrayRule validates array fields with optional length bounds and an
// optional element type applied to every item
type ArrayRule struct {
	Field     string
	Required  bool
	ItemType  FieldType // empty means items are unchecked
	MinLength int
	MaxLength int
}

func (r ArrayRule) FieldName() string { return r.Field }
func (r ArrayRule) IsRequired() bool  { return r.Required }

func (r ArrayRule) Check(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return []string{fmt.Sprintf("field %s: expected array, got %s", r.Field, jsonTypeName(value))}
	}

	var errs []string
	if r.MinLength > 0 && len(items) < r.MinLength {
		errs = append(errs, fmt.Sprintf("field %s: %d items is below minimum %d", r.Field, len(items), r.MinLength))
	}
	if r.MaxLength > 0 && len(items) > r.MaxLength {
		errs = append(errs, fmt.Sprintf("field %s: %d items exceeds maximum %d", r.Field, len(items), r.MaxLength))
	}

	if r.ItemType != "" {
		for i, item := range items {
			if !matchesType(item, r.ItemType) {
				errs = append(errs, fmt.Sprintf("field %s[%d]: expected %s, got %s", r.Field, i, r.ItemType, jsonTypeName(item)))
			}
		}
	}
	return errs
}

// ObjectRule validates that a field is a JSON object
type ObjectRule struct {
	Field    string
	Required bool
}

func (r ObjectRule) FieldName() string { return r.Field }
func (r ObjectRule) IsRequired() bool  { return r.Required }

func (r ObjectRule) Check(value interface{}) []string {
	if _, ok := value.(map[string]interface{}); !ok {
		return []string{fmt.Sprintf("field %s: expected object, got %s", r.Field, jsonTypeName(value))}
	}
	return nil
}

// Float returns a pointer to f, for NumberRule bounds
func Float(f float64) *float64 {
	return &f
}

func matchesType(value interface{}, t FieldType) bool {
	switch t {
	case StringType:
		_, ok := value.(string)
		return ok
	case NumberType:
		_, ok := value.(float64)
		return ok
	case BooleanType:
		_, ok := value.(bool)
		return ok
	case ArrayType:
		_, ok := value.([]interface{})
		return ok
	case ObjectType:
		_, ok := value.(map[string]interface{})
		return ok
	default:
		return true
	}
}

func jsonTypeName(value interface{}) string {
	switch value.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", value)
	}
}
