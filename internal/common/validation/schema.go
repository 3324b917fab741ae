// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"math"
	"regexp"
)

// JSONSchema describes the variables a worker accepts or produces. It covers
// the subset of JSON Schema the workers actually need: typed properties,
// required fields, string and number constraints, arrays, and one level of
// object nesting per property.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties,omitempty"`
}

// Property constrains a single variable.
type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Default     interface{}         `json:"default,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Pattern     *string             `json:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// GetErrorMessages flattens the result into "field: message" strings for log
// fields and BPMN error payloads.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// ValidateInput checks a job variable map against a schema and collects every
// violation instead of stopping at the first one. Job variables share process
// scope with upstream workers, so input schemas normally set
// AdditionalProperties and tolerate variables they do not declare.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	var errs []ValidationError

	for _, name := range schema.Required {
		if _, ok := input[name]; !ok {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: "required variable is missing",
				Code:    "REQUIRED_FIELD_MISSING",
			})
		}
	}

	for name, value := range input {
		prop, declared := schema.Properties[name]
		if !declared {
			if !schema.AdditionalProperties {
				errs = append(errs, ValidationError{
					Field:   name,
					Message: "variable is not declared in the schema",
					Code:    "UNDECLARED_FIELD",
				})
			}
			continue
		}
		errs = append(errs, validateField(name, value, prop)...)
	}

	return &ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validateField(name string, value interface{}, prop Property) []ValidationError {
	if err := checkType(value, prop.Type); err != nil {
		// The constraint checks below assume the declared type holds.
		return []ValidationError{{Field: name, Message: err.Error(), Code: "TYPE_MISMATCH"}}
	}

	var errs []ValidationError

	switch v := value.(type) {
	case string:
		errs = append(errs, checkString(name, v, prop)...)
	case float64:
		errs = append(errs, checkRange(name, v, prop)...)
	case []interface{}:
		if prop.Items != nil {
			for i, item := range v {
				errs = append(errs, validateField(fmt.Sprintf("%s[%d]", name, i), item, *prop.Items)...)
			}
		}
	case map[string]interface{}:
		if prop.Properties != nil {
			nested := ValidateInput(v, JSONSchema{
				Type:       "object",
				Properties: prop.Properties,
				Required:   prop.Required,
				// Nested payload objects accept undeclared keys.
				AdditionalProperties: true,
			})
			for _, ne := range nested.Errors {
				errs = append(errs, ValidationError{
					Field:   name + "." + ne.Field,
					Message: ne.Message,
					Code:    ne.Code,
				})
			}
		}
	}

	return errs
}

func checkString(name, v string, prop Property) []ValidationError {
	var errs []ValidationError
	if prop.MinLength != nil && len(v) < *prop.MinLength {
		errs = append(errs, ValidationError{
			Field:   name,
			Message: fmt.Sprintf("shorter than %d characters", *prop.MinLength),
			Code:    "MIN_LENGTH",
		})
	}
	if prop.MaxLength != nil && len(v) > *prop.MaxLength {
		errs = append(errs, ValidationError{
			Field:   name,
			Message: fmt.Sprintf("longer than %d characters", *prop.MaxLength),
			Code:    "MAX_LENGTH",
		})
	}
	if prop.Pattern != nil {
		matched, err := regexp.MatchString(*prop.Pattern, v)
		if err != nil || !matched {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("does not match pattern %s", *prop.Pattern),
				Code:    "PATTERN_MISMATCH",
			})
		}
	}
	if len(prop.Enum) > 0 && !containsString(prop.Enum, v) {
		errs = append(errs, ValidationError{
			Field:   name,
			Message: fmt.Sprintf("not one of %v", prop.Enum),
			Code:    "ENUM_MISMATCH",
		})
	}
	return errs
}

func checkRange(name string, v float64, prop Property) []ValidationError {
	var errs []ValidationError
	if prop.Minimum != nil && v < *prop.Minimum {
		errs = append(errs, ValidationError{
			Field:   name,
			Message: fmt.Sprintf("below minimum %g", *prop.Minimum),
			Code:    "MIN_VALUE",
		})
	}
	if prop.Maximum != nil && v > *prop.Maximum {
		errs = append(errs, ValidationError{
			Field:   name,
			Message: fmt.Sprintf("above maximum %g", *prop.Maximum),
			Code:    "MAX_VALUE",
		})
	}
	return errs
}

// checkType reports whether value satisfies the declared JSON type. Variables
// travel through encoding/json, which decodes every number as float64, so a
// whole float64 also satisfies "integer".
func checkType(value interface{}, want string) error {
	ok := false
	switch want {
	case "string":
		_, ok = value.(string)
	case "number":
		switch value.(type) {
		case float64, float32, int, int32, int64:
			ok = true
		}
	case "integer":
		switch v := value.(type) {
		case int, int32, int64:
			ok = true
		case float64:
			ok = v == math.Trunc(v)
		}
	case "boolean":
		_, ok = value.(bool)
	case "object":
		_, ok = value.(map[string]interface{})
	case "array":
		_, ok = value.([]interface{})
	case "null":
		ok = value == nil
	default:
		// Unknown type names never reject, matching permissive JSON Schema.
		ok = true
	}
	if !ok {
		return fmt.Errorf("expected %s, got %T", want, value)
	}
	return nil
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
