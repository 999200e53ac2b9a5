package tool

import (
	"fmt"
)

// ValidationError describes one argument that failed schema validation.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// ValidateArgs checks args against a minimal JSON-schema-like map supporting
// the subset the adapters declare: top-level "type": "object", "properties"
// with per-field "type" and optional "enum", and a "required" list. Unknown
// arguments are rejected so a model cannot smuggle extra fields through.
func ValidateArgs(args map[string]any, schema map[string]any) error {
	properties, _ := schema["properties"].(map[string]any)

	for _, name := range stringSlice(schema["required"]) {
		if _, present := args[name]; !present {
			return &ValidationError{Field: name, Message: "required argument missing"}
		}
	}

	for name, value := range args {
		spec, ok := properties[name].(map[string]any)
		if !ok {
			return &ValidationError{Field: name, Value: value, Message: "unknown argument"}
		}
		if err := validateValue(name, value, spec); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(name string, value any, spec map[string]any) error {
	switch spec["type"] {
	case "string":
		s, ok := value.(string)
		if !ok {
			return &ValidationError{Field: name, Value: value, Message: "expected string"}
		}
		if enum := stringSlice(spec["enum"]); len(enum) > 0 && !contains(enum, s) {
			return &ValidationError{Field: name, Value: value, Message: fmt.Sprintf("must be one of %v", enum)}
		}
	case "number":
		switch value.(type) {
		case float64, int, int64:
		default:
			return &ValidationError{Field: name, Value: value, Message: "expected number"}
		}
	case "integer":
		switch v := value.(type) {
		case int, int64:
		case float64:
			if v != float64(int64(v)) {
				return &ValidationError{Field: name, Value: value, Message: "expected integer"}
			}
		default:
			return &ValidationError{Field: name, Value: value, Message: "expected integer"}
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return &ValidationError{Field: name, Value: value, Message: "expected boolean"}
		}
	}
	return nil
}

// stringSlice normalizes a schema list that may be a []string literal or a
// []any produced by a JSON round trip.
func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
