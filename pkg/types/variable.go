package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/arthur-debert/stencil/pkg/errors"
)

// VariableType is the closed set of types a VariableSpec may declare.
type VariableType string

const (
	VarString  VariableType = "string"
	VarNumber  VariableType = "number"
	VarBoolean VariableType = "boolean"
	VarArray   VariableType = "array"
	VarObject  VariableType = "object"
)

// ValidVariableType reports whether t names a known type.
func ValidVariableType(t VariableType) bool {
	switch t {
	case VarString, VarNumber, VarBoolean, VarArray, VarObject:
		return true
	}
	return false
}

// VariableSpec declares one template variable: its type, whether a
// binding is required, an optional default, and value constraints.
type VariableSpec struct {
	Name        string       `json:"name" yaml:"name"`
	Type        VariableType `json:"type" yaml:"type"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Default     interface{}  `json:"default,omitempty" yaml:"default,omitempty"`
	Pattern     string       `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum        []interface{} `json:"enum,omitempty" yaml:"enum,omitempty"`
	Min         *float64     `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64     `json:"max,omitempty" yaml:"max,omitempty"`
}

// HasDefault reports whether the spec declares a default value.
func (s *VariableSpec) HasDefault() bool {
	return s.Default != nil
}

// Coerce converts a raw binding into the spec's declared type. String
// inputs (typically from --var flags) are parsed into numbers, booleans,
// or JSON composites as needed; already-typed values pass through with
// numeric widening only.
func (s *VariableSpec) Coerce(value interface{}) (interface{}, error) {
	switch s.Type {
	case VarString:
		if v, ok := value.(string); ok {
			return v, nil
		}
		return nil, coerceErr(s, value, "string")
	case VarNumber:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, coerceErr(s, value, "number")
			}
			return n, nil
		}
		return nil, coerceErr(s, value, "number")
	case VarBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, coerceErr(s, value, "boolean")
			}
			return b, nil
		}
		return nil, coerceErr(s, value, "boolean")
	case VarArray:
		switch v := value.(type) {
		case []interface{}:
			return v, nil
		case string:
			parsed, err := oj.ParseString(v)
			if err != nil {
				return nil, coerceErr(s, value, "array")
			}
			arr, ok := parsed.([]interface{})
			if !ok {
				return nil, coerceErr(s, value, "array")
			}
			return arr, nil
		}
		return nil, coerceErr(s, value, "array")
	case VarObject:
		switch v := value.(type) {
		case map[string]interface{}:
			return v, nil
		case string:
			parsed, err := oj.ParseString(v)
			if err != nil {
				return nil, coerceErr(s, value, "object")
			}
			obj, ok := parsed.(map[string]interface{})
			if !ok {
				return nil, coerceErr(s, value, "object")
			}
			return obj, nil
		}
		return nil, coerceErr(s, value, "object")
	}
	// Unknown types are caught by manifest validation; pass through here.
	return value, nil
}

// Validate checks a coerced binding against the spec's constraints:
// regex pattern for strings, enum membership, numeric min/max.
func (s *VariableSpec) Validate(value interface{}) error {
	if s.Pattern != "" {
		str, ok := value.(string)
		if ok {
			re, err := regexp.Compile(s.Pattern)
			if err != nil {
				return errors.Wrapf(err, errors.ErrInvalidInput,
					"variable %q has malformed pattern", s.Name)
			}
			if !re.MatchString(str) {
				return errors.Newf(errors.ErrInvalidInput,
					"variable %q value %q does not match pattern %q", s.Name, str, s.Pattern).
					WithDetail("variable", s.Name)
			}
		}
	}

	if len(s.Enum) > 0 {
		found := false
		for _, allowed := range s.Enum {
			if enumEqual(allowed, value) {
				found = true
				break
			}
		}
		if !found {
			return errors.Newf(errors.ErrInvalidInput,
				"variable %q value %v is not one of the allowed values", s.Name, value).
				WithDetail("variable", s.Name)
		}
	}

	if n, ok := toNumber(value); ok {
		if s.Min != nil && n < *s.Min {
			return errors.Newf(errors.ErrInvalidInput,
				"variable %q value %v is below minimum %v", s.Name, n, *s.Min).
				WithDetail("variable", s.Name)
		}
		if s.Max != nil && n > *s.Max {
			return errors.Newf(errors.ErrInvalidInput,
				"variable %q value %v is above maximum %v", s.Name, n, *s.Max).
				WithDetail("variable", s.Name)
		}
	}

	return nil
}

func coerceErr(s *VariableSpec, value interface{}, want string) error {
	return errors.Newf(errors.ErrInvalidInput,
		"variable %q expects %s, got %T", s.Name, want, value).
		WithDetail("variable", s.Name)
}

func enumEqual(allowed, value interface{}) bool {
	if an, ok := toNumber(allowed); ok {
		if vn, vok := toNumber(value); vok {
			return an == vn
		}
		return false
	}
	return fmt.Sprintf("%v", allowed) == fmt.Sprintf("%v", value)
}

func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
