// Package validation provides declarative schema validation for request
// payloads. Validation collects every failure in one pass, strips unknown
// fields, and coerces values to their declared types where unambiguous.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lionscafe/api/domain/apperr"
	"github.com/lionscafe/api/domain/user"
)

// Type enumerates the field types a schema can declare.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeBool   Type = "bool"
	TypeEmail  Type = "email"
	TypeEnum   Type = "enum"
	TypeUUID   Type = "uuid"
	TypeTime   Type = "time" // RFC3339 timestamp
	TypeObject Type = "object"
	TypeArray  Type = "array" // array of objects described by Fields
)

// Rule describes the constraints for one field.
type Rule struct {
	Type     Type
	Required bool
	Min      *float64 // min length for strings, min value for numbers
	Max      *float64 // max length for strings, max value for numbers
	Pattern  string   // regexp the (string) value must match
	Enum     []string // allowed values for TypeEnum
	Default  any      // filled in when the field is absent
	Fields   Schema   // nested schema for TypeObject / TypeArray elements
}

// Schema maps field names to rules. Fields not present in the schema are
// stripped from the sanitized output.
type Schema map[string]Rule

// Result is either a sanitized value or a list of field errors.
type Result struct {
	Value  map[string]any
	Errors []apperr.FieldError
}

// Valid reports whether validation passed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Min returns a pointer for use in Rule literals.
func Min(v float64) *float64 { return &v }

// Max returns a pointer for use in Rule literals.
func Max(v float64) *float64 { return &v }

// Validate checks data against the schema, collecting all failures.
// The returned Result carries the sanitized, coerced value on success.
func (s Schema) Validate(data map[string]any) Result {
	return s.validate(data, "")
}

func (s Schema) validate(data map[string]any, prefix string) Result {
	result := Result{Value: make(map[string]any, len(s))}

	for name, rule := range s {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		raw, present := data[name]
		if !present || raw == nil {
			if rule.Default != nil {
				result.Value[name] = rule.Default
			} else if rule.Required {
				result.Errors = append(result.Errors, apperr.FieldError{
					Field:   path,
					Message: fmt.Sprintf("%s is required", name),
				})
			}
			continue
		}

		value, errs := rule.check(path, name, raw)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			continue
		}
		result.Value[name] = value
	}

	return result
}

// check validates and coerces a single present value.
func (r Rule) check(path, name string, raw any) (any, []apperr.FieldError) {
	fail := func(msg string) []apperr.FieldError {
		return []apperr.FieldError{{Field: path, Message: msg, RejectedValue: raw}}
	}

	switch r.Type {
	case TypeString, "":
		str, ok := raw.(string)
		if !ok {
			return nil, fail(fmt.Sprintf("%s must be a string", name))
		}
		str = strings.TrimSpace(str)
		if errs := r.checkStringBounds(path, name, str, raw); errs != nil {
			return nil, errs
		}
		return str, nil

	case TypeEmail:
		str, ok := raw.(string)
		if !ok || !user.IsValidEmail(str) {
			return nil, fail(fmt.Sprintf("%s must be a valid email address", name))
		}
		return strings.ToLower(strings.TrimSpace(str)), nil

	case TypeEnum:
		str, ok := raw.(string)
		if !ok {
			return nil, fail(fmt.Sprintf("%s must be a string", name))
		}
		for _, allowed := range r.Enum {
			if str == allowed {
				return str, nil
			}
		}
		return nil, fail(fmt.Sprintf("%s must be one of: %s", name, strings.Join(r.Enum, ", ")))

	case TypeUUID:
		str, ok := raw.(string)
		if !ok || !uuidPattern.MatchString(str) {
			return nil, fail(fmt.Sprintf("%s must be a valid UUID", name))
		}
		return str, nil

	case TypeTime:
		str, ok := raw.(string)
		if !ok {
			return nil, fail(fmt.Sprintf("%s must be an RFC3339 timestamp", name))
		}
		ts, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return nil, fail(fmt.Sprintf("%s must be an RFC3339 timestamp", name))
		}
		return ts, nil

	case TypeInt:
		n, ok := coerceInt(raw)
		if !ok {
			return nil, fail(fmt.Sprintf("%s must be an integer", name))
		}
		if errs := r.checkNumberBounds(path, name, float64(n), raw); errs != nil {
			return nil, errs
		}
		return n, nil

	case TypeFloat:
		f, ok := coerceFloat(raw)
		if !ok {
			return nil, fail(fmt.Sprintf("%s must be a number", name))
		}
		if errs := r.checkNumberBounds(path, name, f, raw); errs != nil {
			return nil, errs
		}
		return f, nil

	case TypeBool:
		b, ok := coerceBool(raw)
		if !ok {
			return nil, fail(fmt.Sprintf("%s must be a boolean", name))
		}
		return b, nil

	case TypeObject:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fail(fmt.Sprintf("%s must be an object", name))
		}
		nested := r.Fields.validate(obj, path)
		if !nested.Valid() {
			return nil, nested.Errors
		}
		return nested.Value, nil

	case TypeArray:
		arr, ok := raw.([]any)
		if !ok {
			return nil, fail(fmt.Sprintf("%s must be an array", name))
		}
		if errs := r.checkArrayBounds(path, name, len(arr), raw); errs != nil {
			return nil, errs
		}
		var allErrs []apperr.FieldError
		out := make([]any, 0, len(arr))
		for i, el := range arr {
			elPath := fmt.Sprintf("%s.%d", path, i)
			obj, ok := el.(map[string]any)
			if !ok {
				allErrs = append(allErrs, apperr.FieldError{
					Field:         elPath,
					Message:       fmt.Sprintf("%s entries must be objects", name),
					RejectedValue: el,
				})
				continue
			}
			nested := r.Fields.validate(obj, elPath)
			if !nested.Valid() {
				allErrs = append(allErrs, nested.Errors...)
				continue
			}
			out = append(out, nested.Value)
		}
		if len(allErrs) > 0 {
			return nil, allErrs
		}
		return out, nil
	}

	return nil, fail(fmt.Sprintf("%s has an unsupported schema type", name))
}

func (r Rule) checkStringBounds(path, name, str string, raw any) []apperr.FieldError {
	var errs []apperr.FieldError
	add := func(msg string) {
		errs = append(errs, apperr.FieldError{Field: path, Message: msg, RejectedValue: raw})
	}
	if r.Min != nil && float64(len(str)) < *r.Min {
		add(fmt.Sprintf("%s must be at least %d characters", name, int(*r.Min)))
	}
	if r.Max != nil && float64(len(str)) > *r.Max {
		add(fmt.Sprintf("%s must be at most %d characters", name, int(*r.Max)))
	}
	if r.Pattern != "" {
		if re, err := regexp.Compile(r.Pattern); err == nil && !re.MatchString(str) {
			add(fmt.Sprintf("%s has an invalid format", name))
		}
	}
	return errs
}

func (r Rule) checkNumberBounds(path, name string, v float64, raw any) []apperr.FieldError {
	var errs []apperr.FieldError
	add := func(msg string) {
		errs = append(errs, apperr.FieldError{Field: path, Message: msg, RejectedValue: raw})
	}
	if r.Min != nil && v < *r.Min {
		add(fmt.Sprintf("%s must be at least %v", name, *r.Min))
	}
	if r.Max != nil && v > *r.Max {
		add(fmt.Sprintf("%s must be at most %v", name, *r.Max))
	}
	return errs
}

func (r Rule) checkArrayBounds(path, name string, n int, raw any) []apperr.FieldError {
	var errs []apperr.FieldError
	add := func(msg string) {
		errs = append(errs, apperr.FieldError{Field: path, Message: msg, RejectedValue: raw})
	}
	if r.Min != nil && float64(n) < *r.Min {
		add(fmt.Sprintf("%s must contain at least %d entries", name, int(*r.Min)))
	}
	if r.Max != nil && float64(n) > *r.Max {
		add(fmt.Sprintf("%s must contain at most %d entries", name, int(*r.Max)))
	}
	return errs
}

// coerceInt accepts native integers, JSON float64 whole numbers, and
// numeric strings (query and path parameters arrive as strings).
func coerceInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func coerceFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func coerceBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}
