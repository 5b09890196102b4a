package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lionscafe/api/core/validation"
	"github.com/lionscafe/api/domain/apperr"
)

// maxBodyBytes bounds request bodies accepted for validation.
const maxBodyBytes = 1 << 20

// Check pairs a schema with the request location it applies to.
type Check struct {
	Schema   validation.Schema
	Location Location
}

// Validate runs one schema against one request location. Failures
// short-circuit with a 400 listing every failing field; on success the
// sanitized value replaces the raw data in the request context.
func Validate(errors *ErrorWriter, schema validation.Schema, loc Location) func(http.Handler) http.Handler {
	return ValidateAll(errors, Check{Schema: schema, Location: loc})
}

// ValidateAll runs several checks in one pass, aggregating all field
// errors across locations before rejecting.
func ValidateAll(errors *ErrorWriter, checks ...Check) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var details []apperr.FieldError

			for _, c := range checks {
				data, err := extract(r, c.Location)
				if err != nil {
					errors.Write(w, r, err)
					return
				}
				res := c.Schema.Validate(data)
				details = append(details, res.Errors...)
				if res.Valid() {
					ctx = withValidated(ctx, c.Location, res.Value)
				}
			}

			if len(details) > 0 {
				errors.Write(w, r, apperr.Validation("Validation failed", details))
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extract pulls raw request data for a location into a generic map.
func extract(r *http.Request, loc Location) (map[string]any, error) {
	switch loc {
	case LocationParams:
		data := make(map[string]any)
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				data[key] = rctx.URLParams.Values[i]
			}
		}
		return data, nil

	case LocationQuery:
		data := make(map[string]any)
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				data[key] = values[0]
			}
		}
		return data, nil

	default:
		data := make(map[string]any)
		if r.Body == nil {
			return data, nil
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, apperr.Validation("Request body could not be read", nil)
		}
		if len(raw) == 0 {
			return data, nil
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, apperr.Validation("Request body must be valid JSON", nil)
		}
		return data, nil
	}
}
