package app

import (
	"errors"
	"fmt"

	"github.com/lionscafe/api/domain/apperr"
	"github.com/lionscafe/api/ports"
)

// storeErr maps store sentinels to the error taxonomy. resource names
// what was being acted on, e.g. "Order".
func storeErr(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ports.ErrNotFound):
		return apperr.NotFound(resource)
	case errors.Is(err, ports.ErrDuplicate):
		return apperr.New(409, apperr.CodeDuplicate, fmt.Sprintf("%s already exists", resource)).WithCause(err)
	case errors.Is(err, ports.ErrInvalidReference):
		return apperr.New(400, apperr.CodeInvalidRef, fmt.Sprintf("%s references a missing record", resource)).WithCause(err)
	default:
		return apperr.Database("").WithCause(err)
	}
}

// fieldErrors converts a field->message map into ordered details.
func fieldErrors(errs map[string]string, order []string) []apperr.FieldError {
	var details []apperr.FieldError
	for _, f := range order {
		if msg, ok := errs[f]; ok {
			details = append(details, apperr.FieldError{Field: f, Message: msg})
		}
	}
	// Fields outside the preferred order still get reported.
	for f, msg := range errs {
		seen := false
		for _, d := range details {
			if d.Field == f {
				seen = true
				break
			}
		}
		if !seen {
			details = append(details, apperr.FieldError{Field: f, Message: msg})
		}
	}
	return details
}
