package apperr

import (
	"regexp"
	"strings"
)

// sqlstatePattern matches SQLSTATE-style storage engine codes.
var sqlstatePattern = regexp.MustCompile(`^[0-9A-Z]{5}$`)

// IsSQLState reports whether code looks like a five-character SQLSTATE code.
func IsSQLState(code string) bool {
	return sqlstatePattern.MatchString(code)
}

// FromSQLState maps a five-character SQLSTATE code to a taxonomy error
// through the fixed lookup table. Codes outside the table are generic
// database faults.
func FromSQLState(code string) *Error {
	switch code {
	case "23505":
		return New(409, CodeDuplicate, "Resource already exists")
	case "23503":
		return New(400, CodeInvalidRef, "Referenced resource does not exist")
	case "23502":
		return New(400, CodeMissingField, "Required field is missing")
	case "42P01":
		return &Error{Message: "Database error", Code: CodeDatabaseConfig, Status: 500}
	default:
		return Database("")
	}
}

// ExtractSQLState pulls a SQLSTATE code out of a driver error message,
// e.g. "duplicate key value violates unique constraint (SQLSTATE 23505)".
func ExtractSQLState(msg string) (string, bool) {
	if i := strings.Index(msg, "SQLSTATE "); i >= 0 {
		rest := msg[i+len("SQLSTATE "):]
		if len(rest) >= 5 && IsSQLState(rest[:5]) {
			return rest[:5], true
		}
	}
	return "", false
}
