package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lionscafe/api/domain/apperr"
)

func TestConstructors_StatusAndCode(t *testing.T) {
	cases := []struct {
		name   string
		err    *apperr.Error
		status int
		code   string
	}{
		{"validation", apperr.Validation("bad input", nil), 400, apperr.CodeValidation},
		{"authentication", apperr.Authentication(""), 401, apperr.CodeAuthentication},
		{"token expired", apperr.TokenExpired(), 401, apperr.CodeTokenExpired},
		{"authorization", apperr.Authorization(""), 403, apperr.CodeAuthorization},
		{"not found", apperr.NotFound("Order"), 404, apperr.CodeNotFound},
		{"conflict", apperr.Conflict("taken"), 409, apperr.CodeConflict},
		{"rate limit", apperr.RateLimit("slow down"), 429, apperr.CodeRateLimit},
		{"file upload", apperr.FileUpload("too big"), 400, apperr.CodeFileUpload},
		{"payment", apperr.Payment("declined"), 402, apperr.CodePayment},
		{"database", apperr.Database(""), 500, apperr.CodeDatabase},
		{"external", apperr.ExternalService(""), 502, apperr.CodeExternalService},
		{"internal", apperr.Internal(""), 500, apperr.CodeInternal},
	}

	for _, tc := range cases {
		if tc.err.Status != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.name, tc.err.Status, tc.status)
		}
		if tc.err.Code != tc.code {
			t.Errorf("%s: code = %q, want %q", tc.name, tc.err.Code, tc.code)
		}
		if tc.err.Status < 400 || tc.err.Status > 599 {
			t.Errorf("%s: status %d outside [400,599]", tc.name, tc.err.Status)
		}
	}
}

func TestOperationalFlag(t *testing.T) {
	if !apperr.Validation("x", nil).Operational {
		t.Error("validation errors should be operational")
	}
	if apperr.Internal("").Operational {
		t.Error("internal faults should not be operational")
	}
	if apperr.Database("").Operational {
		t.Error("database faults should not be operational")
	}
}

func TestWithCause_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := apperr.Database("").WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	var appErr *apperr.Error
	wrapped := fmt.Errorf("saving order: %w", err)
	if !errors.As(wrapped, &appErr) {
		t.Fatal("expected errors.As to find *apperr.Error through wrapping")
	}
	if appErr.Code != apperr.CodeDatabase {
		t.Errorf("code = %q, want %q", appErr.Code, apperr.CodeDatabase)
	}
}

func TestFrom_PassesThroughAppErrors(t *testing.T) {
	orig := apperr.NotFound("Table")
	got := apperr.From(fmt.Errorf("lookup: %w", orig))
	if got.Code != apperr.CodeNotFound || got.Status != 404 {
		t.Errorf("got %q/%d, want NOT_FOUND_ERROR/404", got.Code, got.Status)
	}
}

func TestFrom_WrapsUnknownErrors(t *testing.T) {
	got := apperr.From(errors.New("boom"))
	if got.Code != apperr.CodeInternal || got.Status != 500 {
		t.Errorf("got %q/%d, want INTERNAL_SERVER_ERROR/500", got.Code, got.Status)
	}
	if got.Operational {
		t.Error("unknown errors must be treated as system faults")
	}
}

func TestFrom_ClassifiesRawSQLStateErrors(t *testing.T) {
	raw := errors.New(`duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`)
	got := apperr.From(raw)
	if got.Code != apperr.CodeDuplicate || got.Status != 409 {
		t.Errorf("got %q/%d, want DUPLICATE_RESOURCE/409", got.Code, got.Status)
	}
	if !errors.Is(got, raw) {
		t.Error("classified error should keep the driver error as cause")
	}

	got = apperr.From(errors.New("serialization failure (SQLSTATE 40001)"))
	if got.Code != apperr.CodeDatabase || got.Status != 500 {
		t.Errorf("got %q/%d, want DATABASE_ERROR/500", got.Code, got.Status)
	}
}

func TestFromSQLState(t *testing.T) {
	cases := []struct {
		code   string
		status int
		want   string
	}{
		{"23505", 409, apperr.CodeDuplicate},
		{"23503", 400, apperr.CodeInvalidRef},
		{"23502", 400, apperr.CodeMissingField},
		{"42P01", 500, apperr.CodeDatabaseConfig},
		{"40001", 500, apperr.CodeDatabase},
	}
	for _, tc := range cases {
		got := apperr.FromSQLState(tc.code)
		if got.Status != tc.status || got.Code != tc.want {
			t.Errorf("FromSQLState(%s) = %d/%s, want %d/%s",
				tc.code, got.Status, got.Code, tc.status, tc.want)
		}
	}
}

func TestExtractSQLState(t *testing.T) {
	code, ok := apperr.ExtractSQLState(`duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`)
	if !ok || code != "23505" {
		t.Errorf("got %q/%v, want 23505/true", code, ok)
	}

	if _, ok := apperr.ExtractSQLState("no such table: users"); ok {
		t.Error("expected no SQLSTATE in plain sqlite message")
	}
}

func TestIsSQLState(t *testing.T) {
	for _, valid := range []string{"23505", "42P01", "00000"} {
		if !apperr.IsSQLState(valid) {
			t.Errorf("IsSQLState(%q) = false, want true", valid)
		}
	}
	for _, invalid := range []string{"2350", "235055", "23x05", ""} {
		if apperr.IsSQLState(invalid) {
			t.Errorf("IsSQLState(%q) = true, want false", invalid)
		}
	}
}

func TestWithDetails(t *testing.T) {
	details := []apperr.FieldError{
		{Field: "email", Message: "invalid email", RejectedValue: "nope"},
		{Field: "party.size", Message: "must be at least 1", RejectedValue: 0},
	}
	err := apperr.Validation("Validation failed", nil).WithDetails(details)
	if len(err.Details) != 2 {
		t.Fatalf("details = %d, want 2", len(err.Details))
	}
	if err.Details[1].Field != "party.size" {
		t.Errorf("field = %q, want party.size", err.Details[1].Field)
	}
}
