package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWithCauseKeepsSubtype(t *testing.T) {
	cause := fmt.Errorf("bad byte")

	var err error = NewValidationError("malformed line", "items", 3).WithCause(cause)

	var validation *ValidationError
	if !stderrors.As(err, &validation) {
		t.Fatalf("errors.As lost *ValidationError after WithCause: %T", err)
	}
	if validation.StatusCode != 400 {
		t.Errorf("status = %d, want 400", validation.StatusCode)
	}
	if !stderrors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}

	var api error = NewAPIError("upstream refused", 502, nil).WithCause(cause)
	var apiErr *APIError
	if !stderrors.As(api, &apiErr) {
		t.Fatalf("errors.As lost *APIError after WithCause: %T", api)
	}
}

func TestErrorIncludesCause(t *testing.T) {
	err := NewSyncError("sync failed", CodeSyncError, 500, nil).WithCause(fmt.Errorf("socket closed"))
	if got := err.Error(); got != "sync failed: socket closed" {
		t.Errorf("Error() = %q", got)
	}
}
