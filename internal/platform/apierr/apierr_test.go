package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestMissing(t *testing.T) {
	err := Missing("query")
	if err.Status != http.StatusBadRequest || err.Code != CodeInvalidRequest {
		t.Fatalf("unexpected error: %+v", err)
	}
	if err.Error() != "query is required" {
		t.Fatalf("message: %q", err.Error())
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	var nilErr *Error
	if nilErr.Error() != "" {
		t.Fatalf("nil error should render empty")
	}
	if got := New(http.StatusConflict, "", nil).Error(); got != "api error (409)" {
		t.Fatalf("got %q", got)
	}
	cause := errors.New("bad json")
	if !errors.Is(BadRequest(cause), cause) {
		t.Fatalf("BadRequest should unwrap to its cause")
	}
}
