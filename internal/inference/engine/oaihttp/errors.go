package oaihttp

import (
	"fmt"
	"net/http"
)

const maxErrorBody = 512

// HTTPError is a non-2xx answer from the chat completions endpoint. Body is
// truncated so provider error pages do not flood the logs.
type HTTPError struct {
	StatusCode int
	Body       string
}

func newHTTPError(status int, body []byte) *HTTPError {
	if len(body) > maxErrorBody {
		body = append(body[:maxErrorBody:maxErrorBody], "..."...)
	}
	return &HTTPError{StatusCode: status, Body: string(body)}
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "classifier endpoint error"
	}
	if e.Body == "" {
		return fmt.Sprintf("classifier endpoint error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("classifier endpoint error: status=%d body=%s", e.StatusCode, e.Body)
}

// Retryable reports rate limiting and server side failures.
func (e *HTTPError) Retryable() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
