package feishu

import (
	"fmt"
	"net/http"
)

// APIError represents a non-zero error envelope or an HTTP-level failure
// from the Feishu API.
type APIError struct {
	// HTTPStatus is the HTTP status code of the response.
	HTTPStatus int
	// Code is the Feishu application error code (0 means success).
	Code int
	// Msg is the error message from the envelope.
	Msg string
	// Endpoint is the logical endpoint that failed (for log context).
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feishu %s failed: code=%d status=%d msg=%s", e.Endpoint, e.Code, e.HTTPStatus, e.Msg)
}

// Transient reports whether the failure is likely to succeed on a later
// attempt (rate limiting or server-side errors). The engine itself never
// retries; callers use this to decide.
func (e *APIError) Transient() bool {
	return e.HTTPStatus == http.StatusTooManyRequests || e.HTTPStatus >= 500
}
