package issuer

import "errors"

// ErrRequestFailed covers transport errors, 5xx responses and malformed
// issuer payloads. The caller may retry with backoff; this client never
// retries internally.
var ErrRequestFailed = errors.New("issuer request failed")

// ValidationError carries the issuer's own message for an HTTP 400 response.
// It is user-correctable and must not be retried automatically.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
