package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks requests that never produced an HTTP response.
	ErrTransport = errors.New("analytics: transport failure")
	// ErrStatus marks non-2xx responses. Use errors.As with *StatusError for the code.
	ErrStatus = errors.New("analytics: unexpected status")
	// ErrDecode marks response bodies that could not be decoded.
	ErrDecode = errors.New("analytics: decode failure")
)

// StatusError carries the HTTP status of a rejected request.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analytics: %s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("analytics: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Is matches ErrStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}
