package gatekeep

import (
	"errors"
	"fmt"
)

// RemoteError is an error returned by the remote grid service.
// Code carries the HTTP status reported by the service and determines
// whether the operation may be retried.
type RemoteError struct {
	Code    int
	Message string
}

// Error returns the string representation of the RemoteError.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote grid error %d: %s", e.Code, e.Message)
}

// Unwrap maps the remote status code onto the package sentinel errors,
// so callers can use errors.Is without inspecting codes themselves.
func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case 400:
		return ErrInvalidRequest
	case 401:
		return ErrAuthentication
	case 403:
		return ErrPermission
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	case 503:
		return ErrServiceUnavailable
	}
	return nil
}

// RemoteCode extracts the remote status code from an error chain.
// It returns 0 when the error did not originate from the grid service.
func RemoteCode(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Code
	}
	return 0
}

// IsAuthError reports whether the error is an authentication or
// permission failure. These are never retried and must not be masked
// by local fallback state.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthentication) || errors.Is(err, ErrPermission)
}

// IsClientError reports whether the error is a malformed request or a
// missing resource. Retrying cannot help either.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrNotFound)
}

// IsThrottleError reports whether the error is a rate limit or a
// temporary service outage, which retry with exponential backoff.
func IsThrottleError(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServiceUnavailable)
}
