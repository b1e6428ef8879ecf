package errs

import (
	"errors"
	"fmt"
)

// ConfigurationError means a required credential or setting is missing.
// It is raised before any network call and is not retryable without
// operator intervention.
type ConfigurationError struct {
	Setting string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %v", e.Setting)
}

// PlatformAPIError is a non-2xx response from one of the control-plane
// APIs. Body carries the raw response body verbatim, it is the primary
// debugging surface and must not be swallowed.
type PlatformAPIError struct {
	Platform   string
	Operation  string
	StatusCode int
	Body       string
}

func (e PlatformAPIError) Error() string {
	return fmt.Sprintf("%v %v failed: %d %v", e.Platform, e.Operation, e.StatusCode, e.Body)
}

// TimeoutError means a polling loop exceeded its ceiling. The platform may
// still be working on the resource, so a retry can create a duplicate if
// the reuse metadata was not persisted before the timeout.
type TimeoutError struct {
	Operation string
	Waited    string
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("%v did not complete within %v", e.Operation, e.Waited)
}

// MigrationError wraps a failed schema migration run, including the raw
// response body of the SQL-execution endpoint.
type MigrationError struct {
	Detail string
}

func (e MigrationError) Error() string {
	return fmt.Sprintf("migration run failed: %v", e.Detail)
}

// InvalidTokenError is returned by the setup-token codec when the
// signature is invalid, the token expired, or the type claim mismatches.
type InvalidTokenError struct {
	Reason string
}

func (e InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid setup token: %v", e.Reason)
}

func IsTimeout(err error) bool {
	var t TimeoutError
	return errors.As(err, &t)
}
