package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification independent of the wire client.
//
//	return fmt.Errorf("failed to list servers: %w", domain.ErrUnauthorized)
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// AmbiguousResourceError is returned when a lookup by UUID matches more
// than one remote record.
type AmbiguousResourceError struct {
	UUID  string
	Type  string
	Count int
}

func (e *AmbiguousResourceError) Error() string {
	return fmt.Sprintf("found %d resources of type %s with the uuid %s", e.Count, e.Type, e.UUID)
}

// RemoteCallError wraps a transport or provider fault raised while listing,
// creating, changing, or deleting resources.
type RemoteCallError struct {
	Op      string
	Message string
	Err     error
}

func (e *RemoteCallError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// RemoteJobError wraps a provider-reported job failure.
type RemoteJobError struct {
	JobUUID string
	Err     error
}

func (e *RemoteJobError) Error() string {
	return fmt.Sprintf("job %s failed: %v", e.JobUUID, e.Err)
}

func (e *RemoteJobError) Unwrap() error { return e.Err }

// ProvisioningError is the host-facing error for a failed provisioning
// operation. It carries a descriptive message and the original cause.
type ProvisioningError struct {
	Message string
	Err     error
}

// NewProvisioningError returns a ProvisioningError with the given cause.
func NewProvisioningError(message string, err error) *ProvisioningError {
	return &ProvisioningError{Message: message, Err: err}
}

func (e *ProvisioningError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }
