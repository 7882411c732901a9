package jobstore

import "time"

// Job record statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// JobRecord is the local history entry for one provider job.
type JobRecord struct {
	// ID is the auto-increment primary key (assigned on insert).
	ID int64

	// JobUUID is the provider's job identifier.
	JobUUID string

	// ItemUUID is the resource the job produced or acted on, when known.
	ItemUUID string

	// Command describes the operation, e.g. "create_server", "delete_server".
	Command string

	// Endpoint is the API endpoint the job was submitted to.
	Endpoint string

	// ProviderStatus is the last job status reported by the provider,
	// e.g. "IN_PROGRESS" or "SUCCESSFUL".
	ProviderStatus string

	// Status is "running", "success", or "error".
	Status string

	// ErrorMessage explains the failure when Status is "error".
	ErrorMessage string

	CreatedAt time.Time
	UpdatedAt time.Time
}
