package compute

import (
	"context"
	"errors"
	"fmt"

	"nathanbeddoewebdev/flexctl/internal/domain"
	"nathanbeddoewebdev/flexctl/internal/extility"
)

// JobAwaiter blocks until provider jobs finish.
//
// Waiting is delegated to the provider: one waitForJob call with
// throwOnFail set, held open until the job ends. The only local bound is the
// deadline of the context passed in.
type JobAwaiter struct {
	api API
}

// NewJobAwaiter returns a JobAwaiter backed by api.
func NewJobAwaiter(api API) *JobAwaiter {
	return &JobAwaiter{api: api}
}

// AwaitCompletion waits for job to finish and returns its final state.
//
// A job the provider reports as failed, either through a SOAP fault or a
// FAILED/CANCELLED status, yields *domain.RemoteJobError. Transport failures,
// including an expired ctx, yield *domain.RemoteCallError.
func (a *JobAwaiter) AwaitCompletion(ctx context.Context, job *extility.Job) (*extility.Job, error) {
	if job == nil {
		return nil, fmt.Errorf("compute: cannot wait for a nil job")
	}

	done, err := a.api.WaitForJob(ctx, job.ResourceUUID, true)
	if err != nil {
		var fault *extility.Fault
		if errors.As(err, &fault) {
			return nil, &domain.RemoteJobError{JobUUID: job.ResourceUUID, Err: err}
		}
		return nil, &domain.RemoteCallError{
			Op:      "waitForJob",
			Message: fmt.Sprintf("failed waiting for job %s", job.ResourceUUID),
			Err:     err,
		}
	}

	switch done.Status {
	case extility.JobStatusFailed, extility.JobStatusCancelled:
		cause := fmt.Errorf("job ended with status %s", done.Status)
		if done.Info != "" {
			cause = fmt.Errorf("job ended with status %s: %s", done.Status, done.Info)
		}
		return done, &domain.RemoteJobError{JobUUID: job.ResourceUUID, Err: cause}
	}
	return done, nil
}
