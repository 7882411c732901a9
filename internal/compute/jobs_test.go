package compute

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nathanbeddoewebdev/flexctl/internal/domain"
	"nathanbeddoewebdev/flexctl/internal/extility"
)

// stubAPI answers waitForJob with a canned job or error. Every other
// operation is unused by these tests.
type stubAPI struct {
	API
	job         *extility.Job
	err         error
	throwOnFail bool
	calls       int
}

func (s *stubAPI) WaitForJob(_ context.Context, _ string, throwOnFail bool) (*extility.Job, error) {
	s.calls++
	s.throwOnFail = throwOnFail
	return s.job, s.err
}

func TestAwaitCompletion_Success(t *testing.T) {
	api := &stubAPI{job: &extility.Job{ResourceUUID: "job-1", ItemUUID: "srv-1", Status: extility.JobStatusSuccessful}}
	a := NewJobAwaiter(api)

	got, err := a.AwaitCompletion(context.Background(), &extility.Job{ResourceUUID: "job-1"})
	if err != nil {
		t.Fatalf("AwaitCompletion failed: %v", err)
	}
	if got.ItemUUID != "srv-1" {
		t.Errorf("ItemUUID = %q", got.ItemUUID)
	}
	if api.calls != 1 {
		t.Errorf("expected exactly one waitForJob call, got %d", api.calls)
	}
	if !api.throwOnFail {
		t.Error("expected throwOnFail to be set")
	}
}

func TestAwaitCompletion_FailedStatus(t *testing.T) {
	for _, status := range []extility.JobStatus{extility.JobStatusFailed, extility.JobStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			api := &stubAPI{job: &extility.Job{ResourceUUID: "job-1", Status: status, Info: "disk quota"}}
			_, err := NewJobAwaiter(api).AwaitCompletion(context.Background(), &extility.Job{ResourceUUID: "job-1"})

			var jobErr *domain.RemoteJobError
			if !errors.As(err, &jobErr) {
				t.Fatalf("expected *domain.RemoteJobError, got %T: %v", err, err)
			}
			if jobErr.JobUUID != "job-1" {
				t.Errorf("JobUUID = %q", jobErr.JobUUID)
			}
			if !strings.Contains(err.Error(), "disk quota") {
				t.Errorf("expected job info in error, got %q", err)
			}
		})
	}
}

func TestAwaitCompletion_Fault(t *testing.T) {
	api := &stubAPI{err: &extility.Fault{Code: "soap:Server", String: "job failed"}}
	_, err := NewJobAwaiter(api).AwaitCompletion(context.Background(), &extility.Job{ResourceUUID: "job-1"})

	var jobErr *domain.RemoteJobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("expected *domain.RemoteJobError, got %T: %v", err, err)
	}
}

func TestAwaitCompletion_TransportError(t *testing.T) {
	api := &stubAPI{err: errors.New("connection reset")}
	_, err := NewJobAwaiter(api).AwaitCompletion(context.Background(), &extility.Job{ResourceUUID: "job-1"})

	var callErr *domain.RemoteCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *domain.RemoteCallError, got %T: %v", err, err)
	}
	if callErr.Op != "waitForJob" {
		t.Errorf("Op = %q", callErr.Op)
	}
}

func TestAwaitCompletion_NilJob(t *testing.T) {
	api := &stubAPI{}
	if _, err := NewJobAwaiter(api).AwaitCompletion(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil job")
	}
	if api.calls != 0 {
		t.Errorf("expected no remote call, got %d", api.calls)
	}
}

func TestAwaitCompletion_Deadline(t *testing.T) {
	api, fake := newTestAPI(t)
	fake.WaitDelay = 10 * time.Second
	id := fake.AddServer("web-1", "10.0.0.5", "root", "")

	job, err := api.ChangeServerStatus(context.Background(), id, extility.ServerStatusStopped, true)
	if err != nil {
		t.Fatalf("ChangeServerStatus failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = NewJobAwaiter(api).AwaitCompletion(ctx, job)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded in chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("wait was not bounded by the deadline: %v", elapsed)
	}
}
