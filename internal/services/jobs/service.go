// Package jobs records provider jobs in the local job history as they are
// submitted and finished.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"nathanbeddoewebdev/flexctl/internal/extility"
	"nathanbeddoewebdev/flexctl/internal/jobstore"
)

// RetentionPeriod is how long finished records are kept before they are
// pruned opportunistically on the next submission.
var RetentionPeriod = 7 * 24 * time.Hour

var errUnavailable = errors.New("jobs: repository unavailable")

// Service persists job records. It satisfies compute.JobObserver.
// A nil repository turns every write into a no-op so that history failures
// never block provisioning.
type Service struct {
	repo     jobstore.Repository
	endpoint string
	log      logr.Logger

	mu      sync.Mutex
	running map[string]*jobstore.JobRecord
}

// NewService returns a Service writing to repo. endpoint is stored on each
// record to tell apart jobs sent to different clusters.
func NewService(repo jobstore.Repository, endpoint string, log logr.Logger) *Service {
	return &Service{
		repo:     repo,
		endpoint: endpoint,
		log:      log,
		running:  make(map[string]*jobstore.JobRecord),
	}
}

// Close releases repository resources.
func (s *Service) Close() error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Close()
}

// JobSubmitted saves a running record for job.
func (s *Service) JobSubmitted(_ context.Context, command string, job extility.Job) {
	if s.repo == nil {
		return
	}

	record := &jobstore.JobRecord{
		JobUUID:        job.ResourceUUID,
		ItemUUID:       job.ItemUUID,
		Command:        command,
		Endpoint:       s.endpoint,
		ProviderStatus: string(job.Status),
		Status:         jobstore.StatusRunning,
	}
	if err := s.repo.Save(record); err != nil {
		s.log.V(1).Info("Could not record job", "job", job.ResourceUUID, "error", err.Error())
		return
	}

	s.mu.Lock()
	s.running[job.ResourceUUID] = record
	s.mu.Unlock()

	if _, err := s.repo.DeleteOlderThan(RetentionPeriod); err != nil {
		s.log.V(1).Info("Could not prune job history", "error", err.Error())
	}
}

// JobFinished marks the record for job as success or error.
func (s *Service) JobFinished(_ context.Context, command string, job extility.Job, err error) {
	if s.repo == nil {
		return
	}

	s.mu.Lock()
	record, ok := s.running[job.ResourceUUID]
	delete(s.running, job.ResourceUUID)
	s.mu.Unlock()
	if !ok {
		return
	}

	if job.ItemUUID != "" {
		record.ItemUUID = job.ItemUUID
	}
	if job.Status != "" {
		record.ProviderStatus = string(job.Status)
	}
	if err != nil {
		record.Status = jobstore.StatusError
		record.ErrorMessage = err.Error()
	} else {
		record.Status = jobstore.StatusSuccess
	}

	if saveErr := s.repo.Save(record); saveErr != nil {
		s.log.V(1).Info("Could not finalize job record", "job", job.ResourceUUID, "command", command, "error", saveErr.Error())
	}
}

// ListRecent returns the most recent n job records.
func (s *Service) ListRecent(n int) ([]jobstore.JobRecord, error) {
	if s.repo == nil {
		return nil, errUnavailable
	}
	return s.repo.ListRecent(n)
}

// ListRunning returns jobs that were submitted but never finalized.
func (s *Service) ListRunning() ([]jobstore.JobRecord, error) {
	if s.repo == nil {
		return nil, errUnavailable
	}
	return s.repo.ListRunning()
}

// Cleanup removes finished records older than maxAge.
func (s *Service) Cleanup(maxAge time.Duration) (int64, error) {
	if s.repo == nil {
		return 0, errUnavailable
	}
	return s.repo.DeleteOlderThan(maxAge)
}
