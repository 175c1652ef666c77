// Package service provides the business logic layer between the HTTP
// handlers and the data/executor adapters.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/promptline/promptline-api/internal/apperrors"
	"github.com/promptline/promptline-api/internal/core"
	domainjob "github.com/promptline/promptline-api/internal/domain/job"
	"github.com/promptline/promptline-api/internal/domain/model"
	"github.com/promptline/promptline-api/internal/observability/metrics"
	"github.com/promptline/promptline-api/internal/observability/statsd"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Store    core.JobRecordStore // Required: durable job records
	Executor core.JobExecutor    // Required: work submission and polling
	Logger   *slog.Logger        // Optional: structured logger
	Metrics  statsd.Sink         // Optional: lifecycle metrics
}

// JobService owns the job lifecycle: it is the only writer of job records and
// the only caller of the executor. Submission creates the durable record
// before the work is handed off; status reads reconcile the record with the
// executor's native view and persist any resulting transition.
type JobService struct {
	store    core.JobRecordStore
	executor core.JobExecutor
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Store == nil {
		return nil, errors.New("JobRecordStore is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("JobExecutor is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "job_service")
	}

	return &JobService{
		store:    opts.Store,
		executor: opts.Executor,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

// SubmitJob creates a pending record for the payload, hands the work to the
// executor and binds the executor-native id. A submission the executor
// rejects leaves the record terminally Failed, never dangling Pending; the
// Failed record is returned alongside the error so the caller keeps the job
// id and can poll the recorded failure later.
func (s *JobService) SubmitJob(
	ctx context.Context,
	ownerID string,
	payload json.RawMessage,
) (*model.Job, error) {
	req := &model.CreateJobRequest{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Payload: payload,
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "invalid job request")
	}

	job, err := s.store.Create(ctx, req)
	if err != nil {
		wrapped := apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "create job record")
		s.emitSubmit(wrapped)
		return nil, wrapped
	}

	handle, err := s.executor.Submit(ctx, payload)
	if err != nil {
		failed, failErr := s.failSubmission(ctx, job, err)
		s.emitSubmit(failErr)
		return failed, failErr
	}

	if err := s.store.BindHandle(ctx, job.ID, handle.NativeID); err != nil {
		wrapped := apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "bind executor handle")
		s.emitSubmit(wrapped)
		return nil, wrapped
	}
	s.emitSubmit(nil)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job submitted",
			"id", job.ID, "owner_id", ownerID, "native_id", handle.NativeID)
	}

	job.NativeID = &handle.NativeID
	return job, nil
}

// failSubmission records the synchronous submit failure on the job before
// surfacing it, and returns the Failed record so the caller still learns the
// job id. The terminal write may lose a race with another writer; the record
// is terminal either way, so that is not an error here.
func (s *JobService) failSubmission(
	ctx context.Context,
	job *model.Job,
	cause error,
) (*model.Job, error) {
	msg := cause.Error()
	updated, updateErr := s.store.UpdateStatus(ctx, core.UpdateJobStatusParams{
		ID:     job.ID,
		Status: model.JobStatusFailed,
		Error:  &msg,
	})
	if updateErr == nil {
		job = updated
	} else {
		if !errors.Is(updateErr, core.ErrJobTerminal) && s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to record submission failure",
				"id", job.ID, "error", updateErr)
		}
		// Report the failure view even when the store write did not land.
		job.Status = model.JobStatusFailed
		job.Error = &msg
	}
	return job, apperrors.Wrap(cause, apperrors.CodeSubmissionFailed, "submit job")
}

// GetJobStatus returns the reconciled view of a job for its owner. Unknown
// ids and ownership mismatches are the same NotFound; terminal records are
// served from the store without touching the executor.
func (s *JobService) GetJobStatus(
	ctx context.Context,
	ownerID, jobID string,
) (*model.JobStatusView, error) {
	job, err := s.fetchOwned(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status.Terminal() {
		view := job.StatusView()
		return &view, nil
	}

	var nativeID string
	if job.NativeID != nil {
		nativeID = *job.NativeID
	}
	poll, err := s.executor.Poll(ctx, nativeID)
	if err != nil {
		// A poll failure is transient; report the stored view unchanged.
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "executor poll failed", "id", job.ID, "error", err)
		}
		view := job.StatusView()
		return &view, nil
	}

	outcome := domainjob.Reconcile(job, poll)
	if !outcome.Persist {
		return viewFromOutcome(job, outcome), nil
	}

	updated, err := s.store.UpdateStatus(ctx, core.UpdateJobStatusParams{
		ID:     job.ID,
		Status: outcome.Status.Status,
		Result: outcome.Status.Result,
		Error:  outcome.Status.Error,
	})
	if err != nil {
		// Another poll reached the terminal state first; its write wins.
		if errors.Is(err, core.ErrJobTerminal) {
			return s.rereadView(ctx, ownerID, jobID)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "persist job transition")
	}

	if s.logger != nil && outcome.RetentionExpired {
		s.logger.InfoContext(ctx, "job result expired before read",
			"id", job.ID, "owner_id", ownerID)
	}
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Transition: metrics.TransitionReconcile,
		Result:     metrics.ResultSuccess,
		Status:     string(updated.Status),
	})
	view := updated.StatusView()
	return &view, nil
}

func (s *JobService) emitSubmit(err error) {
	m := metrics.JobMetric{Transition: metrics.TransitionSubmit, Result: metrics.ResultSuccess}
	if err != nil {
		m.Result = metrics.ResultError
		m.Err = err
	}
	metrics.EmitJobLifecycle(s.metrics, m)
}

// Stats reports job counts per state.
func (s *JobService) Stats(ctx context.Context) (*model.JobStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "job stats")
	}
	return stats, nil
}

func (s *JobService) fetchOwned(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
	job, err := s.store.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, core.ErrJobNotFound) {
			return nil, apperrors.NotFoundf("job %s not found", jobID)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "load job record")
	}
	// Ownership mismatch is reported exactly as absence.
	if job.OwnerID != ownerID {
		return nil, apperrors.NotFoundf("job %s not found", jobID)
	}
	return job, nil
}

func (s *JobService) rereadView(
	ctx context.Context,
	ownerID, jobID string,
) (*model.JobStatusView, error) {
	job, err := s.fetchOwned(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	view := job.StatusView()
	return &view, nil
}

// viewFromOutcome merges a non-persisted reconciliation outcome over the
// stored record.
func viewFromOutcome(job *model.Job, outcome domainjob.Outcome) *model.JobStatusView {
	view := job.StatusView()
	view.Status = outcome.Status.Status
	if outcome.Status.Result != nil {
		view.Result = outcome.Status.Result
	}
	if outcome.Status.Error != nil {
		view.Error = outcome.Status.Error
	}
	return &view
}
