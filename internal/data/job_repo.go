// Package data provides postgres-backed repositories for the promptline system.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/promptline/promptline-api/internal/core"
	"github.com/promptline/promptline-api/internal/domain/model"
)

// RepoConfig holds configuration options shared by the repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo implements core.JobRecordStore on postgres.
//
// Terminal transitions are guarded in SQL: the conditional UPDATE only matches
// non-terminal rows, so concurrent updates to one id serialize on the row lock
// and a late writer against a terminal record is rejected, never applied.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const jobColumns = `
  id,
  owner_id,
  status,
  payload,
  native_id,
  result,
  error,
  created_at,
  updated_at
`

// Create inserts a new job record in pending state.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
      INSERT INTO jobs(id, owner_id, status, payload, created_at, updated_at)
      VALUES ($1, $2, 'pending', $3, $4, $4)
      RETURNING `+jobColumns,
		req.ID, req.OwnerID, []byte(req.Payload), now)

	job, err := scanJobFromRow(row)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// GetByID retrieves a job record by id.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if id == "" {
		return nil, core.ErrJobNotFound
	}

	row := r.DB.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJobFromRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrJobNotFound
		}
		return nil, fmt.Errorf("select job: %w", err)
	}
	return job, nil
}

// BindHandle associates the executor-native id with the record.
func (r *JobRepo) BindHandle(ctx context.Context, id, nativeID string) error {
	if id == "" || nativeID == "" {
		return errors.New("job id and native id are required")
	}

	res, err := r.DB.ExecContext(ctx, `
      UPDATE jobs SET native_id = $2, updated_at = $3 WHERE id = $1`,
		id, nativeID, r.timeProvider.Now().UTC())
	if err != nil {
		return fmt.Errorf("bind handle: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrJobNotFound
	}
	return nil
}

// UpdateStatus performs the atomic status transition. Result and error are
// write-once: once a row is terminal the conditional UPDATE matches nothing
// and the call fails with core.ErrJobTerminal.
func (r *JobRepo) UpdateStatus(
	ctx context.Context,
	params core.UpdateJobStatusParams,
) (*model.Job, error) {
	if params.ID == "" {
		return nil, core.ErrJobNotFound
	}
	if !params.Status.Valid() {
		return nil, fmt.Errorf("invalid job status %q", params.Status)
	}

	var result any
	if len(params.Result) > 0 {
		result = []byte(params.Result)
	}

	row := r.DB.QueryRowContext(ctx, `
      UPDATE jobs
      SET status = $2, result = $3, error = $4, updated_at = $5
      WHERE id = $1 AND status NOT IN ('succeeded', 'failed')
      RETURNING `+jobColumns,
		params.ID, params.Status, result, params.Error, r.timeProvider.Now().UTC())

	job, err := scanJobFromRow(row)
	if err == nil {
		if r.logger != nil {
			r.logger.DebugContext(ctx, "job status updated", "id", job.ID, "status", job.Status)
		}
		return job, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update job status: %w", err)
	}

	// No row matched: either the job does not exist or it is already terminal.
	var status model.JobStatus
	scanErr := r.DB.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = $1`, params.ID).
		Scan(&status)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, core.ErrJobNotFound
		}
		return nil, fmt.Errorf("check job status: %w", scanErr)
	}
	return nil, core.ErrJobTerminal
}

// Stats returns counts of jobs per state.
func (r *JobRepo) Stats(ctx context.Context) (*model.JobStats, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("query job stats: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	stats := &model.JobStats{}
	for rows.Next() {
		var (
			status model.JobStatus
			count  int
		)
		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			return nil, fmt.Errorf("scan job stats: %w", scanErr)
		}
		switch status {
		case model.JobStatusPending:
			stats.Pending = count
		case model.JobStatusRunning:
			stats.Running = count
		case model.JobStatusSucceeded:
			stats.Succeeded = count
		case model.JobStatusFailed:
			stats.Failed = count
		}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("job stats rows: %w", rowsErr)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type jobRowData struct {
	payload, result   []byte
	nativeID, errText sql.NullString
}

func (d *jobRowData) scanInto(scanner rowScanner, job *model.Job) error {
	return scanner.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Status,
		&d.payload,
		&d.nativeID,
		&d.result,
		&d.errText,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
}

func (d *jobRowData) apply(job *model.Job) {
	job.Payload = cloneJSON(d.payload)
	if len(d.result) > 0 {
		job.Result = append(json.RawMessage(nil), d.result...)
	}
	job.NativeID = cloneNullableString(d.nativeID)
	job.Error = cloneNullableString(d.errText)
	job.CreatedAt = job.CreatedAt.UTC()
	job.UpdatedAt = job.UpdatedAt.UTC()
}

func scanJobFromRow(scanner rowScanner) (*model.Job, error) {
	job := &model.Job{}
	var data jobRowData
	if err := data.scanInto(scanner, job); err != nil {
		return nil, err
	}

	data.apply(job)
	return job, nil
}

func cloneJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return append(json.RawMessage(nil), raw...)
}

func cloneNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
