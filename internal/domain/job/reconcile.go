// Package job holds the pure domain logic for the asynchronous job lifecycle:
// the executor-native status vocabulary and the reconciliation of live executor
// state with the persisted record.
package job

import (
	"encoding/json"

	"github.com/promptline/promptline-api/internal/domain/model"
)

// NativeStatus is the executor's own state vocabulary. It is translated into
// model.JobStatus by Reconcile and never stored verbatim.
type NativeStatus string

const (
	// NativeStatusQueued indicates the executor has accepted the work but not started it.
	NativeStatusQueued NativeStatus = "queued"
	// NativeStatusStarted indicates the executor is processing the work.
	NativeStatusStarted NativeStatus = "started"
	// NativeStatusSucceeded indicates the executor finished the work successfully.
	NativeStatusSucceeded NativeStatus = "succeeded"
	// NativeStatusFailed indicates the executor finished the work with an error.
	NativeStatusFailed NativeStatus = "failed"
	// NativeStatusUnknown indicates the executor no longer knows the handle,
	// typically because its result retention window has elapsed.
	NativeStatusUnknown NativeStatus = "unknown"
)

// Terminal returns true if the executor will never report a different status
// for this handle again (eviction included).
func (s NativeStatus) Terminal() bool {
	return s == NativeStatusSucceeded || s == NativeStatusFailed
}

// PollResult is the executor's live answer for one handle.
type PollResult struct {
	Status NativeStatus
	// Result is populated only when Status is succeeded.
	Result json.RawMessage
	// Error is populated only when Status is failed.
	Error string
}

// RetentionExpiredMessage is recorded as the failure detail when the executor
// has evicted a handle before the record reached a terminal state.
const RetentionExpiredMessage = "result retention expired"

// Outcome is the reconciled view of a job. When Persist is true the caller
// must write the transition to the record store before returning the view,
// so subsequent polls observe a consistent state.
type Outcome struct {
	Status  JobStatusWithDetail
	Persist bool
	// RetentionExpired marks an outcome produced by handle eviction rather
	// than an executor-reported failure.
	RetentionExpired bool
}

// JobStatusWithDetail pairs a record status with its terminal detail.
type JobStatusWithDetail struct {
	Status model.JobStatus
	Result json.RawMessage
	Error  *string
}

// Reconcile merges the persisted record with the executor's live poll result
// and decides the authoritative status the caller should observe.
//
// Precedence: the record is authoritative for history, the executor for
// transitions. A terminal record always wins verbatim; the executor's terminal
// state is only ever used to create a terminal record, never to override one.
// An evicted handle on a non-terminal record becomes a terminal failure so
// callers are never left pending indefinitely.
func Reconcile(record *model.Job, poll PollResult) Outcome {
	if record.Status.Terminal() {
		return Outcome{
			Status: JobStatusWithDetail{
				Status: record.Status,
				Result: record.Result,
				Error:  record.Error,
			},
		}
	}

	switch poll.Status {
	case NativeStatusSucceeded:
		return Outcome{
			Status: JobStatusWithDetail{
				Status: model.JobStatusSucceeded,
				Result: poll.Result,
			},
			Persist: true,
		}

	case NativeStatusFailed:
		msg := poll.Error
		if msg == "" {
			msg = "executor reported failure"
		}
		return Outcome{
			Status: JobStatusWithDetail{
				Status: model.JobStatusFailed,
				Error:  &msg,
			},
			Persist: true,
		}

	case NativeStatusUnknown:
		msg := RetentionExpiredMessage
		return Outcome{
			Status: JobStatusWithDetail{
				Status: model.JobStatusFailed,
				Error:  &msg,
			},
			Persist:          true,
			RetentionExpired: true,
		}

	case NativeStatusStarted:
		return Outcome{
			Status:  JobStatusWithDetail{Status: model.JobStatusRunning},
			Persist: record.Status == model.JobStatusPending,
		}

	case NativeStatusQueued:
		// Never downgrade Running back to Pending; a stale queued report can
		// race an in-flight start.
		return Outcome{
			Status: JobStatusWithDetail{Status: record.Status},
		}

	default:
		return Outcome{
			Status: JobStatusWithDetail{Status: record.Status},
		}
	}
}
