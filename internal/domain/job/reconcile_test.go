package job

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptline/promptline-api/internal/domain/model"
)

func record(status model.JobStatus) *model.Job {
	return &model.Job{ID: "j1", OwnerID: "alice", Status: status}
}

func TestReconcile_TerminalRecordWins(t *testing.T) {
	result := json.RawMessage(`{"message":"done"}`)
	rec := record(model.JobStatusSucceeded)
	rec.Result = result

	// Executor disagreeing, even reporting failure or eviction, never
	// overrides a terminal record.
	polls := []PollResult{
		{Status: NativeStatusUnknown},
		{Status: NativeStatusFailed, Error: "late failure"},
		{Status: NativeStatusStarted},
		{Status: NativeStatusSucceeded, Result: json.RawMessage(`{"message":"other"}`)},
	}

	for _, poll := range polls {
		out := Reconcile(rec, poll)
		assert.False(t, out.Persist, "terminal record must not be rewritten")
		assert.Equal(t, model.JobStatusSucceeded, out.Status.Status)
		assert.Equal(t, result, out.Status.Result)
		assert.Nil(t, out.Status.Error)
	}
}

func TestReconcile_TerminalFailedRecordWins(t *testing.T) {
	errMsg := "provider timeout"
	rec := record(model.JobStatusFailed)
	rec.Error = &errMsg

	out := Reconcile(rec, PollResult{Status: NativeStatusSucceeded, Result: json.RawMessage(`{}`)})
	assert.False(t, out.Persist)
	assert.Equal(t, model.JobStatusFailed, out.Status.Status)
	require.NotNil(t, out.Status.Error)
	assert.Equal(t, errMsg, *out.Status.Error)
}

func TestReconcile_ExecutorSucceeded(t *testing.T) {
	result := json.RawMessage(`{"message":"hello"}`)

	for _, from := range []model.JobStatus{model.JobStatusPending, model.JobStatusRunning} {
		out := Reconcile(record(from), PollResult{Status: NativeStatusSucceeded, Result: result})
		assert.True(t, out.Persist, "terminal transition must be persisted")
		assert.Equal(t, model.JobStatusSucceeded, out.Status.Status)
		assert.Equal(t, result, out.Status.Result)
		assert.Nil(t, out.Status.Error)
	}
}

func TestReconcile_ExecutorFailed(t *testing.T) {
	out := Reconcile(record(model.JobStatusRunning), PollResult{Status: NativeStatusFailed, Error: "boom"})
	assert.True(t, out.Persist)
	assert.Equal(t, model.JobStatusFailed, out.Status.Status)
	require.NotNil(t, out.Status.Error)
	assert.Equal(t, "boom", *out.Status.Error)
	assert.False(t, out.RetentionExpired)
}

func TestReconcile_ExecutorFailedWithoutMessage(t *testing.T) {
	out := Reconcile(record(model.JobStatusRunning), PollResult{Status: NativeStatusFailed})
	require.NotNil(t, out.Status.Error)
	assert.Equal(t, "executor reported failure", *out.Status.Error)
}

func TestReconcile_HandleExpired(t *testing.T) {
	for _, from := range []model.JobStatus{model.JobStatusPending, model.JobStatusRunning} {
		out := Reconcile(record(from), PollResult{Status: NativeStatusUnknown})
		assert.True(t, out.Persist, "eviction must become a terminal failure, not stay %s", from)
		assert.True(t, out.RetentionExpired)
		assert.Equal(t, model.JobStatusFailed, out.Status.Status)
		require.NotNil(t, out.Status.Error)
		assert.Equal(t, RetentionExpiredMessage, *out.Status.Error)
	}
}

func TestReconcile_StartedTransitionsPendingToRunning(t *testing.T) {
	out := Reconcile(record(model.JobStatusPending), PollResult{Status: NativeStatusStarted})
	assert.True(t, out.Persist, "Pending -> Running must be persisted before returning")
	assert.Equal(t, model.JobStatusRunning, out.Status.Status)
}

func TestReconcile_StartedOnRunningIsNoop(t *testing.T) {
	out := Reconcile(record(model.JobStatusRunning), PollResult{Status: NativeStatusStarted})
	assert.False(t, out.Persist)
	assert.Equal(t, model.JobStatusRunning, out.Status.Status)
}

func TestReconcile_QueuedNeverDowngrades(t *testing.T) {
	out := Reconcile(record(model.JobStatusRunning), PollResult{Status: NativeStatusQueued})
	assert.False(t, out.Persist)
	assert.Equal(t, model.JobStatusRunning, out.Status.Status)

	out = Reconcile(record(model.JobStatusPending), PollResult{Status: NativeStatusQueued})
	assert.False(t, out.Persist)
	assert.Equal(t, model.JobStatusPending, out.Status.Status)
}

func TestNativeStatus_Terminal(t *testing.T) {
	assert.True(t, NativeStatusSucceeded.Terminal())
	assert.True(t, NativeStatusFailed.Terminal())
	assert.False(t, NativeStatusQueued.Terminal())
	assert.False(t, NativeStatusStarted.Terminal())
	assert.False(t, NativeStatusUnknown.Terminal())
}
