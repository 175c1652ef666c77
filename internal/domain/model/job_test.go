package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_Valid(t *testing.T) {
	for _, s := range []JobStatus{JobStatusPending, JobStatusRunning, JobStatusSucceeded, JobStatusFailed} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, JobStatus("processing").Valid())
	assert.False(t, JobStatus("").Valid())
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobStatusPending.Terminal())
	assert.False(t, JobStatusRunning.Terminal())
	assert.True(t, JobStatusSucceeded.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
}

func TestCreateJobRequest_Validate(t *testing.T) {
	valid := CreateJobRequest{
		ID:      "j1",
		OwnerID: "alice",
		Payload: json.RawMessage(`{"message":"hi"}`),
	}

	tests := []struct {
		name    string
		mutate  func(*CreateJobRequest)
		wantErr string
	}{
		{"valid", func(r *CreateJobRequest) {}, ""},
		{"missing id", func(r *CreateJobRequest) { r.ID = "" }, "job id is required"},
		{"missing owner", func(r *CreateJobRequest) { r.OwnerID = "" }, "owner id is required"},
		{"missing payload", func(r *CreateJobRequest) { r.Payload = nil }, "payload is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJob_StatusView(t *testing.T) {
	errMsg := "provider timeout"
	job := &Job{
		ID:     "j1",
		Status: JobStatusFailed,
		Error:  &errMsg,
	}

	view := job.StatusView()
	assert.Equal(t, "j1", view.JobID)
	assert.Equal(t, JobStatusFailed, view.Status)
	require.NotNil(t, view.Error)
	assert.Equal(t, errMsg, *view.Error)
	assert.Nil(t, view.Result)
}

func TestChatRequest_Validate(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		req := ChatRequest{Message: "hello"}
		req.ApplyDefaults()
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.Equal(t, 150, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 0.001)
		assert.NoError(t, req.Validate())
	})

	t.Run("empty message rejected", func(t *testing.T) {
		req := ChatRequest{}
		req.ApplyDefaults()
		assert.Error(t, req.Validate())
	})

	t.Run("temperature out of range", func(t *testing.T) {
		req := ChatRequest{Message: "hi", Temperature: 2.5}
		assert.Error(t, req.Validate())
	})

	t.Run("max tokens out of range", func(t *testing.T) {
		req := ChatRequest{Message: "hi", MaxTokens: 5000}
		assert.Error(t, req.Validate())
	})
}

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"valid", RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2"}, false},
		{"short username", RegisterRequest{Username: "al", Email: "alice@example.com", Password: "hunter2hunter2"}, true},
		{"bad email", RegisterRequest{Username: "alice", Email: "not-an-email", Password: "hunter2hunter2"}, true},
		{"short password", RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "short"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
