package httpx

import (
	"errors"
	"net/http"

	"github.com/promptline/promptline-api/internal/domain/model"
	"github.com/promptline/promptline-api/internal/service"
)

// ChatHandlers provides HTTP handlers for chat completions and the job
// records that track background completions.
type ChatHandlers struct {
	Chat *service.ChatService
	Jobs *service.JobService
}

// requestUser returns the authenticated user or writes a 401 and returns nil.
// Handlers behind RequireUser always have one; the guard keeps a misrouted
// handler from dereferencing a missing user.
func requestUser(w http.ResponseWriter, r *http.Request) *model.User {
	user := UserFromContext(r.Context())
	if user == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
	}
	return user
}

// Complete handles HTTP requests for a synchronous chat completion.
func (h *ChatHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	user := requestUser(w, r)
	if user == nil {
		return
	}

	var req model.ChatRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.Chat.Complete(r.Context(), user.ID, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// SubmitBackground handles HTTP requests to run a chat completion as a
// tracked background job. The pending job record is returned immediately;
// callers poll JobStatus for the outcome.
func (h *ChatHandlers) SubmitBackground(w http.ResponseWriter, r *http.Request) {
	user := requestUser(w, r)
	if user == nil {
		return
	}

	var req model.ChatRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Chat.SubmitBackground(r.Context(), user.ID, req)
	if err != nil {
		// A failed submission still has a recorded Failed job; give the
		// caller its id so the outcome stays pollable.
		if job != nil {
			WriteAppErrorDetails(w, err, map[string]string{"job_id": job.ID})
			return
		}
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, job.StatusView())
}

// JobStatus handles HTTP requests to read the reconciled status of a
// background job owned by the caller.
func (h *ChatHandlers) JobStatus(w http.ResponseWriter, r *http.Request) {
	user := requestUser(w, r)
	if user == nil {
		return
	}

	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")},
		)
		return
	}

	view, err := h.Jobs.GetJobStatus(r.Context(), user.ID, jobID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, view)
}

// JobStats handles HTTP requests for aggregate job counts per state.
func (h *ChatHandlers) JobStats(w http.ResponseWriter, r *http.Request) {
	user := requestUser(w, r)
	if user == nil {
		return
	}

	stats, err := h.Jobs.Stats(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

// ListConversations handles HTTP requests to list the caller's conversation
// history, newest first.
func (h *ChatHandlers) ListConversations(w http.ResponseWriter, r *http.Request) {
	user := requestUser(w, r)
	if user == nil {
		return
	}

	conversations, err := h.Chat.ListConversations(r.Context(), user.ID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}
