// Package httpx provides HTTP handlers and utilities for the promptline API.
package httpx

import (
	"net/http"

	"github.com/promptline/promptline-api/internal/domain/model"
	"github.com/promptline/promptline-api/internal/service"
)

// AuthHandlers provides HTTP handlers for registration and login.
type AuthHandlers struct {
	Svc *service.AuthService
}

// Register handles HTTP requests to create a new user account.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Svc.Register(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, user)
}

// Login handles HTTP requests to exchange credentials for a bearer token.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	token, err := h.Svc.Login(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, token)
}
