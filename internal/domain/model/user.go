package model

import (
	"errors"
	"regexp"
	"time"
)

// User represents a registered principal.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Username     string    `json:"username"   db:"username"`
	Email        string    `json:"email"      db:"email"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

var emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.\w+$`)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
)

// RegisterRequest represents a request to register a new user.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the RegisterRequest fields.
func (r *RegisterRequest) Validate() error {
	if len(r.Username) < minUsernameLen || len(r.Username) > maxUsernameLen {
		return errors.New("username must be between 3 and 50 characters")
	}
	if !emailPattern.MatchString(r.Email) {
		return errors.New("email is invalid")
	}
	if len(r.Password) < minPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// LoginRequest represents a login attempt.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the LoginRequest fields.
func (r *LoginRequest) Validate() error {
	if r.Username == "" {
		return errors.New("username is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
