package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/promptline/promptline-api/internal/core"
	"github.com/promptline/promptline-api/internal/domain/model"
)

// UserRepo implements core.UserRepository on postgres.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo instance.
func NewUserRepo(db *sql.DB, cfg RepoConfig) *UserRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &UserRepo{DB: db, timeProvider: tp}
}

const userColumns = `id, username, email, password_hash, created_at`

// Create inserts a new user. A username or email collision maps to
// core.ErrDuplicateUser.
func (r *UserRepo) Create(ctx context.Context, params core.CreateUserParams) (*model.User, error) {
	if params.Username == "" || params.Email == "" || params.PasswordHash == "" {
		return nil, errors.New("username, email and password hash are required")
	}

	row := r.DB.QueryRowContext(ctx, `
      INSERT INTO users(id, username, email, password_hash, created_at)
      VALUES ($1, $2, $3, $4, $5)
      RETURNING `+userColumns,
		uuid.NewString(), params.Username, params.Email, params.PasswordHash,
		r.timeProvider.Now().UTC())

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return userOrNotFound(row)
}

// GetByUsername retrieves a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return userOrNotFound(row)
}

func userOrNotFound(row *sql.Row) (*model.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

func scanUser(scanner rowScanner) (*model.User, error) {
	user := &model.User{}
	if err := scanner.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
