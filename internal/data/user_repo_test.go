package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/promptline/promptline-api/internal/core"
)

func newUserRepoMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo := NewUserRepo(db, RepoConfig{TimeProvider: NewFixedTimeProvider(testNow)})
	return repo, mock
}

func TestUserRepoCreate(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
		AddRow("user-1", "alice", "alice@example.com", "hash", testNow)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", "hash", testNow).
		WillReturnRows(rows)

	user, err := repo.Create(context.Background(), core.CreateUserParams{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateDuplicate(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.Create(context.Background(), core.CreateUserParams{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	require.ErrorIs(t, err, core.ErrDuplicateUser)
}

func TestUserRepoCreateMissingFields(t *testing.T) {
	repo, _ := newUserRepoMock(t)

	_, err := repo.Create(context.Background(), core.CreateUserParams{Username: "alice"})
	require.Error(t, err)
}

func TestUserRepoGetByUsername(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
		AddRow("user-1", "alice", "alice@example.com", "hash", testNow)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE username`).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
}

func TestUserRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, core.ErrUserNotFound)
}
