package auth

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/authgate/internal/apperror"
)

func newMockRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

var userRowColumns = []string{"id", "first_name", "last_name", "email", "socket_id", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	last := "Smith"
	user := &User{
		ID:           "u-1",
		FullName:     FullName{FirstName: "Alice", LastName: &last},
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$hash",
		CreatedAt:    created,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (id, first_name, last_name, email, password_hash, socket_id, created_at)`)).
		WithArgs("u-1", "Alice", &last, "alice@example.com", "$2a$04$hash", nil, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice@example.com' for key 'uq_users_email'"})

	err := repo.Create(context.Background(), &User{ID: "u-1", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_CreateFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'users' doesn't exist"})

	err := repo.Create(context.Background(), &User{ID: "u-1"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicateEmail))
	assert.ErrorContains(t, err, "inserting user")
}

func TestUserRepository_FindByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, first_name, last_name, email, socket_id, created_at FROM users WHERE id = ?`)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow("u-1", "Alice", nil, "alice@example.com", nil, created))

	user, err := repo.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.FullName.FirstName)
	assert.Nil(t, user.FullName.LastName)
	assert.Nil(t, user.SocketID)
	assert.Empty(t, user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ?`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.True(t, apperror.IsNotFound(err))
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, first_name, last_name, email, socket_id, created_at FROM users WHERE email = ?`)).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow("u-1", "Alice", "Smith", "alice@example.com", "sock-9", created))

	user, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.FullName.LastName)
	assert.Equal(t, "Smith", *user.FullName.LastName)
	require.NotNil(t, user.SocketID)
	assert.Equal(t, "sock-9", *user.SocketID)
	assert.Empty(t, user.PasswordHash)
}

func TestUserRepository_FindByEmailWithPassword(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, first_name, last_name, email, socket_id, created_at, password_hash FROM users WHERE email = ?`)).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(append(userRowColumns, "password_hash")).
			AddRow("u-1", "Alice", nil, "alice@example.com", nil, created, "$2a$04$hash"))

	user, err := repo.FindByEmailWithPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$04$hash", user.PasswordHash)

	mock.ExpectQuery(regexp.QuoteMeta(`password_hash FROM users WHERE email = ?`)).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(append(userRowColumns, "password_hash")))

	_, err = repo.FindByEmailWithPassword(context.Background(), "ghost@example.com")
	assert.True(t, apperror.IsNotFound(err))
}

func TestUserRepository_EmailExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`)).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}
