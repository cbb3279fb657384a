package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) (*Pool, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	pool, err := NewPoolFromConn(conn)
	require.NoError(t, err)
	return pool, mock
}

func TestCountUsers(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := pool.CountUsers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	pool, mock := newMockPool(t)
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "ann@example.com", "Ann", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at", "last_login_at"}).
			AddRow("3f0c9a3e-5b1c-4c39-8a3e-0c4d4d2f7a10", "ann@example.com", "Ann", "hash", createdAt, nil))

	user, err := pool.CreateUser(context.Background(), "  Ann@Example.COM ", " Ann ", "hash")

	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, "Ann", user.Name)
	assert.Nil(t, user.LastLoginAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "ann@example.com", "Ann", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at", "last_login_at"}))

	_, err := pool.CreateUser(context.Background(), "ann@example.com", "Ann", "hash")

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmailNotFound(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := pool.GetUserByEmail(context.Background(), "Missing@example.com")

	assert.ErrorIs(t, err, ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionRejectsMalformedID(t *testing.T) {
	pool, mock := newMockPool(t)

	_, err := pool.GetSession(context.Background(), "not-a-uuid")

	assert.ErrorIs(t, err, ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionJoinsUser(t *testing.T) {
	pool, mock := newMockPool(t)
	sessionID := "8d1f5a52-8f6e-4a8e-9c1e-2b7f7d0a9e11"
	expires := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM user_sessions s\s+JOIN users u`).
		WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "name", "expires_at", "last_seen_at"}).
			AddRow(sessionID, "user-1", "ann@example.com", "Ann", expires, expires.Add(-time.Hour)))

	session, err := pool.GetSession(context.Background(), sessionID)

	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "ann@example.com", session.Email)
	assert.True(t, session.ExpiresAt.Equal(expires))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSessionIgnoresMalformedID(t *testing.T) {
	pool, mock := newMockPool(t)

	assert.NoError(t, pool.DeleteSession(context.Background(), "garbage"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpiredSessions(t *testing.T) {
	pool, mock := newMockPool(t)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM user_sessions\s+WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := pool.DeleteExpiredSessions(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetUserLastLoginMissingUser(t *testing.T) {
	pool, mock := newMockPool(t)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE users\s+SET last_login_at`).
		WithArgs("user-1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := pool.SetUserLastLogin(context.Background(), "user-1", now)

	assert.ErrorIs(t, err, ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
