package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AuthSession struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func (p *Pool) CountUsers(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM users`

	var count int64
	if err := p.QueryRow(ctx, q).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// CreateUser inserts a user. A taken email yields ErrDuplicate.
func (p *Pool) CreateUser(ctx context.Context, email, name, passwordHash string) (*User, error) {
	const q = `
INSERT INTO users (
	id,
	email,
	name,
	password_hash,
	created_at
)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (email) DO NOTHING
RETURNING
	id::text,
	email,
	name,
	password_hash,
	created_at,
	last_login_at
`

	var row User
	if err := p.QueryRow(ctx, q, uuid.NewString(), NormalizeEmail(email), strings.TrimSpace(name), strings.TrimSpace(passwordHash)).Scan(
		&row.ID,
		&row.Email,
		&row.Name,
		&row.PasswordHash,
		&row.CreatedAt,
		&row.LastLoginAt,
	); err != nil {
		if IsNoRows(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &row, nil
}

func (p *Pool) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	const q = `
SELECT
	id::text,
	email,
	name,
	password_hash,
	created_at,
	last_login_at
FROM users
WHERE email = $1
LIMIT 1
`

	var row User
	if err := p.QueryRow(ctx, q, NormalizeEmail(email)).Scan(
		&row.ID,
		&row.Email,
		&row.Name,
		&row.PasswordHash,
		&row.CreatedAt,
		&row.LastLoginAt,
	); err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &row, nil
}

func (p *Pool) GetUserByID(ctx context.Context, userID string) (*User, error) {
	const q = `
SELECT
	id::text,
	email,
	name,
	password_hash,
	created_at,
	last_login_at
FROM users
WHERE id = $1::uuid
LIMIT 1
`

	var row User
	if err := p.QueryRow(ctx, q, strings.TrimSpace(userID)).Scan(
		&row.ID,
		&row.Email,
		&row.Name,
		&row.PasswordHash,
		&row.CreatedAt,
		&row.LastLoginAt,
	); err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return &row, nil
}

func (p *Pool) SetUserLastLogin(ctx context.Context, userID string, loginAt time.Time) error {
	const q = `
UPDATE users
SET last_login_at = $2
WHERE id = $1::uuid
`

	affected, err := p.Exec(ctx, q, strings.TrimSpace(userID), loginAt.UTC())
	if err != nil {
		return fmt.Errorf("update user last login: %w", err)
	}
	if affected == 0 {
		return ErrNoRows
	}
	return nil
}

func (p *Pool) CreateSession(ctx context.Context, userID string, expiresAt, now time.Time) (string, error) {
	const q = `
INSERT INTO user_sessions (
	id,
	user_id,
	expires_at,
	created_at,
	last_seen_at
)
VALUES ($1, $2::uuid, $3, $4, $4)
RETURNING id::text
`

	var sessionID string
	if err := p.QueryRow(ctx, q, uuid.NewString(), strings.TrimSpace(userID), expiresAt.UTC(), now.UTC()).Scan(&sessionID); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return sessionID, nil
}

func (p *Pool) GetSession(ctx context.Context, sessionID string) (*AuthSession, error) {
	if _, err := uuid.Parse(strings.TrimSpace(sessionID)); err != nil {
		return nil, ErrNoRows
	}

	const q = `
SELECT
	s.id::text,
	s.user_id::text,
	u.email,
	u.name,
	s.expires_at,
	s.last_seen_at
FROM user_sessions s
JOIN users u
	ON u.id = s.user_id
WHERE s.id = $1::uuid
LIMIT 1
`

	var row AuthSession
	if err := p.QueryRow(ctx, q, strings.TrimSpace(sessionID)).Scan(
		&row.SessionID,
		&row.UserID,
		&row.Email,
		&row.Name,
		&row.ExpiresAt,
		&row.LastSeenAt,
	); err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &row, nil
}

func (p *Pool) TouchSession(ctx context.Context, sessionID string, seenAt time.Time) error {
	const q = `
UPDATE user_sessions
SET last_seen_at = $2
WHERE id = $1::uuid
`

	affected, err := p.Exec(ctx, q, strings.TrimSpace(sessionID), seenAt.UTC())
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if affected == 0 {
		return ErrNoRows
	}
	return nil
}

func (p *Pool) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := uuid.Parse(strings.TrimSpace(sessionID)); err != nil {
		return nil
	}

	const q = `
DELETE FROM user_sessions
WHERE id = $1::uuid
`

	if _, err := p.Exec(ctx, q, strings.TrimSpace(sessionID)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (p *Pool) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const q = `
DELETE FROM user_sessions
WHERE expires_at <= $1
`

	affected, err := p.Exec(ctx, q, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return affected, nil
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
