package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is both the token lifetime and the cookie Max-Age.
const SessionTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims identifies a session. The token id (jti) is the session row id so a
// logout can revoke a token before it expires.
type Claims struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenManager(secret, issuer string) (*TokenManager, error) {
	if len(strings.TrimSpace(secret)) < 32 {
		return nil, fmt.Errorf("token secret must be at least 32 characters")
	}
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		issuer = "askverba"
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

func (m *TokenManager) Issue(sessionID, userID string, issuedAt, expiresAt time.Time) (string, error) {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("session id and user id are required")
	}
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   userID,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	var registered jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &registered, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || registered.ID == "" || registered.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		SessionID: registered.ID,
		UserID:    registered.Subject,
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}
