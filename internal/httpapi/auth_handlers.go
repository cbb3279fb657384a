package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"askverba.app/server/internal/auth"
	"askverba.app/server/internal/db"
	"askverba.app/server/internal/globaltime"
)

const (
	defaultSessionTouchInterval = time.Minute
	principalContextKey         = "auth.principal"
)

var errUnauthenticated = errors.New("unauthenticated")

type authPrincipal struct {
	SessionID string
	UserID    string
	Email     string
	Name      string
	ExpiresAt time.Time
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthStore interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, userID string) (*db.User, error)
	SetUserLastLogin(ctx context.Context, userID string, loginAt time.Time) error
	CreateSession(ctx context.Context, userID string, expiresAt, now time.Time) (string, error)
	GetSession(ctx context.Context, sessionID string) (*db.AuthSession, error)
	TouchSession(ctx context.Context, sessionID string, seenAt time.Time) error
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

func (s *Server) requireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, fromCookie, err := s.authenticate(c)
			if err != nil {
				if errors.Is(err, errUnauthenticated) {
					if fromCookie {
						s.cookies.clear(c)
					}
					return unauthorizedResponse(c)
				}
				s.logger.Error().Err(err).Msg("session lookup failed")
				return internalError(c, "Failed to authorize request")
			}
			c.Set(principalContextKey, principal)
			return next(c)
		}
	}
}

// optionalAuth attaches a principal when the request carries a valid session
// and otherwise continues anonymously.
func (s *Server) optionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, _, err := s.authenticate(c)
			switch {
			case err == nil:
				c.Set(principalContextKey, principal)
			case !errors.Is(err, errUnauthenticated):
				s.logger.Warn().Err(err).Msg("optional session lookup failed")
			}
			return next(c)
		}
	}
}

// authenticate resolves the request token to a live session. fromCookie
// reports whether the token came from the auth cookie.
func (s *Server) authenticate(c echo.Context) (authPrincipal, bool, error) {
	raw, fromCookie := s.tokenFromRequest(c)
	if raw == "" || s.tokens == nil || s.authStore == nil {
		return authPrincipal{}, fromCookie, errUnauthenticated
	}

	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return authPrincipal{}, fromCookie, errUnauthenticated
	}

	ctx := c.Request().Context()
	session, err := s.authStore.GetSession(ctx, claims.SessionID)
	if err != nil {
		if db.IsNoRows(err) {
			return authPrincipal{}, fromCookie, errUnauthenticated
		}
		return authPrincipal{}, fromCookie, err
	}
	if session.UserID != claims.UserID {
		return authPrincipal{}, fromCookie, errUnauthenticated
	}

	now := globaltime.UTC()
	if !session.ExpiresAt.After(now) {
		_ = s.authStore.DeleteSession(ctx, session.SessionID)
		return authPrincipal{}, fromCookie, errUnauthenticated
	}
	if now.Sub(session.LastSeenAt) >= defaultSessionTouchInterval {
		_ = s.authStore.TouchSession(ctx, session.SessionID, now)
	}

	return authPrincipal{
		SessionID: session.SessionID,
		UserID:    session.UserID,
		Email:     session.Email,
		Name:      session.Name,
		ExpiresAt: session.ExpiresAt.UTC(),
	}, fromCookie, nil
}

func (s *Server) tokenFromRequest(c echo.Context) (string, bool) {
	if token, _ := s.cookies.get(c); token != "" {
		return token, true
	}
	header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:]), false
	}
	return "", false
}

func (s *Server) handleRegister(c echo.Context) error {
	if s.authStore == nil {
		return internalError(c, "Failed to register")
	}

	var req registerRequest
	if handled, err := bindRequest(c, &req); handled {
		return err
	}

	email := db.NormalizeEmail(req.Email)
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("hash password failed")
		return internalError(c, "Failed to register")
	}

	user, err := s.authStore.CreateUser(c.Request().Context(), email, strings.TrimSpace(req.Name), passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return fail(c, http.StatusConflict, "Email is already registered", nil)
		}
		s.logger.Error().Err(err).Str("email", email).Msg("create user failed")
		return internalError(c, "Failed to register")
	}

	token, expiresAt, err := s.startSession(c, user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("start session failed")
		return internalError(c, "Failed to register")
	}

	return successWithStatus(c, http.StatusCreated, map[string]any{
		"user":      newUserView(user),
		"token":     token,
		"expiresAt": expiresAt,
	})
}

func (s *Server) handleLogin(c echo.Context) error {
	if s.authStore == nil {
		return internalError(c, "Failed to process login")
	}

	var req loginRequest
	if handled, err := bindRequest(c, &req); handled {
		return err
	}

	email := db.NormalizeEmail(req.Email)
	user, err := s.authStore.GetUserByEmail(c.Request().Context(), email)
	if err != nil {
		if db.IsNoRows(err) {
			return fail(c, http.StatusUnauthorized, "Invalid email or password", nil)
		}
		s.logger.Error().Err(err).Str("email", email).Msg("login lookup failed")
		return internalError(c, "Failed to process login")
	}
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		return fail(c, http.StatusUnauthorized, "Invalid email or password", nil)
	}

	now := globaltime.UTC()
	if _, cleanupErr := s.authStore.DeleteExpiredSessions(c.Request().Context(), now); cleanupErr != nil {
		s.logger.Warn().Err(cleanupErr).Msg("delete expired sessions failed")
	}

	token, expiresAt, err := s.startSession(c, user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("start session failed")
		return internalError(c, "Failed to process login")
	}

	if err := s.authStore.SetUserLastLogin(c.Request().Context(), user.ID, now); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("update last login failed")
	}
	nowCopy := now
	user.LastLoginAt = &nowCopy

	return success(c, map[string]any{
		"user":      newUserView(user),
		"token":     token,
		"expiresAt": expiresAt,
	})
}

// handleLogout always reports success and clears the cookies, even when the
// server-side session could not be deleted.
func (s *Server) handleLogout(c echo.Context) error {
	if raw, _ := s.tokenFromRequest(c); raw != "" && s.tokens != nil && s.authStore != nil {
		if claims, err := s.tokens.Parse(raw); err == nil {
			if err := s.authStore.DeleteSession(c.Request().Context(), claims.SessionID); err != nil {
				s.logger.Warn().Err(err).Str("session_id", claims.SessionID).Msg("delete session on logout failed")
			}
		}
	}
	s.cookies.clear(c)
	return success(c, map[string]any{"success": true})
}

func (s *Server) handleMe(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	user, err := s.authStore.GetUserByID(c.Request().Context(), principal.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			return unauthorizedResponse(c)
		}
		s.logger.Error().Err(err).Str("user_id", principal.UserID).Msg("load me user failed")
		return internalError(c, "Failed to load user")
	}

	return success(c, map[string]any{
		"user":      newUserView(user),
		"expiresAt": principal.ExpiresAt,
	})
}

// startSession creates the server-side session, signs its token and sets the
// auth cookies.
func (s *Server) startSession(c echo.Context, user *db.User) (string, time.Time, error) {
	if s.tokens == nil {
		return "", time.Time{}, errors.New("token manager is not configured")
	}
	now := globaltime.UTC()
	expiresAt := now.Add(auth.SessionTTL)

	sessionID, err := s.authStore.CreateSession(c.Request().Context(), user.ID, expiresAt, now)
	if err != nil {
		return "", time.Time{}, err
	}
	token, err := s.tokens.Issue(sessionID, user.ID, now, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.cookies.set(c, token, customerCookie{ID: user.ID, Email: user.Email, Name: user.Name}); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func principalFromContext(c echo.Context) (authPrincipal, bool) {
	if c == nil {
		return authPrincipal{}, false
	}
	principal, ok := c.Get(principalContextKey).(authPrincipal)
	return principal, ok
}
