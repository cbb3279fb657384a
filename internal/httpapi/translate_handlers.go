package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"askverba.app/server/internal/translation"
)

const rateLimitWindow = time.Minute

type translateRequest struct {
	Text          string `json:"text" validate:"required"`
	Mode          string `json:"mode" validate:"required,oneof=simple detailed"`
	SaveToHistory *bool  `json:"saveToHistory"`
}

// handleTranslate runs the translation pipeline. Signed-in callers get a
// history entry unless they pass saveToHistory=false.
func (s *Server) handleTranslate(c echo.Context) error {
	if s.translator == nil {
		return internalError(c, translation.ErrTranslationFailed.Error())
	}

	var req translateRequest
	if handled, err := bindRequest(c, &req); handled {
		return err
	}

	userID := ""
	if principal, ok := principalFromContext(c); ok {
		userID = principal.UserID
	}
	save := userID != ""
	if req.SaveToHistory != nil {
		save = save && *req.SaveToHistory
	}

	resp, err := s.translator.Translate(c.Request().Context(), translation.Request{
		Text:          req.Text,
		Mode:          translation.Mode(req.Mode),
		UserID:        userID,
		SaveToHistory: save,
	})
	if err != nil {
		if errors.Is(err, translation.ErrInvalidInput) {
			return fail(c, http.StatusBadRequest, err.Error(), nil)
		}
		if !errors.Is(err, translation.ErrTranslationFailed) {
			s.logger.Error().Err(err).Str("mode", req.Mode).Msg("translate failed")
		}
		return internalError(c, translation.ErrTranslationFailed.Error())
	}
	return success(c, resp)
}

// rateLimit caps requests per client and minute. Signed-in clients are keyed
// by user id, others by IP. Limiter errors let the request through.
func (s *Server) rateLimit(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limit := s.opts.TranslateRateLimit
			if s.limiter == nil || limit <= 0 {
				return next(c)
			}

			client := "ip:" + c.RealIP()
			if principal, ok := principalFromContext(c); ok {
				client = "user:" + principal.UserID
			}

			decision, err := s.limiter.Allow(c.Request().Context(), scope+":"+client, limit, rateLimitWindow)
			if err != nil {
				s.logger.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
				return next(c)
			}

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				retryAfter := max(int(decision.RetryAfter.Round(time.Second)/time.Second), 1)
				header.Set("Retry-After", strconv.Itoa(retryAfter))
				return fail(c, http.StatusTooManyRequests, "Too many requests", map[string]any{
					"retryAfter": retryAfter,
				})
			}
			return next(c)
		}
	}
}
