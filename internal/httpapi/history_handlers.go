package httpapi

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"askverba.app/server/internal/db"
	"askverba.app/server/internal/translation"
)

type HistoryStore interface {
	ListHistory(ctx context.Context, userID string, filter db.HistoryFilter) ([]db.TranslationHistory, int64, error)
	GetHistoryEntry(ctx context.Context, userID, entryID string) (*db.TranslationHistory, error)
	SetHistoryFavorite(ctx context.Context, userID, entryID string, favorite bool) (*db.TranslationHistory, error)
	DeleteHistoryEntry(ctx context.Context, userID, entryID string) error
	ClearHistory(ctx context.Context, userID string) (int64, error)
}

type patchHistoryRequest struct {
	IsFavorite *bool `json:"isFavorite" validate:"required"`
}

func (s *Server) handleListHistory(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	page, pageSize, handled, err := parsePage(c)
	if handled {
		return err
	}

	mode := strings.TrimSpace(c.QueryParam("mode"))
	if mode != "" {
		parsed, err := translation.ParseMode(mode)
		if err != nil {
			return failValidation(c, map[string]string{"mode": "must be simple or detailed"})
		}
		mode = string(parsed)
	}
	favoriteOnly, err := parseBoolFilter(c.QueryParam("favorite"))
	if err != nil {
		return failValidation(c, map[string]string{"favorite": err.Error()})
	}

	filter := db.HistoryFilter{
		Mode:         mode,
		FavoriteOnly: favoriteOnly,
		Query:        strings.TrimSpace(c.QueryParam("q")),
		Limit:        pageSize,
		Offset:       (page - 1) * pageSize,
	}
	rows, total, err := s.history.ListHistory(c.Request().Context(), principal.UserID, filter)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID).Msg("list history failed")
		return internalError(c, "Failed to load history")
	}

	items := make([]historyView, 0, len(rows))
	for _, row := range rows {
		items = append(items, newHistoryView(row))
	}
	return success(c, map[string]any{
		"items":      items,
		"pagination": newPagination(page, pageSize, total),
	})
}

func (s *Server) handleGetHistory(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	entry, err := s.history.GetHistoryEntry(c.Request().Context(), principal.UserID, c.Param("id"))
	if err != nil {
		return s.historyError(c, err, principal.UserID, "Failed to load history entry")
	}
	return success(c, newHistoryView(*entry))
}

func (s *Server) handlePatchHistory(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var req patchHistoryRequest
	if handled, err := bindRequest(c, &req); handled {
		return err
	}

	entry, err := s.history.SetHistoryFavorite(c.Request().Context(), principal.UserID, c.Param("id"), *req.IsFavorite)
	if err != nil {
		return s.historyError(c, err, principal.UserID, "Failed to update history entry")
	}
	return success(c, newHistoryView(*entry))
}

func (s *Server) handleDeleteHistory(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	if err := s.history.DeleteHistoryEntry(c.Request().Context(), principal.UserID, c.Param("id")); err != nil {
		return s.historyError(c, err, principal.UserID, "Failed to delete history entry")
	}
	return success(c, map[string]any{"success": true})
}

func (s *Server) handleClearHistory(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	deleted, err := s.history.ClearHistory(c.Request().Context(), principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID).Msg("clear history failed")
		return internalError(c, "Failed to clear history")
	}
	return success(c, map[string]any{"success": true, "deleted": deleted})
}

func (s *Server) historyError(c echo.Context, err error, userID, message string) error {
	if db.IsNoRows(err) {
		return failNotFound(c, "History entry not found")
	}
	s.logger.Error().Err(err).Str("user_id", userID).Str("history_id", c.Param("id")).Msg(strings.ToLower(message))
	return internalError(c, message)
}
