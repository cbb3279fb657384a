package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"askverba.app/server/internal/db"
	"askverba.app/server/internal/learning"
)

type createVocabularyRequest struct {
	Word          string `json:"word" validate:"required,max=200"`
	Translation   string `json:"translation" validate:"max=500"`
	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
	Context       string `json:"context" validate:"max=2000"`
	Pronunciation string `json:"pronunciation" validate:"max=200"`
}

type patchVocabularyRequest struct {
	Word          *string `json:"word" validate:"omitnil,min=1,max=200"`
	Translation   *string `json:"translation" validate:"omitnil,max=500"`
	Category      *string `json:"category"`
	Difficulty    *string `json:"difficulty"`
	Context       *string `json:"context" validate:"omitnil,max=2000"`
	Pronunciation *string `json:"pronunciation" validate:"omitnil,max=200"`
	Status        *string `json:"status"`
}

type extractVocabularyRequest struct {
	HistoryID string `json:"historyId" validate:"required"`
}

func (s *Server) handleListVocabulary(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	page, pageSize, handled, err := parsePage(c)
	if handled {
		return err
	}

	filter := db.VocabularyFilter{
		Status:     c.QueryParam("status"),
		Category:   c.QueryParam("category"),
		Difficulty: c.QueryParam("difficulty"),
		Query:      strings.TrimSpace(c.QueryParam("q")),
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	rows, total, err := s.learning.ListItems(c.Request().Context(), principal.UserID, filter)
	if err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to load vocabulary")
	}
	return success(c, map[string]any{
		"items":      newVocabularyViews(rows),
		"pagination": newPagination(page, pageSize, total),
	})
}

func (s *Server) handleGetVocabulary(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	item, err := s.learning.GetItem(c.Request().Context(), principal.UserID, c.Param("id"))
	if err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to load vocabulary item")
	}
	return success(c, newVocabularyView(*item))
}

func (s *Server) handleCreateVocabulary(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var req createVocabularyRequest
	if handled, err := bindRequest(c, &req); handled {
		return err
	}

	item, err := s.learning.CreateItem(c.Request().Context(), principal.UserID, learning.ItemInput{
		Word:          req.Word,
		Translation:   req.Translation,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		Context:       req.Context,
		Pronunciation: req.Pronunciation,
	})
	if err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to save vocabulary item")
	}
	return successWithStatus(c, http.StatusCreated, newVocabularyView(*item))
}

func (s *Server) handlePatchVocabulary(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var req patchVocabularyRequest
	if handled, err := bindRequest(c, &req); handled {
		return err
	}

	item, err := s.learning.UpdateItem(c.Request().Context(), principal.UserID, c.Param("id"), learning.ItemPatch{
		Word:          req.Word,
		Translation:   req.Translation,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		Context:       req.Context,
		Pronunciation: req.Pronunciation,
		Status:        req.Status,
	})
	if err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to update vocabulary item")
	}
	return success(c, newVocabularyView(*item))
}

func (s *Server) handleDeleteVocabulary(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	if err := s.learning.DeleteItem(c.Request().Context(), principal.UserID, c.Param("id")); err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to delete vocabulary item")
	}
	return success(c, map[string]any{"success": true})
}

func (s *Server) handleExtractVocabulary(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var req extractVocabularyRequest
	if handled, err := bindRequest(c, &req); handled {
		return err
	}

	result, err := s.learning.ExtractFromHistory(c.Request().Context(), principal.UserID, req.HistoryID)
	if err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to extract vocabulary")
	}
	return successWithStatus(c, http.StatusCreated, map[string]any{
		"created": newVocabularyViews(result.Created),
		"skipped": result.Skipped,
	})
}

// learningError maps learning sentinels onto HTTP statuses.
func (s *Server) learningError(c echo.Context, err error, userID, message string) error {
	switch {
	case errors.Is(err, learning.ErrNotFound):
		return failNotFound(c, "Not found")
	case errors.Is(err, learning.ErrDuplicate):
		return fail(c, http.StatusConflict, "Word is already in your vocabulary", nil)
	case errors.Is(err, learning.ErrSessionClosed):
		return fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, learning.ErrInvalid),
		errors.Is(err, learning.ErrNoPracticeItems),
		errors.Is(err, learning.ErrItemNotInSession),
		errors.Is(err, learning.ErrAlreadyAnswered):
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	default:
		s.logger.Error().Err(err).Str("user_id", userID).Str("path", c.Path()).Msg(strings.ToLower(message))
		return internalError(c, message)
	}
}
