package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type startPracticeRequest struct {
	Kind string `json:"kind" validate:"omitempty,oneof=flashcard quiz"`
	Size int    `json:"size" validate:"gte=0,lte=50"`
}

type practiceAnswerRequest struct {
	ItemID  string `json:"itemId" validate:"required"`
	Correct *bool  `json:"correct" validate:"required"`
}

func (s *Server) handleStartPracticeSession(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var req startPracticeRequest
	if handled, err := bindOptionalRequest(c, &req); handled {
		return err
	}

	session, items, err := s.learning.StartSession(c.Request().Context(), principal.UserID, req.Kind, req.Size)
	if err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to start practice session")
	}
	return successWithStatus(c, http.StatusCreated, map[string]any{
		"session": newPracticeSessionView(*session),
		"items":   newVocabularyViews(items),
	})
}

func (s *Server) handleListPracticeSessions(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	page, pageSize, handled, err := parsePage(c)
	if handled {
		return err
	}

	rows, total, err := s.learning.ListSessions(c.Request().Context(), principal.UserID, pageSize, (page-1)*pageSize)
	if err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to load practice sessions")
	}
	items := make([]practiceSessionView, 0, len(rows))
	for _, row := range rows {
		items = append(items, newPracticeSessionView(row))
	}
	return success(c, map[string]any{
		"items":      items,
		"pagination": newPagination(page, pageSize, total),
	})
}

func (s *Server) handleGetPracticeSession(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	session, items, err := s.learning.GetSession(c.Request().Context(), principal.UserID, c.Param("id"))
	if err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to load practice session")
	}
	return success(c, map[string]any{
		"session": newPracticeSessionView(*session),
		"items":   newVocabularyViews(items),
	})
}

func (s *Server) handleRecordPracticeAnswer(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var req practiceAnswerRequest
	if handled, err := bindRequest(c, &req); handled {
		return err
	}

	result, err := s.learning.RecordAnswer(c.Request().Context(), principal.UserID, c.Param("id"), req.ItemID, *req.Correct)
	if err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to record answer")
	}
	return success(c, map[string]any{
		"session": newPracticeSessionView(*result.Session),
		"item":    newVocabularyView(*result.Item),
	})
}

func (s *Server) handleCompletePracticeSession(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	session, err := s.learning.CompleteSession(c.Request().Context(), principal.UserID, c.Param("id"))
	if err != nil {
		return s.learningError(c, err, principal.UserID, "Failed to complete practice session")
	}
	return success(c, map[string]any{
		"session": newPracticeSessionView(*session),
	})
}
