package httpapi

import (
	"errors"

	"github.com/labstack/echo/v4"

	"askverba.app/server/internal/achievement"
)

type patchAchievementRequest struct {
	Progress   *int  `json:"progress"`
	IsUnlocked *bool `json:"isUnlocked"`
}

func (s *Server) handleListAchievements(c echo.Context) error {
	rows, err := s.achievements.Catalog(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list achievements failed")
		return internalError(c, "Failed to load achievements")
	}
	items := make([]achievementView, 0, len(rows))
	for _, row := range rows {
		items = append(items, newAchievementView(row))
	}
	return success(c, map[string]any{"items": items})
}

func (s *Server) handleMyAchievements(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	entries, err := s.achievements.ListForUser(c.Request().Context(), principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID).Msg("list user achievements failed")
		return internalError(c, "Failed to load achievements")
	}
	return success(c, map[string]any{"items": newUserAchievementViews(entries)})
}

// handlePatchAchievement applies a caller-supplied progress or unlock change.
// Progress is clamped; reaching 100 does not unlock on its own.
func (s *Server) handlePatchAchievement(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var req patchAchievementRequest
	if handled, err := bindRequest(c, &req); handled {
		return err
	}
	if req.Progress == nil && req.IsUnlocked == nil {
		return failValidation(c, map[string]string{"body": "progress or isUnlocked is required"})
	}

	row, err := s.achievements.Update(c.Request().Context(), principal.UserID, c.Param("id"), achievement.Update{
		Progress:   req.Progress,
		IsUnlocked: req.IsUnlocked,
	})
	if err != nil {
		if errors.Is(err, achievement.ErrNotFound) {
			return failNotFound(c, "Achievement not found")
		}
		s.logger.Error().Err(err).Str("user_id", principal.UserID).Str("achievement_id", c.Param("id")).Msg("update achievement failed")
		return internalError(c, "Failed to update achievement")
	}
	return success(c, newAchievementStateView(row))
}

func (s *Server) handleRefreshAchievements(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	entries, err := s.achievements.Refresh(c.Request().Context(), principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID).Msg("refresh achievements failed")
		return internalError(c, "Failed to refresh achievements")
	}
	return success(c, map[string]any{"items": newUserAchievementViews(entries)})
}

func (s *Server) handleProgress(c echo.Context) error {
	principal, ok := principalFromContext(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	summary, err := s.achievements.Progress(c.Request().Context(), principal.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID).Msg("load progress failed")
		return internalError(c, "Failed to load progress")
	}
	return success(c, progressView{
		UserStats:         summary.Stats,
		Accuracy:          summary.Accuracy,
		AchievementsTotal: summary.AchievementsTotal,
	})
}
