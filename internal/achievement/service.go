// Package achievement tracks per-user achievement progress against the
// seeded catalog.
package achievement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"askverba.app/server/internal/db"
	"askverba.app/server/internal/globaltime"
	"askverba.app/server/internal/learning"
)

var ErrNotFound = errors.New("achievement not found")

const MaxProgress = 100

type Store interface {
	ListAchievements(ctx context.Context) ([]db.Achievement, error)
	GetAchievement(ctx context.Context, achievementID string) (*db.Achievement, error)
	ListUserAchievements(ctx context.Context, userID string) ([]db.UserAchievement, error)
	GetUserAchievement(ctx context.Context, userID, achievementID string) (*db.UserAchievement, error)
	SaveUserAchievement(ctx context.Context, row *db.UserAchievement) error
	QueryUserStats(ctx context.Context, userID string) (*db.UserStats, error)
}

// Update is a partial change to a user's achievement. Nil fields are left
// unchanged.
type Update struct {
	Progress   *int
	IsUnlocked *bool
}

// Entry is a catalog achievement as seen by one user.
type Entry struct {
	Achievement db.Achievement
	Progress    int
	IsUnlocked  bool
	UnlockedAt  *time.Time
}

type Summary struct {
	Stats             db.UserStats
	Accuracy          float64
	AchievementsTotal int
}

type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "achievement").Logger(),
	}
}

// ApplyUpdate writes u onto row. Progress is clamped to [0, MaxProgress].
// UnlockedAt is stamped only when IsUnlocked goes from false to true and is
// cleared when it goes back to false. Progress alone never unlocks.
func ApplyUpdate(row *db.UserAchievement, u Update, now time.Time) {
	if u.Progress != nil {
		row.Progress = ClampProgress(*u.Progress)
	}
	if u.IsUnlocked != nil {
		switch {
		case *u.IsUnlocked && !row.IsUnlocked:
			unlockedAt := now.UTC()
			row.UnlockedAt = &unlockedAt
		case !*u.IsUnlocked:
			row.UnlockedAt = nil
		}
		row.IsUnlocked = *u.IsUnlocked
	}
	row.UpdatedAt = now.UTC()
}

func ClampProgress(progress int) int {
	return min(max(progress, 0), MaxProgress)
}

// ProgressFor is value as a percentage of threshold, capped at MaxProgress.
func ProgressFor(value int64, threshold int) int {
	if threshold <= 0 {
		return MaxProgress
	}
	if value <= 0 {
		return 0
	}
	return int(min(value*MaxProgress/int64(threshold), MaxProgress))
}

func (s *Service) Catalog(ctx context.Context) ([]db.Achievement, error) {
	return s.store.ListAchievements(ctx)
}

// ListForUser returns every catalog entry with the user's state; entries the
// user has no row for report zero progress.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Entry, error) {
	catalog, err := s.store.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	byAchievement := make(map[string]db.UserAchievement, len(rows))
	for _, row := range rows {
		byAchievement[row.AchievementID] = row
	}

	entries := make([]Entry, 0, len(catalog))
	for _, a := range catalog {
		entry := Entry{Achievement: a}
		if row, ok := byAchievement[a.ID]; ok {
			entry.Progress = row.Progress
			entry.IsUnlocked = row.IsUnlocked
			entry.UnlockedAt = row.UnlockedAt
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Update applies u to the user's row for achievementID, creating it when
// missing.
func (s *Service) Update(ctx context.Context, userID, achievementID string, u Update) (*db.UserAchievement, error) {
	achievement, err := s.store.GetAchievement(ctx, achievementID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	row, err := s.loadOrNew(ctx, userID, achievement)
	if err != nil {
		return nil, err
	}
	ApplyUpdate(row, u, globaltime.UTC())
	if err := s.store.SaveUserAchievement(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Refresh recomputes progress for every catalog entry from the user's stats
// and unlocks entries whose threshold is reached. Unlocked entries stay
// unlocked when the underlying count later drops.
func (s *Service) Refresh(ctx context.Context, userID string) ([]Entry, error) {
	stats, err := s.store.QueryUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.store.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	byAchievement := make(map[string]db.UserAchievement, len(rows))
	for _, row := range rows {
		byAchievement[row.AchievementID] = row
	}

	now := globaltime.UTC()
	entries := make([]Entry, 0, len(catalog))
	unlocked := 0
	for _, a := range catalog {
		value, ok := MetricValue(*stats, a.Metric)
		if !ok {
			s.logger.Warn().Str("slug", a.Slug).Str("metric", a.Metric).Msg("unknown achievement metric")
			continue
		}

		row, exists := byAchievement[a.ID]
		if !exists {
			row = db.UserAchievement{UserID: userID, AchievementID: a.ID, CreatedAt: now}
		}
		before := row

		progress := ProgressFor(value, a.Threshold)
		update := Update{Progress: &progress}
		if value >= int64(a.Threshold) {
			reached := true
			update.IsUnlocked = &reached
		}
		ApplyUpdate(&row, update, now)

		if !exists || row.Progress != before.Progress || row.IsUnlocked != before.IsUnlocked {
			if err := s.store.SaveUserAchievement(ctx, &row); err != nil {
				return nil, fmt.Errorf("save achievement %s: %w", a.Slug, err)
			}
			if row.IsUnlocked && !before.IsUnlocked {
				unlocked++
			}
		}
		entries = append(entries, Entry{
			Achievement: a,
			Progress:    row.Progress,
			IsUnlocked:  row.IsUnlocked,
			UnlockedAt:  row.UnlockedAt,
		})
	}

	s.logger.Debug().Str("user_id", userID).Int("newly_unlocked", unlocked).Msg("achievements refreshed")
	return entries, nil
}

// Progress summarizes the user's learning totals.
func (s *Service) Progress(ctx context.Context, userID string) (*Summary, error) {
	stats, err := s.store.QueryUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.store.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Stats:             *stats,
		Accuracy:          learning.Accuracy(stats.PracticeCorrect, stats.PracticeAnswers),
		AchievementsTotal: len(catalog),
	}, nil
}

func (s *Service) loadOrNew(ctx context.Context, userID string, achievement *db.Achievement) (*db.UserAchievement, error) {
	row, err := s.store.GetUserAchievement(ctx, userID, achievement.ID)
	if err == nil {
		return row, nil
	}
	if !db.IsNoRows(err) {
		return nil, err
	}
	return &db.UserAchievement{
		UserID:        userID,
		AchievementID: achievement.ID,
		CreatedAt:     globaltime.UTC(),
	}, nil
}
