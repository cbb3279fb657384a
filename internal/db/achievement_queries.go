package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (p *Pool) ListAchievements(ctx context.Context) ([]Achievement, error) {
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Achievement
	if err := gdb.Order("sort_order ASC").Order("threshold ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return rows, nil
}

func (p *Pool) GetAchievement(ctx context.Context, achievementID string) (*Achievement, error) {
	if _, err := uuid.Parse(strings.TrimSpace(achievementID)); err != nil {
		return nil, ErrNoRows
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}
	var row Achievement
	if err := gdb.Where("id = ?", achievementID).Take(&row).Error; err != nil {
		if err = translateError(err); IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query achievement: %w", err)
	}
	return &row, nil
}

// UpsertAchievements writes catalog entries keyed by slug. Existing rows keep
// their ids.
func (p *Pool) UpsertAchievements(ctx context.Context, rows []Achievement) error {
	if len(rows) == 0 {
		return nil
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return err
	}
	for i := range rows {
		if strings.TrimSpace(rows[i].ID) == "" {
			rows[i].ID = uuid.NewString()
		}
	}
	if err := gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "metric", "threshold", "icon", "sort_order"}),
	}).Create(&rows).Error; err != nil {
		return fmt.Errorf("upsert achievements: %w", err)
	}
	return nil
}

func (p *Pool) ListUserAchievements(ctx context.Context, userID string) ([]UserAchievement, error) {
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}
	var rows []UserAchievement
	if err := gdb.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	return rows, nil
}

func (p *Pool) GetUserAchievement(ctx context.Context, userID, achievementID string) (*UserAchievement, error) {
	if _, err := uuid.Parse(strings.TrimSpace(achievementID)); err != nil {
		return nil, ErrNoRows
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}
	var row UserAchievement
	if err := gdb.Preload("Achievement").
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Take(&row).Error; err != nil {
		if err = translateError(err); IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query user achievement: %w", err)
	}
	return &row, nil
}

// SaveUserAchievement inserts or updates the (user, achievement) row.
func (p *Pool) SaveUserAchievement(ctx context.Context, row *UserAchievement) error {
	if row == nil {
		return fmt.Errorf("user achievement is nil")
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(row.ID) == "" {
		row.ID = uuid.NewString()
	}
	if err := gdb.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress", "is_unlocked", "unlocked_at", "updated_at"}),
	}).Create(row).Error; err != nil {
		return fmt.Errorf("save user achievement: %w", err)
	}
	return nil
}
