package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistoryFilter struct {
	Mode         string
	FavoriteOnly bool
	Query        string
	Limit        int
	Offset       int
}

func (p *Pool) CreateHistoryEntry(ctx context.Context, entry *TranslationHistory) error {
	if entry == nil {
		return fmt.Errorf("history entry is nil")
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(entry.ID) == "" {
		entry.ID = uuid.NewString()
	}
	if err := gdb.Create(entry).Error; err != nil {
		return fmt.Errorf("insert history entry: %w", translateError(err))
	}
	return nil
}

// ListHistory returns one page of the user's history, newest first, plus the
// total number of entries matching the filter.
func (p *Pool) ListHistory(ctx context.Context, userID string, filter HistoryFilter) ([]TranslationHistory, int64, error) {
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, 0, err
	}

	scoped := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("user_id = ?", userID)
		if mode := strings.TrimSpace(filter.Mode); mode != "" {
			tx = tx.Where("mode = ?", mode)
		}
		if filter.FavoriteOnly {
			tx = tx.Where("is_favorite")
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			tx = tx.Where("text ILIKE ?", "%"+escapeLike(q)+"%")
		}
		return tx
	}

	var total int64
	if err := gdb.Model(&TranslationHistory{}).Scopes(scoped).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	entries := make([]TranslationHistory, 0, filter.Limit)
	if err := gdb.Scopes(scoped).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list history: %w", err)
	}
	return entries, total, nil
}

func (p *Pool) GetHistoryEntry(ctx context.Context, userID, entryID string) (*TranslationHistory, error) {
	if _, err := uuid.Parse(strings.TrimSpace(entryID)); err != nil {
		return nil, ErrNoRows
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}

	var entry TranslationHistory
	if err := gdb.Where("id = ? AND user_id = ?", entryID, userID).Take(&entry).Error; err != nil {
		if err = translateError(err); IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query history entry: %w", err)
	}
	return &entry, nil
}

func (p *Pool) SetHistoryFavorite(ctx context.Context, userID, entryID string, favorite bool) (*TranslationHistory, error) {
	entry, err := p.GetHistoryEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}
	if err := gdb.Model(entry).Update("is_favorite", favorite).Error; err != nil {
		return nil, fmt.Errorf("update history favorite: %w", err)
	}
	return entry, nil
}

func (p *Pool) DeleteHistoryEntry(ctx context.Context, userID, entryID string) error {
	if _, err := uuid.Parse(strings.TrimSpace(entryID)); err != nil {
		return ErrNoRows
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return err
	}
	res := gdb.Where("id = ? AND user_id = ?", entryID, userID).Delete(&TranslationHistory{})
	if res.Error != nil {
		return fmt.Errorf("delete history entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

func (p *Pool) ClearHistory(ctx context.Context, userID string) (int64, error) {
	gdb, err := p.orm(ctx)
	if err != nil {
		return 0, err
	}
	res := gdb.Where("user_id = ?", userID).Delete(&TranslationHistory{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear history: %w", res.Error)
	}
	return res.RowsAffected, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(raw string) string {
	return likeEscaper.Replace(raw)
}
