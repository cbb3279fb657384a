package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VocabularyFilter struct {
	Status     string
	Category   string
	Difficulty string
	Query      string
	Limit      int
	Offset     int
}

// CreateVocabularyItem inserts an item. A word the user already saved
// (case-insensitive) yields ErrDuplicate.
func (p *Pool) CreateVocabularyItem(ctx context.Context, item *VocabularyItem) error {
	if item == nil {
		return fmt.Errorf("vocabulary item is nil")
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(item.ID) == "" {
		item.ID = uuid.NewString()
	}
	if err := gdb.Create(item).Error; err != nil {
		if err = translateError(err); errors.Is(err, ErrDuplicate) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert vocabulary item: %w", err)
	}
	return nil
}

func (p *Pool) ListVocabulary(ctx context.Context, userID string, filter VocabularyFilter) ([]VocabularyItem, int64, error) {
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, 0, err
	}

	scoped := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("user_id = ?", userID)
		if v := strings.TrimSpace(filter.Status); v != "" {
			tx = tx.Where("status = ?", v)
		}
		if v := strings.TrimSpace(filter.Category); v != "" {
			tx = tx.Where("category = ?", v)
		}
		if v := strings.TrimSpace(filter.Difficulty); v != "" {
			tx = tx.Where("difficulty = ?", v)
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			pattern := "%" + escapeLike(q) + "%"
			tx = tx.Where("(word ILIKE ? OR translation ILIKE ?)", pattern, pattern)
		}
		return tx
	}

	var total int64
	if err := gdb.Model(&VocabularyItem{}).Scopes(scoped).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count vocabulary: %w", err)
	}

	items := make([]VocabularyItem, 0, filter.Limit)
	if err := gdb.Scopes(scoped).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("list vocabulary: %w", err)
	}
	return items, total, nil
}

func (p *Pool) GetVocabularyItem(ctx context.Context, userID, itemID string) (*VocabularyItem, error) {
	if _, err := uuid.Parse(strings.TrimSpace(itemID)); err != nil {
		return nil, ErrNoRows
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}

	var item VocabularyItem
	if err := gdb.Where("id = ? AND user_id = ?", itemID, userID).Take(&item).Error; err != nil {
		if err = translateError(err); IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query vocabulary item: %w", err)
	}
	return &item, nil
}

// SaveVocabularyItem writes every column of an existing item.
func (p *Pool) SaveVocabularyItem(ctx context.Context, item *VocabularyItem) error {
	if item == nil || strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("vocabulary item id is required")
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return err
	}
	if err := gdb.Save(item).Error; err != nil {
		if err = translateError(err); errors.Is(err, ErrDuplicate) {
			return ErrDuplicate
		}
		return fmt.Errorf("save vocabulary item: %w", err)
	}
	return nil
}

func (p *Pool) DeleteVocabularyItem(ctx context.Context, userID, itemID string) error {
	if _, err := uuid.Parse(strings.TrimSpace(itemID)); err != nil {
		return ErrNoRows
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return err
	}
	res := gdb.Where("id = ? AND user_id = ?", itemID, userID).Delete(&VocabularyItem{})
	if res.Error != nil {
		return fmt.Errorf("delete vocabulary item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

// ExistingVocabularyWords reports which of words the user already saved. Keys
// of the result are lowercased.
func (p *Pool) ExistingVocabularyWords(ctx context.Context, userID string, words []string) (map[string]bool, error) {
	out := make(map[string]bool, len(words))
	if len(words) == 0 {
		return out, nil
	}
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(w)))
	}

	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}
	var found []string
	if err := gdb.Model(&VocabularyItem{}).
		Where("user_id = ? AND lower(word) IN ?", userID, lowered).
		Pluck("lower(word)", &found).Error; err != nil {
		return nil, fmt.Errorf("query existing vocabulary words: %w", err)
	}
	for _, w := range found {
		out[w] = true
	}
	return out, nil
}

// ListPracticeCandidates returns non-mastered items, never-practiced first,
// then least recently practiced.
func (p *Pool) ListPracticeCandidates(ctx context.Context, userID string, limit int) ([]VocabularyItem, error) {
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]VocabularyItem, 0, limit)
	if err := gdb.Where("user_id = ? AND status <> ?", userID, "mastered").
		Order("last_practiced_at ASC NULLS FIRST").
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list practice candidates: %w", err)
	}
	return items, nil
}

func (p *Pool) GetVocabularyItemsByIDs(ctx context.Context, userID string, ids []string) ([]VocabularyItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}
	var items []VocabularyItem
	if err := gdb.Where("user_id = ? AND id IN ?", userID, ids).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("query vocabulary items by id: %w", err)
	}
	return items, nil
}
