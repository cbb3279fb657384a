package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (p *Pool) CreatePracticeSession(ctx context.Context, session *PracticeSession) error {
	if session == nil {
		return fmt.Errorf("practice session is nil")
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(session.ID) == "" {
		session.ID = uuid.NewString()
	}
	if session.AnsweredIDs == nil {
		session.AnsweredIDs = []string{}
	}
	if err := gdb.Create(session).Error; err != nil {
		return fmt.Errorf("insert practice session: %w", translateError(err))
	}
	return nil
}

func (p *Pool) GetPracticeSession(ctx context.Context, userID, sessionID string) (*PracticeSession, error) {
	if _, err := uuid.Parse(strings.TrimSpace(sessionID)); err != nil {
		return nil, ErrNoRows
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, err
	}

	var session PracticeSession
	if err := gdb.Where("id = ? AND user_id = ?", sessionID, userID).Take(&session).Error; err != nil {
		if err = translateError(err); IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query practice session: %w", err)
	}
	return &session, nil
}

func (p *Pool) ListPracticeSessions(ctx context.Context, userID string, limit, offset int) ([]PracticeSession, int64, error) {
	gdb, err := p.orm(ctx)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := gdb.Model(&PracticeSession{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count practice sessions: %w", err)
	}

	sessions := make([]PracticeSession, 0, limit)
	if err := gdb.Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("list practice sessions: %w", err)
	}
	return sessions, total, nil
}

func (p *Pool) SavePracticeSession(ctx context.Context, session *PracticeSession) error {
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("practice session id is required")
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return err
	}
	if err := gdb.Save(session).Error; err != nil {
		return fmt.Errorf("save practice session: %w", err)
	}
	return nil
}

// RecordPracticeAnswer persists an answered item and its session in one
// transaction.
func (p *Pool) RecordPracticeAnswer(ctx context.Context, session *PracticeSession, item *VocabularyItem) error {
	if session == nil || item == nil {
		return fmt.Errorf("practice session and item are required")
	}
	gdb, err := p.orm(ctx)
	if err != nil {
		return err
	}
	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("save practiced item: %w", err)
		}
		if err := tx.Save(session).Error; err != nil {
			return fmt.Errorf("save practice session: %w", err)
		}
		return nil
	})
}
