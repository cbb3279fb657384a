package learning

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"askverba.app/server/internal/db"
	"askverba.app/server/internal/globaltime"
)

const (
	KindFlashcard = "flashcard"
	KindQuiz      = "quiz"

	SessionActive    = "active"
	SessionCompleted = "completed"

	DefaultSessionSize = 10
	MaxSessionSize     = 50
)

type AnswerResult struct {
	Session *db.PracticeSession
	Item    *db.VocabularyItem
}

// StartSession picks up to size non-mastered items, least recently practiced
// first, and opens a session over them.
func (s *Service) StartSession(ctx context.Context, userID, kind string, size int) (*db.PracticeSession, []db.VocabularyItem, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = KindFlashcard
	}
	if kind != KindFlashcard && kind != KindQuiz {
		return nil, nil, fmt.Errorf("%w: kind must be flashcard or quiz", ErrInvalid)
	}
	if size == 0 {
		size = DefaultSessionSize
	}
	if size < 0 || size > MaxSessionSize {
		return nil, nil, fmt.Errorf("%w: size must be between 1 and %d", ErrInvalid, MaxSessionSize)
	}

	items, err := s.store.ListPracticeCandidates(ctx, userID, size)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, ErrNoPracticeItems
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	session := &db.PracticeSession{
		UserID:      userID,
		Kind:        kind,
		Status:      SessionActive,
		ItemIDs:     ids,
		AnsweredIDs: []string{},
		TotalItems:  len(ids),
		StartedAt:   globaltime.UTC(),
	}
	if err := s.store.CreatePracticeSession(ctx, session); err != nil {
		return nil, nil, err
	}
	return session, items, nil
}

func (s *Service) ListSessions(ctx context.Context, userID string, limit, offset int) ([]db.PracticeSession, int64, error) {
	return s.store.ListPracticeSessions(ctx, userID, limit, offset)
}

// GetSession returns the session and its items in session order. Items
// deleted since the session started are omitted.
func (s *Service) GetSession(ctx context.Context, userID, sessionID string) (*db.PracticeSession, []db.VocabularyItem, error) {
	session, err := s.store.GetPracticeSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}
	items, err := s.store.GetVocabularyItemsByIDs(ctx, userID, session.ItemIDs)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]db.VocabularyItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	ordered := make([]db.VocabularyItem, 0, len(items))
	for _, id := range session.ItemIDs {
		if item, ok := byID[id]; ok {
			ordered = append(ordered, item)
		}
	}
	return session, ordered, nil
}

// RecordAnswer applies one answer to an item of an active session. The
// session completes once every item that still exists has been answered.
func (s *Service) RecordAnswer(ctx context.Context, userID, sessionID, itemID string, correct bool) (*AnswerResult, error) {
	session, err := s.store.GetPracticeSession(ctx, userID, sessionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if session.Status != SessionActive {
		return nil, ErrSessionClosed
	}
	itemID = strings.TrimSpace(itemID)
	if !slices.Contains(session.ItemIDs, itemID) {
		return nil, ErrItemNotInSession
	}
	if slices.Contains(session.AnsweredIDs, itemID) {
		return nil, ErrAlreadyAnswered
	}

	item, err := s.store.GetVocabularyItem(ctx, userID, itemID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	now := globaltime.UTC()
	ApplyAnswer(item, correct, now)

	session.AnsweredIDs = append(session.AnsweredIDs, itemID)
	if correct {
		session.CorrectCount++
	}
	pending, err := s.pendingItems(ctx, userID, session)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		completeSession(session)
	}

	if err := s.store.RecordPracticeAnswer(ctx, session, item); err != nil {
		return nil, err
	}
	return &AnswerResult{Session: session, Item: item}, nil
}

// CompleteSession closes a session early. Completing a completed session is a
// no-op.
func (s *Service) CompleteSession(ctx context.Context, userID, sessionID string) (*db.PracticeSession, error) {
	session, err := s.store.GetPracticeSession(ctx, userID, sessionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if session.Status == SessionCompleted {
		return session, nil
	}
	completeSession(session)
	if err := s.store.SavePracticeSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// pendingItems counts session items that still exist and have no answer yet.
func (s *Service) pendingItems(ctx context.Context, userID string, session *db.PracticeSession) (int, error) {
	items, err := s.store.GetVocabularyItemsByIDs(ctx, userID, session.ItemIDs)
	if err != nil {
		return 0, err
	}
	pending := 0
	for _, item := range items {
		if !slices.Contains(session.AnsweredIDs, item.ID) {
			pending++
		}
	}
	return pending, nil
}

func completeSession(session *db.PracticeSession) {
	completedAt := globaltime.UTC()
	session.Status = SessionCompleted
	session.CompletedAt = &completedAt
}

// Accuracy is the share of correct answers in percent, 0 when nothing was
// answered.
func Accuracy(correct, answered int64) float64 {
	if answered <= 0 {
		return 0
	}
	return float64(correct) * 100 / float64(answered)
}
