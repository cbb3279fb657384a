package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"askverba.app/server/internal/db"
	"askverba.app/server/internal/translation"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalid          = errors.New("invalid input")
	ErrDuplicate        = errors.New("word already in vocabulary")
	ErrNoPracticeItems  = errors.New("no vocabulary items to practice")
	ErrSessionClosed    = errors.New("practice session is not active")
	ErrItemNotInSession = errors.New("item is not part of this practice session")
	ErrAlreadyAnswered  = errors.New("item already answered in this session")
)

type Store interface {
	CreateVocabularyItem(ctx context.Context, item *db.VocabularyItem) error
	ListVocabulary(ctx context.Context, userID string, filter db.VocabularyFilter) ([]db.VocabularyItem, int64, error)
	GetVocabularyItem(ctx context.Context, userID, itemID string) (*db.VocabularyItem, error)
	SaveVocabularyItem(ctx context.Context, item *db.VocabularyItem) error
	DeleteVocabularyItem(ctx context.Context, userID, itemID string) error
	ExistingVocabularyWords(ctx context.Context, userID string, words []string) (map[string]bool, error)
	ListPracticeCandidates(ctx context.Context, userID string, limit int) ([]db.VocabularyItem, error)
	GetVocabularyItemsByIDs(ctx context.Context, userID string, ids []string) ([]db.VocabularyItem, error)

	GetHistoryEntry(ctx context.Context, userID, entryID string) (*db.TranslationHistory, error)

	CreatePracticeSession(ctx context.Context, session *db.PracticeSession) error
	GetPracticeSession(ctx context.Context, userID, sessionID string) (*db.PracticeSession, error)
	ListPracticeSessions(ctx context.Context, userID string, limit, offset int) ([]db.PracticeSession, int64, error)
	SavePracticeSession(ctx context.Context, session *db.PracticeSession) error
	RecordPracticeAnswer(ctx context.Context, session *db.PracticeSession, item *db.VocabularyItem) error
}

type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "learning").Logger(),
	}
}

// ItemInput is a manual vocabulary entry. Empty category and difficulty fall
// back to other and beginner.
type ItemInput struct {
	Word          string
	Translation   string
	Category      string
	Difficulty    string
	Context       string
	Pronunciation string
}

// ItemPatch holds optional updates; nil fields are left unchanged.
type ItemPatch struct {
	Word          *string
	Translation   *string
	Category      *string
	Difficulty    *string
	Context       *string
	Pronunciation *string
	Status        *string
}

type ExtractResult struct {
	Created []db.VocabularyItem
	Skipped int
}

func (s *Service) ListItems(ctx context.Context, userID string, filter db.VocabularyFilter) ([]db.VocabularyItem, int64, error) {
	for _, check := range []struct {
		value string
		valid func(string) bool
		name  string
	}{
		{filter.Status, ValidStatus, "status"},
		{filter.Category, ValidCategory, "category"},
		{filter.Difficulty, ValidDifficulty, "difficulty"},
	} {
		if strings.TrimSpace(check.value) != "" && !check.valid(check.value) {
			return nil, 0, fmt.Errorf("%w: unknown %s %q", ErrInvalid, check.name, check.value)
		}
	}
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	filter.Difficulty = strings.ToLower(strings.TrimSpace(filter.Difficulty))
	return s.store.ListVocabulary(ctx, userID, filter)
}

func (s *Service) GetItem(ctx context.Context, userID, itemID string) (*db.VocabularyItem, error) {
	item, err := s.store.GetVocabularyItem(ctx, userID, itemID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return item, nil
}

func (s *Service) CreateItem(ctx context.Context, userID string, in ItemInput) (*db.VocabularyItem, error) {
	item := &db.VocabularyItem{
		UserID:        userID,
		Word:          strings.TrimSpace(in.Word),
		Translation:   strings.TrimSpace(in.Translation),
		Category:      strings.ToLower(strings.TrimSpace(in.Category)),
		Difficulty:    strings.ToLower(strings.TrimSpace(in.Difficulty)),
		Context:       strings.TrimSpace(in.Context),
		Pronunciation: strings.TrimSpace(in.Pronunciation),
		Status:        StatusNew,
	}
	if item.Category == "" {
		item.Category = CategoryOther
	}
	if item.Difficulty == "" {
		item.Difficulty = DifficultyBeginner
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.store.CreateVocabularyItem(ctx, item); err != nil {
		return nil, mapStoreError(err)
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, patch ItemPatch) (*db.VocabularyItem, error) {
	item, err := s.store.GetVocabularyItem(ctx, userID, itemID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	apply := func(dst *string, src *string, lower bool) {
		if src == nil {
			return
		}
		value := strings.TrimSpace(*src)
		if lower {
			value = strings.ToLower(value)
		}
		*dst = value
	}
	apply(&item.Word, patch.Word, false)
	apply(&item.Translation, patch.Translation, false)
	apply(&item.Category, patch.Category, true)
	apply(&item.Difficulty, patch.Difficulty, true)
	apply(&item.Context, patch.Context, false)
	apply(&item.Pronunciation, patch.Pronunciation, false)
	previousStatus := item.Status
	apply(&item.Status, patch.Status, true)

	if err := validateItem(item); err != nil {
		return nil, err
	}
	if item.Status != previousStatus && item.Status != StatusMastered {
		item.CorrectStreak = 0
	}

	if err := s.store.SaveVocabularyItem(ctx, item); err != nil {
		return nil, mapStoreError(err)
	}
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, userID, itemID string) error {
	return mapStoreError(s.store.DeleteVocabularyItem(ctx, userID, itemID))
}

// ExtractFromHistory adds the vocabulary of a detailed history entry to the
// user's list. Words already saved are skipped and counted.
func (s *Service) ExtractFromHistory(ctx context.Context, userID, historyID string) (*ExtractResult, error) {
	entry, err := s.store.GetHistoryEntry(ctx, userID, historyID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	var result translation.Result
	if err := json.Unmarshal(entry.Result, &result); err != nil {
		return nil, fmt.Errorf("decode history result %s: %w", entry.ID, err)
	}
	candidates, err := translation.ExtractVocabulary(result)
	if err != nil {
		if errors.Is(err, translation.ErrNotDetailed) {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		return nil, err
	}

	words := make([]string, 0, len(candidates))
	for _, c := range candidates {
		words = append(words, c.Word)
	}
	existing, err := s.store.ExistingVocabularyWords(ctx, userID, words)
	if err != nil {
		return nil, err
	}

	out := &ExtractResult{Created: make([]db.VocabularyItem, 0, len(candidates))}
	sourceID := entry.ID
	for _, c := range candidates {
		if existing[strings.ToLower(c.Word)] {
			out.Skipped++
			continue
		}
		item := &db.VocabularyItem{
			UserID:          userID,
			Word:            c.Word,
			Translation:     c.Translation,
			Category:        CategoryFromPartOfSpeech(c.PartOfSpeech),
			Difficulty:      NormalizeDifficulty(c.Difficulty),
			Context:         strings.TrimSpace(c.Context),
			Pronunciation:   strings.TrimSpace(c.Pronunciation),
			Status:          StatusNew,
			SourceHistoryID: &sourceID,
		}
		if err := s.store.CreateVocabularyItem(ctx, item); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				out.Skipped++
				continue
			}
			return nil, err
		}
		out.Created = append(out.Created, *item)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("history_id", entry.ID).
		Int("created", len(out.Created)).
		Int("skipped", out.Skipped).
		Msg("vocabulary extracted")
	return out, nil
}

func validateItem(item *db.VocabularyItem) error {
	switch {
	case item.Word == "":
		return fmt.Errorf("%w: word is required", ErrInvalid)
	case len([]rune(item.Word)) > 200:
		return fmt.Errorf("%w: word is too long", ErrInvalid)
	case !ValidCategory(item.Category):
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, item.Category)
	case !ValidDifficulty(item.Difficulty):
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalid, item.Difficulty)
	case !ValidStatus(item.Status):
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, item.Status)
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, db.ErrDuplicate):
		return ErrDuplicate
	default:
		return err
	}
}
