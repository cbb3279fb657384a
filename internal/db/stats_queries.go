package db

import (
	"context"
	"fmt"
	"strings"
)

// UserStats is the read model behind the progress endpoint and the
// achievement evaluator.
type UserStats struct {
	Translations         int64 `json:"translations"`
	Favorites            int64 `json:"favorites"`
	Vocabulary           int64 `json:"vocabulary"`
	VocabularyNew        int64 `json:"vocabularyNew"`
	VocabularyLearning   int64 `json:"vocabularyLearning"`
	VocabularyMastered   int64 `json:"vocabularyMastered"`
	PracticeSessions     int64 `json:"practiceSessions"`
	PracticeAnswers      int64 `json:"practiceAnswers"`
	PracticeCorrect      int64 `json:"practiceCorrect"`
	AchievementsUnlocked int64 `json:"achievementsUnlocked"`
}

func (p *Pool) QueryUserStats(ctx context.Context, userID string) (*UserStats, error) {
	const q = `
SELECT
	(SELECT COUNT(*) FROM translation_history h WHERE h.user_id = $1::uuid)::BIGINT,
	(SELECT COUNT(*) FROM translation_history h WHERE h.user_id = $1::uuid AND h.is_favorite)::BIGINT,
	(SELECT COUNT(*) FROM vocabulary_items v WHERE v.user_id = $1::uuid)::BIGINT,
	(SELECT COUNT(*) FROM vocabulary_items v WHERE v.user_id = $1::uuid AND v.status = 'new')::BIGINT,
	(SELECT COUNT(*) FROM vocabulary_items v WHERE v.user_id = $1::uuid AND v.status = 'learning')::BIGINT,
	(SELECT COUNT(*) FROM vocabulary_items v WHERE v.user_id = $1::uuid AND v.status = 'mastered')::BIGINT,
	(SELECT COUNT(*) FROM practice_sessions s WHERE s.user_id = $1::uuid AND s.status = 'completed')::BIGINT,
	(SELECT COALESCE(SUM(jsonb_array_length(s.answered_ids)), 0) FROM practice_sessions s WHERE s.user_id = $1::uuid)::BIGINT,
	(SELECT COALESCE(SUM(s.correct_count), 0) FROM practice_sessions s WHERE s.user_id = $1::uuid)::BIGINT,
	(SELECT COUNT(*) FROM user_achievements a WHERE a.user_id = $1::uuid AND a.is_unlocked)::BIGINT
`

	var stats UserStats
	if err := p.QueryRow(ctx, q, strings.TrimSpace(userID)).Scan(
		&stats.Translations,
		&stats.Favorites,
		&stats.Vocabulary,
		&stats.VocabularyNew,
		&stats.VocabularyLearning,
		&stats.VocabularyMastered,
		&stats.PracticeSessions,
		&stats.PracticeAnswers,
		&stats.PracticeCorrect,
		&stats.AchievementsUnlocked,
	); err != nil {
		return nil, fmt.Errorf("query user stats: %w", err)
	}
	return &stats, nil
}
