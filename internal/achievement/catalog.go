package achievement

import (
	"context"
	"fmt"

	"askverba.app/server/internal/db"
)

const (
	MetricTranslations     = "translations"
	MetricVocabulary       = "vocabulary"
	MetricMastered         = "mastered"
	MetricPracticeSessions = "practice_sessions"
	MetricFavorites        = "favorites"
)

// Catalog is the built-in achievement list seeded by the migrate command.
var Catalog = []db.Achievement{
	{Slug: "first-translation", Name: "First Steps", Description: "Translate your first text.", Metric: MetricTranslations, Threshold: 1, Icon: "sparkles"},
	{Slug: "translator-50", Name: "Word Traveller", Description: "Translate 50 texts.", Metric: MetricTranslations, Threshold: 50, Icon: "globe"},
	{Slug: "translator-500", Name: "Polyglot", Description: "Translate 500 texts.", Metric: MetricTranslations, Threshold: 500, Icon: "languages"},
	{Slug: "first-word", Name: "Collector", Description: "Save your first vocabulary item.", Metric: MetricVocabulary, Threshold: 1, Icon: "bookmark"},
	{Slug: "vocabulary-100", Name: "Word Hoard", Description: "Save 100 vocabulary items.", Metric: MetricVocabulary, Threshold: 100, Icon: "library"},
	{Slug: "mastered-10", Name: "Quick Learner", Description: "Master 10 words.", Metric: MetricMastered, Threshold: 10, Icon: "brain"},
	{Slug: "mastered-100", Name: "Wordsmith", Description: "Master 100 words.", Metric: MetricMastered, Threshold: 100, Icon: "crown"},
	{Slug: "first-practice", Name: "Warm Up", Description: "Complete a practice session.", Metric: MetricPracticeSessions, Threshold: 1, Icon: "dumbbell"},
	{Slug: "practice-30", Name: "Dedicated", Description: "Complete 30 practice sessions.", Metric: MetricPracticeSessions, Threshold: 30, Icon: "flame"},
	{Slug: "favorites-10", Name: "Curator", Description: "Mark 10 translations as favorite.", Metric: MetricFavorites, Threshold: 10, Icon: "star"},
}

type CatalogStore interface {
	UpsertAchievements(ctx context.Context, rows []db.Achievement) error
}

// SeedCatalog upserts Catalog by slug and returns the number of entries.
func SeedCatalog(ctx context.Context, store CatalogStore) (int, error) {
	rows := make([]db.Achievement, len(Catalog))
	copy(rows, Catalog)
	for i := range rows {
		rows[i].SortOrder = i
	}
	if err := store.UpsertAchievements(ctx, rows); err != nil {
		return 0, fmt.Errorf("seed achievement catalog: %w", err)
	}
	return len(rows), nil
}

// MetricValue reads the stat an achievement metric is measured against.
func MetricValue(stats db.UserStats, metric string) (int64, bool) {
	switch metric {
	case MetricTranslations:
		return stats.Translations, true
	case MetricVocabulary:
		return stats.Vocabulary, true
	case MetricMastered:
		return stats.VocabularyMastered, true
	case MetricPracticeSessions:
		return stats.PracticeSessions, true
	case MetricFavorites:
		return stats.Favorites, true
	default:
		return 0, false
	}
}
