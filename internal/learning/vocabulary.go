// Package learning owns the vocabulary list and practice sessions: input
// validation, extraction from detailed translations, and the review rules
// that move items between new, learning and mastered.
package learning

import (
	"strings"
	"time"

	"askverba.app/server/internal/db"
)

const (
	StatusNew      = "new"
	StatusLearning = "learning"
	StatusMastered = "mastered"

	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"

	CategoryOther = "other"

	// MasteryStreak is the number of consecutive correct answers that moves
	// a learning item to mastered.
	MasteryStreak = 3
)

var categories = []string{
	"noun", "verb", "adjective", "adverb", "pronoun", "preposition",
	"conjunction", "interjection", "phrase", "idiom", CategoryOther,
}

// Checked in order; more specific labels come before the ones they contain.
var categoryHints = []struct {
	hint     string
	category string
}{
	{"idiom", "idiom"},
	{"thành ngữ", "idiom"},
	{"phrasal", "phrase"},
	{"phrase", "phrase"},
	{"cụm", "phrase"},
	{"adverb", "adverb"},
	{"trạng từ", "adverb"},
	{"adjective", "adjective"},
	{"tính từ", "adjective"},
	{"pronoun", "pronoun"},
	{"đại từ", "pronoun"},
	{"preposition", "preposition"},
	{"giới từ", "preposition"},
	{"conjunction", "conjunction"},
	{"liên từ", "conjunction"},
	{"interjection", "interjection"},
	{"exclamation", "interjection"},
	{"thán từ", "interjection"},
	{"noun", "noun"},
	{"danh từ", "noun"},
	{"verb", "verb"},
	{"động từ", "verb"},
}

func ValidCategory(raw string) bool {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range categories {
		if c == value {
			return true
		}
	}
	return false
}

func ValidDifficulty(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

func ValidStatus(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StatusNew, StatusLearning, StatusMastered:
		return true
	}
	return false
}

// CategoryFromPartOfSpeech maps a free-form part of speech (English or
// Vietnamese) onto a vocabulary category.
func CategoryFromPartOfSpeech(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return CategoryOther
	}
	if ValidCategory(value) {
		return value
	}
	for _, h := range categoryHints {
		if strings.Contains(value, h.hint) {
			return h.category
		}
	}
	return CategoryOther
}

func NormalizeDifficulty(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return value
	case "easy", "basic", "elementary", "a1", "a2":
		return DifficultyBeginner
	case "medium", "moderate", "b1", "b2":
		return DifficultyIntermediate
	case "hard", "difficult", "c1", "c2":
		return DifficultyAdvanced
	default:
		return DifficultyBeginner
	}
}

// ApplyAnswer updates review counters and status for one practice answer.
func ApplyAnswer(item *db.VocabularyItem, correct bool, now time.Time) {
	item.ReviewCount++
	practicedAt := now.UTC()
	item.LastPracticedAt = &practicedAt

	if correct {
		item.CorrectStreak++
		switch item.Status {
		case StatusNew:
			item.Status = StatusLearning
		case StatusLearning:
			if item.CorrectStreak >= MasteryStreak {
				item.Status = StatusMastered
			}
		}
		return
	}

	item.CorrectStreak = 0
	if item.Status == StatusMastered || item.Status == StatusNew {
		item.Status = StatusLearning
	}
}
