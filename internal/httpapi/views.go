package httpapi

import (
	"encoding/json"
	"time"

	"askverba.app/server/internal/achievement"
	"askverba.app/server/internal/db"
	"askverba.app/server/internal/learning"
)

type userView struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func newUserView(row *db.User) userView {
	if row == nil {
		return userView{}
	}
	return userView{
		ID:          row.ID,
		Email:       row.Email,
		Name:        row.Name,
		CreatedAt:   row.CreatedAt.UTC(),
		LastLoginAt: row.LastLoginAt,
	}
}

type historyView struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Mode       string          `json:"mode"`
	SourceLang string          `json:"sourceLang"`
	TargetLang string          `json:"targetLang"`
	Result     json.RawMessage `json:"result"`
	IsFavorite bool            `json:"isFavorite"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func newHistoryView(row db.TranslationHistory) historyView {
	result := json.RawMessage(row.Result)
	if len(result) == 0 {
		result = json.RawMessage(`null`)
	}
	return historyView{
		ID:         row.ID,
		Text:       row.Text,
		Mode:       row.Mode,
		SourceLang: row.SourceLang,
		TargetLang: row.TargetLang,
		Result:     result,
		IsFavorite: row.IsFavorite,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

type vocabularyView struct {
	ID              string     `json:"id"`
	Word            string     `json:"word"`
	Translation     string     `json:"translation"`
	Category        string     `json:"category"`
	Difficulty      string     `json:"difficulty"`
	Context         string     `json:"context"`
	Pronunciation   string     `json:"pronunciation,omitempty"`
	Status          string     `json:"status"`
	ReviewCount     int        `json:"reviewCount"`
	CorrectStreak   int        `json:"correctStreak"`
	LastPracticedAt *time.Time `json:"lastPracticedAt,omitempty"`
	SourceHistoryID *string    `json:"sourceHistoryId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func newVocabularyView(row db.VocabularyItem) vocabularyView {
	return vocabularyView{
		ID:              row.ID,
		Word:            row.Word,
		Translation:     row.Translation,
		Category:        row.Category,
		Difficulty:      row.Difficulty,
		Context:         row.Context,
		Pronunciation:   row.Pronunciation,
		Status:          row.Status,
		ReviewCount:     row.ReviewCount,
		CorrectStreak:   row.CorrectStreak,
		LastPracticedAt: row.LastPracticedAt,
		SourceHistoryID: row.SourceHistoryID,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}

func newVocabularyViews(rows []db.VocabularyItem) []vocabularyView {
	out := make([]vocabularyView, 0, len(rows))
	for _, row := range rows {
		out = append(out, newVocabularyView(row))
	}
	return out
}

type practiceSessionView struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	ItemIDs      []string   `json:"itemIds"`
	AnsweredIDs  []string   `json:"answeredIds"`
	TotalItems   int        `json:"totalItems"`
	Answered     int        `json:"answered"`
	CorrectCount int        `json:"correctCount"`
	Accuracy     float64    `json:"accuracy"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

func newPracticeSessionView(row db.PracticeSession) practiceSessionView {
	itemIDs := []string(row.ItemIDs)
	if itemIDs == nil {
		itemIDs = []string{}
	}
	answeredIDs := []string(row.AnsweredIDs)
	if answeredIDs == nil {
		answeredIDs = []string{}
	}
	return practiceSessionView{
		ID:           row.ID,
		Kind:         row.Kind,
		Status:       row.Status,
		ItemIDs:      itemIDs,
		AnsweredIDs:  answeredIDs,
		TotalItems:   row.TotalItems,
		Answered:     len(answeredIDs),
		CorrectCount: row.CorrectCount,
		Accuracy:     learning.Accuracy(int64(row.CorrectCount), int64(len(answeredIDs))),
		StartedAt:    row.StartedAt.UTC(),
		CompletedAt:  row.CompletedAt,
	}
}

type achievementView struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Metric      string `json:"metric"`
	Threshold   int    `json:"threshold"`
	Icon        string `json:"icon"`
}

func newAchievementView(row db.Achievement) achievementView {
	return achievementView{
		ID:          row.ID,
		Slug:        row.Slug,
		Name:        row.Name,
		Description: row.Description,
		Metric:      row.Metric,
		Threshold:   row.Threshold,
		Icon:        row.Icon,
	}
}

type userAchievementView struct {
	Achievement achievementView `json:"achievement"`
	Progress    int             `json:"progress"`
	IsUnlocked  bool            `json:"isUnlocked"`
	UnlockedAt  *time.Time      `json:"unlockedAt,omitempty"`
}

func newUserAchievementViews(entries []achievement.Entry) []userAchievementView {
	out := make([]userAchievementView, 0, len(entries))
	for _, entry := range entries {
		out = append(out, userAchievementView{
			Achievement: newAchievementView(entry.Achievement),
			Progress:    entry.Progress,
			IsUnlocked:  entry.IsUnlocked,
			UnlockedAt:  entry.UnlockedAt,
		})
	}
	return out
}

type achievementStateView struct {
	AchievementID string     `json:"achievementId"`
	Progress      int        `json:"progress"`
	IsUnlocked    bool       `json:"isUnlocked"`
	UnlockedAt    *time.Time `json:"unlockedAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func newAchievementStateView(row *db.UserAchievement) achievementStateView {
	return achievementStateView{
		AchievementID: row.AchievementID,
		Progress:      row.Progress,
		IsUnlocked:    row.IsUnlocked,
		UnlockedAt:    row.UnlockedAt,
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

type progressView struct {
	db.UserStats
	Accuracy          float64 `json:"accuracy"`
	AchievementsTotal int     `json:"achievementsTotal"`
}
