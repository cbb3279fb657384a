package db

import (
	"time"

	"gorm.io/datatypes"
)

// User maps users.
type User struct {
	ID           string     `gorm:"column:id;type:uuid;primaryKey"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name         string     `gorm:"column:name;type:text;not null;default:''"`
	PasswordHash string     `gorm:"column:password_hash;type:text;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at;type:timestamptz"`
}

func (User) TableName() string { return "users" }

// Session maps user_sessions. The session id doubles as the token id.
type Session struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey"`
	UserID     string    `gorm:"column:user_id;type:uuid;not null;index"`
	ExpiresAt  time.Time `gorm:"column:expires_at;type:timestamptz;not null;index"`
	LastSeenAt time.Time `gorm:"column:last_seen_at;type:timestamptz;not null;default:now()"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (Session) TableName() string { return "user_sessions" }

// TranslationHistory maps translation_history.
type TranslationHistory struct {
	ID         string         `gorm:"column:id;type:uuid;primaryKey"`
	UserID     string         `gorm:"column:user_id;type:uuid;not null;index:idx_history_user_created,priority:1"`
	Text       string         `gorm:"column:text;type:text;not null"`
	Mode       string         `gorm:"column:mode;type:text;not null"`
	SourceLang string         `gorm:"column:source_lang;type:text;not null"`
	TargetLang string         `gorm:"column:target_lang;type:text;not null"`
	Result     datatypes.JSON `gorm:"column:result;type:jsonb;not null"`
	IsFavorite bool           `gorm:"column:is_favorite;not null;default:false"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamptz;not null;default:now();index:idx_history_user_created,priority:2,sort:desc"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (TranslationHistory) TableName() string { return "translation_history" }

// VocabularyItem maps vocabulary_items. Words are unique per user,
// case-insensitively (see post_automigrate.sql).
type VocabularyItem struct {
	ID              string     `gorm:"column:id;type:uuid;primaryKey"`
	UserID          string     `gorm:"column:user_id;type:uuid;not null;index"`
	Word            string     `gorm:"column:word;type:text;not null"`
	Translation     string     `gorm:"column:translation;type:text;not null;default:''"`
	Category        string     `gorm:"column:category;type:text;not null;default:other"`
	Difficulty      string     `gorm:"column:difficulty;type:text;not null;default:beginner"`
	Context         string     `gorm:"column:context;type:text;not null;default:''"`
	Pronunciation   string     `gorm:"column:pronunciation;type:text;not null;default:''"`
	Status          string     `gorm:"column:status;type:text;not null;default:new"`
	ReviewCount     int        `gorm:"column:review_count;type:integer;not null;default:0"`
	CorrectStreak   int        `gorm:"column:correct_streak;type:integer;not null;default:0"`
	LastPracticedAt *time.Time `gorm:"column:last_practiced_at;type:timestamptz"`
	SourceHistoryID *string    `gorm:"column:source_history_id;type:uuid"`
	CreatedAt       time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (VocabularyItem) TableName() string { return "vocabulary_items" }

// Achievement maps the achievements catalog.
type Achievement struct {
	ID          string    `gorm:"column:id;type:uuid;primaryKey"`
	Slug        string    `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Description string    `gorm:"column:description;type:text;not null;default:''"`
	Metric      string    `gorm:"column:metric;type:text;not null"`
	Threshold   int       `gorm:"column:threshold;type:integer;not null"`
	Icon        string    `gorm:"column:icon;type:text;not null;default:''"`
	SortOrder   int       `gorm:"column:sort_order;type:integer;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (Achievement) TableName() string { return "achievements" }

// UserAchievement maps user_achievements.
type UserAchievement struct {
	ID            string       `gorm:"column:id;type:uuid;primaryKey"`
	UserID        string       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_achievement,priority:1"`
	AchievementID string       `gorm:"column:achievement_id;type:uuid;not null;uniqueIndex:idx_user_achievement,priority:2"`
	Progress      int          `gorm:"column:progress;type:integer;not null;default:0"`
	IsUnlocked    bool         `gorm:"column:is_unlocked;not null;default:false"`
	UnlockedAt    *time.Time   `gorm:"column:unlocked_at;type:timestamptz"`
	CreatedAt     time.Time    `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID;references:ID"`
}

func (UserAchievement) TableName() string { return "user_achievements" }

// PracticeSession maps practice_sessions.
type PracticeSession struct {
	ID           string                      `gorm:"column:id;type:uuid;primaryKey"`
	UserID       string                      `gorm:"column:user_id;type:uuid;not null;index"`
	Kind         string                      `gorm:"column:kind;type:text;not null"`
	Status       string                      `gorm:"column:status;type:text;not null;default:active"`
	ItemIDs      datatypes.JSONSlice[string] `gorm:"column:item_ids;type:jsonb;not null"`
	AnsweredIDs  datatypes.JSONSlice[string] `gorm:"column:answered_ids;type:jsonb;not null"`
	TotalItems   int                         `gorm:"column:total_items;type:integer;not null"`
	CorrectCount int                         `gorm:"column:correct_count;type:integer;not null;default:0"`
	StartedAt    time.Time                   `gorm:"column:started_at;type:timestamptz;not null;default:now()"`
	CompletedAt  *time.Time                  `gorm:"column:completed_at;type:timestamptz"`
}

func (PracticeSession) TableName() string { return "practice_sessions" }

func autoMigrateModels() []any {
	return []any{
		&User{},
		&Session{},
		&TranslationHistory{},
		&VocabularyItem{},
		&Achievement{},
		&UserAchievement{},
		&PracticeSession{},
	}
}
