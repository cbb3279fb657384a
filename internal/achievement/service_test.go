package achievement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"askverba.app/server/internal/db"
	"askverba.app/server/internal/globaltime"
)

type fakeStore struct {
	catalog []db.Achievement
	rows    map[string]db.UserAchievement
	stats   db.UserStats
	saves   int
	seeded  []db.Achievement
}

func newFakeStore(catalog ...db.Achievement) *fakeStore {
	return &fakeStore{catalog: catalog, rows: make(map[string]db.UserAchievement)}
}

func (f *fakeStore) ListAchievements(context.Context) ([]db.Achievement, error) {
	return f.catalog, nil
}

func (f *fakeStore) GetAchievement(_ context.Context, id string) (*db.Achievement, error) {
	for _, a := range f.catalog {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, db.ErrNoRows
}

func (f *fakeStore) ListUserAchievements(_ context.Context, userID string) ([]db.UserAchievement, error) {
	var out []db.UserAchievement
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) GetUserAchievement(_ context.Context, userID, achievementID string) (*db.UserAchievement, error) {
	row, ok := f.rows[userID+"/"+achievementID]
	if !ok {
		return nil, db.ErrNoRows
	}
	return &row, nil
}

func (f *fakeStore) SaveUserAchievement(_ context.Context, row *db.UserAchievement) error {
	f.saves++
	f.rows[row.UserID+"/"+row.AchievementID] = *row
	return nil
}

func (f *fakeStore) QueryUserStats(context.Context, string) (*db.UserStats, error) {
	stats := f.stats
	return &stats, nil
}

func (f *fakeStore) UpsertAchievements(_ context.Context, rows []db.Achievement) error {
	f.seeded = rows
	return nil
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestApplyUpdateClampsProgress(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	row := &db.UserAchievement{}

	ApplyUpdate(row, Update{Progress: intPtr(150)}, now)
	if row.Progress != 100 {
		t.Fatalf("expected progress clamped to 100, got %d", row.Progress)
	}
	if row.IsUnlocked || row.UnlockedAt != nil {
		t.Fatalf("progress alone must not unlock: %+v", row)
	}

	ApplyUpdate(row, Update{Progress: intPtr(-5)}, now)
	if row.Progress != 0 {
		t.Fatalf("expected progress clamped to 0, got %d", row.Progress)
	}
}

func TestApplyUpdateUnlockTransitions(t *testing.T) {
	t.Parallel()

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)
	row := &db.UserAchievement{}

	ApplyUpdate(row, Update{IsUnlocked: boolPtr(true)}, first)
	if !row.IsUnlocked || row.UnlockedAt == nil || !row.UnlockedAt.Equal(first) {
		t.Fatalf("expected unlock stamped at %v, got %+v", first, row.UnlockedAt)
	}

	ApplyUpdate(row, Update{IsUnlocked: boolPtr(true), Progress: intPtr(80)}, later)
	if !row.UnlockedAt.Equal(first) {
		t.Fatalf("unlocked_at must not move on repeated unlock, got %v", row.UnlockedAt)
	}

	ApplyUpdate(row, Update{IsUnlocked: boolPtr(false)}, later)
	if row.IsUnlocked || row.UnlockedAt != nil {
		t.Fatalf("relock should clear unlocked_at: %+v", row)
	}
}

func TestProgressFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value     int64
		threshold int
		want      int
	}{
		{0, 10, 0},
		{3, 10, 30},
		{10, 10, 100},
		{25, 10, 100},
		{1, 3, 33},
		{5, 0, 100},
	}
	for _, tc := range cases {
		if got := ProgressFor(tc.value, tc.threshold); got != tc.want {
			t.Fatalf("ProgressFor(%d, %d) = %d, want %d", tc.value, tc.threshold, got, tc.want)
		}
	}
}

func TestUpdateCreatesRowAndRejectsUnknownAchievement(t *testing.T) {
	globaltime.SetMockTime(time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC))
	t.Cleanup(globaltime.ResetTime)

	store := newFakeStore(db.Achievement{ID: "a1", Slug: "first-word", Metric: MetricVocabulary, Threshold: 1})
	svc := NewService(store, zerolog.Nop())
	ctx := context.Background()

	row, err := svc.Update(ctx, "user-1", "a1", Update{Progress: intPtr(100)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if row.Progress != 100 || row.IsUnlocked || row.UnlockedAt != nil {
		t.Fatalf("unexpected row: %+v", row)
	}
	if _, ok := store.rows["user-1/a1"]; !ok {
		t.Fatal("expected row to be saved")
	}

	if _, err := svc.Update(ctx, "user-1", "missing", Update{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRefreshUnlocksReachedThresholds(t *testing.T) {
	globaltime.SetMockTime(time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC))
	t.Cleanup(globaltime.ResetTime)

	store := newFakeStore(
		db.Achievement{ID: "a1", Slug: "first-translation", Metric: MetricTranslations, Threshold: 1},
		db.Achievement{ID: "a2", Slug: "translator-50", Metric: MetricTranslations, Threshold: 50},
		db.Achievement{ID: "a3", Slug: "mastered-10", Metric: MetricMastered, Threshold: 10},
	)
	store.stats = db.UserStats{Translations: 5, VocabularyMastered: 0}
	svc := NewService(store, zerolog.Nop())
	ctx := context.Background()

	entries, err := svc.Refresh(ctx, "user-1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !entries[0].IsUnlocked || entries[0].Progress != 100 || entries[0].UnlockedAt == nil {
		t.Fatalf("first translation should unlock: %+v", entries[0])
	}
	if entries[1].IsUnlocked || entries[1].Progress != 10 {
		t.Fatalf("translator-50 should be at 10%%: %+v", entries[1])
	}
	if entries[2].IsUnlocked || entries[2].Progress != 0 {
		t.Fatalf("mastered-10 should be untouched: %+v", entries[2])
	}

	saves := store.saves
	if _, err := svc.Refresh(ctx, "user-1"); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if store.saves != saves {
		t.Fatalf("unchanged refresh should not write, saves went %d -> %d", saves, store.saves)
	}

	store.stats.Translations = 0
	entries, err = svc.Refresh(ctx, "user-1")
	if err != nil {
		t.Fatalf("third refresh: %v", err)
	}
	if !entries[0].IsUnlocked {
		t.Fatal("unlocked achievement must stay unlocked when the count drops")
	}
}

func TestListForUserMergesCatalog(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		db.Achievement{ID: "a1", Slug: "first-word"},
		db.Achievement{ID: "a2", Slug: "vocabulary-100"},
	)
	store.rows["user-1/a2"] = db.UserAchievement{UserID: "user-1", AchievementID: "a2", Progress: 40}
	svc := NewService(store, zerolog.Nop())

	entries, err := svc.ListForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Progress != 0 || entries[1].Progress != 40 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestProgressSummary(t *testing.T) {
	t.Parallel()

	store := newFakeStore(db.Achievement{ID: "a1"}, db.Achievement{ID: "a2"})
	store.stats = db.UserStats{PracticeAnswers: 8, PracticeCorrect: 6, Translations: 12}
	svc := NewService(store, zerolog.Nop())

	summary, err := svc.Progress(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if summary.Accuracy != 75 || summary.AchievementsTotal != 2 || summary.Stats.Translations != 12 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestSeedCatalogAssignsSortOrder(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	n, err := SeedCatalog(context.Background(), store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != len(Catalog) || len(store.seeded) != len(Catalog) {
		t.Fatalf("expected %d seeded rows, got %d", len(Catalog), len(store.seeded))
	}
	seen := make(map[string]bool)
	for i, row := range store.seeded {
		if row.SortOrder != i {
			t.Fatalf("row %s has sort order %d, want %d", row.Slug, row.SortOrder, i)
		}
		if _, ok := MetricValue(db.UserStats{}, row.Metric); !ok {
			t.Fatalf("row %s uses unknown metric %q", row.Slug, row.Metric)
		}
		if seen[row.Slug] {
			t.Fatalf("duplicate slug %s", row.Slug)
		}
		seen[row.Slug] = true
	}
	if Catalog[1].SortOrder != 0 {
		t.Fatal("seeding must not mutate the package catalog")
	}
}
