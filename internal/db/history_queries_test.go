package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	historyEntryID = "6b1f3c9e-2d4a-4f7b-9a61-0e5c8d2b7f30"
	historyOwnerID = "0d9e8f1a-3b2c-4d5e-8f70-1a2b3c4d5e6f"
	historyOtherID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

func historyColumns() []string {
	return []string{"id", "user_id", "text", "mode", "source_lang", "target_lang", "result", "is_favorite", "created_at", "updated_at"}
}

func TestGetHistoryEntryRejectsMalformedID(t *testing.T) {
	pool, mock := newMockPool(t)

	_, err := pool.GetHistoryEntry(context.Background(), historyOwnerID, "not-a-uuid")

	assert.ErrorIs(t, err, ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHistoryEntryScopedToOwner(t *testing.T) {
	pool, mock := newMockPool(t)
	created := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "translation_history" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(historyEntryID, historyOwnerID, 1).
		WillReturnRows(sqlmock.NewRows(historyColumns()).
			AddRow(historyEntryID, historyOwnerID, "hello", "simple", "en", "vi", []byte(`{"mode":"simple","translation":"xin chào"}`), true, created, created))
	mock.ExpectQuery(`SELECT \* FROM "translation_history" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(historyEntryID, historyOtherID, 1).
		WillReturnRows(sqlmock.NewRows(historyColumns()))

	entry, err := pool.GetHistoryEntry(context.Background(), historyOwnerID, historyEntryID)
	require.NoError(t, err)
	assert.Equal(t, "hello", entry.Text)
	assert.True(t, entry.IsFavorite)
	assert.JSONEq(t, `{"mode":"simple","translation":"xin chào"}`, string(entry.Result))

	_, err = pool.GetHistoryEntry(context.Background(), historyOtherID, historyEntryID)
	assert.ErrorIs(t, err, ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHistoryAppliesFilters(t *testing.T) {
	pool, mock := newMockPool(t)
	created := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	pattern := `%50\%\_off%`

	mock.ExpectQuery(`SELECT count\(\*\) FROM "translation_history" WHERE user_id = \$1 AND mode = \$2 AND is_favorite AND text ILIKE \$3`).
		WithArgs(historyOwnerID, "detailed", pattern).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(21)))
	mock.ExpectQuery(`SELECT \* FROM "translation_history" WHERE user_id = \$1 AND mode = \$2 AND is_favorite AND text ILIKE \$3 ORDER BY created_at DESC LIMIT \$4 OFFSET \$5`).
		WithArgs(historyOwnerID, "detailed", pattern, 10, 20).
		WillReturnRows(sqlmock.NewRows(historyColumns()).
			AddRow(historyEntryID, historyOwnerID, "50%_off sale", "detailed", "en", "vi", []byte(`{}`), true, created, created))

	entries, total, err := pool.ListHistory(context.Background(), historyOwnerID, HistoryFilter{
		Mode:         "detailed",
		FavoriteOnly: true,
		Query:        " 50%_off ",
		Limit:        10,
		Offset:       20,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(21), total)
	require.Len(t, entries, 1)
	assert.Equal(t, historyEntryID, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHistoryWithoutFilters(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "translation_history" WHERE user_id = \$1`).
		WithArgs(historyOwnerID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`SELECT \* FROM "translation_history" WHERE user_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(historyOwnerID, 20).
		WillReturnRows(sqlmock.NewRows(historyColumns()))

	entries, total, err := pool.ListHistory(context.Background(), historyOwnerID, HistoryFilter{Limit: 20})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetHistoryFavorite(t *testing.T) {
	pool, mock := newMockPool(t)
	created := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "translation_history" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(historyEntryID, historyOwnerID, 1).
		WillReturnRows(sqlmock.NewRows(historyColumns()).
			AddRow(historyEntryID, historyOwnerID, "hello", "simple", "en", "vi", []byte(`{}`), false, created, created))
	mock.ExpectExec(`UPDATE "translation_history" SET "is_favorite"=\$1,"updated_at"=\$2 WHERE "id" = \$3`).
		WithArgs(true, sqlmock.AnyArg(), historyEntryID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry, err := pool.SetHistoryFavorite(context.Background(), historyOwnerID, historyEntryID, true)

	require.NoError(t, err)
	assert.True(t, entry.IsFavorite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetHistoryFavoriteForeignEntry(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectQuery(`SELECT \* FROM "translation_history" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(historyEntryID, historyOtherID, 1).
		WillReturnRows(sqlmock.NewRows(historyColumns()))

	_, err := pool.SetHistoryFavorite(context.Background(), historyOtherID, historyEntryID, true)

	assert.ErrorIs(t, err, ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteHistoryEntry(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectExec(`DELETE FROM "translation_history" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(historyEntryID, historyOwnerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "translation_history" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(historyEntryID, historyOtherID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, pool.DeleteHistoryEntry(context.Background(), historyOwnerID, historyEntryID))
	assert.ErrorIs(t, pool.DeleteHistoryEntry(context.Background(), historyOtherID, historyEntryID), ErrNoRows)
	assert.ErrorIs(t, pool.DeleteHistoryEntry(context.Background(), historyOwnerID, "42"), ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearHistoryReturnsDeletedCount(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectExec(`DELETE FROM "translation_history" WHERE user_id = \$1`).
		WithArgs(historyOwnerID).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := pool.ClearHistory(context.Background(), historyOwnerID)

	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
