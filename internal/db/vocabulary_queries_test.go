package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vocabularyItemID = "2c7d9e1f-4a3b-4c5d-9e8f-7a6b5c4d3e2f"

// serverError carries a SQLSTATE the way the driver's error type does.
type serverError struct {
	Code    string
	Message string
}

func (e *serverError) Error() string { return e.Message }

func vocabularyColumns() []string {
	return []string{"id", "user_id", "word", "translation", "category", "difficulty", "status", "review_count", "correct_streak"}
}

func TestCreateVocabularyItemDuplicateWord(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectQuery(`INSERT INTO "vocabulary_items"`).
		WillReturnError(&serverError{Code: "23505", Message: `duplicate key value violates unique constraint "idx_vocabulary_user_word"`})

	err := pool.CreateVocabularyItem(context.Background(), &VocabularyItem{UserID: historyOwnerID, Word: "Apple"})

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateVocabularyItemWrapsOtherErrors(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectQuery(`INSERT INTO "vocabulary_items"`).
		WillReturnError(errors.New("connection reset"))

	item := &VocabularyItem{UserID: historyOwnerID, Word: "Apple"}
	err := pool.CreateVocabularyItem(context.Background(), item)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "insert vocabulary item")
	assert.NotEmpty(t, item.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVocabularyItemScopedToOwner(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectQuery(`SELECT \* FROM "vocabulary_items" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(vocabularyItemID, historyOwnerID, 1).
		WillReturnRows(sqlmock.NewRows(vocabularyColumns()).
			AddRow(vocabularyItemID, historyOwnerID, "apple", "quả táo", "noun", "beginner", "learning", 4, 2))
	mock.ExpectQuery(`SELECT \* FROM "vocabulary_items" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(vocabularyItemID, historyOtherID, 1).
		WillReturnRows(sqlmock.NewRows(vocabularyColumns()))

	item, err := pool.GetVocabularyItem(context.Background(), historyOwnerID, vocabularyItemID)
	require.NoError(t, err)
	assert.Equal(t, "apple", item.Word)
	assert.Equal(t, 2, item.CorrectStreak)

	_, err = pool.GetVocabularyItem(context.Background(), historyOtherID, vocabularyItemID)
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = pool.GetVocabularyItem(context.Background(), historyOwnerID, "apple")
	assert.ErrorIs(t, err, ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteVocabularyItemForeignItem(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectExec(`DELETE FROM "vocabulary_items" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(vocabularyItemID, historyOtherID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := pool.DeleteVocabularyItem(context.Background(), historyOtherID, vocabularyItemID)

	assert.ErrorIs(t, err, ErrNoRows)
	assert.ErrorIs(t, pool.DeleteVocabularyItem(context.Background(), historyOwnerID, ""), ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVocabularyAppliesFilters(t *testing.T) {
	pool, mock := newMockPool(t)
	pattern := `%a\_b%`

	mock.ExpectQuery(`SELECT count\(\*\) FROM "vocabulary_items" WHERE user_id = \$1 AND status = \$2 AND category = \$3 AND \(+word ILIKE \$4 OR translation ILIKE \$5\)+`).
		WithArgs(historyOwnerID, "learning", "noun", pattern, pattern).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT \* FROM "vocabulary_items" WHERE .* ORDER BY created_at DESC LIMIT \$6`).
		WithArgs(historyOwnerID, "learning", "noun", pattern, pattern, 20).
		WillReturnRows(sqlmock.NewRows(vocabularyColumns()).
			AddRow(vocabularyItemID, historyOwnerID, "a_b", "", "noun", "beginner", "learning", 1, 1))

	items, total, err := pool.ListVocabulary(context.Background(), historyOwnerID, VocabularyFilter{
		Status:   "learning",
		Category: "noun",
		Query:    "a_b",
		Limit:    20,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "a_b", items[0].Word)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistingVocabularyWordsLowercases(t *testing.T) {
	pool, mock := newMockPool(t)

	mock.ExpectQuery(`SELECT lower\(word\) FROM "vocabulary_items" WHERE user_id = \$1 AND lower\(word\) IN \(\$2,\$3\)`).
		WithArgs(historyOwnerID, "forecast", "drizzle").
		WillReturnRows(sqlmock.NewRows([]string{"lower"}).AddRow("forecast"))

	found, err := pool.ExistingVocabularyWords(context.Background(), historyOwnerID, []string{" Forecast", "DRIZZLE"})

	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"forecast": true}, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistingVocabularyWordsEmptyInput(t *testing.T) {
	pool, mock := newMockPool(t)

	found, err := pool.ExistingVocabularyWords(context.Background(), historyOwnerID, nil)

	require.NoError(t, err)
	assert.Empty(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
