package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/forgefinance/nft-marketplace/internal/model"
)

func newCollectionRepo(t *testing.T) (*CollectionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCollectionRepo(db), mock
}

func TestCreateCollectionPopulatesRecord(t *testing.T) {
	repo, mock := newCollectionRepo(t)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO collections`).
		WithArgs(uint64(10), "Art Drops", "ART").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery(`SELECT creator_id, name, symbol, next_token_no`).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{
			"creator_id", "name", "symbol", "next_token_no", "created_at", "updated_at",
		}).AddRow(10, "Art Drops", "ART", 1, now, now))

	c := &model.Collection{CreatorID: 10, Name: "Art Drops", Symbol: "ART"}
	require.NoError(t, repo.Create(context.Background(), c))
	require.Equal(t, uint64(4), c.ID)
	require.Equal(t, uint64(1), c.NextTokenNo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDUnknownCollection(t *testing.T) {
	repo, mock := newCollectionRepo(t)

	mock.ExpectQuery(`FROM collections WHERE id = \?`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrCollectionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByCreatorEmpty(t *testing.T) {
	repo, mock := newCollectionRepo(t)

	mock.ExpectQuery(`FROM collections WHERE creator_id = \?`).
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "creator_id", "name", "symbol", "next_token_no", "created_at", "updated_at",
		}))

	cols, err := repo.ListByCreator(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, cols)
	require.Empty(t, cols)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDefaultReturnsExisting(t *testing.T) {
	repo, mock := newCollectionRepo(t)

	mock.ExpectQuery(`SELECT id FROM collections WHERE creator_id = \? AND name = \? AND symbol = \?`).
		WithArgs(uint64(2), "Forge Finance Token", "FFT").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	id, err := repo.EnsureDefault(context.Background(), 2, "Forge Finance Token", "FFT")
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDefaultCreatesWhenMissing(t *testing.T) {
	repo, mock := newCollectionRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT id FROM collections WHERE creator_id = \? AND name = \? AND symbol = \?`).
		WithArgs(uint64(2), "Forge Finance Token", "FFT").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO collections`).
		WithArgs(uint64(2), "Forge Finance Token", "FFT").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT creator_id, name, symbol, next_token_no`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"creator_id", "name", "symbol", "next_token_no", "created_at", "updated_at",
		}).AddRow(2, "Forge Finance Token", "FFT", 1, now, now))

	id, err := repo.EnsureDefault(context.Background(), 2, "Forge Finance Token", "FFT")
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	require.NoError(t, mock.ExpectationsWereMet())
}
