package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newTokenRepo(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func TestMintBatchAssignsSequentialNumbers(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT next_token_no FROM collections`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"next_token_no"}).AddRow(5))
	mock.ExpectExec(`UPDATE collections SET next_token_no`).
		WithArgs(3, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO tokens`).
		WithArgs(
			uint64(3), uint64(5), uint64(10), "ipfs://meta",
			uint64(3), uint64(6), uint64(10), "ipfs://meta",
			uint64(3), uint64(7), uint64(10), "ipfs://meta",
		).
		WillReturnResult(sqlmock.NewResult(1, 3))
	mock.ExpectCommit()

	nos, err := repo.MintBatch(context.Background(), 3, 10, "ipfs://meta", 3)
	require.NoError(t, err)
	require.Equal(t, []uint64{5, 6, 7}, nos)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMintBatchRejectsNonPositiveCount(t *testing.T) {
	repo, _ := newTokenRepo(t)

	for _, count := range []int{0, -1} {
		_, err := repo.MintBatch(context.Background(), 3, 10, "ipfs://meta", count)
		require.Error(t, err)
	}
}

func TestMintBatchUnknownCollection(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT next_token_no FROM collections`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.MintBatch(context.Background(), 99, 10, "ipfs://meta", 1)
	require.ErrorIs(t, err, ErrCollectionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnknownToken(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectQuery(`FROM tokens WHERE collection_id = \? AND token_no = \?`).
		WithArgs(uint64(3), uint64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 3, 404)
	require.ErrorIs(t, err, ErrTokenNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReturnsOwnerAndURI(t *testing.T) {
	repo, mock := newTokenRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM tokens WHERE collection_id = \? AND token_no = \?`).
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "collection_id", "token_no", "owner_id", "uri", "created_at", "updated_at",
		}).AddRow(42, 3, 7, 10, "ipfs://meta", now, now))

	tok, err := repo.Get(context.Background(), 3, 7)
	require.NoError(t, err)
	require.Equal(t, uint64(10), tok.OwnerID)
	require.Equal(t, "ipfs://meta", tok.URI)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceOf(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tokens`).
		WithArgs(uint64(3), uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.BalanceOf(context.Background(), 3, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(4), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferTxGuardedByOwner(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tokens SET owner_id`).
		WithArgs(uint64(30), uint64(3), uint64(7), uint64(20)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.TransferTx(context.Background(), tx, 3, 7, 20, 30)
	require.ErrorIs(t, err, ErrNotTokenOwner)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
