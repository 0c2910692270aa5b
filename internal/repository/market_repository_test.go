package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const (
	testMarketAccount = uint64(1)
	testOperator      = uint64(2)
)

func newMarketRepo(t *testing.T) (*MarketRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMarketRepo(db, NewTokenRepo(db), testMarketAccount, testOperator), mock
}

func TestGetListingPrice(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectQuery(`SELECT listing_price_units FROM market_config`).
		WillReturnRows(sqlmock.NewRows([]string{"listing_price_units"}).AddRow(25))

	price, err := repo.GetListingPrice(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(25), price)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateListingPrice(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectExec(`UPDATE market_config SET listing_price_units`).
		WithArgs(uint64(40)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateListingPrice(context.Background(), 40))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItemEscrowsToken(t *testing.T) {
	repo, mock := newMarketRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM tokens`).
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(10))
	mock.ExpectExec(`UPDATE tokens SET owner_id`).
		WithArgs(testMarketAccount, uint64(3), uint64(7), uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO market_items`).
		WithArgs(uint64(3), uint64(7), uint64(10), uint64(500), uint32(0), uint32(1)).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(`SELECT collection_id, token_no, seller_id, owner_id, price_units`).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{
			"collection_id", "token_no", "seller_id", "owner_id",
			"price_units", "category", "editions", "sold", "created_at", "updated_at",
		}).AddRow(3, 7, 10, nil, 500, 0, 1, false, now, now))
	mock.ExpectCommit()

	item, err := repo.CreateItem(context.Background(), 3, 7, 10, 500, 0, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(12), item.ID)
	require.Equal(t, uint64(10), item.SellerID)
	require.False(t, item.Sold)
	require.Nil(t, item.OwnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItemRejectsNonOwner(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM tokens`).
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(99))
	mock.ExpectRollback()

	_, err := repo.CreateItem(context.Background(), 3, 7, 10, 500, 0, 1)
	require.ErrorIs(t, err, ErrNotTokenOwner)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItemUnknownToken(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM tokens`).
		WithArgs(uint64(3), uint64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.CreateItem(context.Background(), 3, 404, 10, 500, 0, 1)
	require.ErrorIs(t, err, ErrTokenNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func saleItemRows(price uint64, sold bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"collection_id", "token_no", "seller_id", "price_units", "category", "editions", "sold",
	}).AddRow(3, 7, 10, price, 0, 1, sold)
}

func TestSaleSettlesBalancesAndCustody(t *testing.T) {
	repo, mock := newMarketRepo(t)

	const (
		itemID  = uint64(12)
		buyerID = uint64(20)
		price   = uint64(500)
		fee     = uint64(25)
	)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM market_items WHERE id = \? FOR UPDATE`).
		WithArgs(itemID).
		WillReturnRows(saleItemRows(price, false))
	mock.ExpectQuery(`SELECT listing_price_units FROM market_config`).
		WillReturnRows(sqlmock.NewRows([]string{"listing_price_units"}).AddRow(fee))
	// buyer pays the full price
	mock.ExpectExec(`UPDATE users SET balance_units = balance_units - \?`).
		WithArgs(price, buyerID, price).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// seller receives price minus fee
	mock.ExpectExec(`UPDATE users SET balance_units = balance_units \+ \?`).
		WithArgs(price-fee, uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// operator receives the fee
	mock.ExpectExec(`UPDATE users SET balance_units = balance_units \+ \?`).
		WithArgs(fee, testOperator).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// custody moves from the market account to the buyer
	mock.ExpectExec(`UPDATE tokens SET owner_id`).
		WithArgs(buyerID, uint64(3), uint64(7), testMarketAccount).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE market_items SET sold = 1`).
		WithArgs(buyerID, itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item, err := repo.Sale(context.Background(), itemID, buyerID, price)
	require.NoError(t, err)
	require.True(t, item.Sold)
	require.NotNil(t, item.OwnerID)
	require.Equal(t, buyerID, *item.OwnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleUnknownItem(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM market_items WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Sale(context.Background(), 99, 20, 500)
	require.ErrorIs(t, err, ErrItemNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleAlreadySold(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM market_items WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(12)).
		WillReturnRows(saleItemRows(500, true))
	mock.ExpectRollback()

	_, err := repo.Sale(context.Background(), 12, 20, 500)
	require.ErrorIs(t, err, ErrAlreadySold)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSalePaymentMustEqualPrice(t *testing.T) {
	repo, mock := newMarketRepo(t)

	for _, payment := range []uint64{499, 501, 0} {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM market_items WHERE id = \? FOR UPDATE`).
			WithArgs(uint64(12)).
			WillReturnRows(saleItemRows(500, false))
		mock.ExpectRollback()

		_, err := repo.Sale(context.Background(), 12, 20, payment)
		require.ErrorIs(t, err, ErrPaymentMismatch, "payment=%d", payment)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleInsufficientFunds(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM market_items WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(12)).
		WillReturnRows(saleItemRows(500, false))
	mock.ExpectQuery(`SELECT listing_price_units FROM market_config`).
		WillReturnRows(sqlmock.NewRows([]string{"listing_price_units"}).AddRow(25))
	mock.ExpectExec(`UPDATE users SET balance_units = balance_units - \?`).
		WithArgs(uint64(500), uint64(20), uint64(500)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Sale(context.Background(), 12, 20, 500)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleFeeCappedAtPrice(t *testing.T) {
	repo, mock := newMarketRepo(t)

	// fee exceeds the price; the seller nets zero and the operator
	// receives exactly the price.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM market_items WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(12)).
		WillReturnRows(saleItemRows(10, false))
	mock.ExpectQuery(`SELECT listing_price_units FROM market_config`).
		WillReturnRows(sqlmock.NewRows([]string{"listing_price_units"}).AddRow(100))
	mock.ExpectExec(`UPDATE users SET balance_units = balance_units - \?`).
		WithArgs(uint64(10), uint64(20), uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET balance_units = balance_units \+ \?`).
		WithArgs(uint64(0), uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET balance_units = balance_units \+ \?`).
		WithArgs(uint64(10), testOperator).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tokens SET owner_id`).
		WithArgs(uint64(20), uint64(3), uint64(7), testMarketAccount).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE market_items SET sold = 1`).
		WithArgs(uint64(20), uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.Sale(context.Background(), 12, 20, 10)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferTokenRequiresSold(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT collection_id, token_no, sold FROM market_items`).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"collection_id", "token_no", "sold"}).AddRow(3, 7, false))
	mock.ExpectRollback()

	err := repo.TransferToken(context.Background(), 12, 20, 30)
	require.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferTokenMovesOwnership(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT collection_id, token_no, sold FROM market_items`).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"collection_id", "token_no", "sold"}).AddRow(3, 7, true))
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \?`).
		WithArgs(uint64(30)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(30))
	mock.ExpectExec(`UPDATE tokens SET owner_id`).
		WithArgs(uint64(30), uint64(3), uint64(7), uint64(20)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.TransferToken(context.Background(), 12, 20, 30))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferTokenUnknownDestination(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT collection_id, token_no, sold FROM market_items`).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"collection_id", "token_no", "sold"}).AddRow(3, 7, true))
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \?`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.TransferToken(context.Background(), 12, 20, 99)
	require.ErrorIs(t, err, ErrAccountNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchMarketItemsReturnsUnsold(t *testing.T) {
	repo, mock := newMarketRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM market_items WHERE sold = 0`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "collection_id", "token_no", "seller_id", "owner_id",
			"price_units", "category", "editions", "sold", "created_at", "updated_at",
		}).
			AddRow(1, 3, 7, 10, nil, 500, 0, 1, false, now, now).
			AddRow(2, 3, 8, 11, nil, 900, 2, 1, false, now, now))

	items, err := repo.FetchMarketItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Nil(t, items[0].OwnerID)
	require.Equal(t, uint64(900), items[1].PriceUnits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchOwnedEmpty(t *testing.T) {
	repo, mock := newMarketRepo(t)

	mock.ExpectQuery(`FROM market_items WHERE owner_id = \?`).
		WithArgs(uint64(20)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "collection_id", "token_no", "seller_id", "owner_id",
			"price_units", "category", "editions", "sold", "created_at", "updated_at",
		}))

	items, err := repo.FetchOwned(context.Background(), 20)
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}
