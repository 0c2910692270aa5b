package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/forgefinance/nft-marketplace/internal/model"
)

// MarketRepo implements the marketplace ledger: the mutable listing
// price, item creation (listing with escrow), item sale (payment and
// custody transfer) and the role-filtered query views. Every mutating
// method runs inside a single transaction so that a precondition
// failure leaves no partial effects: no token moved, no fee charged.
type MarketRepo struct {
	db     *sql.DB
	tokens *TokenRepo

	// marketAccountID is the custody account that holds escrowed tokens
	// between listing and sale. operatorID receives listing fees.
	marketAccountID uint64
	operatorID      uint64
}

// NewMarketRepo returns a MarketRepo bound to the given database. The
// two account IDs come from the startup bootstrap and must be non-zero.
func NewMarketRepo(db *sql.DB, tokens *TokenRepo, marketAccountID, operatorID uint64) *MarketRepo {
	if tokens == nil {
		panic("nil token repository passed to NewMarketRepo")
	}
	return &MarketRepo{db: db, tokens: tokens, marketAccountID: marketAccountID, operatorID: operatorID}
}

// MarketAccountID returns the custody account id.
func (r *MarketRepo) MarketAccountID() uint64 { return r.marketAccountID }

// GetListingPrice reads the marketplace-wide fee required to list an item.
func (r *MarketRepo) GetListingPrice(ctx context.Context) (uint64, error) {
	const q = `SELECT listing_price_units FROM market_config WHERE id = 1`
	var p uint64
	if err := r.db.QueryRowContext(ctx, q).Scan(&p); err != nil {
		return 0, err
	}
	return p, nil
}

// UpdateListingPrice sets the marketplace-wide listing fee. Role
// enforcement (OPERATOR only) happens at the routing layer; the
// repository applies whatever value it is given.
func (r *MarketRepo) UpdateListingPrice(ctx context.Context, price uint64) error {
	const q = `UPDATE market_config SET listing_price_units = ? WHERE id = 1`
	_, err := r.db.ExecContext(ctx, q, price)
	return err
}

// EnsureListingPrice inserts the config row with the default fee when it
// does not exist yet. Called once at startup.
func (r *MarketRepo) EnsureListingPrice(ctx context.Context, defaultPrice uint64) error {
	const q = `INSERT IGNORE INTO market_config (id, listing_price_units) VALUES (1, ?)`
	_, err := r.db.ExecContext(ctx, q, defaultPrice)
	return err
}

// CreateItem lists a token on the marketplace: custody of the token
// moves from the seller to the market account and a new unsold item row
// is recorded. Preconditions checked inside the transaction:
// the collection token must exist and be owned by the seller (a token
// already in escrow is owned by the market account and fails the same
// check). price must be positive; handlers validate that before calling,
// the guard here is final.
func (r *MarketRepo) CreateItem(ctx context.Context, collectionID, tokenNo, sellerID, price uint64, category, editions uint32) (*model.MarketItem, error) {
	if price == 0 {
		return nil, errors.New("price must be positive")
	}
	if editions == 0 {
		editions = 1
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Escrow: guarded transfer fails with ErrNotTokenOwner when the
	// seller does not hold the token. Distinguish a missing token first
	// so the API can report 404 instead of 403.
	var ownerID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT owner_id FROM tokens WHERE collection_id = ? AND token_no = ? FOR UPDATE`,
		collectionID, tokenNo).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if ownerID != sellerID {
		return nil, ErrNotTokenOwner
	}
	if err = r.tokens.TransferTx(ctx, tx, collectionID, tokenNo, sellerID, r.marketAccountID); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO market_items (collection_id, token_no, seller_id, price_units, category, editions) VALUES (?, ?, ?, ?, ?, ?)`,
		collectionID, tokenNo, sellerID, price, category, editions)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	item := &model.MarketItem{ID: uint64(id)}
	const sel = `SELECT collection_id, token_no, seller_id, owner_id, price_units, category, editions, sold, created_at, updated_at
	             FROM market_items WHERE id = ?`
	var owner sql.NullInt64
	err = tx.QueryRowContext(ctx, sel, item.ID).Scan(
		&item.CollectionID, &item.TokenNo, &item.SellerID, &owner,
		&item.PriceUnits, &item.Category, &item.Editions, &item.Sold,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if owner.Valid {
		o := uint64(owner.Int64)
		item.OwnerID = &o
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return item, nil
}

// Sale finalizes a listing: the buyer pays exactly the listed price, the
// seller is credited the price minus the listing fee, the operator is
// credited the fee, and custody of the token moves from the market
// account to the buyer. The item row is locked for the duration of the
// transaction so a concurrent purchase of the same item observes
// sold=true and fails with ErrAlreadySold.
func (r *MarketRepo) Sale(ctx context.Context, itemID, buyerID, payment uint64) (*model.MarketItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	item := &model.MarketItem{ID: itemID}
	var sold bool
	err = tx.QueryRowContext(ctx,
		`SELECT collection_id, token_no, seller_id, price_units, category, editions, sold
		 FROM market_items WHERE id = ? FOR UPDATE`,
		itemID).Scan(&item.CollectionID, &item.TokenNo, &item.SellerID,
		&item.PriceUnits, &item.Category, &item.Editions, &sold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if sold {
		return nil, ErrAlreadySold
	}
	if payment != item.PriceUnits {
		return nil, ErrPaymentMismatch
	}

	fee, err := r.listingFeeTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	// The fee comes out of the seller's proceeds and can never exceed them.
	if fee > item.PriceUnits {
		fee = item.PriceUnits
	}

	// Debit the buyer. The balance guard in the WHERE clause makes the
	// debit and the sufficiency check one atomic statement.
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET balance_units = balance_units - ? WHERE id = ? AND balance_units >= ?`,
		payment, buyerID, payment)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrInsufficientFunds
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET balance_units = balance_units + ? WHERE id = ?`,
		payment-fee, item.SellerID); err != nil {
		return nil, err
	}
	if fee > 0 {
		if _, err = tx.ExecContext(ctx,
			`UPDATE users SET balance_units = balance_units + ? WHERE id = ?`,
			fee, r.operatorID); err != nil {
			return nil, err
		}
	}

	if err = r.tokens.TransferTx(ctx, tx, item.CollectionID, item.TokenNo, r.marketAccountID, buyerID); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE market_items SET sold = 1, owner_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		buyerID, itemID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	item.Sold = true
	item.OwnerID = &buyerID
	return item, nil
}

// listingFeeTx reads the current listing fee inside the sale transaction
// so that a concurrent fee update cannot split the debit and credits.
func (r *MarketRepo) listingFeeTx(ctx context.Context, tx *sql.Tx) (uint64, error) {
	var fee uint64
	err := tx.QueryRowContext(ctx, `SELECT listing_price_units FROM market_config WHERE id = 1`).Scan(&fee)
	return fee, err
}

// TransferToken moves the token behind a sold item to another account.
// Only the current owner of record of the underlying token may invoke
// it, and only after the sale has finalized; transferring out of escrow
// would break the custody invariant and is rejected with ErrForbidden.
func (r *MarketRepo) TransferToken(ctx context.Context, itemID, callerID, toID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		collectionID uint64
		tokenNo      uint64
		sold         bool
	)
	err = tx.QueryRowContext(ctx,
		`SELECT collection_id, token_no, sold FROM market_items WHERE id = ? FOR UPDATE`,
		itemID).Scan(&collectionID, &tokenNo, &sold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrItemNotFound
		}
		return err
	}
	if !sold {
		return ErrForbidden
	}

	// The FK on tokens.owner_id would catch a bogus destination too, but
	// a deliberate check yields a 404 instead of a constraint error.
	var exists uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, toID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	if err = r.tokens.TransferTx(ctx, tx, collectionID, tokenNo, callerID, toID); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const itemColumns = `id, collection_id, token_no, seller_id, owner_id, price_units, category, editions, sold, created_at, updated_at`

// FetchMarketItems returns all unsold items ordered by id. Sold items
// remain reachable through FetchOwned and FetchCreated. The scan is
// unpaginated; acceptable at this scale.
func (r *MarketRepo) FetchMarketItems(ctx context.Context) ([]*model.MarketItem, error) {
	const q = `SELECT ` + itemColumns + ` FROM market_items WHERE sold = 0 ORDER BY id`
	return r.queryItems(ctx, q)
}

// FetchOwned returns items currently owned by the given account, i.e.
// listings the account has purchased.
func (r *MarketRepo) FetchOwned(ctx context.Context, userID uint64) ([]*model.MarketItem, error) {
	const q = `SELECT ` + itemColumns + ` FROM market_items WHERE owner_id = ? ORDER BY id`
	return r.queryItems(ctx, q, userID)
}

// FetchCreated returns items where the given account is the recorded
// seller, sold or not.
func (r *MarketRepo) FetchCreated(ctx context.Context, userID uint64) ([]*model.MarketItem, error) {
	const q = `SELECT ` + itemColumns + ` FROM market_items WHERE seller_id = ? ORDER BY id`
	return r.queryItems(ctx, q, userID)
}

func (r *MarketRepo) queryItems(ctx context.Context, q string, args ...interface{}) ([]*model.MarketItem, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.MarketItem, 0)
	for rows.Next() {
		item := new(model.MarketItem)
		var owner sql.NullInt64
		if err := rows.Scan(&item.ID, &item.CollectionID, &item.TokenNo, &item.SellerID, &owner,
			&item.PriceUnits, &item.Category, &item.Editions, &item.Sold,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if owner.Valid {
			o := uint64(owner.Int64)
			item.OwnerID = &o
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
