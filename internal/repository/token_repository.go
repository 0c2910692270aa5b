package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/forgefinance/nft-marketplace/internal/model"
)

// TokenRepo provides data access for minted tokens. Token numbers are
// assigned from the owning collection's next_token_no counter, which is
// claimed under a row lock so that numbers are monotonic and never
// reused even when mints race. Tokens are never deleted.
type TokenRepo struct {
	db *sql.DB
}

// NewTokenRepo returns a new TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// DB exposes the underlying connection pool for callers that need to
// open their own transactions spanning multiple repositories.
func (r *TokenRepo) DB() *sql.DB { return r.db }

// Mint creates a single token owned by ownerID carrying the given
// metadata reference and returns its token number. It is equivalent to
// MintBatch with count 1.
func (r *TokenRepo) Mint(ctx context.Context, collectionID, ownerID uint64, uri string) (uint64, error) {
	nos, err := r.MintBatch(ctx, collectionID, ownerID, uri, 1)
	if err != nil {
		return 0, err
	}
	return nos[0], nil
}

// MintBatch mints count tokens sequentially to ownerID, each carrying the
// same metadata reference. The whole batch is a single transaction: all
// tokens are created or none are. It returns the assigned token numbers
// in ascending order. count must be positive; callers validate this at
// the API boundary, the check here is a final guard.
func (r *TokenRepo) MintBatch(ctx context.Context, collectionID, ownerID uint64, uri string, count int) ([]uint64, error) {
	if count <= 0 {
		return nil, errors.New("mint count must be positive")
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

	// Claim a contiguous range of token numbers under a row lock.
	var next uint64
	err = tx.QueryRowContext(ctx,
		`SELECT next_token_no FROM collections WHERE id = ? FOR UPDATE`,
		collectionID).Scan(&next)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE collections SET next_token_no = next_token_no + ? WHERE id = ?`,
		count, collectionID); err != nil {
		return nil, err
	}

	query := `INSERT INTO tokens (collection_id, token_no, owner_id, uri) VALUES `
	args := make([]interface{}, 0, count*4)
	nos := make([]uint64, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		no := next + uint64(i)
		args = append(args, collectionID, no, ownerID, uri)
		nos = append(nos, no)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return nos, nil
}

// Get fetches a token by collection and token number. It returns
// ErrTokenNotFound when the number was never minted in that collection.
func (r *TokenRepo) Get(ctx context.Context, collectionID, tokenNo uint64) (*model.Token, error) {
	const q = `SELECT id, collection_id, token_no, owner_id, uri, created_at, updated_at
	           FROM tokens WHERE collection_id = ? AND token_no = ?`
	var t model.Token
	err := r.db.QueryRowContext(ctx, q, collectionID, tokenNo).Scan(
		&t.ID, &t.CollectionID, &t.TokenNo, &t.OwnerID, &t.URI, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

// BalanceOf returns the number of tokens in a collection owned by the
// given account.
func (r *TokenRepo) BalanceOf(ctx context.Context, collectionID, ownerID uint64) (uint64, error) {
	const q = `SELECT COUNT(*) FROM tokens WHERE collection_id = ? AND owner_id = ?`
	var n uint64
	if err := r.db.QueryRowContext(ctx, q, collectionID, ownerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// TransferTx moves ownership of a token from fromID to toID within the
// provided transaction. The UPDATE is guarded by the current owner so a
// stale caller cannot move a token they no longer hold; zero rows
// affected means the token is missing or owned by someone else and is
// reported as ErrNotTokenOwner. The caller must commit or roll back.
func (r *TokenRepo) TransferTx(ctx context.Context, tx *sql.Tx, collectionID, tokenNo, fromID, toID uint64) error {
	const q = `UPDATE tokens SET owner_id = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE collection_id = ? AND token_no = ? AND owner_id = ?`
	res, err := tx.ExecContext(ctx, q, toID, collectionID, tokenNo, fromID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotTokenOwner
	}
	return nil
}
