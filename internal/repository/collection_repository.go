// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for token collections. A collection is
// an independently numbered token registry created on demand through the
// factory endpoint; repeated (name, symbol) pairs are allowed and produce
// distinct collections.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/forgefinance/nft-marketplace/internal/model"
)

// CollectionRepo encapsulates all database queries related to collections.
// It depends on a sql.DB connection which should be configured elsewhere.
type CollectionRepo struct {
	db *sql.DB
}

// NewCollectionRepo constructs a CollectionRepo with the provided DB handle.
// This function allows dependency injection of the database in tests and at
// startup. There is no initialization logic beyond assigning the field.
func NewCollectionRepo(db *sql.DB) *CollectionRepo {
	return &CollectionRepo{db: db}
}

// DB exposes the underlying connection pool for callers that need to
// open their own transactions spanning multiple repositories.
func (r *CollectionRepo) DB() *sql.DB { return r.db }

// Create inserts a new collection owned by creatorID. On success the
// collection's ID field will be populated with the auto-generated value.
// After the insert, a SELECT is executed to populate the NextTokenNo,
// CreatedAt and UpdatedAt fields so that callers receive a fully
// populated record.
func (r *CollectionRepo) Create(ctx context.Context, c *model.Collection) error {
	const qInsert = "INSERT INTO collections (creator_id, name, symbol) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, c.CreatorID, c.Name, c.Symbol)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	const qSelect = "SELECT creator_id, name, symbol, next_token_no, created_at, updated_at FROM collections WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, qSelect, c.ID).Scan(&c.CreatorID, &c.Name, &c.Symbol, &c.NextTokenNo, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}
	return nil
}

// GetByID fetches a collection by its ID regardless of creator. It returns
// ErrCollectionNotFound if no row is found.
func (r *CollectionRepo) GetByID(ctx context.Context, id uint64) (*model.Collection, error) {
	const q = "SELECT id, creator_id, name, symbol, next_token_no, created_at, updated_at FROM collections WHERE id = ?"
	var c model.Collection
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.CreatorID, &c.Name, &c.Symbol, &c.NextTokenNo, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByCreator returns all collections created by a specific account
// ordered by id. An empty slice is returned when the account has not
// created any collections.
func (r *CollectionRepo) ListByCreator(ctx context.Context, creatorID uint64) ([]*model.Collection, error) {
	const q = `SELECT id, creator_id, name, symbol, next_token_no, created_at, updated_at
	           FROM collections WHERE creator_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Collection, 0)
	for rows.Next() {
		c := new(model.Collection)
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Name, &c.Symbol, &c.NextTokenNo, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureDefault returns the ID of the creator's collection with the given
// name and symbol, creating it when missing. It is used at startup to
// provision the default collection, mirroring the NFT contract deployed
// alongside the marketplace.
func (r *CollectionRepo) EnsureDefault(ctx context.Context, creatorID uint64, name, symbol string) (uint64, error) {
	const q = "SELECT id FROM collections WHERE creator_id = ? AND name = ? AND symbol = ? ORDER BY id LIMIT 1"
	var id uint64
	err := r.db.QueryRowContext(ctx, q, creatorID, name, symbol).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	c := &model.Collection{CreatorID: creatorID, Name: name, Symbol: symbol}
	if err := r.Create(ctx, c); err != nil {
		return 0, err
	}
	return c.ID, nil
}
