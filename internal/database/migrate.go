package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the idempotent DDL for the marketplace. Statements run in
// order at startup; CREATE TABLE IF NOT EXISTS keeps restarts cheap and
// avoids an external migration tool for a schema this small.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'TRADER',
		balance_units BIGINT UNSIGNED NOT NULL DEFAULT 0,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS collections (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		creator_id BIGINT UNSIGNED NOT NULL,
		name VARCHAR(255) NOT NULL,
		symbol VARCHAR(32) NOT NULL,
		next_token_no BIGINT UNSIGNED NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_collections_creator (creator_id),
		CONSTRAINT fk_collections_creator FOREIGN KEY (creator_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		collection_id BIGINT UNSIGNED NOT NULL,
		token_no BIGINT UNSIGNED NOT NULL,
		owner_id BIGINT UNSIGNED NOT NULL,
		uri VARCHAR(512) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_tokens_collection_no (collection_id, token_no),
		KEY idx_tokens_owner (owner_id),
		CONSTRAINT fk_tokens_collection FOREIGN KEY (collection_id) REFERENCES collections (id),
		CONSTRAINT fk_tokens_owner FOREIGN KEY (owner_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS market_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		collection_id BIGINT UNSIGNED NOT NULL,
		token_no BIGINT UNSIGNED NOT NULL,
		seller_id BIGINT UNSIGNED NOT NULL,
		owner_id BIGINT UNSIGNED NULL,
		price_units BIGINT UNSIGNED NOT NULL,
		category INT UNSIGNED NOT NULL DEFAULT 0,
		editions INT UNSIGNED NOT NULL DEFAULT 1,
		sold TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_market_items_seller (seller_id),
		KEY idx_market_items_owner (owner_id),
		KEY idx_market_items_sold (sold),
		CONSTRAINT fk_market_items_collection FOREIGN KEY (collection_id) REFERENCES collections (id),
		CONSTRAINT fk_market_items_seller FOREIGN KEY (seller_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS market_config (
		id TINYINT UNSIGNED NOT NULL,
		listing_price_units BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema statements in order. Any failure is fatal
// for the caller; there is nothing to retry at this layer.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
