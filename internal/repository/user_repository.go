package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/forgefinance/nft-marketplace/internal/model"
	"github.com/forgefinance/nft-marketplace/internal/utils"
)

// UserRepo encapsulates all database queries for account records.
// Accounts double as ledger addresses: tokens and market items
// reference users.id, and balances move between rows of the users
// table during a sale.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a new account and returns its ID. The initial balance
// is a faucet grant so freshly registered traders can exercise the
// purchase flow without an external funding step.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int, faucetUnits uint64) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, balance_units) VALUES (?,?,?,?)",
		email, hash, role, faucetUnits)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,balance_units,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.BalanceUnits, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,balance_units,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.BalanceUnits, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// EnsureAccount returns the ID of the account with the given email,
// creating it when missing. It is used at startup to provision the
// MARKET custody account and the OPERATOR account, the service's
// analogue of deploying the marketplace contract.
func (r *UserRepo) EnsureAccount(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	u, err := r.GetByEmail(ctx, email)
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	id, err := r.Create(ctx, email, password, role, cost, 0)
	if errors.Is(err, ErrEmailExists) {
		// Lost a race with a concurrent startup; read the winner.
		u, err = r.GetByEmail(ctx, email)
		if err != nil {
			return 0, err
		}
		return u.ID, nil
	}
	return id, err
}
