package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool (for goose migrations and repositories).
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Account is the account-level row backing the realm/world player managers
// (C11): just enough to resolve a name to a stable id across processes. The
// login handshake that authenticates an account is out of scope.
type Account struct {
	ID   int64
	Name string
}

// GetOrCreateAccount resolves name to its account row, creating one on first
// sight (accounts appear implicitly once a character is associated with
// them — there is no separate registration step in scope here).
func (d *DB) GetOrCreateAccount(ctx context.Context, name string) (Account, error) {
	name = strings.ToLower(name)
	var acc Account
	err := d.pool.QueryRow(ctx,
		`SELECT account_id, name FROM accounts WHERE name = $1`, name,
	).Scan(&acc.ID, &acc.Name)
	if err == nil {
		return acc, nil
	}
	if err != pgx.ErrNoRows {
		return Account{}, fmt.Errorf("querying account %q: %w", name, err)
	}

	err = d.pool.QueryRow(ctx,
		`INSERT INTO accounts (name) VALUES ($1) RETURNING account_id, name`, name,
	).Scan(&acc.ID, &acc.Name)
	if err != nil {
		return Account{}, fmt.Errorf("creating account %q: %w", name, err)
	}
	return acc, nil
}
