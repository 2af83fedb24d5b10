package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id BIGSERIAL PRIMARY KEY,
    number VARCHAR(10) NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    pin_hash BYTEA NOT NULL,
    holder_id TEXT NOT NULL DEFAULT '',
    status VARCHAR(16) NOT NULL,
    balance NUMERIC(19, 5) NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS account_transactions (
    id UUID PRIMARY KEY,
    seq BIGSERIAL NOT NULL,
    account_id BIGINT NOT NULL REFERENCES accounts(id),
    type VARCHAR(16) NOT NULL,
    amount NUMERIC(19, 5) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS account_transactions_account_idx
    ON account_transactions (account_id, created_at DESC, seq DESC);`

const accountColumns = `id, number, first_name, last_name, pin_hash, holder_id, status, balance, created_at, updated_at`

// PostgresStore persists accounts and their transactions in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables used by the store when they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, acc Account) (Account, error) {
	now := time.Now().UTC()
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = now

	const query = `INSERT INTO accounts (number, first_name, last_name, pin_hash, holder_id, status, balance, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id`
	err := s.db.QueryRow(ctx, query,
		acc.Number, acc.FirstName, acc.LastName, acc.PINHash, acc.HolderID,
		string(acc.Status), acc.Balance, acc.CreatedAt, acc.UpdatedAt,
	).Scan(&acc.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Account{}, ErrDuplicateAccountNumber
		}
		return Account{}, fmt.Errorf("insert account: %w", err)
	}
	return acc, nil
}

func (s *PostgresStore) Account(ctx context.Context, id int64) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *PostgresStore) AccountByNumber(ctx context.Context, number string) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number)
	return scanAccount(row)
}

func (s *PostgresStore) RecentTransactions(ctx context.Context, accountID int64, limit int) ([]Transaction, error) {
	const query = `SELECT id::text, account_id, type, amount, description, created_at
        FROM account_transactions
        WHERE account_id = $1
        ORDER BY created_at DESC, seq DESC
        LIMIT $2`
	// LIMIT NULL returns every row
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := s.db.Query(ctx, query, accountID, lim)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var (
			tx  Transaction
			typ string
		)
		if err := rows.Scan(&tx.ID, &tx.AccountID, &typ, &tx.Amount, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = TransactionType(typ)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) WithinAccount(ctx context.Context, id int64, fn func(ctx context.Context, u Unit) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
	acc, err := scanAccount(row)
	if err != nil {
		return err
	}

	if err := fn(ctx, &postgresUnit{tx: tx, account: acc}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type postgresUnit struct {
	tx      pgx.Tx
	account Account
}

func (u *postgresUnit) Account() Account { return u.account }

func (u *postgresUnit) SaveAccount(ctx context.Context, acc Account) error {
	acc.ID = u.account.ID
	acc.Number = u.account.Number
	acc.UpdatedAt = time.Now().UTC()

	const query = `UPDATE accounts
        SET first_name = $2, last_name = $3, pin_hash = $4, holder_id = $5, status = $6, balance = $7, updated_at = $8
        WHERE id = $1`
	if _, err := u.tx.Exec(ctx, query,
		acc.ID, acc.FirstName, acc.LastName, acc.PINHash, acc.HolderID,
		string(acc.Status), acc.Balance, acc.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	u.account = acc
	return nil
}

func (u *postgresUnit) AppendTransaction(ctx context.Context, tx Transaction) error {
	const query = `INSERT INTO account_transactions (id, account_id, type, amount, description, created_at)
        VALUES ($1::uuid, $2, $3, $4, $5, $6)`
	if _, err := u.tx.Exec(ctx, query,
		tx.ID, u.account.ID, string(tx.Type), tx.Amount, tx.Description, tx.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		acc    Account
		status string
	)
	err := row.Scan(&acc.ID, &acc.Number, &acc.FirstName, &acc.LastName, &acc.PINHash,
		&acc.HolderID, &status, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("scan account: %w", err)
	}
	acc.Status = Status(status)
	return acc, nil
}
