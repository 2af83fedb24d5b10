package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound is returned when no account matches the requested id or number.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccountNumber indicates the generated external account number
	// is already taken; callers are expected to regenerate and retry.
	ErrDuplicateAccountNumber = errors.New("duplicate account number")
)

// AmountScale is the number of fractional digits kept for balances and
// transaction amounts. It matches the NUMERIC(19, 5) columns.
const AmountScale = 5

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

// TransactionType classifies a posting against an account.
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeDebit      TransactionType = "DEBIT"
	TypeCheck      TransactionType = "CHECK"
)

// Account is the persisted account row. Balance is the running total of all
// transactions applied to it.
type Account struct {
	ID        int64
	Number    string
	FirstName string
	LastName  string
	PINHash   []byte
	HolderID  string
	Status    Status
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is an immutable posting. Amount is signed: positive values
// increased the balance, negative values decreased it.
type Transaction struct {
	ID          string
	AccountID   int64
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// Unit is an atomic unit of work bound to a single locked account. Writes made
// through it become visible together when the surrounding WithinAccount call
// returns nil, and are discarded otherwise.
type Unit interface {
	Account() Account
	SaveAccount(ctx context.Context, acc Account) error
	AppendTransaction(ctx context.Context, tx Transaction) error
}

// Store defines the contract implemented by ledger backends (in-memory, Postgres).
type Store interface {
	// CreateAccount persists a new account and returns it with its assigned ID.
	CreateAccount(ctx context.Context, acc Account) (Account, error)
	Account(ctx context.Context, id int64) (Account, error)
	AccountByNumber(ctx context.Context, number string) (Account, error)
	// RecentTransactions returns up to limit transactions for the account, newest
	// first. A limit <= 0 returns all of them.
	RecentTransactions(ctx context.Context, accountID int64, limit int) ([]Transaction, error)
	// WithinAccount serialises fn against every other unit on the same account.
	WithinAccount(ctx context.Context, id int64, fn func(ctx context.Context, u Unit) error) error
}
