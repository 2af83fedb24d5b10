package account

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tellerbank/account-service/internal/ledger"
)

// DateLayout renders transaction timestamps in account details.
const DateLayout = "02-Jan-2006 15:04:05"

// recentLimit is how many transactions an account detail carries.
const recentLimit = 5

// Direction tags a transaction as adding to (DEBIT) or taking from (CREDIT) the balance.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// OpenInput captures the data required to open an account.
type OpenInput struct {
	FirstName       string
	LastName        string
	PIN             string
	PINConfirmation string
	HolderID        string
}

// Opened is returned once an account exists. PIN echoes the caller's PIN.
type Opened struct {
	AccountID     int64
	AccountNumber string
	PIN           string
}

// Summary is the result of a successful account search.
type Summary struct {
	ID             int64
	Number         string
	HolderFullName string
}

// TransactionView is a transaction as shown in an account detail.
type TransactionView struct {
	ID          string
	Amount      decimal.Decimal
	Type        ledger.TransactionType
	Description string
	Date        string
}

// Detail describes an account together with its most recent activity.
type Detail struct {
	ID               int64
	Number           string
	HolderFullName   string
	HolderID         string
	Status           ledger.Status
	Balance          decimal.Decimal
	LastTransactions []TransactionView
}

// Balance reports the running balance of an account.
type Balance struct {
	AccountNumber string
	Amount        decimal.Decimal
	AsOf          time.Time
}

// TransactionInput describes a requested movement of funds.
type TransactionInput struct {
	Amount      decimal.Decimal
	Direction   Direction
	Description string
}

func fullName(acc ledger.Account) string {
	return acc.FirstName + " " + acc.LastName
}
