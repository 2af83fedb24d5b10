package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/tellerbank/account-service/internal/ledger"
	"github.com/tellerbank/account-service/internal/notification"
)

// maxNumberAttempts bounds regeneration of colliding account numbers.
const maxNumberAttempts = 5

// Service implements account lifecycle and transaction processing on top of a ledger store.
type Service struct {
	store    ledger.Store
	notifier notification.Notifier
	pinCost  int
	numbers  NumberGenerator
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithPINCost sets the bcrypt cost used to hash PINs.
func WithPINCost(cost int) Option {
	return func(s *Service) { s.pinCost = cost }
}

// WithNumberGenerator replaces the account number source.
func WithNumberGenerator(gen NumberGenerator) Option {
	return func(s *Service) { s.numbers = gen }
}

// WithClock replaces the time source used for transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds an account service. notifier may be nil.
func NewService(store ledger.Store, notifier notification.Notifier, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		pinCost:  bcrypt.DefaultCost,
		numbers:  RandomNumber,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open validates the request and creates an ACTIVE account with a zero balance.
func (s *Service) Open(ctx context.Context, input OpenInput) (Opened, error) {
	if err := validatePIN(input.PIN, input.PINConfirmation); err != nil {
		return Opened{}, err
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return Opened{}, newError(ErrValidation, msgFirstNameRequired)
	}
	if strings.TrimSpace(input.LastName) == "" {
		return Opened{}, newError(ErrValidation, msgLastNameRequired)
	}

	hash, err := hashPIN(input.PIN, s.pinCost)
	if err != nil {
		return Opened{}, fmt.Errorf("hash pin: %w", err)
	}

	candidate := ledger.Account{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		PINHash:   hash,
		HolderID:  input.HolderID,
		Status:    ledger.StatusActive,
		Balance:   decimal.Zero,
		CreatedAt: s.now(),
	}

	var acc ledger.Account
	for attempt := 1; ; attempt++ {
		candidate.Number = s.numbers()
		acc, err = s.store.CreateAccount(ctx, candidate)
		if err == nil {
			break
		}
		if !errors.Is(err, ledger.ErrDuplicateAccountNumber) || attempt == maxNumberAttempts {
			return Opened{}, fmt.Errorf("create account: %w", err)
		}
	}

	s.notify(ctx, notification.Message{
		Kind:          notification.KindAccountOpened,
		AccountID:     acc.ID,
		AccountNumber: acc.Number,
		Body:          fullName(acc),
		OccurredAt:    acc.CreatedAt,
	})

	return Opened{AccountID: acc.ID, AccountNumber: acc.Number, PIN: input.PIN}, nil
}

// Close moves the account to CLOSED and returns its number. Closing a closed
// account succeeds without changes.
func (s *Service) Close(ctx context.Context, accountID int64) (string, error) {
	var (
		number string
		closed bool
	)
	err := s.store.WithinAccount(ctx, accountID, func(ctx context.Context, u ledger.Unit) error {
		acc := u.Account()
		number = acc.Number
		if acc.Status == ledger.StatusClosed {
			return nil
		}
		if acc.Balance.IsNegative() {
			return newError(ErrState, msgOverdrawnCannotClose)
		}
		acc.Status = ledger.StatusClosed
		closed = true
		return u.SaveAccount(ctx, acc)
	})
	if err != nil {
		return "", mapStoreError(err)
	}

	if closed {
		s.notify(ctx, notification.Message{
			Kind:          notification.KindAccountClosed,
			AccountID:     accountID,
			AccountNumber: number,
			OccurredAt:    s.now(),
		})
	}
	return number, nil
}

// Search finds the account whose number and PIN both match.
func (s *Service) Search(ctx context.Context, accountNumber, pin string) (Summary, error) {
	if strings.TrimSpace(accountNumber) == "" {
		return Summary{}, newError(ErrValidation, msgNumberRequired)
	}
	if strings.TrimSpace(pin) == "" {
		return Summary{}, newError(ErrValidation, msgPINRequired)
	}

	acc, err := s.store.AccountByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return Summary{}, newError(ErrNotFound, msgAccountDoesNotExist)
		}
		return Summary{}, fmt.Errorf("lookup account: %w", err)
	}
	if !pinMatches(acc.PINHash, pin) {
		return Summary{}, newError(ErrNotFound, msgAccountDoesNotExist)
	}

	return Summary{ID: acc.ID, Number: acc.Number, HolderFullName: fullName(acc)}, nil
}

// Find returns the account detail with its most recent transactions, newest first.
func (s *Service) Find(ctx context.Context, accountID int64) (Detail, error) {
	acc, err := s.account(ctx, accountID)
	if err != nil {
		return Detail{}, err
	}

	txs, err := s.store.RecentTransactions(ctx, accountID, recentLimit)
	if err != nil {
		return Detail{}, fmt.Errorf("recent transactions: %w", err)
	}

	views := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, TransactionView{
			ID:          tx.ID,
			Amount:      tx.Amount,
			Type:        tx.Type,
			Description: tx.Description,
			Date:        tx.CreatedAt.Format(DateLayout),
		})
	}

	return Detail{
		ID:               acc.ID,
		Number:           acc.Number,
		HolderFullName:   fullName(acc),
		HolderID:         acc.HolderID,
		Status:           acc.Status,
		Balance:          acc.Balance,
		LastTransactions: views,
	}, nil
}

// Balance returns the current running balance.
func (s *Service) Balance(ctx context.Context, accountID int64) (Balance, error) {
	acc, err := s.account(ctx, accountID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{AccountNumber: acc.Number, Amount: acc.Balance, AsOf: s.now()}, nil
}

func (s *Service) account(ctx context.Context, id int64) (ledger.Account, error) {
	acc, err := s.store.Account(ctx, id)
	if err != nil {
		return ledger.Account{}, mapStoreError(err)
	}
	return acc, nil
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, msg)
}

func mapStoreError(err error) error {
	var domainErr *Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, ledger.ErrAccountNotFound):
		return newError(ErrNotFound, msgAccountIDNotFound)
	default:
		return fmt.Errorf("account store: %w", err)
	}
}
