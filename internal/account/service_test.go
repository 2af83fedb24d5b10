package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tellerbank/account-service/internal/ledger"
	"github.com/tellerbank/account-service/internal/notification"
)

type testNotifier struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return nil
}

func (n *testNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.msgs))
	for i, m := range n.msgs {
		out[i] = m.Kind
	}
	return out
}

func newTestService(t *testing.T, opts ...Option) (*Service, ledger.Store, *testNotifier) {
	t.Helper()
	store := ledger.NewInMemory()
	notifier := &testNotifier{}
	opts = append([]Option{WithPINCost(bcrypt.MinCost)}, opts...)
	return NewService(store, notifier, opts...), store, notifier
}

func openAccount(t *testing.T, svc *Service) Opened {
	t.Helper()
	opened, err := svc.Open(context.Background(), OpenInput{
		FirstName:       "Jane",
		LastName:        "Doe",
		PIN:             "1234",
		PINConfirmation: "1234",
		HolderID:        "ID-001",
	})
	require.NoError(t, err)
	return opened
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireDomainError(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	var domainErr *Error
	require.True(t, errors.As(err, &domainErr), "expected *account.Error, got %T", err)
	assert.Equal(t, msg, domainErr.Error())
}

func TestOpenValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name  string
		input OpenInput
		msg   string
	}{
		{"empty pin", OpenInput{FirstName: "A", LastName: "B"}, msgPINMandatory},
		{"zero pin", OpenInput{FirstName: "A", LastName: "B", PIN: "0000", PINConfirmation: "0000"}, msgPINFormat},
		{"short pin", OpenInput{FirstName: "A", LastName: "B", PIN: "123", PINConfirmation: "123"}, msgPINFormat},
		{"non numeric pin", OpenInput{FirstName: "A", LastName: "B", PIN: "12a4", PINConfirmation: "12a4"}, msgPINFormat},
		{"non ascii digits", OpenInput{FirstName: "A", LastName: "B", PIN: "١٢٣٤", PINConfirmation: "١٢٣٤"}, msgPINFormat},
		{"mismatch", OpenInput{FirstName: "A", LastName: "B", PIN: "1234", PINConfirmation: "4321"}, msgPINMismatch},
		{"missing first name", OpenInput{FirstName: " ", LastName: "B", PIN: "1234", PINConfirmation: "1234"}, msgFirstNameRequired},
		{"missing last name", OpenInput{FirstName: "A", PIN: "1234", PINConfirmation: "1234"}, msgLastNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Open(context.Background(), tt.input)
			requireDomainError(t, err, ErrValidation, tt.msg)
		})
	}
}

func TestOpenCreatesActiveAccount(t *testing.T) {
	svc, store, notifier := newTestService(t)
	opened := openAccount(t, svc)

	assert.Equal(t, "1234", opened.PIN)
	assert.Len(t, opened.AccountNumber, 10)
	assert.NotEqual(t, byte('0'), opened.AccountNumber[0])

	acc, err := store.Account(context.Background(), opened.AccountID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusActive, acc.Status)
	assert.True(t, acc.Balance.IsZero())
	assert.NotEqual(t, []byte("1234"), acc.PINHash, "pin must be stored hashed")
	assert.Equal(t, []string{notification.KindAccountOpened}, notifier.kinds())
}

func TestOpenRetriesDuplicateNumbers(t *testing.T) {
	numbers := []string{"1111111111", "1111111111", "1111111111", "2222222222"}
	var i int
	gen := func() string {
		n := numbers[i]
		i++
		return n
	}
	svc, _, _ := newTestService(t, WithNumberGenerator(gen))

	first := openAccount(t, svc)
	second := openAccount(t, svc)

	assert.Equal(t, "1111111111", first.AccountNumber)
	assert.Equal(t, "2222222222", second.AccountNumber)
}

func TestOpenGivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, _, _ := newTestService(t, WithNumberGenerator(func() string { return "1111111111" }))
	openAccount(t, svc)

	_, err := svc.Open(context.Background(), OpenInput{FirstName: "A", LastName: "B", PIN: "1234", PINConfirmation: "1234"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateAccountNumber)
}

func TestDepositsSumToBalance(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	opened := openAccount(t, svc)

	amounts := []string{"10", "0.01", "99.99", "1250.5", "3"}
	want := decimal.Zero
	for _, a := range amounts {
		_, err := svc.Deposit(ctx, opened.AccountID, TransactionInput{Amount: amount(a), Description: "salary"})
		require.NoError(t, err)
		want = want.Add(amount(a))
	}

	bal, err := svc.Balance(ctx, opened.AccountID)
	require.NoError(t, err)
	assert.Equal(t, opened.AccountNumber, bal.AccountNumber)
	assert.True(t, want.Equal(bal.Amount), "expected %s, got %s", want, bal.Amount)
}

func TestOverdraftRejectedAndBalanceUnchanged(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	opened := openAccount(t, svc)

	_, err := svc.Deposit(ctx, opened.AccountID, TransactionInput{Amount: amount("20")})
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, opened.AccountID, TransactionInput{Amount: amount("20.01")})
	requireDomainError(t, err, ErrInsufficientFunds, msgInsufficientFunds)

	_, err = svc.Debit(ctx, opened.AccountID, TransactionInput{Amount: amount("21"), Direction: DirectionCredit})
	requireDomainError(t, err, ErrInsufficientFunds, msgInsufficientFunds)

	detail, err := svc.Find(ctx, opened.AccountID)
	require.NoError(t, err)
	assert.True(t, amount("20").Equal(detail.Balance))
	assert.Len(t, detail.LastTransactions, 1)
}

func TestApplyValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	opened := openAccount(t, svc)

	_, err := svc.Deposit(ctx, opened.AccountID, TransactionInput{Amount: decimal.Zero})
	requireDomainError(t, err, ErrValidation, msgAmountNotPositive)

	_, err = svc.Withdraw(ctx, opened.AccountID, TransactionInput{Amount: amount("-5")})
	requireDomainError(t, err, ErrValidation, msgAmountNotPositive)

	_, err = svc.Debit(ctx, opened.AccountID, TransactionInput{Amount: amount("5")})
	requireDomainError(t, err, ErrValidation, msgDirectionMandatory)

	_, err = svc.Check(ctx, opened.AccountID, TransactionInput{Amount: amount("5"), Direction: "SIDEWAYS"})
	requireDomainError(t, err, ErrValidation, msgDirectionInvalid)

	_, err = svc.Deposit(ctx, 9999, TransactionInput{Amount: amount("5")})
	requireDomainError(t, err, ErrNotFound, msgAccountIDNotFound)
}

func TestApplyLooksUpAccountBeforeValidating(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	_, err := svc.Debit(ctx, 999, TransactionInput{Amount: amount("5")})
	requireDomainError(t, err, ErrNotFound, msgAccountIDNotFound)

	_, err = svc.Check(ctx, 999, TransactionInput{Amount: amount("5"), Direction: "SIDEWAYS"})
	requireDomainError(t, err, ErrNotFound, msgAccountIDNotFound)

	_, err = svc.Deposit(ctx, 999, TransactionInput{Amount: decimal.Zero})
	requireDomainError(t, err, ErrNotFound, msgAccountIDNotFound)

	assert.Empty(t, notifier.kinds())
}

func TestApplyRejectsAmountsFinerThanStoredScale(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	opened := openAccount(t, svc)

	_, err := svc.Deposit(ctx, opened.AccountID, TransactionInput{Amount: amount("0.000004")})
	requireDomainError(t, err, ErrValidation, msgAmountScale)

	_, err = svc.Debit(ctx, opened.AccountID, TransactionInput{Amount: amount("10.123456"), Direction: DirectionDebit})
	requireDomainError(t, err, ErrValidation, msgAmountScale)

	// trailing zeros beyond the scale do not change the value
	_, err = svc.Deposit(ctx, opened.AccountID, TransactionInput{Amount: amount("1.500000")})
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, opened.AccountID, TransactionInput{Amount: amount("0.00001")})
	require.NoError(t, err)

	bal, err := svc.Balance(ctx, opened.AccountID)
	require.NoError(t, err)
	assert.True(t, amount("1.50001").Equal(bal.Amount), "balance was %s", bal.Amount)

	detail, err := svc.Find(ctx, opened.AccountID)
	require.NoError(t, err)
	assert.Len(t, detail.LastTransactions, 2)
}

func TestScenarioDepositWithdrawCheck(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()
	opened := openAccount(t, svc)
	id := opened.AccountID

	_, err := svc.Deposit(ctx, id, TransactionInput{Amount: amount("50"), Description: "Gasoline"})
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, id, TransactionInput{Amount: amount("50"), Description: "Tickets"})
	require.NoError(t, err)

	bal, err := svc.Balance(ctx, id)
	require.NoError(t, err)
	assert.True(t, amount("100").Equal(bal.Amount))

	_, err = svc.Withdraw(ctx, id, TransactionInput{Amount: amount("25"), Description: "Tickets"})
	require.NoError(t, err)
	bal, _ = svc.Balance(ctx, id)
	assert.True(t, amount("75").Equal(bal.Amount))

	checkID, err := svc.Check(ctx, id, TransactionInput{Amount: amount("75"), Direction: DirectionCredit, Description: "rent"})
	require.NoError(t, err)
	assert.NotEmpty(t, checkID)
	bal, _ = svc.Balance(ctx, id)
	assert.True(t, bal.Amount.IsZero())

	_, err = svc.Check(ctx, id, TransactionInput{Amount: amount("0.01"), Direction: DirectionCredit})
	requireDomainError(t, err, ErrInsufficientFunds, msgInsufficientFunds)

	detail, err := svc.Find(ctx, id)
	require.NoError(t, err)
	require.Len(t, detail.LastTransactions, 4)
	newest := detail.LastTransactions[0]
	assert.Equal(t, checkID, newest.ID)
	assert.Equal(t, ledger.TypeCheck, newest.Type)
	assert.True(t, amount("-75").Equal(newest.Amount))
	assert.Equal(t, ledger.TypeWithdrawal, detail.LastTransactions[1].Type)
	assert.True(t, amount("-25").Equal(detail.LastTransactions[1].Amount))

	assert.Equal(t, []string{
		notification.KindAccountOpened,
		notification.KindTransactionApplied,
		notification.KindTransactionApplied,
		notification.KindTransactionApplied,
		notification.KindTransactionApplied,
	}, notifier.kinds())
}

func TestFindReturnsFiveMostRecent(t *testing.T) {
	clock := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	ctx := context.Background()
	opened := openAccount(t, svc)

	for i := 1; i <= 7; i++ {
		_, err := svc.Deposit(ctx, opened.AccountID, TransactionInput{Amount: decimal.NewFromInt(int64(i))})
		require.NoError(t, err)
	}

	detail, err := svc.Find(ctx, opened.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", detail.HolderFullName)
	assert.Equal(t, "ID-001", detail.HolderID)
	assert.Equal(t, ledger.StatusActive, detail.Status)
	require.Len(t, detail.LastTransactions, 5)
	assert.True(t, decimal.NewFromInt(7).Equal(detail.LastTransactions[0].Amount))
	assert.True(t, decimal.NewFromInt(3).Equal(detail.LastTransactions[4].Amount))
	assert.Equal(t, "01-May-2024 09:30:08", detail.LastTransactions[0].Date)

	_, err = svc.Find(ctx, 404)
	requireDomainError(t, err, ErrNotFound, msgAccountIDNotFound)
}

func TestCloseRules(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()

	healthy := openAccount(t, svc)
	number, err := svc.Close(ctx, healthy.AccountID)
	require.NoError(t, err)
	assert.Equal(t, healthy.AccountNumber, number)
	acc, _ := store.Account(ctx, healthy.AccountID)
	assert.Equal(t, ledger.StatusClosed, acc.Status)

	// closing again is a no-op
	_, err = svc.Close(ctx, healthy.AccountID)
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, healthy.AccountID, TransactionInput{Amount: amount("1")})
	requireDomainError(t, err, ErrState, msgAccountClosed)

	overdrawn := openAccount(t, svc)
	require.NoError(t, ledger.SeedBalance(ctx, store, overdrawn.AccountID, amount("-10")))
	_, err = svc.Close(ctx, overdrawn.AccountID)
	requireDomainError(t, err, ErrState, msgOverdrawnCannotClose)
	acc, _ = store.Account(ctx, overdrawn.AccountID)
	assert.Equal(t, ledger.StatusActive, acc.Status)

	_, err = svc.Close(ctx, 12345)
	requireDomainError(t, err, ErrNotFound, msgAccountIDNotFound)

	closed := 0
	for _, k := range notifier.kinds() {
		if k == notification.KindAccountClosed {
			closed++
		}
	}
	assert.Equal(t, 1, closed)
}

func TestSearchRequiresExactMatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	opened := openAccount(t, svc)

	summary, err := svc.Search(ctx, opened.AccountNumber, "1234")
	require.NoError(t, err)
	assert.Equal(t, opened.AccountID, summary.ID)
	assert.Equal(t, "Jane Doe", summary.HolderFullName)

	_, err = svc.Search(ctx, opened.AccountNumber, "4321")
	requireDomainError(t, err, ErrNotFound, msgAccountDoesNotExist)

	_, err = svc.Search(ctx, opened.AccountNumber[:9], "1234")
	requireDomainError(t, err, ErrNotFound, msgAccountDoesNotExist)

	_, err = svc.Search(ctx, "", "1234")
	requireDomainError(t, err, ErrValidation, msgNumberRequired)

	_, err = svc.Search(ctx, opened.AccountNumber, "")
	requireDomainError(t, err, ErrValidation, msgPINRequired)
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	opened := openAccount(t, svc)

	_, err := svc.Deposit(ctx, opened.AccountID, TransactionInput{Amount: amount("100")})
	require.NoError(t, err)

	const workers = 30
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(ctx, opened.AccountID, TransactionInput{Amount: amount("10")})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	bal, err := svc.Balance(ctx, opened.AccountID)
	require.NoError(t, err)
	assert.True(t, bal.Amount.IsZero(), "balance was %s", bal.Amount)
}

func TestRandomNumberShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		n := RandomNumber()
		require.Len(t, n, 10)
		assert.NotEqual(t, byte('0'), n[0])
		for _, r := range n {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %s", r, n)
		}
	}
}
