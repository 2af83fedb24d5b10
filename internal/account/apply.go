package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tellerbank/account-service/internal/ledger"
	"github.com/tellerbank/account-service/internal/notification"
)

// Deposit adds amount to the account balance.
func (s *Service) Deposit(ctx context.Context, accountID int64, input TransactionInput) (string, error) {
	input.Direction = DirectionDebit
	return s.Apply(ctx, accountID, input, ledger.TypeDeposit)
}

// Withdraw takes amount from the account balance.
func (s *Service) Withdraw(ctx context.Context, accountID int64, input TransactionInput) (string, error) {
	input.Direction = DirectionCredit
	return s.Apply(ctx, accountID, input, ledger.TypeWithdrawal)
}

// Debit records a DEBIT transaction in the direction chosen by the caller.
func (s *Service) Debit(ctx context.Context, accountID int64, input TransactionInput) (string, error) {
	return s.Apply(ctx, accountID, input, ledger.TypeDebit)
}

// Check records a CHECK transaction in the direction chosen by the caller.
func (s *Service) Check(ctx context.Context, accountID int64, input TransactionInput) (string, error) {
	return s.Apply(ctx, accountID, input, ledger.TypeCheck)
}

// Apply looks up the account, validates the input and, under the account lock,
// appends a signed transaction and updates the running balance. Either both
// writes happen or neither.
func (s *Service) Apply(ctx context.Context, accountID int64, input TransactionInput, typ ledger.TransactionType) (string, error) {
	var (
		number string
		tx     ledger.Transaction
	)
	err := s.store.WithinAccount(ctx, accountID, func(ctx context.Context, u ledger.Unit) error {
		signed, err := signedAmount(input)
		if err != nil {
			return err
		}

		acc := u.Account()
		number = acc.Number
		if acc.Status == ledger.StatusClosed {
			return newError(ErrState, msgAccountClosed)
		}

		candidate := acc.Balance.Add(signed)
		if candidate.IsNegative() {
			return newError(ErrInsufficientFunds, msgInsufficientFunds)
		}

		tx = ledger.Transaction{
			ID:          uuid.NewString(),
			AccountID:   accountID,
			Type:        typ,
			Amount:      signed,
			Description: input.Description,
			CreatedAt:   s.now(),
		}
		if err := u.AppendTransaction(ctx, tx); err != nil {
			return err
		}
		acc.Balance = candidate
		return u.SaveAccount(ctx, acc)
	})
	if err != nil {
		return "", mapStoreError(err)
	}

	s.notify(ctx, notification.Message{
		Kind:          notification.KindTransactionApplied,
		AccountID:     accountID,
		AccountNumber: number,
		TransactionID: tx.ID,
		Amount:        tx.Amount.String(),
		Body:          string(typ),
		OccurredAt:    tx.CreatedAt,
	})
	return tx.ID, nil
}

// signedAmount checks the direction tag and the amount, and returns the amount
// with the sign the direction gives it.
func signedAmount(input TransactionInput) (decimal.Decimal, error) {
	var signed decimal.Decimal
	switch input.Direction {
	case "":
		return decimal.Zero, newError(ErrValidation, msgDirectionMandatory)
	case DirectionDebit:
		signed = input.Amount
	case DirectionCredit:
		signed = input.Amount.Neg()
	default:
		return decimal.Zero, newError(ErrValidation, msgDirectionInvalid)
	}

	if !input.Amount.IsPositive() {
		return decimal.Zero, newError(ErrValidation, msgAmountNotPositive)
	}
	// stored amounts keep ledger.AmountScale fractional digits
	if !input.Amount.Equal(input.Amount.Truncate(ledger.AmountScale)) {
		return decimal.Zero, newError(ErrValidation, msgAmountScale)
	}
	return signed, nil
}
