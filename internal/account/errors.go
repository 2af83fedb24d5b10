package account

import "errors"

// Error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrState             = errors.New("invalid account state")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

const (
	msgPINMandatory         = "Pin number is mandatory."
	msgPINFormat            = "Pin number should be of 4 numeric digits with non zero values."
	msgPINMismatch          = "Pin and Pin Confirmation does not match."
	msgFirstNameRequired    = "First name is required."
	msgLastNameRequired     = "Last name is required."
	msgNumberRequired       = "Account number is required"
	msgPINRequired          = "Pin number is required"
	msgAccountDoesNotExist  = "The account does not exist"
	msgAccountIDNotFound    = "Account with provided id does not exist"
	msgAmountNotPositive    = "Transaction amount must be positive."
	msgAmountScale          = "Transaction amount can not have more than 5 decimal places."
	msgDirectionMandatory   = "Transaction Type is mandatory [DEBIT,CREDIT]"
	msgDirectionInvalid     = "Transaction type [DEBIT, CREDIT] is required to process current operation."
	msgAccountClosed        = "The account is closed."
	msgInsufficientFunds    = "Operation cancelled due to insufficient funds."
	msgOverdrawnCannotClose = "The account can not be closed due to it is overdrawn."
)

// Error is a domain failure whose message is safe to show to API clients.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the error kind to errors.Is.
func (e *Error) Unwrap() error { return e.kind }
