package account

import (
	"golang.org/x/crypto/bcrypt"
)

func validatePIN(pin, confirmation string) error {
	if pin == "" {
		return newError(ErrValidation, msgPINMandatory)
	}
	if !wellFormedPIN(pin) {
		return newError(ErrValidation, msgPINFormat)
	}
	if pin != confirmation {
		return newError(ErrValidation, msgPINMismatch)
	}
	return nil
}

// wellFormedPIN reports whether pin is exactly four ASCII digits other than 0000.
func wellFormedPIN(pin string) bool {
	if len(pin) != 4 || pin == "0000" {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

func hashPIN(pin string, cost int) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pin), cost)
}

func pinMatches(hash []byte, pin string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(pin)) == nil
}
