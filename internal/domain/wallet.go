// Package domain provides defenitions of all entities.
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates negative amount.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrCurrencyNotSupported indicates a currency outside the supported set.
	ErrCurrencyNotSupported = errors.New("currency not supported")
	// ErrPersistenceFailure indicates that the durable flush failed and the
	// requested mutation was not committed.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrIdempotencyConflict indicates that an idempotency key was reused
	// with different transfer parameters.
	ErrIdempotencyConflict = errors.New("idempotency key reused with different parameters")
)

// Balances maps an upper-case currency code to a non-negative amount.
type Balances map[string]decimal.Decimal

// Copy returns an independent copy of the balances.
func (b Balances) Copy() Balances {
	c := make(Balances, len(b))
	for currency, amount := range b {
		c[currency] = amount
	}

	return c
}
