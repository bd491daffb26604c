package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction holds the immutable audit record of a completed transfer.
type Transaction struct {
	ID                string          `json:"id"`
	Sender            string          `json:"sender"`
	Recipient         string          `json:"recipient"`
	Total             decimal.Decimal `json:"total"` // wallet + bank contribution, in sender currency
	SenderCurrency    string          `json:"sender_currency"`
	RecipientCurrency string          `json:"recipient_currency"`
	Description       string          `json:"description"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CreateTransferParams is the input data for the transfer operation.
//
// Amounts arrive as strings and are parsed by the service layer.
type CreateTransferParams struct {
	Sender         string `json:"sender"`
	Recipient      string `json:"recipient"`
	WalletAmount   string `json:"wallet_amount"`
	Currency       string `json:"currency"`
	BankAmount     string `json:"bank_amount"`
	Description    string `json:"description"`
	IdempotencyKey string `json:"-"`
}

// ApplyTransferParams carries the amounts already computed by the transfer
// engine to the store for atomic application.
type ApplyTransferParams struct {
	Sender            string
	Recipient         string
	SenderCurrency    string
	RecipientCurrency string
	WalletAmount      decimal.Decimal // checked against the pre-fee balance
	SenderDebit       decimal.Decimal // wallet amount plus wallet fee
	RecipientCredit   decimal.Decimal
	Total             decimal.Decimal
	Description       string
	IdempotencyKey    string
}

// TransferTxResult is the result of the transfer transaction.
type TransferTxResult struct {
	Transaction      Transaction `json:"transaction"`
	SenderBalance    Balances    `json:"sender_balance"`
	RecipientBalance Balances    `json:"recipient_balance"`
}
