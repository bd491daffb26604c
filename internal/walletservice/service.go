// Package walletservice manages business logic layer of the wallet ledger.
package walletservice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/currencypkg"
)

// Repo provides data access layer interface needed by wallet service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package walletservice
type Repo interface {
	Balances(ctx context.Context, key string) (domain.Balances, error)
	AllBalances(ctx context.Context) (map[string]domain.Balances, error)
	SetBalances(ctx context.Context, key string, balances domain.Balances) error
	Transfer(ctx context.Context, arg domain.ApplyTransferParams) (domain.TransferTxResult, error)
	Transactions(ctx context.Context, key string, limit int) ([]domain.Transaction, error)
}

// Policy provides the rate and fee policy interface needed by the transfer
// engine.
type Policy interface {
	WalletFee(amount decimal.Decimal) decimal.Decimal
	Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
	SettlementCurrency(recipient, senderCurrency string) string
}

// Service facilitates wallet service layer logic.
type Service struct {
	repo   Repo
	policy Policy
}

// New returns wallet service struct to manage the ledger bussines logic.
func New(r Repo, p Policy) *Service {
	return &Service{
		repo:   r,
		policy: p,
	}
}

// parseAmount parses a non-negative decimal amount. An empty string defaults
// to zero (the bank amount is optional).
func parseAmount(amount string) (decimal.Decimal, error) {
	if amount == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if d.IsNegative() {
		return decimal.Decimal{}, domain.ErrNegativeAmount
	}

	return d, nil
}

// Transfer validates the request, computes the fee, conversion, and
// settlement currency through the policy, and commits the transfer
// atomically through the repository.
func (s *Service) Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	walletAmount, err := parseAmount(arg.WalletAmount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	bankAmount, err := parseAmount(arg.BankAmount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	if !currencypkg.IsSupportedCurrency(arg.Currency) {
		l.Info().Str("currency", arg.Currency).Msg("unsupported currency")
		return domain.TransferTxResult{}, domain.ErrCurrencyNotSupported
	}

	currency := currencypkg.Normalize(arg.Currency)

	fee := s.policy.WalletFee(walletAmount)
	targetCurrency := s.policy.SettlementCurrency(arg.Recipient, currency)

	credit := walletAmount.Add(bankAmount)

	if targetCurrency != currency {
		credit, err = s.policy.Convert(walletAmount, currency, targetCurrency)
		if err != nil {
			l.Error().Err(err).Send()
			return domain.TransferTxResult{}, err
		}

		if bankAmount.IsPositive() {
			bankCredit, err := s.policy.Convert(bankAmount, currency, targetCurrency)
			if err != nil {
				l.Error().Err(err).Send()
				return domain.TransferTxResult{}, err
			}

			credit = credit.Add(bankCredit)
		}
	}

	description := arg.Description
	if description == "" {
		description = fmt.Sprintf("Transfer from %s to %s", arg.Sender, arg.Recipient)
	}

	result, err := s.repo.Transfer(ctx, domain.ApplyTransferParams{
		Sender:            arg.Sender,
		Recipient:         arg.Recipient,
		SenderCurrency:    currency,
		RecipientCurrency: targetCurrency,
		WalletAmount:      walletAmount,
		SenderDebit:       walletAmount.Add(fee),
		RecipientCredit:   credit,
		Total:             walletAmount.Add(bankAmount),
		Description:       description,
		IdempotencyKey:    arg.IdempotencyKey,
	})
	if err != nil {
		l.Info().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	return result, nil
}

// Balances returns the account's balances, lazily creating the account with
// zero balances on first reference.
func (s *Service) Balances(ctx context.Context, key string) (domain.Balances, error) {
	return s.repo.Balances(ctx, key)
}

// AllBalances returns every account's balances. Used by operator tooling.
func (s *Service) AllBalances(ctx context.Context) (map[string]domain.Balances, error) {
	return s.repo.AllBalances(ctx)
}

// SetBalances administratively replaces an account's balances. It bypasses
// the transfer engine, appends no transaction record, and is logged
// distinctly so audit trails are not misread.
func (s *Service) SetBalances(ctx context.Context, key string, balances domain.Balances) error {
	l := zerolog.Ctx(ctx)

	normalized := make(domain.Balances, len(currencypkg.SupportedCurrencies))

	for currency, amount := range balances {
		if !currencypkg.IsSupportedCurrency(currency) {
			return domain.ErrCurrencyNotSupported
		}

		if amount.IsNegative() {
			return domain.ErrNegativeAmount
		}

		normalized[currencypkg.Normalize(currency)] = amount
	}

	for _, currency := range currencypkg.SupportedCurrencies {
		if _, ok := normalized[currency]; !ok {
			normalized[currency] = decimal.Zero
		}
	}

	if err := s.repo.SetBalances(ctx, key, normalized); err != nil {
		return err
	}

	l.Warn().Str("event", "admin_override").Str("account", key).Msg("balances replaced administratively")

	return nil
}

// Transactions returns the account's transactions, newest first.
func (s *Service) Transactions(ctx context.Context, key string, limit int) ([]domain.Transaction, error) {
	return s.repo.Transactions(ctx, key, limit)
}
