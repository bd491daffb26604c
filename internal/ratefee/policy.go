// Package ratefee manages the conversion rate and fee policy of transfers.
package ratefee

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/currencypkg"
)

// Policy defaults. Rates are fractions, not percents.
const (
	DefaultWalletFeeRate     = "0.005"
	DefaultConversionFeeRate = "0.02"
	DefaultExchangeRate      = "0.9"
)

// RateProvider supplies the exchange rate between two currencies.
//
// Production implementations may look rates up from a live source; FixedRates
// is the default used in tests and local runs.
type RateProvider interface {
	Rate(from, to string, asOf time.Time) (decimal.Decimal, error)
}

// FixedRates is a RateProvider that applies one bilateral rate to every
// cross-currency pair.
type FixedRates struct {
	rate decimal.Decimal
}

// NewFixedRates returns a FixedRates provider with the given rate.
func NewFixedRates(rate decimal.Decimal) FixedRates {
	return FixedRates{rate: rate}
}

// Rate returns the configured rate, or 1 for a same-currency pair.
func (f FixedRates) Rate(from, to string, _ time.Time) (decimal.Decimal, error) {
	if currencypkg.Normalize(from) == currencypkg.Normalize(to) {
		return decimal.NewFromInt(1), nil
	}

	return f.rate, nil
}

// Policy computes wallet fees, conversion amounts, and the settlement
// currency of a recipient. It is stateless and safe for concurrent use.
type Policy struct {
	walletFeeRate     decimal.Decimal
	conversionFeeRate decimal.Decimal
	rates             RateProvider
	preferences       map[string]string
}

// New returns a Policy with the given fee rates, rate provider, and
// per-account settlement currency preferences.
func New(walletFeeRate, conversionFeeRate decimal.Decimal, rates RateProvider, preferences map[string]string) *Policy {
	normalized := make(map[string]string, len(preferences))
	for account, currency := range preferences {
		normalized[account] = currencypkg.Normalize(currency)
	}

	return &Policy{
		walletFeeRate:     walletFeeRate,
		conversionFeeRate: conversionFeeRate,
		rates:             rates,
		preferences:       normalized,
	}
}

// Default returns a Policy with the design-constant rates and no settlement
// preferences.
func Default() *Policy {
	return New(
		decimal.RequireFromString(DefaultWalletFeeRate),
		decimal.RequireFromString(DefaultConversionFeeRate),
		NewFixedRates(decimal.RequireFromString(DefaultExchangeRate)),
		nil,
	)
}

// WalletFee returns the fee charged on top of the wallet-currency portion of
// a transfer. Strictly increasing in amount for positive amounts.
func (p *Policy) WalletFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.walletFeeRate)
}

// Convert converts amount from one currency to another, applying the
// conversion fee before the exchange rate. A same-currency conversion returns
// the amount unchanged and charges no fee.
func (p *Policy) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from, to = currencypkg.Normalize(from), currencypkg.Normalize(to)

	if from == to {
		return amount, nil
	}

	rate, err := p.rates.Rate(from, to, time.Now().UTC())
	if err != nil {
		return decimal.Decimal{}, err
	}

	one := decimal.NewFromInt(1)

	return amount.Mul(one.Sub(p.conversionFeeRate)).Mul(rate), nil
}

// SettlementCurrency resolves the currency in which the recipient receives
// funds: the recipient's preferred settlement currency when one is
// configured, otherwise the sender's currency unchanged.
func (p *Policy) SettlementCurrency(recipient, senderCurrency string) string {
	if preferred, ok := p.preferences[recipient]; ok {
		return preferred
	}

	return currencypkg.Normalize(senderCurrency)
}

// ParsePreferences parses "account=CUR" pairs separated by commas into a
// settlement preference map. Unknown currencies are rejected.
func ParsePreferences(s string) (map[string]string, error) {
	preferences := map[string]string{}

	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		account, currency, found := strings.Cut(pair, "=")
		if !found || account == "" {
			return nil, fmt.Errorf("malformed settlement preference %q, want account=CUR", pair)
		}

		if !currencypkg.IsSupportedCurrency(currency) {
			return nil, fmt.Errorf("settlement preference %q: %w", pair, domain.ErrCurrencyNotSupported)
		}

		preferences[account] = currencypkg.Normalize(currency)
	}

	return preferences, nil
}
