package ratefee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/currencypkg"
)

func TestWalletFee(t *testing.T) {
	policy := Default()

	testCases := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "Hundred", amount: "100", want: "0.5"},
		{name: "Fraction", amount: "0.5", want: "0.0025"},
		{name: "Zero", amount: "0", want: "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := policy.WalletFee(decimal.RequireFromString(tc.amount))
			require.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"WalletFee(%s) = %s, want %s", tc.amount, got, tc.want)
		})
	}
}

func TestWalletFeeMonotonicity(t *testing.T) {
	policy := Default()

	small := policy.WalletFee(decimal.RequireFromString("10"))
	large := policy.WalletFee(decimal.RequireFromString("10.01"))

	require.True(t, large.GreaterThan(small))
}

func TestConvert(t *testing.T) {
	policy := Default()

	t.Run("CrossCurrency", func(t *testing.T) {
		// 100 * (1 - 0.02) * 0.9 = 88.2
		got, err := policy.Convert(decimal.RequireFromString("100"), currencypkg.USD, currencypkg.EUR)
		require.NoError(t, err)
		require.True(t, got.Equal(decimal.RequireFromString("88.2")), "got %s", got)
	})

	t.Run("SameCurrencyNoFee", func(t *testing.T) {
		amount := decimal.RequireFromString("123.45")

		got, err := policy.Convert(amount, currencypkg.USD, "usd")
		require.NoError(t, err)
		require.True(t, got.Equal(amount))
	})
}

func TestSettlementCurrency(t *testing.T) {
	policy := New(
		decimal.RequireFromString(DefaultWalletFeeRate),
		decimal.RequireFromString(DefaultConversionFeeRate),
		NewFixedRates(decimal.RequireFromString(DefaultExchangeRate)),
		map[string]string{"pierre@gmail.com": "eur"},
	)

	require.Equal(t, currencypkg.EUR, policy.SettlementCurrency("pierre@gmail.com", currencypkg.USD))
	require.Equal(t, currencypkg.USD, policy.SettlementCurrency("someone@else.com", "usd"))
}

func TestParsePreferences(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "Empty",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "SinglePair",
			input: "pierre@gmail.com=eur",
			want:  map[string]string{"pierre@gmail.com": "EUR"},
		},
		{
			name:  "MultiplePairs",
			input: "a@b.com=EUR, c@d.com=usd",
			want:  map[string]string{"a@b.com": "EUR", "c@d.com": "USD"},
		},
		{
			name:    "UnknownCurrency",
			input:   "a@b.com=GBP",
			wantErr: true,
		},
		{
			name:    "MissingSeparator",
			input:   "a@b.com",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePreferences(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				// The offending pair is named so config mistakes are
				// diagnosable.
				require.Contains(t, err.Error(), "a@b.com")
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParsePreferencesErrorKinds(t *testing.T) {
	_, err := ParsePreferences("a@b.com=GBP")
	require.ErrorIs(t, err, domain.ErrCurrencyNotSupported)

	// A pair with no separator is a syntax problem, not a currency problem.
	_, err = ParsePreferences("a@b.com")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrCurrencyNotSupported)
}
